package models

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var day0 = time.Date(2024, 3, 1, 8, 0, 0, 0, time.UTC)

func weighIn(days int, kg string) WeightRecord {
	return WeightRecord{Weight: decimal.RequireFromString(kg), RecordDate: day0.AddDate(0, 0, days)}
}

func TestIncrementalADG(t *testing.T) {
	prior := weighIn(0, "300")

	t.Run("no prior record", func(t *testing.T) {
		adg := IncrementalADG(nil, decimal.RequireFromString("300"), day0)
		assert.False(t, adg.Valid)
	})

	t.Run("ten days later", func(t *testing.T) {
		adg := IncrementalADG(&prior, decimal.RequireFromString("340"), day0.AddDate(0, 0, 10))
		require.True(t, adg.Valid)
		assert.True(t, adg.Decimal.Equal(decimal.RequireFromString("4")), "got %s", adg.Decimal)
	})

	t.Run("same day", func(t *testing.T) {
		adg := IncrementalADG(&prior, decimal.RequireFromString("310"), day0.Add(6*time.Hour))
		assert.False(t, adg.Valid)
	})

	t.Run("earlier date", func(t *testing.T) {
		adg := IncrementalADG(&prior, decimal.RequireFromString("290"), day0.AddDate(0, 0, -3))
		assert.False(t, adg.Valid)
	})

	t.Run("partial days are floored", func(t *testing.T) {
		adg := IncrementalADG(&prior, decimal.RequireFromString("306"), day0.Add(3*24*time.Hour+20*time.Hour))
		require.True(t, adg.Valid)
		assert.True(t, adg.Decimal.Equal(decimal.RequireFromString("2")), "got %s", adg.Decimal)
	})

	t.Run("weight loss", func(t *testing.T) {
		adg := IncrementalADG(&prior, decimal.RequireFromString("295"), day0.AddDate(0, 0, 5))
		require.True(t, adg.Valid)
		assert.True(t, adg.Decimal.Equal(decimal.RequireFromString("-1")))
	})
}

func TestIncrementalADGMatchesFormulaOverSequence(t *testing.T) {
	series := []WeightRecord{weighIn(0, "250"), weighIn(7, "262.6"), weighIn(21, "290.6"), weighIn(21, "291"), weighIn(50, "349")}

	for i := 1; i < len(series); i++ {
		prev, cur := series[i-1], series[i]
		adg := IncrementalADG(&prev, cur.Weight, cur.RecordDate)
		days := DaysBetween(prev.RecordDate, cur.RecordDate)
		if days <= 0 {
			assert.False(t, adg.Valid, "record %d", i)
			continue
		}
		want := cur.Weight.Sub(prev.Weight).Div(decimal.NewFromInt(int64(days)))
		require.True(t, adg.Valid, "record %d", i)
		assert.True(t, want.Equal(adg.Decimal), "record %d: want %s got %s", i, want, adg.Decimal)
	}
}

func TestSeriesADG(t *testing.T) {
	t.Run("fewer than two records", func(t *testing.T) {
		assert.False(t, SeriesADG(nil).Valid)
		assert.False(t, SeriesADG([]WeightRecord{weighIn(0, "300")}).Valid)
	})

	t.Run("uses first and last chronologically regardless of input order", func(t *testing.T) {
		records := []WeightRecord{weighIn(20, "360"), weighIn(0, "300"), weighIn(10, "340")}
		adg := SeriesADG(records)
		require.True(t, adg.Valid)
		assert.True(t, adg.Decimal.Equal(decimal.RequireFromString("3")), "got %s", adg.Decimal)
		assert.Equal(t, "360", records[0].Weight.String(), "input must not be reordered")
	})

	t.Run("differs from last incremental value", func(t *testing.T) {
		records := []WeightRecord{weighIn(0, "300"), weighIn(10, "340"), weighIn(20, "350")}
		last := IncrementalADG(&records[1], records[2].Weight, records[2].RecordDate)
		series := SeriesADG(records)
		require.True(t, last.Valid)
		require.True(t, series.Valid)
		assert.True(t, last.Decimal.Equal(decimal.RequireFromString("1")))
		assert.True(t, series.Decimal.Equal(decimal.RequireFromString("2.5")))
	})

	t.Run("all on the same day", func(t *testing.T) {
		assert.False(t, SeriesADG([]WeightRecord{weighIn(0, "300"), weighIn(0, "305")}).Valid)
	})
}

func TestTotalGain(t *testing.T) {
	assert.True(t, TotalGain(nil).IsZero())
	gain := TotalGain([]WeightRecord{weighIn(30, "390"), weighIn(0, "300")})
	assert.Equal(t, "90", gain.String())
}

func TestRawMaterialLowStock(t *testing.T) {
	m := RawMaterial{CurrentStock: decimal.NewFromInt(100), MinStock: decimal.NewFromInt(150)}
	assert.True(t, m.LowStock())

	m.CurrentStock = decimal.NewFromInt(150)
	assert.False(t, m.LowStock())
}

func TestNormalizeSymptoms(t *testing.T) {
	got := NormalizeSymptoms([]string{" cough", "Fever", "", "cough", "fever ", "nasal discharge"})
	assert.Equal(t, []string{"cough", "Fever", "nasal discharge"}, got)
}

func TestCallerValid(t *testing.T) {
	assert.True(t, Caller{UserID: "u1", Role: RoleOperator}.Valid())
	assert.False(t, Caller{UserID: "", Role: RoleAdmin}.Valid())
	assert.False(t, Caller{UserID: "u1", Role: "VET"}.Valid())
	assert.True(t, SystemCaller.Valid())
}

func TestReportFilename(t *testing.T) {
	at := time.Date(2026, 10, 16, 23, 59, 0, 0, time.UTC)
	assert.Equal(t, "health-report-2026-10-16.csv", ReportFilename(ReportHealth, FormatCSV, at))
}
