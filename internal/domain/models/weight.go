package models

import (
	"math"
	"sort"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// WeightRecord is one weigh-in. ADG is relative to the animal's previous weigh-in and is
// null when there was none or when the day delta was not positive.
type WeightRecord struct {
	ID         string              `gorm:"primaryKey;type:varchar(36)" json:"id"`
	CattleID   string              `gorm:"type:varchar(36);not null;index:idx_weight_cattle_date,priority:1" json:"cattleId"`
	Weight     decimal.Decimal     `gorm:"type:decimal(10,2);not null" json:"weight"`
	RecordDate time.Time           `gorm:"not null;index:idx_weight_cattle_date,priority:2" json:"recordDate"`
	ADG        decimal.NullDecimal `gorm:"column:adg;type:decimal(12,4)" json:"adg"`
	Notes      string              `gorm:"type:text" json:"notes"`
	CreatedAt  time.Time           `json:"createdAt"`

	Cattle *Cattle `gorm:"foreignKey:CattleID" json:"cattle,omitempty"`
}

func (w *WeightRecord) BeforeCreate(*gorm.DB) error {
	if w.ID == "" {
		w.ID = uuid.NewString()
	}
	return nil
}

// DaysBetween returns the whole number of days from one instant to another, floored.
func DaysBetween(from, to time.Time) int {
	return int(math.Floor(to.Sub(from).Hours() / 24))
}

// IncrementalADG is the write-time gain: the new weight against the single preceding record.
func IncrementalADG(prior *WeightRecord, weight decimal.Decimal, date time.Time) decimal.NullDecimal {
	if prior == nil {
		return decimal.NullDecimal{}
	}
	return gainPerDay(prior.Weight, prior.RecordDate, weight, date)
}

// SeriesADG is the whole-history gain: first record to last record in chronological order.
// The input is not modified.
func SeriesADG(records []WeightRecord) decimal.NullDecimal {
	if len(records) < 2 {
		return decimal.NullDecimal{}
	}
	sorted := SortedByDate(records)
	first, last := sorted[0], sorted[len(sorted)-1]
	return gainPerDay(first.Weight, first.RecordDate, last.Weight, last.RecordDate)
}

// TotalGain is last minus first weight over the chronological series; zero with fewer than two records.
func TotalGain(records []WeightRecord) decimal.Decimal {
	if len(records) < 2 {
		return decimal.Zero
	}
	sorted := SortedByDate(records)
	return sorted[len(sorted)-1].Weight.Sub(sorted[0].Weight)
}

// SortedByDate returns a copy ordered by record date ascending.
func SortedByDate(records []WeightRecord) []WeightRecord {
	sorted := make([]WeightRecord, len(records))
	copy(sorted, records)
	sort.SliceStable(sorted, func(i, j int) bool {
		return sorted[i].RecordDate.Before(sorted[j].RecordDate)
	})
	return sorted
}

func gainPerDay(fromWeight decimal.Decimal, from time.Time, toWeight decimal.Decimal, to time.Time) decimal.NullDecimal {
	days := DaysBetween(from, to)
	if days <= 0 {
		return decimal.NullDecimal{}
	}
	return decimal.NewNullDecimal(toWeight.Sub(fromWeight).Div(decimal.NewFromInt(int64(days))))
}
