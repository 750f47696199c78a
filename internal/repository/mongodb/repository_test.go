package mongodb

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"

	"github.com/mamadbah2/feedlot/internal/domain/models"
)

func snapshot(day int, fcr string) models.DashboardSnapshot {
	return models.DashboardSnapshot{
		Date:          time.Date(2024, 3, day, 0, 0, 0, 0, time.UTC),
		Population:    models.PopulationSummary{Total: 12, Active: 9, Sold: 2, Sick: 1},
		AverageADG:    "1.35",
		MortalityRate: "0",
		TotalRevenue:  "2400",
		TotalFeedCost: "310.5",
		Profit:        "2089.5",
		TotalFeedUsed: "820",
		FCR:           fcr,
		LowStockItems: []string{"Salt lick"},
		CreatedAt:     time.Date(2024, 3, day, 20, 0, 0, 0, time.UTC),
	}
}

func asDocument(t testing.TB, v interface{}) bson.D {
	t.Helper()
	raw, err := bson.Marshal(v)
	require.NoError(t, err)
	var doc bson.D
	require.NoError(t, bson.Unmarshal(raw, &doc))
	return doc
}

func TestSnapshotRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("save upserts by day", func(mt *mtest.T) {
		repo := newSnapshotRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}))

		require.NoError(mt, repo.SaveSnapshot(ctx, snapshot(1, "6.2")))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "update", evt.CommandName)
		assert.True(mt, evt.Command.Lookup("updates", "0", "upsert").Boolean())
		assert.Equal(mt, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), evt.Command.Lookup("updates", "0", "q", "date").Time().UTC())
		assert.Equal(mt, "2089.5", evt.Command.Lookup("updates", "0", "u", "profit").StringValue())
		assert.Equal(mt, "6.2", evt.Command.Lookup("updates", "0", "u", "fcr").StringValue())
	})

	mt.Run("fcr is left out when unknown", func(mt *mtest.T) {
		repo := newSnapshotRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}))

		require.NoError(mt, repo.SaveSnapshot(ctx, snapshot(2, "")))

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		_, err := evt.Command.LookupErr("updates", "0", "u", "fcr")
		assert.Error(mt, err)
	})

	mt.Run("save failure is wrapped", func(mt *mtest.T) {
		repo := newSnapshotRepository(mt.Coll)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 2, Name: "BadValue", Message: "bad"}))

		err := repo.SaveSnapshot(ctx, snapshot(3, ""))
		require.Error(mt, err)
		assert.Contains(mt, err.Error(), "failed to upsert dashboard snapshot")
	})

	mt.Run("list decodes newest first with limit", func(mt *mtest.T) {
		repo := newSnapshotRepository(mt.Coll)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		newer, older := snapshot(5, "5.9"), snapshot(4, "")
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			asDocument(mt, newer), asDocument(mt, older)))

		got, err := repo.ListSnapshots(ctx, 2)
		require.NoError(mt, err)
		require.Len(mt, got, 2)
		assert.Equal(mt, newer.Date, got[0].Date.UTC())
		assert.Equal(mt, newer.Population, got[0].Population)
		assert.Equal(mt, "5.9", got[0].FCR)
		assert.Equal(mt, []string{"Salt lick"}, got[0].LowStockItems)
		assert.Empty(mt, got[1].FCR)

		evt := mt.GetStartedEvent()
		require.NotNil(mt, evt)
		assert.Equal(mt, "find", evt.CommandName)
		assert.EqualValues(mt, 2, evt.Command.Lookup("limit").AsInt64())
		assert.EqualValues(mt, -1, evt.Command.Lookup("sort", "date").AsInt64())
	})
}
