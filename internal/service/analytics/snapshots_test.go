package analytics

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/feedlot/internal/domain/models"
	"github.com/mamadbah2/feedlot/internal/repository/sqlstore"
)

type memorySnapshots struct {
	saved []models.DashboardSnapshot
	limit int
}

func (m *memorySnapshots) SaveSnapshot(_ context.Context, snapshot models.DashboardSnapshot) error {
	m.saved = append(m.saved, snapshot)
	return nil
}

func (m *memorySnapshots) ListSnapshots(_ context.Context, limit int) ([]models.DashboardSnapshot, error) {
	m.limit = limit
	return m.saved, nil
}

func TestArchiveSnapshot(t *testing.T) {
	ctx := context.Background()
	svc, db := newTestService(t)
	seedHerd(t, db)

	require.NoError(t, sqlstore.New().CreateRawMaterial(ctx, db, &models.RawMaterial{
		Name: "Salt lick", Category: models.CategoryMineral, Unit: "bag",
		CurrentStock: dec("100"), MinStock: dec("150"), PricePerUnit: dec("2"),
	}))

	_, err := svc.ArchiveSnapshot(ctx, models.SystemCaller)
	assert.ErrorIs(t, err, ErrSnapshotsDisabled)

	store := &memorySnapshots{}
	svc.UseSnapshotStore(store)

	dashboard, err := svc.ArchiveSnapshot(ctx, models.SystemCaller)
	require.NoError(t, err)
	require.Len(t, store.saved, 1)

	snap := store.saved[0]
	assert.Equal(t, dashboard.Population, snap.Population)
	assert.Equal(t, time.Date(2024, 3, 1, 0, 0, 0, 0, time.UTC), snap.Date)
	assert.Equal(t, []string{"Salt lick"}, snap.LowStockItems)
	assert.Equal(t, dashboard.Financial.TotalRevenue.String(), snap.TotalRevenue)
}

func TestSnapshotsListing(t *testing.T) {
	ctx := context.Background()
	svc, _ := newTestService(t)

	_, err := svc.Snapshots(ctx, manager, 0)
	assert.ErrorIs(t, err, ErrSnapshotsDisabled)

	store := &memorySnapshots{saved: []models.DashboardSnapshot{{AverageADG: "1.5"}}}
	svc.UseSnapshotStore(store)

	got, err := svc.Snapshots(ctx, manager, 0)
	require.NoError(t, err)
	assert.Len(t, got, 1)
	assert.Equal(t, DefaultSnapshotLimit, store.limit)

	_, err = svc.Snapshots(ctx, models.Caller{UserID: "u-op", Role: models.RoleOperator}, 5)
	assert.ErrorIs(t, err, models.ErrForbidden)
}
