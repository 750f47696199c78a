package analytics

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/mamadbah2/feedlot/internal/authz"
	"github.com/mamadbah2/feedlot/internal/domain/models"
)

// ErrSnapshotsDisabled is returned when no snapshot archive is configured.
var ErrSnapshotsDisabled = errors.New("dashboard snapshot archive is not configured")

// DefaultSnapshotLimit is how many archived snapshots are listed when no limit is given.
const DefaultSnapshotLimit = 30

// SnapshotStore archives daily dashboard snapshots.
type SnapshotStore interface {
	SaveSnapshot(ctx context.Context, snapshot models.DashboardSnapshot) error
	ListSnapshots(ctx context.Context, limit int) ([]models.DashboardSnapshot, error)
}

// UseSnapshotStore enables snapshot archiving.
func (s *Service) UseSnapshotStore(store SnapshotStore) {
	s.snapshots = store
}

// ArchiveSnapshot computes the dashboard and stores its flattened form together with the
// names of materials below minimum stock.
func (s *Service) ArchiveSnapshot(ctx context.Context, caller models.Caller) (models.Dashboard, error) {
	if s.snapshots == nil {
		return models.Dashboard{}, ErrSnapshotsDisabled
	}
	dashboard, err := s.Dashboard(ctx, caller)
	if err != nil {
		return models.Dashboard{}, err
	}
	lowStock, err := s.repo.ListRawMaterials(ctx, s.db, models.RawMaterialFilter{LowStock: true})
	if err != nil {
		return models.Dashboard{}, fmt.Errorf("list low stock: %w", err)
	}

	snapshot := models.NewDashboardSnapshot(dashboard, lowStock, s.now())
	if err := s.snapshots.SaveSnapshot(ctx, snapshot); err != nil {
		return models.Dashboard{}, fmt.Errorf("save snapshot: %w", err)
	}

	s.logger.Info("dashboard snapshot archived",
		zap.Time("date", snapshot.Date),
		zap.Int("low_stock_items", len(snapshot.LowStockItems)))
	return dashboard, nil
}

// Snapshots lists archived snapshots, newest first.
func (s *Service) Snapshots(ctx context.Context, caller models.Caller, limit int) ([]models.DashboardSnapshot, error) {
	if err := s.authz.Authorize(caller, authz.ObjectDashboard, authz.ActionView); err != nil {
		return nil, err
	}
	if s.snapshots == nil {
		return nil, ErrSnapshotsDisabled
	}
	if limit <= 0 {
		limit = DefaultSnapshotLimit
	}
	snapshots, err := s.snapshots.ListSnapshots(ctx, limit)
	if err != nil {
		return nil, fmt.Errorf("list snapshots: %w", err)
	}
	return snapshots, nil
}
