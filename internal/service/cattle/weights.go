package cattle

import (
	"context"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mamadbah2/feedlot/internal/authz"
	"github.com/mamadbah2/feedlot/internal/domain/models"
)

// RecordWeight stores a weigh-in with its ADG against the previous record and moves the
// animal's current weight to the new value.
func (s *Service) RecordWeight(ctx context.Context, caller models.Caller, input WeightInput) (*models.WeightRecord, error) {
	if err := s.authz.Authorize(caller, authz.ObjectCattle, authz.ActionWeigh); err != nil {
		return nil, err
	}
	cattleID := strings.TrimSpace(input.CattleID)
	if cattleID == "" {
		return nil, models.Invalid("cattleId", "is required")
	}
	if !input.Weight.IsPositive() {
		return nil, models.Invalid("weight", "must be greater than zero")
	}
	date := input.RecordDate.UTC()
	if date.IsZero() {
		date = s.now()
	}

	record := &models.WeightRecord{
		CattleID:   cattleID,
		Weight:     input.Weight,
		RecordDate: date,
		Notes:      strings.TrimSpace(input.Notes),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cattle, err := s.repo.FindCattle(ctx, tx, cattleID)
		if err != nil {
			return fmt.Errorf("load cattle %s: %w", cattleID, err)
		}
		if cattle.Status == models.CattleSold {
			return models.ErrCattleSold
		}

		prior, err := s.repo.LatestWeightRecord(ctx, tx, cattleID)
		if err != nil {
			return fmt.Errorf("load prior weight: %w", err)
		}
		record.ADG = models.IncrementalADG(prior, record.Weight, record.RecordDate)

		if err := s.repo.CreateWeightRecord(ctx, tx, record); err != nil {
			return fmt.Errorf("insert weight record: %w", err)
		}
		if err := s.repo.UpdateCattleColumns(ctx, tx, cattleID, map[string]interface{}{"current_weight": record.Weight}); err != nil {
			return fmt.Errorf("update current weight: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.WeighIn()
	fields := []zap.Field{
		zap.String("cattle_id", cattleID),
		zap.String("weight", record.Weight.String()),
		zap.String("user_id", caller.UserID),
	}
	if record.ADG.Valid {
		fields = append(fields, zap.String("adg", record.ADG.Decimal.StringFixed(3)))
	}
	s.logger.Info("weight recorded", fields...)
	return record, nil
}

// WeightHistory returns an animal's weigh-ins oldest first.
func (s *Service) WeightHistory(ctx context.Context, caller models.Caller, cattleID string) ([]models.WeightRecord, error) {
	if err := s.authz.Authorize(caller, authz.ObjectCattle, authz.ActionView); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindCattle(ctx, s.db, cattleID); err != nil {
		return nil, fmt.Errorf("load cattle %s: %w", cattleID, err)
	}
	records, err := s.repo.ListWeightRecords(ctx, s.db, cattleID)
	if err != nil {
		return nil, fmt.Errorf("list weight records: %w", err)
	}
	return records, nil
}

// AverageDailyGain recomputes ADG over the animal's whole history, first to last weigh-in.
// It is independent of the per-record values stored at write time.
func (s *Service) AverageDailyGain(ctx context.Context, caller models.Caller, cattleID string) (decimal.NullDecimal, error) {
	records, err := s.WeightHistory(ctx, caller, cattleID)
	if err != nil {
		return decimal.NullDecimal{}, err
	}
	return models.SeriesADG(records), nil
}
