package sqlstore

import (
	"context"

	"gorm.io/gorm"

	"github.com/mamadbah2/feedlot/internal/domain/models"
)

func (s *Store) CreateHealthRecord(ctx context.Context, db *gorm.DB, record *models.HealthRecord) error {
	return scoped(ctx, db).Omit("Cattle").Create(record).Error
}

func (s *Store) FindHealthRecord(ctx context.Context, db *gorm.DB, id string) (*models.HealthRecord, error) {
	var record models.HealthRecord
	if err := scoped(ctx, db).Preload("Cattle").Where("id = ?", id).First(&record).Error; err != nil {
		return nil, notFound(err)
	}
	return &record, nil
}

func (s *Store) UpdateHealthRecord(ctx context.Context, db *gorm.DB, record *models.HealthRecord) error {
	return scoped(ctx, db).Omit("Cattle").Save(record).Error
}

// ListHealthRecords returns records by start date, newest first.
func (s *Store) ListHealthRecords(ctx context.Context, db *gorm.DB, filter models.HealthFilter) ([]models.HealthRecord, error) {
	stmt := scoped(ctx, db).Model(&models.HealthRecord{}).Preload("Cattle")
	if filter.CattleID != "" {
		stmt = stmt.Where("cattle_id = ?", filter.CattleID)
	}
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	stmt = dateRange(stmt, "start_date", filter.From, filter.To)

	var records []models.HealthRecord
	if err := stmt.Order("start_date desc, id desc").Find(&records).Error; err != nil {
		return nil, err
	}
	return records, nil
}

// CountHealthByStatus returns the number of records per status.
func (s *Store) CountHealthByStatus(ctx context.Context, db *gorm.DB) (map[models.HealthStatus]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := scoped(ctx, db).Model(&models.HealthRecord{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.HealthStatus]int64, len(rows))
	for _, row := range rows {
		counts[models.HealthStatus(row.Status)] = row.Total
	}
	return counts, nil
}

// RecentHealthRecords returns the latest records by start date with their animal loaded.
func (s *Store) RecentHealthRecords(ctx context.Context, db *gorm.DB, limit int) ([]models.HealthRecord, error) {
	var records []models.HealthRecord
	err := scoped(ctx, db).Preload("Cattle").
		Order("start_date desc, created_at desc").
		Limit(limit).
		Find(&records).Error
	return records, err
}
