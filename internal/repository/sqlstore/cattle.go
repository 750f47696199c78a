package sqlstore

import (
	"context"
	"errors"

	"gorm.io/gorm"

	"github.com/mamadbah2/feedlot/internal/domain/models"
)

func (s *Store) CreateCattle(ctx context.Context, db *gorm.DB, cattle *models.Cattle) error {
	return scoped(ctx, db).Create(cattle).Error
}

func (s *Store) FindCattle(ctx context.Context, db *gorm.DB, id string) (*models.Cattle, error) {
	var cattle models.Cattle
	if err := scoped(ctx, db).Where("id = ?", id).First(&cattle).Error; err != nil {
		return nil, notFound(err)
	}
	return &cattle, nil
}

func (s *Store) FindCattleByTag(ctx context.Context, db *gorm.DB, tag string) (*models.Cattle, error) {
	var cattle models.Cattle
	if err := scoped(ctx, db).Where("tag = ?", tag).First(&cattle).Error; err != nil {
		return nil, notFound(err)
	}
	return &cattle, nil
}

// ListCattle returns cattle newest first.
func (s *Store) ListCattle(ctx context.Context, db *gorm.DB, filter models.CattleFilter) ([]models.Cattle, error) {
	stmt := scoped(ctx, db).Model(&models.Cattle{})
	if filter.Status != "" {
		stmt = stmt.Where("status = ?", filter.Status)
	}
	if filter.Location != "" {
		stmt = stmt.Where("location = ?", filter.Location)
	}
	if filter.Breed != "" {
		stmt = stmt.Where("breed = ?", filter.Breed)
	}

	var cattle []models.Cattle
	if err := stmt.Order("created_at desc, id desc").Find(&cattle).Error; err != nil {
		return nil, err
	}
	return cattle, nil
}

// UpdateCattle writes every column of cattle.
func (s *Store) UpdateCattle(ctx context.Context, db *gorm.DB, cattle *models.Cattle) error {
	return scoped(ctx, db).Save(cattle).Error
}

// UpdateCattleColumns sets the given columns on one animal.
func (s *Store) UpdateCattleColumns(ctx context.Context, db *gorm.DB, id string, columns map[string]interface{}) error {
	res := scoped(ctx, db).Model(&models.Cattle{}).Where("id = ?", id).Updates(columns)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

// CountCattleByStatus returns the number of animals per status. Missing statuses are absent.
func (s *Store) CountCattleByStatus(ctx context.Context, db *gorm.DB) (map[models.CattleStatus]int64, error) {
	var rows []struct {
		Status string
		Total  int64
	}
	err := scoped(ctx, db).Model(&models.Cattle{}).
		Select("status, COUNT(*) AS total").
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}

	counts := make(map[models.CattleStatus]int64, len(rows))
	for _, row := range rows {
		counts[models.CattleStatus(row.Status)] = row.Total
	}
	return counts, nil
}

func (s *Store) RecentCattle(ctx context.Context, db *gorm.DB, limit int) ([]models.Cattle, error) {
	var cattle []models.Cattle
	err := scoped(ctx, db).Order("created_at desc, id desc").Limit(limit).Find(&cattle).Error
	return cattle, err
}

func (s *Store) CreatePurchase(ctx context.Context, db *gorm.DB, purchase *models.Purchase) error {
	return scoped(ctx, db).Create(purchase).Error
}

func (s *Store) FindPurchaseByCattle(ctx context.Context, db *gorm.DB, cattleID string) (*models.Purchase, error) {
	var purchase models.Purchase
	if err := scoped(ctx, db).Where("cattle_id = ?", cattleID).First(&purchase).Error; err != nil {
		return nil, notFound(err)
	}
	return &purchase, nil
}

func (s *Store) CreateInduction(ctx context.Context, db *gorm.DB, induction *models.Induction) error {
	return scoped(ctx, db).Create(induction).Error
}

func (s *Store) ListInductions(ctx context.Context, db *gorm.DB, cattleID string) ([]models.Induction, error) {
	var inductions []models.Induction
	err := scoped(ctx, db).Where("cattle_id = ?", cattleID).
		Order("induction_date desc, id desc").
		Find(&inductions).Error
	return inductions, err
}

// LatestWeightRecord returns the most recent weigh-in of an animal, or nil when it has none.
func (s *Store) LatestWeightRecord(ctx context.Context, db *gorm.DB, cattleID string) (*models.WeightRecord, error) {
	var record models.WeightRecord
	err := scoped(ctx, db).Where("cattle_id = ?", cattleID).
		Order("record_date desc, created_at desc").
		First(&record).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func (s *Store) CreateWeightRecord(ctx context.Context, db *gorm.DB, record *models.WeightRecord) error {
	return scoped(ctx, db).Omit("Cattle").Create(record).Error
}

// ListWeightRecords returns an animal's weigh-ins oldest first.
func (s *Store) ListWeightRecords(ctx context.Context, db *gorm.DB, cattleID string) ([]models.WeightRecord, error) {
	var records []models.WeightRecord
	err := scoped(ctx, db).Where("cattle_id = ?", cattleID).
		Order("record_date asc, created_at asc").
		Find(&records).Error
	return records, err
}

// AllWeightRecords returns every weigh-in grouped by animal, oldest first within each animal.
func (s *Store) AllWeightRecords(ctx context.Context, db *gorm.DB) ([]models.WeightRecord, error) {
	var records []models.WeightRecord
	err := scoped(ctx, db).Order("cattle_id asc, record_date asc, created_at asc").Find(&records).Error
	return records, err
}

// RecentWeightRecords returns the newest weigh-ins with their animal loaded.
func (s *Store) RecentWeightRecords(ctx context.Context, db *gorm.DB, limit int) ([]models.WeightRecord, error) {
	var records []models.WeightRecord
	err := scoped(ctx, db).Preload("Cattle").
		Order("record_date desc, created_at desc").
		Limit(limit).
		Find(&records).Error
	return records, err
}

func (s *Store) CountWeightRecords(ctx context.Context, db *gorm.DB) (int64, error) {
	var total int64
	err := scoped(ctx, db).Model(&models.WeightRecord{}).Count(&total).Error
	return total, err
}
