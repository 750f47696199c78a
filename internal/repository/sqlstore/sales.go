package sqlstore

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/mamadbah2/feedlot/internal/domain/models"
)

func (s *Store) CreateSale(ctx context.Context, db *gorm.DB, sale *models.Sale) error {
	return scoped(ctx, db).Omit("Cattle").Create(sale).Error
}

func (s *Store) FindSale(ctx context.Context, db *gorm.DB, id string) (*models.Sale, error) {
	var sale models.Sale
	if err := scoped(ctx, db).Preload("Cattle").Where("id = ?", id).First(&sale).Error; err != nil {
		return nil, notFound(err)
	}
	return &sale, nil
}

// ListSales returns sales newest first. BuyerName matches as a case-insensitive substring.
func (s *Store) ListSales(ctx context.Context, db *gorm.DB, filter models.SaleFilter) ([]models.Sale, error) {
	stmt := scoped(ctx, db).Model(&models.Sale{}).Preload("Cattle")
	if filter.CattleID != "" {
		stmt = stmt.Where("cattle_id = ?", filter.CattleID)
	}
	if name := strings.TrimSpace(filter.BuyerName); name != "" {
		stmt = stmt.Where("LOWER(buyer_name) LIKE ?", "%"+strings.ToLower(name)+"%")
	}
	stmt = dateRange(stmt, "sale_date", filter.From, filter.To)

	var sales []models.Sale
	if err := stmt.Order("sale_date desc, id desc").Find(&sales).Error; err != nil {
		return nil, err
	}
	return sales, nil
}

// RecentSales returns the latest sales by sale date with their animal loaded.
func (s *Store) RecentSales(ctx context.Context, db *gorm.DB, limit int) ([]models.Sale, error) {
	var sales []models.Sale
	err := scoped(ctx, db).Preload("Cattle").
		Order("sale_date desc, created_at desc").
		Limit(limit).
		Find(&sales).Error
	return sales, err
}
