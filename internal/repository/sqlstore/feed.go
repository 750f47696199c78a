package sqlstore

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"github.com/mamadbah2/feedlot/internal/domain/models"
)

func (s *Store) CreateSupplier(ctx context.Context, db *gorm.DB, supplier *models.Supplier) error {
	return scoped(ctx, db).Create(supplier).Error
}

func (s *Store) FindSupplier(ctx context.Context, db *gorm.DB, id string) (*models.Supplier, error) {
	var supplier models.Supplier
	if err := scoped(ctx, db).Where("id = ?", id).First(&supplier).Error; err != nil {
		return nil, notFound(err)
	}
	return &supplier, nil
}

func (s *Store) ListSuppliers(ctx context.Context, db *gorm.DB) ([]models.Supplier, error) {
	var suppliers []models.Supplier
	err := scoped(ctx, db).Order("name asc, id asc").Find(&suppliers).Error
	return suppliers, err
}

func (s *Store) CreateRawMaterial(ctx context.Context, db *gorm.DB, material *models.RawMaterial) error {
	return scoped(ctx, db).Omit("Supplier").Create(material).Error
}

func (s *Store) FindRawMaterial(ctx context.Context, db *gorm.DB, id string) (*models.RawMaterial, error) {
	var material models.RawMaterial
	if err := scoped(ctx, db).Preload("Supplier").Where("id = ?", id).First(&material).Error; err != nil {
		return nil, notFound(err)
	}
	return &material, nil
}

// ListRawMaterials returns materials ordered by name.
func (s *Store) ListRawMaterials(ctx context.Context, db *gorm.DB, filter models.RawMaterialFilter) ([]models.RawMaterial, error) {
	stmt := scoped(ctx, db).Model(&models.RawMaterial{}).Preload("Supplier")
	if filter.Category != "" {
		stmt = stmt.Where("category = ?", filter.Category)
	}
	if filter.LowStock {
		stmt = stmt.Where("current_stock < min_stock")
	}

	var materials []models.RawMaterial
	if err := stmt.Order("name asc, id asc").Find(&materials).Error; err != nil {
		return nil, err
	}
	return materials, nil
}

// DecrementStock subtracts qty only while enough stock remains. A missing material yields
// ErrNotFound, a short one ErrInsufficientStock; neither changes the row. Callers run it inside
// a transaction so the read and the write see the same row.
func (s *Store) DecrementStock(ctx context.Context, db *gorm.DB, id string, qty decimal.Decimal) error {
	stock, err := lockedStock(ctx, db, id)
	if err != nil {
		return err
	}
	if qty.GreaterThan(stock) {
		return models.ErrInsufficientStock
	}
	return writeStock(ctx, db, id, stock.Sub(qty))
}

// IncrementStock adds qty with no upper bound.
func (s *Store) IncrementStock(ctx context.Context, db *gorm.DB, id string, qty decimal.Decimal) error {
	stock, err := lockedStock(ctx, db, id)
	if err != nil {
		return err
	}
	return writeStock(ctx, db, id, stock.Add(qty))
}

// lockedStock reads the current stock, taking a row lock where the dialect has one. SQLite
// serializes writers on its single connection instead.
func lockedStock(ctx context.Context, db *gorm.DB, id string) (decimal.Decimal, error) {
	stmt := scoped(ctx, db).Select("id", "current_stock").Where("id = ?", id)
	if db.Dialector.Name() == "postgres" {
		stmt = stmt.Clauses(clause.Locking{Strength: "UPDATE"})
	}

	var material models.RawMaterial
	if err := stmt.Take(&material).Error; err != nil {
		return decimal.Zero, notFound(err)
	}
	return material.CurrentStock.Round(models.QuantityScale), nil
}

func writeStock(ctx context.Context, db *gorm.DB, id string, stock decimal.Decimal) error {
	res := scoped(ctx, db).Model(&models.RawMaterial{}).
		Where("id = ?", id).
		Update("current_stock", stock.Round(models.QuantityScale))
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return models.ErrNotFound
	}
	return nil
}

func (s *Store) CreateRawMaterialPurchase(ctx context.Context, db *gorm.DB, purchase *models.RawMaterialPurchase) error {
	return scoped(ctx, db).Create(purchase).Error
}

func (s *Store) ListRawMaterialPurchases(ctx context.Context, db *gorm.DB, rawMaterialID string) ([]models.RawMaterialPurchase, error) {
	stmt := scoped(ctx, db).Model(&models.RawMaterialPurchase{})
	if rawMaterialID != "" {
		stmt = stmt.Where("raw_material_id = ?", rawMaterialID)
	}
	var purchases []models.RawMaterialPurchase
	err := stmt.Order("purchase_date desc, id desc").Find(&purchases).Error
	return purchases, err
}

func (s *Store) CreateFeedUsage(ctx context.Context, db *gorm.DB, usage *models.FeedUsage) error {
	return scoped(ctx, db).Omit("RawMaterial").Create(usage).Error
}

// ListFeedUsage returns usage newest first with the material loaded.
func (s *Store) ListFeedUsage(ctx context.Context, db *gorm.DB, filter models.UsageFilter) ([]models.FeedUsage, error) {
	stmt := scoped(ctx, db).Model(&models.FeedUsage{}).Preload("RawMaterial")
	if filter.RawMaterialID != "" {
		stmt = stmt.Where("raw_material_id = ?", filter.RawMaterialID)
	}
	if filter.CattleGroupID != "" {
		stmt = stmt.Where("cattle_group_id = ?", filter.CattleGroupID)
	}
	stmt = dateRange(stmt, "usage_date", filter.From, filter.To)

	var usage []models.FeedUsage
	if err := stmt.Order("usage_date desc, id desc").Find(&usage).Error; err != nil {
		return nil, err
	}
	return usage, nil
}

// CreateRation inserts the ration and its ingredient rows.
func (s *Store) CreateRation(ctx context.Context, db *gorm.DB, ration *models.Ration) error {
	return scoped(ctx, db).Create(ration).Error
}

func (s *Store) FindRation(ctx context.Context, db *gorm.DB, id string) (*models.Ration, error) {
	var ration models.Ration
	err := scoped(ctx, db).Preload("Ingredients", orderedIngredients).Where("id = ?", id).First(&ration).Error
	if err != nil {
		return nil, notFound(err)
	}
	return &ration, nil
}

func (s *Store) ListRations(ctx context.Context, db *gorm.DB, filter models.RationFilter) ([]models.Ration, error) {
	stmt := scoped(ctx, db).Model(&models.Ration{}).Preload("Ingredients", orderedIngredients)
	if filter.IsActive != nil {
		stmt = stmt.Where("is_active = ?", *filter.IsActive)
	}
	if filter.TargetGroup != "" {
		stmt = stmt.Where("target_group = ?", filter.TargetGroup)
	}

	var rations []models.Ration
	if err := stmt.Order("name asc, id asc").Find(&rations).Error; err != nil {
		return nil, err
	}
	return rations, nil
}

func orderedIngredients(db *gorm.DB) *gorm.DB {
	return db.Order("position asc")
}
