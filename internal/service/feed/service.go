package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mamadbah2/feedlot/internal/authz"
	"github.com/mamadbah2/feedlot/internal/domain/models"
	"github.com/mamadbah2/feedlot/internal/metrics"
)

// Repository is the persistence surface the feed service needs.
type Repository interface {
	CreateSupplier(ctx context.Context, db *gorm.DB, supplier *models.Supplier) error
	FindSupplier(ctx context.Context, db *gorm.DB, id string) (*models.Supplier, error)
	ListSuppliers(ctx context.Context, db *gorm.DB) ([]models.Supplier, error)
	CreateRawMaterial(ctx context.Context, db *gorm.DB, material *models.RawMaterial) error
	FindRawMaterial(ctx context.Context, db *gorm.DB, id string) (*models.RawMaterial, error)
	ListRawMaterials(ctx context.Context, db *gorm.DB, filter models.RawMaterialFilter) ([]models.RawMaterial, error)
	DecrementStock(ctx context.Context, db *gorm.DB, id string, qty decimal.Decimal) error
	IncrementStock(ctx context.Context, db *gorm.DB, id string, qty decimal.Decimal) error
	CreateRawMaterialPurchase(ctx context.Context, db *gorm.DB, purchase *models.RawMaterialPurchase) error
	ListRawMaterialPurchases(ctx context.Context, db *gorm.DB, rawMaterialID string) ([]models.RawMaterialPurchase, error)
	CreateFeedUsage(ctx context.Context, db *gorm.DB, usage *models.FeedUsage) error
	ListFeedUsage(ctx context.Context, db *gorm.DB, filter models.UsageFilter) ([]models.FeedUsage, error)
	CreateRation(ctx context.Context, db *gorm.DB, ration *models.Ration) error
	FindRation(ctx context.Context, db *gorm.DB, id string) (*models.Ration, error)
	ListRations(ctx context.Context, db *gorm.DB, filter models.RationFilter) ([]models.Ration, error)
}

// Service manages feed inventory: materials, suppliers, stock movements and rations.
type Service struct {
	db      *gorm.DB
	repo    Repository
	authz   authz.Checker
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a new feed service instance.
func NewService(db *gorm.DB, repo Repository, checker authz.Checker, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:      db,
		repo:    repo,
		authz:   checker,
		metrics: m,
		logger:  logger,
		now:     func() time.Time { return time.Now().UTC() },
	}
}

var scaleMessage = fmt.Sprintf("must have at most %d decimal places", models.QuantityScale)

type SupplierInput struct {
	Name    string `json:"name"`
	Contact string `json:"contact"`
	Notes   string `json:"notes"`
}

type RawMaterialInput struct {
	Name         string          `json:"name"`
	Category     string          `json:"category"`
	Unit         string          `json:"unit"`
	CurrentStock decimal.Decimal `json:"currentStock"`
	MinStock     decimal.Decimal `json:"minStock"`
	PricePerUnit decimal.Decimal `json:"pricePerUnit"`
	SupplierID   *string         `json:"supplierId"`
	Notes        string          `json:"notes"`
}

// PurchaseInput brings feed into inventory.
type PurchaseInput struct {
	RawMaterialID string          `json:"rawMaterialId"`
	SupplierID    string          `json:"supplierId"`
	PurchaseDate  time.Time       `json:"purchaseDate"`
	Quantity      decimal.Decimal `json:"quantity"`
	UnitPrice     decimal.Decimal `json:"unitPrice"`
	Notes         string          `json:"notes"`
}

// UsageInput takes feed out of inventory.
type UsageInput struct {
	RawMaterialID string          `json:"rawMaterialId"`
	RationID      *string         `json:"rationId"`
	CattleGroupID string          `json:"cattleGroupId"`
	UsageDate     time.Time       `json:"usageDate"`
	Quantity      decimal.Decimal `json:"quantity"`
	Notes         string          `json:"notes"`
}

type IngredientInput struct {
	RawMaterialID string          `json:"rawMaterialId"`
	Quantity      decimal.Decimal `json:"quantity"`
}

// RationInput defines a ration. IsActive defaults to true.
type RationInput struct {
	Name             string                 `json:"name"`
	Description      string                 `json:"description"`
	NutritionalValue map[string]interface{} `json:"nutritionalValue"`
	TargetGroup      string                 `json:"targetGroup"`
	IsActive         *bool                  `json:"isActive"`
	Ingredients      []IngredientInput      `json:"ingredients"`
}

func (s *Service) CreateSupplier(ctx context.Context, caller models.Caller, input SupplierInput) (*models.Supplier, error) {
	if err := s.authz.Authorize(caller, authz.ObjectFeed, authz.ActionCreate); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, models.Invalid("name", "is required")
	}

	supplier := &models.Supplier{
		Name:    name,
		Contact: strings.TrimSpace(input.Contact),
		Notes:   strings.TrimSpace(input.Notes),
	}
	if err := s.repo.CreateSupplier(ctx, s.db, supplier); err != nil {
		return nil, fmt.Errorf("insert supplier: %w", err)
	}
	return supplier, nil
}

func (s *Service) ListSuppliers(ctx context.Context, caller models.Caller) ([]models.Supplier, error) {
	if err := s.authz.Authorize(caller, authz.ObjectFeed, authz.ActionView); err != nil {
		return nil, err
	}
	suppliers, err := s.repo.ListSuppliers(ctx, s.db)
	if err != nil {
		return nil, fmt.Errorf("list suppliers: %w", err)
	}
	return suppliers, nil
}

func (s *Service) CreateRawMaterial(ctx context.Context, caller models.Caller, input RawMaterialInput) (*models.RawMaterial, error) {
	if err := s.authz.Authorize(caller, authz.ObjectFeed, authz.ActionCreate); err != nil {
		return nil, err
	}
	material, err := newRawMaterial(input)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if material.SupplierID != nil {
			if _, err := s.repo.FindSupplier(ctx, tx, *material.SupplierID); err != nil {
				return fmt.Errorf("load supplier %s: %w", *material.SupplierID, err)
			}
		}
		if err := s.repo.CreateRawMaterial(ctx, tx, material); err != nil {
			return fmt.Errorf("insert raw material: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return material, nil
}

func newRawMaterial(input RawMaterialInput) (*models.RawMaterial, error) {
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, models.Invalid("name", "is required")
	}
	category, ok := models.ParseMaterialCategory(input.Category)
	if !ok {
		return nil, models.Invalid("category", "must be grain, hay, supplement, mineral or other")
	}
	unit, ok := models.ParseUnit(input.Unit)
	if !ok {
		return nil, models.Invalid("unit", "must be kg, ton, bag, liter or other")
	}
	switch {
	case input.CurrentStock.IsNegative():
		return nil, models.Invalid("currentStock", "must not be negative")
	case input.MinStock.IsNegative():
		return nil, models.Invalid("minStock", "must not be negative")
	case models.ExceedsQuantityScale(input.CurrentStock):
		return nil, models.Invalid("currentStock", scaleMessage)
	case models.ExceedsQuantityScale(input.MinStock):
		return nil, models.Invalid("minStock", scaleMessage)
	case input.PricePerUnit.IsNegative():
		return nil, models.Invalid("pricePerUnit", "must not be negative")
	}

	var supplierID *string
	if input.SupplierID != nil && strings.TrimSpace(*input.SupplierID) != "" {
		id := strings.TrimSpace(*input.SupplierID)
		supplierID = &id
	}

	return &models.RawMaterial{
		Name:         name,
		Category:     category,
		Unit:         unit,
		CurrentStock: input.CurrentStock,
		MinStock:     input.MinStock,
		PricePerUnit: input.PricePerUnit,
		SupplierID:   supplierID,
		Notes:        strings.TrimSpace(input.Notes),
	}, nil
}

func (s *Service) GetRawMaterial(ctx context.Context, caller models.Caller, id string) (*models.RawMaterial, error) {
	if err := s.authz.Authorize(caller, authz.ObjectFeed, authz.ActionView); err != nil {
		return nil, err
	}
	material, err := s.repo.FindRawMaterial(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("load raw material %s: %w", id, err)
	}
	return material, nil
}

func (s *Service) ListRawMaterials(ctx context.Context, caller models.Caller, filter models.RawMaterialFilter) ([]models.RawMaterial, error) {
	if err := s.authz.Authorize(caller, authz.ObjectFeed, authz.ActionView); err != nil {
		return nil, err
	}
	materials, err := s.repo.ListRawMaterials(ctx, s.db, filter)
	if err != nil {
		return nil, fmt.Errorf("list raw materials: %w", err)
	}
	return materials, nil
}

// LowStock lists materials whose current stock is below their minimum.
func (s *Service) LowStock(ctx context.Context, caller models.Caller) ([]models.RawMaterial, error) {
	return s.ListRawMaterials(ctx, caller, models.RawMaterialFilter{LowStock: true})
}

// AdjustStock adds to or subtracts from a material's stock. A subtraction larger than the
// current stock fails with ErrInsufficientStock and changes nothing.
func (s *Service) AdjustStock(ctx context.Context, caller models.Caller, id string, qty decimal.Decimal, op models.StockOperation) (*models.RawMaterial, error) {
	if err := s.authz.Authorize(caller, authz.ObjectFeed, authz.ActionUpdate); err != nil {
		return nil, err
	}
	if !qty.IsPositive() {
		return nil, models.Invalid("quantity", "must be greater than zero")
	}
	if models.ExceedsQuantityScale(qty) {
		return nil, models.Invalid("quantity", scaleMessage)
	}

	var material *models.RawMaterial
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		var err error
		switch op {
		case models.StockAdd:
			err = s.repo.IncrementStock(ctx, tx, id, qty)
		case models.StockSubtract:
			err = s.repo.DecrementStock(ctx, tx, id, qty)
		default:
			return models.Invalid("operation", "must be add or subtract")
		}
		if err != nil {
			return fmt.Errorf("%s stock %s: %w", op, id, err)
		}
		material, err = s.repo.FindRawMaterial(ctx, tx, id)
		return err
	})
	if err != nil {
		if errors.Is(err, models.ErrInsufficientStock) {
			s.metrics.StockRejected()
		}
		return nil, err
	}

	s.logger.Info("stock adjusted",
		zap.String("raw_material_id", id),
		zap.String("operation", string(op)),
		zap.String("quantity", qty.String()),
		zap.String("stock", material.CurrentStock.String()),
		zap.String("user_id", caller.UserID))
	return material, nil
}
