package sales

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
	"github.com/mamadbah2/feedlot/internal/repository/sqlstore"
)

// Repository is the persistence surface the sales service needs.
type Repository interface {
	FindCattle(ctx context.Context, db *gorm.DB, id string) (*models.Cattle, error)
	UpdateCattleColumns(ctx context.Context, db *gorm.DB, id string, columns map[string]interface{}) error
	FindPurchaseByCattle(ctx context.Context, db *gorm.DB, cattleID string) (*models.Purchase, error)
	CreateSale(ctx context.Context, db *gorm.DB, sale *models.Sale) error
	FindSale(ctx context.Context, db *gorm.DB, id string) (*models.Sale, error)
	ListSales(ctx context.Context, db *gorm.DB, filter models.SaleFilter) ([]models.Sale, error)
}

// Service finalizes and reports cattle sales.
type Service struct {
	db      *gorm.DB
	repo    Repository
	authz   authz.Checker
	metrics *metrics.Metrics
	logger  *zap.Logger
}

// NewService wires a new sales service instance.
func NewService(db *gorm.DB, repo Repository, checker authz.Checker, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{db: db, repo: repo, authz: checker, metrics: m, logger: logger}
}

// CreateInput records a sale. Every field but BuyerContact and Notes is required.
type CreateInput struct {
	CattleID     string          `json:"cattleId"`
	FinalWeight  decimal.Decimal `json:"finalWeight"`
	SalePrice    decimal.Decimal `json:"salePrice"`
	BuyerName    string          `json:"buyerName"`
	BuyerContact string          `json:"buyerContact"`
	SaleDate     time.Time       `json:"saleDate"`
	Notes        string          `json:"notes"`
}

// Profit compares a sale with the animal's purchase. Purchase-derived fields are null
// when the animal was registered without a purchase.
type Profit struct {
	SaleID        string              `json:"saleId"`
	CattleID      string              `json:"cattleId"`
	SalePrice     decimal.Decimal     `json:"salePrice"`
	PurchasePrice decimal.NullDecimal `json:"purchasePrice"`
	Profit        decimal.NullDecimal `json:"profit"`
}

// Create finalizes a sale: the animal becomes SOLD at its final weight and the sale row is
// written in the same transaction. Selling an animal twice fails with ErrAlreadySold.
func (s *Service) Create(ctx context.Context, caller models.Caller, input CreateInput) (*models.Sale, error) {
	if err := s.authz.Authorize(caller, authz.ObjectSales, authz.ActionCreate); err != nil {
		return nil, err
	}
	sale, err := newSale(caller, input)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cattle, err := s.repo.FindCattle(ctx, tx, sale.CattleID)
		if err != nil {
			return fmt.Errorf("load cattle %s: %w", sale.CattleID, err)
		}
		if cattle.Status == models.CattleSold {
			return models.ErrAlreadySold
		}

		err = s.repo.UpdateCattleColumns(ctx, tx, cattle.ID, map[string]interface{}{
			"status":         models.CattleSold,
			"current_weight": sale.FinalWeight,
		})
		if err != nil {
			return fmt.Errorf("mark cattle sold: %w", err)
		}
		if err := s.repo.CreateSale(ctx, tx, sale); err != nil {
			if sqlstore.IsDuplicateKeyErr(err) {
				return models.ErrAlreadySold
			}
			return fmt.Errorf("insert sale: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.metrics.Sale(sale.SalePrice.InexactFloat64())
	s.logger.Info("cattle sold",
		zap.String("sale_id", sale.ID),
		zap.String("cattle_id", sale.CattleID),
		zap.String("price", sale.SalePrice.String()),
		zap.String("user_id", caller.UserID))
	return sale, nil
}

func newSale(caller models.Caller, input CreateInput) (*models.Sale, error) {
	cattleID := strings.TrimSpace(input.CattleID)
	buyer := strings.TrimSpace(input.BuyerName)
	switch {
	case cattleID == "":
		return nil, models.Invalid("cattleId", "is required")
	case buyer == "":
		return nil, models.Invalid("buyerName", "is required")
	case !input.FinalWeight.IsPositive():
		return nil, models.Invalid("finalWeight", "must be greater than zero")
	case input.SalePrice.IsNegative():
		return nil, models.Invalid("salePrice", "must not be negative")
	case input.SaleDate.IsZero():
		return nil, models.Invalid("saleDate", "is required")
	}

	return &models.Sale{
		CattleID:     cattleID,
		UserID:       caller.UserID,
		FinalWeight:  input.FinalWeight,
		SalePrice:    input.SalePrice,
		BuyerName:    buyer,
		BuyerContact: strings.TrimSpace(input.BuyerContact),
		SaleDate:     input.SaleDate.UTC(),
		Notes:        strings.TrimSpace(input.Notes),
	}, nil
}

func (s *Service) Get(ctx context.Context, caller models.Caller, id string) (*models.Sale, error) {
	if err := s.authz.Authorize(caller, authz.ObjectSales, authz.ActionView); err != nil {
		return nil, err
	}
	sale, err := s.repo.FindSale(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("load sale %s: %w", id, err)
	}
	return sale, nil
}

// List returns sales newest first.
func (s *Service) List(ctx context.Context, caller models.Caller, filter models.SaleFilter) ([]models.Sale, error) {
	if err := s.authz.Authorize(caller, authz.ObjectSales, authz.ActionView); err != nil {
		return nil, err
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, models.Invalid("to", "must not be before from")
	}
	sales, err := s.repo.ListSales(ctx, s.db, filter)
	if err != nil {
		return nil, fmt.Errorf("list sales: %w", err)
	}
	return sales, nil
}

// Summary aggregates every sale: count, revenue, average price and average final weight.
func (s *Service) Summary(ctx context.Context, caller models.Caller) (models.SalesSummary, error) {
	sales, err := s.List(ctx, caller, models.SaleFilter{})
	if err != nil {
		return models.SalesSummary{}, err
	}
	return Summarize(sales), nil
}

// Summarize aggregates the given sales. Averages are zero when there are none.
func Summarize(sales []models.Sale) models.SalesSummary {
	summary := models.SalesSummary{
		TotalSales:       len(sales),
		TotalRevenue:     decimal.Zero,
		AverageSalePrice: decimal.Zero,
		AverageWeight:    decimal.Zero,
	}
	if len(sales) == 0 {
		return summary
	}

	weight := decimal.Zero
	for _, sale := range sales {
		summary.TotalRevenue = summary.TotalRevenue.Add(sale.SalePrice)
		weight = weight.Add(sale.FinalWeight)
	}
	n := decimal.NewFromInt(int64(len(sales)))
	summary.AverageSalePrice = summary.TotalRevenue.Div(n).Round(2)
	summary.AverageWeight = weight.Div(n).Round(2)
	return summary
}

// Profit is the sale price minus the purchase price of the sold animal.
func (s *Service) Profit(ctx context.Context, caller models.Caller, saleID string) (Profit, error) {
	sale, err := s.Get(ctx, caller, saleID)
	if err != nil {
		return Profit{}, err
	}

	result := Profit{SaleID: sale.ID, CattleID: sale.CattleID, SalePrice: sale.SalePrice}
	purchase, err := s.repo.FindPurchaseByCattle(ctx, s.db, sale.CattleID)
	switch {
	case errors.Is(err, models.ErrNotFound):
		return result, nil
	case err != nil:
		return Profit{}, fmt.Errorf("load purchase for %s: %w", sale.CattleID, err)
	}

	result.PurchasePrice = decimal.NewNullDecimal(purchase.PurchasePrice)
	result.Profit = decimal.NewNullDecimal(sale.SalePrice.Sub(purchase.PurchasePrice))
	return result, nil
}
