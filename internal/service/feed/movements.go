package feed

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mamadbah2/feedlot/internal/authz"
	"github.com/mamadbah2/feedlot/internal/domain/models"
)

// RecordPurchase stores a feed purchase and adds its quantity to stock in one transaction.
// The total cost is quantity times unit price.
func (s *Service) RecordPurchase(ctx context.Context, caller models.Caller, input PurchaseInput) (*models.RawMaterialPurchase, error) {
	if err := s.authz.Authorize(caller, authz.ObjectFeed, authz.ActionPurchase); err != nil {
		return nil, err
	}
	materialID := strings.TrimSpace(input.RawMaterialID)
	supplierID := strings.TrimSpace(input.SupplierID)
	switch {
	case materialID == "":
		return nil, models.Invalid("rawMaterialId", "is required")
	case supplierID == "":
		return nil, models.Invalid("supplierId", "is required")
	case !input.Quantity.IsPositive():
		return nil, models.Invalid("quantity", "must be greater than zero")
	case models.ExceedsQuantityScale(input.Quantity):
		return nil, models.Invalid("quantity", scaleMessage)
	case input.UnitPrice.IsNegative():
		return nil, models.Invalid("unitPrice", "must not be negative")
	}
	date := input.PurchaseDate.UTC()
	if date.IsZero() {
		date = s.now()
	}

	purchase := &models.RawMaterialPurchase{
		RawMaterialID: materialID,
		SupplierID:    supplierID,
		PurchaseDate:  date,
		Quantity:      input.Quantity,
		UnitPrice:     input.UnitPrice,
		TotalCost:     input.Quantity.Mul(input.UnitPrice),
		Notes:         strings.TrimSpace(input.Notes),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.repo.FindSupplier(ctx, tx, supplierID); err != nil {
			return fmt.Errorf("load supplier %s: %w", supplierID, err)
		}
		if err := s.repo.IncrementStock(ctx, tx, materialID, purchase.Quantity); err != nil {
			return fmt.Errorf("add stock %s: %w", materialID, err)
		}
		if err := s.repo.CreateRawMaterialPurchase(ctx, tx, purchase); err != nil {
			return fmt.Errorf("insert feed purchase: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("feed purchased",
		zap.String("raw_material_id", materialID),
		zap.String("quantity", purchase.Quantity.String()),
		zap.String("total_cost", purchase.TotalCost.String()))
	return purchase, nil
}

func (s *Service) ListPurchases(ctx context.Context, caller models.Caller, rawMaterialID string) ([]models.RawMaterialPurchase, error) {
	if err := s.authz.Authorize(caller, authz.ObjectFeed, authz.ActionView); err != nil {
		return nil, err
	}
	purchases, err := s.repo.ListRawMaterialPurchases(ctx, s.db, rawMaterialID)
	if err != nil {
		return nil, fmt.Errorf("list feed purchases: %w", err)
	}
	return purchases, nil
}

// RecordUsage takes feed out of stock and stores the usage row in one transaction. When
// stock is short nothing is written and ErrInsufficientStock is returned.
func (s *Service) RecordUsage(ctx context.Context, caller models.Caller, input UsageInput) (*models.FeedUsage, error) {
	if err := s.authz.Authorize(caller, authz.ObjectFeed, authz.ActionUse); err != nil {
		return nil, err
	}
	materialID := strings.TrimSpace(input.RawMaterialID)
	if materialID == "" {
		return nil, models.Invalid("rawMaterialId", "is required")
	}
	if !input.Quantity.IsPositive() {
		return nil, models.Invalid("quantity", "must be greater than zero")
	}
	if models.ExceedsQuantityScale(input.Quantity) {
		return nil, models.Invalid("quantity", scaleMessage)
	}
	date := input.UsageDate.UTC()
	if date.IsZero() {
		date = s.now()
	}

	usage := &models.FeedUsage{
		RawMaterialID: materialID,
		CattleGroupID: strings.TrimSpace(input.CattleGroupID),
		UserID:        caller.UserID,
		UsageDate:     date,
		Quantity:      input.Quantity,
		Notes:         strings.TrimSpace(input.Notes),
	}
	if input.RationID != nil && strings.TrimSpace(*input.RationID) != "" {
		rationID := strings.TrimSpace(*input.RationID)
		usage.RationID = &rationID
	}

	var unit string
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		material, err := s.repo.FindRawMaterial(ctx, tx, materialID)
		if err != nil {
			return fmt.Errorf("load raw material %s: %w", materialID, err)
		}
		unit = material.Unit
		if usage.RationID != nil {
			if _, err := s.repo.FindRation(ctx, tx, *usage.RationID); err != nil {
				return fmt.Errorf("load ration %s: %w", *usage.RationID, err)
			}
		}
		if err := s.repo.DecrementStock(ctx, tx, materialID, usage.Quantity); err != nil {
			return fmt.Errorf("take stock %s: %w", materialID, err)
		}
		if err := s.repo.CreateFeedUsage(ctx, tx, usage); err != nil {
			return fmt.Errorf("insert feed usage: %w", err)
		}
		return nil
	})
	if err != nil {
		if errors.Is(err, models.ErrInsufficientStock) {
			s.metrics.StockRejected()
			s.logger.Warn("feed usage rejected",
				zap.String("raw_material_id", materialID),
				zap.String("quantity", usage.Quantity.String()),
				zap.Error(err))
		}
		return nil, err
	}

	s.metrics.FeedUsed(unit, usage.Quantity.InexactFloat64())
	s.logger.Info("feed used",
		zap.String("raw_material_id", materialID),
		zap.String("quantity", usage.Quantity.String()),
		zap.String("user_id", caller.UserID))
	return usage, nil
}

// ListUsage returns feed usage newest first.
func (s *Service) ListUsage(ctx context.Context, caller models.Caller, filter models.UsageFilter) ([]models.FeedUsage, error) {
	if err := s.authz.Authorize(caller, authz.ObjectFeed, authz.ActionView); err != nil {
		return nil, err
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, models.Invalid("to", "must not be before from")
	}
	usage, err := s.repo.ListFeedUsage(ctx, s.db, filter)
	if err != nil {
		return nil, fmt.Errorf("list feed usage: %w", err)
	}
	return usage, nil
}
