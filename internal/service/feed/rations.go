package feed

import (
	"context"
	"fmt"
	"strings"

	"gorm.io/gorm"

	"github.com/mamadbah2/feedlot/internal/authz"
	"github.com/mamadbah2/feedlot/internal/domain/models"
)

// CreateRation stores a ration with its ingredients in the given order. Every ingredient must
// reference an existing material.
func (s *Service) CreateRation(ctx context.Context, caller models.Caller, input RationInput) (*models.Ration, error) {
	if err := s.authz.Authorize(caller, authz.ObjectFeed, authz.ActionCreate); err != nil {
		return nil, err
	}
	name := strings.TrimSpace(input.Name)
	if name == "" {
		return nil, models.Invalid("name", "is required")
	}
	if len(input.Ingredients) == 0 {
		return nil, models.Invalid("ingredients", "at least one ingredient is required")
	}

	ration := &models.Ration{
		Name:             name,
		Description:      strings.TrimSpace(input.Description),
		NutritionalValue: input.NutritionalValue,
		TargetGroup:      strings.TrimSpace(input.TargetGroup),
		IsActive:         true,
		Ingredients:      make([]models.RationIngredient, 0, len(input.Ingredients)),
	}
	if input.IsActive != nil {
		ration.IsActive = *input.IsActive
	}
	for i, ing := range input.Ingredients {
		field := fmt.Sprintf("ingredients[%d]", i)
		materialID := strings.TrimSpace(ing.RawMaterialID)
		if materialID == "" {
			return nil, models.Invalid(field+".rawMaterialId", "is required")
		}
		if !ing.Quantity.IsPositive() {
			return nil, models.Invalid(field+".quantity", "must be greater than zero")
		}
		if models.ExceedsQuantityScale(ing.Quantity) {
			return nil, models.Invalid(field+".quantity", scaleMessage)
		}
		ration.Ingredients = append(ration.Ingredients, models.RationIngredient{
			RawMaterialID: materialID,
			Quantity:      ing.Quantity,
			Position:      i,
		})
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		for _, ing := range ration.Ingredients {
			if _, err := s.repo.FindRawMaterial(ctx, tx, ing.RawMaterialID); err != nil {
				return fmt.Errorf("load raw material %s: %w", ing.RawMaterialID, err)
			}
		}
		if err := s.repo.CreateRation(ctx, tx, ration); err != nil {
			return fmt.Errorf("insert ration: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return ration, nil
}

func (s *Service) GetRation(ctx context.Context, caller models.Caller, id string) (*models.Ration, error) {
	if err := s.authz.Authorize(caller, authz.ObjectFeed, authz.ActionView); err != nil {
		return nil, err
	}
	ration, err := s.repo.FindRation(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("load ration %s: %w", id, err)
	}
	return ration, nil
}

func (s *Service) ListRations(ctx context.Context, caller models.Caller, filter models.RationFilter) ([]models.Ration, error) {
	if err := s.authz.Authorize(caller, authz.ObjectFeed, authz.ActionView); err != nil {
		return nil, err
	}
	rations, err := s.repo.ListRations(ctx, s.db, filter)
	if err != nil {
		return nil, fmt.Errorf("list rations: %w", err)
	}
	return rations, nil
}
