package cattle

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

// Repository is the persistence surface the cattle service needs.
type Repository interface {
	CreateCattle(ctx context.Context, db *gorm.DB, cattle *models.Cattle) error
	FindCattle(ctx context.Context, db *gorm.DB, id string) (*models.Cattle, error)
	FindCattleByTag(ctx context.Context, db *gorm.DB, tag string) (*models.Cattle, error)
	ListCattle(ctx context.Context, db *gorm.DB, filter models.CattleFilter) ([]models.Cattle, error)
	UpdateCattle(ctx context.Context, db *gorm.DB, cattle *models.Cattle) error
	UpdateCattleColumns(ctx context.Context, db *gorm.DB, id string, columns map[string]interface{}) error
	FindSupplier(ctx context.Context, db *gorm.DB, id string) (*models.Supplier, error)
	CreatePurchase(ctx context.Context, db *gorm.DB, purchase *models.Purchase) error
	CreateInduction(ctx context.Context, db *gorm.DB, induction *models.Induction) error
	ListInductions(ctx context.Context, db *gorm.DB, cattleID string) ([]models.Induction, error)
	LatestWeightRecord(ctx context.Context, db *gorm.DB, cattleID string) (*models.WeightRecord, error)
	CreateWeightRecord(ctx context.Context, db *gorm.DB, record *models.WeightRecord) error
	ListWeightRecords(ctx context.Context, db *gorm.DB, cattleID string) ([]models.WeightRecord, error)
}

// Service manages animals, their intake records and their weight history.
type Service struct {
	db      *gorm.DB
	repo    Repository
	authz   authz.Checker
	metrics *metrics.Metrics
	logger  *zap.Logger
	now     func() time.Time
}

// NewService wires a new cattle service instance.
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

// CreateInput registers an animal already on the lot.
type CreateInput struct {
	Tag           string          `json:"tag"`
	Breed         string          `json:"breed"`
	Gender        string          `json:"gender"`
	InitialWeight decimal.Decimal `json:"initialWeight"`
	Status        string          `json:"status"`
	Location      string          `json:"location"`
	Notes         string          `json:"notes"`
}

// UpdateInput carries the editable attributes. Nil fields are left unchanged.
type UpdateInput struct {
	Breed    *string `json:"breed"`
	Gender   *string `json:"gender"`
	Status   *string `json:"status"`
	Location *string `json:"location"`
	Notes    *string `json:"notes"`
}

// PurchaseInput registers a newly bought animal together with its purchase record.
type PurchaseInput struct {
	CreateInput
	SupplierID    string          `json:"supplierId"`
	PurchaseDate  time.Time       `json:"purchaseDate"`
	PurchasePrice decimal.Decimal `json:"purchasePrice"`
	PurchaseNotes string          `json:"purchaseNotes"`
}

// InductionInput records intake processing for an animal.
type InductionInput struct {
	CattleID       string    `json:"cattleId"`
	InductionDate  time.Time `json:"inductionDate"`
	QuarantineDays int       `json:"quarantineDays"`
	Treatment      string    `json:"treatment"`
	Status         string    `json:"status"`
	Notes          string    `json:"notes"`
}

// WeightInput is one weigh-in. A zero RecordDate means now.
type WeightInput struct {
	CattleID   string          `json:"cattleId"`
	Weight     decimal.Decimal `json:"weight"`
	RecordDate time.Time       `json:"recordDate"`
	Notes      string          `json:"notes"`
}

// Create registers an animal. Current weight starts at the initial weight.
func (s *Service) Create(ctx context.Context, caller models.Caller, input CreateInput) (*models.Cattle, error) {
	if err := s.authz.Authorize(caller, authz.ObjectCattle, authz.ActionCreate); err != nil {
		return nil, err
	}
	cattle, err := newCattle(input)
	if err != nil {
		return nil, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		return s.insertCattle(ctx, tx, cattle)
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("cattle registered", zap.String("cattle_id", cattle.ID), zap.String("tag", cattle.Tag), zap.String("user_id", caller.UserID))
	return cattle, nil
}

// Purchase registers a bought animal and its purchase record atomically.
func (s *Service) Purchase(ctx context.Context, caller models.Caller, input PurchaseInput) (*models.Cattle, *models.Purchase, error) {
	if err := s.authz.Authorize(caller, authz.ObjectCattle, authz.ActionPurchase); err != nil {
		return nil, nil, err
	}
	cattle, err := newCattle(input.CreateInput)
	if err != nil {
		return nil, nil, err
	}
	supplierID := strings.TrimSpace(input.SupplierID)
	if supplierID == "" {
		return nil, nil, models.Invalid("supplierId", "is required")
	}
	if input.PurchasePrice.IsNegative() {
		return nil, nil, models.Invalid("purchasePrice", "must not be negative")
	}
	purchaseDate := input.PurchaseDate.UTC()
	if purchaseDate.IsZero() {
		purchaseDate = s.now()
	}

	purchase := &models.Purchase{
		SupplierID:    supplierID,
		PurchaseDate:  purchaseDate,
		InitialWeight: cattle.InitialWeight,
		PurchasePrice: input.PurchasePrice,
		Notes:         strings.TrimSpace(input.PurchaseNotes),
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.repo.FindSupplier(ctx, tx, supplierID); err != nil {
			return fmt.Errorf("load supplier %s: %w", supplierID, err)
		}
		if err := s.insertCattle(ctx, tx, cattle); err != nil {
			return err
		}
		purchase.CattleID = cattle.ID
		if err := s.repo.CreatePurchase(ctx, tx, purchase); err != nil {
			return fmt.Errorf("insert purchase: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, nil, err
	}

	s.logger.Info("cattle purchased",
		zap.String("cattle_id", cattle.ID),
		zap.String("tag", cattle.Tag),
		zap.String("supplier_id", supplierID),
		zap.String("price", purchase.PurchasePrice.String()))
	return cattle, purchase, nil
}

func (s *Service) insertCattle(ctx context.Context, tx *gorm.DB, cattle *models.Cattle) error {
	existing, err := s.repo.FindCattleByTag(ctx, tx, cattle.Tag)
	switch {
	case err == nil && existing != nil:
		return models.ErrDuplicateTag
	case err != nil && !errors.Is(err, models.ErrNotFound):
		return fmt.Errorf("check tag %s: %w", cattle.Tag, err)
	}

	if err := s.repo.CreateCattle(ctx, tx, cattle); err != nil {
		if sqlstore.IsDuplicateKeyErr(err) {
			return models.ErrDuplicateTag
		}
		return fmt.Errorf("insert cattle: %w", err)
	}
	return nil
}

// Get loads one animal by id.
func (s *Service) Get(ctx context.Context, caller models.Caller, id string) (*models.Cattle, error) {
	if err := s.authz.Authorize(caller, authz.ObjectCattle, authz.ActionView); err != nil {
		return nil, err
	}
	cattle, err := s.repo.FindCattle(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("load cattle %s: %w", id, err)
	}
	return cattle, nil
}

// GetByTag loads one animal by its ear tag.
func (s *Service) GetByTag(ctx context.Context, caller models.Caller, tag string) (*models.Cattle, error) {
	if err := s.authz.Authorize(caller, authz.ObjectCattle, authz.ActionView); err != nil {
		return nil, err
	}
	cattle, err := s.repo.FindCattleByTag(ctx, s.db, strings.TrimSpace(tag))
	if err != nil {
		return nil, fmt.Errorf("load cattle tag %s: %w", tag, err)
	}
	return cattle, nil
}

// List returns cattle newest first.
func (s *Service) List(ctx context.Context, caller models.Caller, filter models.CattleFilter) ([]models.Cattle, error) {
	if err := s.authz.Authorize(caller, authz.ObjectCattle, authz.ActionView); err != nil {
		return nil, err
	}
	cattle, err := s.repo.ListCattle(ctx, s.db, filter)
	if err != nil {
		return nil, fmt.Errorf("list cattle: %w", err)
	}
	return cattle, nil
}

// Update edits an animal. SOLD is terminal and only reachable through a sale.
func (s *Service) Update(ctx context.Context, caller models.Caller, id string, input UpdateInput) (*models.Cattle, error) {
	if err := s.authz.Authorize(caller, authz.ObjectCattle, authz.ActionUpdate); err != nil {
		return nil, err
	}

	var updated *models.Cattle
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		cattle, err := s.repo.FindCattle(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("load cattle %s: %w", id, err)
		}
		if err := applyUpdate(cattle, input); err != nil {
			return err
		}
		if err := s.repo.UpdateCattle(ctx, tx, cattle); err != nil {
			return fmt.Errorf("update cattle %s: %w", id, err)
		}
		updated = cattle
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func applyUpdate(cattle *models.Cattle, input UpdateInput) error {
	if input.Breed != nil {
		breed := strings.TrimSpace(*input.Breed)
		if breed == "" {
			return models.Invalid("breed", "must not be empty")
		}
		cattle.Breed = breed
	}
	if input.Gender != nil {
		gender, ok := models.ParseGender(*input.Gender)
		if !ok {
			return models.Invalid("gender", "must be MALE or FEMALE")
		}
		cattle.Gender = gender
	}
	if input.Status != nil {
		status, ok := models.ParseCattleStatus(*input.Status)
		if !ok {
			return models.Invalid("status", "is not a known cattle status")
		}
		if status != cattle.Status {
			if cattle.Status == models.CattleSold {
				return models.ErrCattleSold
			}
			if status == models.CattleSold {
				return models.Invalid("status", "is set by recording a sale")
			}
		}
		cattle.Status = status
	}
	if input.Location != nil {
		cattle.Location = strings.TrimSpace(*input.Location)
	}
	if input.Notes != nil {
		cattle.Notes = strings.TrimSpace(*input.Notes)
	}
	return nil
}

// RecordInduction stores intake processing for an animal.
func (s *Service) RecordInduction(ctx context.Context, caller models.Caller, input InductionInput) (*models.Induction, error) {
	if err := s.authz.Authorize(caller, authz.ObjectCattle, authz.ActionUpdate); err != nil {
		return nil, err
	}
	status, ok := models.ParseInductionStatus(input.Status)
	if !ok {
		return nil, models.Invalid("status", "must be quarantine, healthy, treatment or recovered")
	}
	if input.QuarantineDays < 0 {
		return nil, models.Invalid("quarantineDays", "must not be negative")
	}
	date := input.InductionDate.UTC()
	if date.IsZero() {
		date = s.now()
	}

	induction := &models.Induction{
		CattleID:       strings.TrimSpace(input.CattleID),
		InductionDate:  date,
		QuarantineDays: input.QuarantineDays,
		Treatment:      strings.TrimSpace(input.Treatment),
		Status:         status,
		Notes:          strings.TrimSpace(input.Notes),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.repo.FindCattle(ctx, tx, induction.CattleID); err != nil {
			return fmt.Errorf("load cattle %s: %w", induction.CattleID, err)
		}
		if err := s.repo.CreateInduction(ctx, tx, induction); err != nil {
			return fmt.Errorf("insert induction: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return induction, nil
}

// Inductions lists an animal's intake records, newest first.
func (s *Service) Inductions(ctx context.Context, caller models.Caller, cattleID string) ([]models.Induction, error) {
	if err := s.authz.Authorize(caller, authz.ObjectCattle, authz.ActionView); err != nil {
		return nil, err
	}
	if _, err := s.repo.FindCattle(ctx, s.db, cattleID); err != nil {
		return nil, fmt.Errorf("load cattle %s: %w", cattleID, err)
	}
	inductions, err := s.repo.ListInductions(ctx, s.db, cattleID)
	if err != nil {
		return nil, fmt.Errorf("list inductions: %w", err)
	}
	return inductions, nil
}

func newCattle(input CreateInput) (*models.Cattle, error) {
	tag := strings.TrimSpace(input.Tag)
	if tag == "" {
		return nil, models.Invalid("tag", "is required")
	}
	breed := strings.TrimSpace(input.Breed)
	if breed == "" {
		return nil, models.Invalid("breed", "is required")
	}
	gender, ok := models.ParseGender(input.Gender)
	if !ok {
		return nil, models.Invalid("gender", "must be MALE or FEMALE")
	}
	if !input.InitialWeight.IsPositive() {
		return nil, models.Invalid("initialWeight", "must be greater than zero")
	}

	status := models.CattleActive
	if strings.TrimSpace(input.Status) != "" {
		parsed, ok := models.ParseCattleStatus(input.Status)
		if !ok {
			return nil, models.Invalid("status", "is not a known cattle status")
		}
		if parsed == models.CattleSold {
			return nil, models.Invalid("status", "is set by recording a sale")
		}
		status = parsed
	}

	return &models.Cattle{
		Tag:           tag,
		Breed:         breed,
		Gender:        gender,
		InitialWeight: input.InitialWeight,
		CurrentWeight: input.InitialWeight,
		Status:        status,
		Location:      strings.TrimSpace(input.Location),
		Notes:         strings.TrimSpace(input.Notes),
	}, nil
}
