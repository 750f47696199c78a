package health

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mamadbah2/feedlot/internal/authz"
	"github.com/mamadbah2/feedlot/internal/domain/models"
)

// Repository is the persistence surface the health service needs.
type Repository interface {
	FindCattle(ctx context.Context, db *gorm.DB, id string) (*models.Cattle, error)
	CreateHealthRecord(ctx context.Context, db *gorm.DB, record *models.HealthRecord) error
	FindHealthRecord(ctx context.Context, db *gorm.DB, id string) (*models.HealthRecord, error)
	UpdateHealthRecord(ctx context.Context, db *gorm.DB, record *models.HealthRecord) error
	ListHealthRecords(ctx context.Context, db *gorm.DB, filter models.HealthFilter) ([]models.HealthRecord, error)
}

// Service records illness and treatment episodes.
type Service struct {
	db     *gorm.DB
	repo   Repository
	authz  authz.Checker
	logger *zap.Logger
	now    func() time.Time
}

// NewService wires a new health service instance.
func NewService(db *gorm.DB, repo Repository, checker authz.Checker, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:     db,
		repo:   repo,
		authz:  checker,
		logger: logger,
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// CreateInput opens a health record. Status defaults to active, StartDate to now.
type CreateInput struct {
	CattleID   string     `json:"cattleId"`
	Symptoms   []string   `json:"symptoms"`
	Diagnosis  string     `json:"diagnosis"`
	Treatment  string     `json:"treatment"`
	Medication string     `json:"medication"`
	Status     string     `json:"status"`
	StartDate  time.Time  `json:"startDate"`
	EndDate    *time.Time `json:"endDate"`
	Notes      string     `json:"notes"`
}

// UpdateInput edits a health record. Nil fields are left unchanged.
type UpdateInput struct {
	Symptoms   *[]string  `json:"symptoms"`
	Diagnosis  *string    `json:"diagnosis"`
	Treatment  *string    `json:"treatment"`
	Medication *string    `json:"medication"`
	Status     *string    `json:"status"`
	EndDate    *time.Time `json:"endDate"`
	Notes      *string    `json:"notes"`
}

func (s *Service) Create(ctx context.Context, caller models.Caller, input CreateInput) (*models.HealthRecord, error) {
	if err := s.authz.Authorize(caller, authz.ObjectHealth, authz.ActionCreate); err != nil {
		return nil, err
	}
	cattleID := strings.TrimSpace(input.CattleID)
	if cattleID == "" {
		return nil, models.Invalid("cattleId", "is required")
	}
	status := models.HealthActive
	if strings.TrimSpace(input.Status) != "" {
		parsed, ok := models.ParseHealthStatus(input.Status)
		if !ok {
			return nil, models.Invalid("status", "must be active, recovered, chronic or deceased")
		}
		status = parsed
	}
	start := input.StartDate.UTC()
	if start.IsZero() {
		start = s.now()
	}
	var end *time.Time
	if input.EndDate != nil {
		utc := input.EndDate.UTC()
		if utc.Before(start) {
			return nil, models.Invalid("endDate", "must not be before startDate")
		}
		end = &utc
	}

	record := &models.HealthRecord{
		CattleID:   cattleID,
		UserID:     caller.UserID,
		Symptoms:   models.NormalizeSymptoms(input.Symptoms),
		Diagnosis:  strings.TrimSpace(input.Diagnosis),
		Treatment:  strings.TrimSpace(input.Treatment),
		Medication: strings.TrimSpace(input.Medication),
		Status:     status,
		StartDate:  start,
		EndDate:    end,
		Notes:      strings.TrimSpace(input.Notes),
	}

	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if _, err := s.repo.FindCattle(ctx, tx, cattleID); err != nil {
			return fmt.Errorf("load cattle %s: %w", cattleID, err)
		}
		if err := s.repo.CreateHealthRecord(ctx, tx, record); err != nil {
			return fmt.Errorf("insert health record: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	s.logger.Info("health record created",
		zap.String("record_id", record.ID),
		zap.String("cattle_id", cattleID),
		zap.String("status", string(status)),
		zap.String("user_id", caller.UserID))
	return record, nil
}

func (s *Service) Get(ctx context.Context, caller models.Caller, id string) (*models.HealthRecord, error) {
	if err := s.authz.Authorize(caller, authz.ObjectHealth, authz.ActionView); err != nil {
		return nil, err
	}
	record, err := s.repo.FindHealthRecord(ctx, s.db, id)
	if err != nil {
		return nil, fmt.Errorf("load health record %s: %w", id, err)
	}
	return record, nil
}

// List returns records by start date, newest first.
func (s *Service) List(ctx context.Context, caller models.Caller, filter models.HealthFilter) ([]models.HealthRecord, error) {
	if err := s.authz.Authorize(caller, authz.ObjectHealth, authz.ActionView); err != nil {
		return nil, err
	}
	if filter.From != nil && filter.To != nil && filter.To.Before(*filter.From) {
		return nil, models.Invalid("to", "must not be before from")
	}
	records, err := s.repo.ListHealthRecords(ctx, s.db, filter)
	if err != nil {
		return nil, fmt.Errorf("list health records: %w", err)
	}
	return records, nil
}

func (s *Service) Update(ctx context.Context, caller models.Caller, id string, input UpdateInput) (*models.HealthRecord, error) {
	if err := s.authz.Authorize(caller, authz.ObjectHealth, authz.ActionUpdate); err != nil {
		return nil, err
	}

	var updated *models.HealthRecord
	err := s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		record, err := s.repo.FindHealthRecord(ctx, tx, id)
		if err != nil {
			return fmt.Errorf("load health record %s: %w", id, err)
		}
		if err := applyUpdate(record, input); err != nil {
			return err
		}
		if err := s.repo.UpdateHealthRecord(ctx, tx, record); err != nil {
			return fmt.Errorf("update health record %s: %w", id, err)
		}
		updated = record
		return nil
	})
	if err != nil {
		return nil, err
	}
	return updated, nil
}

func applyUpdate(record *models.HealthRecord, input UpdateInput) error {
	if input.Status != nil {
		status, ok := models.ParseHealthStatus(*input.Status)
		if !ok {
			return models.Invalid("status", "must be active, recovered, chronic or deceased")
		}
		record.Status = status
	}
	if input.EndDate != nil {
		if input.EndDate.Before(record.StartDate) {
			return models.Invalid("endDate", "must not be before startDate")
		}
		end := input.EndDate.UTC()
		record.EndDate = &end
	}
	if input.Symptoms != nil {
		record.Symptoms = models.NormalizeSymptoms(*input.Symptoms)
	}
	if input.Diagnosis != nil {
		record.Diagnosis = strings.TrimSpace(*input.Diagnosis)
	}
	if input.Treatment != nil {
		record.Treatment = strings.TrimSpace(*input.Treatment)
	}
	if input.Medication != nil {
		record.Medication = strings.TrimSpace(*input.Medication)
	}
	if input.Notes != nil {
		record.Notes = strings.TrimSpace(*input.Notes)
	}
	return nil
}

// CattleHealthMetrics summarizes one animal's records. The health index is the share of
// recovered records, 100 when the animal has none.
func (s *Service) CattleHealthMetrics(ctx context.Context, caller models.Caller, cattleID string) (models.CattleHealthMetrics, error) {
	if err := s.authz.Authorize(caller, authz.ObjectHealth, authz.ActionView); err != nil {
		return models.CattleHealthMetrics{}, err
	}
	if _, err := s.repo.FindCattle(ctx, s.db, cattleID); err != nil {
		return models.CattleHealthMetrics{}, fmt.Errorf("load cattle %s: %w", cattleID, err)
	}
	records, err := s.repo.ListHealthRecords(ctx, s.db, models.HealthFilter{CattleID: cattleID})
	if err != nil {
		return models.CattleHealthMetrics{}, fmt.Errorf("list health records: %w", err)
	}
	return summarize(records), nil
}

func summarize(records []models.HealthRecord) models.CattleHealthMetrics {
	m := models.CattleHealthMetrics{TotalRecords: len(records), HealthIndex: decimal.NewFromInt(100)}
	for _, r := range records {
		switch r.Status {
		case models.HealthActive:
			m.Active++
		case models.HealthRecovered:
			m.Recovered++
		case models.HealthChronic:
			m.Chronic++
		}
	}
	if m.TotalRecords > 0 {
		m.HealthIndex = decimal.NewFromInt(int64(m.Recovered)).
			Mul(decimal.NewFromInt(100)).
			Div(decimal.NewFromInt(int64(m.TotalRecords))).
			Round(2)
	}
	return m
}
