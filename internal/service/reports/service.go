package reports

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mamadbah2/feedlot/internal/authz"
	"github.com/mamadbah2/feedlot/internal/domain/models"
	"github.com/mamadbah2/feedlot/internal/metrics"
)

// ErrPublishingDisabled is returned by Publish when no publisher is configured.
var ErrPublishingDisabled = errors.New("report publishing is not configured")

// Repository is the read surface the report builders need.
type Repository interface {
	ListCattle(ctx context.Context, db *gorm.DB, filter models.CattleFilter) ([]models.Cattle, error)
	ListSales(ctx context.Context, db *gorm.DB, filter models.SaleFilter) ([]models.Sale, error)
	ListHealthRecords(ctx context.Context, db *gorm.DB, filter models.HealthFilter) ([]models.HealthRecord, error)
	ListRawMaterials(ctx context.Context, db *gorm.DB, filter models.RawMaterialFilter) ([]models.RawMaterial, error)
}

// Publisher pushes a report table to an external destination.
type Publisher interface {
	PublishTable(ctx context.Context, table models.Table) error
}

// Service builds downloadable reports from the entity lists.
type Service struct {
	db        *gorm.DB
	repo      Repository
	authz     authz.Checker
	publisher Publisher
	metrics   *metrics.Metrics
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires a new report service. publisher may be nil.
func NewService(db *gorm.DB, repo Repository, checker authz.Checker, publisher Publisher, m *metrics.Metrics, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		db:        db,
		repo:      repo,
		authz:     checker,
		publisher: publisher,
		metrics:   m,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// dataset is one report: the entity list for JSON and its tabular form for CSV, PDF and Sheets.
type dataset struct {
	table    models.Table
	entities interface{}
}

// Table returns the tabular form of a report.
func (s *Service) Table(ctx context.Context, caller models.Caller, reportType models.ReportType) (models.Table, error) {
	if err := s.authz.Authorize(caller, authz.ObjectReport, authz.ActionView); err != nil {
		return models.Table{}, err
	}
	ds, err := s.load(ctx, reportType)
	if err != nil {
		return models.Table{}, err
	}
	return ds.table, nil
}

// Generate renders a report in the requested format. CSV and JSON output is byte-identical
// across calls while the underlying records are unchanged.
func (s *Service) Generate(ctx context.Context, caller models.Caller, reportType models.ReportType, format models.ReportFormat) (*models.Document, error) {
	if err := s.authz.Authorize(caller, authz.ObjectReport, authz.ActionView); err != nil {
		return nil, err
	}
	if _, ok := models.ParseReportFormat(string(format)); !ok {
		return nil, models.Invalid("format", "must be csv, json or pdf")
	}
	ds, err := s.load(ctx, reportType)
	if err != nil {
		return nil, err
	}

	var body []byte
	switch format {
	case models.FormatCSV:
		body, err = renderCSV(ds.table)
	case models.FormatJSON:
		body, err = renderJSON(ds.entities)
	case models.FormatPDF:
		body, err = renderPDF(ds.table, s.now())
	}
	if err != nil {
		return nil, fmt.Errorf("render %s %s report: %w", reportType, format, err)
	}

	s.metrics.ReportGenerated(string(reportType), string(format))
	s.logger.Info("report generated",
		zap.String("type", string(reportType)),
		zap.String("format", string(format)),
		zap.Int("rows", len(ds.table.Rows)),
		zap.String("user_id", caller.UserID))

	return &models.Document{
		Filename:    models.ReportFilename(reportType, format, s.now()),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

// Publish writes a report table to the configured publisher.
func (s *Service) Publish(ctx context.Context, caller models.Caller, reportType models.ReportType) (models.Table, error) {
	if err := s.authz.Authorize(caller, authz.ObjectReport, authz.ActionPublish); err != nil {
		return models.Table{}, err
	}
	if s.publisher == nil {
		return models.Table{}, ErrPublishingDisabled
	}
	ds, err := s.load(ctx, reportType)
	if err != nil {
		return models.Table{}, err
	}
	if err := s.publisher.PublishTable(ctx, ds.table); err != nil {
		return models.Table{}, fmt.Errorf("publish %s report: %w", reportType, err)
	}

	s.logger.Info("report published", zap.String("type", string(reportType)), zap.Int("rows", len(ds.table.Rows)))
	return ds.table, nil
}

func (s *Service) load(ctx context.Context, reportType models.ReportType) (dataset, error) {
	switch reportType {
	case models.ReportCattle:
		cattle, err := s.repo.ListCattle(ctx, s.db, models.CattleFilter{})
		if err != nil {
			return dataset{}, fmt.Errorf("list cattle: %w", err)
		}
		return dataset{table: cattleTable(cattle), entities: cattle}, nil
	case models.ReportSales:
		sales, err := s.repo.ListSales(ctx, s.db, models.SaleFilter{})
		if err != nil {
			return dataset{}, fmt.Errorf("list sales: %w", err)
		}
		return dataset{table: salesTable(sales), entities: sales}, nil
	case models.ReportHealth:
		records, err := s.repo.ListHealthRecords(ctx, s.db, models.HealthFilter{})
		if err != nil {
			return dataset{}, fmt.Errorf("list health records: %w", err)
		}
		return dataset{table: healthTable(records), entities: records}, nil
	case models.ReportFeed:
		materials, err := s.repo.ListRawMaterials(ctx, s.db, models.RawMaterialFilter{})
		if err != nil {
			return dataset{}, fmt.Errorf("list raw materials: %w", err)
		}
		return dataset{table: feedTable(materials), entities: materials}, nil
	default:
		return dataset{}, models.Invalid("type", "must be cattle, sales, health or feed")
	}
}

func cattleTable(cattle []models.Cattle) models.Table {
	t := models.Table{
		Title:   "Cattle",
		Columns: []string{"ID", "Breed", "Gender", "Initial Weight", "Current Weight", "Status", "Location", "Created At"},
		Rows:    make([][]string, 0, len(cattle)),
	}
	for _, c := range cattle {
		t.Rows = append(t.Rows, []string{
			c.Tag,
			c.Breed,
			string(c.Gender),
			c.InitialWeight.StringFixed(2),
			c.CurrentWeight.StringFixed(2),
			string(c.Status),
			c.Location,
			formatDate(c.CreatedAt),
		})
	}
	return t
}

func salesTable(sales []models.Sale) models.Table {
	t := models.Table{
		Title:   "Sales",
		Columns: []string{"Cattle ID", "Breed", "Final Weight", "Sale Price", "Buyer", "Sale Date"},
		Rows:    make([][]string, 0, len(sales)),
	}
	for _, sale := range sales {
		var tag, breed string
		if sale.Cattle != nil {
			tag, breed = sale.Cattle.Tag, sale.Cattle.Breed
		}
		t.Rows = append(t.Rows, []string{
			tag,
			breed,
			sale.FinalWeight.StringFixed(2),
			sale.SalePrice.StringFixed(2),
			sale.BuyerName,
			formatDate(sale.SaleDate),
		})
	}
	return t
}

func healthTable(records []models.HealthRecord) models.Table {
	t := models.Table{
		Title:   "Health",
		Columns: []string{"Cattle ID", "Symptoms", "Diagnosis", "Treatment", "Status", "Start Date", "End Date"},
		Rows:    make([][]string, 0, len(records)),
	}
	for _, r := range records {
		var tag, end string
		if r.Cattle != nil {
			tag = r.Cattle.Tag
		}
		if r.EndDate != nil {
			end = formatDate(*r.EndDate)
		}
		t.Rows = append(t.Rows, []string{
			tag,
			strings.Join(r.Symptoms, "; "),
			r.Diagnosis,
			r.Treatment,
			string(r.Status),
			formatDate(r.StartDate),
			end,
		})
	}
	return t
}

func feedTable(materials []models.RawMaterial) models.Table {
	t := models.Table{
		Title:   "Feed",
		Columns: []string{"Name", "Category", "Unit", "Current Stock", "Min Stock", "Price per Unit", "Supplier"},
		Rows:    make([][]string, 0, len(materials)),
	}
	for _, m := range materials {
		var supplier string
		if m.Supplier != nil {
			supplier = m.Supplier.Name
		}
		t.Rows = append(t.Rows, []string{
			m.Name,
			string(m.Category),
			m.Unit,
			m.CurrentStock.StringFixed(2),
			m.MinStock.StringFixed(2),
			m.PricePerUnit.StringFixed(2),
			supplier,
		})
	}
	return t
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(models.DateLayout)
}
