package sheets

import (
	"context"
	"fmt"

	"go.uber.org/zap"
	"google.golang.org/api/option"
	sheetsapi "google.golang.org/api/sheets/v4"

	"github.com/mamadbah2/feedlot/internal/config"
	"github.com/mamadbah2/feedlot/internal/domain/models"
)

// Publisher writes report tables into tabs of one Google spreadsheet.
type Publisher struct {
	service       *sheetsapi.Service
	spreadsheetID string
	logger        *zap.Logger
}

// NewPublisher builds a Google Sheets backed publisher from a service account credentials file.
func NewPublisher(ctx context.Context, cfg config.SheetsConfig, logger *zap.Logger) (*Publisher, error) {
	service, err := sheetsapi.NewService(ctx, option.WithCredentialsFile(cfg.CredentialsPath), option.WithScopes(sheetsapi.SpreadsheetsScope))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize sheets client: %w", err)
	}
	return newPublisher(service, cfg.SpreadsheetID, logger), nil
}

func newPublisher(service *sheetsapi.Service, spreadsheetID string, logger *zap.Logger) *Publisher {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Publisher{service: service, spreadsheetID: spreadsheetID, logger: logger}
}

// PublishTable replaces the contents of the tab named after the table title, creating the tab if needed.
func (p *Publisher) PublishTable(ctx context.Context, table models.Table) error {
	if table.Title == "" {
		return fmt.Errorf("table title must not be empty")
	}
	if err := p.ensureSheet(ctx, table.Title); err != nil {
		return err
	}

	tab := fmt.Sprintf("'%s'", table.Title)
	if _, err := p.service.Spreadsheets.Values.Clear(p.spreadsheetID, tab, &sheetsapi.ClearValuesRequest{}).Context(ctx).Do(); err != nil {
		return fmt.Errorf("clear sheet %s: %w", table.Title, err)
	}

	values := make([][]interface{}, 0, len(table.Rows)+1)
	values = append(values, toRow(table.Columns))
	for _, row := range table.Rows {
		values = append(values, toRow(row))
	}

	_, err := p.service.Spreadsheets.Values.Update(p.spreadsheetID, tab+"!A1", &sheetsapi.ValueRange{Values: values}).
		ValueInputOption("RAW").
		Context(ctx).
		Do()
	if err != nil {
		return fmt.Errorf("write sheet %s: %w", table.Title, err)
	}

	p.logger.Info("report table published", zap.String("sheet", table.Title), zap.Int("rows", len(table.Rows)))
	return nil
}

func (p *Publisher) ensureSheet(ctx context.Context, title string) error {
	spreadsheet, err := p.service.Spreadsheets.Get(p.spreadsheetID).Context(ctx).Do()
	if err != nil {
		return fmt.Errorf("load spreadsheet: %w", err)
	}
	for _, sheet := range spreadsheet.Sheets {
		if sheet.Properties != nil && sheet.Properties.Title == title {
			return nil
		}
	}

	req := &sheetsapi.BatchUpdateSpreadsheetRequest{
		Requests: []*sheetsapi.Request{{
			AddSheet: &sheetsapi.AddSheetRequest{Properties: &sheetsapi.SheetProperties{Title: title}},
		}},
	}
	if _, err := p.service.Spreadsheets.BatchUpdate(p.spreadsheetID, req).Context(ctx).Do(); err != nil {
		return fmt.Errorf("add sheet %s: %w", title, err)
	}
	p.logger.Debug("sheet created", zap.String("sheet", title))
	return nil
}

func toRow(cells []string) []interface{} {
	row := make([]interface{}, len(cells))
	for i, cell := range cells {
		row[i] = cell
	}
	return row
}
