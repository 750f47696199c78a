package commands

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"

	"github.com/mamadbah2/feedlot/internal/domain/models"
	cattlesvc "github.com/mamadbah2/feedlot/internal/service/cattle"
	feedsvc "github.com/mamadbah2/feedlot/internal/service/feed"
)

// ErrInvalidArguments indicates the command payload could not be parsed.
var ErrInvalidArguments = errors.New("invalid command arguments")

const helpText = "Supported commands:\n" +
	"/weigh TAG KG - record a weigh-in\n" +
	"/feed MATERIAL_ID QTY - record feed taken from stock\n" +
	"/stock - list materials below minimum stock\n" +
	"/summary - herd dashboard"

// CattleService is the herd surface the dispatcher drives.
type CattleService interface {
	GetByTag(ctx context.Context, caller models.Caller, tag string) (*models.Cattle, error)
	RecordWeight(ctx context.Context, caller models.Caller, input cattlesvc.WeightInput) (*models.WeightRecord, error)
}

// FeedService is the inventory surface the dispatcher drives.
type FeedService interface {
	GetRawMaterial(ctx context.Context, caller models.Caller, id string) (*models.RawMaterial, error)
	RecordUsage(ctx context.Context, caller models.Caller, input feedsvc.UsageInput) (*models.FeedUsage, error)
	LowStock(ctx context.Context, caller models.Caller) ([]models.RawMaterial, error)
}

// DashboardService builds the herd dashboard.
type DashboardService interface {
	Dashboard(ctx context.Context, caller models.Caller) (models.Dashboard, error)
}

// Dispatcher executes parsed commands on behalf of a caller and returns the reply text.
type Dispatcher interface {
	HandleCommand(ctx context.Context, caller models.Caller, cmd models.Command) (string, error)
}

// Service implements the Dispatcher interface.
type Service struct {
	cattle    CattleService
	feed      FeedService
	dashboard DashboardService
	logger    *zap.Logger
	now       func() time.Time
}

// NewService constructs a command dispatcher.
func NewService(cattle CattleService, feed FeedService, dashboard DashboardService, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		cattle:    cattle,
		feed:      feed,
		dashboard: dashboard,
		logger:    logger,
		now:       func() time.Time { return time.Now().UTC() },
	}
}

// HandleCommand runs the command and describes the result.
func (s *Service) HandleCommand(ctx context.Context, caller models.Caller, cmd models.Command) (string, error) {
	s.logger.Debug("dispatching command",
		zap.String("command", string(cmd.Type)),
		zap.String("user_id", caller.UserID),
		zap.Strings("args", cmd.Args))

	switch cmd.Type {
	case models.CommandWeigh:
		return s.weigh(ctx, caller, cmd.Args)
	case models.CommandFeed:
		return s.recordFeed(ctx, caller, cmd.Args)
	case models.CommandStock:
		return s.lowStock(ctx, caller)
	case models.CommandSummary:
		return s.summary(ctx, caller)
	case models.CommandHelp:
		return helpText, nil
	default:
		return "Unknown command.\n" + helpText, nil
	}
}

func (s *Service) weigh(ctx context.Context, caller models.Caller, args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("%w: usage /weigh TAG KG", ErrInvalidArguments)
	}
	weight, err := decimal.NewFromString(args[1])
	if err != nil {
		return "", fmt.Errorf("%w: weight %q is not a number", ErrInvalidArguments, args[1])
	}

	cattle, err := s.cattle.GetByTag(ctx, caller, args[0])
	if err != nil {
		return "", err
	}
	record, err := s.cattle.RecordWeight(ctx, caller, cattlesvc.WeightInput{
		CattleID:   cattle.ID,
		Weight:     weight,
		RecordDate: s.now(),
		Notes:      "recorded over WhatsApp",
	})
	if err != nil {
		return "", err
	}

	message := fmt.Sprintf("Weight recorded for %s: %s kg.", cattle.Tag, record.Weight.StringFixed(1))
	if record.ADG.Valid {
		message += fmt.Sprintf(" ADG %s kg/day.", record.ADG.Decimal.StringFixed(2))
	}
	return message, nil
}

func (s *Service) recordFeed(ctx context.Context, caller models.Caller, args []string) (string, error) {
	if len(args) != 2 {
		return "", fmt.Errorf("%w: usage /feed MATERIAL_ID QTY", ErrInvalidArguments)
	}
	qty, err := decimal.NewFromString(args[1])
	if err != nil {
		return "", fmt.Errorf("%w: quantity %q is not a number", ErrInvalidArguments, args[1])
	}

	if _, err := s.feed.RecordUsage(ctx, caller, feedsvc.UsageInput{
		RawMaterialID: args[0],
		UsageDate:     s.now(),
		Quantity:      qty,
		Notes:         "recorded over WhatsApp",
	}); err != nil {
		return "", err
	}

	material, err := s.feed.GetRawMaterial(ctx, caller, args[0])
	if err != nil {
		return "", err
	}
	message := fmt.Sprintf("Feed usage recorded: %s %s of %s. Stock left %s %s.",
		qty.String(), material.Unit, material.Name, material.CurrentStock.String(), material.Unit)
	if material.LowStock() {
		message += " Below minimum stock."
	}
	return message, nil
}

func (s *Service) lowStock(ctx context.Context, caller models.Caller) (string, error) {
	materials, err := s.feed.LowStock(ctx, caller)
	if err != nil {
		return "", err
	}
	return LowStockMessage(materials), nil
}

func (s *Service) summary(ctx context.Context, caller models.Caller) (string, error) {
	dashboard, err := s.dashboard.Dashboard(ctx, caller)
	if err != nil {
		return "", err
	}
	return SummaryMessage(dashboard), nil
}

// LowStockMessage lists materials under their minimum stock.
func LowStockMessage(materials []models.RawMaterial) string {
	if len(materials) == 0 {
		return "All feed materials are above minimum stock."
	}
	var b strings.Builder
	b.WriteString("Low stock alert:")
	for _, m := range materials {
		fmt.Fprintf(&b, "\n- %s: %s %s (min %s)", m.Name, m.CurrentStock.String(), m.Unit, m.MinStock.String())
	}
	return b.String()
}

// SummaryMessage renders the dashboard as a short text report.
func SummaryMessage(d models.Dashboard) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Feedlot summary %s\n", d.GeneratedAt.UTC().Format(models.DateLayout))
	fmt.Fprintf(&b, "Herd: %d total, %d active, %d sick, %d quarantine, %d sold\n",
		d.Population.Total, d.Population.Active, d.Population.Sick, d.Population.Quarantine, d.Population.Sold)
	fmt.Fprintf(&b, "Average ADG: %s kg/day (%d weigh-ins)\n", d.Growth.AverageADG.StringFixed(2), d.Growth.SampleSize)
	fmt.Fprintf(&b, "Mortality: %s%%\n", d.Health.MortalityRate.StringFixed(2))
	fmt.Fprintf(&b, "Revenue %s, feed cost %s, profit %s", d.Financial.TotalRevenue.StringFixed(2),
		d.Financial.TotalFeedCost.StringFixed(2), d.Financial.Profit.StringFixed(2))
	if d.FeedEfficiency.FCR.Valid {
		fmt.Fprintf(&b, "\nFCR: %s", d.FeedEfficiency.FCR.Decimal.StringFixed(2))
	}
	return b.String()
}

// ErrorReply turns a dispatch failure into the text sent back to the worker.
func ErrorReply(err error) string {
	var vErr *models.ValidationError
	switch {
	case errors.Is(err, ErrInvalidArguments):
		return strings.TrimPrefix(err.Error(), ErrInvalidArguments.Error()+": ")
	case errors.As(err, &vErr):
		return fmt.Sprintf("Invalid %s: %s.", vErr.Field, vErr.Message)
	case errors.Is(err, models.ErrNotFound):
		return "Record not found. Check the tag or material id."
	case errors.Is(err, models.ErrInsufficientStock):
		return "Not enough stock for that quantity."
	case errors.Is(err, models.ErrCattleSold):
		return "That animal has been sold."
	case errors.Is(err, models.ErrForbidden):
		return "Your role is not allowed to do that."
	default:
		return "Failed to process the command. Please try again."
	}
}
