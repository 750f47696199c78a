package analytics

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/mamadbah2/feedlot/internal/authz"
	"github.com/mamadbah2/feedlot/internal/domain/models"
)

const (
	// GrowthSampleSize bounds how many recent weigh-ins feed the average ADG.
	GrowthSampleSize = 100
	// DefaultActivityLimit is the length of the recent activity feed.
	DefaultActivityLimit = 5
)

var hundred = decimal.NewFromInt(100)

// Repository is the read surface the analytics service needs.
type Repository interface {
	CountCattleByStatus(ctx context.Context, db *gorm.DB) (map[models.CattleStatus]int64, error)
	CountWeightRecords(ctx context.Context, db *gorm.DB) (int64, error)
	RecentWeightRecords(ctx context.Context, db *gorm.DB, limit int) ([]models.WeightRecord, error)
	AllWeightRecords(ctx context.Context, db *gorm.DB) ([]models.WeightRecord, error)
	CountHealthByStatus(ctx context.Context, db *gorm.DB) (map[models.HealthStatus]int64, error)
	ListSales(ctx context.Context, db *gorm.DB, filter models.SaleFilter) ([]models.Sale, error)
	ListFeedUsage(ctx context.Context, db *gorm.DB, filter models.UsageFilter) ([]models.FeedUsage, error)
	ListCattle(ctx context.Context, db *gorm.DB, filter models.CattleFilter) ([]models.Cattle, error)
	RecentCattle(ctx context.Context, db *gorm.DB, limit int) ([]models.Cattle, error)
	RecentSales(ctx context.Context, db *gorm.DB, limit int) ([]models.Sale, error)
	RecentHealthRecords(ctx context.Context, db *gorm.DB, limit int) ([]models.HealthRecord, error)
	ListRawMaterials(ctx context.Context, db *gorm.DB, filter models.RawMaterialFilter) ([]models.RawMaterial, error)
}

// Service computes the dashboard metrics.
type Service struct {
	db        *gorm.DB
	repo      Repository
	authz     authz.Checker
	snapshots SnapshotStore
	logger    *zap.Logger
	now       func() time.Time
}

// NewService wires a new analytics service instance.
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

// Dashboard computes every metric category in one call.
func (s *Service) Dashboard(ctx context.Context, caller models.Caller) (models.Dashboard, error) {
	if err := s.authz.Authorize(caller, authz.ObjectDashboard, authz.ActionView); err != nil {
		return models.Dashboard{}, err
	}

	var (
		d   = models.Dashboard{GeneratedAt: s.now()}
		err error
	)
	if d.Population, err = s.population(ctx); err != nil {
		return models.Dashboard{}, err
	}
	if d.Growth, err = s.growth(ctx); err != nil {
		return models.Dashboard{}, err
	}
	if d.Health, err = s.health(ctx); err != nil {
		return models.Dashboard{}, err
	}
	if d.Financial, err = s.financial(ctx); err != nil {
		return models.Dashboard{}, err
	}
	if d.FeedEfficiency, err = s.feedEfficiency(ctx); err != nil {
		return models.Dashboard{}, err
	}
	if d.RecentActivities, err = s.recentActivities(ctx, DefaultActivityLimit); err != nil {
		return models.Dashboard{}, err
	}

	s.logger.Debug("dashboard computed", zap.Int64("cattle", d.Population.Total), zap.Int("sales", d.Financial.TotalSales))
	return d, nil
}

func (s *Service) Population(ctx context.Context, caller models.Caller) (models.PopulationSummary, error) {
	if err := s.authz.Authorize(caller, authz.ObjectDashboard, authz.ActionView); err != nil {
		return models.PopulationSummary{}, err
	}
	return s.population(ctx)
}

func (s *Service) Growth(ctx context.Context, caller models.Caller) (models.GrowthMetrics, error) {
	if err := s.authz.Authorize(caller, authz.ObjectDashboard, authz.ActionView); err != nil {
		return models.GrowthMetrics{}, err
	}
	return s.growth(ctx)
}

func (s *Service) Health(ctx context.Context, caller models.Caller) (models.HealthMetrics, error) {
	if err := s.authz.Authorize(caller, authz.ObjectDashboard, authz.ActionView); err != nil {
		return models.HealthMetrics{}, err
	}
	return s.health(ctx)
}

func (s *Service) Financial(ctx context.Context, caller models.Caller) (models.FinancialMetrics, error) {
	if err := s.authz.Authorize(caller, authz.ObjectDashboard, authz.ActionView); err != nil {
		return models.FinancialMetrics{}, err
	}
	return s.financial(ctx)
}

func (s *Service) FeedEfficiency(ctx context.Context, caller models.Caller) (models.FeedEfficiency, error) {
	if err := s.authz.Authorize(caller, authz.ObjectDashboard, authz.ActionView); err != nil {
		return models.FeedEfficiency{}, err
	}
	return s.feedEfficiency(ctx)
}

// GroupFeedEfficiency computes feed conversion for one pen. Feed is the usage booked against
// the group and gain comes from the cattle currently located in it.
func (s *Service) GroupFeedEfficiency(ctx context.Context, caller models.Caller, group string) (models.FeedEfficiency, error) {
	if err := s.authz.Authorize(caller, authz.ObjectDashboard, authz.ActionView); err != nil {
		return models.FeedEfficiency{}, err
	}
	group = strings.TrimSpace(group)
	if group == "" {
		return models.FeedEfficiency{}, models.Invalid("cattleGroupId", "is required")
	}

	usage, err := s.repo.ListFeedUsage(ctx, s.db, models.UsageFilter{CattleGroupID: group})
	if err != nil {
		return models.FeedEfficiency{}, fmt.Errorf("load feed usage for %s: %w", group, err)
	}
	cattle, err := s.repo.ListCattle(ctx, s.db, models.CattleFilter{Location: group})
	if err != nil {
		return models.FeedEfficiency{}, fmt.Errorf("load cattle in %s: %w", group, err)
	}
	records, err := s.repo.AllWeightRecords(ctx, s.db)
	if err != nil {
		return models.FeedEfficiency{}, fmt.Errorf("load weight records: %w", err)
	}

	inGroup := make(map[string]struct{}, len(cattle))
	for _, c := range cattle {
		inGroup[c.ID] = struct{}{}
	}
	groupRecords := make([]models.WeightRecord, 0, len(records))
	for _, r := range records {
		if _, ok := inGroup[r.CattleID]; ok {
			groupRecords = append(groupRecords, r)
		}
	}

	fe := conversion(usage, groupRecords)
	fe.CattleGroupID = group
	return fe, nil
}

// RecentActivities merges the latest registrations, sales, health records and weigh-ins,
// newest first. A non-positive limit uses DefaultActivityLimit.
func (s *Service) RecentActivities(ctx context.Context, caller models.Caller, limit int) ([]models.Activity, error) {
	if err := s.authz.Authorize(caller, authz.ObjectDashboard, authz.ActionView); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = DefaultActivityLimit
	}
	return s.recentActivities(ctx, limit)
}

func (s *Service) population(ctx context.Context) (models.PopulationSummary, error) {
	counts, err := s.repo.CountCattleByStatus(ctx, s.db)
	if err != nil {
		return models.PopulationSummary{}, fmt.Errorf("count cattle: %w", err)
	}
	p := models.PopulationSummary{
		Active:     counts[models.CattleActive],
		Sold:       counts[models.CattleSold],
		Sick:       counts[models.CattleSick],
		Quarantine: counts[models.CattleQuarantine],
	}
	for _, n := range counts {
		p.Total += n
	}
	return p, nil
}

// growth averages the stored ADG of the most recent weigh-ins. It is a sample, not a herd average.
func (s *Service) growth(ctx context.Context) (models.GrowthMetrics, error) {
	total, err := s.repo.CountWeightRecords(ctx, s.db)
	if err != nil {
		return models.GrowthMetrics{}, fmt.Errorf("count weight records: %w", err)
	}
	records, err := s.repo.RecentWeightRecords(ctx, s.db, GrowthSampleSize)
	if err != nil {
		return models.GrowthMetrics{}, fmt.Errorf("load weight sample: %w", err)
	}
	return averageADG(records, int(total)), nil
}

func averageADG(records []models.WeightRecord, total int) models.GrowthMetrics {
	g := models.GrowthMetrics{AverageADG: decimal.Zero, TotalWeightRecords: total}
	sum := decimal.Zero
	for _, r := range records {
		if !r.ADG.Valid {
			continue
		}
		sum = sum.Add(r.ADG.Decimal)
		g.SampleSize++
	}
	if g.SampleSize > 0 {
		g.AverageADG = sum.Div(decimal.NewFromInt(int64(g.SampleSize))).Round(2)
	}
	return g
}

func (s *Service) health(ctx context.Context) (models.HealthMetrics, error) {
	counts, err := s.repo.CountHealthByStatus(ctx, s.db)
	if err != nil {
		return models.HealthMetrics{}, fmt.Errorf("count health records: %w", err)
	}
	h := models.HealthMetrics{
		Active:        counts[models.HealthActive],
		Recovered:     counts[models.HealthRecovered],
		Chronic:       counts[models.HealthChronic],
		Deceased:      counts[models.HealthDeceased],
		MortalityRate: decimal.Zero,
	}
	for _, n := range counts {
		h.TotalRecords += n
	}
	if h.TotalRecords > 0 {
		h.MortalityRate = percent(decimal.NewFromInt(h.Deceased), decimal.NewFromInt(h.TotalRecords))
	}
	return h, nil
}

// financial compares sales revenue with the cost of all feed drawn from stock, priced at each
// material's current price per unit.
func (s *Service) financial(ctx context.Context) (models.FinancialMetrics, error) {
	sales, err := s.repo.ListSales(ctx, s.db, models.SaleFilter{})
	if err != nil {
		return models.FinancialMetrics{}, fmt.Errorf("load sales: %w", err)
	}
	usage, err := s.repo.ListFeedUsage(ctx, s.db, models.UsageFilter{})
	if err != nil {
		return models.FinancialMetrics{}, fmt.Errorf("load feed usage: %w", err)
	}

	f := models.FinancialMetrics{
		TotalRevenue:     decimal.Zero,
		AverageSalePrice: decimal.Zero,
		TotalSales:       len(sales),
		TotalFeedCost:    decimal.Zero,
		ProfitMargin:     decimal.Zero,
	}
	for _, sale := range sales {
		f.TotalRevenue = f.TotalRevenue.Add(sale.SalePrice)
	}
	if len(sales) > 0 {
		f.AverageSalePrice = f.TotalRevenue.Div(decimal.NewFromInt(int64(len(sales)))).Round(2)
	}
	for _, u := range usage {
		if u.RawMaterial == nil {
			continue
		}
		f.TotalFeedCost = f.TotalFeedCost.Add(u.Quantity.Mul(u.RawMaterial.PricePerUnit))
	}
	f.TotalFeedCost = f.TotalFeedCost.Round(2)
	f.Profit = f.TotalRevenue.Sub(f.TotalFeedCost)
	if f.TotalRevenue.IsPositive() {
		f.ProfitMargin = percent(f.Profit, f.TotalRevenue)
	}
	return f, nil
}

// feedEfficiency relates all feed drawn to the herd's total weight gain, where each animal
// contributes its last weigh-in minus its first.
func (s *Service) feedEfficiency(ctx context.Context) (models.FeedEfficiency, error) {
	usage, err := s.repo.ListFeedUsage(ctx, s.db, models.UsageFilter{})
	if err != nil {
		return models.FeedEfficiency{}, fmt.Errorf("load feed usage: %w", err)
	}
	records, err := s.repo.AllWeightRecords(ctx, s.db)
	if err != nil {
		return models.FeedEfficiency{}, fmt.Errorf("load weight records: %w", err)
	}

	return conversion(usage, records), nil
}

func conversion(usage []models.FeedUsage, records []models.WeightRecord) models.FeedEfficiency {
	fe := models.FeedEfficiency{TotalFeedUsed: decimal.Zero, TotalWeightGain: herdGain(records)}
	for _, u := range usage {
		fe.TotalFeedUsed = fe.TotalFeedUsed.Add(u.Quantity)
	}
	if fe.TotalWeightGain.IsPositive() {
		fe.FCR = decimal.NewNullDecimal(fe.TotalFeedUsed.Div(fe.TotalWeightGain).Round(2))
	}
	return fe
}

func herdGain(records []models.WeightRecord) decimal.Decimal {
	byCattle := make(map[string][]models.WeightRecord)
	order := make([]string, 0)
	for _, r := range records {
		if _, seen := byCattle[r.CattleID]; !seen {
			order = append(order, r.CattleID)
		}
		byCattle[r.CattleID] = append(byCattle[r.CattleID], r)
	}

	gain := decimal.Zero
	for _, id := range order {
		gain = gain.Add(models.TotalGain(byCattle[id]))
	}
	return gain
}

func (s *Service) recentActivities(ctx context.Context, limit int) ([]models.Activity, error) {
	cattle, err := s.repo.RecentCattle(ctx, s.db, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent cattle: %w", err)
	}
	sales, err := s.repo.RecentSales(ctx, s.db, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent sales: %w", err)
	}
	health, err := s.repo.RecentHealthRecords(ctx, s.db, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent health records: %w", err)
	}
	weights, err := s.repo.RecentWeightRecords(ctx, s.db, limit)
	if err != nil {
		return nil, fmt.Errorf("load recent weight records: %w", err)
	}

	activities := make([]models.Activity, 0, len(cattle)+len(sales)+len(health)+len(weights))
	for _, c := range cattle {
		activities = append(activities, models.Activity{
			Type:      models.ActivityCattle,
			Action:    fmt.Sprintf("New cattle registered: %s", c.Tag),
			Date:      c.CreatedAt,
			CattleTag: c.Tag,
		})
	}
	for _, sale := range sales {
		tag := tagOf(sale.Cattle)
		activities = append(activities, models.Activity{
			Type:      models.ActivitySale,
			Action:    fmt.Sprintf("Cattle %s sold for %s", tag, sale.SalePrice.String()),
			Date:      sale.SaleDate,
			CattleTag: tag,
		})
	}
	for _, h := range health {
		tag := tagOf(h.Cattle)
		activities = append(activities, models.Activity{
			Type:      models.ActivityHealth,
			Action:    fmt.Sprintf("Health record for cattle %s", tag),
			Date:      h.StartDate,
			CattleTag: tag,
		})
	}
	for _, w := range weights {
		tag := tagOf(w.Cattle)
		activities = append(activities, models.Activity{
			Type:      models.ActivityWeight,
			Action:    fmt.Sprintf("Weight recorded for cattle %s: %s kg", tag, w.Weight.String()),
			Date:      w.RecordDate,
			CattleTag: tag,
		})
	}

	sort.SliceStable(activities, func(i, j int) bool {
		return activities[i].Date.After(activities[j].Date)
	})
	if len(activities) > limit {
		activities = activities[:limit]
	}
	return activities, nil
}

func tagOf(c *models.Cattle) string {
	if c == nil {
		return ""
	}
	return c.Tag
}

// percent is part/whole*100 rounded to two places.
func percent(part, whole decimal.Decimal) decimal.Decimal {
	return part.Mul(hundred).Div(whole).Round(2)
}
