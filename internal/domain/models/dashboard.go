package models

import (
	"time"

	"github.com/shopspring/decimal"
)

// PopulationSummary counts cattle by status.
type PopulationSummary struct {
	Total      int64 `json:"total" bson:"total"`
	Active     int64 `json:"active" bson:"active"`
	Sold       int64 `json:"sold" bson:"sold"`
	Sick       int64 `json:"sick" bson:"sick"`
	Quarantine int64 `json:"quarantine" bson:"quarantine"`
}

// GrowthMetrics averages stored ADG over a bounded window of recent weigh-ins.
// It is a sample, not a population average.
type GrowthMetrics struct {
	AverageADG         decimal.Decimal `json:"averageAdg"`
	TotalWeightRecords int             `json:"totalWeightRecords"`
	SampleSize         int             `json:"sampleSize"`
}

// HealthMetrics counts health records by status.
type HealthMetrics struct {
	TotalRecords  int64           `json:"totalRecords"`
	Active        int64           `json:"active"`
	Recovered     int64           `json:"recovered"`
	Chronic       int64           `json:"chronic"`
	Deceased      int64           `json:"deceased"`
	MortalityRate decimal.Decimal `json:"mortalityRate"`
}

// CattleHealthMetrics summarizes the health history of one animal.
type CattleHealthMetrics struct {
	TotalRecords int             `json:"totalRecords"`
	Active       int             `json:"active"`
	Recovered    int             `json:"recovered"`
	Chronic      int             `json:"chronic"`
	HealthIndex  decimal.Decimal `json:"healthIndex"`
}

// FinancialMetrics compares sales revenue with the cost of feed consumed.
type FinancialMetrics struct {
	TotalRevenue     decimal.Decimal `json:"totalRevenue"`
	AverageSalePrice decimal.Decimal `json:"averageSalePrice"`
	TotalSales       int             `json:"totalSales"`
	TotalFeedCost    decimal.Decimal `json:"totalFeedCost"`
	Profit           decimal.Decimal `json:"profit"`
	ProfitMargin     decimal.Decimal `json:"profitMargin"`
}

// FeedEfficiency relates feed consumed to weight gained. FCR is null when no gain was recorded.
// CattleGroupID is set when the figures cover a single pen.
type FeedEfficiency struct {
	CattleGroupID   string              `json:"cattleGroupId,omitempty"`
	TotalFeedUsed   decimal.Decimal     `json:"totalFeedUsed"`
	TotalWeightGain decimal.Decimal     `json:"totalWeightGain"`
	FCR             decimal.NullDecimal `json:"fcr"`
}

// ActivityType tags an entry of the recent activity feed.
type ActivityType string

const (
	ActivityCattle ActivityType = "cattle"
	ActivitySale   ActivityType = "sale"
	ActivityHealth ActivityType = "health"
	ActivityWeight ActivityType = "weight"
)

// Activity is one line of the recent activity feed.
type Activity struct {
	Type      ActivityType `json:"type"`
	Action    string       `json:"action"`
	Date      time.Time    `json:"date"`
	CattleTag string       `json:"cattleTag"`
}

// Dashboard bundles every metric category.
type Dashboard struct {
	GeneratedAt      time.Time         `json:"generatedAt"`
	Population       PopulationSummary `json:"population"`
	Growth           GrowthMetrics     `json:"growth"`
	Health           HealthMetrics     `json:"health"`
	Financial        FinancialMetrics  `json:"financial"`
	FeedEfficiency   FeedEfficiency    `json:"feedEfficiency"`
	RecentActivities []Activity        `json:"recentActivities"`
}

// DashboardSnapshot is the archived form of a dashboard. Decimals are stored as strings.
type DashboardSnapshot struct {
	Date          time.Time         `bson:"date" json:"date"`
	Population    PopulationSummary `bson:"population" json:"population"`
	AverageADG    string            `bson:"average_adg" json:"averageAdg"`
	MortalityRate string            `bson:"mortality_rate" json:"mortalityRate"`
	TotalRevenue  string            `bson:"total_revenue" json:"totalRevenue"`
	TotalFeedCost string            `bson:"total_feed_cost" json:"totalFeedCost"`
	Profit        string            `bson:"profit" json:"profit"`
	TotalFeedUsed string            `bson:"total_feed_used" json:"totalFeedUsed"`
	FCR           string            `bson:"fcr,omitempty" json:"fcr,omitempty"`
	LowStockItems []string          `bson:"low_stock_items" json:"lowStockItems"`
	CreatedAt     time.Time         `bson:"created_at" json:"createdAt"`
}

// NewDashboardSnapshot flattens a dashboard for archiving.
func NewDashboardSnapshot(d Dashboard, lowStock []RawMaterial, now time.Time) DashboardSnapshot {
	snap := DashboardSnapshot{
		Date:          time.Date(d.GeneratedAt.Year(), d.GeneratedAt.Month(), d.GeneratedAt.Day(), 0, 0, 0, 0, time.UTC),
		Population:    d.Population,
		AverageADG:    d.Growth.AverageADG.String(),
		MortalityRate: d.Health.MortalityRate.String(),
		TotalRevenue:  d.Financial.TotalRevenue.String(),
		TotalFeedCost: d.Financial.TotalFeedCost.String(),
		Profit:        d.Financial.Profit.String(),
		TotalFeedUsed: d.FeedEfficiency.TotalFeedUsed.String(),
		LowStockItems: make([]string, 0, len(lowStock)),
		CreatedAt:     now,
	}
	if d.FeedEfficiency.FCR.Valid {
		snap.FCR = d.FeedEfficiency.FCR.Decimal.String()
	}
	for _, m := range lowStock {
		snap.LowStockItems = append(snap.LowStockItems, m.Name)
	}
	return snap
}
