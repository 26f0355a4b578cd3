package domain

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidPeriod = errors.New("invalid_period")
)

// Period is the closed set of trend granularities. Anything outside the enum
// is rejected with ErrInvalidPeriod rather than silently returning an empty
// series.
type Period string

const (
	PeriodDaily   Period = "daily"
	PeriodMonthly Period = "monthly"
	PeriodYearly  Period = "yearly"
)

// ParsePeriod validates a client-supplied granularity string.
func ParsePeriod(s string) (Period, error) {
	switch Period(s) {
	case PeriodDaily, PeriodMonthly, PeriodYearly:
		return Period(s), nil
	default:
		return "", ErrInvalidPeriod
	}
}

// AgeBandLabels lists the fixed demographic age bands in display order.
// Pledges without a recorded age are excluded, not bucketed.
var AgeBandLabels = []string{"< 18", "18-25", "26-35", "36-45", "46-60", "60+"}

// SummaryFilter narrows the summary counts. All fields are optional; Start
// and End bound created_at as a half-open range [Start, End) applied to every
// count, the period-relative ones included.
type SummaryFilter struct {
	Start *time.Time
	End   *time.Time
	State string
}

// SummaryStats is the dashboard headline card.
type SummaryStats struct {
	TotalPledges  int64   `json:"total_pledges"`
	TodayPledges  int64   `json:"today_pledges"`
	MonthPledges  int64   `json:"month_pledges"`
	YearPledges   int64   `json:"year_pledges"`
	AvgPerDay     float64 `json:"avg_per_day"`
	DailyChange   float64 `json:"daily_change"`
	MonthlyChange float64 `json:"monthly_change"`
	YearlyChange  float64 `json:"yearly_change"`
}

// TrendRequest selects one temporal series.
type TrendRequest struct {
	Period Period
	Limit  int
	State  string
}

// TrendSeries is a chart-ready label/data pair set. Daily and monthly series
// are gap-filled to exactly the requested number of buckets; yearly series
// carry only years that have data.
type TrendSeries struct {
	Period Period   `json:"period"`
	Labels []string `json:"labels"`
	Data   []int64  `json:"data"`
}

// StateCount is one state's pledge count.
type StateCount struct {
	State string `json:"state"`
	Count int64  `json:"count"`
}

// CityCount is one (city, state) pair's pledge count.
type CityCount struct {
	City  string `json:"city"`
	State string `json:"state"`
	Count int64  `json:"count"`
}

// GeographicDistribution aggregates pledges by location.
type GeographicDistribution struct {
	TopStates   []StateCount     `json:"top_states"`
	TopCities   []CityCount      `json:"top_cities"`
	StateCounts map[string]int64 `json:"state_counts"`
}

// Breakdown is a generic labels/data chart payload.
type Breakdown struct {
	Labels []string `json:"labels"`
	Data   []int64  `json:"data"`
}

// DemographicInsights groups pledges by age band and gender.
type DemographicInsights struct {
	Age    Breakdown `json:"age"`
	Gender Breakdown `json:"gender"`
}

// GrowthMetrics carries the trailing-12-month counts and the month-over-month
// growth rates between consecutive buckets (one fewer entry than counts).
type GrowthMetrics struct {
	Labels      []string  `json:"labels"`
	Counts      []int64   `json:"counts"`
	GrowthRates []float64 `json:"growth_rates"`
}

// PeakActivity is the pair of zero-filled activity histograms.
type PeakActivity struct {
	Hourly  Breakdown `json:"hourly"`
	Weekday Breakdown `json:"weekday"`
}

// LabelValue is one row of a categorical breakdown, descending by value.
type LabelValue struct {
	Label string `json:"label"`
	Value int64  `json:"value"`
}

// YearCount is one year's pledge count.
type YearCount struct {
	Year  int   `json:"year"`
	Count int64 `json:"count"`
}

// ComparativeEntry is a current/previous pair with its growth rate. A zero
// previous period reads as flat here, unlike the summary card.
type ComparativeEntry struct {
	Count      int64   `json:"count"`
	PrevCount  int64   `json:"prev_count"`
	GrowthRate float64 `json:"growth_rate"`
}

// ComparativeMetrics holds the month-over-month and year-over-year pairs.
type ComparativeMetrics struct {
	MonthOverMonth ComparativeEntry `json:"month_over_month"`
	YearOverYear   ComparativeEntry `json:"year_over_year"`
}

// Service is the read-only aggregation engine behind the dashboard. Every
// operation counts active pledges only and returns zero-valued results, not
// errors, when no data matches.
type Service interface {
	SummaryStats(ctx context.Context, filter SummaryFilter) (*SummaryStats, error)
	TemporalTrends(ctx context.Context, req TrendRequest) (*TrendSeries, error)
	GeographicDistribution(ctx context.Context, topN int) (*GeographicDistribution, error)
	DemographicInsights(ctx context.Context) (*DemographicInsights, error)
	GrowthMetrics(ctx context.Context) (*GrowthMetrics, error)
	PeakActivity(ctx context.Context) (*PeakActivity, error)
	SourceDistribution(ctx context.Context) (*Breakdown, error)
	LanguageDistribution(ctx context.Context) ([]LabelValue, error)
	MedicalConsentStats(ctx context.Context) ([]LabelValue, error)
	DistrictStats(ctx context.Context, state string) ([]LabelValue, error)
	HistoricalComparison(ctx context.Context, years int) ([]YearCount, error)
	ComparativeMetrics(ctx context.Context) (*ComparativeMetrics, error)
}
