package service

import (
	"context"
	"fmt"
	"time"

	"go.uber.org/fx"
	"go.uber.org/zap"

	analytics "github.com/sightcare/netra/internal/analytics/domain"
	"github.com/sightcare/netra/internal/analytics/period"
	"github.com/sightcare/netra/internal/clock"
)

const (
	defaultDailyLimit   = 30
	defaultMonthlyLimit = 12
	defaultTopN         = 10
	defaultYears        = 5
	trailingAvgDays     = 30
)

type Params struct {
	fx.In

	Store analytics.Store
	Log   *zap.Logger
	Clock clock.Clock
}

type Service struct {
	store analytics.Store
	log   *zap.Logger
	clock clock.Clock
}

func NewService(p Params) analytics.Service {
	return &Service{
		store: p.Store,
		log:   p.Log.Named("analytics.service"),
		clock: p.Clock,
	}
}

func (s *Service) SummaryStats(ctx context.Context, filter analytics.SummaryFilter) (*analytics.SummaryStats, error) {
	b := period.BoundariesAt(s.clock.Now())

	// Every count shares the caller's date window; period-relative predicates
	// intersect with it rather than replace it.
	window := func(f analytics.CountFilter) analytics.CountFilter {
		f.State = filter.State
		if filter.Start != nil && (f.From == nil || filter.Start.After(*f.From)) {
			f.From = filter.Start
		}
		if filter.End != nil && (f.To == nil || filter.End.Before(*f.To)) {
			f.To = filter.End
		}
		return f
	}

	total, err := s.store.Count(ctx, window(analytics.CountFilter{}))
	if err != nil {
		return nil, err
	}
	today, err := s.store.Count(ctx, window(analytics.CountFilter{OnDate: &b.Today}))
	if err != nil {
		return nil, err
	}
	yesterday, err := s.store.Count(ctx, window(analytics.CountFilter{OnDate: &b.Yesterday}))
	if err != nil {
		return nil, err
	}
	month, err := s.store.Count(ctx, window(analytics.CountFilter{Year: b.CurrentYear, Month: b.CurrentMonth}))
	if err != nil {
		return nil, err
	}
	prevMonth, err := s.store.Count(ctx, window(analytics.CountFilter{Year: b.PrevMonthYear, Month: b.PrevMonth}))
	if err != nil {
		return nil, err
	}
	year, err := s.store.Count(ctx, window(analytics.CountFilter{Year: b.CurrentYear}))
	if err != nil {
		return nil, err
	}
	prevYear, err := s.store.Count(ctx, window(analytics.CountFilter{Year: b.PrevYear}))
	if err != nil {
		return nil, err
	}

	from := b.Today.AddDate(0, 0, -(trailingAvgDays - 1))
	to := b.Today.AddDate(0, 0, 1)
	trailing, err := s.store.Count(ctx, window(analytics.CountFilter{From: &from, To: &to}))
	if err != nil {
		return nil, err
	}

	return &analytics.SummaryStats{
		TotalPledges:  total,
		TodayPledges:  today,
		MonthPledges:  month,
		YearPledges:   year,
		AvgPerDay:     period.Round1(float64(trailing) / trailingAvgDays),
		DailyChange:   period.PercentChange(today, yesterday, period.ZeroAsHundred),
		MonthlyChange: period.PercentChange(month, prevMonth, period.ZeroAsHundred),
		YearlyChange:  period.PercentChange(year, prevYear, period.ZeroAsHundred),
	}, nil
}

func (s *Service) TemporalTrends(ctx context.Context, req analytics.TrendRequest) (*analytics.TrendSeries, error) {
	switch req.Period {
	case analytics.PeriodDaily:
		return s.dailyTrend(ctx, req)
	case analytics.PeriodMonthly:
		return s.monthlyTrend(ctx, req)
	case analytics.PeriodYearly:
		return s.yearlyTrend(ctx, req)
	default:
		return nil, analytics.ErrInvalidPeriod
	}
}

func (s *Service) dailyTrend(ctx context.Context, req analytics.TrendRequest) (*analytics.TrendSeries, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultDailyLimit
	}
	buckets := period.LastNDays(s.clock.Now(), limit)
	from := buckets[0].Date
	to := buckets[len(buckets)-1].Date.AddDate(0, 0, 1)

	counts, err := s.store.CountByDate(ctx, from, to, req.State)
	if err != nil {
		return nil, err
	}

	series := &analytics.TrendSeries{
		Period: analytics.PeriodDaily,
		Labels: make([]string, 0, len(buckets)),
		Data:   make([]int64, 0, len(buckets)),
	}
	for _, bucket := range buckets {
		series.Labels = append(series.Labels, bucket.Label)
		series.Data = append(series.Data, counts[bucket.Key])
	}
	return series, nil
}

func (s *Service) monthlyTrend(ctx context.Context, req analytics.TrendRequest) (*analytics.TrendSeries, error) {
	limit := req.Limit
	if limit <= 0 {
		limit = defaultMonthlyLimit
	}
	buckets := period.LastNMonths(s.clock.Now(), limit)
	from := time.Date(buckets[0].Year, buckets[0].Month, 1, 0, 0, 0, 0, time.UTC)

	counts, err := s.store.CountByYearMonth(ctx, from, req.State)
	if err != nil {
		return nil, err
	}

	series := &analytics.TrendSeries{
		Period: analytics.PeriodMonthly,
		Labels: make([]string, 0, len(buckets)),
		Data:   make([]int64, 0, len(buckets)),
	}
	for _, bucket := range buckets {
		key := fmt.Sprintf("%04d-%02d", bucket.Year, int(bucket.Month))
		series.Labels = append(series.Labels, bucket.Label)
		series.Data = append(series.Data, counts[key])
	}
	return series, nil
}

func (s *Service) yearlyTrend(ctx context.Context, req analytics.TrendRequest) (*analytics.TrendSeries, error) {
	years, err := s.store.CountByYear(ctx, req.State)
	if err != nil {
		return nil, err
	}

	series := &analytics.TrendSeries{
		Period: analytics.PeriodYearly,
		Labels: make([]string, 0, len(years)),
		Data:   make([]int64, 0, len(years)),
	}
	for _, yc := range years {
		series.Labels = append(series.Labels, period.YearLabel(yc.Year))
		series.Data = append(series.Data, yc.Count)
	}
	return series, nil
}

func (s *Service) GeographicDistribution(ctx context.Context, topN int) (*analytics.GeographicDistribution, error) {
	if topN <= 0 {
		topN = defaultTopN
	}

	states, err := s.store.CountByState(ctx)
	if err != nil {
		return nil, err
	}
	cities, err := s.store.CountByCity(ctx, topN)
	if err != nil {
		return nil, err
	}

	dist := &analytics.GeographicDistribution{
		TopStates:   make([]analytics.StateCount, 0, topN),
		TopCities:   cities,
		StateCounts: make(map[string]int64, len(states)),
	}
	if dist.TopCities == nil {
		dist.TopCities = []analytics.CityCount{}
	}
	for i, sc := range states {
		dist.StateCounts[sc.State] = sc.Count
		if i < topN {
			dist.TopStates = append(dist.TopStates, sc)
		}
	}
	return dist, nil
}

func (s *Service) DemographicInsights(ctx context.Context) (*analytics.DemographicInsights, error) {
	bands, err := s.store.CountByAgeBand(ctx)
	if err != nil {
		return nil, err
	}
	genders, err := s.store.CountByGender(ctx)
	if err != nil {
		return nil, err
	}

	insights := &analytics.DemographicInsights{
		Age: analytics.Breakdown{
			Labels: make([]string, 0, len(analytics.AgeBandLabels)),
			Data:   make([]int64, 0, len(analytics.AgeBandLabels)),
		},
		Gender: analytics.Breakdown{
			Labels: make([]string, 0, len(genders)),
			Data:   make([]int64, 0, len(genders)),
		},
	}
	for _, label := range analytics.AgeBandLabels {
		insights.Age.Labels = append(insights.Age.Labels, label)
		insights.Age.Data = append(insights.Age.Data, bands[label])
	}
	for _, g := range genders {
		insights.Gender.Labels = append(insights.Gender.Labels, g.Label)
		insights.Gender.Data = append(insights.Gender.Data, g.Value)
	}
	return insights, nil
}

func (s *Service) GrowthMetrics(ctx context.Context) (*analytics.GrowthMetrics, error) {
	buckets := period.LastNMonths(s.clock.Now(), defaultMonthlyLimit)
	from := time.Date(buckets[0].Year, buckets[0].Month, 1, 0, 0, 0, 0, time.UTC)

	counts, err := s.store.CountByYearMonth(ctx, from, "")
	if err != nil {
		return nil, err
	}

	metrics := &analytics.GrowthMetrics{
		Labels:      make([]string, 0, len(buckets)),
		Counts:      make([]int64, 0, len(buckets)),
		GrowthRates: make([]float64, 0, len(buckets)-1),
	}
	for _, bucket := range buckets {
		key := fmt.Sprintf("%04d-%02d", bucket.Year, int(bucket.Month))
		metrics.Labels = append(metrics.Labels, bucket.Label)
		metrics.Counts = append(metrics.Counts, counts[key])
	}
	for i := 1; i < len(metrics.Counts); i++ {
		rate := period.PercentChange(metrics.Counts[i], metrics.Counts[i-1], period.ZeroAsHundred)
		metrics.GrowthRates = append(metrics.GrowthRates, rate)
	}
	return metrics, nil
}

func (s *Service) PeakActivity(ctx context.Context) (*analytics.PeakActivity, error) {
	hours, err := s.store.CountByHour(ctx)
	if err != nil {
		return nil, err
	}
	days, err := s.store.CountByWeekday(ctx)
	if err != nil {
		return nil, err
	}

	peak := &analytics.PeakActivity{
		Hourly: analytics.Breakdown{
			Labels: make([]string, 0, 24),
			Data:   make([]int64, 0, 24),
		},
		Weekday: analytics.Breakdown{
			Labels: make([]string, 0, 7),
			Data:   make([]int64, 0, 7),
		},
	}
	for hour := 0; hour < 24; hour++ {
		peak.Hourly.Labels = append(peak.Hourly.Labels, fmt.Sprintf("%02d:00", hour))
		peak.Hourly.Data = append(peak.Hourly.Data, hours[hour])
	}
	for i, name := range period.DayNames {
		peak.Weekday.Labels = append(peak.Weekday.Labels, name)
		peak.Weekday.Data = append(peak.Weekday.Data, days[period.SundayIndexedFor(i)])
	}
	return peak, nil
}

func (s *Service) SourceDistribution(ctx context.Context) (*analytics.Breakdown, error) {
	sources, err := s.store.CountBySource(ctx)
	if err != nil {
		return nil, err
	}

	breakdown := &analytics.Breakdown{
		Labels: make([]string, 0, len(sources)),
		Data:   make([]int64, 0, len(sources)),
	}
	for _, src := range sources {
		breakdown.Labels = append(breakdown.Labels, src.Label)
		breakdown.Data = append(breakdown.Data, src.Value)
	}
	return breakdown, nil
}

func (s *Service) LanguageDistribution(ctx context.Context) ([]analytics.LabelValue, error) {
	languages, err := s.store.CountByLanguage(ctx)
	if err != nil {
		return nil, err
	}
	if languages == nil {
		languages = []analytics.LabelValue{}
	}
	return languages, nil
}

func (s *Service) MedicalConsentStats(ctx context.Context) ([]analytics.LabelValue, error) {
	organs, err := s.store.CountByOrgans(ctx)
	if err != nil {
		return nil, err
	}
	if organs == nil {
		organs = []analytics.LabelValue{}
	}
	return organs, nil
}

func (s *Service) DistrictStats(ctx context.Context, state string) ([]analytics.LabelValue, error) {
	districts, err := s.store.CountByDistrict(ctx, state)
	if err != nil {
		return nil, err
	}
	if districts == nil {
		districts = []analytics.LabelValue{}
	}
	return districts, nil
}

func (s *Service) HistoricalComparison(ctx context.Context, years int) ([]analytics.YearCount, error) {
	if years <= 0 {
		years = defaultYears
	}
	all, err := s.store.CountByYear(ctx, "")
	if err != nil {
		return nil, err
	}

	minYear := s.clock.Now().UTC().Year() - years + 1
	result := make([]analytics.YearCount, 0, years)
	for _, yc := range all {
		if yc.Year >= minYear {
			result = append(result, yc)
		}
	}
	return result, nil
}

func (s *Service) ComparativeMetrics(ctx context.Context) (*analytics.ComparativeMetrics, error) {
	b := period.BoundariesAt(s.clock.Now())

	month, err := s.store.Count(ctx, analytics.CountFilter{Year: b.CurrentYear, Month: b.CurrentMonth})
	if err != nil {
		return nil, err
	}
	prevMonth, err := s.store.Count(ctx, analytics.CountFilter{Year: b.PrevMonthYear, Month: b.PrevMonth})
	if err != nil {
		return nil, err
	}
	year, err := s.store.Count(ctx, analytics.CountFilter{Year: b.CurrentYear})
	if err != nil {
		return nil, err
	}
	prevYear, err := s.store.Count(ctx, analytics.CountFilter{Year: b.PrevYear})
	if err != nil {
		return nil, err
	}

	return &analytics.ComparativeMetrics{
		MonthOverMonth: analytics.ComparativeEntry{
			Count:      month,
			PrevCount:  prevMonth,
			GrowthRate: period.PercentChange(month, prevMonth, period.ZeroAsZero),
		},
		YearOverYear: analytics.ComparativeEntry{
			Count:      year,
			PrevCount:  prevYear,
			GrowthRate: period.PercentChange(year, prevYear, period.ZeroAsZero),
		},
	}, nil
}
