package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/glebarez/sqlite"
	"go.uber.org/zap"
	"gorm.io/gorm"

	analytics "github.com/sightcare/netra/internal/analytics/domain"
	"github.com/sightcare/netra/internal/clock"
	pledgedomain "github.com/sightcare/netra/internal/pledge/domain"
	"github.com/sightcare/netra/internal/pledge/repository"
)

func TestSummaryStats(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	svc, db, node := setupAnalytics(t, now)

	seedPledge(t, db, node, pledgedomain.Pledge{State: "Kerala", CreatedAt: at(2026, 8, 31, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{State: "Kerala", CreatedAt: at(2026, 8, 31, 10)})
	seedPledge(t, db, node, pledgedomain.Pledge{State: "Tamil Nadu", CreatedAt: at(2026, 8, 30, 11)})
	seedPledge(t, db, node, pledgedomain.Pledge{State: "Tamil Nadu", CreatedAt: at(2026, 8, 15, 11)})
	seedPledge(t, db, node, pledgedomain.Pledge{State: "Tamil Nadu", CreatedAt: at(2026, 7, 10, 11)})
	seedPledge(t, db, node, pledgedomain.Pledge{State: "Tamil Nadu", CreatedAt: at(2025, 5, 5, 11)})

	stats, err := svc.SummaryStats(context.Background(), analytics.SummaryFilter{})
	if err != nil {
		t.Fatalf("summary stats: %v", err)
	}

	if stats.TotalPledges != 6 {
		t.Fatalf("expected 6 total, got %d", stats.TotalPledges)
	}
	if stats.TodayPledges != 2 {
		t.Fatalf("expected 2 today, got %d", stats.TodayPledges)
	}
	if stats.MonthPledges != 4 {
		t.Fatalf("expected 4 this month, got %d", stats.MonthPledges)
	}
	if stats.YearPledges != 5 {
		t.Fatalf("expected 5 this year, got %d", stats.YearPledges)
	}
	if stats.DailyChange != 100 {
		t.Fatalf("expected daily change 100, got %v", stats.DailyChange)
	}
	if stats.MonthlyChange != 300 {
		t.Fatalf("expected monthly change 300, got %v", stats.MonthlyChange)
	}
	if stats.YearlyChange != 400 {
		t.Fatalf("expected yearly change 400, got %v", stats.YearlyChange)
	}
	// 4 pledges in the trailing 30 days.
	if stats.AvgPerDay != 0.1 {
		t.Fatalf("expected avg per day 0.1, got %v", stats.AvgPerDay)
	}

	filtered, err := svc.SummaryStats(context.Background(), analytics.SummaryFilter{State: "Kerala"})
	if err != nil {
		t.Fatalf("filtered summary: %v", err)
	}
	if filtered.TotalPledges != 2 || filtered.TodayPledges != 2 {
		t.Fatalf("expected 2/2 for Kerala, got %d/%d", filtered.TotalPledges, filtered.TodayPledges)
	}
}

func TestSummaryStatsDateWindow(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	svc, db, node := setupAnalytics(t, now)

	seedPledge(t, db, node, pledgedomain.Pledge{State: "Kerala", CreatedAt: at(2026, 8, 31, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{State: "Kerala", CreatedAt: at(2026, 8, 15, 11)})
	seedPledge(t, db, node, pledgedomain.Pledge{State: "Tamil Nadu", CreatedAt: at(2026, 8, 10, 11)})
	seedPledge(t, db, node, pledgedomain.Pledge{State: "Tamil Nadu", CreatedAt: at(2026, 7, 10, 11)})
	seedPledge(t, db, node, pledgedomain.Pledge{State: "Tamil Nadu", CreatedAt: at(2025, 5, 5, 11)})

	start := at(2026, 8, 1, 0)
	end := at(2026, 8, 21, 0)
	stats, err := svc.SummaryStats(context.Background(), analytics.SummaryFilter{Start: &start, End: &end})
	if err != nil {
		t.Fatalf("windowed summary: %v", err)
	}

	if stats.TotalPledges != 2 {
		t.Fatalf("expected 2 total inside window, got %d", stats.TotalPledges)
	}
	if stats.TodayPledges != 0 {
		t.Fatalf("expected 0 today (Aug 31 is outside the window), got %d", stats.TodayPledges)
	}
	if stats.MonthPledges != 2 {
		t.Fatalf("expected 2 this month inside window, got %d", stats.MonthPledges)
	}
	if stats.YearPledges != 2 {
		t.Fatalf("expected 2 this year inside window, got %d", stats.YearPledges)
	}
	// July falls before the window, so the previous month reads as zero.
	if stats.MonthlyChange != 100 {
		t.Fatalf("expected monthly change 100, got %v", stats.MonthlyChange)
	}
	if stats.DailyChange != 0 {
		t.Fatalf("expected daily change 0, got %v", stats.DailyChange)
	}
	// Trailing 30 days clipped to the window still holds both August pledges.
	if stats.AvgPerDay != 0.1 {
		t.Fatalf("expected avg per day 0.1, got %v", stats.AvgPerDay)
	}
}

func TestSummaryStatsEmptyData(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	svc, _, _ := setupAnalytics(t, now)

	stats, err := svc.SummaryStats(context.Background(), analytics.SummaryFilter{})
	if err != nil {
		t.Fatalf("summary stats on empty table: %v", err)
	}
	if stats.TotalPledges != 0 || stats.AvgPerDay != 0 {
		t.Fatalf("expected zero stats, got %+v", stats)
	}
	if stats.DailyChange != 0 || stats.MonthlyChange != 0 || stats.YearlyChange != 0 {
		t.Fatalf("expected zero changes on empty data, got %+v", stats)
	}
}

func TestTemporalTrendsDailyGapFill(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	svc, db, node := setupAnalytics(t, now)

	seedPledge(t, db, node, pledgedomain.Pledge{CreatedAt: at(2026, 8, 31, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{CreatedAt: at(2026, 8, 31, 10)})
	seedPledge(t, db, node, pledgedomain.Pledge{CreatedAt: at(2026, 8, 28, 9)})

	series, err := svc.TemporalTrends(context.Background(), analytics.TrendRequest{
		Period: analytics.PeriodDaily,
		Limit:  7,
	})
	if err != nil {
		t.Fatalf("daily trend: %v", err)
	}

	if len(series.Labels) != 7 || len(series.Data) != 7 {
		t.Fatalf("expected 7 buckets, got %d labels %d data", len(series.Labels), len(series.Data))
	}
	want := []int64{0, 0, 0, 1, 0, 0, 2}
	for i, count := range want {
		if series.Data[i] != count {
			t.Fatalf("bucket %d: expected %d, got %d", i, count, series.Data[i])
		}
	}
	if series.Labels[6] != "31 Aug" {
		t.Fatalf("expected newest label '31 Aug', got %q", series.Labels[6])
	}
}

func TestTemporalTrendsMonthly(t *testing.T) {
	now := time.Date(2026, time.March, 15, 12, 0, 0, 0, time.UTC)
	svc, db, node := setupAnalytics(t, now)

	seedPledge(t, db, node, pledgedomain.Pledge{CreatedAt: at(2025, 12, 20, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{CreatedAt: at(2026, 2, 10, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{CreatedAt: at(2026, 2, 11, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{CreatedAt: at(2026, 3, 1, 9)})

	series, err := svc.TemporalTrends(context.Background(), analytics.TrendRequest{
		Period: analytics.PeriodMonthly,
		Limit:  3,
	})
	if err != nil {
		t.Fatalf("monthly trend: %v", err)
	}

	wantLabels := []string{"Jan 2026", "Feb 2026", "Mar 2026"}
	wantData := []int64{0, 2, 1}
	for i := range wantLabels {
		if series.Labels[i] != wantLabels[i] {
			t.Fatalf("label %d: expected %q, got %q", i, wantLabels[i], series.Labels[i])
		}
		if series.Data[i] != wantData[i] {
			t.Fatalf("data %d: expected %d, got %d", i, wantData[i], series.Data[i])
		}
	}
}

func TestTemporalTrendsYearlySkipsEmptyYears(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	svc, db, node := setupAnalytics(t, now)

	seedPledge(t, db, node, pledgedomain.Pledge{CreatedAt: at(2024, 6, 1, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{CreatedAt: at(2026, 1, 1, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{CreatedAt: at(2026, 2, 1, 9)})

	series, err := svc.TemporalTrends(context.Background(), analytics.TrendRequest{Period: analytics.PeriodYearly})
	if err != nil {
		t.Fatalf("yearly trend: %v", err)
	}

	if len(series.Labels) != 2 {
		t.Fatalf("expected 2 years with data, got %d", len(series.Labels))
	}
	if series.Labels[0] != "2024" || series.Data[0] != 1 {
		t.Fatalf("expected 2024=1, got %s=%d", series.Labels[0], series.Data[0])
	}
	if series.Labels[1] != "2026" || series.Data[1] != 2 {
		t.Fatalf("expected 2026=2, got %s=%d", series.Labels[1], series.Data[1])
	}
}

func TestTemporalTrendsRejectsUnknownPeriod(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	svc, _, _ := setupAnalytics(t, now)

	_, err := svc.TemporalTrends(context.Background(), analytics.TrendRequest{Period: analytics.Period("weekly")})
	if !errors.Is(err, analytics.ErrInvalidPeriod) {
		t.Fatalf("expected ErrInvalidPeriod, got %v", err)
	}
}

func TestGeographicDistribution(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	svc, db, node := setupAnalytics(t, now)

	seedPledge(t, db, node, pledgedomain.Pledge{State: "Kerala", City: "Kochi", CreatedAt: at(2026, 8, 1, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{State: "Kerala", City: "Kochi", CreatedAt: at(2026, 8, 2, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{State: "Kerala", City: "Thrissur", CreatedAt: at(2026, 8, 3, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{State: "Tamil Nadu", City: "Chennai", CreatedAt: at(2026, 8, 4, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{State: "Tamil Nadu", City: "Chennai", CreatedAt: at(2026, 8, 5, 9)})

	dist, err := svc.GeographicDistribution(context.Background(), 1)
	if err != nil {
		t.Fatalf("geographic distribution: %v", err)
	}

	if len(dist.TopStates) != 1 {
		t.Fatalf("expected 1 top state, got %d", len(dist.TopStates))
	}
	if dist.TopStates[0].State != "Kerala" || dist.TopStates[0].Count != 3 {
		t.Fatalf("expected Kerala=3, got %s=%d", dist.TopStates[0].State, dist.TopStates[0].Count)
	}
	if dist.StateCounts["Kerala"] != 3 || dist.StateCounts["Tamil Nadu"] != 2 {
		t.Fatalf("unexpected state counts: %v", dist.StateCounts)
	}
	// Kochi and Chennai both have 2; the tie breaks alphabetically.
	if len(dist.TopCities) != 1 || dist.TopCities[0].City != "Chennai" {
		t.Fatalf("unexpected top cities: %+v", dist.TopCities)
	}
}

func TestDemographicInsights(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	svc, db, node := setupAnalytics(t, now)

	seedPledge(t, db, node, pledgedomain.Pledge{Age: intptr(12), Gender: strptr("Male"), CreatedAt: at(2026, 8, 1, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{Age: intptr(20), Gender: strptr("Male"), CreatedAt: at(2026, 8, 2, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{Age: intptr(22), Gender: strptr("Female"), CreatedAt: at(2026, 8, 3, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{Age: intptr(40), Gender: strptr("Male"), CreatedAt: at(2026, 8, 4, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{Age: intptr(65), Gender: strptr("Female"), CreatedAt: at(2026, 8, 5, 9)})
	// No recorded age: excluded from the age bands, still counted by gender.
	seedPledge(t, db, node, pledgedomain.Pledge{Gender: strptr("Male"), CreatedAt: at(2026, 8, 6, 9)})

	insights, err := svc.DemographicInsights(context.Background())
	if err != nil {
		t.Fatalf("demographic insights: %v", err)
	}

	wantAge := []int64{1, 2, 0, 1, 0, 1}
	if len(insights.Age.Data) != len(wantAge) {
		t.Fatalf("expected %d age bands, got %d", len(wantAge), len(insights.Age.Data))
	}
	for i, count := range wantAge {
		if insights.Age.Data[i] != count {
			t.Fatalf("age band %q: expected %d, got %d", insights.Age.Labels[i], count, insights.Age.Data[i])
		}
	}

	if len(insights.Gender.Labels) != 2 {
		t.Fatalf("expected 2 genders, got %d", len(insights.Gender.Labels))
	}
	if insights.Gender.Labels[0] != "Male" || insights.Gender.Data[0] != 4 {
		t.Fatalf("expected Male=4 first, got %s=%d", insights.Gender.Labels[0], insights.Gender.Data[0])
	}
}

func TestGrowthMetrics(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	svc, db, node := setupAnalytics(t, now)

	seedPledge(t, db, node, pledgedomain.Pledge{CreatedAt: at(2026, 5, 10, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{CreatedAt: at(2026, 7, 10, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{CreatedAt: at(2026, 7, 11, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{CreatedAt: at(2026, 8, 10, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{CreatedAt: at(2026, 8, 11, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{CreatedAt: at(2026, 8, 12, 9)})

	metrics, err := svc.GrowthMetrics(context.Background())
	if err != nil {
		t.Fatalf("growth metrics: %v", err)
	}

	if len(metrics.Labels) != 12 || len(metrics.Counts) != 12 {
		t.Fatalf("expected 12 months, got %d labels %d counts", len(metrics.Labels), len(metrics.Counts))
	}
	if len(metrics.GrowthRates) != 11 {
		t.Fatalf("expected 11 growth rates, got %d", len(metrics.GrowthRates))
	}
	if metrics.Labels[11] != "Aug 2026" || metrics.Counts[11] != 3 {
		t.Fatalf("expected Aug 2026=3, got %s=%d", metrics.Labels[11], metrics.Counts[11])
	}
	// Aug vs Jul: 3 over 2.
	if metrics.GrowthRates[10] != 50 {
		t.Fatalf("expected final growth 50, got %v", metrics.GrowthRates[10])
	}
	// Jul vs empty Jun reads as +100.
	if metrics.GrowthRates[9] != 100 {
		t.Fatalf("expected growth from zero 100, got %v", metrics.GrowthRates[9])
	}
	// Jun vs May: 0 over 1.
	if metrics.GrowthRates[8] != -100 {
		t.Fatalf("expected growth -100, got %v", metrics.GrowthRates[8])
	}
}

func TestPeakActivity(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	svc, db, node := setupAnalytics(t, now)

	// Two on a Monday morning, one on a Sunday evening.
	seedPledge(t, db, node, pledgedomain.Pledge{CreatedAt: at(2026, 8, 31, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{CreatedAt: at(2026, 8, 31, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{CreatedAt: at(2026, 8, 30, 18)})

	peak, err := svc.PeakActivity(context.Background())
	if err != nil {
		t.Fatalf("peak activity: %v", err)
	}

	if len(peak.Hourly.Labels) != 24 || len(peak.Hourly.Data) != 24 {
		t.Fatalf("expected 24 hour slots, got %d", len(peak.Hourly.Data))
	}
	if peak.Hourly.Labels[9] != "09:00" || peak.Hourly.Data[9] != 2 {
		t.Fatalf("expected 09:00=2, got %s=%d", peak.Hourly.Labels[9], peak.Hourly.Data[9])
	}
	if peak.Hourly.Data[18] != 1 {
		t.Fatalf("expected 18:00=1, got %d", peak.Hourly.Data[18])
	}

	if peak.Weekday.Labels[0] != "Monday" || peak.Weekday.Data[0] != 2 {
		t.Fatalf("expected Monday=2 first, got %s=%d", peak.Weekday.Labels[0], peak.Weekday.Data[0])
	}
	if peak.Weekday.Labels[6] != "Sunday" || peak.Weekday.Data[6] != 1 {
		t.Fatalf("expected Sunday=1 last, got %s=%d", peak.Weekday.Labels[6], peak.Weekday.Data[6])
	}
}

func TestComparativeTreatsZeroPreviousAsFlat(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	svc, db, node := setupAnalytics(t, now)

	// Data only in the current month and year; nothing to compare against.
	seedPledge(t, db, node, pledgedomain.Pledge{CreatedAt: at(2026, 8, 10, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{CreatedAt: at(2026, 8, 11, 9)})

	comp, err := svc.ComparativeMetrics(context.Background())
	if err != nil {
		t.Fatalf("comparative metrics: %v", err)
	}
	if comp.YearOverYear.Count != 2 || comp.YearOverYear.PrevCount != 0 {
		t.Fatalf("unexpected year pair: %+v", comp.YearOverYear)
	}
	if comp.YearOverYear.GrowthRate != 0 || comp.MonthOverMonth.GrowthRate != 0 {
		t.Fatalf("expected flat growth against empty periods, got %+v", comp)
	}

	// The summary card reads the same situation as +100.
	stats, err := svc.SummaryStats(context.Background(), analytics.SummaryFilter{})
	if err != nil {
		t.Fatalf("summary stats: %v", err)
	}
	if stats.YearlyChange != 100 {
		t.Fatalf("expected summary yearly change 100, got %v", stats.YearlyChange)
	}
}

func TestSoftDeletedPledgesExcluded(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	svc, db, node := setupAnalytics(t, now)

	seedPledge(t, db, node, pledgedomain.Pledge{Source: "web", CreatedAt: at(2026, 8, 31, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{Source: "web", CreatedAt: at(2026, 8, 31, 10)})
	removed := seedPledge(t, db, node, pledgedomain.Pledge{Source: "csv_import", CreatedAt: at(2026, 8, 31, 11)})
	if err := db.Model(&pledgedomain.Pledge{}).Where("id = ?", removed.ID).Update("is_active", false).Error; err != nil {
		t.Fatalf("deactivate pledge: %v", err)
	}

	stats, err := svc.SummaryStats(context.Background(), analytics.SummaryFilter{})
	if err != nil {
		t.Fatalf("summary stats: %v", err)
	}
	if stats.TotalPledges != 2 || stats.TodayPledges != 2 {
		t.Fatalf("expected deactivated pledge excluded, got %d/%d", stats.TotalPledges, stats.TodayPledges)
	}

	sources, err := svc.SourceDistribution(context.Background())
	if err != nil {
		t.Fatalf("source distribution: %v", err)
	}
	if len(sources.Labels) != 1 || sources.Labels[0] != "web" || sources.Data[0] != 2 {
		t.Fatalf("expected only web=2, got %+v", sources)
	}
}

func TestCategoricalBreakdowns(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	svc, db, node := setupAnalytics(t, now)

	seedPledge(t, db, node, pledgedomain.Pledge{
		State: "Kerala", District: strptr("Ernakulam"), LanguagePreference: strptr("Malayalam"),
		OrgansConsented: "Eyes", CreatedAt: at(2026, 8, 1, 9),
	})
	seedPledge(t, db, node, pledgedomain.Pledge{
		State: "Kerala", District: strptr("Ernakulam"), LanguagePreference: strptr("Malayalam"),
		OrgansConsented: "Eyes", CreatedAt: at(2026, 8, 2, 9),
	})
	seedPledge(t, db, node, pledgedomain.Pledge{
		State: "Tamil Nadu", District: strptr("Chennai"), LanguagePreference: strptr("Tamil"),
		OrgansConsented: "Eyes, Skin", CreatedAt: at(2026, 8, 3, 9),
	})

	languages, err := svc.LanguageDistribution(context.Background())
	if err != nil {
		t.Fatalf("language distribution: %v", err)
	}
	if len(languages) != 2 || languages[0].Label != "Malayalam" || languages[0].Value != 2 {
		t.Fatalf("unexpected languages: %+v", languages)
	}

	organs, err := svc.MedicalConsentStats(context.Background())
	if err != nil {
		t.Fatalf("consent stats: %v", err)
	}
	if len(organs) != 2 || organs[0].Label != "Eyes" || organs[0].Value != 2 {
		t.Fatalf("unexpected organs: %+v", organs)
	}

	districts, err := svc.DistrictStats(context.Background(), "Kerala")
	if err != nil {
		t.Fatalf("district stats: %v", err)
	}
	if len(districts) != 1 || districts[0].Label != "Ernakulam" || districts[0].Value != 2 {
		t.Fatalf("unexpected districts: %+v", districts)
	}

	empty, err := svc.DistrictStats(context.Background(), "Goa")
	if err != nil {
		t.Fatalf("district stats for empty state: %v", err)
	}
	if empty == nil || len(empty) != 0 {
		t.Fatalf("expected empty slice, got %+v", empty)
	}
}

func TestHistoricalComparisonWindow(t *testing.T) {
	now := time.Date(2026, time.August, 31, 12, 0, 0, 0, time.UTC)
	svc, db, node := setupAnalytics(t, now)

	seedPledge(t, db, node, pledgedomain.Pledge{CreatedAt: at(2020, 6, 1, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{CreatedAt: at(2024, 6, 1, 9)})
	seedPledge(t, db, node, pledgedomain.Pledge{CreatedAt: at(2026, 6, 1, 9)})

	years, err := svc.HistoricalComparison(context.Background(), 5)
	if err != nil {
		t.Fatalf("historical comparison: %v", err)
	}

	// 2020 falls outside the five-year window ending at 2026.
	if len(years) != 2 {
		t.Fatalf("expected 2 years, got %d", len(years))
	}
	if years[0].Year != 2024 || years[1].Year != 2026 {
		t.Fatalf("unexpected years: %+v", years)
	}
}

func setupAnalytics(t *testing.T, now time.Time) (analytics.Service, *gorm.DB, *snowflake.Node) {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", t.Name())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{})
	if err != nil {
		t.Fatalf("open db: %v", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		t.Fatalf("db handle: %v", err)
	}
	sqlDB.SetMaxOpenConns(1)
	if err := db.AutoMigrate(&pledgedomain.Pledge{}); err != nil {
		t.Fatalf("migrate: %v", err)
	}

	node := mustNode(t)
	svc := NewService(Params{
		Store: repository.NewStore(repository.StoreParams{DB: db}),
		Log:   zap.NewNop(),
		Clock: clock.NewFakeClock(now),
	})
	return svc, db, node
}

func seedPledge(t *testing.T, db *gorm.DB, node *snowflake.Node, p pledgedomain.Pledge) pledgedomain.Pledge {
	t.Helper()

	p.ID = node.Generate()
	p.ReferenceNumber = "NEB-TEST-" + p.ID.String()
	if p.FullName == "" {
		p.FullName = "Asha Menon"
	}
	if p.Mobile == "" {
		p.Mobile = "9876543210"
	}
	if p.Country == "" {
		p.Country = "India"
	}
	if p.OrgansConsented == "" {
		p.OrgansConsented = "Eyes"
	}
	if p.Source == "" {
		p.Source = "web"
	}
	p.ConsentGiven = true
	p.IsActive = true
	if p.UpdatedAt.IsZero() {
		p.UpdatedAt = p.CreatedAt
	}

	if err := db.Create(&p).Error; err != nil {
		t.Fatalf("seed pledge: %v", err)
	}
	return p
}

func mustNode(t *testing.T) *snowflake.Node {
	t.Helper()
	node, err := snowflake.NewNode(1)
	if err != nil {
		t.Fatalf("snowflake node: %v", err)
	}
	return node
}

func at(year int, month time.Month, day, hour int) time.Time {
	return time.Date(year, month, day, hour, 0, 0, 0, time.UTC)
}

func strptr(s string) *string { return &s }

func intptr(n int) *int { return &n }
