package domain

import (
	"context"
	"time"
)

// CountFilter narrows a pledge count. Zero values mean "no constraint".
// OnDate matches the pledge's UTC creation date; From/To bound created_at as
// a half-open range [From, To).
type CountFilter struct {
	OnDate *time.Time
	From   *time.Time
	To     *time.Time
	Year   int
	Month  time.Month
	State  string
}

// Store is the query boundary the aggregation engine reads through. It is
// implemented by the pledge repository with dialect-specific SQL; every
// method counts active pledges only.
//
// Day-of-week buckets are Sunday=0 at this boundary, matching what the
// databases emit; the engine remaps them to Monday-first.
type Store interface {
	Count(ctx context.Context, filter CountFilter) (int64, error)

	CountByDate(ctx context.Context, from, to time.Time, state string) (map[string]int64, error)
	CountByYearMonth(ctx context.Context, from time.Time, state string) (map[string]int64, error)
	CountByYear(ctx context.Context, state string) ([]YearCount, error)
	CountByHour(ctx context.Context) (map[int]int64, error)
	CountByWeekday(ctx context.Context) (map[int]int64, error)

	CountByState(ctx context.Context) ([]StateCount, error)
	CountByCity(ctx context.Context, limit int) ([]CityCount, error)
	CountByDistrict(ctx context.Context, state string) ([]LabelValue, error)
	CountByAgeBand(ctx context.Context) (map[string]int64, error)
	CountByGender(ctx context.Context) ([]LabelValue, error)
	CountBySource(ctx context.Context) ([]LabelValue, error)
	CountByLanguage(ctx context.Context) ([]LabelValue, error)
	CountByOrgans(ctx context.Context) ([]LabelValue, error)
}
