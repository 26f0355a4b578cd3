package repository

import (
	"context"
	"time"

	"go.uber.org/fx"
	"gorm.io/gorm"

	analytics "github.com/sightcare/netra/internal/analytics/domain"
	"github.com/sightcare/netra/internal/pledge/domain"
)

// dialectExprs holds the calendar-extraction SQL for one database dialect.
// Day-of-week is normalized to Sunday=0 across all three.
type dialectExprs struct {
	year     string
	month    string
	dateKey  string
	monthKey string
	hour     string
	weekday  string
}

var exprsByDialect = map[string]dialectExprs{
	"postgres": {
		year:     "EXTRACT(YEAR FROM created_at)::int",
		month:    "EXTRACT(MONTH FROM created_at)::int",
		dateKey:  "TO_CHAR(created_at, 'YYYY-MM-DD')",
		monthKey: "TO_CHAR(created_at, 'YYYY-MM')",
		hour:     "EXTRACT(HOUR FROM created_at)::int",
		weekday:  "EXTRACT(DOW FROM created_at)::int",
	},
	"sqlite": {
		year:     "CAST(strftime('%Y', created_at) AS INTEGER)",
		month:    "CAST(strftime('%m', created_at) AS INTEGER)",
		dateKey:  "strftime('%Y-%m-%d', created_at)",
		monthKey: "strftime('%Y-%m', created_at)",
		hour:     "CAST(strftime('%H', created_at) AS INTEGER)",
		weekday:  "CAST(strftime('%w', created_at) AS INTEGER)",
	},
	"mysql": {
		year:     "YEAR(created_at)",
		month:    "MONTH(created_at)",
		dateKey:  "DATE_FORMAT(created_at, '%Y-%m-%d')",
		monthKey: "DATE_FORMAT(created_at, '%Y-%m')",
		hour:     "HOUR(created_at)",
		weekday:  "DAYOFWEEK(created_at) - 1",
	},
}

const ageBandExpr = `CASE
	WHEN age < 18 THEN '< 18'
	WHEN age BETWEEN 18 AND 25 THEN '18-25'
	WHEN age BETWEEN 26 AND 35 THEN '26-35'
	WHEN age BETWEEN 36 AND 45 THEN '36-45'
	WHEN age BETWEEN 46 AND 60 THEN '46-60'
	ELSE '60+'
END`

type StoreParams struct {
	fx.In

	DB *gorm.DB
}

// Store answers the aggregation engine's queries against the pledges table.
type Store struct {
	db    *gorm.DB
	exprs dialectExprs
}

func NewStore(p StoreParams) analytics.Store {
	exprs, ok := exprsByDialect[p.DB.Dialector.Name()]
	if !ok {
		exprs = exprsByDialect["postgres"]
	}
	return &Store{db: p.DB, exprs: exprs}
}

func (s *Store) active(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).
		Model(&domain.Pledge{}).
		Where("is_active = ?", true)
}

func (s *Store) Count(ctx context.Context, filter analytics.CountFilter) (int64, error) {
	stmt := s.active(ctx)
	if filter.OnDate != nil {
		day := filter.OnDate.UTC().Truncate(24 * time.Hour)
		stmt = stmt.Where("created_at >= ? AND created_at < ?", day, day.AddDate(0, 0, 1))
	}
	if filter.From != nil {
		stmt = stmt.Where("created_at >= ?", *filter.From)
	}
	if filter.To != nil {
		stmt = stmt.Where("created_at < ?", *filter.To)
	}
	if filter.Year != 0 {
		stmt = stmt.Where(s.exprs.year+" = ?", filter.Year)
	}
	if filter.Month != 0 {
		stmt = stmt.Where(s.exprs.month+" = ?", int(filter.Month))
	}
	if filter.State != "" {
		stmt = stmt.Where("state = ?", filter.State)
	}

	var count int64
	err := stmt.Count(&count).Error
	return count, err
}

type keyCountRow struct {
	Key   string `gorm:"column:bucket"`
	Count int64  `gorm:"column:count"`
}

type intCountRow struct {
	Key   int   `gorm:"column:bucket"`
	Count int64 `gorm:"column:count"`
}

func (s *Store) CountByDate(ctx context.Context, from, to time.Time, state string) (map[string]int64, error) {
	stmt := s.active(ctx).
		Select(s.exprs.dateKey + " AS bucket, COUNT(*) AS count").
		Where("created_at >= ? AND created_at < ?", from, to)
	if state != "" {
		stmt = stmt.Where("state = ?", state)
	}

	var rows []keyCountRow
	if err := stmt.Group("bucket").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return keyCounts(rows), nil
}

func (s *Store) CountByYearMonth(ctx context.Context, from time.Time, state string) (map[string]int64, error) {
	stmt := s.active(ctx).
		Select(s.exprs.monthKey + " AS bucket, COUNT(*) AS count").
		Where("created_at >= ?", from)
	if state != "" {
		stmt = stmt.Where("state = ?", state)
	}

	var rows []keyCountRow
	if err := stmt.Group("bucket").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return keyCounts(rows), nil
}

func (s *Store) CountByYear(ctx context.Context, state string) ([]analytics.YearCount, error) {
	stmt := s.active(ctx).
		Select(s.exprs.year + " AS bucket, COUNT(*) AS count")
	if state != "" {
		stmt = stmt.Where("state = ?", state)
	}

	var rows []intCountRow
	if err := stmt.Group("bucket").Order("bucket asc").Scan(&rows).Error; err != nil {
		return nil, err
	}
	years := make([]analytics.YearCount, 0, len(rows))
	for _, row := range rows {
		years = append(years, analytics.YearCount{Year: row.Key, Count: row.Count})
	}
	return years, nil
}

func (s *Store) CountByHour(ctx context.Context) (map[int]int64, error) {
	var rows []intCountRow
	err := s.active(ctx).
		Select(s.exprs.hour + " AS bucket, COUNT(*) AS count").
		Group("bucket").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return intCounts(rows), nil
}

func (s *Store) CountByWeekday(ctx context.Context) (map[int]int64, error) {
	var rows []intCountRow
	err := s.active(ctx).
		Select(s.exprs.weekday + " AS bucket, COUNT(*) AS count").
		Group("bucket").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return intCounts(rows), nil
}

func (s *Store) CountByState(ctx context.Context) ([]analytics.StateCount, error) {
	type row struct {
		State string `gorm:"column:state"`
		Count int64  `gorm:"column:count"`
	}
	var rows []row
	err := s.active(ctx).
		Select("state, COUNT(*) AS count").
		Where("state <> ''").
		Group("state").
		Order("count desc, state asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	states := make([]analytics.StateCount, 0, len(rows))
	for _, r := range rows {
		states = append(states, analytics.StateCount{State: r.State, Count: r.Count})
	}
	return states, nil
}

func (s *Store) CountByCity(ctx context.Context, limit int) ([]analytics.CityCount, error) {
	type row struct {
		City  string `gorm:"column:city"`
		State string `gorm:"column:state"`
		Count int64  `gorm:"column:count"`
	}
	var rows []row
	err := s.active(ctx).
		Select("city, state, COUNT(*) AS count").
		Where("city <> ''").
		Group("city, state").
		Order("count desc, city asc").
		Limit(limit).
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	cities := make([]analytics.CityCount, 0, len(rows))
	for _, r := range rows {
		cities = append(cities, analytics.CityCount{City: r.City, State: r.State, Count: r.Count})
	}
	return cities, nil
}

func (s *Store) CountByDistrict(ctx context.Context, state string) ([]analytics.LabelValue, error) {
	stmt := s.active(ctx).
		Select("district AS bucket, COUNT(*) AS count").
		Where("district IS NOT NULL AND district <> ''")
	if state != "" {
		stmt = stmt.Where("state = ?", state)
	}

	var rows []keyCountRow
	if err := stmt.Group("bucket").Order("count desc, bucket asc").Scan(&rows).Error; err != nil {
		return nil, err
	}
	return labelValues(rows), nil
}

func (s *Store) CountByAgeBand(ctx context.Context) (map[string]int64, error) {
	var rows []keyCountRow
	err := s.active(ctx).
		Select(ageBandExpr + " AS bucket, COUNT(*) AS count").
		Where("age IS NOT NULL").
		Group("bucket").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return keyCounts(rows), nil
}

func (s *Store) CountByGender(ctx context.Context) ([]analytics.LabelValue, error) {
	return s.categorical(ctx, "gender")
}

func (s *Store) CountBySource(ctx context.Context) ([]analytics.LabelValue, error) {
	return s.categorical(ctx, "source")
}

func (s *Store) CountByLanguage(ctx context.Context) ([]analytics.LabelValue, error) {
	return s.categorical(ctx, "language_preference")
}

func (s *Store) CountByOrgans(ctx context.Context) ([]analytics.LabelValue, error) {
	return s.categorical(ctx, "organs_consented")
}

func (s *Store) categorical(ctx context.Context, column string) ([]analytics.LabelValue, error) {
	var rows []keyCountRow
	err := s.active(ctx).
		Select(column+" AS bucket, COUNT(*) AS count").
		Where(column+" IS NOT NULL AND "+column+" <> ''").
		Group("bucket").
		Order("count desc, bucket asc").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	return labelValues(rows), nil
}

func keyCounts(rows []keyCountRow) map[string]int64 {
	counts := make(map[string]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts
}

func intCounts(rows []intCountRow) map[int]int64 {
	counts := make(map[int]int64, len(rows))
	for _, row := range rows {
		counts[row.Key] = row.Count
	}
	return counts
}

func labelValues(rows []keyCountRow) []analytics.LabelValue {
	values := make([]analytics.LabelValue, 0, len(rows))
	for _, row := range rows {
		values = append(values, analytics.LabelValue{Label: row.Key, Value: row.Count})
	}
	return values
}
