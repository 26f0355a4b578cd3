// Package period holds the calendar arithmetic behind the dashboard
// aggregations. Everything here is pure and operates in UTC; the reference
// instant is always passed in so results stay deterministic under test.
package period

import "time"

const (
	dayKeyLayout     = "2006-01-02"
	dayLabelLayout   = "02 Jan"
	monthLabelLayout = "Jan 2006"
	yearLabelLayout  = "2006"
)

// Boundaries describes the calendar periods surrounding a reference instant.
type Boundaries struct {
	Today     time.Time
	Yesterday time.Time

	CurrentYear  int
	CurrentMonth time.Month

	// Previous calendar month, with December/year-1 rollover in January.
	PrevMonthYear int
	PrevMonth     time.Month

	PrevYear int
}

// BoundariesAt computes the period boundaries for now, truncated to UTC dates.
func BoundariesAt(now time.Time) Boundaries {
	now = now.UTC()
	today := Date(now)

	prevMonthYear := now.Year()
	prevMonth := now.Month() - 1
	if now.Month() == time.January {
		prevMonthYear = now.Year() - 1
		prevMonth = time.December
	}

	return Boundaries{
		Today:         today,
		Yesterday:     today.AddDate(0, 0, -1),
		CurrentYear:   now.Year(),
		CurrentMonth:  now.Month(),
		PrevMonthYear: prevMonthYear,
		PrevMonth:     prevMonth,
		PrevYear:      now.Year() - 1,
	}
}

// Date truncates an instant to its UTC calendar date.
func Date(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// DayBucket is one zero-defaulted day slot in a gap-filled daily series.
type DayBucket struct {
	Date  time.Time
	Key   string
	Label string
}

// LastNDays returns exactly n day buckets ending at now's date, oldest first.
func LastNDays(now time.Time, n int) []DayBucket {
	if n <= 0 {
		return nil
	}
	end := Date(now)
	buckets := make([]DayBucket, 0, n)
	for i := n - 1; i >= 0; i-- {
		d := end.AddDate(0, 0, -i)
		buckets = append(buckets, DayBucket{
			Date:  d,
			Key:   d.Format(dayKeyLayout),
			Label: d.Format(dayLabelLayout),
		})
	}
	return buckets
}

// MonthBucket is one zero-defaulted month slot in a gap-filled monthly series.
type MonthBucket struct {
	Year  int
	Month time.Month
	Label string
}

// LastNMonths returns exactly n month buckets ending at now's month, oldest
// first. Months are stepped by calendar arithmetic on the first of the month;
// fixed 30-day steps would skip or repeat months near 28/31-day boundaries.
func LastNMonths(now time.Time, n int) []MonthBucket {
	if n <= 0 {
		return nil
	}
	now = now.UTC()
	first := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, time.UTC)
	buckets := make([]MonthBucket, 0, n)
	for i := n - 1; i >= 0; i-- {
		m := first.AddDate(0, -i, 0)
		buckets = append(buckets, MonthBucket{
			Year:  m.Year(),
			Month: m.Month(),
			Label: m.Format(monthLabelLayout),
		})
	}
	return buckets
}

// YearLabel formats a year the way the yearly trend charts expect.
func YearLabel(year int) string {
	return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC).Format(yearLabelLayout)
}

// HourOfDay extracts the UTC hour (0-23) of an instant.
func HourOfDay(t time.Time) int {
	return t.UTC().Hour()
}

// Weekday maps an instant to a Monday-first index: 0=Monday .. 6=Sunday.
func Weekday(t time.Time) int {
	return (int(t.UTC().Weekday()) + 6) % 7
}

// SundayIndexedFor returns the Sunday-first day number (0=Sunday, as emitted
// by the store's day-of-week extraction) for a Monday-first histogram index.
func SundayIndexedFor(mondayIndex int) int {
	return (mondayIndex + 1) % 7
}

// DayNames lists weekday labels in Monday-first order, matching the
// day-of-week histogram.
var DayNames = [7]string{"Monday", "Tuesday", "Wednesday", "Thursday", "Friday", "Saturday", "Sunday"}
