package progression

import (
	"fmt"
	"strings"
	"time"

	appErrors "github.com/noah-isme/intern-progress-api/pkg/errors"
)

const prorationDays = 30

// Period selects an attendance statistics window.
type Period string

const (
	PeriodMonth  Period = "month"
	PeriodWeek   Period = "week"
	PeriodCustom Period = "custom"
)

// Calendar counts working days in the programme's time zone, skipping one rest day per week.
type Calendar struct {
	restDay           time.Weekday
	loc               *time.Location
	lessonsPerWorkday int
}

// NewCalendar builds a calendar. A nil location means UTC.
func NewCalendar(restDay time.Weekday, loc *time.Location, lessonsPerWorkday int) *Calendar {
	if loc == nil {
		loc = time.UTC
	}
	if lessonsPerWorkday <= 0 {
		lessonsPerWorkday = 2
	}
	return &Calendar{restDay: restDay, loc: loc, lessonsPerWorkday: lessonsPerWorkday}
}

// ParseWeekday accepts English weekday names ("sunday", "Sun").
func ParseWeekday(raw string) (time.Weekday, error) {
	key := strings.ToLower(strings.TrimSpace(raw))
	for d := time.Sunday; d <= time.Saturday; d++ {
		name := strings.ToLower(d.String())
		if key == name || key == name[:3] {
			return d, nil
		}
	}
	return time.Sunday, fmt.Errorf("unknown weekday %q", raw)
}

// Location returns the calendar time zone.
func (c *Calendar) Location() *time.Location { return c.loc }

// RestDay returns the weekday excluded from working-day counts.
func (c *Calendar) RestDay() time.Weekday { return c.restDay }

// StartOfDay truncates t to local midnight.
func (c *Calendar) StartOfDay(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, c.loc)
}

// StartOfMonth returns local midnight of the first day of t's month.
func (c *Calendar) StartOfMonth(t time.Time) time.Time {
	t = t.In(c.loc)
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, c.loc)
}

// StartOfWeek returns local midnight of the Monday of t's week.
func (c *Calendar) StartOfWeek(t time.Time) time.Time {
	day := c.StartOfDay(t)
	offset := (int(day.Weekday()) + 6) % 7
	return day.AddDate(0, 0, -offset)
}

// IsWorkday reports whether t falls outside the rest day.
func (c *Calendar) IsWorkday(t time.Time) bool {
	return t.In(c.loc).Weekday() != c.restDay
}

// WorkdayCount counts the dates in [start, end], both inclusive, that are not the rest day.
func (c *Calendar) WorkdayCount(start, end time.Time) int {
	from := c.StartOfDay(start)
	to := c.StartOfDay(end)
	if to.Before(from) {
		return 0
	}
	days := dateSpan(from, to) + 1
	count := (days / 7) * 6
	day := from.AddDate(0, 0, (days/7)*7)
	for i := 0; i < days%7; i++ {
		if day.Weekday() != c.restDay {
			count++
		}
		day = day.AddDate(0, 0, 1)
	}
	return count
}

// WorkdaysInMonth counts the working days of t's month.
func (c *Calendar) WorkdaysInMonth(t time.Time) int {
	start := c.StartOfMonth(t)
	return c.WorkdayCount(start, start.AddDate(0, 1, -1))
}

// MonthlyNorm prorates quota by the working days elapsed this month since effectiveStart.
// Fractions round up; the full quota is due once every working day of the month has elapsed.
func (c *Calendar) MonthlyNorm(quota int, effectiveStart, now time.Time) int {
	if quota <= 0 || effectiveStart.After(now) {
		return 0
	}
	from := latest(effectiveStart, c.StartOfMonth(now))
	total := c.WorkdaysInMonth(now)
	elapsed := c.WorkdayCount(from, now)
	if total == 0 || elapsed >= total {
		return quota
	}
	return ceilDiv(quota*elapsed, total)
}

// ElapsedNorm prorates quota by calendar days elapsed this month since effectiveStart, capped at 30.
// The current day counts as started, so the goal is never zero once the period has begun.
func (c *Calendar) ElapsedNorm(quota int, effectiveStart, now time.Time) int {
	if quota <= 0 || effectiveStart.After(now) {
		return 0
	}
	days := ceilDays(now.Sub(latest(effectiveStart, c.StartOfMonth(now))))
	if days < 1 {
		days = 1
	}
	if days > prorationDays {
		days = prorationDays
	}
	return ceilDiv(days*quota, prorationDays)
}

// AttendanceNorm is the expected visit count for a statistics window; custom windows have none.
func (c *Calendar) AttendanceNorm(period Period, now time.Time) int {
	switch period {
	case PeriodMonth:
		return c.WorkdaysInMonth(now) * c.lessonsPerWorkday
	case PeriodWeek:
		return 6 * c.lessonsPerWorkday
	default:
		return 0
	}
}

// WindowNorm is the expected visit count for the half-open range [start, end).
func (c *Calendar) WindowNorm(start, end time.Time) int {
	if !end.After(start) {
		return 0
	}
	return c.WorkdayCount(start, end.Add(-time.Nanosecond)) * c.lessonsPerWorkday
}

// AttendanceWindow resolves a period to a half-open [start, end) range.
// Custom windows use from and to as inclusive dates.
func (c *Calendar) AttendanceWindow(period Period, now time.Time, from, to *time.Time) (time.Time, time.Time, error) {
	switch period {
	case PeriodMonth, "":
		start := c.StartOfMonth(now)
		return start, start.AddDate(0, 1, 0), nil
	case PeriodWeek:
		start := c.StartOfWeek(now)
		return start, start.AddDate(0, 0, 7), nil
	case PeriodCustom:
		if from == nil || to == nil {
			return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "custom period requires from and to dates")
		}
		start, end := c.StartOfDay(*from), c.StartOfDay(*to).AddDate(0, 0, 1)
		if !end.After(start) {
			return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, "from must not be after to")
		}
		return start, end, nil
	default:
		return time.Time{}, time.Time{}, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unknown period %q", period))
	}
}

// dateSpan counts whole calendar days between two local midnights, immune to DST shifts.
func dateSpan(from, to time.Time) int {
	a := time.Date(from.Year(), from.Month(), from.Day(), 0, 0, 0, 0, time.UTC)
	b := time.Date(to.Year(), to.Month(), to.Day(), 0, 0, 0, 0, time.UTC)
	return int(b.Sub(a) / (24 * time.Hour))
}

func ceilDays(d time.Duration) int {
	if d <= 0 {
		return 0
	}
	days := int(d / (24 * time.Hour))
	if d%(24*time.Hour) != 0 {
		days++
	}
	return days
}

func ceilDiv(a, b int) int {
	if b <= 0 || a <= 0 {
		return 0
	}
	return (a + b - 1) / b
}

func latest(a, b time.Time) time.Time {
	if a.After(b) {
		return a
	}
	return b
}
