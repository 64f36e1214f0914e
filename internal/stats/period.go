// Package stats resolves reporting periods and assembles aggregated click
// reports over the event log.
package stats

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"
)

// ErrInvalidPeriod marks an unknown period token or unparsable explicit
// date. Handlers map it to a client error, never to an empty result.
var ErrInvalidPeriod = errors.New("invalid period")

// dateLayout is the wire format for explicit start/end dates.
const dateLayout = "2006-01-02"

// Rolling lookback durations.
const (
	rollingDay     = 24 * time.Hour
	rollingWeek    = 7 * rollingDay
	rollingMonth   = 30 * rollingDay
	rollingQuarter = 90 * rollingDay
	rollingYear    = 365 * rollingDay
)

const (
	monthsPerQuarter = 3
	daysPerWeek      = 7
)

// Interval is a resolved reporting window. Rolling windows end at the
// resolution instant; calendar windows end at the last second of the period.
type Interval struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Resolve translates a period token into an interval relative to now.
// Resolving the same calendar token twice without wall-clock movement yields
// an identical interval; rolling windows advance with now.
func Resolve(token string, now time.Time) (Interval, error) {
	switch token {
	case "day":
		return Interval{Start: now.Add(-rollingDay), End: now}, nil
	case "week":
		return Interval{Start: now.Add(-rollingWeek), End: now}, nil
	case "month":
		return Interval{Start: now.Add(-rollingMonth), End: now}, nil
	case "quarter":
		return Interval{Start: now.Add(-rollingQuarter), End: now}, nil
	case "year_to_date":
		return Interval{Start: now.Add(-rollingYear), End: now}, nil
	case "yesterday":
		start := midnight(now).AddDate(0, 0, -1)
		return Interval{Start: start, End: endOfDay(start)}, nil
	case "all_time":
		return Interval{Start: time.Unix(0, 0).In(now.Location()), End: now}, nil
	}

	return resolveCompound(token, now)
}

// resolveCompound handles the parameterized tokens: last_week_N,
// last_month_N, month_M_Y, quarter_Q_Y, year_Y.
func resolveCompound(token string, now time.Time) (Interval, error) {
	parts := strings.Split(token, "_")

	switch {
	case len(parts) == 3 && parts[0] == "last" && parts[1] == "week":
		n, err := positiveInt(parts[2])
		if err != nil {
			return Interval{}, badToken(token)
		}
		start := mondayOf(now).AddDate(0, 0, -daysPerWeek*n)
		return Interval{Start: start, End: endOfDay(start.AddDate(0, 0, daysPerWeek-1))}, nil

	case len(parts) == 3 && parts[0] == "last" && parts[1] == "month":
		n, err := positiveInt(parts[2])
		if err != nil {
			return Interval{}, badToken(token)
		}
		start := firstOfMonth(now).AddDate(0, -n, 0)
		return Interval{Start: start, End: endOfMonth(start)}, nil

	case len(parts) == 3 && parts[0] == "month":
		m, errM := positiveInt(parts[1])
		y, errY := yearValue(parts[2])
		if errM != nil || errY != nil || m > 12 {
			return Interval{}, badToken(token)
		}
		start := time.Date(y, time.Month(m), 1, 0, 0, 0, 0, now.Location())
		return Interval{Start: start, End: endOfMonth(start)}, nil

	case len(parts) == 3 && parts[0] == "quarter":
		q, errQ := positiveInt(parts[1])
		y, errY := yearValue(parts[2])
		if errQ != nil || errY != nil || q > 4 {
			return Interval{}, badToken(token)
		}
		startMonth := time.Month((q-1)*monthsPerQuarter + 1)
		start := time.Date(y, startMonth, 1, 0, 0, 0, 0, now.Location())
		end := start.AddDate(0, monthsPerQuarter, 0).Add(-time.Second)
		return Interval{Start: start, End: end}, nil

	case len(parts) == 2 && parts[0] == "year":
		y, err := yearValue(parts[1])
		if err != nil {
			return Interval{}, badToken(token)
		}
		start := time.Date(y, time.January, 1, 0, 0, 0, 0, now.Location())
		return Interval{Start: start, End: start.AddDate(1, 0, 0).Add(-time.Second)}, nil
	}

	return Interval{}, badToken(token)
}

// ResolveRange translates explicit start/end dates into an interval. The
// end date is resolved to the last second of that day.
func ResolveRange(startDate, endDate string, loc *time.Location) (Interval, error) {
	start, err := time.ParseInLocation(dateLayout, startDate, loc)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: start_date %q", ErrInvalidPeriod, startDate)
	}
	end, err := time.ParseInLocation(dateLayout, endDate, loc)
	if err != nil {
		return Interval{}, fmt.Errorf("%w: end_date %q", ErrInvalidPeriod, endDate)
	}
	if end.Before(start) {
		return Interval{}, fmt.Errorf("%w: end_date precedes start_date", ErrInvalidPeriod)
	}
	return Interval{Start: start, End: endOfDay(end)}, nil
}

func badToken(token string) error {
	return fmt.Errorf("%w: %q", ErrInvalidPeriod, token)
}

func positiveInt(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n < 1 {
		return 0, ErrInvalidPeriod
	}
	return n, nil
}

func yearValue(s string) (int, error) {
	y, err := strconv.Atoi(s)
	if err != nil || y < 1970 || y > 9999 {
		return 0, ErrInvalidPeriod
	}
	return y, nil
}

// midnight returns the start of t's calendar day.
func midnight(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, t.Location())
}

// endOfDay returns the last second of the calendar day containing t.
func endOfDay(t time.Time) time.Time {
	return midnight(t).AddDate(0, 0, 1).Add(-time.Second)
}

// mondayOf returns the start of the Monday-based week containing t.
func mondayOf(t time.Time) time.Time {
	wd := int(t.Weekday())
	if wd == 0 {
		wd = daysPerWeek // Sunday belongs to the preceding Monday
	}
	return midnight(t).AddDate(0, 0, -(wd - 1))
}

// firstOfMonth returns the start of t's calendar month.
func firstOfMonth(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, t.Location())
}

// endOfMonth returns the last second of the month containing t.
func endOfMonth(t time.Time) time.Time {
	return firstOfMonth(t).AddDate(0, 1, 0).Add(-time.Second)
}
