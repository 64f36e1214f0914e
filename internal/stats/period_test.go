package stats_test

import (
	"errors"
	"testing"
	"time"

	"github.com/jonesrussell/linktrack/internal/stats"
)

// fixedNow is a Wednesday afternoon.
var fixedNow = time.Date(2026, time.March, 11, 15, 30, 45, 0, time.UTC)

func TestResolve_RollingDay(t *testing.T) {
	iv, err := stats.Resolve("day", fixedNow)
	if err != nil {
		t.Fatalf("Resolve(day): %v", err)
	}
	if !iv.End.Equal(fixedNow) {
		t.Fatalf("End = %v, want %v", iv.End, fixedNow)
	}
	if !iv.Start.Equal(fixedNow.Add(-24 * time.Hour)) {
		t.Fatalf("Start = %v, want now-24h", iv.Start)
	}
}

func TestResolve_Yesterday(t *testing.T) {
	iv, err := stats.Resolve("yesterday", fixedNow)
	if err != nil {
		t.Fatalf("Resolve(yesterday): %v", err)
	}

	wantStart := time.Date(2026, time.March, 10, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, time.March, 10, 23, 59, 59, 0, time.UTC)
	if !iv.Start.Equal(wantStart) {
		t.Fatalf("Start = %v, want %v", iv.Start, wantStart)
	}
	if !iv.End.Equal(wantEnd) {
		t.Fatalf("End = %v, want %v", iv.End, wantEnd)
	}
}

func TestResolve_LastWeek(t *testing.T) {
	iv, err := stats.Resolve("last_week_1", fixedNow)
	if err != nil {
		t.Fatalf("Resolve(last_week_1): %v", err)
	}

	// The Monday-based week before the one containing fixedNow.
	wantStart := time.Date(2026, time.March, 2, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, time.March, 8, 23, 59, 59, 0, time.UTC)
	if !iv.Start.Equal(wantStart) {
		t.Fatalf("Start = %v, want %v", iv.Start, wantStart)
	}
	if !iv.End.Equal(wantEnd) {
		t.Fatalf("End = %v, want %v", iv.End, wantEnd)
	}
}

func TestResolve_ExplicitMonth(t *testing.T) {
	iv, err := stats.Resolve("month_1_2026", fixedNow)
	if err != nil {
		t.Fatalf("Resolve(month_1_2026): %v", err)
	}

	wantStart := time.Date(2026, time.January, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, time.January, 31, 23, 59, 59, 0, time.UTC)
	if !iv.Start.Equal(wantStart) {
		t.Fatalf("Start = %v, want %v", iv.Start, wantStart)
	}
	if !iv.End.Equal(wantEnd) {
		t.Fatalf("End = %v, want %v", iv.End, wantEnd)
	}
}

func TestResolve_ExplicitQuarter(t *testing.T) {
	iv, err := stats.Resolve("quarter_2_2026", fixedNow)
	if err != nil {
		t.Fatalf("Resolve(quarter_2_2026): %v", err)
	}

	wantStart := time.Date(2026, time.April, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, time.June, 30, 23, 59, 59, 0, time.UTC)
	if !iv.Start.Equal(wantStart) {
		t.Fatalf("Start = %v, want %v", iv.Start, wantStart)
	}
	if !iv.End.Equal(wantEnd) {
		t.Fatalf("End = %v, want %v", iv.End, wantEnd)
	}
}

func TestResolve_ExplicitYear(t *testing.T) {
	iv, err := stats.Resolve("year_2025", fixedNow)
	if err != nil {
		t.Fatalf("Resolve(year_2025): %v", err)
	}

	wantStart := time.Date(2025, time.January, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2025, time.December, 31, 23, 59, 59, 0, time.UTC)
	if !iv.Start.Equal(wantStart) {
		t.Fatalf("Start = %v, want %v", iv.Start, wantStart)
	}
	if !iv.End.Equal(wantEnd) {
		t.Fatalf("End = %v, want %v", iv.End, wantEnd)
	}
}

func TestResolve_AllTime(t *testing.T) {
	iv, err := stats.Resolve("all_time", fixedNow)
	if err != nil {
		t.Fatalf("Resolve(all_time): %v", err)
	}
	if iv.Start.Unix() != 0 {
		t.Fatalf("Start = %v, want Unix epoch", iv.Start)
	}
	if !iv.End.Equal(fixedNow) {
		t.Fatalf("End = %v, want %v", iv.End, fixedNow)
	}
}

func TestResolve_CalendarTokensAreDeterministic(t *testing.T) {
	tokens := []string{"yesterday", "last_week_2", "last_month_1", "month_7_2025", "quarter_4_2025", "year_2024"}
	for _, token := range tokens {
		first, err := stats.Resolve(token, fixedNow)
		if err != nil {
			t.Fatalf("Resolve(%s): %v", token, err)
		}
		second, err := stats.Resolve(token, fixedNow)
		if err != nil {
			t.Fatalf("Resolve(%s) second call: %v", token, err)
		}
		if !first.Start.Equal(second.Start) || !first.End.Equal(second.End) {
			t.Fatalf("Resolve(%s) not deterministic: %+v vs %+v", token, first, second)
		}
	}
}

func TestResolve_InvalidTokens(t *testing.T) {
	tokens := []string{
		"", "bogus", "month_13_2026", "month_0_2026", "quarter_5_2026",
		"last_week_0", "last_week_x", "year_12026", "year_1969", "month_1",
	}
	for _, token := range tokens {
		_, err := stats.Resolve(token, fixedNow)
		if !errors.Is(err, stats.ErrInvalidPeriod) {
			t.Fatalf("Resolve(%q) err = %v, want ErrInvalidPeriod", token, err)
		}
	}
}

func TestResolveRange_Valid(t *testing.T) {
	iv, err := stats.ResolveRange("2026-02-01", "2026-02-10", time.UTC)
	if err != nil {
		t.Fatalf("ResolveRange: %v", err)
	}

	wantStart := time.Date(2026, time.February, 1, 0, 0, 0, 0, time.UTC)
	wantEnd := time.Date(2026, time.February, 10, 23, 59, 59, 0, time.UTC)
	if !iv.Start.Equal(wantStart) {
		t.Fatalf("Start = %v, want %v", iv.Start, wantStart)
	}
	if !iv.End.Equal(wantEnd) {
		t.Fatalf("End = %v, want %v", iv.End, wantEnd)
	}
}

func TestResolveRange_EndBeforeStart(t *testing.T) {
	_, err := stats.ResolveRange("2026-02-10", "2026-02-01", time.UTC)
	if !errors.Is(err, stats.ErrInvalidPeriod) {
		t.Fatalf("err = %v, want ErrInvalidPeriod", err)
	}
}

func TestResolveRange_BadDates(t *testing.T) {
	_, err := stats.ResolveRange("02/01/2026", "2026-02-10", time.UTC)
	if !errors.Is(err, stats.ErrInvalidPeriod) {
		t.Fatalf("bad start date err = %v, want ErrInvalidPeriod", err)
	}

	_, err = stats.ResolveRange("2026-02-01", "not-a-date", time.UTC)
	if !errors.Is(err, stats.ErrInvalidPeriod) {
		t.Fatalf("bad end date err = %v, want ErrInvalidPeriod", err)
	}
}
