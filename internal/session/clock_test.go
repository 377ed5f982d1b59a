package session

import (
	"testing"
	"time"

	"github.com/finvue/marketsync/internal/model"
)

// mustTime parses a venue-local timestamp for tests.
func mustTime(t *testing.T, value string) time.Time {
	t.Helper()
	loc, err := time.LoadLocation("America/New_York")
	if err != nil {
		t.Fatalf("load location: %v", err)
	}
	ts, err := time.ParseInLocation("2006-01-02 15:04:05", value, loc)
	if err != nil {
		t.Fatalf("parse time %q: %v", value, err)
	}
	return ts
}

func TestClock_PhaseBoundaries(t *testing.T) {
	clock := NewClock(DefaultConfig())

	// 2026-01-05 is a Monday.
	tests := []struct {
		at   string
		want model.SessionPhase
	}{
		{"2026-01-05 09:29:59", model.PhasePreMarket},
		{"2026-01-05 09:30:00", model.PhaseOpen},
		{"2026-01-05 15:59:59", model.PhaseOpen},
		{"2026-01-05 16:00:00", model.PhaseAfterHours},
		{"2026-01-05 04:00:00", model.PhasePreMarket},
		{"2026-01-05 03:59:59", model.PhaseClosed},
		{"2026-01-05 19:59:59", model.PhaseAfterHours},
		{"2026-01-05 20:00:00", model.PhaseClosed},
		{"2026-01-05 23:30:00", model.PhaseClosed},
	}

	for _, tt := range tests {
		if got := clock.Phase(mustTime(t, tt.at)); got != tt.want {
			t.Errorf("Phase(%s) = %s, want %s", tt.at, got, tt.want)
		}
	}
}

func TestClock_Weekend(t *testing.T) {
	clock := NewClock(DefaultConfig())

	// Saturday midday would otherwise be open.
	if got := clock.Phase(mustTime(t, "2026-01-03 12:00:00")); got != model.PhaseWeekend {
		t.Errorf("Saturday = %s, want weekend", got)
	}
	if got := clock.Phase(mustTime(t, "2026-01-04 12:00:00")); got != model.PhaseWeekend {
		t.Errorf("Sunday = %s, want weekend", got)
	}
}

func TestClock_Holiday(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Holidays = []string{"2026-01-01", "2026-07-03"}
	clock := NewClock(cfg)

	// 2026-01-01 is a Thursday.
	if got := clock.Phase(mustTime(t, "2026-01-01 12:00:00")); got != model.PhaseHoliday {
		t.Errorf("holiday = %s, want holiday", got)
	}

	// Holiday check outside any trading window still reports holiday.
	if got := clock.Phase(mustTime(t, "2026-01-01 02:00:00")); got != model.PhaseHoliday {
		t.Errorf("holiday (night) = %s, want holiday", got)
	}
}

func TestClock_IsOpen(t *testing.T) {
	clock := NewClock(DefaultConfig())

	if !clock.IsOpen(mustTime(t, "2026-01-05 12:00:00")) {
		t.Error("midday Monday should be open")
	}
	if clock.IsOpen(mustTime(t, "2026-01-05 08:00:00")) {
		t.Error("pre-market should not be open")
	}
	if clock.IsOpen(mustTime(t, "2026-01-03 12:00:00")) {
		t.Error("weekend should not be open")
	}
}

func TestClock_TotalOverArbitraryTimes(t *testing.T) {
	clock := NewClock(DefaultConfig())

	// Every timestamp maps to exactly one defined phase.
	known := map[model.SessionPhase]bool{
		model.PhaseOpen: true, model.PhasePreMarket: true, model.PhaseAfterHours: true,
		model.PhaseClosed: true, model.PhaseWeekend: true, model.PhaseHoliday: true,
	}

	start := mustTime(t, "2026-01-01 00:00:00")
	for i := 0; i < 14*24; i++ {
		at := start.Add(time.Duration(i) * time.Hour)
		if phase := clock.Phase(at); !known[phase] {
			t.Fatalf("Phase(%s) returned unknown phase %q", at, phase)
		}
	}
}

func TestNewClock_UnknownTimezone(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Timezone = "Not/AZone"
	clock := NewClock(cfg)

	// Still total: falls back to UTC instead of failing.
	if phase := clock.Phase(time.Now()); phase == "" {
		t.Error("expected a phase, got empty string")
	}
}
