package session

import (
	"time"

	"github.com/finvue/marketsync/internal/model"
)

// Config holds Session Clock settings. Minutes are counted from midnight in
// the venue time zone.
type Config struct {
	Timezone       string   // IANA zone name (default: America/New_York)
	PreMarketStart int      // default 04:00
	MarketOpen     int      // default 09:30
	MarketClose    int      // default 16:00
	AfterHoursEnd  int      // default 20:00
	Holidays       []string // venue-local dates, "2006-01-02"
}

// DefaultConfig returns the regular US equities session.
func DefaultConfig() Config {
	return Config{
		Timezone:       "America/New_York",
		PreMarketStart: 4 * 60,
		MarketOpen:     9*60 + 30,
		MarketClose:    16 * 60,
		AfterHoursEnd:  20 * 60,
	}
}

// Clock determines the trading-session phase for any point in time.
type Clock struct {
	cfg      Config
	loc      *time.Location
	holidays map[string]struct{}
}

// NewClock creates a Clock. An unknown time zone falls back to UTC rather
// than failing: phase classification must stay total.
func NewClock(cfg Config) *Clock {
	cfg = applyClockDefaults(cfg)

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		loc = time.UTC
	}

	holidays := make(map[string]struct{}, len(cfg.Holidays))
	for _, d := range cfg.Holidays {
		holidays[d] = struct{}{}
	}

	return &Clock{cfg: cfg, loc: loc, holidays: holidays}
}

func applyClockDefaults(cfg Config) Config {
	def := DefaultConfig()
	if cfg.Timezone == "" {
		cfg.Timezone = def.Timezone
	}
	if cfg.PreMarketStart == 0 {
		cfg.PreMarketStart = def.PreMarketStart
	}
	if cfg.MarketOpen == 0 {
		cfg.MarketOpen = def.MarketOpen
	}
	if cfg.MarketClose == 0 {
		cfg.MarketClose = def.MarketClose
	}
	if cfg.AfterHoursEnd == 0 {
		cfg.AfterHoursEnd = def.AfterHoursEnd
	}
	return cfg
}

// Phase classifies now into exactly one session phase.
//
// Boundaries are half-open: the open phase is [MarketOpen, MarketClose), so
// 09:30:00 is open and 16:00:00 is after-hours.
func (c *Clock) Phase(now time.Time) model.SessionPhase {
	local := now.In(c.loc)

	switch local.Weekday() {
	case time.Saturday, time.Sunday:
		return model.PhaseWeekend
	}

	if _, ok := c.holidays[local.Format("2006-01-02")]; ok {
		return model.PhaseHoliday
	}

	minutes := local.Hour()*60 + local.Minute()
	switch {
	case minutes >= c.cfg.MarketOpen && minutes < c.cfg.MarketClose:
		return model.PhaseOpen
	case minutes >= c.cfg.PreMarketStart && minutes < c.cfg.MarketOpen:
		return model.PhasePreMarket
	case minutes >= c.cfg.MarketClose && minutes < c.cfg.AfterHoursEnd:
		return model.PhaseAfterHours
	default:
		return model.PhaseClosed
	}
}

// IsOpen reports whether the venue is in the regular open session.
func (c *Clock) IsOpen(now time.Time) bool {
	return c.Phase(now) == model.PhaseOpen
}
