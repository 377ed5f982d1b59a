package config

import (
	"errors"
	"fmt"
	"time"

	"github.com/finvue/marketsync/internal/model"
	"github.com/finvue/marketsync/internal/session"
)

// Validate checks that all required fields are set and values are valid.
func (c *SyncConfig) Validate() error {
	if c.Instance.ID == "" {
		return errors.New("instance.id is required")
	}

	if c.Feeds.BaseURL == "" {
		return errors.New("feeds.base_url is required")
	}
	for _, ch := range model.AllChannels() {
		if c.Feeds.Paths[string(ch)] == "" {
			return fmt.Errorf("feeds.paths.%s is required", ch)
		}
	}
	for name := range c.Feeds.Paths {
		if !model.Channel(name).Valid() {
			return fmt.Errorf("feeds.paths.%s: unknown channel", name)
		}
	}

	if c.Push.URL == "" {
		return errors.New("push.url is required")
	}

	if c.Reconnect.MaxAttempts < 1 {
		return errors.New("reconnect.max_attempts must be >= 1")
	}
	if c.Reconnect.MaxDelay < c.Reconnect.BaseDelay {
		return fmt.Errorf("reconnect.max_delay (%s) cannot be below base_delay (%s)",
			c.Reconnect.MaxDelay, c.Reconnect.BaseDelay)
	}

	if c.Polling.OpenInterval < time.Second {
		return errors.New("polling.open_interval must be >= 1s")
	}
	if c.Polling.ClosedInterval < c.Polling.OpenInterval {
		return errors.New("polling.closed_interval cannot be below open_interval")
	}

	if err := c.Session.validate(); err != nil {
		return err
	}

	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 1 and 65535, got %d", c.Server.Port)
	}

	return nil
}

func (s *SessionConfig) validate() error {
	if _, err := time.LoadLocation(s.Timezone); err != nil {
		return fmt.Errorf("session.timezone: %w", err)
	}

	bounds := []struct {
		name, value string
	}{
		{"session.pre_market_start", s.PreMarketStart},
		{"session.market_open", s.MarketOpen},
		{"session.market_close", s.MarketClose},
		{"session.after_hours_end", s.AfterHoursEnd},
	}
	prev := -1
	for _, b := range bounds {
		m, err := parseClockTime(b.value)
		if err != nil {
			return fmt.Errorf("%s: %w", b.name, err)
		}
		if m <= prev {
			return fmt.Errorf("%s (%s) must come after the preceding boundary", b.name, b.value)
		}
		prev = m
	}

	for _, d := range s.Holidays {
		if _, err := time.Parse("2006-01-02", d); err != nil {
			return fmt.Errorf("session.holidays: bad date %q", d)
		}
	}

	return nil
}

// ClockConfig converts the session section into the clock's native form.
// Call after Validate; a malformed boundary yields an error here too.
func (s *SessionConfig) ClockConfig() (session.Config, error) {
	out := session.Config{
		Timezone: s.Timezone,
		Holidays: s.Holidays,
	}

	var err error
	if out.PreMarketStart, err = parseClockTime(s.PreMarketStart); err != nil {
		return session.Config{}, fmt.Errorf("session.pre_market_start: %w", err)
	}
	if out.MarketOpen, err = parseClockTime(s.MarketOpen); err != nil {
		return session.Config{}, fmt.Errorf("session.market_open: %w", err)
	}
	if out.MarketClose, err = parseClockTime(s.MarketClose); err != nil {
		return session.Config{}, fmt.Errorf("session.market_close: %w", err)
	}
	if out.AfterHoursEnd, err = parseClockTime(s.AfterHoursEnd); err != nil {
		return session.Config{}, fmt.Errorf("session.after_hours_end: %w", err)
	}

	return out, nil
}

// parseClockTime converts "HH:MM" into minutes from midnight.
func parseClockTime(s string) (int, error) {
	t, err := time.Parse("15:04", s)
	if err != nil {
		return 0, fmt.Errorf("want HH:MM, got %q", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}
