package config

import "time"

// Default values for optional configuration fields.
const (
	DefaultFeedTimeout        = 10 * time.Second
	DefaultPushPingTimeout    = 60 * time.Second
	DefaultPushWriteTimeout   = 5 * time.Second
	DefaultPushBufferSize     = 256
	DefaultReconnectBaseDelay = 1 * time.Second
	DefaultReconnectMaxDelay  = 30 * time.Second
	DefaultReconnectAttempts  = 3
	DefaultOpenInterval       = 5 * time.Second
	DefaultClosedInterval     = 30 * time.Second
	DefaultFetchTimeout       = 10 * time.Second
	DefaultTimezone           = "America/New_York"
	DefaultPreMarketStart     = "04:00"
	DefaultMarketOpen         = "09:30"
	DefaultMarketClose        = "16:00"
	DefaultAfterHoursEnd      = "20:00"
	DefaultSessionTick        = 30 * time.Second
	DefaultHealthInterval     = 15 * time.Second
	DefaultServerPort         = 8090
	DefaultBridgeSubject      = "marketsync.events"
)

func (c *SyncConfig) applyDefaults() {
	// Feeds defaults
	if c.Feeds.Timeout == 0 {
		c.Feeds.Timeout = DefaultFeedTimeout
	}

	// Push defaults
	if c.Push.PingTimeout == 0 {
		c.Push.PingTimeout = DefaultPushPingTimeout
	}
	if c.Push.WriteTimeout == 0 {
		c.Push.WriteTimeout = DefaultPushWriteTimeout
	}
	if c.Push.BufferSize == 0 {
		c.Push.BufferSize = DefaultPushBufferSize
	}

	// Reconnect defaults
	if c.Reconnect.BaseDelay == 0 {
		c.Reconnect.BaseDelay = DefaultReconnectBaseDelay
	}
	if c.Reconnect.MaxDelay == 0 {
		c.Reconnect.MaxDelay = DefaultReconnectMaxDelay
	}
	if c.Reconnect.MaxAttempts == 0 {
		c.Reconnect.MaxAttempts = DefaultReconnectAttempts
	}

	// Polling defaults
	if c.Polling.OpenInterval == 0 {
		c.Polling.OpenInterval = DefaultOpenInterval
	}
	if c.Polling.ClosedInterval == 0 {
		c.Polling.ClosedInterval = DefaultClosedInterval
	}
	if c.Polling.FetchTimeout == 0 {
		c.Polling.FetchTimeout = DefaultFetchTimeout
	}

	// Session defaults
	if c.Session.Timezone == "" {
		c.Session.Timezone = DefaultTimezone
	}
	if c.Session.PreMarketStart == "" {
		c.Session.PreMarketStart = DefaultPreMarketStart
	}
	if c.Session.MarketOpen == "" {
		c.Session.MarketOpen = DefaultMarketOpen
	}
	if c.Session.MarketClose == "" {
		c.Session.MarketClose = DefaultMarketClose
	}
	if c.Session.AfterHoursEnd == "" {
		c.Session.AfterHoursEnd = DefaultAfterHoursEnd
	}
	if c.Session.Tick == 0 {
		c.Session.Tick = DefaultSessionTick
	}

	// Health defaults
	if c.Health.Interval == 0 {
		c.Health.Interval = DefaultHealthInterval
	}

	// Server defaults
	if c.Server.Port == 0 {
		c.Server.Port = DefaultServerPort
	}

	// Bridge defaults
	if c.Bridge.Subject == "" {
		c.Bridge.Subject = DefaultBridgeSubject
	}
}
