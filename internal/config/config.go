package config

import "time"

// SyncConfig is the root configuration for a sync engine instance.
type SyncConfig struct {
	Instance  InstanceConfig  `yaml:"instance"`
	Feeds     FeedsConfig     `yaml:"feeds"`
	Push      PushConfig      `yaml:"push"`
	Reconnect ReconnectConfig `yaml:"reconnect"`
	Polling   PollingConfig   `yaml:"polling"`
	Session   SessionConfig   `yaml:"session"`
	Health    HealthConfig    `yaml:"health"`
	Server    ServerConfig    `yaml:"server"`
	Bridge    BridgeConfig    `yaml:"bridge"`
}

// InstanceConfig identifies this engine instance.
type InstanceConfig struct {
	ID  string `yaml:"id"`
	Env string `yaml:"env"`
}

// FeedsConfig holds the pull endpoint settings. Paths maps a channel name to
// its snapshot path under BaseURL.
type FeedsConfig struct {
	BaseURL string            `yaml:"base_url"`
	Timeout time.Duration     `yaml:"timeout"`
	Paths   map[string]string `yaml:"paths"`
}

// PushConfig holds streaming transport settings.
type PushConfig struct {
	URL          string        `yaml:"url"`
	PingTimeout  time.Duration `yaml:"ping_timeout"`
	WriteTimeout time.Duration `yaml:"write_timeout"`
	BufferSize   int           `yaml:"buffer_size"`
}

// ReconnectConfig holds the push reconnect schedule.
type ReconnectConfig struct {
	BaseDelay   time.Duration `yaml:"base_delay"`
	MaxDelay    time.Duration `yaml:"max_delay"`
	MaxAttempts int           `yaml:"max_attempts"`
}

// PollingConfig holds pull scheduler settings.
type PollingConfig struct {
	OpenInterval   time.Duration `yaml:"open_interval"`
	ClosedInterval time.Duration `yaml:"closed_interval"`
	FetchTimeout   time.Duration `yaml:"fetch_timeout"`
}

// SessionConfig holds session clock settings. Boundaries are venue-local
// wall-clock times in "HH:MM" form.
type SessionConfig struct {
	Timezone       string        `yaml:"timezone"`
	PreMarketStart string        `yaml:"pre_market_start"`
	MarketOpen     string        `yaml:"market_open"`
	MarketClose    string        `yaml:"market_close"`
	AfterHoursEnd  string        `yaml:"after_hours_end"`
	Holidays       []string      `yaml:"holidays"`
	Tick           time.Duration `yaml:"tick"`
}

// HealthConfig holds supervisor settings.
type HealthConfig struct {
	Interval time.Duration `yaml:"interval"`
}

// ServerConfig holds the status HTTP endpoint settings.
type ServerConfig struct {
	Port int `yaml:"port"`
}

// BridgeConfig holds the optional NATS event bridge settings. An empty URL
// disables the bridge.
type BridgeConfig struct {
	NATSURL string `yaml:"nats_url"`
	Subject string `yaml:"subject"`
}
