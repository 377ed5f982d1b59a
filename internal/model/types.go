package model

// Channel identifies one independently-synchronized logical data feed.
type Channel string

const (
	ChannelCrypto Channel = "crypto"
	ChannelEquity Channel = "equity"
	ChannelMovers Channel = "movers"
)

// AllChannels returns the closed set of channels in a stable order.
func AllChannels() []Channel {
	return []Channel{ChannelCrypto, ChannelEquity, ChannelMovers}
}

// Valid reports whether c is a member of the closed channel set.
func (c Channel) Valid() bool {
	switch c {
	case ChannelCrypto, ChannelEquity, ChannelMovers:
		return true
	}
	return false
}

// PushEligible reports whether the channel may be served over a streaming
// connection. Only the crypto feed has push infrastructure; equity and
// movers run exclusively over scheduled pulls.
func (c Channel) PushEligible() bool {
	return c == ChannelCrypto
}

// ConnectionStatus is the per-channel connection state.
type ConnectionStatus string

const (
	StatusConnecting   ConnectionStatus = "connecting"
	StatusConnected    ConnectionStatus = "connected"
	StatusDisconnected ConnectionStatus = "disconnected"
	StatusReconnecting ConnectionStatus = "reconnecting"
	StatusPullMode     ConnectionStatus = "pull-mode"
)

// Serving reports whether the status delivers data. All other states are
// transitional.
func (s ConnectionStatus) Serving() bool {
	return s == StatusConnected || s == StatusPullMode
}

// TransportMode selects how a channel is fed.
type TransportMode string

const (
	ModePush TransportMode = "push"
	ModePull TransportMode = "pull"
)

// SessionPhase classifies the trading venue's current session time.
type SessionPhase string

const (
	PhaseOpen       SessionPhase = "open"
	PhasePreMarket  SessionPhase = "pre-market"
	PhaseAfterHours SessionPhase = "after-hours"
	PhaseClosed     SessionPhase = "closed"
	PhaseWeekend    SessionPhase = "weekend"
	PhaseHoliday    SessionPhase = "holiday"
)

// Movers categories.
const (
	CategoryGainers    = "gainers"
	CategoryLosers     = "losers"
	CategoryMostActive = "most-active"
)

// Record is the normalized shape every feed payload is transformed into.
type Record struct {
	Symbol    string  `json:"symbol"`
	Name      string  `json:"name,omitempty"`
	Price     float64 `json:"price"`
	Change    float64 `json:"change"`
	ChangePct float64 `json:"change_pct"`
	Volume    int64   `json:"volume"`
	Rank      int     `json:"rank,omitempty"`     // movers only, 0 = unranked
	Category  string  `json:"category,omitempty"` // movers only
	Timestamp int64   `json:"timestamp,omitempty"`
}

// CategorizedSnapshot partitions movers records into the three fixed
// categories. Derived, recomputed on every accepted update.
type CategorizedSnapshot struct {
	Gainers    []Record `json:"gainers"`
	Losers     []Record `json:"losers"`
	MostActive []Record `json:"most_active"`
}

// Size returns the total record count across all categories.
func (s CategorizedSnapshot) Size() int {
	return len(s.Gainers) + len(s.Losers) + len(s.MostActive)
}

// ChannelStatus is one row of the engine's introspection snapshot.
type ChannelStatus struct {
	Channel    Channel          `json:"channel"`
	Status     ConnectionStatus `json:"status"`
	Mode       TransportMode    `json:"mode"`
	Attempts   int              `json:"attempts"`
	LastUpdate int64            `json:"last_update,omitempty"` // ms since epoch, 0 = never
}
