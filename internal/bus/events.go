package bus

import "github.com/finvue/marketsync/internal/model"

// Fixed event names. Per-channel update events use UpdateEventName.
const (
	EventConnectionChange = "connection_change"
	EventError            = "error"
	EventMarketStatus     = "market_status_change"
	EventCategoryStats    = "movers_category_stats"
)

// UpdateEventName returns the update event name for a channel, e.g.
// "crypto_update".
func UpdateEventName(ch model.Channel) string {
	return string(ch) + "_update"
}

// Event is a tagged-variant payload. Every event name has exactly one
// payload shape.
type Event interface {
	// EventName returns the event name the payload is published under.
	EventName() string
}

// UpdateEvent carries a channel's new normalized record list.
type UpdateEvent struct {
	Channel model.Channel  `json:"channel"`
	Records []model.Record `json:"records"`
}

func (e UpdateEvent) EventName() string { return UpdateEventName(e.Channel) }

// CategoryStatsEvent carries the movers channel's recomputed categorization.
type CategoryStatsEvent struct {
	Channel model.Channel             `json:"channel"`
	Stats   model.CategorizedSnapshot `json:"stats"`
}

func (e CategoryStatsEvent) EventName() string { return EventCategoryStats }

// ConnectionChangeEvent reports a channel's new (status, mode) pair.
type ConnectionChangeEvent struct {
	Channel model.Channel          `json:"channel"`
	Status  model.ConnectionStatus `json:"status"`
	Mode    model.TransportMode    `json:"mode"`
}

func (e ConnectionChangeEvent) EventName() string { return EventConnectionChange }

// ErrorEvent reports a recovered transport, fetch, or parse failure.
type ErrorEvent struct {
	Channel model.Channel `json:"channel"`
	Message string        `json:"message"`
}

func (e ErrorEvent) EventName() string { return EventError }

// MarketStatusEvent reports a session phase change.
type MarketStatusEvent struct {
	IsOpen bool               `json:"is_open"`
	Phase  model.SessionPhase `json:"phase"`
}

func (e MarketStatusEvent) EventName() string { return EventMarketStatus }
