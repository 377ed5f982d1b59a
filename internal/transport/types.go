package transport

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"
)

// Errors
var (
	ErrNotConnected    = errors.New("not connected")
	ErrStaleConnection = errors.New("connection stale (no ping)")
	ErrAlreadyClosed   = errors.New("already closed")
)

// Frame is one parsed data-update frame from the streaming endpoint.
// Heartbeat and status frames never reach consumers.
type Frame struct {
	Type       string          `json:"type"`
	Data       json.RawMessage `json:"data"`
	Timestamp  int64           `json:"timestamp"`
	ReceivedAt time.Time       `json:"-"`
}

// Frame types discarded without delivery.
const (
	frameHeartbeat = "heartbeat"
	frameStatus    = "status"
)

// Conn is a single streaming connection. The engine owns the lifecycle; the
// connection itself never retries.
type Conn interface {
	// Connect establishes the streaming connection.
	Connect(ctx context.Context) error

	// Close gracefully closes the connection. Safe to call more than once.
	Close() error

	// Frames returns the channel of parsed data-update frames.
	Frames() <-chan Frame

	// Done is closed when the connection has been closed.
	Done() <-chan struct{}

	// Errors returns the channel of connection-level errors.
	Errors() <-chan error

	// IsConnected returns the current connection state.
	IsConnected() bool
}

// Dialer constructs a Conn for an endpoint. The engine takes a Dialer so
// tests can substitute fakes for real sockets.
type Dialer func(cfg ClientConfig, logger *slog.Logger) Conn

// ClientConfig configures a streaming client.
type ClientConfig struct {
	URL          string        // channel-specific streaming endpoint
	PingTimeout  time.Duration // max silence before the connection is stale
	WriteTimeout time.Duration // write deadline for control frames
	BufferSize   int           // frame channel buffer size
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig() ClientConfig {
	return ClientConfig{
		PingTimeout:  60 * time.Second,
		WriteTimeout: 5 * time.Second,
		BufferSize:   256,
	}
}
