// Package bridge republishes engine events onto NATS so other services can
// consume them without linking the engine in-process.
package bridge

import (
	"encoding/json"
	"fmt"
	"log/slog"

	"github.com/nats-io/nats.go"

	"github.com/finvue/marketsync/internal/bus"
	"github.com/finvue/marketsync/internal/model"
)

// Config holds bridge settings.
type Config struct {
	URL     string // NATS server URL
	Subject string // subject prefix, e.g. "marketsync.events"
}

// publishFunc sends one encoded event. Split out so tests can run the
// bridge without a server.
type publishFunc func(subject string, data []byte) error

// Bridge forwards every bus event to NATS under
// "<subject>.<event_name>".
type Bridge struct {
	subject string
	publish publishFunc
	bus     *bus.Bus
	logger  *slog.Logger

	conn   *nats.Conn
	unsubs []func()
}

// New connects to NATS and returns a ready-to-start bridge.
func New(cfg Config, b *bus.Bus, logger *slog.Logger) (*Bridge, error) {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With("component", "bridge")

	opts := []nats.Option{
		nats.MaxReconnects(-1),
		nats.DisconnectErrHandler(func(_ *nats.Conn, err error) {
			logger.Warn("nats disconnected", "error", err)
		}),
		nats.ReconnectHandler(func(_ *nats.Conn) {
			logger.Info("nats reconnected")
		}),
		nats.ClosedHandler(func(_ *nats.Conn) {
			logger.Info("nats connection closed")
		}),
	}

	conn, err := nats.Connect(cfg.URL, opts...)
	if err != nil {
		return nil, fmt.Errorf("connect to nats: %w", err)
	}

	br := newBridge(cfg.Subject, conn.Publish, b, logger)
	br.conn = conn
	return br, nil
}

func newBridge(subject string, publish publishFunc, b *bus.Bus, logger *slog.Logger) *Bridge {
	return &Bridge{
		subject: subject,
		publish: publish,
		bus:     b,
		logger:  logger,
	}
}

// Start subscribes the bridge to every engine event.
func (br *Bridge) Start() {
	names := []string{
		bus.EventConnectionChange,
		bus.EventError,
		bus.EventMarketStatus,
		bus.EventCategoryStats,
	}
	for _, ch := range model.AllChannels() {
		names = append(names, bus.UpdateEventName(ch))
	}

	for _, name := range names {
		br.unsubs = append(br.unsubs, br.bus.Subscribe(name, br.forward))
	}

	br.logger.Info("bridge started", "subjects", len(names))
}

// Stop unsubscribes from the bus and drains the connection.
func (br *Bridge) Stop() {
	for _, unsub := range br.unsubs {
		unsub()
	}
	br.unsubs = nil

	if br.conn != nil {
		if err := br.conn.Drain(); err != nil {
			br.logger.Warn("nats drain failed", "error", err)
		}
	}

	br.logger.Info("bridge stopped")
}

// forward encodes one event and publishes it. A failed publish is logged
// and dropped; the bus never blocks on the bridge.
func (br *Bridge) forward(e bus.Event) {
	data, err := json.Marshal(e)
	if err != nil {
		br.logger.Error("encode event", "event", e.EventName(), "error", err)
		return
	}

	subject := br.subject + "." + e.EventName()
	if err := br.publish(subject, data); err != nil {
		br.logger.Warn("publish event", "subject", subject, "error", err)
	}
}
