package engine

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"time"

	"github.com/finvue/marketsync/internal/bus"
	"github.com/finvue/marketsync/internal/cache"
	"github.com/finvue/marketsync/internal/model"
	"github.com/finvue/marketsync/internal/session"
	"github.com/finvue/marketsync/internal/transport"
)

// Errors
var (
	ErrAlreadyRunning  = errors.New("engine already running")
	ErrNotRunning      = errors.New("engine not running")
	ErrUnknownChannel  = errors.New("unknown channel")
	ErrNotPushEligible = errors.New("channel is not push-eligible")
)

// Fetcher fetches one channel's records over the pull endpoint.
type Fetcher interface {
	Fetch(ctx context.Context, ch model.Channel) ([]model.Record, error)
}

// Config holds engine settings.
type Config struct {
	PushURL      string        // streaming endpoint for push-eligible channels
	PushBuffer   int           // transport frame buffer size
	PingTimeout  time.Duration // transport staleness bound
	WriteTimeout time.Duration // transport write deadline

	Backoff BackoffPolicy // push reconnect schedule

	OpenInterval   time.Duration // poll period while the session is open
	ClosedInterval time.Duration // poll period otherwise
	FetchTimeout   time.Duration // per-cycle fetch deadline

	SessionTick    time.Duration // phase re-evaluation interval
	HealthInterval time.Duration // supervisor sweep interval
}

// DefaultConfig returns sensible defaults.
func DefaultConfig() Config {
	return Config{
		PushBuffer:     256,
		PingTimeout:    60 * time.Second,
		WriteTimeout:   5 * time.Second,
		Backoff:        DefaultBackoffPolicy(),
		OpenInterval:   5 * time.Second,
		ClosedInterval: 30 * time.Second,
		FetchTimeout:   10 * time.Second,
		SessionTick:    30 * time.Second,
		HealthInterval: 15 * time.Second,
	}
}

// channelState is one channel's ConnectionRecord. Mutated only under the
// engine mutex.
type channelState struct {
	channel  model.Channel
	status   model.ConnectionStatus
	mode     model.TransportMode
	attempts int
	fellBack bool // permanent push→pull fallback for this lifetime

	conn       transport.Conn
	gen        int // bumped on every reconfigure; stale callbacks check it
	pollCancel context.CancelFunc
	pollKick   chan struct{}
	retryTimer *time.Timer
}

// Engine is the connection orchestrator. Construct once at application
// start; all interaction goes through its command surface and the bus.
type Engine struct {
	cfg     Config
	clock   *session.Clock
	bus     *bus.Bus
	fetcher Fetcher
	dial    transport.Dialer
	store   *cache.Store
	logger  *slog.Logger
	now     func() time.Time

	mu          sync.Mutex
	channels    map[model.Channel]*channelState
	phase       model.SessionPhase
	moversStats model.CategorizedSnapshot
	running     bool
	closed      bool

	ctx    context.Context
	cancel context.CancelFunc
	wg     sync.WaitGroup
}

// Option configures an Engine.
type Option func(*Engine)

// WithDialer substitutes the push transport dialer. Tests use this to avoid
// real sockets.
func WithDialer(d transport.Dialer) Option {
	return func(e *Engine) {
		e.dial = d
	}
}

// WithNow substitutes the engine's time source. Tests use this to drive
// session phase transitions deterministically.
func WithNow(now func() time.Time) Option {
	return func(e *Engine) {
		e.now = now
	}
}

// New creates an Engine. Channels are created here and never destroyed.
func New(cfg Config, clock *session.Clock, b *bus.Bus, fetcher Fetcher, logger *slog.Logger, opts ...Option) *Engine {
	if logger == nil {
		logger = slog.Default()
	}

	e := &Engine{
		cfg:      cfg,
		clock:    clock,
		bus:      b,
		fetcher:  fetcher,
		dial:     transport.NewClient,
		now:      time.Now,
		store:    cache.NewStore(),
		logger:   logger,
		channels: make(map[model.Channel]*channelState),
	}

	for _, ch := range model.AllChannels() {
		mode := model.ModePull
		if ch.PushEligible() {
			mode = model.ModePush
		}
		e.channels[ch] = &channelState{
			channel: ch,
			status:  model.StatusDisconnected,
			mode:    mode,
		}
	}

	for _, opt := range opts {
		opt(e)
	}

	return e
}

// Initialize assigns each channel its initial mode and starts the session
// tick and health supervisor loops.
func (e *Engine) Initialize(ctx context.Context) error {
	e.mu.Lock()
	if e.running || e.closed {
		e.mu.Unlock()
		return ErrAlreadyRunning
	}
	e.running = true
	e.ctx, e.cancel = context.WithCancel(ctx)
	e.phase = e.clock.Phase(e.now())

	events := []bus.Event{bus.MarketStatusEvent{
		IsOpen: e.phase == model.PhaseOpen,
		Phase:  e.phase,
	}}

	var starters []func()
	for _, ch := range model.AllChannels() {
		st := e.channels[ch]
		if ch.PushEligible() {
			starters = append(starters, e.startPushLocked(st, TriggerStartPush, &events))
		} else {
			e.startPullLocked(st, TriggerStartPull, &events)
		}
	}
	e.mu.Unlock()

	e.wg.Add(2)
	go e.sessionLoop()
	go e.healthLoop()

	e.emitAll(events)
	for _, start := range starters {
		start()
	}

	e.logger.Info("sync engine started",
		"phase", e.phase,
		"channels", len(e.channels),
	)

	return nil
}

// Shutdown closes every transport, cancels every timer and poll loop, and
// clears all subscriptions. Late callbacks after Shutdown are no-ops.
func (e *Engine) Shutdown(ctx context.Context) error {
	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return nil
	}
	e.running = false
	e.closed = true

	for _, st := range e.channels {
		e.stopRetryLocked(st)
		e.stopPollLocked(st)
		e.stopConnLocked(st)
		st.status = model.StatusDisconnected
		st.attempts = 0
	}
	e.cancel()
	e.mu.Unlock()

	done := make(chan struct{})
	go func() {
		e.wg.Wait()
		close(done)
	}()

	select {
	case <-done:
	case <-ctx.Done():
		e.logger.Warn("shutdown timeout, abandoning workers")
	}

	e.bus.Clear()
	e.store.Reset()

	e.logger.Info("sync engine stopped")
	return nil
}

// Reconnect cancels any pending backoff for the channel and issues an
// immediate new attempt. A channel that has permanently fallen back to pull
// still routes to pull; only ForcePushMode re-attempts push.
func (e *Engine) Reconnect(ch model.Channel) error {
	if !ch.Valid() {
		return ErrUnknownChannel
	}

	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return ErrNotRunning
	}

	st := e.channels[ch]
	e.stopRetryLocked(st)
	st.attempts = 0

	var events []bus.Event
	start := func() {}
	if ch.PushEligible() && !st.fellBack {
		e.stopConnLocked(st)
		start = e.startPushLocked(st, TriggerForcePush, &events)
	} else {
		e.startPullLocked(st, TriggerStartPull, &events)
	}
	e.mu.Unlock()

	e.emitAll(events)
	start()
	return nil
}

// ReconnectAll reconnects every channel.
func (e *Engine) ReconnectAll() error {
	for _, ch := range model.AllChannels() {
		if err := e.Reconnect(ch); err != nil {
			return err
		}
	}
	return nil
}

// ForcePushMode clears a push-eligible channel's permanent fallback and
// re-attempts the streaming connection.
func (e *Engine) ForcePushMode(ch model.Channel) error {
	if !ch.Valid() {
		return ErrUnknownChannel
	}
	if !ch.PushEligible() {
		return ErrNotPushEligible
	}

	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return ErrNotRunning
	}

	st := e.channels[ch]
	e.stopRetryLocked(st)
	e.stopPollLocked(st)
	e.stopConnLocked(st)
	st.fellBack = false
	st.attempts = 0

	var events []bus.Event
	start := e.startPushLocked(st, TriggerForcePush, &events)
	e.mu.Unlock()

	e.emitAll(events)
	start()
	return nil
}

// ForcePullMode moves a channel to pull mode. For a push-eligible channel
// the move is sticky until ForcePushMode.
func (e *Engine) ForcePullMode(ch model.Channel) error {
	if !ch.Valid() {
		return ErrUnknownChannel
	}

	e.mu.Lock()
	if !e.running {
		e.mu.Unlock()
		return ErrNotRunning
	}

	st := e.channels[ch]
	e.stopRetryLocked(st)
	e.stopConnLocked(st)
	if ch.PushEligible() {
		st.fellBack = true
	}

	var events []bus.Event
	e.startPullLocked(st, TriggerStartPull, &events)
	e.mu.Unlock()

	e.emitAll(events)
	return nil
}

// Status returns an introspection snapshot of every channel.
func (e *Engine) Status() []model.ChannelStatus {
	e.mu.Lock()
	defer e.mu.Unlock()

	rows := make([]model.ChannelStatus, 0, len(e.channels))
	for _, ch := range model.AllChannels() {
		st := e.channels[ch]
		row := model.ChannelStatus{
			Channel:  ch,
			Status:   st.status,
			Mode:     st.mode,
			Attempts: st.attempts,
		}
		if at := e.store.LastUpdate(ch); !at.IsZero() {
			row.LastUpdate = at.UnixMilli()
		}
		rows = append(rows, row)
	}
	return rows
}

// LastCachedData returns the channel's most recent accepted record list so
// late subscribers can obtain current state without waiting for an update.
func (e *Engine) LastCachedData(ch model.Channel) ([]model.Record, error) {
	if !ch.Valid() {
		return nil, ErrUnknownChannel
	}
	return e.store.Last(ch), nil
}

// LastCategoryStats returns the movers channel's latest categorization.
func (e *Engine) LastCategoryStats() model.CategorizedSnapshot {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.moversStats
}

// Phase returns the current session phase.
func (e *Engine) Phase() model.SessionPhase {
	return e.clock.Phase(e.now())
}

// fire applies one state-machine transition under the lock and queues a
// connection_change event only when the (status, mode) pair actually
// changed. Undefined transitions are no-ops.
func (e *Engine) fire(st *channelState, t Trigger, mode model.TransportMode, events *[]bus.Event) {
	prevStatus, prevMode := st.status, st.mode

	next, ok := nextStatus(st.status, t)
	if !ok {
		e.logger.Debug("transition not defined",
			"channel", st.channel,
			"status", st.status,
			"trigger", t,
		)
		return
	}

	st.status = next
	st.mode = mode

	if next != prevStatus || mode != prevMode {
		*events = append(*events, bus.ConnectionChangeEvent{
			Channel: st.channel,
			Status:  next,
			Mode:    mode,
		})
	}
}

// emitAll publishes queued events unless the engine has shut down.
func (e *Engine) emitAll(events []bus.Event) {
	if len(events) == 0 {
		return
	}

	e.mu.Lock()
	closed := e.closed
	e.mu.Unlock()
	if closed {
		return
	}

	for _, ev := range events {
		e.bus.Emit(ev)
	}
}

// applyUpdate runs the fetch-and-diff tail shared by push and pull: replace
// the cache when the fingerprint changed and emit the channel's update
// event, plus the recomputed categorization for the movers channel.
func (e *Engine) applyUpdate(ch model.Channel, records []model.Record) {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}
	e.mu.Unlock()

	if !e.store.Apply(ch, records) {
		return
	}

	events := []bus.Event{bus.UpdateEvent{Channel: ch, Records: records}}

	if ch == model.ChannelMovers {
		stats := cache.Categorize(records)
		e.mu.Lock()
		e.moversStats = stats
		e.mu.Unlock()
		events = append(events, bus.CategoryStatsEvent{Channel: ch, Stats: stats})
	}

	e.emitAll(events)
}

// stopRetryLocked cancels a pending backoff timer.
func (e *Engine) stopRetryLocked(st *channelState) {
	if st.retryTimer != nil {
		st.retryTimer.Stop()
		st.retryTimer = nil
	}
}

// stopConnLocked closes and detaches the channel's transport. The
// generation bump turns any in-flight callbacks for the old connection into
// no-ops.
func (e *Engine) stopConnLocked(st *channelState) {
	st.gen++
	if st.conn != nil {
		st.conn.Close()
		st.conn = nil
	}
}

// stopPollLocked stops the channel's poll loop.
func (e *Engine) stopPollLocked(st *channelState) {
	if st.pollCancel != nil {
		st.pollCancel()
		st.pollCancel = nil
		st.pollKick = nil
	}
}
