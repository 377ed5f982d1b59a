package engine

import (
	"time"

	"github.com/finvue/marketsync/internal/bus"
	"github.com/finvue/marketsync/internal/feed"
	"github.com/finvue/marketsync/internal/model"
	"github.com/finvue/marketsync/internal/transport"
)

// startPushLocked transitions the channel toward push and dials a fresh
// streaming connection. Caller holds the engine mutex and must invoke the
// returned starter after publishing its queued events, so the connection's
// own events cannot overtake the transition that caused the dial.
func (e *Engine) startPushLocked(st *channelState, t Trigger, events *[]bus.Event) func() {
	e.fire(st, t, model.ModePush, events)
	return e.dialLocked(st)
}

// dialLocked attaches a new transport and spawns its run goroutine. The
// goroutine stays parked until the returned starter is called. Caller holds
// the engine mutex.
func (e *Engine) dialLocked(st *channelState) func() {
	cfg := transport.ClientConfig{
		URL:          e.cfg.PushURL,
		PingTimeout:  e.cfg.PingTimeout,
		WriteTimeout: e.cfg.WriteTimeout,
		BufferSize:   e.cfg.PushBuffer,
	}

	st.gen++
	conn := e.dial(cfg, e.logger.With("channel", st.channel))
	st.conn = conn

	ready := make(chan struct{})
	e.wg.Add(1)
	go e.runPush(st, conn, st.gen, ready)

	return func() { close(ready) }
}

// runPush drives one streaming connection to completion. It never retries
// by itself; failures go through streamFailure, which applies the reconnect
// policy.
func (e *Engine) runPush(st *channelState, conn transport.Conn, gen int, ready <-chan struct{}) {
	defer e.wg.Done()

	select {
	case <-e.ctx.Done():
		conn.Close()
		return
	case <-ready:
	}

	if err := conn.Connect(e.ctx); err != nil {
		e.streamFailure(st, conn, gen, err)
		return
	}

	e.mu.Lock()
	if e.closed || st.gen != gen {
		e.mu.Unlock()
		conn.Close()
		return
	}
	var events []bus.Event
	e.fire(st, TriggerOpened, model.ModePush, &events)
	st.attempts = 0
	e.mu.Unlock()
	e.emitAll(events)

	e.logger.Info("push stream connected", "channel", st.channel)

	for {
		select {
		case <-e.ctx.Done():
			conn.Close()
			return
		case <-conn.Done():
			// Closed out from under us by a mode switch or shutdown.
			return
		case frame := <-conn.Frames():
			e.handleFrame(st, gen, frame)
		case err := <-conn.Errors():
			e.streamFailure(st, conn, gen, err)
			return
		}
	}
}

// handleFrame normalizes one data-update frame and runs it through the
// shared diff-and-emit path. A malformed payload discards only that frame.
func (e *Engine) handleFrame(st *channelState, gen int, frame transport.Frame) {
	e.mu.Lock()
	stale := e.closed || st.gen != gen
	e.mu.Unlock()
	if stale {
		return
	}

	records, err := feed.ParseRecords(frame.Data)
	if err != nil {
		e.logger.Warn("discarding unparseable push payload",
			"channel", st.channel,
			"type", frame.Type,
			"error", err,
		)
		e.emitAll([]bus.Event{bus.ErrorEvent{
			Channel: st.channel,
			Message: err.Error(),
		}})
		return
	}

	e.applyUpdate(st.channel, records)
}

// streamFailure converts a transport failure into an error event and a
// state transition: either a scheduled retry or, past the attempt cap, a
// permanent fallback to pull mode. The reconnecting event is published
// before the backoff timer is armed so a short delay cannot reorder the
// channel's events.
func (e *Engine) streamFailure(st *channelState, conn transport.Conn, gen int, err error) {
	conn.Close()

	e.mu.Lock()
	if e.closed || st.gen != gen {
		e.mu.Unlock()
		return
	}

	st.conn = nil
	st.attempts++

	events := []bus.Event{bus.ErrorEvent{
		Channel: st.channel,
		Message: err.Error(),
	}}

	if e.cfg.Backoff.Exhausted(st.attempts) {
		st.fellBack = true
		e.logger.Warn("push attempts exhausted, falling back to pull permanently",
			"channel", st.channel,
			"attempts", st.attempts,
		)
		e.startPullLocked(st, TriggerGiveUp, &events)
		e.mu.Unlock()
		e.emitAll(events)
		return
	}

	e.fire(st, TriggerStreamError, model.ModePush, &events)
	delay := e.cfg.Backoff.Delay(st.attempts - 1)
	e.logger.Warn("push stream failed, scheduling retry",
		"channel", st.channel,
		"attempt", st.attempts,
		"delay", delay,
		"error", err,
	)
	e.mu.Unlock()

	e.emitAll(events)

	e.mu.Lock()
	if e.closed || st.gen != gen || st.status != model.StatusReconnecting {
		// A command raced the failure while events were publishing; its
		// path owns the channel now.
		e.mu.Unlock()
		return
	}
	st.retryTimer = time.AfterFunc(delay, func() {
		e.retryPush(st, gen)
	})
	e.mu.Unlock()
}

// retryPush fires when a backoff timer elapses.
func (e *Engine) retryPush(st *channelState, gen int) {
	e.mu.Lock()
	if e.closed || st.gen != gen || st.status != model.StatusReconnecting {
		e.mu.Unlock()
		return
	}
	st.retryTimer = nil

	var events []bus.Event
	e.fire(st, TriggerRetry, model.ModePush, &events)
	start := e.dialLocked(st)
	e.mu.Unlock()

	e.emitAll(events)
	start()
}
