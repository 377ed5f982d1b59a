package engine

import (
	"time"

	"github.com/finvue/marketsync/internal/bus"
	"github.com/finvue/marketsync/internal/model"
)

// sessionLoop re-evaluates the session phase on a fixed tick. A phase
// change is announced on the bus and poked into every poll loop so cadence
// adjusts immediately, not at the next timer expiry.
func (e *Engine) sessionLoop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.cfg.SessionTick)
	defer ticker.Stop()

	for {
		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			e.refreshPhase()
		}
	}
}

// refreshPhase publishes a phase change and kicks the poll loops. It never
// forces a fallen-back channel away from pull mode.
func (e *Engine) refreshPhase() {
	phase := e.clock.Phase(e.now())

	e.mu.Lock()
	if e.closed || phase == e.phase {
		e.mu.Unlock()
		return
	}
	e.phase = phase

	kicks := make([]chan struct{}, 0, len(e.channels))
	for _, st := range e.channels {
		if st.pollKick != nil {
			kicks = append(kicks, st.pollKick)
		}
	}
	e.mu.Unlock()

	e.logger.Info("session phase changed", "phase", phase)

	e.emitAll([]bus.Event{bus.MarketStatusEvent{
		IsOpen: phase == model.PhaseOpen,
		Phase:  phase,
	}})

	for _, k := range kicks {
		select {
		case k <- struct{}{}:
		default:
		}
	}
}

// healthLoop is the self-healing backstop. Each sweep corrects channels
// whose actual mode or status drifted from the policy-mandated one and is a
// no-op when everything is already consistent.
func (e *Engine) healthLoop() {
	defer e.wg.Done()

	ticker := time.NewTicker(e.cfg.HealthInterval)
	defer ticker.Stop()

	for {
		select {
		case <-e.ctx.Done():
			return
		case <-ticker.C:
			e.superviseOnce()
		}
	}
}

// superviseOnce runs one supervisor sweep.
func (e *Engine) superviseOnce() {
	e.mu.Lock()
	if e.closed {
		e.mu.Unlock()
		return
	}

	var events []bus.Event
	var starters []func()
	for _, ch := range model.AllChannels() {
		st := e.channels[ch]

		if !ch.PushEligible() || st.fellBack {
			// Policy mandates pull. Correct any drift.
			if st.mode != model.ModePull || st.status != model.StatusPullMode || st.pollCancel == nil {
				e.logger.Warn("correcting drifted channel",
					"channel", ch,
					"status", st.status,
					"mode", st.mode,
				)
				e.startPullLocked(st, TriggerStartPull, &events)
			}
			continue
		}

		// Push-eligible channel stuck disconnected with retries left and no
		// pending backoff: issue a manual reconnect.
		if st.mode == model.ModePush &&
			st.status == model.StatusDisconnected &&
			st.retryTimer == nil &&
			st.conn == nil &&
			!e.cfg.Backoff.Exhausted(st.attempts) {
			e.logger.Warn("supervisor reconnecting push channel", "channel", ch)
			starters = append(starters, e.startPushLocked(st, TriggerStartPush, &events))
		}
	}
	e.mu.Unlock()

	e.emitAll(events)
	for _, start := range starters {
		start()
	}
}
