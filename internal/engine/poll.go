package engine

import (
	"context"
	"time"

	"github.com/finvue/marketsync/internal/bus"
	"github.com/finvue/marketsync/internal/model"
)

// startPullLocked transitions the channel into pull mode and starts its
// poll loop if one is not already running. Caller holds the engine mutex.
func (e *Engine) startPullLocked(st *channelState, t Trigger, events *[]bus.Event) {
	e.fire(st, t, model.ModePull, events)

	if st.pollCancel != nil {
		return
	}

	pollCtx, cancel := context.WithCancel(e.ctx)
	st.pollCancel = cancel
	st.pollKick = make(chan struct{}, 1)

	e.wg.Add(1)
	go e.runPoll(pollCtx, st.channel, st.pollKick)
}

// runPoll is one channel's repeating fetch cycle. The period follows the
// session phase and is re-evaluated both every cycle and immediately when
// the session loop signals a phase change.
func (e *Engine) runPoll(ctx context.Context, ch model.Channel, kick <-chan struct{}) {
	defer e.wg.Done()

	// Fetch immediately so subscribers are not left empty until the first
	// tick.
	e.pollOnce(ctx, ch)

	for {
		timer := time.NewTimer(e.pollPeriod())

		select {
		case <-ctx.Done():
			timer.Stop()
			return
		case <-kick:
			// Phase changed: recompute the period on a fresh timer.
			timer.Stop()
			continue
		case <-timer.C:
			e.pollOnce(ctx, ch)
		}
	}
}

// pollPeriod returns the cadence mandated by the current session phase.
func (e *Engine) pollPeriod() time.Duration {
	if e.clock.IsOpen(e.now()) {
		return e.cfg.OpenInterval
	}
	return e.cfg.ClosedInterval
}

// pollOnce runs one fetch-and-diff cycle. A failed fetch is reported and
// skipped; the next tick proceeds normally.
func (e *Engine) pollOnce(ctx context.Context, ch model.Channel) {
	fetchCtx, cancel := context.WithTimeout(ctx, e.cfg.FetchTimeout)
	records, err := e.fetcher.Fetch(fetchCtx, ch)
	cancel()

	if err != nil {
		if ctx.Err() != nil {
			return
		}
		e.logger.Warn("poll cycle failed",
			"channel", ch,
			"error", err,
		)
		e.emitAll([]bus.Event{bus.ErrorEvent{
			Channel: ch,
			Message: err.Error(),
		}})
		return
	}

	e.applyUpdate(ch, records)
}
