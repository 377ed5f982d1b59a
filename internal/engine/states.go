package engine

import "github.com/finvue/marketsync/internal/model"

// Trigger is an input to the per-channel state machine.
type Trigger string

const (
	// TriggerStartPush begins a push connection attempt.
	TriggerStartPush Trigger = "start-push"
	// TriggerOpened fires when the streaming connection opens.
	TriggerOpened Trigger = "opened"
	// TriggerStreamError fires on any transport-level failure.
	TriggerStreamError Trigger = "stream-error"
	// TriggerRetry fires when a backoff timer elapses.
	TriggerRetry Trigger = "retry"
	// TriggerGiveUp fires when the reconnect attempt cap is exceeded.
	TriggerGiveUp Trigger = "give-up"
	// TriggerStartPull moves a channel into pull mode.
	TriggerStartPull Trigger = "start-pull"
	// TriggerForcePush re-attempts push on operator command.
	TriggerForcePush Trigger = "force-push"
	// TriggerStop tears the channel down on shutdown.
	TriggerStop Trigger = "stop"
)

// transitions is the explicit state × trigger table. Every mode decision the
// engine makes goes through this table so each transition is independently
// testable without simulating sockets.
var transitions = map[model.ConnectionStatus]map[Trigger]model.ConnectionStatus{
	model.StatusDisconnected: {
		TriggerStartPush: model.StatusConnecting,
		TriggerForcePush: model.StatusConnecting,
		TriggerStartPull: model.StatusPullMode,
		TriggerStop:      model.StatusDisconnected,
	},
	model.StatusConnecting: {
		TriggerOpened:      model.StatusConnected,
		TriggerStreamError: model.StatusReconnecting,
		TriggerGiveUp:      model.StatusPullMode,
		TriggerStartPull:   model.StatusPullMode,
		TriggerForcePush:   model.StatusConnecting,
		TriggerStop:        model.StatusDisconnected,
	},
	model.StatusConnected: {
		TriggerStreamError: model.StatusReconnecting,
		TriggerGiveUp:      model.StatusPullMode,
		TriggerStartPull:   model.StatusPullMode,
		TriggerForcePush:   model.StatusConnecting,
		TriggerStop:        model.StatusDisconnected,
	},
	model.StatusReconnecting: {
		TriggerRetry:     model.StatusConnecting,
		TriggerGiveUp:    model.StatusPullMode,
		TriggerStartPull: model.StatusPullMode,
		TriggerForcePush: model.StatusConnecting,
		TriggerStop:      model.StatusDisconnected,
	},
	model.StatusPullMode: {
		TriggerStartPull: model.StatusPullMode,
		TriggerForcePush: model.StatusConnecting,
		TriggerStop:      model.StatusDisconnected,
	},
}

// nextStatus resolves a transition. ok is false for pairs the table does not
// define; callers treat those as no-ops, never as failures.
func nextStatus(s model.ConnectionStatus, t Trigger) (model.ConnectionStatus, bool) {
	row, ok := transitions[s]
	if !ok {
		return s, false
	}
	next, ok := row[t]
	if !ok {
		return s, false
	}
	return next, true
}
