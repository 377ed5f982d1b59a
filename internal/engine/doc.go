// Package engine implements the Connection Orchestrator.
//
// The engine:
//   - Owns one connection state machine per channel
//   - Decides push vs. pull mode and applies the reconnect policy
//   - Runs the per-channel pull scheduler with session-aware cadence
//   - Deduplicates snapshots and emits normalized events on the bus
//   - Self-heals drifted channels via a periodic supervisor sweep
package engine
