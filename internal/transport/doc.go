// Package transport implements the push-mode streaming connection.
//
// The push transport:
//   - Wraps one long-lived WebSocket per push-eligible channel
//   - Parses frames, silently dropping heartbeat and status-only frames
//   - Delivers data-update frames and reports errors upward
//   - Never reconnects itself; retry policy lives in the engine
package transport
