// Package session implements the Session Clock component.
//
// The Session Clock:
//   - Classifies any timestamp into a trading-session phase
//   - Is a pure function of time: no I/O, no error conditions
//   - Drives the pull scheduler's cadence and orchestrator policy
package session
