// Package model defines shared data types used across the sync engine.
//
// Conventions:
//   - Prices and percent changes: float64 as delivered by the feeds
//   - Timestamps: int64 milliseconds since Unix epoch
//   - Channels: fixed closed set, created at engine construction, never destroyed
package model
