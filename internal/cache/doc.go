// Package cache implements the per-channel Snapshot Cache.
//
// The Snapshot Cache:
//   - Stores each channel's most recently delivered record list
//   - Keeps a cheap fingerprint (count + first price) to suppress
//     redundant downstream emissions
//   - Derives the movers channel's categorized view on every accepted update
package cache
