// Package feed implements the REST client for pull-mode channels.
//
// The feed client:
//   - Fetches a channel's fixed REST path
//   - Tolerates both bare-array and enveloped ({"items"} / {"data"}) responses
//   - Normalizes payloads into []model.Record
//   - Treats error or unparseable responses as transient per-cycle failures
package feed
