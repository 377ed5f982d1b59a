// Package bus implements the engine's typed publish/subscribe registry.
//
// The Event Bus:
//   - Maps event names to ordered subscriber lists
//   - Emits synchronously, in registration order
//   - Isolates panicking subscribers so the rest are still notified
//   - Is fire-and-forget: nothing is queued for late subscribers
package bus
