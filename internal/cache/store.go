package cache

import (
	"sync"
	"time"

	"github.com/finvue/marketsync/internal/model"
)

// Fingerprint is a cheap, approximate summary of a record set. Two sets with
// equal fingerprints are treated as identical snapshots.
type Fingerprint struct {
	Count      int
	FirstPrice float64
}

// FingerprintOf computes the fingerprint of a record list.
func FingerprintOf(records []model.Record) Fingerprint {
	fp := Fingerprint{Count: len(records)}
	if len(records) > 0 {
		fp.FirstPrice = records[0].Price
	}
	return fp
}

// snapshot is one channel's cached state. Overwritten whole on every
// accepted update, never partially mutated.
type snapshot struct {
	records     []model.Record
	fingerprint Fingerprint
	updatedAt   time.Time
}

// Store holds the last delivered snapshot per channel.
type Store struct {
	mu    sync.RWMutex
	snaps map[model.Channel]*snapshot
}

// NewStore creates an empty Store.
func NewStore() *Store {
	return &Store{snaps: make(map[model.Channel]*snapshot)}
}

// Apply compares records against the channel's cached fingerprint. If the
// fingerprint changed the cache is replaced and Apply returns true; an
// unchanged fingerprint leaves the cache untouched and returns false so the
// caller can suppress the emission.
func (s *Store) Apply(ch model.Channel, records []model.Record) bool {
	fp := FingerprintOf(records)

	s.mu.Lock()
	defer s.mu.Unlock()

	if prev, ok := s.snaps[ch]; ok && prev.fingerprint == fp {
		return false
	}

	// Copy so callers cannot mutate the cached list afterwards.
	kept := make([]model.Record, len(records))
	copy(kept, records)

	s.snaps[ch] = &snapshot{
		records:     kept,
		fingerprint: fp,
		updatedAt:   time.Now(),
	}
	return true
}

// Last returns the channel's most recently accepted record list, or nil if
// nothing has been delivered yet.
func (s *Store) Last(ch model.Channel) []model.Record {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap, ok := s.snaps[ch]
	if !ok {
		return nil
	}

	out := make([]model.Record, len(snap.records))
	copy(out, snap.records)
	return out
}

// LastUpdate returns when the channel last accepted an update. Zero time if
// never.
func (s *Store) LastUpdate(ch model.Channel) time.Time {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if snap, ok := s.snaps[ch]; ok {
		return snap.updatedAt
	}
	return time.Time{}
}

// Reset drops all cached snapshots.
func (s *Store) Reset() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.snaps = make(map[model.Channel]*snapshot)
}
