package state

import (
	"sync"
	"time"

	"github.com/mattdonders/njtstatus/internal/lines"
	"github.com/mattdonders/njtstatus/internal/syncer"
)

// Snapshot represents the latest data available to the UI.
type Snapshot struct {
	syncer.Snapshot
	LastChanged         time.Time
	ConsecutiveFailures int // Number of consecutive failed refreshes
}

// IsOffline returns true when the feed has failed several refreshes in a row.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent access between the event loop and the UI.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update records the latest machine snapshot. Failures bump the failure
// counter; a successful update resets it.
func (s *Store) Update(snap syncer.Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()

	prev := s.snapshot.State
	s.snapshot.Snapshot = snap
	s.snapshot.Lines = cloneLines(snap.Lines)
	s.snapshot.LastChanged = time.Now()

	switch {
	case snap.State == syncer.StateUpdated:
		s.snapshot.ConsecutiveFailures = 0
	case snap.State.Failed() && prev == syncer.StateUpdating:
		s.snapshot.ConsecutiveFailures++
	}
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Lines = cloneLines(s.snapshot.Lines)
	return snap
}

func cloneLines(records []lines.Record) []lines.Record {
	if len(records) == 0 {
		return nil
	}
	dup := make([]lines.Record, len(records))
	copy(dup, records)
	return dup
}
