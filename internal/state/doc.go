// Package state provides thread-safe sharing of the sync state between the
// event loop and the UI.
//
// # Overview
//
// The state machine lives on the event loop goroutine and must not be read
// from anywhere else. Every time it changes state it publishes a
// syncer.Snapshot, and the loop hands that snapshot to Store.Update. The UI
// runs on its own goroutine and reads Store.Snapshot on every tick.
//
//	Producer (event loop):          Consumer (UI):
//	┌──────────────────┐           ┌──────────────────┐
//	│ machine.Handle() │           │                  │
//	│      ↓           │           │                  │
//	│ Subscribe(fn)    │           │                  │
//	│      ↓           │           │                  │
//	│ store.Update()   │──────────→│ store.Snapshot() │
//	│                  │  (mutex)  │      ↓           │
//	│                  │           │  render rows     │
//	└──────────────────┘           └──────────────────┘
//
// # Update Semantics
//
//	store.Update(snap)
//	→ snapshot.State, Reason, Lines, UpdatedAt = snap (lines cloned)
//	→ snapshot.LastChanged = now
//	→ ConsecutiveFailures reset on StateUpdated,
//	  incremented when a request in flight ends in a failure state
//
// A refresh whose send fails synchronously goes Updating → Failed and counts
// once, the same as one that fails later.
//
// # Defensive Copying
//
// Line slices are cloned on the way in and on the way out, so neither side
// can mutate what the other sees.
//
// # Testing Considerations
//
// The zero Store is ready to use; Snapshot on a fresh store returns the idle
// state with no lines.
package state
