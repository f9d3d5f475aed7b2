// Package app provides the orchestration layer for njtstatus.
//
// # Overview
//
// This package wires together configuration, the line registry, the HTTP
// transport, the sync state machine and the UI. It is the composition root
// where every dependency is built and connected.
//
// # Architecture
//
//  1. Load config.toml (plus .env and NJT_* overrides)
//  2. Open the log file and read UI preferences
//  3. Build the registry, transport and state machine (Wire)
//  4. Start the event loop and request the first refresh
//  5. Launch the optional refresh timer
//  6. Start the TUI and block until the user quits or the context cancels
//
// # Event Loop
//
// Loop is the single queue that owns the state machine. The transport posts
// its callbacks there, the timer and the UI post refreshes there, and events
// are handled one at a time, so the machine never needs its own lock.
//
//	UI "r" / timer ──> Loop.Refresh ─┐
//	                                 ├─> Loop.Run ─> Machine.Handle
//	Transport callback ─> Loop.Post ─┘                   │
//	                                                     └─> state.Store.Update
//	                                                             │
//	                                         UI reads Snapshot() ┘
//
// # Error Handling
//
// Config, logging and wiring errors are returned from Run. Fetch failures are
// never fatal: they become Failed states that the UI shows until the next
// refresh succeeds.
package app
