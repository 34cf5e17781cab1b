// Package state provides thread-safe state management for erpdesk.
//
// # Overview
//
// The Store shares the navigation menu tree between the background menu
// refresher and the UI. It is the coordination point where refresh results
// meet rendering.
//
//	Producer (refresher):          Consumer (UI):
//	┌─────────────────┐            ┌─────────────────┐
//	│ cache.Get()     │            │                 │
//	│ FetchMenus()    │            │                 │
//	│      ↓          │            │                 │
//	│ store.Update()  │───────────→│ store.Snapshot()│
//	│      ↓          │  (mutex)   │      ↓          │
//	│  wait, repeat   │            │  render menu    │
//	└─────────────────┘            └─────────────────┘
//
// # Concurrency Model
//
// The Store uses a readers-writer lock. Update takes the write lock,
// Snapshot and Menus take the read lock. The lock is held only while
// copying, never during network I/O or rendering.
//
// # Snapshot Semantics
//
// Snapshots are deep copies: the menu tree including every Children slice
// is cloned, and LastError is re-wrapped so callers never share the stored
// instance.
//
// # Error Handling
//
// A failed refresh keeps the previous tree and only records the error,
// bumps ConsecutiveFailures and LastUpdated. Two or more consecutive
// failures make IsOffline report true so the header can show it. A
// successful update resets the counter.
package state
