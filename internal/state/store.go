package state

import (
	"fmt"
	"sync"
	"time"

	"github.com/five82/erpdesk/internal/menu"
)

// Snapshot represents the latest navigation data available to the UI.
type Snapshot struct {
	Menus               []menu.Item
	HasMenus            bool
	FromCache           bool // Menus came from the local cache rather than the backend
	LastUpdated         time.Time
	LastError           error
	ConsecutiveFailures int // Number of consecutive refresh failures
}

// IsOffline returns true when the backend has been unreachable for multiple refreshes.
func (s Snapshot) IsOffline() bool {
	return s.ConsecutiveFailures >= 2
}

// Store coordinates concurrent updates to the snapshot.
type Store struct {
	mu       sync.RWMutex
	snapshot Snapshot
}

// Update replaces the stored menu tree. When err is non-nil the previous tree
// is kept but the error is recorded for visibility.
func (s *Store) Update(menus []menu.Item, fromCache bool, err error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err != nil {
		s.snapshot.LastError = err
		s.snapshot.LastUpdated = time.Now()
		s.snapshot.ConsecutiveFailures++
		return
	}

	s.snapshot.Menus = cloneMenus(menus)
	s.snapshot.HasMenus = menus != nil
	s.snapshot.FromCache = fromCache
	s.snapshot.LastError = nil
	s.snapshot.LastUpdated = time.Now()
	s.snapshot.ConsecutiveFailures = 0
}

// Menus returns the current tree and whether one has been loaded.
func (s *Store) Menus() ([]menu.Item, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return cloneMenus(s.snapshot.Menus), s.snapshot.HasMenus
}

// Snapshot returns a copy of the current snapshot.
func (s *Store) Snapshot() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snap := s.snapshot
	snap.Menus = cloneMenus(s.snapshot.Menus)
	if s.snapshot.LastError != nil {
		snap.LastError = fmt.Errorf("%w", s.snapshot.LastError)
	}
	return snap
}

func cloneMenus(items []menu.Item) []menu.Item {
	if len(items) == 0 {
		return nil
	}
	dup := make([]menu.Item, len(items))
	for i, it := range items {
		dup[i] = it
		dup[i].Children = cloneMenus(it.Children)
	}
	return dup
}
