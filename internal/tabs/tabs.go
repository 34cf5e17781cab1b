// Package tabs tracks the open documents of the shell: an ordered list of
// tabs keyed by route path and the key of the active one.
//
// Every open tab owns a context that is cancelled when the tab closes, so work
// started on behalf of a screen can stop publishing into it.
package tabs

import (
	"context"
	"strings"
	"sync"
)

// Meta describes a tab for the tab bar and the permission lookup.
type Meta struct {
	Title        string
	ProgramNo    string
	RequiresAuth bool
	Extra        map[string]string
}

// Tab is one open document. E is whatever the rendering layer paints.
type Tab[E any] struct {
	Path    string
	Meta    Meta
	Element E

	ctx context.Context
}

// Context is cancelled when the tab is closed. Tabs not obtained from a Store
// return context.Background.
func (t Tab[E]) Context() context.Context {
	if t.ctx == nil {
		return context.Background()
	}
	return t.ctx
}

type entry[E any] struct {
	tab    Tab[E]
	cancel context.CancelFunc
}

// Snapshot is a copy of the session at one point in time. ActiveKey is empty
// when no tab is open.
type Snapshot[E any] struct {
	Tabs      []Tab[E]
	ActiveKey string
}

// Active returns the active tab, if any.
func (s Snapshot[E]) Active() (Tab[E], bool) {
	for _, t := range s.Tabs {
		if t.Path == s.ActiveKey {
			return t, true
		}
	}
	return Tab[E]{}, false
}

// Option customises a Store.
type Option func(*options)

type options struct {
	maxTabs int
	base    context.Context
}

// WithMaxTabs caps the number of open tabs. Zero means unlimited.
func WithMaxTabs(n int) Option {
	return func(o *options) {
		if n >= 0 {
			o.maxTabs = n
		}
	}
}

// WithContext sets the parent of every tab context.
func WithContext(ctx context.Context) Option {
	return func(o *options) {
		if ctx != nil {
			o.base = ctx
		}
	}
}

// Store is the tab session. It is safe for concurrent use.
type Store[E any] struct {
	mu      sync.RWMutex
	entries []*entry[E]
	active  string
	maxTabs int
	base    context.Context
}

// NewStore returns an empty session.
func NewStore[E any](opts ...Option) *Store[E] {
	o := options{base: context.Background()}
	for _, opt := range opts {
		opt(&o)
	}
	return &Store[E]{maxTabs: o.maxTabs, base: o.base}
}

// Open activates the tab at path when it is already open. Otherwise build is
// called with the new tab's context, the result is appended and activated.
// build is not called for a tab that is already open, and runs under the
// store lock so it must not call back into the Store. It reports whether a
// new tab was created.
func (s *Store[E]) Open(path string, meta Meta, build func(ctx context.Context) E) (Tab[E], bool) {
	path = strings.TrimSpace(path)
	if path == "" {
		return Tab[E]{}, false
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	if e := s.find(path); e != nil {
		s.active = path
		return e.tab, false
	}

	ctx, cancel := context.WithCancel(s.base)
	tab := Tab[E]{Path: path, Meta: meta, ctx: ctx}
	if build != nil {
		tab.Element = build(ctx)
	}
	s.entries = append(s.entries, &entry[E]{tab: tab, cancel: cancel})
	s.active = path
	s.evictLocked()
	return tab, true
}

// AddTab opens tab, keeping its element. An existing tab with the same path is
// activated and its element left untouched.
func (s *Store[E]) AddTab(tab Tab[E]) bool {
	_, added := s.Open(tab.Path, tab.Meta, func(context.Context) E { return tab.Element })
	return added
}

// SetActiveTabKey activates the tab at path. Unknown paths are ignored.
func (s *Store[E]) SetActiveTabKey(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.find(path) == nil {
		return false
	}
	s.active = path
	return true
}

// RemoveTab closes the tab at path. When it was active the tab before it
// becomes active, else the one after it, else none.
func (s *Store[E]) RemoveTab(path string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	idx := s.indexOf(path)
	if idx < 0 {
		return false
	}
	removed := s.entries[idx]
	s.entries = append(s.entries[:idx], s.entries[idx+1:]...)
	removed.cancel()

	if s.active != path {
		return true
	}
	switch {
	case len(s.entries) == 0:
		s.active = ""
	case idx > 0:
		s.active = s.entries[idx-1].tab.Path
	default:
		s.active = s.entries[0].tab.Path
	}
	return true
}

// CloseAllTabs closes every tab.
func (s *Store[E]) CloseAllTabs() {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, e := range s.entries {
		e.cancel()
	}
	s.entries = nil
	s.active = ""
}

// ActiveTabKey returns the active path, or "" when no tab is open.
func (s *Store[E]) ActiveTabKey() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.active
}

// Active returns the active tab.
func (s *Store[E]) Active() (Tab[E], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e := s.find(s.active); e != nil {
		return e.tab, true
	}
	return Tab[E]{}, false
}

// Get returns the tab at path.
func (s *Store[E]) Get(path string) (Tab[E], bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	if e := s.find(path); e != nil {
		return e.tab, true
	}
	return Tab[E]{}, false
}

// Len returns the number of open tabs.
func (s *Store[E]) Len() int {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return len(s.entries)
}

// Snapshot returns a copy of the open tabs in order.
func (s *Store[E]) Snapshot() Snapshot[E] {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := Snapshot[E]{ActiveKey: s.active}
	if len(s.entries) > 0 {
		out.Tabs = make([]Tab[E], len(s.entries))
		for i, e := range s.entries {
			out.Tabs[i] = e.tab
		}
	}
	return out
}

// Cycle activates the tab delta positions away from the active one, wrapping
// at both ends.
func (s *Store[E]) Cycle(delta int) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	n := len(s.entries)
	if n == 0 {
		return "", false
	}
	idx := s.indexOf(s.active)
	if idx < 0 {
		idx = 0
	}
	next := ((idx+delta)%n + n) % n
	s.active = s.entries[next].tab.Path
	return s.active, true
}

func (s *Store[E]) evictLocked() {
	if s.maxTabs <= 0 {
		return
	}
	for len(s.entries) > s.maxTabs {
		victim := -1
		for i, e := range s.entries {
			if e.tab.Path != s.active {
				victim = i
				break
			}
		}
		if victim < 0 {
			return
		}
		s.entries[victim].cancel()
		s.entries = append(s.entries[:victim], s.entries[victim+1:]...)
	}
}

func (s *Store[E]) find(path string) *entry[E] {
	if i := s.indexOf(path); i >= 0 {
		return s.entries[i]
	}
	return nil
}

func (s *Store[E]) indexOf(path string) int {
	if path == "" {
		return -1
	}
	for i, e := range s.entries {
		if e.tab.Path == path {
			return i
		}
	}
	return -1
}
