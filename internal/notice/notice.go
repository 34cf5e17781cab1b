// Package notice holds the short-lived messages ("toasts") that state stores
// raise when a search fails, finds nothing to refresh, or succeeds with a row
// count. Producers call Notify; the UI drains Active on each repaint.
package notice

import (
	"sync"
	"time"
)

// Level classifies a notice.
type Level int

const (
	LevelInfo Level = iota
	LevelSuccess
	LevelWarning
	LevelError
)

func (l Level) String() string {
	switch l {
	case LevelSuccess:
		return "success"
	case LevelWarning:
		return "warning"
	case LevelError:
		return "error"
	default:
		return "info"
	}
}

// Sink receives fire-and-forget notices.
type Sink interface {
	Notify(level Level, message string)
}

// Discard drops every notice.
type Discard struct{}

func (Discard) Notify(Level, string) {}

// Notice is one queued message.
type Notice struct {
	ID      uint64
	Level   Level
	Message string
	At      time.Time
}

const (
	defaultCapacity = 5
	defaultTTL      = 4 * time.Second
)

// Queue is a bounded, expiring notice list safe for concurrent use.
type Queue struct {
	mu       sync.Mutex
	items    []Notice
	nextID   uint64
	capacity int
	ttl      time.Duration
	now      func() time.Time
}

// NewQueue keeps at most capacity notices, each visible for ttl. Zero values
// pick the defaults.
func NewQueue(capacity int, ttl time.Duration) *Queue {
	if capacity <= 0 {
		capacity = defaultCapacity
	}
	if ttl <= 0 {
		ttl = defaultTTL
	}
	return &Queue{capacity: capacity, ttl: ttl, now: time.Now}
}

// Notify appends a notice, dropping the oldest when full. Empty messages are
// ignored.
func (q *Queue) Notify(level Level, message string) {
	if message == "" {
		return
	}
	q.mu.Lock()
	defer q.mu.Unlock()
	q.nextID++
	q.items = append(q.items, Notice{ID: q.nextID, Level: level, Message: message, At: q.now()})
	if over := len(q.items) - q.capacity; over > 0 {
		q.items = append(q.items[:0], q.items[over:]...)
	}
}

// Active prunes expired notices and returns a copy of the rest, oldest first.
func (q *Queue) Active() []Notice {
	q.mu.Lock()
	defer q.mu.Unlock()
	cutoff := q.now().Add(-q.ttl)
	kept := q.items[:0]
	for _, n := range q.items {
		if n.At.After(cutoff) {
			kept = append(kept, n)
		}
	}
	q.items = kept
	if len(kept) == 0 {
		return nil
	}
	out := make([]Notice, len(kept))
	copy(out, kept)
	return out
}

// Dismiss removes the notice with id.
func (q *Queue) Dismiss(id uint64) {
	q.mu.Lock()
	defer q.mu.Unlock()
	for i, n := range q.items {
		if n.ID == id {
			q.items = append(q.items[:i], q.items[i+1:]...)
			return
		}
	}
}
