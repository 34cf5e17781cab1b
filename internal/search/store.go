// Package search provides the generic state behind every ERP list screen:
// run a query, remember it for refresh, and reset.
package search

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/five82/erpdesk/internal/notice"
)

// FetchFunc runs one query against the backend.
type FetchFunc[Req, Row any] func(ctx context.Context, req Req) ([]Row, error)

// Notice texts shown to the user.
const (
	MsgNoCriteria    = "no search criteria yet"
	MsgSearchFailed  = "search failed"
	successCountText = "%d %s loaded"
)

// Snapshot is a copy of a Store at one point in time.
type Snapshot[Req, Row any] struct {
	Rows           []Row
	Loading        bool
	LastRequest    Req
	HasLastRequest bool
}

// Option configures a Store.
type Option func(*settings)

type settings struct {
	name         string
	notifier     notice.Sink
	countLabel   string
	logger       *slog.Logger
	onChange     func()
	validate     func(any) error
	validateType string
}

// WithName labels log lines from this store.
func WithName(name string) Option {
	return func(s *settings) {
		s.name = name
	}
}

// WithNotifier sets where user-facing notices go.
func WithNotifier(sink notice.Sink) Option {
	return func(s *settings) {
		if sink != nil {
			s.notifier = sink
		}
	}
}

// WithSuccessCount raises a success notice with the row count, e.g.
// "12 slips loaded" for label "slips".
func WithSuccessCount(label string) Option {
	return func(s *settings) {
		s.countLabel = label
	}
}

// WithLogger sets the store logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

// WithOnChange registers a callback run after every state change, outside
// the store lock.
func WithOnChange(fn func()) Option {
	return func(s *settings) {
		s.onChange = fn
	}
}

// WithValidate checks a request before it is sent. A non-nil error is shown
// as a warning and the request is skipped. Req must match the store's
// request type.
func WithValidate[Req any](fn func(Req) error) Option {
	return func(s *settings) {
		if fn == nil {
			return
		}
		var zero Req
		s.validateType = fmt.Sprintf("%T", zero)
		s.validate = func(v any) error {
			return fn(v.(Req))
		}
	}
}

// Store holds the rows of one screen. Only one search runs at a time; a
// second Search while one is in flight is refused rather than queued.
type Store[Req, Row any] struct {
	fetch FetchFunc[Req, Row]
	set   settings

	mu      sync.Mutex
	rows    []Row
	loading bool
	last    *Req
	grid    any
	gen     uint64
	cancel  context.CancelFunc
}

// New returns an empty store backed by fetch. It panics when a validator was
// registered for a different request type.
func New[Req, Row any](fetch FetchFunc[Req, Row], opts ...Option) *Store[Req, Row] {
	s := settings{
		notifier: notice.Discard{},
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(&s)
	}
	if s.validate != nil {
		var zero Req
		if want := fmt.Sprintf("%T", zero); want != s.validateType {
			panic(fmt.Sprintf("search: validator for %s used with %s store", s.validateType, want))
		}
	}
	s.logger = s.logger.With("component", "search", "screen", s.name)
	return &Store[Req, Row]{fetch: fetch, set: s}
}

// Search runs req unless a search is already in flight. It reports whether
// the request succeeded. Failures leave the store empty and raise an error
// notice; nothing is returned to the caller.
func (s *Store[Req, Row]) Search(ctx context.Context, req Req) bool {
	s.mu.Lock()
	if s.loading {
		s.mu.Unlock()
		s.set.logger.Debug("search already in flight")
		return false
	}
	if s.set.validate != nil {
		if err := s.set.validate(req); err != nil {
			s.mu.Unlock()
			s.set.notifier.Notify(notice.LevelWarning, err.Error())
			return false
		}
	}
	s.loading = true
	s.gen++
	gen := s.gen
	ctx, cancel := context.WithCancel(ctx)
	s.cancel = cancel
	s.mu.Unlock()
	s.changed()

	rows, err := s.fetch(ctx, req)
	cancel()

	s.mu.Lock()
	if s.gen != gen {
		// Reset ran while the request was out.
		s.mu.Unlock()
		return false
	}
	s.loading = false
	s.cancel = nil
	if err != nil {
		s.rows = nil
		s.mu.Unlock()
		s.reportFailure(err)
		s.changed()
		return false
	}
	if rows == nil {
		rows = []Row{}
	}
	s.rows = rows
	s.last = &req
	n := len(rows)
	s.mu.Unlock()

	if s.set.countLabel != "" {
		s.set.notifier.Notify(notice.LevelSuccess, fmt.Sprintf(successCountText, n, s.set.countLabel))
	}
	s.changed()
	return true
}

// Refresh re-runs the last successful request. Without one it warns and
// does nothing.
func (s *Store[Req, Row]) Refresh(ctx context.Context) bool {
	s.mu.Lock()
	if s.last == nil {
		s.mu.Unlock()
		s.set.notifier.Notify(notice.LevelWarning, MsgNoCriteria)
		return false
	}
	req := *s.last
	s.mu.Unlock()
	return s.Search(ctx, req)
}

// Reset returns the store to its initial state. An in-flight request is
// cancelled and its result discarded.
func (s *Store[Req, Row]) Reset() {
	s.mu.Lock()
	if s.cancel != nil {
		s.cancel()
		s.cancel = nil
	}
	s.gen++
	s.rows = nil
	s.loading = false
	s.last = nil
	s.grid = nil
	s.mu.Unlock()
	s.changed()
}

// SetGrid keeps a reference to the widget rendering the rows.
func (s *Store[Req, Row]) SetGrid(grid any) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.grid = grid
}

// Grid returns the reference stored by SetGrid.
func (s *Store[Req, Row]) Grid() any {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.grid
}

// Loading reports whether a search is in flight.
func (s *Store[Req, Row]) Loading() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.loading
}

// Rows returns a copy of the current rows.
func (s *Store[Req, Row]) Rows() []Row {
	s.mu.Lock()
	defer s.mu.Unlock()
	return cloneRows(s.rows)
}

// Snapshot returns a copy of the store.
func (s *Store[Req, Row]) Snapshot() Snapshot[Req, Row] {
	s.mu.Lock()
	defer s.mu.Unlock()
	snap := Snapshot[Req, Row]{
		Rows:    cloneRows(s.rows),
		Loading: s.loading,
	}
	if s.last != nil {
		snap.LastRequest = *s.last
		snap.HasLastRequest = true
	}
	return snap
}

// cloneRows copies rows, keeping nil and empty apart.
func cloneRows[Row any](rows []Row) []Row {
	if rows == nil {
		return nil
	}
	out := make([]Row, len(rows))
	copy(out, rows)
	return out
}

func (s *Store[Req, Row]) reportFailure(err error) {
	if errors.Is(err, context.Canceled) {
		s.set.logger.Debug("search cancelled")
		return
	}
	s.set.logger.Warn("search failed", "error", err)
	msg := MsgSearchFailed
	var um interface{ UserMessage() string }
	if errors.As(err, &um) && um.UserMessage() != "" {
		msg = um.UserMessage()
	}
	s.set.notifier.Notify(notice.LevelError, msg)
}

func (s *Store[Req, Row]) changed() {
	if s.set.onChange != nil {
		s.set.onChange()
	}
}
