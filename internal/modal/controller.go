// Package modal hosts a page as a dialog and hands a typed result back to
// whoever opened it.
//
// Each invocation moves through a small state machine:
//
//	Idle ──Open──> Pending ──Return──> Returned
//	                  │
//	                  └──Close/HandleClose──> Closed
//
// Returned and Closed may be reopened, which starts a new invocation. A second
// terminal call on a settled invocation is refused with ErrAlreadySettled, so
// OnReturn and OnClose run at most once per invocation.
//
// Teardown happens in two phases: Open flips to false immediately so the host
// can animate the dialog away, and the page props and return value are
// cleared once the teardown delay has elapsed.
package modal

import (
	"errors"
	"fmt"
	"log/slog"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Phase is the lifecycle position of the current invocation.
type Phase int

const (
	PhaseIdle Phase = iota
	PhasePending
	PhaseReturned
	PhaseClosed
)

func (p Phase) String() string {
	switch p {
	case PhasePending:
		return "pending"
	case PhaseReturned:
		return "returned"
	case PhaseClosed:
		return "closed"
	default:
		return "idle"
	}
}

// Settled reports whether the invocation has ended.
func (p Phase) Settled() bool {
	return p == PhaseReturned || p == PhaseClosed
}

var (
	// ErrAlreadyOpen is returned by Open while an invocation is pending.
	ErrAlreadyOpen = errors.New("modal: already open")
	// ErrAlreadySettled is returned by a terminal call after the invocation ended.
	ErrAlreadySettled = errors.New("modal: already settled")
	// ErrNotOpen is returned by a terminal call before anything was opened.
	ErrNotOpen = errors.New("modal: not open")
)

var transitions = map[Phase][]Phase{
	PhaseIdle:     {PhasePending},
	PhasePending:  {PhaseReturned, PhaseClosed},
	PhaseReturned: {PhasePending},
	PhaseClosed:   {PhasePending},
}

// DefaultTeardownDelay leaves room for a close transition before the page
// content is dropped.
const DefaultTeardownDelay = 300 * time.Millisecond

// Options describe the dialog and the opener's callbacks.
type Options[R any] struct {
	Title           string
	Width           int
	Height          int
	DestroyOnHidden bool
	MaskClosable    bool
	Centered        bool

	OnReturn func(R)
	OnClose  func()
}

// State is a copy of the controller at one point in time.
type State[P, R any] struct {
	ID       string
	Phase    Phase
	Open     bool
	Props    P
	HasProps bool
	Value    R
	HasValue bool
}

// Setting tunes timer and logging behaviour.
type Setting func(*settings)

type settings struct {
	delay     time.Duration
	afterFunc func(time.Duration, func())
	logger    *slog.Logger
}

// WithTeardownDelay overrides DefaultTeardownDelay. Zero clears immediately.
func WithTeardownDelay(d time.Duration) Setting {
	return func(s *settings) {
		if d >= 0 {
			s.delay = d
		}
	}
}

// WithAfterFunc replaces the timer used for delayed teardown.
func WithAfterFunc(fn func(time.Duration, func())) Setting {
	return func(s *settings) {
		if fn != nil {
			s.afterFunc = fn
		}
	}
}

// WithLogger sets the logger that records refused terminal calls.
func WithLogger(logger *slog.Logger) Setting {
	return func(s *settings) {
		if logger != nil {
			s.logger = logger
		}
	}
}

func defaultAfterFunc(d time.Duration, f func()) {
	if d <= 0 {
		f()
		return
	}
	time.AfterFunc(d, f)
}

// Controller opens a page of props P that resolves to a result R.
type Controller[P, R any] struct {
	opts Options[R]
	set  settings

	mu       sync.Mutex
	id       string
	phase    Phase
	open     bool
	props    P
	hasProps bool
	value    R
	hasValue bool
}

// New returns an idle controller.
func New[P, R any](opts Options[R], setters ...Setting) *Controller[P, R] {
	s := settings{
		delay:     DefaultTeardownDelay,
		afterFunc: defaultAfterFunc,
		logger:    slog.Default(),
	}
	for _, fn := range setters {
		fn(&s)
	}
	s.logger = s.logger.With("component", "modal")
	return &Controller[P, R]{opts: opts, set: s}
}

// Options returns the dialog options.
func (c *Controller[P, R]) Options() Options[R] {
	return c.opts
}

// Open stores props as the page input and shows the dialog.
func (c *Controller[P, R]) Open(props P) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if err := c.transitLocked(PhasePending); err != nil {
		if c.phase == PhasePending {
			return ErrAlreadyOpen
		}
		return err
	}
	var zero R
	c.id = uuid.NewString()
	c.open = true
	c.props = props
	c.hasProps = true
	c.value = zero
	c.hasValue = false
	return nil
}

// Return records value, runs OnReturn and closes the dialog.
func (c *Controller[P, R]) Return(value R) error {
	c.mu.Lock()
	if err := c.settleLocked(PhaseReturned, "return"); err != nil {
		c.mu.Unlock()
		return err
	}
	c.value = value
	c.hasValue = true
	id := c.id
	onReturn := c.opts.OnReturn
	c.mu.Unlock()

	if onReturn != nil {
		onReturn(value)
	}
	c.scheduleTeardown(id)
	return nil
}

// Close hides the dialog without notifying the opener.
func (c *Controller[P, R]) Close() error {
	c.mu.Lock()
	if err := c.settleLocked(PhaseClosed, "close"); err != nil {
		c.mu.Unlock()
		return err
	}
	id := c.id
	c.mu.Unlock()

	c.scheduleTeardown(id)
	return nil
}

// HandleClose is the user cancelling the dialog: OnClose runs, then the
// dialog closes.
func (c *Controller[P, R]) HandleClose() error {
	c.mu.Lock()
	if err := c.settleLocked(PhaseClosed, "cancel"); err != nil {
		c.mu.Unlock()
		return err
	}
	id := c.id
	onClose := c.opts.OnClose
	c.mu.Unlock()

	if onClose != nil {
		onClose()
	}
	c.scheduleTeardown(id)
	return nil
}

// HandleMaskClick cancels the dialog only when MaskClosable is set.
func (c *Controller[P, R]) HandleMaskClick() (bool, error) {
	if !c.opts.MaskClosable {
		return false, nil
	}
	if err := c.HandleClose(); err != nil {
		return false, err
	}
	return true, nil
}

// State returns a copy of the controller.
func (c *Controller[P, R]) State() State[P, R] {
	c.mu.Lock()
	defer c.mu.Unlock()
	return State[P, R]{
		ID:       c.id,
		Phase:    c.phase,
		Open:     c.open,
		Props:    c.props,
		HasProps: c.hasProps,
		Value:    c.value,
		HasValue: c.hasValue,
	}
}

// IsOpen reports whether the dialog is showing.
func (c *Controller[P, R]) IsOpen() bool {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.open
}

func (c *Controller[P, R]) settleLocked(to Phase, action string) error {
	switch {
	case c.phase == PhaseIdle:
		c.set.logger.Warn("terminal call on unopened modal", "action", action)
		return ErrNotOpen
	case c.phase.Settled():
		c.set.logger.Warn("second terminal call on modal", "action", action, "id", c.id, "phase", c.phase.String())
		return ErrAlreadySettled
	}
	if err := c.transitLocked(to); err != nil {
		return err
	}
	c.open = false
	return nil
}

func (c *Controller[P, R]) transitLocked(to Phase) error {
	if !slices.Contains(transitions[c.phase], to) {
		return fmt.Errorf("modal: invalid transition %s -> %s", c.phase, to)
	}
	c.phase = to
	return nil
}

func (c *Controller[P, R]) scheduleTeardown(id string) {
	c.set.afterFunc(c.set.delay, func() {
		c.mu.Lock()
		defer c.mu.Unlock()
		// A reopen in the meantime owns the fields now.
		if c.id != id || c.phase == PhasePending {
			return
		}
		var (
			zeroP P
			zeroR R
		)
		c.props = zeroP
		c.hasProps = false
		c.value = zeroR
		c.hasValue = false
	})
}
