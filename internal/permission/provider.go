// Package permission decides which ERP program is active and answers
// whether that program's UI actions may be shown.
package permission

import (
	"context"
	"errors"
	"log/slog"
	"net/url"
	"strings"
	"sync"

	"golang.org/x/sync/singleflight"

	"github.com/five82/erpdesk/internal/erpapi"
	"github.com/five82/erpdesk/internal/menu"
)

// MenuSource returns the cached navigation tree. A false result means no
// usable tree is available.
type MenuSource interface {
	Get(ctx context.Context) ([]menu.Item, bool)
}

// Sources carries every input the program resolution can draw on, in
// priority order.
type Sources struct {
	// Override wins over everything else when set.
	Override string
	// TabProgramNo comes from the active tab's metadata.
	TabProgramNo string
	// URL is the current location, path plus optional query.
	URL string
	// RouteParams are the named parameters extracted by the router.
	RouteParams map[string]string
	// Seq orders overlapping Sync calls. A call whose Seq is below one
	// already applied is ignored. Zero opts out.
	Seq uint64
}

// State is a copy of the provider at one point in time.
type State struct {
	ProgramNo   string
	Loading     bool
	Permissions []erpapi.ButtonPermission
}

// Option configures a Provider.
type Option func(*Provider)

// WithResolver replaces menu.DefaultResolver.
func WithResolver(r menu.Resolver) Option {
	return func(p *Provider) {
		p.resolver = r
	}
}

// WithLogger sets the provider logger.
func WithLogger(logger *slog.Logger) Option {
	return func(p *Provider) {
		if logger != nil {
			p.logger = logger
		}
	}
}

// WithOnChange registers a callback that runs after every state change,
// outside the provider lock.
func WithOnChange(fn func(State)) Option {
	return func(p *Provider) {
		p.onChange = fn
	}
}

// Provider holds the button permissions of the resolved program.
type Provider struct {
	fetcher  erpapi.PermissionFetcher
	menus    MenuSource
	resolver menu.Resolver
	logger   *slog.Logger
	onChange func(State)
	group    singleflight.Group

	mu       sync.Mutex
	synced   bool
	program  string
	loading  bool
	perms    []erpapi.ButtonPermission
	byObject map[string]erpapi.ButtonPermission
	gen      uint64
	seq      uint64
	cancel   context.CancelFunc
}

// New returns a provider with no program resolved. menus may be nil, in
// which case only the explicit sources are consulted.
func New(fetcher erpapi.PermissionFetcher, menus MenuSource, opts ...Option) *Provider {
	p := &Provider{
		fetcher:  fetcher,
		menus:    menus,
		resolver: menu.DefaultResolver,
		logger:   slog.Default(),
	}
	for _, opt := range opts {
		opt(p)
	}
	p.logger = p.logger.With("component", "permission")
	return p
}

// Resolve walks the priority chain and returns the active program, or ""
// when nothing identifies one.
func (p *Provider) Resolve(ctx context.Context, src Sources) string {
	if v := strings.TrimSpace(src.Override); v != "" {
		return v
	}
	if v := strings.TrimSpace(src.TabProgramNo); v != "" {
		return v
	}
	path := src.URL
	if u, err := url.Parse(src.URL); err == nil {
		if v := strings.TrimSpace(u.Query().Get("programNo")); v != "" {
			return v
		}
		path = u.Path
	}
	for _, name := range []string{"programNo", "id"} {
		if v := strings.TrimSpace(src.RouteParams[name]); v != "" {
			return v
		}
	}
	if p.menus == nil || path == "" {
		return ""
	}
	tree, ok := p.menus.Get(ctx)
	if !ok {
		return ""
	}
	programNo, _ := p.resolver.ResolveProgramNo(path, tree)
	return programNo
}

// Sync resolves the active program and refetches its permissions when it
// differs from the last resolved one. It reports whether a fetch or clear
// took place.
func (p *Provider) Sync(ctx context.Context, src Sources) bool {
	programNo := strings.TrimSpace(p.Resolve(ctx, src))

	p.mu.Lock()
	if src.Seq != 0 {
		if src.Seq < p.seq {
			p.mu.Unlock()
			p.logger.Debug("dropped out of order sync", "seq", src.Seq, "program_no", programNo)
			return false
		}
		p.seq = src.Seq
	}
	if p.synced && programNo == p.program {
		p.mu.Unlock()
		return false
	}
	p.fetchLocked(ctx, programNo)
	return true
}

// Fetch loads the permissions of programNo. An empty programNo clears the
// list without a backend call. Failures clear the list and are logged; a
// response for a program that has since been replaced is dropped.
func (p *Provider) Fetch(ctx context.Context, programNo string) {
	p.mu.Lock()
	p.fetchLocked(ctx, strings.TrimSpace(programNo))
}

// fetchLocked must be called with p.mu held; it releases it.
func (p *Provider) fetchLocked(ctx context.Context, programNo string) {
	p.gen++
	gen := p.gen
	if p.cancel != nil {
		p.cancel()
		p.cancel = nil
	}
	p.synced = true
	p.program = programNo
	if programNo == "" {
		p.loading = false
		p.setLocked(nil)
		st := p.stateLocked()
		p.mu.Unlock()
		p.notify(st)
		return
	}
	fetchCtx, cancel := context.WithCancel(ctx)
	p.cancel = cancel
	p.loading = true
	st := p.stateLocked()
	p.mu.Unlock()
	p.notify(st)

	perms, err := p.load(fetchCtx, programNo)
	cancel()

	p.mu.Lock()
	if p.gen != gen {
		p.mu.Unlock()
		p.logger.Debug("dropped stale permission response", "program_no", programNo)
		return
	}
	p.cancel = nil
	p.loading = false
	if err != nil {
		if !errors.Is(err, context.Canceled) {
			p.logger.Warn("fetch button permissions failed", "program_no", programNo, "error", err)
		}
		p.setLocked(nil)
	} else {
		p.setLocked(perms)
	}
	st = p.stateLocked()
	p.mu.Unlock()
	p.notify(st)
}

func (p *Provider) load(ctx context.Context, programNo string) ([]erpapi.ButtonPermission, error) {
	// The shared call outlives any single caller; each caller still stops
	// waiting when its own context ends.
	ch := p.group.DoChan(programNo, func() (any, error) {
		return p.fetcher.FetchButtonPermissions(context.WithoutCancel(ctx), programNo)
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		perms, _ := res.Val.([]erpapi.ButtonPermission)
		return perms, nil
	}
}

// HasPermission reports whether the action objectID may be shown. Unknown
// actions and an empty id are allowed.
func (p *Provider) HasPermission(objectID string) bool {
	if objectID == "" {
		return true
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	perm, ok := p.byObject[objectID]
	if !ok {
		return true
	}
	return perm.Visible()
}

// ProgramNo returns the last resolved program.
func (p *Provider) ProgramNo() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.program
}

// Loading reports whether a fetch is in flight.
func (p *Provider) Loading() bool {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.loading
}

// State returns a copy of the provider.
func (p *Provider) State() State {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.stateLocked()
}

func (p *Provider) setLocked(perms []erpapi.ButtonPermission) {
	p.perms = perms
	p.byObject = make(map[string]erpapi.ButtonPermission, len(perms))
	for _, perm := range perms {
		// First record for an object wins.
		if _, dup := p.byObject[perm.ObjectID]; !dup {
			p.byObject[perm.ObjectID] = perm
		}
	}
}

func (p *Provider) stateLocked() State {
	perms := make([]erpapi.ButtonPermission, len(p.perms))
	copy(perms, p.perms)
	return State{ProgramNo: p.program, Loading: p.loading, Permissions: perms}
}

func (p *Provider) notify(st State) {
	if p.onChange != nil {
		p.onChange(st)
	}
}
