package ui

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/erpdesk/internal/menu"
	"github.com/five82/erpdesk/internal/modal"
	"github.com/five82/erpdesk/internal/notice"
	"github.com/five82/erpdesk/internal/permission"
	"github.com/five82/erpdesk/internal/prefs"
	"github.com/five82/erpdesk/internal/screens"
	"github.com/five82/erpdesk/internal/search"
	"github.com/five82/erpdesk/internal/state"
	"github.com/five82/erpdesk/internal/tabs"
)

// Options configures the UI.
type Options struct {
	Context       context.Context
	Store         *state.Store
	Permissions   *permission.Provider
	Searcher      screens.Searcher
	Registry      *screens.Registry
	Resolver      menu.Resolver
	Notices       *notice.Queue
	Prefs         prefs.Prefs
	PrefsPath     string
	TeardownDelay time.Duration
	MaxTabs       int
	Logger        *slog.Logger
}

type focusArea int

const (
	focusMenu focusArea = iota
	focusGrid
	focusSearch
)

// screenTab is the element behind one open tab. A tab whose route has no
// registered screen keeps a nil store and renders a placeholder.
type screenTab struct {
	def    screens.Definition
	known  bool
	store  *search.Store[screens.Query, screens.Row]
	input  textinput.Model
	cursor int
}

// Model is the main Bubble Tea model.
type Model struct {
	ctx      context.Context
	store    *state.Store
	perms    *permission.Provider
	searcher screens.Searcher
	registry *screens.Registry
	resolver menu.Resolver
	notices  *notice.Queue
	logger   *slog.Logger
	permSeq  *atomic.Uint64

	// Session
	tabs     *tabs.Store[*screenTab]
	snapshot state.Snapshot
	menuRows []menuRow
	menuPos  int
	focus    focusArea

	// Dialogs
	teardown   time.Duration
	gate       *modal.Gate
	alert      *modal.Controller[string, struct{}]
	detail     *modal.Controller[screens.Row, string]
	detailView viewport.Model
	confirm    *modal.Controller[screens.Action, screens.Action]

	// UI state
	width    int
	height   int
	ready    bool
	showHelp bool
	keys     keyMap

	// Theme
	theme     Theme
	prefs     prefs.Prefs
	prefsPath string
}

// Message types

type tickMsg time.Time

type snapshotMsg state.Snapshot

type searchDoneMsg struct {
	path string
}

type permissionsMsg struct {
	programNo string
}

// New creates a new UI model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	notices := opts.Notices
	if notices == nil {
		notices = notice.NewQueue(0, 0)
	}
	registry := opts.Registry
	if registry == nil {
		registry = screens.Default()
	}
	teardown := max(opts.TeardownDelay, 0)

	m := Model{
		ctx:       ctx,
		store:     opts.Store,
		perms:     opts.Permissions,
		searcher:  opts.Searcher,
		registry:  registry,
		resolver:  opts.Resolver,
		notices:   notices,
		logger:    logger.With("component", "ui"),
		permSeq:   new(atomic.Uint64),
		tabs:      tabs.NewStore[*screenTab](tabs.WithMaxTabs(opts.MaxTabs), tabs.WithContext(ctx)),
		teardown:  teardown,
		gate:      modal.NewGate(),
		keys:      DefaultKeyMap(),
		theme:     GetTheme(opts.Prefs.Theme),
		prefs:     opts.Prefs,
		prefsPath: opts.PrefsPath,
	}
	if opts.Store != nil {
		m.applySnapshot(opts.Store.Snapshot())
	}

	settings := []modal.Setting{modal.WithTeardownDelay(teardown), modal.WithLogger(logger)}
	m.alert = modal.New[string](modal.Options[struct{}]{
		Title:    "Check input",
		Width:    48,
		Centered: true,
	}, settings...)
	m.detail = modal.New[screens.Row](modal.Options[string]{
		Title:           "Details",
		Width:           64,
		Height:          16,
		DestroyOnHidden: true,
		MaskClosable:    true,
		Centered:        true,
		OnReturn: func(v string) {
			if v != "" {
				notices.Notify(notice.LevelInfo, "Selected "+v)
			}
		},
	}, settings...)
	m.confirm = modal.New[screens.Action](modal.Options[screens.Action]{
		Title:        "Confirm",
		Width:        40,
		MaskClosable: true,
		Centered:     true,
		OnReturn: func(a screens.Action) {
			notices.Notify(notice.LevelInfo, a.Label+" requested")
		},
	}, settings...)
	m.detailView = viewport.New(60, 12)
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tea.EnterAltScreen,
		tickCmd(),
		fetchSnapshotCmd(m.store),
	)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.MouseMsg:
		return m.handleMouse(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		m.detailView.Width = min(m.detail.Options().Width, max(msg.Width-8, 20))
		m.detailView.Height = min(m.detail.Options().Height, max(msg.Height-8, 4))
		return m, nil

	case tickMsg:
		return m, tea.Batch(tickCmd(), fetchSnapshotCmd(m.store))

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case searchDoneMsg:
		if tab, ok := m.tabs.Get(msg.path); ok && tab.Element.store != nil {
			tab.Element.cursor = clamp(tab.Element.cursor, 0, len(tab.Element.store.Rows())-1)
		}
		return m, nil

	case permissionsMsg:
		return m, nil
	}

	return m, nil
}

func (m *Model) applySnapshot(snap state.Snapshot) {
	m.snapshot = snap
	m.menuRows = buildMenuRows(snap.Menus)
	m.menuPos = clamp(m.menuPos, 0, len(m.menuRows)-1)
}

// activeScreen returns the active tab.
func (m Model) activeScreen() (tabs.Tab[*screenTab], bool) {
	tab, ok := m.tabs.Active()
	if !ok || tab.Element == nil {
		return tabs.Tab[*screenTab]{}, false
	}
	return tab, true
}

func (m Model) newScreenTab(def screens.Definition, known bool) *screenTab {
	input := textinput.New()
	input.Prompt = "search> "
	input.Placeholder = "key=value ... keyword"
	input.CharLimit = 200
	st := &screenTab{def: def, known: known, input: input}
	if known && m.searcher != nil {
		st.store = screens.NewStore(def, m.searcher,
			search.WithNotifier(m.notices),
			search.WithLogger(m.logger),
		)
	}
	return st
}

// openMenu opens (or activates) the tab for a menu entry.
func (m Model) openMenu(item menu.Item) (Model, tea.Cmd) {
	if item.Path == "" {
		return m, nil
	}
	route := m.resolver.NormalizeRoute(item.Path)
	def, known := m.registry.Lookup(route)
	title := item.ProgramName
	if title == "" {
		title = def.Title
	}
	// Placeholder screens have no actions to gate.
	meta := tabs.Meta{
		Title:        title,
		ProgramNo:    item.ProgramNo,
		RequiresAuth: known,
		Extra:        map[string]string{"menuPath": item.Path},
	}
	tab, created := m.tabs.Open(route, meta, func(context.Context) *screenTab {
		return m.newScreenTab(def, known)
	})
	m.focus = focusGrid
	m.logger.Debug("tab opened", "route", route, "program_no", item.ProgramNo, "created", created)

	cmds := []tea.Cmd{m.syncPermissionsCmd()}
	if created && known && len(def.Required) == 0 && tab.Element.store != nil {
		cmds = append(cmds, searchCmd(tab, screens.Query{}))
	}
	return m, tea.Batch(cmds...)
}

// Commands

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		if store == nil {
			return snapshotMsg{}
		}
		return snapshotMsg(store.Snapshot())
	}
}

func searchCmd(tab tabs.Tab[*screenTab], q screens.Query) tea.Cmd {
	return func() tea.Msg {
		tab.Element.store.Search(tab.Context(), q)
		return searchDoneMsg{path: tab.Path}
	}
}

func refreshCmd(tab tabs.Tab[*screenTab]) tea.Cmd {
	return func() tea.Msg {
		tab.Element.store.Refresh(tab.Context())
		return searchDoneMsg{path: tab.Path}
	}
}

// syncPermissionsCmd re-resolves the program for the active tab and loads
// its button permissions when it changed. Tabs that do not require auth
// clear the list. The sequence number is taken here, in Update order, so a
// slower command for an earlier tab cannot overwrite a later one.
func (m Model) syncPermissionsCmd() tea.Cmd {
	if m.perms == nil {
		return nil
	}
	src := permission.Sources{Seq: m.permSeq.Add(1)}
	if tab, ok := m.tabs.Active(); ok && tab.Meta.RequiresAuth {
		src.TabProgramNo = tab.Meta.ProgramNo
		src.URL = tab.Path
	}
	perms, ctx := m.perms, m.ctx
	return func() tea.Msg {
		perms.Sync(ctx, src)
		return permissionsMsg{programNo: perms.ProgramNo()}
	}
}

// Run starts the UI.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion(), tea.WithContext(m.ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("run ui: %w", err)
	}
	return nil
}
