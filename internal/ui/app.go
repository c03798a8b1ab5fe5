package ui

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/rs/zerolog"

	"github.com/five82/shelver/internal/abs"
	"github.com/five82/shelver/internal/collections"
	"github.com/five82/shelver/internal/lazyload"
	"github.com/five82/shelver/internal/library"
	"github.com/five82/shelver/internal/prefs"
	"github.com/five82/shelver/internal/state"
)

// Options configures the UI. Nil loaders leave their tab out.
type Options struct {
	Context    context.Context
	Fetcher    abs.Fetcher
	Library    *library.Library
	Audiobooks *collections.Audiobooks
	Series     *collections.Series
	Podcasts   *collections.Podcasts
	Store      *state.Store
	ServerURL  string
	PollTick   time.Duration
	Prefs      prefs.Prefs
	PrefsPath  string
	Logger     zerolog.Logger
}

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	fetcher   abs.Fetcher
	library   *library.Library
	store     *state.Store
	serverURL string
	prefs     prefs.Prefs
	prefsPath string
	pollTick  time.Duration
	log       zerolog.Logger

	// UI state
	keys     keyMap
	theme    Theme
	spinner  spinner.Model
	width    int
	height   int
	ready    bool
	showHelp bool
	notice   string

	// Collections
	tabs   []pane
	active int
	drill  pane
	relay  *relay
	stops  []func()

	// Server state
	status state.Snapshot
}

// relay forwards loader notifications into the running program in publish
// order. Loaders may publish from inside Update, where program.Send would
// block, so Send only queues and a pump goroutine delivers.
type relay struct {
	mu        sync.Mutex
	queue     []tea.Msg
	wake      chan struct{}
	drillStop func()
}

func newRelay() *relay {
	return &relay{wake: make(chan struct{}, 1)}
}

// Send queues msg for delivery.
func (r *relay) Send(msg tea.Msg) {
	r.mu.Lock()
	r.queue = append(r.queue, msg)
	r.mu.Unlock()
	select {
	case r.wake <- struct{}{}:
	default:
	}
}

// drain removes and returns every queued message.
func (r *relay) drain() []tea.Msg {
	r.mu.Lock()
	defer r.mu.Unlock()
	out := r.queue
	r.queue = nil
	return out
}

// pump delivers queued messages to send until ctx is done.
func (r *relay) pump(ctx context.Context, send func(tea.Msg)) {
	for {
		for _, msg := range r.drain() {
			send(msg)
		}
		select {
		case <-ctx.Done():
			return
		case <-r.wake:
		}
	}
}

func (r *relay) watchDrill(p pane) {
	stop := p.subscribe(r.Send)
	r.mu.Lock()
	r.drillStop = stop
	r.mu.Unlock()
}

func (r *relay) stopDrill() {
	r.mu.Lock()
	stop := r.drillStop
	r.drillStop = nil
	r.mu.Unlock()
	if stop != nil {
		stop()
	}
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	pollTick := opts.PollTick
	if pollTick == 0 {
		pollTick = time.Second
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	spin := spinner.New(spinner.WithSpinner(spinner.Dot))

	m := Model{
		ctx:       ctx,
		fetcher:   opts.Fetcher,
		library:   opts.Library,
		store:     opts.Store,
		serverURL: opts.ServerURL,
		prefs:     opts.Prefs,
		prefsPath: prefsPath,
		pollTick:  pollTick,
		log:       opts.Logger,
		keys:      newKeyMap(),
		theme:     GetTheme(opts.Prefs.Theme),
		spinner:   spin,
		relay:     newRelay(),
	}

	if opts.Audiobooks != nil {
		m.tabs = append(m.tabs, newAudiobooksPane(opts.Audiobooks))
	}
	if opts.Series != nil {
		m.tabs = append(m.tabs, newSeriesPane(opts.Series))
	}
	if opts.Podcasts != nil {
		m.tabs = append(m.tabs, newPodcastsPane(opts.Podcasts))
	}
	for _, p := range m.tabs {
		m.stops = append(m.stops, p.subscribe(m.relay.Send))
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		tickCmd(m.pollTick),
		m.spinner.Tick,
	}
	if m.store != nil {
		cmds = append(cmds, fetchStatusCmd(m.store))
	}
	for _, p := range m.tabs {
		cmds = append(cmds, initialLoadCmd(m.ctx, p))
	}
	return tea.Batch(cmds...)
}

// Update implements tea.Model.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		return m.handleKey(msg)

	case tea.WindowSizeMsg:
		m.width = msg.Width
		m.height = msg.Height
		m.ready = true
		if p := m.current(); p != nil {
			p.moveTo(p.cursor(), m.listHeight())
		}
		return m, m.loadMoreIfNeeded()

	case snapshotMsg:
		if !m.owns(msg.pane) || !msg.pane.apply(msg.snapshot) {
			return m, nil
		}
		if msg.pane == m.current() {
			return m, m.loadMoreIfNeeded()
		}
		return m, nil

	case tickMsg:
		cmds := []tea.Cmd{tickCmd(m.pollTick)}
		if m.store != nil {
			cmds = append(cmds, fetchStatusCmd(m.store))
		}
		return m, tea.Batch(cmds...)

	case statusMsg:
		m.status = state.Snapshot(msg)
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd
	}

	return m, nil
}

// View implements tea.Model.
func (m Model) View() string {
	if !m.ready {
		return "Loading..."
	}
	if m.showHelp {
		return m.renderHelp()
	}
	return m.renderMain()
}

// handleKey processes keyboard input.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		// Any key closes help
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		m.closeDrill()
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		m.closeDrill()
		return m, m.loadMoreIfNeeded()

	case key.Matches(msg, m.keys.NextTab):
		return m, m.switchTab(m.active + 1)
	case key.Matches(msg, m.keys.PrevTab):
		return m, m.switchTab(m.active - 1 + len(m.tabs))
	case key.Matches(msg, m.keys.Audiobooks):
		return m, m.switchToNamed("Audiobooks")
	case key.Matches(msg, m.keys.Series):
		return m, m.switchToNamed("Series")
	case key.Matches(msg, m.keys.Podcasts):
		return m, m.switchToNamed("Podcasts")
	}

	p := m.current()
	if p == nil {
		return m, nil
	}
	height := m.listHeight()

	switch {
	case key.Matches(msg, m.keys.Open):
		if series, ok := p.selected().(library.Series); ok && m.drill == nil {
			return m, m.openSeries(series)
		}
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		m.notice = ""
		return m, p.refresh(m.ctx)

	case key.Matches(msg, m.keys.CycleSort):
		cmd := p.cycleSort(m.ctx)
		if cmd != nil && p.storePrefs(&m.prefs) {
			m.savePrefs()
		}
		return m, cmd

	case key.Matches(msg, m.keys.ToggleOrder):
		cmd := p.toggleOrder(m.ctx)
		if p.storePrefs(&m.prefs) {
			m.savePrefs()
		}
		return m, cmd

	case key.Matches(msg, m.keys.Down):
		p.move(1, height)
	case key.Matches(msg, m.keys.Up):
		p.move(-1, height)
	case key.Matches(msg, m.keys.Top):
		p.moveTo(0, height)
	case key.Matches(msg, m.keys.Bottom):
		p.moveTo(p.len()-1, height)
	case key.Matches(msg, m.keys.PageDown):
		p.move(height, height)
	case key.Matches(msg, m.keys.PageUp):
		p.move(-height, height)
	case key.Matches(msg, m.keys.HalfPageDown):
		p.move(height/2, height)
	case key.Matches(msg, m.keys.HalfPageUp):
		p.move(-height/2, height)
	default:
		return m, nil
	}

	return m, m.loadMoreIfNeeded()
}

// current returns the pane on screen: the open series, else the active tab.
func (m Model) current() pane {
	if m.drill != nil {
		return m.drill
	}
	if len(m.tabs) == 0 {
		return nil
	}
	return m.tabs[m.active]
}

func (m Model) owns(p pane) bool {
	if p == m.drill {
		return true
	}
	for _, tab := range m.tabs {
		if tab == p {
			return true
		}
	}
	return false
}

func (m *Model) switchTab(index int) tea.Cmd {
	if len(m.tabs) == 0 {
		return nil
	}
	m.closeDrill()
	m.active = index % len(m.tabs)
	return m.loadMoreIfNeeded()
}

func (m *Model) switchToNamed(name string) tea.Cmd {
	for i, p := range m.tabs {
		if p.title() == name {
			return m.switchTab(i)
		}
	}
	return nil
}

func (m *Model) openSeries(series library.Series) tea.Cmd {
	if m.fetcher == nil || m.library == nil {
		return nil
	}
	loader := collections.NewAudiobooksInSeries(m.fetcher, series.ID, lazyload.WithLogger(m.log))
	loader.SetScope(m.library)
	p := newSeriesBooksPane(series, loader)
	m.drill = p
	m.relay.watchDrill(p)
	return initialLoadCmd(m.ctx, p)
}

func (m *Model) closeDrill() {
	if m.drill == nil {
		return
	}
	m.relay.stopDrill()
	m.drill = nil
}

// loadMoreIfNeeded asks for the next page once rows within the threshold of
// the loaded end are on screen.
func (m Model) loadMoreIfNeeded() tea.Cmd {
	p := m.current()
	if p == nil || !m.ready || !p.wantsMore(m.listHeight()) {
		return nil
	}
	ctx := m.ctx
	return func() tea.Msg {
		p.loadMore(ctx)
		return nil
	}
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
		m.notice = "could not save preferences"
		m.log.Warn().Err(err).Str("path", m.prefsPath).Msg("save prefs failed")
	}
}

// listHeight is the number of table rows that fit below the header, tab bar
// and column titles and above the footer.
func (m Model) listHeight() int {
	return max(m.height-4, 1)
}

func (m Model) close() {
	m.relay.stopDrill()
	for _, stop := range m.stops {
		stop()
	}
}

// Messages

type tickMsg time.Time

type statusMsg state.Snapshot

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchStatusCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return statusMsg(store.Snapshot())
	}
}

func initialLoadCmd(ctx context.Context, p pane) tea.Cmd {
	return func() tea.Msg {
		p.initialLoad(ctx)
		return nil
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))

	pumpCtx, stopPump := context.WithCancel(m.ctx)
	go m.relay.pump(pumpCtx, p.Send)
	defer func() {
		stopPump()
		m.close()
	}()

	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
