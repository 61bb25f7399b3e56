package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/five82/storefront/internal/model"
	"github.com/five82/storefront/internal/prefs"
	"github.com/five82/storefront/internal/state"
)

// View represents the current active view.
type View int

const (
	ViewCatalog View = iota
	ViewCart
	ViewOrders
	ViewAccount
	ViewActivity
)

var viewOrder = []View{ViewCatalog, ViewCart, ViewOrders, ViewAccount, ViewActivity}

func (v View) String() string {
	switch v {
	case ViewCart:
		return "Cart"
	case ViewOrders:
		return "Orders"
	case ViewAccount:
		return "Account"
	case ViewActivity:
		return "Activity"
	default:
		return "Catalog"
	}
}

// Actions is what the UI dispatches to. The coordinator satisfies it.
type Actions interface {
	Snapshot() state.Snapshot
	SignUp(ctx context.Context, name, email, password string) (model.Identity, error)
	SignIn(ctx context.Context, email, password string) (model.Identity, error)
	SignOut(ctx context.Context) error
	UpdateProfile(ctx context.Context, update model.ProfileUpdate) (model.Identity, error)
	AddToCart(ctx context.Context, product model.Product) error
	RemoveFromCart(ctx context.Context, productID int64) error
	Checkout(ctx context.Context) (model.Order, error)
	RefreshOrders(ctx context.Context) error
	PayOrder(ctx context.Context, orderID int64) error
	DeliverOrder(ctx context.Context, orderID int64) error
	BrowseCategories(ctx context.Context) ([]string, error)
	BrowseCategory(ctx context.Context, name string) ([]model.Product, error)
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Actions   Actions
	LogPath   string
	Tick      time.Duration
	ThemeName string
	PrefsPath string
	LastEmail string
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	actions   Actions
	logPath   string
	prefsPath string
	tick      time.Duration
	keys      keyMap

	theme    Theme
	view     View
	width    int
	height   int
	ready    bool
	showHelp bool

	snapshot    state.Snapshot
	lastUpdated time.Time
	pending     int
	flash       string
	flashErr    bool

	catalog  catalogState
	cartRow  int
	orders   ordersState
	account  accountState
	activity activityState
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	tick := opts.Tick
	if tick <= 0 {
		tick = time.Second
	}
	themeName := opts.ThemeName
	if themeName == "" {
		themeName = themeOrder[0]
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	m := Model{
		ctx:       ctx,
		actions:   opts.Actions,
		logPath:   opts.LogPath,
		prefsPath: prefsPath,
		tick:      tick,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(themeName),
		view:      ViewCatalog,
		account:   newAccountState(opts.LastEmail),
		activity:  activityState{viewport: viewport.New(0, 0), follow: true},
	}
	if m.actions != nil {
		m.snapshot = m.actions.Snapshot()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(
		tickCmd(m.tick),
		m.loadCategoriesCmd(),
		textinput.Blink,
	)
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
		m.resizeActivity()
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case categoriesMsg:
		m.catalog.applyCategories(msg)
		if msg.err != nil {
			m.setFlash(msg.err.Error(), true)
			return m, nil
		}
		return m, m.loadProductsCmd()

	case productsMsg:
		m.catalog.applyProducts(msg)
		if msg.err != nil {
			m.setFlash(msg.err.Error(), true)
		}
		return m, nil

	case actionMsg:
		return m.handleAction(msg)

	case activityMsg:
		m.applyActivity(msg)
		return m, nil
	}

	if m.view == ViewAccount && m.account.editing() {
		return m.updateInputs(msg)
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

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}

	// Text inputs get every key except the few that drive the form.
	if m.view == ViewAccount && m.account.editing() {
		return m.handleAccountInputKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.saveTheme()
		return m, nil
	case key.Matches(msg, m.keys.Tab):
		return m.switchView(m.nextView(1))
	case key.Matches(msg, m.keys.ShiftTab):
		return m.switchView(m.nextView(-1))
	case key.Matches(msg, m.keys.ViewCatalog):
		return m.switchView(ViewCatalog)
	case key.Matches(msg, m.keys.ViewCart):
		return m.switchView(ViewCart)
	case key.Matches(msg, m.keys.ViewOrders):
		return m.switchView(ViewOrders)
	case key.Matches(msg, m.keys.ViewAccount):
		return m.switchView(ViewAccount)
	case key.Matches(msg, m.keys.ViewActivity):
		return m.switchView(ViewActivity)
	case key.Matches(msg, m.keys.Escape):
		return m.switchView(ViewCatalog)
	}

	switch m.view {
	case ViewCatalog:
		return m.handleCatalogKey(msg)
	case ViewCart:
		return m.handleCartKey(msg)
	case ViewOrders:
		return m.handleOrdersKey(msg)
	case ViewAccount:
		return m.handleAccountKey(msg)
	case ViewActivity:
		return m.handleActivityKey(msg)
	}
	return m, nil
}

func (m Model) nextView(step int) View {
	for i, v := range viewOrder {
		if v == m.view {
			return viewOrder[(i+step+len(viewOrder))%len(viewOrder)]
		}
	}
	return ViewCatalog
}

func (m Model) switchView(v View) (tea.Model, tea.Cmd) {
	m.view = v
	switch v {
	case ViewActivity:
		return m, m.loadActivityCmd()
	case ViewAccount:
		if !m.snapshot.SignedIn() {
			return m, m.account.focusCurrent()
		}
	}
	return m, nil
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	cmds := []tea.Cmd{tickCmd(m.tick)}
	if m.actions != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.actions))
	}
	if m.view == ViewActivity && m.activity.follow {
		cmds = append(cmds, m.loadActivityCmd())
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) applySnapshot(s state.Snapshot) {
	m.snapshot = s
	m.lastUpdated = time.Now()
	m.cartRow = clampRow(m.cartRow, len(s.Cart.Lines))
	m.orders.row = clampRow(m.orders.row, len(m.visibleOrders()))
	if s.SignedIn() {
		m.account.blurForm()
	} else {
		m.account.editingName = false
		m.account.nameEdit.Blur()
	}
}

// handleAction applies the result of a dispatched action and refreshes the
// snapshot so the views reflect it immediately.
func (m Model) handleAction(msg actionMsg) (tea.Model, tea.Cmd) {
	if m.pending > 0 {
		m.pending--
	}
	if msg.err != nil {
		m.setFlash(msg.label+": "+userMessage(msg.err), true)
	} else if msg.done != "" {
		m.setFlash(msg.done, false)
	}
	if msg.after != nil {
		msg.after(&m)
	}
	if m.actions != nil {
		m.applySnapshot(m.actions.Snapshot())
	}
	return m, nil
}

func (m *Model) setFlash(text string, isErr bool) {
	m.flash = text
	m.flashErr = isErr
}

func (m Model) saveTheme() {
	if m.prefsPath == "" {
		return
	}
	name := m.theme.Name
	_, _ = prefs.Update(m.prefsPath, func(p *prefs.Prefs) { p.Theme = name })
}

// dispatch runs fn off the update loop and reports the result as an
// actionMsg.
func (m *Model) dispatch(label, done string, fn func(ctx context.Context) error, after func(*Model)) tea.Cmd {
	if m.actions == nil {
		return nil
	}
	m.pending++
	ctx := m.ctx
	return func() tea.Msg {
		err := fn(ctx)
		return actionMsg{label: label, done: done, err: err, after: after}
	}
}

func clampRow(row, n int) int {
	if n <= 0 || row < 0 {
		return 0
	}
	if row >= n {
		return n - 1
	}
	return row
}

func moveRow(row, n int, keys keyMap, msg tea.KeyMsg) int {
	switch {
	case key.Matches(msg, keys.Up):
		row--
	case key.Matches(msg, keys.Down):
		row++
	case key.Matches(msg, keys.Top):
		row = 0
	case key.Matches(msg, keys.Bottom):
		row = n - 1
	}
	return clampRow(row, n)
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type actionMsg struct {
	label string
	done  string
	err   error
	// after runs on the update loop once the action finished without
	// regard to its outcome.
	after func(*Model)
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(actions Actions) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(actions.Snapshot())
	}
}

// Run starts the Bubble Tea program.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	return err
}
