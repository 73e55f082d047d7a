package ui

import (
	"context"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/kestrelgs/kestrel/internal/config"
	"github.com/kestrelgs/kestrel/internal/gds"
	"github.com/kestrelgs/kestrel/internal/history"
	"github.com/kestrelgs/kestrel/internal/prefs"
	"github.com/kestrelgs/kestrel/internal/validate"
	"github.com/kestrelgs/kestrel/internal/window"
)

// View represents the current active view.
type View int

const (
	ViewChannels View = iota
	ViewEvents
	ViewCommands
	ViewTransfers
	ViewLogs
	ViewStats
	ViewErrors
)

var viewOrder = []View{
	ViewChannels, ViewEvents, ViewCommands, ViewTransfers, ViewLogs, ViewStats, ViewErrors,
}

func (v View) title() string {
	switch v {
	case ViewChannels:
		return "Channels"
	case ViewEvents:
		return "Events"
	case ViewCommands:
		return "Commands"
	case ViewTransfers:
		return "Transfers"
	case ViewLogs:
		return "Logs"
	case ViewStats:
		return "Stats"
	case ViewErrors:
		return "Errors"
	default:
		return ""
	}
}

// Data bundles the canonical stores the UI renders from. The polling pipeline
// owns the writes; the UI only reads.
type Data struct {
	Channels  *history.Store[gds.ChannelSample]
	Events    *history.Store[gds.EventRecord]
	Commands  *history.Store[gds.CommandRecord]
	Logs      *history.Store[string]
	Uploads   *history.Store[gds.TransferFile]
	Downloads *history.Store[gds.TransferFile]
	Stats     *history.Store[gds.StatRow]
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Client    gds.Fetcher
	Data      *Data
	Validator *validate.Validator
	Severity  *validate.Tally
	Config    *config.Config
	ThemeName string
	PrefsPath string

	// Notify, when set, receives the program's Send function before the
	// event loop starts, so store consumers can wake the UI on fresh data.
	Notify func(send func(tea.Msg))
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	client    gds.Fetcher
	data      *Data
	validator *validate.Validator
	severity  *validate.Tally
	config    *config.Config
	prefsPath string

	theme Theme
	keys  keyMap

	currentView View
	width       int
	height      int
	ready       bool
	showHelp    bool

	// Events viewport: a bounded window over the events store.
	events *window.Window[gds.EventRecord]

	// Scroll offsets for the flat list views.
	listScroll map[View]int

	// Log viewer state
	logSelected int
	logName     string
	logViewport viewport.Model
	viewingLog  bool

	lastData time.Time
}

// New creates a new Bubble Tea model.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	themeName := opts.ThemeName
	if themeName == "" {
		themeName = "Dracula"
	}

	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}

	rows, step := 40, 10
	if opts.Config != nil {
		if opts.Config.Viewport.Rows > 0 {
			rows = opts.Config.Viewport.Rows
		}
		if opts.Config.Viewport.Step > 0 {
			step = opts.Config.Viewport.Step
		}
	}

	return Model{
		ctx:       ctx,
		client:    opts.Client,
		data:      opts.Data,
		validator: opts.Validator,
		severity:  opts.Severity,
		config:    opts.Config,
		prefsPath: prefsPath,
		theme:     GetTheme(themeName),
		keys:      DefaultKeyMap(),
		events: window.New(rows, step, func(e gds.EventRecord) string {
			return eventIdentity(e)
		}),
		listScroll:  make(map[View]int),
		currentView: ViewChannels,
	}
}

// eventIdentity gives an event a stable identity for anchor preservation
// while the backing history grows and evicts.
func eventIdentity(e gds.EventRecord) string {
	return e.Time.String() + "/" + e.Name
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	return tea.Batch(tea.EnterAltScreen, tickCmd())
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
		if !m.ready {
			m.logViewport = viewport.New(msg.Width, m.contentHeight())
			m.ready = true
		} else {
			m.logViewport.Width = msg.Width
			m.logViewport.Height = m.contentHeight()
		}
		m.events.Resize(m.eventRows())
		return m, nil

	case tickMsg:
		// Periodic redraw keeps relative timestamps and activity dots
		// honest even when no data arrives.
		return m, tickCmd()

	case RefreshMsg:
		if msg.Category == "events" && m.data != nil && m.data.Events != nil {
			m.events.Update(m.data.Events.Items())
		}
		m.lastData = time.Now()
		return m, nil

	case logBodyMsg:
		m.logName = msg.name
		m.viewingLog = true
		m.logViewport.SetContent(msg.body)
		m.logViewport.GotoTop()
		return m, nil

	case logErrorMsg:
		if m.validator != nil {
			m.validator.Log().Append("logs", msg.err.Error())
		}
		return m, nil
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
		m.showHelp = false
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.savePrefs()
		return m, nil

	case key.Matches(msg, m.keys.Tab):
		m.switchView(m.nextView(1))
		return m, nil

	case key.Matches(msg, m.keys.ShiftTab):
		m.switchView(m.nextView(-1))
		return m, nil

	case key.Matches(msg, m.keys.Escape):
		if m.viewingLog {
			m.viewingLog = false
			return m, nil
		}
		m.switchView(ViewChannels)
		return m, nil

	case key.Matches(msg, m.keys.ViewChannels):
		m.switchView(ViewChannels)
		return m, nil
	case key.Matches(msg, m.keys.ViewEvents):
		m.switchView(ViewEvents)
		return m, nil
	case key.Matches(msg, m.keys.ViewCommands):
		m.switchView(ViewCommands)
		return m, nil
	case key.Matches(msg, m.keys.ViewTransfers):
		m.switchView(ViewTransfers)
		return m, nil
	case key.Matches(msg, m.keys.ViewLogs):
		m.switchView(ViewLogs)
		return m, nil
	case key.Matches(msg, m.keys.ViewStats):
		m.switchView(ViewStats)
		return m, nil
	case key.Matches(msg, m.keys.ViewErrors):
		m.switchView(ViewErrors)
		return m, nil
	}

	switch m.currentView {
	case ViewEvents:
		return m.handleEventsKey(msg)
	case ViewLogs:
		return m.handleLogsKey(msg)
	default:
		return m.handleListKey(msg)
	}
}

// handleEventsKey drives the bounded events window.
func (m Model) handleEventsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	step := 10
	if m.config != nil && m.config.Viewport.Step > 0 {
		step = m.config.Viewport.Step
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.events.Move(-1)
	case key.Matches(msg, m.keys.Down):
		m.events.Move(1)
	case key.Matches(msg, m.keys.PageUp):
		m.events.Move(-step)
	case key.Matches(msg, m.keys.PageDown):
		m.events.Move(step)
	case key.Matches(msg, m.keys.Top):
		m.events.First()
	case key.Matches(msg, m.keys.Bottom), key.Matches(msg, m.keys.Follow):
		m.events.Last()
	case key.Matches(msg, m.keys.ToggleLock):
		m.events.ToggleLock()
	}
	return m, nil
}

// handleLogsKey drives the log list and the lazy log body viewer.
func (m Model) handleLogsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if m.viewingLog {
		if key.Matches(msg, m.keys.Back) {
			m.viewingLog = false
			return m, nil
		}
		var cmd tea.Cmd
		m.logViewport, cmd = m.logViewport.Update(msg)
		return m, cmd
	}

	names := m.logNames()
	switch {
	case key.Matches(msg, m.keys.Up):
		if m.logSelected > 0 {
			m.logSelected--
		}
	case key.Matches(msg, m.keys.Down):
		if m.logSelected < len(names)-1 {
			m.logSelected++
		}
	case key.Matches(msg, m.keys.Top):
		m.logSelected = 0
	case key.Matches(msg, m.keys.Bottom):
		if len(names) > 0 {
			m.logSelected = len(names) - 1
		}
	case key.Matches(msg, m.keys.Open):
		if m.logSelected < len(names) {
			return m, fetchLogCmd(m.ctx, m.client, names[m.logSelected])
		}
	}
	return m, nil
}

// handleListKey scrolls the flat list views.
func (m Model) handleListKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	page := m.contentHeight()
	if page < 1 {
		page = 1
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		m.scrollList(-1)
	case key.Matches(msg, m.keys.Down):
		m.scrollList(1)
	case key.Matches(msg, m.keys.PageUp):
		m.scrollList(-page)
	case key.Matches(msg, m.keys.PageDown):
		m.scrollList(page)
	case key.Matches(msg, m.keys.Top):
		m.listScroll[m.currentView] = 0
	case key.Matches(msg, m.keys.Bottom):
		m.listScroll[m.currentView] = 1 << 30 // clamped at render time
	}
	return m, nil
}

// handleMouse routes wheel events. On the events view the window decides,
// from event timing, whether the scroll came from the user.
func (m Model) handleMouse(msg tea.MouseMsg) (tea.Model, tea.Cmd) {
	if msg.Action != tea.MouseActionPress {
		return m, nil
	}
	switch m.currentView {
	case ViewEvents:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.events.OnScroll(window.EdgeTop, time.Now())
		case tea.MouseButtonWheelDown:
			m.events.OnScroll(window.EdgeBottom, time.Now())
		}
	case ViewLogs:
		if m.viewingLog {
			var cmd tea.Cmd
			m.logViewport, cmd = m.logViewport.Update(msg)
			return m, cmd
		}
	default:
		switch msg.Button {
		case tea.MouseButtonWheelUp:
			m.scrollList(-3)
		case tea.MouseButtonWheelDown:
			m.scrollList(3)
		}
	}
	return m, nil
}

func (m *Model) scrollList(delta int) {
	next := m.listScroll[m.currentView] + delta
	if next < 0 {
		next = 0
	}
	m.listScroll[m.currentView] = next
}

func (m *Model) switchView(v View) {
	m.currentView = v
	if v == ViewEvents && m.data != nil && m.data.Events != nil {
		m.events.Update(m.data.Events.Items())
	}
}

func (m Model) nextView(dir int) View {
	for i, v := range viewOrder {
		if v == m.currentView {
			return viewOrder[(i+dir+len(viewOrder))%len(viewOrder)]
		}
	}
	return viewOrder[0]
}

func (m Model) logNames() []string {
	if m.data == nil || m.data.Logs == nil {
		return nil
	}
	return m.data.Logs.Items()
}

func (m *Model) savePrefs() {
	if m.prefsPath == "" {
		return
	}
	_ = prefs.Save(m.prefsPath, prefs.Prefs{
		Theme:   m.theme.Name,
		LastTab: m.currentView.title(),
	})
}

// contentHeight is the rows left for the active view below the two header
// lines and above the command bar.
func (m Model) contentHeight() int {
	h := m.height - 3
	if h < 1 {
		h = 1
	}
	return h
}

func (m Model) eventRows() int {
	rows := m.contentHeight() - 1 // window status line
	if rows < 1 {
		rows = 1
	}
	if m.config != nil && m.config.Viewport.Rows > 0 && m.config.Viewport.Rows < rows {
		rows = m.config.Viewport.Rows
	}
	return rows
}

// Messages

type tickMsg time.Time

// RefreshMsg wakes the UI when a store has accepted new data. The app layer
// sends one from each store's consumer.
type RefreshMsg struct {
	Category string
}

type logBodyMsg struct {
	name string
	body string
}

type logErrorMsg struct {
	err error
}

// Commands

func tickCmd() tea.Cmd {
	return tea.Tick(time.Second, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchLogCmd(ctx context.Context, client gds.Fetcher, name string) tea.Cmd {
	return func() tea.Msg {
		if client == nil {
			return nil
		}
		body, err := client.FetchLogFile(ctx, name)
		if err != nil {
			return logErrorMsg{err: err}
		}
		return logBodyMsg{name: name, body: body}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithMouseCellMotion())

	if opts.Notify != nil {
		opts.Notify(p.Send)
	}
	if opts.Context != nil {
		go func() {
			<-opts.Context.Done()
			p.Quit()
		}()
	}

	_, err := p.Run()
	return err
}
