package ui

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"go.uber.org/zap"

	"github.com/ssebasarias/Dahell/internal/actions"
	"github.com/ssebasarias/Dahell/internal/config"
	"github.com/ssebasarias/Dahell/internal/dahell"
	"github.com/ssebasarias/Dahell/internal/gateway"
	"github.com/ssebasarias/Dahell/internal/listview"
	"github.com/ssebasarias/Dahell/internal/prefs"
	"github.com/ssebasarias/Dahell/internal/state"
)

// screens is the tab order of the top-level views.
var screens = []state.Screen{
	state.ScreenGoldMine,
	state.ScreenCluster,
	state.ScreenSystem,
	state.ScreenDiagnostics,
}

var screenTitles = map[state.Screen]string{
	state.ScreenGoldMine:    "Gold Mine",
	state.ScreenCluster:     "Cluster Lab",
	state.ScreenSystem:      "System",
	state.ScreenDiagnostics: "Diagnostics",
}

// Options configures the UI.
type Options struct {
	Context   context.Context
	Gateway   *gateway.Gateway
	Store     *state.Store
	Config    config.Config
	Prefs     prefs.Prefs
	PrefsPath string
	Logger    *zap.Logger
	// Refresh runs the pollers of a screen once. Optional.
	Refresh  func(state.Screen)
	PollTick time.Duration
}

// notice is a transient header message.
type notice struct {
	text  string
	level dahell.Level
	at    time.Time
}

// Model is the root application state for Bubble Tea.
type Model struct {
	ctx       context.Context
	gateway   *gateway.Gateway
	store     *state.Store
	config    config.Config
	prefs     prefs.Prefs
	prefsPath string
	logger    *zap.Logger
	refresh   func(state.Screen)
	pollTick  time.Duration
	now       func() time.Time
	keys      keyMap

	theme    Theme
	screen   state.Screen
	width    int
	height   int
	ready    bool
	showHelp bool

	snapshot state.Snapshot
	health   gateway.Health
	notice   notice
	spinner  spinner.Model

	gold    goldMineState
	cluster clusterState
	system  systemState
	diag    diagnosticsState
}

// New creates the root model. Nothing is fetched until Init.
func New(opts Options) Model {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}
	pollTick := opts.PollTick
	if pollTick <= 0 {
		pollTick = DefaultUIInterval
	}
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	prefsPath := opts.PrefsPath
	if prefsPath == "" {
		prefsPath = prefs.DefaultPath()
	}
	store := opts.Store
	if store == nil {
		store = &state.Store{}
	}

	competitors, _ := opts.Prefs.Competitors()
	sp := spinner.New()
	sp.Spinner = spinner.MiniDot

	return Model{
		ctx:       ctx,
		gateway:   opts.Gateway,
		store:     store,
		config:    opts.Config,
		prefs:     opts.Prefs,
		prefsPath: prefsPath,
		logger:    logger,
		refresh:   opts.Refresh,
		pollTick:  pollTick,
		now:       time.Now,
		keys:      DefaultKeyMap(),
		theme:     GetTheme(opts.Prefs.Theme),
		screen:    state.ParseScreen(opts.Prefs.StartScreen),
		spinner:   sp,
		gold: newGoldMineState(listview.Options{
			PageSize:    opts.Config.PageSize,
			Debounce:    opts.Config.FilterDebounce,
			Competitors: competitors,
		}),
		cluster: clusterState{
			actions: actions.New(actions.Options{
				CloseDelay: opts.Config.ActionCloseDelay,
				Logger:     logger,
			}),
		},
		system: systemState{logs: viewport.New(0, 0)},
		diag:   newDiagnosticsState(),
	}
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	m.store.SetScreen(m.screen)
	req := m.gold.list.Reload()
	return tea.Batch(
		tickCmd(m.pollTick),
		m.spinner.Tick,
		fetchSnapshotCmd(m.store),
		categoriesCmd(m.ctx, m.gateway),
		fetchPageCmd(m.ctx, m.gateway, req),
		m.enterScreenCmd(),
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
		m.resizeViewports()
		return m, nil

	case tea.FocusMsg:
		m.store.SetFocused(true)
		return m, m.enterScreenCmd()

	case tea.BlurMsg:
		m.store.SetFocused(false)
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.applySnapshot(state.Snapshot(msg))
		return m, nil

	case spinner.TickMsg:
		var cmd tea.Cmd
		m.spinner, cmd = m.spinner.Update(msg)
		return m, cmd

	case noticeMsg:
		m.setNotice(msg.text, msg.level)
		return m, nil

	case categoriesMsg, debounceMsg, pageMsg, clipboardMsg:
		return m.updateGoldMine(msg)

	case investigationMsg, actionDoneMsg, closeInvestigatorMsg, feedbackDoneMsg, closeFeedbackMsg:
		return m.updateCluster(msg)

	case controlDoneMsg:
		return m.updateSystem(msg)

	case diagnosticsMsg:
		m.applyDiagnostics(msg)
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
	if m.cluster.feedback != nil {
		return m.renderFeedback()
	}
	if m.cluster.investigator != nil {
		return m.renderInvestigator()
	}
	return m.renderMain()
}

// handleKey routes keys: overlays first, then prompts, then global and
// per-screen bindings.
func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if msg.Type == tea.KeyCtrlC {
		return m, tea.Quit
	}
	if m.showHelp {
		m.showHelp = false
		return m, nil
	}
	if m.cluster.feedback != nil {
		return m.handleFeedbackKey(msg)
	}
	if m.cluster.investigator != nil {
		return m.handleInvestigatorKey(msg)
	}
	if m.gold.prompt != promptNone {
		return m.handlePromptKey(msg)
	}

	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit
	case key.Matches(msg, m.keys.Help):
		m.showHelp = true
		return m, nil
	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		m.prefs.Theme = m.theme.Name
		if err := prefs.Save(m.prefsPath, m.prefs); err != nil {
			m.logger.Warn("save prefs failed", zap.Error(err))
		}
		return m, nil
	case key.Matches(msg, m.keys.NextScreen):
		return m.switchScreen(m.offsetScreen(1))
	case key.Matches(msg, m.keys.PrevScreen):
		return m.switchScreen(m.offsetScreen(-1))
	case key.Matches(msg, m.keys.GoldMine):
		return m.switchScreen(state.ScreenGoldMine)
	case key.Matches(msg, m.keys.Cluster):
		return m.switchScreen(state.ScreenCluster)
	case key.Matches(msg, m.keys.System):
		return m.switchScreen(state.ScreenSystem)
	case key.Matches(msg, m.keys.Diagnostic):
		return m.switchScreen(state.ScreenDiagnostics)
	}

	switch m.screen {
	case state.ScreenGoldMine:
		return m.handleGoldMineKey(msg)
	case state.ScreenCluster:
		return m.handleClusterKey(msg)
	case state.ScreenSystem:
		return m.handleSystemKey(msg)
	case state.ScreenDiagnostics:
		return m.handleDiagnosticsKey(msg)
	}
	return m, nil
}

func (m Model) offsetScreen(delta int) state.Screen {
	idx := 0
	for i, s := range screens {
		if s == m.screen {
			idx = i
			break
		}
	}
	n := len(screens)
	return screens[((idx+delta)%n+n)%n]
}

// switchScreen makes screen active. The pollers behind the previous screen
// stop on their next tick; the new screen is refreshed right away.
func (m Model) switchScreen(screen state.Screen) (tea.Model, tea.Cmd) {
	if screen == m.screen {
		return m, nil
	}
	m.screen = screen
	m.store.SetScreen(screen)
	return m, m.enterScreenCmd()
}

func (m Model) enterScreenCmd() tea.Cmd {
	switch m.screen {
	case state.ScreenDiagnostics:
		return tailCmd(m.config.LogFile, m.diag.warnsOnly)
	case state.ScreenCluster, state.ScreenSystem:
		return refreshCmd(m.refresh, m.store, m.screen)
	default:
		return nil
	}
}

// handleTick copies the store snapshot and schedules the next tick.
func (m Model) handleTick() (tea.Model, tea.Cmd) {
	if m.gateway != nil {
		m.health = m.gateway.Health()
	}
	cmds := []tea.Cmd{fetchSnapshotCmd(m.store), tickCmd(m.pollTick)}
	if m.screen == state.ScreenDiagnostics && m.diag.follow {
		cmds = append(cmds, tailCmd(m.config.LogFile, m.diag.warnsOnly))
	}
	return m, tea.Batch(cmds...)
}

func (m *Model) applySnapshot(snap state.Snapshot) {
	if snap.Version == m.snapshot.Version && m.snapshot.Version != 0 {
		return
	}
	m.snapshot = snap
	m.cluster.actions.Sync(snap.Orphans)
	m.clampClusterRows()
	m.updateServiceLogs()
}

func (m *Model) setNotice(text string, level dahell.Level) {
	m.notice = notice{text: text, level: level, at: m.now()}
}

func (m Model) activeNotice() (notice, bool) {
	if m.notice.text == "" || m.now().Sub(m.notice.at) > NoticeTTL {
		return notice{}, false
	}
	return m.notice, true
}

// renderMain renders header, command bar and the active screen.
func (m Model) renderMain() string {
	var b strings.Builder
	b.WriteString(m.renderHeader())
	b.WriteString("\n")
	b.WriteString(m.renderCommandBar())
	b.WriteString("\n")
	b.WriteString(m.renderContent())
	return b.String()
}

func (m Model) renderContent() string {
	switch m.screen {
	case state.ScreenCluster:
		return m.renderCluster()
	case state.ScreenSystem:
		return m.renderSystem()
	case state.ScreenDiagnostics:
		return m.renderDiagnostics()
	default:
		return m.renderGoldMine()
	}
}

// contentHeight is the space left under the header and command bar.
func (m Model) contentHeight() int {
	return max(m.height-2, 3)
}

// Run starts the Bubble Tea program and blocks until it exits.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithReportFocus(), tea.WithContext(contextOr(opts.Context)))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && opts.Context != nil && opts.Context.Err() != nil {
		return nil
	}
	return err
}

func contextOr(ctx context.Context) context.Context {
	if ctx == nil {
		return context.Background()
	}
	return ctx
}
