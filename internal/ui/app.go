package ui

import (
	"context"
	"errors"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/spinner"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattdonders/njtstatus/internal/logtail"
	"github.com/mattdonders/njtstatus/internal/prefs"
	"github.com/mattdonders/njtstatus/internal/state"
)

const logOverlayLines = 200

// Options configures the UI.
type Options struct {
	Context   context.Context
	Store     *state.Store
	Refresh   func() // queues a status refresh
	Clock24h  bool
	ThemeName string
	PrefsPath string
	LogPath   string
	PollTick  time.Duration // how often the store is re-read; defaults to 1s
}

// Option rows shown below the lines.
const (
	optionRefresh = iota
	optionQuit
	optionCount
)

// Model is the root application state for Bubble Tea.
type Model struct {
	// Configuration
	ctx       context.Context
	store     *state.Store
	refresh   func()
	clock24h  bool
	prefsPath string
	logPath   string
	pollTick  time.Duration

	// UI state
	theme   Theme
	keys    keyMap
	help    help.Model
	spinner spinner.Model
	width   int
	height  int
	ready   bool
	cursor  int

	// Data state
	snapshot state.Snapshot

	// Log overlay
	showLogs bool
	logLines []string
	logErr   error
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

	refresh := opts.Refresh
	if refresh == nil {
		refresh = func() {}
	}

	s := spinner.New()
	s.Spinner = spinner.Dot

	m := Model{
		ctx:       ctx,
		store:     opts.Store,
		refresh:   refresh,
		clock24h:  opts.Clock24h,
		prefsPath: prefsPath,
		logPath:   opts.LogPath,
		pollTick:  pollTick,
		theme:     GetTheme(opts.ThemeName),
		keys:      DefaultKeyMap(),
		help:      help.New(),
		spinner:   s,
	}
	if m.store != nil {
		m.snapshot = m.store.Snapshot()
	}
	return m
}

// Init implements tea.Model.
func (m Model) Init() tea.Cmd {
	cmds := []tea.Cmd{
		m.spinner.Tick,
		tickCmd(m.pollTick),
	}
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
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
		m.help.Width = msg.Width
		m.ready = true
		return m, nil

	case tickMsg:
		return m.handleTick()

	case snapshotMsg:
		m.snapshot = state.Snapshot(msg)
		return m, nil

	case logsMsg:
		m.logLines = msg.lines
		m.logErr = msg.err
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
	if m.showLogs {
		return m.renderLogs()
	}
	return m.renderMain()
}

func (m Model) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Quit):
		return m, tea.Quit

	case key.Matches(msg, m.keys.Help):
		m.help.ShowAll = !m.help.ShowAll
		return m, nil

	case key.Matches(msg, m.keys.ToggleLogs):
		m.showLogs = !m.showLogs
		if m.showLogs {
			return m, loadLogsCmd(m.logPath)
		}
		return m, nil

	case key.Matches(msg, m.keys.CycleTheme):
		m.theme = GetTheme(NextTheme(m.theme.Name))
		_ = prefs.Save(m.prefsPath, prefs.Prefs{Theme: m.theme.Name})
		return m, nil

	case key.Matches(msg, m.keys.Refresh):
		return m.requestRefresh()
	}

	if m.showLogs {
		return m, nil
	}

	switch {
	case key.Matches(msg, m.keys.Up):
		if m.cursor > 0 {
			m.cursor--
		}
	case key.Matches(msg, m.keys.Down):
		if m.cursor < m.rowCount()-1 {
			m.cursor++
		}
	case key.Matches(msg, m.keys.Select):
		return m.selectRow()
	}
	return m, nil
}

// selectRow acts on the row under the cursor. Line rows are informational.
func (m Model) selectRow() (tea.Model, tea.Cmd) {
	option, ok := m.optionAt(m.cursor)
	if !ok {
		return m, nil
	}
	switch option {
	case optionRefresh:
		return m.requestRefresh()
	case optionQuit:
		return m, tea.Quit
	}
	return m, nil
}

// requestRefresh queues a refresh and jumps back to the first line so the
// results are in view.
func (m Model) requestRefresh() (tea.Model, tea.Cmd) {
	m.refresh()
	m.cursor = 0
	if m.store != nil {
		return m, fetchSnapshotCmd(m.store)
	}
	return m, nil
}

func (m Model) handleTick() (tea.Model, tea.Cmd) {
	var cmds []tea.Cmd
	if m.store != nil {
		cmds = append(cmds, fetchSnapshotCmd(m.store))
	}
	if m.showLogs {
		cmds = append(cmds, loadLogsCmd(m.logPath))
	}
	cmds = append(cmds, tickCmd(m.pollTick))
	return m, tea.Batch(cmds...)
}

func (m Model) lineCount() int {
	return len(m.snapshot.Lines)
}

func (m Model) rowCount() int {
	return m.lineCount() + optionCount
}

// optionAt maps a cursor position to an option row.
func (m Model) optionAt(row int) (int, bool) {
	idx := row - m.lineCount()
	if idx < 0 || idx >= optionCount {
		return 0, false
	}
	return idx, true
}

// Messages

type tickMsg time.Time

type snapshotMsg state.Snapshot

type logsMsg struct {
	lines []string
	err   error
}

// Commands

func tickCmd(d time.Duration) tea.Cmd {
	return tea.Tick(d, func(t time.Time) tea.Msg {
		return tickMsg(t)
	})
}

func fetchSnapshotCmd(store *state.Store) tea.Cmd {
	return func() tea.Msg {
		return snapshotMsg(store.Snapshot())
	}
}

func loadLogsCmd(path string) tea.Cmd {
	return func() tea.Msg {
		if path == "" {
			return logsMsg{}
		}
		lines, err := logtail.Read(path, logOverlayLines)
		return logsMsg{lines: lines, err: err}
	}
}

// Run starts the Bubble Tea program and blocks until the user quits or the
// context is cancelled.
func Run(opts Options) error {
	m := New(opts)
	p := tea.NewProgram(m, tea.WithAltScreen(), tea.WithContext(m.ctx))
	_, err := p.Run()
	if errors.Is(err, tea.ErrProgramKilled) && m.ctx.Err() != nil {
		return nil
	}
	return err
}
