package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/mattdonders/njtstatus/internal/lines"
	"github.com/mattdonders/njtstatus/internal/prefs"
	"github.com/mattdonders/njtstatus/internal/state"
	"github.com/mattdonders/njtstatus/internal/syncer"
)

func catalogRecords(t *testing.T) []lines.Record {
	t.Helper()
	reg, err := lines.New(lines.DefaultCatalog)
	if err != nil {
		t.Fatalf("lines.New: %v", err)
	}
	return reg.Records()
}

func newTestModel(t *testing.T, snap syncer.Snapshot, refresh func()) Model {
	t.Helper()
	store := &state.Store{}
	if snap.Lines == nil {
		snap.Lines = catalogRecords(t)
	}
	store.Update(snap)

	m := New(Options{
		Store:     store,
		Refresh:   refresh,
		Clock24h:  true,
		PrefsPath: filepath.Join(t.TempDir(), "prefs.toml"),
	})
	updated, _ := m.Update(tea.WindowSizeMsg{Width: 100, Height: 40})
	return updated.(Model)
}

func press(t *testing.T, m Model, keys ...string) (Model, tea.Cmd) {
	t.Helper()
	var cmd tea.Cmd
	for _, k := range keys {
		var msg tea.KeyMsg
		switch k {
		case "enter":
			msg = tea.KeyMsg{Type: tea.KeyEnter}
		case "down":
			msg = tea.KeyMsg{Type: tea.KeyDown}
		case "up":
			msg = tea.KeyMsg{Type: tea.KeyUp}
		default:
			msg = tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(k)}
		}
		var updated tea.Model
		updated, cmd = m.Update(msg)
		m = updated.(Model)
	}
	return m, cmd
}

func repeat(k string, n int) []string {
	out := make([]string, n)
	for i := range out {
		out[i] = k
	}
	return out
}

func TestSelectRefreshCallsRefreshAndResetsCursor(t *testing.T) {
	calls := 0
	m := newTestModel(t, syncer.Snapshot{State: syncer.StateIdle}, func() { calls++ })

	m, _ = press(t, m, repeat("j", 8)...)
	if opt, ok := m.optionAt(m.cursor); !ok || opt != optionRefresh {
		t.Fatalf("cursor %d is not on Refresh", m.cursor)
	}

	m, _ = press(t, m, "enter")
	if calls != 1 {
		t.Fatalf("refresh calls = %d, want 1", calls)
	}
	if m.cursor != 0 {
		t.Fatalf("cursor = %d, want 0 after refresh", m.cursor)
	}
}

func TestRefreshKey(t *testing.T) {
	calls := 0
	m := newTestModel(t, syncer.Snapshot{State: syncer.StateUpdated}, func() { calls++ })
	m, _ = press(t, m, "j", "j", "r")
	if calls != 1 || m.cursor != 0 {
		t.Fatalf("calls = %d cursor = %d, want 1 and 0", calls, m.cursor)
	}
}

func TestSelectLineRowDoesNothing(t *testing.T) {
	calls := 0
	m := newTestModel(t, syncer.Snapshot{State: syncer.StateUpdated}, func() { calls++ })
	m, cmd := press(t, m, "j", "enter")
	if calls != 0 || cmd != nil || m.cursor != 1 {
		t.Fatalf("selecting a line row: calls=%d cmd=%v cursor=%d", calls, cmd, m.cursor)
	}
}

func TestQuitOption(t *testing.T) {
	m := newTestModel(t, syncer.Snapshot{State: syncer.StateIdle}, nil)
	_, cmd := press(t, m, append(repeat("j", 9), "enter")...)
	if cmd == nil {
		t.Fatalf("expected quit command")
	}
	if _, ok := cmd().(tea.QuitMsg); !ok {
		t.Fatalf("cmd() = %T, want tea.QuitMsg", cmd())
	}
}

func TestCursorStaysInRange(t *testing.T) {
	m := newTestModel(t, syncer.Snapshot{State: syncer.StateIdle}, nil)

	m, _ = press(t, m, "up", "k")
	if m.cursor != 0 {
		t.Fatalf("cursor = %d, want 0", m.cursor)
	}
	m, _ = press(t, m, repeat("down", 20)...)
	if want := m.rowCount() - 1; m.cursor != want {
		t.Fatalf("cursor = %d, want %d", m.cursor, want)
	}
}

func TestCycleThemePersistsChoice(t *testing.T) {
	m := newTestModel(t, syncer.Snapshot{State: syncer.StateIdle}, nil)
	if m.theme.Name != "Nightfox" {
		t.Fatalf("default theme = %q, want Nightfox", m.theme.Name)
	}

	m, _ = press(t, m, "T")
	if m.theme.Name != "Kanagawa" {
		t.Fatalf("theme = %q, want Kanagawa", m.theme.Name)
	}
	if got := prefs.Load(m.prefsPath).Theme; got != "Kanagawa" {
		t.Fatalf("saved theme = %q, want Kanagawa", got)
	}
}

func TestViewShowsLinesAndFailureReason(t *testing.T) {
	records := catalogRecords(t)
	records[1].Status = 12
	records[2].Status = 98

	m := newTestModel(t, syncer.Snapshot{
		State:  syncer.StateFailedApplication,
		Reason: "status endpoint returned status 500",
		Lines:  records,
	}, nil)

	view := m.View()
	for _, want := range []string{
		"Updating Failed!!",
		"NE Corridor",
		"12 Minutes",
		"Canceled!",
		"Getting Status",
		"Refresh",
		"Update the status.",
		"status endpoint returned status 500",
	} {
		if !strings.Contains(view, want) {
			t.Fatalf("view missing %q:\n%s", want, view)
		}
	}
}

func TestViewBeforeWindowSize(t *testing.T) {
	m := New(Options{})
	if got := m.View(); got != "Loading..." {
		t.Fatalf("View() = %q, want Loading...", got)
	}
}

func TestSnapshotMessageReplacesData(t *testing.T) {
	m := newTestModel(t, syncer.Snapshot{State: syncer.StateIdle}, nil)
	updated, _ := m.Update(snapshotMsg(state.Snapshot{Snapshot: syncer.Snapshot{State: syncer.StateUpdating}}))
	m = updated.(Model)
	if m.snapshot.State != syncer.StateUpdating {
		t.Fatalf("state = %v, want updating", m.snapshot.State)
	}
	if m.lineCount() != 0 {
		t.Fatalf("lineCount = %d, want 0", m.lineCount())
	}
}

func TestLogOverlayShowsTail(t *testing.T) {
	logPath := filepath.Join(t.TempDir(), "njtstatus.log")
	content := "time=2026-01-02T15:04:05Z level=INFO msg=\"njtstatus started\"\n" +
		"time=2026-01-02T15:04:06Z level=WARN msg=\"update failed\"\n"
	if err := os.WriteFile(logPath, []byte(content), 0o644); err != nil {
		t.Fatalf("write log: %v", err)
	}

	m := newTestModel(t, syncer.Snapshot{State: syncer.StateIdle}, nil)
	m.logPath = logPath

	m, cmd := press(t, m, "l")
	if !m.showLogs || cmd == nil {
		t.Fatalf("log overlay not opened")
	}
	updated, _ := m.Update(cmd())
	m = updated.(Model)

	view := m.View()
	if !strings.Contains(view, "update failed") {
		t.Fatalf("log view missing tail:\n%s", view)
	}

	m, _ = press(t, m, "l")
	if m.showLogs {
		t.Fatalf("log overlay still open")
	}
}

func TestLinesHeader(t *testing.T) {
	at := time.Date(2026, 3, 9, 15, 4, 0, 0, time.UTC)
	tests := []struct {
		name     string
		state    syncer.State
		clock24h bool
		want     string
	}{
		{"idle", syncer.StateIdle, true, "Not updated yet"},
		{"updating", syncer.StateUpdating, true, "Updating..."},
		{"updated 24h", syncer.StateUpdated, true, "Updated: 15:04"},
		{"updated 12h", syncer.StateUpdated, false, "Updated: 3:04 PM"},
		{"transport", syncer.StateFailedTransport, true, "Updating Failed"},
		{"application", syncer.StateFailedApplication, true, "Updating Failed!!"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			snap := state.Snapshot{Snapshot: syncer.Snapshot{State: tt.state, UpdatedAt: at}}
			if got := linesHeader(snap, tt.clock24h); got != tt.want {
				t.Fatalf("linesHeader = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestConditionGlyph(t *testing.T) {
	cases := map[lines.Condition]string{
		lines.ConditionOK:       "✓",
		lines.ConditionDelayed:  "!",
		lines.ConditionCanceled: "✗",
		lines.ConditionUnknown:  "?",
	}
	for cond, want := range cases {
		if got := conditionGlyph(cond); got != want {
			t.Fatalf("conditionGlyph(%v) = %q, want %q", cond, got, want)
		}
	}
}

func TestNameColumnWidth(t *testing.T) {
	records := []lines.Record{{Name: "NE Corridor"}, {Name: "Main/Bergen/Port Jervis"}}
	if got := nameColumnWidth(records); got != len("Main/Bergen/Port Jervis") {
		t.Fatalf("nameColumnWidth = %d", got)
	}
}
