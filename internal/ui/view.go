package ui

import (
	"fmt"
	"strings"

	"github.com/mattn/go-runewidth"

	"github.com/mattdonders/njtstatus/internal/lines"
	"github.com/mattdonders/njtstatus/internal/logtail"
	"github.com/mattdonders/njtstatus/internal/state"
	"github.com/mattdonders/njtstatus/internal/syncer"
)

var optionRows = [optionCount]struct {
	title    string
	subtitle string
}{
	optionRefresh: {"Refresh", "Update the status."},
	optionQuit:    {"Quit", ""},
}

// linesHeader is the title of the Lines section for the current sync state.
func linesHeader(snap state.Snapshot, clock24h bool) string {
	switch snap.State {
	case syncer.StateUpdating:
		return "Updating..."
	case syncer.StateUpdated:
		layout := "3:04 PM"
		if clock24h {
			layout = "15:04"
		}
		return "Updated: " + snap.UpdatedAt.Format(layout)
	case syncer.StateFailedTransport:
		return "Updating Failed"
	case syncer.StateFailedApplication:
		return "Updating Failed!!"
	default:
		return "Not updated yet"
	}
}

func conditionGlyph(c lines.Condition) string {
	switch c {
	case lines.ConditionOK:
		return "✓"
	case lines.ConditionDelayed:
		return "!"
	case lines.ConditionCanceled:
		return "✗"
	default:
		return "?"
	}
}

// nameColumnWidth is the display width of the widest line name.
func nameColumnWidth(records []lines.Record) int {
	width := 0
	for _, rec := range records {
		width = max(width, runewidth.StringWidth(rec.Name))
	}
	return width
}

func (m Model) renderMain() string {
	styles := m.theme.Styles()
	var b strings.Builder

	header := linesHeader(m.snapshot, m.clock24h)
	if m.snapshot.State == syncer.StateUpdating {
		header = m.spinner.View() + " " + header
	}
	b.WriteString(styles.Section.Render("Lines · " + header))
	b.WriteString("\n")

	nameWidth := nameColumnWidth(m.snapshot.Lines)
	for i, rec := range m.snapshot.Lines {
		b.WriteString(m.renderLineRow(styles, rec, nameWidth, i == m.cursor))
		b.WriteString("\n")
	}

	b.WriteString("\n")
	b.WriteString(styles.Section.Render("Options"))
	b.WriteString("\n")
	for i, opt := range optionRows {
		title := runewidth.FillRight(opt.title, nameWidth)
		row := "  " + styles.Text.Render(title)
		if m.lineCount()+i == m.cursor {
			row = styles.Selected.Render("> " + title)
		}
		if opt.subtitle != "" {
			row += "  " + styles.MutedText.Render(opt.subtitle)
		}
		b.WriteString(row)
		b.WriteString("\n")
	}

	b.WriteString("\n")
	if status := m.statusLine(); status != "" {
		b.WriteString(status)
		b.WriteString("\n")
	}
	b.WriteString(styles.Footer.Render(m.help.View(m.keys)))
	return b.String()
}

func (m Model) renderLineRow(styles Styles, rec lines.Record, nameWidth int, selected bool) string {
	cond := rec.Condition()
	name := runewidth.FillRight(rec.Name, nameWidth)
	label := runewidth.FillRight(rec.Label(), len("Getting Status"))
	glyph := styles.ConditionStyle(cond).Render(conditionGlyph(cond))

	if selected {
		return styles.Selected.Render("> "+name) + "  " + styles.ConditionStyle(cond).Render(label) + " " + glyph
	}
	return "  " + styles.Text.Render(name) + "  " + styles.ConditionStyle(cond).Render(label) + " " + glyph
}

// statusLine explains failures and flags a feed that keeps failing.
func (m Model) statusLine() string {
	styles := m.theme.Styles()
	var parts []string
	if m.snapshot.State.Failed() && m.snapshot.Reason != "" {
		parts = append(parts, styles.DangerText.Render(m.snapshot.Reason))
	}
	if m.snapshot.IsOffline() {
		parts = append(parts, styles.WarningText.Render(
			fmt.Sprintf("offline: %d failed updates in a row", m.snapshot.ConsecutiveFailures)))
	}
	return strings.Join(parts, "  ")
}

func (m Model) renderLogs() string {
	styles := m.theme.Styles()
	var b strings.Builder

	b.WriteString(styles.Section.Render("Log · " + m.logPath))
	b.WriteString("\n")

	body := m.logLines
	switch {
	case m.logPath == "":
		body = []string{styles.MutedText.Render("logging is disabled (log_file is empty)")}
	case m.logErr != nil:
		body = []string{styles.DangerText.Render(m.logErr.Error())}
	case len(body) == 0:
		body = []string{styles.MutedText.Render("no log entries yet")}
	default:
		// Show only what fits under the title and footer.
		if room := m.height - 4; room > 0 && len(body) > room {
			body = body[len(body)-room:]
		}
		rendered := make([]string, len(body))
		for i, line := range body {
			style := styles.LevelStyle(logtail.Level(line))
			if m.width > 4 {
				line = runewidth.Truncate(line, m.width-4, "…")
			}
			rendered[i] = style.Render(line)
		}
		body = rendered
	}

	b.WriteString(styles.Overlay.Render(strings.Join(body, "\n")))
	b.WriteString("\n")
	b.WriteString(styles.Footer.Render("l close log · q quit"))
	return b.String()
}
