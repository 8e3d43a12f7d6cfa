package ui

import (
	"errors"
	"os"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"github.com/ssebasarias/Dahell/internal/logtail"
)

// diagnosticsState is the tail of the console's own log file.
type diagnosticsState struct {
	viewport  viewport.Model
	entries   []logtail.Entry
	warnsOnly bool
	// follow keeps the view pinned to the newest entry and re-tails on
	// every UI tick.
	follow bool
	err    error
}

func newDiagnosticsState() diagnosticsState {
	return diagnosticsState{viewport: viewport.New(0, 0), follow: true}
}

func (m *Model) applyDiagnostics(msg diagnosticsMsg) {
	m.diag.err = msg.err
	if msg.err == nil {
		m.diag.entries = msg.entries
	}
	m.renderDiagnosticsContent()
}

func (m *Model) renderDiagnosticsContent() {
	styles := m.theme.Styles()
	switch {
	case errors.Is(m.diag.err, os.ErrNotExist):
		m.diag.viewport.SetContent(styles.MutedText.Render("No log file yet at " + m.config.LogFile))
		return
	case m.diag.err != nil:
		m.diag.viewport.SetContent(styles.DangerText.Render("Could not read log: " + m.diag.err.Error()))
		return
	case len(m.diag.entries) == 0:
		m.diag.viewport.SetContent(styles.FaintText.Render("Nothing logged at this level."))
		return
	}

	lines := make([]string, 0, len(m.diag.entries))
	for _, e := range m.diag.entries {
		style := styles.Text
		switch strings.ToLower(e.Level) {
		case "error", "dpanic", "panic", "fatal":
			style = styles.DangerText
		case "warn":
			style = styles.WarningText
		case "debug":
			style = styles.FaintText
		}
		lines = append(lines, style.Render(logtail.Format(e)))
	}
	m.diag.viewport.SetContent(strings.Join(lines, "\n"))
	if m.diag.follow {
		m.diag.viewport.GotoBottom()
	}
}

func (m Model) handleDiagnosticsKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	vp := &m.diag.viewport
	switch {
	case key.Matches(msg, m.keys.WarnsOnly):
		m.diag.warnsOnly = !m.diag.warnsOnly
		return m, tailCmd(m.config.LogFile, m.diag.warnsOnly)
	case key.Matches(msg, m.keys.Down):
		vp.LineDown(1)
		m.diag.follow = vp.AtBottom()
	case key.Matches(msg, m.keys.Up):
		vp.LineUp(1)
		m.diag.follow = false
	case key.Matches(msg, m.keys.PageDown):
		vp.LineDown(max(vp.Height/2, 1))
		m.diag.follow = vp.AtBottom()
	case key.Matches(msg, m.keys.PageUp):
		vp.LineUp(max(vp.Height/2, 1))
		m.diag.follow = false
	case key.Matches(msg, m.keys.Top):
		vp.GotoTop()
		m.diag.follow = false
	case key.Matches(msg, m.keys.Bottom):
		vp.GotoBottom()
		m.diag.follow = true
	}
	return m, nil
}

func (m Model) renderDiagnostics() string {
	title := "Diagnostics · " + truncateMiddle(m.config.LogFile, 48)
	if m.diag.warnsOnly {
		title += " · warnings"
	}
	if !m.diag.follow {
		title += " · paused"
	}
	return m.renderBox(title, m.diag.viewport.View(), m.width, m.contentHeight(), true)
}
