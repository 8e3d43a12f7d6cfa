package ui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/ssebasarias/Dahell/internal/dahell"
)

const serviceListWidth = 52

type systemState struct {
	row  int
	logs viewport.Model
}

func (m Model) selectedService() dahell.Service {
	return dahell.Services[clampRow(m.system.row, len(dahell.Services))]
}

// resizeViewports fits the scrollable panes to the terminal.
func (m *Model) resizeViewports() {
	h := max(m.contentHeight()-2, 1)
	logWidth := max(m.width-serviceListWidth-2, 10)
	if m.width < LayoutCompactWidth {
		logWidth = max(m.width-2, 10)
		h = max(h-len(dahell.Services)-3, 1)
	}
	m.system.logs.Width = logWidth
	m.system.logs.Height = h
	m.diag.viewport.Width = max(m.width-2, 10)
	m.diag.viewport.Height = max(m.contentHeight()-2, 1)
	m.updateServiceLogs()
	m.renderDiagnosticsContent()
}

// updateServiceLogs refills the log pane for the selected service, keeping
// it pinned to the newest line.
func (m *Model) updateServiceLogs() {
	styles := m.theme.Styles()
	logs := dahell.LogsForService(m.snapshot.ServiceLogs, m.selectedService().ID, ServiceLogLines)
	if len(logs) == 0 {
		m.system.logs.SetContent(styles.FaintText.Render("No output yet."))
		return
	}
	lines := make([]string, 0, len(logs))
	for _, l := range logs {
		style := styles.Text
		switch strings.ToLower(l.Level) {
		case "error", "critical", "fatal":
			style = styles.DangerText
		case "warn", "warning":
			style = styles.WarningText
		case "debug":
			style = styles.FaintText
		}
		line := l.Message
		if l.Timestamp != "" {
			line = styles.FaintText.Render(l.Timestamp) + " " + style.Render(line)
		} else {
			line = style.Render(line)
		}
		lines = append(lines, line)
	}
	m.system.logs.SetContent(strings.Join(lines, "\n"))
	m.system.logs.GotoBottom()
}

func (m Model) handleSystemKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, m.keys.Down):
		m.system.row = clampRow(m.system.row+1, len(dahell.Services))
		m.updateServiceLogs()
	case key.Matches(msg, m.keys.Up):
		m.system.row = clampRow(m.system.row-1, len(dahell.Services))
		m.updateServiceLogs()
	case key.Matches(msg, m.keys.Top):
		m.system.row = 0
		m.updateServiceLogs()
	case key.Matches(msg, m.keys.Bottom):
		m.system.row = len(dahell.Services) - 1
		m.updateServiceLogs()
	case key.Matches(msg, m.keys.PageUp):
		m.system.logs.LineUp(max(m.system.logs.Height/2, 1))
	case key.Matches(msg, m.keys.PageDown):
		m.system.logs.LineDown(max(m.system.logs.Height/2, 1))
	case key.Matches(msg, m.keys.Restart):
		svc := m.selectedService()
		m.setNotice("Restarting "+svc.Name+"...", dahell.LevelMedium)
		return m, controlCmd(m.ctx, m.gateway, svc.ID, "restart")
	}
	return m, nil
}

func (m Model) updateSystem(msg tea.Msg) (tea.Model, tea.Cmd) {
	done, ok := msg.(controlDoneMsg)
	if !ok {
		return m, nil
	}
	if done.result.Err != nil {
		m.setNotice(fmt.Sprintf("%s %s failed: %v", done.action, done.service, done.result.Err), dahell.LevelHigh)
		return m, nil
	}
	text := done.result.Value.Message
	if text == "" {
		text = fmt.Sprintf("%s %s: %s", done.action, done.service, done.result.Value.Status)
	}
	m.setNotice(text, dahell.LevelLow)
	return m, refreshCmd(m.refresh, m.store, m.screen)
}

func (m Model) renderSystem() string {
	height := m.contentHeight()
	svc := m.selectedService()
	logTitle := "Logs · " + svc.Name

	if m.width < LayoutCompactWidth {
		listHeight := len(dahell.Services) + 3
		list := m.renderBox("Services", m.renderServiceList(m.width-2), m.width, listHeight, true)
		logs := m.renderBox(logTitle, m.system.logs.View(), m.width, max(height-listHeight, 3), false)
		return lipgloss.JoinVertical(lipgloss.Left, list, logs)
	}

	list := m.renderBox("Services", m.renderServiceList(serviceListWidth-2), serviceListWidth, height, true)
	logs := m.renderBox(logTitle, m.system.logs.View(), m.width-serviceListWidth, height, false)
	return lipgloss.JoinHorizontal(lipgloss.Top, list, logs)
}

func (m Model) renderServiceList(width int) string {
	styles := m.theme.Styles()
	stats := m.snapshot.Containers
	now := m.now()

	lines := []string{styles.FaintText.Render(padRight("SERVICE", 17) + padRight("STATE", 10) + padRight("CPU", 7) + "MEM")}
	for i, svc := range dahell.Services {
		st, known := stats[svc.ID]
		status := "unknown"
		if known && st.Status != "" {
			status = strings.ToLower(st.Status)
		}
		cpu, mem, up := "-", "-", ""
		if known && st.Running() {
			cpu = fmt.Sprintf("%.1f%%", st.CPUPercent)
			mem = humanize.Bytes(st.MemoryUsage)
			if started := st.Started(); !started.IsZero() {
				up = humanize.RelTime(started, now, "", "")
			}
		}

		name := padRight(truncate(svc.Name, 16), 17)
		if i == m.system.row {
			line := name + padRight(status, 10) + padRight(cpu, 7) + padRight(mem, 9) + up
			lines = append(lines, styles.Selected.Render(padRight(truncate(line, width), width)))
			continue
		}
		badge := styles.ServiceStyle(status).Render(truncate(status, 8))
		badgeCell := badge + strings.Repeat(" ", max(10-lipgloss.Width(badge), 1))
		lines = append(lines, styles.Text.Render(name)+badgeCell+styles.InfoText.Render(padRight(cpu, 7))+styles.MutedText.Render(padRight(mem, 9))+styles.FaintText.Render(up))
	}

	feed := m.snapshot.ContainerHealth
	lines = append(lines, "", styles.FaintText.Render("stats "+formatAge(feed.LastUpdated, now)))
	if feed.IsOffline() {
		lines = append(lines, styles.DangerText.Render("Docker API unreachable"))
	}
	return strings.Join(lines, "\n")
}
