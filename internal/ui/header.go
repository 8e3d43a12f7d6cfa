package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/ssebasarias/Dahell/internal/dahell"
	"github.com/ssebasarias/Dahell/internal/gateway"
	"github.com/ssebasarias/Dahell/internal/state"
)

// renderHeader renders the status bar: logo, backend health, screen tabs,
// freshness of the active feed and any notice.
func (m Model) renderHeader() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	p := newBgPainter(m.theme.Surface)
	compact := m.width < LayoutCompactWidth

	parts := []string{
		p.paint("dahell", styles.Logo),
		m.renderHealth(styles, p),
		m.renderTabs(styles, p, compact),
	}

	if feed, ok := m.activeFeed(); ok {
		age := formatAge(feed.LastUpdated, m.now())
		style := styles.MutedText
		if feed.IsOffline() {
			style = styles.DangerText
		}
		parts = append(parts, p.paint("updated "+age, style))
	}

	if n, ok := m.activeNotice(); ok {
		limit := 60
		if compact {
			limit = 30
		}
		parts = append(parts, p.paint(truncate(n.text, limit), m.noticeStyle(styles, n.level)))
	} else if h := m.health; h.State() == gateway.HealthOffline && h.LastError != nil && !compact {
		parts = append(parts, p.paint(truncate(h.LastError.Error(), 60), styles.DangerText))
	}

	return styles.Header.Width(m.width).Render(p.join(parts, 2))
}

func (m Model) renderHealth(styles Styles, p bgPainter) string {
	hs := m.health.State()
	style := styles.WarningText
	switch hs {
	case gateway.HealthOnline:
		style = styles.SuccessText
	case gateway.HealthOffline:
		style = styles.DangerText
	}
	return p.paint("● "+hs.String(), style)
}

func (m Model) renderTabs(styles Styles, p bgPainter, compact bool) string {
	active := lipgloss.NewStyle().
		Background(lipgloss.Color(m.theme.SelectionBg)).
		Foreground(lipgloss.Color(m.theme.SelectionText)).
		Bold(true)

	tabs := make([]string, 0, len(screens))
	for i, s := range screens {
		label := screenTitles[s]
		if compact {
			label = strings.Fields(label)[0]
		}
		label = string(rune('1'+i)) + " " + label
		if s == m.screen {
			tabs = append(tabs, active.Render(" "+label+" "))
			continue
		}
		tabs = append(tabs, p.paint(label, styles.MutedText))
	}
	return p.join(tabs, 1)
}

// activeFeed is the polled feed behind the current screen.
func (m Model) activeFeed() (state.FeedStatus, bool) {
	switch m.screen {
	case state.ScreenCluster:
		return m.snapshot.Cluster, true
	case state.ScreenSystem:
		return m.snapshot.ContainerHealth, true
	default:
		return state.FeedStatus{}, false
	}
}

func (m Model) noticeStyle(styles Styles, level dahell.Level) lipgloss.Style {
	switch level {
	case dahell.LevelHigh:
		return styles.DangerText
	case dahell.LevelMedium:
		return styles.WarningText
	default:
		return styles.SuccessText
	}
}

// renderCommandBar renders the key hints of the active screen.
func (m Model) renderCommandBar() string {
	styles := m.theme.Styles().WithBackground(m.theme.Surface)
	p := newBgPainter(m.theme.Surface)

	type cmd struct{ key, desc string }
	var commands []cmd

	switch m.screen {
	case state.ScreenCluster:
		if m.cluster.tab == tabOrphans {
			commands = []cmd{
				{"j/k", "Navigate"},
				{"enter", "Investigate"},
				{"o", "Console"},
			}
		} else {
			commands = []cmd{
				{"j/k", "Navigate"},
				{"enter", "Verdict"},
				{"f", m.cluster.filter.String()},
				{"o", "Orphans"},
			}
		}
	case state.ScreenSystem:
		commands = []cmd{
			{"j/k", "Service"},
			{"R", "Restart"},
			{"ctrl+u/d", "Scroll"},
		}
	case state.ScreenDiagnostics:
		commands = []cmd{
			{"w", ternary(m.diag.warnsOnly, "All levels", "Warnings")},
			{"j/k", "Scroll"},
			{"G", "Follow"},
		}
	default:
		if m.gold.list.Visual() {
			commands = []cmd{
				{"j/k", "Navigate"},
				{"o", "Copy URL"},
				{"x", "Back to list"},
			}
		} else {
			commands = []cmd{
				{"/", "Search"},
				{"c", "Category"},
				{"r", "Competitors"},
				{"m/M", "Price"},
				{"v", "Image"},
				{"n/p", "Page"},
				{"R", "Reload"},
				{"o", "Copy URL"},
			}
		}
	}
	commands = append(commands, cmd{"tab", "Screen"}, cmd{"?", "More"})

	colon := p.paint(":", styles.FaintText)
	segments := make([]string, 0, len(commands)+1)
	for _, c := range commands {
		segments = append(segments, p.paint(c.key, styles.AccentText)+colon+p.paint(c.desc, styles.MutedText))
	}
	segments = append(segments, p.paint("T", styles.AccentText)+colon+p.paint(m.theme.Name, styles.FaintText))

	return styles.Header.Width(m.width).Render(p.join(segments, 2))
}
