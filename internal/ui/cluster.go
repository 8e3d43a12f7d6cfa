package ui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/dustin/go-humanize"

	"github.com/ssebasarias/Dahell/internal/actions"
	"github.com/ssebasarias/Dahell/internal/dahell"
	"github.com/ssebasarias/Dahell/internal/state"
)

type clusterTab int

const (
	tabConsole clusterTab = iota
	tabOrphans
)

// auditFilter narrows the live console by decision.
type auditFilter int

const (
	filterAll auditFilter = iota
	filterMatch
	filterReject
)

func (f auditFilter) String() string {
	switch f {
	case filterMatch:
		return "MATCH"
	case filterReject:
		return "REJECT"
	default:
		return "ALL"
	}
}

func (f auditFilter) keep(l dahell.AuditLog) bool {
	switch f {
	case filterMatch:
		return l.IsMatch()
	case filterReject:
		return !l.IsMatch()
	default:
		return true
	}
}

type clusterState struct {
	tab        clusterTab
	filter     auditFilter
	consoleRow int
	orphanRow  int

	actions      *actions.Controller
	investigator *investigatorState

	feedback    *feedbackState
	feedbackGen uint64
}

// investigatorState is the open orphan detail. It stays bound to one
// product; responses for any other product are dropped.
type investigatorState struct {
	orphan    dahell.Orphan
	loading   bool
	err       error
	data      dahell.Investigation
	cursor    int
	selection actions.Selection
	closing   bool
}

type feedbackState struct {
	gen  uint64
	form *actions.FeedbackForm
}

// consoleLogs applies the decision filter and the feed cap.
func (m Model) consoleLogs() []dahell.AuditLog {
	logs := make([]dahell.AuditLog, 0, len(m.snapshot.AuditLogs))
	for _, l := range m.snapshot.AuditLogs {
		if m.cluster.filter.keep(l) {
			logs = append(logs, l)
		}
	}
	if len(logs) > AuditFeedLimit {
		logs = logs[:AuditFeedLimit]
	}
	return logs
}

func (m *Model) clampClusterRows() {
	m.cluster.consoleRow = clampRow(m.cluster.consoleRow, len(m.consoleLogs()))
	m.cluster.orphanRow = clampRow(m.cluster.orphanRow, len(m.cluster.actions.Unresolved()))
}

func clampRow(row, n int) int {
	if n == 0 || row < 0 {
		return 0
	}
	if row >= n {
		return n - 1
	}
	return row
}

func (m Model) handleClusterKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	row := &m.cluster.consoleRow
	n := len(m.consoleLogs())
	if m.cluster.tab == tabOrphans {
		row = &m.cluster.orphanRow
		n = len(m.cluster.actions.Unresolved())
	}

	switch {
	case key.Matches(msg, m.keys.ToggleTab):
		m.cluster.tab = ternaryTab(m.cluster.tab == tabConsole, tabOrphans, tabConsole)
	case key.Matches(msg, m.keys.CycleFilter):
		m.cluster.filter = (m.cluster.filter + 1) % 3
		m.cluster.consoleRow = 0
	case key.Matches(msg, m.keys.Down):
		*row = clampRow(*row+1, n)
	case key.Matches(msg, m.keys.Up):
		*row = clampRow(*row-1, n)
	case key.Matches(msg, m.keys.Top):
		*row = 0
	case key.Matches(msg, m.keys.Bottom):
		*row = clampRow(n-1, n)
	case key.Matches(msg, m.keys.Confirm):
		if m.cluster.tab == tabOrphans {
			return m.openInvestigator()
		}
		return m.openFeedback()
	}
	return m, nil
}

func ternaryTab(cond bool, a, b clusterTab) clusterTab {
	if cond {
		return a
	}
	return b
}

func (m Model) openInvestigator() (tea.Model, tea.Cmd) {
	orphans := m.cluster.actions.Unresolved()
	if m.cluster.orphanRow >= len(orphans) {
		return m, nil
	}
	o := orphans[m.cluster.orphanRow]
	m.cluster.investigator = &investigatorState{orphan: o, loading: true}
	return m, investigateCmd(m.ctx, m.gateway, o.ProductID)
}

func (m Model) openFeedback() (tea.Model, tea.Cmd) {
	logs := m.consoleLogs()
	if m.cluster.consoleRow >= len(logs) {
		return m, nil
	}
	m.cluster.feedbackGen++
	m.cluster.feedback = &feedbackState{
		gen:  m.cluster.feedbackGen,
		form: actions.NewFeedbackForm(logs[m.cluster.consoleRow], m.config.FeedbackCloseDelay),
	}
	return m, nil
}

func (m Model) handleInvestigatorKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	inv := m.cluster.investigator
	busy := m.cluster.actions.InFlight(inv.orphan.ProductID) || inv.closing

	switch {
	case key.Matches(msg, m.keys.Escape):
		if !busy {
			m.cluster.investigator = nil
		}
		return m, nil
	case key.Matches(msg, m.keys.Down):
		inv.cursor = clampRow(inv.cursor+1, len(inv.data.Candidates))
	case key.Matches(msg, m.keys.Up):
		inv.cursor = clampRow(inv.cursor-1, len(inv.data.Candidates))
	case key.Matches(msg, m.keys.Toggle):
		if !busy && inv.cursor < len(inv.data.Candidates) {
			inv.selection.Toggle(inv.data.Candidates[inv.cursor].ID)
		}
	case key.Matches(msg, m.keys.Trash):
		return m.resolveOrphan(actions.Trash)
	case key.Matches(msg, m.keys.Singleton):
		return m.resolveOrphan(actions.ConfirmSingleton)
	case key.Matches(msg, m.keys.Merge):
		return m.resolveOrphan(actions.MergeSelected)
	}
	return m, nil
}

// resolveOrphan dispatches kind for the open product when its control is
// enabled. Disabled controls do nothing.
func (m Model) resolveOrphan(kind actions.Kind) (tea.Model, tea.Cmd) {
	inv := m.cluster.investigator
	if inv.loading || inv.closing {
		return m, nil
	}
	busy := m.cluster.actions.InFlight(inv.orphan.ProductID)
	if !actions.Controls(inv.selection, busy).Allows(kind) {
		return m, nil
	}
	var related []int64
	if kind == actions.MergeSelected {
		related = inv.selection.IDs()
	}
	p, err := m.cluster.actions.Begin(kind, inv.orphan.ProductID, related)
	if err != nil {
		m.setNotice(err.Error(), dahell.LevelHigh)
		return m, nil
	}
	return m, orphanActionCmd(m.ctx, m.gateway, p)
}

func (m Model) handleFeedbackKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	fb := m.cluster.feedback
	switch {
	case key.Matches(msg, m.keys.Escape):
		if fb.form.State() != actions.FeedbackSaving {
			m.cluster.feedback = nil
		}
		return m, nil
	case key.Matches(msg, m.keys.Correct):
		return m.submitFeedback(true)
	case key.Matches(msg, m.keys.Incorrect):
		return m.submitFeedback(false)
	}
	return m, nil
}

func (m Model) submitFeedback(correct bool) (tea.Model, tea.Cmd) {
	fb := m.cluster.feedback
	req, err := fb.form.Submit(correct)
	if err != nil {
		return m, nil
	}
	return m, saveFeedbackCmd(m.ctx, m.gateway, fb.gen, req)
}

func (m Model) updateCluster(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case investigationMsg:
		inv := m.cluster.investigator
		if inv == nil || inv.orphan.ProductID != msg.productID {
			return m, nil
		}
		inv.loading = false
		inv.err = msg.result.Err
		inv.data = msg.result.Value
		inv.cursor = 0
		return m, nil

	case actionDoneMsg:
		out := m.cluster.actions.Complete(msg.targetID, msg.err)
		inv := m.cluster.investigator
		if !out.Removed {
			if out.Err != nil {
				m.setNotice(fmt.Sprintf("Action failed for #%d: %v", msg.targetID, out.Err), dahell.LevelHigh)
			}
			return m, nil
		}
		m.clampClusterRows()
		m.setNotice(fmt.Sprintf("%s applied to #%d", out.Kind, msg.targetID), dahell.LevelLow)
		if inv != nil && inv.orphan.ProductID == msg.targetID {
			inv.closing = true
			return m, closeInvestigatorCmd(out.CloseAfter, msg.targetID)
		}
		return m, nil

	case closeInvestigatorMsg:
		inv := m.cluster.investigator
		if inv == nil || inv.orphan.ProductID != msg.productID {
			return m, nil
		}
		m.cluster.investigator = nil
		return m, refreshCmd(m.refresh, m.store, state.ScreenCluster)

	case feedbackDoneMsg:
		fb := m.cluster.feedback
		if fb == nil || fb.gen != msg.gen {
			return m, nil
		}
		after, ok := fb.form.Finish(msg.err)
		if !ok {
			return m, nil
		}
		return m, closeFeedbackCmd(after, msg.gen)

	case closeFeedbackMsg:
		if fb := m.cluster.feedback; fb != nil && fb.gen == msg.gen {
			m.cluster.feedback = nil
		}
		return m, nil
	}
	return m, nil
}

// scoreStyle colors a matcher score; strong matches are green.
func (m Model) scoreStyle(score float64) lipgloss.Style {
	styles := m.theme.Styles()
	switch dahell.ScoreLevel(score) {
	case dahell.LevelHigh:
		return styles.SuccessText
	case dahell.LevelMedium:
		return styles.WarningText
	default:
		return styles.MutedText
	}
}

func (m Model) renderCluster() string {
	height := m.contentHeight()
	sideWidth := 0
	if m.width >= LayoutCompactWidth {
		sideWidth = 32
	}
	mainWidth := m.width - sideWidth

	var title, body string
	if m.cluster.tab == tabOrphans {
		title = fmt.Sprintf("Orphans (%d)", len(m.cluster.actions.Unresolved()))
		body = m.renderOrphanList(mainWidth-2, height-2)
	} else {
		title = "Live Console · " + m.cluster.filter.String()
		body = m.renderConsole(mainWidth-2, height-2)
	}
	box := m.renderBox(title, body, mainWidth, height, true)
	if sideWidth == 0 {
		return box
	}
	side := m.renderBox("Trainer", m.renderTrainer(sideWidth-2), sideWidth, height, false)
	return lipgloss.JoinHorizontal(lipgloss.Top, box, side)
}

func (m Model) renderConsole(width, height int) string {
	styles := m.theme.Styles()
	logs := m.consoleLogs()
	if len(logs) == 0 {
		if m.snapshot.Cluster.LastUpdated.IsZero() {
			return styles.MutedText.Render(m.spinner.View() + " Waiting for the clustering engine...")
		}
		return styles.MutedText.Render("No decisions yet.")
	}

	titleWidth := max((width-8-10-6-14-6)/2, 8)
	start := 0
	if m.cluster.consoleRow >= height {
		start = m.cluster.consoleRow - height + 1
	}
	lines := make([]string, 0, height)
	for i := start; i < len(logs) && len(lines) < height; i++ {
		l := logs[i]
		ts := "--:--:--"
		if t := l.Time(); !t.IsZero() {
			ts = t.Format("15:04:05")
		}
		decision := styles.DangerText.Render(padRight("REJECT", 9))
		if l.IsMatch() {
			decision = styles.SuccessText.Render(padRight("MATCH", 9))
		}
		pair := padRight(truncate(l.TitleA, titleWidth), titleWidth) + " ↔ " + padRight(truncate(l.TitleB, titleWidth), titleWidth)
		score := m.scoreStyle(l.FinalScore).Render(padRight(formatScore(l.FinalScore), 6))
		method := styles.FaintText.Render(truncate(l.MatchMethod, 14))

		if i == m.cluster.consoleRow {
			lines = append(lines, styles.Selected.Render(fmt.Sprintf("%s %s %s %s %s", ts, padRight(l.Decision, 9), padRight(formatScore(l.FinalScore), 6), pair, l.MatchMethod)))
			continue
		}
		lines = append(lines, styles.FaintText.Render(ts)+" "+decision+score+" "+styles.Text.Render(pair)+" "+method)
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderOrphanList(width, height int) string {
	styles := m.theme.Styles()
	orphans := m.cluster.actions.Unresolved()
	if len(orphans) == 0 {
		return styles.SuccessText.Render("No orphans left. The engine clustered everything.")
	}

	titleWidth := max(width-10-14-12, 10)
	lines := []string{styles.FaintText.Render(padRight("ID", 10) + padRight("TITLE", titleWidth) + padRight("PRICE", 14) + "CLUSTER")}
	start := 0
	if m.cluster.orphanRow >= height-1 {
		start = m.cluster.orphanRow - height + 2
	}
	for i := start; i < len(orphans) && len(lines) < height; i++ {
		o := orphans[i]
		line := padRight(fmt.Sprintf("#%d", o.ProductID), 10) +
			padRight(truncate(o.Title, titleWidth-1), titleWidth) +
			padRight(formatPrice(o.Price.Float64()), 14) +
			ternary(o.ClusterID > 0, fmt.Sprintf("%d", o.ClusterID), "-")
		if i == m.cluster.orphanRow {
			lines = append(lines, styles.Selected.Render(padRight(line, width)))
			continue
		}
		lines = append(lines, styles.Text.Render(line))
	}
	return strings.Join(lines, "\n")
}

func (m Model) renderTrainer(width int) string {
	styles := m.theme.Styles()
	stats := m.snapshot.ClusterStats
	feed := m.snapshot.Cluster

	row := func(label, value string, style lipgloss.Style) string {
		gap := max(width-len(label)-lipgloss.Width(value), 1)
		return styles.MutedText.Render(label) + strings.Repeat(" ", gap) + style.Render(value)
	}
	lines := []string{
		row("Audits", humanize.Comma(int64(stats.XPAudits)), styles.Text),
		row("Today", humanize.Comma(int64(stats.XPToday)), styles.Text),
		row("Accuracy", formatScore(stats.Accuracy()), m.scoreStyle(stats.Accuracy())),
		row("Pending orphans", humanize.Comma(int64(stats.PendingOrphans)), ternaryStyle(stats.PendingOrphans > 0, styles.WarningText, styles.SuccessText)),
		row("Products", humanize.Comma(int64(stats.TotalProducts)), styles.Text),
		"",
		row("Updated", formatAge(feed.LastUpdated, m.now()), styles.FaintText),
	}
	if feed.IsOffline() {
		lines = append(lines, styles.DangerText.Render("Feed offline"))
	} else if feed.LastError != nil {
		lines = append(lines, styles.WarningText.Render("Last poll failed"))
	}
	return strings.Join(lines, "\n")
}

func ternaryStyle(cond bool, a, b lipgloss.Style) lipgloss.Style {
	if cond {
		return a
	}
	return b
}

// renderInvestigator renders the orphan detail over the screen.
func (m Model) renderInvestigator() string {
	styles := m.theme.Styles()
	inv := m.cluster.investigator
	width := min(max(m.width-8, 40), 100)
	busy := m.cluster.actions.InFlight(inv.orphan.ProductID)

	var b strings.Builder
	b.WriteString(styles.AccentText.Bold(true).Render(fmt.Sprintf("Investigate #%d", inv.orphan.ProductID)))
	b.WriteString("\n")
	b.WriteString(styles.Text.Render(truncate(inv.orphan.Title, width-4)))
	b.WriteString("  ")
	b.WriteString(styles.SuccessText.Render(formatPrice(inv.orphan.Price.Float64())))
	b.WriteString("\n\n")

	switch {
	case inv.loading:
		b.WriteString(styles.MutedText.Render(m.spinner.View() + " Looking for twins..."))
	case inv.err != nil:
		b.WriteString(styles.DangerText.Render("Could not load candidates: " + inv.err.Error()))
	case len(inv.data.Candidates) == 0:
		b.WriteString(styles.MutedText.Render("No candidates found. Confirm it as unique or trash it."))
	default:
		b.WriteString(styles.FaintText.Render("    " + padRight("CANDIDATE", width-40) + padRight("PRICE", 14) + "FINAL  VIS   TXT"))
		for i, c := range inv.data.Candidates {
			b.WriteString("\n")
			mark := ternary(inv.selection.Has(c.ID), "[x] ", "[ ] ")
			line := mark + padRight(truncate(c.Title, width-42), width-40) + padRight(formatPrice(c.Price.Float64()), 14) +
				padRight(formatScore(c.Scores.Final), 7) + padRight(formatScore(c.Scores.Visual), 6) + formatScore(c.Scores.Text)
			if i == inv.cursor {
				b.WriteString(styles.Selected.Render(line))
				continue
			}
			b.WriteString(m.scoreStyle(c.Scores.Final).Render(line))
		}
	}

	b.WriteString("\n\n")
	ctrl := actions.Controls(inv.selection, busy || inv.loading || inv.closing)
	button := func(enabled bool, label string) string {
		if enabled {
			return styles.AccentText.Render(label)
		}
		return styles.FaintText.Render(label)
	}
	b.WriteString(strings.Join([]string{
		button(ctrl.Trash, "[t] Trash"),
		button(ctrl.Confirm, "[s] Confirm unique"),
		button(ctrl.Merge, fmt.Sprintf("[m] Merge %d", inv.selection.Len())),
		styles.FaintText.Render("[space] select  [esc] close"),
	}, "   "))

	switch {
	case inv.closing:
		b.WriteString("\n" + styles.SuccessText.Render("Resolved. Closing..."))
	case busy:
		b.WriteString("\n" + styles.MutedText.Render(m.spinner.View()+" Working..."))
	}
	return m.renderOverlay(b.String(), width)
}

// renderFeedback renders the verdict form for one console decision.
func (m Model) renderFeedback() string {
	styles := m.theme.Styles()
	form := m.cluster.feedback.form
	l := form.Log()
	width := min(max(m.width-8, 40), 80)

	decision := styles.DangerText.Render(l.Decision)
	if l.IsMatch() {
		decision = styles.SuccessText.Render(l.Decision)
	}

	lines := []string{
		styles.AccentText.Bold(true).Render("Was the engine right?"),
		"",
		styles.MutedText.Render("Decision ") + decision + styles.FaintText.Render("  via "+l.MatchMethod),
		styles.MutedText.Render("A ") + styles.Text.Render(fmt.Sprintf("#%d %s", l.ProductID, truncate(l.TitleA, width-14))),
		styles.MutedText.Render("B ") + styles.Text.Render(fmt.Sprintf("#%d %s", l.CandidateID, truncate(l.TitleB, width-14))),
		fmt.Sprintf("%s %s   %s %s   %s %s",
			styles.MutedText.Render("final"), m.scoreStyle(l.FinalScore).Render(formatScore(l.FinalScore)),
			styles.MutedText.Render("visual"), m.scoreStyle(l.VisualScore).Render(formatScore(l.VisualScore)),
			styles.MutedText.Render("text"), m.scoreStyle(l.TextScore).Render(formatScore(l.TextScore))),
		"",
	}

	switch form.State() {
	case actions.FeedbackSaving:
		lines = append(lines, styles.MutedText.Render(m.spinner.View()+" Saving..."))
	case actions.FeedbackSuccess:
		lines = append(lines, styles.SuccessText.Render("Saved. Thanks for training the engine."))
	case actions.FeedbackError:
		msg := "Save failed"
		if err := form.Err(); err != nil && !errors.Is(err, actions.ErrValidation) {
			msg += ": " + err.Error()
		}
		lines = append(lines, styles.DangerText.Render(msg), styles.FaintText.Render("Press y or n to retry."))
	default:
		lines = append(lines, styles.AccentText.Render("[y] Correct")+"   "+styles.AccentText.Render("[n] Incorrect")+"   "+styles.FaintText.Render("[esc] close"))
	}
	return m.renderOverlay(strings.Join(lines, "\n"), width)
}
