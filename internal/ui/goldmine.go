package ui

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ssebasarias/Dahell/internal/dahell"
	"github.com/ssebasarias/Dahell/internal/listview"
)

// promptKind says what the Gold Mine input line is editing.
type promptKind int

const (
	promptNone promptKind = iota
	promptSearch
	promptMinPrice
	promptMaxPrice
	promptImage
)

type goldMineState struct {
	list       *listview.Controller
	categories []dahell.Category
	// category indexes categories; -1 means all.
	category int
	selected int
	prompt   promptKind
	input    textinput.Model
}

func newGoldMineState(opts listview.Options) goldMineState {
	ti := textinput.New()
	ti.CharLimit = 256
	return goldMineState{
		list:     listview.New(opts),
		category: -1,
		input:    ti,
	}
}

func (m Model) updateGoldMine(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case categoriesMsg:
		if msg.Err == nil {
			m.gold.categories = msg.Value
		}
		return m, nil

	case debounceMsg:
		req, ok := m.gold.list.DebounceElapsed(msg.gen)
		if !ok {
			return m, nil
		}
		return m, fetchPageCmd(m.ctx, m.gateway, req)

	case pageMsg:
		applied, followUp := m.gold.list.Resolve(listview.Response(msg))
		if !applied {
			return m, nil
		}
		m.gold.selected = 0
		if followUp != nil {
			m.setNotice("Image search failed, showing the list again", dahell.LevelHigh)
			return m, fetchPageCmd(m.ctx, m.gateway, *followUp)
		}
		return m, nil

	case clipboardMsg:
		if msg.err != nil {
			m.setNotice("Clipboard unavailable: "+msg.url, dahell.LevelMedium)
			return m, nil
		}
		m.setNotice("Copied "+msg.url, dahell.LevelLow)
		return m, nil
	}
	return m, nil
}

// applyFilter edits the query and arms the debounce timer.
func (m Model) applyFilter(filters ...listview.Filter) (tea.Model, tea.Cmd) {
	ticket, ok := m.gold.list.SetFilter(filters...)
	if !ok {
		return m, nil
	}
	return m, debounceCmd(ticket)
}

func (m Model) handleGoldMineKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	list := m.gold.list
	items := list.Page().Items

	switch {
	case key.Matches(msg, m.keys.Down):
		if m.gold.selected < len(items)-1 {
			m.gold.selected++
		}
	case key.Matches(msg, m.keys.Up):
		if m.gold.selected > 0 {
			m.gold.selected--
		}
	case key.Matches(msg, m.keys.Top):
		m.gold.selected = 0
	case key.Matches(msg, m.keys.Bottom):
		m.gold.selected = max(len(items)-1, 0)

	case key.Matches(msg, m.keys.NextPage):
		if req, ok := list.NextPage(); ok {
			return m, fetchPageCmd(m.ctx, m.gateway, req)
		}
	case key.Matches(msg, m.keys.PrevPage):
		if req, ok := list.PrevPage(); ok {
			return m, fetchPageCmd(m.ctx, m.gateway, req)
		}

	case key.Matches(msg, m.keys.CopyURL):
		if m.gold.selected < len(items) {
			return m, copyURLCmd(items[m.gold.selected].ProductURL())
		}

	case key.Matches(msg, m.keys.Visual):
		return m.openPrompt(promptImage, "Image path", list.VisualPath())
	case key.Matches(msg, m.keys.ClearVisual):
		if req, ok := list.LeaveVisual(); ok {
			m.gold.selected = 0
			return m, fetchPageCmd(m.ctx, m.gateway, req)
		}
	}

	if !list.FiltersEnabled() {
		return m, nil
	}

	q := list.Query()
	switch {
	case key.Matches(msg, m.keys.Reload):
		m.gold.selected = 0
		return m, fetchPageCmd(m.ctx, m.gateway, list.Reload())
	case key.Matches(msg, m.keys.Search):
		return m.openPrompt(promptSearch, "Search", q.Search)
	case key.Matches(msg, m.keys.MinPrice):
		return m.openPrompt(promptMinPrice, "Min price", formatBound(q.MinPrice))
	case key.Matches(msg, m.keys.MaxPrice):
		return m.openPrompt(promptMaxPrice, "Max price", formatBound(q.MaxPrice))
	case key.Matches(msg, m.keys.Category):
		m.gold.category = nextCategory(m.gold.category, len(m.gold.categories))
		return m.applyFilter(listview.Category(m.categoryID()))
	case key.Matches(msg, m.keys.Competitors):
		return m.applyFilter(listview.Competitors(listview.NextPreset(q.Competitors).Range))
	}
	return m, nil
}

func nextCategory(current, n int) int {
	if n == 0 {
		return -1
	}
	if current+1 >= n {
		return -1
	}
	return current + 1
}

func (m Model) categoryID() string {
	if m.gold.category < 0 || m.gold.category >= len(m.gold.categories) {
		return ""
	}
	return m.gold.categories[m.gold.category].ID.String()
}

func (m Model) categoryName() string {
	if m.gold.category < 0 || m.gold.category >= len(m.gold.categories) {
		return "All"
	}
	return m.gold.categories[m.gold.category].Name
}

func (m Model) openPrompt(kind promptKind, label, value string) (tea.Model, tea.Cmd) {
	m.gold.prompt = kind
	m.gold.input.Prompt = label + ": "
	m.gold.input.SetValue(value)
	m.gold.input.CursorEnd()
	return m, m.gold.input.Focus()
}

func (m Model) closePrompt() Model {
	m.gold.prompt = promptNone
	m.gold.input.Blur()
	return m
}

// handlePromptKey edits the input line. Search applies on every keystroke
// through the debounce; the other prompts apply on enter.
func (m Model) handlePromptKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	kind := m.gold.prompt
	switch {
	case key.Matches(msg, m.keys.Escape):
		return m.closePrompt(), nil
	case key.Matches(msg, m.keys.Confirm):
		m = m.closePrompt()
		value := strings.TrimSpace(m.gold.input.Value())
		switch kind {
		case promptMinPrice:
			return m.applyFilter(listview.MinPrice(parseBound(value)))
		case promptMaxPrice:
			return m.applyFilter(listview.MaxPrice(parseBound(value)))
		case promptImage:
			return m.startVisualSearch(value)
		}
		return m, nil
	}

	var cmd tea.Cmd
	before := m.gold.input.Value()
	m.gold.input, cmd = m.gold.input.Update(msg)
	if kind == promptSearch && m.gold.input.Value() != before {
		_, debounce := m.applyFilter(listview.Search(m.gold.input.Value()))
		return m, tea.Batch(cmd, debounce)
	}
	return m, cmd
}

func (m Model) startVisualSearch(path string) (tea.Model, tea.Cmd) {
	path = expandHome(path)
	if path == "" {
		return m, nil
	}
	if info, err := os.Stat(path); err != nil || info.IsDir() {
		m.setNotice("Image not found: "+truncateMiddle(path, 40), dahell.LevelHigh)
		return m, nil
	}
	m.gold.selected = 0
	req := m.gold.list.EnterVisual(path)
	return m, visualSearchCmd(m.ctx, m.gateway, req)
}

func expandHome(path string) string {
	path = strings.TrimSpace(path)
	if rest, ok := strings.CutPrefix(path, "~/"); ok {
		if home, err := os.UserHomeDir(); err == nil {
			return filepath.Join(home, rest)
		}
	}
	return path
}

// parseBound reads a price bound; anything not positive clears it.
func parseBound(raw string) *float64 {
	raw = strings.ReplaceAll(strings.TrimSpace(raw), ",", "")
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || v <= 0 {
		return nil
	}
	return &v
}

func formatBound(v *float64) string {
	if v == nil {
		return ""
	}
	return strconv.FormatFloat(*v, 'f', -1, 64)
}

// renderGoldMine renders the opportunity table with the competitor panel.
func (m Model) renderGoldMine() string {
	height := m.contentHeight()
	sideWidth := 0
	if m.width >= LayoutCompactWidth && !m.gold.list.Visual() {
		sideWidth = 30
	}
	mainWidth := m.width - sideWidth

	inner := mainWidth - 2
	lines := []string{m.renderFilterLine(inner)}
	if m.gold.prompt != promptNone {
		lines = append(lines, m.gold.input.View())
	}
	lines = append(lines, "")
	bodyHeight := height - 2 - len(lines) - 2
	lines = append(lines, m.renderOpportunityRows(inner, bodyHeight)...)
	for len(lines) < height-4 {
		lines = append(lines, "")
	}
	lines = append(lines, "", m.renderPager(inner))

	title := "Gold Mine"
	if m.gold.list.Visual() {
		title = "Gold Mine · image " + truncateMiddle(filepath.Base(m.gold.list.VisualPath()), 24)
	}
	box := m.renderBox(title, strings.Join(lines, "\n"), mainWidth, height, true)
	if sideWidth == 0 {
		return box
	}
	side := m.renderBox("Competitors", m.renderStats(sideWidth-2), sideWidth, height, false)
	return lipgloss.JoinHorizontal(lipgloss.Top, box, side)
}

func (m Model) renderFilterLine(width int) string {
	styles := m.theme.Styles().WithBackground(m.theme.FocusBg)
	p := newBgPainter(m.theme.FocusBg)
	list := m.gold.list

	if list.Visual() {
		return p.fill(p.paint("Image search", styles.AccentText)+p.spaces(2)+
			p.paint("filters disabled, x returns to the list", styles.FaintText), width)
	}

	q := list.Query()
	preset := q.Competitors.String()
	if pr, ok := listview.PresetFor(q.Competitors); ok {
		preset = pr.Label
	}
	search := q.Search
	if search == "" {
		search = "-"
	}
	price := "any"
	if q.MinPrice != nil || q.MaxPrice != nil {
		lo, hi := "0", "∞"
		if q.MinPrice != nil {
			lo = formatPrice(*q.MinPrice)
		}
		if q.MaxPrice != nil {
			hi = formatPrice(*q.MaxPrice)
		}
		price = lo + " - " + hi
	}

	field := func(label, value string) string {
		return p.paint(label, styles.MutedText) + p.spaces(1) + p.paint(value, styles.Text)
	}
	parts := []string{
		field("Search", truncate(search, 24)),
		field("Category", m.categoryName()),
		field("Competitors", preset),
		field("Price", price),
	}
	return p.fill(p.join(parts, 3), width)
}

func (m Model) renderOpportunityRows(width, height int) []string {
	styles := m.theme.Styles()
	list := m.gold.list
	page := list.Page()

	switch {
	case list.Status() == listview.StatusLoading && len(page.Items) == 0:
		return []string{styles.MutedText.Render(m.spinner.View() + " Loading...")}
	case list.Status() == listview.StatusFailed:
		return []string{styles.DangerText.Render("Could not load products. Check the diagnostics screen.")}
	case len(page.Items) == 0:
		return []string{styles.MutedText.Render("No products match the current filters.")}
	}

	wide := m.width >= LayoutWideWidth
	lastLabel := "MARGIN"
	if page.Visual {
		lastLabel = "SIMILAR"
	}
	titleWidth := width - 12 - 9 - 10 - 9 - 6
	if wide {
		titleWidth -= 22
	}
	titleWidth = max(titleWidth, 12)

	header := padRight("TITLE", titleWidth) + " " + padRight("PRICE", 12) + padRight("COMP", 9) + padRight("SAT", 10) + padRight(lastLabel, 9)
	if wide {
		header += padRight("SUPPLIER", 22)
	}
	rows := []string{styles.FaintText.Render(header)}

	start := 0
	if height > 1 && m.gold.selected >= height-1 {
		start = m.gold.selected - (height - 2)
	}
	for i := start; i < len(page.Items) && len(rows) < max(height, 2); i++ {
		rows = append(rows, m.formatOpportunityRow(page.Items[i], page.Visual, titleWidth, wide, i == m.gold.selected))
	}
	return rows
}

func (m Model) formatOpportunityRow(item dahell.Opportunity, visual bool, titleWidth int, wide, selected bool) string {
	styles := m.theme.Styles()
	extra := item.ProfitMargin.String()
	if visual {
		extra = item.Similarity.String()
	}
	comp := fmt.Sprintf("%d", item.Competitors)

	title := padRight(truncate(item.Title, titleWidth), titleWidth)
	price := padRight(formatPrice(item.Price.Float64()), 12)
	if selected {
		line := title + " " + price + padRight(comp, 9) + padRight(item.Saturation, 10) + padRight(extra, 9)
		if wide {
			line += padRight(truncate(item.Supplier, 20), 22)
		}
		return styles.Selected.Render(line)
	}

	compBadge := styles.BadgeStyle(dahell.CompetitorLevel(item.Competitors)).Render(comp)
	compCell := compBadge + strings.Repeat(" ", max(9-lipgloss.Width(compBadge), 1))
	sat := styles.LevelStyle(dahell.SaturationLevel(item.Saturation)).Render(padRight(item.Saturation, 10))

	line := styles.Text.Render(title) + " " + styles.SuccessText.Render(price) + compCell + sat + styles.InfoText.Render(padRight(extra, 9))
	if wide {
		line += styles.MutedText.Render(padRight(truncate(item.Supplier, 20), 22))
	}
	return line
}

// renderPager renders "Showing a - b of N" and the pagination window.
func (m Model) renderPager(width int) string {
	styles := m.theme.Styles()
	list := m.gold.list
	page := list.Page()
	from, to := list.Showing()

	var showing string
	switch {
	case page.Visual:
		showing = fmt.Sprintf("%d visual matches", len(page.Items))
	case to == 0:
		showing = "Showing 0 results"
	default:
		showing = fmt.Sprintf("Showing %d - %d of %s", from, to, page.Total)
	}

	window := list.Window()
	if len(window) == 0 {
		return styles.MutedText.Render(showing)
	}
	tokens := make([]string, 0, len(window)+2)
	tokens = append(tokens, ternary(page.CurrentPage > 1, styles.AccentText.Render("‹"), styles.FaintText.Render("‹")))
	for _, tok := range window {
		switch {
		case tok.IsEllipsis():
			tokens = append(tokens, styles.FaintText.Render("…"))
		case tok.Page == page.CurrentPage:
			tokens = append(tokens, styles.Selected.Render(" "+tok.String()+" "))
		default:
			tokens = append(tokens, styles.Text.Render(tok.String()))
		}
	}
	tokens = append(tokens, ternary(page.CurrentPage < list.TotalPages(), styles.AccentText.Render("›"), styles.FaintText.Render("›")))
	bar := strings.Join(tokens, " ")

	gap := max(width-lipgloss.Width(showing)-lipgloss.Width(bar), 2)
	return styles.MutedText.Render(showing) + strings.Repeat(" ", gap) + bar
}

// renderStats renders the competitor distribution of the visible page.
func (m Model) renderStats(width int) string {
	styles := m.theme.Styles()
	stats := m.gold.list.Stats()
	if len(stats) == 0 {
		return styles.FaintText.Render("No data")
	}
	peak := 0
	for _, b := range stats {
		peak = max(peak, b.Count)
	}
	barWidth := max(width-10, 4)

	lines := []string{styles.FaintText.Render("this page only"), ""}
	for _, b := range stats {
		n := max(b.Count*barWidth/peak, 1)
		bar := styles.LevelStyle(b.Level).Render(strings.Repeat("█", n))
		lines = append(lines, fmt.Sprintf("%3d %s %s", b.Competitors, bar, styles.MutedText.Render(strconv.Itoa(b.Count))))
	}
	return strings.Join(lines, "\n")
}
