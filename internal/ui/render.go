package ui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// bgPainter renders segments that keep a pane background across the gaps
// lipgloss leaves between separately styled strings.
type bgPainter struct {
	bg    lipgloss.Color
	space string
}

func newBgPainter(color string) bgPainter {
	bg := lipgloss.Color(color)
	return bgPainter{bg: bg, space: lipgloss.NewStyle().Background(bg).Render(" ")}
}

// paint renders text with style, including the spaces inside it.
func (p bgPainter) paint(text string, style lipgloss.Style) string {
	if text == "" {
		return ""
	}
	styled := style.Background(p.bg)
	if !strings.Contains(text, " ") {
		return styled.Render(text)
	}
	words := strings.Split(text, " ")
	for i, w := range words {
		if w != "" {
			words[i] = styled.Render(w)
		}
	}
	return strings.Join(words, p.space)
}

func (p bgPainter) spaces(n int) string {
	if n <= 0 {
		return ""
	}
	return lipgloss.NewStyle().Background(p.bg).Render(strings.Repeat(" ", n))
}

func (p bgPainter) join(parts []string, gap int) string {
	return strings.Join(parts, p.spaces(gap))
}

// fill pads content to width with the background color.
func (p bgPainter) fill(content string, width int) string {
	return lipgloss.NewStyle().Background(p.bg).Width(width).Render(content)
}

// renderBox frames content with the title set into the top border:
// ┌─── Title ───┐. Content lines beyond the box height are cut.
func (m Model) renderBox(title, content string, width, height int, focused bool) string {
	borderColor, bgColor := m.theme.Border, m.theme.SurfaceAlt
	if focused {
		borderColor, bgColor = m.theme.BorderFocus, m.theme.FocusBg
	}
	if width < 4 {
		width = 4
	}
	if height < 2 {
		height = 2
	}
	p := newBgPainter(bgColor)
	border := lipgloss.NewStyle().Foreground(lipgloss.Color(borderColor))
	titleStyle := lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color(m.theme.Text))

	inner := width - 2
	title = truncate(title, inner-4)
	left := max((inner-lipgloss.Width(title)-2)/2, 0)
	right := max(inner-lipgloss.Width(title)-2-left, 0)

	var b strings.Builder
	b.WriteString(p.paint("┌"+strings.Repeat("─", left), border))
	b.WriteString(p.paint(" "+title+" ", titleStyle))
	b.WriteString(p.paint(strings.Repeat("─", right)+"┐", border))
	b.WriteString("\n")

	lines := strings.Split(content, "\n")
	body := lipgloss.NewStyle().Width(inner).MaxWidth(inner).Background(lipgloss.Color(bgColor))
	for i := 0; i < height-2; i++ {
		var line string
		if i < len(lines) {
			line = lines[i]
		}
		b.WriteString(p.paint("│", border))
		b.WriteString(body.Render(line))
		b.WriteString(p.paint("│", border))
		b.WriteString("\n")
	}
	b.WriteString(p.paint("└"+strings.Repeat("─", inner)+"┘", border))
	return b.String()
}

// renderOverlay centers a bordered modal over the screen.
func (m Model) renderOverlay(content string, width int) string {
	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color(m.theme.Accent)).
		Padding(1, 2).
		Width(width).
		Render(content)
	return lipgloss.Place(
		m.width,
		m.height,
		lipgloss.Center,
		lipgloss.Center,
		modal,
		lipgloss.WithWhitespaceChars(" "),
		lipgloss.WithWhitespaceForeground(lipgloss.Color(m.theme.Background)),
	)
}
