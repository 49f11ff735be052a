package tui

import (
	"math"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/metcalfc/moonriver/internal/segment"
	"github.com/metcalfc/moonriver/internal/session"
	"github.com/muesli/reflow/wordwrap"
)

type palette struct {
	background lipgloss.Color
	foreground lipgloss.Color
	accent     lipgloss.Color
}

var palettes = map[session.Theme]palette{
	session.ThemeLight: {background: "#F0E6D2", foreground: "#4A403A", accent: "#8B5E3C"},
	session.ThemeSepia: {background: "#FBF0D9", foreground: "#5B4636", accent: "#A0522D"},
	session.ThemeDark:  {background: "#1E1E1E", foreground: "#D4D4D4", accent: "#C8A165"},
}

func paletteFor(t session.Theme) palette {
	if p, ok := palettes[t]; ok {
		return p
	}
	return palettes[session.ThemeLight]
}

var (
	titleStyle = lipgloss.NewStyle().
			Bold(true).
			Padding(0, 1)

	authorStyle = lipgloss.NewStyle().
			Italic(true)

	statusStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#888888")).
			Padding(0, 1)

	controlsStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#666666")).
			Italic(true)

	notFoundStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFAA00")).
			Bold(true)
)

// measure is the text column width for a font size: larger type gets a
// narrower column, as it would on a page.
func measure(fontSize, width int) int {
	m := 100 - 2*fontSize
	if m > width-4 {
		m = width - 4
	}
	if m < 20 {
		m = 20
	}
	return m
}

// paragraphGap is the number of blank lines between paragraphs.
func paragraphGap(lineHeight float64) int {
	return max(1, int(math.Round(lineHeight-0.7)))
}

// doubleSpaced reports whether wrapped lines get a blank line between them.
func doubleSpaced(lineHeight float64) bool {
	return lineHeight >= 2.0
}

// paragraphs turns a page into blocks of text. HTML is flattened with its
// headings kept; plain text is split on blank lines.
func paragraphs(page string, isHTML bool) []segment.Block {
	if isHTML {
		return segment.Blocks(page)
	}
	var blocks []segment.Block
	for _, p := range strings.Split(strings.ReplaceAll(page, "\r\n", "\n"), "\n\n") {
		text := strings.Join(strings.Fields(p), " ")
		if text != "" {
			blocks = append(blocks, segment.Block{Text: text})
		}
	}
	return blocks
}

// renderPage lays out a page for the given settings and terminal width.
func renderPage(page string, isHTML bool, s session.Settings, width int) string {
	col := measure(int(math.Round(s.FontSize)), width)
	p := paletteFor(s.Theme)
	heading := lipgloss.NewStyle().Bold(true).Foreground(p.accent)

	gap := strings.Repeat("\n", paragraphGap(s.LineHeight)+1)
	lineSep := "\n"
	if doubleSpaced(s.LineHeight) {
		lineSep = "\n\n"
	}

	var out []string
	for _, b := range paragraphs(page, isHTML) {
		wrapped := wordwrap.String(b.Text, col)
		lines := strings.Split(wrapped, "\n")
		if b.Level > 0 {
			for i, l := range lines {
				lines[i] = heading.Render(l)
			}
		}
		out = append(out, strings.Join(lines, lineSep))
	}

	pad := max(0, (width-col)/2)
	return lipgloss.NewStyle().
		Foreground(p.foreground).
		Background(p.background).
		PaddingLeft(pad).
		Width(width).
		Render(strings.Join(out, gap))
}
