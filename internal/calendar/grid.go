package calendar

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/runnerr0/daynotes/internal/notes"
)

const markerGlyph = "●"

// plainGlyphs stand in for marker colors when output is not styled.
var plainGlyphs = map[Color]string{
	ColorRed:     "!",
	ColorAmber:   "*",
	ColorGreen:   "+",
	ColorNeutral: ".",
}

var (
	titleStyle    = lipgloss.NewStyle().Bold(true)
	weekdayStyle  = lipgloss.NewStyle().Faint(true)
	selectedStyle = lipgloss.NewStyle().Reverse(true)
)

// Grid renders month and year views in the terminal. Every cell goes
// through Render, the same hook a graphical calendar widget would call.
type Grid struct {
	Render     CellRenderFunc
	WeekStart  time.Weekday
	Fullscreen bool
	Selected   notes.DateKey
	Location   *time.Location
	// Styled enables colors. Without it markers use distinct ASCII glyphs.
	Styled bool
}

func (g Grid) loc() *time.Location {
	if g.Location == nil {
		return time.Local
	}
	return g.Location
}

func (g Grid) cellWidth() int {
	if g.Fullscreen {
		return 7
	}
	return 4
}

func (g Grid) render(t time.Time, info CellInfo) Cell {
	if g.Render == nil {
		return Cell{Origin: info.Origin}
	}
	return g.Render(t, info)
}

// glyph returns the marker symbol for c.
func (g Grid) glyph(c Color) string {
	if !g.Styled {
		if s, ok := plainGlyphs[c]; ok {
			return s
		}
		return plainGlyphs[ColorNeutral]
	}
	return lipgloss.NewStyle().Foreground(lipgloss.Color(c.Hex())).Render(markerGlyph)
}

func (g Grid) style(s lipgloss.Style, text string) string {
	if !g.Styled {
		return text
	}
	return s.Render(text)
}

// Month renders one month as a week grid followed by a legend.
func (g Grid) Month(year int, month time.Month) string {
	loc := g.loc()
	first := time.Date(year, month, 1, 0, 0, 0, 0, loc)
	daysIn := first.AddDate(0, 1, -1).Day()
	width := 7 * g.cellWidth()

	var b strings.Builder
	title := fmt.Sprintf("%s %d", month, year)
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, g.style(titleStyle, title)))
	b.WriteString("\n")

	var header strings.Builder
	for i := 0; i < 7; i++ {
		wd := time.Weekday((int(g.WeekStart) + i) % 7)
		header.WriteString(pad(" "+wd.String()[:2], g.cellWidth()))
	}
	b.WriteString(g.style(weekdayStyle, strings.TrimRight(header.String(), " ")))
	b.WriteString("\n")

	offset := (int(first.Weekday()) - int(g.WeekStart) + 7) % 7
	var row strings.Builder
	row.WriteString(strings.Repeat(" ", offset*g.cellWidth()))
	col := offset
	for day := 1; day <= daysIn; day++ {
		row.WriteString(g.dayCell(time.Date(year, month, day, 0, 0, 0, 0, loc)))
		col++
		if col == 7 {
			b.WriteString(strings.TrimRight(row.String(), " "))
			b.WriteString("\n")
			row.Reset()
			col = 0
		}
	}
	if col > 0 {
		b.WriteString(strings.TrimRight(row.String(), " "))
		b.WriteString("\n")
	}

	b.WriteString(g.Legend())
	b.WriteString("\n")
	return b.String()
}

func (g Grid) dayCell(d time.Time) string {
	c := g.render(d, CellInfo{Kind: CellDate, Origin: fmt.Sprintf("%2d", d.Day())})

	sel := " "
	num := fmt.Sprintf("%2d", d.Day())
	if g.Selected != "" && notes.KeyOf(d) == g.Selected {
		sel = ">"
		num = g.style(selectedStyle, num)
	}

	mark := " "
	if c.Marked {
		mark = g.glyph(c.Marker.Color)
	}
	return pad(sel+num+mark, g.cellWidth())
}

// Year renders twelve month cells. Month cells show the widget's own label,
// followed by the number of marked days in that month.
func (g Grid) Year(year int) string {
	loc := g.loc()
	const perRow = 4
	width := perRow * 12

	var b strings.Builder
	b.WriteString(lipgloss.PlaceHorizontal(width, lipgloss.Center, g.style(titleStyle, fmt.Sprint(year))))
	b.WriteString("\n")

	var row strings.Builder
	for m := time.January; m <= time.December; m++ {
		first := time.Date(year, m, 1, 0, 0, 0, 0, loc)
		c := g.render(first, CellInfo{Kind: CellMonth, Origin: m.String()[:3]})

		marked := 0
		for d := first; d.Month() == m; d = d.AddDate(0, 0, 1) {
			if g.render(d, CellInfo{Kind: CellDate, Origin: fmt.Sprintf("%2d", d.Day())}).Marked {
				marked++
			}
		}

		label := c.Origin
		if marked > 0 {
			label = fmt.Sprintf("%s %2d%s", c.Origin, marked, g.glyph(ColorNeutral))
		}
		row.WriteString(pad(label, 12))

		if m%perRow == 0 {
			b.WriteString(strings.TrimRight(row.String(), " "))
			b.WriteString("\n")
			row.Reset()
		}
	}
	return b.String()
}

// Legend explains the marker colors.
func (g Grid) Legend() string {
	parts := []string{
		g.glyph(ColorRed) + " high",
		g.glyph(ColorAmber) + " medium",
		g.glyph(ColorGreen) + " low",
		g.glyph(ColorNeutral) + " none",
	}
	return strings.Join(parts, "  ")
}

// pad right-pads s with spaces to the given display width.
func pad(s string, width int) string {
	w := lipgloss.Width(s)
	if w >= width {
		return s
	}
	return s + strings.Repeat(" ", width-w)
}
