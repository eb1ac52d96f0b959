// Package calendar decides how calendar cells are marked from note state and
// renders a terminal calendar that consumes those decisions.
package calendar

import (
	"time"

	"github.com/runnerr0/daynotes/internal/notes"
)

// Color is the marker color for a day cell.
type Color string

const (
	ColorRed     Color = "red"
	ColorAmber   Color = "amber"
	ColorGreen   Color = "green"
	ColorNeutral Color = "neutral"
)

// ColorFor maps a priority to its marker color. Unknown priorities get the
// neutral color.
func ColorFor(p notes.Priority) Color {
	switch p {
	case notes.PriorityHigh:
		return ColorRed
	case notes.PriorityMedium:
		return ColorAmber
	case notes.PriorityLow:
		return ColorGreen
	default:
		return ColorNeutral
	}
}

// Hex returns the display color as a hex triplet.
func (c Color) Hex() string {
	switch c {
	case ColorRed:
		return "#f5222d"
	case ColorAmber:
		return "#faad14"
	case ColorGreen:
		return "#52c41c"
	default:
		return "#8c8c8c"
	}
}

// Marker is the indicator shown on a day that has a note.
type Marker struct {
	Color    Color
	Priority notes.Priority
}

// CellKind tells day cells apart from month cells in the year view.
type CellKind int

const (
	CellDate CellKind = iota
	CellMonth
)

func (k CellKind) String() string {
	if k == CellMonth {
		return "month"
	}
	return "date"
}

// CellInfo is what the widget passes along with each cell it renders.
// Origin is the widget's own rendering of the cell.
type CellInfo struct {
	Kind   CellKind
	Origin string
}

// Cell is the annotation's answer for one cell. Month cells carry the
// widget's Origin untouched; day cells carry a marker when Marked is set.
type Cell struct {
	Origin string
	Marker Marker
	Marked bool
}

// CellRenderFunc is the per-cell hook a widget calls while rendering.
type CellRenderFunc func(current time.Time, info CellInfo) Cell

// Lookup is the read side of a note store.
type Lookup interface {
	Get(date notes.DateKey) (notes.Record, bool)
}

// Annotator derives cell markers from note state. It never mutates the
// store and every call is a single map lookup.
type Annotator struct {
	notes Lookup
}

func NewAnnotator(l Lookup) *Annotator {
	return &Annotator{notes: l}
}

// Annotate returns the marker for the wall-clock day of t.
func (a *Annotator) Annotate(t time.Time) (Marker, bool) {
	return a.AnnotateKey(notes.KeyOf(t))
}

// AnnotateKey returns the marker for date. Days without a note, or whose
// note has no text, get no marker.
func (a *Annotator) AnnotateKey(date notes.DateKey) (Marker, bool) {
	r, ok := a.notes.Get(date)
	if !ok || !r.HasText() {
		return Marker{}, false
	}
	return Marker{Color: ColorFor(r.Priority), Priority: r.Priority}, true
}

// CellRender is a CellRenderFunc. Only day cells are annotated.
func (a *Annotator) CellRender(current time.Time, info CellInfo) Cell {
	if info.Kind != CellDate {
		return Cell{Origin: info.Origin}
	}
	m, ok := a.Annotate(current)
	return Cell{Marker: m, Marked: ok}
}
