package calendar

import (
	"strings"
	"time"

	ical "github.com/arran4/golang-ical"

	"github.com/runnerr0/daynotes/internal/notes"
)

// ExportOptions configures ExportICS.
type ExportOptions struct {
	ProductID    string
	CalendarName string
	// Now stamps DTSTAMP; zero means time.Now.
	Now time.Time
}

// icsPriority maps note priorities onto RFC 5545 PRIORITY values
// (1 highest, 9 lowest). PriorityNone is left undefined.
var icsPriority = map[notes.Priority]string{
	notes.PriorityHigh:   "1",
	notes.PriorityMedium: "5",
	notes.PriorityLow:    "9",
}

// ExportICS renders every note that has text as an all-day VEVENT. Notes
// are emitted in date order and carry stable UIDs, so re-importing an
// export updates events instead of duplicating them.
func ExportICS(snap notes.Snapshot, opts ExportOptions) string {
	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}

	cal := ical.NewCalendar()
	cal.SetMethod(ical.MethodPublish)
	if opts.ProductID != "" {
		cal.SetProductId(opts.ProductID)
	}
	if opts.CalendarName != "" {
		cal.SetXWRCalName(opts.CalendarName)
	}

	for _, date := range snap.Keys() {
		r := snap[date]
		if !r.HasText() {
			continue
		}
		day := date.Time(time.UTC)

		event := cal.AddEvent(string(date) + "@daynotes")
		event.SetDtStampTime(now.UTC())
		event.SetAllDayStartAt(day)
		event.SetAllDayEndAt(day.AddDate(0, 0, 1))
		event.SetSummary(SummaryLine(r.Text))
		event.SetDescription(r.Text)
		if p, ok := icsPriority[r.Priority]; ok {
			event.SetProperty(ical.ComponentPropertyPriority, p)
		}
		event.SetProperty(ical.ComponentPropertyCategories, string(r.Priority))
	}

	return cal.Serialize()
}

// SummaryLine returns the first line of text, shortened to 60 runes.
func SummaryLine(text string) string {
	line, _, _ := strings.Cut(text, "\n")
	line = strings.TrimSpace(line)
	if r := []rune(line); len(r) > 60 {
		return string(r[:59]) + "…"
	}
	return line
}
