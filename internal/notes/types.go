package notes

import (
	"errors"
	"fmt"
	"sort"
	"strings"
	"time"
)

// dateLayout is the canonical Date Key format.
const dateLayout = "2006-01-02"

var (
	ErrInvalidDate     = errors.New("invalid date key")
	ErrInvalidPriority = errors.New("invalid priority")
	ErrInvalidText     = errors.New("note text is not valid UTF-8")
)

// DateKey identifies a calendar day in canonical YYYY-MM-DD form.
type DateKey string

// ParseDateKey validates s as a canonical date key. Non-padded forms
// ("2024-3-1") and days that do not exist ("2024-02-30") are rejected.
func ParseDateKey(s string) (DateKey, error) {
	t, err := time.Parse(dateLayout, s)
	if err != nil {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	if t.Format(dateLayout) != s {
		return "", fmt.Errorf("%w: %q", ErrInvalidDate, s)
	}
	return DateKey(s), nil
}

// KeyOf returns the key for the wall-clock day of t in t's own location.
func KeyOf(t time.Time) DateKey {
	return DateKey(t.Format(dateLayout))
}

// Valid reports whether k is a canonical date key.
func (k DateKey) Valid() bool {
	_, err := ParseDateKey(string(k))
	return err == nil
}

// Time returns midnight of the day in loc. The zero time is returned for an
// invalid key.
func (k DateKey) Time(loc *time.Location) time.Time {
	if loc == nil {
		loc = time.Local
	}
	t, err := time.ParseInLocation(dateLayout, string(k), loc)
	if err != nil {
		return time.Time{}
	}
	return t
}

func (k DateKey) String() string { return string(k) }

// Priority is the urgency tag attached to a note.
type Priority string

const (
	PriorityNone   Priority = "none"
	PriorityLow    Priority = "low"
	PriorityMedium Priority = "medium"
	PriorityHigh   Priority = "high"
)

// Priorities lists every accepted priority, lowest first.
var Priorities = []Priority{PriorityNone, PriorityLow, PriorityMedium, PriorityHigh}

// ParsePriority accepts a priority name case-insensitively. Empty input
// means PriorityNone.
func ParsePriority(s string) (Priority, error) {
	p := Priority(strings.ToLower(strings.TrimSpace(s)))
	if p == "" {
		return PriorityNone, nil
	}
	if !p.Valid() {
		return "", fmt.Errorf("%w: %q (use none, low, medium, or high)", ErrInvalidPriority, s)
	}
	return p, nil
}

// Valid reports whether p is one of the enumerated priorities.
func (p Priority) Valid() bool {
	switch p {
	case PriorityNone, PriorityLow, PriorityMedium, PriorityHigh:
		return true
	}
	return false
}

// Record is the note attached to one day.
type Record struct {
	Text     string   `json:"text"`
	Priority Priority `json:"priority"`
}

// HasText reports whether the record carries any text. Only records with
// text are marked on the calendar.
func (r Record) HasText() bool {
	return r.Text != ""
}

// IsBlank reports whether the record is equivalent to no note at all.
func (r Record) IsBlank() bool {
	return r.Text == "" && (r.Priority == PriorityNone || r.Priority == "")
}

// Snapshot is a full copy of the store contents.
type Snapshot map[DateKey]Record

// Keys returns the snapshot's date keys in ascending order.
func (s Snapshot) Keys() []DateKey {
	keys := make([]DateKey, 0, len(s))
	for k := range s {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool { return keys[i] < keys[j] })
	return keys
}

// Clone returns an independent copy of s.
func (s Snapshot) Clone() Snapshot {
	out := make(Snapshot, len(s))
	for k, v := range s {
		out[k] = v
	}
	return out
}
