package notes

import (
	"fmt"
	"unicode/utf8"
)

// Op names the kind of mutation reported to observers.
type Op int

const (
	OpSet Op = iota
	OpDelete
)

func (o Op) String() string {
	switch o {
	case OpSet:
		return "set"
	case OpDelete:
		return "delete"
	default:
		return fmt.Sprintf("op(%d)", int(o))
	}
}

// Change describes a completed mutation. For OpDelete, Record holds the
// removed value.
type Change struct {
	Op     Op
	Date   DateKey
	Record Record
}

// Store maps days to notes and is the only mutator of note state.
//
// A Store is owned by a single goroutine and is not safe for concurrent use.
// Observers registered with Subscribe run synchronously, in registration
// order, before the mutating call returns.
type Store struct {
	records   map[DateKey]Record
	observers []func(Change)
}

// NewStore creates a store holding a copy of initial.
func NewStore(initial Snapshot) *Store {
	s := &Store{}
	s.Reset(initial)
	return s
}

// Subscribe registers fn to be called after every successful mutation.
func (s *Store) Subscribe(fn func(Change)) {
	s.observers = append(s.observers, fn)
}

// Get returns the record stored for date.
func (s *Store) Get(date DateKey) (Record, bool) {
	r, ok := s.records[date]
	return r, ok
}

// Set replaces or creates the record for date. An empty priority is stored
// as PriorityNone. Text must be valid UTF-8 so it survives persistence
// unchanged. Invalid input leaves the store unchanged.
func (s *Store) Set(date DateKey, text string, priority Priority) error {
	if !date.Valid() {
		return fmt.Errorf("set note: %w: %q", ErrInvalidDate, date)
	}
	if priority == "" {
		priority = PriorityNone
	}
	if !priority.Valid() {
		return fmt.Errorf("set note: %w: %q", ErrInvalidPriority, priority)
	}
	if !utf8.ValidString(text) {
		return fmt.Errorf("set note: %w: %q", ErrInvalidText, text)
	}

	r := Record{Text: text, Priority: priority}
	s.records[date] = r
	s.notify(Change{Op: OpSet, Date: date, Record: r})
	return nil
}

// SetText updates the text of date's record, keeping its priority.
func (s *Store) SetText(date DateKey, text string) error {
	cur, _ := s.Get(date)
	return s.Set(date, text, cur.Priority)
}

// SetPriority updates the priority of date's record, keeping its text.
func (s *Store) SetPriority(date DateKey, priority Priority) error {
	cur, _ := s.Get(date)
	return s.Set(date, cur.Text, priority)
}

// Delete removes date's record. Deleting an absent record is a no-op and
// does not notify observers.
func (s *Store) Delete(date DateKey) error {
	if !date.Valid() {
		return fmt.Errorf("delete note: %w: %q", ErrInvalidDate, date)
	}
	r, ok := s.records[date]
	if !ok {
		return nil
	}
	delete(s.records, date)
	s.notify(Change{Op: OpDelete, Date: date, Record: r})
	return nil
}

// Len returns the number of stored records, blank ones included.
func (s *Store) Len() int {
	return len(s.records)
}

// Snapshot returns a copy of the current contents.
func (s *Store) Snapshot() Snapshot {
	return Snapshot(s.records).Clone()
}

// Reset replaces the contents with snap without notifying observers. It is
// the load path; edits go through Set and friends.
func (s *Store) Reset(snap Snapshot) {
	s.records = make(map[DateKey]Record, len(snap))
	for k, v := range snap {
		if v.Priority == "" {
			v.Priority = PriorityNone
		}
		s.records[k] = v
	}
}

func (s *Store) notify(c Change) {
	for _, fn := range s.observers {
		fn(c)
	}
}
