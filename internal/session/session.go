// Package session coordinates the note store, its persistence, the selected
// day and calendar annotation for one interactive session.
package session

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/runnerr0/daynotes/internal/calendar"
	"github.com/runnerr0/daynotes/internal/notes"
	"github.com/runnerr0/daynotes/internal/storage"
)

// ErrNoSelection is returned by panel edits when no day is selected.
var ErrNoSelection = errors.New("no day selected")

// Persister is the durable side of a session.
type Persister interface {
	Load(ctx context.Context) (notes.Snapshot, bool)
	Save(ctx context.Context, snap notes.Snapshot) error
	Clear(ctx context.Context) error
}

var _ Persister = (*storage.Persister)(nil)

// Session owns the note store and the selected day. Like the store, it
// belongs to one goroutine.
type Session struct {
	store     *notes.Store
	persister Persister
	annotator *calendar.Annotator
	logger    *slog.Logger

	selected    notes.DateKey
	hasSelected bool

	// writable is false while the stored snapshot could not be read. Writing
	// then would replace notes this session never saw.
	writable bool
}

// Open loads the persisted snapshot and returns a session whose every store
// mutation is written back. The persistence hook is attached only after the
// load completes, so no write can precede it.
//
// If the storage backend cannot be read the session still opens, empty, but
// edits stay in memory only until a Reload succeeds.
func Open(ctx context.Context, p Persister, logger *slog.Logger) *Session {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}

	snap, read := p.Load(ctx)
	s := &Session{
		store:     notes.NewStore(snap),
		persister: p,
		logger:    logger,
		writable:  read,
	}
	s.annotator = calendar.NewAnnotator(s.store)
	s.store.Subscribe(s.persist)

	if !read {
		logger.Warn("storage unreadable, edits stay in memory only")
	}
	logger.Debug("session opened", "notes", s.store.Len())
	return s
}

// Persisting reports whether edits are being written to storage.
func (s *Session) Persisting() bool { return s.writable }

// persist writes the store back after a mutation. Failures are logged and
// never reach the editor: the in-memory store stays authoritative and the
// next mutation tries again.
func (s *Session) persist(c notes.Change) {
	if !s.writable {
		s.logger.Debug("storage unreadable, change kept in memory", "op", c.Op, "date", c.Date)
		return
	}
	ctx := context.Background()
	snap := s.store.Snapshot()

	var err error
	if c.Op == notes.OpDelete && len(snap) == 0 {
		err = s.persister.Clear(ctx)
	} else {
		err = s.persister.Save(ctx, snap)
	}
	if err != nil {
		s.logger.Warn("notes not persisted", "op", c.Op, "date", c.Date, "error", err)
	}
}

// Store returns the session's note store.
func (s *Session) Store() *notes.Store { return s.store }

// Annotator returns the calendar annotator reading the session's store.
func (s *Session) Annotator() *calendar.Annotator { return s.annotator }

// Select handles a calendar selection event for the wall-clock day of t.
func (s *Session) Select(t time.Time) notes.DateKey {
	key := notes.KeyOf(t)
	s.selected, s.hasSelected = key, true
	return key
}

// SelectKey selects date.
func (s *Session) SelectKey(date notes.DateKey) error {
	if !date.Valid() {
		return notes.ErrInvalidDate
	}
	s.selected, s.hasSelected = date, true
	return nil
}

// Selected returns the selected day.
func (s *Session) Selected() (notes.DateKey, bool) {
	return s.selected, s.hasSelected
}

// Current returns the selected day's record. With no selection, or no note
// on that day, it returns an empty record with PriorityNone.
func (s *Session) Current() notes.Record {
	if !s.hasSelected {
		return notes.Record{Priority: notes.PriorityNone}
	}
	r, ok := s.store.Get(s.selected)
	if !ok {
		return notes.Record{Priority: notes.PriorityNone}
	}
	return r
}

// EditText replaces the selected day's text.
func (s *Session) EditText(text string) error {
	if !s.hasSelected {
		return ErrNoSelection
	}
	return s.store.SetText(s.selected, text)
}

// EditPriority replaces the selected day's priority.
func (s *Session) EditPriority(p notes.Priority) error {
	if !s.hasSelected {
		return ErrNoSelection
	}
	return s.store.SetPriority(s.selected, p)
}

// Edit replaces the selected day's whole record.
func (s *Session) Edit(text string, p notes.Priority) error {
	if !s.hasSelected {
		return ErrNoSelection
	}
	return s.store.Set(s.selected, text, p)
}

// DeleteSelected removes the selected day's note.
func (s *Session) DeleteSelected() error {
	if !s.hasSelected {
		return ErrNoSelection
	}
	return s.store.Delete(s.selected)
}

// Reload replaces the store contents with the persisted snapshot, keeping
// the selection. Nothing is written back. If storage cannot be read the
// in-memory contents are kept and writes are suspended; a successful reload
// resumes them.
func (s *Session) Reload(ctx context.Context) {
	snap, read := s.persister.Load(ctx)
	if !read {
		if s.writable {
			s.logger.Warn("storage unreadable, edits stay in memory only")
		}
		s.writable = false
		return
	}
	s.store.Reset(snap)
	s.writable = true
	s.logger.Debug("session reloaded", "notes", s.store.Len())
}
