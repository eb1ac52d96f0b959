package storage

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/runnerr0/daynotes/internal/notes"
)

// SnapshotKey is the fixed key the whole note store is persisted under.
const SnapshotKey = "notes"

// Persister mirrors a note store into a KV as one snapshot blob.
type Persister struct {
	kv     KV
	logger *slog.Logger
}

// NewPersister returns a Persister writing through kv. A nil logger discards
// log output.
func NewPersister(kv KV, logger *slog.Logger) *Persister {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Persister{kv: kv, logger: logger}
}

// Load reads the persisted snapshot. It never fails: a missing, unreadable
// or malformed snapshot yields an empty one, and the problem is logged.
//
// read is false when the backend itself could not be read. The stored blob
// may still be intact in that case, so callers must not write over it.
func (p *Persister) Load(ctx context.Context) (snap notes.Snapshot, read bool) {
	data, err := p.kv.Get(ctx, SnapshotKey)
	if err != nil {
		if errors.Is(err, ErrNotFound) {
			return notes.Snapshot{}, true
		}
		p.logger.Warn("snapshot unreadable, starting empty", "key", SnapshotKey, "error", err)
		return notes.Snapshot{}, false
	}

	snap, skipped, err := DecodeSnapshot(data)
	if err != nil {
		p.logger.Warn("snapshot malformed, starting empty", "key", SnapshotKey, "error", err)
		return notes.Snapshot{}, true
	}
	if skipped > 0 {
		p.logger.Warn("dropped unreadable snapshot entries", "key", SnapshotKey, "skipped", skipped)
	}

	p.logger.Debug("snapshot loaded", "notes", len(snap))
	return snap, true
}

// Save overwrites the persisted snapshot with snap.
//
// An empty snap is never written: it would clobber a previously saved
// snapshot if a save ran before the initial load. Use Clear to remove the
// snapshot on purpose.
func (p *Persister) Save(ctx context.Context, snap notes.Snapshot) error {
	if len(snap) == 0 {
		p.logger.Debug("skipping save of empty snapshot", "key", SnapshotKey)
		return nil
	}

	data, err := EncodeSnapshot(snap)
	if err != nil {
		return err
	}
	if err := p.kv.Put(ctx, SnapshotKey, data); err != nil {
		return fmt.Errorf("save snapshot: %w", err)
	}

	p.logger.Debug("snapshot saved", "notes", len(snap), "bytes", len(data))
	return nil
}

// Clear removes the persisted snapshot.
func (p *Persister) Clear(ctx context.Context) error {
	if err := p.kv.Delete(ctx, SnapshotKey); err != nil {
		return fmt.Errorf("clear snapshot: %w", err)
	}
	p.logger.Debug("snapshot cleared", "key", SnapshotKey)
	return nil
}
