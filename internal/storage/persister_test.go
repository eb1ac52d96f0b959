package storage

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"pgregory.net/rapid"

	"github.com/runnerr0/daynotes/internal/notes"
)

// failingKV simulates unavailable storage.
type failingKV struct{ err error }

func (f failingKV) Get(context.Context, string) ([]byte, error) { return nil, f.err }
func (f failingKV) Put(context.Context, string, []byte) error { return f.err }
func (f failingKV) Delete(context.Context, string) error { return f.err }
func (f failingKV) Close() error { return nil }

func testLogger(buf *bytes.Buffer) *slog.Logger {
	return slog.New(slog.NewTextHandler(buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
}

// load reads p's snapshot and requires the backend to have been readable.
func load(t *testing.T, p *Persister) notes.Snapshot {
	t.Helper()
	snap, read := p.Load(context.Background())
	require.True(t, read, "backend unreadable")
	return snap
}

func TestPersister_LoadMissingIsEmpty(t *testing.T) {
	p := NewPersister(NewMemoryKV(), nil)

	snap, read := p.Load(context.Background())
	assert.True(t, read)
	assert.NotNil(t, snap)
	assert.Empty(t, snap)
}

func TestPersister_LoadMalformedIsEmpty(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.Put(ctx, SnapshotKey, []byte("{{{ corrupt")))

	var logs bytes.Buffer
	p := NewPersister(kv, testLogger(&logs))

	snap, read := p.Load(ctx)
	assert.True(t, read, "a malformed blob was still read")
	assert.Empty(t, snap)
	assert.Contains(t, logs.String(), "snapshot malformed")
}

func TestPersister_LoadUnavailableIsEmpty(t *testing.T) {
	var logs bytes.Buffer
	p := NewPersister(failingKV{err: errors.New("disk on fire")}, testLogger(&logs))

	snap, read := p.Load(context.Background())
	assert.False(t, read)
	assert.Empty(t, snap)
	assert.Contains(t, logs.String(), "disk on fire")
}

func TestPersister_SaveLoadRoundtrip(t *testing.T) {
	p := NewPersister(NewMemoryKV(), nil)
	ctx := context.Background()

	want := notes.Snapshot{
		"2024-03-01": {Text: "Dentist", Priority: notes.PriorityMedium},
		"2024-03-02": {Text: "", Priority: notes.PriorityHigh},
	}
	require.NoError(t, p.Save(ctx, want))
	assert.Equal(t, want, load(t, p))
}

func TestPersister_LoadLegacySnapshot(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()
	require.NoError(t, kv.Put(ctx, SnapshotKey, []byte(`{"2024-03-01": "Dentist"}`)))

	snap := load(t, NewPersister(kv, nil))
	assert.Equal(t, notes.Snapshot{
		"2024-03-01": {Text: "Dentist", Priority: notes.PriorityNone},
	}, snap)
}

func TestPersister_EmptySaveKeepsExistingSnapshot(t *testing.T) {
	kv := NewMemoryKV()
	p := NewPersister(kv, nil)
	ctx := context.Background()

	existing := notes.Snapshot{"2024-03-01": {Text: "keep me", Priority: notes.PriorityLow}}
	require.NoError(t, p.Save(ctx, existing))

	require.NoError(t, p.Save(ctx, notes.Snapshot{}))
	require.NoError(t, p.Save(ctx, nil))

	assert.Equal(t, existing, load(t, p))
}

func TestPersister_EmptySaveWritesNothing(t *testing.T) {
	kv := NewMemoryKV()
	ctx := context.Background()

	require.NoError(t, NewPersister(kv, nil).Save(ctx, notes.Snapshot{}))

	_, err := kv.Get(ctx, SnapshotKey)
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestPersister_Clear(t *testing.T) {
	p := NewPersister(NewMemoryKV(), nil)
	ctx := context.Background()

	require.NoError(t, p.Save(ctx, notes.Snapshot{"2024-03-01": {Text: "x", Priority: notes.PriorityNone}}))
	require.NoError(t, p.Clear(ctx))

	assert.Empty(t, load(t, p))
}

func TestPersister_SaveFailureIsReturned(t *testing.T) {
	p := NewPersister(failingKV{err: errors.New("quota exceeded")}, nil)

	err := p.Save(context.Background(), notes.Snapshot{"2024-03-01": {Text: "x", Priority: notes.PriorityNone}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "quota exceeded")
}

func TestPersister_SQLiteBackend(t *testing.T) {
	store := openTestStore(t)
	p := NewPersister(store, nil)
	ctx := context.Background()

	want := notes.Snapshot{"2024-03-01": {Text: "Dentist", Priority: notes.PriorityMedium}}
	require.NoError(t, p.Save(ctx, want))
	assert.Equal(t, want, load(t, p))
}

func TestPersister_FileBackend(t *testing.T) {
	dir := t.TempDir()
	ctx := context.Background()

	want := notes.Snapshot{"2024-03-01": {Text: "Dentist", Priority: notes.PriorityMedium}}
	require.NoError(t, NewPersister(NewFileKV(dir), nil).Save(ctx, want))

	// A fresh persister over the same directory sees the saved notes.
	assert.Equal(t, want, load(t, NewPersister(NewFileKV(dir), nil)))
}

// --- Properties ---

func snapshotGen() *rapid.Generator[notes.Snapshot] {
	return rapid.Custom(func(t *rapid.T) notes.Snapshot {
		n := rapid.IntRange(0, 20).Draw(t, "n")
		snap := make(notes.Snapshot, n)
		base := time.Date(2000, 1, 1, 0, 0, 0, 0, time.UTC)
		for i := 0; i < n; i++ {
			day := rapid.IntRange(0, 365*40).Draw(t, "day")
			snap[notes.KeyOf(base.AddDate(0, 0, day))] = notes.Record{
				Text:     rapid.String().Draw(t, "text"),
				Priority: rapid.SampledFrom(notes.Priorities).Draw(t, "priority"),
			}
		}
		return snap
	})
}

func TestPersister_Roundtrip_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		p := NewPersister(NewMemoryKV(), nil)
		ctx := context.Background()
		snap := snapshotGen().Draw(t, "snapshot")

		if err := p.Save(ctx, snap); err != nil {
			t.Fatalf("save: %v", err)
		}

		got, read := p.Load(ctx)
		if !read {
			t.Fatalf("memory backend reported unreadable")
		}
		if len(got) != len(snap) {
			t.Fatalf("loaded %d notes, saved %d", len(got), len(snap))
		}
		for k, want := range snap {
			if got[k] != want {
				t.Fatalf("note %s: got %+v, want %+v", k, got[k], want)
			}
		}
	})
}

func TestPersister_StoredTextSurvivesRoundtrip_Properties(t *testing.T) {
	rapid.Check(t, func(t *rapid.T) {
		text := string(rapid.SliceOf(rapid.Byte()).Draw(t, "text"))
		store := notes.NewStore(nil)
		if err := store.Set("2024-03-01", text, notes.PriorityLow); err != nil {
			if !errors.Is(err, notes.ErrInvalidText) {
				t.Fatalf("unexpected error: %v", err)
			}
			return
		}

		p := NewPersister(NewMemoryKV(), nil)
		ctx := context.Background()
		if err := p.Save(ctx, store.Snapshot()); err != nil {
			t.Fatalf("save: %v", err)
		}
		got, _ := p.Load(ctx)
		if got["2024-03-01"].Text != text {
			t.Fatalf("text changed in storage: got %q, want %q", got["2024-03-01"].Text, text)
		}
	})
}
