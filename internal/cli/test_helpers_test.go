package cli

import (
	"bytes"
	"context"
	"database/sql"
	"io"
	"log/slog"
	"os"
	"testing"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/stretchr/testify/require"

	"github.com/runnerr0/daynotes/internal/config"
	"github.com/runnerr0/daynotes/internal/notes"
	"github.com/runnerr0/daynotes/internal/storage"
)

// captureOutput captures stdout during fn execution and returns it as a string.
func captureOutput(t *testing.T, fn func()) string {
	t.Helper()
	old := os.Stdout
	r, w, err := os.Pipe()
	require.NoError(t, err)
	os.Stdout = w

	fn()

	w.Close()
	os.Stdout = old

	var buf bytes.Buffer
	_, _ = io.Copy(&buf, r)
	return buf.String()
}

// setNow pins the package clock for the duration of the test.
func setNow(t *testing.T, ts time.Time) {
	t.Helper()
	old := now
	now = func() time.Time { return ts }
	t.Cleanup(func() { now = old })
}

func discardLogger() *slog.Logger {
	return slog.New(slog.DiscardHandler)
}

// newTestEnv returns an env over in-memory storage.
func newTestEnv(t *testing.T) *env {
	t.Helper()
	return newEnv(context.Background(), config.DefaultConfig(), discardLogger(), memoryBackend())
}

// newSQLiteTestEnv returns an env over a migrated in-memory SQLite database.
func newSQLiteTestEnv(t *testing.T) *env {
	t.Helper()
	db, err := sql.Open("sqlite3", ":memory:")
	require.NoError(t, err)
	db.SetMaxOpenConns(1)
	t.Cleanup(func() { db.Close() })

	require.NoError(t, storage.NewMigrationRunner(db, "memory").Run())

	kv, err := storage.NewSQLiteKV(db)
	require.NoError(t, err)
	t.Cleanup(func() { kv.Close() })

	b := &backend{Kind: config.BackendSQLite, Location: ":memory:", kv: kv, sqlite: kv, db: db}
	return newEnv(context.Background(), config.DefaultConfig(), discardLogger(), b)
}

// newFileTestEnv returns an env over a file backend rooted at dir.
func newFileTestEnv(t *testing.T, dir string) *env {
	t.Helper()
	cfg := config.DefaultConfig()
	cfg.Storage.Backend = config.BackendFile
	cfg.Storage.SnapshotDir = dir

	b, err := openBackend(cfg)
	require.NoError(t, err)
	return newEnv(context.Background(), cfg, discardLogger(), b)
}

// seed stores a note through the env's session.
func seed(t *testing.T, e *env, date notes.DateKey, text string, p notes.Priority) {
	t.Helper()
	require.NoError(t, e.session.SelectKey(date))
	require.NoError(t, e.session.Edit(text, p))
}

// loadStored reads the persisted snapshot through p, requiring the backend
// to be readable.
func loadStored(t *testing.T, p *storage.Persister) notes.Snapshot {
	t.Helper()
	snap, read := p.Load(context.Background())
	require.True(t, read, "storage unreadable")
	return snap
}
