package cli

import (
	"context"
	"database/sql"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	_ "github.com/mattn/go-sqlite3"

	"github.com/runnerr0/daynotes/internal/config"
	"github.com/runnerr0/daynotes/internal/notes"
	"github.com/runnerr0/daynotes/internal/session"
	"github.com/runnerr0/daynotes/internal/storage"
)

// now is the clock used for date defaults. Tests replace it.
var now = time.Now

// backend is the opened storage behind a session.
type backend struct {
	Kind     string // sqlite, file or memory
	Location string
	// WatchFile is the file that changes when the snapshot is written.
	// Empty for the memory backend.
	WatchFile string

	kv     storage.KV
	sqlite *storage.SQLiteKV
	db     *sql.DB
}

func (b *backend) Close() error {
	if err := b.kv.Close(); err != nil {
		return err
	}
	if b.db != nil {
		return b.db.Close()
	}
	return nil
}

func memoryBackend() *backend {
	return &backend{Kind: "memory", Location: "(in memory)", kv: storage.NewMemoryKV()}
}

// openBackend opens the storage backend the config selects, running
// migrations for SQLite.
func openBackend(cfg *config.Config) (*backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendFile:
		dir, err := cfg.SnapshotPath()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("create snapshot directory: %w", err)
		}
		kv := storage.NewFileKV(dir)
		return &backend{Kind: config.BackendFile, Location: dir, WatchFile: kv.Path(storage.SnapshotKey), kv: kv}, nil

	default:
		dbPath, err := cfg.SQLitePath()
		if err != nil {
			return nil, err
		}
		if err := os.MkdirAll(filepath.Dir(dbPath), 0755); err != nil {
			return nil, fmt.Errorf("create database directory: %w", err)
		}

		db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on")
		if err != nil {
			return nil, fmt.Errorf("open database: %w", err)
		}

		runner := storage.NewMigrationRunner(db, cfg.Storage.SQLiteJournalMode)
		if err := runner.Run(); err != nil {
			db.Close()
			return nil, fmt.Errorf("run migrations: %w", err)
		}

		kv, err := storage.NewSQLiteKV(db)
		if err != nil {
			db.Close()
			return nil, fmt.Errorf("create store: %w", err)
		}
		return &backend{Kind: config.BackendSQLite, Location: dbPath, WatchFile: dbPath, kv: kv, sqlite: kv, db: db}, nil
	}
}

// env is everything a command needs: config, logger, storage and the
// session built on top of them.
type env struct {
	cfg       *config.Config
	logger    *slog.Logger
	backend   *backend
	persister *storage.Persister
	session   *session.Session

	closeLog func() error
}

// newEnv wires a session over an already opened backend.
func newEnv(ctx context.Context, cfg *config.Config, logger *slog.Logger, b *backend) *env {
	p := storage.NewPersister(b.kv, logger)
	return &env{
		cfg:       cfg,
		logger:    logger,
		backend:   b,
		persister: p,
		session:   session.Open(ctx, p, logger),
		closeLog:  func() error { return nil },
	}
}

// openEnv loads config, sets up logging and opens storage. Storage that
// cannot be opened is not fatal: the session runs in memory and nothing
// is kept.
func openEnv(ctx context.Context, globals *GlobalFlags) (*env, error) {
	cfg, err := loadConfig(globals)
	if err != nil {
		return nil, err
	}

	logger, closeLog, err := newLogger(cfg, globals != nil && globals.Verbose)
	if err != nil {
		return nil, err
	}

	b, err := openBackend(cfg)
	if err != nil {
		logger.Warn("storage unavailable, notes will not be kept", "backend", cfg.Storage.Backend, "error", err)
		b = memoryBackend()
	}

	e := newEnv(ctx, cfg, logger, b)
	e.closeLog = closeLog
	return e, nil
}

func (e *env) Close() {
	if err := e.backend.Close(); err != nil {
		e.logger.Warn("close storage", "error", err)
	}
	_ = e.closeLog()
}

// loadConfig reads --config, or the default path, creating it on first run.
func loadConfig(globals *GlobalFlags) (*config.Config, error) {
	if globals == nil || globals.Config == "" {
		return config.LoadOrCreate()
	}
	path, err := config.ExpandPath(globals.Config)
	if err != nil {
		return nil, err
	}
	return config.LoadOrCreateAt(path)
}

// resolveDate parses a --date value. Empty means today.
func resolveDate(s string) (notes.DateKey, error) {
	if s == "" {
		return notes.KeyOf(now()), nil
	}
	key, err := notes.ParseDateKey(s)
	if err != nil {
		return "", fmt.Errorf("invalid --date %q: want YYYY-MM-DD", s)
	}
	return key, nil
}

// selectDate parses s and selects it in the session.
func selectDate(s *session.Session, date string) (notes.DateKey, error) {
	key, err := resolveDate(date)
	if err != nil {
		return "", err
	}
	if err := s.SelectKey(key); err != nil {
		return "", err
	}
	return key, nil
}

// wantJSON reports whether --json was given.
func wantJSON(globals *GlobalFlags) bool {
	return globals != nil && globals.JSON
}
