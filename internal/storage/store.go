package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"
)

// SQLiteKV implements KV backed by a SQLite database. Every write is
// recorded in audit_log within the same transaction.
type SQLiteKV struct {
	db *sql.DB

	// Prepared statements
	getValue    *sql.Stmt
	putValue    *sql.Stmt
	deleteValue *sql.Stmt
	insertAudit *sql.Stmt
}

var _ KV = (*SQLiteKV)(nil)

// NewSQLiteKV creates a new SQLiteKV from an already-opened and migrated database.
func NewSQLiteKV(db *sql.DB) (*SQLiteKV, error) {
	s := &SQLiteKV{db: db}

	if err := s.prepareStatements(); err != nil {
		s.Close()
		return nil, fmt.Errorf("prepare statements: %w", err)
	}

	return s, nil
}

func (s *SQLiteKV) prepareStatements() error {
	var err error

	s.getValue, err = s.db.Prepare(`SELECT value FROM kv WHERE key = ?`)
	if err != nil {
		return err
	}

	s.putValue, err = s.db.Prepare(`
		INSERT INTO kv (key, value, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(key) DO UPDATE SET value = excluded.value, updated_at = excluded.updated_at
	`)
	if err != nil {
		return err
	}

	s.deleteValue, err = s.db.Prepare(`DELETE FROM kv WHERE key = ?`)
	if err != nil {
		return err
	}

	s.insertAudit, err = s.db.Prepare(`
		INSERT INTO audit_log (action, key, detail, ts) VALUES (?, ?, ?, ?)
	`)
	if err != nil {
		return err
	}

	return nil
}

// parseTimestamp tries several common SQLite timestamp formats.
func parseTimestamp(s string) (time.Time, error) {
	formats := []string{
		time.RFC3339Nano,
		time.RFC3339,
		"2006-01-02T15:04:05Z",
		"2006-01-02 15:04:05",
		"2006-01-02T15:04:05.999999999-07:00",
	}
	for _, f := range formats {
		if t, err := time.Parse(f, s); err == nil {
			return t, nil
		}
	}
	return time.Time{}, fmt.Errorf("cannot parse timestamp: %s", s)
}

// Get returns the value stored under key, or ErrNotFound.
func (s *SQLiteKV) Get(ctx context.Context, key string) ([]byte, error) {
	var value []byte
	err := s.getValue.QueryRowContext(ctx, key).Scan(&value)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrNotFound
		}
		return nil, fmt.Errorf("get %s: %w", key, err)
	}
	return value, nil
}

// Put overwrites the value stored under key and records the write.
func (s *SQLiteKV) Put(ctx context.Context, key string, value []byte) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	now := time.Now().UTC().Format(time.RFC3339Nano)

	if _, err := tx.StmtContext(ctx, s.putValue).ExecContext(ctx, key, value, now); err != nil {
		return fmt.Errorf("put %s: %w", key, err)
	}

	detail := fmt.Sprintf("%d bytes", len(value))
	if _, err := tx.StmtContext(ctx, s.insertAudit).ExecContext(ctx, "put", key, detail, now); err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}

	return tx.Commit()
}

// Delete removes key. Deleting an absent key is not an error and is not
// audited.
func (s *SQLiteKV) Delete(ctx context.Context, key string) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer tx.Rollback() //nolint:errcheck

	res, err := tx.StmtContext(ctx, s.deleteValue).ExecContext(ctx, key)
	if err != nil {
		return fmt.Errorf("delete %s: %w", key, err)
	}

	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return nil
	}

	now := time.Now().UTC().Format(time.RFC3339Nano)
	if _, err := tx.StmtContext(ctx, s.insertAudit).ExecContext(ctx, "delete", key, "", now); err != nil {
		return fmt.Errorf("insert audit: %w", err)
	}

	return tx.Commit()
}

// RecentAudit returns the newest audit entries, newest first.
func (s *SQLiteKV) RecentAudit(ctx context.Context, limit int) ([]AuditEntry, error) {
	if limit <= 0 {
		limit = 10
	}

	rows, err := s.db.QueryContext(ctx,
		"SELECT action, key, detail, ts FROM audit_log ORDER BY id DESC LIMIT ?", limit,
	)
	if err != nil {
		return nil, fmt.Errorf("query audit log: %w", err)
	}
	defer rows.Close()

	entries := []AuditEntry{}
	for rows.Next() {
		var e AuditEntry
		var tsStr string
		if err := rows.Scan(&e.Action, &e.Key, &e.Detail, &tsStr); err != nil {
			return nil, fmt.Errorf("scan audit entry: %w", err)
		}
		e.Time, _ = parseTimestamp(tsStr)
		entries = append(entries, e)
	}

	return entries, rows.Err()
}

// PurgeAll deletes every stored value and the audit log.
func (s *SQLiteKV) PurgeAll(ctx context.Context) error {
	stmts := []string{
		"DELETE FROM kv",
		"DELETE FROM audit_log",
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("purge (%s): %w", stmt, err)
		}
	}
	return nil
}

// GetStats returns aggregate statistics about the database.
func (s *SQLiteKV) GetStats(ctx context.Context) (*Stats, error) {
	stats := &Stats{}

	err := s.db.QueryRowContext(ctx,
		"SELECT COUNT(*), COALESCE(SUM(LENGTH(value)), 0) FROM kv",
	).Scan(&stats.Keys, &stats.ValueBytes)
	if err != nil {
		return nil, fmt.Errorf("count keys: %w", err)
	}

	if stats.Keys > 0 {
		var lastStr string
		err = s.db.QueryRowContext(ctx, "SELECT MAX(updated_at) FROM kv").Scan(&lastStr)
		if err != nil {
			return nil, fmt.Errorf("last update: %w", err)
		}
		stats.LastUpdated, _ = parseTimestamp(lastStr)
	}

	err = s.db.QueryRowContext(ctx, "SELECT COUNT(*) FROM audit_log").Scan(&stats.AuditEntries)
	if err != nil {
		return nil, fmt.Errorf("count audit entries: %w", err)
	}

	return stats, nil
}

// Close releases all prepared statements. The underlying *sql.DB is NOT
// closed; that is the caller's responsibility.
func (s *SQLiteKV) Close() error {
	stmts := []*sql.Stmt{
		s.getValue, s.putValue, s.deleteValue, s.insertAudit,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}
	return nil
}
