package storage

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by KV.Get when the key holds no value.
var ErrNotFound = errors.New("key not found")

// KV is a durable key-value blob store. Values are opaque bytes written and
// read whole.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Stats holds aggregate statistics about a SQLite-backed store.
type Stats struct {
	Keys         int64
	ValueBytes   int64
	LastUpdated  time.Time
	AuditEntries int64
}

// AuditEntry is one recorded write against the store.
type AuditEntry struct {
	Action string
	Key    string
	Detail string
	Time   time.Time
}
