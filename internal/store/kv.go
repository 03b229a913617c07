// Package store provides the durable key-value backends behind the analysis cache.
package store

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"
)

// ErrNotFound is returned by KV.Get when the key has no entry.
var ErrNotFound = errors.New("store: key not found")

// KV is a durable key-value store. Put overwrites any prior value and
// Delete of a missing key is not an error.
type KV interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Put(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	Close() error
}

// Timestamper is implemented by backends that record when a key was written.
type Timestamper interface {
	UpdatedAt(ctx context.Context, key string) (time.Time, error)
}

// Backend names accepted by Open.
const (
	BackendSQLite = "sqlite"
	BackendRedis  = "redis"
	BackendMemory = "memory"
)

// Options selects and configures a backend for Open.
type Options struct {
	Backend    string
	SQLitePath string
	Redis      RedisOptions
}

// Open returns the backend named by opts.Backend. An empty name means SQLite.
func Open(ctx context.Context, opts Options) (KV, error) {
	switch strings.ToLower(strings.TrimSpace(opts.Backend)) {
	case "", BackendSQLite:
		if opts.SQLitePath == "" {
			return nil, errors.New("store: sqlite path is empty")
		}
		return OpenSQLite(filepath.Clean(opts.SQLitePath))
	case BackendRedis:
		client, err := DialRedis(ctx, opts.Redis)
		if err != nil {
			return nil, err
		}
		return NewRedis(client), nil
	case BackendMemory:
		return NewMemory(), nil
	default:
		return nil, fmt.Errorf("store: unknown backend %q", opts.Backend)
	}
}
