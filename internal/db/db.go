package db

import (
	"context"
	"time"
)

// Store is the storage facade. Consumers depend on the narrow sub-interfaces,
// the composition root wires the full thing.
type Store interface {
	Pinger
	HashStore
	KVStore
	Close()
	WaitForReady(ctx context.Context, timeout time.Duration) error
}

// Pinger checks database connectivity.
type Pinger interface {
	Ping(ctx context.Context) error
}

// HashStore provides read access over the hashes the enrollment process
// writes. The core never writes employee data, so there is no HSet here.
type HashStore interface {
	HGetAll(ctx context.Context, key string) (map[string]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	Scan(ctx context.Context, pattern string) ([]string, error)
}

// KVStore provides plain key-value operations. SetNX is the storage-level
// uniqueness primitive behind the one-record-per-employee-per-day guarantee.
type KVStore interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	SetNX(ctx context.Context, key string, value []byte) (bool, error)
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
}
