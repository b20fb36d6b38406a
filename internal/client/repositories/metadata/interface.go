// Package metadata stores small key/value records in the local SQLite file.
// The session token lives here under common.TokenStorageKey.
package metadata

import (
	"context"
	"time"
)

// Record is a stored value together with its last write time.
type Record struct {
	Value     []byte
	UpdatedAt time.Time
}

// Repository is a durable key/value store. Get returns (nil, nil) for a
// missing key; Delete of a missing key is not an error.
type Repository interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte) error
	Delete(ctx context.Context, key string) error
	List(ctx context.Context) (map[string]Record, error)
	Clear(ctx context.Context) error
}
