package store

import (
	"context"

	"github.com/hyperengineering/nextbest/internal/types"
)

// Store defines the interface contract for durable key-value storage.
// Values are opaque strings; callers own their encoding.
type Store interface {
	GetValue(ctx context.Context, key string) (string, error)
	PutValues(ctx context.Context, values map[string]string) error
	DeleteValues(ctx context.Context, keys ...string) error
	GetStats(ctx context.Context) (*types.StoreStats, error)
	Close() error
}
