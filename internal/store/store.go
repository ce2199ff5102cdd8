// Package store provides the durable per-device local store the agent
// persists through: a bucketed key-value store that must survive crashes
// and stay available fully offline. Records are opaque JSON blobs; the
// owning component decides the encoding.
package store

import (
	"context"
	"errors"
)

// ErrNotFound is returned by Get when the key does not exist in the bucket.
var ErrNotFound = errors.New("store: not found")

// Bucket names. One bucket per record kind, mirroring the object stores of
// the on-device database.
const (
	BucketPendingSales = "pending_sales"
	BucketStock        = "stock"
	BucketSettings     = "settings"
)

// Store is the durable local storage capability.
//
// GetAll returns records in insertion order — the pending-sale queue relies
// on this for replay ordering. Delete is idempotent: deleting an absent key
// is a no-op, not an error, because a sync retry may race a prior removal.
type Store interface {
	Get(ctx context.Context, bucket, key string) ([]byte, error)
	GetAll(ctx context.Context, bucket string) ([][]byte, error)
	Put(ctx context.Context, bucket, key string, value []byte) error
	Delete(ctx context.Context, bucket, key string) error
	Count(ctx context.Context, bucket string) (int, error)
	Close() error
}
