// Package kv is a small persistent key-value store for per-user console
// state. Values are JSON encoded; entries may carry an expiry.
package kv

import (
	"context"
	"errors"
	"time"
)

// ErrNotFound is returned by Get when a key is missing or expired.
var ErrNotFound = errors.New("kv: key not found")

// KV is the interface for a persistent key-value store.
type KV interface {
	Get(ctx context.Context, key string, dest any) error
	Set(ctx context.Context, key string, value any) error
	SetTTL(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	ListKeys(ctx context.Context) ([]string, error)
	// Sweep removes expired entries and reports how many went.
	Sweep(ctx context.Context) (int64, error)
}
