// Package kv stores string values by key. It backs the embed history with an
// in-memory map, a Postgres table or Redis.
package kv

import (
	"context"
	"errors"
)

var ErrNotFound = errors.New("key not found")

type Repository interface {
	// Get returns ErrNotFound when key is absent.
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
