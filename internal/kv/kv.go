package kv

import "context"

// Store is a durable key-value store. Get returns ("", false, nil) when the
// key is absent so callers can tell "missing" from "empty value".
type Store interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, key string) error
}
