package kvstore

import (
	"context"
	"errors"
)

var (
	ErrNotFound = errors.New("kvstore: key not found")
)

// Store is the persisted key-value port used for cooldown entries, the
// language preference and the signal history. Values are opaque strings;
// callers own the encoding.
type Store interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key, value string) error
	Remove(ctx context.Context, keys ...string) error
	KeysWithPrefix(ctx context.Context, prefix string) ([]string, error)
	Close() error
}
