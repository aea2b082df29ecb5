package domain

import (
	"context"
	"errors"
)

var ErrUnknownStorageDriver = errors.New("unknown storage driver")

// KVStore is the durable key-value medium behind the auth flag.
// A missing key is reported as ok == false with a nil error.
type KVStore interface {
	Get(ctx context.Context, key string) (string, bool, error)
	Set(ctx context.Context, key, value string) error
	Delete(ctx context.Context, key string) error
	Close() error
}
