package kv

import (
	"context"

	"github.com/pkg/errors"
)

// ErrNotFound is returned by Get when no value has been stored under a key.
var ErrNotFound = errors.New("key not found")

// Store is an atomic counter backend. Incr must be atomic across concurrent callers
// and treats an absent key as zero.
type Store interface {
	Get(ctx context.Context, key string) (int64, error)
	Set(ctx context.Context, key string, value int64) error
	Incr(ctx context.Context, key string) (int64, error)
}

func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}
