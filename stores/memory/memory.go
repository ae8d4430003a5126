package memory

import (
	"context"

	"github.com/patrickmn/go-cache"
	"github.com/pkg/errors"

	"github.com/weegigs/wee-counter-go/kv"
)

// Store keeps counters in process memory. Values are lost on restart, so it is
// meant for local development and tests.
type Store struct {
	counters *cache.Cache
}

var _ kv.Store = (*Store)(nil)

func NewStore() *Store {
	return &Store{counters: cache.New(cache.NoExpiration, 0)}
}

func (s *Store) Get(_ context.Context, key string) (int64, error) {
	value, found := s.counters.Get(key)
	if !found {
		return 0, kv.ErrNotFound
	}

	count, ok := value.(int64)
	if !ok {
		return 0, errors.Errorf("value stored under %s is not a counter", key)
	}

	return count, nil
}

func (s *Store) Set(_ context.Context, key string, value int64) error {
	s.counters.Set(key, value, cache.NoExpiration)
	return nil
}

func (s *Store) Incr(_ context.Context, key string) (int64, error) {
	// Add only succeeds for an absent key; either way the increment below is atomic.
	_ = s.counters.Add(key, int64(0), cache.NoExpiration)

	value, err := s.counters.IncrementInt64(key, 1)
	if err != nil {
		return 0, errors.Wrapf(err, "failed to increment %s", key)
	}

	return value, nil
}
