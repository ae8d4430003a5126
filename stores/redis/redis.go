package redis

import (
	"context"

	"github.com/pkg/errors"
	rdb "github.com/redis/go-redis/v9"

	"github.com/weegigs/wee-counter-go/kv"
)

type Store struct {
	client rdb.UniversalClient
}

var _ kv.Store = (*Store)(nil)

func NewStore(client rdb.UniversalClient) *Store {
	return &Store{client: client}
}

func (s *Store) Get(ctx context.Context, key string) (int64, error) {
	value, err := s.client.Get(ctx, key).Int64()
	if err != nil {
		if errors.Is(err, rdb.Nil) {
			return 0, kv.ErrNotFound
		}
		return 0, errors.Wrapf(err, "redis get %s", key)
	}

	return value, nil
}

func (s *Store) Set(ctx context.Context, key string, value int64) error {
	if err := s.client.Set(ctx, key, value, 0).Err(); err != nil {
		return errors.Wrapf(err, "redis set %s", key)
	}

	return nil
}

func (s *Store) Incr(ctx context.Context, key string) (int64, error) {
	value, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, errors.Wrapf(err, "redis incr %s", key)
	}

	return value, nil
}

func (s *Store) Close() error {
	return s.client.Close()
}
