package kv

import (
	"context"
	"time"

	"github.com/avast/retry-go"
	"github.com/pkg/errors"
)

type RetryOption func(store *retryingStore)

func Attempts(attempts uint) RetryOption {
	return func(store *retryingStore) {
		store.attempts = attempts
	}
}

func Delay(delay time.Duration) RetryOption {
	return func(store *retryingStore) {
		store.delay = delay
	}
}

// WithRetry retries Get and Set on transient failures. Incr is passed through
// untouched: a retried increment whose first reply was lost would count twice.
func WithRetry(store Store, options ...RetryOption) Store {
	retrying := &retryingStore{store: store, attempts: 3, delay: 50 * time.Millisecond}
	for _, option := range options {
		option(retrying)
	}

	if retrying.attempts <= 1 {
		return store
	}

	return retrying
}

type retryingStore struct {
	store    Store
	attempts uint
	delay    time.Duration
}

func (s *retryingStore) Get(ctx context.Context, key string) (int64, error) {
	var value int64
	err := retry.Do(
		func() error {
			v, err := s.store.Get(ctx, key)
			if err != nil {
				return err
			}
			value = v
			return nil
		},
		s.options(ctx)...,
	)

	return value, err
}

func (s *retryingStore) Set(ctx context.Context, key string, value int64) error {
	return retry.Do(
		func() error {
			return s.store.Set(ctx, key, value)
		},
		s.options(ctx)...,
	)
}

func (s *retryingStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.store.Incr(ctx, key)
}

func (s *retryingStore) options(ctx context.Context) []retry.Option {
	return []retry.Option{
		retry.Context(ctx),
		retry.Attempts(s.attempts),
		retry.Delay(s.delay),
		retry.RetryIf(retryable),
		retry.LastErrorOnly(true),
	}
}

func retryable(err error) bool {
	if IsNotFound(err) {
		return false
	}

	return !errors.Is(err, context.Canceled) && !errors.Is(err, context.DeadlineExceeded)
}
