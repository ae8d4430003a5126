package kv

import (
	"context"
	"math/rand"
	"sync"
	"testing"
	"time"

	"github.com/jaswdr/faker"
	"github.com/oklog/ulid/v2"
	"github.com/stretchr/testify/assert"
)

var entropy = ulid.Monotonic(rand.New(rand.NewSource(time.Now().UnixNano())), 0)
var entropyLock sync.Mutex

func NewStoreValidationSuite(ctx context.Context, store Store) *StoreValidationSuite {
	return &StoreValidationSuite{
		store: store,
		ctx:   ctx,
		faker: faker.New(),
	}
}

// StoreValidationSuite checks the behaviour every Store backend has to share.
type StoreValidationSuite struct {
	store Store
	ctx   context.Context
	faker faker.Faker
}

func (s *StoreValidationSuite) Run(t *testing.T) {
	t.Run("reports missing keys as not found", s.GetMissing)
	t.Run("increments an absent key from zero", s.IncrementsAbsentKey)
	t.Run("increments sequentially", s.IncrementsSequentially)
	t.Run("sets an absolute value", s.SetsValue)
	t.Run("increments after set", s.IncrementsAfterSet)
	t.Run("keeps keys independent", s.KeysAreIndependent)
	t.Run("increments atomically under concurrency", s.ConcurrentIncrements)
}

func (s *StoreValidationSuite) MakeTestKey() string {
	entropyLock.Lock()
	defer entropyLock.Unlock()

	return "counter:go-test-" + ulid.MustNew(ulid.Timestamp(time.Now()), entropy).String()
}

func (s *StoreValidationSuite) GetMissing(t *testing.T) {
	_, err := s.store.Get(s.ctx, s.MakeTestKey())
	assert.True(t, IsNotFound(err), "expected not found, got %v", err)
}

func (s *StoreValidationSuite) IncrementsAbsentKey(t *testing.T) {
	value, err := s.store.Incr(s.ctx, s.MakeTestKey())
	if !assert.Nil(t, err) {
		return
	}

	assert.Equal(t, int64(1), value)
}

func (s *StoreValidationSuite) IncrementsSequentially(t *testing.T) {
	key := s.MakeTestKey()
	count := s.faker.IntBetween(2, 20)

	for i := 1; i <= count; i++ {
		value, err := s.store.Incr(s.ctx, key)
		if !assert.Nil(t, err) {
			return
		}
		assert.Equal(t, int64(i), value)
	}

	value, err := s.store.Get(s.ctx, key)
	if !assert.Nil(t, err) {
		return
	}
	assert.Equal(t, int64(count), value)
}

func (s *StoreValidationSuite) SetsValue(t *testing.T) {
	key := s.MakeTestKey()
	expected := int64(s.faker.IntBetween(0, 1_000_000))

	if err := s.store.Set(s.ctx, key, expected); !assert.Nil(t, err) {
		return
	}

	value, err := s.store.Get(s.ctx, key)
	if !assert.Nil(t, err) {
		return
	}
	assert.Equal(t, expected, value)
}

func (s *StoreValidationSuite) IncrementsAfterSet(t *testing.T) {
	key := s.MakeTestKey()
	initial := int64(s.faker.IntBetween(0, 1_000_000))

	if _, err := s.store.Incr(s.ctx, key); !assert.Nil(t, err) {
		return
	}

	if err := s.store.Set(s.ctx, key, initial); !assert.Nil(t, err) {
		return
	}

	value, err := s.store.Incr(s.ctx, key)
	if !assert.Nil(t, err) {
		return
	}
	assert.Equal(t, initial+1, value)
}

func (s *StoreValidationSuite) KeysAreIndependent(t *testing.T) {
	first := s.MakeTestKey()
	second := s.MakeTestKey()

	for i := 0; i < 3; i++ {
		if _, err := s.store.Incr(s.ctx, first); !assert.Nil(t, err) {
			return
		}
	}

	value, err := s.store.Incr(s.ctx, second)
	if !assert.Nil(t, err) {
		return
	}
	assert.Equal(t, int64(1), value)
}

func (s *StoreValidationSuite) ConcurrentIncrements(t *testing.T) {
	const workers = 8
	const perWorker = 10

	key := s.MakeTestKey()

	var wg sync.WaitGroup
	errs := make(chan error, workers*perWorker)
	for w := 0; w < workers; w++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for i := 0; i < perWorker; i++ {
				if _, err := s.store.Incr(s.ctx, key); err != nil {
					errs <- err
				}
			}
		}()
	}
	wg.Wait()
	close(errs)

	for err := range errs {
		assert.Nil(t, err)
	}

	value, err := s.store.Get(s.ctx, key)
	if !assert.Nil(t, err) {
		return
	}
	assert.Equal(t, int64(workers*perWorker), value)
}
