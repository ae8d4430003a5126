package counter

import (
	"fmt"

	"github.com/pkg/errors"
)

var (
	// ErrForbidden is returned when an override is attempted without the configured secret.
	ErrForbidden = errors.New("forbidden")

	// ErrInvalidValue is returned for override values that are not non-negative integers.
	ErrInvalidValue = errors.New("invalid value")
)

// StoreError wraps any failure of the backing store.
type StoreError struct {
	Op  string
	Key string
	Err error
}

func (e *StoreError) Error() string {
	return fmt.Sprintf("counter store %s %s: %v", e.Op, e.Key, e.Err)
}

func (e *StoreError) Unwrap() error {
	return e.Err
}

func IsStoreError(err error) bool {
	var storeError *StoreError
	return errors.As(err, &storeError)
}
