// Package connectors holds what the transports agree on: response headers, status
// codes and the terse messages the override endpoint answers with.
package connectors

import (
	"github.com/pkg/errors"

	"github.com/weegigs/wee-counter-go/counter"
)

const (
	ContentTypeSVG  = "image/svg+xml; charset=utf-8"
	ContentTypeText = "text/plain; charset=utf-8"
	ContentTypeJSON = "application/json"

	NoCache = "no-store, no-cache, must-revalidate, max-age=0"
)

// NoCacheHeaders keep badge images from being cached anywhere between the store and the reader.
func NoCacheHeaders() map[string]string {
	return map[string]string{
		"Cache-Control": NoCache,
		"Pragma":        "no-cache",
		"Expires":       "0",
	}
}

// Failure maps a counter service error onto a status code and a message that is
// safe to show to clients.
func Failure(err error) (int, string) {
	switch {
	case errors.Is(err, counter.ErrForbidden):
		return 403, "Forbidden"
	case errors.Is(err, counter.ErrInvalidValue):
		return 400, "Invalid value"
	case counter.IsStoreError(err):
		return 502, "Store unavailable"
	default:
		return 500, "Internal error"
	}
}
