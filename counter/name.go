package counter

import (
	"math"
	"strconv"
	"strings"
	"unicode/utf8"
)

const (
	DefaultFixedName     = "default"
	DefaultMaxNameLength = 64

	keyPrefix = "counter:"
)

// Key is the store key a counter name is kept under.
func Key(name string) string {
	return keyPrefix + name
}

func truncate(name string, max int) string {
	if max <= 0 || utf8.RuneCountInString(name) <= max {
		return name
	}

	runes := 0
	for i := range name {
		if runes == max {
			return name[:i]
		}
		runes++
	}

	return name
}

// ParseValue accepts whole numbers from zero up to the largest int64, including
// decimal and exponent forms such as "42.0" and "1e3". Surrounding whitespace is ignored.
func ParseValue(raw string) (int64, error) {
	raw = strings.TrimSpace(raw)

	if value, err := strconv.ParseInt(raw, 10, 64); err == nil {
		if value < 0 {
			return 0, ErrInvalidValue
		}
		return value, nil
	}

	value, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(value) || math.IsInf(value, 0) {
		return 0, ErrInvalidValue
	}

	// float64(math.MaxInt64) rounds up to 2^63, which no longer fits
	if value < 0 || value >= float64(math.MaxInt64) || value != math.Trunc(value) {
		return 0, ErrInvalidValue
	}

	return int64(value), nil
}
