// Package localid generates and validates the local order identifiers used
// as both storage keys and server correlation tokens.
package localid

import (
	"fmt"
	"regexp"
	"strconv"
	"time"

	"github.com/google/uuid"
)

// Format: 13-digit zero-padded unix milliseconds, a dash, and an 8-hex-char
// random tie-break. Lexicographic order equals creation order, which is what
// makes the pending queue FIFO by key alone.
var localIDRegex = regexp.MustCompile(`^[0-9]{13}-[0-9a-f]{8}$`)

// New generates a fresh local identifier. Ids are never reused; two ids from
// the same millisecond differ in the random suffix.
func New() string {
	return At(time.Now())
}

// At generates an identifier for an explicit capture time.
func At(t time.Time) string {
	return fmt.Sprintf("%013d-%s", t.UnixMilli(), uuid.NewString()[:8])
}

// IsValid checks whether a string has the local identifier shape.
func IsValid(s string) bool {
	return localIDRegex.MatchString(s)
}

// Validate returns an error if the string is not a valid local identifier.
func Validate(s string) error {
	if !IsValid(s) {
		return fmt.Errorf("invalid local id format: %q", s)
	}
	return nil
}

// Timestamp extracts the embedded capture time.
func Timestamp(s string) (time.Time, error) {
	if err := Validate(s); err != nil {
		return time.Time{}, err
	}
	millis, err := strconv.ParseInt(s[:13], 10, 64)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid local id timestamp: %w", err)
	}
	return time.UnixMilli(millis), nil
}
