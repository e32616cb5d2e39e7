package domain

import (
	"crypto/rand"

	"github.com/oklog/ulid/v2"
)

// NewID returns a new lexicographically sortable identifier. Used for
// sessions, eligibilities, catalog items and workflow operations.
func NewID() string {
	return ulid.MustNew(ulid.Now(), rand.Reader).String()
}

// ValidID reports whether s parses as a ULID
func ValidID(s string) bool {
	_, err := ulid.ParseStrict(s)
	return err == nil
}
