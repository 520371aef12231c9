// Package id generates entity identifiers. IDs are UUIDv7, so they sort by
// creation time and cluster well in B-tree indexes.
package id

import (
	"github.com/google/uuid"
)

// ID identifies an entity.
type ID = uuid.UUID

// New returns a fresh UUIDv7. Falls back to v4 in the unlikely case the
// clock-based generator fails.
func New() ID {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.New()
	}
	return id
}

// Parse converts a string to an ID with validation.
func Parse(s string) (ID, error) {
	return uuid.Parse(s)
}

// MustParse converts a string to an ID, panicking on error. For tests and
// fixtures only.
func MustParse(s string) ID {
	return uuid.MustParse(s)
}

// Nil returns the zero ID.
func Nil() ID {
	return uuid.Nil
}

// IsNil reports whether id is the zero ID.
func IsNil(id ID) bool {
	return id == uuid.Nil
}
