package uid

import (
	"strings"

	"github.com/google/uuid"
)

// UUID generates RFC 9562 UUID strings.
type UUID struct{}

// NewUUID returns a UUID generator.
func NewUUID() *UUID {
	return &UUID{}
}

// Generate returns a UUIDv7, falling back to v4 if the clock source fails.
func (u *UUID) Generate() string {
	id, err := uuid.NewV7()
	if err != nil {
		return uuid.NewString()
	}
	return id.String()
}

// CanonicalUUID returns s in lower-case canonical form when it is a 36
// character UUID of any version, and s unchanged otherwise.
func CanonicalUUID(s string) string {
	s = strings.TrimSpace(s)
	if len(s) != 36 {
		return s
	}
	id, err := uuid.Parse(s)
	if err != nil {
		return s
	}
	return id.String()
}
