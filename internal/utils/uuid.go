package utils

import (
	"crypto/rand"
	"fmt"
	"io"

	"github.com/google/uuid"
)

// NewUUIDv4 returns a random version 4 UUID in canonical lowercase form.
// Randomness is read from the operating system CSPRNG.
func NewUUIDv4() (string, error) {
	return NewUUIDv4FromReader(rand.Reader)
}

// NewUUIDv4FromReader returns a version 4 UUID built from 16 bytes of r.
// The version nibble is forced to 4 and the variant bits to 10.
func NewUUIDv4FromReader(r io.Reader) (string, error) {
	id, err := uuid.NewRandomFromReader(r)
	if err != nil {
		return "", fmt.Errorf("failed to generate uuid: %w", err)
	}
	return id.String(), nil
}

// IsUUIDv4 reports whether s is a canonical lowercase version 4 UUID
func IsUUIDv4(s string) bool {
	id, err := uuid.Parse(s)
	if err != nil {
		return false
	}
	return id.Version() == 4 && id.Variant() == uuid.RFC4122 && id.String() == s
}
