package util

import (
	"github.com/oklog/ulid/v2"
)

// NewULID generates a new ULID string. ulid.Make draws entropy from
// crypto/rand, so IDs are safe to generate concurrently.
func NewULID() string {
	return ulid.Make().String()
}
