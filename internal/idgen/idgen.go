// Package idgen issues opaque record identifiers: a type prefix followed by
// the hex encoding of 16 bytes read from crypto/rand.
package idgen

import (
	"crypto/rand"
	"encoding/hex"
)

// Prefixes per entity type.
const (
	User         = "u"
	Course       = "c"
	Enrollment   = "e"
	Payment      = "p"
	Notification = "n"
)

const randomBytes = 16

// New returns prefix || hex(16 random bytes).
func New(prefix string) string {
	var b [randomBytes]byte

	// crypto/rand.Read never returns an error on supported platforms
	// and panics rather than returning short reads.
	_, _ = rand.Read(b[:])

	return prefix + hex.EncodeToString(b[:])
}
