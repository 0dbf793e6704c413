package models

import (
	"crypto/rand"
	"encoding/base32"
)

// idEncoding is lowercase base32 without padding, so 10 bytes of entropy
// encode to a 16 character token.
var idEncoding = base32.NewEncoding("abcdefghijklmnopqrstuvwxyz234567").WithPadding(base32.NoPadding)

// NewID returns an opaque short random token used as a primary key.
func NewID() string {
	b := make([]byte, 10)
	if _, err := rand.Read(b); err != nil {
		// crypto/rand does not fail on supported platforms
		panic(err)
	}
	return idEncoding.EncodeToString(b)
}
