package store

import (
	"crypto/rand"
	"fmt"
)

// ReadableIDAlphabet excludes the visually ambiguous glyphs 0, 1, I, and O.
// Its length of 32 makes the 5-bit draw below modulo-bias free.
const ReadableIDAlphabet = "ABCDEFGHJKLMNPQRSTUVWXYZ23456789"

const (
	readableIDPrefix = "TH-"
	readableIDLength = 6

	// maxReadableIDAttempts bounds create-time retries on unique-constraint
	// collisions before giving up with ErrReadableIDExhausted.
	maxReadableIDAttempts = 5
)

// NewReadableID draws a fresh human-friendly handle like "TH-K7MX2A".
// Uniqueness is enforced by the database; callers retry on collision.
func NewReadableID() string {
	buf := make([]byte, readableIDLength)
	if _, err := rand.Read(buf); err != nil {
		// crypto/rand never fails on supported platforms.
		panic(fmt.Sprintf("store: reading random bytes: %v", err))
	}
	for i, b := range buf {
		buf[i] = ReadableIDAlphabet[int(b)%len(ReadableIDAlphabet)]
	}
	return readableIDPrefix + string(buf)
}
