// Package otp generates and checks the one-time passcodes used to
// confirm physical hand-off of an order. The code is a shared secret
// between two already-authenticated parties, not an access token, but
// it is still only ever stored as a bcrypt digest so a database read or
// backup cannot leak live codes. bcrypt's cost also makes offline
// guessing of the 6-digit space impractical if a digest does leak.
package otp

import (
	"crypto/rand"
	"fmt"
	"math/big"

	"golang.org/x/crypto/bcrypt"
)

// Length is the number of digits in a generated code.
const Length = 6

var codeSpace = big.NewInt(900000)

// Generate returns a fresh 6-digit numeric code drawn uniformly from
// [100000, 999999].
func Generate() (string, error) {
	n, err := rand.Int(rand.Reader, codeSpace)
	if err != nil {
		return "", fmt.Errorf("failed to draw otp: %w", err)
	}
	return fmt.Sprintf("%06d", n.Int64()+100000), nil
}

// Hash returns the bcrypt digest of a plaintext code. The plaintext is
// returned to the requester exactly once and never persisted.
func Hash(plain string) (string, error) {
	digest, err := bcrypt.GenerateFromPassword([]byte(plain), bcrypt.DefaultCost)
	if err != nil {
		return "", fmt.Errorf("failed to hash otp: %w", err)
	}
	return string(digest), nil
}

// Verify reports whether plain matches the stored digest, using
// bcrypt's own comparison. The digest is never decoded back to a
// string for comparison.
func Verify(plain, digest string) bool {
	return bcrypt.CompareHashAndPassword([]byte(digest), []byte(plain)) == nil
}
