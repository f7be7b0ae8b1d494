package login

import (
	"crypto/rand"
	"encoding/base64"

	goerrors "github.com/goliatone/go-errors"
)

// signingKeySize is the raw key length in bytes before encoding.
const signingKeySize = 32

// NewSigningKey draws a fresh HMAC signing key from the CSPRNG and encodes
// it base64url without padding. Call it once at process start; the key lives
// only in memory, so every restart invalidates outstanding tokens while their
// stored copies linger until the next login overwrites them.
func NewSigningKey() (string, error) {
	raw := make([]byte, signingKeySize)
	if _, err := rand.Read(raw); err != nil {
		return "", goerrors.Wrap(err, goerrors.CategoryInternal, "failed to generate signing key")
	}
	return base64.RawURLEncoding.EncodeToString(raw), nil
}

// MustNewSigningKey is NewSigningKey for wiring paths where a missing CSPRNG
// is unrecoverable anyway.
func MustNewSigningKey() string {
	key, err := NewSigningKey()
	if err != nil {
		panic(err)
	}
	return key
}
