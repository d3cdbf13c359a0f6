package internal

import (
	"crypto/rand"
	"encoding/base64"
)

const tokenRawSize = 24

// NewToken returns an opaque, unique session token: 24 random bytes,
// base64url without padding. The token carries no structure; everything
// about the session lives in the caches keyed by it.
func NewToken() (string, error) {
	var raw [tokenRawSize]byte
	if _, err := rand.Read(raw[:]); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(raw[:]), nil
}
