package token

import (
	"crypto/rand"
	"encoding/base64"
)

// DefaultLength is the number of random bytes in an opaque token.
// 32 bytes gives 256 bits of entropy, well beyond brute-force reach.
const DefaultLength = 32

// Generate returns an opaque unguessable token of n random bytes encoded as
// unpadded base64url. Used for session tokens and OAuth state values.
func Generate(n int) (string, error) {
	if n <= 0 {
		n = DefaultLength
	}
	b := make([]byte, n)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return base64.RawURLEncoding.EncodeToString(b), nil
}
