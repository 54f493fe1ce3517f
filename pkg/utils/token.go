package utils

import (
	"crypto/rand"
	"math/big"
)

const base62Alphabet = "0123456789ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz"

// TokenLength is the number of base62 characters in a session token (~190 bits).
const TokenLength = 32

// RandomToken returns a cryptographically random base62 string of length n.
func RandomToken(n int) (string, error) {
	max := big.NewInt(int64(len(base62Alphabet)))
	out := make([]byte, n)
	for i := range out {
		idx, err := rand.Int(rand.Reader, max)
		if err != nil {
			return "", err
		}
		out[i] = base62Alphabet[idx.Int64()]
	}
	return string(out), nil
}

// NewSessionToken returns a fresh opaque bearer token.
func NewSessionToken() (string, error) {
	return RandomToken(TokenLength)
}
