package core

import (
	"crypto/rand"
	"fmt"
)

// nonceAlphabet is the 62-symbol alphabet nonces are drawn from.
const nonceAlphabet = "ABCDEFGHIJKLMNOPQRSTUVWXYZabcdefghijklmnopqrstuvwxyz0123456789"

// maxValidByte is the rejection-sampling cutoff: bytes at or above it would
// bias the modulo mapping and are discarded.
const maxValidByte = 256 - (256 % len(nonceAlphabet)) // 248

// DefaultNonceLength is used when no explicit length is requested (~95 bits of entropy).
const DefaultNonceLength = 16

// GenerateNonce returns a random token of the given length drawn uniformly
// from the 62-character alphanumeric alphabet. Lengths of zero or below fall
// back to DefaultNonceLength.
func GenerateNonce(length int) (string, error) {
	if length <= 0 {
		length = DefaultNonceLength
	}

	out := make([]byte, 0, length)
	buf := make([]byte, length)
	for len(out) < length {
		if _, err := rand.Read(buf); err != nil {
			return "", fmt.Errorf("failed to read random bytes: %w", err)
		}
		for _, b := range buf {
			if int(b) >= maxValidByte {
				continue
			}
			out = append(out, nonceAlphabet[int(b)%len(nonceAlphabet)])
			if len(out) == length {
				break
			}
		}
	}

	return string(out), nil
}
