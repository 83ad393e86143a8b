package core

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGenerateNonceLength(t *testing.T) {
	for _, length := range []int{1, 8, 16, 32, 64, 100} {
		nonce, err := GenerateNonce(length)
		require.NoError(t, err)
		assert.Len(t, nonce, length)
	}
}

func TestGenerateNonceDefaultLength(t *testing.T) {
	for _, length := range []int{0, -1} {
		nonce, err := GenerateNonce(length)
		require.NoError(t, err)
		assert.Len(t, nonce, DefaultNonceLength)
	}
}

func TestGenerateNonceAlphabet(t *testing.T) {
	nonce, err := GenerateNonce(500)
	require.NoError(t, err)

	for _, r := range nonce {
		assert.True(t, strings.ContainsRune(nonceAlphabet, r), "unexpected character %q", r)
	}
}

func TestGenerateNonceUniqueness(t *testing.T) {
	seen := make(map[string]bool)
	for i := 0; i < 100; i++ {
		nonce, err := GenerateNonce(DefaultNonceLength)
		require.NoError(t, err)
		assert.False(t, seen[nonce], "duplicate nonce %q", nonce)
		seen[nonce] = true
	}
}
