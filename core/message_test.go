package core

import (
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// testAddress is base58 with a 32-byte payload; message construction checks
// shape only, not curve membership.
const testAddress = "4Nd1mBQtrMJVYVfKf2PJy9NZUZdTAsp7D4xWLs4gDB4T"

func fullTestMessage(t *testing.T) *Message {
	t.Helper()

	msg, err := NewMessage(MessageParams{
		Domain:    "example.com",
		Address:   testAddress,
		Statement: "Sign in to the agent gateway.",
		URI:       "https://example.com/login",
		Nonce:     "abcDEF1234567890",
		IssuedAt:  "2026-01-02T15:04:05Z",
		NotBefore: "2026-01-02T15:00:00Z",
		RequestID: "req-42",
		Resources: []string{"https://example.com/api", "ipfs://QmTest"},
	})
	require.NoError(t, err)
	return msg
}

func TestMessageRoundTrip(t *testing.T) {
	msg := fullTestMessage(t)

	text := msg.Serialize()
	parsed, err := ParseMessage(text)
	require.NoError(t, err)

	assert.Equal(t, msg, parsed)
	assert.Equal(t, text, parsed.Serialize())
}

func TestMessageRoundTripMinimal(t *testing.T) {
	msg, err := NewMessage(MessageParams{
		Domain:       "localhost",
		Address:      testAddress,
		URI:          "http://localhost:3000",
		NoExpiration: true,
	})
	require.NoError(t, err)
	assert.Empty(t, msg.ExpirationTime)

	text := msg.Serialize()
	parsed, err := ParseMessage(text)
	require.NoError(t, err)

	assert.Equal(t, msg, parsed)
	assert.Equal(t, text, parsed.Serialize())
}

func TestSerializeLayout(t *testing.T) {
	msg := fullTestMessage(t)
	text := msg.Serialize()

	expected := strings.Join([]string{
		"example.com wants you to sign in with your Solana account:",
		testAddress,
		"",
		"Sign in to the agent gateway.",
		"",
		"URI: https://example.com/login",
		"Version: 1",
		"Chain ID: mainnet-beta",
		"Nonce: abcDEF1234567890",
		"Issued At: 2026-01-02T15:04:05Z",
		"Expiration Time: 2026-01-02T15:09:05Z",
		"Not Before: 2026-01-02T15:00:00Z",
		"Request ID: req-42",
		"Resources:",
		"- https://example.com/api",
		"- ipfs://QmTest",
	}, "\n")

	assert.Equal(t, expected, text)
}

func TestNewMessageDefaults(t *testing.T) {
	before := time.Now().UTC().Add(-time.Second)
	msg, err := NewMessage(MessageParams{
		Domain:  "example.com",
		Address: testAddress,
		URI:     "https://example.com",
	})
	require.NoError(t, err)

	assert.Equal(t, DefaultVersion, msg.Version)
	assert.Equal(t, DefaultChainID, msg.ChainID)
	assert.Len(t, msg.Nonce, DefaultNonceLength)

	issuedAt, err := time.Parse(time.RFC3339, msg.IssuedAt)
	require.NoError(t, err)
	assert.False(t, issuedAt.Before(before))

	expiresAt, err := time.Parse(time.RFC3339, msg.ExpirationTime)
	require.NoError(t, err)
	assert.Equal(t, DefaultMessageTTL, expiresAt.Sub(issuedAt))
}

func TestNewMessageValidation(t *testing.T) {
	valid := MessageParams{
		Domain:  "example.com",
		Address: testAddress,
		URI:     "https://example.com",
	}

	tests := []struct {
		name    string
		mutate  func(*MessageParams)
		wantErr error
	}{
		{"empty domain", func(p *MessageParams) { p.Domain = "" }, ErrInvalidDomain},
		{"overlong domain", func(p *MessageParams) { p.Domain = strings.Repeat("a", 254) }, ErrInvalidDomain},
		{"leading hyphen", func(p *MessageParams) { p.Domain = "-example.com" }, ErrInvalidDomain},
		{"trailing hyphen", func(p *MessageParams) { p.Domain = "example.com-" }, ErrInvalidDomain},
		{"domain with space", func(p *MessageParams) { p.Domain = "exa mple.com" }, ErrInvalidDomain},
		{"relative uri", func(p *MessageParams) { p.URI = "/login" }, ErrInvalidURI},
		{"garbage uri", func(p *MessageParams) { p.URI = "://nope" }, ErrInvalidURI},
		{"short address", func(p *MessageParams) { p.Address = "abc" }, ErrInvalidAddress},
		{"overlong address", func(p *MessageParams) { p.Address = strings.Repeat("1", 45) }, ErrInvalidAddress},
		{"non-base58 address", func(p *MessageParams) { p.Address = strings.Repeat("0", 40) }, ErrInvalidAddress},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			params := valid
			tt.mutate(&params)

			_, err := NewMessage(params)
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}

	t.Run("localhost accepted", func(t *testing.T) {
		params := valid
		params.Domain = "localhost"
		_, err := NewMessage(params)
		assert.NoError(t, err)
	})
}

func TestParseMessageErrors(t *testing.T) {
	valid := fullTestMessage(t).Serialize()

	tests := []struct {
		name    string
		text    string
		wantMsg string
	}{
		{"empty input", "", "missing header"},
		{"wrong header", "please sign this\n" + testAddress, "missing header"},
		{"empty domain", headerSuffix[1:] + "\n" + testAddress, "missing header"},
		{"missing address", "example.com" + headerSuffix + "\n\n\nURI: https://example.com", "missing address"},
		{"missing URI field", "example.com" + headerSuffix + "\n" + testAddress + "\n\nVersion: 1", "missing URI"},
		{"unrecognized field", valid + "\nChain Hint: devnet", "unrecognized line"},
		{"bare line in field block", strings.Replace(valid, "Version: 1", "Version 1", 1), "unrecognized line"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseMessage(tt.text)
			require.ErrorIs(t, err, ErrInvalidMessage)
			assert.Contains(t, err.Error(), tt.wantMsg)
		})
	}
}

func TestParseMessageMissingRequiredFields(t *testing.T) {
	for _, field := range []string{"Version", "Chain ID", "Nonce", "Issued At"} {
		t.Run(field, func(t *testing.T) {
			msg := fullTestMessage(t)
			lines := strings.Split(msg.Serialize(), "\n")

			kept := lines[:0]
			for _, line := range lines {
				if strings.HasPrefix(line, field+": ") {
					continue
				}
				kept = append(kept, line)
			}

			_, err := ParseMessage(strings.Join(kept, "\n"))
			require.ErrorIs(t, err, ErrInvalidMessage)
			assert.Contains(t, err.Error(), "missing "+field)
		})
	}
}

func TestParseMessageStatementIsSingleLine(t *testing.T) {
	text := strings.Join([]string{
		"example.com wants you to sign in with your Solana account:",
		testAddress,
		"",
		"first statement line",
		"",
		"URI: https://example.com",
		"Version: 1",
		"Chain ID: mainnet-beta",
		"Nonce: abcDEF1234567890",
		"Issued At: 2026-01-02T15:04:05Z",
	}, "\n")

	msg, err := ParseMessage(text)
	require.NoError(t, err)
	assert.Equal(t, "first statement line", msg.Statement)
}
