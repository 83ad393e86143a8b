package core

import "time"

// Challenge is the record returned to a caller when a sign-in challenge is
// issued. ID and MessageHash are convenience fields for client-side
// correlation and tamper detection; the nonce embedded in the message is the
// server-side lookup key.
type Challenge struct {
	ID          string    `json:"challenge_id"` // hex digest of the nonce, non-secret
	Message     string    `json:"message"`      // serialized message to be signed as-is
	MessageHash string    `json:"message_hash"` // hex digest of the message text
	ExpiresAt   time.Time `json:"expires_at"`   // when the challenge stops being accepted
}

// NonceRecord is the server-side pending-challenge state, keyed by nonce.
// It is written on challenge issuance and consumed exactly once on
// verification, or purged when it expires.
type NonceRecord struct {
	PublicKey string    `json:"public_key"` // address the challenge was issued for
	Message   string    `json:"message"`    // serialized message text
	ExpiresAt time.Time `json:"expires_at"`
}

// SessionRecord is the server-side session state, keyed by the opaque bearer
// token. Expired records must read back as absent.
type SessionRecord struct {
	ID        string    `json:"id"` // non-secret session identifier, safe for events and logs
	Address   string    `json:"address"`
	ExpiresAt time.Time `json:"expires_at"`
	Scopes    []string  `json:"scopes,omitempty"`  // copied from the message resources
	Message   string    `json:"message,omitempty"` // originating message text
}

// Session is the credential handed back to a caller after successful
// verification. The token is the only secret part.
type Session struct {
	Token     string    `json:"token"`
	Address   string    `json:"address"`
	ExpiresAt time.Time `json:"expires_at"`
	Scopes    []string  `json:"scopes,omitempty"`
}

// RateLimitRecord is a fixed-window request counter, keyed by a caller
// identifier such as an IP or public key.
type RateLimitRecord struct {
	Count       int       `json:"count"`
	WindowStart time.Time `json:"window_start"`
	ExpiresAt   time.Time `json:"expires_at"`
}

// RateLimitResult is the outcome of a rate-limit increment.
type RateLimitResult struct {
	Allowed   bool
	Count     int
	ResetTime time.Time
}
