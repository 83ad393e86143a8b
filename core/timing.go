package core

import (
	"fmt"
	"time"
)

// IssuedAtSkew is the tolerated clock drift for the issuance timestamp.
const IssuedAtSkew = 5 * time.Minute

// ValidateTiming checks the message's time bounds against now. Rules are
// evaluated in order and the first failure wins: expiration, not-before,
// then issuance beyond skew tolerance. A message with neither expiration
// nor not-before set is valid by default.
func ValidateTiming(m *Message, now time.Time) error {
	if m.ExpirationTime != "" {
		expiresAt, err := time.Parse(time.RFC3339, m.ExpirationTime)
		if err != nil {
			return fmt.Errorf("%w: invalid expiration time", ErrInvalidMessage)
		}
		if now.After(expiresAt) {
			return ErrMessageExpired
		}
	}

	if m.NotBefore != "" {
		notBefore, err := time.Parse(time.RFC3339, m.NotBefore)
		if err != nil {
			return fmt.Errorf("%w: invalid not before", ErrInvalidMessage)
		}
		if now.Before(notBefore) {
			return ErrMessageNotYetValid
		}
	}

	if m.IssuedAt != "" {
		issuedAt, err := time.Parse(time.RFC3339, m.IssuedAt)
		if err != nil {
			return fmt.Errorf("%w: invalid issued at", ErrInvalidMessage)
		}
		if issuedAt.After(now.Add(IssuedAtSkew)) {
			return ErrMessageIssuedInFuture
		}
	}

	return nil
}
