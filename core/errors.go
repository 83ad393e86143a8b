package core

import "errors"

var (
	// ErrInvalidDomain is returned when a message domain is not a valid hostname
	ErrInvalidDomain = errors.New("invalid domain")

	// ErrInvalidURI is returned when a message URI is not an absolute URI
	ErrInvalidURI = errors.New("invalid uri")

	// ErrInvalidAddress is returned when an address is not base58 of the expected length
	ErrInvalidAddress = errors.New("invalid address")

	// ErrInvalidMessage is returned when a serialized message cannot be parsed
	ErrInvalidMessage = errors.New("invalid message")

	// ErrInvalidPublicKey is returned when a public key is not a valid Ed25519 point
	ErrInvalidPublicKey = errors.New("invalid solana public key")

	// ErrDomainMismatch is returned when the message domain does not match the expected one
	ErrDomainMismatch = errors.New("domain mismatch")

	// ErrNonceMismatch is returned when the message nonce does not match the expected one
	ErrNonceMismatch = errors.New("nonce mismatch")

	// ErrMessageExpired is returned when a message expiration time has passed
	ErrMessageExpired = errors.New("message has expired")

	// ErrMessageNotYetValid is returned when a message not-before time is in the future
	ErrMessageNotYetValid = errors.New("message not yet valid")

	// ErrMessageIssuedInFuture is returned when a message issuance time exceeds skew tolerance
	ErrMessageIssuedInFuture = errors.New("message issued in the future")

	// ErrInvalidSignatureEncoding is returned when a signature is neither base58 nor base64
	ErrInvalidSignatureEncoding = errors.New("invalid signature encoding (expected base58 or base64)")

	// ErrInvalidSignatureLength is returned when a decoded signature is not 64 bytes
	ErrInvalidSignatureLength = errors.New("invalid signature length")

	// ErrSignatureVerificationFailed is returned when Ed25519 verification fails
	ErrSignatureVerificationFailed = errors.New("signature verification failed")

	// ErrPublicKeyMismatch is returned when a public key does not match the message address
	ErrPublicKeyMismatch = errors.New("public key does not match message address")

	// ErrNonceInvalidOrExpired is returned when a nonce was never issued, already consumed or expired
	ErrNonceInvalidOrExpired = errors.New("nonce invalid or expired")

	// ErrRateLimitExceeded is returned when a caller exceeds the challenge rate limit
	ErrRateLimitExceeded = errors.New("rate limit exceeded")

	// ErrStoreOperationFailed is returned when a store backend fails; callers may retry
	ErrStoreOperationFailed = errors.New("store operation failed")
)
