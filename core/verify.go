package core

import (
	"crypto/ed25519"
	"encoding/base64"
	"fmt"
	"time"

	"filippo.io/edwards25519"
	"github.com/mr-tron/base58"
)

// VerifyOptions constrain message verification beyond the signature itself.
type VerifyOptions struct {
	// Domain, when set, must equal the message domain.
	Domain string

	// Nonce, when set, must equal the message nonce.
	Nonce string

	// SkipTimeCheck disables timing validation.
	SkipTimeCheck bool
}

// VerificationResult is the outcome of VerifyMessage. Failures are reported
// through Err; VerifyMessage never panics.
type VerificationResult struct {
	Success bool
	Message *Message
	Err     error
}

// IsValidAddress reports whether address decodes from base58 to a canonical
// point on the Ed25519 curve. Correct length alone is not enough; off-curve
// and non-canonical encodings are rejected.
func IsValidAddress(address string) bool {
	decoded, err := base58.Decode(address)
	if err != nil || len(decoded) != ed25519.PublicKeySize {
		return false
	}
	if _, err := new(edwards25519.Point).SetBytes(decoded); err != nil {
		return false
	}
	return true
}

// VerifyMessage runs the full verification sequence over a serialized
// message: parse, public key and address checks, optional domain and nonce
// binding, timing validation, signature decoding with base58/base64
// fallback, and Ed25519 verification over the exact message bytes.
func VerifyMessage(messageText, signature, publicKey string, opts *VerifyOptions) VerificationResult {
	if opts == nil {
		opts = &VerifyOptions{}
	}

	msg, err := ParseMessage(messageText)
	if err != nil {
		return failure(fmt.Errorf("failed to parse message: %w", err))
	}

	if !IsValidAddress(publicKey) {
		return failure(ErrInvalidPublicKey)
	}

	if msg.Address != publicKey {
		return failure(ErrPublicKeyMismatch)
	}

	if opts.Domain != "" && msg.Domain != opts.Domain {
		return failure(fmt.Errorf("%w: expected %s, got %s", ErrDomainMismatch, opts.Domain, msg.Domain))
	}

	if opts.Nonce != "" && msg.Nonce != opts.Nonce {
		return failure(ErrNonceMismatch)
	}

	if !opts.SkipTimeCheck {
		if err := ValidateTiming(msg, time.Now()); err != nil {
			return failure(err)
		}
	}

	sigBytes, err := decodeSignature(signature)
	if err != nil {
		return failure(err)
	}
	if len(sigBytes) != ed25519.SignatureSize {
		return failure(fmt.Errorf("%w: %d (expected %d)", ErrInvalidSignatureLength, len(sigBytes), ed25519.SignatureSize))
	}

	pubBytes, err := base58.Decode(publicKey)
	if err != nil {
		return failure(ErrInvalidPublicKey)
	}

	if !ed25519.Verify(ed25519.PublicKey(pubBytes), []byte(messageText), sigBytes) {
		return failure(ErrSignatureVerificationFailed)
	}

	return VerificationResult{Success: true, Message: msg}
}

// VerifyRawSignature checks an Ed25519 signature over arbitrary message
// bytes, skipping all message parsing and policy checks. The signature may
// be base58 or base64 encoded and the public key is a base58 address. It
// returns false on any decode or verification failure and never panics.
func VerifyRawSignature(message []byte, signature, publicKey string) bool {
	sigBytes, err := decodeSignature(signature)
	if err != nil {
		return false
	}

	pubBytes, err := base58.Decode(publicKey)
	if err != nil {
		return false
	}

	return VerifyRawSignatureBytes(message, sigBytes, pubBytes)
}

// VerifyRawSignatureBytes is the already-decoded form of VerifyRawSignature.
func VerifyRawSignatureBytes(message, signature, publicKey []byte) bool {
	if len(signature) != ed25519.SignatureSize || len(publicKey) != ed25519.PublicKeySize {
		return false
	}
	return ed25519.Verify(ed25519.PublicKey(publicKey), message, signature)
}

// decodeSignature attempts base58 first, then standard base64.
func decodeSignature(signature string) ([]byte, error) {
	if decoded, err := base58.Decode(signature); err == nil {
		return decoded, nil
	}
	if decoded, err := base64.StdEncoding.DecodeString(signature); err == nil {
		return decoded, nil
	}
	return nil, ErrInvalidSignatureEncoding
}

func failure(err error) VerificationResult {
	return VerificationResult{Success: false, Err: err}
}
