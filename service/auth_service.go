package service

import (
	"context"
	"crypto/rand"
	"crypto/sha256"
	"encoding/base64"
	"encoding/hex"
	"fmt"
	"log"
	"time"

	"github.com/google/uuid"

	"github.com/layer-3/siwa/core"
	"github.com/layer-3/siwa/ports"
)

// SessionTokenPrefix makes bearer tokens recognizable in logs and tooling.
const SessionTokenPrefix = "siwa_"

const (
	challengeNonceLength = 32
	sessionTokenBytes    = 32
)

// Config holds the server-side parameters every issued challenge is bound to.
type Config struct {
	// Domain and URI identify this server in issued messages. Both required.
	Domain string
	URI    string

	// Statement and Resources are copied into every challenge. Optional.
	Statement string
	Resources []string

	// ChainID identifies the target network. Defaults to core.DefaultChainID.
	ChainID string

	// ChallengeTTL bounds how long an issued challenge stays verifiable.
	// Defaults to 5 minutes.
	ChallengeTTL time.Duration

	// SessionTTL bounds issued sessions. Defaults to 60 minutes.
	SessionTTL time.Duration

	// RateLimitEnabled turns on per-caller challenge rate limiting.
	RateLimitEnabled bool

	// RateLimitMax and RateLimitWindow configure the fixed window.
	// Defaults: 10 requests per 15 minutes.
	RateLimitMax    int
	RateLimitWindow time.Duration
}

func (c Config) withDefaults() Config {
	if c.ChainID == "" {
		c.ChainID = core.DefaultChainID
	}
	if c.ChallengeTTL == 0 {
		c.ChallengeTTL = 5 * time.Minute
	}
	if c.SessionTTL == 0 {
		c.SessionTTL = 60 * time.Minute
	}
	if c.RateLimitMax == 0 {
		c.RateLimitMax = 10
	}
	if c.RateLimitWindow == 0 {
		c.RateLimitWindow = 15 * time.Minute
	}
	return c
}

// AuthService orchestrates challenge issuance and verification. It holds no
// per-agent state of its own; the stores are the only ground truth, so
// multiple instances can share the same backing store.
type AuthService struct {
	cfg      Config
	nonces   ports.NonceStore
	sessions ports.SessionStore
	limits   ports.RateLimitStore
	events   ports.EventPublisher
}

// NewAuthService creates the orchestrator. The rate-limit store and event
// publisher may be nil, which disables the corresponding behavior.
func NewAuthService(
	cfg Config,
	nonces ports.NonceStore,
	sessions ports.SessionStore,
	limits ports.RateLimitStore,
	events ports.EventPublisher,
) *AuthService {
	return &AuthService{
		cfg:      cfg.withDefaults(),
		nonces:   nonces,
		sessions: sessions,
		limits:   limits,
		events:   events,
	}
}

// CreateChallenge issues a new sign-in challenge for the public key. The
// optional clientID (IP or pubkey) is the rate-limiting identity; when empty
// or when rate limiting is disabled no limit is consulted.
func (s *AuthService) CreateChallenge(ctx context.Context, publicKey, clientID string) (*core.Challenge, error) {
	if s.cfg.RateLimitEnabled && s.limits != nil && clientID != "" {
		result, err := s.limits.Increment(ctx, clientID, s.cfg.RateLimitWindow, s.cfg.RateLimitMax)
		if err != nil {
			return nil, err
		}
		if !result.Allowed {
			return nil, fmt.Errorf("%w: retry after %s", core.ErrRateLimitExceeded, result.ResetTime.Format(time.RFC3339))
		}
	}

	if !core.IsValidAddress(publicKey) {
		return nil, core.ErrInvalidPublicKey
	}

	nonce, err := core.GenerateNonce(challengeNonceLength)
	if err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	msg, err := core.NewMessage(core.MessageParams{
		Domain:    s.cfg.Domain,
		Address:   publicKey,
		Statement: s.cfg.Statement,
		URI:       s.cfg.URI,
		ChainID:   s.cfg.ChainID,
		Nonce:     nonce,
		Resources: s.cfg.Resources,
		ExpiresIn: s.cfg.ChallengeTTL,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to build message: %w", err)
	}

	text := msg.Serialize()
	expiresAt, err := time.Parse(time.RFC3339, msg.ExpirationTime)
	if err != nil {
		return nil, fmt.Errorf("failed to parse challenge expiry: %w", err)
	}

	record := &core.NonceRecord{
		PublicKey: publicKey,
		Message:   text,
		ExpiresAt: expiresAt,
	}
	if err := s.nonces.Set(ctx, nonce, record); err != nil {
		return nil, err
	}

	return &core.Challenge{
		ID:          digest(nonce),
		Message:     text,
		MessageHash: digest(text),
		ExpiresAt:   expiresAt,
	}, nil
}

// VerifySignature checks a signed challenge, consumes its nonce exactly once
// and mints a session. A second call with the same message fails with
// ErrNonceInvalidOrExpired regardless of how valid the signature is.
func (s *AuthService) VerifySignature(ctx context.Context, messageText, publicKey, signature string) (*core.Session, error) {
	result := core.VerifyMessage(messageText, signature, publicKey, &core.VerifyOptions{
		Domain: s.cfg.Domain,
	})
	if !result.Success {
		return nil, result.Err
	}

	record, err := s.nonces.Consume(ctx, result.Message.Nonce)
	if err != nil {
		return nil, err
	}
	if record == nil {
		return nil, core.ErrNonceInvalidOrExpired
	}

	if record.PublicKey != publicKey {
		return nil, core.ErrPublicKeyMismatch
	}

	token, err := newSessionToken()
	if err != nil {
		return nil, fmt.Errorf("failed to mint session token: %w", err)
	}

	now := time.Now().UTC()
	session := &core.SessionRecord{
		ID:        uuid.New().String(),
		Address:   publicKey,
		ExpiresAt: now.Add(s.cfg.SessionTTL),
		Scopes:    result.Message.Resources,
		Message:   messageText,
	}
	if err := s.sessions.Set(ctx, token, session); err != nil {
		return nil, err
	}

	if s.events != nil {
		if err := s.events.PublishSessionCreated(ctx, session.Address, session.ID); err != nil {
			log.Printf("failed to publish session created event: %v", err)
		}
	}

	return &core.Session{
		Token:     token,
		Address:   session.Address,
		ExpiresAt: session.ExpiresAt,
		Scopes:    session.Scopes,
	}, nil
}

// ValidateSession resolves a bearer token against the session store. An
// absent or expired session reads back as (nil, nil).
func (s *AuthService) ValidateSession(ctx context.Context, token string) (*core.SessionRecord, error) {
	if token == "" {
		return nil, nil
	}
	return s.sessions.Get(ctx, token)
}

// RevokeSession deletes the session for the token. Idempotent: revoking an
// unknown or already-revoked token succeeds.
func (s *AuthService) RevokeSession(ctx context.Context, token string) error {
	record, err := s.sessions.Get(ctx, token)
	if err != nil {
		return err
	}

	if err := s.sessions.Delete(ctx, token); err != nil {
		return err
	}

	if record != nil && s.events != nil {
		if err := s.events.PublishSessionRevoked(ctx, record.Address, record.ID); err != nil {
			log.Printf("failed to publish session revoked event: %v", err)
		}
	}

	return nil
}

func newSessionToken() (string, error) {
	buf := make([]byte, sessionTokenBytes)
	if _, err := rand.Read(buf); err != nil {
		return "", err
	}
	return SessionTokenPrefix + base64.RawURLEncoding.EncodeToString(buf), nil
}

func digest(value string) string {
	sum := sha256.Sum256([]byte(value))
	return hex.EncodeToString(sum[:])
}
