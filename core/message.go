package core

import (
	"fmt"
	"net/url"
	"regexp"
	"strings"
	"time"

	"github.com/mr-tron/base58"
)

const (
	// DefaultVersion is the protocol version emitted in new messages.
	DefaultVersion = "1"

	// DefaultChainID is the network identifier emitted in new messages.
	DefaultChainID = "mainnet-beta"

	// DefaultMessageTTL bounds a new message's validity unless suppressed.
	DefaultMessageTTL = 5 * time.Minute

	maxDomainLength = 253
	minAddressLen   = 32
	maxAddressLen   = 44
)

// domainPattern accepts hostname-like tokens; "localhost" is special-cased.
var domainPattern = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9.-]*[a-zA-Z0-9]$`)

// Message is the signed sign-in artifact. Timestamps are kept as the exact
// strings they were built or parsed with, so that serialization round-trips
// byte-for-byte.
type Message struct {
	Domain         string   `json:"domain"`
	Address        string   `json:"address"`
	Statement      string   `json:"statement,omitempty"`
	URI            string   `json:"uri"`
	Version        string   `json:"version"`
	ChainID        string   `json:"chainId"`
	Nonce          string   `json:"nonce"`
	IssuedAt       string   `json:"issuedAt"`
	ExpirationTime string   `json:"expirationTime,omitempty"`
	NotBefore      string   `json:"notBefore,omitempty"`
	RequestID      string   `json:"requestId,omitempty"`
	Resources      []string `json:"resources,omitempty"`
}

// MessageParams are the inputs for NewMessage. Domain, Address and URI are
// required; everything else defaults.
type MessageParams struct {
	Domain    string
	Address   string
	Statement string
	URI       string
	Version   string
	ChainID   string
	Nonce     string
	IssuedAt  string

	// ExpiresIn sets the expiration window relative to IssuedAt. Zero means
	// DefaultMessageTTL; set NoExpiration to omit the expiration entirely.
	ExpiresIn    time.Duration
	NoExpiration bool

	NotBefore string
	RequestID string
	Resources []string
}

// NewMessage validates params and builds a Message with defaults applied.
func NewMessage(params MessageParams) (*Message, error) {
	if err := validateDomain(params.Domain); err != nil {
		return nil, err
	}
	if err := validateURI(params.URI); err != nil {
		return nil, err
	}
	if err := validateAddress(params.Address); err != nil {
		return nil, err
	}

	msg := &Message{
		Domain:    params.Domain,
		Address:   params.Address,
		Statement: params.Statement,
		URI:       params.URI,
		Version:   params.Version,
		ChainID:   params.ChainID,
		Nonce:     params.Nonce,
		IssuedAt:  params.IssuedAt,
		NotBefore: params.NotBefore,
		RequestID: params.RequestID,
		Resources: params.Resources,
	}

	if msg.Version == "" {
		msg.Version = DefaultVersion
	}
	if msg.ChainID == "" {
		msg.ChainID = DefaultChainID
	}
	if msg.Nonce == "" {
		nonce, err := GenerateNonce(DefaultNonceLength)
		if err != nil {
			return nil, err
		}
		msg.Nonce = nonce
	}

	now := time.Now().UTC()
	issuedAt := now
	if msg.IssuedAt == "" {
		msg.IssuedAt = now.Format(time.RFC3339)
	} else if parsed, err := time.Parse(time.RFC3339, msg.IssuedAt); err == nil {
		issuedAt = parsed
	}

	if !params.NoExpiration {
		ttl := params.ExpiresIn
		if ttl == 0 {
			ttl = DefaultMessageTTL
		}
		msg.ExpirationTime = issuedAt.Add(ttl).Format(time.RFC3339)
	}

	return msg, nil
}

// Serialize renders the message in its canonical line-oriented layout.
// The output is the exact byte sequence a wallet signs.
func (m *Message) Serialize() string {
	lines := []string{
		m.Domain + headerSuffix,
		m.Address,
		"",
	}

	if m.Statement != "" {
		lines = append(lines, m.Statement, "")
	}

	lines = append(lines,
		"URI: "+m.URI,
		"Version: "+m.Version,
		"Chain ID: "+m.ChainID,
		"Nonce: "+m.Nonce,
		"Issued At: "+m.IssuedAt,
	)

	if m.ExpirationTime != "" {
		lines = append(lines, "Expiration Time: "+m.ExpirationTime)
	}
	if m.NotBefore != "" {
		lines = append(lines, "Not Before: "+m.NotBefore)
	}
	if m.RequestID != "" {
		lines = append(lines, "Request ID: "+m.RequestID)
	}
	if len(m.Resources) > 0 {
		lines = append(lines, "Resources:")
		for _, r := range m.Resources {
			lines = append(lines, "- "+r)
		}
	}

	return strings.Join(lines, "\n")
}

func validateDomain(domain string) error {
	if domain == "" || len(domain) > maxDomainLength {
		return ErrInvalidDomain
	}
	if domain == "localhost" {
		return nil
	}
	if !domainPattern.MatchString(domain) {
		return ErrInvalidDomain
	}
	return nil
}

func validateURI(uri string) error {
	parsed, err := url.Parse(uri)
	if err != nil || !parsed.IsAbs() {
		return ErrInvalidURI
	}
	return nil
}

func validateAddress(address string) error {
	if len(address) < minAddressLen || len(address) > maxAddressLen {
		return fmt.Errorf("%w: length must be %d-%d characters", ErrInvalidAddress, minAddressLen, maxAddressLen)
	}
	if _, err := base58.Decode(address); err != nil {
		return fmt.Errorf("%w: not base58", ErrInvalidAddress)
	}
	return nil
}
