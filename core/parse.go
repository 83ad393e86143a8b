package core

import (
	"fmt"
	"strings"
)

const headerSuffix = " wants you to sign in with your Solana account:"

// ParseMessage reverses Serialize. Only the canonical layout is accepted:
// the enumerated field keys are recognized and any other "Key: value" line
// is a parse error rather than being silently folded into the message.
func ParseMessage(text string) (*Message, error) {
	lines := strings.Split(text, "\n")

	if len(lines) < 2 || !strings.HasSuffix(lines[0], headerSuffix) || lines[0] == headerSuffix {
		return nil, fmt.Errorf("%w: missing header", ErrInvalidMessage)
	}
	domain := strings.TrimSuffix(lines[0], headerSuffix)

	address := strings.TrimSpace(lines[1])
	if address == "" {
		return nil, fmt.Errorf("%w: missing address", ErrInvalidMessage)
	}

	uriIdx := -1
	for i := 2; i < len(lines); i++ {
		if strings.HasPrefix(lines[i], "URI: ") {
			uriIdx = i
			break
		}
	}
	if uriIdx == -1 {
		return nil, fmt.Errorf("%w: missing URI", ErrInvalidMessage)
	}

	// The statement is a single-line field: the first non-blank line between
	// the address and the field block.
	statement := ""
	for _, line := range lines[2:uriIdx] {
		if strings.TrimSpace(line) != "" {
			statement = line
			break
		}
	}

	msg := &Message{
		Domain:    domain,
		Address:   address,
		Statement: statement,
	}

	inResources := false
	for _, line := range lines[uriIdx:] {
		if inResources {
			if strings.HasPrefix(line, "- ") {
				msg.Resources = append(msg.Resources, strings.TrimPrefix(line, "- "))
				continue
			}
			return nil, fmt.Errorf("%w: unrecognized line %q", ErrInvalidMessage, line)
		}

		if line == "Resources:" {
			inResources = true
			continue
		}

		key, value, found := strings.Cut(line, ": ")
		if !found {
			return nil, fmt.Errorf("%w: unrecognized line %q", ErrInvalidMessage, line)
		}

		switch key {
		case "URI":
			msg.URI = value
		case "Version":
			msg.Version = value
		case "Chain ID":
			msg.ChainID = value
		case "Nonce":
			msg.Nonce = value
		case "Issued At":
			msg.IssuedAt = value
		case "Expiration Time":
			msg.ExpirationTime = value
		case "Not Before":
			msg.NotBefore = value
		case "Request ID":
			msg.RequestID = value
		default:
			return nil, fmt.Errorf("%w: unrecognized line %q", ErrInvalidMessage, line)
		}
	}

	for _, field := range []struct {
		name  string
		value string
	}{
		{"URI", msg.URI},
		{"Version", msg.Version},
		{"Chain ID", msg.ChainID},
		{"Nonce", msg.Nonce},
		{"Issued At", msg.IssuedAt},
	} {
		if field.value == "" {
			return nil, fmt.Errorf("%w: missing %s", ErrInvalidMessage, field.name)
		}
	}

	return msg, nil
}
