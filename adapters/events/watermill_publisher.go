package events

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ThreeDotsLabs/watermill/message"
	"github.com/google/uuid"

	"github.com/layer-3/siwa/ports"
)

const (
	// TopicSessionCreated carries events about newly issued sessions.
	TopicSessionCreated = "siwa.session.created"

	// TopicSessionRevoked carries events about revoked sessions.
	TopicSessionRevoked = "siwa.session.revoked"
)

// SessionEvent is the payload for session lifecycle events. It carries the
// session ID, never the bearer token.
type SessionEvent struct {
	Address   string    `json:"address"`
	SessionID string    `json:"session_id"`
	At        time.Time `json:"at"`
}

// WatermillPublisher implements the EventPublisher interface using Watermill.
type WatermillPublisher struct {
	publisher message.Publisher
}

// NewWatermillPublisher creates a new Watermill-backed publisher.
func NewWatermillPublisher(publisher message.Publisher) ports.EventPublisher {
	return &WatermillPublisher{publisher: publisher}
}

// PublishSessionCreated publishes a session-created event.
func (p *WatermillPublisher) PublishSessionCreated(ctx context.Context, address, sessionID string) error {
	return p.publish(TopicSessionCreated, address, sessionID)
}

// PublishSessionRevoked publishes a session-revoked event.
func (p *WatermillPublisher) PublishSessionRevoked(ctx context.Context, address, sessionID string) error {
	return p.publish(TopicSessionRevoked, address, sessionID)
}

func (p *WatermillPublisher) publish(topic, address, sessionID string) error {
	event := SessionEvent{
		Address:   address,
		SessionID: sessionID,
		At:        time.Now().UTC(),
	}

	payload, err := json.Marshal(event)
	if err != nil {
		return fmt.Errorf("failed to marshal event: %w", err)
	}

	msg := message.NewMessage(uuid.New().String(), payload)

	if err := p.publisher.Publish(topic, msg); err != nil {
		return fmt.Errorf("failed to publish event: %w", err)
	}

	return nil
}
