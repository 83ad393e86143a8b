package ports

import "context"

// EventPublisher notifies other instances about session lifecycle changes.
// Session IDs are published, never bearer tokens.
type EventPublisher interface {
	PublishSessionCreated(ctx context.Context, address string, sessionID string) error
	PublishSessionRevoked(ctx context.Context, address string, sessionID string) error
}
