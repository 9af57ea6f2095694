package model

import (
	"context"
)

// SessionRepository persists ConversationState between turns.
type SessionRepository interface {
	// LoadState retrieves the session state, or nil when the session is unknown.
	LoadState(ctx context.Context, sessionID string) (*ConversationState, error)

	// SaveState persists the full session state document.
	SaveState(ctx context.Context, state *ConversationState) error

	// ClearState removes all persisted data for a session.
	ClearState(ctx context.Context, sessionID string) error

	// MessageCount returns the number of transcript messages in the session.
	MessageCount(ctx context.Context, sessionID string) (int, error)
}
