package model

import (
	"context"

	"github.com/cloudwego/eino/schema"
)

// ConversationState is everything persisted per conversation: the message
// transcript (user/assistant/tool messages, no system preambles) and the
// rolling metadata. Owned exclusively by the conversation store; mutated only
// inside one orchestration turn at a time per conversation id.
type ConversationState struct {
	ConversationID string            `json:"conversation_id"`
	Messages       []*schema.Message `json:"messages"`
	Metadata       Metadata          `json:"metadata"`
}

// NewConversationState constructs a fresh state with empty metadata and the
// given audit fingerprint.
func NewConversationState(conversationID, fingerprint string) *ConversationState {
	return &ConversationState{
		ConversationID: conversationID,
		Metadata:       Metadata{ConversationStarted: fingerprint},
	}
}

// ConversationStore persists conversation state keyed by conversation id with
// a bounded idle retention window.
type ConversationStore interface {
	// Load retrieves the last committed state. A miss returns (nil, nil):
	// the caller treats the conversation as fresh. Corrupted state is also
	// reported as a miss after logging, never as a turn failure.
	Load(ctx context.Context, conversationID string) (*ConversationState, error)

	// Commit durably replaces the state and refreshes its retention window.
	// Called exactly once per successful turn.
	Commit(ctx context.Context, conversationID string, state *ConversationState) error

	// Expire removes the state; subsequent Loads see a fresh conversation.
	Expire(ctx context.Context, conversationID string) error
}
