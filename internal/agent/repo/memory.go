package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/medusa-chatbot/server/internal/agent/model"
	errx "github.com/medusa-chatbot/server/internal/core/error"
	logx "github.com/medusa-chatbot/server/pkg/logger"
)

// MemoryConversationStore is an in-process store with the same semantics as
// the Redis one: JSON round-trip per operation and a sliding idle TTL. Used
// in tests and single-node setups without Redis.
type MemoryConversationStore struct {
	mu      sync.Mutex
	ttl     time.Duration
	entries map[string]*memoryEntry

	// now is swappable for expiry tests.
	now func() time.Time
}

type memoryEntry struct {
	blob     []byte
	deadline time.Time
}

func NewMemoryConversationStore(ttl time.Duration) *MemoryConversationStore {
	return &MemoryConversationStore{
		ttl:     ttl,
		entries: make(map[string]*memoryEntry),
		now:     time.Now,
	}
}

func (m *MemoryConversationStore) Load(_ context.Context, conversationID string) (*model.ConversationState, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	entry, ok := m.entries[conversationID]
	if !ok {
		return nil, nil
	}
	if m.ttl > 0 && m.now().After(entry.deadline) {
		delete(m.entries, conversationID)
		return nil, nil
	}

	var state model.ConversationState
	if err := json.Unmarshal(entry.blob, &state); err != nil {
		logx.Warn().
			Err(errx.StateCorruption(err)).
			Str("conversation_id", conversationID).
			Msg("corrupted conversation state; starting fresh")
		delete(m.entries, conversationID)
		return nil, nil
	}
	if m.ttl > 0 {
		entry.deadline = m.now().Add(m.ttl)
	}
	return &state, nil
}

func (m *MemoryConversationStore) Commit(_ context.Context, conversationID string, state *model.ConversationState) error {
	b, err := json.Marshal(state)
	if err != nil {
		return fmt.Errorf("marshal conversation state: %w", err)
	}

	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[conversationID] = &memoryEntry{
		blob:     b,
		deadline: m.now().Add(m.ttl),
	}
	return nil
}

func (m *MemoryConversationStore) Expire(_ context.Context, conversationID string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, conversationID)
	return nil
}

var _ model.ConversationStore = (*MemoryConversationStore)(nil)
