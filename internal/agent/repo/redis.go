package repo

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/medusa-chatbot/server/internal/agent/model"
	errx "github.com/medusa-chatbot/server/internal/core/error"
	logx "github.com/medusa-chatbot/server/pkg/logger"
)

// RedisConversationStore persists conversation state as one JSON blob per
// conversation with a sliding idle TTL.
type RedisConversationStore struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisConversationStore(rdb redis.Cmdable, ttl time.Duration) *RedisConversationStore {
	return &RedisConversationStore{rdb: rdb, ttl: ttl}
}

func (r *RedisConversationStore) stateKey(conversationID string) string {
	return fmt.Sprintf("conversation:%s:state", conversationID)
}

// Load returns the committed state, or (nil, nil) for an unknown conversation.
// A blob that no longer decodes is logged and treated as a miss, so one
// corrupted conversation never takes a turn down.
func (r *RedisConversationStore) Load(ctx context.Context, conversationID string) (*model.ConversationState, error) {
	key := r.stateKey(conversationID)

	raw, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load conversation state from redis")
		return nil, errx.WrapRedis(err)
	}

	var state model.ConversationState
	if err := json.Unmarshal([]byte(raw), &state); err != nil {
		logx.Warn().
			Err(errx.StateCorruption(err)).
			Str("conversation_id", conversationID).
			Msg("corrupted conversation state; starting fresh")
		return nil, nil
	}

	// Touch the sliding window on read.
	if r.ttl > 0 {
		if err := r.rdb.Expire(ctx, key, r.ttl).Err(); err != nil {
			logx.Warn().Err(err).Str("key", key).Msg("failed to refresh TTL on conversation state")
		}
	}
	return &state, nil
}

// Commit replaces the blob and resets the idle TTL.
func (r *RedisConversationStore) Commit(ctx context.Context, conversationID string, state *model.ConversationState) error {
	b, err := json.Marshal(state)
	if err != nil {
		logx.Error().Err(err).Str("conversation_id", conversationID).Msg("failed to marshal conversation state")
		return fmt.Errorf("marshal conversation state: %w", err)
	}

	key := r.stateKey(conversationID)
	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to write conversation state to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

// Expire removes the state; the next Load sees a fresh conversation.
func (r *RedisConversationStore) Expire(ctx context.Context, conversationID string) error {
	key := r.stateKey(conversationID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete conversation state from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

var _ model.ConversationStore = (*RedisConversationStore)(nil)
