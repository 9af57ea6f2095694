package repo

import (
	"context"
	"time"

	errx "github.com/atelier-mentor/server/internal/core/error"
	"github.com/atelier-mentor/server/internal/tutor/model"
	logx "github.com/atelier-mentor/server/pkg/logger"
	"github.com/redis/go-redis/v9"
)

// RedisSessionRepository persists each session as a single JSON document,
// TTL-extended on touch.
type RedisSessionRepository struct {
	rdb redis.Cmdable
	ttl time.Duration
}

func NewRedisSessionRepository(rdb redis.Cmdable, ttl time.Duration) *RedisSessionRepository {
	return &RedisSessionRepository{rdb: rdb, ttl: ttl}
}

func (r *RedisSessionRepository) sessionKey(sessionID string) string {
	return "session:" + sessionID + ":state"
}

func (r *RedisSessionRepository) LoadState(ctx context.Context, sessionID string) (*model.ConversationState, error) {
	key := r.sessionKey(sessionID)

	raw, err := r.rdb.Get(ctx, key).Result()
	if err != nil {
		if err == redis.Nil {
			return nil, nil
		}
		logx.Error().Err(err).Str("key", key).Msg("failed to load session state from redis")
		return nil, errx.WrapRedis(err)
	}

	state, err := model.LoadSession([]byte(raw))
	if err != nil {
		logx.Error().Err(err).Str("session_id", sessionID).Msg("failed to decode session state")
		return nil, err
	}
	return state, nil
}

func (r *RedisSessionRepository) SaveState(ctx context.Context, state *model.ConversationState) error {
	b, err := model.ExportSession(state)
	if err != nil {
		logx.Error().Err(err).Str("session_id", state.SessionID).Msg("failed to marshal session state")
		return err
	}
	key := r.sessionKey(state.SessionID)

	if err := r.rdb.Set(ctx, key, b, r.ttl).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to save session state to redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisSessionRepository) ClearState(ctx context.Context, sessionID string) error {
	key := r.sessionKey(sessionID)
	if err := r.rdb.Del(ctx, key).Err(); err != nil {
		logx.Error().Err(err).Str("key", key).Msg("failed to delete session state from redis")
		return errx.WrapRedis(err)
	}
	return nil
}

func (r *RedisSessionRepository) MessageCount(ctx context.Context, sessionID string) (int, error) {
	state, err := r.LoadState(ctx, sessionID)
	if err != nil {
		return 0, err
	}
	if state == nil {
		return 0, nil
	}
	return len(state.Messages), nil
}

var _ model.SessionRepository = (*RedisSessionRepository)(nil)

// MemorySessionRepository keeps sessions in process memory. Used by tests and
// the demo driver when Redis is not configured.
type MemorySessionRepository struct {
	states map[string][]byte
}

func NewMemorySessionRepository() *MemorySessionRepository {
	return &MemorySessionRepository{states: map[string][]byte{}}
}

func (r *MemorySessionRepository) LoadState(ctx context.Context, sessionID string) (*model.ConversationState, error) {
	raw, ok := r.states[sessionID]
	if !ok {
		return nil, nil
	}
	return model.LoadSession(raw)
}

func (r *MemorySessionRepository) SaveState(ctx context.Context, state *model.ConversationState) error {
	b, err := model.ExportSession(state)
	if err != nil {
		return err
	}
	r.states[state.SessionID] = b
	return nil
}

func (r *MemorySessionRepository) ClearState(ctx context.Context, sessionID string) error {
	delete(r.states, sessionID)
	return nil
}

func (r *MemorySessionRepository) MessageCount(ctx context.Context, sessionID string) (int, error) {
	state, err := r.LoadState(ctx, sessionID)
	if err != nil || state == nil {
		return 0, err
	}
	return len(state.Messages), nil
}

var _ model.SessionRepository = (*MemorySessionRepository)(nil)
