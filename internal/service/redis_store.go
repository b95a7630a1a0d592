package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/campusworks/examportal-backend/internal/config"
	"github.com/campusworks/examportal-backend/internal/model"
)

// RedisStore backs the session store, the exam-paper cache and the
// monitor event bus with a single Redis client.
type RedisStore struct {
	rdb *redis.Client
}

func NewRedisStore(rdb *redis.Client) *RedisStore {
	return &RedisStore{rdb: rdb}
}

var (
	_ SessionStore   = (*RedisStore)(nil)
	_ PaperCache     = (*RedisStore)(nil)
	_ EventPublisher = (*RedisStore)(nil)
)

func (s *RedisStore) PutSession(ctx context.Context, jti string, userID uuid.UUID, ttl time.Duration) error {
	key := config.RefreshSessionKey(jti)
	if err := s.rdb.Set(ctx, key, userID.String(), ttl).Err(); err != nil {
		return fmt.Errorf("failed to store session: %w", err)
	}
	return nil
}

func (s *RedisStore) GetSession(ctx context.Context, jti string) (uuid.UUID, bool, error) {
	val, err := s.rdb.Get(ctx, config.RefreshSessionKey(jti)).Result()
	if errors.Is(err, redis.Nil) {
		return uuid.Nil, false, nil
	}
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to load session: %w", err)
	}
	userID, err := uuid.Parse(val)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("corrupt session value: %w", err)
	}
	return userID, true, nil
}

func (s *RedisStore) DeleteSession(ctx context.Context, jti string) error {
	if err := s.rdb.Del(ctx, config.RefreshSessionKey(jti)).Err(); err != nil {
		return fmt.Errorf("failed to delete session: %w", err)
	}
	return nil
}

func (s *RedisStore) GetPaper(ctx context.Context, examID uuid.UUID) (*model.ExamPaper, error) {
	raw, err := s.rdb.Get(ctx, config.ExamPaperKey(examID.String())).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load cached paper: %w", err)
	}
	var paper model.ExamPaper
	if err := json.Unmarshal(raw, &paper); err != nil {
		return nil, fmt.Errorf("corrupt cached paper: %w", err)
	}
	return &paper, nil
}

func (s *RedisStore) SetPaper(ctx context.Context, examID uuid.UUID, paper *model.ExamPaper, ttl time.Duration) error {
	raw, err := json.Marshal(paper)
	if err != nil {
		return fmt.Errorf("failed to encode paper: %w", err)
	}
	if err := s.rdb.Set(ctx, config.ExamPaperKey(examID.String()), raw, ttl).Err(); err != nil {
		return fmt.Errorf("failed to cache paper: %w", err)
	}
	return nil
}

func (s *RedisStore) InvalidatePaper(ctx context.Context, examID uuid.UUID) error {
	if err := s.rdb.Del(ctx, config.ExamPaperKey(examID.String())).Err(); err != nil {
		return fmt.Errorf("failed to invalidate paper: %w", err)
	}
	return nil
}

func (s *RedisStore) PublishMonitorEvent(ctx context.Context, ev model.MonitorEvent) error {
	raw, err := json.Marshal(ev)
	if err != nil {
		return fmt.Errorf("failed to encode monitor event: %w", err)
	}
	channel := config.ExamMonitorChannel(ev.ExamID.String())
	if err := s.rdb.Publish(ctx, channel, raw).Err(); err != nil {
		return fmt.Errorf("failed to publish monitor event: %w", err)
	}
	return nil
}

// SubscribeMonitor opens a subscription on one exam's monitor channel.
// The caller owns the returned PubSub and must close it.
func (s *RedisStore) SubscribeMonitor(ctx context.Context, examID uuid.UUID) *redis.PubSub {
	return s.rdb.Subscribe(ctx, config.ExamMonitorChannel(examID.String()))
}
