package session

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/noah-isme/timetable-console/internal/models"
	appErrors "github.com/noah-isme/timetable-console/pkg/errors"
)

const redisKeyPrefix = "timetable-console:session:"

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

// RedisStore keeps sessions as JSON values that expire with the session.
type RedisStore struct {
	client redisKV
	ttl    time.Duration
	logger *zap.Logger
	now    func() time.Time
}

// NewRedisStore wraps a Redis client. ttl bounds sessions that carry no
// expiry of their own.
func NewRedisStore(client redisKV, ttl time.Duration, logger *zap.Logger) *RedisStore {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &RedisStore{client: client, ttl: ttl, logger: logger, now: time.Now}
}

// Load returns the live session for key.
func (s *RedisStore) Load(ctx context.Context, key string) (*models.Session, error) {
	raw, err := s.client.Get(ctx, redisKeyPrefix+key).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, ErrNoSession
		}
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	var sess models.Session
	if err := json.Unmarshal(raw, &sess); err != nil {
		s.logger.Warn("discarding unreadable session", zap.String("key", key), zap.Error(err))
		return nil, ErrNoSession
	}
	return live(&sess, s.now())
}

// Save stores the session until its expiry.
func (s *RedisStore) Save(ctx context.Context, sess *models.Session) error {
	if sess == nil || sess.Key == "" {
		return appErrors.Clone(appErrors.ErrValidation, "session key is required")
	}
	ttl := s.ttl
	if !sess.ExpiresAt.IsZero() {
		ttl = sess.ExpiresAt.Sub(s.now())
		if ttl <= 0 {
			return s.Delete(ctx, sess.Key)
		}
	}
	payload, err := json.Marshal(sess)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	if err := s.client.Set(ctx, redisKeyPrefix+sess.Key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

// Delete forgets the session for key.
func (s *RedisStore) Delete(ctx context.Context, key string) error {
	if err := s.client.Del(ctx, redisKeyPrefix+key).Err(); err != nil {
		return fmt.Errorf("redis delete session: %w", err)
	}
	return nil
}
