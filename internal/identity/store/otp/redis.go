package otp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"goggins/internal/identity/models"
	"goggins/pkg/sentinel"
)

// RedisStore holds pending OTP records in Redis, letting key TTL enforce
// expiry. An expired record is indistinguishable from a missing one, which
// both read back as ErrNotFound.
type RedisStore struct {
	client *redis.Client
}

func NewRedis(client *redis.Client) *RedisStore {
	return &RedisStore{client: client}
}

type redisRecord struct {
	Code      string    `json:"code"`
	Attempts  int       `json:"attempts"`
	ExpiresAt time.Time `json:"expires_at"`
}

func otpKey(userID uuid.UUID) string {
	return "otp:" + userID.String()
}

func (s *RedisStore) Save(ctx context.Context, p *models.PendingOTP) error {
	b, err := json.Marshal(redisRecord{Code: p.Code, Attempts: p.Attempts, ExpiresAt: p.ExpiresAt})
	if err != nil {
		return fmt.Errorf("marshal otp record: %w", err)
	}
	ttl := time.Until(p.ExpiresAt)
	if ttl <= 0 {
		return s.Delete(ctx, p.UserID)
	}
	if err := s.client.Set(ctx, otpKey(p.UserID), b, ttl).Err(); err != nil {
		return fmt.Errorf("save otp record: %w", err)
	}
	return nil
}

func (s *RedisStore) Find(ctx context.Context, userID uuid.UUID) (*models.PendingOTP, error) {
	b, err := s.client.Get(ctx, otpKey(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, sentinel.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("find otp record: %w", err)
	}
	var rec redisRecord
	if err := json.Unmarshal(b, &rec); err != nil {
		return nil, fmt.Errorf("unmarshal otp record: %w", err)
	}
	return &models.PendingOTP{
		UserID:    userID,
		Code:      rec.Code,
		Attempts:  rec.Attempts,
		ExpiresAt: rec.ExpiresAt,
	}, nil
}

func (s *RedisStore) Delete(ctx context.Context, userID uuid.UUID) error {
	if err := s.client.Del(ctx, otpKey(userID)).Err(); err != nil {
		return fmt.Errorf("delete otp record: %w", err)
	}
	return nil
}
