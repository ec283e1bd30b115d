package sessions

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	apperrors "github.com/jrsteele09/moto-session/internal/errors"
	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "moto:session:"

// RedisRepo stores sealed records in redis. Every read or write resets the
// key's TTL to idleTTL.
type RedisRepo struct {
	client  redis.Cmdable
	sealer  *Sealer
	idleTTL time.Duration
}

func NewRedisRepo(client redis.Cmdable, sealer *Sealer, idleTTL time.Duration) *RedisRepo {
	return &RedisRepo{client: client, sealer: sealer, idleTTL: idleTTL}
}

// OpenRedis connects to addr and checks the connection with a ping.
func OpenRedis(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("redis ping %s: %w", addr, err)
	}
	return client, nil
}

func redisKey(sessionID string) string {
	return redisKeyPrefix + sessionID
}

func (r *RedisRepo) Upsert(ctx context.Context, record *TokenRecord) error {
	if record == nil || record.ID == "" {
		return fmt.Errorf("sessionID is required")
	}

	payload, err := json.Marshal(record)
	if err != nil {
		return fmt.Errorf("[RedisRepo.Upsert] marshal: %w", err)
	}
	sealed, err := r.sealer.Seal(record.ID, payload)
	if err != nil {
		return fmt.Errorf("[RedisRepo.Upsert] seal: %w", err)
	}
	if err := r.client.Set(ctx, redisKey(record.ID), sealed, r.idleTTL).Err(); err != nil {
		return fmt.Errorf("[RedisRepo.Upsert] set: %w", err)
	}
	return nil
}

func (r *RedisRepo) Get(ctx context.Context, sessionID string) (*TokenRecord, error) {
	if sessionID == "" {
		return nil, fmt.Errorf("sessionID is required")
	}

	sealed, err := r.client.GetEx(ctx, redisKey(sessionID), r.idleTTL).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, apperrors.ErrSessionNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("[RedisRepo.Get] get: %w", err)
	}

	payload, err := r.sealer.Open(sessionID, sealed)
	if err != nil {
		return nil, fmt.Errorf("[RedisRepo.Get] %w", err)
	}
	var record TokenRecord
	if err := json.Unmarshal(payload, &record); err != nil {
		return nil, fmt.Errorf("[RedisRepo.Get] unmarshal: %w", err)
	}
	return &record, nil
}

func (r *RedisRepo) Delete(ctx context.Context, sessionID string) error {
	if sessionID == "" {
		return fmt.Errorf("sessionID is required")
	}
	if err := r.client.Del(ctx, redisKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("[RedisRepo.Delete] del: %w", err)
	}
	return nil
}
