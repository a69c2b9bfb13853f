package otp

import (
	"context"
	"errors"
	"fmt"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/Linh22400/website-ban-xe-dien-sub000/internal/domain/model"
)

const (
	redisKeyPrefix  = "otp:"
	maxWatchRetries = 5
)

var errContended = errors.New("otp entry contended")

// RedisStore keeps entries in Redis hashes that expire with the code.
type RedisStore struct {
	client redis.UniversalClient
}

// NewRedisStore builds a store on top of an existing client.
func NewRedisStore(client redis.UniversalClient) *RedisStore {
	return &RedisStore{client: client}
}

func (s *RedisStore) Put(ctx context.Context, phone string, entry model.OtpEntry) error {
	key := redisKeyPrefix + phone
	_, err := s.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		pipe.Del(ctx, key)
		pipe.HSet(ctx, key, encodeEntry(entry))
		pipe.PExpireAt(ctx, key, entry.ExpiresAt)
		return nil
	})
	if err != nil {
		return fmt.Errorf("store otp: %w", err)
	}
	return nil
}

// Update reads, mutates and writes the entry inside WATCH/MULTI, retrying
// when another client modified the key in between.
func (s *RedisStore) Update(ctx context.Context, phone string, fn Mutation) error {
	key := redisKeyPrefix + phone

	var result error
	txf := func(tx *redis.Tx) error {
		vals, err := tx.HGetAll(ctx, key).Result()
		if err != nil {
			return err
		}
		cur, err := decodeEntry(vals)
		if err != nil {
			return err
		}

		next, fnErr := fn(cur)
		result = fnErr
		if next == nil && cur == nil {
			return nil
		}

		_, err = tx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			if next == nil {
				pipe.Del(ctx, key)
				return nil
			}
			pipe.HSet(ctx, key, encodeEntry(*next))
			pipe.PExpireAt(ctx, key, next.ExpiresAt)
			return nil
		})
		return err
	}

	for i := 0; i < maxWatchRetries; i++ {
		err := s.client.Watch(ctx, txf, key)
		if err == nil {
			return result
		}
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return fmt.Errorf("update otp: %w", err)
	}
	return fmt.Errorf("update otp: %w", errContended)
}

func encodeEntry(e model.OtpEntry) map[string]any {
	return map[string]any{
		"code_hash":  e.CodeHash,
		"expires_at": e.ExpiresAt.UnixMilli(),
		"failed":     e.FailedAttempts,
		"created_at": e.CreatedAt.UnixMilli(),
	}
}

func decodeEntry(vals map[string]string) (*model.OtpEntry, error) {
	if len(vals) == 0 {
		return nil, nil
	}
	expires, err := strconv.ParseInt(vals["expires_at"], 10, 64)
	if err != nil {
		return nil, fmt.Errorf("decode otp expiry: %w", err)
	}
	failed, err := strconv.Atoi(vals["failed"])
	if err != nil {
		return nil, fmt.Errorf("decode otp attempts: %w", err)
	}
	created, _ := strconv.ParseInt(vals["created_at"], 10, 64)
	return &model.OtpEntry{
		CodeHash:       vals["code_hash"],
		ExpiresAt:      time.UnixMilli(expires),
		FailedAttempts: failed,
		CreatedAt:      time.UnixMilli(created),
	}, nil
}
