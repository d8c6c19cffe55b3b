package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"mysteries-backend/internal/config"

	"github.com/redis/go-redis/v9"
)

// RedisStore runs every transition under WATCH on a single version key.
// Reads go straight to Redis, writes are buffered and flushed in one
// MULTI/EXEC together with an INCR of the version, so two transitions that
// overlap cannot both commit.
type RedisStore struct {
	client *redis.Client
	prefix string
}

func NewRedisStore(cfg *config.Config) (*RedisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.RedisURL,
		Password: cfg.RedisPass,
		DB:       cfg.RedisDB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis: %v", err)
	}

	return &RedisStore{
		client: client,
		prefix: cfg.KeyPrefix,
	}, nil
}

type redisTx struct {
	ctx    context.Context
	rtx    *redis.Tx
	prefix string
	writes map[string][]byte
	order  []string
}

func (t *redisTx) Get(key string) ([]byte, bool, error) {
	if v, ok := t.writes[key]; ok {
		if v == nil {
			return nil, false, nil
		}
		return v, true, nil
	}

	data, err := t.rtx.Get(t.ctx, t.prefix+key).Bytes()
	if err == redis.Nil {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("failed to get %s: %v", key, err)
	}
	return data, true, nil
}

func (t *redisTx) Set(key string, value []byte) {
	t.track(key)
	t.writes[key] = append([]byte{}, value...)
}

func (t *redisTx) Del(key string) {
	t.track(key)
	t.writes[key] = nil
}

func (t *redisTx) track(key string) {
	if _, seen := t.writes[key]; !seen {
		t.order = append(t.order, key)
	}
}

func (s *RedisStore) newTx(ctx context.Context, rtx *redis.Tx) *redisTx {
	return &redisTx{
		ctx:    ctx,
		rtx:    rtx,
		prefix: s.prefix,
		writes: make(map[string][]byte),
	}
}

func (s *RedisStore) Update(ctx context.Context, fn func(tx Tx) error) error {
	versionKey := s.prefix + KeyStateVersion

	txf := func(rtx *redis.Tx) error {
		tx := s.newTx(ctx, rtx)
		if err := fn(tx); err != nil {
			return err
		}
		if len(tx.order) == 0 {
			return nil
		}

		_, err := rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			for _, key := range tx.order {
				if v := tx.writes[key]; v != nil {
					pipe.Set(ctx, s.prefix+key, v, 0)
				} else {
					pipe.Del(ctx, s.prefix+key)
				}
			}
			pipe.Incr(ctx, versionKey)
			return nil
		})
		return err
	}

	return s.watchWithRetry(ctx, txf, versionKey)
}

// View reads under WATCH and closes with an empty MULTI/EXEC, so a commit
// that lands in the middle of the reads forces a retry.
func (s *RedisStore) View(ctx context.Context, fn func(tx Tx) error) error {
	versionKey := s.prefix + KeyStateVersion

	txf := func(rtx *redis.Tx) error {
		if err := fn(s.newTx(ctx, rtx)); err != nil {
			return err
		}
		_, err := rtx.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
			pipe.Get(ctx, versionKey)
			return nil
		})
		if errors.Is(err, redis.Nil) {
			return nil
		}
		return err
	}

	return s.watchWithRetry(ctx, txf, versionKey)
}

func (s *RedisStore) watchWithRetry(ctx context.Context, txf func(*redis.Tx) error, versionKey string) error {
	for i := 0; i < MaxTxRetries; i++ {
		err := s.client.Watch(ctx, txf, versionKey)
		if errors.Is(err, redis.TxFailedErr) {
			continue
		}
		return err
	}
	return fmt.Errorf("transition aborted after %d retries: %w", MaxTxRetries, redis.TxFailedErr)
}

func (s *RedisStore) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *RedisStore) Close() error {
	return s.client.Close()
}

func (s *RedisStore) CheckRateLimit(ctx context.Context, subject, action string, limit int, window time.Duration) (bool, error) {
	key := s.prefix + fmt.Sprintf(KeyRateLimit, subject, action)

	count, err := s.client.Incr(ctx, key).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check rate limit: %v", err)
	}

	if count == 1 {
		s.client.Expire(ctx, key, window)
	}

	return count <= int64(limit), nil
}

// Reset deletes every key under the store prefix.
func (s *RedisStore) Reset(ctx context.Context) error {
	iter := s.client.Scan(ctx, 0, s.prefix+"*", 100).Iterator()
	var keys []string
	for iter.Next(ctx) {
		keys = append(keys, iter.Val())
	}
	if err := iter.Err(); err != nil {
		return fmt.Errorf("failed to scan keys: %v", err)
	}
	if len(keys) == 0 {
		return nil
	}
	return s.client.Del(ctx, keys...).Err()
}
