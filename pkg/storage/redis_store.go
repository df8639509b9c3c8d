package storage

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const defaultAnalysisKeyPrefix = "docuapi:analysis:"

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Addr     string
	Password string
	DB       int
}

// RedisAnalysisStore shares analysis records between server instances.
// Expiry is delegated to Redis key TTLs.
type RedisAnalysisStore struct {
	client    *redis.Client
	keyPrefix string
}

// NewRedisAnalysisStore connects to Redis and verifies the connection.
func NewRedisAnalysisStore(cfg RedisConfig) (*RedisAnalysisStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisAnalysisStoreWithClient(client, ""), nil
}

// NewRedisAnalysisStoreWithClient wraps an existing client.
func NewRedisAnalysisStoreWithClient(client *redis.Client, keyPrefix string) *RedisAnalysisStore {
	if keyPrefix == "" {
		keyPrefix = defaultAnalysisKeyPrefix
	}
	return &RedisAnalysisStore{client: client, keyPrefix: keyPrefix}
}

// Put implements AnalysisStore.
func (s *RedisAnalysisStore) Put(ctx context.Context, rec *AnalysisRecord, ttl time.Duration) error {
	if rec == nil || rec.ID == "" {
		return errors.New("analysis record needs an id")
	}

	now := time.Now()
	if rec.CreatedAt.IsZero() {
		rec.CreatedAt = now
	}
	if ttl > 0 {
		rec.ExpiresAt = now.Add(ttl)
	} else if !rec.ExpiresAt.IsZero() {
		ttl = time.Until(rec.ExpiresAt)
		if ttl <= 0 {
			return nil
		}
	}

	data, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("failed to marshal analysis: %w", err)
	}

	if err := s.client.Set(ctx, s.keyPrefix+rec.ID, data, ttl).Err(); err != nil {
		return fmt.Errorf("failed to store analysis: %w", err)
	}
	return nil
}

// Get implements AnalysisStore.
func (s *RedisAnalysisStore) Get(ctx context.Context, id string) (*AnalysisRecord, error) {
	data, err := s.client.Get(ctx, s.keyPrefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrAnalysisNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load analysis: %w", err)
	}

	var rec AnalysisRecord
	if err := json.Unmarshal(data, &rec); err != nil {
		return nil, fmt.Errorf("failed to decode analysis: %w", err)
	}
	return &rec, nil
}

// SweepExpired is a no-op: Redis evicts expired keys itself.
func (s *RedisAnalysisStore) SweepExpired(ctx context.Context) (int, error) {
	return 0, nil
}

// Close closes the Redis client.
func (s *RedisAnalysisStore) Close() error {
	return s.client.Close()
}

var _ AnalysisStore = (*RedisAnalysisStore)(nil)
