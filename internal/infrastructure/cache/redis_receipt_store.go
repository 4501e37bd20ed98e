package cache

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/tesoreria/backend/internal/domain/receipt"
)

// RedisReceiptStore implements receipt.SessionReceiptStore using Redis.
// This is suitable for deployments where several instances serve the same
// operator sessions.
type RedisReceiptStore struct {
	client    *redis.Client
	keyPrefix string
	ttl       time.Duration
}

// RedisConfig holds Redis connection configuration
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// NewRedisReceiptStore creates a new Redis-based session receipt store.
// ttl is the session lifetime applied to each session hash.
func NewRedisReceiptStore(cfg RedisConfig, ttl time.Duration) (*RedisReceiptStore, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	// Test connection
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}

	return NewRedisReceiptStoreWithClient(client, "", ttl), nil
}

// NewRedisReceiptStoreWithClient creates a store with an existing Redis
// client. This is useful for testing or when sharing a client across
// components.
func NewRedisReceiptStoreWithClient(client *redis.Client, keyPrefix string, ttl time.Duration) *RedisReceiptStore {
	if keyPrefix == "" {
		keyPrefix = "session:receipts:"
	}
	if ttl <= 0 {
		ttl = 8 * time.Hour
	}
	return &RedisReceiptStore{
		client:    client,
		keyPrefix: keyPrefix,
		ttl:       ttl,
	}
}

func (s *RedisReceiptStore) sessionKey(sessionID string) string {
	return s.keyPrefix + sessionID
}

// Put stores the receipt in the session hash keyed by folio and refreshes
// the session TTL.
func (s *RedisReceiptStore) Put(ctx context.Context, sessionID string, r *receipt.PrintableReceipt) error {
	data, err := json.Marshal(receipt.Snapshot(r))
	if err != nil {
		return err
	}

	key := s.sessionKey(sessionID)
	pipe := s.client.TxPipeline()
	pipe.HSet(ctx, key, r.Folio, data)
	pipe.Expire(ctx, key, s.ttl)
	if _, err := pipe.Exec(ctx); err != nil {
		return fmt.Errorf("failed to cache receipt: %w", err)
	}
	return nil
}

// Get returns the cached receipt for (sessionID, folio). A Redis error or
// malformed stored value is a miss, never an error: the caller falls back
// to the repository.
func (s *RedisReceiptStore) Get(ctx context.Context, sessionID, folio string) (*receipt.PrintableReceipt, bool) {
	data, err := s.client.HGet(ctx, s.sessionKey(sessionID), folio).Bytes()
	if err != nil {
		return nil, false
	}

	var snap receipt.CachedSnapshot
	if err := json.Unmarshal(data, &snap); err != nil {
		return nil, false
	}
	return receipt.FromSnapshot(snap), true
}

// Clear drops every receipt cached for the session
func (s *RedisReceiptStore) Clear(ctx context.Context, sessionID string) error {
	if err := s.client.Del(ctx, s.sessionKey(sessionID)).Err(); err != nil {
		return fmt.Errorf("failed to clear session cache: %w", err)
	}
	return nil
}

// Close closes the Redis client
func (s *RedisReceiptStore) Close() error {
	return s.client.Close()
}

// GetClient returns the underlying Redis client (for testing/monitoring)
func (s *RedisReceiptStore) GetClient() *redis.Client {
	return s.client
}

// Ensure RedisReceiptStore implements SessionReceiptStore
var _ receipt.SessionReceiptStore = (*RedisReceiptStore)(nil)
