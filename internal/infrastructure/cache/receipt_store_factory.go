package cache

import (
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/tesoreria/backend/internal/domain/receipt"
	"github.com/tesoreria/backend/internal/infrastructure/config"
)

// ReceiptStoreFactory creates session receipt stores based on configuration
type ReceiptStoreFactory struct {
	redisConfig           config.RedisConfig
	sessionTTL            time.Duration
	logger                *zap.Logger
	allowInMemoryFallback bool
}

// ReceiptStoreFactoryOption is a functional option for configuring the factory
type ReceiptStoreFactoryOption func(*ReceiptStoreFactory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) ReceiptStoreFactoryOption {
	return func(f *ReceiptStoreFactory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether to fall back to the in-memory store
// when Redis is unavailable. Default is true.
func WithInMemoryFallback(allow bool) ReceiptStoreFactoryOption {
	return func(f *ReceiptStoreFactory) {
		f.allowInMemoryFallback = allow
	}
}

// NewReceiptStoreFactory creates a new factory
func NewReceiptStoreFactory(cfg config.RedisConfig, sessionTTL time.Duration, opts ...ReceiptStoreFactoryOption) *ReceiptStoreFactory {
	f := &ReceiptStoreFactory{
		redisConfig:           cfg,
		sessionTTL:            sessionTTL,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}

	for _, opt := range opts {
		opt(f)
	}

	return f
}

// CreateRedisStore creates a Redis-based session receipt store
func (f *ReceiptStoreFactory) CreateRedisStore() (receipt.SessionReceiptStore, error) {
	redisCfg := RedisConfig{
		Host:     f.redisConfig.Host,
		Port:     f.redisConfig.Port,
		Password: f.redisConfig.Password,
		DB:       f.redisConfig.DB,
	}

	store, err := NewRedisReceiptStore(redisCfg, f.sessionTTL)
	if err != nil {
		return nil, fmt.Errorf("failed to create Redis receipt store: %w", err)
	}

	return store, nil
}

// CreateInMemoryStore creates an in-memory session receipt store.
// In-memory stores do not share state across process instances, so a
// reprint routed to another instance falls back to the repository.
func (f *ReceiptStoreFactory) CreateInMemoryStore() receipt.SessionReceiptStore {
	return NewInMemoryReceiptStore(f.sessionTTL)
}

// CreateStore tries Redis first and falls back to in-memory when Redis is
// unavailable and fallback is allowed.
func (f *ReceiptStoreFactory) CreateStore() (receipt.SessionReceiptStore, error) {
	store, err := f.CreateRedisStore()
	if err == nil {
		f.logger.Info("using Redis session receipt store")
		return store, nil
	}

	if !f.allowInMemoryFallback {
		return nil, fmt.Errorf("Redis required for receipt cache but unavailable: %w", err)
	}

	f.logger.Warn("Redis unavailable, falling back to in-memory session receipt store",
		zap.Error(err),
	)
	return f.CreateInMemoryStore(), nil
}
