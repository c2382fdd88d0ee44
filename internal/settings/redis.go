package settings

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"ticket-mailer/internal/logger"
	"ticket-mailer/internal/models"

	"github.com/go-redis/redis/v8"
)

const eventConfigKey = "event_config"

type RedisStore struct {
	Client *redis.Client
	Prefix string
}

func NewRedisStore(client *redis.Client, prefix string) *RedisStore {
	return &RedisStore{Client: client, Prefix: prefix}
}

// ConnectRedis opens a client and checks the connection before handing it out.
func ConnectRedis(addr string, db int, log *logger.Logger) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		DB:       db,
		PoolSize: 10,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if _, err := client.Ping(ctx).Result(); err != nil {
		client.Close()
		return nil, fmt.Errorf("failed to connect to redis at %s: %w", addr, err)
	}

	log.Info("REDIS", fmt.Sprintf("Connected to Redis at %s (DB %d)", addr, db))
	return client, nil
}

func (s *RedisStore) key(name string) string {
	return s.Prefix + name
}

func (s *RedisStore) GetEventConfig(ctx context.Context) (models.EventConfig, error) {
	raw, err := s.Client.Get(ctx, s.key(eventConfigKey)).Bytes()
	if errors.Is(err, redis.Nil) {
		return models.EventConfig{}, ErrNotFound
	}
	if err != nil {
		return models.EventConfig{}, fmt.Errorf("failed to read event config: %w", err)
	}

	var cfg models.EventConfig
	if err := json.Unmarshal(raw, &cfg); err != nil {
		return models.EventConfig{}, fmt.Errorf("failed to decode event config: %w", err)
	}
	return cfg, nil
}

func (s *RedisStore) SaveEventConfig(ctx context.Context, cfg models.EventConfig) error {
	raw, err := json.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("failed to encode event config: %w", err)
	}
	if err := s.Client.Set(ctx, s.key(eventConfigKey), raw, 0).Err(); err != nil {
		return fmt.Errorf("failed to save event config: %w", err)
	}
	return nil
}

func (s *RedisStore) LastSequence(ctx context.Context) (int64, error) {
	value, err := s.Client.Get(ctx, s.key(SequenceKey)).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	if err != nil {
		return 0, fmt.Errorf("failed to read sequence: %w", err)
	}
	return value, nil
}

func (s *RedisStore) IncrementSequence(ctx context.Context, quantity int64) (int64, error) {
	if quantity < 0 {
		return 0, ErrInvalidQuantity
	}
	value, err := s.Client.IncrBy(ctx, s.key(SequenceKey), quantity).Result()
	if err != nil {
		return 0, fmt.Errorf("failed to increment sequence: %w", err)
	}
	return value, nil
}

func (s *RedisStore) ResetSequence(ctx context.Context) error {
	if err := s.Client.Set(ctx, s.key(SequenceKey), 0, 0).Err(); err != nil {
		return fmt.Errorf("failed to reset sequence: %w", err)
	}
	return nil
}

func (s *RedisStore) Close() error {
	return s.Client.Close()
}
