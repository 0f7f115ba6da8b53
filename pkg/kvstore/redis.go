package kvstore

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig holds Redis connection settings.
type RedisConfig struct {
	Host         string
	Port         int
	Password     string
	DB           int
	PoolSize     int
	MinIdleConns int
	Prefix       string
}

// RedisOption configures the Redis store.
type RedisOption func(*RedisConfig)

// WithAddr sets host and port.
func WithAddr(host string, port int) RedisOption {
	return func(c *RedisConfig) {
		c.Host = host
		c.Port = port
	}
}

// WithAuth sets password and database index.
func WithAuth(password string, db int) RedisOption {
	return func(c *RedisConfig) {
		c.Password = password
		c.DB = db
	}
}

// WithPrefix sets the key namespace prefix.
func WithPrefix(prefix string) RedisOption {
	return func(c *RedisConfig) {
		c.Prefix = prefix
	}
}

// Redis implements Store on a Redis database. All keys live under a
// namespace prefix so several deployments can share one instance.
type Redis struct {
	client *redis.Client
	prefix string
}

// NewRedis connects to Redis and verifies the connection.
func NewRedis(opts ...RedisOption) (*Redis, error) {
	cfg := &RedisConfig{
		Host:         "localhost",
		Port:         6379,
		DB:           0,
		PoolSize:     10,
		MinIdleConns: 2,
		Prefix:       "signaldesk",
	}

	for _, opt := range opts {
		opt(cfg)
	}

	client := redis.NewClient(&redis.Options{
		Addr:         fmt.Sprintf("%s:%d", cfg.Host, cfg.Port),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     cfg.PoolSize,
		MinIdleConns: cfg.MinIdleConns,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("redis ping: %w", err)
	}

	return &Redis{client: client, prefix: cfg.Prefix}, nil
}

func (s *Redis) Get(ctx context.Context, key string) (string, error) {
	v, err := s.client.Get(ctx, s.wrap(key)).Result()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return "", ErrNotFound
		}
		return "", err
	}
	return v, nil
}

func (s *Redis) Set(ctx context.Context, key, value string) error {
	return s.client.Set(ctx, s.wrap(key), value, 0).Err()
}

func (s *Redis) Remove(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	wrapped := make([]string, len(keys))
	for i, k := range keys {
		wrapped[i] = s.wrap(k)
	}
	return s.client.Unlink(ctx, wrapped...).Err()
}

func (s *Redis) KeysWithPrefix(ctx context.Context, prefix string) ([]string, error) {
	found, err := s.client.Keys(ctx, s.wrap(prefix)+"*").Result()
	if err != nil {
		return nil, err
	}
	keys := make([]string, 0, len(found))
	for _, k := range found {
		keys = append(keys, s.unwrap(k))
	}
	return keys, nil
}

func (s *Redis) Close() error {
	return s.client.Close()
}

func (s *Redis) wrap(key string) string {
	return s.prefix + ":" + key
}

func (s *Redis) unwrap(key string) string {
	return strings.TrimPrefix(key, s.prefix+":")
}
