// Package redis keeps the console session in Redis so several console
// processes on different hosts can share one login.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/aussiebroadwan/lmsconsole/pkg/lmsclient"
)

// DefaultPrefix namespaces the session keys.
const DefaultPrefix = "lmsconsole:"

// Config holds the connection settings for the state store.
type Config struct {
	Addr     string
	Password string
	DB       int
	Prefix   string

	// TTL expires stored keys. Zero keeps them until deleted.
	TTL time.Duration
}

// Store implements lmsclient.Storage on Redis.
type Store struct {
	Client *redis.Client

	prefix string
	ttl    time.Duration
}

var (
	_ lmsclient.Storage = (*Store)(nil)
	_ lmsclient.Toucher = (*Store)(nil)
)

// Open connects to Redis and verifies the connection.
func Open(ctx context.Context, cfg Config) (*Store, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("unable to reach redis at %s: %w", cfg.Addr, err)
	}

	return New(client, cfg.Prefix, cfg.TTL), nil
}

// New wraps an existing client. An empty prefix uses DefaultPrefix.
func New(client *redis.Client, prefix string, ttl time.Duration) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{Client: client, prefix: prefix, ttl: ttl}
}

// Close closes the client.
func (s *Store) Close() error {
	if s == nil || s.Client == nil {
		return nil
	}
	return s.Client.Close()
}

// Ping verifies Redis connectivity.
func (s *Store) Ping(ctx context.Context) error {
	if s == nil || s.Client == nil {
		return errors.New("redis client not configured")
	}
	return s.Client.Ping(ctx).Err()
}

func (s *Store) Get(ctx context.Context, key string) (string, error) {
	v, err := s.Client.Get(ctx, s.key(key)).Result()
	if errors.Is(err, redis.Nil) {
		return "", lmsclient.ErrNotFound
	}
	return v, err
}

func (s *Store) Set(ctx context.Context, key, value string) error {
	return s.Client.Set(ctx, s.key(key), value, s.ttl).Err()
}

func (s *Store) Delete(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}

	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = s.key(k)
	}
	return s.Client.Del(ctx, full...).Err()
}

// Touch resets the TTL of the given keys. Missing keys are skipped.
func (s *Store) Touch(ctx context.Context, keys ...string) error {
	if s.ttl <= 0 || len(keys) == 0 {
		return nil
	}

	pipe := s.Client.Pipeline()
	for _, k := range keys {
		pipe.Expire(ctx, s.key(k), s.ttl)
	}
	_, err := pipe.Exec(ctx)
	return err
}

func (s *Store) key(k string) string { return s.prefix + k }
