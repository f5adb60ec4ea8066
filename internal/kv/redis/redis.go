// Package redis stores ledger blobs as Redis string values.
package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"fatura/internal/kv"
)

const DefaultPrefix = "fatura:"

type Options struct {
	Addr     string
	Password string
	DB       int
	Prefix   string
}

type Store struct {
	client redis.UniversalClient
	prefix string
}

var _ kv.Store = (*Store)(nil)

// Connect dials Redis and pings it before returning the store.
func Connect(ctx context.Context, opts Options) (*Store, error) {
	if opts.Addr == "" {
		return nil, errors.New("redis address is required")
	}
	rdb := redis.NewClient(&redis.Options{
		Addr:     opts.Addr,
		Password: opts.Password,
		DB:       opts.DB,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rdb.Ping(pingCtx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("failed to connect to Redis: %w", err)
	}
	return NewWithClient(rdb, opts.Prefix), nil
}

// NewWithClient wraps an existing client. An empty prefix means DefaultPrefix.
func NewWithClient(client redis.UniversalClient, prefix string) *Store {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &Store{client: client, prefix: prefix}
}

func (s *Store) redisKey(key string) string {
	return s.prefix + key
}

func (s *Store) Load(ctx context.Context, key string) ([]byte, error) {
	b, err := s.client.Get(ctx, s.redisKey(key)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, kv.ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("redis get %s: %w", key, err)
	}
	return b, nil
}

func (s *Store) Save(ctx context.Context, key string, value []byte) error {
	if err := s.client.Set(ctx, s.redisKey(key), value, 0).Err(); err != nil {
		return fmt.Errorf("redis set %s: %w", key, err)
	}
	return nil
}

func (s *Store) Ping(ctx context.Context) error {
	return s.client.Ping(ctx).Err()
}

func (s *Store) Close() error {
	if err := s.client.Close(); err != nil {
		return fmt.Errorf("failed to close Redis connection: %w", err)
	}
	return nil
}
