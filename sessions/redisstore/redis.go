package redisstore

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/joeshaw/envdecode"
	"github.com/mulesoft-labs/wikiauth/sessions"
	"github.com/redis/go-redis/v9"
)

// Config for the Redis-backed Store. Defaults can be loaded via envdecode.
type Config struct {
	// RedisAddr like "localhost:6379". ENV: REDIS_ADDR
	RedisAddr string `env:"REDIS_ADDR,default=localhost:6379"`
	// KeyPrefix for all keys. ENV: SESSIONS_KEY_PREFIX
	KeyPrefix string `env:"SESSIONS_KEY_PREFIX,default=wikiauth:sessions:"`
	// DB selects the logical database. ENV: REDIS_DB
	DB int `env:"REDIS_DB,default=0"`
}

const (
	defaultAddr   = "localhost:6379"
	defaultPrefix = "wikiauth:sessions:"
)

// Store implements sessions.Store on Redis.
type Store struct {
	client    *redis.Client
	keyPrefix string
}

var _ sessions.Store = (*Store)(nil)

// New connects to Redis and verifies the connection with PING.
func New(cfg Config) (*Store, error) {
	addr := cfg.RedisAddr
	if addr == "" {
		addr = defaultAddr
	}
	cl := redis.NewClient(&redis.Options{Addr: addr, DB: cfg.DB})
	if err := cl.Ping(context.Background()).Err(); err != nil {
		_ = cl.Close()
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	return NewWithClient(cl, cfg.KeyPrefix), nil
}

// NewFromEnv builds a Store using envdecode to populate Config.
func NewFromEnv() (*Store, error) {
	var cfg Config
	if err := envdecode.Decode(&cfg); err != nil && !errors.Is(err, envdecode.ErrNoTargetFieldsAreSet) {
		return nil, fmt.Errorf("decode redis config: %w", err)
	}
	return New(cfg)
}

// NewWithClient wraps an existing client. The Store takes ownership and
// closes it on Close.
func NewWithClient(cl *redis.Client, keyPrefix string) *Store {
	if keyPrefix == "" {
		keyPrefix = defaultPrefix
	}
	return &Store{client: cl, keyPrefix: keyPrefix}
}

func (s *Store) key(id string) string { return s.keyPrefix + "state:" + id }

func (s *Store) Load(ctx context.Context, id string) (*sessions.State, error) {
	if id == "" {
		return nil, sessions.ErrInvalidID
	}
	b, err := s.client.Get(ctx, s.key(id)).Bytes()
	if err != nil {
		if errors.Is(err, redis.Nil) {
			return nil, nil
		}
		return nil, fmt.Errorf("redis get: %w", err)
	}
	return sessions.Decode(b)
}

func (s *Store) Save(ctx context.Context, id string, st *sessions.State, ttl time.Duration) error {
	if id == "" {
		return sessions.ErrInvalidID
	}
	b, err := sessions.Encode(st)
	if err != nil {
		return err
	}
	if err := s.client.Set(ctx, s.key(id), b, ttl).Err(); err != nil {
		return fmt.Errorf("redis set: %w", err)
	}
	return nil
}

func (s *Store) Touch(ctx context.Context, id string, ttl time.Duration) error {
	if id == "" {
		return sessions.ErrInvalidID
	}
	var err error
	if ttl > 0 {
		err = s.client.Expire(ctx, s.key(id), ttl).Err()
	} else {
		err = s.client.Persist(ctx, s.key(id)).Err()
	}
	if err != nil {
		return fmt.Errorf("redis expire: %w", err)
	}
	return nil
}

func (s *Store) Delete(ctx context.Context, id string) error {
	if id == "" {
		return sessions.ErrInvalidID
	}
	if err := s.client.Del(ctx, s.key(id)).Err(); err != nil {
		return fmt.Errorf("redis del: %w", err)
	}
	return nil
}

// Close closes the Redis client.
func (s *Store) Close() error { return s.client.Close() }
