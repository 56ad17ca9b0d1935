package session

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const keyPrefix = "session:"

// RedisStore 会话以 JSON 存在 session:<sid>，每次保存刷新 TTL
type RedisStore struct {
	RDB *redis.Client
	TTL time.Duration
}

func NewRedisStore(addr, pass string, db int, ttl time.Duration) *RedisStore {
	return &RedisStore{
		RDB: redis.NewClient(&redis.Options{Addr: addr, Password: pass, DB: db}),
		TTL: ttl,
	}
}

func (s *RedisStore) Ping(ctx context.Context) error { return s.RDB.Ping(ctx).Err() }

func (s *RedisStore) Load(ctx context.Context, sid string) (*State, error) {
	if sid == "" {
		return nil, ErrEmptySID
	}
	b, err := s.RDB.Get(ctx, keyPrefix+sid).Bytes()
	if errors.Is(err, redis.Nil) {
		return &State{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("redis get session: %w", err)
	}
	return decode(b)
}

func (s *RedisStore) Save(ctx context.Context, sid string, st *State) error {
	if sid == "" {
		return ErrEmptySID
	}
	b, err := encode(st)
	if err != nil {
		return err
	}
	if err := s.RDB.Set(ctx, keyPrefix+sid, b, s.TTL).Err(); err != nil {
		return fmt.Errorf("redis set session: %w", err)
	}
	return nil
}

func (s *RedisStore) Delete(ctx context.Context, sid string) error {
	return s.RDB.Del(ctx, keyPrefix+sid).Err()
}

func (s *RedisStore) Close() error { return s.RDB.Close() }
