package session

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"
	"time"

	"github.com/go-redis/redis/v8"
)

// Store persists the current session between operations. The redis variant is
// the durable analog of a browser session; the memory variant serves tests and
// single-process tools.
type Store interface {
	Save(ctx context.Context, s *Session) error
	Load(ctx context.Context) (*Session, error)
	Clear(ctx context.Context) error
}

type MemoryStore struct {
	mu   sync.RWMutex
	sess *Session
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{}
}

func (m *MemoryStore) Save(_ context.Context, s *Session) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *s
	m.sess = &cp
	return nil
}

func (m *MemoryStore) Load(_ context.Context) (*Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if m.sess == nil {
		return nil, ErrNotAuthenticated
	}
	cp := *m.sess
	return &cp, nil
}

func (m *MemoryStore) Clear(_ context.Context) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.sess = nil
	return nil
}

const redisKeyPrefix = "staffSession:"

// RedisStore keeps the session under a per-client key with a TTL bound to the
// token expiry.
type RedisStore struct {
	client *redis.Client
	key    string
}

func NewRedisStore(client *redis.Client, clientID string) *RedisStore {
	return &RedisStore{client: client, key: redisKeyPrefix + clientID}
}

func (r *RedisStore) Save(ctx context.Context, s *Session) error {
	data, err := json.Marshal(s)
	if err != nil {
		return fmt.Errorf("marshal session: %w", err)
	}
	ttl := time.Duration(0)
	if !s.ExpiresAt.IsZero() {
		ttl = time.Until(s.ExpiresAt)
		if ttl <= 0 {
			return fmt.Errorf("session already expired")
		}
	}
	if err := r.client.Set(ctx, r.key, data, ttl).Err(); err != nil {
		return fmt.Errorf("save session: %w", err)
	}
	return nil
}

func (r *RedisStore) Load(ctx context.Context) (*Session, error) {
	data, err := r.client.Get(ctx, r.key).Result()
	if err == redis.Nil {
		return nil, ErrNotAuthenticated
	}
	if err != nil {
		return nil, fmt.Errorf("load session: %w", err)
	}
	var s Session
	if err := json.Unmarshal([]byte(data), &s); err != nil {
		return nil, fmt.Errorf("unmarshal session: %w", err)
	}
	return &s, nil
}

func (r *RedisStore) Clear(ctx context.Context) error {
	return r.client.Del(ctx, r.key).Err()
}
