package quiz

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const defaultSessionTTL = 2 * time.Hour

// SessionStore keeps issued tests until they are graded.
type SessionStore interface {
	Put(ctx context.Context, t Test) error
	Get(ctx context.Context, id uuid.UUID) (*Test, error)
	// Take returns the test and forgets it in one step; of two concurrent calls for
	// the same id only one gets the test.
	Take(ctx context.Context, id uuid.UUID) (*Test, error)
}

// MemorySessions holds tests in process memory and drops them after the TTL.
type MemorySessions struct {
	mu    sync.Mutex
	ttl   time.Duration
	now   func() time.Time
	tests map[uuid.UUID]memoryEntry
}

type memoryEntry struct {
	test    Test
	expires time.Time
}

var _ SessionStore = (*MemorySessions)(nil)

func NewMemorySessions(ttl time.Duration) *MemorySessions {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &MemorySessions{
		ttl:   ttl,
		now:   time.Now,
		tests: make(map[uuid.UUID]memoryEntry),
	}
}

func (s *MemorySessions) Put(_ context.Context, t Test) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.evictExpired()
	s.tests[t.ID] = memoryEntry{test: t, expires: s.now().Add(s.ttl)}
	return nil
}

func (s *MemorySessions) Get(_ context.Context, id uuid.UUID) (*Test, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.tests[id]
	if !ok || s.now().After(entry.expires) {
		return nil, nil
	}
	t := entry.test
	return &t, nil
}

func (s *MemorySessions) Take(_ context.Context, id uuid.UUID) (*Test, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.tests[id]
	if !ok {
		return nil, nil
	}
	delete(s.tests, id)
	if s.now().After(entry.expires) {
		return nil, nil
	}
	t := entry.test
	return &t, nil
}

func (s *MemorySessions) evictExpired() {
	now := s.now()
	for id, entry := range s.tests {
		if now.After(entry.expires) {
			delete(s.tests, id)
		}
	}
}

// RedisSessions stores tests as JSON with an expiry.
type RedisSessions struct {
	client *redis.Client
	ttl    time.Duration
}

var _ SessionStore = (*RedisSessions)(nil)

func NewRedisSessions(client *redis.Client, ttl time.Duration) *RedisSessions {
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	return &RedisSessions{client: client, ttl: ttl}
}

func (s *RedisSessions) key(id uuid.UUID) string {
	return fmt.Sprintf("quiz:test:%s", id.String())
}

func (s *RedisSessions) Put(ctx context.Context, t Test) error {
	data, err := json.Marshal(t)
	if err != nil {
		return fmt.Errorf("marshal test: %w", err)
	}
	return s.client.Set(ctx, s.key(t.ID), data, s.ttl).Err()
}

func (s *RedisSessions) Get(ctx context.Context, id uuid.UUID) (*Test, error) {
	return decodeSession(s.client.Get(ctx, s.key(id)).Bytes())
}

// Take uses GETDEL (Redis 6.2+).
func (s *RedisSessions) Take(ctx context.Context, id uuid.UUID) (*Test, error) {
	return decodeSession(s.client.GetDel(ctx, s.key(id)).Bytes())
}

func decodeSession(data []byte, err error) (*Test, error) {
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get test: %w", err)
	}
	var t Test
	if err := json.Unmarshal(data, &t); err != nil {
		return nil, fmt.Errorf("unmarshal test: %w", err)
	}
	return &t, nil
}
