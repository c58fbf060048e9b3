package cache

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// RevocationStats holds counters about revocation lookups.
type RevocationStats struct {
	Revocations int64 `json:"revocations"`
	Hits        int64 `json:"hits"`
	Misses      int64 `json:"misses"`
	Errors      int64 `json:"errors"`
}

// RevocationStore records token IDs that were logged out before they expired.
type RevocationStore interface {
	// Revoke marks jti as revoked until expiresAt.
	Revoke(ctx context.Context, jti string, expiresAt time.Time) error
	// IsRevoked reports whether jti was revoked.
	IsRevoked(ctx context.Context, jti string) bool
	GetStats() RevocationStats
}

// RedisRevocationStore keeps revoked token IDs in Redis with a TTL equal to
// the token's remaining lifetime.
type RedisRevocationStore struct {
	client redis.Cmdable
	logger logrus.FieldLogger
	prefix string

	mu    sync.Mutex
	stats RevocationStats
}

func NewRedisRevocationStore(client redis.Cmdable, logger logrus.FieldLogger) *RedisRevocationStore {
	return &RedisRevocationStore{
		client: client,
		logger: logger,
		prefix: "revoked:",
	}
}

func (s *RedisRevocationStore) key(jti string) string {
	return s.prefix + jti
}

func (s *RedisRevocationStore) Revoke(ctx context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return errors.New("token has no jti")
	}

	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		// Already expired; JWT validation rejects it anyway.
		return nil
	}

	if err := s.client.Set(ctx, s.key(jti), "1", ttl).Err(); err != nil {
		s.record(func(st *RevocationStats) { st.Errors++ })
		return err
	}

	s.record(func(st *RevocationStats) { st.Revocations++ })
	return nil
}

// IsRevoked fails open: a Redis outage must not lock every user out.
func (s *RedisRevocationStore) IsRevoked(ctx context.Context, jti string) bool {
	if jti == "" {
		return false
	}

	n, err := s.client.Exists(ctx, s.key(jti)).Result()
	if err != nil {
		s.logger.WithError(err).WithField("jti", jti).Warn("Token revocation lookup failed")
		s.record(func(st *RevocationStats) { st.Errors++ })
		return false
	}

	if n > 0 {
		s.record(func(st *RevocationStats) { st.Hits++ })
		return true
	}
	s.record(func(st *RevocationStats) { st.Misses++ })
	return false
}

func (s *RedisRevocationStore) GetStats() RevocationStats {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.stats
}

func (s *RedisRevocationStore) record(fn func(*RevocationStats)) {
	s.mu.Lock()
	fn(&s.stats)
	s.mu.Unlock()
}

// InMemoryRevocationStore is used when Redis is unavailable. Revocations do
// not survive a restart or reach other instances.
type InMemoryRevocationStore struct {
	mu      sync.RWMutex
	entries map[string]time.Time
	stats   RevocationStats
}

func NewInMemoryRevocationStore() *InMemoryRevocationStore {
	return &InMemoryRevocationStore{entries: make(map[string]time.Time)}
}

func (s *InMemoryRevocationStore) Revoke(_ context.Context, jti string, expiresAt time.Time) error {
	if jti == "" {
		return errors.New("token has no jti")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	for id, exp := range s.entries {
		if now.After(exp) {
			delete(s.entries, id)
		}
	}
	if expiresAt.After(now) {
		s.entries[jti] = expiresAt
		s.stats.Revocations++
	}
	return nil
}

func (s *InMemoryRevocationStore) IsRevoked(_ context.Context, jti string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()

	exp, ok := s.entries[jti]
	if !ok || time.Now().After(exp) {
		s.stats.Misses++
		return false
	}
	s.stats.Hits++
	return true
}

func (s *InMemoryRevocationStore) GetStats() RevocationStats {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.stats
}
