// Package memory provides an in-process KVStore for local development and
// the CLI. State does not survive a restart.
package memory

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"github.com/utafrali/storefront/internal/repository"
	apperrors "github.com/utafrali/storefront/pkg/errors"
)

type entry struct {
	value     json.RawMessage
	expiresAt time.Time
}

func (e entry) expired(now time.Time) bool {
	return !e.expiresAt.IsZero() && !now.Before(e.expiresAt)
}

type KVStore struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
}

var (
	_ repository.KVStore = (*KVStore)(nil)
	_ repository.Purger  = (*KVStore)(nil)
)

// NewKVStore creates an empty store. A zero ttl keeps entries forever.
func NewKVStore(ttl time.Duration) *KVStore {
	return &KVStore{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
}

func (s *KVStore) Get(_ context.Context, key string) (json.RawMessage, error) {
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()

	if !ok || e.expired(s.now()) {
		return nil, apperrors.NotFound("key", key)
	}
	return append(json.RawMessage(nil), e.value...), nil
}

func (s *KVStore) Set(_ context.Context, key string, value json.RawMessage) error {
	e := entry{value: append(json.RawMessage(nil), value...)}
	if s.ttl > 0 {
		e.expiresAt = s.now().Add(s.ttl)
	}

	s.mu.Lock()
	s.entries[key] = e
	s.mu.Unlock()
	return nil
}

func (s *KVStore) Delete(_ context.Context, key string) error {
	s.mu.Lock()
	delete(s.entries, key)
	s.mu.Unlock()
	return nil
}

func (s *KVStore) Ping(context.Context) error { return nil }

// PurgeExpired drops entries whose TTL has passed.
func (s *KVStore) PurgeExpired(context.Context) (int64, error) {
	now := s.now()

	s.mu.Lock()
	defer s.mu.Unlock()

	var n int64
	for k, e := range s.entries {
		if e.expired(now) {
			delete(s.entries, k)
			n++
		}
	}
	return n, nil
}
