package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"

	"gita-guru/internal/domain"
)

var ErrSessionNotFound = errors.New("session not found")

const defaultSessionTTL = 12 * time.Hour

// SessionStore guarda el estado por navegador (pestaña activa e identidad).
type SessionStore interface {
	Get(ctx context.Context, id string) (domain.Session, error)
	Save(ctx context.Context, session domain.Session, ttl time.Duration) error
	Delete(ctx context.Context, id string) error
}

type memorySessionEntry struct {
	session   domain.Session
	expiresAt time.Time
}

// sessionSweepInterval acota cada cuanto Save recorre el mapa buscando expiradas.
const sessionSweepInterval = time.Minute

type memorySessionStore struct {
	mu        sync.Mutex
	items     map[string]memorySessionEntry
	now       func() time.Time
	lastSweep time.Time
}

func NewMemorySessionStore() SessionStore {
	return &memorySessionStore{
		items: make(map[string]memorySessionEntry),
		now:   func() time.Time { return time.Now().UTC() },
	}
}

func (s *memorySessionStore) Get(_ context.Context, id string) (domain.Session, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	entry, ok := s.items[id]
	if !ok {
		return domain.Session{}, ErrSessionNotFound
	}
	if s.now().After(entry.expiresAt) {
		delete(s.items, id)
		return domain.Session{}, ErrSessionNotFound
	}
	return entry.session, nil
}

func (s *memorySessionStore) Save(_ context.Context, session domain.Session, ttl time.Duration) error {
	if strings.TrimSpace(session.ID) == "" {
		return errors.New("session id required")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	now := s.now()
	if now.Sub(s.lastSweep) >= sessionSweepInterval {
		s.purgeExpired(now)
	}
	session.UpdatedAt = now
	s.items[session.ID] = memorySessionEntry{
		session:   session,
		expiresAt: now.Add(ttl),
	}
	return nil
}

// purgeExpired borra las sesiones vencidas; requiere s.mu tomado.
func (s *memorySessionStore) purgeExpired(now time.Time) {
	for id, entry := range s.items {
		if now.After(entry.expiresAt) {
			delete(s.items, id)
		}
	}
	s.lastSweep = now
}

func (s *memorySessionStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.items, id)
	return nil
}

type redisKV interface {
	Get(ctx context.Context, key string) *redis.StringCmd
	Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd
	Del(ctx context.Context, keys ...string) *redis.IntCmd
}

type redisSessionStore struct {
	client redisKV
	prefix string
}

func NewRedisSessionStore(client *redis.Client) SessionStore {
	if client == nil {
		return nil
	}
	return &redisSessionStore{
		client: client,
		prefix: "gita:session:",
	}
}

func (s *redisSessionStore) Get(ctx context.Context, id string) (domain.Session, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return domain.Session{}, ErrSessionNotFound
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	raw, err := s.client.Get(ctx, s.prefix+id).Bytes()
	if errors.Is(err, redis.Nil) {
		return domain.Session{}, ErrSessionNotFound
	}
	if err != nil {
		return domain.Session{}, err
	}
	var session domain.Session
	if err := json.Unmarshal(raw, &session); err != nil {
		return domain.Session{}, fmt.Errorf("decode session: %w", err)
	}
	return session, nil
}

func (s *redisSessionStore) Save(ctx context.Context, session domain.Session, ttl time.Duration) error {
	id := strings.TrimSpace(session.ID)
	if id == "" {
		return errors.New("session id required")
	}
	if ttl <= 0 {
		ttl = defaultSessionTTL
	}
	session.UpdatedAt = time.Now().UTC()
	raw, err := json.Marshal(session)
	if err != nil {
		return fmt.Errorf("encode session: %w", err)
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return s.client.Set(ctx, s.prefix+id, raw, ttl).Err()
}

func (s *redisSessionStore) Delete(ctx context.Context, id string) error {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 500*time.Millisecond)
	defer cancel()
	return s.client.Del(ctx, s.prefix+id).Err()
}
