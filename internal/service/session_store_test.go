package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"

	"gita-guru/internal/domain"
)

type mockRedisKVClient struct {
	values     map[string][]byte
	lastSetKey string
	lastSetTTL time.Duration
	lastDel    []string

	getErr error
	setErr error
	delErr error
}

func newMockRedisKVClient() *mockRedisKVClient {
	return &mockRedisKVClient{values: make(map[string][]byte)}
}

func (m *mockRedisKVClient) Get(ctx context.Context, key string) *redis.StringCmd {
	cmd := redis.NewStringCmd(ctx)
	if m.getErr != nil {
		cmd.SetErr(m.getErr)
		return cmd
	}
	v, ok := m.values[key]
	if !ok {
		cmd.SetErr(redis.Nil)
		return cmd
	}
	cmd.SetVal(string(v))
	return cmd
}

func (m *mockRedisKVClient) Set(ctx context.Context, key string, value interface{}, expiration time.Duration) *redis.StatusCmd {
	m.lastSetKey = key
	m.lastSetTTL = expiration
	cmd := redis.NewStatusCmd(ctx)
	if m.setErr != nil {
		cmd.SetErr(m.setErr)
		return cmd
	}
	m.values[key] = value.([]byte)
	cmd.SetVal("OK")
	return cmd
}

func (m *mockRedisKVClient) Del(ctx context.Context, keys ...string) *redis.IntCmd {
	m.lastDel = keys
	cmd := redis.NewIntCmd(ctx)
	if m.delErr != nil {
		cmd.SetErr(m.delErr)
		return cmd
	}
	for _, k := range keys {
		delete(m.values, k)
	}
	cmd.SetVal(1)
	return cmd
}

func TestMemorySessionStore_Basics(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	if _, err := store.Get(ctx, "missing"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound, got %v", err)
	}

	sess := domain.NewSession("s1")
	sess.ActiveTab = domain.TabSignUp
	if err := store.Save(ctx, sess, 50*time.Millisecond); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	got, err := store.Get(ctx, "s1")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if got.ActiveTab != domain.TabSignUp {
		t.Fatalf("expected signup tab, got %q", got.ActiveTab)
	}

	time.Sleep(70 * time.Millisecond)
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected session expired, got %v", err)
	}
}

func TestMemorySessionStore_DeleteAndEmptyID(t *testing.T) {
	store := NewMemorySessionStore()
	ctx := context.Background()

	if err := store.Save(ctx, domain.Session{}, time.Minute); err == nil {
		t.Fatalf("expected error for empty session id")
	}
	if err := store.Save(ctx, domain.NewSession("s2"), time.Minute); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if err := store.Delete(ctx, "s2"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "s2"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected deleted session absent, got %v", err)
	}
}

func TestMemorySessionStore_SavePurgesExpired(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	store := NewMemorySessionStore().(*memorySessionStore)
	store.now = func() time.Time { return now }
	ctx := context.Background()

	for i := 0; i < 10000; i++ {
		if err := store.Save(ctx, domain.NewSession(fmt.Sprintf("s%d", i)), time.Millisecond); err != nil {
			t.Fatalf("save failed: %v", err)
		}
	}
	if err := store.Save(ctx, domain.NewSession("keep"), time.Hour); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	now = now.Add(sessionSweepInterval)
	if err := store.Save(ctx, domain.NewSession("late"), time.Hour); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if n := len(store.items); n != 2 {
		t.Fatalf("expected only live sessions after sweep, got %d", n)
	}
	if _, err := store.Get(ctx, "keep"); err != nil {
		t.Fatalf("expected live session kept, got %v", err)
	}
}

func TestRedisSessionStore_RoundTrip(t *testing.T) {
	mock := newMockRedisKVClient()
	store := &redisSessionStore{client: mock, prefix: "gita:session:"}
	ctx := context.Background()

	sess := domain.NewSession("s1")
	sess.User = &domain.Identity{ID: "u1", Email: "jane@example.com", Name: "Jane"}
	if err := store.Save(ctx, sess, 0); err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if mock.lastSetKey != "gita:session:s1" {
		t.Fatalf("unexpected key, got %q", mock.lastSetKey)
	}
	if mock.lastSetTTL != defaultSessionTTL {
		t.Fatalf("expected default TTL, got %v", mock.lastSetTTL)
	}

	var stored domain.Session
	if err := json.Unmarshal(mock.values["gita:session:s1"], &stored); err != nil {
		t.Fatalf("stored value is not json: %v", err)
	}

	got, err := store.Get(ctx, " s1 ")
	if err != nil {
		t.Fatalf("get failed: %v", err)
	}
	if !got.Authenticated() || got.User.Name != "Jane" {
		t.Fatalf("unexpected session: %+v", got)
	}

	if err := store.Delete(ctx, "s1"); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := store.Get(ctx, "s1"); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected ErrSessionNotFound after delete, got %v", err)
	}
}

func TestRedisSessionStore_ErrorPaths(t *testing.T) {
	mock := newMockRedisKVClient()
	mock.getErr = errors.New("get failed")
	mock.setErr = errors.New("set failed")
	mock.delErr = errors.New("del failed")
	store := &redisSessionStore{client: mock, prefix: "gita:session:"}
	ctx := context.Background()

	if _, err := store.Get(ctx, ""); !errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("empty id should be not found, got %v", err)
	}
	if err := store.Delete(ctx, ""); err != nil {
		t.Fatalf("empty id delete should be no-op, got %v", err)
	}

	if _, err := store.Get(ctx, "s1"); err == nil || errors.Is(err, ErrSessionNotFound) {
		t.Fatalf("expected get error, got %v", err)
	}
	if err := store.Save(ctx, domain.NewSession("s1"), time.Minute); err == nil {
		t.Fatalf("expected save error")
	}
	if err := store.Delete(ctx, "s1"); err == nil {
		t.Fatalf("expected delete error")
	}
}
