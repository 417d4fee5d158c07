package service

import (
	"context"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
)

// noScriptError imita la respuesta de redis cuando el SHA no esta cargado.
type noScriptError string

func (e noScriptError) Error() string { return string(e) }
func (noScriptError) RedisError()     {}

type mockScripter struct {
	loaded   bool
	evals    int
	evalShas int
	lastSha  string
	lastKeys []string
	lastArgs []interface{}
	result   int64
	err      error
}

func (m *mockScripter) reply(ctx context.Context, keys []string, args []interface{}) *redis.Cmd {
	m.lastKeys = keys
	m.lastArgs = args
	cmd := redis.NewCmd(ctx)
	if m.err != nil {
		cmd.SetErr(m.err)
		return cmd
	}
	cmd.SetVal(m.result)
	return cmd
}

func (m *mockScripter) Eval(ctx context.Context, _ string, keys []string, args ...interface{}) *redis.Cmd {
	m.evals++
	m.loaded = true
	return m.reply(ctx, keys, args)
}

func (m *mockScripter) EvalSha(ctx context.Context, sha1 string, keys []string, args ...interface{}) *redis.Cmd {
	m.evalShas++
	m.lastSha = sha1
	if !m.loaded {
		cmd := redis.NewCmd(ctx)
		cmd.SetErr(noScriptError("NOSCRIPT No matching script. Please use EVAL."))
		return cmd
	}
	return m.reply(ctx, keys, args)
}

func (m *mockScripter) EvalRO(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd {
	return m.Eval(ctx, script, keys, args...)
}

func (m *mockScripter) EvalShaRO(ctx context.Context, sha1 string, keys []string, args ...interface{}) *redis.Cmd {
	return m.EvalSha(ctx, sha1, keys, args...)
}

func (m *mockScripter) ScriptExists(ctx context.Context, hashes ...string) *redis.BoolSliceCmd {
	cmd := redis.NewBoolSliceCmd(ctx)
	out := make([]bool, len(hashes))
	for i := range hashes {
		out[i] = m.loaded
	}
	cmd.SetVal(out)
	return cmd
}

func (m *mockScripter) ScriptLoad(ctx context.Context, _ string) *redis.StringCmd {
	m.loaded = true
	cmd := redis.NewStringCmd(ctx)
	cmd.SetVal(loginAttemptScript.Hash())
	return cmd
}

func newTestRedisLimiter(client redis.Scripter, window time.Duration, max int) *redisLoginRateLimiter {
	return &redisLoginRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "gita:login:rl:",
	}
}

func TestRedisLoginRateLimiterAllow(t *testing.T) {
	t.Run("nil receiver fail-open", func(t *testing.T) {
		var l *redisLoginRateLimiter
		if !l.Allow("user@example.com") {
			t.Fatalf("expected fail-open for nil limiter")
		}
	})

	t.Run("empty key rejected", func(t *testing.T) {
		mock := &mockScripter{result: 1}
		if newTestRedisLimiter(mock, time.Minute, 3).Allow("   ") {
			t.Fatalf("expected empty key to be rejected")
		}
		if mock.evals+mock.evalShas != 0 {
			t.Fatalf("expected no redis round trip for empty key")
		}
	})

	t.Run("loads script once then uses sha", func(t *testing.T) {
		mock := &mockScripter{result: 2}
		l := newTestRedisLimiter(mock, 2*time.Minute, 3)
		if !l.Allow(" User@Example.com ") {
			t.Fatalf("expected allow when count <= max")
		}
		if mock.evals != 1 || mock.evalShas != 1 {
			t.Fatalf("expected EVALSHA miss then EVAL, got evals=%d evalShas=%d", mock.evals, mock.evalShas)
		}
		if !l.Allow("user@example.com") {
			t.Fatalf("expected second attempt to be allowed")
		}
		if mock.evals != 1 || mock.evalShas != 2 {
			t.Fatalf("expected cached script on second call, got evals=%d evalShas=%d", mock.evals, mock.evalShas)
		}
		if mock.lastSha != loginAttemptScript.Hash() {
			t.Fatalf("unexpected script hash %q", mock.lastSha)
		}
		if len(mock.lastKeys) != 1 || mock.lastKeys[0] != "gita:login:rl:user@example.com" {
			t.Fatalf("unexpected key normalization, got %+v", mock.lastKeys)
		}
		if len(mock.lastArgs) != 1 || fmt.Sprint(mock.lastArgs[0]) != "120000" {
			t.Fatalf("expected window in ms=120000, got %+v", mock.lastArgs)
		}
	})

	t.Run("deny when count exceeds max", func(t *testing.T) {
		l := newTestRedisLimiter(&mockScripter{loaded: true, result: 4}, time.Minute, 3)
		if l.Allow("user@example.com") {
			t.Fatalf("expected deny when count > max")
		}
	})

	t.Run("redis error fail-open", func(t *testing.T) {
		l := newTestRedisLimiter(&mockScripter{loaded: true, err: errors.New("redis down")}, time.Minute, 3)
		if !l.Allow("user@example.com") {
			t.Fatalf("expected fail-open on redis errors")
		}
	})
}

func TestLimiterKey(t *testing.T) {
	if got, ok := limiterKey("  Jane@Example.COM "); !ok || got != "jane@example.com" {
		t.Fatalf("expected normalized key, got %q %v", got, ok)
	}
	if _, ok := limiterKey(" \t"); ok {
		t.Fatalf("expected blank key to be rejected")
	}
}

func TestLoginRateLimiterSlidingWindow(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	l := NewLoginRateLimiter(time.Minute, 2).(*loginRateLimiter)
	l.now = func() time.Time { return now }

	if !l.Allow("a@example.com") || !l.Allow("A@example.com ") {
		t.Fatalf("expected first two attempts to be allowed")
	}
	if l.Allow("a@example.com") {
		t.Fatalf("expected third attempt inside window to be denied")
	}
	if !l.Allow("b@example.com") {
		t.Fatalf("expected other keys to be independent")
	}
	if l.Allow("") {
		t.Fatalf("expected blank key to be rejected")
	}

	now = now.Add(61 * time.Second)
	if !l.Allow("a@example.com") {
		t.Fatalf("expected attempt after window to be allowed")
	}
}

func TestLoginRateLimiter_DropsIdleKeys(t *testing.T) {
	now := time.Date(2024, 5, 1, 10, 0, 0, 0, time.UTC)
	l := NewLoginRateLimiter(time.Minute, 3).(*loginRateLimiter)
	l.now = func() time.Time { return now }

	for i := 0; i < 10000; i++ {
		l.Allow(fmt.Sprintf("user%d@example.com", i))
	}
	if len(l.hits) != 10000 {
		t.Fatalf("expected 10000 keys, got %d", len(l.hits))
	}

	now = now.Add(30 * time.Second)
	l.Allow("late@example.com")
	if len(l.hits) != 10001 {
		t.Fatalf("expected keys inside window to stay, got %d", len(l.hits))
	}

	now = now.Add(31 * time.Second)
	l.Allow("fresh@example.com")
	if len(l.hits) != 2 {
		t.Fatalf("expected only late and fresh keys after window, got %d", len(l.hits))
	}
}
