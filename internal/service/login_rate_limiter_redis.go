package service

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

// loginAttemptScript cuenta un intento y abre la ventana en el primero.
// Una clave que quedo sin expiracion recibe la ventana de nuevo.
var loginAttemptScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 or redis.call("PTTL", KEYS[1]) < 0 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

const redisLoginTimeout = 500 * time.Millisecond

type redisLoginRateLimiter struct {
	client redis.Scripter
	window time.Duration
	max    int
	prefix string
}

// NewRedisLoginRateLimiter comparte el conteo de intentos entre instancias.
func NewRedisLoginRateLimiter(client *redis.Client, window time.Duration, max int) LoginRateLimiter {
	if client == nil {
		return nil
	}
	if window <= 0 {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisLoginRateLimiter{
		client: client,
		window: window,
		max:    max,
		prefix: "gita:login:rl:",
	}
}

func (l *redisLoginRateLimiter) Allow(key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	key, ok := limiterKey(key)
	if !ok {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisLoginTimeout)
	defer cancel()

	count, err := loginAttemptScript.Run(ctx, l.client, []string{l.prefix + key}, l.window.Milliseconds()).Int64()
	if err != nil {
		// redis caido no bloquea el login
		return true
	}
	return count <= int64(l.max)
}
