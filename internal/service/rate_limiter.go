package service

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// OTPRateLimiter limita la frecuencia de solicitudes de OTP por clave.
type OTPRateLimiter interface {
	Allow(key string) bool
}

type memoryRateLimiter struct {
	mu     sync.Mutex
	window time.Duration
	max    int
	hits   map[string][]time.Time
	now    func() time.Time
}

// NewOTPRateLimiter crea un limitador de ventana deslizante en memoria.
func NewOTPRateLimiter(window time.Duration, max int) OTPRateLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &memoryRateLimiter{
		window: window,
		max:    max,
		hits:   make(map[string][]time.Time),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

func (l *memoryRateLimiter) Allow(key string) bool {
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return false
	}
	l.mu.Lock()
	defer l.mu.Unlock()

	now := l.now()
	cutoff := now.Add(-l.window)
	kept := l.hits[key][:0]
	for _, ts := range l.hits[key] {
		if ts.After(cutoff) {
			kept = append(kept, ts)
		}
	}
	if len(kept) >= l.max {
		l.hits[key] = kept
		return false
	}
	l.hits[key] = append(kept, now)
	return true
}

// INCR + EXPIRE en una sola ida a Redis; el TTL solo se fija en el primer hit.
const redisRateLimitScript = `
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("EXPIRE", KEYS[1], ARGV[1])
end
return current
`

type redisEvaler interface {
	Eval(ctx context.Context, script string, keys []string, args ...interface{}) *redis.Cmd
}

type redisRateLimiter struct {
	client redisEvaler
	logger *zap.Logger
	window time.Duration
	max    int
	prefix string
}

// NewRedisOTPRateLimiter comparte el conteo entre instancias. Si Redis falla, deja pasar.
func NewRedisOTPRateLimiter(client *redis.Client, logger *zap.Logger, window time.Duration, max int) OTPRateLimiter {
	if client == nil {
		return nil
	}
	return newRedisRateLimiter(client, logger, window, max)
}

func newRedisRateLimiter(client redisEvaler, logger *zap.Logger, window time.Duration, max int) *redisRateLimiter {
	if logger == nil {
		logger = zap.NewNop()
	}
	if window < time.Second {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	return &redisRateLimiter{
		client: client,
		logger: logger,
		window: window,
		max:    max,
		prefix: "cesizen:otp:rl:",
	}
}

func (l *redisRateLimiter) Allow(key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), 500*time.Millisecond)
	defer cancel()

	count, err := l.client.Eval(ctx, redisRateLimitScript, []string{l.prefix + key}, int(l.window.Seconds())).Int()
	if err != nil {
		l.logger.Warn("otp rate limiter unavailable", zap.Error(err))
		return true
	}
	return count <= l.max
}
