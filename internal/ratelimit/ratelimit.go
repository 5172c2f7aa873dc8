// Package ratelimit throttles admin login attempts per client.
package ratelimit

import (
	"context"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"marketadmin/internal/config"
	"marketadmin/internal/observability"
	"marketadmin/internal/pkg/response"
)

type Limiter interface {
	// Allow counts one hit for key. On backend errors it returns true with the error.
	Allow(ctx context.Context, key string) (bool, error)
}

// NopLimiter allows everything. It is used when no redis address is configured.
type NopLimiter struct{}

func (NopLimiter) Allow(context.Context, string) (bool, error) { return true, nil }

// RedisLimiter is a fixed-window counter shared across instances.
type RedisLimiter struct {
	client *redis.Client
	limit  int
	window time.Duration
	prefix string
}

func NewRedisLimiter(client *redis.Client, limit int, window time.Duration, prefix string) *RedisLimiter {
	if prefix == "" {
		prefix = "ratelimit"
	}
	return &RedisLimiter{client: client, limit: limit, window: window, prefix: prefix}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (bool, error) {
	if l.limit <= 0 {
		return true, nil
	}
	redisKey := fmt.Sprintf("%s:%s", l.prefix, key)

	count, err := l.client.Incr(ctx, redisKey).Result()
	if err != nil {
		return true, fmt.Errorf("redis incr: %w", err)
	}
	if count == 1 {
		if err := l.client.Expire(ctx, redisKey, l.window).Err(); err != nil {
			return true, fmt.Errorf("redis expire: %w", err)
		}
	}
	return count <= int64(l.limit), nil
}

// Reset clears the counter for key, e.g. after a successful login.
func (l *RedisLimiter) Reset(ctx context.Context, key string) error {
	return l.client.Del(ctx, fmt.Sprintf("%s:%s", l.prefix, key)).Err()
}

// NewRedisClient connects to redis, logging a warning when it is unreachable.
func NewRedisClient(cfg config.RedisConfig, log *zap.Logger) *redis.Client {
	client := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		Password: cfg.Password,
		DB:       cfg.DB,
	})

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		log.Warn("unable to reach redis, login throttle will fail open", zap.Error(err))
	} else {
		log.Info("connected to redis")
	}
	return client
}

// New builds the login limiter from configuration.
func New(cfg *config.Config, log *zap.Logger) (Limiter, func()) {
	if cfg.Redis.Addr == "" || cfg.Auth.LoginRateLimit <= 0 {
		return NopLimiter{}, func() {}
	}
	client := NewRedisClient(cfg.Redis, log)
	limiter := NewRedisLimiter(client, cfg.Auth.LoginRateLimit, cfg.Auth.LoginRateWindow, "marketadmin:login")
	return limiter, func() { _ = client.Close() }
}

// Middleware rejects clients over the limit with 429. Backend failures let
// the request through and are logged.
func Middleware(l Limiter, window time.Duration, log *zap.Logger, metrics *observability.Metrics) gin.HandlerFunc {
	return func(c *gin.Context) {
		allowed, err := l.Allow(c.Request.Context(), "ip:"+c.ClientIP())
		if err != nil {
			metrics.ThrottleError()
			log.Warn("login throttle unavailable", zap.Error(err), zap.String("client_ip", c.ClientIP()))
			c.Next()
			return
		}
		if !allowed {
			metrics.Login("throttled")
			c.Header("Retry-After", strconv.Itoa(int(window.Seconds())))
			response.Error(c, http.StatusTooManyRequests, "RATE_LIMITED", "Too many login attempts. Try again later.")
			c.Abort()
			return
		}
		c.Next()
	}
}
