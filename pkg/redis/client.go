package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/sherryseats/orders-backend/pkg/config"
	"github.com/sherryseats/orders-backend/pkg/logger"
)

const namespace = "sherrys"

// releaseScript deletes KEYS[1] only while it still holds ARGV[1].
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// Client is the shared redis handle. Callers pass relative keys such as
// "idempotency:..." and the client prefixes them with the sherrys namespace.
type Client struct {
	rdb   redis.Cmdable
	close func() error
}

// Verdict is the outcome of one rate limit check.
type Verdict struct {
	Allowed    bool
	Count      int64
	RetryAfter time.Duration
}

func New(ctx context.Context, cfg config.RedisConfig, logg *logger.Logger) (*Client, error) {
	opts, err := dialOptions(cfg)
	if err != nil {
		return nil, err
	}
	rdb := redis.NewClient(opts)
	if err := rdb.Ping(ctx).Err(); err != nil {
		_ = rdb.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", opts.Addr, err)
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"redis_addr": opts.Addr,
			"redis_db":   opts.DB,
		}), "redis connected")
	}
	return &Client{rdb: rdb, close: rdb.Close}, nil
}

// dialOptions prefers SHERRYS_REDIS_URL and lets the discrete settings fill
// whatever the URL leaves unset.
func dialOptions(cfg config.RedisConfig) (*redis.Options, error) {
	opts := &redis.Options{Addr: cfg.Address, Password: cfg.Password, DB: cfg.DB}
	if cfg.URL != "" {
		parsed, err := redis.ParseURL(cfg.URL)
		if err != nil {
			return nil, fmt.Errorf("redis url: %w", err)
		}
		opts = parsed
	}
	if opts.Addr == "" {
		return nil, errors.New("redis url or address is required")
	}
	fill := func(dst *time.Duration, v time.Duration) {
		if *dst == 0 {
			*dst = v
		}
	}
	if opts.PoolSize == 0 {
		opts.PoolSize = cfg.PoolSize
	}
	if opts.MinIdleConns == 0 {
		opts.MinIdleConns = cfg.MinIdleConns
	}
	fill(&opts.DialTimeout, cfg.DialTimeout)
	fill(&opts.ReadTimeout, cfg.ReadTimeout)
	fill(&opts.WriteTimeout, cfg.WriteTimeout)
	return opts, nil
}

func key(rel string) string {
	return namespace + ":" + rel
}

// Lookup reports whether the key exists and returns its value.
func (c *Client) Lookup(ctx context.Context, k string) (string, bool, error) {
	v, err := c.rdb.Get(ctx, key(k)).Result()
	switch {
	case errors.Is(err, redis.Nil):
		return "", false, nil
	case err != nil:
		return "", false, err
	}
	return v, true, nil
}

// Claim writes value only when the key is absent.
func (c *Client) Claim(ctx context.Context, k, value string, ttl time.Duration) (bool, error) {
	return c.rdb.SetNX(ctx, key(k), value, ttl).Result()
}

func (c *Client) Put(ctx context.Context, k, value string, ttl time.Duration) error {
	return c.rdb.Set(ctx, key(k), value, ttl).Err()
}

func (c *Client) Forget(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, len(keys))
	for i, k := range keys {
		full[i] = key(k)
	}
	return c.rdb.Del(ctx, full...).Err()
}

// ReleaseIfHeld deletes the key atomically when it still carries token.
func (c *Client) ReleaseIfHeld(ctx context.Context, k, token string) (bool, error) {
	n, err := releaseScript.Run(ctx, c.rdb, []string{key(k)}, token).Int64()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

// Allow counts one hit against a fixed window keyed by scope. The window
// starts at the first hit; RetryAfter is set only on rejection.
func (c *Client) Allow(ctx context.Context, scope string, limit int64, window time.Duration) (Verdict, error) {
	k := key("rate_limit:" + scope)
	n, err := c.rdb.Incr(ctx, k).Result()
	if err != nil {
		return Verdict{}, fmt.Errorf("incr %s: %w", k, err)
	}
	if err := c.rdb.ExpireNX(ctx, k, window).Err(); err != nil {
		return Verdict{}, fmt.Errorf("expire %s: %w", k, err)
	}
	v := Verdict{Allowed: n <= limit, Count: n}
	if v.Allowed {
		return v, nil
	}
	left, err := c.rdb.PTTL(ctx, k).Result()
	if err != nil || left <= 0 {
		left = window
	}
	v.RetryAfter = left
	return v, nil
}

func (c *Client) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Client) Close() error {
	if c.close == nil {
		return nil
	}
	return c.close()
}
