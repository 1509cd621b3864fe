// Package bootstrap holds the startup and shutdown sequence shared by the
// api, outbox-publisher and cron-worker binaries.
package bootstrap

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/sherryseats/orders-backend/pkg/config"
	"github.com/sherryseats/orders-backend/pkg/db"
	"github.com/sherryseats/orders-backend/pkg/logger"
	"github.com/sherryseats/orders-backend/pkg/migrate"
	"github.com/sherryseats/orders-backend/pkg/redis"
)

// Runtime is what every binary has once startup succeeds.
type Runtime struct {
	Kind   string
	Config *config.Config
	Logger *logger.Logger
	DB     *db.Client

	closers []closer
}

type closer struct {
	name string
	fn   func() error
}

// Main runs fn with a context cancelled on SIGINT or SIGTERM, closes every
// registered resource, and exits non-zero when startup or fn fails.
func Main(kind string, fn func(ctx context.Context, rt *Runtime) error) {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	code := run(ctx, kind, fn)
	stop()
	os.Exit(code)
}

func run(ctx context.Context, kind string, fn func(context.Context, *Runtime) error) int {
	rt, err := Start(ctx, kind)
	if err != nil {
		logger.New(logger.Options{ServiceName: kind}).Error(ctx, "startup failed", err)
		return 1
	}
	defer rt.Close()

	ctx = rt.Logger.WithFields(ctx, map[string]any{"env": rt.Config.App.Env, "service_kind": kind})
	rt.Logger.Info(ctx, kind+" starting")
	if err := fn(ctx, rt); err != nil && !errors.Is(err, context.Canceled) {
		rt.Logger.Error(ctx, kind+" stopped unexpectedly", err)
		return 1
	}
	rt.Logger.Info(ctx, kind+" stopped")
	return 0
}

// Start loads .env and the config, builds the leveled logger, connects to
// Postgres and applies dev migrations when enabled.
func Start(ctx context.Context, kind string) (*Runtime, error) {
	envErr := godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	cfg.Service.Kind = kind
	rt := &Runtime{
		Kind:   kind,
		Config: cfg,
		Logger: logger.New(logger.Options{
			ServiceName: kind,
			Level:       logger.ParseLevel(cfg.App.LogLevel),
			WarnStack:   cfg.App.LogWarnStack,
			Console:     cfg.App.ConsoleLogs(),
		}),
	}
	if envErr != nil {
		rt.Logger.Debug(ctx, "no .env file, using process environment")
	}

	rt.DB, err = db.New(ctx, cfg.DB, rt.Logger)
	if err != nil {
		return nil, fmt.Errorf("database: %w", err)
	}
	rt.OnClose("database", rt.DB.Close)

	if err := migrate.MaybeRunDev(ctx, cfg, rt.Logger, rt.DB); err != nil {
		rt.Close()
		return nil, fmt.Errorf("dev migrations: %w", err)
	}
	return rt, nil
}

// Redis connects to the configured redis and closes it with the runtime.
func (rt *Runtime) Redis(ctx context.Context) (*redis.Client, error) {
	client, err := redis.New(ctx, rt.Config.Redis, rt.Logger)
	if err != nil {
		return nil, fmt.Errorf("redis: %w", err)
	}
	rt.OnClose("redis", client.Close)
	return client, nil
}

// OnClose registers fn to run at shutdown. Closers run newest first.
func (rt *Runtime) OnClose(name string, fn func() error) {
	rt.closers = append(rt.closers, closer{name: name, fn: fn})
}

func (rt *Runtime) Close() {
	for i := len(rt.closers) - 1; i >= 0; i-- {
		c := rt.closers[i]
		if err := c.fn(); err != nil {
			rt.Logger.Error(rt.Logger.WithField(context.Background(), "resource", c.name), "close failed", err)
		}
	}
	rt.closers = nil
}
