// Package db owns the Postgres connection pool and the transaction helper
// every service writes through.
package db

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/sherryseats/orders-backend/pkg/config"
	"github.com/sherryseats/orders-backend/pkg/logger"
)

// DefaultQueryTimeout bounds storage calls when no timeout is configured.
const DefaultQueryTimeout = 5 * time.Second

type Client struct {
	conn         *gorm.DB
	queryTimeout time.Duration
}

// Pinger is the readiness probe surface shared with redis and pubsub.
type Pinger interface {
	Ping(ctx context.Context) error
}

// New parses the DSN, opens the pool and pings it once before returning.
func New(ctx context.Context, cfg config.DBConfig, logg *logger.Logger) (*Client, error) {
	if cfg.DSN == "" {
		return nil, errors.New("database DSN is required")
	}
	parsed, err := pgx.ParseConfig(cfg.DSN)
	if err != nil {
		return nil, fmt.Errorf("parse database DSN: %w", err)
	}

	conn, err := gorm.Open(postgres.New(postgres.Config{
		DSN:                  cfg.DSN,
		PreferSimpleProtocol: true,
	}), GormConfig(logg))
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	pool, err := conn.DB()
	if err != nil {
		return nil, fmt.Errorf("database handle: %w", err)
	}
	pool.SetMaxOpenConns(cfg.MaxOpenConns)
	pool.SetMaxIdleConns(cfg.MaxIdleConns)
	pool.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	pool.SetConnMaxIdleTime(cfg.ConnMaxIdleTime)

	client := FromGorm(conn, cfg.QueryTimeout)
	if err := client.Ping(ctx); err != nil {
		_ = pool.Close()
		return nil, fmt.Errorf("ping database %s:%d: %w", parsed.Host, parsed.Port, err)
	}
	if logg != nil {
		logg.Info(logg.WithFields(ctx, map[string]any{
			"db_host": parsed.Host,
			"db_name": parsed.Database,
		}), "database connected")
	}
	return client, nil
}

// FromGorm wraps an open connection; tests use it with sqlite.
func FromGorm(conn *gorm.DB, queryTimeout time.Duration) *Client {
	if queryTimeout <= 0 {
		queryTimeout = DefaultQueryTimeout
	}
	return &Client{conn: conn, queryTimeout: queryTimeout}
}

func (c *Client) DB() *gorm.DB { return c.conn }

func (c *Client) QueryTimeout() time.Duration { return c.queryTimeout }

func (c *Client) Ping(ctx context.Context) error {
	pool, err := c.conn.DB()
	if err != nil {
		return err
	}
	ctx, cancel := c.Bound(ctx)
	defer cancel()
	return pool.PingContext(ctx)
}

func (c *Client) Close() error {
	pool, err := c.conn.DB()
	if err != nil {
		return err
	}
	return pool.Close()
}
