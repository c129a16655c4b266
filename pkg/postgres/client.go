// Package postgres manages the database/sql connection pool used by the
// analytics recorder.
package postgres

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/Adithya-Monish-Kumar-K/Blog-Search-Platform/pkg/config"
	_ "github.com/lib/pq"
)

const connectTimeout = 5 * time.Second

// Client holds a configured *sql.DB. The DB field is exported so callers can
// issue their own statements.
type Client struct {
	DB *sql.DB
}

// New opens a connection pool against the configured DSN, applies the pool
// limits, and verifies connectivity with a ping.
func New(cfg config.PostgresConfig) (*Client, error) {
	db, err := sql.Open("postgres", cfg.DSN())
	if err != nil {
		return nil, fmt.Errorf("opening postgres connection: %w", err)
	}
	db.SetMaxOpenConns(cfg.MaxOpenConns)
	db.SetMaxIdleConns(cfg.MaxIdleConns)
	db.SetConnMaxLifetime(cfg.ConnMaxLifetime)

	ctx, cancel := context.WithTimeout(context.Background(), connectTimeout)
	defer cancel()
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("pinging postgres: %w", err)
	}
	return &Client{DB: db}, nil
}

// Close closes the pool.
func (c *Client) Close() error {
	return c.DB.Close()
}
