/*-------------------------------------------------------------------------
 *
 * pgEdge PostGIS Schema Manager
 *
 * Portions copyright (c) 2025, pgEdge, Inc.
 * This software is released under The PostgreSQL License
 *
 *-------------------------------------------------------------------------
 */

package database

import (
	"context"
	"fmt"
	"net/url"
	"os"
	"time"

	"pgedge-postgis-schema/internal/config"
	"pgedge-postgis-schema/internal/spatial"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Client owns the single PostgreSQL connection pool the schema manager
// works against. The spatial router binds to the Client by identity: one
// Client, one logical connection.
type Client struct {
	connStr  string
	pool     *pgxpool.Pool
	dbConfig *config.DatabaseConfig
	registry *spatial.TypeRegistry
}

// NewClient creates a client. The connection string may be empty, in
// which case Connect falls back to the database configuration and then
// the environment. The registry may be nil; when set, every pooled
// connection gets the spatial types registered on connect.
func NewClient(connStr string, dbConfig *config.DatabaseConfig, registry *spatial.TypeRegistry) *Client {
	return &Client{
		connStr:  connStr,
		dbConfig: dbConfig,
		registry: registry,
	}
}

// Connect establishes the connection pool. Calling Connect on an already
// connected client is a no-op.
func (c *Client) Connect(ctx context.Context) error {
	if c.pool != nil {
		return nil
	}

	startTime := time.Now()

	connStr := c.connStr
	if connStr == "" {
		// Priority order: database config, environment variable, fallback
		if c.dbConfig != nil && c.dbConfig.User != "" {
			connStr = c.dbConfig.BuildConnectionString()
		} else {
			connStr = os.Getenv("PGEDGE_SCHEMA_CONNECTION_STRING")
			if connStr == "" {
				connStr = "postgres://localhost/postgres?sslmode=disable"
			}
		}
	}

	enhancedConnStr, err := addApplicationName(connStr, "pgEdge PostGIS Schema Manager")
	if err != nil {
		return fmt.Errorf("unable to enhance connection string: %w", err)
	}

	poolConfig, err := pgxpool.ParseConfig(enhancedConnStr)
	if err != nil {
		return fmt.Errorf("unable to parse connection string: %w", err)
	}

	if c.dbConfig != nil {
		if c.dbConfig.PoolMaxConns > 0 {
			poolConfig.MaxConns = int32(c.dbConfig.PoolMaxConns)
		}
		if c.dbConfig.PoolMinConns > 0 {
			poolConfig.MinConns = int32(c.dbConfig.PoolMinConns)
		}
		if c.dbConfig.PoolMaxConnIdleTime != "" {
			idleTime, err := time.ParseDuration(c.dbConfig.PoolMaxConnIdleTime)
			if err != nil {
				return fmt.Errorf("invalid pool_max_conn_idle_time: %w", err)
			}
			poolConfig.MaxConnIdleTime = idleTime
		}
	}

	// Register the spatial value types on every pooled connection, not
	// just the one the router primes on connect
	if c.registry != nil {
		poolConfig.AfterConnect = func(ctx context.Context, conn *pgx.Conn) error {
			return c.registry.RegisterConn(ctx, conn)
		}
	}

	pool, err := pgxpool.NewWithConfig(ctx, poolConfig)
	if err != nil {
		duration := time.Since(startTime)
		LogConnection(connStr, duration, err)
		return fmt.Errorf("unable to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		duration := time.Since(startTime)
		LogConnection(connStr, duration, err)
		return fmt.Errorf("unable to ping database: %w", err)
	}

	c.connStr = connStr
	c.pool = pool

	duration := time.Since(startTime)
	LogConnection(connStr, duration, nil)

	return nil
}

// Pool returns the connection pool, or nil before Connect.
func (c *Client) Pool() *pgxpool.Pool {
	return c.pool
}

// ConnString returns the resolved connection string.
func (c *Client) ConnString() string {
	return c.connStr
}

// Close closes the connection pool.
func (c *Client) Close() {
	if c.pool != nil {
		c.pool.Close()
		c.pool = nil
	}
}

// addApplicationName adds application_name parameter to a PostgreSQL connection string
func addApplicationName(connStr, appName string) (string, error) {
	u, err := url.Parse(connStr)
	if err != nil {
		return "", fmt.Errorf("invalid connection string: %w", err)
	}

	query := u.Query()
	if !query.Has("application_name") {
		query.Set("application_name", appName)
		u.RawQuery = query.Encode()
	}

	return u.String(), nil
}
