// internal/common/database/postgres.go
package database

import (
	"context"
	"fmt"
	"time"

	"nba-query-workers/internal/common/config"
	apperrors "nba-query-workers/internal/common/errors"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
)

// PostgresClient owns the stats database pool. DB satisfies the
// queries.Querier interface the stats pipeline executes against.
type PostgresClient struct {
	DB *sqlx.DB
}

// NewPostgres opens the pool without dialing; call Ping to verify reachability.
// Connect timeout travels in the DSN.
func NewPostgres(cfg config.PostgresConfig) (*PostgresClient, error) {
	db, err := sqlx.Open("postgres", cfg.GetDSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open postgres: %w", err)
	}

	db.SetMaxOpenConns(cfg.MaxConnections)
	db.SetMaxIdleConns(cfg.MaxIdle)
	db.SetConnMaxIdleTime(cfg.IdleTimeout())
	db.SetConnMaxLifetime(30 * time.Minute)

	return &PostgresClient{DB: db}, nil
}

// Wrap adopts an already-open *sqlx.DB, mainly for sqlmock-backed tests.
func Wrap(db *sqlx.DB) *PostgresClient {
	return &PostgresClient{DB: db}
}

// Ping reports an unreachable database as DATABASE_CONNECTION_FAILED.
func (c *PostgresClient) Ping(ctx context.Context) error {
	if err := c.DB.PingContext(ctx); err != nil {
		return apperrors.NewDatabaseConnectionFailedError(fmt.Errorf("postgres ping failed: %w", err))
	}
	return nil
}

func (c *PostgresClient) Close() error {
	if c.DB != nil {
		return c.DB.Close()
	}
	return nil
}

// QueryxContext runs a read query and hands back sqlx rows for MapScan.
func (c *PostgresClient) QueryxContext(ctx context.Context, query string, args ...interface{}) (*sqlx.Rows, error) {
	return c.DB.QueryxContext(ctx, query, args...)
}

// QueryRowxContext is used by the season resolver for single-value lookups.
func (c *PostgresClient) QueryRowxContext(ctx context.Context, query string, args ...interface{}) *sqlx.Row {
	return c.DB.QueryRowxContext(ctx, query, args...)
}
