package db

import (
	"context"
	"embed"
	"fmt"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/pressly/goose/v3"
	"github.com/sethvargo/go-retry"
)

//go:embed migrations/*.sql
var migrations embed.FS

// Connect opens the database connection pool and applies migrations. The
// store may come up after the service in compose environments, so the dial
// is retried with backoff.
func Connect(ctx context.Context, dsn string) (*sqlx.DB, error) {
	var db *sqlx.DB

	backoff := retry.WithMaxRetries(5, retry.NewExponential(500*time.Millisecond))
	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		var connErr error
		db, connErr = sqlx.ConnectContext(ctx, "postgres", dsn)
		if connErr != nil {
			return retry.RetryableError(connErr)
		}
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("connect db: %w", err)
	}

	if err := runMigrations(db); err != nil {
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return db, nil
}

func runMigrations(db *sqlx.DB) error {
	goose.SetBaseFS(migrations)
	if err := goose.SetDialect("postgres"); err != nil {
		return err
	}
	return goose.Up(db.DB, "migrations")
}
