package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/rs/zerolog/log"
)

const (
	dbMaxOpenConns    = 10
	dbConnMaxLifetime = 30 * time.Minute
)

// pinger is the slice of *sql.DB the readiness wait needs, so tests can
// stand in a fake.
type pinger interface {
	PingContext(ctx context.Context) error
}

// openDatabase opens the pool and blocks until the instance answers a ping
// or the configured connect timeout runs out.
func openDatabase(ctx context.Context, cfg Config) (*sql.DB, error) {
	db, err := sql.Open("pgx", cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	db.SetMaxOpenConns(dbMaxOpenConns)
	db.SetConnMaxLifetime(dbConnMaxLifetime)

	if err := waitUntilReady(ctx, db, cfg.DBConnectTimeout); err != nil {
		_ = db.Close()
		return nil, err
	}
	return db, nil
}

// waitUntilReady pings with doubling backoff, logging each failed attempt.
func waitUntilReady(ctx context.Context, db pinger, timeout time.Duration) error {
	ctx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	backoff := 250 * time.Millisecond
	const maxBackoff = 2 * time.Second

	for attempt := 1; ; attempt++ {
		pingCtx, cancelPing := context.WithTimeout(ctx, 3*time.Second)
		err := db.PingContext(pingCtx)
		cancelPing()

		if err == nil {
			if attempt > 1 {
				log.Info().Int("attempts", attempt).Msg("database ready")
			}
			return nil
		}

		log.Warn().
			Err(err).
			Int("attempt", attempt).
			Dur("retry_in", backoff).
			Msg("database not ready")

		select {
		case <-ctx.Done():
			return fmt.Errorf("ping database: %w", err)
		case <-time.After(backoff):
		}

		if backoff < maxBackoff {
			backoff *= 2
		}
	}
}
