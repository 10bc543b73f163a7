package database

import (
	"context"
	"errors"
	"fmt"
	"net/url"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq" // PostgreSQL driver
	"github.com/rs/zerolog/log"

	appconfig "github.com/peptidedeals/peptidedeals_api/internal/config"
)

const (
	baseDelay = 500 * time.Millisecond
	maxDelay  = 5 * time.Second
)

// DSN builds the lib/pq connection URL for cfg.
func DSN(cfg *appconfig.DatabaseConfig) string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(cfg.User, cfg.Password),
		Host:   cfg.Host + ":" + cfg.Port,
		Path:   "/" + cfg.Name,
	}
	q := url.Values{}
	q.Set("sslmode", cfg.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}

// Connect opens the price-history database and pings it, retrying up to
// cfg.ConnectAttempts times with exponential backoff. Cancelling ctx aborts
// the retry loop.
func Connect(ctx context.Context, cfg *appconfig.DatabaseConfig) (*sqlx.DB, error) {
	if cfg == nil {
		return nil, errors.New("nil database config")
	}
	attempts := cfg.ConnectAttempts
	if attempts < 1 {
		attempts = 1
	}
	timeout := cfg.ConnectTimeout
	if timeout <= 0 {
		timeout = 5 * time.Second
	}

	var lastErr error
	for attempt := 1; attempt <= attempts; attempt++ {
		db, err := sqlx.Open("postgres", DSN(cfg))
		if err == nil {
			setPool(db, cfg)

			pingCtx, cancel := context.WithTimeout(ctx, timeout)
			err = db.PingContext(pingCtx)
			cancel()
			if err == nil {
				return db, nil
			}
			_ = db.Close()
		}
		lastErr = err

		if attempt == attempts {
			break
		}
		log.Warn().Err(err).Int("attempt", attempt).Str("host", cfg.Host).Msg("database not ready, retrying")
		if err := wait(ctx, backoff(attempt)); err != nil {
			return nil, fmt.Errorf("database connect cancelled: %w", err)
		}
	}

	return nil, fmt.Errorf("failed to connect to database after %d attempts: %w", attempts, lastErr)
}

func setPool(db *sqlx.DB, cfg *appconfig.DatabaseConfig) {
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}
}

// backoff returns baseDelay * 2^(attempt-1), capped at maxDelay.
func backoff(attempt int) time.Duration {
	if attempt > 8 {
		return maxDelay
	}
	d := baseDelay << (attempt - 1)
	if d > maxDelay {
		d = maxDelay
	}
	return d
}

func wait(ctx context.Context, d time.Duration) error {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-t.C:
		return nil
	}
}
