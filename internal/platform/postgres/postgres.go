package postgres

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"
	"time"

	"gorm.io/driver/postgres"
	"gorm.io/gorm"
)

const (
	pingTimeout     = 5 * time.Second
	maxOpenConns    = 25
	connMaxIdleTime = 5 * time.Minute
)

// Connect opens a PostgreSQL connection via GORM, applies pool limits, and
// verifies connectivity with a bounded ping. TranslateError is enabled so
// adapters can detect duplicate-key violations portably via
// gorm.ErrDuplicatedKey.
func Connect(ctx context.Context, dsn string) (*gorm.DB, error) {
	if strings.TrimSpace(dsn) == "" {
		return nil, fmt.Errorf("postgres DSN is empty")
	}
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{TranslateError: true})
	if err != nil {
		return nil, fmt.Errorf("open postgres: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("unwrap postgres connection: %w", err)
	}
	sqlDB.SetMaxOpenConns(maxOpenConns)
	sqlDB.SetConnMaxIdleTime(connMaxIdleTime)

	pingCtx, cancel := context.WithTimeout(ctx, pingTimeout)
	defer cancel()
	if err := sqlDB.PingContext(pingCtx); err != nil {
		_ = sqlDB.Close()
		return nil, fmt.Errorf("ping postgres: %w", err)
	}
	return db, nil
}

// ConnectFromEnv dials PostgreSQL using POSTGRES_DSN and returns the DB plus a
// cleanup function. A missing DSN or a failed connection is not fatal: callers
// fall back to in-memory storage, so this logs a warning and returns nil with
// a no-op cleanup.
func ConnectFromEnv(ctx context.Context, logger *slog.Logger) (*gorm.DB, func()) {
	noop := func() {}
	dsn := strings.TrimSpace(os.Getenv("POSTGRES_DSN"))
	if dsn == "" {
		warn(logger, "POSTGRES_DSN not set, order storage falls back to memory", nil)
		return nil, noop
	}
	db, err := Connect(ctx, dsn)
	if err != nil {
		warn(logger, "postgres connection failed, order storage falls back to memory", err)
		return nil, noop
	}
	sqlDB, err := db.DB()
	if err != nil {
		warn(logger, "postgres handle unavailable, order storage falls back to memory", err)
		return nil, noop
	}
	if logger != nil {
		logger.Info("postgres connection established")
	}
	return db, func() { _ = sqlDB.Close() }
}

func warn(logger *slog.Logger, msg string, err error) {
	if logger == nil {
		return
	}
	if err != nil {
		logger.Warn(msg, slog.String("error", err.Error()))
		return
	}
	logger.Warn(msg)
}
