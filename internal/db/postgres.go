package db

import (
	"context"
	"fmt"

	"CatalogAPI/internal/logger"

	"github.com/jackc/pgx/v5/pgxpool"
)

var Pool *pgxpool.Pool

// InitPostgres opens the shared pool and checks the connection.
func InitPostgres(ctx context.Context, dsn string) error {
	if dsn == "" {
		return fmt.Errorf("postgres dsn is empty")
	}

	pool, err := pgxpool.New(ctx, dsn)
	if err != nil {
		return fmt.Errorf("create pgx pool: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return fmt.Errorf("ping pgx: %w", err)
	}
	Pool = pool

	cfg := pool.Config().ConnConfig
	logger.Info("postgres_connected", map[string]any{
		"host":      cfg.Host,
		"database":  cfg.Database,
		"max_conns": pool.Config().MaxConns,
	})
	return nil
}

func ClosePostgres() {
	if Pool != nil {
		Pool.Close()
		Pool = nil
	}
}
