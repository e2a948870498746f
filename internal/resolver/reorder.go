package resolver

import (
	"context"
	"errors"
	"fmt"
	"time"

	"CatalogAPI/internal/catalog"
	"CatalogAPI/internal/logger"
	"CatalogAPI/internal/metrics"

	"github.com/jackc/pgx/v5"
)

var (
	ErrNotOrderable = errors.New("catalog is not orderable")
	ErrOutOfScope   = errors.New("record is outside the catalog scope")
)

// Beginner is satisfied by *pgxpool.Pool.
type Beginner interface {
	Begin(ctx context.Context) (pgx.Tx, error)
}

// Reorder writes positions 1..len(ids) into the catalog's orderable column in
// one transaction. Every id must be visible through the catalog's permanent
// filters, otherwise nothing is written.
func Reorder(ctx context.Context, db Beginner, c *catalog.Catalog, store catalog.Store, ids []any) (int, error) {
	column := c.Settings().Orderable
	if column == "" {
		return 0, fmt.Errorf("%w: %s", ErrNotOrderable, c.Name())
	}
	if len(ids) == 0 {
		return 0, nil
	}

	plan, err := c.BuildPlan(catalog.Request{}, store)
	if err != nil {
		return 0, err
	}

	start := time.Now()
	err = pgx.BeginFunc(ctx, db, func(tx pgx.Tx) error {
		for i, id := range ids {
			ub, err := catalog.BuildReorderUpdate(c.Source(), plan, column, id, i+1)
			if err != nil {
				return err
			}
			sql, args, err := ub.ToSql()
			if err != nil {
				return fmt.Errorf("reorder sql: %w", err)
			}
			tag, err := tx.Exec(ctx, sql, args...)
			if err != nil {
				return fmt.Errorf("reorder id %v: %w", id, err)
			}
			if tag.RowsAffected() != 1 {
				return fmt.Errorf("%w: id %v", ErrOutOfScope, id)
			}
		}
		return nil
	})
	if err != nil {
		logger.Warn("reorder_failed", map[string]any{
			"catalog": c.Name(),
			"ids":     len(ids),
			"error":   err.Error(),
		})
		return 0, err
	}
	metrics.ObserveQuery(c.Name(), "reorder", start)
	logger.Info("reorder_applied", map[string]any{"catalog": c.Name(), "ids": len(ids)})
	return len(ids), nil
}
