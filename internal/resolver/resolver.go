package resolver

import (
	"context"
	"fmt"
	"sync"
	"time"

	"CatalogAPI/internal/catalog"
	"CatalogAPI/internal/logger"
	"CatalogAPI/internal/metrics"

	"github.com/jackc/pgx/v5"
)

// Querier is satisfied by *pgxpool.Pool and pgx.Tx.
type Querier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// Browse resolves req against c, runs the count and page queries and returns
// the page envelope. Resolution errors are returned before any query runs.
func Browse(ctx context.Context, q Querier, c *catalog.Catalog, req catalog.Request, store catalog.Store) (*catalog.Paginator, *catalog.QueryPlan, error) {
	plan, err := c.BuildPlan(req, store)
	if err != nil {
		return nil, nil, err
	}

	base := c.Source()
	countSB, err := catalog.BuildCountQuery(base, plan)
	if err != nil {
		return nil, plan, err
	}
	indexSB, err := catalog.BuildIndexQuery(base, plan)
	if err != nil {
		return nil, plan, err
	}
	countSQL, countArgs, err := countSB.ToSql()
	if err != nil {
		return nil, plan, fmt.Errorf("count sql: %w", err)
	}
	indexSQL, indexArgs, err := indexSB.ToSql()
	if err != nil {
		return nil, plan, fmt.Errorf("index sql: %w", err)
	}
	logger.Debug("sql", map[string]any{
		"catalog": c.Name(),
		"count":   countSQL,
		"index":   indexSQL,
		"args":    indexArgs,
	})

	var (
		wg    sync.WaitGroup
		mu    sync.Mutex
		rerr  error
		total int64
		data  []catalog.Record
	)
	fail := func(err error) {
		mu.Lock()
		if rerr == nil {
			rerr = err
		}
		mu.Unlock()
	}

	wg.Add(2)
	go func() {
		defer wg.Done()
		start := time.Now()
		var n int64
		if err := q.QueryRow(ctx, countSQL, countArgs...).Scan(&n); err != nil {
			fail(fmt.Errorf("count query: %w", err))
			return
		}
		metrics.ObserveQuery(c.Name(), "count", start)
		mu.Lock()
		total = n
		mu.Unlock()
	}()
	go func() {
		defer wg.Done()
		start := time.Now()
		rows, err := q.Query(ctx, indexSQL, indexArgs...)
		if err != nil {
			fail(fmt.Errorf("index query: %w", err))
			return
		}
		defer rows.Close()
		items, err := ScanRecords(rows, plan.Columns)
		if err != nil {
			fail(fmt.Errorf("scan rows: %w", err))
			return
		}
		metrics.ObserveQuery(c.Name(), "index", start)
		mu.Lock()
		data = items
		mu.Unlock()
	}()
	wg.Wait()

	if rerr != nil {
		logger.Error("browse_query_failed", map[string]any{
			"catalog": c.Name(),
			"error":   rerr.Error(),
		})
		return nil, plan, rerr
	}
	return catalog.NewPaginator(plan, int(total), data, c.Settings().PaginationStyle), plan, nil
}
