package resolver

import (
	"fmt"

	"CatalogAPI/internal/catalog"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgtype"
)

// ScanRecords reads rows into records keyed by columns, in select order.
func ScanRecords(rows pgx.Rows, columns []string) ([]catalog.Record, error) {
	if rows == nil {
		return nil, fmt.Errorf("rows is nil")
	}
	out := make([]catalog.Record, 0, 16)
	for rows.Next() {
		vals, err := rows.Values()
		if err != nil {
			return nil, err
		}
		if len(vals) != len(columns) {
			return nil, fmt.Errorf("got %d values for %d columns", len(vals), len(columns))
		}
		rec := make(catalog.Record, len(columns))
		for i, col := range columns {
			rec[col] = jsonValue(vals[i])
		}
		out = append(out, rec)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

// jsonValue converts pgx driver values into types that encode cleanly.
func jsonValue(v any) any {
	switch t := v.(type) {
	case [16]byte:
		return uuid.UUID(t).String()
	case pgtype.UUID:
		if !t.Valid {
			return nil
		}
		return uuid.UUID(t.Bytes).String()
	case pgtype.Numeric:
		if !t.Valid {
			return nil
		}
		f, err := t.Float64Value()
		if err != nil || !f.Valid {
			return nil
		}
		return f.Float64
	}
	return v
}
