package resolver

import (
	"context"
	"errors"
	"strings"
	"testing"

	"CatalogAPI/internal/catalog"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// fakeTx implements the parts of pgx.Tx that BeginFunc and Reorder use.
type fakeTx struct {
	pgx.Tx
	affected   map[any]int64
	execs      []string
	args       [][]any
	committed  bool
	rolledBack bool
}

func (tx *fakeTx) Exec(_ context.Context, sql string, args ...any) (pgconn.CommandTag, error) {
	tx.execs = append(tx.execs, sql)
	tx.args = append(tx.args, args)
	// args: position, id, permanent filter values
	if tx.affected[args[1]] == 1 {
		return pgconn.NewCommandTag("UPDATE 1"), nil
	}
	return pgconn.NewCommandTag("UPDATE 0"), nil
}

func (tx *fakeTx) Commit(context.Context) error {
	tx.committed = true
	return nil
}

func (tx *fakeTx) Rollback(context.Context) error {
	if tx.committed {
		return pgx.ErrTxClosed
	}
	tx.rolledBack = true
	return nil
}

type fakeBeginner struct{ tx *fakeTx }

func (b fakeBeginner) Begin(context.Context) (pgx.Tx, error) { return b.tx, nil }

func orderable(d *catalog.Definition) { d.Settings.Orderable = "position" }

func TestReorderWritesPositionsInOneTransaction(t *testing.T) {
	c := testCatalog(t, orderable)
	tx := &fakeTx{affected: map[any]int64{10: 1, 11: 1, 12: 1}}

	n, err := Reorder(context.Background(), fakeBeginner{tx}, c, nil, []any{12, 10, 11})
	if err != nil {
		t.Fatalf("Reorder: %v", err)
	}
	if n != 3 || !tx.committed || tx.rolledBack {
		t.Fatalf("expected 3 updates committed, got n=%d committed=%v rolledBack=%v", n, tx.committed, tx.rolledBack)
	}
	if !strings.Contains(tx.execs[0], "main.status = $3") {
		t.Fatalf("permanent filter must scope the update: %s", tx.execs[0])
	}
	if tx.args[0][0] != 1 || tx.args[0][1] != 12 || tx.args[2][0] != 3 {
		t.Fatalf("unexpected positions: %v", tx.args)
	}
}

func TestReorderRollsBackOutOfScopeIDs(t *testing.T) {
	c := testCatalog(t, orderable)
	tx := &fakeTx{affected: map[any]int64{10: 1}}

	_, err := Reorder(context.Background(), fakeBeginner{tx}, c, nil, []any{10, 99})
	if !errors.Is(err, ErrOutOfScope) {
		t.Fatalf("expected ErrOutOfScope, got %v", err)
	}
	if tx.committed || !tx.rolledBack {
		t.Fatalf("transaction must be rolled back")
	}
}

func TestReorderRequiresOrderableCatalog(t *testing.T) {
	c := testCatalog(t, nil)
	if _, err := Reorder(context.Background(), fakeBeginner{&fakeTx{}}, c, nil, []any{1}); !errors.Is(err, ErrNotOrderable) {
		t.Fatalf("expected ErrNotOrderable, got %v", err)
	}
}
