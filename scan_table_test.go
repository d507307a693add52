package relq

import (
	"errors"
	"testing"
)

// withMovieScan runs f with a scan over the movies table, wiring the given
// WHERE expression's column refs to the scan.
func withMovieScan(t testing.TB, db *DB, where Expr, f func(s *tableScan)) {
	t.Helper()
	ensure(db.view(func(tx storageTx) error {
		ot, err := db.openTableIn(tx, "movies")
		if err != nil {
			return err
		}
		bind := make(bindings)
		scan := newTableScan(ot, where, bind)
		where.refs(func(ref *ColRef) {
			bind[ref] = boundCol{scan: scan, col: ot.tbl.ColumnNamed(ref.Name)}
		})
		defer scan.Close()
		f(scan)
		return nil
	}))
}

func collectScan(t testing.TB, s *tableScan, colIndex int) []Value {
	t.Helper()
	var out []Value
	for {
		ok, err := s.Next()
		ensure(err)
		if !ok {
			return out
		}
		out = append(out, must(s.Col(colIndex)))
	}
}

func TestTableScanVisitsAllRows(t *testing.T) {
	db := setupMem(t)
	createMovies(t, db)
	insertMovies(t, db, [2]any{2, "b"}, [2]any{1, "a"}, [2]any{3, "c"})

	withMovieScan(t, db, True(), func(s *tableScan) {
		names := collectScan(t, s, 1)
		deepEqual(t, names, []Value{StringValue("a"), StringValue("b"), StringValue("c")})
		deepEqual(t, s.NumRows(), 3)
		deepEqual(t, s.NumColumns(), 2)
	})
}

func TestTableScanPredicateFiltering(t *testing.T) {
	db := setupMem(t)
	createMovies(t, db)
	insertMovies(t, db, [2]any{1, "a"}, [2]any{2, "b"}, [2]any{3, "c"})

	where := Cmp(&ColRef{Name: "pk"}, Gt, Lit(IntValue(1)))
	withMovieScan(t, db, where, func(s *tableScan) {
		names := collectScan(t, s, 1)
		deepEqual(t, names, []Value{StringValue("b"), StringValue("c")})
		deepEqual(t, s.NumRows(), 2)
	})

	// A predicate matching nothing skips the whole table in one Next call.
	none := Cmp(&ColRef{Name: "pk"}, Gt, Lit(IntValue(100)))
	withMovieScan(t, db, none, func(s *tableScan) {
		deepEqual(t, collectScan(t, s, 1), []Value(nil))
		deepEqual(t, s.NumRows(), 0)
	})
}

func TestTableScanFirstIgnoresPredicate(t *testing.T) {
	db := setupMem(t)
	createMovies(t, db)
	insertMovies(t, db, [2]any{1, "a"}, [2]any{2, "b"})

	where := Cmp(&ColRef{Name: "pk"}, Gt, Lit(IntValue(1)))
	withMovieScan(t, db, where, func(s *tableScan) {
		ok := must(s.first())
		deepEqual(t, ok, true)
		deepEqual(t, must(s.Col(1)), StringValue("a")) // lands on the physical first row
		deepEqual(t, s.NumRows(), 0)                   // which doesn't satisfy the predicate

		// first() resets iteration: Next now finds the satisfying row.
		deepEqual(t, must(s.Next()), true)
		deepEqual(t, must(s.Col(1)), StringValue("b"))
		deepEqual(t, s.NumRows(), 1)
	})
}

func TestTableScanEmptyTable(t *testing.T) {
	db := setupMem(t)
	createMovies(t, db)

	withMovieScan(t, db, True(), func(s *tableScan) {
		deepEqual(t, must(s.first()), false)
		deepEqual(t, must(s.Next()), false)
		deepEqual(t, s.NumRows(), 0)
		if _, err := s.Col(0); !errors.Is(err, ErrNotPositioned) {
			t.Errorf("** got %v, wanted ErrNotPositioned", err)
		}
	})
}

func TestTableScanStateErrors(t *testing.T) {
	db := setupMem(t)
	createMovies(t, db)
	insertMovies(t, db, [2]any{1, "a"})

	withMovieScan(t, db, True(), func(s *tableScan) {
		if _, err := s.Col(0); !errors.Is(err, ErrNotPositioned) {
			t.Errorf("** got %v, wanted ErrNotPositioned", err)
		}

		deepEqual(t, must(s.Next()), true)
		deepEqual(t, must(s.Col(0)), IntValue(1))

		ensure(s.Close())
		ensure(s.Close()) // idempotent

		if _, err := s.Next(); !errors.Is(err, ErrClosed) {
			t.Errorf("** got %v, wanted ErrClosed", err)
		}
		if _, err := s.first(); !errors.Is(err, ErrClosed) {
			t.Errorf("** got %v, wanted ErrClosed", err)
		}
		if _, err := s.Col(0); !errors.Is(err, ErrClosed) {
			t.Errorf("** got %v, wanted ErrClosed", err)
		}
	})
}
