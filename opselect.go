package relq

import (
	"context"
	"encoding/binary"
	"log/slog"
	"math"
	"strings"
)

// FromItem names one table of a statement's from-list, optionally under an
// alias. Aliases are what make a self-cross resolvable: the same table
// listed twice contributes two distinct scans, and qualified column
// references pick between them.
type FromItem struct {
	Table string
	Alias string
}

func (f FromItem) matches(qualifier string) bool {
	if qualifier == "" {
		return true
	}
	if f.Alias != "" {
		return strings.EqualFold(qualifier, f.Alias)
	}
	return strings.EqualFold(qualifier, f.Table)
}

// SelectQuery is an already-parsed SELECT statement: the parsing and grammar
// live outside this core.
type SelectQuery struct {
	Select   []*ColRef // empty means the whole relation (SELECT *)
	From     []FromItem
	Where    Expr // nil means no WHERE clause
	Distinct bool
	Limit    int // 0 means no limit
}

// RowConsumer receives the rows of a statement's result, one at a time, in
// the (possibly projected) column order. Returning an error aborts the
// statement.
type RowConsumer interface {
	Row(vals []Value) error
}

// RowFunc adapts a function to the RowConsumer interface.
type RowFunc func(vals []Value) error

func (f RowFunc) Row(vals []Value) error { return f(vals) }

// CollectRows returns a consumer that appends every row to *dst.
func CollectRows(dst *[][]Value) RowConsumer {
	return RowFunc(func(vals []Value) error {
		*dst = append(*dst, vals)
		return nil
	})
}

// Select executes a SELECT statement and streams the result to rc. The
// statement is validated up front: an empty from-list, an unopenable table
// or an unresolvable column reference fails the statement before any row is
// visited, so a failed statement never emits a partial result.
func (db *DB) Select(q *SelectQuery, rc RowConsumer) error {
	if len(q.From) == 0 {
		return ErrNoTables
	}
	return db.view(func(tx storageTx) error {
		return db.selectIn(tx, q, rc)
	})
}

type resolvedRef struct {
	fromIdx int
	col     *Column
}

func (db *DB) selectIn(tx storageTx, q *SelectQuery, rc RowConsumer) (err error) {
	tables := make([]*openTable, len(q.From))
	for i, f := range q.From {
		tables[i], err = db.openTableIn(tx, f.Table)
		if err != nil {
			return err
		}
	}

	where := q.Where
	if where == nil {
		where = True()
	}

	// Resolve every column reference against the from-list before building
	// any iterator. An unqualified name matching several tables resolves to
	// the last match, same as qualifier-free lookup always has.
	resolve := func(ref *ColRef) (resolvedRef, bool) {
		var r resolvedRef
		var found bool
		for i, f := range q.From {
			if !f.matches(ref.Table) {
				continue
			}
			if col := tables[i].tbl.ColumnNamed(ref.Name); col != nil {
				r = resolvedRef{fromIdx: i, col: col}
				found = true
			}
		}
		return r, found
	}

	resolved := make(map[*ColRef]resolvedRef)
	var badRef *UnknownColumnError
	where.refs(func(ref *ColRef) {
		if badRef != nil {
			return
		}
		r, ok := resolve(ref)
		if !ok {
			badRef = &UnknownColumnError{Ref: ref, Clause: "WHERE"}
			return
		}
		resolved[ref] = r
	})
	if badRef != nil {
		return badRef
	}
	for _, ref := range q.Select {
		r, ok := resolve(ref)
		if !ok {
			return &UnknownColumnError{Ref: ref, Clause: "select list"}
		}
		resolved[ref] = r
	}

	bind := make(bindings, len(resolved))
	var rel Relation
	if len(q.From) == 1 {
		scan := newTableScan(tables[0], where, bind)
		for ref, r := range resolved {
			bind[ref] = boundCol{scan: scan, col: r.col}
		}
		rel = scan
	} else {
		subs := make([]*tableScan, len(tables))
		for i, ot := range tables {
			subs[i] = newTableScan(ot, True(), bind)
		}
		for ref, r := range resolved {
			bind[ref] = boundCol{scan: subs[r.fromIdx], col: r.col}
		}
		cross, cerr := newCrossScan(subs, where, bind)
		if cerr != nil {
			for _, s := range subs {
				s.Close()
			}
			return cerr
		}
		rel = cross
	}

	if len(q.Select) > 0 {
		offsets := make([]int, len(q.From))
		for i := 1; i < len(q.From); i++ {
			offsets[i] = offsets[i-1] + tables[i-1].tbl.NumColumns()
		}
		idx := make([]int, len(q.Select))
		for i, ref := range q.Select {
			r := resolved[ref]
			idx[i] = offsets[r.fromIdx] + r.col.Index
		}
		rel = newProjection(rel, idx)
	}

	defer func() {
		if cerr := rel.Close(); cerr != nil {
			if err == nil {
				err = cerr
			} else {
				// Cleanup failures must not mask the statement's error.
				db.logger.LogAttrs(context.Background(), slog.LevelWarn, "relq: closing iterators after failed select",
					slog.Any("closeErr", cerr), slog.Any("err", err))
			}
		}
	}()

	var seen map[string]bool
	if q.Distinct {
		seen = make(map[string]bool)
	}
	var emitted int
	for {
		ok, err := rel.Next()
		if err != nil {
			return err
		}
		if !ok {
			break
		}
		row := make([]Value, rel.NumColumns())
		for i := range row {
			row[i], err = rel.Col(i)
			if err != nil {
				return err
			}
		}
		if q.Distinct {
			k := rowKey(row)
			if seen[k] {
				continue
			}
			seen[k] = true
		}
		if err := rc.Row(row); err != nil {
			return err
		}
		emitted++
		if q.Limit > 0 && emitted >= q.Limit {
			break
		}
	}
	db.logger.LogAttrs(context.Background(), slog.LevelDebug, "relq: select",
		slog.Int("tables", len(q.From)), slog.Int("rows", emitted))
	return nil
}

// rowKey builds a collision-free fingerprint of a decoded row, used for
// DISTINCT bookkeeping.
func rowKey(row []Value) string {
	var b strings.Builder
	var scratch [8]byte
	for _, v := range row {
		b.WriteByte(byte(v.Type))
		switch v.Type {
		case Integer:
			binary.BigEndian.PutUint32(scratch[:4], uint32(v.Int))
			b.Write(scratch[:4])
		case Real:
			binary.BigEndian.PutUint64(scratch[:], math.Float64bits(v.Real))
			b.Write(scratch[:])
		default:
			binary.BigEndian.PutUint32(scratch[:4], uint32(len(v.Str)))
			b.Write(scratch[:4])
			b.WriteString(v.Str)
		}
	}
	return b.String()
}
