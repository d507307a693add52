package relq

// Relation is the iterator protocol shared by table scans, cross products
// and projections. A relation is driven by calling Next until it returns
// false; every successful Next lands on a row whose columns can be read
// with Col.
type Relation interface {
	// Next advances to the next row satisfying the relation's predicate.
	// On a freshly constructed relation it advances to the first such row.
	Next() (bool, error)

	// Col returns the decoded value of the column at the given index in the
	// relation's visible column list.
	Col(i int) (Value, error)

	// NumColumns returns the number of visible columns.
	NumColumns() int

	// NumRows returns the number of rows visited so far.
	NumRows() int

	// Close releases the relation's resources. It is idempotent; any other
	// call after Close fails with ErrClosed.
	Close() error
}

// boundCol ties a resolved column reference to the scan currently supplying
// its value and the column's position within that scan's table schema.
type boundCol struct {
	scan *tableScan
	col  *Column
}

// bindings is the statement-scoped resolution table from column references
// to their sources. It is built once per statement execution and passed to
// the predicate evaluator explicitly.
type bindings map[*ColRef]boundCol

// tableScan iterates over the rows of one stored table via a storage cursor.
// With evalWhere enabled it skips rows failing the statement's predicate;
// with it disabled (the cross-product case) it walks physical rows only, so
// predicate conjuncts spanning multiple tables aren't lost to per-table
// filtering.
type tableScan struct {
	tbl   *Table
	cur   storageCursor
	where Expr
	bind  bindings

	key, value []byte
	rows       int
	started    bool
	positioned bool
	closed     bool
}

// newTableScan opens a scan over the table's bucket. The where expression is
// evaluated against bind on every advance; pass True() to disable filtering.
func newTableScan(ot *openTable, where Expr, bind bindings) *tableScan {
	return &tableScan{
		tbl:   ot.tbl,
		cur:   ot.buck.Cursor(),
		where: where,
		bind:  bind,
	}
}

// first positions the scan on the first physical row, ignoring the
// predicate. It exists for restarting an exhausted scan during cross-product
// carries; the row count still only grows if the predicate holds.
func (s *tableScan) first() (bool, error) {
	if s.closed {
		return false, ErrClosed
	}
	s.started = true
	s.key, s.value = s.cur.First()
	if s.key == nil {
		s.positioned = false
		return false, nil
	}
	s.positioned = true
	ok, err := s.where.eval(s.bind)
	if err != nil {
		return false, err
	}
	if ok {
		s.rows++
	}
	return true, nil
}

func (s *tableScan) Next() (bool, error) {
	if s.closed {
		return false, ErrClosed
	}
	// Loop rather than recurse: a selective predicate over a large table
	// must not grow the call stack per skipped row.
	for {
		var k, v []byte
		if s.started {
			k, v = s.cur.Next()
		} else {
			s.started = true
			k, v = s.cur.First()
		}
		if k == nil {
			return false, nil
		}
		s.key, s.value = k, v
		s.positioned = true
		ok, err := s.where.eval(s.bind)
		if err != nil {
			return false, err
		}
		if ok {
			s.rows++
			return true, nil
		}
	}
}

func (s *tableScan) Col(i int) (Value, error) {
	if s.closed {
		return Value{}, ErrClosed
	}
	if !s.positioned {
		return Value{}, ErrNotPositioned
	}
	return decodeColumn(s.tbl, s.key, s.value, i)
}

func (s *tableScan) NumColumns() int {
	return s.tbl.NumColumns()
}

func (s *tableScan) NumRows() int {
	return s.rows
}

func (s *tableScan) Close() error {
	s.closed = true
	s.cur = nil
	return nil
}
