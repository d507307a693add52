package relq

import "errors"

// crossScan is a nested-loop cross product of two or more table scans.
// The sub-scans act as digits of a mixed-radix odometer: the last table
// varies fastest, and exhausting a digit resets it to its first row and
// carries left. The statement's full predicate is evaluated once per
// combined position.
type crossScan struct {
	subs  []*tableScan
	cols  []boundCol // flattened columns of all tables, in from-list order
	where Expr
	bind  bindings

	rows         int
	firstChecked bool
	exhausted    bool
	closed       bool
}

// newCrossScan positions every sub-scan on its first physical row. If any
// table is empty the product is empty.
func newCrossScan(subs []*tableScan, where Expr, bind bindings) (*crossScan, error) {
	c := &crossScan{subs: subs, where: where, bind: bind}
	for _, s := range subs {
		for _, col := range s.tbl.cols {
			c.cols = append(c.cols, boundCol{scan: s, col: col})
		}
		ok, err := s.first()
		if err != nil {
			return nil, err
		}
		if !ok {
			c.exhausted = true
		}
	}
	return c, nil
}

func (c *crossScan) Next() (bool, error) {
	if c.closed {
		return false, ErrClosed
	}
	if c.exhausted {
		return false, nil
	}
	// Loop rather than recurse across predicate misses.
	for {
		if c.firstChecked {
			pivot := len(c.subs) - 1
			for pivot >= 0 {
				ok, err := c.subs[pivot].Next()
				if err != nil {
					return false, err
				}
				if ok {
					break
				}
				// This digit wrapped: reset it and carry to the left.
				if _, err := c.subs[pivot].first(); err != nil {
					return false, err
				}
				pivot--
			}
			if pivot < 0 {
				c.exhausted = true
				return false, nil
			}
		} else {
			// The initial combined position set up by the constructor has
			// not been examined yet; check it before moving any cursor.
			c.firstChecked = true
		}
		ok, err := c.where.eval(c.bind)
		if err != nil {
			return false, err
		}
		if ok {
			c.rows++
			return true, nil
		}
	}
}

func (c *crossScan) Col(i int) (Value, error) {
	if c.closed {
		return Value{}, ErrClosed
	}
	bc := c.cols[i]
	return bc.scan.Col(bc.col.Index)
}

func (c *crossScan) NumColumns() int {
	return len(c.cols)
}

func (c *crossScan) NumRows() int {
	return c.rows
}

// Close closes every sub-scan, aggregating failures instead of dropping them.
func (c *crossScan) Close() error {
	if c.closed {
		return nil
	}
	c.closed = true
	var errs []error
	for _, s := range c.subs {
		if err := s.Close(); err != nil {
			errs = append(errs, err)
		}
	}
	return errors.Join(errs...)
}
