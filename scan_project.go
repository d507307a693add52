package relq

// projection restricts (and possibly reorders) the visible columns of an
// inner relation without changing which rows it visits.
type projection struct {
	inner Relation
	idx   []int // projection-list index -> inner column index
}

func newProjection(inner Relation, idx []int) *projection {
	return &projection{inner: inner, idx: idx}
}

func (p *projection) Next() (bool, error) {
	return p.inner.Next()
}

func (p *projection) Col(i int) (Value, error) {
	return p.inner.Col(p.idx[i])
}

func (p *projection) NumColumns() int {
	return len(p.idx)
}

func (p *projection) NumRows() int {
	return p.inner.NumRows()
}

func (p *projection) Close() error {
	return p.inner.Close()
}
