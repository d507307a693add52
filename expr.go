package relq

import "fmt"

// WHERE clauses are boolean expression trees over column references and
// literals. Column references carry no evaluation state of their own: they
// are resolved into a bindings table when a statement's iterators are built,
// and the bindings are passed to eval explicitly. The same ColRef value can
// therefore appear in both the select list and the WHERE clause, or across
// the two legs of a self-join, without any shared mutable state.

// ColRef names a column, optionally qualified by a from-list table name or
// alias. The zero Table qualifier matches any table owning the column.
type ColRef struct {
	Table string
	Name  string
}

func (ref *ColRef) String() string {
	if ref.Table != "" {
		return ref.Table + "." + ref.Name
	}
	return ref.Name
}

// Operand is either a *ColRef or a literal Value (via Lit).
type Operand interface {
	operandValue(bind bindings) (Value, error)
	operandRefs(f func(*ColRef))
}

type literal struct {
	v Value
}

// Lit wraps a constant value for use as a comparison operand.
func Lit(v Value) Operand {
	return literal{v: v}
}

func (l literal) operandValue(bindings) (Value, error) {
	return l.v, nil
}

func (l literal) operandRefs(func(*ColRef)) {}

func (ref *ColRef) operandValue(bind bindings) (Value, error) {
	bc, ok := bind[ref]
	if !ok {
		return Value{}, &UnknownColumnError{Ref: ref, Clause: "WHERE"}
	}
	return bc.scan.Col(bc.col.Index)
}

func (ref *ColRef) operandRefs(f func(*ColRef)) {
	f(ref)
}

// CmpOp is a comparison operator.
type CmpOp int

const (
	Eq CmpOp = iota + 1
	Ne
	Lt
	Le
	Gt
	Ge
)

func (op CmpOp) String() string {
	switch op {
	case Eq:
		return "="
	case Ne:
		return "<>"
	case Lt:
		return "<"
	case Le:
		return "<="
	case Gt:
		return ">"
	case Ge:
		return ">="
	default:
		return fmt.Sprintf("CmpOp(%d)", int(op))
	}
}

// Expr is a node of a WHERE expression tree. Evaluation is side-effect free
// and re-entrant; the same tree is evaluated once per candidate row.
type Expr interface {
	eval(bind bindings) (bool, error)
	refs(f func(*ColRef))
}

type trueExpr struct{}

// True is the expression used when a statement has no WHERE clause: it is
// satisfied by every row.
func True() Expr {
	return trueExpr{}
}

func (trueExpr) eval(bindings) (bool, error) { return true, nil }
func (trueExpr) refs(func(*ColRef))          {}

type cmpExpr struct {
	left  Operand
	op    CmpOp
	right Operand
}

// Cmp builds a comparison of two operands.
func Cmp(left Operand, op CmpOp, right Operand) Expr {
	return &cmpExpr{left: left, op: op, right: right}
}

func (e *cmpExpr) eval(bind bindings) (bool, error) {
	lv, err := e.left.operandValue(bind)
	if err != nil {
		return false, err
	}
	rv, err := e.right.operandValue(bind)
	if err != nil {
		return false, err
	}
	c, err := lv.Compare(rv)
	if err != nil {
		return false, err
	}
	switch e.op {
	case Eq:
		return c == 0, nil
	case Ne:
		return c != 0, nil
	case Lt:
		return c < 0, nil
	case Le:
		return c <= 0, nil
	case Gt:
		return c > 0, nil
	case Ge:
		return c >= 0, nil
	default:
		return false, fmt.Errorf("invalid comparison operator %v", e.op)
	}
}

func (e *cmpExpr) refs(f func(*ColRef)) {
	e.left.operandRefs(f)
	e.right.operandRefs(f)
}

type andExpr struct{ a, b Expr }

func And(a, b Expr) Expr { return &andExpr{a, b} }

func (e *andExpr) eval(bind bindings) (bool, error) {
	ok, err := e.a.eval(bind)
	if err != nil || !ok {
		return false, err
	}
	return e.b.eval(bind)
}

func (e *andExpr) refs(f func(*ColRef)) {
	e.a.refs(f)
	e.b.refs(f)
}

type orExpr struct{ a, b Expr }

func Or(a, b Expr) Expr { return &orExpr{a, b} }

func (e *orExpr) eval(bind bindings) (bool, error) {
	ok, err := e.a.eval(bind)
	if err != nil || ok {
		return ok, err
	}
	return e.b.eval(bind)
}

func (e *orExpr) refs(f func(*ColRef)) {
	e.a.refs(f)
	e.b.refs(f)
}

type notExpr struct{ e Expr }

func Not(e Expr) Expr { return &notExpr{e} }

func (e *notExpr) eval(bind bindings) (bool, error) {
	ok, err := e.e.eval(bind)
	return !ok, err
}

func (e *notExpr) refs(f func(*ColRef)) {
	e.e.refs(f)
}
