package relq

import (
	"fmt"
	"strings"
)

// ColumnType enumerates the storable column types.
type ColumnType int

const (
	Integer   ColumnType = iota + 1 // 4-byte big-endian signed integer
	Real                            // 8-byte IEEE-754 double
	FixedChar                       // fixed-length character data, zero-padded
	VarChar                         // variable-length character data
)

func (t ColumnType) String() string {
	switch t {
	case Integer:
		return "INTEGER"
	case Real:
		return "REAL"
	case FixedChar:
		return "CHAR"
	case VarChar:
		return "VARCHAR"
	default:
		return fmt.Sprintf("ColumnType(%d)", int(t))
	}
}

func (t ColumnType) isChar() bool {
	return t == FixedChar || t == VarChar
}

func (t ColumnType) isNumeric() bool {
	return t == Integer || t == Real
}

// Column describes a single column of a table.
type Column struct {
	Name       string
	Type       ColumnType
	Len        int // byte length for FixedChar; ignored for other types
	Index      int // position within the table schema
	PrimaryKey bool
}

// width returns the number of bytes the column occupies in the value buffer
// for the given value. Only VarChar columns are variable-width there.
func (col *Column) width(v Value) int {
	switch col.Type {
	case Integer:
		return 4
	case Real:
		return 8
	case FixedChar:
		return col.Len
	case VarChar:
		return len(v.Str)
	default:
		return 0
	}
}

// Table is a fully resolved table schema: an ordered list of columns with at
// most one of them flagged as the primary key.
type Table struct {
	name string
	cols []*Column
	pk   *Column // nil when the table has no primary key
}

func newTable(name string, cols []*Column) (*Table, error) {
	if name == "" {
		return nil, fmt.Errorf("table name is empty")
	}
	tbl := &Table{name: name, cols: cols}
	seen := make(map[string]bool, len(cols))
	for i, col := range cols {
		col.Index = i
		if col.Name == "" {
			return nil, fmt.Errorf("%s: column %d has no name", name, i)
		}
		lower := strings.ToLower(col.Name)
		if seen[lower] {
			return nil, fmt.Errorf("%s: duplicate column %q", name, col.Name)
		}
		seen[lower] = true
		switch col.Type {
		case Integer, Real, VarChar:
		case FixedChar:
			if col.Len <= 0 {
				return nil, fmt.Errorf("%s.%s: CHAR length must be positive", name, col.Name)
			}
		default:
			return nil, &UnsupportedTypeError{Type: col.Type}
		}
		if col.PrimaryKey {
			if tbl.pk != nil {
				return nil, fmt.Errorf("%s: more than one primary key column (%s, %s)", name, tbl.pk.Name, col.Name)
			}
			tbl.pk = col
		}
	}
	return tbl, nil
}

func (tbl *Table) Name() string {
	return tbl.name
}

func (tbl *Table) NumColumns() int {
	return len(tbl.cols)
}

// Column returns the column at the given schema position.
func (tbl *Table) Column(i int) *Column {
	return tbl.cols[i]
}

// ColumnNamed returns the column with the given name (case-insensitive),
// or nil if the table has no such column.
func (tbl *Table) ColumnNamed(name string) *Column {
	for _, col := range tbl.cols {
		if strings.EqualFold(col.Name, name) {
			return col
		}
	}
	return nil
}

// PrimaryKeyColumn returns the primary key column, or nil if there is none.
func (tbl *Table) PrimaryKeyColumn() *Column {
	return tbl.pk
}

// valueColumnCount is the number of columns stored in the value buffer
// (the primary key, if any, lives in the key buffer instead).
func (tbl *Table) valueColumnCount() int {
	if tbl.pk != nil {
		return len(tbl.cols) - 1
	}
	return len(tbl.cols)
}
