package relq

import (
	"strings"
	"testing"
)

func mustTable(t testing.TB, name string, cols ...*Column) *Table {
	t.Helper()
	return must(newTable(name, cols))
}

func TestEncodeRowOffsetHeader(t *testing.T) {
	// No primary key: every column lands in the value buffer behind a
	// (C+1)-entry offset header.
	tbl := mustTable(t, "t",
		&Column{Name: "a", Type: VarChar},
		&Column{Name: "b", Type: Integer},
	)
	key, value, err := encodeRow(tbl, []Value{StringValue("hi"), IntValue(5)})
	ensure(err)
	if key != nil {
		t.Errorf("** got key %x, wanted none", key)
	}
	deepEqual(t, value, x("0006 0008 000c 6869 00000005"))
}

func TestEncodeRowPrimaryKey(t *testing.T) {
	tests := []struct {
		name      string
		cols      []*Column
		vals      []Value
		wantKey   string
		wantValue string
	}{
		{
			"integer pk first",
			[]*Column{
				{Name: "pk", Type: Integer, PrimaryKey: true},
				{Name: "name", Type: VarChar},
			},
			[]Value{IntValue(1), StringValue("a")},
			"00000001",
			"0004 0005 61",
		},
		{
			"varchar pk gets length prefix in key only",
			[]*Column{
				{Name: "pk", Type: VarChar, PrimaryKey: true},
				{Name: "n", Type: Integer},
			},
			[]Value{StringValue("ab"), IntValue(7)},
			"0002 6162",
			"0004 0008 00000007",
		},
		{
			"pk in the middle shifts later columns",
			[]*Column{
				{Name: "a", Type: Integer},
				{Name: "pk", Type: VarChar, PrimaryKey: true},
				{Name: "c", Type: Real},
			},
			[]Value{IntValue(-1), StringValue("k"), RealValue(1.0)},
			"0001 6b",
			"0006 000a 0012 ffffffff 3ff0000000000000",
		},
		{
			"pk last",
			[]*Column{
				{Name: "a", Type: VarChar},
				{Name: "pk", Type: Integer, PrimaryKey: true},
			},
			[]Value{StringValue("xyz"), IntValue(2)},
			"00000002",
			"0004 0007 78797a",
		},
		{
			"fixed char pk is raw bytes",
			[]*Column{
				{Name: "pk", Type: FixedChar, Len: 4, PrimaryKey: true},
				{Name: "b", Type: Integer},
			},
			[]Value{CharValue("ab"), IntValue(3)},
			"6162 0000",
			"0004 0008 00000003",
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := mustTable(t, "t", tt.cols...)
			key, value, err := encodeRow(tbl, tt.vals)
			ensure(err)
			deepEqual(t, key, x(tt.wantKey))
			deepEqual(t, value, x(tt.wantValue))
		})
	}
}

func TestRowRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		cols []*Column
		vals []Value
	}{
		{
			"all types no pk",
			[]*Column{
				{Name: "i", Type: Integer},
				{Name: "r", Type: Real},
				{Name: "c", Type: FixedChar, Len: 8},
				{Name: "v", Type: VarChar},
			},
			[]Value{IntValue(-123456), RealValue(3.25), CharValue("abc"), StringValue("hello world")},
		},
		{
			"empty varchar",
			[]*Column{
				{Name: "v", Type: VarChar},
				{Name: "i", Type: Integer},
			},
			[]Value{StringValue(""), IntValue(0)},
		},
		{
			"max length fixed char",
			[]*Column{
				{Name: "c", Type: FixedChar, Len: 5},
			},
			[]Value{CharValue("12345")},
		},
		{
			"pk first",
			[]*Column{
				{Name: "pk", Type: Integer, PrimaryKey: true},
				{Name: "v", Type: VarChar},
			},
			[]Value{IntValue(42), StringValue("x")},
		},
		{
			"pk middle with empty varchar pk",
			[]*Column{
				{Name: "a", Type: Real},
				{Name: "pk", Type: VarChar, PrimaryKey: true},
				{Name: "c", Type: Integer},
				{Name: "d", Type: VarChar},
			},
			[]Value{RealValue(-0.5), StringValue(""), IntValue(9), StringValue("tail")},
		},
		{
			"pk last",
			[]*Column{
				{Name: "a", Type: VarChar},
				{Name: "b", Type: VarChar},
				{Name: "pk", Type: Integer, PrimaryKey: true},
			},
			[]Value{StringValue("one"), StringValue("two"), IntValue(7)},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tbl := mustTable(t, "t", tt.cols...)
			key, value, err := encodeRow(tbl, tt.vals)
			ensure(err)
			// Decode out of order to prove random access.
			for i := len(tt.vals) - 1; i >= 0; i-- {
				got, err := decodeColumn(tbl, key, value, i)
				ensure(err)
				deepEqual(t, got, tt.vals[i])
			}
		})
	}
}

func TestEncodeRowErrors(t *testing.T) {
	tbl := mustTable(t, "t",
		&Column{Name: "a", Type: Integer},
		&Column{Name: "b", Type: VarChar},
	)

	_, _, err := encodeRow(tbl, []Value{IntValue(1)})
	if err == nil {
		t.Error("** wrong arity accepted")
	}

	_, _, err = encodeRow(tbl, []Value{StringValue("nope"), StringValue("b")})
	var tme *TypeMismatchError
	if !errorsAs(err, &tme) {
		t.Errorf("** got %v, wanted TypeMismatchError", err)
	}

	over := mustTable(t, "t2", &Column{Name: "c", Type: FixedChar, Len: 2})
	_, _, err = encodeRow(over, []Value{CharValue("toolong")})
	if err == nil {
		t.Error("** oversized CHAR accepted")
	}

	// A corrupted type sneaking past schema validation fails the codec.
	bad := &Table{name: "bad", cols: []*Column{{Name: "z", Type: ColumnType(42)}}}
	_, _, err = encodeRow(bad, []Value{{Type: ColumnType(42)}})
	var ute *UnsupportedTypeError
	if !errorsAs(err, &ute) {
		t.Errorf("** got %v, wanted UnsupportedTypeError", err)
	}
}

func TestDecodeColumnErrors(t *testing.T) {
	tbl := mustTable(t, "t",
		&Column{Name: "a", Type: Integer},
		&Column{Name: "b", Type: VarChar},
	)
	_, value, err := encodeRow(tbl, []Value{IntValue(1), StringValue("b")})
	ensure(err)

	if _, err := decodeColumn(tbl, nil, value, 5); err == nil {
		t.Error("** out-of-range column index accepted")
	}
	var de *DataError
	if _, err := decodeColumn(tbl, nil, value[:3], 0); !errorsAs(err, &de) {
		t.Errorf("** got %v, wanted DataError", err)
	}
	truncated := value[:len(value)-1]
	if _, err := decodeColumn(tbl, nil, truncated, 1); !errorsAs(err, &de) {
		t.Errorf("** got %v, wanted DataError", err)
	}
}

func TestDecodeVarCharLongValue(t *testing.T) {
	long := strings.Repeat("x", 1000)
	tbl := mustTable(t, "t",
		&Column{Name: "v", Type: VarChar},
		&Column{Name: "w", Type: VarChar},
	)
	key, value, err := encodeRow(tbl, []Value{StringValue(long), StringValue("end")})
	ensure(err)
	v0 := must(decodeColumn(tbl, key, value, 0))
	v1 := must(decodeColumn(tbl, key, value, 1))
	deepEqual(t, v0.Str, long)
	deepEqual(t, v1.Str, "end")
}
