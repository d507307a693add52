package relq

import (
	"encoding/binary"
	"fmt"
	"math"
)

// Row codec.
//
// A row maps to one key/value pair in the table's bucket:
//
//	key   = encoded primary key column (empty if the table has no primary key)
//	value = offset header, then the remaining columns in schema order
//
// The offset header is (C+1) two-byte big-endian unsigned integers, where C
// is the number of columns stored in the value buffer. offset[0] is the
// header size 2*(C+1); offset[i+1] = offset[i] + width(column i). Column i's
// bytes are value[offset[i]:offset[i+1]], so any column can be sliced out
// without decoding the ones before it.
//
// Per-type encodings: Integer is a 4-byte big-endian signed integer; Real is
// an 8-byte big-endian IEEE-754 double; FixedChar is exactly Len raw bytes,
// zero-padded; VarChar is raw bytes (the offset header recovers the length),
// except inside a key, where it carries a 2-byte big-endian length prefix.

const maxEncodedLen = math.MaxUint16

// encodeRow marshals a row of values into a key/value pair per the format
// above. The returned key is nil for tables without a primary key.
func encodeRow(tbl *Table, vals []Value) (key, value []byte, err error) {
	if len(vals) != len(tbl.cols) {
		return nil, nil, fmt.Errorf("%s: row has %d values, schema has %d columns", tbl.name, len(vals), len(tbl.cols))
	}
	for i, col := range tbl.cols {
		if !vals[i].matchesColumn(col) {
			return nil, nil, &TypeMismatchError{Left: col.Type, Right: vals[i].Type}
		}
		if col.Type == FixedChar && len(vals[i].Str) > col.Len {
			return nil, nil, fmt.Errorf("%s.%s: value is %d bytes, CHAR(%d)", tbl.name, col.Name, len(vals[i].Str), col.Len)
		}
	}

	if pk := tbl.pk; pk != nil {
		key, err = appendKeyValue(nil, pk, vals[pk.Index])
		if err != nil {
			return nil, nil, err
		}
	}

	c := tbl.valueColumnCount()
	offs := make([]int, c+1)
	offs[0] = 2 * (c + 1)
	slot := 0
	for i, col := range tbl.cols {
		if col.PrimaryKey {
			continue
		}
		offs[slot+1] = offs[slot] + col.width(vals[i])
		slot++
	}
	total := offs[c]
	if total > maxEncodedLen {
		return nil, nil, fmt.Errorf("%s: encoded row is %d bytes, offsets are limited to %d", tbl.name, total, maxEncodedLen)
	}

	value = make([]byte, 0, total)
	for _, off := range offs {
		value = binary.BigEndian.AppendUint16(value, uint16(off))
	}
	for i, col := range tbl.cols {
		if col.PrimaryKey {
			continue
		}
		value, err = appendColumnValue(value, col, vals[i])
		if err != nil {
			return nil, nil, err
		}
	}
	return key, value, nil
}

// appendKeyValue encodes a primary key value. Unlike the value buffer there
// is no offset header, so VarChar gets an explicit 2-byte length prefix.
func appendKeyValue(buf []byte, col *Column, v Value) ([]byte, error) {
	if col.Type == VarChar {
		if len(v.Str) > maxEncodedLen {
			return nil, fmt.Errorf("%s: key value is %d bytes, limit is %d", col.Name, len(v.Str), maxEncodedLen)
		}
		buf = binary.BigEndian.AppendUint16(buf, uint16(len(v.Str)))
		return append(buf, v.Str...), nil
	}
	return appendColumnValue(buf, col, v)
}

func appendColumnValue(buf []byte, col *Column, v Value) ([]byte, error) {
	switch col.Type {
	case Integer:
		return binary.BigEndian.AppendUint32(buf, uint32(v.Int)), nil
	case Real:
		return binary.BigEndian.AppendUint64(buf, math.Float64bits(v.Real)), nil
	case FixedChar:
		buf = append(buf, v.Str...)
		for i := len(v.Str); i < col.Len; i++ {
			buf = append(buf, 0)
		}
		return buf, nil
	case VarChar:
		return append(buf, v.Str...), nil
	default:
		return nil, &UnsupportedTypeError{Type: col.Type}
	}
}

// decodeColumn unmarshals the single column at the given schema index from a
// stored key/value pair. It never mutates the buffers, and columns may be
// decoded independently and in any order.
func decodeColumn(tbl *Table, key, value []byte, colIndex int) (Value, error) {
	if colIndex < 0 || colIndex >= len(tbl.cols) {
		return Value{}, fmt.Errorf("%s: column index %d out of range [0,%d)", tbl.name, colIndex, len(tbl.cols))
	}
	col := tbl.cols[colIndex]

	if col.PrimaryKey {
		return decodeKeyValue(col, key)
	}

	// The primary key column is omitted from the value buffer, shifting the
	// slots of every column past its schema position down by one.
	slot := colIndex
	if tbl.pk != nil && colIndex > tbl.pk.Index {
		slot = colIndex - 1
	}

	c := tbl.valueColumnCount()
	headerLen := 2 * (c + 1)
	if len(value) < headerLen {
		return Value{}, dataErrf(value, 0, "%s: value buffer shorter than its %d-byte offset header", tbl.name, headerLen)
	}
	start := int(binary.BigEndian.Uint16(value[2*slot:]))
	end := int(binary.BigEndian.Uint16(value[2*slot+2:]))
	if start < headerLen || end < start || end > len(value) {
		return Value{}, dataErrf(value, 2*slot, "%s.%s: bad offsets [%d,%d)", tbl.name, col.Name, start, end)
	}
	return decodeColumnValue(col, value[start:end])
}

// decodeKeyValue decodes a primary key column directly from the key buffer.
func decodeKeyValue(col *Column, key []byte) (Value, error) {
	switch col.Type {
	case VarChar:
		if len(key) < 2 {
			return Value{}, dataErrf(key, 0, "%s: key buffer shorter than its length prefix", col.Name)
		}
		n := int(binary.BigEndian.Uint16(key))
		if len(key) < 2+n {
			return Value{}, dataErrf(key, 2, "%s: key buffer shorter than prefixed length %d", col.Name, n)
		}
		return Value{Type: VarChar, Str: string(key[2 : 2+n])}, nil
	default:
		return decodeColumnValue(col, key)
	}
}

func decodeColumnValue(col *Column, b []byte) (Value, error) {
	switch col.Type {
	case Integer:
		if len(b) < 4 {
			return Value{}, dataErrf(b, 0, "%s: INTEGER needs 4 bytes, have %d", col.Name, len(b))
		}
		return Value{Type: Integer, Int: int32(binary.BigEndian.Uint32(b))}, nil
	case Real:
		if len(b) < 8 {
			return Value{}, dataErrf(b, 0, "%s: REAL needs 8 bytes, have %d", col.Name, len(b))
		}
		return Value{Type: Real, Real: math.Float64frombits(binary.BigEndian.Uint64(b))}, nil
	case FixedChar:
		end := len(b)
		for end > 0 && b[end-1] == 0 {
			end--
		}
		return Value{Type: FixedChar, Str: string(b[:end])}, nil
	case VarChar:
		return Value{Type: VarChar, Str: string(b)}, nil
	default:
		return Value{}, &UnsupportedTypeError{Type: col.Type}
	}
}
