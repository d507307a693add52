package relq

import (
	"errors"
	"fmt"
)

var (
	// ErrNoTables is returned when a query references no tables at all.
	ErrNoTables = errors.New("query references no tables")

	// ErrNotPositioned is returned when a column value is requested from an
	// iterator that has not yet been positioned on a row.
	ErrNotPositioned = errors.New("iterator is not positioned on a row")

	// ErrClosed is returned when an iterator is used after Close.
	ErrClosed = errors.New("iterator has been closed")
)

// TableOpenError reports a table that could not be opened for a statement.
type TableOpenError struct {
	Table string
	Err   error
}

func (e *TableOpenError) Unwrap() error {
	return e.Err
}

func (e *TableOpenError) Error() string {
	if e.Err != nil {
		return fmt.Sprintf("cannot open table %s: %v", e.Table, e.Err)
	}
	return fmt.Sprintf("cannot open table %s", e.Table)
}

// UnknownColumnError reports a column reference that does not resolve against
// any table in the statement's from-list. Statement execution fails with this
// error before any row is visited.
type UnknownColumnError struct {
	Ref    *ColRef
	Clause string // "WHERE" or "select list"
}

func (e *UnknownColumnError) Error() string {
	return fmt.Sprintf("unknown column %s in %s", e.Ref, e.Clause)
}

// UnsupportedTypeError reports a column type the row codec does not recognize.
type UnsupportedTypeError struct {
	Type ColumnType
}

func (e *UnsupportedTypeError) Error() string {
	return fmt.Sprintf("unsupported column type %v", e.Type)
}

// TypeMismatchError reports an operation on two values whose types cannot be
// combined (numeric vs character), or a value that does not match the column
// it is being encoded into.
type TypeMismatchError struct {
	Left  ColumnType
	Right ColumnType
}

func (e *TypeMismatchError) Error() string {
	return fmt.Sprintf("type mismatch: %v vs %v", e.Left, e.Right)
}

// StorageError wraps a failure signaled by the underlying storage engine,
// including lock contention. The core never retries; the caller decides
// whether to rerun the whole statement.
type StorageError struct {
	Op  string
	Err error
}

func (e *StorageError) Unwrap() error {
	return e.Err
}

func (e *StorageError) Error() string {
	return fmt.Sprintf("storage: %s: %v", e.Op, e.Err)
}

func storageErrf(op string, err error) error {
	if err == nil {
		return nil
	}
	return &StorageError{Op: op, Err: err}
}

// DataError reports malformed stored bytes encountered while decoding a row.
type DataError struct {
	Data []byte
	Off  int
	Msg  string
}

func dataErrf(data []byte, off int, format string, args ...any) error {
	return &DataError{data, off, fmt.Sprintf(format, args...)}
}

func (e *DataError) Error() string {
	const maxDump = 64
	if n := len(e.Data); n <= maxDump {
		return fmt.Sprintf("%s: at %d in (%d) %x", e.Msg, e.Off, n, e.Data)
	} else {
		return fmt.Sprintf("%s: at %d in (%d) %x...", e.Msg, e.Off, n, e.Data[:maxDump])
	}
}
