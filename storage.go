package relq

import "errors"

// ErrBucketNotFound is returned when a table's bucket doesn't exist.
var ErrBucketNotFound = errors.New("bucket not found")

// storage represents an ordered key-value storage backend (Bolt, in-memory).
// The query core only requires that a bucket's cursor exposes a stable
// iteration order across repeated First/Next walks within one transaction.
type storage interface {
	// BeginTx starts a new transaction.
	BeginTx(writable bool) (storageTx, error)
	// Close closes the storage.
	Close() error
}

// storageTx represents a storage transaction. One statement runs inside one
// transaction; all cursors opened during the statement belong to it.
type storageTx interface {
	// Bucket returns a named bucket, or nil if it doesn't exist.
	Bucket(name string) storageBucket

	// CreateBucket creates a bucket if it doesn't exist.
	CreateBucket(name string) (storageBucket, error)

	// Commit commits the transaction.
	Commit() error

	// Rollback aborts the transaction. It is safe to call after Commit.
	Rollback() error
}

// storageBucket represents a bucket (sorted key-value collection).
type storageBucket interface {
	// Get retrieves a value by key. Returns nil if not found.
	Get(key []byte) []byte

	// Put stores a key-value pair.
	Put(key, value []byte) error

	// NextSequence returns an autoincremented per-bucket counter, used to
	// assign row ids to tables without a primary key.
	NextSequence() (uint64, error)

	// Cursor returns a cursor positioned before the first pair.
	Cursor() storageCursor

	// KeyCount returns the number of keys in the bucket (best effort).
	KeyCount() int
}

// storageCursor iterates over a sorted bucket.
type storageCursor interface {
	// First moves to the first key-value pair. Returns nil, nil if empty.
	First() (key, value []byte)

	// Next moves to the next key-value pair. Returns nil, nil at the end.
	Next() (key, value []byte)
}
