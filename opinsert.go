package relq

import (
	"encoding/binary"
	"strings"
)

// Insert marshals a row of values and stores it in the named table. For a
// table with a primary key the encoded key is the key column alone; an
// existing row under the same key is overwritten. Tables without a primary
// key get an 8-byte big-endian row id from the bucket's sequence, which is
// storage plumbing only: the row codec's key buffer stays empty for them.
func (db *DB) Insert(table string, vals []Value) error {
	tbl := db.Table(table)
	if tbl == nil {
		return &TableOpenError{Table: table}
	}
	key, value, err := encodeRow(tbl, vals)
	if err != nil {
		return err
	}
	return db.update(func(tx storageTx) error {
		buck := tx.Bucket(tableBucketName(strings.ToLower(table)))
		if buck == nil {
			return &TableOpenError{Table: table, Err: ErrBucketNotFound}
		}
		if key == nil {
			seq, err := buck.NextSequence()
			if err != nil {
				return storageErrf("next sequence", err)
			}
			key = binary.BigEndian.AppendUint64(nil, seq)
		}
		if err := buck.Put(key, value); err != nil {
			return storageErrf("put", err)
		}
		return nil
	})
}
