package relq

import (
	"fmt"
	"strings"

	"github.com/vmihailenco/msgpack/v5"
)

// The catalog is a meta bucket holding one msgpack document per table.
// Table definitions are loaded once at open; CreateTable persists the new
// definition and creates the table's data bucket in the same transaction.

// TableDef is the external, serializable form of a table schema.
type TableDef struct {
	Name    string      `msgpack:"n"`
	Columns []ColumnDef `msgpack:"c"`
}

type ColumnDef struct {
	Name       string     `msgpack:"n"`
	Type       ColumnType `msgpack:"t"`
	Len        int        `msgpack:"l,omitempty"`
	PrimaryKey bool       `msgpack:"pk,omitempty"`
}

func (def *TableDef) resolve() (*Table, error) {
	cols := make([]*Column, len(def.Columns))
	for i, cd := range def.Columns {
		cols[i] = &Column{
			Name:       cd.Name,
			Type:       cd.Type,
			Len:        cd.Len,
			PrimaryKey: cd.PrimaryKey,
		}
	}
	return newTable(def.Name, cols)
}

// CreateTable validates the definition, persists it to the catalog and
// creates the table's data bucket.
func (db *DB) CreateTable(def TableDef) (*Table, error) {
	tbl, err := def.resolve()
	if err != nil {
		return nil, err
	}

	db.mu.Lock()
	defer db.mu.Unlock()
	key := strings.ToLower(def.Name)
	if db.tables[key] != nil {
		return nil, fmt.Errorf("table %s already exists", def.Name)
	}

	raw, err := msgpack.Marshal(&def)
	if err != nil {
		return nil, fmt.Errorf("catalog: encoding %s: %w", def.Name, err)
	}
	err = db.update(func(tx storageTx) error {
		cat, err := tx.CreateBucket(catalogBucket)
		if err != nil {
			return storageErrf("create catalog bucket", err)
		}
		if err := cat.Put([]byte(key), raw); err != nil {
			return storageErrf("put catalog entry", err)
		}
		if _, err := tx.CreateBucket(tableBucketName(key)); err != nil {
			return storageErrf("create table bucket", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	db.tables[key] = tbl
	return tbl, nil
}

// Table returns the schema of the named table, or nil if it doesn't exist.
func (db *DB) Table(name string) *Table {
	db.mu.Lock()
	defer db.mu.Unlock()
	return db.tables[strings.ToLower(name)]
}

func (db *DB) loadCatalog() error {
	return db.view(func(tx storageTx) error {
		cat := tx.Bucket(catalogBucket)
		if cat == nil {
			return nil // fresh database
		}
		cur := cat.Cursor()
		for k, v := cur.First(); k != nil; k, v = cur.Next() {
			var def TableDef
			if err := msgpack.Unmarshal(v, &def); err != nil {
				return fmt.Errorf("catalog: decoding %q: %w", k, err)
			}
			tbl, err := def.resolve()
			if err != nil {
				return fmt.Errorf("catalog: %q: %w", k, err)
			}
			db.tables[string(k)] = tbl
		}
		return nil
	})
}

// openTable is a per-statement handle pairing a table schema with its data
// bucket in the statement's transaction.
type openTable struct {
	tbl  *Table
	buck storageBucket
}

// openTableIn opens the named table within a transaction. A missing catalog
// entry or data bucket is a TableOpenError.
func (db *DB) openTableIn(tx storageTx, name string) (*openTable, error) {
	tbl := db.Table(name)
	if tbl == nil {
		return nil, &TableOpenError{Table: name}
	}
	buck := tx.Bucket(tableBucketName(strings.ToLower(name)))
	if buck == nil {
		return nil, &TableOpenError{Table: name, Err: ErrBucketNotFound}
	}
	return &openTable{tbl: tbl, buck: buck}, nil
}
