package relq

import (
	"fmt"
	"log/slog"
	"sync"
	"time"

	"go.etcd.io/bbolt"
)

const (
	catalogBucket   = "sys:catalog"
	tableBucketPref = "tbl:"
)

// DB is a minimal relational database: a schema catalog plus the query
// execution core, layered over an ordered key-value store.
type DB struct {
	store  storage
	logger *slog.Logger

	mu     sync.Mutex
	tables map[string]*Table
}

type Options struct {
	Logger    *slog.Logger
	IsTesting bool
	MmapSize  int
}

// Open opens or creates a database file backed by Bolt.
func Open(path string, opt Options) (*DB, error) {
	bopt := &bbolt.Options{}
	*bopt = *bbolt.DefaultOptions
	bopt.Timeout = 10 * time.Second
	if opt.IsTesting {
		bopt.NoSync = true
		bopt.NoFreelistSync = true
		bopt.InitialMmapSize = 1024 * 1024 * 5
	} else {
		bopt.InitialMmapSize = 1024 * 1024 * 1024
		bopt.FreelistType = bbolt.FreelistMapType
	}
	if opt.MmapSize != 0 {
		bopt.InitialMmapSize = opt.MmapSize
	}

	bdb, err := bbolt.Open(path, 0666, bopt)
	if err != nil {
		return nil, fmt.Errorf("relq: %w", err)
	}
	return openStorage(newBoltStorage(bdb), opt)
}

// OpenMem opens a transient in-memory database, mainly useful for tests.
func OpenMem(opt Options) (*DB, error) {
	return openStorage(newMemStorage(), opt)
}

func openStorage(store storage, opt Options) (*DB, error) {
	logger := opt.Logger
	if logger == nil {
		logger = slog.Default()
	}
	db := &DB{
		store:  store,
		logger: logger,
		tables: make(map[string]*Table),
	}
	if err := db.loadCatalog(); err != nil {
		store.Close()
		return nil, err
	}
	return db, nil
}

func (db *DB) Close() error {
	return db.store.Close()
}

// view runs f inside a read-only storage transaction.
func (db *DB) view(f func(tx storageTx) error) error {
	tx, err := db.store.BeginTx(false)
	if err != nil {
		return storageErrf("begin", err)
	}
	defer tx.Rollback()
	return f(tx)
}

// update runs f inside a writable storage transaction, committing on success.
func (db *DB) update(f func(tx storageTx) error) error {
	tx, err := db.store.BeginTx(true)
	if err != nil {
		return storageErrf("begin", err)
	}
	defer tx.Rollback()
	if err := f(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return storageErrf("commit", err)
	}
	return nil
}

func tableBucketName(table string) string {
	return tableBucketPref + table
}
