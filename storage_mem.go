package relq

import (
	"fmt"
	"slices"
	"sort"
	"sync"
)

type memStorage struct {
	mu      sync.Mutex
	cond    *sync.Cond
	buckets map[string]*memBucket
	closed  bool
	writer  bool
}

// newMemStorage returns a transient in-memory storage implementation
// intended for tests.
func newMemStorage() storage {
	s := &memStorage{buckets: make(map[string]*memBucket)}
	s.cond = sync.NewCond(&s.mu)
	return s
}

func (s *memStorage) BeginTx(writable bool) (storageTx, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil, fmt.Errorf("storage closed")
	}
	if writable {
		for s.writer && !s.closed {
			s.cond.Wait()
		}
		if s.closed {
			return nil, fmt.Errorf("storage closed")
		}
		s.writer = true
	}

	// Snapshot the entire DB for transactional isolation (simplicity over
	// efficiency).
	snap := make(map[string]*memBucket, len(s.buckets))
	for k, b := range s.buckets {
		snap[k] = b.clone()
	}

	return &memTx{writable: writable, base: s, buckets: snap}, nil
}

func (s *memStorage) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.closed = true
	s.cond.Broadcast()
	return nil
}

type memTx struct {
	writable bool
	base     *memStorage
	buckets  map[string]*memBucket
	done     bool
}

func (tx *memTx) Bucket(name string) storageBucket {
	b := tx.buckets[name]
	if b == nil {
		return nil
	}
	return b
}

func (tx *memTx) CreateBucket(name string) (storageBucket, error) {
	if !tx.writable {
		return nil, fmt.Errorf("read-only transaction")
	}
	b := tx.buckets[name]
	if b == nil {
		b = &memBucket{data: make(map[string][]byte)}
		tx.buckets[name] = b
	}
	return b, nil
}

func (tx *memTx) Commit() error {
	if tx.done {
		return fmt.Errorf("transaction already finished")
	}
	tx.done = true
	tx.base.mu.Lock()
	defer tx.base.mu.Unlock()
	if tx.writable {
		tx.base.buckets = tx.buckets
		tx.base.writer = false
		tx.base.cond.Broadcast()
	}
	return nil
}

func (tx *memTx) Rollback() error {
	if tx.done {
		return nil
	}
	tx.done = true
	if tx.writable {
		tx.base.mu.Lock()
		tx.base.writer = false
		tx.base.cond.Broadcast()
		tx.base.mu.Unlock()
	}
	return nil
}

type memBucket struct {
	data map[string][]byte
	keys []string // sorted; rebuilt lazily after puts
	seq  uint64
}

func (b *memBucket) clone() *memBucket {
	data := make(map[string][]byte, len(b.data))
	for k, v := range b.data {
		data[k] = v
	}
	return &memBucket{data: data, keys: slices.Clone(b.keys), seq: b.seq}
}

func (b *memBucket) Get(key []byte) []byte {
	return b.data[string(key)]
}

func (b *memBucket) Put(key, value []byte) error {
	k := string(key)
	if _, ok := b.data[k]; !ok {
		b.keys = nil
	}
	b.data[k] = slices.Clone(value)
	return nil
}

func (b *memBucket) NextSequence() (uint64, error) {
	b.seq++
	return b.seq, nil
}

func (b *memBucket) sortedKeys() []string {
	if b.keys == nil {
		b.keys = make([]string, 0, len(b.data))
		for k := range b.data {
			b.keys = append(b.keys, k)
		}
		sort.Strings(b.keys)
	}
	return b.keys
}

func (b *memBucket) Cursor() storageCursor {
	return &memCursor{b: b, pos: -1}
}

func (b *memBucket) KeyCount() int {
	return len(b.data)
}

type memCursor struct {
	b   *memBucket
	pos int
}

func (c *memCursor) First() ([]byte, []byte) {
	c.pos = 0
	return c.current()
}

func (c *memCursor) Next() ([]byte, []byte) {
	c.pos++
	return c.current()
}

func (c *memCursor) current() ([]byte, []byte) {
	keys := c.b.sortedKeys()
	if c.pos < 0 || c.pos >= len(keys) {
		return nil, nil
	}
	k := keys[c.pos]
	return []byte(k), c.b.data[k]
}
