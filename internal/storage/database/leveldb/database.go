// Package leveldb adapts syndtr/goleveldb to the generic database.DB
// interface, the same shape database/pebble wraps, so contractstore
// can select either backend at runtime via config.
package leveldb

import (
	"bytes"
	"context"
	"fmt"

	"github.com/syndtr/goleveldb/leveldb"
	"github.com/syndtr/goleveldb/leveldb/errors"
	"github.com/syndtr/goleveldb/leveldb/iterator"
	"github.com/syndtr/goleveldb/leveldb/util"

	"github.com/strmfi/vestd/internal/storage/database"
)

type DB struct {
	db *leveldb.DB
}

// Open opens (creating if absent) a leveldb database at path.
func Open(path string) (*DB, error) {
	db, err := leveldb.OpenFile(path, nil)
	if err != nil {
		return nil, fmt.Errorf("leveldb: opening %s: %w", path, err)
	}
	return &DB{db: db}, nil
}

func NewDB(db *leveldb.DB) *DB {
	return &DB{db: db}
}

func (d *DB) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}

func (d *DB) Read(ctx context.Context, key []byte) ([]byte, error) {
	if d.db == nil {
		return nil, database.ErrDBClosed
	}
	val, err := d.db.Get(key, nil)
	if err != nil {
		if err == errors.ErrNotFound {
			return nil, database.ErrKeyNotFound
		}
		return nil, err
	}
	return val, nil
}

func (d *DB) Write(ctx context.Context, key, value []byte) error {
	if d.db == nil {
		return database.ErrDBClosed
	}
	return d.db.Put(key, value, nil)
}

func (d *DB) Delete(ctx context.Context, key []byte) error {
	if d.db == nil {
		return database.ErrDBClosed
	}
	return d.db.Delete(key, nil)
}

func (d *DB) Batch(ctx context.Context, ops []database.BatchOperation) error {
	if d.db == nil {
		return database.ErrDBClosed
	}

	batch := new(leveldb.Batch)
	for _, op := range ops {
		switch op.Type {
		case database.BatchPut:
			batch.Put(op.Key, op.Value)
		case database.BatchDelete:
			batch.Delete(op.Key)
		default:
			return fmt.Errorf("leveldb: unknown batch operation type: %d", op.Type)
		}
	}
	return d.db.Write(batch, nil)
}

func (d *DB) Iterator(ctx context.Context, start, end []byte) (database.Iterator, error) {
	if d.db == nil {
		return nil, database.ErrDBClosed
	}
	rng := &util.Range{Start: start, Limit: end}
	return &Iterator{iter: d.db.NewIterator(rng, nil), end: end, started: false}, nil
}

type Iterator struct {
	iter    iterator.Iterator
	end     []byte
	started bool
}

func (it *Iterator) Next() bool {
	var ok bool
	if !it.started {
		it.started = true
		ok = it.iter.First()
	} else {
		ok = it.iter.Next()
	}
	if !ok {
		return false
	}
	if it.end != nil && bytes.Compare(it.iter.Key(), it.end) >= 0 {
		return false
	}
	return true
}

func (it *Iterator) Key() []byte {
	out := make([]byte, len(it.iter.Key()))
	copy(out, it.iter.Key())
	return out
}

func (it *Iterator) Value() []byte {
	out := make([]byte, len(it.iter.Value()))
	copy(out, it.iter.Value())
	return out
}

func (it *Iterator) Error() error {
	return it.iter.Error()
}

func (it *Iterator) Close() error {
	it.iter.Release()
	return nil
}
