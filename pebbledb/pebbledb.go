// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

// Package pebbledb provides a kv.Engine backed by cockroachdb/pebble.
package pebbledb

import (
	"fmt"

	"github.com/cockroachdb/pebble"
	"github.com/cockroachdb/pebble/vfs"
	"github.com/pkg/errors"

	"github.com/coreumfun/draw/kv"
	"github.com/coreumfun/draw/log"
)

var _ kv.Engine = (*PebbleDB)(nil)

var logger = log.WithContext("pkg", "pebbledb")

// errorOnlyLogger keeps pebble quiet except for errors.
type errorOnlyLogger struct{}

func (errorOnlyLogger) Infof(string, ...any) {}
func (errorOnlyLogger) Errorf(format string, args ...any) {
	logger.Error(fmt.Sprintf(format, args...))
}
func (errorOnlyLogger) Fatalf(format string, args ...any) {
	logger.Crit(fmt.Sprintf(format, args...))
}

// PebbleDB wraps a pebble database.
type PebbleDB struct {
	db *pebble.DB
}

func defaultOptions() *pebble.Options {
	return &pebble.Options{
		L0CompactionThreshold:       4,
		L0StopWritesThreshold:       12,
		MaxOpenFiles:                1000,
		MemTableSize:                32 << 20,
		MemTableStopWritesThreshold: 4,
		Logger:                      errorOnlyLogger{},
	}
}

// Open opens or creates the pebble database at path.
func Open(path string) (*PebbleDB, error) {
	db, err := pebble.Open(path, defaultOptions())
	if err != nil {
		return nil, errors.Wrap(err, "open pebble db")
	}
	return &PebbleDB{db}, nil
}

// NewMem creates a pebble database on an in-memory file system.
func NewMem() (*PebbleDB, error) {
	opts := defaultOptions()
	opts.FS = vfs.NewMem()
	db, err := pebble.Open("", opts)
	if err != nil {
		return nil, errors.Wrap(err, "open mem pebble db")
	}
	return &PebbleDB{db}, nil
}

func (p *PebbleDB) Close() error {
	return p.db.Close()
}

func (p *PebbleDB) IsNotFound(err error) bool {
	return errors.Is(err, pebble.ErrNotFound)
}

func (p *PebbleDB) Get(key []byte) ([]byte, error) {
	val, closer, err := p.db.Get(key)
	if err != nil {
		return nil, err
	}
	defer closer.Close()
	return append([]byte(nil), val...), nil
}

func (p *PebbleDB) Has(key []byte) (bool, error) {
	_, err := p.Get(key)
	if err != nil {
		if p.IsNotFound(err) {
			return false, nil
		}
		return false, err
	}
	return true, nil
}

func (p *PebbleDB) Put(key, val []byte) error {
	return p.db.Set(key, val, pebble.Sync)
}

func (p *PebbleDB) Delete(key []byte) error {
	return p.db.Delete(key, pebble.Sync)
}

func (p *PebbleDB) Snapshot() kv.Snapshot {
	snap := p.db.NewSnapshot()
	getFn := func(key []byte) ([]byte, error) {
		val, closer, err := snap.Get(key)
		if err != nil {
			return nil, err
		}
		defer closer.Close()
		return append([]byte(nil), val...), nil
	}
	return &struct {
		kv.GetFunc
		kv.HasFunc
		kv.IsNotFoundFunc
		kv.IterateFunc
		kv.ReleaseFunc
	}{
		getFn,
		func(key []byte) (bool, error) {
			if _, err := getFn(key); err != nil {
				if p.IsNotFound(err) {
					return false, nil
				}
				return false, err
			}
			return true, nil
		},
		p.IsNotFound,
		func(r kv.Range) kv.Iterator {
			it, err := snap.NewIter(iterOptions(r))
			return newIterator(it, err)
		},
		func() { snap.Close() },
	}
}

func (p *PebbleDB) Bulk() kv.Bulk {
	const idealBatchSize = 128 * 1024
	var batch *pebble.Batch

	getBatch := func() *pebble.Batch {
		if batch == nil {
			batch = p.db.NewBatch()
		}
		return batch
	}
	flush := func(minSize int) error {
		if batch != nil && batch.Len() >= minSize {
			defer func() {
				batch.Close()
				batch = nil
			}()
			if !batch.Empty() {
				return batch.Commit(pebble.Sync)
			}
		}
		return nil
	}
	var autoFlush bool

	return &struct {
		kv.PutFunc
		kv.DeleteFunc
		kv.EnableAutoFlushFunc
		kv.WriteFunc
	}{
		func(key, val []byte) error {
			if err := getBatch().Set(key, val, nil); err != nil {
				return err
			}
			if autoFlush {
				return flush(idealBatchSize)
			}
			return nil
		},
		func(key []byte) error {
			if err := getBatch().Delete(key, nil); err != nil {
				return err
			}
			if autoFlush {
				return flush(idealBatchSize)
			}
			return nil
		},
		func() { autoFlush = true },
		func() error { return flush(0) },
	}
}

func (p *PebbleDB) Iterate(r kv.Range) kv.Iterator {
	it, err := p.db.NewIter(iterOptions(r))
	return newIterator(it, err)
}

func iterOptions(r kv.Range) *pebble.IterOptions {
	opts := &pebble.IterOptions{LowerBound: r.Start}
	if len(r.Limit) > 0 {
		opts.UpperBound = r.Limit
	}
	return opts
}

// iterator adapts pebble's iterator to the leveldb style, where the first
// Next on a fresh iterator lands on the first key.
type iterator struct {
	it      *pebble.Iterator
	err     error
	started bool
}

func newIterator(it *pebble.Iterator, err error) *iterator {
	return &iterator{it: it, err: err}
}

func (i *iterator) First() bool {
	if i.it == nil {
		return false
	}
	i.started = true
	return i.it.First()
}

func (i *iterator) Last() bool {
	if i.it == nil {
		return false
	}
	i.started = true
	return i.it.Last()
}

func (i *iterator) Next() bool {
	if !i.started {
		return i.First()
	}
	if i.it == nil {
		return false
	}
	return i.it.Next()
}

func (i *iterator) Prev() bool {
	if !i.started {
		return i.Last()
	}
	if i.it == nil {
		return false
	}
	return i.it.Prev()
}

func (i *iterator) Key() []byte {
	if i.it == nil || !i.it.Valid() {
		return nil
	}
	return i.it.Key()
}

func (i *iterator) Value() []byte {
	if i.it == nil || !i.it.Valid() {
		return nil
	}
	return i.it.Value()
}

func (i *iterator) Release() {
	if i.it != nil {
		if err := i.it.Close(); err != nil && i.err == nil {
			i.err = err
		}
		i.it = nil
	}
}

func (i *iterator) Error() error {
	if i.err != nil {
		return i.err
	}
	if i.it != nil {
		return i.it.Error()
	}
	return nil
}
