// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package kv

import (
	"sync"
)

// Bucket provides a logical namespace inside a kv store by prefixing keys.
type Bucket string

// Key returns the full key of k in the bucket. The returned slice is newly allocated.
func (b Bucket) Key(k []byte) []byte {
	return append(append(make([]byte, 0, len(b)+len(k)), b...), k...)
}

// withKey calls fn with the prefixed key held in a pooled buffer.
func (b Bucket) withKey(k []byte, fn func(full []byte)) {
	buf := bufPool.Get().(*buf)
	defer bufPool.Put(buf)
	buf.k = append(append(buf.k[:0], b...), k...)
	fn(buf.k)
}

// NewGetter creates a bucket getter from the source getter.
func (b Bucket) NewGetter(src Getter) Getter {
	return &struct {
		GetFunc
		HasFunc
		IsNotFoundFunc
	}{
		func(key []byte) (val []byte, err error) {
			b.withKey(key, func(full []byte) { val, err = src.Get(full) })
			return
		},
		func(key []byte) (has bool, err error) {
			b.withKey(key, func(full []byte) { has, err = src.Has(full) })
			return
		},
		src.IsNotFound,
	}
}

// NewPutter creates a bucket putter from the source putter.
func (b Bucket) NewPutter(src Putter) Putter {
	return &struct {
		PutFunc
		DeleteFunc
	}{
		func(key, val []byte) (err error) {
			b.withKey(key, func(full []byte) { err = src.Put(full, val) })
			return
		},
		func(key []byte) (err error) {
			b.withKey(key, func(full []byte) { err = src.Delete(full) })
			return
		},
	}
}

// NewIterate wraps the iterate function of the source so that ranges are
// relative to the bucket and returned keys have the prefix stripped.
func (b Bucket) NewIterate(src func(Range) Iterator) IterateFunc {
	return func(r Range) Iterator {
		r.Start = b.Key(r.Start)
		if len(r.Limit) == 0 {
			r.Limit = PrefixRange([]byte(b)).Limit
		} else {
			r.Limit = b.Key(r.Limit)
		}
		iter := src(r)
		return &struct {
			FirstFunc
			LastFunc
			NextFunc
			PrevFunc
			KeyFunc
			ValueFunc
			ReleaseFunc
			ErrorFunc
		}{
			iter.First,
			iter.Last,
			iter.Next,
			iter.Prev,
			// strip the bucket
			func() []byte { return iter.Key()[len(b):] },
			iter.Value,
			iter.Release,
			iter.Error,
		}
	}
}

// NewStore creates a bucket store from the source store.
func (b Bucket) NewStore(src Store) Store {
	return &struct {
		Getter
		Putter
		SnapshotFunc
		BulkFunc
		IterateFunc
	}{
		b.NewGetter(src),
		b.NewPutter(src),
		func() Snapshot {
			snapshot := src.Snapshot()
			return &struct {
				Getter
				IterateFunc
				ReleaseFunc
			}{
				b.NewGetter(snapshot),
				b.NewIterate(snapshot.Iterate),
				snapshot.Release,
			}
		},
		func() Bulk {
			bulk := src.Bulk()
			return &struct {
				Putter
				EnableAutoFlushFunc
				WriteFunc
			}{
				b.NewPutter(bulk),
				bulk.EnableAutoFlush,
				bulk.Write,
			}
		},
		b.NewIterate(src.Iterate),
	}
}

type buf struct {
	k []byte
}

var bufPool = sync.Pool{
	New: func() any {
		return &buf{}
	},
}
