// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package pebbledb

import (
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreumfun/draw/kv"
)

func TestPebbleDB(t *testing.T) {
	tests := []struct {
		name string
		open func(t *testing.T) (*PebbleDB, error)
	}{
		{"mem", func(*testing.T) (*PebbleDB, error) { return NewMem() }},
		{"disk", func(t *testing.T) (*PebbleDB, error) { return Open(filepath.Join(t.TempDir(), "pebble")) }},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			db, err := tc.open(t)
			require.NoError(t, err)
			defer db.Close()

			require.NoError(t, db.Put([]byte("k"), []byte("v")))
			val, err := db.Get([]byte("k"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v"), val)

			_, err = db.Get([]byte("missing"))
			assert.True(t, db.IsNotFound(err))

			has, err := db.Has([]byte("missing"))
			require.NoError(t, err)
			assert.False(t, has)

			require.NoError(t, db.Delete([]byte("k")))
			has, err = db.Has([]byte("k"))
			require.NoError(t, err)
			assert.False(t, has)
		})
	}
}

func TestPebbleDBBulkIterate(t *testing.T) {
	db, err := NewMem()
	require.NoError(t, err)
	defer db.Close()

	bulk := db.Bulk()
	for _, k := range []string{"p/3", "p/1", "q/1", "p/2"} {
		require.NoError(t, bulk.Put([]byte(k), []byte(k)))
	}
	require.NoError(t, bulk.Delete([]byte("p/3")))

	has, err := db.Has([]byte("p/1"))
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, bulk.Write())

	snap := db.Snapshot()
	defer snap.Release()
	require.NoError(t, db.Put([]byte("p/0"), nil))

	collect := func(it kv.Iterator) (keys []string) {
		defer it.Release()
		for it.Next() {
			keys = append(keys, string(it.Key()))
		}
		require.NoError(t, it.Error())
		return
	}

	assert.Equal(t, []string{"p/1", "p/2"}, collect(snap.Iterate(kv.PrefixRange([]byte("p/")))))
	assert.Equal(t, []string{"p/0", "p/1", "p/2"}, collect(db.Iterate(kv.PrefixRange([]byte("p/")))))
}
