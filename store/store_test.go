// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package store

import (
	"testing"

	"github.com/holiman/uint256"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreumfun/draw/lvldb"
	"github.com/coreumfun/draw/state"
)

type strKey string

func (k strKey) Bytes() []byte { return []byte(k) }

type record struct {
	Name   string
	Amount *uint256.Int
	Flag   bool
}

func newTestContext(t *testing.T) (*Context, *lvldb.LevelDB) {
	db, err := lvldb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	return NewContext(state.New(db), "pool/"), db
}

func TestItem(t *testing.T) {
	ctx, db := newTestContext(t)

	item := NewItem[record](ctx, "config")
	_, err := item.Load()
	assert.ErrorIs(t, err, ErrNotFound)

	require.NoError(t, item.Save(record{Name: "draw", Amount: uint256.NewInt(200_000_000), Flag: true}))
	got, err := item.Load()
	require.NoError(t, err)
	assert.Equal(t, "draw", got.Name)
	assert.Equal(t, uint64(200_000_000), got.Amount.Uint64())
	assert.True(t, got.Flag)

	// nothing reaches the db before commit
	has, err := db.Has([]byte("pool/config"))
	require.NoError(t, err)
	assert.False(t, has)

	require.NoError(t, ctx.State().Stage().Commit(db.Bulk()))
	has, err = db.Has([]byte("pool/config"))
	require.NoError(t, err)
	assert.True(t, has)
}

func TestCounterAndUint256(t *testing.T) {
	ctx, _ := newTestContext(t)

	sold := NewCounter(ctx, "sold")
	v, err := sold.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)
	require.NoError(t, sold.Set(42))
	v, err = sold.Get()
	require.NoError(t, err)
	assert.Equal(t, uint64(42), v)

	bonus := NewUint256(ctx, "bonus")
	amt, err := bonus.Get()
	require.NoError(t, err)
	assert.True(t, amt.IsZero())

	big, _ := uint256.FromDecimal("340282366920938463463374607431768211455")
	require.NoError(t, bonus.Set(big))
	amt, err = bonus.Get()
	require.NoError(t, err)
	assert.Equal(t, big.Dec(), amt.Dec())
}

func TestMappingRangeOrder(t *testing.T) {
	ctx, _ := newTestContext(t)

	m := NewMapping[strKey, uint64](ctx, "holders")
	other := NewMapping[strKey, uint64](ctx, "holdersx")
	require.NoError(t, other.Set("zzz", 1))

	for i, k := range []strKey{"core1c", "core1a", "core1b"} {
		require.NoError(t, m.Set(k, uint64(i+1)))
	}
	m.Delete("core1b")

	v, err := m.Get("core1a")
	require.NoError(t, err)
	assert.Equal(t, uint64(2), v)

	v, err = m.Get("nobody")
	require.NoError(t, err)
	assert.Equal(t, uint64(0), v)

	var keys []string
	var values []uint64
	require.NoError(t, m.Range(func(k []byte, v uint64) (bool, error) {
		keys = append(keys, string(k))
		values = append(values, v)
		return true, nil
	}))
	assert.Equal(t, []string{"core1a", "core1c"}, keys)
	assert.Equal(t, []uint64{2, 1}, values)
}

func TestMappingRevert(t *testing.T) {
	ctx, _ := newTestContext(t)
	m := NewMapping[strKey, *uint256.Int](ctx, "claims")

	require.NoError(t, m.Set("a", uint256.NewInt(5)))
	rev := ctx.State().NewCheckpoint()
	require.NoError(t, m.Set("a", uint256.NewInt(9)))
	ctx.State().RevertTo(rev)

	v, err := m.Get("a")
	require.NoError(t, err)
	assert.Equal(t, uint64(5), v.Uint64())

	v, err = m.Get("b")
	require.NoError(t, err)
	assert.NotNil(t, v)
	assert.True(t, v.IsZero())
}
