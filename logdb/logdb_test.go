// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb_test

import (
	"context"
	"encoding/json"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreumfun/draw/logdb"
)

func newInvocation(seq uint64) *logdb.Invocation {
	kinds := []string{"buy_ticket", "burn_tickets", "update_draw_state"}
	inv := &logdb.Invocation{
		Seq:     seq,
		ID:      fmt.Sprintf("0x%064x", seq),
		Time:    1_000 + seq*10,
		Sender:  fmt.Sprintf("core1user%d", seq%3),
		Kind:    kinds[seq%3],
		Admin:   seq%3 == 2,
		Success: seq%4 != 0,
		Funds:   json.RawMessage(`[{"denom":"ucore","amount":"10"}]`),
		Attributes: []logdb.Attribute{
			{Key: "action", Value: kinds[seq%3]},
			{Key: "seq", Value: fmt.Sprint(seq)},
		},
	}
	if !inv.Success {
		inv.Error = json.RawMessage(`{"error":"NotOpen","message":"ticket sales are closed"}`)
		inv.Attributes = nil
	}
	return inv
}

func newTestDB(t *testing.T) *logdb.LogDB {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	for seq := uint64(1); seq <= 12; seq++ {
		require.NoError(t, db.Write(newInvocation(seq)))
	}
	return db
}

func seqs(invs []*logdb.Invocation) []uint64 {
	out := make([]uint64, 0, len(invs))
	for _, inv := range invs {
		out = append(out, inv.Seq)
	}
	return out
}

func TestWriteAndRead(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()

	newest, err := db.NewestSeq(ctx)
	require.NoError(t, err)
	assert.Equal(t, uint64(12), newest)

	got, err := db.InvocationByID(ctx, newInvocation(5).ID)
	require.NoError(t, err)
	want := newInvocation(5)
	assert.Equal(t, want.Sender, got.Sender)
	assert.Equal(t, want.Kind, got.Kind)
	assert.Equal(t, want.Attributes, got.Attributes)
	assert.JSONEq(t, string(want.Funds), string(got.Funds))
	assert.Nil(t, got.Messages)

	rejected, err := db.InvocationByID(ctx, newInvocation(8).ID)
	require.NoError(t, err)
	assert.False(t, rejected.Success)
	assert.Empty(t, rejected.Attributes)
	assert.JSONEq(t, string(newInvocation(8).Error), string(rejected.Error))

	missing, err := db.InvocationByID(ctx, "0xnone")
	require.NoError(t, err)
	assert.Nil(t, missing)

	// ids are unique
	assert.Error(t, db.Write(newInvocation(5)))
}

func TestFilterInvocations(t *testing.T) {
	db := newTestDB(t)
	ctx := context.Background()
	yes, no := true, false

	tests := []struct {
		name   string
		filter *logdb.InvocationFilter
		want   []uint64
	}{
		{"nil filter", nil, []uint64{1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11, 12}},
		{"seq range", &logdb.InvocationFilter{Range: &logdb.Range{Unit: logdb.Seq, From: 3, To: 5}}, []uint64{3, 4, 5}},
		{"open range", &logdb.InvocationFilter{Range: &logdb.Range{Unit: logdb.Seq, From: 11}}, []uint64{11, 12}},
		{"time range", &logdb.InvocationFilter{Range: &logdb.Range{Unit: logdb.Time, From: 1_020, To: 1_040}}, []uint64{2, 3, 4}},
		{"kind", &logdb.InvocationFilter{Kind: "buy_ticket"}, []uint64{3, 6, 9, 12}},
		{"sender", &logdb.InvocationFilter{Sender: "core1user1"}, []uint64{1, 4, 7, 10}},
		{"admin", &logdb.InvocationFilter{AdminOnly: true}, []uint64{2, 5, 8, 11}},
		{"failed", &logdb.InvocationFilter{Success: &no}, []uint64{4, 8, 12}},
		{"succeeded admin", &logdb.InvocationFilter{Success: &yes, AdminOnly: true}, []uint64{2, 5, 11}},
		{"desc paged", &logdb.InvocationFilter{Order: logdb.DESC, Options: &logdb.Options{Offset: 1, Limit: 3}}, []uint64{11, 10, 9}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			invs, err := db.FilterInvocations(ctx, tt.filter)
			require.NoError(t, err)
			assert.Equal(t, tt.want, seqs(invs))
		})
	}
}

func TestPersistent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "logs.db")
	db, err := logdb.New(path)
	require.NoError(t, err)
	require.NoError(t, db.Write(newInvocation(1)))
	require.NoError(t, db.Close())

	db, err = logdb.New(path)
	require.NoError(t, err)
	defer db.Close()
	assert.Equal(t, path, db.Path())
	newest, err := db.NewestSeq(context.Background())
	require.NoError(t, err)
	assert.Equal(t, uint64(1), newest)
}
