// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreumfun/draw/logdb"
	"github.com/coreumfun/draw/runtime"
)

const testLimit = 5

func initLogsServer(t *testing.T) *httptest.Server {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })

	for seq := uint64(1); seq <= 8; seq++ {
		inv := &logdb.Invocation{
			Seq:        seq,
			ID:         fmt.Sprintf("0x%02x", seq),
			Time:       100 * seq,
			Sender:     "core1alice",
			Kind:       "buy_ticket",
			Success:    true,
			Attributes: []logdb.Attribute{{Key: "action", Value: "buy_ticket"}},
		}
		if seq%2 == 0 {
			inv.Sender = "core1owner"
			inv.Kind = "update_draw_state"
			inv.Admin = true
		}
		if seq == 7 {
			inv.Success = false
			inv.Attributes = nil
			inv.Error = json.RawMessage(`{"error":"NotOpen","message":"ticket sales are closed"}`)
		}
		require.NoError(t, db.Write(inv))
	}

	router := mux.NewRouter()
	New(db, testLimit).Mount(router, "/logs")
	ts := httptest.NewServer(router)
	t.Cleanup(ts.Close)
	return ts
}

func httpPost(t *testing.T, url string, body any) ([]byte, int) {
	data, err := json.Marshal(body)
	require.NoError(t, err)
	res, err := http.Post(url, "application/json", bytes.NewReader(data)) //#nosec G107
	require.NoError(t, err)
	defer res.Body.Close()
	r, err := io.ReadAll(res.Body)
	require.NoError(t, err)
	return r, res.StatusCode
}

func u64(v uint64) *uint64 { return &v }

func receiptSeqs(t *testing.T, data []byte) []uint64 {
	var receipts []*runtime.Receipt
	require.NoError(t, json.Unmarshal(data, &receipts))
	out := make([]uint64, 0, len(receipts))
	for _, r := range receipts {
		out = append(out, r.Seq)
	}
	return out
}

func TestFilterInvocations(t *testing.T) {
	ts := initLogsServer(t)
	url := ts.URL + "/logs/invocations"
	failed := false

	tests := []struct {
		name   string
		filter InvocationFilter
		want   []uint64
	}{
		{"admin only", InvocationFilter{AdminOnly: true, Options: &Options{Limit: 5}}, []uint64{2, 4, 6, 8}},
		{"by kind desc", InvocationFilter{Kind: "buy_ticket", Order: logdb.DESC}, []uint64{7, 5, 3, 1}},
		{"by sender", InvocationFilter{Sender: "core1alice", Success: &failed}, []uint64{7}},
		{"seq range", InvocationFilter{Range: &Range{From: u64(3), To: u64(5)}}, []uint64{3, 4, 5}},
		{"open seq range", InvocationFilter{Range: &Range{From: u64(6)}}, []uint64{6, 7, 8}},
		{"time range", InvocationFilter{Range: &Range{Unit: logdb.Time, From: u64(150), To: u64(400)}}, []uint64{2, 3, 4}},
		{"paged", InvocationFilter{Options: &Options{Offset: 2, Limit: 2}}, []uint64{3, 4}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, code := httpPost(t, url, tt.filter)
			require.Equal(t, http.StatusOK, code, string(data))
			assert.Equal(t, tt.want, receiptSeqs(t, data))
		})
	}
}

func TestFilterRejected(t *testing.T) {
	ts := initLogsServer(t)
	url := ts.URL + "/logs/invocations"

	// 8 records, limit 5
	_, code := httpPost(t, url, InvocationFilter{})
	assert.Equal(t, http.StatusForbidden, code)
	_, code = httpPost(t, url, InvocationFilter{Options: &Options{Limit: testLimit + 1}})
	assert.Equal(t, http.StatusForbidden, code)
	_, code = httpPost(t, url, InvocationFilter{Range: &Range{From: u64(5), To: u64(4)}})
	assert.Equal(t, http.StatusBadRequest, code)
	_, code = httpPost(t, url, InvocationFilter{Range: &Range{Unit: "block"}})
	assert.Equal(t, http.StatusBadRequest, code)
	_, code = httpPost(t, url, InvocationFilter{Order: "random"})
	assert.Equal(t, http.StatusBadRequest, code)
	_, code = httpPost(t, url, map[string]any{"unknown": true})
	assert.Equal(t, http.StatusBadRequest, code)
}

func TestFilterReceiptContent(t *testing.T) {
	ts := initLogsServer(t)

	data, code := httpPost(t, ts.URL+"/logs/invocations", InvocationFilter{Range: &Range{From: u64(7), To: u64(7)}})
	require.Equal(t, http.StatusOK, code)
	var receipts []*runtime.Receipt
	require.NoError(t, json.Unmarshal(data, &receipts))
	require.Len(t, receipts, 1)
	assert.False(t, receipts[0].Success)
	assert.Equal(t, "NotOpen", string(receipts[0].ErrorKind()))
	assert.Empty(t, receipts[0].Attributes)
}
