// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package subscriptions

import (
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreumfun/draw/co"
	"github.com/coreumfun/draw/logdb"
	"github.com/coreumfun/draw/runtime"
)

type testSource struct {
	seq    atomic.Uint64
	signal co.Signal
}

func (s *testSource) Seq() uint64          { return s.seq.Load() }
func (s *testSource) NewWaiter() co.Waiter { return s.signal.NewWaiter() }

func (s *testSource) advance(seq uint64) {
	s.seq.Store(seq)
	s.signal.Broadcast()
}

func testInvocation(seq uint64) *logdb.Invocation {
	kind := "buy_ticket"
	if seq%2 == 0 {
		kind = "burn_tickets"
	}
	return &logdb.Invocation{
		Seq:        seq,
		ID:         fmt.Sprintf("0x%02x", seq),
		Time:       1000 + seq,
		Sender:     "core1alice",
		Kind:       kind,
		Success:    true,
		Attributes: []logdb.Attribute{{Key: "action", Value: kind}},
	}
}

type testEnv struct {
	db     *logdb.LogDB
	source *testSource
	subs   *Subscriptions
	ts     *httptest.Server
}

func initSubscriptionsServer(t *testing.T, written uint64, backtrace uint64) *testEnv {
	db, err := logdb.NewMem()
	require.NoError(t, err)
	source := &testSource{}
	for seq := uint64(1); seq <= written; seq++ {
		require.NoError(t, db.Write(testInvocation(seq)))
	}
	source.seq.Store(written)

	subs, err := New(source, db, []string{"*"}, backtrace)
	require.NoError(t, err)
	router := mux.NewRouter()
	subs.Mount(router, "/subscriptions")
	ts := httptest.NewServer(router)
	t.Cleanup(func() {
		ts.Close()
		db.Close()
	})
	return &testEnv{db: db, source: source, subs: subs, ts: ts}
}

func (e *testEnv) dial(t *testing.T, query string) (*websocket.Conn, *http.Response, error) {
	u := url.URL{Scheme: "ws", Host: strings.TrimPrefix(e.ts.URL, "http://"), Path: "/subscriptions/events", RawQuery: query}
	return websocket.DefaultDialer.Dial(u.String(), nil)
}

func readReceipt(t *testing.T, conn *websocket.Conn) *runtime.Receipt {
	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, msg, err := conn.ReadMessage()
	require.NoError(t, err)
	var rcpt runtime.Receipt
	require.NoError(t, json.Unmarshal(msg, &rcpt))
	return &rcpt
}

func TestSubscribeFromPosition(t *testing.T) {
	env := initSubscriptionsServer(t, 3, 10)

	conn, resp, err := env.dial(t, "pos=1")
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, http.StatusSwitchingProtocols, resp.StatusCode)

	assert.Equal(t, uint64(2), readReceipt(t, conn).Seq)
	assert.Equal(t, uint64(3), readReceipt(t, conn).Seq)

	require.NoError(t, env.db.Write(testInvocation(4)))
	env.source.advance(4)
	rcpt := readReceipt(t, conn)
	assert.Equal(t, uint64(4), rcpt.Seq)
	assert.Equal(t, "burn_tickets", rcpt.Kind)
	v, ok := rcpt.Attribute("action")
	assert.True(t, ok)
	assert.Equal(t, "burn_tickets", v)
}

func TestSubscribeNewOnly(t *testing.T) {
	env := initSubscriptionsServer(t, 3, 10)

	conn, _, err := env.dial(t, "kind=buy_ticket")
	require.NoError(t, err)
	defer conn.Close()

	require.NoError(t, env.db.Write(testInvocation(4)))
	require.NoError(t, env.db.Write(testInvocation(5)))
	env.source.advance(5)
	// 4 is a burn
	assert.Equal(t, uint64(5), readReceipt(t, conn).Seq)
}

func TestSubscribeInvalidPosition(t *testing.T) {
	env := initSubscriptionsServer(t, 12, 5)

	for query, status := range map[string]int{
		"pos=abc": http.StatusBadRequest,
		"pos=13":  http.StatusBadRequest,
		"pos=6":   http.StatusForbidden,
	} {
		conn, resp, err := env.dial(t, query)
		assert.ErrorIs(t, err, websocket.ErrBadHandshake, query)
		require.NotNil(t, resp, query)
		assert.Equal(t, status, resp.StatusCode, query)
		if conn != nil {
			conn.Close()
		}
	}

	conn, _, err := env.dial(t, "pos=7")
	require.NoError(t, err)
	defer conn.Close()
	assert.Equal(t, uint64(8), readReceipt(t, conn).Seq)
}

func TestCloseDisconnects(t *testing.T) {
	env := initSubscriptionsServer(t, 0, 10)

	conn, _, err := env.dial(t, "")
	require.NoError(t, err)
	defer conn.Close()

	// give the handler time to enter its wait
	time.Sleep(50 * time.Millisecond)
	env.subs.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	_, _, err = conn.ReadMessage()
	var closeErr *websocket.CloseError
	require.ErrorAs(t, err, &closeErr)
	assert.Equal(t, websocket.CloseGoingAway, closeErr.Code)
}

func TestMessageCache(t *testing.T) {
	cache, err := newMessageCache(10)
	require.NoError(t, err)

	var (
		counter atomic.Int32
		wg      sync.WaitGroup
	)
	inv := testInvocation(1)
	for range 50 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, added, err := cache.GetOrAdd(inv)
			assert.NoError(t, err)
			if added {
				counter.Add(1)
			}
		}()
	}
	wg.Wait()
	assert.Equal(t, int32(1), counter.Load())

	msg, added, err := cache.GetOrAdd(testInvocation(2))
	require.NoError(t, err)
	assert.True(t, added)
	assert.Contains(t, string(msg), `"seq":2`)
	assert.Equal(t, 2, cache.cache.Len())
}
