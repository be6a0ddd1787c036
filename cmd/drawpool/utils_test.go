// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package main

import (
	"bytes"
	"errors"
	"io"
	"math"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/beevik/ntp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/coreumfun/draw/health"
	"github.com/coreumfun/draw/log"
)

func TestReadIntFromUInt64Flag(t *testing.T) {
	got, err := readIntFromUInt64Flag(42)
	require.NoError(t, err)
	assert.Equal(t, 42, got)

	got, err = readIntFromUInt64Flag(uint64(math.MaxInt))
	require.NoError(t, err)
	assert.Equal(t, math.MaxInt, got)

	_, err = readIntFromUInt64Flag(uint64(math.MaxInt) + 1)
	assert.Error(t, err)
}

func TestInitLogger(t *testing.T) {
	defer log.SetDefault(log.NewLogger(log.DiscardHandler()))

	var buf bytes.Buffer
	level := initLogger(&buf, 2, true)
	logger.Info("hidden")
	logger.Warn("shown", "k", "v")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), `"msg":"shown"`)

	level.Set(log.LevelDebug)
	logger.Debug("now visible")
	assert.Contains(t, buf.String(), "now visible")
}

func TestOpenMainDB(t *testing.T) {
	for _, engine := range []string{"leveldb", "pebble"} {
		t.Run(engine, func(t *testing.T) {
			dir := t.TempDir()
			db, err := openMainDB(engine, dir)
			require.NoError(t, err)
			require.NoError(t, db.Put([]byte("k"), []byte("v")))
			require.NoError(t, db.Close())

			db, err = openMainDB(engine, dir)
			require.NoError(t, err)
			defer db.Close()
			v, err := db.Get([]byte("k"))
			require.NoError(t, err)
			assert.Equal(t, []byte("v"), v)

			mem, err := openMainDB(engine, "")
			require.NoError(t, err)
			mem.Close()
		})
	}

	_, err := openMainDB("rocksdb", "")
	assert.ErrorContains(t, err, "unknown db engine")
}

func TestStartAPIServer(t *testing.T) {
	handler := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		deadline, ok := r.Context().Deadline()
		assert.True(t, ok)
		assert.WithinDuration(t, time.Now().Add(time.Second), deadline, time.Second)
		if _, err := io.ReadAll(r.Body); err != nil {
			w.WriteHeader(http.StatusRequestEntityTooLarge)
			return
		}
		w.WriteHeader(http.StatusNoContent)
	})
	url, stop, err := startAPIServer("localhost:0", handler, time.Second)
	require.NoError(t, err)
	defer stop()

	resp, err := http.Post(url, "text/plain", strings.NewReader("ok"))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusNoContent, resp.StatusCode)

	resp, err = http.Post(url, "text/plain", bytes.NewReader(make([]byte, maxRequestBytes+1)))
	require.NoError(t, err)
	resp.Body.Close()
	assert.Equal(t, http.StatusRequestEntityTooLarge, resp.StatusCode)
}

func TestCheckClockOffset(t *testing.T) {
	h := health.New()
	h.PoolReady("pool1x")

	checkClockOffset(h, func(string) (*ntp.Response, error) { return nil, errors.New("unreachable") })
	st, _ := h.Status(health.DefaultMaxClockOffset)
	assert.False(t, st.ClockSync)

	checkClockOffset(h, func(server string) (*ntp.Response, error) {
		assert.Equal(t, ntpServer, server)
		return &ntp.Response{ClockOffset: -time.Second}, nil
	})
	st, _ = h.Status(health.DefaultMaxClockOffset)
	assert.True(t, st.Healthy)
	assert.Equal(t, "-1s", st.ClockOffset)

	checkClockOffset(h, func(string) (*ntp.Response, error) { return &ntp.Response{ClockOffset: time.Minute}, nil })
	st, _ = h.Status(health.DefaultMaxClockOffset)
	assert.False(t, st.Healthy)
}

func TestPrintStartupMessage(t *testing.T) {
	var buf bytes.Buffer
	printStartupMessage(&buf, "pool1abc", "", "http://localhost:8669/", 3, true)
	out := buf.String()
	assert.Contains(t, out, "pool1abc")
	assert.Contains(t, out, "(memory)")
	assert.Contains(t, out, "solo")
}
