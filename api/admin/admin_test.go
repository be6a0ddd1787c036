// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package admin

import (
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/coreumfun/draw/health"
)

func TestAdminRoutes(t *testing.T) {
	var (
		level   slog.LevelVar
		apiLogs atomic.Bool
	)
	h := health.NewSolo()
	h.PoolReady("pool1abc")
	ts := httptest.NewServer(New(&level, &apiLogs, h))
	defer ts.Close()

	for path, code := range map[string]int{
		"/admin/loglevel": http.StatusOK,
		"/admin/apilogs":  http.StatusOK,
		"/admin/health":   http.StatusOK,
		"/admin/unknown":  http.StatusNotFound,
	} {
		res, err := http.Get(ts.URL + path) //#nosec G107
		if assert.NoError(t, err, path) {
			res.Body.Close()
			assert.Equal(t, code, res.StatusCode, path)
		}
	}

	res, err := http.Post(ts.URL+"/admin/apilogs", "application/json", strings.NewReader(`{"enabled":true}`)) //#nosec G107
	if assert.NoError(t, err) {
		res.Body.Close()
		assert.True(t, apiLogs.Load())
	}
}
