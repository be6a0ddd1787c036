// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package apilogs

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAPILogsHandler(t *testing.T) {
	tests := []struct {
		name     string
		method   string
		body     string
		start    bool
		wantCode int
		wantEnd  bool
	}{
		{"enable", "POST", `{"enabled":true}`, false, http.StatusOK, true},
		{"disable", "POST", `{"enabled":false}`, true, http.StatusOK, false},
		{"get", "GET", "", true, http.StatusOK, true},
		{"unknown field", "POST", `{"on":true}`, true, http.StatusBadRequest, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var enabled atomic.Bool
			enabled.Store(tt.start)

			req, err := http.NewRequest(tt.method, "/admin/apilogs", bytes.NewBufferString(tt.body))
			require.NoError(t, err)

			rr := httptest.NewRecorder()
			router := mux.NewRouter()
			New(&enabled).Mount(router, "/admin/apilogs")
			router.ServeHTTP(rr, req)

			assert.Equal(t, tt.wantCode, rr.Code)
			assert.Equal(t, tt.wantEnd, enabled.Load())
			if tt.wantCode == http.StatusOK {
				var status LogStatus
				require.NoError(t, json.Unmarshal(rr.Body.Bytes(), &status))
				assert.Equal(t, tt.wantEnd, status.Enabled)
			}
		})
	}
}
