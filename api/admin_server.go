// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"log/slog"
	"sync/atomic"

	"github.com/coreumfun/draw/api/admin"
	"github.com/coreumfun/draw/health"
)

// StartAdminServer serves the admin API and returns its url with a function to stop it.
func StartAdminServer(addr string, logLevel *slog.LevelVar, apiLogs *atomic.Bool, health *health.Health) (string, func(), error) {
	return listenAndServe("admin", addr, "/admin", admin.New(logLevel, apiLogs, health))
}
