// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/coreumfun/draw/metrics"
)

// StartMetricsServer serves the prometheus exposition on its own listener.
func StartMetricsServer(addr string) (string, func(), error) {
	router := mux.NewRouter()
	router.PathPrefix("/metrics").Handler(metrics.HTTPHandler())
	return listenAndServe("metrics", addr, "/metrics", handlers.CompressHandler(router))
}
