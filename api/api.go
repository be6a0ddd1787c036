// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"net/http"
	"net/http/pprof"
	"strings"
	"sync/atomic"
	"time"

	"github.com/gorilla/handlers"
	"github.com/gorilla/mux"

	"github.com/coreumfun/draw/api/doc"
	"github.com/coreumfun/draw/api/logs"
	"github.com/coreumfun/draw/api/middleware"
	"github.com/coreumfun/draw/api/pool"
	"github.com/coreumfun/draw/api/solo"
	"github.com/coreumfun/draw/api/subscriptions"
	"github.com/coreumfun/draw/log"
	"github.com/coreumfun/draw/logdb"
	"github.com/coreumfun/draw/runtime"
)

var logger = log.WithContext("pkg", "api")

type Options struct {
	AllowedOrigins       string
	BacktraceLimit       uint64
	LogsLimit            uint64
	PprofOn              bool
	SkipLogs             bool
	EnableReqLogger      *atomic.Bool
	SlowQueriesThreshold time.Duration
	Log5xxErrors         bool
	EnableMetrics        bool
	// SoloClock mounts the clock endpoints of a solo node when set.
	SoloClock solo.Clock
}

// New return api router
func New(rt *runtime.Runtime, logDB *logdb.LogDB, opts Options) (http.HandlerFunc, func(), error) {
	origins := strings.Split(strings.TrimSpace(opts.AllowedOrigins), ",")
	for i, o := range origins {
		origins[i] = strings.ToLower(strings.TrimSpace(o))
	}

	router := mux.NewRouter()

	router.PathPrefix("/doc").Handler(
		http.StripPrefix("/doc/", http.FileServer(http.FS(doc.FS))),
	)
	router.Path("/").HandlerFunc(
		func(w http.ResponseWriter, req *http.Request) {
			http.Redirect(w, req, "doc/drawpool.yaml", http.StatusTemporaryRedirect)
		})

	pool.New(rt).
		Mount(router, "/pool")
	if !opts.SkipLogs {
		logs.New(logDB, opts.LogsLimit).
			Mount(router, "/logs")
	}
	subs, err := subscriptions.New(rt, logDB, origins, opts.BacktraceLimit)
	if err != nil {
		return nil, nil, err
	}
	subs.Mount(router, "/subscriptions")
	if opts.SoloClock != nil {
		solo.New(opts.SoloClock).
			Mount(router, "/solo")
	}

	if opts.PprofOn {
		router.HandleFunc("/debug/pprof/cmdline", pprof.Cmdline)
		router.HandleFunc("/debug/pprof/profile", pprof.Profile)
		router.HandleFunc("/debug/pprof/symbol", pprof.Symbol)
		router.HandleFunc("/debug/pprof/trace", pprof.Trace)
		router.PathPrefix("/debug/pprof/").HandlerFunc(pprof.Index)
	}

	if opts.EnableMetrics {
		router.Use(metricsMiddleware)
	}
	if opts.EnableReqLogger != nil {
		router.Use(middleware.RequestLoggerMiddleware(logger, opts.EnableReqLogger, opts.SlowQueriesThreshold, opts.Log5xxErrors))
	}

	handler := handlers.CompressHandler(router)
	handler = handlers.CORS(
		handlers.AllowedOrigins(origins),
		handlers.AllowedHeaders([]string{"content-type"}),
		handlers.AllowedMethods([]string{http.MethodGet, http.MethodPost, http.MethodOptions}),
	)(handler)

	return handler.ServeHTTP, subs.Close, nil // subscriptions handles hijacked conns, which need to be closed
}
