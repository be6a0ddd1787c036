// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package api

import (
	"bufio"
	"errors"
	"net"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/gorilla/mux"

	"github.com/coreumfun/draw/metrics"
)

var (
	metricHTTPReqCounter   = metrics.LazyLoadCounterVec("api_request_count", []string{"name", "code", "method"})
	metricHTTPReqDuration  = metrics.LazyLoadHistogramVec("api_duration_ms", []string{"name", "code", "method"}, metrics.BucketHTTPReqs)
	metricActiveWebsockets = metrics.LazyLoadGaugeVec("api_active_websocket_count", []string{"subject"})
)

// metricsResponseWriter captures the status code of a response.
type metricsResponseWriter struct {
	http.ResponseWriter
	statusCode int
}

func (m *metricsResponseWriter) WriteHeader(code int) {
	m.statusCode = code
	m.ResponseWriter.WriteHeader(code)
}

func (m *metricsResponseWriter) Hijack() (net.Conn, *bufio.ReadWriter, error) {
	h, ok := m.ResponseWriter.(http.Hijacker)
	if !ok {
		return nil, nil, errors.New("response writer does not support hijacking")
	}
	m.statusCode = http.StatusSwitchingProtocols
	return h.Hijack()
}

// metricName turns a route name like "GET /pool/tickets/{address}" into "pool_tickets_address".
func metricName(route string) string {
	if _, path, ok := strings.Cut(route, " "); ok {
		route = path
	}
	route = strings.NewReplacer("{", "", "}", "").Replace(route)
	return strings.ReplaceAll(strings.Trim(route, "/"), "/", "_")
}

// metricsMiddleware records request counters and durations for named routes,
// and the number of open websocket streams.
func metricsMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		route := mux.CurrentRoute(r)
		if route == nil || route.GetName() == "" {
			next.ServeHTTP(w, r)
			return
		}
		routeName := route.GetName()
		name := metricName(routeName)

		if strings.HasPrefix(routeName, "WS ") {
			subject := name[strings.LastIndex(name, "_")+1:]
			metricActiveWebsockets().AddWithLabel(1, map[string]string{"subject": subject})
			defer metricActiveWebsockets().AddWithLabel(-1, map[string]string{"subject": subject})
		}

		start := time.Now()
		mrw := &metricsResponseWriter{w, http.StatusOK}
		next.ServeHTTP(mrw, r)

		labels := map[string]string{"name": name, "code": strconv.Itoa(mrw.statusCode), "method": r.Method}
		metricHTTPReqCounter().AddWithLabel(1, labels)
		metricHTTPReqDuration().ObserveWithLabels(time.Since(start).Milliseconds(), labels)
	})
}
