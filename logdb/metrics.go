// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package logdb

import (
	"strings"

	"github.com/coreumfun/draw/metrics"
)

var (
	metricQueryParameters = metrics.LazyLoadCounterVec("logdb_query_parameters", []string{"parameters"})
	metricQueryOrder      = metrics.LazyLoadCounterVec("logdb_query_order", []string{"order"})
	metricLimitBucket     = metrics.LazyLoadHistogram("logdb_query_limit_bucket", []int64{0, 5, 10, 25, 50, 100, 250, 500, 1000})
)

func metricsHandleFilter(filter *InvocationFilter) {
	if metrics.NoOp() {
		return
	}

	var params []string
	if filter.Range != nil {
		params = append(params, "range_"+string(filter.Range.Unit))
	}
	if filter.Kind != "" {
		params = append(params, "kind")
	}
	if filter.Sender != "" {
		params = append(params, "sender")
	}
	if filter.AdminOnly {
		params = append(params, "admin")
	}
	if filter.Success != nil {
		params = append(params, "success")
	}
	metricQueryParameters().AddWithLabel(1, map[string]string{"parameters": strings.Join(params, ",")})

	order := string(ASC)
	if filter.Order == DESC {
		order = string(DESC)
	}
	metricQueryOrder().AddWithLabel(1, map[string]string{"order": order})

	if filter.Options != nil {
		limit := filter.Options.Limit
		if limit > 1000 {
			limit = 1001
		}
		metricLimitBucket().Observe(int64(limit))
	}
}
