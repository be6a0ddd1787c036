// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package runtime

import (
	"github.com/coreumfun/draw/metrics"
)

var (
	metricInvocationCount    = metrics.LazyLoadCounterVec("invocation_count", []string{"kind", "outcome"})
	metricInvocationDuration = metrics.LazyLoadHistogramVec("invocation_duration_us", []string{"kind"}, metrics.BucketInvocation)
	metricPoolPhase          = metrics.LazyLoadGauge("pool_phase")
	metricTicketsSold        = metrics.LazyLoadGauge("tickets_sold")
	metricTicketsBurned      = metrics.LazyLoadGauge("tickets_burned")
)
