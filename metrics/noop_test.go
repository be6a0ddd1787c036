// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestNoopMetrics(t *testing.T) {
	metrics = defaultNoopMetrics()

	assert.True(t, NoOp())
	assert.Nil(t, HTTPHandler())

	Counter("invocations").Add(1)
	CounterVec("invocations_vec", []string{"kind"}).AddWithLabel(1, map[string]string{"unknown": "label"})
	Gauge("sold").Set(3)
	GaugeVec("phase", []string{"pool"}).SetWithLabel(2, nil)
	Histogram("latency", nil).Observe(7)
	HistogramVec("latency_vec", []string{"kind"}, nil).ObserveWithLabels(7, map[string]string{"kind": "x"})
}
