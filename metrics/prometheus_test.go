// Copyright (c) 2025 The VeChainThor developers
//
// Distributed under the GNU Lesser General Public License v3.0 software license, see the accompanying
// file LICENSE or <https://www.gnu.org/licenses/lgpl-3.0.html>

package metrics

import (
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/prometheus/client_golang/prometheus"
	dto "github.com/prometheus/client_model/go"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func gather(t *testing.T) map[string]*dto.MetricFamily {
	families, err := prometheus.DefaultGatherer.Gather()
	require.NoError(t, err)
	out := make(map[string]*dto.MetricFamily)
	for _, mf := range families {
		out[mf.GetName()] = mf
	}
	return out
}

func TestPromMetrics(t *testing.T) {
	InitializePrometheusMetrics()
	t.Cleanup(func() { metrics = defaultNoopMetrics() })
	require.False(t, NoOp())

	Counter("test_count").Add(2)
	Counter("test_count").Add(3)
	vec := CounterVec("test_count_vec", []string{"kind"})
	vec.AddWithLabel(1, map[string]string{"kind": "buy_ticket"})
	vec.AddWithLabel(4, map[string]string{"kind": "burn_tickets"})

	Gauge("test_gauge").Set(10)
	Gauge("test_gauge").Add(-3)
	GaugeVec("test_gauge_vec", []string{"pool"}).SetWithLabel(4, map[string]string{"pool": "pool1a"})

	Histogram("test_hist", []int64{1, 10}).Observe(5)
	HistogramVec("test_hist_vec", []string{"kind"}, []int64{1, 10}).ObserveWithLabels(6, map[string]string{"kind": "x"})

	families := gather(t)
	assert.Equal(t, float64(5), families["drawpool_test_count"].Metric[0].GetCounter().GetValue())
	sum := 0.0
	for _, m := range families["drawpool_test_count_vec"].Metric {
		sum += m.GetCounter().GetValue()
	}
	assert.Equal(t, float64(5), sum)
	assert.Equal(t, float64(7), families["drawpool_test_gauge"].Metric[0].GetGauge().GetValue())
	assert.Equal(t, float64(4), families["drawpool_test_gauge_vec"].Metric[0].GetGauge().GetValue())
	assert.Equal(t, float64(5), families["drawpool_test_hist"].Metric[0].GetHistogram().GetSampleSum())
	assert.Equal(t, float64(6), families["drawpool_test_hist_vec"].Metric[0].GetHistogram().GetSampleSum())

	srv := httptest.NewServer(HTTPHandler())
	defer srv.Close()
	resp, err := http.Get(srv.URL)
	require.NoError(t, err)
	defer resp.Body.Close()
	body, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "drawpool_test_count 5")
}

func TestLazyLoading(t *testing.T) {
	metrics = defaultNoopMetrics()
	t.Cleanup(func() { metrics = defaultNoopMetrics() })

	lazyCounter := LazyLoadCounter("lazy_counter")
	lazyGaugeVec := LazyLoadGaugeVec("lazy_gauge_vec", []string{"pool"})
	lazyHistogram := LazyLoadHistogram("lazy_histogram", nil)

	InitializePrometheusMetrics()

	assert.IsType(t, &promCountMeter{}, lazyCounter())
	assert.IsType(t, &promGaugeVecMeter{}, lazyGaugeVec())
	assert.IsType(t, &promHistogramMeter{}, lazyHistogram())
	assert.Same(t, lazyCounter(), lazyCounter())
}
