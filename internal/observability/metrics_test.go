package observability

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestCounterIncrement tests counter creation and accumulation
func TestCounterIncrement(t *testing.T) {
	mc := NewMetricsCollector()

	mc.Inc(MetricQueryTotal, nil)
	mc.Inc(MetricQueryTotal, nil)
	mc.Add(MetricQueryTotal, 3, nil)

	metric, exists := mc.Get(MetricQueryTotal, nil)
	require.True(t, exists)
	assert.Equal(t, MetricTypeCounter, metric.Type)
	assert.Equal(t, 5.0, metric.Value)
}

// TestCounterLabelsSeparateSeries tests that labels key distinct series
func TestCounterLabelsSeparateSeries(t *testing.T) {
	mc := NewMetricsCollector()

	mc.Inc(MetricQueryFailure, map[string]string{"error_type": "TRANSLATION_FAILED"})
	mc.Inc(MetricQueryFailure, map[string]string{"error_type": "VALIDATION_REJECTED"})
	mc.Inc(MetricQueryFailure, map[string]string{"error_type": "VALIDATION_REJECTED"})

	translation, exists := mc.Get(MetricQueryFailure, map[string]string{"error_type": "TRANSLATION_FAILED"})
	require.True(t, exists)
	assert.Equal(t, 1.0, translation.Value)

	validation, exists := mc.Get(MetricQueryFailure, map[string]string{"error_type": "VALIDATION_REJECTED"})
	require.True(t, exists)
	assert.Equal(t, 2.0, validation.Value)
}

// TestGaugeSet tests gauge overwrite semantics
func TestGaugeSet(t *testing.T) {
	mc := NewMetricsCollector()

	mc.Set("active_sessions", 4, nil)
	mc.Set("active_sessions", 2, nil)

	metric, exists := mc.Get("active_sessions", nil)
	require.True(t, exists)
	assert.Equal(t, MetricTypeGauge, metric.Type)
	assert.Equal(t, 2.0, metric.Value)
}

// TestHistogramObserve tests the running count/sum/mean bookkeeping
func TestHistogramObserve(t *testing.T) {
	mc := NewMetricsCollector()

	mc.Observe(MetricQueryDuration, 0.2, nil)
	mc.Observe(MetricQueryDuration, 0.4, nil)

	metric, exists := mc.Get(MetricQueryDuration, nil)
	require.True(t, exists)
	assert.Equal(t, MetricTypeHistogram, metric.Type)
	assert.Equal(t, 2.0, metric.Extra["count"])
	assert.InDelta(t, 0.6, metric.Extra["sum"].(float64), 1e-9)
	assert.InDelta(t, 0.3, metric.Value, 1e-9)
}

// TestReset tests clearing all series
func TestReset(t *testing.T) {
	mc := NewMetricsCollector()

	mc.Inc(MetricQueryTotal, nil)
	mc.Reset()

	assert.Empty(t, mc.GetAll())
}

// TestGlobalMetricsSingleton tests that the process-wide collector is
// stable across calls
func TestGlobalMetricsSingleton(t *testing.T) {
	assert.Same(t, GetGlobalMetrics(), GetGlobalMetrics())
}
