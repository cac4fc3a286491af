package observability

import (
	"sync"
	"time"
)

// MetricType represents the type of metric
type MetricType string

const (
	MetricTypeCounter   MetricType = "counter"
	MetricTypeGauge     MetricType = "gauge"
	MetricTypeHistogram MetricType = "histogram"
)

// Metric represents a single metric
type Metric struct {
	Name      string                 `json:"name"`
	Type      MetricType             `json:"type"`
	Value     float64                `json:"value"`
	Labels    map[string]string      `json:"labels,omitempty"`
	Timestamp time.Time              `json:"timestamp"`
	Extra     map[string]interface{} `json:"extra,omitempty"`
}

// MetricsCollector collects and stores application metrics
type MetricsCollector struct {
	mu      sync.RWMutex
	metrics map[string]*Metric
}

// NewMetricsCollector creates a new metrics collector
func NewMetricsCollector() *MetricsCollector {
	return &MetricsCollector{
		metrics: make(map[string]*Metric),
	}
}

// metricKey generates a unique key for a metric
func metricKey(name string, labels map[string]string) string {
	key := name
	for k, v := range labels {
		key += "." + k + "=" + v
	}
	return key
}

// Inc increments a counter metric
func (mc *MetricsCollector) Inc(name string, labels map[string]string) {
	mc.Add(name, 1, labels)
}

// Add adds a value to a counter metric
func (mc *MetricsCollector) Add(name string, value float64, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := metricKey(name, labels)
	if metric, exists := mc.metrics[key]; exists {
		metric.Value += value
		metric.Timestamp = time.Now()
	} else {
		mc.metrics[key] = &Metric{
			Name:      name,
			Type:      MetricTypeCounter,
			Value:     value,
			Labels:    labels,
			Timestamp: time.Now(),
		}
	}
}

// Set sets a gauge metric value
func (mc *MetricsCollector) Set(name string, value float64, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := metricKey(name, labels)
	mc.metrics[key] = &Metric{
		Name:      name,
		Type:      MetricTypeGauge,
		Value:     value,
		Labels:    labels,
		Timestamp: time.Now(),
	}
}

// Observe records a histogram observation as a running count/sum pair
func (mc *MetricsCollector) Observe(name string, value float64, labels map[string]string) {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	key := metricKey(name, labels)
	metric, exists := mc.metrics[key]
	if !exists {
		mc.metrics[key] = &Metric{
			Name:      name,
			Type:      MetricTypeHistogram,
			Value:     value,
			Labels:    labels,
			Timestamp: time.Now(),
			Extra: map[string]interface{}{
				"count": 1.0,
				"sum":   value,
			},
		}
		return
	}

	count := 1.0
	sum := value
	if c, ok := metric.Extra["count"].(float64); ok {
		count = c + 1
	}
	if s, ok := metric.Extra["sum"].(float64); ok {
		sum = s + value
	}
	metric.Extra["count"] = count
	metric.Extra["sum"] = sum
	metric.Value = sum / count
	metric.Timestamp = time.Now()
}

// Get retrieves a metric by name and labels
func (mc *MetricsCollector) Get(name string, labels map[string]string) (*Metric, bool) {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	metric, exists := mc.metrics[metricKey(name, labels)]
	return metric, exists
}

// GetAll retrieves a snapshot of all metrics
func (mc *MetricsCollector) GetAll() map[string]*Metric {
	mc.mu.RLock()
	defer mc.mu.RUnlock()

	result := make(map[string]*Metric, len(mc.metrics))
	for k, v := range mc.metrics {
		result[k] = v
	}
	return result
}

// Reset clears all metrics
func (mc *MetricsCollector) Reset() {
	mc.mu.Lock()
	defer mc.mu.Unlock()

	mc.metrics = make(map[string]*Metric)
}

// Standard metric names
const (
	// Query lifecycle metrics
	MetricQueryTotal          = "sql_copilot_queries_total"
	MetricQueryDuration       = "sql_copilot_query_duration_seconds"
	MetricQuerySuccess        = "sql_copilot_queries_success_total"
	MetricQueryFailure        = "sql_copilot_queries_failure_total"
	MetricQueryGuardViolation = "sql_copilot_guard_violations_total"
	MetricQuerySimulated      = "sql_copilot_queries_simulated_total"
	MetricRefineTotal         = "sql_copilot_refinements_total"

	// LLM metrics
	MetricLLMRequests = "llm_requests_total"
	MetricLLMDuration = "llm_request_duration_seconds"
	MetricLLMErrors   = "llm_errors_total"

	// Database metrics
	MetricDBExecutions = "database_executions_total"
	MetricDBDuration   = "database_execution_duration_seconds"
	MetricDBErrors     = "database_errors_total"

	// HTTP metrics
	MetricHTTPRequests = "http_requests_total"
	MetricHTTPDuration = "http_request_duration_seconds"
)

var (
	globalMetrics     *MetricsCollector
	globalMetricsOnce sync.Once
)

// GetGlobalMetrics returns the process-wide metrics collector
func GetGlobalMetrics() *MetricsCollector {
	globalMetricsOnce.Do(func() {
		globalMetrics = NewMetricsCollector()
	})
	return globalMetrics
}

// RecordQueryMetrics records the outcome of one query lifecycle run
func RecordQueryMetrics(duration time.Duration, success bool, simulated bool, errorType string) {
	mc := GetGlobalMetrics()

	mc.Inc(MetricQueryTotal, nil)
	mc.Observe(MetricQueryDuration, duration.Seconds(), nil)

	if success {
		mc.Inc(MetricQuerySuccess, nil)
	} else {
		mc.Inc(MetricQueryFailure, map[string]string{"error_type": errorType})
	}
	if simulated {
		mc.Inc(MetricQuerySimulated, nil)
	}
}

// RecordLLMMetrics records one language-model round trip
func RecordLLMMetrics(duration time.Duration, err error) {
	mc := GetGlobalMetrics()

	mc.Inc(MetricLLMRequests, nil)
	mc.Observe(MetricLLMDuration, duration.Seconds(), nil)
	if err != nil {
		mc.Inc(MetricLLMErrors, nil)
	}
}

// RecordDBMetrics records one guarded execution against the database
func RecordDBMetrics(duration time.Duration, err error) {
	mc := GetGlobalMetrics()

	mc.Inc(MetricDBExecutions, nil)
	mc.Observe(MetricDBDuration, duration.Seconds(), nil)
	if err != nil {
		mc.Inc(MetricDBErrors, nil)
	}
}

// RecordHTTPMetrics records one served HTTP request
func RecordHTTPMetrics(method, path string, status int, duration time.Duration) {
	mc := GetGlobalMetrics()

	labels := map[string]string{
		"method": method,
		"path":   path,
	}
	mc.Inc(MetricHTTPRequests, labels)
	mc.Observe(MetricHTTPDuration, duration.Seconds(), labels)
}
