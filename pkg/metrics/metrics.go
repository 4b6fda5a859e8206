package metrics

import (
	"net/http"
	"sort"
	"strconv"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"
)

// MetricsCollector interface for collecting metrics
type MetricsCollector interface {
	IncrementCounter(name string, labels map[string]string)
	AddCounter(name string, delta float64, labels map[string]string)
	RecordHistogram(name string, value float64, labels map[string]string)
	SetGauge(name string, value float64, labels map[string]string)
	RecordDuration(name string, duration time.Duration, labels map[string]string)
}

// SimpleMetricsCollector is an in-memory metrics collector safe for use by
// concurrent workers.
type SimpleMetricsCollector struct {
	mu         sync.Mutex
	counters   map[string]float64
	histograms map[string][]float64
	gauges     map[string]float64
	logger     *zap.Logger
}

// NewSimpleMetricsCollector creates a new simple metrics collector
func NewSimpleMetricsCollector(logger *zap.Logger) *SimpleMetricsCollector {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &SimpleMetricsCollector{
		counters:   make(map[string]float64),
		histograms: make(map[string][]float64),
		gauges:     make(map[string]float64),
		logger:     logger,
	}
}

// IncrementCounter increments a counter metric
func (smc *SimpleMetricsCollector) IncrementCounter(name string, labels map[string]string) {
	smc.AddCounter(name, 1, labels)
}

// AddCounter adds delta to a counter metric
func (smc *SimpleMetricsCollector) AddCounter(name string, delta float64, labels map[string]string) {
	key := buildMetricKey(name, labels)
	smc.mu.Lock()
	smc.counters[key] += delta
	value := smc.counters[key]
	smc.mu.Unlock()

	smc.logger.Debug("Counter incremented",
		zap.String("metric", name),
		zap.Any("labels", labels),
		zap.Float64("value", value))
}

// RecordHistogram records a histogram value
func (smc *SimpleMetricsCollector) RecordHistogram(name string, value float64, labels map[string]string) {
	key := buildMetricKey(name, labels)
	smc.mu.Lock()
	smc.histograms[key] = append(smc.histograms[key], value)
	smc.mu.Unlock()
}

// SetGauge sets a gauge metric value
func (smc *SimpleMetricsCollector) SetGauge(name string, value float64, labels map[string]string) {
	key := buildMetricKey(name, labels)
	smc.mu.Lock()
	smc.gauges[key] = value
	smc.mu.Unlock()

	smc.logger.Debug("Gauge set",
		zap.String("metric", name),
		zap.Any("labels", labels),
		zap.Float64("value", value))
}

// RecordDuration records a duration metric
func (smc *SimpleMetricsCollector) RecordDuration(name string, duration time.Duration, labels map[string]string) {
	smc.RecordHistogram(name+"_duration_seconds", duration.Seconds(), labels)
}

// Counter returns the current value of a counter.
func (smc *SimpleMetricsCollector) Counter(name string, labels map[string]string) float64 {
	smc.mu.Lock()
	defer smc.mu.Unlock()
	return smc.counters[buildMetricKey(name, labels)]
}

// Gauge returns the current value of a gauge.
func (smc *SimpleMetricsCollector) Gauge(name string, labels map[string]string) float64 {
	smc.mu.Lock()
	defer smc.mu.Unlock()
	return smc.gauges[buildMetricKey(name, labels)]
}

// Snapshot is a point-in-time copy of every metric.
type Snapshot struct {
	Counters   map[string]float64 `json:"counters"`
	Gauges     map[string]float64 `json:"gauges"`
	Histograms map[string]Summary `json:"histograms"`
}

// Summary condenses histogram samples.
type Summary struct {
	Count int     `json:"count"`
	Sum   float64 `json:"sum"`
	Min   float64 `json:"min"`
	Max   float64 `json:"max"`
}

// Snapshot copies the collector state.
func (smc *SimpleMetricsCollector) Snapshot() Snapshot {
	smc.mu.Lock()
	defer smc.mu.Unlock()

	snap := Snapshot{
		Counters:   make(map[string]float64, len(smc.counters)),
		Gauges:     make(map[string]float64, len(smc.gauges)),
		Histograms: make(map[string]Summary, len(smc.histograms)),
	}
	for k, v := range smc.counters {
		snap.Counters[k] = v
	}
	for k, v := range smc.gauges {
		snap.Gauges[k] = v
	}
	for k, values := range smc.histograms {
		s := Summary{Count: len(values)}
		for i, v := range values {
			s.Sum += v
			if i == 0 || v < s.Min {
				s.Min = v
			}
			if i == 0 || v > s.Max {
				s.Max = v
			}
		}
		snap.Histograms[k] = s
	}
	return snap
}

// buildMetricKey builds a unique key for a metric with labels. Labels are
// sorted so the key does not depend on map iteration order.
func buildMetricKey(name string, labels map[string]string) string {
	if len(labels) == 0 {
		return name
	}
	keys := make([]string, 0, len(labels))
	for k := range labels {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	var b strings.Builder
	b.WriteString(name)
	b.WriteByte('{')
	for i, k := range keys {
		if i > 0 {
			b.WriteByte(',')
		}
		b.WriteString(k)
		b.WriteByte('=')
		b.WriteString(labels[k])
	}
	b.WriteByte('}')
	return b.String()
}

// CrawlMetrics holds the crawler specific metrics
type CrawlMetrics struct {
	collector MetricsCollector
}

// NewCrawlMetrics creates a new crawl metrics instance
func NewCrawlMetrics(collector MetricsCollector) *CrawlMetrics {
	return &CrawlMetrics{collector: collector}
}

// RecordFetch records one network call. status is 0 when no response arrived.
func (cm *CrawlMetrics) RecordFetch(kind string, status int, duration time.Duration) {
	labels := map[string]string{
		"kind":   kind,
		"status": strconv.Itoa(status),
	}
	cm.collector.IncrementCounter("fetches_total", labels)
	cm.collector.RecordDuration("fetch", duration, map[string]string{"kind": kind})
}

// RecordListingPage records a parsed listing page and how many ids it yielded.
func (cm *CrawlMetrics) RecordListingPage(items, newIDs int) {
	cm.collector.IncrementCounter("listing_pages_total", nil)
	cm.collector.AddCounter("listing_items_total", float64(items), nil)
	cm.collector.AddCounter("postings_discovered_total", float64(newIDs), nil)
}

// RecordTaskFailure counts a localized task failure.
func (cm *CrawlMetrics) RecordTaskFailure(phase string) {
	cm.collector.IncrementCounter("task_failures_total", map[string]string{"phase": phase})
}

// RecordDetail records a finished detail task.
func (cm *CrawlMetrics) RecordDetail(success bool) {
	cm.collector.IncrementCounter("details_total", map[string]string{"success": strconv.FormatBool(success)})
}

// SetUniquePostings sets the size of the dedupe set.
func (cm *CrawlMetrics) SetUniquePostings(n int) {
	cm.collector.SetGauge("unique_postings", float64(n), nil)
}

// RecordPhase records the duration of a pipeline phase.
func (cm *CrawlMetrics) RecordPhase(phase string, duration time.Duration) {
	cm.collector.RecordDuration("phase", duration, map[string]string{"phase": phase})
}

// RecordExport records a written export file.
func (cm *CrawlMetrics) RecordExport(rows int, duration time.Duration) {
	cm.collector.AddCounter("exported_rows_total", float64(rows), nil)
	cm.collector.RecordDuration("export", duration, nil)
}

// RecordUpload records an upload attempt.
func (cm *CrawlMetrics) RecordUpload(destination string, success bool, duration time.Duration) {
	labels := map[string]string{
		"destination": destination,
		"success":     strconv.FormatBool(success),
	}
	cm.collector.IncrementCounter("uploads_total", labels)
	cm.collector.RecordDuration("upload", duration, labels)
}

// RecordHTTPRequest records a request served by the serve command.
func (cm *CrawlMetrics) RecordHTTPRequest(method, path string, statusCode int, duration time.Duration) {
	labels := map[string]string{
		"method": method,
		"path":   path,
		"status": strconv.Itoa(statusCode),
	}
	cm.collector.IncrementCounter("http_requests_total", labels)
	cm.collector.RecordDuration("http_request", duration, labels)
}

// MetricsMiddleware creates HTTP middleware for collecting metrics
func MetricsMiddleware(metrics *CrawlMetrics) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()
			wrapper := &responseWriterWrapper{
				ResponseWriter: w,
				statusCode:     http.StatusOK,
			}
			next.ServeHTTP(wrapper, r)
			metrics.RecordHTTPRequest(r.Method, r.URL.Path, wrapper.statusCode, time.Since(start))
		})
	}
}

type responseWriterWrapper struct {
	http.ResponseWriter
	statusCode int
}

func (rw *responseWriterWrapper) WriteHeader(statusCode int) {
	rw.statusCode = statusCode
	rw.ResponseWriter.WriteHeader(statusCode)
}
