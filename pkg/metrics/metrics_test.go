package metrics

import (
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
)

func TestBuildMetricKeySortsLabels(t *testing.T) {
	assert.Equal(t, "fetches_total", buildMetricKey("fetches_total", nil))
	assert.Equal(t, "fetches_total{kind=detail,status=200}",
		buildMetricKey("fetches_total", map[string]string{"status": "200", "kind": "detail"}))
}

func TestCrawlMetricsRecords(t *testing.T) {
	collector := NewSimpleMetricsCollector(zap.NewNop())
	cm := NewCrawlMetrics(collector)

	cm.RecordFetch("listing", 200, 10*time.Millisecond)
	cm.RecordFetch("listing", 200, 30*time.Millisecond)
	cm.RecordFetch("detail", 0, time.Millisecond)
	cm.RecordListingPage(25, 20)
	cm.RecordListingPage(10, 3)
	cm.RecordTaskFailure("detail")
	cm.RecordDetail(false)
	cm.SetUniquePostings(23)

	assert.Equal(t, 2.0, collector.Counter("fetches_total", map[string]string{"kind": "listing", "status": "200"}))
	assert.Equal(t, 1.0, collector.Counter("fetches_total", map[string]string{"kind": "detail", "status": "0"}))
	assert.Equal(t, 2.0, collector.Counter("listing_pages_total", nil))
	assert.Equal(t, 35.0, collector.Counter("listing_items_total", nil))
	assert.Equal(t, 23.0, collector.Counter("postings_discovered_total", nil))
	assert.Equal(t, 1.0, collector.Counter("task_failures_total", map[string]string{"phase": "detail"}))
	assert.Equal(t, 1.0, collector.Counter("details_total", map[string]string{"success": "false"}))
	assert.Equal(t, 23.0, collector.Gauge("unique_postings", nil))

	snap := collector.Snapshot()
	fetch := snap.Histograms["fetch_duration_seconds{kind=listing}"]
	assert.Equal(t, 2, fetch.Count)
	assert.InDelta(t, 0.010, fetch.Min, 1e-9)
	assert.InDelta(t, 0.030, fetch.Max, 1e-9)
	assert.InDelta(t, 0.040, fetch.Sum, 1e-9)
}

func TestSnapshotIsACopy(t *testing.T) {
	collector := NewSimpleMetricsCollector(nil)
	collector.IncrementCounter("runs_total", nil)

	snap := collector.Snapshot()
	collector.IncrementCounter("runs_total", nil)

	assert.Equal(t, 1.0, snap.Counters["runs_total"])
	assert.Equal(t, 2.0, collector.Counter("runs_total", nil))
}

func TestCollectorConcurrentUse(t *testing.T) {
	collector := NewSimpleMetricsCollector(zap.NewNop())
	cm := NewCrawlMetrics(collector)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for j := 0; j < 100; j++ {
				cm.RecordDetail(true)
				cm.RecordPhase("detail", time.Millisecond)
			}
		}()
	}
	wg.Wait()

	assert.Equal(t, 800.0, collector.Counter("details_total", map[string]string{"success": "true"}))
	assert.Equal(t, 800, collector.Snapshot().Histograms["phase_duration_seconds{phase=detail}"].Count)
}

func TestMetricsMiddleware(t *testing.T) {
	collector := NewSimpleMetricsCollector(nil)
	h := MetricsMiddleware(NewCrawlMetrics(collector))(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path == "/missing" {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		w.Write([]byte("ok"))
	}))

	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/health", nil))
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(http.MethodGet, "/missing", nil))

	assert.Equal(t, 1.0, collector.Counter("http_requests_total",
		map[string]string{"method": "GET", "path": "/health", "status": "200"}))
	assert.Equal(t, 1.0, collector.Counter("http_requests_total",
		map[string]string{"method": "GET", "path": "/missing", "status": "404"}))
}
