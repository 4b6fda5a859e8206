package fetch

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/Ruscigno/JobPulse/pkg/errors"
	"github.com/Ruscigno/JobPulse/pkg/metrics"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

var testAgents = []string{"agent-a", "agent-b", "agent-c"}

func TestCollyFetcherReturnsBodyAndSendsIdentity(t *testing.T) {
	var mu sync.Mutex
	var agents []string
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		mu.Lock()
		agents = append(agents, r.Header.Get("User-Agent"))
		mu.Unlock()
		assert.Equal(t, "https://www.google.com/", r.Header.Get("Referer"))
		assert.Equal(t, "en-US,en;q=0.9", r.Header.Get("Accept-Language"))
		w.Header().Set("Content-Type", "text/html")
		_, _ = w.Write([]byte("<ul><li>one</li></ul>"))
	}))
	defer srv.Close()

	f := NewCollyFetcher(NewIdentity(testAgents), 5*time.Second)
	for i := 0; i < 3; i++ {
		body, err := f.Fetch(context.Background(), srv.URL+"/search?start=0")
		require.NoError(t, err)
		assert.Contains(t, string(body), "<li>one</li>")
	}

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, agents, 3, "same URL must be fetchable repeatedly")
	for _, a := range agents {
		assert.Contains(t, testAgents, a)
	}
}

func TestCollyFetcherNonOKStatus(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "slow down", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	f := NewCollyFetcher(NewIdentity(testAgents), 5*time.Second)
	body, err := f.Fetch(context.Background(), srv.URL)

	require.Error(t, err)
	assert.Nil(t, body)
	assert.True(t, errors.HasCode(err, errors.ErrCodeUnexpectedStatus))
	assert.Equal(t, http.StatusTooManyRequests, StatusCode(err))
}

func TestCollyFetcherCreatedIsNotOK(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusAccepted)
	}))
	defer srv.Close()

	_, err := NewCollyFetcher(NewIdentity(testAgents), 5*time.Second).Fetch(context.Background(), srv.URL)
	require.Error(t, err)
	assert.Equal(t, http.StatusAccepted, StatusCode(err))
}

func TestCollyFetcherTransportFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(http.ResponseWriter, *http.Request) {}))
	url := srv.URL
	srv.Close()

	_, err := NewCollyFetcher(NewIdentity(testAgents), time.Second).Fetch(context.Background(), url)
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeFetchFailed))
	assert.Equal(t, 0, StatusCode(err))
}

func TestCollyFetcherCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := NewCollyFetcher(NewIdentity(testAgents), time.Second).Fetch(ctx, "http://127.0.0.1:1")
	assert.ErrorIs(t, err, context.Canceled)
}

func TestIdentityRotatesThroughPool(t *testing.T) {
	id := NewIdentity(testAgents)
	next := 0
	id.pick = func(n int) int {
		i := next % n
		next++
		return i
	}
	for i := 0; i < 6; i++ {
		assert.Equal(t, testAgents[i%3], id.Headers()["User-Agent"])
	}
}

func TestIdentityWithoutAgents(t *testing.T) {
	h := NewIdentity(nil).Headers()
	_, ok := h["User-Agent"]
	assert.False(t, ok)
	assert.NotEmpty(t, h["Accept"])
}

func TestDelayerStaysInRange(t *testing.T) {
	d := Delayer{Min: 10 * time.Millisecond, Max: 30 * time.Millisecond}
	for i := 0; i < 200; i++ {
		n := d.Next()
		assert.GreaterOrEqual(t, n, d.Min)
		assert.LessOrEqual(t, n, d.Max)
	}
	assert.Equal(t, 5*time.Millisecond, Delayer{Min: 5 * time.Millisecond, Max: time.Millisecond}.Next())
}

func TestDelayerWaitHonoursContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	err := Delayer{Min: time.Hour, Max: time.Hour}.Wait(ctx)
	assert.ErrorIs(t, err, context.Canceled)
	assert.NoError(t, Delayer{}.Wait(context.Background()))
}

func TestPoliteFetcherRecordsMetrics(t *testing.T) {
	collector := metrics.NewSimpleMetricsCollector(zap.NewNop())
	inner := FetcherFunc(func(_ context.Context, url string) ([]byte, error) {
		if url == "bad" {
			return nil, UnexpectedStatus(url, http.StatusNotFound)
		}
		return []byte("ok"), nil
	})
	pf := NewPoliteFetcher(inner, Delayer{}, 1000, metrics.NewCrawlMetrics(collector)).ForKind("detail")

	body, err := pf.Fetch(context.Background(), "good")
	require.NoError(t, err)
	assert.Equal(t, "ok", string(body))
	_, err = pf.Fetch(context.Background(), "bad")
	require.Error(t, err)

	assert.Equal(t, 1.0, collector.Counter("fetches_total", map[string]string{"kind": "detail", "status": "200"}))
	assert.Equal(t, 1.0, collector.Counter("fetches_total", map[string]string{"kind": "detail", "status": "404"}))
}

func TestPoliteFetcherLimiterSpacesCalls(t *testing.T) {
	inner := FetcherFunc(func(context.Context, string) ([]byte, error) { return nil, nil })
	pf := NewPoliteFetcher(inner, Delayer{}, 20, nil)

	start := time.Now()
	for i := 0; i < 3; i++ {
		_, err := pf.Fetch(context.Background(), "u")
		require.NoError(t, err)
	}
	// burst of one: the second and third calls wait ~50ms each
	assert.GreaterOrEqual(t, time.Since(start), 90*time.Millisecond)
}
