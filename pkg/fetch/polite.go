package fetch

import (
	"context"
	"math/rand/v2"
	"time"

	"github.com/Ruscigno/JobPulse/pkg/metrics"
	"golang.org/x/time/rate"
)

// Delayer waits a uniformly random duration in [Min, Max].
type Delayer struct {
	Min time.Duration
	Max time.Duration
}

// Next draws the next delay.
func (d Delayer) Next() time.Duration {
	if d.Max <= d.Min {
		return d.Min
	}
	return d.Min + rand.N(d.Max-d.Min+1)
}

// Wait sleeps for Next() or until ctx is done.
func (d Delayer) Wait(ctx context.Context) error {
	delay := d.Next()
	if delay <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(delay)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// PoliteFetcher spaces out calls to the inner Fetcher: a random delay before
// each call, plus an optional limiter shared by every worker.
type PoliteFetcher struct {
	inner   Fetcher
	delay   Delayer
	limiter *rate.Limiter
	metrics *metrics.CrawlMetrics
	kind    string
}

// NewPoliteFetcher wraps inner. requestsPerSecond <= 0 disables the limiter;
// crawlMetrics may be nil.
func NewPoliteFetcher(inner Fetcher, delay Delayer, requestsPerSecond float64, crawlMetrics *metrics.CrawlMetrics) *PoliteFetcher {
	var limiter *rate.Limiter
	if requestsPerSecond > 0 {
		limiter = rate.NewLimiter(rate.Limit(requestsPerSecond), 1)
	}
	return &PoliteFetcher{
		inner:   inner,
		delay:   delay,
		limiter: limiter,
		metrics: crawlMetrics,
		kind:    "page",
	}
}

// ForKind returns a fetcher labelled kind in metrics. It shares the limiter.
func (p *PoliteFetcher) ForKind(kind string) *PoliteFetcher {
	cp := *p
	cp.kind = kind
	return &cp
}

func (p *PoliteFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := p.delay.Wait(ctx); err != nil {
		return nil, err
	}
	if p.limiter != nil {
		if err := p.limiter.Wait(ctx); err != nil {
			return nil, err
		}
	}

	start := time.Now()
	body, err := p.inner.Fetch(ctx, url)
	if p.metrics != nil {
		p.metrics.RecordFetch(p.kind, StatusCode(err), time.Since(start))
	}
	return body, err
}
