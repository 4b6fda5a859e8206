// Package crawl runs the two crawl phases: listing searches that discover
// posting ids into one shared set, then one detail fetch per unique id.
package crawl

import (
	"context"
	stderrors "errors"
	"sync/atomic"
	"time"

	"github.com/Ruscigno/JobPulse/pkg/config"
	"github.com/Ruscigno/JobPulse/pkg/fetch"
	"github.com/Ruscigno/JobPulse/pkg/metrics"
	"github.com/Ruscigno/JobPulse/pkg/model"
	"github.com/Ruscigno/JobPulse/pkg/query"
	"github.com/Ruscigno/JobPulse/pkg/worker"
	"go.uber.org/zap"
)

const progressEvery = 10

// Stats summarizes a run.
type Stats struct {
	QueryUnits      int           `json:"query_units"`
	ListingPages    int           `json:"listing_pages"`
	ListingFailures int           `json:"listing_failures"`
	UniquePostings  int           `json:"unique_postings"`
	DetailFailures  int           `json:"detail_failures"`
	ListingDuration time.Duration `json:"listing_duration"`
	DetailDuration  time.Duration `json:"detail_duration"`
}

// Result holds one record per unique posting, in discovery order: query
// units in expansion order, ids in page order within a unit.
type Result struct {
	Records []model.PostingRecord
	Stats   Stats
}

// Options wires a Pipeline.
type Options struct {
	Categories     []model.Category
	Locations      []string
	Crawl          config.CrawlConfig
	ListingFetcher fetch.Fetcher
	DetailFetcher  fetch.Fetcher
	Metrics        *metrics.CrawlMetrics
	Logger         *zap.Logger
}

type Pipeline struct {
	units          []model.QueryUnit
	listingWorkers int
	detailWorkers  int
	listing        *ListingScraper
	detail         *DetailScraper
	metrics        *metrics.CrawlMetrics
	logger         *zap.Logger
}

func NewPipeline(opts Options) *Pipeline {
	logger := opts.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	crawlMetrics := opts.Metrics
	if crawlMetrics == nil {
		crawlMetrics = metrics.NewCrawlMetrics(metrics.NewSimpleMetricsCollector(logger))
	}
	c := opts.Crawl
	return &Pipeline{
		units:          query.Expand(opts.Categories, opts.Locations),
		listingWorkers: c.ListingWorkers,
		detailWorkers:  c.DetailWorkers,
		listing:        NewListingScraper(opts.ListingFetcher, c.ListingURL, c.ResultsPerPage, c.MaxResultsPerQuery, c.MaxJobsTotal, crawlMetrics),
		detail:         NewDetailScraper(opts.DetailFetcher, c.DetailURL),
		metrics:        crawlMetrics,
		logger:         logger,
	}
}

// NewFromConfig builds a Pipeline that fetches over the network with the
// configured identity pool, delays and limiter.
func NewFromConfig(cfg config.Config, crawlMetrics *metrics.CrawlMetrics, logger *zap.Logger) *Pipeline {
	c := cfg.Crawl
	polite := fetch.NewPoliteFetcher(
		fetch.NewCollyFetcher(fetch.NewIdentity(c.UserAgents), c.RequestTimeout),
		fetch.Delayer{Min: c.DelayMin, Max: c.DelayMax},
		c.RequestsPerSecond,
		crawlMetrics,
	)
	return NewPipeline(Options{
		Categories:     cfg.Categories,
		Locations:      cfg.Locations,
		Crawl:          c,
		ListingFetcher: polite.ForKind("listing"),
		DetailFetcher:  polite.ForKind("detail"),
		Metrics:        crawlMetrics,
		Logger:         logger,
	})
}

// Units returns the expanded query units.
func (p *Pipeline) Units() []model.QueryUnit {
	return p.units
}

// Run executes both phases. Task failures are logged and never fail the run.
// A cancelled ctx is returned as the error; when cancellation happens during
// the detail phase the Result still holds one record per discovered posting,
// unfetched ones with empty fields.
func (p *Pipeline) Run(ctx context.Context) (Result, error) {
	var res Result
	res.Stats.QueryUnits = len(p.units)

	refs, err := p.discover(ctx, &res.Stats)
	if err != nil {
		return res, err
	}
	res.Stats.UniquePostings = len(refs)
	p.metrics.SetUniquePostings(len(refs))
	p.logger.Info("Total unique postings collected", zap.Int("postings", len(refs)))

	res.Records, err = p.details(ctx, refs, &res.Stats)
	return res, err
}

func (p *Pipeline) discover(ctx context.Context, stats *Stats) ([]model.PostingRef, error) {
	start := time.Now()
	seen := NewSeenSet()
	results := make([]UnitResult, len(p.units))
	var completed int64

	err := worker.Run(ctx, p.listingWorkers, p.units, func(ctx context.Context, i int, unit model.QueryUnit) {
		r := p.listing.Scrape(ctx, unit, seen)
		results[i] = r

		fields := []zap.Field{
			zap.String("alias", unit.Alias),
			zap.String("category", unit.Category),
			zap.String("location", unit.Location),
			zap.Int("new_postings", len(r.Refs)),
			zap.Int("pages", r.Pages),
		}
		if r.Err != nil && !isCancellation(r.Err) {
			p.metrics.RecordTaskFailure("listing")
			p.logger.Warn("Listing search stopped on failure", append(fields, zap.Error(r.Err))...)
		} else {
			p.logger.Info("Listing search finished", fields...)
		}

		if n := atomic.AddInt64(&completed, 1); n%progressEvery == 0 {
			p.logger.Info("Fetched listings", zap.Int64("done", n), zap.Int("total", len(p.units)))
		}
	}, p.logger)

	stats.ListingDuration = time.Since(start)
	p.metrics.RecordPhase("listing", stats.ListingDuration)

	var refs []model.PostingRef
	for _, r := range results {
		stats.ListingPages += r.Pages
		if r.Err != nil && !isCancellation(r.Err) {
			stats.ListingFailures++
		}
		refs = append(refs, r.Refs...)
	}
	return refs, err
}

func (p *Pipeline) details(ctx context.Context, refs []model.PostingRef, stats *Stats) ([]model.PostingRecord, error) {
	start := time.Now()
	records := make([]model.PostingRecord, len(refs))
	for i, ref := range refs {
		records[i] = p.detail.Empty(ref)
	}
	failed := make([]bool, len(refs))
	var completed int64

	err := worker.Run(ctx, p.detailWorkers, refs, func(ctx context.Context, i int, ref model.PostingRef) {
		rec, err := p.detail.Scrape(ctx, ref)
		records[i] = rec
		if err != nil {
			failed[i] = true
			if !isCancellation(err) {
				p.metrics.RecordTaskFailure("detail")
				p.logger.Warn("Detail fetch failed, keeping empty record",
					zap.String("job_id", ref.ID),
					zap.String("url", rec.URL),
					zap.Error(err))
			}
		}
		p.metrics.RecordDetail(err == nil)

		if n := atomic.AddInt64(&completed, 1); n%progressEvery == 0 {
			p.logger.Info("Processed posting details", zap.Int64("done", n), zap.Int("total", len(refs)))
		}
	}, p.logger)

	for _, f := range failed {
		if f {
			stats.DetailFailures++
		}
	}
	stats.DetailDuration = time.Since(start)
	p.metrics.RecordPhase("detail", stats.DetailDuration)
	return records, err
}

func isCancellation(err error) bool {
	return stderrors.Is(err, context.Canceled) || stderrors.Is(err, context.DeadlineExceeded)
}
