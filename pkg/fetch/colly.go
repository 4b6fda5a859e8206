package fetch

import (
	"context"
	"net/http"
	"time"

	"github.com/Ruscigno/JobPulse/pkg/errors"
	"github.com/gocolly/colly/v2"
)

// CollyFetcher fetches pages with a colly collector. Each call runs on a
// clone of the base collector so callbacks never leak between workers.
type CollyFetcher struct {
	base     *colly.Collector
	identity *Identity
}

func NewCollyFetcher(identity *Identity, timeout time.Duration) *CollyFetcher {
	collector := colly.NewCollector(
		colly.AllowURLRevisit(),
	)
	if timeout > 0 {
		collector.SetRequestTimeout(timeout)
	}
	return &CollyFetcher{
		base:     collector,
		identity: identity,
	}
}

func (f *CollyFetcher) Fetch(ctx context.Context, url string) ([]byte, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	collector := f.base.Clone()
	var (
		body   []byte
		status int
	)
	collector.OnRequest(func(r *colly.Request) {
		for k, v := range f.identity.Headers() {
			r.Headers.Set(k, v)
		}
	})
	collector.OnResponse(func(r *colly.Response) {
		status = r.StatusCode
		body = r.Body
	})
	collector.OnError(func(r *colly.Response, _ error) {
		if r != nil {
			status = r.StatusCode
		}
	})

	err := collector.Visit(url)
	if err != nil && status == 0 {
		return nil, errors.WrapError(err, errors.ErrCodeFetchFailed, "request failed").WithDetails(url)
	}
	if status != http.StatusOK {
		return nil, UnexpectedStatus(url, status)
	}
	return body, nil
}
