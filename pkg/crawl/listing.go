package crawl

import (
	"context"
	"net/url"
	"strconv"

	"github.com/Ruscigno/JobPulse/pkg/fetch"
	"github.com/Ruscigno/JobPulse/pkg/metrics"
	"github.com/Ruscigno/JobPulse/pkg/model"
	"github.com/Ruscigno/JobPulse/pkg/parse"
)

// UnitResult is what one query unit's search produced.
type UnitResult struct {
	Refs  []model.PostingRef
	Pages int
	// Err is the failure that ended the search early, nil when the search ran
	// out of results or hit a cap.
	Err error
}

// ListingScraper pages through the search results of one query unit.
type ListingScraper struct {
	fetcher     fetch.Fetcher
	baseURL     string
	pageSize    int
	maxPerQuery int
	maxTotal    int
	metrics     *metrics.CrawlMetrics
}

func NewListingScraper(fetcher fetch.Fetcher, baseURL string, pageSize, maxPerQuery, maxTotal int, crawlMetrics *metrics.CrawlMetrics) *ListingScraper {
	return &ListingScraper{
		fetcher:     fetcher,
		baseURL:     baseURL,
		pageSize:    pageSize,
		maxPerQuery: maxPerQuery,
		maxTotal:    maxTotal,
		metrics:     crawlMetrics,
	}
}

// Scrape fetches result pages at start offsets 0, pageSize, 2*pageSize, ...
// and claims every new id in seen, one page at a time. It stops at the first
// page without items, at the first failure, once maxPerQuery distinct ids
// were found for this unit, or once the global total is reached.
func (s *ListingScraper) Scrape(ctx context.Context, unit model.QueryUnit, seen *SeenSet) UnitResult {
	var res UnitResult
	local := make(map[string]struct{})

	for start := 0; start < s.maxPerQuery; start += s.pageSize {
		if err := ctx.Err(); err != nil {
			res.Err = err
			return res
		}
		if s.maxTotal > 0 && seen.Len() >= s.maxTotal {
			return res
		}

		body, err := s.fetcher.Fetch(ctx, s.SearchURL(unit, start))
		if err != nil {
			res.Err = err
			return res
		}
		listing, err := parse.ParseListing(body)
		if err != nil {
			res.Err = err
			return res
		}
		res.Pages++
		if listing.Items == 0 {
			return res
		}

		var found []string
		for _, id := range listing.IDs {
			if len(local) >= s.maxPerQuery {
				break
			}
			if _, dup := local[id]; dup {
				continue
			}
			local[id] = struct{}{}
			found = append(found, id)
		}

		claimed := seen.Claim(found, s.maxTotal)
		for _, id := range claimed {
			res.Refs = append(res.Refs, model.PostingRef{ID: id, Query: unit})
		}
		if s.metrics != nil {
			s.metrics.RecordListingPage(listing.Items, len(claimed))
		}

		if len(local) >= s.maxPerQuery {
			return res
		}
	}
	return res
}

// SearchURL builds the results URL for one page of a unit's search.
func (s *ListingScraper) SearchURL(unit model.QueryUnit, start int) string {
	u, err := url.Parse(s.baseURL)
	if err != nil {
		return s.baseURL
	}
	q := u.Query()
	q.Set("keywords", unit.Alias)
	q.Set("location", unit.Location)
	q.Set("start", strconv.Itoa(start))
	u.RawQuery = q.Encode()
	return u.String()
}
