package crawl

import (
	"context"
	"net/url"
	"strings"

	"github.com/Ruscigno/JobPulse/pkg/fetch"
	"github.com/Ruscigno/JobPulse/pkg/model"
	"github.com/Ruscigno/JobPulse/pkg/parse"
)

// DetailScraper turns a posting reference into a record.
type DetailScraper struct {
	fetcher fetch.Fetcher
	baseURL string
}

func NewDetailScraper(fetcher fetch.Fetcher, baseURL string) *DetailScraper {
	return &DetailScraper{
		fetcher: fetcher,
		baseURL: strings.TrimRight(baseURL, "/"),
	}
}

// PostingURL returns the detail page URL of a posting id.
func (s *DetailScraper) PostingURL(id string) string {
	return s.baseURL + "/" + url.PathEscape(id)
}

// Empty returns the record of ref with only the reference and URL set.
func (s *DetailScraper) Empty(ref model.PostingRef) model.PostingRecord {
	return model.PostingRecord{
		PostingRef: ref,
		URL:        s.PostingURL(ref.ID),
	}
}

// Scrape always returns a record for ref. On error the record carries only
// the reference and URL; the error is returned for the caller to report.
func (s *DetailScraper) Scrape(ctx context.Context, ref model.PostingRef) (model.PostingRecord, error) {
	rec := s.Empty(ref)

	body, err := s.fetcher.Fetch(ctx, rec.URL)
	if err != nil {
		return rec, err
	}
	d, err := parse.ParseDetail(body)
	if err != nil {
		return rec, err
	}

	rec.Title = d.Title
	rec.CompanyName = d.CompanyName
	rec.CompanyURL = d.CompanyURL
	rec.Location = d.Location
	rec.TimePosted = d.TimePosted
	rec.NumApplicants = d.NumApplicants
	rec.EmploymentType = d.EmploymentType
	rec.JobLevel = d.JobLevel
	rec.Description = d.Description
	return rec, nil
}
