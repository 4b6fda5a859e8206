// Package parse extracts postings from the listing and detail page markup.
package parse

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/Ruscigno/JobPulse/pkg/errors"
)

// Listing is the content of one search results page.
type Listing struct {
	// Items counts the result entries on the page, with or without a usable id.
	// Zero means the search is exhausted.
	Items int
	// IDs lists the posting ids in page order. Duplicates are kept.
	IDs []string
}

// ParseListing reads a search results fragment: one <li> per result, each
// holding a div.base-card whose data-entity-urn ends in the posting id.
func ParseListing(body []byte) (Listing, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Listing{}, errors.WrapError(err, errors.ErrCodeParseFailed, "failed to parse listing page")
	}

	var listing Listing
	doc.Find("li").Each(func(_ int, item *goquery.Selection) {
		listing.Items++
		card := item.Find("div.base-card").First()
		if card.Length() == 0 {
			return
		}
		urn, _ := card.Attr("data-entity-urn")
		if id := PostingID(urn); id != "" {
			listing.IDs = append(listing.IDs, id)
		}
	})
	return listing, nil
}

// PostingID returns the segment after the last colon of an entity urn,
// e.g. "urn:li:jobPosting:3912345678" -> "3912345678".
func PostingID(urn string) string {
	urn = strings.TrimSpace(urn)
	if i := strings.LastIndex(urn, ":"); i >= 0 {
		urn = urn[i+1:]
	}
	return strings.TrimSpace(urn)
}
