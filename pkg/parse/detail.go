package parse

import (
	"bytes"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/Ruscigno/JobPulse/pkg/errors"
)

// Detail holds the fields read from a posting page. Absent elements leave
// their field empty.
type Detail struct {
	Title          string
	CompanyName    string
	CompanyURL     string
	Location       string
	TimePosted     string
	NumApplicants  string
	EmploymentType string
	JobLevel       string
	Description    string
}

const (
	selTitle       = "h1.top-card-layout__title"
	selCompany     = "a.topcard__org-name-link"
	selLocation    = "span.topcard__flavor--bullet"
	selPosted      = "span.posted-time-ago__text"
	selApplicants  = "span.num-applicants__caption"
	selCriteria    = "span.description__job-criteria-text"
	selDescription = "div.show-more-less-html__markup"
)

func ParseDetail(body []byte) (Detail, error) {
	doc, err := goquery.NewDocumentFromReader(bytes.NewReader(body))
	if err != nil {
		return Detail{}, errors.WrapError(err, errors.ErrCodeParseFailed, "failed to parse detail page")
	}

	d := Detail{
		Title:         firstText(doc, selTitle),
		Location:      firstText(doc, selLocation),
		TimePosted:    firstText(doc, selPosted),
		NumApplicants: firstText(doc, selApplicants),
		Description:   firstText(doc, selDescription),
	}

	if company := doc.Find(selCompany).First(); company.Length() > 0 {
		d.CompanyName = cleanText(company.Text())
		d.CompanyURL, _ = company.Attr("href")
	}

	criteria := doc.Find(selCriteria)
	if criteria.Length() > 0 {
		d.EmploymentType = cleanText(criteria.Eq(0).Text())
	}
	if criteria.Length() > 1 {
		d.JobLevel = cleanText(criteria.Eq(1).Text())
	}
	return d, nil
}

func firstText(doc *goquery.Document, selector string) string {
	sel := doc.Find(selector).First()
	if sel.Length() == 0 {
		return ""
	}
	return cleanText(sel.Text())
}

// cleanText collapses whitespace runs to one space and trims the ends.
func cleanText(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
