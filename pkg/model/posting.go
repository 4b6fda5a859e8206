package model

// Category is a canonical job category plus the search phrases used for it.
type Category struct {
	Name    string   `mapstructure:"name" json:"name" yaml:"name"`
	Aliases []string `mapstructure:"aliases" json:"aliases" yaml:"aliases"`
}

// QueryUnit is one (alias, category, location) combination driving a listing search.
type QueryUnit struct {
	Alias    string `json:"alias"`
	Category string `json:"category"`
	Location string `json:"location"`
}

// PostingRef is a deduplicated posting identifier plus the query that found it.
type PostingRef struct {
	ID    string    `json:"job_id"`
	Query QueryUnit `json:"query"`
}

// PostingRecord is a PostingRef enriched with the fields of its detail page.
// Empty strings mean the field was not present or the fetch failed.
type PostingRecord struct {
	PostingRef
	Title          string `json:"job_title"`
	CompanyName    string `json:"company_name"`
	CompanyURL     string `json:"company_url"`
	Location       string `json:"location"`
	TimePosted     string `json:"time_posted"`
	NumApplicants  string `json:"num_applicants"`
	EmploymentType string `json:"employment_type"`
	JobLevel       string `json:"job_level"`
	Description    string `json:"job_description"`
	URL            string `json:"job_url"`
}

// Columns is the export column order.
var Columns = []string{
	"job_id",
	"original_category",
	"search_location",
	"search_term_used",
	"job_title",
	"company_name",
	"company_url",
	"location",
	"time_posted",
	"num_applicants",
	"employment_type",
	"job_level",
	"job_description",
	"job_url",
}

// Row returns the record's values in Columns order.
func (r PostingRecord) Row() []string {
	return []string{
		r.ID,
		r.Query.Category,
		r.Query.Location,
		r.Query.Alias,
		r.Title,
		r.CompanyName,
		r.CompanyURL,
		r.Location,
		r.TimePosted,
		r.NumApplicants,
		r.EmploymentType,
		r.JobLevel,
		r.Description,
		r.URL,
	}
}
