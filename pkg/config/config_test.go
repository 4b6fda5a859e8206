package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Ruscigno/JobPulse/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaults(t *testing.T) {
	cfg := Default()

	assert.Len(t, cfg.Categories, 7)
	assert.Equal(t, []string{"Morocco", "Europe", "Middle East", "USA", "Canada"}, cfg.Locations)
	assert.Equal(t, 1000, cfg.Crawl.MaxResultsPerQuery)
	assert.Equal(t, 25, cfg.Crawl.ResultsPerPage)
	assert.Equal(t, 5, cfg.Crawl.ListingWorkers)
	assert.Equal(t, 5, cfg.Crawl.DetailWorkers)
	assert.Equal(t, time.Second, cfg.Crawl.DelayMin)
	assert.Equal(t, 3*time.Second, cfg.Crawl.DelayMax)
	assert.Equal(t, 30*time.Second, cfg.Crawl.RequestTimeout)
	assert.Zero(t, cfg.Crawl.MaxJobsTotal)
	assert.Len(t, cfg.Crawl.UserAgents, 3)
	assert.Equal(t, "linkedin_jobs", cfg.Output.Prefix)
	assert.Equal(t, "GDRIVE_CREDENTIALS", cfg.Upload.CredentialsEnv)
	assert.Equal(t, "3001", cfg.HTTP.Port)
}

func TestEnvOverrides(t *testing.T) {
	t.Setenv("JOBPULSE_CRAWL_DETAIL_WORKERS", "12")
	t.Setenv("JOBPULSE_CRAWL_DELAY_MAX", "5s")
	t.Setenv("JOBPULSE_OUTPUT_PREFIX", "nightly")

	cfg, err := Load(New(), "")
	require.NoError(t, err)
	assert.Equal(t, 12, cfg.Crawl.DetailWorkers)
	assert.Equal(t, 5*time.Second, cfg.Crawl.DelayMax)
	assert.Equal(t, "nightly", cfg.Output.Prefix)
}

func TestLoadFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "jobpulse.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`categories:
  - name: data
    aliases: [data engineer, analytics engineer]
locations: [Portugal]
crawl:
  max_jobs_total: 50
  delay_min: 100ms
  delay_max: 200ms
upload:
  destination: s3
  s3_bucket: exports
`), 0o644))

	cfg, err := Load(New(), path)
	require.NoError(t, err)
	require.Len(t, cfg.Categories, 1)
	assert.Equal(t, "data", cfg.Categories[0].Name)
	assert.Equal(t, []string{"data engineer", "analytics engineer"}, cfg.Categories[0].Aliases)
	assert.Equal(t, []string{"Portugal"}, cfg.Locations)
	assert.Equal(t, 50, cfg.Crawl.MaxJobsTotal)
	assert.Equal(t, 100*time.Millisecond, cfg.Crawl.DelayMin)
	assert.Equal(t, "s3", cfg.Upload.Destination)
	assert.Equal(t, 25, cfg.Crawl.ResultsPerPage, "unset keys keep defaults")
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.HasCode(err, errors.ErrCodeBadRequest))
}

func TestValidate(t *testing.T) {
	cases := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"no categories", func(c *Config) { c.Categories = nil }, "categories"},
		{"category without aliases", func(c *Config) { c.Categories[0].Aliases = nil }, "categories[0].aliases"},
		{"no locations", func(c *Config) { c.Locations = nil }, "locations"},
		{"zero page size", func(c *Config) { c.Crawl.ResultsPerPage = 0 }, "crawl.results_per_page"},
		{"zero cap", func(c *Config) { c.Crawl.MaxResultsPerQuery = 0 }, "crawl.max_results_per_query"},
		{"zero listing workers", func(c *Config) { c.Crawl.ListingWorkers = 0 }, "crawl.listing_workers"},
		{"zero detail workers", func(c *Config) { c.Crawl.DetailWorkers = 0 }, "crawl.detail_workers"},
		{"delay min above max", func(c *Config) { c.Crawl.DelayMin = 4 * time.Second }, "crawl.delay_min"},
		{"no user agents", func(c *Config) { c.Crawl.UserAgents = nil }, "crawl.user_agents"},
		{"negative total", func(c *Config) { c.Crawl.MaxJobsTotal = -1 }, "crawl.max_jobs_total"},
		{"s3 without bucket", func(c *Config) { c.Upload.Destination = "s3" }, "upload.s3_bucket"},
		{"unknown destination", func(c *Config) { c.Upload.Destination = "ftp" }, "upload.destination"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			cfg := Default()
			cfg.Categories = append(cfg.Categories[:0:0], cfg.Categories...)
			tc.mutate(&cfg)

			err := cfg.Validate()
			require.Error(t, err)
			var verr *errors.ValidationError
			require.ErrorAs(t, err, &verr)

			fields := make([]string, 0, len(verr.Fields))
			for _, f := range verr.Fields {
				fields = append(fields, f.Field)
			}
			assert.Contains(t, fields, tc.field)
		})
	}
}

func TestValidateDefaultsPass(t *testing.T) {
	assert.NoError(t, Default().Validate())
}
