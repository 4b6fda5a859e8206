package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/Ruscigno/JobPulse/pkg/errors"
	"github.com/Ruscigno/JobPulse/pkg/model"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override, e.g. JOBPULSE_CRAWL_DETAIL_WORKERS.
const EnvPrefix = "JOBPULSE"

// Config holds the crawler configuration.
type Config struct {
	Categories []model.Category `mapstructure:"categories"`
	Locations  []string         `mapstructure:"locations"`
	Crawl      CrawlConfig      `mapstructure:"crawl"`
	Output     OutputConfig     `mapstructure:"output"`
	Upload     UploadConfig     `mapstructure:"upload"`
	HTTP       HTTPConfig       `mapstructure:"http"`
	Log        LogConfig        `mapstructure:"log"`
}

// CrawlConfig controls the listing and detail phases.
type CrawlConfig struct {
	ListingURL         string        `mapstructure:"listing_url"`
	DetailURL          string        `mapstructure:"detail_url"`
	MaxResultsPerQuery int           `mapstructure:"max_results_per_query"`
	ResultsPerPage     int           `mapstructure:"results_per_page"`
	MaxJobsTotal       int           `mapstructure:"max_jobs_total"` // 0 disables the limit
	ListingWorkers     int           `mapstructure:"listing_workers"`
	DetailWorkers      int           `mapstructure:"detail_workers"`
	DelayMin           time.Duration `mapstructure:"delay_min"`
	DelayMax           time.Duration `mapstructure:"delay_max"`
	RequestsPerSecond  float64       `mapstructure:"requests_per_second"` // 0 disables the limiter
	RequestTimeout     time.Duration `mapstructure:"request_timeout"`
	UserAgents         []string      `mapstructure:"user_agents"`
}

// OutputConfig controls where the export lands.
type OutputConfig struct {
	Dir    string `mapstructure:"dir"`
	Prefix string `mapstructure:"prefix"`
}

// UploadConfig selects and configures the remote destination.
type UploadConfig struct {
	Destination    string `mapstructure:"destination"` // "", "drive" or "s3"
	DriveFolderID  string `mapstructure:"drive_folder_id"`
	CredentialsEnv string `mapstructure:"credentials_env"`
	S3Bucket       string `mapstructure:"s3_bucket"`
	S3Prefix       string `mapstructure:"s3_prefix"`
	S3Region       string `mapstructure:"s3_region"`
	S3AccessKey    string `mapstructure:"s3_access_key"`
	S3SecretKey    string `mapstructure:"s3_secret_key"`
}

// HTTPConfig holds the serve command settings.
type HTTPConfig struct {
	Port              string  `mapstructure:"port"`
	APIKey            string  `mapstructure:"api_key"` // empty disables auth
	RequestsPerSecond float64 `mapstructure:"requests_per_second"`
	BurstSize         int     `mapstructure:"burst_size"`
}

// LogConfig holds logger settings.
type LogConfig struct {
	Level string `mapstructure:"level"`
	File  string `mapstructure:"file"`
}

// DefaultCategories is the built-in category and alias table.
var DefaultCategories = []model.Category{
	{Name: "commerce & teleconseille", Aliases: []string{"commerce & teleconseille", "sales and customer service", "téléconseiller", "customer support", "telemarketing"}},
	{Name: "maintenance informatique", Aliases: []string{"maintenance informatique", "IT maintenance", "computer maintenance", "IT support", "systèmes informatiques"}},
	{Name: "community management", Aliases: []string{"community management", "social media management", "gestion de communauté", "online community manager"}},
	{Name: "frontend developement", Aliases: []string{"frontend developement", "frontend development", "développement frontend", "web development"}},
	{Name: "Creation du jeu", Aliases: []string{"Creation du jeu", "game development", "développement de jeu", "video game design"}},
	{Name: "marketing digital", Aliases: []string{"marketing digital", "digital marketing", "e-marketing", "web marketing"}},
	{Name: "Creation du contenu", Aliases: []string{"Creation du contenu", "content creation", "création de contenu", "content marketing"}},
}

// DefaultLocations is the built-in location table.
var DefaultLocations = []string{"Morocco", "Europe", "Middle East", "USA", "Canada"}

// DefaultUserAgents is the pool request identities rotate through.
var DefaultUserAgents = []string{
	"Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (Macintosh; Intel Mac OS X 10_15_7) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
	"Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/91.0.4472.124 Safari/537.36",
}

// SetDefaults registers every key with its default so env overrides are
// picked up by Unmarshal.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("categories", DefaultCategories)
	v.SetDefault("locations", DefaultLocations)

	v.SetDefault("crawl.listing_url", "https://www.linkedin.com/jobs-guest/jobs/api/seeMoreJobPostings/search")
	v.SetDefault("crawl.detail_url", "https://www.linkedin.com/jobs/view/")
	v.SetDefault("crawl.max_results_per_query", 1000)
	v.SetDefault("crawl.results_per_page", 25)
	v.SetDefault("crawl.max_jobs_total", 0)
	v.SetDefault("crawl.listing_workers", 5)
	v.SetDefault("crawl.detail_workers", 5)
	v.SetDefault("crawl.delay_min", time.Second)
	v.SetDefault("crawl.delay_max", 3*time.Second)
	v.SetDefault("crawl.requests_per_second", 0.0)
	v.SetDefault("crawl.request_timeout", 30*time.Second)
	v.SetDefault("crawl.user_agents", DefaultUserAgents)

	v.SetDefault("output.dir", ".")
	v.SetDefault("output.prefix", "linkedin_jobs")

	v.SetDefault("upload.destination", "")
	v.SetDefault("upload.drive_folder_id", "")
	v.SetDefault("upload.credentials_env", "GDRIVE_CREDENTIALS")
	v.SetDefault("upload.s3_bucket", "")
	v.SetDefault("upload.s3_prefix", "")
	v.SetDefault("upload.s3_region", "")
	v.SetDefault("upload.s3_access_key", "")
	v.SetDefault("upload.s3_secret_key", "")

	v.SetDefault("http.port", "3001")
	v.SetDefault("http.api_key", "")
	v.SetDefault("http.requests_per_second", 5.0)
	v.SetDefault("http.burst_size", 10)

	v.SetDefault("log.level", "debug")
	v.SetDefault("log.file", "")
}

// New returns a viper instance with defaults and env overrides wired.
func New() *viper.Viper {
	v := viper.New()
	SetDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return v
}

// Load reads the optional config file into v and decodes the result.
func Load(v *viper.Viper, configFile string) (Config, error) {
	if configFile != "" {
		v.SetConfigFile(configFile)
		if err := v.ReadInConfig(); err != nil {
			return Config{}, errors.WrapError(err, errors.ErrCodeBadRequest, "failed to read config file").
				WithDetails(configFile)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, errors.WrapError(err, errors.ErrCodeBadRequest, "failed to decode config")
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Default returns the built-in configuration.
func Default() Config {
	cfg, err := Load(New(), "")
	if err != nil {
		panic(fmt.Sprintf("default config is invalid: %v", err))
	}
	return cfg
}

// Validate checks the settings the crawl depends on.
func (c Config) Validate() error {
	verr := errors.NewValidationError("invalid configuration", nil)

	if len(c.Categories) == 0 {
		verr.AddField("categories", "at least one category is required", nil)
	}
	for i, cat := range c.Categories {
		if strings.TrimSpace(cat.Name) == "" {
			verr.AddField(fmt.Sprintf("categories[%d].name", i), "must not be empty", nil)
		}
		if len(cat.Aliases) == 0 {
			verr.AddField(fmt.Sprintf("categories[%d].aliases", i), "at least one alias is required", cat.Name)
		}
	}
	if len(c.Locations) == 0 {
		verr.AddField("locations", "at least one location is required", nil)
	}

	cr := c.Crawl
	if cr.ListingURL == "" {
		verr.AddField("crawl.listing_url", "must not be empty", nil)
	}
	if cr.DetailURL == "" {
		verr.AddField("crawl.detail_url", "must not be empty", nil)
	}
	if cr.MaxResultsPerQuery <= 0 {
		verr.AddField("crawl.max_results_per_query", "must be positive", cr.MaxResultsPerQuery)
	}
	if cr.ResultsPerPage <= 0 {
		verr.AddField("crawl.results_per_page", "must be positive", cr.ResultsPerPage)
	}
	if cr.MaxJobsTotal < 0 {
		verr.AddField("crawl.max_jobs_total", "must not be negative", cr.MaxJobsTotal)
	}
	if cr.ListingWorkers <= 0 {
		verr.AddField("crawl.listing_workers", "must be positive", cr.ListingWorkers)
	}
	if cr.DetailWorkers <= 0 {
		verr.AddField("crawl.detail_workers", "must be positive", cr.DetailWorkers)
	}
	if cr.DelayMin < 0 || cr.DelayMax < cr.DelayMin {
		verr.AddField("crawl.delay_min", "must satisfy 0 <= delay_min <= delay_max", cr.DelayMin.String())
	}
	if cr.RequestsPerSecond < 0 {
		verr.AddField("crawl.requests_per_second", "must not be negative", cr.RequestsPerSecond)
	}
	if len(cr.UserAgents) == 0 {
		verr.AddField("crawl.user_agents", "at least one user agent is required", nil)
	}

	if c.HTTP.RequestsPerSecond < 0 {
		verr.AddField("http.requests_per_second", "must not be negative", c.HTTP.RequestsPerSecond)
	}

	switch c.Upload.Destination {
	case "", "drive":
	case "s3":
		if c.Upload.S3Bucket == "" {
			verr.AddField("upload.s3_bucket", "required for s3 uploads", nil)
		}
	default:
		verr.AddField("upload.destination", "must be one of drive, s3 or empty", c.Upload.Destination)
	}

	if verr.HasFields() {
		return verr
	}
	return nil
}
