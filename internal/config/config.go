package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/dgallion1/tocgest/internal/doctree"
)

type Config struct {
	Port string `mapstructure:"port"`

	// Auth
	APIKey string `mapstructure:"api_key"`

	// Input validation
	MaxFileBytes      int64    `mapstructure:"max_file_bytes"`
	AllowedExtensions []string `mapstructure:"allowed_extensions"`

	// Worker pool
	WorkerCount  int `mapstructure:"worker_count"`
	MaxQueueSize int `mapstructure:"max_queue_size"`

	// Job state
	JobTTL time.Duration `mapstructure:"job_ttl"`

	// PDF
	PDFFallbackPdftotext bool `mapstructure:"pdf_fallback_pdftotext"`

	// Processing defaults
	ExtractContent  bool `mapstructure:"extract_content"`
	IncludeMetadata bool `mapstructure:"include_metadata"`
	MaxPages        int  `mapstructure:"max_pages"`

	LogLevel    string        `mapstructure:"log_level"`
	StatsWindow time.Duration `mapstructure:"stats_window"`
}

const (
	defaultMaxFileBytes = 100 * 1024 * 1024
	defaultWorkerCount  = 2
	defaultQueueSize    = 50
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("port", "8090")
	v.SetDefault("api_key", "")
	v.SetDefault("max_file_bytes", defaultMaxFileBytes)
	v.SetDefault("allowed_extensions", []string{".pdf"})
	v.SetDefault("worker_count", defaultWorkerCount)
	v.SetDefault("max_queue_size", defaultQueueSize)
	v.SetDefault("job_ttl", time.Hour)
	v.SetDefault("pdf_fallback_pdftotext", true)
	v.SetDefault("extract_content", true)
	v.SetDefault("include_metadata", true)
	v.SetDefault("max_pages", 0)
	v.SetDefault("log_level", "info")
	v.SetDefault("stats_window", time.Hour)
}

// Load reads configuration from defaults, an optional YAML file and
// TOCGEST_* environment variables, in increasing order of precedence.
// cfgFile may be empty, in which case ./tocgest.yaml is used if present.
func Load(cfgFile string) (Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("TOCGEST")
	v.AutomaticEnv()

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("tocgest")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func (c *Config) normalize() {
	if c.WorkerCount <= 0 {
		c.WorkerCount = defaultWorkerCount
	}
	if c.MaxQueueSize <= 0 {
		c.MaxQueueSize = defaultQueueSize
	}
	if c.MaxFileBytes <= 0 {
		c.MaxFileBytes = defaultMaxFileBytes
	}
	if c.JobTTL <= 0 {
		c.JobTTL = time.Hour
	}
	if c.StatsWindow <= 0 {
		c.StatsWindow = time.Hour
	}
	if c.MaxPages < 0 {
		c.MaxPages = 0
	}
	exts := make([]string, 0, len(c.AllowedExtensions))
	for _, e := range c.AllowedExtensions {
		e = strings.ToLower(strings.TrimSpace(e))
		if e == "" {
			continue
		}
		if !strings.HasPrefix(e, ".") {
			e = "." + e
		}
		exts = append(exts, e)
	}
	if len(exts) == 0 {
		exts = []string{".pdf"}
	}
	c.AllowedExtensions = exts
}

// Validate checks settings required to run the HTTP service.
func (c Config) Validate() error {
	if c.APIKey == "" {
		return fmt.Errorf("TOCGEST_API_KEY is required")
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("invalid log_level %q", c.LogLevel)
	}
	return nil
}

// Options returns the processing options applied when a request does not
// override them.
func (c Config) Options() doctree.ProcessingOptions {
	return doctree.ProcessingOptions{
		ExtractTOC:      true,
		ExtractContent:  c.ExtractContent,
		MaxPages:        c.MaxPages,
		IncludeMetadata: c.IncludeMetadata,
	}
}
