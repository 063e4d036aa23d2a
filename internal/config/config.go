// Package config loads application configuration from file and
// environment and initializes the global logger.
package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store  StoreConfig  `yaml:"store" mapstructure:"store"`
	Import ImportConfig `yaml:"import" mapstructure:"import"`
	Enrich EnrichConfig `yaml:"enrich" mapstructure:"enrich"`
	Portal PortalConfig `yaml:"portal" mapstructure:"portal"`
	Fetch  FetchConfig  `yaml:"fetch" mapstructure:"fetch"`
	Log    LogConfig    `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the record store.
type StoreConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
	MaxConns    int    `yaml:"max_conns" mapstructure:"max_conns"`
}

// ImportConfig configures the bulk import passes.
type ImportConfig struct {
	BatchSize        int  `yaml:"batch_size" mapstructure:"batch_size"`
	ActivityKeyLimit int  `yaml:"activity_key_limit" mapstructure:"activity_key_limit"`
	ActiveOnly       bool `yaml:"active_only" mapstructure:"active_only"`
}

// EnrichConfig configures the enrichment crawl.
type EnrichConfig struct {
	Workers           int    `yaml:"workers" mapstructure:"workers"`
	RequestsPerMinute int    `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
	MinDelaySecs      int    `yaml:"min_delay_secs" mapstructure:"min_delay_secs"`
	MaxDelaySecs      int    `yaml:"max_delay_secs" mapstructure:"max_delay_secs"`
	MaxRetries        int    `yaml:"max_retries" mapstructure:"max_retries"`
	StalenessDays     int    `yaml:"staleness_days" mapstructure:"staleness_days"`
	Limit             int    `yaml:"limit" mapstructure:"limit"`
	SnapshotPath      string `yaml:"snapshot_path" mapstructure:"snapshot_path"`
}

// Staleness returns the staleness threshold as a duration.
func (e EnrichConfig) Staleness() time.Duration {
	return time.Duration(e.StalenessDays) * 24 * time.Hour
}

// PortalConfig holds the external portal URL patterns.
type PortalConfig struct {
	FinancialURL string `yaml:"financial_url" mapstructure:"financial_url"`
	RegistryURL  string `yaml:"registry_url" mapstructure:"registry_url"`
	UserAgent    string `yaml:"user_agent" mapstructure:"user_agent"`
	TimeoutSecs  int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// FetchConfig configures extract archive downloads.
type FetchConfig struct {
	ExtractURL string `yaml:"extract_url" mapstructure:"extract_url"`
	TempDir    string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("KBO")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.max_conns", 10)
	v.SetDefault("import.batch_size", 1000)
	v.SetDefault("import.activity_key_limit", 50000)
	v.SetDefault("import.active_only", true)
	v.SetDefault("enrich.workers", 4)
	v.SetDefault("enrich.requests_per_minute", 20)
	v.SetDefault("enrich.min_delay_secs", 2)
	v.SetDefault("enrich.max_delay_secs", 4)
	v.SetDefault("enrich.max_retries", 3)
	v.SetDefault("enrich.staleness_days", 180)
	v.SetDefault("enrich.limit", 200)
	v.SetDefault("enrich.snapshot_path", "snapshots.db")
	v.SetDefault("portal.timeout_secs", 60)
	v.SetDefault("fetch.temp_dir", "/tmp/kbo-extract")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks that the configuration carries everything the given
// command mode needs. Missing mandatory configuration is fatal before
// any pass runs.
func (c *Config) Validate(mode string) error {
	var problems []string

	needStore := func() {
		if c.Store.DatabaseURL == "" {
			problems = append(problems, "store.database_url is required (KBO_STORE_DATABASE_URL)")
		}
	}

	switch mode {
	case "import", "migrate":
		needStore()
		if c.Import.BatchSize < 1 || c.Import.BatchSize > 10000 {
			problems = append(problems, "import.batch_size must be between 1 and 10000")
		}
		if c.Import.ActivityKeyLimit < 1 {
			problems = append(problems, "import.activity_key_limit must be >= 1")
		}
	case "enrich":
		needStore()
		if c.Enrich.Workers < 1 || c.Enrich.Workers > 32 {
			problems = append(problems, "enrich.workers must be between 1 and 32")
		}
		if c.Enrich.RequestsPerMinute < 1 {
			problems = append(problems, "enrich.requests_per_minute must be >= 1")
		}
		if c.Enrich.MaxDelaySecs < c.Enrich.MinDelaySecs {
			problems = append(problems, "enrich.max_delay_secs must be >= enrich.min_delay_secs")
		}
	case "fetch-extract":
		if c.Fetch.ExtractURL == "" {
			problems = append(problems, "fetch.extract_url is required (KBO_FETCH_EXTRACT_URL)")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.New("config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
