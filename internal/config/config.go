package config

import (
	"strings"

	"github.com/joho/godotenv"
	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store     StoreConfig     `yaml:"store" mapstructure:"store"`
	HN        HNConfig        `yaml:"hn" mapstructure:"hn"`
	Anthropic AnthropicConfig `yaml:"anthropic" mapstructure:"anthropic"`
	Extract   ExtractConfig   `yaml:"extract" mapstructure:"extract"`
	Dataset   DatasetConfig   `yaml:"dataset" mapstructure:"dataset"`
	Dashboard DashboardConfig `yaml:"dashboard" mapstructure:"dashboard"`
	Rules     RulesConfig     `yaml:"rules" mapstructure:"rules"`
	Log       LogConfig       `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the run-history database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// HNConfig holds Hacker News API settings.
type HNConfig struct {
	AlgoliaBaseURL   string `yaml:"algolia_base_url" mapstructure:"algolia_base_url"`
	FirebaseBaseURL  string `yaml:"firebase_base_url" mapstructure:"firebase_base_url"`
	SearchWindowDays int    `yaml:"search_window_days" mapstructure:"search_window_days"`
	FetchConcurrency int    `yaml:"fetch_concurrency" mapstructure:"fetch_concurrency"`
	TimeoutSecs      int    `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// AnthropicConfig holds extraction backend settings. The key is supplied via
// the environment (HIRING_ANTHROPIC_KEY or a .env file), never persisted.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// ExtractConfig configures the extraction engine.
type ExtractConfig struct {
	// MaxChars caps the comment text sent to the backend. Salient fields
	// cluster near the start of a posting, so truncation trades a little
	// accuracy for a large token saving.
	MaxChars int `yaml:"max_chars" mapstructure:"max_chars"`
	// PaceSecs is the minimum delay between backend requests. Cooperative
	// self-throttling against the provider's requests-per-day ceiling,
	// not reactive backoff.
	PaceSecs int `yaml:"pace_secs" mapstructure:"pace_secs"`
	// DailyTokenBudget stops the run gracefully once crossed.
	DailyTokenBudget int `yaml:"daily_token_budget" mapstructure:"daily_token_budget"`
	TimeoutSecs      int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// DatasetConfig configures the persisted table and raw snapshots.
type DatasetConfig struct {
	Path        string `yaml:"path" mapstructure:"path"`
	SnapshotDir string `yaml:"snapshot_dir" mapstructure:"snapshot_dir"`
	FlushEvery  int    `yaml:"flush_every" mapstructure:"flush_every"`
}

// DashboardConfig configures the read-only teaser dashboard.
type DashboardConfig struct {
	Port         int  `yaml:"port" mapstructure:"port"`
	TeaserRows   int  `yaml:"teaser_rows" mapstructure:"teaser_rows"`
	MaskContacts bool `yaml:"mask_contacts" mapstructure:"mask_contacts"`
}

// RulesConfig points at the keyword rules file (optional; defaults compiled in).
type RulesConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from .env, config file, and environment.
func Load() (*Config, error) {
	// Best-effort .env preload; absence is not an error.
	_ = godotenv.Load()

	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	v.SetEnvPrefix("HIRING")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "data/runs.db")
	v.SetDefault("hn.algolia_base_url", "https://hn.algolia.com/api/v1")
	v.SetDefault("hn.firebase_base_url", "https://hacker-news.firebaseio.com/v0")
	v.SetDefault("hn.search_window_days", 365)
	v.SetDefault("hn.fetch_concurrency", 4)
	v.SetDefault("hn.timeout_secs", 10)
	// Registering the key makes HIRING_ANTHROPIC_KEY visible to Unmarshal.
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("extract.max_chars", 3500)
	v.SetDefault("extract.pace_secs", 10)
	v.SetDefault("extract.daily_token_budget", 500000)
	v.SetDefault("extract.timeout_secs", 60)
	v.SetDefault("dataset.path", "data/processed/jobs.csv")
	v.SetDefault("dataset.snapshot_dir", "data/raw")
	v.SetDefault("dataset.flush_every", 10)
	v.SetDefault("dashboard.port", 8080)
	v.SetDefault("dashboard.teaser_rows", 50)
	v.SetDefault("dashboard.mask_contacts", true)
	v.SetDefault("rules.path", "rules.yaml")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

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
