package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store      StoreConfig      `yaml:"store" mapstructure:"store"`
	Cache      CacheConfig      `yaml:"cache" mapstructure:"cache"`
	Outscraper OutscraperConfig `yaml:"outscraper" mapstructure:"outscraper"`
	Anthropic  AnthropicConfig  `yaml:"anthropic" mapstructure:"anthropic"`
	Oracle     OracleConfig     `yaml:"oracle" mapstructure:"oracle"`
	Discovery  DiscoveryConfig  `yaml:"discovery" mapstructure:"discovery"`
	Scrape     ScrapeConfig     `yaml:"scrape" mapstructure:"scrape"`
	Extract    ExtractConfig    `yaml:"extract" mapstructure:"extract"`
	Enrich     EnrichConfig     `yaml:"enrich" mapstructure:"enrich"`
	Export     ExportConfig     `yaml:"export" mapstructure:"export"`
	Server     ServerConfig     `yaml:"server" mapstructure:"server"`
	Log        LogConfig        `yaml:"log" mapstructure:"log"`
}

// StoreConfig configures the cache backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	Path        string `yaml:"path" mapstructure:"path"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// CacheConfig configures entry freshness.
type CacheConfig struct {
	TTLHours int `yaml:"ttl_hours" mapstructure:"ttl_hours"`
}

// OutscraperConfig holds directory-search API settings.
type OutscraperConfig struct {
	Key      string `yaml:"key" mapstructure:"key"`
	BaseURL  string `yaml:"base_url" mapstructure:"base_url"`
	Language string `yaml:"language" mapstructure:"language"`
}

// AnthropicConfig holds Anthropic API settings.
type AnthropicConfig struct {
	Key       string `yaml:"key" mapstructure:"key"`
	Model     string `yaml:"model" mapstructure:"model"`
	MaxTokens int    `yaml:"max_tokens" mapstructure:"max_tokens"`
}

// OracleConfig tunes oracle call pacing.
type OracleConfig struct {
	PaceMs int `yaml:"pace_ms" mapstructure:"pace_ms"`
}

// DiscoveryConfig bounds URL discovery.
type DiscoveryConfig struct {
	MaxURLs  int `yaml:"max_urls" mapstructure:"max_urls"`
	MaxDepth int `yaml:"max_depth" mapstructure:"max_depth"`
}

// ScrapeConfig configures page fetching and cleaning.
type ScrapeConfig struct {
	MaxPages          int  `yaml:"max_pages" mapstructure:"max_pages"`
	MinTextLength     int  `yaml:"min_text_length" mapstructure:"min_text_length"`
	MaxPageChars      int  `yaml:"max_page_chars" mapstructure:"max_page_chars"`
	FetchTimeoutSecs  int  `yaml:"fetch_timeout_secs" mapstructure:"fetch_timeout_secs"`
	ProbeTimeoutSecs  int  `yaml:"probe_timeout_secs" mapstructure:"probe_timeout_secs"`
	RenderTimeoutSecs int  `yaml:"render_timeout_secs" mapstructure:"render_timeout_secs"`
	RenderEnabled     bool `yaml:"render_enabled" mapstructure:"render_enabled"`
}

// ExtractConfig bounds the extraction prompt.
type ExtractConfig struct {
	MaxPromptChars int `yaml:"max_prompt_chars" mapstructure:"max_prompt_chars"`
}

// EnrichConfig configures the orchestrator.
type EnrichConfig struct {
	Workers int `yaml:"workers" mapstructure:"workers"`
}

// ExportConfig selects the report format.
type ExportConfig struct {
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the webhook server.
type ServerConfig struct {
	Port int `yaml:"port" mapstructure:"port"`
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
	v.SetEnvPrefix("LEADGEN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "leadgen.db")
	// Env-only keys need a default registered or AutomaticEnv never
	// surfaces them to Unmarshal.
	v.SetDefault("store.database_url", "")
	v.SetDefault("cache.ttl_hours", 168)
	v.SetDefault("outscraper.key", "")
	v.SetDefault("outscraper.base_url", "https://api.outscraper.cloud")
	v.SetDefault("outscraper.language", "de")
	v.SetDefault("anthropic.key", "")
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 2048)
	v.SetDefault("oracle.pace_ms", 1500)
	v.SetDefault("discovery.max_urls", 200)
	v.SetDefault("discovery.max_depth", 2)
	v.SetDefault("scrape.max_pages", 5)
	v.SetDefault("scrape.min_text_length", 50)
	v.SetDefault("scrape.max_page_chars", 50000)
	v.SetDefault("scrape.fetch_timeout_secs", 20)
	v.SetDefault("scrape.probe_timeout_secs", 5)
	v.SetDefault("scrape.render_timeout_secs", 30)
	v.SetDefault("scrape.render_enabled", true)
	v.SetDefault("extract.max_prompt_chars", 15000)
	v.SetDefault("enrich.workers", 4)
	v.SetDefault("export.format", "xlsx")
	v.SetDefault("server.port", 8080)
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
