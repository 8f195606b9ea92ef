// Package config loads application configuration from file and environment
// and initializes the global logger.
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
	Store    StoreConfig    `yaml:"store" mapstructure:"store"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Sources  SourcesConfig  `yaml:"sources" mapstructure:"sources"`
	Entity   EntityConfig   `yaml:"entity" mapstructure:"entity"`
	Signals  SignalsConfig  `yaml:"signals" mapstructure:"signals"`
	Scoring  ScoringConfig  `yaml:"scoring" mapstructure:"scoring"`
	Learning LearningConfig `yaml:"learning" mapstructure:"learning"`
	Notify   NotifyConfig   `yaml:"notify" mapstructure:"notify"`
	Batch    BatchConfig    `yaml:"batch" mapstructure:"batch"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// SourcesConfig configures the RSS/tender feeds polled during discovery.
type SourcesConfig struct {
	NewsFeeds     []string `yaml:"news_feeds" mapstructure:"news_feeds"`
	TenderFeeds   []string `yaml:"tender_feeds" mapstructure:"tender_feeds"`
	GemFeeds      []string `yaml:"gem_feeds" mapstructure:"gem_feeds"`
	MaxEntries    int      `yaml:"max_entries" mapstructure:"max_entries"`
	RatePerSecond float64  `yaml:"rate_per_second" mapstructure:"rate_per_second"`
	TimeoutSecs   int      `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// EntityConfig configures company-name canonicalization.
type EntityConfig struct {
	// Suffixes are legal-entity suffixes stripped from the end of company
	// names before keying. Empty means the built-in default list.
	Suffixes []string `yaml:"suffixes" mapstructure:"suffixes"`
}

// SignalsConfig configures the trigger -> product rule table.
type SignalsConfig struct {
	// RulesPath points to a YAML rule file; empty means built-in defaults.
	RulesPath string `yaml:"rules_path" mapstructure:"rules_path"`
	// MaxHits caps the fingerprint size.
	MaxHits int `yaml:"max_hits" mapstructure:"max_hits"`
}

// ScoringConfig holds scoring knobs. Raising HighScore/HighConfidence makes
// HIGH priority rarer; raising LowScore/LowConfidence widens the LOW band.
type ScoringConfig struct {
	// BaseScale converts the weighted signal sum into points; the base
	// component saturates at BaseCap.
	BaseScale float64 `yaml:"base_scale" mapstructure:"base_scale"`
	BaseCap   float64 `yaml:"base_cap" mapstructure:"base_cap"`
	// PropensityWeight is the score contribution of a propensity of 1.0.
	PropensityWeight float64 `yaml:"propensity_weight" mapstructure:"propensity_weight"`
	HighScore        float64 `yaml:"high_score" mapstructure:"high_score"`
	HighConfidence   float64 `yaml:"high_confidence" mapstructure:"high_confidence"`
	LowScore         float64 `yaml:"low_score" mapstructure:"low_score"`
	LowConfidence    float64 `yaml:"low_confidence" mapstructure:"low_confidence"`
}

// LearningConfig holds the feedback learner and propensity trainer knobs.
type LearningConfig struct {
	// LearningRate is the per-event weight step; converted outcomes apply a
	// double step.
	LearningRate float64 `yaml:"learning_rate" mapstructure:"learning_rate"`
	// MinWeight/MaxWeight clamp every multiplier to prevent drift.
	MinWeight float64 `yaml:"min_weight" mapstructure:"min_weight"`
	MaxWeight float64 `yaml:"max_weight" mapstructure:"max_weight"`
	// MinTrainingEvents is the minimum labeled outcomes required to retrain.
	MinTrainingEvents int `yaml:"min_training_events" mapstructure:"min_training_events"`
	// Epochs and StepSize drive the propensity model fit.
	Epochs   int     `yaml:"epochs" mapstructure:"epochs"`
	StepSize float64 `yaml:"step_size" mapstructure:"step_size"`
}

// NotifyConfig configures the notification collaborator.
type NotifyConfig struct {
	WebhookURL    string  `yaml:"webhook_url" mapstructure:"webhook_url"`
	MinConfidence float64 `yaml:"min_confidence" mapstructure:"min_confidence"`
	OnNewLead     bool    `yaml:"on_new_lead" mapstructure:"on_new_lead"`
	OnAssign      bool    `yaml:"on_assign" mapstructure:"on_assign"`
}

// BatchConfig configures batch discovery.
type BatchConfig struct {
	MaxConcurrent int `yaml:"max_concurrent" mapstructure:"max_concurrent"`
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
	v.SetDefault("store.database_url", "leads.db")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"http://127.0.0.1:8080"})
	v.SetDefault("sources.max_entries", 15)
	v.SetDefault("sources.rate_per_second", 1.0)
	v.SetDefault("sources.timeout_secs", 15)
	v.SetDefault("signals.max_hits", 20)
	v.SetDefault("scoring.base_scale", 10.0)
	v.SetDefault("scoring.base_cap", 60.0)
	v.SetDefault("scoring.propensity_weight", 35.0)
	v.SetDefault("scoring.high_score", 70.0)
	v.SetDefault("scoring.high_confidence", 0.6)
	v.SetDefault("scoring.low_score", 40.0)
	v.SetDefault("scoring.low_confidence", 0.3)
	v.SetDefault("learning.learning_rate", 0.05)
	v.SetDefault("learning.min_weight", 0.25)
	v.SetDefault("learning.max_weight", 4.0)
	v.SetDefault("learning.min_training_events", 10)
	v.SetDefault("learning.epochs", 300)
	v.SetDefault("learning.step_size", 0.1)
	v.SetDefault("notify.min_confidence", 0.5)
	v.SetDefault("notify.on_new_lead", true)
	v.SetDefault("notify.on_assign", true)
	v.SetDefault("batch.max_concurrent", 5)

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
