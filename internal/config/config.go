// Package config loads profile engine settings from YAML with environment
// overrides.
package config

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/rs/zerolog"
	"gopkg.in/yaml.v3"

	"github.com/danielpatrickdp/adaptive-profile/internal/gate"
	"github.com/danielpatrickdp/adaptive-profile/internal/refine"
)

// Environment overrides, applied after the file.
const (
	EnvDB       = "PROFILE_DB"
	EnvGRPCAddr = "PROFILE_GRPC_ADDR"
	EnvHTTPAddr = "PROFILE_HTTP_ADDR"
	EnvCatalog  = "PROFILE_CATALOG"
	EnvLogLevel = "PROFILE_LOG_LEVEL"
)

// Config is the complete engine configuration.
type Config struct {
	DBPath      string       `yaml:"db_path"`
	GRPCAddr    string       `yaml:"grpc_addr"`
	HTTPAddr    string       `yaml:"http_addr"`
	CatalogPath string       `yaml:"catalog_path"` // empty = built-in Blueprint catalog
	Log         LogConfig    `yaml:"log"`
	Refine      RefineConfig `yaml:"refine"`
	Gate        GateConfig   `yaml:"gate"`
}

// LogConfig configures the zerolog logger.
type LogConfig struct {
	Level   string `yaml:"level"`
	Console bool   `yaml:"console"` // human-readable output instead of JSON
}

// RefineConfig mirrors refine.Config.
type RefineConfig struct {
	LearningRate         float64 `yaml:"learning_rate"`
	AnswerReliability    float64 `yaml:"answer_reliability"`
	AnswerConfidenceStep float64 `yaml:"answer_confidence_step"`
	EventConfidenceStep  float64 `yaml:"event_confidence_step"`
}

// GateConfig mirrors gate.GateConfig.
type GateConfig struct {
	MaxScoreDelta float64 `yaml:"max_score_delta"`
}

// DefaultConfig returns a Config with production defaults.
func DefaultConfig() *Config {
	rc := refine.DefaultConfig()
	return &Config{
		DBPath:   "adaptive_profile.db",
		GRPCAddr: "localhost:50061",
		HTTPAddr: "localhost:8081",
		Log:      LogConfig{Level: "info"},
		Refine: RefineConfig{
			LearningRate:         rc.LearningRate,
			AnswerReliability:    rc.AnswerReliability,
			AnswerConfidenceStep: rc.AnswerConfidenceStep,
			EventConfidenceStep:  rc.EventConfidenceStep,
		},
		Gate: GateConfig{MaxScoreDelta: gate.DefaultGateConfig().MaxScoreDelta},
	}
}

// Load reads path (optional) over the defaults, then applies env overrides.
func Load(path string) (*Config, error) {
	cfg := DefaultConfig()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := yaml.Unmarshal(data, cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	cfg.applyEnv()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func (c *Config) applyEnv() {
	c.DBPath = envOr(EnvDB, c.DBPath)
	c.GRPCAddr = envOr(EnvGRPCAddr, c.GRPCAddr)
	c.HTTPAddr = envOr(EnvHTTPAddr, c.HTTPAddr)
	c.CatalogPath = envOr(EnvCatalog, c.CatalogPath)
	c.Log.Level = envOr(EnvLogLevel, c.Log.Level)
}

// Validate checks that the configuration is usable.
func (c *Config) Validate() error {
	if c.DBPath == "" {
		return fmt.Errorf("db_path is required")
	}
	if c.Refine.LearningRate <= 0 {
		return fmt.Errorf("refine.learning_rate must be positive")
	}
	if c.Refine.AnswerReliability < 0 || c.Refine.AnswerReliability > 1 {
		return fmt.Errorf("refine.answer_reliability must be between 0 and 1")
	}
	if c.Refine.AnswerConfidenceStep < 0 || c.Refine.EventConfidenceStep < 0 {
		return fmt.Errorf("refine confidence steps must not be negative")
	}
	if c.Gate.MaxScoreDelta < 0 {
		return fmt.Errorf("gate.max_score_delta must not be negative")
	}
	if _, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level)); err != nil {
		return fmt.Errorf("log.level: %w", err)
	}
	return nil
}

// RefineConfig converts to the engine's config.
func (c *Config) RefineConfig() refine.Config {
	return refine.Config{
		LearningRate:         c.Refine.LearningRate,
		AnswerReliability:    c.Refine.AnswerReliability,
		AnswerConfidenceStep: c.Refine.AnswerConfidenceStep,
		EventConfidenceStep:  c.Refine.EventConfidenceStep,
	}
}

// GateConfig converts to the gate's config.
func (c *Config) GateConfig() gate.GateConfig {
	return gate.GateConfig{MaxScoreDelta: c.Gate.MaxScoreDelta}
}

// Logger builds the process logger writing to w.
func (c *Config) Logger(w io.Writer) zerolog.Logger {
	level, err := zerolog.ParseLevel(strings.ToLower(c.Log.Level))
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	if c.Log.Console {
		w = zerolog.ConsoleWriter{Out: w, NoColor: true}
	}
	return zerolog.New(w).Level(level).With().Timestamp().Logger()
}

func envOr(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
