// Package config loads the engine core settings from the environment and,
// optionally, a YAML file. Environment variables always win over the file.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"slices"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"gopkg.in/yaml.v3"

	"github.com/temify/core"
	"github.com/temify/core/event"
	"github.com/temify/core/event/payload"
	"github.com/temify/core/validate"
)

// EnvPrefix prefixes every environment variable read by Load.
const EnvPrefix = "TEMIFY_"

// Config holds all configuration for the engine core.
type Config struct {
	Log LogConfig `yaml:"log" envPrefix:"LOG_"`
	Bus BusConfig `yaml:"bus" envPrefix:"BUS_"`
}

// LogConfig selects the level and encoding of the process logger.
type LogConfig struct {
	Level string `yaml:"level" env:"LEVEL"`
	JSON  bool   `yaml:"json" env:"JSON"`
}

// BusConfig maps to event.Bus options.
type BusConfig struct {
	Name            string        `yaml:"name" env:"NAME"`
	Tracing         bool          `yaml:"tracing" env:"TRACING"`
	Metrics         bool          `yaml:"metrics" env:"METRICS"`
	FailureLogRate  float64       `yaml:"failure_log_rate" env:"FAILURE_LOG_RATE"`
	FailureLogBurst int           `yaml:"failure_log_burst" env:"FAILURE_LOG_BURST"`
	DetachedTimeout time.Duration `yaml:"detached_timeout" env:"DETACHED_TIMEOUT"`
	PayloadCodec    string        `yaml:"payload_codec" env:"PAYLOAD_CODEC"`
}

// Default returns the configuration used when nothing is set.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info"},
		Bus: BusConfig{
			Name:            event.DefaultBusName,
			Tracing:         true,
			Metrics:         true,
			FailureLogRate:  event.DefaultFailureLogRate,
			FailureLogBurst: event.DefaultFailureLogBurst,
			PayloadCodec:    payload.Default().ContentType(),
		},
	}
}

// Load reads configuration from environment variables on top of Default.
func Load() (*Config, error) {
	cfg := Default()
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadFile reads the YAML file at path on top of Default, then applies
// environment overrides.
func LoadFile(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	cfg := Default()
	if err := yaml.Unmarshal(b, cfg); err != nil {
		return nil, core.NewConfigurationError("invalid config file", map[string]any{
			"path":  path,
			"cause": err.Error(),
		})
	}
	if err := parseEnv(cfg); err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

func parseEnv(cfg *Config) error {
	if err := env.ParseWithOptions(cfg, env.Options{Prefix: EnvPrefix}); err != nil {
		return core.NewConfigurationError("invalid environment", map[string]any{
			"cause": err.Error(),
		})
	}
	return nil
}

var logLevels = []string{"debug", "info", "warn", "error"}

var rules = validate.New[*Config]().
	Rule(validate.Custom[*Config]("log.level", func(v any) bool {
		s, _ := v.(string)
		return slices.Contains(logLevels, strings.ToLower(s))
	}, "log.level must be one of "+strings.Join(logLevels, ", "), "INVALID_VALUE")).
	Rule(validate.Required[*Config]("bus.name", "")).
	Rule(validate.Min[*Config]("bus.failure_log_rate", 0, "")).
	Rule(validate.Min[*Config]("bus.failure_log_burst", 1, "")).
	Rule(validate.Min[*Config]("bus.detached_timeout", 0, "")).
	Rule(validate.Custom[*Config]("bus.payload_codec", func(v any) bool {
		ct, _ := v.(string)
		_, err := payload.Lookup(ct)
		return err == nil
	}, "bus.payload_codec must be a registered content type", "UNKNOWN_CODEC"))

// Validate reports every invalid setting at once as a configuration
// *core.Error; validate.FieldErrors returns the list.
func (c *Config) Validate() error {
	res := rules.Validate(c)
	if res.Valid {
		return nil
	}
	return core.NewConfigurationError("invalid configuration", validate.Details(res.Errors))
}

// BusOptions converts the bus settings to event options. A nil logger
// keeps the bus default; an unknown payload codec keeps JSON.
func (c *Config) BusOptions(logger *slog.Logger) []event.Option {
	codec, err := payload.Lookup(c.Bus.PayloadCodec)
	if err != nil {
		codec = payload.Default()
	}
	return []event.Option{
		event.WithName(c.Bus.Name),
		event.WithLogger(logger),
		event.WithTracing(c.Bus.Tracing),
		event.WithMetrics(c.Bus.Metrics),
		event.WithFailureLogLimit(c.Bus.FailureLogRate, c.Bus.FailureLogBurst),
		event.WithDetachedTimeout(c.Bus.DetachedTimeout),
		event.WithPayloadCodec(codec),
	}
}
