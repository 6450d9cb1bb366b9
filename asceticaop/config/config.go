package config

import (
	"context"
	_ "embed"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/pkg/errors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"gopkg.in/yaml.v3"
)

//go:embed default_config.yaml
var defaultConfigYAML []byte

// MaxYAMLSize bounds the size of a configuration document.
const MaxYAMLSize = 1 << 20

var ErrInvalidConfig = errors.New("invalid engine configuration")

var tracer = otel.Tracer("asceticaop.config")

// Config is the engine configuration. Immutable after loading.
type Config struct {
	Logging  LoggingConfig  `yaml:"logging"`
	Metrics  MetricsConfig  `yaml:"metrics"`
	Registry RegistryConfig `yaml:"registry"`
	Cflow    CflowConfig    `yaml:"cflow"`
}

type LoggingConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`
	// Format is text or json.
	Format string `yaml:"format"`
}

type MetricsConfig struct {
	Enabled bool `yaml:"enabled"`
}

type RegistryConfig struct {
	// ExpressionCacheSize bounds the number of anonymous expressions kept per
	// registry, keyed by namespace and source text.
	ExpressionCacheSize int `yaml:"expression_cache_size"`
}

type CflowConfig struct {
	// MaxDepth limits the number of control-flow frames of one goroutine.
	// Zero means unlimited.
	MaxDepth int `yaml:"max_depth"`
}

// Default returns the embedded default configuration.
func Default() *Config {
	cfg, err := decode(nil)
	if err != nil {
		panic(err)
	}
	return cfg
}

// Load parses a YAML document on top of the embedded defaults and validates
// the result.
func Load(ctx context.Context, data []byte) (*Config, error) {
	_, span := tracer.Start(ctx, "config.Load")
	defer span.End()

	if len(data) > MaxYAMLSize {
		return nil, errors.Wrapf(ErrInvalidConfig, "document exceeds maximum size (%d > %d)", len(data), MaxYAMLSize)
	}
	cfg, err := decode(data)
	if err != nil {
		return nil, err
	}

	span.SetAttributes(
		attribute.String("logging.level", cfg.Logging.Level),
		attribute.Bool("metrics.enabled", cfg.Metrics.Enabled),
		attribute.Int("registry.expression_cache_size", cfg.Registry.ExpressionCacheSize),
		attribute.Int("cflow.max_depth", cfg.Cflow.MaxDepth),
	)
	slog.Debug("engine config loaded",
		slog.String("logging.level", cfg.Logging.Level),
		slog.Bool("metrics.enabled", cfg.Metrics.Enabled),
		slog.Int("registry.expression_cache_size", cfg.Registry.ExpressionCacheSize),
	)
	return cfg, nil
}

func LoadFile(ctx context.Context, path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, errors.Wrapf(err, "reading config %s", path)
	}
	return Load(ctx, data)
}

func decode(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(defaultConfigYAML, &cfg); err != nil {
		return nil, errors.Wrap(err, "parsing embedded defaults")
	}
	if len(data) > 0 {
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, errors.Wrapf(ErrInvalidConfig, "parsing YAML: %v", err)
		}
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func (c *Config) Validate() error {
	if _, err := parseLevel(c.Logging.Level); err != nil {
		return err
	}
	switch strings.ToLower(c.Logging.Format) {
	case "text", "json":
	default:
		return errors.Wrapf(ErrInvalidConfig, "logging.format must be text or json, got %q", c.Logging.Format)
	}
	if c.Registry.ExpressionCacheSize < 0 {
		return errors.Wrapf(ErrInvalidConfig, "registry.expression_cache_size must not be negative, got %d", c.Registry.ExpressionCacheSize)
	}
	if c.Cflow.MaxDepth < 0 {
		return errors.Wrapf(ErrInvalidConfig, "cflow.max_depth must not be negative, got %d", c.Cflow.MaxDepth)
	}
	return nil
}

// Logger builds a structured logger writing to w.
func (c *Config) Logger(w io.Writer) *slog.Logger {
	level, err := parseLevel(c.Logging.Level)
	if err != nil {
		level = slog.LevelInfo
	}
	opts := &slog.HandlerOptions{Level: level}
	if strings.EqualFold(c.Logging.Format, "json") {
		return slog.New(slog.NewJSONHandler(w, opts))
	}
	return slog.New(slog.NewTextHandler(w, opts))
}

func parseLevel(level string) (slog.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug, nil
	case "info", "":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	}
	return 0, errors.Wrapf(ErrInvalidConfig, "logging.level %q", level)
}
