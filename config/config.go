// Package config loads the decoder configuration: feature lines, weights, search options
// and the translator and server settings. Values come from defaults, then a YAML file,
// then SMT_* environment variables.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"runtime"
	"strconv"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/teatak/smt/decoder"
	"github.com/teatak/smt/ff"
)

// Config is the complete decoder configuration.
type Config struct {
	// Features are feature lines in registration order, e.g.
	// "PhraseDictionaryMemory name=TM path=pt.txt num-features=4".
	Features []string `yaml:"features"`
	// Weights maps instance names to their weights.
	Weights   map[string][]float64 `yaml:"weights"`
	Search    decoder.Options      `yaml:"search"`
	Translate TranslateConfig      `yaml:"translate"`
	Server    ServerConfig         `yaml:"server"`
	LogLevel  string               `yaml:"log_level"`
}

// TranslateConfig controls sentence batches.
type TranslateConfig struct {
	// Policy is skip, passthrough or fail.
	Policy  string `yaml:"policy"`
	Workers int    `yaml:"workers"`
}

// ServerConfig controls the HTTP server.
type ServerConfig struct {
	Addr string `yaml:"addr"`
}

// Default returns a configuration with default search and service settings and no
// features.
func Default() Config {
	return Config{
		Weights: make(map[string][]float64),
		Search:  decoder.DefaultOptions(),
		Translate: TranslateConfig{
			Policy:  "skip",
			Workers: runtime.NumCPU(),
		},
		Server:   ServerConfig{Addr: ":8080"},
		LogLevel: "info",
	}
}

// Load reads the YAML file at path over the defaults, applies environment overrides
// and validates the result. An empty path skips the file.
func Load(path string) (Config, error) {
	cfg := Default()
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return cfg, fmt.Errorf("load config file: %w", err)
		}
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return cfg, &ff.ConfigError{Key: path, Reason: err.Error()}
		}
	}
	loadFromEnv(&cfg)
	if err := cfg.Validate(); err != nil {
		return cfg, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// loadFromEnv applies SMT_* overrides. Unparsable values are ignored.
func loadFromEnv(cfg *Config) {
	if v := os.Getenv("SMT_STACK_SIZE"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Search.StackSize = i
		}
	}
	if v := os.Getenv("SMT_BEAM_WIDTH"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			cfg.Search.BeamWidth = f
		}
	}
	if v := os.Getenv("SMT_DISTORTION_LIMIT"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Search.DistortionLimit = i
		}
	}
	if v := os.Getenv("SMT_ALGORITHM"); v != "" {
		cfg.Search.Algorithm = decoder.Algorithm(v)
	}
	if v := os.Getenv("SMT_TIME_LIMIT"); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			cfg.Search.TimeLimit = d
		}
	}
	if v := os.Getenv("SMT_WORKERS"); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			cfg.Translate.Workers = i
		}
	}
	if v := os.Getenv("SMT_LOG_LEVEL"); v != "" {
		cfg.LogLevel = v
	}
}

// Validate checks every section. Errors match ff.ErrConfig.
func (c Config) Validate() error {
	if len(c.Features) == 0 {
		return &ff.ConfigError{Key: "features", Reason: "at least one feature line is required"}
	}
	if err := c.Search.Validate(); err != nil {
		return err
	}
	switch c.Translate.Policy {
	case "skip", "passthrough", "fail":
	default:
		return &ff.ConfigError{Key: "translate.policy", Reason: "must be skip, passthrough or fail, got " + c.Translate.Policy}
	}
	if c.Translate.Workers < 1 {
		return &ff.ConfigError{Key: "translate.workers", Reason: "must be >= 1"}
	}
	if _, err := c.SlogLevel(); err != nil {
		return &ff.ConfigError{Key: "log_level", Reason: err.Error()}
	}
	return nil
}

// SlogLevel parses LogLevel (debug, info, warn, error).
func (c Config) SlogLevel() (slog.Level, error) {
	var level slog.Level
	err := level.UnmarshalText([]byte(c.LogLevel))
	return level, err
}
