// Package config loads quadbench settings from flags, environment, and an
// optional quadbench.yaml file through viper.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"runtime"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/alexshd/quadbench"
)

const (
	// FileName is the config file base name searched in "." and
	// ~/.config/quadbench.
	FileName = "quadbench"

	// EnvPrefix prefixes environment overrides, e.g. QUADBENCH_WORKERS.
	EnvPrefix = "QUADBENCH"
)

// Output formats accepted by Config.Format.
const (
	FormatTable = "table"
	FormatJSON  = "json"
	FormatYAML  = "yaml"
)

// Config holds every setting the CLI reads.
type Config struct {
	// Workers is the Runtime pool size for parallel rules.
	Workers int `mapstructure:"workers" yaml:"workers"`

	// Grain is the minimum number of terms per parallel chunk.
	Grain int64 `mapstructure:"grain" yaml:"grain"`

	// Intervals is the default interval count n.
	Intervals int64 `mapstructure:"intervals" yaml:"intervals"`

	// LogLevel is one of debug, info, warn, error.
	LogLevel string `mapstructure:"log_level" yaml:"log_level"`

	// HistoryPath is the SQLite file runs are recorded in. Empty disables
	// recording.
	HistoryPath string `mapstructure:"history_path" yaml:"history_path"`

	// MetricsFile is a Prometheus textfile written after each command.
	// Empty disables it.
	MetricsFile string `mapstructure:"metrics_file" yaml:"metrics_file"`

	// Format selects table, json, or yaml output.
	Format string `mapstructure:"format" yaml:"format"`
}

// Default returns the built-in settings.
func Default() Config {
	return Config{
		Workers:     runtime.GOMAXPROCS(0),
		Grain:       1024,
		Intervals:   10000,
		LogLevel:    "info",
		HistoryPath: "",
		MetricsFile: "",
		Format:      FormatTable,
	}
}

// SetDefaults registers Default() with v so unset keys resolve.
func SetDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("workers", d.Workers)
	v.SetDefault("grain", d.Grain)
	v.SetDefault("intervals", d.Intervals)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("history_path", d.HistoryPath)
	v.SetDefault("metrics_file", d.MetricsFile)
	v.SetDefault("format", d.Format)
}

// BindFlags binds each flag in fs whose name matches a config key. Flag
// names use dashes where keys use underscores ("log-level" → log_level).
func BindFlags(v *viper.Viper, fs *pflag.FlagSet) error {
	var err error
	fs.VisitAll(func(f *pflag.Flag) {
		if err != nil {
			return
		}
		key := strings.ReplaceAll(f.Name, "-", "_")
		if !isKey(key) {
			return
		}
		if bindErr := v.BindPFlag(key, f); bindErr != nil {
			err = fmt.Errorf("binding flag %s: %w", f.Name, bindErr)
		}
	})
	return err
}

func isKey(key string) bool {
	switch key {
	case "workers", "grain", "intervals", "log_level", "history_path", "metrics_file", "format":
		return true
	}
	return false
}

// Init points v at cfgFile, or at quadbench.yaml in the working directory or
// ~/.config/quadbench, and enables QUADBENCH_* environment overrides. It
// returns the config file used, or "" when none was found.
func Init(v *viper.Viper, cfgFile string) (string, error) {
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName(FileName)
		v.SetConfigType("yaml")
		v.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			v.AddConfigPath(filepath.Join(home, ".config", FileName))
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) {
			return "", nil
		}
		return "", fmt.Errorf("reading config: %w", err)
	}
	return v.ConfigFileUsed(), nil
}

// Load decodes v into a Config and validates it.
func Load(v *viper.Viper) (Config, error) {
	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	cfg.Format = strings.ToLower(strings.TrimSpace(cfg.Format))
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate reports the first setting out of range.
func (c Config) Validate() error {
	if c.Workers < 1 {
		return fmt.Errorf("workers must be at least 1, got %d", c.Workers)
	}
	if c.Grain < 1 {
		return fmt.Errorf("grain must be at least 1, got %d", c.Grain)
	}
	if c.Intervals < 1 {
		return fmt.Errorf("intervals must be at least 1, got %d", c.Intervals)
	}
	if _, err := c.Level(); err != nil {
		return err
	}
	switch c.Format {
	case FormatTable, FormatJSON, FormatYAML:
	default:
		return fmt.Errorf("format must be table, json, or yaml, got %q", c.Format)
	}
	return nil
}

// Level parses LogLevel.
func (c Config) Level() (slog.Level, error) {
	var lvl slog.Level
	if err := lvl.UnmarshalText([]byte(c.LogLevel)); err != nil {
		return 0, fmt.Errorf("log_level: %w", err)
	}
	return lvl, nil
}

// Runtime returns the pool settings for quadbench.NewRuntime.
func (c Config) Runtime() quadbench.RuntimeConfig {
	return quadbench.RuntimeConfig{Workers: c.Workers, Grain: c.Grain}
}
