// Package config loads treeinv settings from a project file and the environment.
package config

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/spf13/viper"

	"github.com/arjunmahishi/treeinv/output"
)

// FileName is the config file looked up in the project directory, without extension.
const FileName = ".treeinv"

// EnvPrefix prefixes every environment override, e.g. TREEINV_MAX_BYTES.
const EnvPrefix = "TREEINV"

// Config is the project-level configuration. Command-line flags take precedence
// over every field.
type Config struct {
	Languages []string `yaml:"languages" mapstructure:"languages"`
	Include   []string `yaml:"include" mapstructure:"include"`
	Exclude   []string `yaml:"exclude" mapstructure:"exclude"`
	Gitignore bool     `yaml:"gitignore" mapstructure:"gitignore"`
	MaxBytes  int64    `yaml:"max_bytes" mapstructure:"max_bytes"`
	Jobs      int      `yaml:"jobs" mapstructure:"jobs"` // 0 means one worker per CPU
	Format    string   `yaml:"format" mapstructure:"format"`
	LogLevel  string   `yaml:"log_level" mapstructure:"log_level"`
	CacheSize int      `yaml:"cache_size" mapstructure:"cache_size"` // compiled queries kept per run
}

// Default returns a configuration with sensible defaults.
func Default() *Config {
	return &Config{
		Gitignore: true,
		MaxBytes:  2 * 1024 * 1024,
		Format:    string(output.FormatJSON),
		LogLevel:  "warn",
		CacheSize: 256,
	}
}

var keys = []string{
	"languages", "include", "exclude", "gitignore", "max_bytes",
	"jobs", "format", "log_level", "cache_size",
}

// Load reads dir/.treeinv.yaml (or .yml) when present. Priority, lowest to highest:
// defaults, config file, TREEINV_* environment variables.
func Load(dir string) (*Config, error) {
	v := viper.New()
	v.SetConfigName(FileName)
	v.SetConfigType("yaml")
	v.AddConfigPath(dir)

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	for _, key := range keys {
		_ = v.BindEnv(key)
	}

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper) {
	d := Default()
	v.SetDefault("languages", d.Languages)
	v.SetDefault("include", d.Include)
	v.SetDefault("exclude", d.Exclude)
	v.SetDefault("gitignore", d.Gitignore)
	v.SetDefault("max_bytes", d.MaxBytes)
	v.SetDefault("jobs", d.Jobs)
	v.SetDefault("format", d.Format)
	v.SetDefault("log_level", d.LogLevel)
	v.SetDefault("cache_size", d.CacheSize)
}

// Validate reports every invalid field at once.
func (c *Config) Validate() error {
	var errs []error
	if c.MaxBytes < 0 {
		errs = append(errs, fmt.Errorf("max_bytes must not be negative, got %d", c.MaxBytes))
	}
	if c.Jobs < 0 {
		errs = append(errs, fmt.Errorf("jobs must not be negative, got %d", c.Jobs))
	}
	if c.CacheSize < 0 {
		errs = append(errs, fmt.Errorf("cache_size must not be negative, got %d", c.CacheSize))
	}
	if _, err := output.ParseFormat(c.Format); err != nil {
		errs = append(errs, err)
	}
	if _, err := ParseLevel(c.LogLevel); err != nil {
		errs = append(errs, err)
	}
	return errors.Join(errs...)
}

// ParseLevel maps a level name to its slog level. Empty selects warn.
func ParseLevel(s string) (slog.Level, error) {
	if s == "" {
		return slog.LevelWarn, nil
	}
	var level slog.Level
	if err := level.UnmarshalText([]byte(s)); err != nil {
		return 0, fmt.Errorf("unknown log_level %q", s)
	}
	return level, nil
}
