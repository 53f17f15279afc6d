// Package config loads runtime settings from an optional file and
// IDXSCAN_ environment variables.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment override,
// e.g. IDXSCAN_SCAN_BATCH_SIZE for scan.batch_size
const EnvPrefix = "IDXSCAN"

type Config struct {
	Log     LogConfig     `mapstructure:"log"`
	Scan    ScanConfig    `mapstructure:"scan"`
	Planner PlannerConfig `mapstructure:"planner"`
	Metrics MetricsConfig `mapstructure:"metrics"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	// SeqURL enables the Seq sink when set
	SeqURL string `mapstructure:"seq_url"`
}

type ScanConfig struct {
	// BatchSize is the number of entries an iterator pulls at a time
	BatchSize int `mapstructure:"batch_size"`
}

type PlannerConfig struct {
	// HintCacheSize bounds the parsed table reference cache; 0 disables it
	HintCacheSize int `mapstructure:"hint_cache_size"`
}

type MetricsConfig struct {
	Enabled bool `mapstructure:"enabled"`
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("log.level", "info")
	v.SetDefault("log.seq_url", "")
	v.SetDefault("scan.batch_size", 64)
	v.SetDefault("planner.hint_cache_size", 256)
	v.SetDefault("metrics.enabled", true)
}

// Default returns the built-in settings
func Default() *Config {
	cfg, _ := load(viper.New(), "")
	return cfg
}

// Load reads path (YAML, JSON or TOML by extension) when it is not empty,
// then applies environment overrides over the defaults
func Load(path string) (*Config, error) {
	v := viper.New()
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	return load(v, path)
}

func load(v *viper.Viper, path string) (*Config, error) {
	setDefaults(v)

	if path != "" {
		v.SetConfigFile(path)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("failed to read config %s: %w", path, err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}
	if cfg.Scan.BatchSize <= 0 {
		return nil, fmt.Errorf("scan.batch_size must be positive, got %d", cfg.Scan.BatchSize)
	}
	return &cfg, nil
}
