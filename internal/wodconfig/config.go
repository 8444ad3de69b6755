// Package wodconfig loads runtime configuration in the same
// defaults → file → environment precedence the teacher's layered config
// resolves by hand (internal/config/layered.go), using viper — the
// ecosystem library this pack reaches for wherever a CLI needs layered
// config (cmd/cobra_cli.go) — instead of reimplementing the merge logic.
package wodconfig

import (
	"errors"
	"io/fs"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config is the set of user-tunable runtime knobs.
type Config struct {
	MaxIterations      int           `mapstructure:"max_iterations"`
	MatchCacheSize     int           `mapstructure:"match_cache_size"`
	LogLevel           string        `mapstructure:"log_level"`
	MetricsEnabled     bool          `mapstructure:"metrics_enabled"`
	TracingEnabled     bool          `mapstructure:"tracing_enabled"`
	TickInterval       time.Duration `mapstructure:"tick_interval"`
	BridgeListenAddr   string        `mapstructure:"bridge_listen_addr"`
}

// EnvPrefix is the prefix wodctl expects for environment overrides, e.g.
// WODWIKI_MAX_ITERATIONS.
const EnvPrefix = "WODWIKI"

// Defaults returns the baked-in config before any file/env layering is
// applied.
func Defaults() Config {
	return Config{
		MaxIterations:    100,
		MatchCacheSize:   256,
		LogLevel:         "info",
		MetricsEnabled:   false,
		TracingEnabled:   false,
		TickInterval:     250 * time.Millisecond,
		BridgeListenAddr: "127.0.0.1:8089",
	}
}

// Load builds a viper instance layered defaults → configPath (if non-empty)
// → environment, and decodes it into a Config. configPath may name a YAML,
// JSON, or TOML file; an empty path, or a path to a file that does not
// exist, skips the file layer.
func Load(configPath string) (Config, error) {
	v := viper.New()

	defaults := Defaults()
	v.SetDefault("max_iterations", defaults.MaxIterations)
	v.SetDefault("match_cache_size", defaults.MatchCacheSize)
	v.SetDefault("log_level", defaults.LogLevel)
	v.SetDefault("metrics_enabled", defaults.MetricsEnabled)
	v.SetDefault("tracing_enabled", defaults.TracingEnabled)
	v.SetDefault("tick_interval", defaults.TickInterval)
	v.SetDefault("bridge_listen_addr", defaults.BridgeListenAddr)

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			if _, ok := err.(viper.ConfigFileNotFoundError); !ok && !errors.Is(err, fs.ErrNotExist) {
				return Config{}, err
			}
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, err
	}
	return cfg, nil
}
