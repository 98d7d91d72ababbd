// Package config loads ambient CLI settings from environment and optional
// config file.
//
// Job-level settings (models, corpus paths, retry policy) live in the job
// manifest (pkg/manifest); this package only covers process-level concerns:
// logging, the report server, and HTTP client behavior.
package config

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/viper"
)

// Config holds ambient process settings.
type Config struct {
	Logging LoggingConfig `mapstructure:"logging"`
	Server  ServerConfig  `mapstructure:"server"`
	HTTP    HTTPConfig    `mapstructure:"http"`
}

// LoggingConfig controls the CLI logger.
type LoggingConfig struct {
	// Level is one of debug/info/warn/error. Default: info.
	Level string `mapstructure:"level"`

	// Profile selects the encoder: CONSOLE or STRUCTURED. Default: CONSOLE.
	Profile string `mapstructure:"profile"`
}

// ServerConfig controls the report server started by `gradebench serve`.
type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port"`
	ReadTimeout     time.Duration `mapstructure:"read_timeout"`
	WriteTimeout    time.Duration `mapstructure:"write_timeout"`
	IdleTimeout     time.Duration `mapstructure:"idle_timeout"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout"`
}

// HTTPConfig controls outbound HTTP behavior for provider calls.
type HTTPConfig struct {
	// Timeout is the per-request client timeout. Zero leaves the
	// provider library default in place.
	Timeout time.Duration `mapstructure:"timeout"`
}

// Load reads configuration from GRADEBENCH_* environment variables and an
// optional gradebench.yaml in the working directory, applying defaults for
// everything unset.
func Load(ctx context.Context) (*Config, error) {
	v := viper.New()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.profile", "CONSOLE")
	v.SetDefault("server.host", "localhost")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 30*time.Second)
	v.SetDefault("server.idle_timeout", 120*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("http.timeout", 120*time.Second)

	v.SetEnvPrefix("GRADEBENCH")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName("gradebench")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		// Missing config file is fine; anything else is a real problem.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	decodeHook := mapstructure.ComposeDecodeHookFunc(
		mapstructure.StringToTimeDurationHookFunc(),
		mapstructure.StringToSliceHookFunc(","),
	)
	if err := v.Unmarshal(&cfg, viper.DecodeHook(decodeHook)); err != nil {
		return nil, fmt.Errorf("decode config: %w", err)
	}

	return &cfg, nil
}
