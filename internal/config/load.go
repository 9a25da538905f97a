package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable the loader reads,
// e.g. COURSEGEN_DATABASE_URL for database.url.
const EnvPrefix = "COURSEGEN"

var defaults = map[string]any{
	"server.port":                       8080,
	"server.log_level":                  "info",
	"server.shutdown_timeout_seconds":   10,
	"server.generate_limit_per_hour":    20,
	"database.url":                      "",
	"database.max_open_conns":           10,
	"database.max_idle_conns":           5,
	"auth.jwt_secret":                   "",
	"auth.token_lifetime_minutes":       60,
	"llm.gemini_api_key":                "",
	"llm.model_name":                    "gemini-2.0-flash",
	"llm.max_retries":                   3,
	"llm.retry_delay_seconds":           2,
	"redis.addr":                        "",
	"redis.password":                    "",
	"redis.db":                          0,
	"redis.channel_prefix":              "coursegen",
	"task.worker_count":                 2,
	"task.queue_size":                   100,
	"task.stuck_job_age_minutes":        30,
	"task.stuck_check_interval_minutes": 5,
	"pipeline.stage_timeout_seconds":    120,
	"pipeline.lease_ttl_seconds":        900,
}

// Load configuration from environment variables and optionally a config.yaml
// in the working directory. Environment variables take precedence over values
// from the file. Returns a populated Config or an error if loading or
// validation fails.
func Load() (*Config, error) {
	v := viper.New()

	// Every key needs a default so AutomaticEnv can resolve it during Unmarshal.
	for key, value := range defaults {
		v.SetDefault(key, value)
	}

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return &cfg, nil
}
