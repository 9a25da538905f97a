package config

import "time"

// Config holds all application configuration.
// It organizes settings into logical groups for better maintainability.
type Config struct {
	Server   ServerConfig   `mapstructure:"server" validate:"required"`
	Database DatabaseConfig `mapstructure:"database" validate:"required"`
	Auth     AuthConfig     `mapstructure:"auth" validate:"required"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Redis    RedisConfig    `mapstructure:"redis"`
	Task     TaskConfig     `mapstructure:"task" validate:"required"`
	Pipeline PipelineConfig `mapstructure:"pipeline" validate:"required"`
}

// ServerConfig contains all server-related configuration settings.
type ServerConfig struct {
	Port                   int    `mapstructure:"port" validate:"required,gt=0,lt=65536"`
	LogLevel               string `mapstructure:"log_level" validate:"required,oneof=debug info warn error"`
	ShutdownTimeoutSeconds int    `mapstructure:"shutdown_timeout_seconds" validate:"gt=0"`

	// GenerateLimitPerHour caps generation requests per user. Enforced only
	// when Redis is configured; 0 disables the limit.
	GenerateLimitPerHour int `mapstructure:"generate_limit_per_hour" validate:"gte=0"`
}

// DatabaseConfig contains all database-related configuration settings.
type DatabaseConfig struct {
	URL          string `mapstructure:"url" validate:"required,url"`
	MaxOpenConns int    `mapstructure:"max_open_conns" validate:"gt=0"`
	MaxIdleConns int    `mapstructure:"max_idle_conns" validate:"gte=0"`
}

// AuthConfig contains all authentication and authorization settings.
type AuthConfig struct {
	JWTSecret            string `mapstructure:"jwt_secret" validate:"required,min=32"`
	TokenLifetimeMinutes int    `mapstructure:"token_lifetime_minutes" validate:"gt=0"`
}

// LLMConfig contains the content generation provider settings.
// An empty GeminiAPIKey selects the built-in template generator.
type LLMConfig struct {
	GeminiAPIKey      string `mapstructure:"gemini_api_key"`
	ModelName         string `mapstructure:"model_name" validate:"required"`
	MaxRetries        int    `mapstructure:"max_retries" validate:"gte=0,lte=10"`
	RetryDelaySeconds int    `mapstructure:"retry_delay_seconds" validate:"gte=1,lte=60"`
}

// RedisConfig configures the course lease and job progress notifications.
// An empty Addr keeps both in process.
type RedisConfig struct {
	Addr          string `mapstructure:"addr" validate:"omitempty,hostname_port"`
	Password      string `mapstructure:"password"`
	DB            int    `mapstructure:"db" validate:"gte=0"`
	ChannelPrefix string `mapstructure:"channel_prefix" validate:"required"`
}

// TaskConfig contains settings for the background job runner.
type TaskConfig struct {
	WorkerCount               int `mapstructure:"worker_count" validate:"required,gt=0"`
	QueueSize                 int `mapstructure:"queue_size" validate:"required,gt=0"`
	StuckJobAgeMinutes        int `mapstructure:"stuck_job_age_minutes" validate:"required,gt=0"`
	StuckCheckIntervalMinutes int `mapstructure:"stuck_check_interval_minutes" validate:"required,gt=0"`
}

// PipelineConfig bounds a single course generation run.
type PipelineConfig struct {
	StageTimeoutSeconds int `mapstructure:"stage_timeout_seconds" validate:"required,gt=0"`
	LeaseTTLSeconds     int `mapstructure:"lease_ttl_seconds" validate:"required,gtfield=StageTimeoutSeconds"`
}

// StageTimeout returns the per-stage deadline.
func (c PipelineConfig) StageTimeout() time.Duration {
	return time.Duration(c.StageTimeoutSeconds) * time.Second
}

// LeaseTTL returns how long a course lease survives without a refresh.
func (c PipelineConfig) LeaseTTL() time.Duration {
	return time.Duration(c.LeaseTTLSeconds) * time.Second
}
