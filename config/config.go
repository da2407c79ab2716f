package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	Server        ServerConfig
	SMTP          SMTPConfig
	Turnstile     TurnstileConfig
	Session       SessionConfig
	Logging       LoggingConfig
	Observability ObservabilityConfig
	Profiling     ProfilingConfig
}

type ServerConfig struct {
	Port           string
	GinMode        string
	AppEnv         string
	BaseURL        string
	AllowedOrigins []string
}

type SMTPConfig struct {
	Host           string
	Port           int
	Username       string
	Password       string
	FromName       string
	ToAddress      string
	TimeoutSeconds int
}

type TurnstileConfig struct {
	SecretKey      string
	TimeoutSeconds int
}

type SessionConfig struct {
	CookieName   string
	TTLHours     int
	CookieDomain string
	CookieSecure bool
}

type LoggingConfig struct {
	Level string
	Dir   string
}

type ObservabilityConfig struct {
	ExporterEndpoint  string
	ServiceName       string
	ServiceNamespace  string
	ServiceVersion    string
	ServiceInstanceID string
}

type ProfilingConfig struct {
	Enabled               bool
	Endpoint              string
	AppName               string
	SampleTypes           string
	UploadIntervalSeconds int
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	v := viper.New()

	// Set defaults
	v.SetDefault("PORT", "8082")
	v.SetDefault("GIN_MODE", "release")
	v.SetDefault("APP_ENV", "production")
	v.SetDefault("BASE_URL", "https://twt.net.au")
	v.SetDefault("ALLOWED_CORS_ORIGINS", "https://twt.net.au,https://www.twt.net.au")
	v.SetDefault("SMTP_PORT", 465)
	v.SetDefault("SMTP_FROM_NAME", "Together We Thrive")
	v.SetDefault("SMTP_TIMEOUT_SECONDS", 15)
	v.SetDefault("TURNSTILE_TIMEOUT_SECONDS", 10)
	v.SetDefault("SESSION_COOKIE_NAME", "twt_session")
	v.SetDefault("SESSION_TTL_HOURS", 12)
	v.SetDefault("SESSION_COOKIE_DOMAIN", "")
	v.SetDefault("SESSION_COOKIE_SECURE", true)
	v.SetDefault("LOG_LEVEL", "info")
	v.SetDefault("LOG_DIR", "/app/logs")
	v.SetDefault("O11Y_EXPORTER_ENDPOINT", "")
	v.SetDefault("O11Y_SERVICE_NAME", "enquiry-api")
	v.SetDefault("O11Y_SERVICE_NAMESPACE", "twt")
	v.SetDefault("O11Y_SERVICE_VERSION", "1.0.0")
	v.SetDefault("O11Y_PROFILING_ENABLED", false)
	v.SetDefault("O11Y_PROFILING_APP_NAME", "enquiry-api")
	v.SetDefault("O11Y_PROFILING_SAMPLE_TYPES", "cpu,alloc_space,alloc_objects,goroutines,mutex,block")
	v.SetDefault("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS", 15)

	// Automatically read environment variables
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))

	// Read from .env file if it exists
	v.SetConfigName(".env")
	v.SetConfigType("env")
	v.AddConfigPath(".")
	v.AddConfigPath("..")
	_ = v.ReadInConfig() //nolint:errcheck // Ignore error if .env file doesn't exist

	// Parse allowed CORS origins (comma-separated)
	allowedOrigins := []string{}
	originsStr := v.GetString("ALLOWED_CORS_ORIGINS")
	if originsStr != "" {
		for _, origin := range strings.Split(originsStr, ",") {
			origin = strings.TrimSpace(origin)
			if origin != "" {
				allowedOrigins = append(allowedOrigins, origin)
			}
		}
	}

	cfg := &Config{
		Server: ServerConfig{
			Port:           v.GetString("PORT"),
			GinMode:        v.GetString("GIN_MODE"),
			AppEnv:         v.GetString("APP_ENV"),
			BaseURL:        v.GetString("BASE_URL"),
			AllowedOrigins: allowedOrigins,
		},
		SMTP: SMTPConfig{
			Host:           v.GetString("SMTP_HOST"),
			Port:           v.GetInt("SMTP_PORT"),
			Username:       v.GetString("SMTP_USERNAME"),
			Password:       v.GetString("SMTP_PASSWORD"),
			FromName:       v.GetString("SMTP_FROM_NAME"),
			ToAddress:      v.GetString("MAIL_TO_ADDRESS"),
			TimeoutSeconds: v.GetInt("SMTP_TIMEOUT_SECONDS"),
		},
		Turnstile: TurnstileConfig{
			SecretKey:      v.GetString("TURNSTILE_SECRET_KEY"),
			TimeoutSeconds: v.GetInt("TURNSTILE_TIMEOUT_SECONDS"),
		},
		Session: SessionConfig{
			CookieName:   v.GetString("SESSION_COOKIE_NAME"),
			TTLHours:     v.GetInt("SESSION_TTL_HOURS"),
			CookieDomain: v.GetString("SESSION_COOKIE_DOMAIN"),
			CookieSecure: v.GetBool("SESSION_COOKIE_SECURE"),
		},
		Logging: LoggingConfig{
			Level: v.GetString("LOG_LEVEL"),
			Dir:   v.GetString("LOG_DIR"),
		},
		Observability: ObservabilityConfig{
			ExporterEndpoint:  v.GetString("O11Y_EXPORTER_ENDPOINT"),
			ServiceName:       v.GetString("O11Y_SERVICE_NAME"),
			ServiceNamespace:  v.GetString("O11Y_SERVICE_NAMESPACE"),
			ServiceVersion:    v.GetString("O11Y_SERVICE_VERSION"),
			ServiceInstanceID: v.GetString("SERVICE_INSTANCE_ID"),
		},
		Profiling: ProfilingConfig{
			Enabled:               v.GetBool("O11Y_PROFILING_ENABLED"),
			Endpoint:              v.GetString("O11Y_PROFILING_ENDPOINT"),
			AppName:               v.GetString("O11Y_PROFILING_APP_NAME"),
			SampleTypes:           v.GetString("O11Y_PROFILING_SAMPLE_TYPES"),
			UploadIntervalSeconds: v.GetInt("O11Y_PROFILING_UPLOAD_INTERVAL_SECONDS"),
		},
	}

	// Validate required fields
	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// Validate checks if required configuration values are set
func (c *Config) Validate() error {
	// SMTP relay settings: without a working relay the service cannot deliver anything
	if c.SMTP.Host == "" {
		return fmt.Errorf("SMTP_HOST is required")
	}
	if c.SMTP.Username == "" {
		return fmt.Errorf("SMTP_USERNAME is required")
	}
	if c.SMTP.Password == "" {
		return fmt.Errorf("SMTP_PASSWORD is required")
	}
	if c.SMTP.ToAddress == "" {
		return fmt.Errorf("MAIL_TO_ADDRESS is required")
	}
	if c.SMTP.Port <= 0 {
		return fmt.Errorf("SMTP_PORT must be a positive integer")
	}

	// Turnstile configuration
	if c.Turnstile.SecretKey == "" {
		return fmt.Errorf("TURNSTILE_SECRET_KEY is required")
	}

	// Server configuration
	if c.Server.Port == "" {
		return fmt.Errorf("PORT is required")
	}
	if len(c.Server.AllowedOrigins) == 0 {
		return fmt.Errorf("ALLOWED_CORS_ORIGINS is required")
	}

	if c.Session.TTLHours <= 0 {
		return fmt.Errorf("SESSION_TTL_HOURS must be a positive integer")
	}

	if c.Profiling.Enabled && c.Profiling.Endpoint == "" {
		return fmt.Errorf("O11Y_PROFILING_ENDPOINT is required when profiling is enabled")
	}

	return nil
}

// IsDevelopment returns true if running in development mode
func (c *Config) IsDevelopment() bool {
	return c.Server.AppEnv == "development" || c.Server.GinMode == "debug"
}

// IsProduction returns true if running in production mode
func (c *Config) IsProduction() bool {
	return c.Server.AppEnv == "production"
}
