package app

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/aussiebroadwan/smartbroker/pkg/httpx"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
)

// Config is the broker's runtime configuration. Defaults are listed in
// LoadConfig.
type Config struct {
	// OAuth client registration with the EHR
	ClientID    string   `validate:"required"`
	Scope       string   `validate:"required"`
	RedirectURI string   `validate:"required,url"`
	FrontendURL string   `validate:"required,url"`
	CORSOrigins []string `validate:"dive,required"`
	Port        int      `validate:"min=1,max=65535"`

	// Optional: sent as client_secret when set
	ClientSecret string

	// Outbound call bounds. Tokens within RefreshMargin of expiry count as stale.
	DiscoveryTimeout time.Duration `validate:"gt=0"`
	TokenTimeout     time.Duration `validate:"gt=0"`
	FetchTimeout     time.Duration `validate:"gt=0"`
	RefreshMargin    time.Duration `validate:"gte=0"`

	Env                 string
	LogLevel            string        `validate:"oneof=debug info warn warning error"`
	LogFormat           string        `validate:"oneof=json text"`
	ShutdownGracePeriod time.Duration `validate:"gt=0"`

	RateLimits httpx.RateLimits `validate:"-"`
}

// LoadConfig reads the configuration from the environment, after loading a
// .env file from the working directory if one exists. Variables already set
// in the environment win over the file.
//
//	SMART_CLIENT_ID        my_web_app
//	SMART_CLIENT_SECRET    (empty)
//	SMART_SCOPE            openid fhirUser patient/*.read
//	BACKEND_PORT           9001
//	SMART_REDIRECT_URI     http://localhost:{port}/callback
//	FRONTEND_URL           http://localhost:3002
//	CORS_ALLOWED_ORIGINS   FRONTEND_URL, comma separated
//	DISCOVERY_TIMEOUT      10s
//	TOKEN_TIMEOUT          30s
//	FETCH_TIMEOUT          30s
//	TOKEN_REFRESH_MARGIN   30s
//	ENV, LOG_LEVEL, LOG_FORMAT  dev, info, json
//	SHUTDOWN_GRACE_PERIOD  10s
func LoadConfig() (Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load .env: %w", err)
	}

	port := getEnvIntOrDefault("BACKEND_PORT", 9001)
	frontend := getEnvOrDefault("FRONTEND_URL", "http://localhost:3002")

	cfg := Config{
		ClientID:     getEnvOrDefault("SMART_CLIENT_ID", "my_web_app"),
		ClientSecret: os.Getenv("SMART_CLIENT_SECRET"),
		Scope:        getEnvOrDefault("SMART_SCOPE", "openid fhirUser patient/*.read"),
		RedirectURI:  getEnvOrDefault("SMART_REDIRECT_URI", fmt.Sprintf("http://localhost:%d/callback", port)),
		FrontendURL:  frontend,
		CORSOrigins:  getEnvListOrDefault("CORS_ALLOWED_ORIGINS", []string{frontend}),
		Port:         port,

		DiscoveryTimeout: getEnvDurationOrDefault("DISCOVERY_TIMEOUT", 10*time.Second),
		TokenTimeout:     getEnvDurationOrDefault("TOKEN_TIMEOUT", 30*time.Second),
		FetchTimeout:     getEnvDurationOrDefault("FETCH_TIMEOUT", 30*time.Second),
		RefreshMargin:    getEnvDurationOrDefault("TOKEN_REFRESH_MARGIN", 30*time.Second),

		Env:                 getEnvOrDefault("ENV", "dev"),
		LogLevel:            strings.ToLower(getEnvOrDefault("LOG_LEVEL", "info")),
		LogFormat:           strings.ToLower(getEnvOrDefault("LOG_FORMAT", "json")),
		ShutdownGracePeriod: getEnvDurationOrDefault("SHUTDOWN_GRACE_PERIOD", 10*time.Second),

		RateLimits: httpx.LoadRateLimits(),
	}

	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks the configuration for values the broker cannot run with.
func (c Config) Validate() error {
	if err := validator.New(validator.WithRequiredStructEnabled()).Struct(c); err != nil {
		return fmt.Errorf("invalid configuration: %w", err)
	}
	return nil
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	if intValue, err := strconv.Atoi(value); err == nil {
		return intValue
	}

	return defaultValue
}

func getEnvDurationOrDefault(key string, defaultValue time.Duration) time.Duration {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	// Try parsing as duration (e.g., "10s", "1m")
	if duration, err := time.ParseDuration(value); err == nil {
		return duration
	}

	// Bare integers are seconds
	if seconds, err := strconv.Atoi(value); err == nil {
		return time.Duration(seconds) * time.Second
	}

	return defaultValue
}

// getEnvListOrDefault splits a comma separated value, dropping empty items.
func getEnvListOrDefault(key string, defaultValue []string) []string {
	value := os.Getenv(key)
	if value == "" {
		return defaultValue
	}

	var out []string
	for item := range strings.SplitSeq(value, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	if len(out) == 0 {
		return defaultValue
	}
	return out
}
