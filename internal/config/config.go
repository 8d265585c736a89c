// Package config loads server configuration from the environment.
//
// Configuration is resolved exactly once at process start: credentials,
// base URLs, and limits are read here and passed by reference into the
// components that need them. Nothing is re-read per call.
package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/cibridge/cibridge-mcp/internal/upstream"
)

// Defaults for tunables not set in the environment.
const (
	DefaultCIBaseURL = "https://api.distributed-ci.io/v1"
	DefaultTimeout   = 30 * time.Second

	// DefaultPageSize is the largest single-page size requested from an
	// upstream; caller limits above it are split into multiple pages.
	DefaultPageSize = 100

	// DefaultHardCap bounds the total items any single fetch may
	// accumulate, independent of caller input.
	DefaultHardCap = 1000

	// DefaultMaxLimit is the per-resource ceiling on the caller's limit
	// parameter unless the resource registry overrides it.
	DefaultMaxLimit = 200
)

// Upstream holds the connection settings for one proxied service.
type Upstream struct {
	BaseURL     string
	Credentials upstream.Credentials
}

// Config is the full server configuration.
type Config struct {
	CI     Upstream
	Ticket Upstream
	Docs   Upstream

	HTTPTimeout time.Duration
	HTTPRetries int

	PageSize int
	HardCap  int
	MaxLimit int

	HealthAddr string
	LogLevel   string
}

// Load reads configuration from the environment, with an optional .env
// file loaded first. It fails if CI credentials are not configured.
func Load(envFile string) (*Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err == nil {
			log.Debug().Str("file", envFile).Msg("loaded environment file")
		}
	} else {
		// Best effort; a missing .env is not an error.
		_ = godotenv.Load()
	}

	v := viper.New()
	v.SetEnvPrefix("CIBRIDGE")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("ci.url", DefaultCIBaseURL)
	v.SetDefault("http.timeout_seconds", int(DefaultTimeout.Seconds()))
	v.SetDefault("http.retries", 0)
	v.SetDefault("page.size", DefaultPageSize)
	v.SetDefault("fetch.hard_cap", DefaultHardCap)
	v.SetDefault("fetch.max_limit", DefaultMaxLimit)
	v.SetDefault("log.level", "info")

	creds, err := resolveCICredentials(v)
	if err != nil {
		return nil, err
	}

	cfg := &Config{
		CI: Upstream{
			BaseURL:     strings.TrimRight(v.GetString("ci.url"), "/"),
			Credentials: creds,
		},
		Ticket: Upstream{
			BaseURL:     strings.TrimRight(v.GetString("ticket.url"), "/"),
			Credentials: bearerOrNil(v.GetString("ticket.token")),
		},
		Docs: Upstream{
			BaseURL:     strings.TrimRight(v.GetString("docs.url"), "/"),
			Credentials: bearerOrNil(v.GetString("docs.token")),
		},
		HTTPTimeout: time.Duration(v.GetInt("http.timeout_seconds")) * time.Second,
		HTTPRetries: v.GetInt("http.retries"),
		PageSize:    v.GetInt("page.size"),
		HardCap:     v.GetInt("fetch.hard_cap"),
		MaxLimit:    v.GetInt("fetch.max_limit"),
		HealthAddr:  v.GetString("health.addr"),
		LogLevel:    v.GetString("log.level"),
	}

	if cfg.PageSize < 1 {
		return nil, fmt.Errorf("CIBRIDGE_PAGE_SIZE must be positive, got %d", cfg.PageSize)
	}
	if cfg.HardCap < 1 {
		return nil, fmt.Errorf("CIBRIDGE_FETCH_HARD_CAP must be positive, got %d", cfg.HardCap)
	}

	return cfg, nil
}

// resolveCICredentials picks exactly one credential variant for the CI
// upstream: an API key, or a login/password pair.
func resolveCICredentials(v *viper.Viper) (upstream.Credentials, error) {
	apiKey := v.GetString("ci.api_key")
	login := v.GetString("ci.login")
	password := v.GetString("ci.password")

	switch {
	case apiKey != "":
		return upstream.APIKey{Key: apiKey}, nil
	case login != "" && password != "":
		return upstream.UserPassword{Login: login, Password: password}, nil
	default:
		return nil, fmt.Errorf(
			"CI authentication not configured: set either CIBRIDGE_CI_API_KEY or CIBRIDGE_CI_LOGIN+CIBRIDGE_CI_PASSWORD")
	}
}

func bearerOrNil(token string) upstream.Credentials {
	if token == "" {
		return nil
	}
	return upstream.APIKey{Key: token}
}
