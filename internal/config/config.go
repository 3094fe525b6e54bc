package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/coreos/go-oidc/v3/oidc"
)

// Config is the typed application configuration. It is read once at startup
// and never mutated afterwards.
type Config struct {
	// OIDC client
	ClientID               string `env:"AUTH_CLIENT_ID,required,notEmpty"`
	RedirectURI            string `env:"AUTH_REDIRECT_URI,required,notEmpty"`
	PostSignoutRedirectURI string `env:"AUTH_POST_SIGNOUT_REDIRECT_URI,required,notEmpty"`
	Scope                  string `env:"AUTH_SCOPE" envDefault:"itwin-platform"`
	Authority              string `env:"AUTH_AUTHORITY" envDefault:"https://ims.bentley.com"`
	ClientSecret           string `env:"AUTH_CLIENT_SECRET"`

	// Demo content
	ITwinID          string `env:"DEMO_ITWIN_ID"`
	IModelID         string `env:"DEMO_IMODEL_ID"`
	MarketingBaseURL string `env:"MARKETING_BASE_URL"`

	// Server
	Port        string        `env:"PORT" envDefault:"8080"`
	Env         string        `env:"ENV" envDefault:"development"`
	DatabaseURL string        `env:"DATABASE_URL"`
	RedisURL    string        `env:"REDIS_URL"`
	SessionTTL  time.Duration `env:"SESSION_TTL" envDefault:"8h"`

	// Chat assistant
	GeminiAPIKey string `env:"GEMINI_API_KEY"`
	GeminiModel  string `env:"GEMINI_MODEL" envDefault:"gemini-2.5-flash"`

	// Logging
	LogLevel string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile  string `env:"LOG_FILE"`
}

// RequiredKeys lists the environment keys that must be present, in the order
// they are reported when missing.
var RequiredKeys = []string{
	"AUTH_CLIENT_ID",
	"AUTH_REDIRECT_URI",
	"AUTH_POST_SIGNOUT_REDIRECT_URI",
}

// MissingKeysError names every required key that was absent or empty.
type MissingKeysError struct {
	Keys []string
}

func (e *MissingKeysError) Error() string {
	return "missing required environment variables: " + strings.Join(e.Keys, ", ")
}

// Result is the outcome of Load. Exactly one of Config or (Missing, Invalid)
// is set.
type Result struct {
	Config  *Config
	Missing []string
	Invalid error
}

// OK reports whether the configuration loaded successfully.
func (r Result) OK() bool {
	return r.Config != nil
}

// Err converts a failed result into an error. It returns nil on success.
func (r Result) Err() error {
	if r.OK() {
		return nil
	}
	var errs []error
	if len(r.Missing) > 0 {
		errs = append(errs, &MissingKeysError{Keys: r.Missing})
	}
	if r.Invalid != nil {
		errs = append(errs, r.Invalid)
	}
	return errors.Join(errs...)
}

// Load parses configuration from the given environment. It never exits or
// panics; the caller decides how to handle a failed result.
func Load(environ map[string]string) Result {
	var cfg Config
	err := env.ParseWithOptions(&cfg, env.Options{Environment: environ})
	if err == nil {
		return Result{Config: &cfg}
	}

	missing := map[string]bool{}
	var invalid []error

	var agg env.AggregateError
	if errors.As(err, &agg) {
		for _, e := range agg.Errors {
			switch v := e.(type) {
			case env.EnvVarIsNotSetError:
				missing[v.Key] = true
			case env.EmptyEnvVarError:
				missing[v.Key] = true
			default:
				invalid = append(invalid, e)
			}
		}
	} else {
		invalid = append(invalid, err)
	}

	var result Result
	for _, key := range RequiredKeys {
		if missing[key] {
			result.Missing = append(result.Missing, key)
		}
	}
	if len(invalid) > 0 {
		result.Invalid = fmt.Errorf("parse env: %w", errors.Join(invalid...))
	}
	return result
}

// FromOS returns the process environment as a map suitable for Load.
func FromOS() map[string]string {
	environ := make(map[string]string)
	for _, kv := range os.Environ() {
		key, value, ok := strings.Cut(kv, "=")
		if ok {
			environ[key] = value
		}
	}
	return environ
}

// Scopes returns the requested OIDC scopes. The openid scope is always
// included so the provider issues an ID token.
func (c *Config) Scopes() []string {
	scopes := strings.Fields(c.Scope)
	for _, s := range scopes {
		if s == oidc.ScopeOpenID {
			return scopes
		}
	}
	return append([]string{oidc.ScopeOpenID}, scopes...)
}

// IsProduction reports whether the app runs with ENV=production.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}

// SummaryItem is one read-only row of the settings page.
type SummaryItem struct {
	Label string
	Value string
}

// Summary lists the non-secret configuration values.
func (c *Config) Summary() []SummaryItem {
	orNotSet := func(v string) string {
		if v == "" {
			return "(not set)"
		}
		return v
	}
	return []SummaryItem{
		{Label: "Authority", Value: c.Authority},
		{Label: "Client ID", Value: c.ClientID},
		{Label: "Scope", Value: c.Scope},
		{Label: "Redirect URI", Value: c.RedirectURI},
		{Label: "Post sign-out redirect URI", Value: c.PostSignoutRedirectURI},
		{Label: "Demo iTwin ID", Value: orNotSet(c.ITwinID)},
		{Label: "Demo iModel ID", Value: orNotSet(c.IModelID)},
		{Label: "Marketing base URL", Value: orNotSet(c.MarketingBaseURL)},
		{Label: "Environment", Value: c.Env},
	}
}

// WorkerConfig configures the maintenance binaries, which only need the
// database.
type WorkerConfig struct {
	DatabaseURL string `env:"DATABASE_URL,required,notEmpty"`
	LogLevel    string `env:"LOG_LEVEL" envDefault:"info"`
	LogFile     string `env:"LOG_FILE"`
}

// LoadWorker parses the worker configuration from the given environment.
func LoadWorker(environ map[string]string) (*WorkerConfig, error) {
	var cfg WorkerConfig
	if err := env.ParseWithOptions(&cfg, env.Options{Environment: environ}); err != nil {
		return nil, fmt.Errorf("parse env: %w", err)
	}
	return &cfg, nil
}
