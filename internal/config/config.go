package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

// Config holds the CLI configuration loaded from environment variables.
type Config struct {
	APIBaseURL  string        `env:"HEMO_API_BASE_URL" envDefault:"http://127.0.0.1:5000"`
	TokenFile   string        `env:"HEMO_TOKEN_FILE"`  // empty: <user config dir>/hemoform/token
	LogLevel    string        `env:"HEMO_LOG_LEVEL" envDefault:"info"`
	FormsDir    string        `env:"HEMO_FORMS_DIR"`   // overrides the embedded forms
	OpenAPIPath string        `env:"HEMO_OPENAPI_PATH"` // enables contract checks
	HTTPTimeout time.Duration `env:"HEMO_HTTP_TIMEOUT" envDefault:"0s"`
}

// ContractEnabled reports whether payloads are checked against an OpenAPI
// document before sending.
func (c Config) ContractEnabled() bool {
	return c.OpenAPIPath != ""
}

// LoadDotenv loads the given .env files (".env" when none) into the process
// environment. Missing files are ignored; variables already set win.
func LoadDotenv(paths ...string) error {
	if len(paths) == 0 {
		paths = []string{".env"}
	}
	for _, path := range paths {
		if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", path, err)
		}
	}
	return nil
}

// Load parses environment variables and returns a validated Config.
func Load() (*Config, error) {
	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	base, err := url.Parse(cfg.APIBaseURL)
	if err != nil || base.Scheme == "" || base.Host == "" {
		return nil, fmt.Errorf("HEMO_API_BASE_URL must be an absolute URL, got %q", cfg.APIBaseURL)
	}

	cfg.LogLevel = strings.ToLower(strings.TrimSpace(cfg.LogLevel))
	switch cfg.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return nil, fmt.Errorf("HEMO_LOG_LEVEL must be one of debug, info, warn, error; got %q", cfg.LogLevel)
	}

	if cfg.HTTPTimeout < 0 {
		return nil, fmt.Errorf("HEMO_HTTP_TIMEOUT must not be negative, got %s", cfg.HTTPTimeout)
	}
	return cfg, nil
}
