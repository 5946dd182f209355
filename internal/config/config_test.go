package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func clearHemoEnv(t *testing.T) {
	t.Helper()
	for _, key := range []string{
		"HEMO_API_BASE_URL", "HEMO_TOKEN_FILE", "HEMO_LOG_LEVEL",
		"HEMO_FORMS_DIR", "HEMO_OPENAPI_PATH", "HEMO_HTTP_TIMEOUT",
	} {
		t.Setenv(key, "")
		if err := os.Unsetenv(key); err != nil {
			t.Fatalf("unset %s: %v", key, err)
		}
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearHemoEnv(t)

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.APIBaseURL != "http://127.0.0.1:5000" {
		t.Errorf("APIBaseURL = %q", cfg.APIBaseURL)
	}
	if cfg.LogLevel != "info" {
		t.Errorf("LogLevel = %q, want info", cfg.LogLevel)
	}
	if cfg.HTTPTimeout != 0 {
		t.Errorf("HTTPTimeout = %s, want 0", cfg.HTTPTimeout)
	}
	if cfg.ContractEnabled() {
		t.Errorf("contract checks must be off by default")
	}
}

func TestLoad_CustomValues(t *testing.T) {
	clearHemoEnv(t)
	t.Setenv("HEMO_API_BASE_URL", "https://hemo.example.org/base")
	t.Setenv("HEMO_LOG_LEVEL", "DEBUG")
	t.Setenv("HEMO_HTTP_TIMEOUT", "15s")
	t.Setenv("HEMO_OPENAPI_PATH", "/etc/hemo/openapi.yaml")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.LogLevel != "debug" {
		t.Errorf("LogLevel = %q, want debug", cfg.LogLevel)
	}
	if cfg.HTTPTimeout != 15*time.Second {
		t.Errorf("HTTPTimeout = %s", cfg.HTTPTimeout)
	}
	if !cfg.ContractEnabled() {
		t.Errorf("expected contract checks enabled")
	}
}

func TestLoad_Invalid(t *testing.T) {
	cases := map[string][2]string{
		"relative url":     {"HEMO_API_BASE_URL", "/api"},
		"unknown level":    {"HEMO_LOG_LEVEL", "verbose"},
		"negative timeout": {"HEMO_HTTP_TIMEOUT", "-1s"},
		"bad duration":     {"HEMO_HTTP_TIMEOUT", "soon"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			clearHemoEnv(t)
			t.Setenv(kv[0], kv[1])
			if _, err := Load(); err == nil {
				t.Fatalf("expected error for %s=%s", kv[0], kv[1])
			}
		})
	}
}

func TestLoadDotenv(t *testing.T) {
	clearHemoEnv(t)
	path := filepath.Join(t.TempDir(), ".env")
	if err := os.WriteFile(path, []byte("HEMO_FORMS_DIR=/srv/forms\n"), 0o600); err != nil {
		t.Fatalf("write: %v", err)
	}
	if err := LoadDotenv(path, filepath.Join(t.TempDir(), "missing.env")); err != nil {
		t.Fatalf("LoadDotenv() error: %v", err)
	}
	t.Cleanup(func() { _ = os.Unsetenv("HEMO_FORMS_DIR") })

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() error: %v", err)
	}
	if cfg.FormsDir != "/srv/forms" {
		t.Errorf("FormsDir = %q", cfg.FormsDir)
	}
}
