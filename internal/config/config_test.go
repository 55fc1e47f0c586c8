package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"mcpchat/internal"
)

func TestLoadConfigWritesDefaultsOnFirstRun(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "config.toml")

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.Models.Primary != internal.DEFAULT_PRIMARY_MODEL {
		t.Fatalf("primary model = %q", cfg.Models.Primary)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("default config not written: %v", err)
	}

	again, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("reload: %v", err)
	}
	if again.Models.WrapUpMaxTokens != internal.DEFAULT_WRAPUP_MAX_TOKENS {
		t.Fatalf("wrap-up max tokens = %d", again.Models.WrapUpMaxTokens)
	}
	if again.Server.Python != "python" || again.Server.Node != "node" {
		t.Fatalf("server commands = %+v", again.Server)
	}
}

func TestLoadConfigOverlaysFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	content := `
base_url = "http://localhost:8080/v1"

[models]
primary = "vision-model"

[ui]
poll_interval_ms = 50
`
	if err := os.WriteFile(path, []byte(content), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}

	cfg, err := LoadConfig(path)
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	if cfg.BaseURL != "http://localhost:8080/v1" {
		t.Fatalf("base url = %q", cfg.BaseURL)
	}
	if cfg.Models.Primary != "vision-model" {
		t.Fatalf("primary = %q", cfg.Models.Primary)
	}
	// untouched keys keep their defaults
	if cfg.Models.WrapUp != internal.DEFAULT_WRAPUP_MODEL {
		t.Fatalf("wrap-up = %q", cfg.Models.WrapUp)
	}
	if cfg.PollInterval() != 50*time.Millisecond {
		t.Fatalf("poll interval = %v", cfg.PollInterval())
	}
}

func TestLoadConfigRejectsBadToml(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := os.WriteFile(path, []byte("base_url = "), 0644); err != nil {
		t.Fatalf("write: %v", err)
	}
	if _, err := LoadConfig(path); err == nil {
		t.Fatalf("expected decode error")
	}
}

func TestSaveConfigOmitsAPIKey(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	cfg := Defaults()
	cfg.APIKey = "secret-key"

	if err := SaveConfig(path, cfg); err != nil {
		t.Fatalf("SaveConfig: %v", err)
	}
	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read: %v", err)
	}
	if strings.Contains(string(data), "secret-key") {
		t.Fatalf("api key written to disk")
	}
	if cfg.APIKey != "secret-key" {
		t.Fatalf("SaveConfig mutated the caller's config")
	}
}

func TestEnvironmentOverridesFile(t *testing.T) {
	t.Setenv("TOGETHER_API", "from-env")
	t.Setenv("MCPCHAT_WRAPUP_MODEL", "env-wrapup")
	t.Setenv("MCPCHAT_BASE_URL", "")

	e, err := ReadEnvironment()
	if err != nil {
		t.Fatalf("ReadEnvironment: %v", err)
	}

	cfg := Defaults()
	cfg.APIKey = "from-file"
	e.Apply(cfg)

	if cfg.APIKey != "from-env" {
		t.Fatalf("api key = %q", cfg.APIKey)
	}
	if cfg.Models.WrapUp != "env-wrapup" {
		t.Fatalf("wrap-up = %q", cfg.Models.WrapUp)
	}
	if cfg.BaseURL != internal.DEFAULT_BASE_URL {
		t.Fatalf("empty env value overrode base url: %q", cfg.BaseURL)
	}
}

func TestEnvironmentPathDefaults(t *testing.T) {
	t.Setenv("CONFIG_PATH", "")
	t.Setenv("MCPCHAT_DATA_DIR", "")

	e, err := ReadEnvironment()
	if err != nil {
		t.Fatalf("ReadEnvironment: %v", err)
	}
	if e.ConfigPath != internal.DEFAULT_CONFIG_PATH || e.DataDir != internal.DEFAULT_DATA_DIR {
		t.Fatalf("paths = %q, %q", e.ConfigPath, e.DataDir)
	}

	t.Setenv("MCPCHAT_DATA_DIR", "/var/lib/mcpchat")
	e, err = ReadEnvironment()
	if err != nil {
		t.Fatalf("ReadEnvironment: %v", err)
	}
	if e.DataDir != "/var/lib/mcpchat" {
		t.Fatalf("data dir = %q", e.DataDir)
	}
}

func TestValidateConfig(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{"valid", func(c *Config) { c.APIKey = "k" }, ""},
		{"missing credential", func(c *Config) {}, "api_key"},
		{"missing models", func(c *Config) {
			c.APIKey = "k"
			c.Models.Primary = ""
			c.Models.WrapUp = ""
		}, "models.primary, models.wrap_up"},
		{"bad poll interval", func(c *Config) {
			c.APIKey = "k"
			c.UI.PollIntervalMs = 0
		}, "poll_interval_ms"},
		{"bad in-flight", func(c *Config) {
			c.APIKey = "k"
			c.UI.MaxInFlight = -1
		}, "max_in_flight"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Defaults()
			tt.mutate(cfg)
			err := ValidateConfig(cfg)
			if tt.wantErr == "" {
				if err != nil {
					t.Fatalf("unexpected error: %v", err)
				}
				return
			}
			if err == nil || !strings.Contains(err.Error(), tt.wantErr) {
				t.Fatalf("error = %v, want containing %q", err, tt.wantErr)
			}
		})
	}
}
