package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/caarlos0/env/v6"

	"mcpchat/internal"
)

type ModelConfig struct {
	Primary          string `toml:"primary"`
	WrapUp           string `toml:"wrap_up"`
	PrimaryMaxTokens int    `toml:"primary_max_tokens"`
	WrapUpMaxTokens  int    `toml:"wrap_up_max_tokens"`
	ImageMaxTokens   int    `toml:"image_max_tokens"`
}

// ServerConfig describes how tool-provider scripts are launched
type ServerConfig struct {
	Python         string `toml:"python"`
	Node           string `toml:"node"`
	ConnectTimeout int    `toml:"connect_timeout"`
}

type UIConfig struct {
	PollIntervalMs int  `toml:"poll_interval_ms"`
	MaxInFlight    int  `toml:"max_in_flight"`
	PumpBatch      int  `toml:"pump_batch"`
	TranscriptLog  bool `toml:"transcript_log"`
}

type Config struct {
	APIKey         string       `toml:"api_key"`
	BaseURL        string       `toml:"base_url"`
	SystemPrompt   string       `toml:"system_prompt"`
	ImagePrompt    string       `toml:"image_prompt"`
	RequestTimeout int          `toml:"request_timeout"`
	Models         ModelConfig  `toml:"models"`
	Server         ServerConfig `toml:"server"`
	UI             UIConfig     `toml:"ui"`
}

// Environment holds values read from the process environment. Non-empty
// values override the config file.
type Environment struct {
	APIKey       string `env:"TOGETHER_API"`
	BaseURL      string `env:"MCPCHAT_BASE_URL"`
	PrimaryModel string `env:"MCPCHAT_PRIMARY_MODEL"`
	WrapUpModel  string `env:"MCPCHAT_WRAPUP_MODEL"`
	ConfigPath   string `env:"CONFIG_PATH"`
	DataDir      string `env:"MCPCHAT_DATA_DIR"`
}

// Defaults returns a config with every optional field populated
func Defaults() *Config {
	return &Config{
		BaseURL:        internal.DEFAULT_BASE_URL,
		SystemPrompt:   internal.DEFAULT_SYSTEM_PROMPT,
		ImagePrompt:    internal.DEFAULT_IMAGE_PROMPT,
		RequestTimeout: internal.DEFAULT_REQUEST_TIMEOUT,
		Models: ModelConfig{
			Primary:          internal.DEFAULT_PRIMARY_MODEL,
			WrapUp:           internal.DEFAULT_WRAPUP_MODEL,
			PrimaryMaxTokens: internal.DEFAULT_PRIMARY_MAX_TOKENS,
			WrapUpMaxTokens:  internal.DEFAULT_WRAPUP_MAX_TOKENS,
		},
		Server: ServerConfig{
			Python:         internal.DEFAULT_PYTHON_COMMAND,
			Node:           internal.DEFAULT_NODE_COMMAND,
			ConnectTimeout: internal.DEFAULT_CONNECT_TIMEOUT,
		},
		UI: UIConfig{
			PollIntervalMs: internal.DEFAULT_POLL_INTERVAL,
			MaxInFlight:    1,
			PumpBatch:      internal.DEFAULT_PUMP_BATCH,
			TranscriptLog:  true,
		},
	}
}

// ReadEnvironment parses the process environment
func ReadEnvironment() (*Environment, error) {
	var e Environment
	if err := env.Parse(&e); err != nil {
		return nil, fmt.Errorf("failed to parse environment: %w", err)
	}
	if e.ConfigPath == "" {
		e.ConfigPath = internal.DEFAULT_CONFIG_PATH
	}
	if e.DataDir == "" {
		e.DataDir = internal.DEFAULT_DATA_DIR
	}
	return &e, nil
}

// Apply copies non-empty environment values over cfg
func (e *Environment) Apply(cfg *Config) {
	if e.APIKey != "" {
		cfg.APIKey = e.APIKey
	}
	if e.BaseURL != "" {
		cfg.BaseURL = e.BaseURL
	}
	if e.PrimaryModel != "" {
		cfg.Models.Primary = e.PrimaryModel
	}
	if e.WrapUpModel != "" {
		cfg.Models.WrapUp = e.WrapUpModel
	}
}

// ValidateConfig checks if all required configuration fields are properly set
func ValidateConfig(cfg *Config) error {
	var missingFields []string

	if cfg.APIKey == "" {
		missingFields = append(missingFields, "api_key (or TOGETHER_API)")
	}
	if cfg.BaseURL == "" {
		missingFields = append(missingFields, "base_url")
	}
	if cfg.Models.Primary == "" {
		missingFields = append(missingFields, "models.primary")
	}
	if cfg.Models.WrapUp == "" {
		missingFields = append(missingFields, "models.wrap_up")
	}

	if len(missingFields) > 0 {
		return fmt.Errorf("missing required configuration fields: %s", strings.Join(missingFields, ", "))
	}

	if cfg.UI.PollIntervalMs <= 0 {
		return fmt.Errorf("ui.poll_interval_ms must be positive, got %d", cfg.UI.PollIntervalMs)
	}
	if cfg.UI.MaxInFlight <= 0 {
		return fmt.Errorf("ui.max_in_flight must be positive, got %d", cfg.UI.MaxInFlight)
	}

	return nil
}

// LoadConfig decodes the file at path over the defaults. A missing file is
// written with defaults first. The result is not validated; the caller applies
// the environment and then calls ValidateConfig.
func LoadConfig(path string) (*Config, error) {
	cfg := Defaults()

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		if err := SaveConfig(path, cfg); err != nil {
			return nil, err
		}
		return cfg, nil
	}

	if _, err := toml.DecodeFile(path, cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config file %s: %w", path, err)
	}

	return cfg, nil
}

// SaveConfig writes cfg to path. The API key is never written.
func SaveConfig(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create directory for config file: %w", err)
	}

	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer func(file *os.File) {
		err := file.Close()
		if err != nil {
			fmt.Printf("failed to close config file: %v\n", err)
		}
	}(file)

	out := *cfg
	out.APIKey = ""

	encoder := toml.NewEncoder(file)
	if err := encoder.Encode(out); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}

	return nil
}

func (c *Config) PollInterval() time.Duration {
	return time.Duration(c.UI.PollIntervalMs) * time.Millisecond
}

func (c *Config) RequestTimeoutDuration() time.Duration {
	return time.Duration(c.RequestTimeout) * time.Second
}

func (c *Config) ConnectTimeoutDuration() time.Duration {
	if c.Server.ConnectTimeout <= 0 {
		return internal.DEFAULT_CONNECT_TIMEOUT * time.Second
	}
	return time.Duration(c.Server.ConnectTimeout) * time.Second
}
