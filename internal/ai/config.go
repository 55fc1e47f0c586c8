package ai

import (
	"time"

	"mcpchat/internal"
	"mcpchat/internal/config"
)

// Config holds the engine's model slots and prompts.
type Config struct {
	PrimaryModel     string
	WrapUpModel      string
	PrimaryMaxTokens int
	WrapUpMaxTokens  int
	ImageMaxTokens   int
	SystemPrompt     string
	ImagePrompt      string
	ConnectTimeout   time.Duration
}

func DefaultConfig() Config {
	return Config{
		PrimaryModel:     internal.DEFAULT_PRIMARY_MODEL,
		WrapUpModel:      internal.DEFAULT_WRAPUP_MODEL,
		PrimaryMaxTokens: internal.DEFAULT_PRIMARY_MAX_TOKENS,
		WrapUpMaxTokens:  internal.DEFAULT_WRAPUP_MAX_TOKENS,
		SystemPrompt:     internal.DEFAULT_SYSTEM_PROMPT,
		ImagePrompt:      internal.DEFAULT_IMAGE_PROMPT,
		ConnectTimeout:   internal.DEFAULT_CONNECT_TIMEOUT * time.Second,
	}
}

// ConfigFrom maps the application config onto the engine config.
func ConfigFrom(cfg *config.Config) Config {
	c := DefaultConfig()
	c.PrimaryModel = cfg.Models.Primary
	c.WrapUpModel = cfg.Models.WrapUp
	c.PrimaryMaxTokens = cfg.Models.PrimaryMaxTokens
	c.WrapUpMaxTokens = cfg.Models.WrapUpMaxTokens
	c.ImageMaxTokens = cfg.Models.ImageMaxTokens
	if cfg.SystemPrompt != "" {
		c.SystemPrompt = cfg.SystemPrompt
	}
	if cfg.ImagePrompt != "" {
		c.ImagePrompt = cfg.ImagePrompt
	}
	c.ConnectTimeout = cfg.ConnectTimeoutDuration()
	return c
}
