package config

import (
	"strings"
	"time"
)

// DirectoryConfig controls the user directory (identity platform) client.
type DirectoryConfig struct {
	BaseURL string        `env:"BASE_URL"`
	APIKey  string        `env:"API_KEY"`
	Timeout time.Duration `env:"TIMEOUT"        envDefault:"5s"`
	// ListCacheTTL is how long the translator listing may be served from cache.
	ListCacheTTL time.Duration `env:"LIST_CACHE_TTL" envDefault:"30s"`
}

// Sanitize normalises directory configuration values.
func (c *DirectoryConfig) Sanitize() {
	c.BaseURL = strings.TrimSpace(c.BaseURL)
	if c.Timeout <= 0 {
		c.Timeout = 5 * time.Second
	}
	if c.ListCacheTTL <= 0 {
		c.ListCacheTTL = 30 * time.Second
	}
}
