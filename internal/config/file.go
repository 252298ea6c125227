// Package config handles prerender configuration from YAML files.
package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config is the top-level prerender configuration.
type Config struct {
	Site      SiteConfig      `yaml:"site"`
	Readiness ReadinessConfig `yaml:"readiness"`
	Browser   BrowserConfig   `yaml:"browser"`
	Output    OutputConfig    `yaml:"output"`
	Manifest  ManifestConfig  `yaml:"manifest"`
}

// SiteConfig describes the project tree being rendered.
type SiteConfig struct {
	// Root is the directory served by the ephemeral file server.
	Root string `yaml:"root"`

	// EntriesDir holds one content file per entry, relative to Root.
	EntriesDir string `yaml:"entries_dir"`

	// Template is the parameterized page all entries render through,
	// relative to Root.
	Template string `yaml:"template"`

	// OutputDir receives one snapshot per entry, relative to Root.
	OutputDir string `yaml:"output_dir"`

	// Extension selects entry files, matched case-insensitively.
	Extension string `yaml:"extension"`
}

// ReadinessConfig controls how rendered-content detection behaves.
type ReadinessConfig struct {
	// ContainerID is the element the client-side renderer populates.
	ContainerID string `yaml:"container_id"`

	// Sentinel marks still-loading text. Matched as a case-insensitive
	// substring of the container's trimmed text.
	Sentinel string `yaml:"sentinel"`

	PollInterval time.Duration `yaml:"poll_interval"`
	Timeout      time.Duration `yaml:"timeout"`
}

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig struct {
	// Remote is the WebSocket URL of an external Chrome instance.
	// Empty = launch a local Chrome via launcher.
	Remote string `yaml:"remote"`

	// Stealth applies anti-detection page setup. Off by default since
	// targets are served from loopback.
	Stealth bool `yaml:"stealth"`

	// NavTimeout bounds navigation per entry.
	NavTimeout time.Duration `yaml:"nav_timeout"`

	// ResourceBlocking lists resource types to block (image, font, media,
	// stylesheet).
	ResourceBlocking []string `yaml:"resource_blocking"`
}

// OutputConfig controls snapshot persistence.
type OutputConfig struct {
	// Markdown also emits a .md rendition next to each snapshot.
	Markdown bool `yaml:"markdown"`
}

// ManifestConfig controls the optional per-run SQLite manifest.
type ManifestConfig struct {
	// Path of the manifest database. Empty = disabled.
	Path string `yaml:"path"`
}

// LoadFile reads a YAML configuration file.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("config: read %s: %w", path, err)
	}

	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("config: parse %s: %w", path, err)
	}

	cfg.ApplyDefaults()
	return &cfg, nil
}

// Default returns a configuration with all defaults applied, rooted at dir.
func Default(dir string) *Config {
	cfg := &Config{Site: SiteConfig{Root: dir}}
	cfg.ApplyDefaults()
	return cfg
}

// ApplyDefaults fills zero-value fields with working defaults.
func (c *Config) ApplyDefaults() {
	if c.Site.Root == "" {
		c.Site.Root = "."
	}
	if c.Site.EntriesDir == "" {
		c.Site.EntriesDir = "entries"
	}
	if c.Site.Template == "" {
		c.Site.Template = "data.html"
	}
	if c.Site.OutputDir == "" {
		c.Site.OutputDir = "wiki"
	}
	if c.Site.Extension == "" {
		c.Site.Extension = ".html"
	}
	if !strings.HasPrefix(c.Site.Extension, ".") {
		c.Site.Extension = "." + c.Site.Extension
	}
	if c.Readiness.ContainerID == "" {
		c.Readiness.ContainerID = "projectContent"
	}
	if c.Readiness.Sentinel == "" {
		c.Readiness.Sentinel = "loading..."
	}
	if c.Readiness.PollInterval <= 0 {
		c.Readiness.PollInterval = 250 * time.Millisecond
	}
	if c.Readiness.Timeout <= 0 {
		c.Readiness.Timeout = 15 * time.Second
	}
	if c.Browser.NavTimeout <= 0 {
		c.Browser.NavTimeout = 20 * time.Second
	}
}
