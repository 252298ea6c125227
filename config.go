package prerender

import (
	"github.com/hazyhaar/prerender/internal/config"
)

// Config is the top-level prerender configuration. Re-exported from internal.
type Config = config.Config

// SiteConfig describes the project tree being rendered.
type SiteConfig = config.SiteConfig

// ReadinessConfig controls rendered-content detection.
type ReadinessConfig = config.ReadinessConfig

// BrowserConfig controls Chrome lifecycle.
type BrowserConfig = config.BrowserConfig

// OutputConfig controls snapshot persistence.
type OutputConfig = config.OutputConfig

// ManifestConfig controls the optional per-run SQLite manifest.
type ManifestConfig = config.ManifestConfig

// LoadConfigFile reads a YAML configuration file.
func LoadConfigFile(path string) (*Config, error) {
	return config.LoadFile(path)
}

// DefaultConfig returns a configuration with defaults applied, rooted at dir.
func DefaultConfig(dir string) *Config {
	return config.Default(dir)
}
