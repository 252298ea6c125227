package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
	return path
}

func TestLoadFile(t *testing.T) {
	path := writeFile(t, "prerender.yaml", `
site:
  root: /srv/site
  entries_dir: content
  template: page.html
  output_dir: dist
  extension: htm
readiness:
  container_id: main
  sentinel: "please wait"
  poll_interval: 100ms
  timeout: 5s
browser:
  stealth: true
  nav_timeout: 30s
  resource_blocking: [image, font]
output:
  markdown: true
manifest:
  path: dist/manifest.db
`)

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Site.Root != "/srv/site" {
		t.Errorf("root = %q", cfg.Site.Root)
	}
	if cfg.Site.EntriesDir != "content" {
		t.Errorf("entries_dir = %q", cfg.Site.EntriesDir)
	}
	if cfg.Site.Extension != ".htm" {
		t.Errorf("extension = %q, want dot-prefixed", cfg.Site.Extension)
	}
	if cfg.Readiness.ContainerID != "main" {
		t.Errorf("container_id = %q", cfg.Readiness.ContainerID)
	}
	if cfg.Readiness.Sentinel != "please wait" {
		t.Errorf("sentinel = %q", cfg.Readiness.Sentinel)
	}
	if cfg.Readiness.PollInterval != 100*time.Millisecond {
		t.Errorf("poll_interval = %v", cfg.Readiness.PollInterval)
	}
	if cfg.Browser.NavTimeout != 30*time.Second {
		t.Errorf("nav_timeout = %v", cfg.Browser.NavTimeout)
	}
	if !cfg.Browser.Stealth {
		t.Error("stealth not set")
	}
	if len(cfg.Browser.ResourceBlocking) != 2 {
		t.Errorf("resource_blocking = %v", cfg.Browser.ResourceBlocking)
	}
	if !cfg.Output.Markdown {
		t.Error("markdown not set")
	}
	if cfg.Manifest.Path != "dist/manifest.db" {
		t.Errorf("manifest path = %q", cfg.Manifest.Path)
	}
}

func TestLoadFileDefaults(t *testing.T) {
	path := writeFile(t, "empty.yaml", "{}\n")

	cfg, err := LoadFile(path)
	if err != nil {
		t.Fatal(err)
	}

	if cfg.Site.EntriesDir != "entries" {
		t.Errorf("entries_dir = %q", cfg.Site.EntriesDir)
	}
	if cfg.Site.Template != "data.html" {
		t.Errorf("template = %q", cfg.Site.Template)
	}
	if cfg.Site.OutputDir != "wiki" {
		t.Errorf("output_dir = %q", cfg.Site.OutputDir)
	}
	if cfg.Site.Extension != ".html" {
		t.Errorf("extension = %q", cfg.Site.Extension)
	}
	if cfg.Readiness.ContainerID != "projectContent" {
		t.Errorf("container_id = %q", cfg.Readiness.ContainerID)
	}
	if cfg.Readiness.Sentinel != "loading..." {
		t.Errorf("sentinel = %q", cfg.Readiness.Sentinel)
	}
	if cfg.Readiness.Timeout != 15*time.Second {
		t.Errorf("timeout = %v", cfg.Readiness.Timeout)
	}
	if cfg.Browser.NavTimeout != 20*time.Second {
		t.Errorf("nav_timeout = %v", cfg.Browser.NavTimeout)
	}
}

func TestLoadFileMissing(t *testing.T) {
	if _, err := LoadFile(filepath.Join(t.TempDir(), "absent.yaml")); err == nil {
		t.Fatal("expected error for missing file")
	}
}

func TestDefault(t *testing.T) {
	cfg := Default("/tmp/site")
	if cfg.Site.Root != "/tmp/site" {
		t.Errorf("root = %q", cfg.Site.Root)
	}
	if cfg.Readiness.PollInterval != 250*time.Millisecond {
		t.Errorf("poll_interval = %v", cfg.Readiness.PollInterval)
	}
}
