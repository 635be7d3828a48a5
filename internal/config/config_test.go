package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/vango-dev/reactor/internal/errors"
)

func TestDefault(t *testing.T) {
	cfg := Default()

	if cfg.Live.Addr != DefaultAddr {
		t.Errorf("Live.Addr = %q, want %q", cfg.Live.Addr, DefaultAddr)
	}
	if cfg.Live.Path != DefaultLivePath {
		t.Errorf("Live.Path = %q, want %q", cfg.Live.Path, DefaultLivePath)
	}
	if cfg.ReadTimeout() != time.Minute {
		t.Errorf("ReadTimeout() = %v, want 1m", cfg.ReadTimeout())
	}
	if cfg.WriteTimeout() != 10*time.Second {
		t.Errorf("WriteTimeout() = %v, want 10s", cfg.WriteTimeout())
	}
	if err := cfg.Validate(); err != nil {
		t.Errorf("Validate() = %v, want nil", err)
	}
}

func TestLoad(t *testing.T) {
	tmpDir := t.TempDir()

	// Missing file
	_, err := Load(tmpDir)
	if !errors.HasCode(err, "CFG001") {
		t.Fatalf("Load() of empty dir error = %v, want CFG001", err)
	}

	configJSON := `{
  "name": "todo",
  "live": {
    "addr": ":8080",
    "readTimeout": "30s"
  },
  "snapshot": {
    "bucket": "site",
    "prefix": "pages/"
  },
  "debug": true
}
`
	if err := os.WriteFile(filepath.Join(tmpDir, ConfigFileName), []byte(configJSON), 0644); err != nil {
		t.Fatal(err)
	}

	cfg, err := Load(tmpDir)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if cfg.Name != "todo" {
		t.Errorf("Name = %q, want todo", cfg.Name)
	}
	if cfg.Live.Addr != ":8080" {
		t.Errorf("Live.Addr = %q, want :8080", cfg.Live.Addr)
	}
	if cfg.ReadTimeout() != 30*time.Second {
		t.Errorf("ReadTimeout() = %v, want 30s", cfg.ReadTimeout())
	}
	// Unset fields keep their defaults.
	if cfg.Live.Path != DefaultLivePath || cfg.WriteTimeout() != 10*time.Second {
		t.Errorf("defaults not applied: %+v", cfg.Live)
	}
	if cfg.Snapshot.Region != DefaultRegion {
		t.Errorf("Snapshot.Region = %q, want %q", cfg.Snapshot.Region, DefaultRegion)
	}
	if !cfg.Debug {
		t.Error("Debug = false, want true")
	}
	if want := filepath.Join(tmpDir, ConfigFileName); cfg.Path() != want {
		t.Errorf("Path() = %q, want %q", cfg.Path(), want)
	}
}

func TestLoadInvalidJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	if err := os.WriteFile(path, []byte(`{"live": `), 0644); err != nil {
		t.Fatal(err)
	}
	_, err := LoadFile(path)
	if !errors.HasCode(err, "CFG001") {
		t.Fatalf("LoadFile() error = %v, want CFG001", err)
	}
	if !strings.Contains(err.Error(), "valid JSON") && !strings.Contains(err.Error(), "parse") {
		t.Errorf("error %q does not mention parsing", err)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name   string
		mutate func(*Config)
		field  string
	}{
		{"relative live path", func(c *Config) { c.Live.Path = "live" }, "live.path"},
		{"relative metrics path", func(c *Config) { c.Live.MetricsPath = "metrics" }, "live.metricsPath"},
		{"metrics on live path", func(c *Config) { c.Live.MetricsPath = c.Live.Path }, "live.metricsPath"},
		{"bad read timeout", func(c *Config) { c.Live.ReadTimeout = "soon" }, "live.readTimeout"},
		{"negative write timeout", func(c *Config) { c.Live.WriteTimeout = "-1s" }, "live.writeTimeout"},
		{"negative message size", func(c *Config) { c.Live.MaxMessageSize = -1 }, "live.maxMessageSize"},
		{"absolute prefix", func(c *Config) { c.Snapshot.Prefix = "/pages" }, "snapshot.prefix"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			tt.mutate(cfg)
			err := cfg.Validate()
			if !errors.HasCode(err, "CFG001") {
				t.Fatalf("Validate() = %v, want CFG001", err)
			}
			if !strings.Contains(err.Error(), tt.field) {
				t.Errorf("Validate() = %q, want it to name %s", err, tt.field)
			}
		})
	}
}

func TestSaveAndReload(t *testing.T) {
	path := filepath.Join(t.TempDir(), ConfigFileName)
	cfg := Default()
	cfg.Name = "saved"
	cfg.Snapshot.Bucket = "b"
	if err := cfg.SaveTo(path); err != nil {
		t.Fatalf("SaveTo() error = %v", err)
	}
	if cfg.Path() != path {
		t.Errorf("Path() = %q, want %q", cfg.Path(), path)
	}

	loaded, err := LoadFile(path)
	if err != nil {
		t.Fatalf("LoadFile() error = %v", err)
	}
	if loaded.Name != "saved" || loaded.Snapshot.Bucket != "b" {
		t.Errorf("reloaded = %+v", loaded)
	}
}

func TestFindProjectRoot(t *testing.T) {
	root := t.TempDir()
	nested := filepath.Join(root, "a", "b")
	if err := os.MkdirAll(nested, 0755); err != nil {
		t.Fatal(err)
	}
	if err := Default().SaveTo(filepath.Join(root, ConfigFileName)); err != nil {
		t.Fatal(err)
	}

	got, err := FindProjectRoot(nested)
	if err != nil {
		t.Fatalf("FindProjectRoot() error = %v", err)
	}
	want, _ := filepath.Abs(root)
	if got != want {
		t.Errorf("FindProjectRoot() = %q, want %q", got, want)
	}
	if !Exists(root) || Exists(nested) {
		t.Error("Exists() disagrees with the file layout")
	}
}
