package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/vango-dev/reactor/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "reactor.json"

	// DefaultAddr is the default live server listen address.
	DefaultAddr = ":3000"

	// DefaultLivePath is the default websocket endpoint.
	DefaultLivePath = "/live"

	// DefaultMetricsPath is the default Prometheus endpoint.
	DefaultMetricsPath = "/metrics"

	// DefaultRegion is the default S3 region for snapshots.
	DefaultRegion = "us-east-1"
)

// Config represents reactor.json.
type Config struct {
	// Name is the project name. It titles the live page.
	Name string `json:"name,omitempty"`

	// Live configures `reactor serve`.
	Live LiveConfig `json:"live,omitempty"`

	// Snapshot configures `reactor publish`.
	Snapshot SnapshotConfig `json:"snapshot,omitempty"`

	// Debug enables debug logging and reactivity diagnostics.
	Debug bool `json:"debug,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LiveConfig contains live server configuration. Durations are Go
// duration strings such as "30s".
type LiveConfig struct {
	Addr           string `json:"addr,omitempty"`
	Path           string `json:"path,omitempty"`
	MetricsPath    string `json:"metricsPath,omitempty"`
	ReadTimeout    string `json:"readTimeout,omitempty"`
	WriteTimeout   string `json:"writeTimeout,omitempty"`
	MaxMessageSize int64  `json:"maxMessageSize,omitempty"`
}

// SnapshotConfig contains snapshot publishing configuration.
type SnapshotConfig struct {
	// Bucket is the target S3 bucket.
	Bucket string `json:"bucket,omitempty"`

	// Prefix is prepended to every object key.
	Prefix string `json:"prefix,omitempty"`

	Region string `json:"region,omitempty"`

	// Endpoint overrides the S3 endpoint, for S3-compatible stores.
	Endpoint string `json:"endpoint,omitempty"`
}

// Default creates a Config with default values.
func Default() *Config {
	return &Config{
		Name: "reactor",
		Live: LiveConfig{
			Addr:           DefaultAddr,
			Path:           DefaultLivePath,
			MetricsPath:    DefaultMetricsPath,
			ReadTimeout:    "60s",
			WriteTimeout:   "10s",
			MaxMessageSize: 64 * 1024,
		},
		Snapshot: SnapshotConfig{
			Region: DefaultRegion,
		},
	}
}

// Load reads reactor.json from dir.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from path, applies defaults and validates
// the result.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New("CFG001").
				WithDetail("No " + ConfigFileName + " found in " + filepath.Dir(path)).
				WithSuggestion("Create " + ConfigFileName + " or run without --config to use defaults").
				Wrap(err)
		}
		return nil, errors.New("CFG001").WithDetail(err.Error()).Wrap(err)
	}

	cfg := Default()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, errors.New("CFG001").
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that " + filepath.Base(path) + " is valid JSON").
			Wrap(err)
	}

	cfg.configPath = path
	cfg.applyDefaults()
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// SaveTo writes the configuration to path.
func (c *Config) SaveTo(path string) error {
	data, err := json.MarshalIndent(c, "", "  ")
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, append(data, '\n'), 0644); err != nil {
		return err
	}
	c.configPath = path
	return nil
}

// Path returns the path the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// applyDefaults fills in default values for fields the file cleared.
func (c *Config) applyDefaults() {
	d := Default()
	if c.Name == "" {
		c.Name = d.Name
	}
	if c.Live.Addr == "" {
		c.Live.Addr = d.Live.Addr
	}
	if c.Live.Path == "" {
		c.Live.Path = d.Live.Path
	}
	if c.Live.MetricsPath == "" {
		c.Live.MetricsPath = d.Live.MetricsPath
	}
	if c.Live.ReadTimeout == "" {
		c.Live.ReadTimeout = d.Live.ReadTimeout
	}
	if c.Live.WriteTimeout == "" {
		c.Live.WriteTimeout = d.Live.WriteTimeout
	}
	if c.Live.MaxMessageSize == 0 {
		c.Live.MaxMessageSize = d.Live.MaxMessageSize
	}
	if c.Snapshot.Region == "" {
		c.Snapshot.Region = d.Snapshot.Region
	}
}

// Validate checks the configuration and returns a CFG001 error naming
// the first invalid field.
func (c *Config) Validate() error {
	if !strings.HasPrefix(c.Live.Path, "/") {
		return invalid("live.path", "must start with /, got %q", c.Live.Path)
	}
	if c.Live.MetricsPath != "" && !strings.HasPrefix(c.Live.MetricsPath, "/") {
		return invalid("live.metricsPath", "must start with /, got %q", c.Live.MetricsPath)
	}
	if c.Live.MetricsPath == c.Live.Path {
		return invalid("live.metricsPath", "must differ from live.path")
	}
	for _, f := range []struct{ field, value string }{
		{"live.readTimeout", c.Live.ReadTimeout},
		{"live.writeTimeout", c.Live.WriteTimeout},
	} {
		field, v := f.field, f.value
		d, err := time.ParseDuration(v)
		if err != nil {
			return invalid(field, "%q is not a duration", v)
		}
		if d <= 0 {
			return invalid(field, "must be positive, got %s", v)
		}
	}
	if c.Live.MaxMessageSize < 0 {
		return invalid("live.maxMessageSize", "must not be negative")
	}
	if strings.HasPrefix(c.Snapshot.Prefix, "/") {
		return invalid("snapshot.prefix", "must not start with /")
	}
	return nil
}

func invalid(field, format string, args ...any) *errors.Error {
	return errors.New("CFG001").
		WithDetail(field + ": " + fmt.Sprintf(format, args...))
}

// ReadTimeout returns the parsed live.readTimeout.
func (c *Config) ReadTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Live.ReadTimeout)
	return d
}

// WriteTimeout returns the parsed live.writeTimeout.
func (c *Config) WriteTimeout() time.Duration {
	d, _ := time.ParseDuration(c.Live.WriteTimeout)
	return d
}

// Exists reports whether dir contains reactor.json.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}

// FindProjectRoot walks up from startDir to the directory containing
// reactor.json.
func FindProjectRoot(startDir string) (string, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return "", err
	}

	for {
		if Exists(dir) {
			return dir, nil
		}

		parent := filepath.Dir(dir)
		if parent == dir {
			return "", errors.New("CFG001").
				WithDetail("No " + ConfigFileName + " found in " + startDir + " or any parent directory")
		}
		dir = parent
	}
}

// LoadFromWorkingDir loads the configuration of the enclosing project, or
// returns Default when there is none.
func LoadFromWorkingDir() (*Config, error) {
	wd, err := os.Getwd()
	if err != nil {
		return nil, err
	}

	root, err := FindProjectRoot(wd)
	if err != nil {
		return Default(), nil
	}
	return Load(root)
}
