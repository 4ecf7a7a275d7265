package config

import (
	"bytes"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/vango-dev/autovhost/internal/errors"
)

const (
	// ConfigFileName is the name of the configuration file.
	ConfigFileName = "autovhost.yaml"

	// DefaultListen is the default address of the virtual host server.
	DefaultListen = ":8080"

	// DefaultMetricsListen is the default address of the metrics server.
	DefaultMetricsListen = ":9090"

	// DefaultMetricsPath is the default metrics endpoint.
	DefaultMetricsPath = "/metrics"

	// DefaultBindTimeout bounds a single module load.
	DefaultBindTimeout = 10 * time.Second

	// DefaultReadHeaderTimeout is the server's header read timeout.
	DefaultReadHeaderTimeout = 5 * time.Second

	// DefaultShutdownTimeout bounds graceful shutdown.
	DefaultShutdownTimeout = 10 * time.Second
)

// Config represents autovhost.yaml.
type Config struct {
	// Listen is the address the virtual host server listens on.
	Listen string `yaml:"listen"`

	// Root is the folder holding one directory per domain. Relative paths
	// are resolved against the config file's directory.
	Root string `yaml:"root"`

	// Directory and Folder are accepted aliases of Root.
	Directory string `yaml:"directory,omitempty"`
	Folder    string `yaml:"folder,omitempty"`

	// Debug makes fallback pages name the missing module or export.
	Debug bool `yaml:"debug"`

	// Scan binds every domain directory under Root at startup.
	// Default: true.
	Scan *bool `yaml:"scan,omitempty"`

	// BindTimeout bounds each module load (e.g., "10s").
	BindTimeout Duration `yaml:"bindTimeout"`

	// Concurrency limits parallel binds during a scan. 0 means one per CPU.
	Concurrency int `yaml:"concurrency"`

	// Log contains logging configuration.
	Log LogConfig `yaml:"log"`

	// Metrics contains the Prometheus endpoint configuration.
	Metrics MetricsConfig `yaml:"metrics"`

	// Server contains HTTP server timeouts.
	Server ServerConfig `yaml:"server"`

	// Domains are explicit binds performed after the scan. Each entry is a
	// mapping with domainName and optional mainFile, exportName,
	// baseFolder and debug keys.
	Domains []any `yaml:"domains,omitempty"`

	// configPath stores the path where the config was loaded from.
	configPath string
}

// LogConfig contains logging settings.
type LogConfig struct {
	// Level is one of debug, info, warn, error.
	Level string `yaml:"level"`

	// Format is text or json.
	Format string `yaml:"format"`
}

// MetricsConfig contains the metrics endpoint settings.
type MetricsConfig struct {
	// Enabled serves Prometheus metrics on a separate listener.
	Enabled bool `yaml:"enabled"`

	// Listen is the metrics listener address.
	Listen string `yaml:"listen"`

	// Path is the metrics endpoint path.
	Path string `yaml:"path"`
}

// ServerConfig contains HTTP server settings.
type ServerConfig struct {
	ReadHeaderTimeout Duration `yaml:"readHeaderTimeout"`
	ShutdownTimeout   Duration `yaml:"shutdownTimeout"`
}

// Duration is a time.Duration written as a Go duration string in YAML.
type Duration struct {
	time.Duration
}

// UnmarshalYAML implements yaml.Unmarshaler.
func (d *Duration) UnmarshalYAML(value *yaml.Node) error {
	var s string
	if err := value.Decode(&s); err != nil {
		return err
	}
	if s == "" {
		d.Duration = 0
		return nil
	}
	parsed, err := time.ParseDuration(s)
	if err != nil {
		return fmt.Errorf("line %d: invalid duration %q", value.Line, s)
	}
	d.Duration = parsed
	return nil
}

// MarshalYAML implements yaml.Marshaler.
func (d Duration) MarshalYAML() (any, error) {
	return d.String(), nil
}

// New creates a new Config with default values.
func New() *Config {
	scan := true
	return &Config{
		Listen:      DefaultListen,
		Root:        ".",
		Scan:        &scan,
		BindTimeout: Duration{DefaultBindTimeout},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Metrics: MetricsConfig{
			Listen: DefaultMetricsListen,
			Path:   DefaultMetricsPath,
		},
		Server: ServerConfig{
			ReadHeaderTimeout: Duration{DefaultReadHeaderTimeout},
			ShutdownTimeout:   Duration{DefaultShutdownTimeout},
		},
	}
}

// Load reads autovhost.yaml from the specified directory.
func Load(dir string) (*Config, error) {
	return LoadFile(filepath.Join(dir, ConfigFileName))
}

// LoadFile reads configuration from the specified file path. Unknown keys
// are rejected.
func LoadFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, errors.New(errors.CodeConfigNotFound).
				WithPath(path).
				WithSuggestion("Run 'autovhost init' to create one, or pass --config")
		}
		return nil, errors.New(errors.CodeConfigInvalid).WithPath(path).Wrap(err)
	}

	cfg := New()
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(cfg); err != nil && err != io.EOF {
		return nil, errors.New(errors.CodeConfigInvalid).
			WithPath(path).
			WithDetail("Failed to parse " + filepath.Base(path) + ": " + err.Error()).
			WithSuggestion("Check that the file is valid YAML")
	}

	cfg.configPath = path
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// LoadOrDefault loads path when given. With an empty path it loads
// autovhost.yaml from the working directory if present and falls back to
// the built-in defaults otherwise.
func LoadOrDefault(path string) (*Config, error) {
	if path != "" {
		return LoadFile(path)
	}
	cfg, err := Load(".")
	if errors.CodeOf(err) == errors.CodeConfigNotFound {
		return New(), nil
	}
	return cfg, err
}

// SaveTo writes the configuration to the specified path.
func (c *Config) SaveTo(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return errors.New(errors.CodeConfigInvalid).Wrap(err)
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return errors.New(errors.CodeConfigInvalid).WithPath(path).Wrap(err)
	}
	c.configPath = path
	return nil
}

// Path returns the path where the config was loaded from.
func (c *Config) Path() string {
	return c.configPath
}

// Dir returns the directory containing the config file.
func (c *Config) Dir() string {
	if c.configPath == "" {
		return ""
	}
	return filepath.Dir(c.configPath)
}

// applyDefaults fills in default values for empty fields.
func (c *Config) applyDefaults() {
	// Root aliases, first set wins.
	if c.Root == "" || c.Root == "." {
		switch {
		case c.Directory != "":
			c.Root = c.Directory
		case c.Folder != "":
			c.Root = c.Folder
		}
	}
	if c.Root == "" {
		c.Root = "."
	}
	c.Directory, c.Folder = "", ""

	if c.Listen == "" {
		c.Listen = DefaultListen
	}
	if c.Scan == nil {
		scan := true
		c.Scan = &scan
	}
	if c.BindTimeout.Duration == 0 {
		c.BindTimeout.Duration = DefaultBindTimeout
	}
	if c.Log.Level == "" {
		c.Log.Level = "info"
	}
	if c.Log.Format == "" {
		c.Log.Format = "text"
	}
	if c.Metrics.Listen == "" {
		c.Metrics.Listen = DefaultMetricsListen
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = DefaultMetricsPath
	}
	if c.Server.ReadHeaderTimeout.Duration == 0 {
		c.Server.ReadHeaderTimeout.Duration = DefaultReadHeaderTimeout
	}
	if c.Server.ShutdownTimeout.Duration == 0 {
		c.Server.ShutdownTimeout.Duration = DefaultShutdownTimeout
	}
}

// Validate checks the configuration for errors.
func (c *Config) Validate() error {
	invalid := func(field, detail string) error {
		return errors.New(errors.CodeConfigInvalid).
			WithPath(c.configPath).
			WithField(field).
			WithDetail(detail)
	}

	if c.Listen == "" {
		return invalid("listen", "A listen address is required.")
	}
	if c.Concurrency < 0 {
		return invalid("concurrency", "Concurrency cannot be negative.")
	}
	if c.BindTimeout.Duration < 0 {
		return invalid("bindTimeout", "The bind timeout cannot be negative.")
	}
	if _, ok := parseLevel(c.Log.Level); !ok {
		return invalid("log.level", "Expected one of debug, info, warn, error.")
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		return invalid("log.format", "Expected text or json.")
	}
	if c.Metrics.Enabled {
		if c.Metrics.Listen == "" {
			return invalid("metrics.listen", "A metrics listen address is required when metrics are enabled.")
		}
		if !strings.HasPrefix(c.Metrics.Path, "/") {
			return invalid("metrics.path", "The metrics path must start with '/'.")
		}
	}
	for i, d := range c.Domains {
		if _, ok := d.(map[string]any); !ok {
			return invalid(fmt.Sprintf("domains[%d]", i), "Each domain must be a mapping with at least domainName.")
		}
	}
	return nil
}

// RootPath returns the absolute domains folder. Relative roots are
// resolved against the config file's directory, or the working directory
// for defaulted configs.
func (c *Config) RootPath() string {
	root := c.Root
	if !filepath.IsAbs(root) && c.configPath != "" {
		root = filepath.Join(c.Dir(), root)
	}
	if abs, err := filepath.Abs(root); err == nil {
		return abs
	}
	return filepath.Clean(root)
}

// ShouldScan reports whether the root folder is scanned at startup.
func (c *Config) ShouldScan() bool {
	return c.Scan == nil || *c.Scan
}

// SlogLevel returns the configured log level.
func (c *Config) SlogLevel() slog.Level {
	level, _ := parseLevel(c.Log.Level)
	return level
}

func parseLevel(s string) (slog.Level, bool) {
	switch strings.ToLower(s) {
	case "debug":
		return slog.LevelDebug, true
	case "info", "":
		return slog.LevelInfo, true
	case "warn", "warning":
		return slog.LevelWarn, true
	case "error":
		return slog.LevelError, true
	}
	return slog.LevelInfo, false
}

// Exists reports whether dir contains autovhost.yaml.
func Exists(dir string) bool {
	_, err := os.Stat(filepath.Join(dir, ConfigFileName))
	return err == nil
}
