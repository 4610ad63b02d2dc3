// Package config loads the Admin API connection and logging settings.
//
// Values are layered: defaults, then a YAML file, then environment
// variables, then command line flags. A .env file, when present, is loaded
// into the environment first without overriding variables that are
// already set.
package config

import (
	"errors"
	"fmt"
	"io"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// Environment variables read by Load.
const (
	EnvAdminURL   = "KONG_ADMIN_URL"
	EnvAdminToken = "KONG_ADMIN_TOKEN"
	EnvTimeout    = "KONG_ADMIN_TIMEOUT"
	EnvMaxPages   = "KONG_ADMIN_MAX_PAGES"
	EnvConfigFile = "MCP_KONG_CONFIG"
)

const (
	// DefaultTimeout bounds a single Admin API exchange.
	DefaultTimeout = 30 * time.Second

	// DefaultEnvFile is loaded when LoadOptions.EnvFile is empty.
	DefaultEnvFile = ".env"
)

// ErrInvalidConfig is wrapped by every validation error.
var ErrInvalidConfig = errors.New("invalid configuration")

// For mocking in tests
var lookupEnv = os.LookupEnv

// Config holds the settings shared by all transports.
type Config struct {
	// AdminURL of the Kong Admin API. Empty leaves the choice to the admin
	// client, which falls back to http://localhost:8001.
	AdminURL string `yaml:"adminUrl"`

	// AdminToken is sent as a bearer token when set.
	AdminToken string `yaml:"adminToken"`

	Timeout  time.Duration `yaml:"timeout"`
	MaxPages int           `yaml:"maxPages"`

	LogLevel  string `yaml:"logLevel"`
	LogFormat string `yaml:"logFormat"`
}

// Default returns the built-in configuration.
func Default() Config {
	return Config{
		Timeout:   DefaultTimeout,
		LogLevel:  "info",
		LogFormat: "text",
	}
}

// LoadOptions controls where Load looks for settings.
type LoadOptions struct {
	// File is a YAML config file. Empty falls back to $MCP_KONG_CONFIG; if
	// that is unset too, no file is read.
	File string

	// EnvFile is a dotenv file. Empty means DefaultEnvFile. A missing file
	// is not an error.
	EnvFile string
}

// Load builds a Config from defaults, the YAML file and the environment.
// Flags are applied by the caller with Merge.
func Load(opts LoadOptions) (Config, error) {
	envFile := opts.EnvFile
	if envFile == "" {
		envFile = DefaultEnvFile
	}
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return Config{}, fmt.Errorf("failed to load env file %s: %w", envFile, err)
	}

	cfg := Default()

	file := opts.File
	if file == "" {
		file, _ = lookupEnv(EnvConfigFile)
	}
	if file != "" {
		fromFile, err := LoadFile(file)
		if err != nil {
			return Config{}, err
		}
		cfg = cfg.Merge(fromFile)
	}

	fromEnv, err := FromEnv()
	if err != nil {
		return Config{}, err
	}
	cfg = cfg.Merge(fromEnv)

	return cfg, cfg.Validate()
}

// LoadFile reads a YAML config file. Unknown keys are rejected.
func LoadFile(path string) (Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return Config{}, fmt.Errorf("failed to open config file %s: %w", path, err)
	}
	defer f.Close()

	var cfg Config
	dec := yaml.NewDecoder(f)
	dec.KnownFields(true)
	if err := dec.Decode(&cfg); err != nil {
		if errors.Is(err, io.EOF) {
			return Config{}, nil
		}
		return Config{}, fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return cfg, nil
}

// FromEnv reads the KONG_ADMIN_* variables. Unset variables stay zero.
func FromEnv() (Config, error) {
	var cfg Config

	if v, ok := lookupEnv(EnvAdminURL); ok {
		cfg.AdminURL = strings.TrimSpace(v)
	}
	if v, ok := lookupEnv(EnvAdminToken); ok {
		cfg.AdminToken = strings.TrimSpace(v)
	}
	if v, ok := lookupEnv(EnvTimeout); ok && v != "" {
		d, err := parseTimeout(v)
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvTimeout, err)
		}
		cfg.Timeout = d
	}
	if v, ok := lookupEnv(EnvMaxPages); ok && v != "" {
		n, err := strconv.Atoi(strings.TrimSpace(v))
		if err != nil {
			return Config{}, fmt.Errorf("%w: %s: %v", ErrInvalidConfig, EnvMaxPages, err)
		}
		cfg.MaxPages = n
	}

	return cfg, nil
}

// parseTimeout accepts a Go duration ("15s") or a bare number of seconds.
func parseTimeout(v string) (time.Duration, error) {
	v = strings.TrimSpace(v)
	if secs, err := strconv.Atoi(v); err == nil {
		return time.Duration(secs) * time.Second, nil
	}
	return time.ParseDuration(v)
}

// Merge returns c with every non-zero field of overlay applied.
func (c Config) Merge(overlay Config) Config {
	if overlay.AdminURL != "" {
		c.AdminURL = overlay.AdminURL
	}
	if overlay.AdminToken != "" {
		c.AdminToken = overlay.AdminToken
	}
	if overlay.Timeout != 0 {
		c.Timeout = overlay.Timeout
	}
	if overlay.MaxPages != 0 {
		c.MaxPages = overlay.MaxPages
	}
	if overlay.LogLevel != "" {
		c.LogLevel = overlay.LogLevel
	}
	if overlay.LogFormat != "" {
		c.LogFormat = overlay.LogFormat
	}
	return c
}

// Validate reports the first invalid setting.
func (c Config) Validate() error {
	if c.AdminURL != "" {
		u, err := url.Parse(c.AdminURL)
		if err != nil {
			return fmt.Errorf("%w: admin URL: %v", ErrInvalidConfig, err)
		}
		if u.Scheme != "http" && u.Scheme != "https" {
			return fmt.Errorf("%w: admin URL must use http or https, got %q", ErrInvalidConfig, u.Scheme)
		}
		if u.Host == "" {
			return fmt.Errorf("%w: admin URL must include a host", ErrInvalidConfig)
		}
	}
	if c.Timeout < 0 {
		return fmt.Errorf("%w: timeout must not be negative", ErrInvalidConfig)
	}
	if c.MaxPages < 0 {
		return fmt.Errorf("%w: max pages must not be negative", ErrInvalidConfig)
	}
	switch c.LogLevel {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("%w: unknown log level %q", ErrInvalidConfig, c.LogLevel)
	}
	switch c.LogFormat {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log format %q", ErrInvalidConfig, c.LogFormat)
	}
	return nil
}

// String renders the config with the token masked.
func (c Config) String() string {
	token := ""
	if c.AdminToken != "" {
		token = "***"
	}
	return fmt.Sprintf("adminUrl=%s adminToken=%s timeout=%s maxPages=%d logLevel=%s logFormat=%s",
		c.AdminURL, token, c.Timeout, c.MaxPages, c.LogLevel, c.LogFormat)
}
