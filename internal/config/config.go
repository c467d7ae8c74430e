// ABOUTME: Configuration loader for the timizia CLI
// ABOUTME: Layers compiled defaults, an optional .env file and TIMIZIA_ environment variables

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/v2"

	"github.com/timizia/timizia-cli/internal/tokenstore"
)

const (
	// EnvPrefix is stripped from environment variable names
	EnvPrefix = "TIMIZIA_"

	// DefaultAPIURL is the hosted backend used when nothing is configured
	DefaultAPIURL = "https://timizia.onrender.com/api"

	// DefaultDotenvFile is read from the working directory when present
	DefaultDotenvFile = ".env"
)

// Credential store kinds
const (
	StoreFile   = "file"
	StoreMemory = "memory"
)

// ErrInvalidConfig wraps every validation failure
var ErrInvalidConfig = errors.New("invalid configuration")

// Config holds CLI configuration
type Config struct {
	APIURL          string        `koanf:"api_url"`
	LogLevel        string        `koanf:"log_level"`
	LogFormat       string        `koanf:"log_format"`
	ConfigDir       string        `koanf:"config_dir"`
	RequestTimeout  time.Duration `koanf:"request_timeout"`
	CredentialStore string        `koanf:"credential_store"`
}

// Defaults returns the compiled default configuration
func Defaults() *Config {
	return &Config{
		APIURL:          DefaultAPIURL,
		LogLevel:        "info",
		LogFormat:       "text",
		ConfigDir:       tokenstore.DefaultConfigDir(),
		RequestTimeout:  30 * time.Second,
		CredentialStore: StoreFile,
	}
}

// Load reads configuration with .env from the working directory
func Load() (*Config, error) {
	return LoadFrom(DefaultDotenvFile)
}

// LoadFrom reads configuration, lowest to highest precedence:
// compiled defaults, the dotenv file (missing file ignored), process env.
func LoadFrom(dotenvPath string) (*Config, error) {
	k := koanf.New(".")
	cfg := Defaults()

	if dotenvPath != "" {
		if err := k.Load(dotenvProvider{path: dotenvPath}, nil); err != nil {
			return nil, fmt.Errorf("load %s: %w", dotenvPath, err)
		}
	}

	if err := k.Load(env.Provider(EnvPrefix, ".", envKey), nil); err != nil {
		return nil, fmt.Errorf("load env vars: %w", err)
	}

	if err := k.Unmarshal("", cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Validate checks values that would otherwise fail later at runtime
func (c *Config) Validate() error {
	if strings.TrimSpace(c.APIURL) == "" {
		return fmt.Errorf("%w: api_url is required", ErrInvalidConfig)
	}
	u, err := url.Parse(strings.TrimSpace(c.APIURL))
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("%w: api_url %q must be an http(s) URL", ErrInvalidConfig, c.APIURL)
	}

	if c.RequestTimeout <= 0 {
		return fmt.Errorf("%w: request_timeout must be positive, got %s", ErrInvalidConfig, c.RequestTimeout)
	}

	switch strings.ToLower(c.CredentialStore) {
	case StoreFile, StoreMemory:
	default:
		return fmt.Errorf("%w: credential_store must be %q or %q, got %q",
			ErrInvalidConfig, StoreFile, StoreMemory, c.CredentialStore)
	}

	switch strings.ToLower(c.LogLevel) {
	case "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("%w: unknown log_level %q", ErrInvalidConfig, c.LogLevel)
	}

	switch strings.ToLower(c.LogFormat) {
	case "text", "json":
	default:
		return fmt.Errorf("%w: unknown log_format %q", ErrInvalidConfig, c.LogFormat)
	}

	if c.CredentialStore == StoreFile && c.ConfigDir == "" {
		return fmt.Errorf("%w: config_dir is required for the file credential store", ErrInvalidConfig)
	}
	return nil
}

// UsesMemoryStore reports whether credentials live only for this process
func (c *Config) UsesMemoryStore() bool {
	return strings.EqualFold(c.CredentialStore, StoreMemory)
}

// envKey maps TIMIZIA_API_URL to api_url
func envKey(s string) string {
	return strings.ToLower(strings.TrimPrefix(s, EnvPrefix))
}

// dotenvProvider is a koanf provider over a .env file. Only TIMIZIA_
// variables are picked up.
type dotenvProvider struct {
	path string
}

func (p dotenvProvider) ReadBytes() ([]byte, error) {
	return nil, errors.New("dotenv provider does not support ReadBytes")
}

func (p dotenvProvider) Read() (map[string]interface{}, error) {
	vars, err := godotenv.Read(p.path)
	if errors.Is(err, fs.ErrNotExist) {
		return map[string]interface{}{}, nil
	}
	if err != nil {
		return nil, err
	}

	out := make(map[string]interface{}, len(vars))
	for key, value := range vars {
		if strings.HasPrefix(key, EnvPrefix) {
			out[envKey(key)] = value
		}
	}
	return out, nil
}
