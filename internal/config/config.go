// Package config resolves client configuration: the API base URL and a small
// optional user config file under ~/.craftfolio.
package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

// DefaultAPIBase is the local-development fallback used when no base URL is
// configured anywhere.
const DefaultAPIBase = "http://localhost:8000"

// EnvAPIBase is the environment variable holding the backend base URL.
const EnvAPIBase = "CRAFTFOLIO_API_BASE"

// Config is the persisted user configuration.
type Config struct {
	// APIBase overrides the backend base URL. Env wins over this.
	APIBase string `yaml:"api_base,omitempty"`
	// Theme selects the UI theme: "light", "dark" or "" for auto-detect.
	Theme string `yaml:"theme,omitempty"`
}

// DefaultConfigPath returns ~/.craftfolio/config.yaml.
func DefaultConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return "config.yaml"
	}
	return filepath.Join(home, ".craftfolio", "config.yaml")
}

// Load reads the config file at path. A missing file yields a zero Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &Config{}, nil
		}
		return nil, err
	}
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Save writes the config file, creating parent directories as needed.
func (c *Config) Save(path string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return err
	}
	data, err := yaml.Marshal(c)
	if err != nil {
		return err
	}
	return os.WriteFile(path, data, 0o644)
}

// APIBaseURL resolves the backend base URL: environment first (a .env file in
// the working directory is honoured), then the config file, then the
// localhost fallback. Trailing slashes are trimmed so paths join cleanly.
func APIBaseURL(cfg *Config) string {
	_ = godotenv.Load()

	base := os.Getenv(EnvAPIBase)
	if base == "" && cfg != nil {
		base = cfg.APIBase
	}
	if base == "" {
		base = DefaultAPIBase
	}
	return strings.TrimRight(base, "/")
}
