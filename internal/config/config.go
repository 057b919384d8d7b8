package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	inderrors "github.com/Aman-CERP/indsearch/internal/errors"
)

// Project config file names, in lookup order.
const (
	ProjectConfigFile    = ".indsearch.yaml"
	ProjectConfigFileAlt = ".indsearch.yml"
)

// Config represents the complete indsearch configuration.
type Config struct {
	Version int           `yaml:"version" json:"version"`
	Catalog CatalogConfig `yaml:"catalog" json:"catalog"`
	Search  SearchConfig  `yaml:"search" json:"search"`
	Render  RenderConfig  `yaml:"render" json:"render"`
	Server  ServerConfig  `yaml:"server" json:"server"`
}

// CatalogConfig configures where the indicator catalog comes from.
type CatalogConfig struct {
	// Source is a file path or an http(s) URL. Default: indicators.json.
	Source string `yaml:"source" json:"source"`
	// Watch reloads the catalog when a local source file changes (serve only).
	Watch bool `yaml:"watch" json:"watch"`
	// Timeout bounds a remote fetch (e.g. "30s").
	Timeout string `yaml:"timeout" json:"timeout"`
}

// SearchConfig configures the full-text index.
type SearchConfig struct {
	// Boosts weights matches per indexed field. Fields not listed weigh 1.
	Boosts map[string]float64 `yaml:"boosts" json:"boosts"`
	// Fuzzy is the tolerated edit distance as a fraction of the term length.
	// Values >= 1 are an absolute distance.
	Fuzzy float64 `yaml:"fuzzy" json:"fuzzy"`
	// Prefix lets a query term match any token it is a prefix of.
	Prefix *bool `yaml:"prefix,omitempty" json:"prefix,omitempty"`
}

// RenderConfig configures the HTML output.
type RenderConfig struct {
	// DocBase is prepended to "<module>.<name>" to build API links.
	DocBase string `yaml:"doc_base" json:"doc_base"`
	// AllowMarkup emits sanitised HTML from abstracts instead of escaping it.
	AllowMarkup bool `yaml:"allow_markup" json:"allow_markup"`
}

// ServerConfig configures the HTTP and MCP servers.
type ServerConfig struct {
	Addr      string `yaml:"addr" json:"addr"`
	Transport string `yaml:"transport" json:"transport"`
	LogLevel  string `yaml:"log_level" json:"log_level"`
}

// IndexedFields are the catalog fields the search index covers.
var IndexedFields = []string{"title", "abstract", "variables", "keywords"}

// NewConfig creates a Config with defaults.
func NewConfig() *Config {
	prefix := true
	return &Config{
		Version: 1,
		Catalog: CatalogConfig{
			Source:  "indicators.json",
			Watch:   false,
			Timeout: "30s",
		},
		Search: SearchConfig{
			Boosts: map[string]float64{"title": 3, "variables": 2},
			Fuzzy:  0.1,
			Prefix: &prefix,
		},
		Render: RenderConfig{
			DocBase: "api.html#xclim.indicators.",
		},
		Server: ServerConfig{
			Addr:      "127.0.0.1:8080",
			Transport: "stdio",
			LogLevel:  "info",
		},
	}
}

// PrefixEnabled reports whether prefix matching is on.
func (s SearchConfig) PrefixEnabled() bool {
	return s.Prefix == nil || *s.Prefix
}

// FetchTimeout parses Catalog.Timeout. Invalid or empty values yield 30s.
func (c *Config) FetchTimeout() time.Duration {
	d, err := time.ParseDuration(c.Catalog.Timeout)
	if err != nil || d <= 0 {
		return 30 * time.Second
	}
	return d
}

// GetUserConfigPath returns the path to the user configuration file:
// $XDG_CONFIG_HOME/indsearch/config.yaml or ~/.config/indsearch/config.yaml.
func GetUserConfigPath() string {
	if xdg := os.Getenv("XDG_CONFIG_HOME"); xdg != "" {
		return filepath.Join(xdg, "indsearch", "config.yaml")
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), ".config", "indsearch", "config.yaml")
	}
	return filepath.Join(home, ".config", "indsearch", "config.yaml")
}

// Load loads configuration for the project in dir.
// Precedence, lowest first:
//  1. Defaults
//  2. User config (~/.config/indsearch/config.yaml)
//  3. Project config (.indsearch.yaml in dir)
//  4. .env in dir (only for variables not already set)
//  5. INDSEARCH_* environment variables
func Load(dir string) (*Config, error) {
	cfg := NewConfig()

	if path := GetUserConfigPath(); fileExists(path) {
		if err := cfg.loadYAML(path); err != nil {
			return nil, fmt.Errorf("failed to load user config: %w", err)
		}
	}

	if err := cfg.loadFromFile(dir); err != nil {
		return nil, err
	}

	if envPath := filepath.Join(dir, ".env"); fileExists(envPath) {
		if err := godotenv.Load(envPath); err != nil {
			return nil, inderrors.ConfigError(fmt.Sprintf("failed to load %s", envPath), err)
		}
	}
	cfg.applyEnvOverrides()

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// ProjectConfigPath returns the project config file in dir, or "" if none.
func ProjectConfigPath(dir string) string {
	for _, name := range []string{ProjectConfigFile, ProjectConfigFileAlt} {
		if p := filepath.Join(dir, name); fileExists(p) {
			return p
		}
	}
	return ""
}

func (c *Config) loadFromFile(dir string) error {
	path := ProjectConfigPath(dir)
	if path == "" {
		return nil
	}
	return c.loadYAML(path)
}

func (c *Config) loadYAML(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return inderrors.New(inderrors.ErrCodeConfigNotFound,
			fmt.Sprintf("failed to read config file %s", path), err)
	}

	var parsed Config
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return inderrors.ConfigError(fmt.Sprintf("failed to parse config file %s", path), err)
	}

	c.mergeWith(&parsed)
	return nil
}

// mergeWith merges set values from other into c.
func (c *Config) mergeWith(other *Config) {
	if other.Version != 0 {
		c.Version = other.Version
	}

	if other.Catalog.Source != "" {
		c.Catalog.Source = other.Catalog.Source
	}
	// A file that enables watching wins; there is no way to tell an explicit
	// false from an absent key here, so disabling is done via env.
	if other.Catalog.Watch {
		c.Catalog.Watch = true
	}
	if other.Catalog.Timeout != "" {
		c.Catalog.Timeout = other.Catalog.Timeout
	}

	for field, boost := range other.Search.Boosts {
		if c.Search.Boosts == nil {
			c.Search.Boosts = make(map[string]float64)
		}
		c.Search.Boosts[field] = boost
	}
	if other.Search.Fuzzy != 0 {
		c.Search.Fuzzy = other.Search.Fuzzy
	}
	if other.Search.Prefix != nil {
		v := *other.Search.Prefix
		c.Search.Prefix = &v
	}

	if other.Render.DocBase != "" {
		c.Render.DocBase = other.Render.DocBase
	}
	if other.Render.AllowMarkup {
		c.Render.AllowMarkup = true
	}

	if other.Server.Addr != "" {
		c.Server.Addr = other.Server.Addr
	}
	if other.Server.Transport != "" {
		c.Server.Transport = other.Server.Transport
	}
	if other.Server.LogLevel != "" {
		c.Server.LogLevel = other.Server.LogLevel
	}
}

// applyEnvOverrides applies INDSEARCH_* environment variable overrides.
func (c *Config) applyEnvOverrides() {
	if v := os.Getenv("INDSEARCH_CATALOG"); v != "" {
		c.Catalog.Source = v
	}
	if v := os.Getenv("INDSEARCH_WATCH"); v != "" {
		c.Catalog.Watch = parseBool(v)
	}
	if v := os.Getenv("INDSEARCH_FUZZY"); v != "" {
		if f, err := strconv.ParseFloat(strings.TrimSpace(v), 64); err == nil {
			c.Search.Fuzzy = f
		}
	}
	if v := os.Getenv("INDSEARCH_PREFIX"); v != "" {
		p := parseBool(v)
		c.Search.Prefix = &p
	}
	if v := os.Getenv("INDSEARCH_DOC_BASE"); v != "" {
		c.Render.DocBase = v
	}
	if v := os.Getenv("INDSEARCH_ADDR"); v != "" {
		c.Server.Addr = v
	}
	if v := os.Getenv("INDSEARCH_LOG_LEVEL"); v != "" {
		c.Server.LogLevel = v
	}
}

// Validate returns an error describing the first invalid setting.
func (c *Config) Validate() error {
	if strings.TrimSpace(c.Catalog.Source) == "" {
		return inderrors.ConfigError("catalog.source must not be empty", nil)
	}
	if c.Catalog.Timeout != "" {
		if d, err := time.ParseDuration(c.Catalog.Timeout); err != nil || d <= 0 {
			return inderrors.ConfigError(fmt.Sprintf("catalog.timeout must be a positive duration, got %q", c.Catalog.Timeout), err)
		}
	}

	known := make(map[string]bool, len(IndexedFields))
	for _, f := range IndexedFields {
		known[f] = true
	}
	for field, boost := range c.Search.Boosts {
		if !known[field] {
			return inderrors.ConfigError(fmt.Sprintf("search.boosts: unknown field %q (indexed: %s)",
				field, strings.Join(IndexedFields, ", ")), nil)
		}
		if boost <= 0 {
			return inderrors.ConfigError(fmt.Sprintf("search.boosts.%s must be positive, got %g", field, boost), nil)
		}
	}
	if c.Search.Fuzzy < 0 || c.Search.Fuzzy > 2 {
		return inderrors.ConfigError(fmt.Sprintf("search.fuzzy must be between 0 and 2, got %g", c.Search.Fuzzy), nil)
	}

	if strings.ToLower(c.Server.Transport) != "stdio" {
		return inderrors.ConfigError(fmt.Sprintf("server.transport must be 'stdio', got %s", c.Server.Transport), nil)
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[strings.ToLower(c.Server.LogLevel)] {
		return inderrors.ConfigError(fmt.Sprintf("server.log_level must be 'debug', 'info', 'warn', or 'error', got %s", c.Server.LogLevel), nil)
	}

	return nil
}

// WriteYAML writes the configuration to a YAML file.
func (c *Config) WriteYAML(path string) error {
	data, err := yaml.Marshal(c)
	if err != nil {
		return fmt.Errorf("failed to marshal config: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}
	return nil
}

func parseBool(v string) bool {
	v = strings.ToLower(strings.TrimSpace(v))
	return v == "true" || v == "1" || v == "yes"
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
