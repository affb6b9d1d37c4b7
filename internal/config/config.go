package config

import (
	"errors"
	"fmt"
	"io/fs"
	"net/url"
	"os"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/amishk599/tailorin/internal/extract"
)

// Config is the root configuration for tailorin.
type Config struct {
	Backend BackendConfig
	Host    HostConfig
	Extract ExtractConfig
	Store   StoreConfig
}

// BackendConfig describes how to reach the résumé-tailoring backend.
type BackendConfig struct {
	BaseURL      string
	Timeout      time.Duration // per-request timeout
	Retries      int           // extra attempts on transport errors and 429/5xx
	RetryDelay   time.Duration // base backoff, doubled per retry
	MinDelay     time.Duration // minimum gap between requests, 0 = unlimited
	TokenAccount string        // keyring account holding the bearer token, "" = no auth
}

// HostConfig selects where postings are extracted from.
type HostConfig struct {
	Type          string // "chrome", "url" or "file"
	DevToolsURL   string // chrome only
	UserAgent     string // url only
	Timeout       time.Duration
	MessageBuffer int
}

// ExtractConfig holds site rules consulted before the built-in ones.
type ExtractConfig struct {
	Sites []extract.SiteRules
}

// StoreConfig controls the chat transcript.
type StoreConfig struct {
	Path string // "" disables the transcript
}

const (
	HostChrome = "chrome"
	HostURL    = "url"
	HostFile   = "file"
)

const (
	defaultBaseURL     = "http://127.0.0.1:5000"
	defaultDevToolsURL = "http://127.0.0.1:9222"
	defaultUserAgent   = "Mozilla/5.0 (X11; Linux x86_64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/126.0 Safari/537.36"
)

// rawConfig is used for YAML unmarshaling (snake_case fields and duration as string).
type rawConfig struct {
	Backend rawBackendConfig `yaml:"backend"`
	Host    rawHostConfig    `yaml:"host"`
	Extract rawExtractConfig `yaml:"extract"`
	Store   StoreConfig      `yaml:"store"`
}

type rawBackendConfig struct {
	BaseURL      string `yaml:"base_url"`
	Timeout      string `yaml:"timeout"`
	Retries      int    `yaml:"retries"`
	RetryDelay   string `yaml:"retry_delay"`
	MinDelay     string `yaml:"min_delay"`
	TokenAccount string `yaml:"token_account"`
}

type rawHostConfig struct {
	Type          string `yaml:"type"`
	DevToolsURL   string `yaml:"devtools_url"`
	UserAgent     string `yaml:"user_agent"`
	Timeout       string `yaml:"timeout"`
	MessageBuffer int    `yaml:"message_buffer"`
}

type rawExtractConfig struct {
	Sites []rawSiteRules `yaml:"sites"`
}

type rawSiteRules struct {
	Name        string   `yaml:"name"`
	Hosts       []string `yaml:"hosts"`
	Company     []string `yaml:"company"`
	Role        []string `yaml:"role"`
	Description []string `yaml:"description"`
}

// Default returns the configuration used when no config file exists.
func Default() *Config {
	return &Config{
		Backend: BackendConfig{
			BaseURL:    defaultBaseURL,
			Timeout:    60 * time.Second,
			RetryDelay: time.Second,
		},
		Host: HostConfig{
			Type:          HostChrome,
			DevToolsURL:   defaultDevToolsURL,
			UserAgent:     defaultUserAgent,
			Timeout:       15 * time.Second,
			MessageBuffer: 4,
		},
	}
}

// LoadDotEnv loads KEY=VALUE pairs from path into the environment so that
// ${VARS} in the YAML resolve. A missing file is not an error.
func LoadDotEnv(path string) error {
	if err := godotenv.Load(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return fmt.Errorf("load %s: %w", path, err)
	}
	return nil
}

// Load reads and parses the YAML config file at path, validates it, and returns Config.
func Load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}
	return Parse(data)
}

// Parse expands environment variables in data, applies defaults for
// anything unset and validates the result.
func Parse(data []byte) (*Config, error) {
	expanded := os.ExpandEnv(string(data))

	var raw rawConfig
	if err := yaml.Unmarshal([]byte(expanded), &raw); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	cfg := Default()
	var err error

	if raw.Backend.BaseURL != "" {
		cfg.Backend.BaseURL = raw.Backend.BaseURL
	}
	if cfg.Backend.Timeout, err = parseDuration("backend.timeout", raw.Backend.Timeout, cfg.Backend.Timeout); err != nil {
		return nil, err
	}
	if cfg.Backend.RetryDelay, err = parseDuration("backend.retry_delay", raw.Backend.RetryDelay, cfg.Backend.RetryDelay); err != nil {
		return nil, err
	}
	if cfg.Backend.MinDelay, err = parseDuration("backend.min_delay", raw.Backend.MinDelay, cfg.Backend.MinDelay); err != nil {
		return nil, err
	}
	cfg.Backend.Retries = raw.Backend.Retries
	cfg.Backend.TokenAccount = raw.Backend.TokenAccount

	if raw.Host.Type != "" {
		cfg.Host.Type = raw.Host.Type
	}
	if raw.Host.DevToolsURL != "" {
		cfg.Host.DevToolsURL = raw.Host.DevToolsURL
	}
	if raw.Host.UserAgent != "" {
		cfg.Host.UserAgent = raw.Host.UserAgent
	}
	if raw.Host.MessageBuffer != 0 {
		cfg.Host.MessageBuffer = raw.Host.MessageBuffer
	}
	if cfg.Host.Timeout, err = parseDuration("host.timeout", raw.Host.Timeout, cfg.Host.Timeout); err != nil {
		return nil, err
	}

	for _, s := range raw.Extract.Sites {
		cfg.Extract.Sites = append(cfg.Extract.Sites, extract.SiteRules{
			Name:  s.Name,
			Hosts: s.Hosts,
			Rules: extract.Rules{
				Company:     extract.Chain(s.Company),
				Role:        extract.Chain(s.Role),
				Description: extract.Chain(s.Description),
			},
		})
	}

	cfg.Store = raw.Store

	if err := validate(cfg); err != nil {
		return nil, err
	}

	return cfg, nil
}

func parseDuration(field, value string, def time.Duration) (time.Duration, error) {
	if value == "" {
		return def, nil
	}
	d, err := time.ParseDuration(value)
	if err != nil {
		return 0, fmt.Errorf("parse %s %q: %w", field, value, err)
	}
	return d, nil
}

func validate(cfg *Config) error {
	u, err := url.Parse(cfg.Backend.BaseURL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return fmt.Errorf("backend.base_url must be an http(s) URL, got %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout <= 0 {
		return fmt.Errorf("backend.timeout must be positive, got %v", cfg.Backend.Timeout)
	}
	if cfg.Backend.Retries < 0 || cfg.Backend.Retries > 5 {
		return fmt.Errorf("backend.retries must be between 0 and 5, got %d", cfg.Backend.Retries)
	}
	if cfg.Backend.MinDelay < 0 {
		return fmt.Errorf("backend.min_delay must not be negative, got %v", cfg.Backend.MinDelay)
	}

	switch cfg.Host.Type {
	case HostChrome:
		u, err := url.Parse(cfg.Host.DevToolsURL)
		if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
			return fmt.Errorf("host.devtools_url must be an http(s) URL, got %q", cfg.Host.DevToolsURL)
		}
	case HostURL, HostFile:
	default:
		return fmt.Errorf("host.type must be one of chrome, url, file, got %q", cfg.Host.Type)
	}
	if cfg.Host.Timeout <= 0 {
		return fmt.Errorf("host.timeout must be positive, got %v", cfg.Host.Timeout)
	}
	if cfg.Host.MessageBuffer < 1 {
		return fmt.Errorf("host.message_buffer must be at least 1, got %d", cfg.Host.MessageBuffer)
	}

	for i, s := range cfg.Extract.Sites {
		if s.Name == "" {
			return fmt.Errorf("extract.sites[%d]: name is required", i)
		}
		if len(s.Hosts) == 0 {
			return fmt.Errorf("extract.sites[%d] (%s): at least one host is required", i, s.Name)
		}
		if err := s.Rules.Validate(); err != nil {
			return fmt.Errorf("extract.sites[%d] (%s): %w", i, s.Name, err)
		}
	}

	return nil
}
