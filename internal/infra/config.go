package infra

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"csx_ticker/internal/domain"

	"gopkg.in/yaml.v3"
)

const (
	// DefaultUserAgent is a browser-like user agent string to avoid bot detection
	DefaultUserAgent = "Mozilla/5.0 (Windows NT 10.0; Win64; x64) AppleWebKit/537.36 (KHTML, like Gecko) Chrome/120.0.0.0 Safari/537.36"
)

// Config holds every application setting.
// After LoadConfig reads the file, environment variables override selected values.
type Config struct {
	App struct {
		Name    string `yaml:"name"`
		Version string `yaml:"version"`
	} `yaml:"app"`

	Market struct {
		APIURL             string `yaml:"api_url"`
		RefreshIntervalSec int    `yaml:"refresh_interval_sec"`
		RequestTimeoutSec  int    `yaml:"request_timeout_sec"`
		TopN               int    `yaml:"top_n"`
		DisplayTimezone    string `yaml:"display_timezone"`
	} `yaml:"market"`

	Web struct {
		Enabled       bool   `yaml:"enabled"`
		ListenAddr    string `yaml:"listen_addr"`
		PauseWhenIdle bool   `yaml:"pause_when_idle"`
	} `yaml:"web"`

	Console struct {
		Enabled bool `yaml:"enabled"`
	} `yaml:"console"`

	Storage struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"storage"`

	Assets struct {
		LogoURLTemplate string `yaml:"logo_url_template"` // e.g. "https://cdn.example/%s.png", empty disables
		Dir             string `yaml:"dir"`
	} `yaml:"assets"`

	Logging struct {
		Level string `yaml:"level"`
		Dir   string `yaml:"dir"`
	} `yaml:"logging"`

	Debug struct {
		PprofAddr string `yaml:"pprof_addr"`
	} `yaml:"debug"`
}

// LoadConfig reads and parses the configuration file.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", domain.ErrConfigNotFound, path)
		}
		return nil, err
	}

	return ParseConfig(data)
}

// ParseConfig parses YAML, applies env overrides and defaults, then validates.
func ParseConfig(data []byte) (*Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, err
	}

	overrideWithEnv(&cfg)
	cfg.applyDefaults()

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &cfg, nil
}

func (c *Config) applyDefaults() {
	if c.Market.APIURL == "" {
		c.Market.APIURL = DefaultCSXURL
	}
	if c.Market.RefreshIntervalSec == 0 {
		c.Market.RefreshIntervalSec = 30
	}
	if c.Market.RequestTimeoutSec == 0 {
		c.Market.RequestTimeoutSec = 10
	}
	if c.Market.TopN == 0 {
		c.Market.TopN = 5
	}
	if c.Web.ListenAddr == "" {
		c.Web.ListenAddr = ":8080"
	}
	if c.Logging.Dir == "" {
		c.Logging.Dir = "logs"
	}
}

// Validate checks configuration validity
func (c *Config) Validate() error {
	if !hasPrefix(c.Market.APIURL, "http://") && !hasPrefix(c.Market.APIURL, "https://") {
		return &domain.ConfigError{Field: "market.api_url", Err: fmt.Errorf("invalid URL: %s", c.Market.APIURL)}
	}
	if c.Market.RefreshIntervalSec <= 0 {
		return &domain.ConfigError{Field: "market.refresh_interval_sec", Err: errors.New("refresh interval must be positive")}
	}
	if c.Market.RequestTimeoutSec <= 0 {
		return &domain.ConfigError{Field: "market.request_timeout_sec", Err: errors.New("request timeout must be positive")}
	}
	if c.Market.TopN <= 0 {
		return &domain.ConfigError{Field: "market.top_n", Err: errors.New("top_n must be positive")}
	}
	if _, err := c.Location(); err != nil {
		return &domain.ConfigError{Field: "market.display_timezone", Err: err}
	}
	if c.Assets.LogoURLTemplate != "" && !strings.Contains(c.Assets.LogoURLTemplate, "%s") {
		return &domain.ConfigError{Field: "assets.logo_url_template", Err: errors.New("template must contain %s")}
	}
	if c.Storage.Enabled && c.Storage.Path == "" {
		return &domain.ConfigError{Field: "storage.path", Err: errors.New("path is required when storage is enabled")}
	}
	if !c.Web.Enabled && !c.Console.Enabled {
		return &domain.ConfigError{Field: "web.enabled", Err: errors.New("at least one renderer (web or console) must be enabled")}
	}

	return nil
}

// RefreshInterval returns the conditional refresh period
func (c *Config) RefreshInterval() time.Duration {
	return time.Duration(c.Market.RefreshIntervalSec) * time.Second
}

// RequestTimeout returns the HTTP timeout for one fetch
func (c *Config) RequestTimeout() time.Duration {
	return time.Duration(c.Market.RequestTimeoutSec) * time.Second
}

// Location resolves the display time zone. Empty means the host's local zone.
func (c *Config) Location() (*time.Location, error) {
	if c.Market.DisplayTimezone == "" {
		return time.Local, nil
	}
	return time.LoadLocation(c.Market.DisplayTimezone)
}

func hasPrefix(s, prefix string) bool {
	return len(s) >= len(prefix) && s[0:len(prefix)] == prefix
}

// overrideWithEnv overwrites settings from environment variables when present.
func overrideWithEnv(cfg *Config) {
	if url := os.Getenv("CSX_API_URL"); url != "" {
		cfg.Market.APIURL = url
	}
	if addr := os.Getenv("CSX_LISTEN_ADDR"); addr != "" {
		cfg.Web.ListenAddr = addr
	}
	if level := os.Getenv("CSX_LOG_LEVEL"); level != "" {
		cfg.Logging.Level = level
	}
}
