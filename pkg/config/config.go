package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/hashicorp/go-hclog"
	"github.com/mitchellh/go-homedir"
	"github.com/pkg/errors"
	"lab47.dev/dpm/pkg/storage"
)

type Config struct {
	path      string
	configDir string

	// Actual Config
	Registry     string `json:"registry"`
	IndexURL     string `json:"index-url,omitempty"`
	DownloadDir  string `json:"download-dir,omitempty"`
	FetchTimeout string `json:"fetch-timeout,omitempty"`
	LogLevel     string `json:"log-level,omitempty"`
}

const (
	DefaultConfigPath   = "~/.config/dpm/config.json"
	DefaultRegistryPath = "~/.config/dpm/repo.json"
	DefaultFetchTimeout = "30s"
	DefaultLogLevel     = "info"
)

// LoadConfig reads $DPM_CONFIG, or the default config file when it exists,
// falling back to built in defaults. DPM_* environment variables override
// whatever was loaded.
func LoadConfig() (*Config, error) {
	if loc := os.Getenv("DPM_CONFIG"); loc != "" {
		return loadFile(loc)
	}

	path, err := homedir.Expand(DefaultConfigPath)
	if err != nil {
		return nil, err
	}

	if _, err := os.Stat(path); err == nil {
		return loadFile(path)
	}

	cfg := &Config{
		path:      path,
		configDir: filepath.Dir(path),
	}

	return finish(cfg)
}

func loadFile(path string) (*Config, error) {
	path, err := homedir.Expand(path)
	if err != nil {
		return nil, err
	}

	cfg, err := storage.FromJSON[*Config](path)
	if err != nil {
		return nil, errors.Wrapf(err, "loading config")
	}

	if cfg == nil {
		cfg = &Config{}
	}

	cfg.path = path
	cfg.configDir = filepath.Dir(path)

	return finish(cfg)
}

func finish(cfg *Config) (*Config, error) {
	if cfg.Registry == "" {
		cfg.Registry = DefaultRegistryPath
	}

	if cfg.FetchTimeout == "" {
		cfg.FetchTimeout = DefaultFetchTimeout
	}

	if cfg.LogLevel == "" {
		cfg.LogLevel = DefaultLogLevel
	}

	updateFromEnv(cfg)

	var err error

	cfg.Registry, err = homedir.Expand(cfg.Registry)
	if err != nil {
		return nil, err
	}

	if cfg.DownloadDir != "" {
		cfg.DownloadDir, err = homedir.Expand(cfg.DownloadDir)
		if err != nil {
			return nil, err
		}
	}

	if _, err := cfg.Timeout(); err != nil {
		return nil, err
	}

	if cfg.Level() == hclog.NoLevel {
		return nil, fmt.Errorf("unknown log level: %s", cfg.LogLevel)
	}

	return cfg, nil
}

func updateFromEnv(cfg *Config) {
	if path := os.Getenv("DPM_REGISTRY"); path != "" {
		cfg.Registry = path
	}

	if u := os.Getenv("DPM_INDEX_URL"); u != "" {
		cfg.IndexURL = u
	}

	if dir := os.Getenv("DPM_DOWNLOAD_DIR"); dir != "" {
		cfg.DownloadDir = dir
	}

	if d := os.Getenv("DPM_FETCH_TIMEOUT"); d != "" {
		cfg.FetchTimeout = d
	}

	if lvl := os.Getenv("DPM_LOG_LEVEL"); lvl != "" {
		cfg.LogLevel = lvl
	}
}

func (c *Config) Path() string {
	return c.path
}

func (c *Config) ConfigDir() string {
	return c.configDir
}

// Timeout bounds each network operation of a command.
func (c *Config) Timeout() (time.Duration, error) {
	d, err := time.ParseDuration(c.FetchTimeout)
	if err != nil {
		return 0, errors.Wrapf(err, "invalid fetch-timeout")
	}

	if d <= 0 {
		return 0, fmt.Errorf("fetch-timeout must be positive: %s", c.FetchTimeout)
	}

	return d, nil
}

func (c *Config) Level() hclog.Level {
	return hclog.LevelFromString(c.LogLevel)
}

// DownloadPath is where fetched artifacts go, the OS temp dir unless
// configured.
func (c *Config) DownloadPath() string {
	if c.DownloadDir != "" {
		return c.DownloadDir
	}

	return os.TempDir()
}

// Save writes the config back to where it was loaded from.
func (c *Config) Save() error {
	err := os.MkdirAll(c.configDir, 0755)
	if err != nil {
		return err
	}

	return storage.ToJSON(c, c.path)
}
