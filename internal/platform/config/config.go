package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Endpoint is a saved data-endpoint descriptor (host database, API, ...)
// consumed read-only by pre-flight connectivity checks.
type Endpoint struct {
	Host string `yaml:"host"`
	Port int    `yaml:"port"`
}

func (e Endpoint) Configured() bool {
	return e.Host != "" && e.Port > 0
}

func (e Endpoint) Address() string {
	return fmt.Sprintf("%s:%d", e.Host, e.Port)
}

type Config struct {
	BaseDir       string        `yaml:"base_dir"`
	CatalogURL    string        `yaml:"catalog_url"`
	CacheDir      string        `yaml:"cache_dir"`
	DBPath        string        `yaml:"db_path"`
	CacheTTL      time.Duration `yaml:"cache_ttl"`
	SweepSchedule string        `yaml:"sweep_schedule"`
	RunnerBinary  string        `yaml:"runner_binary"`
	DataEndpoint  Endpoint      `yaml:"data_endpoint"`
}

const (
	defaultCacheTTL      = 24 * time.Hour
	defaultSweepSchedule = "@hourly"
)

// New builds a config rooted at baseDir with derived paths and defaults.
func New(baseDir string) (Config, error) {
	if baseDir == "" {
		return Config{}, fmt.Errorf("base dir is required")
	}
	return Config{
		BaseDir:       baseDir,
		CacheDir:      filepath.Join(baseDir, "cache"),
		DBPath:        filepath.Join(baseDir, "toolhub.db"),
		CacheTTL:      defaultCacheTTL,
		SweepSchedule: defaultSweepSchedule,
		RunnerBinary:  filepath.Join(baseDir, "bin", "psrunner"),
	}, nil
}

// Load reads a YAML config file and overlays it on the defaults for baseDir.
// A missing file is not an error; the defaults stand.
func Load(baseDir, path string) (Config, error) {
	cfg, err := New(baseDir)
	if err != nil {
		return Config{}, err
	}
	raw, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return cfg, nil
		}
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	if err := yaml.Unmarshal(raw, &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	if cfg.CacheTTL <= 0 {
		cfg.CacheTTL = defaultCacheTTL
	}
	if cfg.SweepSchedule == "" {
		cfg.SweepSchedule = defaultSweepSchedule
	}
	return cfg, nil
}
