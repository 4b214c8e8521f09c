package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

const (
	catalogFileName = "efx_projects_metadata.json"
	dbFileName      = "efx.db"
	artifactDirName = "efx"
)

// Config defines efxctl configuration.
type Config struct {
	Data    DataConfig    `yaml:"data"`
	Catalog CatalogConfig `yaml:"catalog"`
	DB      DBConfig      `yaml:"db"`
	Storage StorageConfig `yaml:"storage"`
	Audio   AudioConfig   `yaml:"audio"`
	Export  ExportConfig  `yaml:"export"`
	Log     LogConfig     `yaml:"log"`
}

type DataConfig struct {
	Dir string `yaml:"dir"`
}

type CatalogConfig struct {
	Path string `yaml:"path"`
}

type DBConfig struct {
	Path string `yaml:"path"`
}

// StorageConfig controls where artifacts live. Location is only used until a
// storage change has been persisted.
type StorageConfig struct {
	DefaultDir string            `yaml:"default_dir"`
	Location   string            `yaml:"location"`
	External   map[string]string `yaml:"external"`
}

type AudioConfig struct {
	SampleBytes int64 `yaml:"sample_bytes"`
}

type ExportConfig struct {
	Dir string `yaml:"dir"`
}

type LogConfig struct {
	Level string `yaml:"level"`
	Path  string `yaml:"path"`
}

// Load reads configuration from an optional YAML file and environment
// variables. path overrides EFX_CONFIG_PATH when set.
func Load(path string) (Config, error) {
	cfg := Config{
		Data: DataConfig{
			Dir: defaultDataDir(),
		},
		Audio: AudioConfig{
			SampleBytes: 1 << 20,
		},
		Export: ExportConfig{
			Dir: ".",
		},
		Log: LogConfig{
			Level: "warn",
		},
	}

	if path == "" {
		path = os.Getenv("EFX_CONFIG_PATH")
	}
	if path != "" {
		if err := loadFromFile(path, &cfg); err != nil {
			return Config{}, err
		}
	}

	if dir := os.Getenv("EFX_DATA_DIR"); dir != "" {
		cfg.Data.Dir = dir
	}
	if catalogPath := os.Getenv("EFX_CATALOG_PATH"); catalogPath != "" {
		cfg.Catalog.Path = catalogPath
	}
	if dbPath := os.Getenv("EFX_DB_PATH"); dbPath != "" {
		cfg.DB.Path = dbPath
	}
	if dir := os.Getenv("EFX_STORAGE_DIR"); dir != "" {
		cfg.Storage.DefaultDir = dir
	}
	if loc := os.Getenv("EFX_STORAGE_LOCATION"); loc != "" {
		cfg.Storage.Location = loc
	}
	if refs := os.Getenv("EFX_STORAGE_EXTERNAL"); refs != "" {
		external, err := parseExternal(refs)
		if err != nil {
			return Config{}, fmt.Errorf("invalid EFX_STORAGE_EXTERNAL: %w", err)
		}
		cfg.Storage.External = external
	}
	if sampleStr := os.Getenv("EFX_AUDIO_SAMPLE_BYTES"); sampleStr != "" {
		sample, err := strconv.ParseInt(sampleStr, 10, 64)
		if err != nil {
			return Config{}, fmt.Errorf("invalid EFX_AUDIO_SAMPLE_BYTES: %w", err)
		}
		cfg.Audio.SampleBytes = sample
	}
	if dir := os.Getenv("EFX_EXPORT_DIR"); dir != "" {
		cfg.Export.Dir = dir
	}
	if level := os.Getenv("EFX_LOG_LEVEL"); level != "" {
		cfg.Log.Level = level
	}
	if logPath := os.Getenv("EFX_LOG_PATH"); logPath != "" {
		cfg.Log.Path = logPath
	}

	cfg.applyDerived()
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// Validate checks values that cannot be defaulted.
func (c Config) Validate() error {
	if strings.TrimSpace(c.Data.Dir) == "" {
		return fmt.Errorf("data dir is required")
	}
	if c.Audio.SampleBytes <= 0 {
		return fmt.Errorf("audio sample_bytes must be positive, got %d", c.Audio.SampleBytes)
	}
	switch strings.ToLower(c.Log.Level) {
	case "debug", "info", "warn", "error":
	default:
		return fmt.Errorf("unknown log level %q", c.Log.Level)
	}
	return nil
}

// applyDerived fills paths that default to locations inside the data dir.
func (c *Config) applyDerived() {
	if c.Catalog.Path == "" {
		c.Catalog.Path = filepath.Join(c.Data.Dir, catalogFileName)
	}
	if c.DB.Path == "" {
		c.DB.Path = filepath.Join(c.Data.Dir, dbFileName)
	}
	if c.Storage.DefaultDir == "" {
		c.Storage.DefaultDir = filepath.Join(c.Data.Dir, artifactDirName)
	}
}

func loadFromFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file: %w", err)
	}
	return nil
}

// parseExternal reads "ref=dir" pairs separated by commas.
func parseExternal(value string) (map[string]string, error) {
	out := make(map[string]string)
	for _, pair := range strings.Split(value, ",") {
		pair = strings.TrimSpace(pair)
		if pair == "" {
			continue
		}
		idx := strings.LastIndex(pair, "=")
		if idx <= 0 || idx == len(pair)-1 {
			return nil, fmt.Errorf("expected ref=dir, got %q", pair)
		}
		out[strings.TrimSpace(pair[:idx])] = strings.TrimSpace(pair[idx+1:])
	}
	return out, nil
}

func defaultDataDir() string {
	if dir, err := os.UserConfigDir(); err == nil && dir != "" {
		return filepath.Join(dir, "efxcreator")
	}
	return ".efxcreator"
}
