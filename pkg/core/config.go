// pkg/core/config.go
package core

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"gopkg.in/yaml.v3"
)

// Config holds genaro-deps configuration
type Config struct {
	Manifest       string        `yaml:"manifest"`     // Manifest file; the embedded default has no releases
	BaseDir        string        `yaml:"base_dir"`     // Root for relative manifest paths
	DownloadDir    string        `yaml:"download_dir"` // Where archives are downloaded, BaseDir when empty
	PkgConfig      string        `yaml:"pkg_config"`   // Package registry probe binary
	Platform       string        `yaml:"platform"`     // Overrides detected platform
	Arch           string        `yaml:"arch"`         // Overrides detected arch
	ConnectTimeout time.Duration `yaml:"connect_timeout"`
	Timeout        time.Duration `yaml:"timeout"`
	Retries        int           `yaml:"retries"` // Negative disables retries
	KeepArchive    bool          `yaml:"keep_archive"`
	Debug          bool          `yaml:"debug"`
}

// DefaultConfig returns a default configuration
func DefaultConfig() *Config {
	return &Config{
		BaseDir:        getDefaultBaseDir(),
		PkgConfig:      "pkg-config",
		ConnectTimeout: 120 * time.Second,
		Timeout:        10 * time.Minute,
		Retries:        3,
		KeepArchive:    true,
	}
}

// ConfigPath returns the default config file location
func ConfigPath() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return ""
	}
	return filepath.Join(home, ".config", "genaro-deps", "config.yaml")
}

// LoadConfig loads configuration from file
func LoadConfig(path string) (*Config, error) {
	if path == "" {
		path = ConfigPath()
		if path == "" {
			return DefaultConfig(), nil
		}
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return DefaultConfig(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := DefaultConfig()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}

	return cfg, nil
}

// SaveConfig saves configuration to file
func SaveConfig(cfg *Config, path string) error {
	if path == "" {
		path = ConfigPath()
		if path == "" {
			return fmt.Errorf("no config path available")
		}
	}

	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("creating config directory: %w", err)
	}

	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}

	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("writing config: %w", err)
	}

	return nil
}

// Resolve returns path made absolute against BaseDir
func (c *Config) Resolve(path string) string {
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(c.BaseDir, path)
}

func getDefaultBaseDir() string {
	if dir := os.Getenv("GENARO_DEPS_BASE_DIR"); dir != "" {
		return dir
	}

	wd, err := os.Getwd()
	if err != nil {
		return "."
	}
	return wd
}
