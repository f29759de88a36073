package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

const (
	Dir          = ".nodebox"
	ConfigFile   = "config.yaml"
	NetworksFile = "networks.yaml"
	Dockerfile   = "Dockerfile"
)

// Config holds per-sandbox settings. All fields have working defaults; the
// file only exists so operators can rename the container or move the port.
type Config struct {
	Version   string `yaml:"version"`
	Container string `yaml:"container"`
	Image     string `yaml:"image"`
	Port      int    `yaml:"port"`
	DataDir   string `yaml:"data_dir"`
}

// Default returns the stock sandbox configuration.
func Default() *Config {
	return &Config{
		Version:   "1",
		Container: "nodebox",
		Image:     "nodebox",
		Port:      4001,
		DataDir:   "data",
	}
}

// Load reads config from .nodebox/config.yaml relative to rootDir. A missing
// file is not an error: defaults apply.
func Load(rootDir string) (*Config, error) {
	path := filepath.Join(rootDir, Dir, ConfigFile)
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return nil, fmt.Errorf("reading config: %w", err)
	}

	cfg := Default()
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	return cfg, nil
}

// Save writes config to .nodebox/config.yaml relative to rootDir.
func Save(rootDir string, cfg *Config) error {
	dir := filepath.Join(rootDir, Dir)
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating config dir: %w", err)
	}
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("marshaling config: %w", err)
	}
	return os.WriteFile(filepath.Join(dir, ConfigFile), data, 0o644)
}

// Exists returns true if .nodebox/config.yaml exists.
func Exists(rootDir string) bool {
	_, err := os.Stat(filepath.Join(rootDir, Dir, ConfigFile))
	return err == nil
}

// NetworksPath returns the path of the optional network override file.
func NetworksPath(rootDir string) string {
	return filepath.Join(rootDir, Dir, NetworksFile)
}
