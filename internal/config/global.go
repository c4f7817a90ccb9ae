// Package config handles the global coviz configuration.
package config

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"
)

// GlobalConfig represents configuration stored in ~/.config/coviz/config.yml.
// Zero values fall back to defaults; see Resolve.
type GlobalConfig struct {
	ASTAAPIKey      string  `yaml:"asta_api_key,omitempty"`
	CacheDir        string  `yaml:"cache_dir,omitempty"`
	CacheSize       int     `yaml:"cache_size,omitempty"`
	ViewportWidth   float64 `yaml:"viewport_width,omitempty"`
	ViewportHeight  float64 `yaml:"viewport_height,omitempty"`
	WorkerThreshold int     `yaml:"worker_threshold,omitempty"`
	LayoutTimeout   string  `yaml:"layout_timeout,omitempty"` // Go duration, e.g. "30s"
}

const (
	// GlobalConfigDir is the directory name under XDG_CONFIG_HOME.
	GlobalConfigDir = "coviz"
	// GlobalConfigFile is the config file name.
	GlobalConfigFile = "config.yml"
)

// globalConfigCache caches the loaded global config.
var globalConfigCache *GlobalConfig

// GlobalConfigPath returns the path to the global config file.
// Respects XDG_CONFIG_HOME, defaults to ~/.config/coviz/config.yml.
func GlobalConfigPath() string {
	configHome := os.Getenv("XDG_CONFIG_HOME")
	if configHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return ""
		}
		configHome = filepath.Join(home, ".config")
	}
	return filepath.Join(configHome, GlobalConfigDir, GlobalConfigFile)
}

// LoadGlobalConfig loads the global configuration file.
// Returns an empty config (not an error) if the file doesn't exist.
func LoadGlobalConfig() (*GlobalConfig, error) {
	if globalConfigCache != nil {
		return globalConfigCache, nil
	}

	path := GlobalConfigPath()
	if path == "" {
		return &GlobalConfig{}, nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return &GlobalConfig{}, nil
		}
		return nil, fmt.Errorf("reading global config: %w", err)
	}

	var cfg GlobalConfig
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parsing global config: %w", err)
	}

	if cfg.CacheDir != "" {
		cfg.CacheDir = ExpandPath(cfg.CacheDir)
	}

	globalConfigCache = &cfg
	return &cfg, nil
}

// ResetGlobalConfigCache clears the cached global config.
// Useful for testing.
func ResetGlobalConfigCache() {
	globalConfigCache = nil
}

// GetASTAAPIKey returns the ASTA API key, preferring the ASTA_API_KEY
// environment variable over the config file.
func GetASTAAPIKey() string {
	if key := os.Getenv("ASTA_API_KEY"); key != "" {
		return key
	}
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return ""
	}
	return cfg.ASTAAPIKey
}

// HelpfulConfigMessage returns a hint on where to put the configuration.
func HelpfulConfigMessage() string {
	configPath := GlobalConfigPath()
	return fmt.Sprintf(`Tip: Create %s to set defaults:
  mkdir -p %s
  echo 'asta_api_key: <your key>' > %s`,
		configPath,
		filepath.Dir(configPath),
		configPath)
}
