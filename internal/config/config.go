package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"
)

// Defaults applied by Resolve.
const (
	DefaultCacheSize       = 64
	DefaultViewportWidth   = 1200
	DefaultViewportHeight  = 800
	DefaultWorkerThreshold = 150
	DefaultLayoutTimeout   = 30 * time.Second

	// DBFile is the SQLite file inside the cache directory.
	DBFile = "coviz.db"
)

// ErrInvalidConfig wraps every validation failure from Resolve.
var ErrInvalidConfig = errors.New("invalid configuration")

// Settings is the effective configuration after defaults and validation.
type Settings struct {
	ASTAAPIKey      string        `json:"-"`
	CacheDir        string        `json:"cache_dir"`
	CacheSize       int           `json:"cache_size"`
	ViewportWidth   float64       `json:"viewport_width"`
	ViewportHeight  float64       `json:"viewport_height"`
	WorkerThreshold int           `json:"worker_threshold"`
	LayoutTimeout   time.Duration `json:"layout_timeout"`
}

// HasAPIKey reports whether an ASTA key is configured.
func (s *Settings) HasAPIKey() bool {
	return s.ASTAAPIKey != ""
}

// DBPath returns the path to the SQLite database.
func (s *Settings) DBPath() string {
	return filepath.Join(s.CacheDir, DBFile)
}

// Load reads the global config and resolves it.
func Load() (*Settings, error) {
	cfg, err := LoadGlobalConfig()
	if err != nil {
		return nil, err
	}
	s, err := Resolve(cfg)
	if err != nil {
		return nil, err
	}
	if key := os.Getenv("ASTA_API_KEY"); key != "" {
		s.ASTAAPIKey = key
	}
	return s, nil
}

// Resolve fills defaults into cfg and validates the result.
func Resolve(cfg *GlobalConfig) (*Settings, error) {
	s := &Settings{
		ASTAAPIKey:      cfg.ASTAAPIKey,
		CacheDir:        cfg.CacheDir,
		CacheSize:       cfg.CacheSize,
		ViewportWidth:   cfg.ViewportWidth,
		ViewportHeight:  cfg.ViewportHeight,
		WorkerThreshold: cfg.WorkerThreshold,
		LayoutTimeout:   DefaultLayoutTimeout,
	}
	if s.CacheDir == "" {
		s.CacheDir = DefaultCacheDir()
	}
	if s.CacheSize == 0 {
		s.CacheSize = DefaultCacheSize
	}
	if s.ViewportWidth == 0 {
		s.ViewportWidth = DefaultViewportWidth
	}
	if s.ViewportHeight == 0 {
		s.ViewportHeight = DefaultViewportHeight
	}
	if s.WorkerThreshold == 0 {
		s.WorkerThreshold = DefaultWorkerThreshold
	}
	if cfg.LayoutTimeout != "" {
		d, err := time.ParseDuration(cfg.LayoutTimeout)
		if err != nil {
			return nil, fmt.Errorf("%w: layout_timeout: %v", ErrInvalidConfig, err)
		}
		s.LayoutTimeout = d
	}

	switch {
	case s.CacheSize < 0:
		return nil, fmt.Errorf("%w: cache_size must be positive, got %d", ErrInvalidConfig, s.CacheSize)
	case s.ViewportWidth < 0 || s.ViewportHeight < 0:
		return nil, fmt.Errorf("%w: viewport must be positive, got %gx%g", ErrInvalidConfig, s.ViewportWidth, s.ViewportHeight)
	case s.WorkerThreshold < 0:
		return nil, fmt.Errorf("%w: worker_threshold must not be negative, got %d", ErrInvalidConfig, s.WorkerThreshold)
	case s.LayoutTimeout <= 0:
		return nil, fmt.Errorf("%w: layout_timeout must be positive, got %s", ErrInvalidConfig, s.LayoutTimeout)
	}
	return s, nil
}

// DefaultCacheDir returns $XDG_CACHE_HOME/coviz, or ~/.cache/coviz.
func DefaultCacheDir() string {
	cacheHome := os.Getenv("XDG_CACHE_HOME")
	if cacheHome == "" {
		home, err := os.UserHomeDir()
		if err != nil {
			return filepath.Join(os.TempDir(), GlobalConfigDir)
		}
		cacheHome = filepath.Join(home, ".cache")
	}
	return filepath.Join(cacheHome, GlobalConfigDir)
}

// ExpandPath expands ~ to the user's home directory.
// Returns the original path unchanged if it doesn't start with ~.
func ExpandPath(path string) string {
	if len(path) == 0 || path[0] != '~' {
		return path
	}

	home, err := os.UserHomeDir()
	if err != nil {
		return path // Return original if we can't get home directory
	}

	return filepath.Join(home, path[1:])
}
