package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeGlobalConfig(t *testing.T, content string) {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("XDG_CONFIG_HOME", dir)
	if err := os.MkdirAll(filepath.Join(dir, GlobalConfigDir), 0755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(filepath.Join(dir, GlobalConfigDir, GlobalConfigFile), []byte(content), 0644); err != nil {
		t.Fatal(err)
	}
	ResetGlobalConfigCache()
	t.Cleanup(ResetGlobalConfigCache)
}

func TestGlobalConfigPath(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", "/custom/config")
	if got, want := GlobalConfigPath(), "/custom/config/coviz/config.yml"; got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}

	t.Setenv("XDG_CONFIG_HOME", "")
	home, err := os.UserHomeDir()
	if err != nil {
		t.Skip("Cannot get home directory")
	}
	if got, want := GlobalConfigPath(), filepath.Join(home, ".config", "coviz", "config.yml"); got != want {
		t.Errorf("GlobalConfigPath() = %q, want %q", got, want)
	}
}

func TestLoadGlobalConfig_NotFound(t *testing.T) {
	t.Setenv("XDG_CONFIG_HOME", t.TempDir())
	ResetGlobalConfigCache()
	defer ResetGlobalConfigCache()

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if *cfg != (GlobalConfig{}) {
		t.Errorf("LoadGlobalConfig() = %+v, want empty", cfg)
	}
}

func TestLoadGlobalConfig_Valid(t *testing.T) {
	writeGlobalConfig(t, `asta_api_key: abc
cache_dir: ~/coviz-cache
cache_size: 10
viewport_width: 640
viewport_height: 480
worker_threshold: 300
layout_timeout: 45s
`)

	cfg, err := LoadGlobalConfig()
	if err != nil {
		t.Fatalf("LoadGlobalConfig() error = %v", err)
	}
	if cfg.ASTAAPIKey != "abc" || cfg.CacheSize != 10 || cfg.WorkerThreshold != 300 || cfg.LayoutTimeout != "45s" {
		t.Errorf("LoadGlobalConfig() = %+v", cfg)
	}
	if home, err := os.UserHomeDir(); err == nil {
		if want := filepath.Join(home, "coviz-cache"); cfg.CacheDir != want {
			t.Errorf("CacheDir = %q, want %q", cfg.CacheDir, want)
		}
	}
}

func TestLoadGlobalConfig_Invalid(t *testing.T) {
	writeGlobalConfig(t, "cache_size: [not a number\n")

	if _, err := LoadGlobalConfig(); err == nil {
		t.Error("LoadGlobalConfig() expected error for invalid YAML")
	}
}

func TestGlobalConfigCache(t *testing.T) {
	writeGlobalConfig(t, "asta_api_key: first\n")

	first, err := LoadGlobalConfig()
	if err != nil {
		t.Fatal(err)
	}
	path := GlobalConfigPath()
	if err := os.WriteFile(path, []byte("asta_api_key: second\n"), 0644); err != nil {
		t.Fatal(err)
	}

	cached, _ := LoadGlobalConfig()
	if cached.ASTAAPIKey != first.ASTAAPIKey {
		t.Error("cache was bypassed")
	}
	ResetGlobalConfigCache()
	fresh, _ := LoadGlobalConfig()
	if fresh.ASTAAPIKey != "second" {
		t.Errorf("after reset ASTAAPIKey = %q, want second", fresh.ASTAAPIKey)
	}
}

func TestGetASTAAPIKey(t *testing.T) {
	writeGlobalConfig(t, "asta_api_key: from-file\n")

	t.Setenv("ASTA_API_KEY", "")
	if got := GetASTAAPIKey(); got != "from-file" {
		t.Errorf("GetASTAAPIKey() = %q, want from-file", got)
	}
	t.Setenv("ASTA_API_KEY", "from-env")
	if got := GetASTAAPIKey(); got != "from-env" {
		t.Errorf("GetASTAAPIKey() = %q, want from-env", got)
	}
}
