package main

import (
	"github.com/spf13/cobra"

	"github.com/matsen/coviz/internal/config"
)

func init() {
	configCmd.AddCommand(configPathCmd)
	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Long: `Show the effective configuration after defaults are applied.

Settings are read from ~/.config/coviz/config.yml (or $XDG_CONFIG_HOME):

  asta_api_key      ASTA API key (ASTA_API_KEY takes precedence)
  cache_dir         Directory for the SQLite cache (default ~/.cache/coviz)
  cache_size        Layouts kept in memory per run (default 64)
  viewport_width    Default layout width (default 1200)
  viewport_height   Default layout height (default 800)
  worker_threshold  Node count at which layouts move to the worker (default 150)
  layout_timeout    Worker timeout as a Go duration (default 30s)`,
	Args: cobra.NoArgs,
	RunE: runConfig,
}

var configPathCmd = &cobra.Command{
	Use:   "path",
	Short: "Print the config file path",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := config.GlobalConfigPath()
		if humanOutput {
			outputHuman("%s\n", path)
			return nil
		}
		return outputJSON(StatusResponse{Status: "ok", Path: path})
	},
}

// ConfigResponse is the JSON output of the config command.
type ConfigResponse struct {
	config.Settings
	APIKeySet bool   `json:"asta_api_key_set"`
	DBPath    string `json:"db_path"`
}

func runConfig(cmd *cobra.Command, args []string) error {
	s, err := config.Load()
	if err != nil {
		return err
	}

	if humanOutput {
		outputHuman("cache-dir:         %s\n", s.CacheDir)
		outputHuman("db-path:           %s\n", s.DBPath())
		outputHuman("cache-size:        %d\n", s.CacheSize)
		outputHuman("viewport:          %gx%g\n", s.ViewportWidth, s.ViewportHeight)
		outputHuman("worker-threshold:  %d\n", s.WorkerThreshold)
		outputHuman("layout-timeout:    %s\n", s.LayoutTimeout)
		outputHuman("asta-api-key:      %t\n", s.HasAPIKey())
		return nil
	}
	return outputJSON(ConfigResponse{
		Settings:  *s,
		APIKeySet: s.HasAPIKey(),
		DBPath:    s.DBPath(),
	})
}
