// Package app implements the main application commands.
package app

import (
	"github.com/spf13/cobra"

	"github.com/rollcall-rfid/rollcall/internal/config"
	"github.com/rollcall-rfid/rollcall/internal/logger"
)

var (
	configPath string // Path to the configuration directory
	devMode    bool

	cfg config.Config
)

var rootCmd = &cobra.Command{
	Use:   "rollcall",
	Short: "rollcall is an RFID attendance service",
	Long: `rollcall tracks the physical presence of RFID tagged users at group sessions.
It serves a JSON API for administration and an ingest endpoint for RFID readers.`,
	Args:         cobra.OnlyValidArgs,
	SilenceUsage: true,
}

func init() { //nolint: gochecknoinits
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./etc/", "Path to the configuration directory")
}

// loadConfig reads the configuration and initializes the global logger.
func loadConfig(_ *cobra.Command, _ []string) error {
	var err error

	if cfg, err = config.ReadConfig(configPath); err != nil {
		return err
	}

	if devMode {
		cfg.DevMode = true
	}

	return logger.Init(cfg.Log)
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}
