package app

import (
	"github.com/spf13/cobra"

	"github.com/rollcall-rfid/rollcall/internal/daemon"
)

func init() { //nolint: gochecknoinits
	startCmd.Flags().BoolVar(&devMode, "dev", false, "Enable dev mode")

	rootCmd.AddCommand(startCmd)
}

var startCmd = &cobra.Command{
	Use:     "start",
	Short:   "Start the rollcall web service",
	PreRunE: loadConfig,
	RunE: func(_ *cobra.Command, _ []string) error {
		d, err := daemon.New(&cfg)
		if err != nil {
			return err
		}

		return d.Start()
	},
}
