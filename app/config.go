package app

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/rollcall-rfid/rollcall/internal/config"
)

var dumpJSON bool

func init() { //nolint: gochecknoinits
	configCmd.Flags().BoolVar(&dumpJSON, "json", false, "Dump as JSON instead of TOML")

	rootCmd.AddCommand(configCmd)
}

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Print the effective configuration",
	RunE: func(cmd *cobra.Command, _ []string) error {
		c, err := config.ReadConfig(configPath)
		if err != nil {
			return err
		}

		dump := config.DumpConfig
		if dumpJSON {
			dump = config.DumpConfigJSON
		}

		out, err := dump(&c)
		if err != nil {
			return err
		}

		_, err = fmt.Fprintln(cmd.OutOrStdout(), out)

		return err
	},
}
