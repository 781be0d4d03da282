package cmd

import (
	"github.com/fatih/color"
	"github.com/spf13/cobra"

	"github.com/xBurningGiraffe/rustrecon/internal/core"
)

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Manage the rustrecon config file.",
}

var configInitCmd = &cobra.Command{
	Use:   "init",
	Short: "Write a commented default config file (--config or ~/.rustrecon/config.yaml).",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, args []string) error {
		path := configPath
		if path == "" {
			path = core.DefaultConfigPath()
		}
		if err := core.WriteDefaultConfig(path); err != nil {
			return err
		}
		color.New(color.FgGreen).Fprintf(cmd.ErrOrStderr(), "Config written to %s\n", path)
		return nil
	},
}

func init() {
	configCmd.AddCommand(configInitCmd)
	rootCmd.AddCommand(configCmd)
}
