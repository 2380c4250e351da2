package cmd

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mateconpizza/sbm/internal/config"
)

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print version information",
	PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
		return nil
	},
	RunE: func(cmd *cobra.Command, _ []string) error {
		fmt.Fprintf(cmd.OutOrStdout(), "%s v%s\n", config.App.Name, config.App.Version)
		return nil
	},
}

var configDump bool

var configCmd = &cobra.Command{
	Use:   "config",
	Short: "Show the effective configuration",
	Args:  cobra.NoArgs,
	RunE: func(cmd *cobra.Command, _ []string) error {
		if !configDump {
			src := cfg.File
			if src == "" {
				src = "(defaults)"
			}
			fmt.Fprintf(cmd.OutOrStdout(), "config:   %s\ndatabase: %s\naddr:     %s\n",
				src, cfg.Database.Path, cfg.Server.Addr)

			return nil
		}

		b, err := cfg.Dump()
		if err != nil {
			return err
		}
		_, err = cmd.OutOrStdout().Write(b)

		return err
	},
}

func init() {
	configCmd.Flags().BoolVarP(&configDump, "dump", "d", false, "print the settings as YAML")

	Root.AddCommand(versionCmd, configCmd)
}
