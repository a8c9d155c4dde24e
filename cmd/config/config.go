// Package config provides commands to inspect the configuration.
package config

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tphakala/phagepairs/internal/conf"
	"github.com/tphakala/phagepairs/internal/privacy"
)

// Command creates the config parent command
func Command(settings *conf.Settings) *cobra.Command {
	configCmd := &cobra.Command{
		Use:   "config",
		Short: "Inspect phagepairs configuration",
	}

	configCmd.AddCommand(printCommand(settings), defaultCommand())

	return configCmd
}

func printCommand(settings *conf.Settings) *cobra.Command {
	return &cobra.Command{
		Use:   "print",
		Short: "Print the effective settings as YAML",
		Long: `Print shows the settings after defaults, the config file and environment
variables have been applied. Passwords in connection strings are masked.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if used := conf.ConfigFileUsed(); used != "" {
				fmt.Fprintf(cmd.OutOrStdout(), "# config file: %s\n", used)
			}
			return conf.PrintSettings(cmd.OutOrStdout(), redact(settings))
		},
	}
}

func defaultCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "default",
		Short: "Print an annotated default configuration file",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			data, err := conf.DefaultConfig()
			if err != nil {
				return err
			}
			_, err = fmt.Fprint(cmd.OutOrStdout(), data)
			return err
		},
	}
}

// redact returns a copy of settings with credentials masked.
func redact(settings *conf.Settings) *conf.Settings {
	out := *settings
	out.Ledger.DSN = privacy.RedactDSN(settings.Ledger.DSN)
	out.Telemetry.SentryDSN = privacy.RedactURL(settings.Telemetry.SentryDSN)
	return &out
}
