package cmd

import (
	"github.com/spf13/cobra"

	"github.com/tphakala/phagepairs/cmd/build"
	"github.com/tphakala/phagepairs/cmd/config"
	"github.com/tphakala/phagepairs/cmd/contigs"
	"github.com/tphakala/phagepairs/cmd/extract"
	"github.com/tphakala/phagepairs/cmd/fasta"
	"github.com/tphakala/phagepairs/cmd/filter"
	"github.com/tphakala/phagepairs/cmd/mash"
	"github.com/tphakala/phagepairs/cmd/runs"
	"github.com/tphakala/phagepairs/internal/buildinfo"
	"github.com/tphakala/phagepairs/internal/conf"
	"github.com/tphakala/phagepairs/internal/logger"
)

// RootCommand creates and returns the root command
func RootCommand(settings *conf.Settings, info *buildinfo.Context, logs logger.ModuleProvider) *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "phagepairs",
		Short: "Build labeled host-phage interaction datasets",
		Long: `phagepairs prepares training data for host-phage interaction models. The
build command samples hosts, keeps their known positive phages and draws
negatives from a phage universe. The remaining commands prepare its inputs.`,
		Version:       info.String(),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	// Set up the global flags for the root command.
	setupFlags(rootCmd, settings)

	// Add sub-commands to the root command.
	subcommands := []*cobra.Command{
		build.Command(settings, logs),
		extract.Command(settings, logs),
		filter.Command(settings, logs),
		contigs.Command(settings, logs),
		fasta.Command(settings, logs),
		mash.Command(settings, logs),
		runs.Command(settings, logs),
		config.Command(settings),
	}

	rootCmd.AddCommand(subcommands...)

	return rootCmd
}

// setupFlags defines flags that are global to the command line interface.
// --config and --debug are read before the command tree is built, they are
// declared here so that cobra accepts them and lists them in help.
func setupFlags(rootCmd *cobra.Command, settings *conf.Settings) {
	rootCmd.PersistentFlags().String("config", "", "Config file (default ./phagepairs.yaml or ~/.config/phagepairs/phagepairs.yaml)")
	rootCmd.PersistentFlags().BoolVarP(&settings.Debug, "debug", "d", settings.Debug, "Enable debug output")
}
