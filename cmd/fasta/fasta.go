// Package fasta provides the fasta command that writes a subset of a
// multi-FASTA archive.
package fasta

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/tphakala/phagepairs/internal/conf"
	"github.com/tphakala/phagepairs/internal/errors"
	"github.com/tphakala/phagepairs/internal/fasta"
	"github.com/tphakala/phagepairs/internal/logger"
	"github.com/tphakala/phagepairs/internal/pairs"
)

// Command creates the fasta command.
func Command(settings *conf.Settings, logs logger.ModuleProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "fasta",
		Short: "Write the FASTA records of the listed contigs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), afero.NewOsFs(), &settings.Fasta, logs.Module("fasta"))
		},
	}

	f := cmd.Flags()
	s := &settings.Fasta
	f.StringVarP(&s.Input, "input", "i", s.Input, "Multi-FASTA, gzip compressed when named .gz")
	f.StringVar(&s.Contigs, "contigs", s.Contigs, "Wanted contig ids, one per line")
	f.StringVarP(&s.Output, "output", "o", s.Output, "Subset destination, gzip compressed when named .gz")

	return cmd
}

func run(out io.Writer, fs afero.Fs, s *conf.FastaSettings, log logger.Logger) error {
	if s.Input == "" || s.Contigs == "" || s.Output == "" {
		return errors.ValidationError("fasta requires --input, --contigs and --output")
	}

	wanted, err := pairs.LoadIDs(fs, s.Contigs, "contigs")
	if err != nil {
		return err
	}
	stats, err := fasta.Subset(fs, s.Input, s.Output, wanted)
	if err != nil {
		return err
	}
	if stats.Kept < stats.Wanted {
		log.Warn("Some wanted contigs were not found",
			logger.Int("wanted", stats.Wanted),
			logger.Int("kept", stats.Kept))
	}

	fmt.Fprintf(out, "records scanned: %s\n", humanize.Comma(int64(stats.Scanned)))
	fmt.Fprintf(out, "records kept:    %s of %s wanted\n",
		humanize.Comma(int64(stats.Kept)), humanize.Comma(int64(stats.Wanted)))
	return nil
}
