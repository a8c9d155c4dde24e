// Package contigs provides the contigs command that lists the contig ids
// named in a phage FASTA, producing the universe file for build.
package contigs

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/tphakala/phagepairs/internal/conf"
	"github.com/tphakala/phagepairs/internal/dataset"
	"github.com/tphakala/phagepairs/internal/errors"
	"github.com/tphakala/phagepairs/internal/fasta"
	"github.com/tphakala/phagepairs/internal/logger"
)

// Command creates the contigs command.
func Command(settings *conf.Settings, logs logger.ModuleProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "contigs",
		Short: "List the contig ids found in FASTA headers",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), afero.NewOsFs(), &settings.Contigs, logs.Module("fasta"))
		},
	}

	f := cmd.Flags()
	s := &settings.Contigs
	f.StringVar(&s.Fasta, "fasta", s.Fasta, "Phage FASTA, gzip compressed when named .gz")
	f.StringVarP(&s.Output, "output", "o", s.Output, "Contig id list, one per line")
	f.IntVar(&s.MaxHeaders, "max-headers", s.MaxHeaders, "Stop after this many headers, 0 reads all")

	return cmd
}

func run(out io.Writer, fs afero.Fs, s *conf.ContigsSettings, log logger.Logger) error {
	if s.Fasta == "" || s.Output == "" {
		return errors.ValidationError("contigs requires --fasta and --output")
	}

	set, err := fasta.HeaderContigs(fs, s.Fasta, s.MaxHeaders)
	if err != nil {
		return err
	}
	if set.Unmatched > 0 {
		log.Warn("Headers without a contig token",
			logger.Int("headers", set.Unmatched))
	}
	if err := dataset.WriteLines(fs, s.Output, set.IDs); err != nil {
		return err
	}

	log.Info("Contig list written",
		logger.String("output", s.Output),
		logger.Int("headers", set.Headers),
		logger.Int("contigs", len(set.IDs)),
		logger.Bool("truncated", set.Truncated))

	fmt.Fprintf(out, "headers: %s\n", humanize.Comma(int64(set.Headers)))
	fmt.Fprintf(out, "contigs: %s\n", humanize.Comma(int64(len(set.IDs))))
	return nil
}
