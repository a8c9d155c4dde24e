// Package filter provides the filter command that restricts a pairs table to
// an allowed set of phage contigs.
package filter

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/tphakala/phagepairs/internal/conf"
	"github.com/tphakala/phagepairs/internal/errors"
	"github.com/tphakala/phagepairs/internal/fasta"
	"github.com/tphakala/phagepairs/internal/filter"
	"github.com/tphakala/phagepairs/internal/logger"
	"github.com/tphakala/phagepairs/internal/pairs"
)

// Command creates the filter command.
func Command(settings *conf.Settings, logs logger.ModuleProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "filter",
		Short: "Keep pairs whose phage contig is in an allowed set",
		Long: `Filter copies the rows of a tab-separated pairs table whose phage contig
appears in either a contig list (--contigs) or the headers of a phage
FASTA (--fasta).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), afero.NewOsFs(), &settings.Filter, logs.Module("filter"))
		},
	}

	f := cmd.Flags()
	s := &settings.Filter
	f.StringVarP(&s.Input, "input", "i", s.Input, "Pairs TSV")
	f.StringVarP(&s.Output, "output", "o", s.Output, "Filtered pairs TSV")
	f.StringVar(&s.Contigs, "contigs", s.Contigs, "Allowed contig ids, one per line")
	f.StringVar(&s.Fasta, "fasta", s.Fasta, "Phage FASTA (.gz allowed) whose headers name the allowed contigs")
	f.IntVar(&s.MaxHeaders, "max-headers", s.MaxHeaders, "Stop after this many FASTA headers, 0 reads all")
	cmd.MarkFlagsMutuallyExclusive("contigs", "fasta")

	return cmd
}

func run(out io.Writer, fs afero.Fs, s *conf.FilterSettings, log logger.Logger) error {
	if s.Input == "" || s.Output == "" {
		return errors.ValidationError("filter requires --input and --output")
	}

	var (
		allowed filter.Allowed
		count   int
	)
	switch {
	case s.Contigs != "":
		ids, err := pairs.LoadIDs(fs, s.Contigs, "contigs")
		if err != nil {
			return err
		}
		set := filter.NewSet(ids)
		allowed, count = set, len(set)
	case s.Fasta != "":
		set, err := fasta.HeaderContigs(fs, s.Fasta, s.MaxHeaders)
		if err != nil {
			return err
		}
		if set.Truncated {
			log.Warn("FASTA scan stopped at the header limit",
				logger.Int("max_headers", s.MaxHeaders))
		}
		allowed, count = set, len(set.IDs)
	default:
		return errors.ValidationError("filter requires --contigs or --fasta")
	}

	stats, err := filter.Pairs(fs, s.Input, s.Output, '\t', allowed, count)
	if err != nil {
		return err
	}

	log.Info("Pairs filtered",
		logger.String("output", s.Output),
		logger.Int("allowed", stats.Allowed),
		logger.Int("rows_in", stats.RowsIn),
		logger.Int("kept", stats.Kept))

	fmt.Fprintf(out, "allowed contigs: %s\n", humanize.Comma(int64(stats.Allowed)))
	fmt.Fprintf(out, "rows in:         %s\n", humanize.Comma(int64(stats.RowsIn)))
	fmt.Fprintf(out, "kept:            %s\n", humanize.Comma(int64(stats.Kept)))
	fmt.Fprintf(out, "removed:         %s\n", humanize.Comma(int64(stats.Removed())))
	return nil
}
