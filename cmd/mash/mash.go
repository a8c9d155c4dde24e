// Package mash provides the mash command that reduces Mash dist outputs to
// the nearest training genome distance per BAPS assembly.
package mash

import (
	"context"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"
	"golang.org/x/text/language"
	"golang.org/x/text/message"

	"github.com/tphakala/phagepairs/internal/conf"
	"github.com/tphakala/phagepairs/internal/errors"
	"github.com/tphakala/phagepairs/internal/logger"
	"github.com/tphakala/phagepairs/internal/mash"
	"github.com/tphakala/phagepairs/internal/pairs"
)

// Command creates the mash command.
func Command(settings *conf.Settings, logs logger.ModuleProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mash [dist.tsv...]",
		Short: "Minimum Mash distance of each assembly to the training genomes",
		Long: `Mash reads one or more "mash dist" outputs, finds the GCA/GCF accession
in each reference path and keeps the smallest distance per accession. The
result is written as CSV together with an approximate ANI of 1 - distance.`,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) > 0 {
				settings.Mash.Inputs = args
			}
			return run(cmd.Context(), cmd.OutOrStdout(), afero.NewOsFs(), &settings.Mash, logs.Module("mash"))
		},
	}

	f := cmd.Flags()
	s := &settings.Mash
	f.StringVar(&s.Allowed, "allowed", s.Allowed, "Keep only accessions listed in this file")
	f.StringVarP(&s.Output, "output", "o", s.Output, "CSV destination")
	f.IntVar(&s.Workers, "workers", s.Workers, "Files parsed in parallel, 0 uses one per CPU")

	return cmd
}

func run(ctx context.Context, out io.Writer, fs afero.Fs, s *conf.MashSettings, log logger.Logger) error {
	if len(s.Inputs) == 0 || s.Output == "" {
		return errors.ValidationError("mash requires at least one input file and --output")
	}

	opts := mash.Options{Workers: s.Workers}
	if s.Allowed != "" {
		ids, err := pairs.LoadIDs(fs, s.Allowed, "allowed accessions")
		if err != nil {
			return err
		}
		opts.Allowed = ids
	}

	res, err := mash.Aggregate(ctx, fs, s.Inputs, opts, log)
	if err != nil {
		return err
	}
	if err := res.Write(fs, s.Output); err != nil {
		return err
	}

	p := message.NewPrinter(language.English)
	p.Fprintf(out, "files:       %d\n", res.Stats.Files)
	p.Fprintf(out, "rows:        %d\n", res.Stats.Rows)
	p.Fprintf(out, "accessions:  %d\n", len(res.Distances))

	summary, ok, err := res.Summarize()
	if err != nil {
		return err
	}
	if !ok {
		log.Warn("No distances matched, wrote an empty table", logger.String("output", s.Output))
		return nil
	}
	p.Fprintf(out, "min_dist:    min %.4f  p25 %.4f  median %.4f  p75 %.4f  max %.4f  mean %.4f\n",
		summary.Min, summary.P25, summary.P50, summary.P75, summary.Max, summary.Mean)
	return nil
}
