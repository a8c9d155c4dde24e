// Package extract provides the extract command that derives the positive
// pairs table from BAPS annotations.
package extract

import (
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/tphakala/phagepairs/internal/conf"
	"github.com/tphakala/phagepairs/internal/errors"
	"github.com/tphakala/phagepairs/internal/extract"
	"github.com/tphakala/phagepairs/internal/logger"
)

// Command creates the extract command.
func Command(settings *conf.Settings, logs logger.ModuleProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract positive host-phage pairs from BAPS annotations",
		Long: `Extract reads a tab-separated annotation table with sample and contig
columns, takes the GCA accession from each sample name and writes one
positive pair per distinct (host, contig).`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.OutOrStdout(), afero.NewOsFs(), &settings.Extract, logs.Module("extract"))
		},
	}

	f := cmd.Flags()
	s := &settings.Extract
	f.StringVarP(&s.Input, "input", "i", s.Input, "BAPS annotations TSV")
	f.StringVarP(&s.Output, "output", "o", s.Output, "Positive pairs TSV")
	f.StringVar(&s.HostsOutput, "hosts-output", s.HostsOutput, "Write unique host accessions to this file")
	f.BoolVar(&s.EcoliOnly, "ecoli-only", s.EcoliOnly, "Keep only rows whose taxonomy names Escherichia coli")

	return cmd
}

func run(out io.Writer, fs afero.Fs, s *conf.ExtractSettings, log logger.Logger) error {
	if s.Input == "" || s.Output == "" {
		return errors.ValidationError("extract requires --input and --output")
	}

	res, err := extract.Extract(fs, s.Input, extract.Options{EcoliOnly: s.EcoliOnly}, log)
	if err != nil {
		return err
	}
	if err := res.Write(fs, s.Output, s.HostsOutput); err != nil {
		return err
	}

	log.Info("Positive pairs extracted",
		logger.String("output", s.Output),
		logger.Int("rows", res.Stats.Rows),
		logger.Int("pairs", len(res.Rows)),
		logger.Int("hosts", len(res.Hosts)))

	fmt.Fprintf(out, "rows read:     %s\n", humanize.Comma(int64(res.Stats.Rows)))
	if res.Stats.FilterApplied {
		fmt.Fprintf(out, "E. coli rows:  %s\n", humanize.Comma(int64(res.Stats.TaxonomyKept)))
	}
	fmt.Fprintf(out, "pairs:         %s\n", humanize.Comma(int64(len(res.Rows))))
	fmt.Fprintf(out, "hosts:         %s\n", humanize.Comma(int64(len(res.Hosts))))
	return nil
}
