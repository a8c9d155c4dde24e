// Package build provides the build command that assembles a labeled
// host-phage dataset.
package build

import (
	"context"
	"fmt"
	"io"

	"github.com/spf13/afero"
	"github.com/spf13/cobra"

	"github.com/tphakala/phagepairs/internal/conf"
	"github.com/tphakala/phagepairs/internal/dataset"
	"github.com/tphakala/phagepairs/internal/ledger"
	"github.com/tphakala/phagepairs/internal/logger"
	"github.com/tphakala/phagepairs/internal/observability"
	"github.com/tphakala/phagepairs/internal/pipeline"
)

// Command creates the build command.
func Command(settings *conf.Settings, logs logger.ModuleProvider) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "build",
		Short: "Sample hosts and build a positive/negative pair dataset",
		Long: `Build samples hosts from a table of known host-phage interactions, caps
the positives kept per host and draws negatives from the phage universe.
The same inputs, parameters and seed always produce the same dataset.`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd.Context(), cmd.OutOrStdout(), afero.NewOsFs(), settings, logs.Module("build"))
		},
	}

	setupFlags(cmd, &settings.Build)

	return cmd
}

func setupFlags(cmd *cobra.Command, s *conf.BuildSettings) {
	f := cmd.Flags()
	f.StringVarP(&s.Input, "input", "i", s.Input, "Positive pairs table (host_id, phage_id)")
	f.StringVarP(&s.Universe, "universe", "u", s.Universe, "Allowed phage ids, one per line")
	f.StringVarP(&s.Output, "output", "o", s.Output, "Dataset destination")
	f.IntVar(&s.NHosts, "n-hosts", s.NHosts, "Number of hosts to sample")
	f.IntVar(&s.MaxPosPerHost, "max-pos-per-host", s.MaxPosPerHost, "Maximum positives kept per host")
	f.IntVar(&s.NegRatio, "neg-ratio", s.NegRatio, "Negatives drawn per kept positive")
	f.Int64Var(&s.Seed, "seed", s.Seed, "Random seed")
	f.StringVar(&s.HostsOutput, "hosts-output", s.HostsOutput, "Write the sampled hosts to this file")
	f.StringVar(&s.SummaryOutput, "summary-output", s.SummaryOutput, "Write a YAML run manifest to this file")
	f.StringVar(&s.InputDelimiter, "input-delimiter", s.InputDelimiter, `Input field delimiter, a single character or "\t"`)
	f.StringVar(&s.OutputDelimiter, "output-delimiter", s.OutputDelimiter, "Output field delimiter")
}

func run(ctx context.Context, out io.Writer, fs afero.Fs, settings *conf.Settings, log logger.Logger) error {
	deps := pipeline.Deps{Fs: fs, Log: log}

	if settings.Ledger.Type != conf.LedgerNone {
		l, err := ledger.Open(&settings.Ledger, log.Module("ledger"))
		if err != nil {
			return err
		}
		defer func() {
			if err := l.Close(); err != nil {
				log.Warn("Failed to close ledger", logger.Error(err))
			}
		}()
		deps.Recorder = l
	}

	if settings.Metrics.Textfile != "" {
		m, err := observability.NewMetrics()
		if err != nil {
			return err
		}
		deps.Metrics = m
	}

	report, err := pipeline.Build(ctx, deps, &settings.Build)

	// Failed runs are exported too, so the collector sees the error count.
	if deps.Metrics != nil {
		if werr := deps.Metrics.WriteTextfile(settings.Metrics.Textfile); werr != nil {
			log.Error("Failed to write metrics textfile", logger.Error(werr))
		}
	}
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "run:        %s\n", report.RunID)
	return dataset.PrintSummary(out, report.Result.Dataset.Summary)
}
