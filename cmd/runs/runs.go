// Package runs provides commands to inspect the build run ledger.
package runs

import (
	"context"
	"fmt"
	"io"

	"github.com/dustin/go-humanize"
	"github.com/spf13/cobra"

	"github.com/tphakala/phagepairs/internal/conf"
	"github.com/tphakala/phagepairs/internal/errors"
	"github.com/tphakala/phagepairs/internal/ledger"
	"github.com/tphakala/phagepairs/internal/logger"
)

// Command creates the runs parent command
func Command(settings *conf.Settings, logs logger.ModuleProvider) *cobra.Command {
	runsCmd := &cobra.Command{
		Use:   "runs",
		Short: "Inspect recorded build runs",
	}

	runsCmd.AddCommand(listCommand(settings, logs), showCommand(settings, logs))

	return runsCmd
}

func listCommand(settings *conf.Settings, logs logger.ModuleProvider) *cobra.Command {
	var limit int

	cmd := &cobra.Command{
		Use:   "list",
		Short: "List the most recent runs",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(&settings.Ledger, logs.Module("ledger"), func(l *ledger.Ledger) error {
				runs, err := l.Recent(cmd.Context(), limit)
				if err != nil {
					return err
				}
				printRuns(cmd.OutOrStdout(), runs)
				return nil
			})
		},
	}
	cmd.Flags().IntVarP(&limit, "limit", "n", 20, "Number of runs to show")

	return cmd
}

func showCommand(settings *conf.Settings, logs logger.ModuleProvider) *cobra.Command {
	return &cobra.Command{
		Use:   "show <run-id>",
		Short: "Show one run and its host events",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return withLedger(&settings.Ledger, logs.Module("ledger"), func(l *ledger.Ledger) error {
				return show(cmd.Context(), cmd.OutOrStdout(), l, args[0])
			})
		},
	}
}

func withLedger(settings *conf.LedgerSettings, log logger.Logger, fn func(*ledger.Ledger) error) error {
	if settings.Type == conf.LedgerNone {
		return errors.Newf("no run ledger configured, set ledger.type to sqlite or mysql").
			Component("ledger").
			Category(errors.CategoryConfiguration).
			Build()
	}

	l, err := ledger.Open(settings, log)
	if err != nil {
		return err
	}
	defer func() { _ = l.Close() }()

	return fn(l)
}

func printRuns(w io.Writer, runs []ledger.Run) {
	if len(runs) == 0 {
		fmt.Fprintln(w, "no runs recorded")
		return
	}
	fmt.Fprintf(w, "%-36s  %-14s  %8s  %6s  %8s  %6s  %s\n",
		"RUN", "WHEN", "ROWS", "HOSTS", "SEED", "SHORT", "OUTPUT")
	for _, r := range runs {
		fmt.Fprintf(w, "%-36s  %-14s  %8s  %6d  %8d  %6d  %s\n",
			r.RunID, humanize.Time(r.CreatedAt), humanize.Comma(int64(r.Rows)),
			r.Hosts, r.Seed, len(r.Events), r.Output)
	}
}

func show(ctx context.Context, w io.Writer, l *ledger.Ledger, runID string) error {
	r, err := l.Get(ctx, runID)
	if err != nil {
		return err
	}

	fmt.Fprintf(w, "run:        %s\n", r.RunID)
	fmt.Fprintf(w, "created:    %s (%s)\n", r.CreatedAt.Format("2006-01-02 15:04:05 MST"), humanize.Time(r.CreatedAt))
	fmt.Fprintf(w, "params:     n_hosts=%d max_pos_per_host=%d neg_ratio=%d seed=%d\n",
		r.NHosts, r.MaxPosPerHost, r.NegRatio, r.Seed)
	fmt.Fprintf(w, "input:      %s\n", r.Input)
	fmt.Fprintf(w, "universe:   %s\n", r.Universe)
	fmt.Fprintf(w, "output:     %s\n", r.Output)
	fmt.Fprintf(w, "rows:       %s (label=1 %s, label=0 %s)\n",
		humanize.Comma(int64(r.Rows)), humanize.Comma(int64(r.Positives)), humanize.Comma(int64(r.Negatives)))
	fmt.Fprintf(w, "hosts:      %d\n", r.Hosts)
	fmt.Fprintf(w, "duration:   %dms\n", r.DurationMs)
	for _, ev := range r.Events {
		fmt.Fprintf(w, "  %-24s %-24s requested %d, available %d\n", ev.Host, ev.Kind, ev.Requested, ev.Available)
	}
	return nil
}
