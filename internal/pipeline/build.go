// Package pipeline runs the dataset build end to end: load the positive pairs
// and the universe, sample, write the outputs, then record the run.
package pipeline

import (
	"context"
	"fmt"
	"io"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/afero"

	"github.com/tphakala/phagepairs/internal/conf"
	"github.com/tphakala/phagepairs/internal/dataset"
	"github.com/tphakala/phagepairs/internal/errors"
	"github.com/tphakala/phagepairs/internal/ledger"
	"github.com/tphakala/phagepairs/internal/logger"
	"github.com/tphakala/phagepairs/internal/observability"
	"github.com/tphakala/phagepairs/internal/observability/metrics"
	"github.com/tphakala/phagepairs/internal/pairs"
	"github.com/tphakala/phagepairs/internal/sampling"
)

const componentPipeline = "pipeline"

// Recorder persists a finished run.
type Recorder interface {
	Record(ctx context.Context, run *ledger.Run) error
}

// Deps are the collaborators of a build. Fs and Log are required.
type Deps struct {
	Fs       afero.Fs
	Log      logger.Logger
	Metrics  *observability.Metrics // optional
	Recorder Recorder               // optional
	Now      func() time.Time       // defaults to time.Now
}

// Report is what a successful build produced.
type Report struct {
	RunID    string
	Result   sampling.Result
	Manifest *dataset.Manifest
}

// Build runs one dataset build with cfg. Missing inputs, schema violations,
// invalid parameters, write failures and cancellation abort the run with no
// output in place; hosts whose negatives fall short are logged and
// summarized but do not fail it. The outcome is counted in deps.Metrics
// either way.
func Build(ctx context.Context, deps Deps, cfg *conf.BuildSettings) (*Report, error) {
	report, err := build(ctx, deps, cfg)
	if deps.Metrics != nil {
		recordOutcome(deps.Metrics.Sampling, err)
	}
	return report, err
}

func build(ctx context.Context, deps Deps, cfg *conf.BuildSettings) (*Report, error) {
	now := deps.Now
	if now == nil {
		now = time.Now
	}
	started := now()
	runID := uuid.NewString()
	ctx = logger.WithTraceID(ctx, runID)
	log := deps.Log.WithContext(ctx)

	if err := conf.ValidateBuildInputs(cfg); err != nil {
		return nil, errors.New(err).
			Component(componentPipeline).
			Context("operation", "validate_build").
			Build()
	}
	inDelim, err := conf.ParseDelimiter(cfg.InputDelimiter)
	if err != nil {
		return nil, errors.ValidationError("input delimiter: " + err.Error())
	}
	outDelim, err := conf.ParseDelimiter(cfg.OutputDelimiter)
	if err != nil {
		return nil, errors.ValidationError("output delimiter: " + err.Error())
	}

	var recorder metrics.Recorder
	if deps.Metrics != nil {
		recorder = deps.Metrics.Sampling
	}
	stage := newStageTimer(now, recorder)

	// Load
	if err := canceled(ctx); err != nil {
		return nil, stage.fail(metrics.StageLoad, err)
	}
	positives, err := pairs.LoadPositives(deps.Fs, cfg.Input, pairs.LoadOptions{Delimiter: inDelim})
	if err != nil {
		return nil, stage.fail(metrics.StageLoad, err)
	}
	universe, err := pairs.LoadUniverse(deps.Fs, cfg.Universe)
	if err != nil {
		return nil, stage.fail(metrics.StageLoad, err)
	}
	eligible, outside := positives.Restrict(universe)

	log.Info("Inputs loaded",
		logger.Int("rows", positives.Stats.Rows),
		logger.Int("pairs", positives.Stats.Pairs),
		logger.Int("duplicates", positives.Stats.Duplicates),
		logger.Int("universe", universe.Len()),
		logger.Int("eligible_hosts", len(eligible)))
	if positives.Stats.SkippedEmpty > 0 {
		log.Warn("Skipped rows with an empty host or phage",
			logger.Int("rows", positives.Stats.SkippedEmpty))
	}
	if outside > 0 {
		log.Warn("Dropped positives whose phage is not in the universe",
			logger.Int("pairs", outside))
	}
	stage.done(metrics.StageLoad)

	// Sample
	if err := canceled(ctx); err != nil {
		return nil, stage.fail(metrics.StageSample, err)
	}
	r := sampling.NewRand(cfg.Seed)
	res := sampling.Build(r, eligible, universe, sampling.Params{
		NHosts:        cfg.NHosts,
		MaxPosPerHost: cfg.MaxPosPerHost,
		NegRatio:      cfg.NegRatio,
	})
	for _, ev := range res.Events {
		ee := ev.Err()
		log.Warn(ee.Error(),
			logger.String("host", ev.Host),
			logger.String("category", string(ee.Category)),
			logger.Int("requested", ev.Requested),
			logger.Int("available", ev.Available))
	}
	log.Debug("Sampling finished",
		logger.Int("sampled_hosts", len(res.Hosts)),
		logger.Int("capped_positives", res.Capped.Len()),
		logger.Uint64("draws", r.Draws()))
	stage.done(metrics.StageSample)

	// Write. Every output is staged first and moved into place only when
	// all of them were written.
	out := dataset.NewBatch(deps.Fs)
	defer out.Abort()

	err = out.Add(cfg.Output, func(w io.Writer) error {
		return dataset.WriteTable(w, res.Dataset.Pairs, outDelim)
	})
	if err != nil {
		return nil, stage.fail(metrics.StageWrite, err)
	}
	if cfg.HostsOutput != "" {
		err := out.Add(cfg.HostsOutput, func(w io.Writer) error {
			return dataset.EncodeLines(w, res.Hosts)
		})
		if err != nil {
			return nil, stage.fail(metrics.StageWrite, err)
		}
	}

	elapsed := now().Sub(started)
	manifest := &dataset.Manifest{
		RunID:     runID,
		CreatedAt: started.UTC(),
		Duration:  elapsed.Round(time.Millisecond).String(),
		Params: dataset.ManifestParams{
			NHosts:        cfg.NHosts,
			MaxPosPerHost: cfg.MaxPosPerHost,
			NegRatio:      cfg.NegRatio,
			Seed:          cfg.Seed,
		},
		Files: dataset.ManifestInputs{Input: cfg.Input, Universe: cfg.Universe, Output: cfg.Output},
		Load: dataset.NewManifestLoad(positives.Stats, universe.Len(), outside,
			len(eligible), len(res.Hosts), res.Capped.Len()),
		Summary: res.Dataset.Summary,
		Events:  dataset.NewManifestEvents(res.Events),
	}
	if cfg.SummaryOutput != "" {
		err := out.Add(cfg.SummaryOutput, func(w io.Writer) error {
			return dataset.EncodeManifest(w, manifest)
		})
		if err != nil {
			return nil, stage.fail(metrics.StageWrite, err)
		}
	}

	if err := canceled(ctx); err != nil {
		return nil, stage.fail(metrics.StageWrite, err)
	}
	if err := out.Commit(); err != nil {
		return nil, stage.fail(metrics.StageWrite, err)
	}
	stage.done(metrics.StageWrite)

	log.Info("Dataset written",
		logger.String("output", cfg.Output),
		logger.Int("rows", res.Dataset.Summary.Rows),
		logger.Int("positives", res.Dataset.Summary.Positives),
		logger.Int("negatives", res.Dataset.Summary.Negatives),
		logger.Int("hosts", res.Dataset.Summary.Hosts),
		logger.Duration("elapsed", elapsed))

	// The dataset is already in place; ledger and metrics failures are
	// reported but do not fail the run.
	if deps.Recorder != nil {
		run := newLedgerRun(runID, started, elapsed, cfg, res)
		if err := deps.Recorder.Record(ctx, run); err != nil {
			log.Error("Failed to record run in ledger", logger.Error(err))
		}
		stage.done(metrics.StageLedger)
	}

	var sm *metrics.SamplingMetrics
	if deps.Metrics != nil {
		sm = deps.Metrics.Sampling
		recordMetrics(sm, res, len(eligible), outside, now())
	}
	recordMemory(sm, log)

	return &Report{RunID: runID, Result: res, Manifest: manifest}, nil
}

func newLedgerRun(runID string, started time.Time, elapsed time.Duration, cfg *conf.BuildSettings, res sampling.Result) *ledger.Run {
	s := res.Dataset.Summary
	run := &ledger.Run{
		RunID:           runID,
		CreatedAt:       started.UTC(),
		Seed:            cfg.Seed,
		NHosts:          cfg.NHosts,
		MaxPosPerHost:   cfg.MaxPosPerHost,
		NegRatio:        cfg.NegRatio,
		Input:           cfg.Input,
		Universe:        cfg.Universe,
		Output:          cfg.Output,
		Rows:            s.Rows,
		Positives:       s.Positives,
		Negatives:       s.Negatives,
		Hosts:           s.Hosts,
		Truncated:       len(s.TruncatedHosts),
		EmptyCandidates: len(s.EmptyCandidateHosts),
		DurationMs:      elapsed.Milliseconds(),
	}
	for _, ev := range res.Events {
		run.Events = append(run.Events, ledger.HostEvent{
			Host:      ev.Host,
			Kind:      string(ev.Kind),
			Requested: ev.Requested,
			Available: ev.Available,
		})
	}
	return run
}

func recordMetrics(m *metrics.SamplingMetrics, res sampling.Result, eligible, outside int, at time.Time) {
	s := res.Dataset.Summary
	m.RecordDataset(s.Positives, s.Negatives)
	m.RecordHosts(eligible, len(res.Hosts))
	m.RecordOutsideUniverse(outside)
	for _, ev := range res.Events {
		m.RecordEvent(string(ev.Kind))
	}
	m.RecordCompletion(at)
}

func recordOutcome(r metrics.Recorder, err error) {
	if err == nil {
		r.RecordOperation(metrics.OperationBuild, metrics.StatusSuccess)
		return
	}
	category := errors.CategoryGeneric
	var ee *errors.EnhancedError
	if errors.As(err, &ee) {
		category = ee.Category
	}
	r.RecordOperation(metrics.OperationBuild, metrics.StatusError)
	r.RecordError(metrics.OperationBuild, string(category))
}

// canceled reports a canceled or expired ctx as a processing error.
func canceled(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return errors.New(fmt.Errorf("build interrupted: %w", err)).
			Category(errors.CategoryProcessing).
			Build()
	}
	return nil
}
