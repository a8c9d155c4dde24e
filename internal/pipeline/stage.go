package pipeline

import (
	"time"

	"github.com/tphakala/phagepairs/internal/errors"
	"github.com/tphakala/phagepairs/internal/observability/metrics"
)

// stageTimer measures consecutive stages of a run.
type stageTimer struct {
	now      func() time.Time
	recorder metrics.Recorder
	last     time.Time
}

// newStageTimer starts timing the first stage. recorder may be nil.
func newStageTimer(now func() time.Time, recorder metrics.Recorder) *stageTimer {
	return &stageTimer{now: now, recorder: recorder, last: now()}
}

// done closes the current stage and starts the next one.
func (s *stageTimer) done(stage string) time.Duration {
	t := s.now()
	d := t.Sub(s.last)
	s.last = t
	if s.recorder != nil {
		s.recorder.RecordDuration(stage, d.Seconds())
	}
	return d
}

// fail wraps err with the failing stage and the time spent in it. The
// category of err is kept.
func (s *stageTimer) fail(stage string, err error) error {
	return errors.New(err).
		Component(componentPipeline).
		Timing(stage, s.now().Sub(s.last)).
		Build()
}
