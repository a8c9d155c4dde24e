package sampling

import (
	"slices"

	"github.com/tphakala/phagepairs/internal/errors"
	"github.com/tphakala/phagepairs/internal/pairs"
)

const componentSampling = "sampling"

// EventKind classifies a non-fatal shortfall while drawing negatives.
type EventKind string

const (
	// EventEmptyCandidates: every universe entry is a positive of the host.
	EventEmptyCandidates EventKind = "empty_candidates"
	// EventInsufficientNegatives: fewer candidates than requested negatives.
	EventInsufficientNegatives EventKind = "insufficient_negatives"
)

// Event records a host whose negatives fell short of the requested count.
type Event struct {
	Kind      EventKind
	Host      string
	Requested int
	Available int
}

// Err returns the event as a soft EnhancedError for logging.
func (e Event) Err() *errors.EnhancedError {
	category := errors.CategoryInsufficientNegatives
	msg := "insufficient negative candidates for host %s: requested %d, available %d"
	if e.Kind == EventEmptyCandidates {
		category = errors.CategoryEmptyCandidates
		msg = "no negative candidates for host %s: requested %d, available %d"
	}

	return errors.Newf(msg, e.Host, e.Requested, e.Available).
		Component(componentSampling).
		Category(category).
		Priority(errors.PriorityLow).
		Context("host", e.Host).
		Context("requested", e.Requested).
		Context("available", e.Available).
		Build()
}

// NegativeDraw is the outcome of SampleNegatives for one host.
type NegativeDraw struct {
	Host      string
	Requested int          // ratio x |capped positives|
	Available int          // |universe \ capped positives|
	Negatives []pairs.Pair // sorted by phage, all labeled Negative
	Event     *Event       // set when Negatives is shorter than Requested
}

// SampleNegatives draws ratio x |capped| negatives for host from the universe
// minus the host's capped positives. When the candidates run short it takes
// all of them and reports an Event instead of failing.
func SampleNegatives(r *Rand, host string, capped []string, u *pairs.Universe, ratio int) NegativeDraw {
	exclude := make(map[string]struct{}, len(capped))
	for _, p := range capped {
		exclude[p] = struct{}{}
	}

	ids := u.IDs()
	candidates := make([]string, 0, max(len(ids)-len(exclude), 0))
	for _, id := range ids {
		if _, skip := exclude[id]; !skip {
			candidates = append(candidates, id)
		}
	}

	draw := NegativeDraw{
		Host:      host,
		Requested: max(ratio, 0) * len(exclude),
		Available: len(candidates),
	}

	var chosen []string
	switch {
	case draw.Requested == 0:
		chosen = nil
	case draw.Available == 0:
		draw.Event = &Event{Kind: EventEmptyCandidates, Host: host, Requested: draw.Requested}
	case draw.Available < draw.Requested:
		chosen = candidates
		draw.Event = &Event{
			Kind:      EventInsufficientNegatives,
			Host:      host,
			Requested: draw.Requested,
			Available: draw.Available,
		}
	default:
		chosen = r.choose(candidates, draw.Requested)
		slices.Sort(chosen)
	}

	draw.Negatives = make([]pairs.Pair, len(chosen))
	for i, phage := range chosen {
		draw.Negatives[i] = pairs.Pair{Host: host, Phage: phage, Label: pairs.Negative}
	}
	return draw
}
