package sampling

import (
	"github.com/tphakala/phagepairs/internal/pairs"
)

// Params are the sampling knobs of one run.
type Params struct {
	NHosts        int
	MaxPosPerHost int
	NegRatio      int
}

// Result is everything Build produced, stage by stage.
type Result struct {
	Hosts   []string            // sampled hosts, sorted
	Capped  pairs.HostPositives // capped positives of sampled hosts with at least one kept
	Draws   []NegativeDraw      // one per capped host, in host order
	Events  []Event             // soft shortfalls, in host order
	Dataset Dataset
}

// Build runs host sampling, positive capping, negative sampling and assembly
// against one generator in a fixed order: hosts, then every host's cap in
// lexicographic order, then every host's negatives in the same order, then
// the final shuffle. The negative count of a host is derived from its capped
// positives.
func Build(r *Rand, positives pairs.HostPositives, u *pairs.Universe, p Params) Result {
	res := Result{
		Hosts:  SampleHosts(r, positives.Hosts(), p.NHosts),
		Capped: make(pairs.HostPositives),
	}

	for _, host := range res.Hosts {
		kept := CapPositives(r, positives[host], p.MaxPosPerHost)
		if len(kept) == 0 {
			continue
		}
		res.Capped[host] = kept
	}

	var negatives []pairs.Pair
	for _, host := range res.Capped.Hosts() {
		draw := SampleNegatives(r, host, res.Capped[host], u, p.NegRatio)
		res.Draws = append(res.Draws, draw)
		negatives = append(negatives, draw.Negatives...)
		if draw.Event != nil {
			res.Events = append(res.Events, *draw.Event)
		}
	}

	res.Dataset = Assemble(r, res.Capped.Pairs(), negatives)
	for _, ev := range res.Events {
		switch ev.Kind {
		case EventEmptyCandidates:
			res.Dataset.Summary.EmptyCandidateHosts = append(res.Dataset.Summary.EmptyCandidateHosts, ev.Host)
		case EventInsufficientNegatives:
			res.Dataset.Summary.TruncatedHosts = append(res.Dataset.Summary.TruncatedHosts, ev.Host)
		}
	}

	return res
}
