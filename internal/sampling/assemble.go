package sampling

import (
	"github.com/tphakala/phagepairs/internal/pairs"
)

// Summary aggregates the counts reported at the end of a run.
type Summary struct {
	Rows                int      `yaml:"rows"`
	Positives           int      `yaml:"positives"`
	Negatives           int      `yaml:"negatives"`
	Hosts               int      `yaml:"hosts"`                           // distinct hosts in the dataset
	TruncatedHosts      []string `yaml:"truncated_hosts,omitempty"`       // hosts with insufficient negatives
	EmptyCandidateHosts []string `yaml:"empty_candidate_hosts,omitempty"` // hosts with no candidates at all
}

// Dataset is the shuffled, labeled table plus its summary.
type Dataset struct {
	Pairs   []pairs.Pair
	Summary Summary
}

// Header is the fixed output column order.
var Header = []string{"host_id", "phage_id", "label"}

// Assemble concatenates positives then negatives and applies one seeded
// full-table shuffle. The inputs are not modified.
func Assemble(r *Rand, positives, negatives []pairs.Pair) Dataset {
	rows := make([]pairs.Pair, 0, len(positives)+len(negatives))
	rows = append(rows, positives...)
	rows = append(rows, negatives...)

	r.shuffle(len(rows), func(i, j int) {
		rows[i], rows[j] = rows[j], rows[i]
	})

	hosts := make(map[string]struct{})
	for _, p := range rows {
		hosts[p.Host] = struct{}{}
	}

	return Dataset{
		Pairs: rows,
		Summary: Summary{
			Rows:      len(rows),
			Positives: len(positives),
			Negatives: len(negatives),
			Hosts:     len(hosts),
		},
	}
}
