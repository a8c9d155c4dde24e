package pairs

import (
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/tphakala/phagepairs/internal/errors"
)

// Accepted header names, in priority order.
var (
	HostColumns  = []string{"host_id", "host_accession"}
	PhageColumns = []string{"phage_id", "phage_contig"}
	LabelColumns = []string{"label", "interaction"}
)

// Canonical keys the resolved host and phage columns are decoded under.
const (
	hostKey  = "host"
	phageKey = "phage"
)

// positiveRow is one decoded row of the positive pairs table.
type positiveRow struct {
	Host  string `csv:"host"`
	Phage string `csv:"phage"`
}

// LoadOptions controls how the positive pairs table is parsed.
type LoadOptions struct {
	Delimiter rune // field separator, tab when zero
}

// LoadStats describes what LoadPositives saw while reading.
type LoadStats struct {
	Rows         int    // data rows read
	Pairs        int    // distinct (host, phage) pairs kept
	Duplicates   int    // exact repeats collapsed
	SkippedEmpty int    // rows with an empty host or phage field
	HostColumn   string // header name that supplied hosts
	PhageColumn  string // header name that supplied phages
	LabelColumn  string // header name of the ignored label column, if any
}

// PositiveTable is the deduplicated set of known interactions grouped by host.
type PositiveTable struct {
	byHost map[string]map[string]struct{}
	Stats  LoadStats
}

// HostPositives maps a host to its sorted, deduplicated positive phages.
type HostPositives map[string][]string

// LoadPositives reads the positive pairs table at path. Every row is a
// positive; a label column, when present, is ignored.
func LoadPositives(fs afero.Fs, path string, opts LoadOptions) (*PositiveTable, error) {
	delimiter := opts.Delimiter
	if delimiter == 0 {
		delimiter = '\t'
	}

	table, err := OpenTable(fs, path, "input", delimiter)
	if err != nil {
		return nil, err
	}
	defer func() { _ = table.Close() }()

	hostIdx, hostName, hostOK := table.Column(HostColumns...)
	phageIdx, phageName, phageOK := table.Column(PhageColumns...)
	if !hostOK || !phageOK {
		var missing []string
		if !hostOK {
			missing = append(missing, HostColumns...)
		}
		if !phageOK {
			missing = append(missing, PhageColumns...)
		}
		return nil, errors.SchemaError(componentPairs, path, missing, table.Header())
	}
	_, labelName, _ := table.Column(LabelColumns...)

	pt := &PositiveTable{
		byHost: make(map[string]map[string]struct{}),
		Stats: LoadStats{
			HostColumn:  hostName,
			PhageColumn: phageName,
			LabelColumn: labelName,
		},
	}

	columns := map[string]int{hostKey: hostIdx, phageKey: phageIdx}
	err = DecodeRows(table, columns, func(row positiveRow) {
		pt.Stats.Rows++

		host := strings.TrimSpace(row.Host)
		phage := strings.TrimSpace(row.Phage)
		if host == "" || phage == "" {
			pt.Stats.SkippedEmpty++
			return
		}

		if !pt.add(host, phage) {
			pt.Stats.Duplicates++
		}
	})
	if err != nil {
		return nil, err
	}

	return pt, nil
}

// NewPositiveTable builds a table from in-memory pairs, deduplicating as
// LoadPositives does. Labels are ignored.
func NewPositiveTable(pairs []Pair) *PositiveTable {
	pt := &PositiveTable{byHost: make(map[string]map[string]struct{})}
	for _, p := range pairs {
		pt.Stats.Rows++
		if p.Host == "" || p.Phage == "" {
			pt.Stats.SkippedEmpty++
			continue
		}
		if !pt.add(p.Host, p.Phage) {
			pt.Stats.Duplicates++
		}
	}
	return pt
}

// add records a pair and reports whether it was new.
func (pt *PositiveTable) add(host, phage string) bool {
	phages, ok := pt.byHost[host]
	if !ok {
		phages = make(map[string]struct{})
		pt.byHost[host] = phages
	}
	if _, dup := phages[phage]; dup {
		return false
	}
	phages[phage] = struct{}{}
	pt.Stats.Pairs++
	return true
}

// Hosts returns the distinct hosts in lexicographic order.
func (pt *PositiveTable) Hosts() []string {
	hosts := make([]string, 0, len(pt.byHost))
	for h := range pt.byHost {
		hosts = append(hosts, h)
	}
	slices.Sort(hosts)
	return hosts
}

// Phages returns the sorted positive phages of host.
func (pt *PositiveTable) Phages(host string) []string {
	return sortedKeys(pt.byHost[host])
}

// Len returns the number of distinct positive pairs.
func (pt *PositiveTable) Len() int {
	return pt.Stats.Pairs
}

// Restrict drops positives whose phage is outside u and returns the rest
// grouped by host, along with the number of pairs dropped. Hosts left with
// no positives are omitted.
func (pt *PositiveTable) Restrict(u *Universe) (HostPositives, int) {
	out := make(HostPositives, len(pt.byHost))
	dropped := 0

	for host, phages := range pt.byHost {
		kept := make([]string, 0, len(phages))
		for phage := range phages {
			if u.Contains(phage) {
				kept = append(kept, phage)
			} else {
				dropped++
			}
		}
		if len(kept) == 0 {
			continue
		}
		slices.Sort(kept)
		out[host] = kept
	}

	return out, dropped
}

// Hosts returns the hosts of hp in lexicographic order.
func (hp HostPositives) Hosts() []string {
	hosts := make([]string, 0, len(hp))
	for h := range hp {
		hosts = append(hosts, h)
	}
	slices.Sort(hosts)
	return hosts
}

// Len returns the total number of pairs in hp.
func (hp HostPositives) Len() int {
	n := 0
	for _, phages := range hp {
		n += len(phages)
	}
	return n
}

// Pairs expands hp into positive pairs ordered by host then phage.
func (hp HostPositives) Pairs() []Pair {
	out := make([]Pair, 0, hp.Len())
	for _, host := range hp.Hosts() {
		for _, phage := range hp[host] {
			out = append(out, Pair{Host: host, Phage: phage, Label: Positive})
		}
	}
	return out
}

func sortedKeys(set map[string]struct{}) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	return keys
}
