package dataset

import (
	"fmt"
	"io"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/tphakala/phagepairs/internal/pairs"
	"github.com/tphakala/phagepairs/internal/sampling"
)

// ManifestEvent is a soft sampling event as recorded in the manifest.
type ManifestEvent struct {
	Kind      string `yaml:"kind"`
	Host      string `yaml:"host"`
	Requested int    `yaml:"requested"`
	Available int    `yaml:"available"`
}

// ManifestParams echoes the run parameters.
type ManifestParams struct {
	NHosts        int   `yaml:"n_hosts"`
	MaxPosPerHost int   `yaml:"max_pos_per_host"`
	NegRatio      int   `yaml:"neg_ratio"`
	Seed          int64 `yaml:"seed"`
}

// ManifestInputs names the files a run read and wrote.
type ManifestInputs struct {
	Input    string `yaml:"input"`
	Universe string `yaml:"universe"`
	Output   string `yaml:"output"`
}

// ManifestLoad reports what was read from the inputs.
type ManifestLoad struct {
	Rows              int `yaml:"rows"`
	Pairs             int `yaml:"pairs"`
	Duplicates        int `yaml:"duplicates"`
	SkippedEmpty      int `yaml:"skipped_empty"`
	UniverseSize      int `yaml:"universe_size"`
	OutsideUniverse   int `yaml:"outside_universe"`
	EligibleHosts     int `yaml:"eligible_hosts"`
	SampledHosts      int `yaml:"sampled_hosts"`
	PositivesAfterCap int `yaml:"positives_after_cap"`
}

// Manifest is the YAML record written next to a dataset.
type Manifest struct {
	RunID     string           `yaml:"run_id"`
	CreatedAt time.Time        `yaml:"created_at"`
	Duration  string           `yaml:"duration"`
	Params    ManifestParams   `yaml:"params"`
	Files     ManifestInputs   `yaml:"files"`
	Load      ManifestLoad     `yaml:"load"`
	Summary   sampling.Summary `yaml:"summary"`
	Events    []ManifestEvent  `yaml:"events,omitempty"`
}

// NewManifestEvents converts sampling events for the manifest.
func NewManifestEvents(events []sampling.Event) []ManifestEvent {
	out := make([]ManifestEvent, 0, len(events))
	for _, ev := range events {
		out = append(out, ManifestEvent{
			Kind:      string(ev.Kind),
			Host:      ev.Host,
			Requested: ev.Requested,
			Available: ev.Available,
		})
	}
	return out
}

// NewManifestLoad fills the load section from the loader statistics.
func NewManifestLoad(stats pairs.LoadStats, universe, outside, eligible, sampled, capped int) ManifestLoad {
	return ManifestLoad{
		Rows:              stats.Rows,
		Pairs:             stats.Pairs,
		Duplicates:        stats.Duplicates,
		SkippedEmpty:      stats.SkippedEmpty,
		UniverseSize:      universe,
		OutsideUniverse:   outside,
		EligibleHosts:     eligible,
		SampledHosts:      sampled,
		PositivesAfterCap: capped,
	}
}

// EncodeManifest writes m as YAML.
func EncodeManifest(w io.Writer, m *Manifest) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(m); err != nil {
		return fmt.Errorf("encode manifest: %w", err)
	}
	return enc.Close()
}
