package dataset

import (
	"bytes"
	"fmt"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/phagepairs/internal/pairs"
	"github.com/tphakala/phagepairs/internal/sampling"
)

func TestWriteTable(t *testing.T) {
	t.Parallel()

	rows := []pairs.Pair{
		{Host: "A", Phage: "p1", Label: pairs.Positive},
		{Host: "A", Phage: "p4", Label: pairs.Negative},
	}

	tests := []struct {
		name      string
		rows      []pairs.Pair
		delimiter rune
		want      string
	}{
		{
			name:      "comma",
			rows:      rows,
			delimiter: ',',
			want:      "host_id,phage_id,label\nA,p1,1\nA,p4,0\n",
		},
		{
			name:      "tab",
			rows:      rows,
			delimiter: '\t',
			want:      "host_id\tphage_id\tlabel\nA\tp1\t1\nA\tp4\t0\n",
		},
		{
			name:      "empty dataset keeps the header",
			delimiter: ',',
			want:      "host_id,phage_id,label\n",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			var buf bytes.Buffer
			require.NoError(t, WriteTable(&buf, tt.rows, tt.delimiter))
			assert.Equal(t, tt.want, buf.String())
		})
	}
}

func TestWriteAtomicCreatesDirectories(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	rows := []pairs.Pair{{Host: "A", Phage: "p1", Label: pairs.Positive}}

	require.NoError(t, WriteAtomic(fs, "out/nested/train.csv", func(w io.Writer) error {
		return WriteTable(w, rows, ',')
	}))

	got, err := afero.ReadFile(fs, "out/nested/train.csv")
	require.NoError(t, err)
	assert.Equal(t, "host_id,phage_id,label\nA,p1,1\n", string(got))

	entries, err := afero.ReadDir(fs, "out/nested")
	require.NoError(t, err)
	assert.Len(t, entries, 1, "temporary file left behind")
}

func TestWriteAtomicFailureLeavesNoOutput(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "out/train.csv", []byte("previous\n"), 0o644))

	err := WriteAtomic(fs, "out/train.csv", func(w io.Writer) error {
		_, _ = io.WriteString(w, "partial")
		return fmt.Errorf("encoder failed")
	})
	require.Error(t, err)

	got, err := afero.ReadFile(fs, "out/train.csv")
	require.NoError(t, err)
	assert.Equal(t, "previous\n", string(got), "existing output must be untouched")

	entries, err := afero.ReadDir(fs, "out")
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestWriteAtomicReadOnly(t *testing.T) {
	t.Parallel()

	fs := afero.NewReadOnlyFs(afero.NewMemMapFs())
	err := WriteLines(fs, "out/hosts.txt", []string{"A"})
	require.Error(t, err)
}

func TestWriteLines(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, WriteLines(fs, "hosts.txt", []string{"A", "B"}))

	got, err := afero.ReadFile(fs, "hosts.txt")
	require.NoError(t, err)
	assert.Equal(t, "A\nB\n", string(got))
}

func TestManifestRoundTrip(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	created := time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)
	events := []sampling.Event{
		{Kind: sampling.EventInsufficientNegatives, Host: "B", Requested: 4, Available: 2},
	}

	m := &Manifest{
		RunID:     "7b0c6a8e-1f1e-4c39-9d1f-2a8b2d2f0b11",
		CreatedAt: created,
		Duration:  "12ms",
		Params:    ManifestParams{NHosts: 2, MaxPosPerHost: 2, NegRatio: 2, Seed: 7},
		Files:     ManifestInputs{Input: "pairs.tsv", Universe: "allowed.txt", Output: "train.csv"},
		Load: NewManifestLoad(pairs.LoadStats{Rows: 5, Pairs: 4, Duplicates: 1},
			5, 0, 2, 2, 3),
		Summary: sampling.Summary{Rows: 5, Positives: 3, Negatives: 2, Hosts: 2, TruncatedHosts: []string{"B"}},
		Events:  NewManifestEvents(events),
	}
	require.NoError(t, WriteAtomic(fs, "run.yaml", func(w io.Writer) error {
		return EncodeManifest(w, m)
	}))

	raw, err := afero.ReadFile(fs, "run.yaml")
	require.NoError(t, err)
	assert.Contains(t, string(raw), "kind: insufficient_negatives")
	assert.Contains(t, string(raw), "max_pos_per_host: 2")

	var got Manifest
	require.NoError(t, yaml.Unmarshal(raw, &got))
	assert.Equal(t, m.RunID, got.RunID)
	assert.True(t, created.Equal(got.CreatedAt))
	assert.Equal(t, m.Params, got.Params)
	assert.Equal(t, m.Load, got.Load)
	assert.Equal(t, m.Summary, got.Summary)
	assert.Equal(t, m.Events, got.Events)
}

func TestPrintSummary(t *testing.T) {
	t.Parallel()

	var b strings.Builder
	s := sampling.Summary{
		Rows:                12345,
		Positives:           6000,
		Negatives:           6345,
		Hosts:               200,
		TruncatedHosts:      []string{"B", "C"},
		EmptyCandidateHosts: []string{"D"},
	}
	require.NoError(t, PrintSummary(&b, s))

	out := b.String()
	assert.Contains(t, out, "rows:       12,345")
	assert.Contains(t, out, "label=1:  6,000")
	assert.Contains(t, out, "label=0:  6,345")
	assert.Contains(t, out, "truncated:  2 (B, C)")
	assert.Contains(t, out, "no negatives: 1 (D)")
}

func TestBatchCommitsTogether(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	b := NewBatch(fs)
	defer b.Abort()

	require.NoError(t, b.Add("out/train.csv", func(w io.Writer) error {
		return WriteTable(w, []pairs.Pair{{Host: "A", Phage: "p1", Label: pairs.Positive}}, ',')
	}))
	require.NoError(t, b.Add("out/hosts.txt", func(w io.Writer) error {
		return EncodeLines(w, []string{"A"})
	}))

	exists, err := afero.Exists(fs, "out/train.csv")
	require.NoError(t, err)
	assert.False(t, exists, "staged output visible before commit")

	require.NoError(t, b.Commit())

	got, err := afero.ReadFile(fs, "out/hosts.txt")
	require.NoError(t, err)
	assert.Equal(t, "A\n", string(got))

	entries, err := afero.ReadDir(fs, "out")
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}

func TestBatchFailedAddLeavesNothing(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	fs := afero.NewOsFs()
	blocker := filepath.Join(dir, "blocker")
	require.NoError(t, afero.WriteFile(fs, blocker, []byte("x"), 0o644))

	b := NewBatch(fs)
	require.NoError(t, b.Add(filepath.Join(dir, "train.csv"), func(w io.Writer) error {
		return EncodeLines(w, []string{"row"})
	}))
	require.Error(t, b.Add(filepath.Join(blocker, "hosts.txt"), func(w io.Writer) error {
		return EncodeLines(w, []string{"A"})
	}))
	b.Abort()

	entries, err := afero.ReadDir(fs, dir)
	require.NoError(t, err)
	require.Len(t, entries, 1)
	assert.Equal(t, "blocker", entries[0].Name())
}
