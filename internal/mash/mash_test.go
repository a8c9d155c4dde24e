package mash

import (
	"context"
	"fmt"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"

	"github.com/tphakala/phagepairs/internal/errors"
	"github.com/tphakala/phagepairs/internal/logger"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

func testLogger() logger.Logger {
	return logger.NewSlogLogger(&strings.Builder{}, logger.LogLevelDebug, nil)
}

func mashRow(query, ref string, dist string) string {
	return fmt.Sprintf("%s\t%s\t%s\t0\t900/1000\n", query, ref, dist)
}

func TestAggregateSingleFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	content := mashRow("/q/a.fa", "/baps/GCA_000000001.1_genomic.fna", "0.05") +
		mashRow("/q/b.fa", "/baps/GCA_000000001.1_genomic.fna", "0.02") +
		mashRow("/q/a.fa", "/baps/GCF_000000002.1_genomic.fna", "0.10") +
		mashRow("/q/a.fa", "/baps/unknown.fna", "0.01") +
		mashRow("/q/a.fa", "/baps/GCA_000000003.1.fna", "n/a") +
		"short\trow\n"
	require.NoError(t, afero.WriteFile(fs, "dist.tsv", []byte(content), 0o644))

	res, err := Aggregate(context.Background(), fs, []string{"dist.tsv"}, Options{}, testLogger())
	require.NoError(t, err)

	require.Len(t, res.Distances, 2)
	assert.Equal(t, "GCA_000000001.1", res.Distances[0].Accession)
	assert.InDelta(t, 0.02, float64(res.Distances[0].MinDist), 1e-12)
	assert.InDelta(t, 0.98, float64(res.Distances[0].ApproxANI), 1e-12)
	assert.Equal(t, "GCF_000000002.1", res.Distances[1].Accession)

	assert.Equal(t, Stats{Files: 1, Rows: 5, SkippedNoAccession: 1, SkippedBadDistance: 1}, res.Stats)
}

func TestAggregateAcrossFilesIsOrderIndependent(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	for i := range 8 {
		content := mashRow("/q/a.fa", "/baps/GCA_000000001.1.fna", fmt.Sprintf("0.%02d", 50-i)) +
			mashRow("/q/a.fa", "/baps/GCA_000000002.1.fna", fmt.Sprintf("0.%02d", 10+i))
		require.NoError(t, afero.WriteFile(fs, fmt.Sprintf("dist_%d.tsv", i), []byte(content), 0o644))
	}

	paths := []string{"dist_3.tsv", "dist_0.tsv", "dist_7.tsv", "dist_1.tsv", "dist_5.tsv", "dist_2.tsv", "dist_6.tsv", "dist_4.tsv"}

	var first *Result
	for _, workers := range []int{1, 3, 8} {
		res, err := Aggregate(context.Background(), fs, paths, Options{Workers: workers}, testLogger())
		require.NoError(t, err)
		assert.Equal(t, 8, res.Stats.Files)
		assert.Equal(t, 16, res.Stats.Rows)
		if first == nil {
			first = res
			continue
		}
		assert.Equal(t, first.Distances, res.Distances, "workers=%d", workers)
	}

	require.Len(t, first.Distances, 2)
	assert.InDelta(t, 0.43, float64(first.Distances[0].MinDist), 1e-12)
	assert.InDelta(t, 0.10, float64(first.Distances[1].MinDist), 1e-12)
}

func TestAggregateAllowedList(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	content := mashRow("q", "/baps/GCA_000000001.1.fna", "0.05") +
		mashRow("q", "/baps/GCA_000000002.1.fna", "0.01")
	require.NoError(t, afero.WriteFile(fs, "dist.tsv", []byte(content), 0o644))

	res, err := Aggregate(context.Background(), fs, []string{"dist.tsv"},
		Options{Allowed: []string{"GCA_000000001.1"}}, testLogger())
	require.NoError(t, err)

	require.Len(t, res.Distances, 1)
	assert.Equal(t, "GCA_000000001.1", res.Distances[0].Accession)
	assert.Equal(t, 1, res.Stats.SkippedNotAllowed)
}

func TestAggregateMissingFile(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "ok.tsv", []byte(mashRow("q", "GCA_1.1", "0.1")), 0o644))

	_, err := Aggregate(context.Background(), fs, []string{"ok.tsv", "missing.tsv"}, Options{Workers: 2}, testLogger())
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryMissingFile))
}

func TestAggregateCanceled(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "dist.tsv", []byte(mashRow("q", "GCA_1.1", "0.1")), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Aggregate(ctx, fs, []string{"dist.tsv"}, Options{}, testLogger())
	require.ErrorIs(t, err, context.Canceled)
}

func TestWriteAndSummarize(t *testing.T) {
	t.Parallel()

	res := &Result{Distances: []Distance{
		{"GCA_1.1", 0.01, 0.99},
		{"GCA_2.1", 0.02, 0.98},
		{"GCA_3.1", 0.05, 0.95},
		{"GCA_4.1", 0.1, 0.9},
	}}

	fs := afero.NewMemMapFs()
	require.NoError(t, res.Write(fs, "out/min_dist.csv"))

	got, err := afero.ReadFile(fs, "out/min_dist.csv")
	require.NoError(t, err)
	assert.Equal(t, "baps_acc,min_dist_to_genophi_train,approx_ani\n"+
		"GCA_1.1,0.010000,0.990000\n"+
		"GCA_2.1,0.020000,0.980000\n"+
		"GCA_3.1,0.050000,0.950000\n"+
		"GCA_4.1,0.100000,0.900000\n", string(got))

	s, ok, err := res.Summarize()
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, 4, s.N)
	assert.InDelta(t, 0.01, s.Min, 1e-12)
	assert.InDelta(t, 0.01, s.P25, 1e-12)
	assert.InDelta(t, 0.035, s.P50, 1e-12)
	assert.InDelta(t, 0.05, s.P75, 1e-12)
	assert.InDelta(t, 0.1, s.Max, 1e-12)
	assert.InDelta(t, 0.045, s.Mean, 1e-12)
}

func TestSummarizeEmpty(t *testing.T) {
	t.Parallel()

	_, ok, err := (&Result{}).Summarize()
	require.NoError(t, err)
	assert.False(t, ok)
}
