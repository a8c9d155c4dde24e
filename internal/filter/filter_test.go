package filter

import (
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/phagepairs/internal/errors"
	"github.com/tphakala/phagepairs/internal/fasta"
)

const positives = "host_accession\tphage_contig\tinteraction\n" +
	"GCA_1.1\tAAAA01000001.1\t1\n" +
	"GCA_1.1\tBBBB01000001.1\t1\n" +
	"GCA_2.1\tAAAA01000001.1\t1\n" +
	"GCA_2.1\tCCCC01000001.1\t1\n"

func TestPairsWithSet(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "pairs.tsv", []byte(positives), 0o644))

	allowed := NewSet([]string{"AAAA01000001.1", "CCCC01000001.1"})
	stats, err := Pairs(fs, "pairs.tsv", "out/kept.tsv", '\t', allowed, len(allowed))
	require.NoError(t, err)

	assert.Equal(t, Stats{Allowed: 2, RowsIn: 4, Kept: 3}, stats)
	assert.Equal(t, 1, stats.Removed())

	got, err := afero.ReadFile(fs, "out/kept.tsv")
	require.NoError(t, err)
	assert.Equal(t, "host_accession\tphage_contig\tinteraction\n"+
		"GCA_1.1\tAAAA01000001.1\t1\n"+
		"GCA_2.1\tAAAA01000001.1\t1\n"+
		"GCA_2.1\tCCCC01000001.1\t1\n", string(got))
}

func TestPairsWithFastaContigs(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "pairs.tsv", []byte(positives), 0o644))
	require.NoError(t, afero.WriteFile(fs, "phages.fasta",
		[]byte(">x__GCA_9.9__BBBB01000001.1__1__2\nACGT\n"), 0o644))

	set, err := fasta.HeaderContigs(fs, "phages.fasta", 0)
	require.NoError(t, err)

	stats, err := Pairs(fs, "pairs.tsv", "kept.tsv", '\t', set, len(set.IDs))
	require.NoError(t, err)
	assert.Equal(t, 1, stats.Kept)
}

func TestPairsMissingPhageColumn(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "pairs.tsv", []byte("host\tcontig\nA\tB\n"), 0o644))

	_, err := Pairs(fs, "pairs.tsv", "kept.tsv", '\t', NewSet(nil), 0)
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategorySchema))

	exists, err := afero.Exists(fs, "kept.tsv")
	require.NoError(t, err)
	assert.False(t, exists)
}
