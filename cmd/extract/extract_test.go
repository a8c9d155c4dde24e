package extract

import (
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/phagepairs/internal/conf"
	"github.com/tphakala/phagepairs/internal/errors"
	"github.com/tphakala/phagepairs/internal/logger"
)

func TestRun(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "baps.tsv", []byte(
		"sample\tcontig\torganism\n"+
			"GCA_018015695.1_-_PDT1\tNAFV01000136.1\tEscherichia coli\n"+
			"GCA_000000001.1_-_X\tAAAA01000001.1\tSalmonella enterica\n"), 0o644))

	s := &conf.ExtractSettings{Input: "baps.tsv", Output: "pairs.tsv", HostsOutput: "hosts.txt", EcoliOnly: true}
	var out strings.Builder
	require.NoError(t, run(&out, fs, s, logger.NewSlogLogger(&strings.Builder{}, logger.LogLevelInfo, nil)))

	assert.Contains(t, out.String(), "E. coli rows:  1")
	assert.Contains(t, out.String(), "pairs:         1")

	got, err := afero.ReadFile(fs, "pairs.tsv")
	require.NoError(t, err)
	assert.Equal(t, "host_accession\tphage_contig\tinteraction\nGCA_018015695.1\tNAFV01000136.1\t1\n", string(got))

	hosts, err := afero.ReadFile(fs, "hosts.txt")
	require.NoError(t, err)
	assert.Equal(t, "GCA_018015695.1\n", string(hosts))
}

func TestRunRequiresPaths(t *testing.T) {
	t.Parallel()

	err := run(&strings.Builder{}, afero.NewMemMapFs(), &conf.ExtractSettings{Input: "baps.tsv"},
		logger.NewSlogLogger(&strings.Builder{}, logger.LogLevelInfo, nil))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryValidation))
}
