package pairs

import (
	"bytes"
	"fmt"
	"testing"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/phagepairs/internal/errors"
)

func writeFile(t *testing.T, fs afero.Fs, path, content string) {
	t.Helper()
	require.NoError(t, afero.WriteFile(fs, path, []byte(content), 0o644))
}

func TestLoadPositivesColumnAliases(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name      string
		content   string
		opts      LoadOptions
		wantHost  string
		wantPhage string
		wantLabel string
	}{
		{
			name:      "canonical names",
			content:   "host_id\tphage_id\tlabel\nA\tp1\t1\n",
			wantHost:  "host_id",
			wantPhage: "phage_id",
			wantLabel: "label",
		},
		{
			name:      "extraction output names",
			content:   "host_accession\tphage_contig\tinteraction\nA\tp1\t1\n",
			wantHost:  "host_accession",
			wantPhage: "phage_contig",
			wantLabel: "interaction",
		},
		{
			name:      "canonical wins over alias",
			content:   "host_accession\thost_id\tphage_id\nX\tA\tp1\n",
			wantHost:  "host_id",
			wantPhage: "phage_id",
		},
		{
			name:      "comma delimited with upper case header",
			content:   "Host_ID,Phage_ID\nA,p1\n",
			opts:      LoadOptions{Delimiter: ','},
			wantHost:  "host_id",
			wantPhage: "phage_id",
		},
		{
			name:      "byte order mark",
			content:   "\ufeffhost_id\tphage_id\nA\tp1\n",
			wantHost:  "host_id",
			wantPhage: "phage_id",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := afero.NewMemMapFs()
			writeFile(t, fs, "pairs.tsv", tt.content)

			pt, err := LoadPositives(fs, "pairs.tsv", tt.opts)
			require.NoError(t, err)

			assert.Equal(t, tt.wantHost, pt.Stats.HostColumn)
			assert.Equal(t, tt.wantPhage, pt.Stats.PhageColumn)
			assert.Equal(t, tt.wantLabel, pt.Stats.LabelColumn)
			assert.Equal(t, []string{"A"}, pt.Hosts())
			assert.Equal(t, []string{"p1"}, pt.Phages("A"))
		})
	}
}

func TestLoadPositivesDeduplicatesAndSkips(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "pairs.tsv", "host_id\tphage_id\tlabel\n"+
		"B\tp2\t1\n"+
		"A\tp1\t0\n"+
		"A\tp1\t1\n"+
		"\tp3\t1\n"+
		"A\t\t1\n"+
		"A\tp2\n")

	pt, err := LoadPositives(fs, "pairs.tsv", LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, 6, pt.Stats.Rows)
	assert.Equal(t, 1, pt.Stats.Duplicates)
	assert.Equal(t, 2, pt.Stats.SkippedEmpty)
	assert.Equal(t, 3, pt.Len())
	assert.Equal(t, []string{"A", "B"}, pt.Hosts())
	assert.Equal(t, []string{"p1", "p2"}, pt.Phages("A"))
}

func TestLoadPositivesMissingFile(t *testing.T) {
	t.Parallel()

	_, err := LoadPositives(afero.NewMemMapFs(), "absent.tsv", LoadOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryMissingFile))
	assert.Contains(t, err.Error(), "absent.tsv")
}

func TestLoadPositivesSchemaError(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		content string
		missing string
	}{
		{name: "no host column", content: "bacterium\tphage_id\nA\tp1\n", missing: "host_accession"},
		{name: "no phage column", content: "host_id\tvirus\nA\tp1\n", missing: "phage_contig"},
		{name: "empty file", content: "", missing: "header"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			fs := afero.NewMemMapFs()
			writeFile(t, fs, "pairs.tsv", tt.content)

			_, err := LoadPositives(fs, "pairs.tsv", LoadOptions{})
			require.Error(t, err)
			assert.True(t, errors.IsCategory(err, errors.CategorySchema))
			assert.Contains(t, err.Error(), tt.missing)
		})
	}
}

func TestLoadPositivesGzip(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write([]byte("host_id\tphage_id\nA\tp1\nA\tp2\n"))
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "pairs.tsv.gz", buf.String())

	pt, err := LoadPositives(fs, "pairs.tsv.gz", LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, pt.Len())
}

func TestLoadPositivesQuotedMultilineField(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "pairs.tsv", "host_id\tphage_id\tnote\n"+
		"A\tp1\t\"first line\nsecond line\"\n"+
		"B\tp2\tplain\n")

	pt, err := LoadPositives(fs, "pairs.tsv", LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, 2, pt.Stats.Rows)
	assert.Equal(t, []string{"A", "B"}, pt.Hosts())
	assert.Equal(t, []string{"p2"}, pt.Phages("B"))
}

func TestLoadPositivesTrimsFields(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "pairs.tsv", "host_id\tphage_id\n A \tp1 \n  \tp2\n")

	pt, err := LoadPositives(fs, "pairs.tsv", LoadOptions{})
	require.NoError(t, err)
	assert.Equal(t, []string{"A"}, pt.Hosts())
	assert.Equal(t, []string{"p1"}, pt.Phages("A"))
	assert.Equal(t, 1, pt.Stats.SkippedEmpty)
}

func TestLoadPositivesTruncatedGzip(t *testing.T) {
	t.Parallel()

	var content bytes.Buffer
	content.WriteString("host_id\tphage_id\n")
	for i := range 5000 {
		fmt.Fprintf(&content, "GCA_%06d.1\tNAFV%08d.1\n", i%300, i)
	}

	var buf bytes.Buffer
	gz := gzip.NewWriter(&buf)
	_, err := gz.Write(content.Bytes())
	require.NoError(t, err)
	require.NoError(t, gz.Close())

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "pairs.tsv.gz", buf.String()[:buf.Len()/2])

	_, err = LoadPositives(fs, "pairs.tsv.gz", LoadOptions{})
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileParsing), "got %v", err)
	assert.Contains(t, err.Error(), "pairs.tsv.gz")
}

func TestLoadUniverse(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "allowed.txt", "p3\n  p1  \n\np2\np1\r\n")

	u, err := LoadUniverse(fs, "allowed.txt")
	require.NoError(t, err)

	assert.Equal(t, []string{"p1", "p2", "p3"}, u.IDs())
	assert.Equal(t, 3, u.Len())
	assert.True(t, u.Contains("p2"))
	assert.False(t, u.Contains("p9"))
}

func TestLoadUniverseMissing(t *testing.T) {
	t.Parallel()

	_, err := LoadUniverse(afero.NewMemMapFs(), "allowed.txt")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryMissingFile))
	assert.Contains(t, err.Error(), "universe not found")
}

func TestRestrictDropsOutsideUniverse(t *testing.T) {
	t.Parallel()

	pt := NewPositiveTable([]Pair{
		{Host: "A", Phage: "p1"},
		{Host: "A", Phage: "p9"},
		{Host: "B", Phage: "p8"},
		{Host: "C", Phage: "p2"},
	})
	u := NewUniverse([]string{"p1", "p2", "p3"})

	hp, dropped := pt.Restrict(u)

	assert.Equal(t, 2, dropped)
	assert.Equal(t, []string{"A", "C"}, hp.Hosts())
	assert.Equal(t, []string{"p1"}, hp["A"])
	assert.Equal(t, 2, hp.Len())
	assert.Equal(t, []Pair{
		{Host: "A", Phage: "p1", Label: Positive},
		{Host: "C", Phage: "p2", Label: Positive},
	}, hp.Pairs())
}

func TestLabelRendering(t *testing.T) {
	t.Parallel()

	s, err := Positive.MarshalCSV()
	require.NoError(t, err)
	assert.Equal(t, "1", s)
	assert.Equal(t, "0", Negative.String())
}

func TestLoadIDsGzipKeepsOrder(t *testing.T) {
	t.Parallel()

	var buf bytes.Buffer
	zw := gzip.NewWriter(&buf)
	_, err := zw.Write([]byte("NAFV01000136.1\n\nAAAA01000001.1\r\n"))
	require.NoError(t, err)
	require.NoError(t, zw.Close())

	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "contigs.txt.gz", buf.Bytes(), 0o644))

	ids, err := LoadIDs(fs, "contigs.txt.gz", "contigs")
	require.NoError(t, err)
	assert.Equal(t, []string{"NAFV01000136.1", "AAAA01000001.1"}, ids)
}

func TestLoadIDsCorruptGzip(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	writeFile(t, fs, "contigs.txt.gz", "not gzip")

	_, err := LoadIDs(fs, "contigs.txt.gz", "contigs")
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileParsing))
}
