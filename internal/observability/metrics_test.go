package observability

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/phagepairs/internal/errors"
	"github.com/tphakala/phagepairs/internal/observability/metrics"
)

func TestWriteTextfile(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	require.NoError(t, err)

	m.Sampling.RecordDataset(3, 2)
	m.Sampling.RecordEvent("insufficient_negatives")

	path := filepath.Join(t.TempDir(), "phagepairs.prom")
	require.NoError(t, m.WriteTextfile(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	out := string(data)
	assert.Contains(t, out, `phagepairs_dataset_rows{label="`+metrics.LabelPositive+`"} 3`)
	assert.Contains(t, out, `phagepairs_dataset_rows{label="`+metrics.LabelNegative+`"} 2`)
	assert.Contains(t, out, `phagepairs_sampling_events{kind="insufficient_negatives"} 1`)
}

func TestWriteTextfileMissingDirectory(t *testing.T) {
	t.Parallel()

	m, err := NewMetrics()
	require.NoError(t, err)

	err = m.WriteTextfile(filepath.Join(t.TempDir(), "missing", "phagepairs.prom"))
	require.Error(t, err)
	assert.True(t, errors.IsCategory(err, errors.CategoryFileIO))
}
