package build

import (
	"context"
	"os"
	"path/filepath"
	"regexp"
	"strings"
	"testing"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/tphakala/phagepairs/internal/conf"
	"github.com/tphakala/phagepairs/internal/ledger"
	"github.com/tphakala/phagepairs/internal/logger"
)

func testLogger() logger.Logger {
	return logger.NewSlogLogger(&strings.Builder{}, logger.LogLevelDebug, nil)
}

func testSettings() *conf.Settings {
	return &conf.Settings{
		Build: conf.BuildSettings{
			Input:           "in/pairs.tsv",
			Universe:        "in/allowed.txt",
			Output:          "out/train.csv",
			NHosts:          2,
			MaxPosPerHost:   2,
			NegRatio:        1,
			Seed:            42,
			InputDelimiter:  `\t`,
			OutputDelimiter: ",",
		},
		Ledger: conf.LedgerSettings{Type: conf.LedgerNone},
	}
}

func testFs(t *testing.T) afero.Fs {
	t.Helper()
	fs := afero.NewMemMapFs()
	require.NoError(t, afero.WriteFile(fs, "in/pairs.tsv",
		[]byte("host_id\tphage_id\nA\tp1\nA\tp2\nB\tp3\n"), 0o644))
	require.NoError(t, afero.WriteFile(fs, "in/allowed.txt",
		[]byte("p1\np2\np3\np4\np5\np6\n"), 0o644))
	return fs
}

var runIDPattern = regexp.MustCompile(`run:\s+([0-9a-f-]{36})`)

func TestRunPrintsSummaryAndWritesMetrics(t *testing.T) {
	t.Parallel()

	fs := testFs(t)
	settings := testSettings()
	settings.Metrics.Textfile = filepath.Join(t.TempDir(), "phagepairs.prom")

	var out strings.Builder
	require.NoError(t, run(context.Background(), &out, fs, settings, testLogger()))

	assert.Regexp(t, runIDPattern, out.String())
	assert.Contains(t, out.String(), "rows:       6")
	assert.Contains(t, out.String(), "hosts:      2")

	exists, err := afero.Exists(fs, "out/train.csv")
	require.NoError(t, err)
	assert.True(t, exists)

	prom, err := os.ReadFile(settings.Metrics.Textfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `phagepairs_dataset_rows{label="1"} 3`)
}

func TestRunRecordsToSQLiteLedger(t *testing.T) {
	t.Parallel()

	settings := testSettings()
	settings.Ledger = conf.LedgerSettings{
		Type: conf.LedgerSQLite,
		Path: filepath.Join(t.TempDir(), "db", "ledger.db"),
	}

	var out strings.Builder
	require.NoError(t, run(context.Background(), &out, testFs(t), settings, testLogger()))

	m := runIDPattern.FindStringSubmatch(out.String())
	require.Len(t, m, 2)

	l, err := ledger.Open(&settings.Ledger, testLogger())
	require.NoError(t, err)
	t.Cleanup(func() { _ = l.Close() })

	got, err := l.Get(context.Background(), m[1])
	require.NoError(t, err)
	assert.Equal(t, int64(42), got.Seed)
	assert.Equal(t, 6, got.Rows)
}

func TestRunMissingInputFails(t *testing.T) {
	t.Parallel()

	fs := afero.NewMemMapFs()
	settings := testSettings()
	settings.Metrics.Textfile = filepath.Join(t.TempDir(), "phagepairs.prom")

	var out strings.Builder
	err := run(context.Background(), &out, fs, settings, testLogger())
	require.Error(t, err)
	assert.Empty(t, out.String())

	prom, err := os.ReadFile(settings.Metrics.Textfile)
	require.NoError(t, err)
	assert.Contains(t, string(prom), `phagepairs_errors_total{category="missing-file",operation="build"} 1`)
	assert.Contains(t, string(prom), `phagepairs_operations_total{operation="build",status="error"} 1`)
}

func TestCommandFlagsOverrideSettings(t *testing.T) {
	t.Parallel()

	settings := testSettings()
	cmd := Command(settings, testLogger())
	require.NoError(t, cmd.ParseFlags([]string{
		"--n-hosts", "7",
		"--seed", "-3",
		"--output-delimiter", ";",
		"-o", "elsewhere.csv",
	}))

	assert.Equal(t, 7, settings.Build.NHosts)
	assert.Equal(t, int64(-3), settings.Build.Seed)
	assert.Equal(t, ";", settings.Build.OutputDelimiter)
	assert.Equal(t, "elsewhere.csv", settings.Build.Output)
	assert.Equal(t, 2, settings.Build.MaxPosPerHost, "unset flags keep the configured value")
}
