package conf

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/phagepairs/internal/errors"
)

// resetViper isolates tests that go through the global viper instance.
func resetViper(t *testing.T) {
	t.Helper()
	viper.Reset()
	t.Cleanup(viper.Reset)
}

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "phagepairs.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestLoadDefaults(t *testing.T) {
	resetViper(t)

	settings, err := Load(writeConfig(t, "debug: false\n"))
	require.NoError(t, err)

	assert.Equal(t, DefaultNHosts, settings.Build.NHosts)
	assert.Equal(t, DefaultMaxPosPerHost, settings.Build.MaxPosPerHost)
	assert.Equal(t, DefaultNegRatio, settings.Build.NegRatio)
	assert.Equal(t, int64(DefaultSeed), settings.Build.Seed)
	assert.Equal(t, "\t", settings.Build.InputDelimiter)
	assert.Equal(t, ",", settings.Build.OutputDelimiter)
	assert.Equal(t, LedgerNone, settings.Ledger.Type)
	assert.Equal(t, "info", settings.Logging.DefaultLevel)
}

func TestLoadConfigFileOverridesDefaults(t *testing.T) {
	resetViper(t)

	path := writeConfig(t, `
build:
  input: pairs.tsv
  nhosts: 5
  seed: 7
ledger:
  type: sqlite
  path: runs.db
logging:
  module_levels:
    sampling: debug
`)

	settings, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, "pairs.tsv", settings.Build.Input)
	assert.Equal(t, 5, settings.Build.NHosts)
	assert.Equal(t, int64(7), settings.Build.Seed)
	assert.Equal(t, DefaultMaxPosPerHost, settings.Build.MaxPosPerHost)
	assert.Equal(t, LedgerSQLite, settings.Ledger.Type)
	assert.Equal(t, "debug", settings.Logging.ModuleLevels["sampling"])
	assert.Equal(t, path, ConfigFileUsed())
}

func TestLoadEnvironmentOverridesFile(t *testing.T) {
	resetViper(t)
	t.Setenv("PHAGEPAIRS_SEED", "1234")
	t.Setenv("PHAGEPAIRS_BUILD_NHOSTS", "3")

	settings, err := Load(writeConfig(t, "build:\n  seed: 7\n"))
	require.NoError(t, err)

	assert.Equal(t, int64(1234), settings.Build.Seed)
	assert.Equal(t, 3, settings.Build.NHosts)
}

func TestLoadRejectsInvalidEnvironment(t *testing.T) {
	resetViper(t)
	t.Setenv("PHAGEPAIRS_BUILD_NEGRATIO", "-2")

	_, err := Load(writeConfig(t, "debug: false\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "PHAGEPAIRS_BUILD_NEGRATIO")
}

func TestLoadRejectsInvalidValues(t *testing.T) {
	resetViper(t)

	_, err := Load(writeConfig(t, "build:\n  maxposperhost: -1\nledger:\n  type: postgres\n"))
	require.Error(t, err)

	var ve ValidationError
	require.ErrorAs(t, err, &ve)
	assert.Len(t, ve.Errors, 2)
}

func TestLoadMissingExplicitConfig(t *testing.T) {
	resetViper(t)

	_, err := Load(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestValidateBuildInputs(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		settings BuildSettings
		wantErrs int
	}{
		{
			name: "complete",
			settings: BuildSettings{
				Input: "p.tsv", Universe: "u.txt", Output: "o.csv",
				InputDelimiter: "\t", OutputDelimiter: ",",
			},
		},
		{
			name:     "missing paths",
			settings: BuildSettings{InputDelimiter: "\t", OutputDelimiter: ","},
			wantErrs: 3,
		},
		{
			name: "bad delimiter and negative ratio",
			settings: BuildSettings{
				Input: "p.tsv", Universe: "u.txt", Output: "o.csv",
				NegRatio: -1, InputDelimiter: "::", OutputDelimiter: ",",
			},
			wantErrs: 1,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := ValidateBuildInputs(&tt.settings)
			if tt.wantErrs == 0 {
				require.NoError(t, err)
				return
			}

			var ve ValidationError
			require.ErrorAs(t, err, &ve)
			assert.Len(t, ve.Errors, tt.wantErrs)
		})
	}
}

func TestValidationErrorIsCategorized(t *testing.T) {
	t.Parallel()

	err := errors.New(ValidationError{Errors: []string{"x"}}).Build()
	assert.Equal(t, errors.CategoryValidation, err.Category)
}

func TestValidateLedgerSettings(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name     string
		settings LedgerSettings
		wantErr  bool
		wantType string
	}{
		{name: "empty means none", settings: LedgerSettings{}, wantType: LedgerNone},
		{name: "sqlite with path", settings: LedgerSettings{Type: "SQLite", Path: "runs.db"}, wantType: LedgerSQLite},
		{name: "sqlite without path", settings: LedgerSettings{Type: "sqlite"}, wantErr: true},
		{name: "mysql valid dsn", settings: LedgerSettings{Type: "mysql", DSN: "user:pw@tcp(localhost:3306)/phagepairs"}, wantType: LedgerMySQL},
		{name: "mysql bad dsn", settings: LedgerSettings{Type: "mysql", DSN: "not a dsn"}, wantErr: true},
		{name: "unknown", settings: LedgerSettings{Type: "mongo"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := validateLedgerSettings(&tt.settings)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantType, tt.settings.Type)
		})
	}
}

func TestParseDelimiter(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		value   string
		want    rune
		wantErr bool
	}{
		{name: "raw tab", value: "\t", want: '\t'},
		{name: "escaped tab", value: `\t`, want: '\t'},
		{name: "named tab", value: "tab", want: '\t'},
		{name: "comma", value: ",", want: ','},
		{name: "named comma", value: "comma", want: ','},
		{name: "semicolon", value: ";", want: ';'},
		{name: "empty", value: "", wantErr: true},
		{name: "two characters", value: ",,", wantErr: true},
		{name: "newline", value: "\n", wantErr: true},
		{name: "quote", value: `"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			got, err := ParseDelimiter(tt.value)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestValidateEnvValues(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name    string
		fn      func(string) error
		value   string
		wantErr bool
	}{
		{"bool true", validateEnvBool, " true ", false},
		{"bool yes", validateEnvBool, "yes", true},
		{"count", validateEnvNonNegativeInt, "200", false},
		{"negative count", validateEnvNonNegativeInt, "-1", true},
		{"count not a number", validateEnvNonNegativeInt, "many", true},
		{"negative seed", validateEnvSeed, "-42", false},
		{"seed overflow", validateEnvSeed, "99999999999999999999", true},
		{"ledger sqlite", validateEnvLedgerType, "SQLITE", false},
		{"ledger unknown", validateEnvLedgerType, "redis", true},
		{"delimiter tab", validateEnvDelimiter, `\t`, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()

			err := tt.fn(tt.value)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestEmbeddedDefaultConfigMatchesDefaults(t *testing.T) {
	resetViper(t)

	content, err := DefaultConfig()
	require.NoError(t, err)

	settings, err := Load(writeConfig(t, content))
	require.NoError(t, err)

	assert.Equal(t, DefaultNHosts, settings.Build.NHosts)
	assert.Equal(t, "\t", settings.Build.InputDelimiter)
	assert.True(t, settings.Logging.Console.Enabled)
}

func TestPrintSettingsRoundTrips(t *testing.T) {
	t.Parallel()

	settings := &Settings{Build: BuildSettings{NHosts: 12, Seed: 9}}

	var buf bytes.Buffer
	require.NoError(t, PrintSettings(&buf, settings))

	var decoded map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &decoded))
	build, ok := decoded["build"].(map[string]any)
	require.True(t, ok)
	assert.Equal(t, 12, build["nhosts"])
	assert.Equal(t, 9, build["seed"])
}
