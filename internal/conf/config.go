// config.go: settings struct for phagepairs and the functions that load and print it.
package conf

import (
	"embed"
	"errors"
	"fmt"
	"io"
	"io/fs"
	"sync"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"

	"github.com/tphakala/phagepairs/internal/logger"
)

//go:embed config.yaml
var configFiles embed.FS

// BuildSettings holds the parameters of one dataset construction run.
type BuildSettings struct {
	Input           string // positive pairs table
	Universe        string // newline-delimited allowed phage ids
	Output          string // destination dataset table
	NHosts          int    // number of hosts to sample
	MaxPosPerHost   int    // cap on positives kept per host
	NegRatio        int    // negatives requested per kept positive
	Seed            int64  // seed for the single run generator
	HostsOutput     string // optional list of sampled hosts
	SummaryOutput   string // optional YAML run manifest
	InputDelimiter  string // single character, "\t" by default
	OutputDelimiter string // single character, "," by default
}

// ExtractSettings configures positive pair extraction from a BAPS annotation table.
type ExtractSettings struct {
	Input       string // annotation TSV with sample and contig columns
	Output      string // positive pairs TSV
	HostsOutput string // unique host accessions, one per line
	EcoliOnly   bool   // keep only rows whose taxonomy mentions Escherichia coli
}

// FilterSettings configures restriction of a pairs table to an allowed contig set.
type FilterSettings struct {
	Input      string // pairs TSV
	Output     string // filtered pairs TSV
	Contigs    string // allowed contig list, one per line
	Fasta      string // gzip FASTA to take allowed contigs from instead
	MaxHeaders int    // stop after this many FASTA headers, 0 reads all
}

// ContigsSettings configures the universe dump from a FASTA archive.
type ContigsSettings struct {
	Fasta      string
	Output     string
	MaxHeaders int
}

// FastaSettings configures subset extraction from a gzip multi-FASTA.
type FastaSettings struct {
	Input   string // gzip multi-FASTA
	Contigs string // wanted contig ids, one per line
	Output  string // gzip multi-FASTA subset
}

// MashSettings configures nearest-reference distance aggregation.
type MashSettings struct {
	Inputs  []string // mash dist outputs
	Allowed string   // optional accession allow list
	Output  string   // CSV destination
	Workers int      // parallel file parsers, 0 means one per CPU
}

// LedgerSettings selects where run records are persisted.
type LedgerSettings struct {
	Type string // none, sqlite or mysql
	Path string // sqlite database file
	DSN  string // mysql data source name
}

// MetricsSettings configures the Prometheus textfile export.
type MetricsSettings struct {
	Textfile string // written after a build run when set
}

// TelemetrySettings configures error reporting.
type TelemetrySettings struct {
	Enabled   bool
	SentryDSN string
}

// Settings contains all configuration options for phagepairs.
type Settings struct {
	Debug     bool
	Build     BuildSettings
	Extract   ExtractSettings
	Filter    FilterSettings
	Contigs   ContigsSettings
	Fasta     FastaSettings
	Mash      MashSettings
	Ledger    LedgerSettings
	Metrics   MetricsSettings
	Telemetry TelemetrySettings
	Logging   logger.LoggingConfig
}

// settingsMutex serializes Load, which mutates the global viper instance.
var settingsMutex sync.Mutex

// Load reads defaults, the configuration file and environment variables into
// a Settings value. An empty configFile searches the default locations; a
// missing file there is not an error.
func Load(configFile string) (*Settings, error) {
	settingsMutex.Lock()
	defer settingsMutex.Unlock()

	if err := initViper(configFile); err != nil {
		return nil, fmt.Errorf("error initializing viper: %w", err)
	}

	settings := &Settings{}
	if err := viper.Unmarshal(settings); err != nil {
		return nil, fmt.Errorf("error unmarshaling config into struct: %w", err)
	}

	if err := ValidateSettings(settings); err != nil {
		return nil, fmt.Errorf("error validating settings: %w", err)
	}

	return settings, nil
}

// initViper registers defaults and environment bindings, then reads the config file.
func initViper(configFile string) error {
	viper.SetConfigType("yaml")
	setDefaultConfig()

	if err := configureEnvironmentVariables(); err != nil {
		return err
	}

	if configFile != "" {
		viper.SetConfigFile(configFile)
		if err := viper.ReadInConfig(); err != nil {
			return fmt.Errorf("error reading config file %s: %w", configFile, err)
		}
		return nil
	}

	viper.SetConfigName("phagepairs")
	configPaths, err := GetDefaultConfigPaths()
	if err != nil {
		return fmt.Errorf("error getting default config paths: %w", err)
	}
	for _, path := range configPaths {
		viper.AddConfigPath(path)
	}

	if err := viper.ReadInConfig(); err != nil {
		var configFileNotFoundError viper.ConfigFileNotFoundError
		if errors.As(err, &configFileNotFoundError) {
			return nil
		}
		return fmt.Errorf("fatal error reading config file: %w", err)
	}

	return nil
}

// ConfigFileUsed returns the path of the config file viper read, if any.
func ConfigFileUsed() string {
	return viper.ConfigFileUsed()
}

// DefaultConfig returns the annotated example configuration shipped with the binary.
func DefaultConfig() (string, error) {
	data, err := fs.ReadFile(configFiles, "config.yaml")
	if err != nil {
		return "", fmt.Errorf("error reading embedded config: %w", err)
	}
	return string(data), nil
}

// PrintSettings writes the effective settings as YAML.
func PrintSettings(w io.Writer, settings *Settings) error {
	enc := yaml.NewEncoder(w)
	enc.SetIndent(2)
	if err := enc.Encode(settings); err != nil {
		return fmt.Errorf("error marshaling settings to YAML: %w", err)
	}
	return enc.Close()
}
