// conf/defaults.go default values for settings
package conf

import (
	"github.com/spf13/viper"
)

// Default build parameters.
const (
	DefaultNHosts          = 200
	DefaultMaxPosPerHost   = 10
	DefaultNegRatio        = 1
	DefaultSeed            = 42
	DefaultInputDelimiter  = "\t"
	DefaultOutputDelimiter = ","
)

// Sets default values for the configuration.
func setDefaultConfig() {
	viper.SetDefault("debug", false)

	viper.SetDefault("build.input", "")
	viper.SetDefault("build.universe", "")
	viper.SetDefault("build.output", "")
	viper.SetDefault("build.nhosts", DefaultNHosts)
	viper.SetDefault("build.maxposperhost", DefaultMaxPosPerHost)
	viper.SetDefault("build.negratio", DefaultNegRatio)
	viper.SetDefault("build.seed", DefaultSeed)
	viper.SetDefault("build.hostsoutput", "")
	viper.SetDefault("build.summaryoutput", "")
	viper.SetDefault("build.inputdelimiter", DefaultInputDelimiter)
	viper.SetDefault("build.outputdelimiter", DefaultOutputDelimiter)

	viper.SetDefault("extract.input", "")
	viper.SetDefault("extract.output", "")
	viper.SetDefault("extract.hostsoutput", "")
	viper.SetDefault("extract.ecolionly", false)

	viper.SetDefault("filter.input", "")
	viper.SetDefault("filter.output", "")
	viper.SetDefault("filter.contigs", "")
	viper.SetDefault("filter.fasta", "")
	viper.SetDefault("filter.maxheaders", 0)

	viper.SetDefault("contigs.fasta", "")
	viper.SetDefault("contigs.output", "")
	viper.SetDefault("contigs.maxheaders", 0)

	viper.SetDefault("fasta.input", "")
	viper.SetDefault("fasta.contigs", "")
	viper.SetDefault("fasta.output", "")

	viper.SetDefault("mash.inputs", []string{})
	viper.SetDefault("mash.allowed", "")
	viper.SetDefault("mash.output", "")
	viper.SetDefault("mash.workers", 0)

	viper.SetDefault("ledger.type", LedgerNone)
	viper.SetDefault("ledger.path", "phagepairs.db")
	viper.SetDefault("ledger.dsn", "")

	viper.SetDefault("metrics.textfile", "")

	viper.SetDefault("telemetry.enabled", false)
	viper.SetDefault("telemetry.sentrydsn", "")

	viper.SetDefault("logging.default_level", "info")
	viper.SetDefault("logging.timezone", "Local")
	viper.SetDefault("logging.console.enabled", true)
	viper.SetDefault("logging.console.level", "info")
	viper.SetDefault("logging.file_output.enabled", false)
	viper.SetDefault("logging.file_output.path", "logs/phagepairs.log")
	viper.SetDefault("logging.file_output.level", "debug")
	viper.SetDefault("logging.module_levels", map[string]string{})
}
