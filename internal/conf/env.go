// env.go - Environment variable configuration and validation for phagepairs
package conf

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/viper"
)

// EnvPrefix is prepended to every environment variable phagepairs reads.
const EnvPrefix = "PHAGEPAIRS"

// envBinding holds metadata for environment variable bindings (internal use)
type envBinding struct {
	ConfigKey string             // Viper config key
	EnvVar    string             // Environment variable name
	Validate  func(string) error // Optional validation function
}

// getEnvBindings returns the bindings whose values are checked before use.
// Keys not listed here are still reachable through AutomaticEnv, e.g.
// PHAGEPAIRS_BUILD_HOSTSOUTPUT.
func getEnvBindings() []envBinding {
	return []envBinding{
		{"build.input", "PHAGEPAIRS_BUILD_INPUT", nil},
		{"build.universe", "PHAGEPAIRS_BUILD_UNIVERSE", nil},
		{"build.output", "PHAGEPAIRS_BUILD_OUTPUT", nil},
		{"build.nhosts", "PHAGEPAIRS_BUILD_NHOSTS", validateEnvNonNegativeInt},
		{"build.maxposperhost", "PHAGEPAIRS_BUILD_MAXPOSPERHOST", validateEnvNonNegativeInt},
		{"build.negratio", "PHAGEPAIRS_BUILD_NEGRATIO", validateEnvNonNegativeInt},
		{"build.seed", "PHAGEPAIRS_SEED", validateEnvSeed},
		{"build.inputdelimiter", "PHAGEPAIRS_BUILD_INPUTDELIMITER", validateEnvDelimiter},
		{"build.outputdelimiter", "PHAGEPAIRS_BUILD_OUTPUTDELIMITER", validateEnvDelimiter},

		{"debug", "PHAGEPAIRS_DEBUG", validateEnvBool},
		{"ledger.type", "PHAGEPAIRS_LEDGER_TYPE", validateEnvLedgerType},
		{"ledger.dsn", "PHAGEPAIRS_LEDGER_DSN", nil},
		{"telemetry.enabled", "PHAGEPAIRS_TELEMETRY_ENABLED", validateEnvBool},
		{"telemetry.sentrydsn", "PHAGEPAIRS_SENTRY_DSN", nil},
	}
}

// bindEnvVars sets up environment variable bindings with validation (internal)
func bindEnvVars() error {
	var warnings []string

	for _, binding := range getEnvBindings() {
		if err := viper.BindEnv(binding.ConfigKey, binding.EnvVar); err != nil {
			warnings = append(warnings, fmt.Sprintf("Failed to bind %s: %v", binding.EnvVar, err))
			continue
		}

		if binding.Validate == nil {
			continue
		}
		if envValue := os.Getenv(binding.EnvVar); envValue != "" {
			if err := binding.Validate(envValue); err != nil {
				warnings = append(warnings, fmt.Sprintf("Invalid %s value '%s': %v", binding.EnvVar, envValue, err))
			}
		}
	}

	if len(warnings) > 0 {
		return fmt.Errorf("environment variable issues:\n  - %s", strings.Join(warnings, "\n  - "))
	}

	return nil
}

// validateEnvBool validates boolean environment variables
func validateEnvBool(value string) error {
	if _, err := strconv.ParseBool(strings.TrimSpace(value)); err != nil {
		return fmt.Errorf("invalid boolean value: %s", value)
	}
	return nil
}

// validateEnvNonNegativeInt validates counts and ratios
func validateEnvNonNegativeInt(value string) error {
	n, err := strconv.Atoi(strings.TrimSpace(value))
	if err != nil {
		return fmt.Errorf("invalid integer value: %s", value)
	}
	if n < 0 {
		return fmt.Errorf("value must be >= 0, got %d", n)
	}
	return nil
}

// validateEnvSeed accepts any signed 64-bit integer
func validateEnvSeed(value string) error {
	if _, err := strconv.ParseInt(strings.TrimSpace(value), 10, 64); err != nil {
		return fmt.Errorf("invalid seed value: %s", value)
	}
	return nil
}

// validateEnvDelimiter validates single-character delimiters
func validateEnvDelimiter(value string) error {
	_, err := ParseDelimiter(value)
	return err
}

// validateEnvLedgerType validates the ledger backend name
func validateEnvLedgerType(value string) error {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case LedgerNone, LedgerSQLite, LedgerMySQL:
		return nil
	default:
		return fmt.Errorf("unknown ledger type %q, expected none, sqlite or mysql", value)
	}
}

// configureEnvironmentVariables sets up environment variable support for Viper
func configureEnvironmentVariables() error {
	viper.SetEnvPrefix(EnvPrefix)
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	return bindEnvVars()
}
