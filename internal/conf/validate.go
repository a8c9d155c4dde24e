// conf/validate.go

package conf

import (
	"fmt"
	"strings"

	"github.com/go-sql-driver/mysql"

	"github.com/tphakala/phagepairs/internal/errors"
)

// Ledger backend names.
const (
	LedgerNone   = "none"
	LedgerSQLite = "sqlite"
	LedgerMySQL  = "mysql"
)

// ValidationError represents a collection of validation errors
type ValidationError struct {
	Errors []string
}

// Error returns a string representation of the validation errors
func (ve ValidationError) Error() string {
	return fmt.Sprintf("Validation errors: %v", ve.Errors)
}

// ErrorCategory lets the error builder classify wrapped validation failures.
func (ve ValidationError) ErrorCategory() errors.ErrorCategory {
	return errors.CategoryValidation
}

// ValidateSettings checks values that must hold for every command.
// Required input paths are checked by the command that needs them.
func ValidateSettings(settings *Settings) error {
	ve := ValidationError{}

	if err := validateBuildParameters(&settings.Build); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if err := validateLedgerSettings(&settings.Ledger); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if settings.Filter.MaxHeaders < 0 {
		ve.Errors = append(ve.Errors, "filter maxheaders must be >= 0")
	}

	if settings.Contigs.MaxHeaders < 0 {
		ve.Errors = append(ve.Errors, "contigs maxheaders must be >= 0")
	}

	if settings.Mash.Workers < 0 {
		ve.Errors = append(ve.Errors, "mash workers must be >= 0")
	}

	if settings.Telemetry.Enabled && settings.Telemetry.SentryDSN == "" {
		ve.Errors = append(ve.Errors, "telemetry.sentrydsn is required when telemetry is enabled")
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// ValidateBuildInputs checks that a build run has every path it needs.
func ValidateBuildInputs(settings *BuildSettings) error {
	ve := ValidationError{}

	if settings.Input == "" {
		ve.Errors = append(ve.Errors, "build input is required (--input)")
	}
	if settings.Universe == "" {
		ve.Errors = append(ve.Errors, "build universe is required (--universe)")
	}
	if settings.Output == "" {
		ve.Errors = append(ve.Errors, "build output is required (--output)")
	}
	if err := validateBuildParameters(settings); err != nil {
		ve.Errors = append(ve.Errors, err.Error())
	}

	if len(ve.Errors) > 0 {
		return ve
	}
	return nil
}

// validateBuildParameters validates the sampling parameters
func validateBuildParameters(settings *BuildSettings) error {
	var errs []string

	if settings.NHosts < 0 {
		errs = append(errs, "nhosts must be >= 0")
	}
	if settings.MaxPosPerHost < 0 {
		errs = append(errs, "maxposperhost must be >= 0")
	}
	if settings.NegRatio < 0 {
		errs = append(errs, "negratio must be >= 0")
	}
	if _, err := ParseDelimiter(settings.InputDelimiter); err != nil {
		errs = append(errs, fmt.Sprintf("inputdelimiter: %v", err))
	}
	if _, err := ParseDelimiter(settings.OutputDelimiter); err != nil {
		errs = append(errs, fmt.Sprintf("outputdelimiter: %v", err))
	}

	if len(errs) > 0 {
		return fmt.Errorf("build settings errors: %v", errs)
	}
	return nil
}

// validateLedgerSettings validates the run ledger backend
func validateLedgerSettings(settings *LedgerSettings) error {
	settings.Type = strings.ToLower(strings.TrimSpace(settings.Type))

	switch settings.Type {
	case "", LedgerNone:
		settings.Type = LedgerNone
	case LedgerSQLite:
		if settings.Path == "" {
			return fmt.Errorf("ledger.path is required for the sqlite ledger")
		}
	case LedgerMySQL:
		if settings.DSN == "" {
			return fmt.Errorf("ledger.dsn is required for the mysql ledger")
		}
		if _, err := mysql.ParseDSN(settings.DSN); err != nil {
			return fmt.Errorf("invalid ledger.dsn: %w", err)
		}
	default:
		return fmt.Errorf("unknown ledger type %q, expected none, sqlite or mysql", settings.Type)
	}

	return nil
}
