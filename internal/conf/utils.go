// conf/utils.go various util functions for configuration package
package conf

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"unicode/utf8"

	"github.com/tphakala/phagepairs/internal/errors"
)

// OS name constants for runtime.GOOS comparisons.
const osWindows = "windows"

// GetDefaultConfigPaths returns the directories searched for phagepairs.yaml,
// in priority order. If one of them already holds the file, only that
// directory is returned.
func GetDefaultConfigPaths() ([]string, error) {
	homeDir, err := os.UserHomeDir()
	if err != nil {
		return nil, errors.New(err).
			Category(errors.CategorySystem).
			Context("operation", "get-home-directory").
			Build()
	}

	var configPaths []string
	switch runtime.GOOS {
	case osWindows:
		configPaths = []string{
			".",
			filepath.Join(homeDir, "AppData", "Roaming", "phagepairs"),
		}
	default:
		configPaths = []string{
			".",
			filepath.Join(homeDir, ".config", "phagepairs"),
		}
	}

	for _, path := range configPaths {
		if _, err := os.Stat(filepath.Join(path, "phagepairs.yaml")); err == nil {
			return []string{path}, nil
		}
	}

	return configPaths, nil
}

// ParseDelimiter turns a configured delimiter into a rune. Besides a literal
// single character it accepts the escape `\t` and the names "tab" and "comma"
// so that shells and YAML files do not need a raw tab.
func ParseDelimiter(value string) (rune, error) {
	switch value {
	case `\t`, "tab", "TAB":
		return '\t', nil
	case "comma":
		return ',', nil
	}

	if utf8.RuneCountInString(value) != 1 {
		return 0, fmt.Errorf("delimiter must be a single character, got %q", value)
	}

	r, _ := utf8.DecodeRuneInString(value)
	if r == '\n' || r == '\r' || r == '"' || r == utf8.RuneError {
		return 0, fmt.Errorf("delimiter %q is not allowed", value)
	}
	return r, nil
}
