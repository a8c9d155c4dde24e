// Package buildinfo holds build-time metadata injected through ldflags.
package buildinfo

import "fmt"

// UnknownValue is reported for metadata the build did not set.
const UnknownValue = "unknown"

// Context carries the version metadata of the running binary.
type Context struct {
	version   string
	buildDate string
	commit    string
}

// NewContext creates a Context. Empty values report as UnknownValue.
func NewContext(version, buildDate, commit string) *Context {
	return &Context{version: version, buildDate: buildDate, commit: commit}
}

func orUnknown(s string) string {
	if s == "" {
		return UnknownValue
	}
	return s
}

// Version returns the release tag the binary was built from.
func (c *Context) Version() string {
	if c == nil {
		return UnknownValue
	}
	return orUnknown(c.version)
}

// BuildDate returns the build timestamp.
func (c *Context) BuildDate() string {
	if c == nil {
		return UnknownValue
	}
	return orUnknown(c.buildDate)
}

// Commit returns the source revision.
func (c *Context) Commit() string {
	if c == nil {
		return UnknownValue
	}
	return orUnknown(c.commit)
}

// String formats the metadata for --version output.
func (c *Context) String() string {
	return fmt.Sprintf("%s (commit %s, built %s)", c.Version(), c.Commit(), c.BuildDate())
}
