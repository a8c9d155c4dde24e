// Package pairs holds the host/phage interaction model and the loaders for
// the positive pairs table and the allowed phage universe.
package pairs

import "strconv"

// Label marks a pair as a known interaction or a sampled non-interaction.
type Label uint8

const (
	Negative Label = 0
	Positive Label = 1
)

// String renders the label as it appears in output tables.
func (l Label) String() string {
	return strconv.Itoa(int(l))
}

// MarshalCSV lets gocsv write the label as 0 or 1.
func (l Label) MarshalCSV() (string, error) {
	return l.String(), nil
}

// Pair is one labeled host/phage row.
type Pair struct {
	Host  string `csv:"host_id"`
	Phage string `csv:"phage_id"`
	Label Label  `csv:"label"`
}

// Key identifies a pair irrespective of its label.
type Key struct {
	Host  string
	Phage string
}

// Key returns the (host, phage) identity of p.
func (p Pair) Key() Key {
	return Key{Host: p.Host, Phage: p.Phage}
}
