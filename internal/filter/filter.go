// Package filter keeps the rows of a positive pairs table whose phage contig
// is present in an allowed set, typically the contigs of a phage FASTA.
package filter

import (
	"encoding/csv"
	"fmt"
	"io"

	"github.com/spf13/afero"

	"github.com/tphakala/phagepairs/internal/dataset"
	"github.com/tphakala/phagepairs/internal/errors"
	"github.com/tphakala/phagepairs/internal/pairs"
)

const componentFilter = "filter"

// Stats counts the rows seen and kept.
type Stats struct {
	Allowed int // size of the allowed contig set
	RowsIn  int // data rows read
	Kept    int // rows written
}

// Removed returns the rows dropped because their contig was not allowed.
func (s Stats) Removed() int {
	return s.RowsIn - s.Kept
}

// Allowed is a set of contig ids.
type Allowed interface {
	Contains(id string) bool
}

// Set is an Allowed backed by a map.
type Set map[string]struct{}

// NewSet builds a Set from ids.
func NewSet(ids []string) Set {
	s := make(Set, len(ids))
	for _, id := range ids {
		s[id] = struct{}{}
	}
	return s
}

// Contains reports whether id is in s.
func (s Set) Contains(id string) bool {
	_, ok := s[id]
	return ok
}

// Pairs copies the header and every row of the table at in whose phage
// column value is allowed to out, keeping the input delimiter.
func Pairs(fs afero.Fs, in, out string, delimiter rune, allowed Allowed, allowedCount int) (Stats, error) {
	stats := Stats{Allowed: allowedCount}

	table, err := pairs.OpenTable(fs, in, "input", delimiter)
	if err != nil {
		return stats, err
	}
	defer func() { _ = table.Close() }()

	phageIdx, err := table.RequireColumn(pairs.PhageColumns...)
	if err != nil {
		return stats, err
	}

	err = dataset.WriteAtomic(fs, out, func(w io.Writer) error {
		cw := csv.NewWriter(w)
		cw.Comma = delimiter
		if err := cw.Write(table.Header()); err != nil {
			return err
		}

		for {
			record, err := table.Next()
			if errors.Is(err, io.EOF) {
				break
			}
			if err != nil {
				return err
			}
			stats.RowsIn++

			if !allowed.Contains(pairs.Field(record, phageIdx)) {
				continue
			}
			if err := cw.Write(record); err != nil {
				return err
			}
			stats.Kept++
		}

		cw.Flush()
		return cw.Error()
	})
	if err != nil {
		if errors.IsCategory(err, errors.CategoryFileParsing) {
			return stats, err
		}
		return stats, errors.New(fmt.Errorf("filter pairs: %w", err)).
			Component(componentFilter).
			Category(errors.CategoryFileIO).
			Build()
	}

	return stats, nil
}
