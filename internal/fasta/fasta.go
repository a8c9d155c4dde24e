// Package fasta streams (optionally gzip compressed) multi-FASTA files to
// collect contig ids from headers and to write record subsets.
package fasta

import (
	"bufio"
	"io"
	"slices"
	"strings"

	"github.com/spf13/afero"

	"github.com/tphakala/phagepairs/internal/accession"
	"github.com/tphakala/phagepairs/internal/errors"
	"github.com/tphakala/phagepairs/internal/pairs"
)

const componentFasta = "fasta"

// scanLines calls fn for every line of r, including the trailing newline when
// present. FASTA sequence lines can be arbitrarily long, so no line limit is
// imposed. fn returns false to stop early.
func scanLines(r io.Reader, fn func(line string) bool) error {
	br := bufio.NewReaderSize(r, 256*1024)
	for {
		line, err := br.ReadString('\n')
		if line != "" && !fn(line) {
			return nil
		}
		if errors.Is(err, io.EOF) {
			return nil
		}
		if err != nil {
			return err
		}
	}
}

// ContigSet is the result of scanning FASTA headers.
type ContigSet struct {
	IDs       []string // distinct contig ids, sorted
	Headers   int      // header lines scanned
	Unmatched int      // headers without a __CONTIG.N__ token
	Truncated bool     // scanning stopped at maxHeaders
}

// Contains reports whether id is in the set.
func (c *ContigSet) Contains(id string) bool {
	_, found := slices.BinarySearch(c.IDs, id)
	return found
}

// HeaderContigs scans the headers of the FASTA at path and collects the
// contig ids they name. maxHeaders > 0 stops after that many headers.
func HeaderContigs(fs afero.Fs, path string, maxHeaders int) (*ContigSet, error) {
	rc, err := pairs.Open(fs, path, "fasta")
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	set := &ContigSet{}
	seen := make(map[string]struct{})

	err = scanLines(rc, func(line string) bool {
		if !strings.HasPrefix(line, ">") {
			return true
		}
		set.Headers++
		if id, ok := accession.HeaderContig(line); ok {
			if _, dup := seen[id]; !dup {
				seen[id] = struct{}{}
				set.IDs = append(set.IDs, id)
			}
		} else {
			set.Unmatched++
		}
		if maxHeaders > 0 && set.Headers >= maxHeaders {
			set.Truncated = true
			return false
		}
		return true
	})
	if err != nil {
		return nil, errors.New(err).
			Component(componentFasta).
			Category(errors.CategoryFileParsing).
			Context("operation", "scan_headers").
			FileContext(path, 0).
			Build()
	}

	slices.Sort(set.IDs)
	return set, nil
}
