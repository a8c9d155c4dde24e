// Package extract turns a BAPS annotations table into the positive pairs
// table and host list consumed by the build command.
package extract

import (
	"fmt"
	"io"
	"strings"

	"github.com/spf13/afero"
	"golang.org/x/text/cases"

	"github.com/tphakala/phagepairs/internal/accession"
	"github.com/tphakala/phagepairs/internal/dataset"
	"github.com/tphakala/phagepairs/internal/errors"
	"github.com/tphakala/phagepairs/internal/logger"
	"github.com/tphakala/phagepairs/internal/pairs"
)

const componentExtract = "extract"

// Required annotation columns.
const (
	SampleColumn = "sample"
	ContigColumn = "contig"
)

// TaxonomyColumns are searched, in order, when filtering to E. coli.
var TaxonomyColumns = []string{
	"org", "organism", "organism_name", "host", "host_name",
	"host_taxonomy", "taxonomy", "lineage",
}

// ecoliName is matched case-insensitively anywhere in a taxonomy cell.
const ecoliName = "Escherichia coli"

// Options controls Extract.
type Options struct {
	EcoliOnly bool
}

// Stats describes one extraction.
type Stats struct {
	Rows            int      // data rows read
	TaxonomyKept    int      // rows passing the E. coli filter
	TaxonomyColumns []string // taxonomy columns used by the filter
	FilterApplied   bool     // false when no taxonomy column was found
	NoAccession     int      // rows whose sample had no GCA accession
	EmptyContig     int      // rows with a blank contig
	Duplicates      int      // repeated (host, contig) pairs
}

// Header is the column order of the positive pairs output.
var Header = []string{"host_accession", "phage_contig", "interaction"}

// Row is one line of the positive pairs output.
type Row struct {
	HostAccession string `csv:"host_accession"`
	PhageContig   string `csv:"phage_contig"`
	Interaction   int    `csv:"interaction"`
}

// Result holds the extracted positives in first-seen order.
type Result struct {
	Rows  []Row
	Hosts []string // distinct host accessions, first-seen order
	Stats Stats
}

// Extract reads the tab-separated annotations at path.
func Extract(fs afero.Fs, path string, opts Options, log logger.Logger) (*Result, error) {
	table, err := pairs.OpenTable(fs, path, "annotations", '\t')
	if err != nil {
		return nil, err
	}
	defer func() { _ = table.Close() }()

	sampleIdx, _, sampleOK := table.Column(SampleColumn)
	contigIdx, _, contigOK := table.Column(ContigColumn)
	if !sampleOK || !contigOK {
		var missing []string
		if !sampleOK {
			missing = append(missing, SampleColumn)
		}
		if !contigOK {
			missing = append(missing, ContigColumn)
		}
		return nil, errors.SchemaError(componentExtract, path, missing, table.Header())
	}

	res := &Result{}

	var taxIdx []int
	if opts.EcoliOnly {
		for _, col := range TaxonomyColumns {
			if idx, _, ok := table.Column(col); ok {
				taxIdx = append(taxIdx, idx)
				res.Stats.TaxonomyColumns = append(res.Stats.TaxonomyColumns, col)
			}
		}
		res.Stats.FilterApplied = len(taxIdx) > 0
		if !res.Stats.FilterApplied {
			log.Warn("E. coli filter requested but no taxonomy column found, skipping filter",
				logger.Strings("searched", TaxonomyColumns))
		}
	}

	fold := cases.Fold()
	needle := fold.String(ecoliName)

	seen := make(map[pairs.Key]struct{})
	seenHost := make(map[string]struct{})

	for {
		record, err := table.Next()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		res.Stats.Rows++

		if res.Stats.FilterApplied && !matchesAny(record, taxIdx, fold, needle) {
			continue
		}
		res.Stats.TaxonomyKept++

		host, ok := accession.Host(pairs.Field(record, sampleIdx))
		if !ok {
			res.Stats.NoAccession++
			continue
		}
		contig := pairs.Field(record, contigIdx)
		if contig == "" {
			res.Stats.EmptyContig++
			continue
		}

		key := pairs.Key{Host: host, Phage: contig}
		if _, dup := seen[key]; dup {
			res.Stats.Duplicates++
			continue
		}
		seen[key] = struct{}{}
		res.Rows = append(res.Rows, Row{HostAccession: host, PhageContig: contig, Interaction: 1})

		if _, dup := seenHost[host]; !dup {
			seenHost[host] = struct{}{}
			res.Hosts = append(res.Hosts, host)
		}
	}

	if res.Stats.FilterApplied {
		log.Info("Filtered to E. coli",
			logger.Int("kept", res.Stats.TaxonomyKept),
			logger.Int("rows", res.Stats.Rows),
			logger.Strings("columns", res.Stats.TaxonomyColumns))
	}

	return res, nil
}

func matchesAny(record []string, idx []int, fold cases.Caser, needle string) bool {
	for _, i := range idx {
		if strings.Contains(fold.String(pairs.Field(record, i)), needle) {
			return true
		}
	}
	return false
}

// Write stores the pairs table (tab separated) and the host list. Neither
// file is moved into place unless both were written.
func (r *Result) Write(fs afero.Fs, pairsPath, hostsPath string) error {
	out := dataset.NewBatch(fs)
	defer out.Abort()

	err := out.Add(pairsPath, func(w io.Writer) error {
		return dataset.MarshalDelimited(w, r.Rows, Header, '\t')
	})
	if err != nil {
		return errors.New(fmt.Errorf("write positive pairs: %w", err)).
			Component(componentExtract).
			Category(errors.CategoryFileIO).
			Build()
	}

	if hostsPath != "" {
		err := out.Add(hostsPath, func(w io.Writer) error {
			return dataset.EncodeLines(w, r.Hosts)
		})
		if err != nil {
			return err
		}
	}
	return out.Commit()
}
