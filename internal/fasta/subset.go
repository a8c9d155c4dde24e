package fasta

import (
	"fmt"
	"io"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"

	"github.com/tphakala/phagepairs/internal/accession"
	"github.com/tphakala/phagepairs/internal/dataset"
	"github.com/tphakala/phagepairs/internal/errors"
	"github.com/tphakala/phagepairs/internal/pairs"
)

// SubsetStats counts the records seen and written by Subset.
type SubsetStats struct {
	Wanted  int
	Scanned int
	Kept    int
}

// Subset copies the records of the FASTA at in whose header contig token is
// in wanted to out. out is gzip compressed when its name ends in .gz.
func Subset(fs afero.Fs, in, out string, wanted []string) (SubsetStats, error) {
	want := make(map[string]struct{}, len(wanted))
	for _, id := range wanted {
		want[id] = struct{}{}
	}
	stats := SubsetStats{Wanted: len(want)}

	rc, err := pairs.Open(fs, in, "fasta")
	if err != nil {
		return stats, err
	}
	defer func() { _ = rc.Close() }()

	err = dataset.WriteAtomic(fs, out, func(w io.Writer) error {
		var dst io.Writer = w
		var gz *gzip.Writer
		if strings.HasSuffix(strings.ToLower(out), ".gz") {
			gz = gzip.NewWriter(w)
			dst = gz
		}

		var werr error
		keep := false
		scanErr := scanLines(rc, func(line string) bool {
			if strings.HasPrefix(line, ">") {
				stats.Scanned++
				contig, ok := accession.HeaderToken(line)
				_, keep = want[contig]
				keep = keep && ok
				if keep {
					stats.Kept++
				}
			}
			if keep {
				if _, werr = io.WriteString(dst, line); werr != nil {
					return false
				}
			}
			return true
		})
		if scanErr != nil {
			return fmt.Errorf("read %s: %w", in, scanErr)
		}
		if werr != nil {
			return werr
		}
		if gz != nil {
			return gz.Close()
		}
		return nil
	})
	if err != nil {
		return stats, errors.New(err).
			Component(componentFasta).
			Category(errors.CategoryFileIO).
			Context("operation", "subset").
			Build()
	}

	return stats, nil
}
