package dataset

import (
	"encoding/csv"
	"fmt"
	"io"
	"reflect"

	"github.com/gocarina/gocsv"
	"github.com/spf13/afero"

	"github.com/tphakala/phagepairs/internal/pairs"
	"github.com/tphakala/phagepairs/internal/sampling"
)

// MarshalDelimited encodes rows, a slice of csv-tagged structs, with the
// given field delimiter. header is written on its own when rows is empty.
func MarshalDelimited(w io.Writer, rows any, header []string, delimiter rune) error {
	cw := csv.NewWriter(w)
	cw.Comma = delimiter
	safe := gocsv.NewSafeCSVWriter(cw)

	if reflect.ValueOf(rows).Len() == 0 {
		// Empty tables still get a header line.
		if err := safe.Write(header); err != nil {
			return err
		}
	} else if err := gocsv.MarshalCSV(rows, safe); err != nil {
		return fmt.Errorf("encode rows: %w", err)
	}

	safe.Flush()
	return safe.Error()
}

// WriteTable writes rows with the header host_id, phage_id, label.
func WriteTable(w io.Writer, rows []pairs.Pair, delimiter rune) error {
	return MarshalDelimited(w, rows, sampling.Header, delimiter)
}

// EncodeLines writes one value per line.
func EncodeLines(w io.Writer, lines []string) error {
	for _, line := range lines {
		if _, err := io.WriteString(w, line+"\n"); err != nil {
			return err
		}
	}
	return nil
}

// WriteLines writes one value per line to path atomically.
func WriteLines(fs afero.Fs, path string, lines []string) error {
	return WriteAtomic(fs, path, func(w io.Writer) error {
		return EncodeLines(w, lines)
	})
}
