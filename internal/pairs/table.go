package pairs

import (
	"encoding/csv"
	"fmt"
	"io"
	"strings"

	"github.com/gocarina/gocsv"
	"github.com/spf13/afero"

	"github.com/tphakala/phagepairs/internal/errors"
)

const componentPairs = "pairs"

// Table reads a delimited file with a header row. Files ending in .gz are
// decompressed on the fly.
type Table struct {
	path   string
	header []string
	index  map[string]int
	reader *csv.Reader
	closer io.Closer
}

// OpenTable opens path on fs and reads its header. role names the file in
// error messages ("input", "annotations").
func OpenTable(fs afero.Fs, path, role string, delimiter rune) (*Table, error) {
	rc, err := Open(fs, path, role)
	if err != nil {
		return nil, err
	}

	t := &Table{path: path, closer: rc}

	t.reader = csv.NewReader(rc)
	t.reader.Comma = delimiter
	t.reader.FieldsPerRecord = -1
	t.reader.LazyQuotes = true

	header, err := t.reader.Read()
	if err != nil {
		_ = t.Close()
		if errors.Is(err, io.EOF) {
			return nil, errors.SchemaError(componentPairs, path, []string{"header"}, nil)
		}
		return nil, errors.New(fmt.Errorf("read header of %s: %w", path, err)).
			Component(componentPairs).
			Category(errors.CategoryFileParsing).
			Build()
	}

	t.header = make([]string, len(header))
	t.index = make(map[string]int, len(header))
	for i, name := range header {
		name = normalizeColumn(name, i == 0)
		t.header[i] = name
		if _, dup := t.index[name]; !dup {
			t.index[name] = i
		}
	}

	return t, nil
}

// normalizeColumn lowercases and trims a header cell; the first cell may carry a BOM.
func normalizeColumn(name string, first bool) string {
	if first {
		name = strings.TrimPrefix(name, "\ufeff")
	}
	return strings.ToLower(strings.TrimSpace(name))
}

// Header returns the normalized column names.
func (t *Table) Header() []string {
	return t.header
}

// Column returns the index of the first alias present in the header.
func (t *Table) Column(aliases ...string) (idx int, name string, ok bool) {
	for _, alias := range aliases {
		if i, found := t.index[alias]; found {
			return i, alias, true
		}
	}
	return -1, "", false
}

// RequireColumn is Column that fails with a SchemaError naming every alias.
func (t *Table) RequireColumn(aliases ...string) (int, error) {
	idx, _, ok := t.Column(aliases...)
	if !ok {
		return -1, errors.SchemaError(componentPairs, t.path, aliases, t.header)
	}
	return idx, nil
}

// Next returns the next record, or io.EOF when the table is exhausted.
func (t *Table) Next() ([]string, error) {
	record, err := t.reader.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, io.EOF
		}
		return nil, t.parseError(err)
	}
	return record, nil
}

// DecodeRows streams the remaining records of t into fn as values of T, a
// struct whose csv tags are the keys of columns. columns maps those keys to
// header positions, so aliases are resolved before decoding and every other
// column stays invisible to the decoder.
func DecodeRows[T any](t *Table, columns map[string]int, fn func(T)) error {
	header := make([]string, len(t.header))
	for name, idx := range columns {
		header[idx] = name
	}
	dec := gocsv.NewSimpleDecoderFromCSVReader(&keyedReader{header: header, reader: t.reader})

	rows := make(chan T)
	done := make(chan error, 1)
	go func() {
		done <- gocsv.UnmarshalDecoderToChan(dec, rows)
	}()
	for row := range rows {
		fn(row)
	}

	if err := <-done; err != nil {
		return t.parseError(err)
	}
	return nil
}

// keyedReader replays a substitute header before the records of reader,
// whose own header was already consumed by OpenTable.
type keyedReader struct {
	header []string
	reader *csv.Reader
	sent   bool
}

func (r *keyedReader) Read() ([]string, error) {
	if !r.sent {
		r.sent = true
		return r.header, nil
	}
	return r.reader.Read()
}

func (r *keyedReader) ReadAll() ([][]string, error) {
	var records [][]string
	for {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			return records, nil
		}
		if err != nil {
			return records, err
		}
		records = append(records, record)
	}
}

// parseError categorizes a read failure. csv.ParseError already names the
// physical line, including for quoted fields that span lines.
func (t *Table) parseError(err error) error {
	return errors.New(fmt.Errorf("parse %s: %w", t.path, err)).
		Component(componentPairs).
		Category(errors.CategoryFileParsing).
		Build()
}

// Close releases the decompressor and the file.
func (t *Table) Close() error {
	if t.closer == nil {
		return nil
	}
	err := t.closer.Close()
	t.closer = nil
	return err
}

// Field returns record[idx] trimmed, or "" when the record is short.
func Field(record []string, idx int) string {
	if idx < 0 || idx >= len(record) {
		return ""
	}
	return strings.TrimSpace(record[idx])
}
