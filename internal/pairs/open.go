package pairs

import (
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/klauspost/compress/gzip"
	"github.com/spf13/afero"

	"github.com/tphakala/phagepairs/internal/errors"
)

// gzipReadCloser closes the decompressor and then the file under it.
type gzipReadCloser struct {
	*gzip.Reader
	file afero.File
}

func (g *gzipReadCloser) Close() error {
	return errors.Join(g.Reader.Close(), g.file.Close())
}

// Open opens path on fs for reading, decompressing it when the name ends in
// .gz. A missing file is reported as a MissingFileError naming role.
func Open(fs afero.Fs, path, role string) (io.ReadCloser, error) {
	f, err := openExisting(fs, path, role)
	if err != nil {
		return nil, err
	}
	if !strings.HasSuffix(strings.ToLower(path), ".gz") {
		return f, nil
	}

	gz, err := gzip.NewReader(f)
	if err != nil {
		_ = f.Close()
		return nil, errors.New(fmt.Errorf("open gzip stream %s: %w", path, err)).
			Component(componentPairs).
			Category(errors.CategoryFileParsing).
			Context("role", role).
			FileContext(path, 0).
			Build()
	}
	return &gzipReadCloser{Reader: gz, file: f}, nil
}

// openExisting opens path, mapping a missing file to a MissingFileError.
func openExisting(fs afero.Fs, path, role string) (afero.File, error) {
	f, err := fs.Open(path)
	if err == nil {
		return f, nil
	}
	if os.IsNotExist(err) {
		return nil, errors.MissingFileError(componentPairs, role, path)
	}
	return nil, errors.FileError(fmt.Errorf("open %s %s: %w", role, path, err), path, 0)
}

// LoadIDs reads a newline-delimited id list such as a universe, a contig list
// or an accession allow list. Blank lines are skipped; order is preserved.
func LoadIDs(fs afero.Fs, path, role string) ([]string, error) {
	rc, err := Open(fs, path, role)
	if err != nil {
		return nil, err
	}
	defer func() { _ = rc.Close() }()

	ids, err := ReadLines(rc)
	if err != nil {
		return nil, errors.New(fmt.Errorf("read %s %s: %w", role, path, err)).
			Component(componentPairs).
			Category(errors.CategoryFileIO).
			Build()
	}
	return ids, nil
}
