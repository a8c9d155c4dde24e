// Package dataset writes the assembled dataset, the sampled host list and the
// run manifest. Every file is written to a temporary sibling and renamed into
// place, so a failed run never leaves a partial output behind.
package dataset

import (
	"bufio"
	"fmt"
	"io"
	"path/filepath"

	"github.com/spf13/afero"

	"github.com/tphakala/phagepairs/internal/errors"
)

const componentDataset = "dataset"

// Batch stages several outputs and moves them into place together. Nothing
// reaches its final path before Commit.
type Batch struct {
	fs     afero.Fs
	staged []stagedFile
}

type stagedFile struct {
	tmp  string
	path string
}

// NewBatch returns an empty batch writing to fs.
func NewBatch(fs afero.Fs) *Batch {
	return &Batch{fs: fs}
}

// Add writes one output to a temporary file next to path. Errors from write
// that carry no category are reported as file I/O errors.
func (b *Batch) Add(path string, write func(w io.Writer) error) error {
	tmp, err := stage(b.fs, path, write)
	if err != nil {
		return err
	}
	b.staged = append(b.staged, stagedFile{tmp: tmp, path: path})
	return nil
}

// Commit renames every staged file onto its path in the order they were
// added. When a rename fails, outputs already moved are removed along with
// the remaining temporary files.
func (b *Batch) Commit() error {
	staged := b.staged
	b.staged = nil

	for i, f := range staged {
		if err := b.fs.Rename(f.tmp, f.path); err != nil {
			for _, moved := range staged[:i] {
				_ = b.fs.Remove(moved.path)
			}
			for _, rest := range staged[i:] {
				_ = b.fs.Remove(rest.tmp)
			}
			return errors.FileError(fmt.Errorf("move %s into place: %w", f.path, err), f.path, 0)
		}
	}
	return nil
}

// Abort removes whatever is still staged. It is a no-op after Commit.
func (b *Batch) Abort() {
	for _, f := range b.staged {
		_ = b.fs.Remove(f.tmp)
	}
	b.staged = nil
}

// WriteAtomic writes a single output through a one-file Batch.
func WriteAtomic(fs afero.Fs, path string, write func(w io.Writer) error) error {
	b := NewBatch(fs)
	defer b.Abort()

	if err := b.Add(path, write); err != nil {
		return err
	}
	return b.Commit()
}

// stage creates path's directory if needed, hands write a buffered writer
// over a temporary file in that directory and returns the temporary name
// once write, the flush and the close succeed.
func stage(fs afero.Fs, path string, write func(w io.Writer) error) (string, error) {
	dir := filepath.Dir(path)
	if err := fs.MkdirAll(dir, 0o755); err != nil {
		return "", errors.New(fmt.Errorf("create output directory %s: %w", dir, err)).
			Component(componentDataset).
			Category(errors.CategoryFileIO).
			Build()
	}

	tmp, err := afero.TempFile(fs, dir, "."+filepath.Base(path)+".tmp-*")
	if err != nil {
		return "", errors.New(fmt.Errorf("create temporary file for %s: %w", path, err)).
			Component(componentDataset).
			Category(errors.CategoryFileIO).
			Build()
	}
	tmpName := tmp.Name()

	fail := func(err error) (string, error) {
		_ = tmp.Close()
		_ = fs.Remove(tmpName)
		return "", err
	}

	bw := bufio.NewWriter(tmp)
	if err := write(bw); err != nil {
		var ee *errors.EnhancedError
		if errors.As(err, &ee) {
			return fail(err)
		}
		return fail(errors.FileError(fmt.Errorf("write %s: %w", path, err), path, 0))
	}
	if err := bw.Flush(); err != nil {
		return fail(errors.FileError(fmt.Errorf("write %s: %w", path, err), path, 0))
	}
	if err := tmp.Close(); err != nil {
		_ = fs.Remove(tmpName)
		return "", errors.FileError(fmt.Errorf("close temporary file for %s: %w", path, err), path, 0)
	}

	return tmpName, nil
}
