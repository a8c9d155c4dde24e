package logger

import (
	"bufio"
	"fmt"
	"os"
	"sync"
)

// DefaultBufferSize batches JSON records before they hit the file.
const DefaultBufferSize = 32 * 1024

// BufferedFileWriter is a mutex-guarded bufio writer over an append-only file.
// A run is short, so buffers are flushed explicitly by CentralLogger.Flush and
// on Close rather than by a background ticker.
type BufferedFileWriter struct {
	mu       sync.Mutex
	file     *os.File
	writer   *bufio.Writer
	filePath string
}

// NewBufferedFileWriter opens filePath for appending.
func NewBufferedFileWriter(filePath string) (*BufferedFileWriter, error) {
	file, err := os.OpenFile(filePath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, LogFilePermissions) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", filePath, err)
	}

	return &BufferedFileWriter{
		file:     file,
		writer:   bufio.NewWriterSize(file, DefaultBufferSize),
		filePath: filePath,
	}, nil
}

// Write writes data to the buffer. Thread-safe.
func (w *BufferedFileWriter) Write(p []byte) (n int, err error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writer == nil {
		return 0, fmt.Errorf("writer is closed")
	}

	return w.writer.Write(p)
}

// Flush pushes buffered bytes to the OS. It does not fsync.
func (w *BufferedFileWriter) Flush() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writer == nil {
		return nil
	}
	if err := w.writer.Flush(); err != nil {
		return fmt.Errorf("failed to flush buffer: %w", err)
	}
	return nil
}

// Close flushes, syncs and closes the file. Calling Close twice is a no-op.
func (w *BufferedFileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.writer == nil {
		return nil
	}

	flushErr := w.writer.Flush()
	syncErr := w.file.Sync()
	closeErr := w.file.Close()
	w.writer = nil
	w.file = nil

	switch {
	case flushErr != nil:
		return fmt.Errorf("failed to flush %s: %w", w.filePath, flushErr)
	case syncErr != nil:
		return fmt.Errorf("failed to sync %s: %w", w.filePath, syncErr)
	case closeErr != nil:
		return fmt.Errorf("failed to close %s: %w", w.filePath, closeErr)
	}
	return nil
}
