package output

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

const partSuffix = ".part"

// FileWriter assembles a file at a .part path and moves it into place on
// Commit, so a failed download never leaves a truncated file under the
// final name.
type FileWriter struct {
	mu        sync.Mutex
	file      *os.File
	partPath  string
	finalPath string
	size      int64
}

// Create opens <path>.part and pre-allocates size bytes. Missing parent
// directories are created.
func Create(path string, size int64) (*FileWriter, error) {
	if dir := filepath.Dir(path); dir != "" {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return nil, fmt.Errorf("could not create output directory: %w", err)
		}
	}

	partPath := path + partSuffix
	f, err := os.OpenFile(partPath, os.O_RDWR|os.O_CREATE|os.O_TRUNC, 0644)
	if err != nil {
		return nil, fmt.Errorf("could not open part file: %w", err)
	}

	// On Linux/Unix, Truncate creates a sparse file.
	if err := f.Truncate(size); err != nil {
		f.Close()
		os.Remove(partPath)
		return nil, fmt.Errorf("could not pre-allocate part file: %w", err)
	}

	return &FileWriter{
		file:      f,
		partPath:  partPath,
		finalPath: path,
		size:      size,
	}, nil
}

// WriteAt writes data at offset. Safe for concurrent use.
func (w *FileWriter) WriteAt(data []byte, offset int64) error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return os.ErrClosed
	}
	if _, err := w.file.WriteAt(data, offset); err != nil {
		return fmt.Errorf("write at %d: %w", offset, err)
	}
	return nil
}

// Commit trims the part file to its final size, syncs it and renames it
// over the destination.
func (w *FileWriter) Commit() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return os.ErrClosed
	}
	f := w.file
	w.file = nil

	if err := f.Truncate(w.size); err != nil {
		f.Close()
		return fmt.Errorf("failed to truncate to final size: %w", err)
	}
	if err := f.Sync(); err != nil {
		f.Close()
		return fmt.Errorf("failed to sync part file: %w", err)
	}
	if err := f.Close(); err != nil {
		return err
	}

	if err := os.Rename(w.partPath, w.finalPath); err != nil {
		return fmt.Errorf("failed to rename %s: %w", filepath.Base(w.partPath), err)
	}
	return nil
}

// Abort closes and removes the part file. Calling it after Commit is a no-op.
func (w *FileWriter) Abort() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.file == nil {
		return nil
	}
	w.file.Close()
	w.file = nil
	return os.Remove(w.partPath)
}

// WriteFile stores data at path through a part file.
func WriteFile(path string, data []byte) error {
	w, err := Create(path, int64(len(data)))
	if err != nil {
		return err
	}
	if err := w.WriteAt(data, 0); err != nil {
		w.Abort()
		return err
	}
	return w.Commit()
}
