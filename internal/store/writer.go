package store

import (
	"fmt"
	"os"
	"sync"
)

// Writer appends records to store files. Appends to the same path are
// serialized; appends to different paths proceed in parallel.
type Writer struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

// NewWriter creates a writer
func NewWriter() *Writer {
	return &Writer{locks: make(map[string]*sync.Mutex)}
}

func (w *Writer) lockFor(path string) *sync.Mutex {
	w.mu.Lock()
	defer w.mu.Unlock()

	l, ok := w.locks[path]
	if !ok {
		l = &sync.Mutex{}
		w.locks[path] = l
	}
	return l
}

// Append encodes records in memory and writes them to path in one call.
// The file must already exist with its header.
func (w *Writer) Append(path string, records [][]string) error {
	if len(records) == 0 {
		return nil
	}

	data, err := encode(records)
	if err != nil {
		return err
	}

	l := w.lockFor(path)
	l.Lock()
	defer l.Unlock()

	file, err := os.OpenFile(path, os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("open %s for append: %w", path, err)
	}

	if _, err := file.Write(data); err != nil {
		_ = file.Close()
		return fmt.Errorf("append to %s: %w", path, err)
	}
	if err := file.Close(); err != nil {
		return fmt.Errorf("close %s: %w", path, err)
	}
	return nil
}
