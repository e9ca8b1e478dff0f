// Package store persists harvested records to append-only headered CSV
// files and tracks which items are already captured.
package store

import (
	"bytes"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
)

// ErrSchemaMismatch is returned when an existing store file carries a
// different header than expected
var ErrSchemaMismatch = errors.New("store header mismatch")

// EnsureFile creates path with header when it is absent or empty, and
// otherwise verifies the header it already has.
func EnsureFile(path string, header []string) error {
	existing, err := readHeader(path)
	switch {
	case errors.Is(err, os.ErrNotExist), errors.Is(err, io.EOF):
		return createFile(path, header)
	case err != nil:
		return err
	}

	if !slices.Equal(existing, header) {
		return fmt.Errorf("%w: %s has %v, expected %v", ErrSchemaMismatch, path, existing, header)
	}
	return nil
}

func readHeader(path string) ([]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer func() { _ = file.Close() }()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1
	header, err := r.Read()
	if err != nil {
		if errors.Is(err, io.EOF) {
			return nil, err
		}
		return nil, fmt.Errorf("read header of %s: %w", path, err)
	}
	return header, nil
}

func createFile(path string, header []string) error {
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return fmt.Errorf("create store dir: %w", err)
	}

	data, err := encode([][]string{header})
	if err != nil {
		return err
	}
	if err := os.WriteFile(path, data, 0644); err != nil {
		return fmt.Errorf("write header of %s: %w", path, err)
	}
	return nil
}

// ReadRecords returns every record of a store file after the header
func ReadRecords(path string) ([][]string, error) {
	file, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("open store: %w", err)
	}
	defer func() { _ = file.Close() }()

	r := csv.NewReader(file)
	r.FieldsPerRecord = -1

	records, err := r.ReadAll()
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	if len(records) == 0 {
		return nil, nil
	}
	return records[1:], nil
}

// encode renders records as one CSV chunk
func encode(records [][]string) ([]byte, error) {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	if err := w.WriteAll(records); err != nil {
		return nil, fmt.Errorf("encode csv: %w", err)
	}
	return buf.Bytes(), nil
}
