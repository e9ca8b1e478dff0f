package store

import (
	"fmt"
	"slices"
	"sync"
	"time"
)

// Spec describes one store: its data file and, optionally, the paired log
// file that is the durable form of its ledger.
type Spec struct {
	Name   string
	Path   string
	Header []string

	// ScopeColumn and IDColumn name the key columns of the data file.
	// ScopeColumn is empty for single-key stores.
	ScopeColumn string
	IDColumn    string

	// LogPath is empty for stores whose ledger is rebuilt from the data
	// file itself. LogHeader starts with the key columns; a trailing
	// "logged_at" column receives the commit time.
	LogPath   string
	LogHeader []string
}

const loggedAtColumn = "logged_at"

// Dataset is an opened store with its loaded ledger
type Dataset struct {
	spec   Spec
	writer *Writer
	ledger *Ledger

	scopeIdx, idIdx int
	// appendMu makes filter-then-append of AppendNew atomic
	appendMu sync.Mutex
	now      func() time.Time
}

// Open creates missing files, verifies existing headers and loads the
// ledger into memory.
func Open(spec Spec, w *Writer) (*Dataset, error) {
	d := &Dataset{
		spec:     spec,
		writer:   w,
		ledger:   NewLedger(),
		scopeIdx: -1,
		now:      time.Now,
	}

	d.idIdx = slices.Index(spec.Header, spec.IDColumn)
	if d.idIdx < 0 {
		return nil, fmt.Errorf("%s: id column %q not in header", spec.Name, spec.IDColumn)
	}
	if spec.ScopeColumn != "" {
		d.scopeIdx = slices.Index(spec.Header, spec.ScopeColumn)
		if d.scopeIdx < 0 {
			return nil, fmt.Errorf("%s: scope column %q not in header", spec.Name, spec.ScopeColumn)
		}
	}

	if err := EnsureFile(spec.Path, spec.Header); err != nil {
		return nil, fmt.Errorf("%s: %w", spec.Name, err)
	}

	if spec.LogPath == "" {
		if err := d.load(spec.Path, d.scopeIdx, d.idIdx); err != nil {
			return nil, err
		}
		return d, nil
	}

	if len(spec.LogHeader) < d.keyWidth() {
		return nil, fmt.Errorf("%s: log header too short", spec.Name)
	}
	if err := EnsureFile(spec.LogPath, spec.LogHeader); err != nil {
		return nil, fmt.Errorf("%s log: %w", spec.Name, err)
	}
	logScope, logID := -1, 0
	if spec.ScopeColumn != "" {
		logScope, logID = 0, 1
	}
	if err := d.load(spec.LogPath, logScope, logID); err != nil {
		return nil, err
	}
	return d, nil
}

func (d *Dataset) keyWidth() int {
	if d.spec.ScopeColumn != "" {
		return 2
	}
	return 1
}

func (d *Dataset) load(path string, scopeIdx, idIdx int) error {
	records, err := ReadRecords(path)
	if err != nil {
		return fmt.Errorf("%s: %w", d.spec.Name, err)
	}
	for _, rec := range records {
		if k, ok := keyAt(rec, scopeIdx, idIdx); ok {
			d.ledger.MarkDone(k)
		}
	}
	return nil
}

func keyAt(rec []string, scopeIdx, idIdx int) (Key, bool) {
	if idIdx >= len(rec) || scopeIdx >= len(rec) {
		return Key{}, false
	}
	k := Key{ID: rec[idIdx]}
	if scopeIdx >= 0 {
		k.Scope = rec[scopeIdx]
	}
	return k, k.ID != ""
}

// Ledger returns the shared ledger of the store
func (d *Dataset) Ledger() *Ledger { return d.ledger }

// KeyOf returns the ledger key of a data record
func (d *Dataset) KeyOf(rec []string) (Key, bool) {
	return keyAt(rec, d.scopeIdx, d.idIdx)
}

// IsDone reports whether k is captured
func (d *Dataset) IsDone(k Key) bool { return d.ledger.IsDone(k) }

// Claim reserves k for the caller
func (d *Dataset) Claim(k Key) bool { return d.ledger.Claim(k) }

// Release drops a claim on k without marking it done
func (d *Dataset) Release(k Key) { d.ledger.Release(k) }

// Commit persists the records of one item and marks it done. Data rows are
// written before the log row, so a crash in between leaves the item
// unmarked and it is captured again on the next run. An item with no
// records is still logged.
func (d *Dataset) Commit(k Key, records [][]string) error {
	if d.ledger.IsDone(k) {
		return fmt.Errorf("%s %v: %w", d.spec.Name, k, ErrAlreadyDone)
	}

	if err := d.writer.Append(d.spec.Path, records); err != nil {
		return fmt.Errorf("%s: %w", d.spec.Name, err)
	}

	if d.spec.LogPath != "" {
		if err := d.writer.Append(d.spec.LogPath, [][]string{d.logRecord(k)}); err != nil {
			return fmt.Errorf("%s log: %w", d.spec.Name, err)
		}
	}

	d.ledger.MarkDone(k)
	return nil
}

func (d *Dataset) logRecord(k Key) []string {
	rec := make([]string, len(d.spec.LogHeader))
	i := 0
	if d.spec.ScopeColumn != "" {
		rec[i] = k.Scope
		i++
	}
	rec[i] = k.ID
	for j := i + 1; j < len(rec); j++ {
		if d.spec.LogHeader[j] == loggedAtColumn {
			rec[j] = d.now().UTC().Format(time.RFC3339)
		}
	}
	return rec
}

// AppendNew appends the records whose key is not yet captured, keeping the
// first of any duplicates in the batch, and returns how many were written.
// It is meant for stores without a log file.
func (d *Dataset) AppendNew(records [][]string) (int, error) {
	d.appendMu.Lock()
	defer d.appendMu.Unlock()

	var fresh [][]string
	var keys []Key
	seen := make(map[Key]bool)
	for _, rec := range records {
		k, ok := d.KeyOf(rec)
		if !ok || seen[k] || d.ledger.IsDone(k) {
			continue
		}
		seen[k] = true
		fresh = append(fresh, rec)
		keys = append(keys, k)
	}

	if err := d.writer.Append(d.spec.Path, fresh); err != nil {
		return 0, fmt.Errorf("%s: %w", d.spec.Name, err)
	}
	for _, k := range keys {
		d.ledger.MarkDone(k)
	}
	return len(fresh), nil
}

// Records returns the data rows currently persisted
func (d *Dataset) Records() ([][]string, error) {
	return ReadRecords(d.spec.Path)
}
