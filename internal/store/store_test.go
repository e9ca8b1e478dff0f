package store

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func shareholderSpec(dir string) Spec {
	return Spec{
		Name:        "shareholders",
		Path:        filepath.Join(dir, "shareholders.csv"),
		Header:      []string{"name", "n_shares", "ticker_index", "req_date"},
		ScopeColumn: "ticker_index",
		IDColumn:    "req_date",
		LogPath:     filepath.Join(dir, "shareholders_log.csv"),
		LogHeader:   []string{"ticker_index", "date"},
	}
}

func TestEnsureFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "letters.csv")
	header := []string{"tracing_id", "symbol"}

	require.NoError(t, EnsureFile(path, header))
	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, "tracing_id,symbol\n", string(data))

	// Reopening with the same header is a no-op
	require.NoError(t, EnsureFile(path, header))

	err = EnsureFile(path, []string{"tracing_id", "title"})
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestEnsureFile_EmptyFileGetsHeader(t *testing.T) {
	path := filepath.Join(t.TempDir(), "prices.csv")
	require.NoError(t, os.WriteFile(path, nil, 0644))

	require.NoError(t, EnsureFile(path, []string{"date"}))
	records, err := ReadRecords(path)
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestWriter_ConcurrentAppends(t *testing.T) {
	path := filepath.Join(t.TempDir(), "rows.csv")
	require.NoError(t, EnsureFile(path, []string{"worker", "n", "text"}))

	w := NewWriter()
	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(worker int) {
			defer wg.Done()
			for n := 0; n < 50; n++ {
				rec := []string{fmt.Sprint(worker), fmt.Sprint(n), "سطر, با \"نقل قول\""}
				assert.NoError(t, w.Append(path, [][]string{rec}))
			}
		}(i)
	}
	wg.Wait()

	records, err := ReadRecords(path)
	require.NoError(t, err)
	assert.Len(t, records, 400)
	for _, rec := range records {
		assert.Len(t, rec, 3)
		assert.Equal(t, "سطر, با \"نقل قول\"", rec[2])
	}
}

func TestWriter_MissingFile(t *testing.T) {
	w := NewWriter()
	err := w.Append(filepath.Join(t.TempDir(), "missing.csv"), [][]string{{"a"}})
	assert.Error(t, err)
	// The lock is released on the error path
	assert.Error(t, w.Append(filepath.Join(t.TempDir(), "missing.csv"), [][]string{{"a"}}))
}

func TestLedger_ClaimRelease(t *testing.T) {
	l := NewLedger()
	k := Key{Scope: "778253364357513", ID: "2024-01-02"}

	assert.True(t, l.Claim(k))
	assert.False(t, l.Claim(k), "claimed twice")

	l.Release(k)
	assert.True(t, l.Claim(k))

	l.MarkDone(k)
	assert.True(t, l.IsDone(k))
	assert.False(t, l.Claim(k), "claimed after done")
	assert.Equal(t, 1, l.Len())

	assert.Equal(t, []string{"2024-01-03"}, l.Pending(k.Scope, []string{"2024-01-02", "2024-01-03"}))
	assert.Equal(t, []string{"2024-01-02"}, l.Pending("other", []string{"2024-01-02"}))
}

func TestLedger_ConcurrentClaimHasOneWinner(t *testing.T) {
	l := NewLedger()
	k := Key{ID: "1012345"}

	const workers = 64
	var wins atomic.Int32
	var wg sync.WaitGroup
	start := make(chan struct{})
	for i := 0; i < workers; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			<-start
			if l.Claim(k) {
				wins.Add(1)
			}
		}()
	}
	close(start)
	wg.Wait()

	assert.Equal(t, int32(1), wins.Load())
}

func TestLedger_ConcurrentMarkAndRead(t *testing.T) {
	l := NewLedger()
	scope := "46348559193224090"

	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		k := Key{Scope: scope, ID: fmt.Sprintf("2024-01-%02d", i%28+1)}
		wg.Add(3)
		go func() {
			defer wg.Done()
			if l.Claim(k) {
				l.MarkDone(k)
			}
		}()
		go func() {
			defer wg.Done()
			_ = l.IsDone(k)
			_ = l.Pending(scope, []string{k.ID})
		}()
		go func() {
			defer wg.Done()
			l.MarkDone(k)
			_ = l.Len()
		}()
	}
	wg.Wait()

	assert.Equal(t, 28, l.Len())
	for d := 1; d <= 28; d++ {
		k := Key{Scope: scope, ID: fmt.Sprintf("2024-01-%02d", d)}
		assert.True(t, l.IsDone(k), k.ID)
		assert.False(t, l.Claim(k), k.ID)
	}
}

func TestDataset_CommitIsIdempotentAcrossRuns(t *testing.T) {
	dir := t.TempDir()
	spec := shareholderSpec(dir)
	w := NewWriter()

	ds, err := Open(spec, w)
	require.NoError(t, err)

	k := Key{Scope: "100", ID: "2024-01-02"}
	require.True(t, ds.Claim(k))
	require.NoError(t, ds.Commit(k, [][]string{{"a", "10", "100", "2024-01-02"}, {"b", "5", "100", "2024-01-02"}}))

	// Empty responses are still logged
	empty := Key{Scope: "100", ID: "2024-01-03"}
	require.NoError(t, ds.Commit(empty, nil))

	assert.ErrorIs(t, ds.Commit(k, nil), ErrAlreadyDone)

	reopened, err := Open(spec, w)
	require.NoError(t, err)
	assert.True(t, reopened.IsDone(k))
	assert.True(t, reopened.IsDone(empty))
	assert.False(t, reopened.Claim(k))

	records, err := reopened.Records()
	require.NoError(t, err)
	assert.Len(t, records, 2)
}

func TestDataset_CrashBetweenDataAndLog(t *testing.T) {
	dir := t.TempDir()
	spec := shareholderSpec(dir)
	w := NewWriter()

	_, err := Open(spec, w)
	require.NoError(t, err)

	// Simulate a crash after the data write: the log row never lands
	rec := []string{"a", "10", "100", "2024-01-02"}
	require.NoError(t, w.Append(spec.Path, [][]string{rec}))

	reopened, err := Open(spec, w)
	require.NoError(t, err)
	k := Key{Scope: "100", ID: "2024-01-02"}
	assert.False(t, reopened.IsDone(k))

	require.True(t, reopened.Claim(k))
	require.NoError(t, reopened.Commit(k, [][]string{rec}))

	final, err := Open(spec, w)
	require.NoError(t, err)
	assert.True(t, final.IsDone(k))

	records, err := final.Records()
	require.NoError(t, err)
	assert.Len(t, records, 2, "at most one duplicate")
}

func TestDataset_LogTimestamp(t *testing.T) {
	dir := t.TempDir()
	spec := Spec{
		Name:      "balance_sheet",
		Path:      filepath.Join(dir, "balance_sheet.csv"),
		Header:    []string{"cash", "tracing_id"},
		IDColumn:  "tracing_id",
		LogPath:   filepath.Join(dir, "balance_sheet_log.csv"),
		LogHeader: []string{"tracing_id", "logged_at"},
	}

	ds, err := Open(spec, NewWriter())
	require.NoError(t, err)
	ds.now = func() time.Time { return time.Date(2024, 5, 1, 8, 0, 0, 0, time.UTC) }

	require.NoError(t, ds.Commit(Key{ID: "1234567"}, [][]string{{"10", "1234567"}}))

	logs, err := ReadRecords(spec.LogPath)
	require.NoError(t, err)
	assert.Equal(t, [][]string{{"1234567", "2024-05-01T08:00:00Z"}}, logs)
}

func TestDataset_AppendNew(t *testing.T) {
	dir := t.TempDir()
	spec := Spec{
		Name:     "letters",
		Path:     filepath.Join(dir, "letters.csv"),
		Header:   []string{"tracing_id", "symbol"},
		IDColumn: "tracing_id",
	}

	ds, err := Open(spec, NewWriter())
	require.NoError(t, err)

	n, err := ds.AppendNew([][]string{{"1", "فولاد"}, {"2", "خودرو"}, {"1", "فولاد"}, {"", "x"}})
	require.NoError(t, err)
	assert.Equal(t, 2, n)

	reopened, err := Open(spec, NewWriter())
	require.NoError(t, err)
	assert.Equal(t, 2, reopened.Ledger().Len())

	n, err = reopened.AppendNew([][]string{{"2", "خودرو"}, {"3", "شپنا"}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	records, err := reopened.Records()
	require.NoError(t, err)
	assert.Len(t, records, 3)
}

func TestOpen_HeaderMismatchIsFatal(t *testing.T) {
	dir := t.TempDir()
	spec := shareholderSpec(dir)
	require.NoError(t, os.WriteFile(spec.Path, []byte("name,ticker_index,req_date\n"), 0644))

	_, err := Open(spec, NewWriter())
	assert.ErrorIs(t, err, ErrSchemaMismatch)
}

func TestOpen_UnknownKeyColumn(t *testing.T) {
	spec := shareholderSpec(t.TempDir())
	spec.IDColumn = "date"
	_, err := Open(spec, NewWriter())
	assert.Error(t, err)
}
