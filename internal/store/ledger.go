package store

import (
	"errors"
	"sync"
)

// ErrAlreadyDone is returned when committing an item the ledger already has
var ErrAlreadyDone = errors.New("item already captured")

// Key identifies one captured item. Scope is empty for single-key stores
// and holds the ticker index for (ticker, date) stores.
type Key struct {
	Scope string
	ID    string
}

// Ledger is the in-memory set of captured items plus the items currently
// being worked on. One instance is shared by every worker of a store.
type Ledger struct {
	mu      sync.RWMutex
	done    map[Key]struct{}
	claimed map[Key]struct{}
}

// NewLedger creates an empty ledger
func NewLedger() *Ledger {
	return &Ledger{
		done:    make(map[Key]struct{}),
		claimed: make(map[Key]struct{}),
	}
}

// IsDone reports whether k was captured
func (l *Ledger) IsDone(k Key) bool {
	l.mu.RLock()
	defer l.mu.RUnlock()
	_, ok := l.done[k]
	return ok
}

// MarkDone records k as captured and drops any claim on it
func (l *Ledger) MarkDone(k Key) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.done[k] = struct{}{}
	delete(l.claimed, k)
}

// Claim reserves k for the caller. It fails when k is captured or already
// claimed, so no item is started twice within a run.
func (l *Ledger) Claim(k Key) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if _, ok := l.done[k]; ok {
		return false
	}
	if _, ok := l.claimed[k]; ok {
		return false
	}
	l.claimed[k] = struct{}{}
	return true
}

// Release drops a claim without marking the item done
func (l *Ledger) Release(k Key) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.claimed, k)
}

// Pending returns the ids of scope that are not yet captured, in order
func (l *Ledger) Pending(scope string, ids []string) []string {
	l.mu.RLock()
	defer l.mu.RUnlock()

	var out []string
	for _, id := range ids {
		if _, ok := l.done[Key{Scope: scope, ID: id}]; !ok {
			out = append(out, id)
		}
	}
	return out
}

// Len returns the number of captured items
func (l *Ledger) Len() int {
	l.mu.RLock()
	defer l.mu.RUnlock()
	return len(l.done)
}
