package regen

import (
	"sync"
)

// Ledger remembers which physical files were already handled during
// one run. It is safe for concurrent use.
type Ledger struct {
	mu    sync.Mutex
	files map[string]struct{}
}

func NewLedger() *Ledger {
	return &Ledger{files: make(map[string]struct{})}
}

// Claim marks name as handled. It returns false when name was already
// claimed, in which case the caller must skip it.
func (l *Ledger) Claim(name string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()

	if _, ok := l.files[name]; ok {
		return false
	}
	l.files[name] = struct{}{}
	return true
}

// Release forgets name so a later item sharing the file may retry it.
func (l *Ledger) Release(name string) {
	l.mu.Lock()
	defer l.mu.Unlock()
	delete(l.files, name)
}

func (l *Ledger) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()
	return len(l.files)
}
