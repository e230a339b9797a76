package core

import (
	"slices"
	"sync"
)

// CallLog is an append-only record of calls made to the doubles of one test.
// It is safe for concurrent use: appends and snapshots are serialized, so a
// verification always reads one consistent snapshot.
type CallLog struct {
	mu    sync.Mutex // Protects calls
	calls []Call
}

// NewCallLog creates an empty call log.
func NewCallLog() *CallLog {
	return &CallLog{}
}

// Find reports whether any call in the current snapshot matches expected.
func (l *CallLog) Find(expected ExpectedCall) (bool, error) {
	return FindCall(expected, l.Snapshot())
}

// Len returns the number of recorded calls.
func (l *CallLog) Len() int {
	l.mu.Lock()
	defer l.mu.Unlock()

	return len(l.calls)
}

// Record appends a call to name with args.
func (l *CallLog) Record(name string, args ...any) Call {
	call := NewCall(name, args...)

	l.mu.Lock()
	l.calls = append(l.calls, call)
	l.mu.Unlock()

	return call
}

// Reset drops every recorded call.
func (l *CallLog) Reset() {
	l.mu.Lock()
	l.calls = nil
	l.mu.Unlock()
}

// Snapshot returns the calls recorded so far, in order.
func (l *CallLog) Snapshot() []Call {
	l.mu.Lock()
	defer l.mu.Unlock()

	return slices.Clone(l.calls)
}
