package core

import (
	"sync"
)

// LogFor returns the CallLog for the given test, creating one if needed.
// Multiple calls with the same TestReporter return the same CallLog instance.
// This lets doubles and assertions in the same test share one log without
// passing it around.
//
// If the TestReporter supports Cleanup (like *testing.T), the log is
// automatically removed from the registry when the test completes.
func LogFor(t TestReporter) *CallLog {
	registryMu.Lock()
	defer registryMu.Unlock()

	if log, ok := registry[t]; ok {
		return log
	}

	log := NewCallLog()
	registry[t] = log

	// Register cleanup if the TestReporter supports it
	if cr, ok := t.(cleanupRegistrar); ok {
		cr.Cleanup(func() {
			registryMu.Lock()
			delete(registry, t)
			registryMu.Unlock()
		})
	}

	return log
}

// unexported variables.
var (
	//nolint:gochecknoglobals // Package-level registry is intentional for test coordination
	registry = make(map[TestReporter]*CallLog)
	//nolint:gochecknoglobals // Mutex for registry
	registryMu sync.Mutex
)

// cleanupRegistrar is the interface needed for registering cleanup functions.
// This is satisfied by *testing.T and *testing.B.
type cleanupRegistrar interface {
	Cleanup(cleanupFunc func())
}
