// Package callmatch verifies calls recorded by test doubles against expected call
// patterns.
//
// Doubles record every invocation into a CallLog. A verification names a function and
// lists expected arguments; it passes when at least one recorded call to that function
// has arguments matching the list position by position. Expected arguments may be plain
// values (compared by equality), predicates, partial map patterns, or literal escapes;
// see package match for the constructors.
//
// This is the public API entry point. Implementation lives in internal/core.
package callmatch

import (
	"github.com/toejough/callmatch/internal/core"
)

// Call is one recorded invocation.
type Call = core.Call

// CallLog is an append-only, concurrency-safe record of calls.
type CallLog = core.CallLog

// Double hands out surrogate functions that record into a CallLog.
type Double = core.Double

// ExpectedCall is the function name and argument patterns a verification asserts.
type ExpectedCall = core.ExpectedCall

// Matcher defines the interface for flexible value matching.
type Matcher = core.Matcher

// Mismatch explains why one recorded call did not match.
type Mismatch = core.Mismatch

// Pattern is one positional entry of an expected argument list.
type Pattern = core.Pattern

// TestReporter is the minimal interface callmatch needs from test frameworks.
type TestReporter = core.TestReporter

// UsageError reports a malformed matcher.
type UsageError = core.UsageError

// AssertCalled fails the test unless log holds a matching call.
func AssertCalled(t TestReporter, log *CallLog, name string, args ...any) {
	t.Helper()
	core.AssertCalled(t, log, name, args...)
}

// Expect builds an ExpectedCall from raw expected arguments.
func Expect(name string, args ...any) ExpectedCall {
	return core.Expect(name, args...)
}

// Explain returns, for each call to the expected function that does not match, the
// reason it does not.
func Explain(expected ExpectedCall, calls []Call) ([]Mismatch, error) {
	return core.Explain(expected, calls)
}

// Fake creates a surrogate of function type F that records into the double's log.
func Fake[F any](double *Double, name string, returns ...any) F {
	return core.Fake[F](double, name, returns...)
}

// FindCall reports whether any of calls matches expected.
func FindCall(expected ExpectedCall, calls []Call) (bool, error) {
	return core.FindCall(expected, calls)
}

// LogFor returns the CallLog registered for t, creating one if needed.
func LogFor(t TestReporter) *CallLog {
	return core.LogFor(t)
}

// NewCall records an invocation of name with args.
func NewCall(name string, args ...any) Call {
	return core.NewCall(name, args...)
}

// NewCallLog creates an empty call log.
func NewCallLog() *CallLog {
	return core.NewCallLog()
}

// NewDouble creates a double recording into log.
func NewDouble(log *CallLog) *Double {
	return core.NewDouble(log)
}

// RefuteCalled fails the test if log holds a matching call.
func RefuteCalled(t TestReporter, log *CallLog, name string, args ...any) {
	t.Helper()
	core.RefuteCalled(t, log, name, args...)
}
