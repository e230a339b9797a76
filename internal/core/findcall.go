package core

import "fmt"

// Mismatch explains why one recorded call with the expected name did not match.
type Mismatch struct {
	Index  int // position of the call in the log
	Call   Call
	Arg    int // first argument that failed, or -1 when the argument counts differ
	Reason string
}

func (m Mismatch) String() string {
	return fmt.Sprintf("#%d %s: %s", m.Index, m.Call, m.Reason)
}

// FindCall reports whether any call in calls has the expected name and arguments that
// satisfy the expected patterns. It stops at the first match.
//
// Usage errors from malformed matchers are returned as a non-nil error and end the
// search; they are never reported as a non-match.
func FindCall(expected ExpectedCall, calls []Call) (bool, error) {
	for _, call := range calls {
		if call.name != expected.Name {
			continue
		}

		failed, _, err := firstMismatch(expected.Patterns, call.args)
		if err != nil {
			return false, fmt.Errorf("verifying %s: %w", expected.Name, err)
		}

		if failed == noMismatch {
			return true, nil
		}
	}

	return false, nil
}

// MatchArgs reports whether args satisfy patterns position by position. Lists of
// different lengths never match.
func MatchArgs(patterns []Pattern, args []any) (bool, string, error) {
	failed, reason, err := firstMismatch(patterns, args)

	return failed == noMismatch && err == nil, reason, err
}

// MatchValue reports whether actual satisfies the raw expected value, classified with
// PatternOf. If it does not, the string explains why.
func MatchValue(actual, expected any) (bool, string, error) {
	return PatternOf(expected).match(actual)
}

// Explain evaluates every call with the expected name and returns one Mismatch for
// each that does not match. A nil slice with a nil error means either that no call has
// the expected name, or that all of them match; use FindCall to tell the two apart.
func Explain(expected ExpectedCall, calls []Call) ([]Mismatch, error) {
	var mismatches []Mismatch

	for index, call := range calls {
		if call.name != expected.Name {
			continue
		}

		failed, reason, err := firstMismatch(expected.Patterns, call.args)
		if err != nil {
			return nil, fmt.Errorf("verifying %s: %w", expected.Name, err)
		}

		if failed != noMismatch {
			mismatches = append(mismatches, Mismatch{Index: index, Call: call, Arg: failed, Reason: reason})
		}
	}

	return mismatches, nil
}

// Results of firstMismatch that are not argument indexes.
const (
	noMismatch    = -2
	countMismatch = -1
)

// firstMismatch returns the index of the first argument that does not satisfy its
// pattern along with the reason, countMismatch when the lists differ in length, or
// noMismatch.
func firstMismatch(patterns []Pattern, args []any) (int, string, error) {
	if len(patterns) != len(args) {
		return countMismatch, fmt.Sprintf("expected %d args, got %d", len(patterns), len(args)), nil
	}

	for index, pattern := range patterns {
		matched, reason, err := pattern.match(args[index])
		if err != nil {
			return index, "", fmt.Errorf("arg %d: %w", index, err)
		}

		if !matched {
			return index, fmt.Sprintf("arg %d: %s", index, reason), nil
		}
	}

	return noMismatch, "", nil
}
