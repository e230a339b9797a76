package core

import (
	"fmt"
	"strings"

	"github.com/akedrou/textdiff"
)

// TestReporter is the minimal interface callmatch needs from test frameworks.
type TestReporter interface {
	Helper()
	Fatalf(format string, args ...any)
}

// AssertCalled fails the test unless log holds a call to name whose arguments match
// args. Args are classified with PatternOf.
func AssertCalled(t TestReporter, log *CallLog, name string, args ...any) {
	t.Helper()

	expected := Expect(name, args...)
	calls := log.Snapshot()

	found, err := FindCall(expected, calls)
	if err != nil {
		t.Fatalf("invalid expectation: %v", err)

		return
	}

	if found {
		return
	}

	t.Fatalf("%s", missingCallMessage(expected, calls))
}

// RefuteCalled fails the test if log holds any call to name whose arguments match args.
func RefuteCalled(t TestReporter, log *CallLog, name string, args ...any) {
	t.Helper()

	expected := Expect(name, args...)

	found, err := FindCall(expected, log.Snapshot())
	if err != nil {
		t.Fatalf("invalid expectation: %v", err)

		return
	}

	if found {
		t.Fatalf("unexpected call: %s was called with arguments matching %s", name, expected)
	}
}

// missingCallMessage lists why each same-name call missed, and diffs the expectation
// against the closest candidate. The error from Explain is impossible here: FindCall
// already evaluated the same patterns without one.
func missingCallMessage(expected ExpectedCall, calls []Call) string {
	mismatches, _ := Explain(expected, calls)

	if len(mismatches) == 0 {
		return fmt.Sprintf("missing call: expected %s, but %s was never called (%d calls recorded)",
			expected, expected.Name, len(calls))
	}

	var message strings.Builder

	fmt.Fprintf(&message, "missing call: expected %s, but no call to %s matched:\n", expected, expected.Name)

	for _, mismatch := range mismatches {
		fmt.Fprintf(&message, "  %s\n", mismatch)
	}

	closest := closestMismatch(mismatches)
	message.WriteString(textdiff.Unified("expected", "actual",
		expectedLines(expected), actualLines(closest.Call)))

	return message.String()
}

// closestMismatch prefers the call that got furthest through the argument list. Ties go
// to the most recent call.
func closestMismatch(mismatches []Mismatch) Mismatch {
	closest := mismatches[0]
	for _, mismatch := range mismatches[1:] {
		if mismatch.Arg >= closest.Arg {
			closest = mismatch
		}
	}

	return closest
}

func expectedLines(expected ExpectedCall) string {
	var lines strings.Builder

	lines.WriteString(expected.Name + "(\n")

	for _, pattern := range expected.Patterns {
		lines.WriteString("  " + pattern.describe() + ",\n")
	}

	lines.WriteString(")\n")

	return lines.String()
}

func actualLines(call Call) string {
	var lines strings.Builder

	lines.WriteString(call.name + "(\n")

	for _, arg := range call.args {
		lines.WriteString("  " + formatValue(arg) + ",\n")
	}

	lines.WriteString(")\n")

	return lines.String()
}
