package core

import (
	"fmt"
	"slices"
	"strings"
)

// Call is one recorded invocation: the function name and the arguments it was actually
// called with. Calls are never mutated after creation.
type Call struct {
	name string
	args []any
}

// NewCall records an invocation of name with args. The args slice is copied.
func NewCall(name string, args ...any) Call {
	return Call{name: name, args: slices.Clone(args)}
}

// Name returns the name of the function.
func (c Call) Name() string {
	return c.name
}

// Args returns a copy of the args passed to the function.
func (c Call) Args() []any {
	return slices.Clone(c.args)
}

func (c Call) String() string {
	parts := make([]string, len(c.args))
	for i, arg := range c.args {
		parts[i] = formatValue(arg)
	}

	return fmt.Sprintf("%s(%s)", c.name, strings.Join(parts, ", "))
}

// ExpectedCall is the function name and argument patterns a verification asserts
// against a call log.
type ExpectedCall struct {
	Name     string
	Patterns []Pattern
}

// Expect builds an ExpectedCall, classifying each raw argument with PatternOf.
func Expect(name string, args ...any) ExpectedCall {
	return ExpectedCall{Name: name, Patterns: PatternsOf(args)}
}

func (e ExpectedCall) String() string {
	parts := make([]string, len(e.Patterns))
	for i, pattern := range e.Patterns {
		parts[i] = pattern.describe()
	}

	return fmt.Sprintf("%s(%s)", e.Name, strings.Join(parts, ", "))
}
