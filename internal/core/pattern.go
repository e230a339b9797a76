package core

import (
	"cmp"
	"fmt"
	"reflect"
	"slices"
	"strings"
)

// Pattern is one positional entry of an expected argument list. The set of variants is
// closed: LiteralPattern, EscapePattern, PredicatePattern and PartialMapPattern.
type Pattern interface {
	// match reports whether actual satisfies the pattern. When it does not, the string
	// explains why. A non-nil error is a usage error and aborts the verification.
	match(actual any) (bool, string, error)
	describe() string
}

// PatternOf classifies a raw expected argument.
//
// Values that are already patterns are returned unchanged. Values implementing Matcher
// become predicates. Map values ALWAYS become partial map patterns, with their values
// classified recursively; wrap a map in an EscapePattern to compare it by equality.
// Everything else is a literal.
func PatternOf(value any) Pattern {
	if pattern, ok := value.(Pattern); ok {
		return pattern
	}

	if matcher, ok := value.(Matcher); ok {
		return NewMatcherPredicate(matcher)
	}

	if kindOf(value) == reflect.Map {
		return newPartialMap(reflect.ValueOf(value))
	}

	return LiteralPattern{value: value}
}

// PatternsOf classifies every value in args.
func PatternsOf(args []any) []Pattern {
	patterns := make([]Pattern, len(args))
	for i, arg := range args {
		patterns[i] = PatternOf(arg)
	}

	return patterns
}

// Describe renders a pattern for failure messages.
func Describe(pattern Pattern) string {
	return pattern.describe()
}

// LiteralPattern matches values equal to the wrapped value.
type LiteralPattern struct {
	value any
}

// NewLiteral wraps value as a literal pattern without classifying it.
func NewLiteral(value any) LiteralPattern {
	return LiteralPattern{value: value}
}

// Value returns the wrapped value.
func (p LiteralPattern) Value() any { return p.value }

func (p LiteralPattern) describe() string {
	return formatValue(p.value)
}

func (p LiteralPattern) match(actual any) (bool, string, error) {
	if deepEqual(actual, p.value) {
		return true, "", nil
	}

	return false, fmt.Sprintf("expected %s, got %s", formatValue(p.value), formatValue(actual)), nil
}

// EscapePattern matches values equal to the wrapped value, even when the wrapped value
// is itself a pattern, a Matcher, or a map.
type EscapePattern struct {
	value any
}

// NewEscape wraps value so that it is always compared by equality.
func NewEscape(value any) EscapePattern {
	return EscapePattern{value: value}
}

// Value returns the wrapped value.
func (p EscapePattern) Value() any { return p.value }

func (p EscapePattern) describe() string {
	return "literal(" + formatValue(p.value) + ")"
}

func (p EscapePattern) match(actual any) (bool, string, error) {
	if deepEqual(actual, p.value) {
		return true, "", nil
	}

	return false, fmt.Sprintf("expected literal %s, got %s", formatValue(p.value), formatValue(actual)), nil
}

// PartialMapPattern matches map values whose key set equals the pattern's key set and
// whose values satisfy the nested patterns.
type PartialMapPattern struct {
	entries []mapEntry
	index   map[any]int
}

// NewPartialMap builds a partial map pattern from key/pattern pairs. Raw values are
// classified with PatternOf.
func NewPartialMap[K comparable, V any](entries map[K]V) PartialMapPattern {
	return newPartialMap(reflect.ValueOf(entries))
}

// Keys returns the pattern's keys in the order they are checked.
func (p PartialMapPattern) Keys() []any {
	keys := make([]any, len(p.entries))
	for i, entry := range p.entries {
		keys[i] = entry.key
	}

	return keys
}

func (p PartialMapPattern) describe() string {
	parts := make([]string, len(p.entries))
	for i, entry := range p.entries {
		parts[i] = formatValue(entry.key) + ": " + entry.pattern.describe()
	}

	return "map{" + strings.Join(parts, ", ") + "}"
}

func (p PartialMapPattern) match(actual any) (bool, string, error) {
	actualMap := reflect.ValueOf(actual)
	if actualMap.Kind() != reflect.Map {
		return false, "expected a map, got " + formatValue(actual), nil
	}

	actualValues := make(map[any]reflect.Value, actualMap.Len())

	iter := actualMap.MapRange()
	for iter.Next() {
		actualValues[iter.Key().Interface()] = iter.Value()
	}

	// the actual map must not carry keys the pattern does not name
	for _, key := range sortedKeys(actualValues) {
		if _, ok := p.index[key]; !ok {
			return false, "unexpected key " + formatValue(key), nil
		}
	}

	for _, entry := range p.entries {
		value, ok := actualValues[entry.key]
		if !ok {
			return false, "missing key " + formatValue(entry.key), nil
		}

		matched, reason, err := entry.pattern.match(value.Interface())
		if err != nil {
			return false, "", err
		}

		if !matched {
			return false, "key " + formatValue(entry.key) + ": " + reason, nil
		}
	}

	return true, "", nil
}

type mapEntry struct {
	key     any
	pattern Pattern
}

func newPartialMap(mapValue reflect.Value) PartialMapPattern {
	pattern := PartialMapPattern{
		entries: make([]mapEntry, 0, mapValue.Len()),
		index:   make(map[any]int, mapValue.Len()),
	}

	iter := mapValue.MapRange()
	for iter.Next() {
		pattern.entries = append(pattern.entries, mapEntry{
			key:     iter.Key().Interface(),
			pattern: PatternOf(iter.Value().Interface()),
		})
	}

	slices.SortFunc(pattern.entries, func(a, b mapEntry) int {
		return cmp.Compare(formatValue(a.key), formatValue(b.key))
	})

	for i, entry := range pattern.entries {
		pattern.index[entry.key] = i
	}

	return pattern
}

func sortedKeys(values map[any]reflect.Value) []any {
	keys := make([]any, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}

	slices.SortFunc(keys, func(a, b any) int {
		return cmp.Compare(formatValue(a), formatValue(b))
	})

	return keys
}
