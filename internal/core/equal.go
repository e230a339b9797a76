package core

// This file provides value equality and formatting shared by the pattern variants.

import (
	"fmt"
	"reflect"
	"runtime"
	"strings"
)

// GoString renders an atom the way it is written in expectations.
func (a Atom) GoString() string { return ":" + string(a) }

func (a Atom) String() string { return ":" + string(a) }

// GoString renders a tuple with braces, to keep it visually distinct from a list.
func (t Tuple) GoString() string {
	parts := make([]string, len(t))
	for i, elem := range t {
		parts[i] = formatValue(elem)
	}

	return "{" + strings.Join(parts, ", ") + "}"
}

// FuncName gets the function's name.
func FuncName(function any) string {
	// docs say to use UnsafePointer explicitly instead of Pointer()
	// https://pkg.go.dev/reflect@go1.21.1#Value.Pointer
	name := runtime.FuncForPC(uintptr(reflect.ValueOf(function).UnsafePointer())).Name()
	// this suffix gets appended sometimes. It's unimportant, as far as I can tell.
	name = strings.TrimSuffix(name, "-fm")

	return name
}

// deepEqual checks whether two values are deeply equal.
// deepEqual calls functions equal if their names are equal.
// For everything else it depends on reflect.DeepEqual.
func deepEqual(actual, expected any) bool {
	// handle, for instance, nil == (*int)nil
	if isNil(actual) && isNil(expected) {
		return true
	}

	// Special handling for functions. For our purposes, call funcs with the same names equal.
	if isFunc(actual) && isFunc(expected) &&
		!isNil(actual) && !isNil(expected) &&
		FuncName(actual) == FuncName(expected) {
		return true
	}

	return reflect.DeepEqual(actual, expected)
}

func formatValue(value any) string {
	if isUntypedNil(value) {
		return "nil"
	}

	if isFunc(value) && !isTypedNil(value) {
		return "func " + FuncName(value)
	}

	return fmt.Sprintf("%#v", value)
}

func isFunc(value any) bool { return kindOf(value) == reflect.Func }

// isNil returns whether the value is nil.
func isNil(value any) bool { return isUntypedNil(value) || isTypedNil(value) }

// isTypedNil returns whether the value is a typed nil.
func isTypedNil(value any) bool {
	reflectedValue := reflect.ValueOf(value)
	return isNillableKind(reflectedValue.Kind()) && reflectedValue.IsNil()
}

// isUntypedNil returns whether the value is an untyped nil.
func isUntypedNil(value any) bool { return !reflect.ValueOf(value).IsValid() }

// isNillableKind returns true if the kind passed is nillable.
// According to https://pkg.go.dev/reflect#Value.IsNil, this is the case for
// chan, func, interface, map, pointer, or slice kinds.
func isNillableKind(kind reflect.Kind) bool {
	switch kind {
	case reflect.Chan, reflect.Func, reflect.Interface,
		reflect.Map, reflect.Pointer, reflect.Slice, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}
