// Package match provides the pattern elements used in expected argument lists:
// wildcards, kind and type checks, predicates, and the literal escape.
// This package is designed to be dot-imported alongside gomega matchers:
//
//	import (
//	    . "github.com/onsi/gomega"
//	    . "github.com/toejough/callmatch/match"
//	)
//
//	callmatch.AssertCalled(t, log, "Add", AnyOf(KindInteger), BeNumerically(">", 2))
//
// Any value in an expected argument list that is not built by this package is still
// a pattern: gomega-style matchers become predicates, maps become partial map patterns,
// and everything else is compared by equality.
package match

import (
	"fmt"
	"reflect"

	"github.com/toejough/callmatch/internal/core"
)

// Atom is a symbolic constant value, distinct from a string with the same text.
type Atom = core.Atom

// Tuple is a fixed-size group of values, distinct from a list.
type Tuple = core.Tuple

// Kind names a class of runtime values for AnyOf.
type Kind = core.Kind

// Pattern is one positional entry of an expected argument list.
type Pattern = core.Pattern

// Supported kinds.
const (
	KindAny       = core.KindAny
	KindAtom      = core.KindAtom
	KindBinary    = core.KindBinary
	KindBoolean   = core.KindBoolean
	KindFloat     = core.KindFloat
	KindFunction  = core.KindFunction
	KindInteger   = core.KindInteger
	KindList      = core.KindList
	KindMap       = core.KindMap
	KindNumber    = core.KindNumber
	KindPID       = core.KindPID
	KindReference = core.KindReference
	KindStruct    = core.KindStruct
	KindTuple     = core.KindTuple
)

// Usage errors, for use with errors.Is.
var (
	ErrUnsupportedKind = core.ErrUnsupportedKind
	ErrNotFunction     = core.ErrNotFunction
	ErrPredicateArity  = core.ErrPredicateArity
	ErrPredicateResult = core.ErrPredicateResult
)

// BeAny is a pattern that matches any value.
// Useful when you don't care about a particular argument.
//
//nolint:gochecknoglobals // Intentional exported constant-like value
var BeAny Pattern = Any()

// Any returns a pattern that matches any value, including nil.
func Any() Pattern {
	return core.NewPredicate("any value", func(any) (bool, string) { return true, "" })
}

// AnyOf returns a pattern that matches values of the given kind.
//
// AnyOf panics with a *core.UsageError wrapping ErrUnsupportedKind if kind is not one
// of the supported kinds. Use ParseKind to validate kinds that come from input.
func AnyOf(kind Kind) Pattern {
	parsed, err := core.ParseKind(string(kind))
	if err != nil {
		panic(err)
	}

	if parsed == KindAny {
		return Any()
	}

	return core.NewPredicate("any "+string(parsed), func(actual any) (bool, string) {
		if parsed.Has(actual) {
			return true, ""
		}

		return false, fmt.Sprintf("expected %s, got %s", parsed, describeKind(actual))
	})
}

// AnyOfType returns a pattern that matches values whose dynamic type is T. When T is an
// interface type, values implementing it match.
func AnyOfType[T any]() Pattern {
	want := reflect.TypeFor[T]()

	return core.NewPredicate("any "+want.String(), func(actual any) (bool, string) {
		got := reflect.TypeOf(actual)

		switch {
		case got == nil:
			return false, fmt.Sprintf("expected %s, got nil", want)
		case got == want:
			return true, ""
		case want.Kind() == reflect.Interface && got.Implements(want):
			return true, ""
		default:
			return false, fmt.Sprintf("expected %s, got %s", want, got)
		}
	})
}

// Literal returns a pattern that compares actual values to value by equality, even
// when value is itself a pattern, a matcher, or a map.
func Literal(value any) Pattern {
	return core.NewEscape(value)
}

// Matches returns a pattern that calls fn on the actual value. fn is checked when the
// pattern is evaluated, not here: it must be a function taking exactly one argument
// and returning a bool, or the verification fails with a usage error. Values that are
// not assignable to fn's parameter do not match.
//
// Prefer Satisfies, which the compiler checks.
func Matches(fn any) Pattern {
	return core.NewDynamicPredicate(fn)
}

// Kinds lists the kinds AnyOf accepts, sorted by name.
func Kinds() []Kind {
	return core.Kinds()
}

// ParseKind validates name as a supported kind.
func ParseKind(name string) (Kind, error) {
	return core.ParseKind(name)
}

// Satisfies returns a pattern that matches values of type T for which predicate returns
// true. Values of other types do not match.
//
// Example:
//
//	callmatch.AssertCalled(t, log, "Add", Satisfies(func(x int) bool { return x > 0 }), 3)
func Satisfies[T any](predicate func(T) bool) Pattern {
	desc := fmt.Sprintf("satisfies func(%s) bool", reflect.TypeFor[T]())

	return core.NewPredicate(desc, func(actual any) (bool, string) {
		if actual == nil {
			var zero T
			if !nillable(reflect.TypeFor[T]()) {
				return false, fmt.Sprintf("expected %s, got nil", reflect.TypeFor[T]())
			}

			return predicate(zero), ""
		}

		val, ok := actual.(T)
		if !ok {
			return false, fmt.Sprintf("expected %s, got %T", reflect.TypeFor[T](), actual)
		}

		return predicate(val), ""
	})
}

func describeKind(actual any) string {
	if actual == nil {
		return "nil"
	}

	return fmt.Sprintf("%T %#v", actual, actual)
}

func nillable(typ reflect.Type) bool {
	switch typ.Kind() {
	case reflect.Chan, reflect.Func, reflect.Interface,
		reflect.Map, reflect.Pointer, reflect.Slice:
		return true
	default:
		return false
	}
}
