package core

import (
	"reflect"
	"slices"
	"strings"
)

// Atom is a symbolic constant value. It compares by name, and is distinct from a plain
// string with the same text.
type Atom string

// Tuple is a fixed-size group of values. Tuples are not lists: KindList does not match
// them, and KindTuple does not match slices.
type Tuple []any

// Kind names a class of runtime values for AnyOf.
type Kind string

// Supported kinds.
const (
	KindAny       Kind = "any"
	KindAtom      Kind = "atom"
	KindBinary    Kind = "binary"
	KindBoolean   Kind = "boolean"
	KindFloat     Kind = "float"
	KindFunction  Kind = "function"
	KindInteger   Kind = "integer"
	KindList      Kind = "list"
	KindMap       Kind = "map"
	KindNumber    Kind = "number"
	KindPID       Kind = "pid"
	KindReference Kind = "reference"
	KindStruct    Kind = "struct"
	KindTuple     Kind = "tuple"
)

// Kinds returns every supported kind, sorted by name.
func Kinds() []Kind {
	kinds := make([]Kind, 0, len(kindChecks))
	for kind := range kindChecks {
		kinds = append(kinds, kind)
	}

	slices.Sort(kinds)

	return kinds
}

// ParseKind validates name as a supported kind.
func ParseKind(name string) (Kind, error) {
	kind := Kind(strings.TrimSpace(name))
	if _, ok := kindChecks[kind]; ok {
		return kind, nil
	}

	return "", usageErrorf(ErrUnsupportedKind, "%q is not one of %v", name, Kinds())
}

// Has reports whether value is of this kind. Unsupported kinds match nothing.
func (k Kind) Has(value any) bool {
	check, ok := kindChecks[k]
	if !ok {
		return false
	}

	return check(value)
}

// unexported variables.
var (
	//nolint:gochecknoglobals // fixed lookup table
	kindChecks = map[Kind]func(any) bool{
		KindAny:       func(any) bool { return true },
		KindAtom:      isAtom,
		KindBinary:    isBinary,
		KindBoolean:   func(v any) bool { return kindOf(v) == reflect.Bool },
		KindFloat:     isFloat,
		KindFunction:  func(v any) bool { return kindOf(v) == reflect.Func },
		KindInteger:   isInteger,
		KindList:      isList,
		KindMap:       func(v any) bool { return kindOf(v) == reflect.Map },
		KindNumber:    func(v any) bool { return isInteger(v) || isFloat(v) },
		KindPID:       func(v any) bool { return kindOf(v) == reflect.Chan },
		KindReference: isReference,
		KindStruct:    func(v any) bool { return kindOf(v) == reflect.Struct },
		KindTuple:     isTuple,
	}
	//nolint:gochecknoglobals // reflect types for the value helpers
	atomType = reflect.TypeFor[Atom]()
	//nolint:gochecknoglobals // reflect types for the value helpers
	tupleType = reflect.TypeFor[Tuple]()
)

func kindOf(value any) reflect.Kind {
	return reflect.ValueOf(value).Kind()
}

func isAtom(value any) bool {
	return value != nil && reflect.TypeOf(value) == atomType
}

func isTuple(value any) bool {
	return value != nil && reflect.TypeOf(value) == tupleType
}

func isBinary(value any) bool {
	if isAtom(value) {
		return false
	}

	switch kindOf(value) {
	case reflect.String:
		return true
	case reflect.Slice:
		return reflect.TypeOf(value).Elem().Kind() == reflect.Uint8
	default:
		return false
	}
}

func isFloat(value any) bool {
	switch kindOf(value) {
	case reflect.Float32, reflect.Float64:
		return true
	default:
		return false
	}
}

func isInteger(value any) bool {
	switch kindOf(value) {
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64,
		reflect.Uintptr:
		return true
	default:
		return false
	}
}

func isList(value any) bool {
	if isTuple(value) {
		return false
	}

	switch kindOf(value) {
	case reflect.Slice, reflect.Array:
		return true
	default:
		return false
	}
}

func isReference(value any) bool {
	switch kindOf(value) {
	case reflect.Pointer, reflect.UnsafePointer:
		return true
	default:
		return false
	}
}
