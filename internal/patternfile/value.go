package patternfile

import (
	"cmp"
	"errors"
	"fmt"
	"math"
	"slices"
	"strings"

	"github.com/toejough/callmatch/internal/core"
)

// Tags. A tag is a map with exactly one key, the tag name.
const (
	tagAny      = "$any"
	tagLiteral  = "$literal"
	tagExpr     = "$expr"
	tagJSONPath = "$jsonpath"
	tagAtom     = "$atom"
	tagTuple    = "$tuple"
)

// ErrInvalidDocument is wrapped by every decoding error. The message starts with the
// path of the offending node.
var ErrInvalidDocument = errors.New("invalid document")

type entry struct {
	key   any
	value any
}

// decodeValue converts a generic node into a plain value: integers become int, floats
// become float64, and $atom / $tuple tags become core.Atom / core.Tuple. With strict
// set, pattern tags are rejected instead of being kept as plain maps.
func decodeValue(path string, node any, strict bool) (any, error) {
	if entries, ok := mapEntries(node); ok {
		if tag, arg, ok := singleTag(entries); ok {
			switch tag {
			case tagAtom:
				return decodeAtom(path, arg)
			case tagTuple:
				return decodeTuple(path, arg, strict)
			case tagAny, tagLiteral, tagExpr, tagJSONPath:
				if strict {
					return nil, invalidf(path, "%s is not allowed here: lists are compared by equality, element by element", tag)
				}
			}
		}

		return decodeMap(path, entries, func(path string, node any) (any, error) {
			return decodeValue(path, node, strict)
		})
	}

	if list, ok := node.([]any); ok {
		return decodeList(path, list, strict)
	}

	return normalizeScalar(node), nil
}

func decodeAtom(path string, arg any) (any, error) {
	name, ok := arg.(string)
	if !ok {
		return nil, invalidf(path, "%s takes a string, got %T", tagAtom, arg)
	}

	return core.Atom(name), nil
}

func decodeTuple(path string, arg any, strict bool) (any, error) {
	list, ok := arg.([]any)
	if !ok {
		return nil, invalidf(path, "%s takes a list, got %T", tagTuple, arg)
	}

	elems, err := decodeList(path, list, strict)
	if err != nil {
		return nil, err
	}

	return core.Tuple(elems), nil
}

func decodeList(path string, list []any, strict bool) ([]any, error) {
	decoded := make([]any, len(list))

	for i, elem := range list {
		value, err := decodeValue(fmt.Sprintf("%s[%d]", path, i), elem, strict)
		if err != nil {
			return nil, err
		}

		decoded[i] = value
	}

	return decoded, nil
}

// decodeMap decodes every value with decode. Maps whose keys are all strings become
// map[string]any so that they compare equal to the maps decoded from other formats.
func decodeMap(path string, entries []entry, decode func(string, any) (any, error)) (any, error) {
	allStrings := true
	decoded := make([]entry, len(entries))

	for i, e := range entries {
		key := normalizeScalar(e.key)
		if _, ok := key.(string); !ok {
			allStrings = false
		}

		value, err := decode(fmt.Sprintf("%s.%v", path, key), e.value)
		if err != nil {
			return nil, err
		}

		decoded[i] = entry{key: key, value: value}
	}

	if allStrings {
		out := make(map[string]any, len(decoded))
		for _, e := range decoded {
			out[e.key.(string)] = e.value //nolint:forcetypeassert // checked above
		}

		return out, nil
	}

	out := make(map[any]any, len(decoded))
	for _, e := range decoded {
		out[e.key] = e.value
	}

	return out, nil
}

// mapEntries lists the entries of the generic map node, sorted by key text.
func mapEntries(node any) ([]entry, bool) {
	var entries []entry

	switch m := node.(type) {
	case map[string]any:
		for key, value := range m {
			entries = append(entries, entry{key: key, value: value})
		}
	case map[any]any:
		for key, value := range m {
			entries = append(entries, entry{key: key, value: value})
		}
	default:
		return nil, false
	}

	slices.SortFunc(entries, func(a, b entry) int {
		return cmp.Compare(fmt.Sprint(a.key), fmt.Sprint(b.key))
	})

	return entries, true
}

func singleTag(entries []entry) (string, any, bool) {
	if len(entries) != 1 {
		return "", nil, false
	}

	name, ok := entries[0].key.(string)
	if !ok || !strings.HasPrefix(name, "$") {
		return "", nil, false
	}

	return name, entries[0].value, true
}

// normalizeScalar maps the integer and float types the decoders produce onto int and
// float64. Unsigned values too large for int are kept as uint64.
func normalizeScalar(node any) any {
	switch n := node.(type) {
	case int8:
		return int(n)
	case int16:
		return int(n)
	case int32:
		return int(n)
	case int64:
		return int(n)
	case uint8:
		return int(n)
	case uint16:
		return int(n)
	case uint32:
		return int(n)
	case uint:
		return normalizeUnsigned(uint64(n))
	case uint64:
		return normalizeUnsigned(n)
	case float32:
		return float64(n)
	default:
		return node
	}
}

func normalizeUnsigned(n uint64) any {
	if n > math.MaxInt {
		return n
	}

	return int(n)
}

// encodeValue is the inverse of decodeValue: atoms and tuples become tags again.
func encodeValue(value any) any {
	switch v := value.(type) {
	case core.Atom:
		return map[string]any{tagAtom: string(v)}
	case core.Tuple:
		return map[string]any{tagTuple: encodeList(v)}
	case []any:
		return encodeList(v)
	case map[string]any:
		out := make(map[string]any, len(v))
		for key, elem := range v {
			out[key] = encodeValue(elem)
		}

		return out
	case map[any]any:
		out := make(map[any]any, len(v))
		for key, elem := range v {
			out[key] = encodeValue(elem)
		}

		return out
	default:
		return value
	}
}

func encodeList(list []any) []any {
	out := make([]any, len(list))
	for i, elem := range list {
		out[i] = encodeValue(elem)
	}

	return out
}

func invalidf(path, format string, args ...any) error {
	return fmt.Errorf("%s: %w: %s", path, ErrInvalidDocument, fmt.Sprintf(format, args...))
}
