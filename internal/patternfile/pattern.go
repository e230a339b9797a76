package patternfile

import (
	"fmt"
	"strings"

	"github.com/expr-lang/expr"
	"github.com/expr-lang/expr/vm"
	"github.com/ohler55/ojg/jp"

	"github.com/toejough/callmatch/internal/core"
	"github.com/toejough/callmatch/match"
)

// exprEnv is the environment of $expr expressions: the actual value is "it".
type exprEnv struct {
	It any `expr:"it"`
}

// decodePattern converts a generic node into an expected argument: pattern tags become
// match patterns, maps become maps of expected arguments (and so partial map patterns),
// and lists become plain values.
func decodePattern(path string, node any) (any, error) {
	entries, ok := mapEntries(node)
	if !ok {
		return decodeValue(path, node, true)
	}

	tag, arg, ok := singleTag(entries)
	if !ok {
		return decodeMap(path, entries, decodePattern)
	}

	switch tag {
	case tagAny:
		return decodeAny(path, arg)
	case tagLiteral:
		value, err := decodeValue(path+"."+tagLiteral, arg, false)
		if err != nil {
			return nil, err
		}

		return match.Literal(value), nil
	case tagExpr:
		return decodeExpr(path, arg)
	case tagJSONPath:
		return decodeJSONPath(path, arg)
	case tagAtom:
		return decodeAtom(path, arg)
	case tagTuple:
		return decodeTuple(path, arg, true)
	default:
		return nil, invalidf(path, "unknown tag %s; wrap the map in %s if %s is a real key", tag, tagLiteral, tag)
	}
}

func decodeAny(path string, arg any) (any, error) {
	if arg == nil {
		return match.Any(), nil
	}

	name, ok := arg.(string)
	if !ok {
		return nil, invalidf(path, "%s takes a kind name, got %T", tagAny, arg)
	}

	kind, err := match.ParseKind(name)
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return match.AnyOf(kind), nil
}

// decodeExpr compiles an expr-lang expression over the actual value, available as "it".
// Evaluation errors and non-bool results are non-matches.
func decodeExpr(path string, arg any) (any, error) {
	source, ok := arg.(string)
	if !ok || strings.TrimSpace(source) == "" {
		return nil, invalidf(path, "%s takes a non-empty expression string", tagExpr)
	}

	program, err := expr.Compile(source, expr.Env(exprEnv{}))
	if err != nil {
		return nil, invalidf(path, "%s %q: %v", tagExpr, source, err)
	}

	return core.NewPredicate("expr("+source+")", exprPredicate(source, program)), nil
}

func exprPredicate(source string, program *vm.Program) core.Predicate {
	return func(actual any) (bool, string) {
		out, err := expr.Run(program, exprEnv{It: actual})
		if err != nil {
			return false, fmt.Sprintf("expr %q failed on %#v: %v", source, actual, err)
		}

		matched, ok := out.(bool)
		if !ok {
			return false, fmt.Sprintf("expr %q returned %T, not bool", source, out)
		}

		if !matched {
			return false, fmt.Sprintf("expr %q is false for %#v", source, actual)
		}

		return true, ""
	}
}

// decodeJSONPath accepts either a path, which matches when it selects at least one
// value, or {path: ..., value: ...}, which matches when any selected value equals value.
func decodeJSONPath(path string, arg any) (any, error) {
	var (
		source   string
		want     any
		hasValue bool
	)

	switch spec := arg.(type) {
	case string:
		source = spec
	default:
		entries, ok := mapEntries(arg)
		if !ok {
			return nil, invalidf(path, "%s takes a path string or a {path, value} map", tagJSONPath)
		}

		for _, e := range entries {
			switch e.key {
			case "path":
				source, _ = e.value.(string)
			case "value":
				value, err := decodeValue(path+"."+tagJSONPath+".value", e.value, false)
				if err != nil {
					return nil, err
				}

				want, hasValue = value, true
			default:
				return nil, invalidf(path, "%s: unknown key %v", tagJSONPath, e.key)
			}
		}
	}

	if strings.TrimSpace(source) == "" {
		return nil, invalidf(path, "%s needs a non-empty path", tagJSONPath)
	}

	selector, err := jp.ParseString(source)
	if err != nil {
		return nil, invalidf(path, "%s %q: %v", tagJSONPath, source, err)
	}

	desc := "jsonpath(" + source + ")"
	if hasValue {
		desc = fmt.Sprintf("jsonpath(%s == %#v)", source, want)
	}

	return core.NewPredicate(desc, func(actual any) (bool, string) {
		selected := selector.Get(actual)
		if len(selected) == 0 {
			return false, fmt.Sprintf("%s selects nothing in %#v", source, actual)
		}

		if !hasValue {
			return true, ""
		}

		for _, value := range selected {
			if matched, _, _ := core.MatchValue(normalizeScalar(value), match.Literal(want)); matched {
				return true, ""
			}
		}

		return false, fmt.Sprintf("%s selects %#v, none equal to %#v", source, selected, want)
	}), nil
}
