package core

import (
	"fmt"
	"reflect"
)

// Matcher defines the interface for flexible value matching.
// Compatible with gomega.GomegaMatcher via duck typing - any type
// implementing Match and FailureMessage will work.
type Matcher interface {
	Match(actual any) (success bool, err error)
	FailureMessage(actual any) string
}

// Predicate decides whether a single value matches. When it does not, it may return a
// reason for failure messages.
type Predicate func(actual any) (ok bool, reason string)

// PredicatePattern matches values for which its function returns true.
//
// The function is held as a plain value, so two predicate patterns wrapping equal
// non-function values are themselves equal. That is what lets an escaped predicate be
// compared against a recorded argument that happens to be one.
type PredicatePattern struct {
	fn   any
	desc string
}

// NewPredicate wraps an already validated predicate.
func NewPredicate(desc string, predicate Predicate) PredicatePattern {
	return PredicatePattern{fn: predicate, desc: desc}
}

// NewMatcherPredicate wraps a duck-typed Matcher such as a gomega matcher.
func NewMatcherPredicate(matcher Matcher) PredicatePattern {
	return PredicatePattern{fn: matcher, desc: fmt.Sprintf("matcher %T", matcher)}
}

// NewDynamicPredicate wraps fn, which is only checked when the pattern is evaluated:
// fn must be a function taking exactly one argument and returning a single bool.
func NewDynamicPredicate(fn any) PredicatePattern {
	return PredicatePattern{fn: fn}
}

// Func returns the wrapped function value.
func (p PredicatePattern) Func() any { return p.fn }

func (p PredicatePattern) describe() string {
	if p.desc != "" {
		return p.desc
	}

	return fmt.Sprintf("matches(%s)", formatValue(p.fn))
}

func (p PredicatePattern) match(actual any) (bool, string, error) {
	switch fn := p.fn.(type) {
	case Predicate:
		ok, reason := fn(actual)
		if !ok && reason == "" {
			reason = fmt.Sprintf("%s does not satisfy %s", formatValue(actual), p.describe())
		}

		return ok, reason, nil
	case Matcher:
		return matchWithMatcher(fn, actual)
	default:
		return callDynamicPredicate(p.fn, actual)
	}
}

func matchWithMatcher(matcher Matcher, actual any) (bool, string, error) {
	success, err := matcher.Match(actual)
	if err != nil {
		return false, err.Error(), nil
	}

	if !success {
		return false, matcher.FailureMessage(actual), nil
	}

	return true, "", nil
}

// callDynamicPredicate validates and invokes fn on actual.
func callDynamicPredicate(fn any, actual any) (bool, string, error) {
	fnValue := reflect.ValueOf(fn)
	if fnValue.Kind() != reflect.Func || fnValue.IsNil() {
		return false, "", usageErrorf(ErrNotFunction,
			"%s cannot be used as a predicate; if it was meant as a value, wrap it with match.Literal(...)",
			formatValue(fn))
	}

	fnType := fnValue.Type()
	if fnType.NumIn() != 1 || fnType.IsVariadic() {
		return false, "", usageErrorf(ErrPredicateArity, "%s has arity %s", formatValue(fn), arity(fnType))
	}

	if fnType.NumOut() != 1 || fnType.Out(0).Kind() != reflect.Bool {
		return false, "", usageErrorf(ErrPredicateResult, "%s", fnType)
	}

	arg, ok := argFor(actual, fnType.In(0))
	if !ok {
		return false, fmt.Sprintf("%s is not assignable to %s", formatValue(actual), fnType.In(0)), nil
	}

	if fnValue.Call([]reflect.Value{arg})[0].Bool() {
		return true, "", nil
	}

	return false, fmt.Sprintf("%s does not satisfy %s", formatValue(actual), fnType), nil
}

// argFor converts actual into a call argument of the given type. Untyped nil becomes
// the zero value of nillable types.
func argFor(actual any, paramType reflect.Type) (reflect.Value, bool) {
	if isUntypedNil(actual) {
		if isNillableKind(paramType.Kind()) {
			return reflect.Zero(paramType), true
		}

		return reflect.Value{}, false
	}

	value := reflect.ValueOf(actual)
	if !value.Type().AssignableTo(paramType) {
		return reflect.Value{}, false
	}

	return value, true
}

func arity(fnType reflect.Type) string {
	if fnType.IsVariadic() {
		return fmt.Sprintf("%d (variadic)", fnType.NumIn())
	}

	return fmt.Sprint(fnType.NumIn())
}
