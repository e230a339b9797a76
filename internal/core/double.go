package core

// This file provides Double, the factory for surrogate functions that record their
// invocations into a CallLog.

import (
	"fmt"
	"reflect"
	"sync"
)

// Double hands out surrogate functions. Every surrogate records its invocation into the
// double's CallLog under the name it was created with, and returns the stub values
// configured for that name (zero values when none are configured).
type Double struct {
	log *CallLog

	mu      sync.Mutex // Protects funcs and returns
	funcs   map[string]reflect.Type
	returns map[string][]any
}

// NewDouble creates a double recording into log. A nil log gets a fresh CallLog.
func NewDouble(log *CallLog) *Double {
	if log == nil {
		log = NewCallLog()
	}

	return &Double{
		log:     log,
		funcs:   make(map[string]reflect.Type),
		returns: make(map[string][]any),
	}
}

// Fake creates a surrogate of function type F named name. If returns are given they
// become the surrogate's stub values, exactly as if passed to Returns.
//
// Fake panics if F is not a function type, if name is already registered with a
// different type, or if the returns do not fit F's results.
func Fake[F any](double *Double, name string, returns ...any) F {
	fnType := reflect.TypeFor[F]()
	panicIfNotFuncType(fnType)

	double.mu.Lock()

	if existing, ok := double.funcs[name]; ok && existing != fnType {
		double.mu.Unlock()
		panic(fmt.Sprintf("double %s is already registered as %s, cannot register it as %s", name, existing, fnType))
	}

	double.funcs[name] = fnType

	pending := double.returns[name]
	double.mu.Unlock()

	if len(returns) > 0 {
		double.Returns(name, returns...)
	} else if pending != nil {
		panicIfInvalidReturns(name, fnType, pending)
	}

	surrogate := reflect.MakeFunc(fnType, func(in []reflect.Value) []reflect.Value {
		args := make([]any, len(in))
		for i, arg := range in {
			args[i] = arg.Interface()
		}

		double.log.Record(name, args...)

		return double.results(name, fnType)
	})

	return surrogate.Interface().(F) //nolint:forcetypeassert // MakeFunc built exactly F
}

// Log returns the call log the double records into.
func (d *Double) Log() *CallLog {
	return d.log
}

// Returns configures the stub values returned by the surrogate named name. Values are
// checked against the surrogate's result types when the surrogate exists, otherwise when
// it is created.
func (d *Double) Returns(name string, values ...any) {
	d.mu.Lock()
	fnType, known := d.funcs[name]
	d.mu.Unlock()

	if known {
		panicIfInvalidReturns(name, fnType, values)
	}

	d.mu.Lock()
	d.returns[name] = values
	d.mu.Unlock()
}

func (d *Double) results(name string, fnType reflect.Type) []reflect.Value {
	d.mu.Lock()
	values := d.returns[name]
	d.mu.Unlock()

	out := make([]reflect.Value, fnType.NumOut())
	for index := range out {
		result := reflect.New(fnType.Out(index)).Elem()

		// handle untyped nils and unconfigured results
		if index < len(values) && !isUntypedNil(values[index]) {
			result.Set(reflect.ValueOf(values[index]))
		}

		out[index] = result
	}

	return out
}

// panicIfNotFuncType panics if the given type is not a function type.
func panicIfNotFuncType(fnType reflect.Type) {
	if fnType.Kind() != reflect.Func {
		panic(fmt.Sprintf("must pass a function type. received a %s instead.",
			fnType.Kind().String(),
		))
	}
}

// panicIfInvalidReturns panics if either the number or type of the given values are mismatched
// with the return signature of the function.
func panicIfInvalidReturns(name string, fnType reflect.Type, returns []any) {
	panicIfWrongNumReturns(name, fnType, returns)
	panicIfWrongReturnTypes(name, fnType, returns)
}

// panicIfWrongNumReturns panics if the number of returns given don't match the number of values
// the given function returns.
func panicIfWrongNumReturns(name string, fnType reflect.Type, returns []any) {
	numReturns := len(returns)
	numFunctionReturns := fnType.NumOut()

	if numReturns < numFunctionReturns {
		panic(fmt.Sprintf("Too few returns passed. The func (%s) returns %d values,"+
			" but only %d were passed",
			name,
			numFunctionReturns,
			numReturns,
		))
	} else if numFunctionReturns < numReturns {
		panic(fmt.Sprintf("Too many returns passed. The func (%s) only returns %d values,"+
			" but %d were passed",
			name,
			numFunctionReturns,
			numReturns,
		))
	}
}

// panicIfWrongReturnTypes panics if the types of returns given don't match the types of values
// the given function returns.
func panicIfWrongReturnTypes(name string, fnType reflect.Type, returns []any) {
	for index := range returns {
		ret := returns[index]
		// if the func type is a pointer and the passed return is nil, that's ok, too.
		if ret == nil && isNillableKind(fnType.Out(index).Kind()) {
			continue
		}

		functionReturnType := fnType.Out(index)
		retType := reflect.TypeOf(ret)

		if retType != nil && retType.AssignableTo(functionReturnType) {
			continue
		}

		panic(fmt.Sprintf("Wrong return type. The return type at index %d for func (%s) is %s,"+
			" but a value of type %s was passed",
			index,
			name,
			getTypeName(functionReturnType),
			getTypeName(retType),
		))
	}
}

// getTypeName gets the type's name, if it has one. If it does not have one, getTypeName
// will return the type's string.
func getTypeName(t reflect.Type) string {
	if t == nil {
		return "nil"
	}

	if t.Name() != "" {
		return t.Name()
	}

	return t.String()
}
