// Package patternfile reads recorded call logs and expected calls from YAML, JSON and
// msgpack documents.
//
// A call log document:
//
//	calls:
//	  - name: add
//	    args: [4, 3]
//
// An expectations document:
//
//	expectations:
//	  - name: add
//	    args: [{$any: integer}, 3]
//	  - name: echo
//	    args: [{$literal: {$any: integer}}]
//	    refute: true
//
// Values may use the tags {$atom: name} and {$tuple: [...]}. Expected arguments may
// also use {$any: kind}, {$literal: value}, {$expr: "it > 3"} and
// {$jsonpath: "$.a.b"}. Plain maps in expected arguments are partial map patterns.
package patternfile

import (
	"fmt"
	"io"
	"os"

	"github.com/toejough/callmatch/internal/core"
)

// Expectation is one decoded entry of an expectations document.
type Expectation struct {
	core.ExpectedCall

	// Refute inverts the verification: it passes when no call matches.
	Refute bool
	// Source locates the entry, as "file:expectations[i]".
	Source string
}

// DecodeCalls decodes a call log document.
func DecodeCalls(data []byte, format Format) ([]core.Call, error) {
	tree, err := decodeTree(data, format)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrInvalidDocument, err)
	}

	items, err := section(tree, "calls")
	if err != nil {
		return nil, err
	}

	calls := make([]core.Call, len(items))

	for i, item := range items {
		path := fmt.Sprintf("calls[%d]", i)

		name, rawArgs, err := callFields(path, item)
		if err != nil {
			return nil, err
		}

		args, err := decodeList(path+".args", rawArgs, false)
		if err != nil {
			return nil, err
		}

		calls[i] = core.NewCall(name, args...)
	}

	return calls, nil
}

// DecodeExpectations decodes an expectations document. source prefixes each
// expectation's Source.
func DecodeExpectations(data []byte, format Format, source string) ([]Expectation, error) {
	tree, err := decodeTree(data, format)
	if err != nil {
		return nil, fmt.Errorf("%s: %w: %w", source, ErrInvalidDocument, err)
	}

	items, err := section(tree, "expectations")
	if err != nil {
		return nil, fmt.Errorf("%s: %w", source, err)
	}

	expectations := make([]Expectation, len(items))

	for i, item := range items {
		path := fmt.Sprintf("expectations[%d]", i)

		expectation, err := decodeExpectation(path, item)
		if err != nil {
			return nil, fmt.Errorf("%s: %w", source, err)
		}

		expectation.Source = source + ":" + path
		expectations[i] = expectation
	}

	return expectations, nil
}

// EncodeCalls encodes calls as a call log document.
func EncodeCalls(calls []core.Call, format Format) ([]byte, error) {
	items := make([]any, len(calls))

	for i, call := range calls {
		items[i] = map[string]any{
			"name": call.Name(),
			"args": encodeList(call.Args()),
		}
	}

	return encodeTree(map[string]any{"calls": items}, format)
}

// ReadCalls reads a call log document from path.
func ReadCalls(path string, format Format) ([]core.Call, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading call log: %w", err)
	}

	calls, err := DecodeCalls(data, format.ForPath(path))
	if err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}

	return calls, nil
}

// ReadExpectations reads an expectations document from path.
func ReadExpectations(path string, format Format) ([]Expectation, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading expectations: %w", err)
	}

	return DecodeExpectations(data, format.ForPath(path), path)
}

// WriteCalls encodes calls to w.
func WriteCalls(w io.Writer, calls []core.Call, format Format) error {
	data, err := EncodeCalls(calls, format)
	if err != nil {
		return err
	}

	_, err = w.Write(data)

	return err
}

func decodeExpectation(path string, item any) (Expectation, error) {
	name, rawArgs, err := callFields(path, item)
	if err != nil {
		return Expectation{}, err
	}

	args := make([]any, len(rawArgs))

	for i, rawArg := range rawArgs {
		args[i], err = decodePattern(fmt.Sprintf("%s.args[%d]", path, i), rawArg)
		if err != nil {
			return Expectation{}, err
		}
	}

	var refute bool

	fields, _ := asMap(item)
	if raw, ok := fields["refute"]; ok {
		refute, ok = raw.(bool)
		if !ok {
			return Expectation{}, invalidf(path+".refute", "must be a bool, got %T", raw)
		}
	}

	return Expectation{ExpectedCall: core.Expect(name, args...), Refute: refute}, nil
}

// callFields reads the name and args shared by calls and expectations. Missing args
// means no arguments.
func callFields(path string, item any) (string, []any, error) {
	fields, ok := asMap(item)
	if !ok {
		return "", nil, invalidf(path, "expected a map with name and args, got %T", item)
	}

	name, ok := fields["name"].(string)
	if !ok || name == "" {
		return "", nil, invalidf(path+".name", "must be a non-empty string")
	}

	rawArgs, present := fields["args"]
	if !present || rawArgs == nil {
		return name, nil, nil
	}

	args, ok := rawArgs.([]any)
	if !ok {
		return "", nil, invalidf(path+".args", "must be a list, got %T", rawArgs)
	}

	return name, args, nil
}

func section(tree any, key string) ([]any, error) {
	fields, ok := asMap(tree)
	if !ok {
		return nil, invalidf("$", "expected a map with a %q list, got %T", key, tree)
	}

	raw, ok := fields[key]
	if !ok || raw == nil {
		return nil, nil
	}

	items, ok := raw.([]any)
	if !ok {
		return nil, invalidf(key, "must be a list, got %T", raw)
	}

	return items, nil
}

// asMap views a generic map node with string keys.
func asMap(node any) (map[string]any, bool) {
	entries, ok := mapEntries(node)
	if !ok {
		return nil, false
	}

	fields := make(map[string]any, len(entries))

	for _, e := range entries {
		key, ok := e.key.(string)
		if !ok {
			return nil, false
		}

		fields[key] = e.value
	}

	return fields, true
}
