package patternfile_test

import (
	"strings"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/toejough/callmatch/internal/core"
	"github.com/toejough/callmatch/internal/patternfile"
)

// verify decodes a single-expectation YAML document and runs it against calls.
func verify(t *testing.T, expectation string, calls ...core.Call) bool {
	t.Helper()
	g := NewWithT(t)

	expectations, err := patternfile.DecodeExpectations([]byte("expectations:\n  - "+expectation+"\n"), patternfile.FormatYAML, "test.yaml")
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(expectations).To(HaveLen(1))

	found, err := core.FindCall(expectations[0].ExpectedCall, calls)
	g.Expect(err).NotTo(HaveOccurred())

	return found
}

func TestExpectations_Literals(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	add := core.NewCall("add", 4, 3)

	g.Expect(verify(t, "{name: add, args: [4, 3]}", add)).To(BeTrue())
	g.Expect(verify(t, "{name: add, args: [3, 4]}", add)).To(BeFalse())
	g.Expect(verify(t, "{name: add, args: [4]}", add)).To(BeFalse())
	g.Expect(verify(t, "{name: add}", core.NewCall("add"))).To(BeTrue())
}

func TestExpectations_Any(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	add := core.NewCall("add", 4, 3)

	g.Expect(verify(t, "{name: add, args: [{$any: null}, 3]}", add)).To(BeTrue())
	g.Expect(verify(t, "{name: add, args: [{$any: integer}, {$any: number}]}", add)).To(BeTrue())
	g.Expect(verify(t, "{name: add, args: [{$any: float}, 3]}", add)).To(BeFalse())
	g.Expect(verify(t, "{name: send, args: [{$any: atom}]}", core.NewCall("send", core.Atom("ok")))).To(BeTrue())
}

func TestExpectations_Literal(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	recorded := core.NewCall("f", map[string]any{"$any": "integer"})

	g.Expect(verify(t, "{name: f, args: [{$literal: {$any: integer}}]}", recorded)).To(BeTrue())
	g.Expect(verify(t, "{name: f, args: [{$literal: {a: 1}}]}", core.NewCall("f", map[string]any{"a": 1, "b": 2}))).To(BeFalse())
}

func TestExpectations_PartialMaps(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	put := core.NewCall("put", map[string]any{"user": map[string]any{"id": 7, "name": "ada"}})

	g.Expect(verify(t, "{name: put, args: [{user: {id: {$any: integer}, name: ada}}]}", put)).To(BeTrue())
	g.Expect(verify(t, "{name: put, args: [{user: {id: {$any: integer}}}]}", put)).To(BeFalse())
}

func TestExpectations_Expr(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	add := core.NewCall("add", 4, 3)

	g.Expect(verify(t, `{name: add, args: [{$expr: "it > 3"}, {$expr: "it in [1, 2, 3]"}]}`, add)).To(BeTrue())
	g.Expect(verify(t, `{name: add, args: [{$expr: "it > 4"}, 3]}`, add)).To(BeFalse())
	g.Expect(verify(t, `{name: add, args: [{$expr: "it"}, 3]}`, add)).To(BeFalse(), "non-bool results do not match")
	g.Expect(verify(t, `{name: add, args: [{$expr: "it.missing > 1"}, 3]}`, add)).To(BeFalse(), "runtime errors do not match")
}

func TestExpectations_ExprCompilesAgainstAnyValue(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	for _, source := range []string{"it > 3", `it == "ok"`, "len(it) == 2", "it.user.id == 7"} {
		_, err := patternfile.DecodeExpectations(
			[]byte(`{"expectations": [{"name": "f", "args": [{"$expr": "`+strings.ReplaceAll(source, `"`, `\"`)+`"}]}]}`),
			patternfile.FormatJSON, "expr.json")
		g.Expect(err).NotTo(HaveOccurred(), source)
	}

	g.Expect(verify(t, `{name: f, args: [{$expr: "it.user.id == 7"}]}`,
		core.NewCall("f", map[string]any{"user": map[string]any{"id": 7}}))).To(BeTrue())
	g.Expect(verify(t, `{name: f, args: [{$expr: "len(it) == 2"}]}`, core.NewCall("f", []any{1, 2}))).To(BeTrue())
}

func TestExpectations_JSONIntegers(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	expectations, err := patternfile.DecodeExpectations([]byte(`{"expectations": [
		{"name": "add", "args": [{"$any": "integer"}, 3]},
		{"name": "add", "args": [4, 3.0]}
	]}`), patternfile.FormatJSON, "add.json")
	g.Expect(err).NotTo(HaveOccurred())

	add := []core.Call{core.NewCall("add", 4, 3)}

	found, err := core.FindCall(expectations[0].ExpectedCall, add)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(found).To(BeTrue())

	found, err = core.FindCall(expectations[1].ExpectedCall, add)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(found).To(BeFalse(), "3.0 is a float")
}

func TestExpectations_JSONPath(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	put := core.NewCall("put", map[string]any{"user": map[string]any{"id": 7, "tags": []any{"a", "b"}}})

	g.Expect(verify(t, `{name: put, args: [{$jsonpath: "$.user.id"}]}`, put)).To(BeTrue())
	g.Expect(verify(t, `{name: put, args: [{$jsonpath: "$.user.email"}]}`, put)).To(BeFalse())
	g.Expect(verify(t, `{name: put, args: [{$jsonpath: {path: "$.user.id", value: 7}}]}`, put)).To(BeTrue())
	g.Expect(verify(t, `{name: put, args: [{$jsonpath: {path: "$.user.tags[*]", value: b}}]}`, put)).To(BeTrue())
	g.Expect(verify(t, `{name: put, args: [{$jsonpath: {path: "$.user.id", value: 8}}]}`, put)).To(BeFalse())
}

func TestExpectations_Refute(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	expectations, err := patternfile.DecodeExpectations([]byte(`{"expectations": [
		{"name": "add", "args": [1, 2], "refute": true},
		{"name": "add", "args": [4, 3]}
	]}`), patternfile.FormatJSON, "add.json")

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(expectations).To(HaveLen(2))
	g.Expect(expectations[0].Refute).To(BeTrue())
	g.Expect(expectations[0].Source).To(Equal("add.json:expectations[0]"))
	g.Expect(expectations[1].Refute).To(BeFalse())
	g.Expect(expectations[1].String()).To(Equal("add(4, 3)"))
}

func TestExpectations_Invalid(t *testing.T) {
	t.Parallel()

	cases := map[string]struct {
		doc  string
		want error
	}{
		"unknown kind":      {"{name: f, args: [{$any: widget}]}", core.ErrUnsupportedKind},
		"kind not a string": {"{name: f, args: [{$any: [1]}]}", patternfile.ErrInvalidDocument},
		"unknown tag":       {"{name: f, args: [{$regex: a}]}", patternfile.ErrInvalidDocument},
		"tag in a list":     {"{name: f, args: [[{$any: integer}]]}", patternfile.ErrInvalidDocument},
		"tag in a tuple":    {"{name: f, args: [{$tuple: [{$any: null}]}]}", patternfile.ErrInvalidDocument},
		"bad expr":          {`{name: f, args: [{$expr: "it >"}]}`, patternfile.ErrInvalidDocument},
		"empty expr":        {`{name: f, args: [{$expr: ""}]}`, patternfile.ErrInvalidDocument},
		"bad jsonpath":      {`{name: f, args: [{$jsonpath: "$.["}]}`, patternfile.ErrInvalidDocument},
		"empty jsonpath":    {`{name: f, args: [{$jsonpath: {value: 1}}]}`, patternfile.ErrInvalidDocument},
		"jsonpath key":      {`{name: f, args: [{$jsonpath: {path: "$.a", other: 1}}]}`, patternfile.ErrInvalidDocument},
		"refute not bool":   {"{name: f, refute: yes please}", patternfile.ErrInvalidDocument},
		"name not a string": {"{name: 3}", patternfile.ErrInvalidDocument},
	}

	for name, c := range cases {
		t.Run(name, func(t *testing.T) {
			t.Parallel()
			g := NewWithT(t)

			_, err := patternfile.DecodeExpectations([]byte("expectations:\n  - "+c.doc+"\n"), patternfile.FormatYAML, "bad.yaml")

			g.Expect(err).To(MatchError(c.want))
			g.Expect(err.Error()).To(HavePrefix("bad.yaml: "))
		})
	}
}
