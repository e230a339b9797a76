package core_test

import (
	"errors"
	"testing"

	. "github.com/onsi/gomega"
	"pgregory.net/rapid"

	"github.com/toejough/callmatch/internal/core"
)

func TestFindCall_LiteralArgs(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	calls := []core.Call{core.NewCall("add", 4, 3)}

	found, err := core.FindCall(core.Expect("add", 4, 3), calls)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(found).To(BeTrue())

	found, err = core.FindCall(core.Expect("add", 3, 4), calls)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(found).To(BeFalse(), "argument order matters")
}

func TestFindCall_NameMustMatch(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	found, err := core.FindCall(core.Expect("sub", 4, 3), []core.Call{core.NewCall("add", 4, 3)})

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(found).To(BeFalse())
}

func TestFindCall_EmptyLog(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	found, err := core.FindCall(core.Expect("add"), nil)

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(found).To(BeFalse())
}

func TestFindCall_AnyRecordedCallMayMatch(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	calls := []core.Call{
		core.NewCall("add", 1, 1),
		core.NewCall("log", "hi"),
		core.NewCall("add", 4, 3),
	}

	found, err := core.FindCall(core.Expect("add", 4, 3), calls)

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(found).To(BeTrue())
}

func TestFindCall_MixedPatterns(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	positive := core.NewPredicate("positive", func(actual any) (bool, string) {
		n, ok := actual.(int)
		return ok && n > 0, ""
	})

	calls := []core.Call{core.NewCall("put", "k", 5, map[string]any{"a": 1, "b": "x"})}

	found, err := core.FindCall(core.Expect("put", "k", positive, map[string]any{"a": positive, "b": "x"}), calls)

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(found).To(BeTrue())
}

func TestFindCall_UsageErrorIsNotANonMatch(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	calls := []core.Call{core.NewCall("add", 4, 3)}

	_, err := core.FindCall(core.Expect("add", core.NewDynamicPredicate(10), 3), calls)

	g.Expect(err).To(MatchError(core.ErrNotFunction))

	var usage *core.UsageError
	g.Expect(errors.As(err, &usage)).To(BeTrue())
	g.Expect(err.Error()).To(ContainSubstring("arg 0"))
	g.Expect(err.Error()).To(ContainSubstring("match.Literal"))
}

func TestFindCall_UsageErrorNotRaisedWithoutCandidates(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	found, err := core.FindCall(core.Expect("sub", core.NewDynamicPredicate(10)), []core.Call{core.NewCall("add", 1)})

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(found).To(BeFalse())
}

func TestFindCall_EscapedPredicateMatchesRecordedPredicate(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	recorded := core.NewDynamicPredicate(10)
	calls := []core.Call{core.NewCall("register", recorded)}

	found, err := core.FindCall(core.Expect("register", core.NewEscape(core.NewDynamicPredicate(10))), calls)
	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(found).To(BeTrue())

	_, err = core.FindCall(core.Expect("register", core.NewDynamicPredicate(10)), calls)
	g.Expect(err).To(MatchError(core.ErrNotFunction))
}

func TestFindCall_SameArgsAlwaysMatch(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		name := rapid.StringMatching(`[a-z]{1,8}`).Draw(rt, "name")
		ints := rapid.SliceOf(rapid.Int()).Draw(rt, "args")

		args := make([]any, len(ints))
		for i, n := range ints {
			args[i] = n
		}

		found, err := core.FindCall(core.Expect(name, args...), []core.Call{core.NewCall(name, args...)})
		if err != nil || !found {
			rt.Fatalf("FindCall(%v) = %v, %v; want true, nil", args, found, err)
		}
	})
}

func TestFindCall_LengthMismatchNeverMatches(t *testing.T) {
	t.Parallel()

	rapid.Check(t, func(rt *rapid.T) {
		actual := rapid.IntRange(0, 6).Draw(rt, "actual")
		expected := rapid.IntRange(0, 6).Filter(func(n int) bool { return n != actual }).Draw(rt, "expected")

		args := make([]any, actual)
		for i := range args {
			args[i] = i
		}

		patterns := make([]any, expected)
		for i := range patterns {
			patterns[i] = core.NewPredicate("any", func(any) (bool, string) { return true, "" })
		}

		found, err := core.FindCall(core.Expect("f", patterns...), []core.Call{core.NewCall("f", args...)})
		if err != nil || found {
			rt.Fatalf("%d patterns vs %d args: FindCall = %v, %v; want false, nil", expected, actual, found, err)
		}
	})
}

func TestMatchArgs(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	matched, reason, err := core.MatchArgs(core.PatternsOf([]any{1, "a"}), []any{1, "b"})

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(matched).To(BeFalse())
	g.Expect(reason).To(Equal(`arg 1: expected "a", got "b"`))

	matched, reason, err = core.MatchArgs(nil, []any{1})

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(matched).To(BeFalse())
	g.Expect(reason).To(Equal("expected 0 args, got 1"))
}

func TestExplain(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	calls := []core.Call{
		core.NewCall("add", 1, 2),
		core.NewCall("log", "x"),
		core.NewCall("add", 4),
		core.NewCall("add", 4, 3),
	}

	mismatches, err := core.Explain(core.Expect("add", 4, 3), calls)

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(mismatches).To(HaveLen(2))
	g.Expect(mismatches[0].Index).To(Equal(0))
	g.Expect(mismatches[0].Arg).To(Equal(0))
	g.Expect(mismatches[0].String()).To(Equal("#0 add(1, 2): arg 0: expected 4, got 1"))
	g.Expect(mismatches[1].Index).To(Equal(2))
	g.Expect(mismatches[1].Arg).To(Equal(-1))
	g.Expect(mismatches[1].Reason).To(Equal("expected 2 args, got 1"))
}

// TestEndToEnd_AddScenario walks the canonical example: a double for add records
// add(4, 3), and verifications with literals, wildcards and predicates agree.
func TestEndToEnd_AddScenario(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	double := core.NewDouble(nil)
	add := core.Fake[func(int, int) int](double, "add", 7)

	g.Expect(add(4, 3)).To(Equal(7))

	greaterThanTwo := core.NewPredicate("> 2", func(actual any) (bool, string) {
		n, ok := actual.(int)
		return ok && n > 2, ""
	})

	cases := []struct {
		args []any
		want bool
	}{
		{[]any{4, 3}, true},
		{[]any{greaterThanTwo, 3}, true},
		{[]any{4, greaterThanTwo}, true},
		{[]any{3, 4}, false},
		{[]any{4}, false},
		{[]any{4, 3, 0}, false},
	}

	for _, c := range cases {
		found, err := double.Log().Find(core.Expect("add", c.args...))
		g.Expect(err).NotTo(HaveOccurred())
		g.Expect(found).To(Equal(c.want), "add%v", c.args)
	}
}
