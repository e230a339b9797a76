package core_test

import (
	"fmt"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/toejough/callmatch/internal/core"
)

// reporter captures the first fatal failure instead of stopping the test.
type reporter struct {
	failed  bool
	message string
}

func (r *reporter) Helper() {}

func (r *reporter) Fatalf(format string, args ...any) {
	if r.failed {
		return
	}

	r.failed = true
	r.message = fmt.Sprintf(format, args...)
}

func TestAssertCalled_Passes(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	log := core.NewCallLog()
	log.Record("add", 4, 3)

	r := &reporter{}
	core.AssertCalled(r, log, "add", 4, 3)

	g.Expect(r.failed).To(BeFalse(), r.message)
}

func TestAssertCalled_NeverCalled(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	log := core.NewCallLog()
	log.Record("sub", 1, 1)

	r := &reporter{}
	core.AssertCalled(r, log, "add", 4, 3)

	g.Expect(r.failed).To(BeTrue())
	g.Expect(r.message).To(Equal("missing call: expected add(4, 3), but add was never called (1 calls recorded)"))
}

func TestAssertCalled_DiffsClosestCandidate(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	log := core.NewCallLog()
	log.Record("add", 1, 2)
	log.Record("add", 4, 4)
	log.Record("add", 9)

	r := &reporter{}
	core.AssertCalled(r, log, "add", 4, 3)

	g.Expect(r.failed).To(BeTrue())
	g.Expect(r.message).To(HavePrefix("missing call: expected add(4, 3), but no call to add matched:\n"))
	g.Expect(r.message).To(ContainSubstring("  #0 add(1, 2): arg 0: expected 4, got 1\n"))
	g.Expect(r.message).To(ContainSubstring("  #1 add(4, 4): arg 1: expected 3, got 4\n"))
	g.Expect(r.message).To(ContainSubstring("  #2 add(9): expected 2 args, got 1\n"))
	g.Expect(r.message).To(ContainSubstring("--- expected"))
	g.Expect(r.message).To(ContainSubstring("+++ actual"))
	g.Expect(r.message).To(ContainSubstring("-  3,"))
	g.Expect(r.message).To(ContainSubstring("+  4,"))
}

func TestAssertCalled_UsageError(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	log := core.NewCallLog()
	log.Record("add", 4, 3)

	r := &reporter{}
	core.AssertCalled(r, log, "add", core.NewDynamicPredicate(func(a, b int) bool { return true }), 3)

	g.Expect(r.failed).To(BeTrue())
	g.Expect(r.message).To(HavePrefix("invalid expectation: verifying add: arg 0:"))
	g.Expect(r.message).To(ContainSubstring("has arity 2"))
}

func TestRefuteCalled(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	log := core.NewCallLog()
	log.Record("add", 4, 3)

	r := &reporter{}
	core.RefuteCalled(r, log, "add", 3, 4)
	g.Expect(r.failed).To(BeFalse())

	core.RefuteCalled(r, log, "add", 4, 3)
	g.Expect(r.failed).To(BeTrue())
	g.Expect(r.message).To(Equal("unexpected call: add was called with arguments matching add(4, 3)"))
}

func TestAssertCalled_WithLogFor(t *testing.T) {
	t.Parallel()

	double := core.NewDouble(core.LogFor(t))
	notify := core.Fake[func(string, map[string]any)](double, "notify")

	notify("ops", map[string]any{"level": "warn", "count": 2})

	core.AssertCalled(t, core.LogFor(t), "notify", "ops", map[string]any{"level": "warn", "count": BeNumerically(">=", 1)})
	core.RefuteCalled(t, core.LogFor(t), "notify", "ops", map[string]any{"level": "warn"})
}
