package callmatch_test

import (
	"sync"
	"testing"

	. "github.com/onsi/gomega"

	"github.com/toejough/callmatch"
	. "github.com/toejough/callmatch/match"
)

// Calculator is the dependency the code under test calls.
type Calculator struct {
	Add func(a, b int) int
	Log func(event string, fields map[string]any)
}

func total(calc Calculator, values ...int) int {
	sum := 0
	for _, v := range values {
		sum = calc.Add(sum, v)
	}

	calc.Log("total", map[string]any{"count": len(values), "sum": sum})

	return sum
}

func TestDoubleAndAssertions(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	double := callmatch.NewDouble(callmatch.LogFor(t))
	calc := Calculator{
		Add: callmatch.Fake[func(int, int) int](double, "Add", 7),
		Log: callmatch.Fake[func(string, map[string]any)](double, "Log"),
	}

	g.Expect(total(calc, 4, 3)).To(Equal(7))

	log := callmatch.LogFor(t)
	callmatch.AssertCalled(t, log, "Add", 0, 4)
	callmatch.AssertCalled(t, log, "Add", 7, 3)
	callmatch.AssertCalled(t, log, "Add", AnyOf(KindInteger), BeNumerically("<", 4))
	callmatch.AssertCalled(t, log, "Log", "total", map[string]any{"count": 2, "sum": Satisfies(func(n int) bool { return n > 0 })})
	callmatch.RefuteCalled(t, log, "Add", 3, 4)
	callmatch.RefuteCalled(t, log, "Log", BeAny, map[string]any{"count": 2})
}

func TestExplainViaPublicAPI(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	log := callmatch.NewCallLog()
	log.Record("Add", 4, 3)

	mismatches, err := callmatch.Explain(callmatch.Expect("Add", 4, Literal(map[string]int{})), log.Snapshot())

	g.Expect(err).NotTo(HaveOccurred())
	g.Expect(mismatches).To(HaveLen(1))
	g.Expect(mismatches[0].Reason).To(Equal("arg 1: expected literal map[string]int{}, got 3"))
}

// TestLogFor_SharedAcrossGoroutines verifies that doubles used from several goroutines
// of one test all record into that test's log.
func TestLogFor_SharedAcrossGoroutines(t *testing.T) {
	t.Parallel()
	g := NewWithT(t)

	const numGoroutines = 100

	var wg sync.WaitGroup
	wg.Add(numGoroutines)

	for i := range numGoroutines {
		go func(idx int) {
			defer wg.Done()

			double := callmatch.NewDouble(callmatch.LogFor(t))
			callmatch.Fake[func(int)](double, "work")(idx)
		}(i)
	}

	wg.Wait()

	g.Expect(callmatch.LogFor(t).Len()).To(Equal(numGoroutines))

	for i := range numGoroutines {
		callmatch.AssertCalled(t, callmatch.LogFor(t), "work", i)
	}
}
