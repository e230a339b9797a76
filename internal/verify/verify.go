// Package verify checks decoded expectations against a recorded call log, the engine
// behind the callmatch command.
package verify

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"

	"golang.org/x/sync/errgroup"

	"github.com/toejough/callmatch/internal/core"
	"github.com/toejough/callmatch/internal/logging"
	"github.com/toejough/callmatch/internal/patternfile"
)

// Result is the outcome of one expectation.
type Result struct {
	Expectation patternfile.Expectation

	// Found reports whether a matching call exists.
	Found bool
	// Passed is Found, inverted for refutations.
	Passed bool
	// Mismatches explains each same-name call that did not match.
	Mismatches []core.Mismatch
}

// Runner verifies expectations concurrently. The zero value is ready to use.
type Runner struct {
	// Logger receives one debug record per evaluated candidate. Defaults to a no-op logger.
	Logger *slog.Logger
	// Concurrency bounds the number of expectations evaluated at once. Defaults to
	// GOMAXPROCS.
	Concurrency int
}

// Run evaluates every expectation against calls. Results are in expectation order.
//
// A usage error in any expectation aborts the run and is returned; the remaining
// expectations are not evaluated.
func (r Runner) Run(ctx context.Context, calls []core.Call, expectations []patternfile.Expectation) ([]Result, error) {
	logger := r.Logger
	if logger == nil {
		logger = logging.Nop()
	}

	limit := r.Concurrency
	if limit <= 0 {
		limit = runtime.GOMAXPROCS(0)
	}

	results := make([]Result, len(expectations))

	group, ctx := errgroup.WithContext(ctx)
	group.SetLimit(limit)

	for i, expectation := range expectations {
		group.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}

			result, err := evaluate(logger, expectation, calls)
			if err != nil {
				return fmt.Errorf("%s: %w", expectation.Source, err)
			}

			results[i] = result

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return nil, err
	}

	return results, nil
}

func evaluate(logger *slog.Logger, expectation patternfile.Expectation, calls []core.Call) (Result, error) {
	found, err := core.FindCall(expectation.ExpectedCall, calls)
	if err != nil {
		return Result{}, err
	}

	result := Result{
		Expectation: expectation,
		Found:       found,
		Passed:      found != expectation.Refute,
	}

	if !found {
		// FindCall succeeded on the same patterns, so Explain cannot fail
		result.Mismatches, _ = core.Explain(expectation.ExpectedCall, calls)
	}

	for _, mismatch := range result.Mismatches {
		logger.Debug("candidate did not match",
			"expectation", expectation.Source,
			"call", mismatch.Call.String(),
			"index", mismatch.Index,
			"reason", mismatch.Reason,
		)
	}

	logger.Info("verified",
		"expectation", expectation.Source,
		"expected", expectation.String(),
		"refute", expectation.Refute,
		"passed", result.Passed,
	)

	return result, nil
}
