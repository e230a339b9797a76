package main

import (
	"errors"
	"fmt"
	"io"
	"path/filepath"
	"strings"

	"github.com/bmatcuk/doublestar/v4"
	"github.com/spf13/cobra"

	"github.com/toejough/callmatch/internal/logging"
	"github.com/toejough/callmatch/internal/patternfile"
	"github.com/toejough/callmatch/internal/verify"
)

// errFailed is returned when at least one expectation did not pass.
var errFailed = errors.New("verification failed")

var errNoExpectations = errors.New("no expectation files matched")

type verifyOptions struct {
	logPath     string
	expectGlobs []string
	concurrency int
}

// newVerifyCmd builds "verify", or "explain" when explain is set. explain prints every
// mismatch and never fails on unmatched expectations.
func newVerifyCmd(opts *options, explain bool) *cobra.Command {
	vopts := &verifyOptions{}

	cmd := &cobra.Command{
		Use:   "verify",
		Short: "Check that the call log satisfies every expectation",
		Example: `  callmatch verify --log calls.yaml --expect 'expectations/**/*.yaml'
  callmatch verify --log calls.json --expect add.yaml --expect echo.yaml`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			return runVerify(cmd, opts, vopts, explain)
		},
	}

	if explain {
		cmd.Use = "explain"
		cmd.Short = "Show why each expectation does or does not match the call log"
		cmd.Example = `  callmatch explain --log calls.yaml --expect add.yaml`
	}

	flags := cmd.Flags()
	flags.StringVarP(&vopts.logPath, "log", "l", "", "recorded call log document")
	flags.StringArrayVarP(&vopts.expectGlobs, "expect", "e", nil, "expectations documents (doublestar globs, repeatable)")
	flags.IntVar(&vopts.concurrency, "concurrency", 0, "expectations evaluated at once (default GOMAXPROCS)")

	_ = cmd.MarkFlagRequired("log")
	_ = cmd.MarkFlagRequired("expect")

	return cmd
}

func runVerify(cmd *cobra.Command, opts *options, vopts *verifyOptions, explain bool) error {
	cfg, err := opts.settings()
	if err != nil {
		return err
	}

	format, err := patternfile.ParseFormat(cfg.Input.Format)
	if err != nil {
		return err
	}

	logger := logging.New(loggerFor(cfg, cmd.ErrOrStderr()))

	calls, err := patternfile.ReadCalls(vopts.logPath, format)
	if err != nil {
		return err
	}

	logger.Debug("loaded call log", "path", vopts.logPath, "calls", len(calls))

	paths, err := expandGlobs(vopts.expectGlobs)
	if err != nil {
		return err
	}

	var expectations []patternfile.Expectation

	for _, path := range paths {
		loaded, err := patternfile.ReadExpectations(path, format)
		if err != nil {
			return err
		}

		logger.Debug("loaded expectations", "path", path, "expectations", len(loaded))

		expectations = append(expectations, loaded...)
	}

	runner := verify.Runner{Logger: logger, Concurrency: vopts.concurrency}

	results, err := runner.Run(cmd.Context(), calls, expectations)
	if err != nil {
		return err
	}

	out := newPrinter(cmd.OutOrStdout(), cfg.Output.Color)

	failed := out.results(results, explain)
	if explain || failed == 0 {
		return nil
	}

	return fmt.Errorf("%w: %d of %d expectations", errFailed, failed, len(results))
}

// expandGlobs resolves each pattern with doublestar. A pattern without glob syntax is
// kept as is so that a missing file is reported by the reader.
func expandGlobs(patterns []string) ([]string, error) {
	seen := make(map[string]bool)

	var paths []string

	for _, pattern := range patterns {
		matches, err := doublestar.FilepathGlob(pattern)
		if err != nil {
			return nil, fmt.Errorf("expanding %q: %w", pattern, err)
		}

		if len(matches) == 0 && !hasMeta(pattern) {
			matches = []string{pattern}
		}

		for _, path := range matches {
			path = filepath.Clean(path)
			if !seen[path] {
				seen[path] = true
				paths = append(paths, path)
			}
		}
	}

	if len(paths) == 0 {
		return nil, fmt.Errorf("%w: %v", errNoExpectations, patterns)
	}

	return paths, nil
}

func hasMeta(pattern string) bool {
	return strings.ContainsAny(pattern, "*?[{")
}

// writeLine writes one line, dropping write errors on the terminal.
func writeLine(w io.Writer, format string, args ...any) {
	_, _ = fmt.Fprintf(w, format+"\n", args...)
}
