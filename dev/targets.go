//go:build targ

package main

import (
	"bytes"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	"github.com/akedrou/textdiff"
	"github.com/toejough/go-reorder"
	"github.com/toejough/targ"
	"github.com/toejough/targ/sh"
)

// Build builds the local callmatch binary.
func Build() error {
	fmt.Println("Building callmatch...")

	if err := os.MkdirAll("bin", 0o755); err != nil {
		return fmt.Errorf("failed to create bin directory: %w", err)
	}

	return sh.Run("go", "build", "-o", "bin/callmatch", "./cmd/callmatch")
}

// Check runs all checks & fixes on the code, in order of correctness.
func Check() error {
	fmt.Println("Checking...")

	return targ.Deps(
		Tidy,          // clean up the module dependencies
		CheckCoverage, // does our code work?
		ReorderDecls,  // linter will yell about declaration order if not correct
		Lint,
	)
}

// CheckCoverage fails when any function is below the coverage floor, listing each one.
// cmd/callmatch/main.go only wires os.Exit and is skipped.
func CheckCoverage() error {
	fmt.Println("Checking coverage...")

	if err := targ.Deps(Test); err != nil {
		return err
	}

	out, err := output("go", "tool", "cover", "-func=coverage.out")
	if err != nil {
		return err
	}

	const floor = 80.0

	percent := regexp.MustCompile(`(\d+\.\d)%$`)
	checked := 0

	var low []string

	for _, line := range strings.Split(out, "\n") {
		match := percent.FindStringSubmatch(line)
		if match == nil || strings.HasPrefix(line, "total:") || strings.Contains(line, "cmd/callmatch/main.go") {
			continue
		}

		value, err := strconv.ParseFloat(match[1], 64)
		if err != nil {
			return fmt.Errorf("bad coverage line %q: %w", line, err)
		}

		checked++

		if value < floor {
			low = append(low, line)
		}
	}

	if checked == 0 {
		return errors.New("no coverage data")
	}

	if len(low) > 0 {
		return fmt.Errorf("%d of %d functions below %.0f%% coverage:\n  %s", len(low), checked, floor, strings.Join(low, "\n  "))
	}

	fmt.Printf("All %d functions at or above %.0f%% coverage.\n", checked, floor)

	return nil
}

// Lint lints the codebase.
func Lint() error {
	fmt.Println("Linting...")
	return sh.Run("golangci-lint", "run", "./...")
}

// Mutate runs the mutation tests.
func Mutate() error {
	fmt.Println("Running mutation tests...")

	if err := targ.Deps(Test); err != nil {
		return err
	}

	return sh.Run(
		"go",
		"test",
		"-timeout=6000s",
		"-tags=mutation",
		"-ooze.v",
		"./dev/...",
		"-run=TestMutation",
	)
}

// ReorderDecls reorders declarations in Go files per conventions.
func ReorderDecls() error {
	fmt.Println("Reordering declarations...")

	reordered := 0

	err := eachReorderable(func(path, content, ordered string) error {
		if err := os.WriteFile(path, []byte(ordered), 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", path, err)
		}

		fmt.Printf("  Reordered: %s\n", path)
		reordered++

		return nil
	})
	if err != nil {
		return err
	}

	fmt.Printf("Reordered %d file(s).\n", reordered)

	return nil
}

// ReorderDeclsCheck reports the files that need reordering without modifying them.
func ReorderDeclsCheck() error {
	fmt.Println("Checking declaration order...")

	outOfOrder := 0

	err := eachReorderable(func(path, content, ordered string) error {
		outOfOrder++

		fmt.Printf("\n%s\n", textdiff.Unified(path+" (current)", path+" (reordered)", content, ordered))

		return nil
	})
	if err != nil {
		return err
	}

	if outOfOrder > 0 {
		return fmt.Errorf("%d file(s) need reordering; run 'targ reorder-decls' to fix", outOfOrder)
	}

	fmt.Println("All files are correctly ordered.")

	return nil
}

// Test runs the unit tests with the race detector and writes coverage.out.
func Test() error {
	fmt.Println("Running unit tests...")

	return sh.Run(
		"go",
		"test",
		"-timeout=2m",
		"-race",
		"-count=1",
		"-coverprofile=coverage.out",
		"-coverpkg=./...",
		"./...",
	)
}

// Tidy tidies up go.mod.
func Tidy() error {
	fmt.Println("Tidying go.mod...")
	return sh.Run("go", "mod", "tidy")
}

// eachReorderable calls fn for every Go source whose declarations are out of order.
// Directories starting with "_" or "." and the bin directory are skipped.
func eachReorderable(fn func(path, content, ordered string) error) error {
	return filepath.WalkDir(".", func(path string, entry os.DirEntry, err error) error {
		if err != nil {
			return fmt.Errorf("unable to walk %s: %w", path, err)
		}

		if entry.IsDir() {
			name := entry.Name()
			if path != "." && (strings.HasPrefix(name, "_") || strings.HasPrefix(name, ".") || name == "bin") {
				return filepath.SkipDir
			}

			return nil
		}

		if filepath.Ext(path) != ".go" {
			return nil
		}

		content, err := os.ReadFile(path)
		if err != nil {
			return fmt.Errorf("failed to read %s: %w", path, err)
		}

		ordered, err := reorder.Source(string(content))
		if err != nil {
			fmt.Printf("Warning: failed to reorder %s: %v\n", path, err)

			return nil
		}

		if ordered == string(content) {
			return nil
		}

		return fn(path, string(content), ordered)
	})
}

// output runs a command and captures stdout only (stderr goes to os.Stderr).
func output(command string, args ...string) (string, error) {
	buf := &bytes.Buffer{}
	cmd := exec.Command(command, args...)
	cmd.Stdin = os.Stdin
	cmd.Stdout = buf
	cmd.Stderr = os.Stderr
	err := cmd.Run()

	return strings.TrimSuffix(buf.String(), "\n"), err
}
