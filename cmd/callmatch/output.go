package main

import (
	"io"

	"github.com/fatih/color"

	"github.com/toejough/callmatch/internal/config"
	"github.com/toejough/callmatch/internal/verify"
)

// printer renders verification results.
type printer struct {
	w    io.Writer
	pass *color.Color
	fail *color.Color
	dim  *color.Color
}

func newPrinter(w io.Writer, mode string) printer {
	p := printer{
		w:    w,
		pass: color.New(color.FgGreen, color.Bold),
		fail: color.New(color.FgRed, color.Bold),
		dim:  color.New(color.Faint),
	}

	for _, c := range []*color.Color{p.pass, p.fail, p.dim} {
		switch mode {
		case config.ColorOn:
			c.EnableColor()
		case config.ColorOff:
			c.DisableColor()
		}
	}

	return p
}

// results prints one line per result, plus its mismatches when the result failed or
// verbose is set. It returns the number of failed results.
func (p printer) results(results []verify.Result, verbose bool) int {
	failed := 0

	for _, result := range results {
		status := p.pass.Sprint("PASS")
		if !result.Passed {
			status = p.fail.Sprint("FAIL")
			failed++
		}

		verb := "called"
		if result.Expectation.Refute {
			verb = "not called"
		}

		writeLine(p.w, "%s %s %s %s", status, result.Expectation.String(), verb, p.dim.Sprint(result.Expectation.Source))

		if result.Passed && !verbose {
			continue
		}

		if result.Found {
			writeLine(p.w, "    matched a recorded call")
			continue
		}

		if len(result.Mismatches) == 0 {
			writeLine(p.w, "    no %s calls recorded", result.Expectation.Name)
		}

		for _, mismatch := range result.Mismatches {
			writeLine(p.w, "    %s", mismatch.String())
		}
	}

	writeLine(p.w, "%d passed, %d failed", len(results)-failed, failed)

	return failed
}
