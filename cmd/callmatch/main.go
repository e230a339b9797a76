// callmatch checks recorded call logs against expected call patterns.
package main

import (
	"errors"
	"os"
)

// Build-time variables set via ldflags
var (
	Version = "dev"
)

func main() {
	err := newRootCmd(os.Stdout, os.Stderr).Execute()
	if err == nil {
		return
	}

	if errors.Is(err, errFailed) {
		os.Exit(1)
	}

	os.Exit(2) //nolint:mnd // usage and input errors
}
