// Package main is the entry point for the mcpm CLI.
package main

import (
	"fmt"
	"os"

	"github.com/thoreinstein/mcpm/cmd/mcpm/commands"
	"github.com/thoreinstein/mcpm/internal/errors"
)

func main() {
	err := commands.Execute()
	if err == nil {
		return
	}

	var exitErr *errors.ExitError
	if errors.As(err, &exitErr) && exitErr.Err == nil {
		// Status-only exit (doctor findings): output was already printed.
		os.Exit(exitErr.Code)
	}

	fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	if errors.As(err, &exitErr) && exitErr.Suggestion != "" {
		fmt.Fprintln(os.Stderr, exitErr.Suggestion)
	}
	os.Exit(errors.ExitCode(err))
}
