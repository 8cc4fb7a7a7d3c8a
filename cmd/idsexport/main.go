// Command idsexport exports, packages and re-saves InDesign documents
// through InDesign Server.
package main

import (
	"context"
	"os"

	"github.com/charmbracelet/fang"
)

var (
	// Version is set via -ldflags.
	Version = "dev"
	// Commit is set via -ldflags.
	Commit = "unknown"
)

func main() {
	c := newCLI(os.Stdout, os.Stderr, os.Stdin)
	if err := fang.Execute(
		context.Background(),
		newRootCmd(c),
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		os.Exit(1)
	}
}

func versionString() string {
	if Version == "dev" {
		return "dev (built from source)"
	}
	return Version + " (commit: " + Commit + ")"
}
