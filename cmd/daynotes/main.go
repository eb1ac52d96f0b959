package main

import (
	"os"

	"github.com/runnerr0/daynotes/internal/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	// The parser prints its own errors.
	if err := cli.Run(version); err != nil {
		os.Exit(1)
	}
}
