package main

import (
	"fmt"
	"os"

	"sqlsubmit/cmd"
	"sqlsubmit/internal/version"
)

// Build-time variables
var (
	buildVersion = "dev"
	commit       = "unknown"
	buildTime    = "unknown"
)

func main() {
	version.Set(buildVersion, commit, buildTime)

	if err := cmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
