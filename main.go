// Package main is the entry point for the fleetctl CLI
package main

import (
	"os"

	"github.com/fleetpass/fleetctl/cmd"
)

// version, commit and buildTime are set at build time via ldflags
var (
	version   = "dev"
	commit    = "unknown"
	buildTime = "unknown"
)

func main() {
	cmd.SetVersion(version)
	cmd.SetBuildInfo(commit, buildTime)
	if err := cmd.Execute(); err != nil {
		cmd.ReportError(err)
		os.Exit(cmd.ExitCode(err))
	}
}
