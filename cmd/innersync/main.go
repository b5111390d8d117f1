// Command innersync watches a timetable document and uploads its exports.
package main

import (
	"fmt"
	"os"

	"github.com/gmacarthur/innersync-desktop/internal/adapters/driving/cli"
)

// version is set at build time with -ldflags "-X main.version=...".
var version = "dev"

func main() {
	cli.SetVersion(version)
	cli.SetBootstrap(&cli.Bootstrap{
		OpenSettings: openSettings,
		Build:        buildRuntime,
	})

	if err := cli.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
