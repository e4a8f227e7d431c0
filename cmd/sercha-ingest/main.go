// Command sercha-ingest chunks, embeds and indexes documents.
package main

import (
	"os"

	"github.com/custodia-labs/sercha-ingest/internal/adapters/driving/cli"
)

// version is set at build time via -ldflags.
var version = "dev"

func main() {
	cli.SetVersion(version)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}
