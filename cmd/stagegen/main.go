// Command stagegen validates pipeline stage declarations, writes their
// descriptor artifacts and serves them together with the pipeline state.
//
// Build identifiers are stamped with:
//
//	go build -ldflags "-X github.com/pipelinekit/stagegen/internal/buildinfo.Version=1.0.0 \
//	  -X github.com/pipelinekit/stagegen/internal/buildinfo.GitCommit=$(git rev-parse --short HEAD) \
//	  -X github.com/pipelinekit/stagegen/internal/buildinfo.BuildDate=$(date -u +%Y-%m-%dT%H:%M:%SZ)" \
//	  ./cmd/stagegen
package main

import (
	"os"

	"github.com/pipelinekit/stagegen/internal/cli/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		os.Exit(1)
	}
}
