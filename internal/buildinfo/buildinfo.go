// Package buildinfo exposes the build identifiers stamped into the binary and
// the runtime identity of a running instance.
package buildinfo

import (
	"runtime"
	"strings"

	"github.com/google/uuid"
)

var (
	// Version information - set at build time
	Version   = "dev"
	GitCommit = "unknown"
	BuildDate = "unknown"
	GoVersion = "unknown"
)

// BuildInfo describes the binary
type BuildInfo struct {
	Version   string `json:"version"`
	GitCommit string `json:"gitCommit"`
	BuildDate string `json:"buildDate"`
	GoVersion string `json:"goVersion"`
}

// Get returns the build information of the running binary
func Get() BuildInfo {
	goVer := GoVersion
	if goVer == "unknown" {
		goVer = runtime.Version()
	}
	return BuildInfo{
		Version:   Version,
		GitCommit: GitCommit,
		BuildDate: BuildDate,
		GoVersion: goVer,
	}
}

// RuntimeInfo identifies a running instance
type RuntimeInfo struct {
	// ID is the component id used when registering with other services
	ID           string
	DataDir      string
	BaseHTTPURL  string
	AppAuthToken string
}

// NewRuntimeInfo creates runtime information. An empty id is replaced by a random UUID.
func NewRuntimeInfo(id, dataDir, baseHTTPURL, appAuthToken string) RuntimeInfo {
	id = strings.TrimSpace(id)
	if id == "" {
		id = uuid.NewString()
	}
	return RuntimeInfo{
		ID:           id,
		DataDir:      dataDir,
		BaseHTTPURL:  strings.TrimRight(baseHTTPURL, "/"),
		AppAuthToken: appAuthToken,
	}
}
