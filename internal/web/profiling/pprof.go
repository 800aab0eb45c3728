// Package profiling exposes the pprof endpoints of a running instance.
// They reveal goroutine stacks and memory contents, so they are only mounted
// behind authentication and only when enabled.
package profiling

import (
	"net/http"
	"net/http/pprof"
	"runtime"
)

// DefaultPath is the route prefix of the pprof endpoints
const DefaultPath = "/debug/pprof"

// Config holds profiling configuration
type Config struct {
	Enabled bool   `mapstructure:"enabled"`
	Path    string `mapstructure:"path"`
	// BlockRate is passed to runtime.SetBlockProfileRate; 0 leaves it unchanged
	BlockRate int `mapstructure:"block_rate"`
	// MutexFraction is passed to runtime.SetMutexProfileFraction; 0 leaves it unchanged
	MutexFraction int `mapstructure:"mutex_fraction"`
}

// Registrar is the part of a router the endpoints are mounted on
type Registrar interface {
	Get(pattern string, handler http.Handler)
}

// profiles are served by pprof.Handler
var profiles = []string{"allocs", "block", "goroutine", "heap", "mutex", "threadcreate"}

// Register mounts the pprof endpoints below cfg.Path. It does nothing when disabled.
func Register(r Registrar, cfg Config) {
	if !cfg.Enabled {
		return
	}
	path := cfg.Path
	if path == "" {
		path = DefaultPath
	}

	if cfg.BlockRate > 0 {
		runtime.SetBlockProfileRate(cfg.BlockRate)
	}
	if cfg.MutexFraction > 0 {
		runtime.SetMutexProfileFraction(cfg.MutexFraction)
	}

	r.Get(path+"/", http.HandlerFunc(pprof.Index))
	r.Get(path+"/cmdline", http.HandlerFunc(pprof.Cmdline))
	r.Get(path+"/profile", http.HandlerFunc(pprof.Profile))
	r.Get(path+"/symbol", http.HandlerFunc(pprof.Symbol))
	r.Get(path+"/trace", http.HandlerFunc(pprof.Trace))
	for _, name := range profiles {
		r.Get(path+"/"+name, pprof.Handler(name))
	}
}
