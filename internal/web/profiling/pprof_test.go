package profiling

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingMux struct {
	mux      *http.ServeMux
	patterns []string
}

func (m *recordingMux) Get(pattern string, handler http.Handler) {
	m.patterns = append(m.patterns, pattern)
	m.mux.Handle(pattern, handler)
}

func TestRegisterDisabled(t *testing.T) {
	m := &recordingMux{mux: http.NewServeMux()}
	Register(m, Config{})
	assert.Empty(t, m.patterns)
}

func TestRegister(t *testing.T) {
	m := &recordingMux{mux: http.NewServeMux()}
	Register(m, Config{Enabled: true, Path: "/internal/pprof"})

	assert.Contains(t, m.patterns, "/internal/pprof/")
	assert.Contains(t, m.patterns, "/internal/pprof/heap")
	assert.Len(t, m.patterns, 5+len(profiles))

	rec := httptest.NewRecorder()
	m.mux.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/internal/pprof/goroutine?debug=1", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "goroutine")
}

func TestRegisterDefaultPath(t *testing.T) {
	m := &recordingMux{mux: http.NewServeMux()}
	Register(m, Config{Enabled: true})
	assert.Contains(t, m.patterns, DefaultPath+"/cmdline")
}
