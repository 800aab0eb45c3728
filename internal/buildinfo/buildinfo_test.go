package buildinfo

import (
	"runtime"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGetFillsGoVersion(t *testing.T) {
	info := Get()

	assert.Equal(t, Version, info.Version)
	assert.Equal(t, runtime.Version(), info.GoVersion)
}

func TestNewRuntimeInfo(t *testing.T) {
	info := NewRuntimeInfo("sdc-1", "/var/data", "http://localhost:18630/", "secret")

	assert.Equal(t, "sdc-1", info.ID)
	assert.Equal(t, "http://localhost:18630", info.BaseHTTPURL)
	assert.Equal(t, "secret", info.AppAuthToken)
}

func TestNewRuntimeInfoGeneratesID(t *testing.T) {
	first := NewRuntimeInfo(" ", "", "", "")
	second := NewRuntimeInfo("", "", "", "")

	_, err := uuid.Parse(first.ID)
	require.NoError(t, err)
	assert.NotEqual(t, first.ID, second.ID)
}
