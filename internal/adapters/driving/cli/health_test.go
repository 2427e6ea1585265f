package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/sercha-rag/internal/core/ports/driving"
)

func TestHealthCmd_Healthy(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetArgs([]string{"health"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	require.NoError(t, err)
	assert.Contains(t, buf.String(), "store")
	assert.Contains(t, buf.String(), "ok")
}

func TestHealthCmd_UnhealthyFails(t *testing.T) {
	cleanup := setupTestServices()
	defer cleanup()
	healthService = &mockHealthService{report: driving.HealthReport{
		Healthy: false,
		Components: []driving.ComponentHealth{
			{Name: "store", OK: true},
			{Name: "completion", OK: false, Detail: "not configured"},
		},
	}}

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"health", "--json"})
	defer func() {
		rootCmd.SetArgs(nil)
		healthJSON = false
	}()

	err := rootCmd.Execute()

	require.Error(t, err)
	assert.Contains(t, err.Error(), "unhealthy")
	assert.Contains(t, buf.String(), `"healthy": false`)
	assert.Contains(t, buf.String(), `"detail": "not configured"`)
}

func TestHealthCmd_ServiceNotConfigured(t *testing.T) {
	oldService := healthService
	healthService = nil
	defer func() {
		healthService = oldService
	}()

	buf := new(bytes.Buffer)
	rootCmd.SetOut(buf)
	rootCmd.SetErr(buf)
	rootCmd.SetArgs([]string{"health"})
	defer func() {
		rootCmd.SetArgs(nil)
	}()

	err := rootCmd.Execute()

	assert.Error(t, err)
	assert.Contains(t, err.Error(), "health service not configured")
}
