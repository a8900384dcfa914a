package http

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classpulse/internal/config"
	"classpulse/internal/services"
	"classpulse/pkg/contracts/domain"
)

func TestHealthHandler_Endpoints(t *testing.T) {
	paths := config.NewPaths(t.TempDir(), config.PathsConfig{})
	svc := services.NewHealthService("v1.0.0-test", "2026-01-01", paths, domain.DefaultSubjects, testLogger())
	h := NewHealthHandler(svc, testLogger())

	tests := []struct {
		name           string
		path           string
		handler        http.HandlerFunc
		expectedStatus string
	}{
		{name: "health", path: "/", handler: h.HealthCheck, expectedStatus: services.StatusOK},
		{name: "ready", path: "/ready", handler: h.ReadinessCheck, expectedStatus: services.StatusReady},
		{name: "live", path: "/live", handler: h.LivenessCheck, expectedStatus: services.StatusAlive},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			h.Routes().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			require.Equal(t, http.StatusOK, rec.Code)
			var status services.HealthStatus
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
			assert.Equal(t, tt.expectedStatus, status.Status)
			assert.Equal(t, "v1.0.0-test", status.Version)
		})
	}
}

func TestHealthHandler_NotReady(t *testing.T) {
	base := t.TempDir()
	// A regular file where the reports directory should be
	blocker := filepath.Join(base, "reports")
	require.NoError(t, os.WriteFile(blocker, []byte("x"), 0644))

	paths := config.NewPaths(base, config.PathsConfig{})
	svc := services.NewHealthService("v1.0.0-test", "", paths, domain.DefaultSubjects, testLogger())
	h := NewHealthHandler(svc, testLogger())

	rec := httptest.NewRecorder()
	h.ReadinessCheck(rec, httptest.NewRequest(http.MethodGet, "/api/health/ready", nil))

	assert.Equal(t, http.StatusServiceUnavailable, rec.Code)
	var status services.HealthStatus
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &status))
	assert.Equal(t, services.StatusNotReady, status.Status)
	assert.Equal(t, services.StatusNotReady, status.Services["reports"].Status)
	assert.Equal(t, services.StatusReady, status.Services["analytics"].Status)
}

func TestHealthHandler_Version(t *testing.T) {
	svc := services.NewHealthService("v1.0.0-test", "2026-01-01", nil, domain.DefaultSubjects, testLogger())
	h := NewHealthHandler(svc, testLogger())

	rec := httptest.NewRecorder()
	h.Version(rec, httptest.NewRequest(http.MethodGet, "/api/version", nil))

	require.Equal(t, http.StatusOK, rec.Code)
	var body map[string]interface{}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, config.AppName, body["name"])
	assert.Equal(t, "v1.0.0-test", body["version"])
	assert.Equal(t, "2026-01-01", body["build_time"])
}
