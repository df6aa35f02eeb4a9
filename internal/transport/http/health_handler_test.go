package http

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fielddash/internal/services"
	"fielddash/internal/session"
)

func newHealthRouter(store session.Store) http.Handler {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	svc := services.NewHealthService("v0.3.0", "https://example.com/fielddash", "2024-01-01", "build-1", store, nil, logger)
	h := NewHealthHandler(svc, logger)

	r := chi.NewRouter()
	r.Get("/api/health", h.HealthCheck)
	r.Get("/api/health/ready", h.ReadinessCheck)
	r.Get("/api/health/live", h.LivenessCheck)
	r.Get("/api/version", h.Version)
	r.Get("/api/capabilities", h.Capabilities)
	return r
}

func TestHealthHandler(t *testing.T) {
	tests := []struct {
		name           string
		path           string
		store          session.Store
		expectedStatus int
		expectedBody   string
	}{
		{"health", "/api/health", session.NewMemoryStore(), http.StatusOK, `"status":"ok"`},
		{"ready", "/api/health/ready", session.NewMemoryStore(), http.StatusOK, `"status":"ready"`},
		{"not ready", "/api/health/ready", nil, http.StatusServiceUnavailable, `"status":"not_ready"`},
		{"live", "/api/health/live", nil, http.StatusOK, `"status":"alive"`},
		{"version", "/api/version", nil, http.StatusOK, `"version":"v0.3.0"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			newHealthRouter(tt.store).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, tt.path, nil))

			assert.Equal(t, tt.expectedStatus, rec.Code)
			assert.Contains(t, rec.Body.String(), tt.expectedBody)
		})
	}
}

func TestHealthHandler_Capabilities(t *testing.T) {
	rec := httptest.NewRecorder()
	newHealthRouter(session.NewMemoryStore()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/capabilities", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Status string                `json:"status"`
		Data   services.Capabilities `json:"data"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))
	assert.Equal(t, "success", body.Status)
	assert.Equal(t, "none", body.Data.Rasterizer)
	assert.False(t, body.Data.ImagesAvailable)
	assert.Len(t, body.Data.Sheets, 4)
	assert.Contains(t, body.Data.ExportFormats, services.FormatCSV)
}

func TestMetricsHandler(t *testing.T) {
	reg := prometheus.NewRegistry()
	uploads := prometheus.NewCounter(prometheus.CounterOpts{
		Name: "fielddash_test_uploads_total",
		Help: "Uploads seen by the test.",
	})
	reg.MustRegister(uploads)
	uploads.Add(2)

	rec := httptest.NewRecorder()
	NewMetricsHandler(reg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "fielddash_test_uploads_total 2")
}
