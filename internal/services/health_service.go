package services

import (
	"context"
	"fmt"
	"log/slog"
	"runtime"
	"time"

	"fielddash/internal/exporter"
	"fielddash/internal/session"
	"fielddash/pkg/contracts"
	"fielddash/pkg/contracts/domain"
)

// HealthService provides health check functionality
type HealthService struct {
	version    string
	repoURL    string
	buildTime  string
	buildID    string
	store      session.Store
	rasterizer exporter.Rasterizer
	startTime  time.Time
	logger     *slog.Logger
}

// HealthStatus represents the health status response
type HealthStatus struct {
	Status    string                 `json:"status"`
	Timestamp time.Time              `json:"timestamp"`
	Version   string                 `json:"version"`
	Runtime   map[string]interface{} `json:"runtime,omitempty"`
	Services  map[string]interface{} `json:"services,omitempty"`
}

// ServiceHealth represents individual service health
type ServiceHealth struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
	Uptime  string `json:"uptime,omitempty"`
}

// Capabilities describes what this server can produce
type Capabilities struct {
	Sheets          []domain.SheetSchema `json:"sheets"`
	Granularities   []domain.Granularity `json:"granularities"`
	ExportFormats   []ExportFormat       `json:"export_formats"`
	Rasterizer      string               `json:"rasterizer"`
	ImagesAvailable bool                 `json:"images_available"`
	FilterKeys      []session.FilterKey  `json:"filter_keys"`
}

// NewHealthService creates a new health service
func NewHealthService(version, repoURL, buildTime, buildID string, store session.Store, rasterizer exporter.Rasterizer, logger *slog.Logger) *HealthService {
	if logger == nil {
		logger = slog.Default()
	}
	if rasterizer == nil {
		rasterizer = exporter.Unavailable{}
	}

	logger.Info("HealthService initialized",
		slog.String("version", version),
		slog.String("repo_url", repoURL),
		slog.String("build_time", buildTime),
		slog.String("build_id", buildID))

	return &HealthService{
		version:    version,
		repoURL:    repoURL,
		buildTime:  buildTime,
		buildID:    buildID,
		store:      store,
		rasterizer: rasterizer,
		startTime:  time.Now(),
		logger:     logger,
	}
}

// HealthCheck returns overall health status
func (hs *HealthService) HealthCheck(ctx context.Context) HealthStatus {
	hs.logger.Debug("HealthCheck: performing health check",
		slog.String("version", hs.version),
		slog.String("uptime", time.Since(hs.startTime).String()))

	return HealthStatus{
		Status:    "ok",
		Timestamp: time.Now(),
		Version:   hs.version,
	}
}

// ReadinessCheck returns readiness status
func (hs *HealthService) ReadinessCheck(ctx context.Context) HealthStatus {
	status := HealthStatus{
		Status:    "ready",
		Timestamp: time.Now(),
		Version:   hs.version,
		Services:  make(map[string]interface{}),
	}

	status.Services["sessions"] = hs.checkSessionHealth()
	status.Services["images"] = hs.checkImageHealth()

	// image export degrades to a notice, so only the session store gates readiness
	if sh, ok := status.Services["sessions"].(ServiceHealth); ok && sh.Status != "ready" {
		status.Status = "not_ready"
	}

	return status
}

// LivenessCheck returns liveness status
func (hs *HealthService) LivenessCheck(ctx context.Context) HealthStatus {
	return HealthStatus{
		Status:    "alive",
		Timestamp: time.Now(),
		Version:   hs.version,
		Runtime: map[string]interface{}{
			"uptime":     time.Since(hs.startTime).Seconds(),
			"go_version": runtime.Version(),
			"goroutines": runtime.NumGoroutine(),
		},
	}
}

// Version returns version information
func (hs *HealthService) Version() map[string]interface{} {
	result := map[string]interface{}{
		"version":      hs.version,
		"api_version":  contracts.APIVersion,
		"commit":       contracts.Revision(),
		"go_version":   runtime.Version(),
		"os":           runtime.GOOS,
		"arch":         runtime.GOARCH,
		"repo_url":     hs.repoURL,
		"uptime":       time.Since(hs.startTime).Seconds(),
		"start_time":   hs.startTime.Format(time.RFC3339),
		"current_time": time.Now().Format(time.RFC3339),
	}

	if hs.buildTime != "" {
		result["build_time"] = hs.buildTime
	}
	if hs.buildID != "" {
		result["build_id"] = hs.buildID
	}

	return result
}

// Capabilities lists the supported sheets, granularities and export formats
func (hs *HealthService) Capabilities(ctx context.Context) Capabilities {
	return Capabilities{
		Sheets:          domain.Schemas(),
		Granularities:   domain.Granularities(),
		ExportFormats:   ExportFormats(),
		Rasterizer:      hs.rasterizer.Name(),
		ImagesAvailable: hs.rasterizer.Available(),
		FilterKeys:      session.FilterKeys(),
	}
}

func (hs *HealthService) checkSessionHealth() ServiceHealth {
	if hs.store == nil {
		return ServiceHealth{
			Status:  "not_ready",
			Message: "session store not initialized",
		}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("%d active sessions", hs.store.Len()),
		Uptime:  time.Since(hs.startTime).String(),
	}
}

func (hs *HealthService) checkImageHealth() ServiceHealth {
	if !hs.rasterizer.Available() {
		return ServiceHealth{
			Status:  "degraded",
			Message: "image export unavailable",
		}
	}
	return ServiceHealth{
		Status:  "ready",
		Message: fmt.Sprintf("image export via %s", hs.rasterizer.Name()),
	}
}
