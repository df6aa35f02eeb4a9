package http

import (
	"context"

	"fielddash/internal/services"
	"fielddash/pkg/contracts/domain"
)

// DashboardServiceInterface defines the dashboard operations exposed over HTTP
type DashboardServiceInterface interface {
	CreateSession(ctx context.Context) (*services.SessionView, error)
	GetSession(ctx context.Context, id string) (*services.SessionView, error)
	DeleteSession(ctx context.Context, id string) error

	Upload(ctx context.Context, id string, files []services.UploadFile) (*services.SessionView, error)
	UpdateFilters(ctx context.Context, id string, update services.FiltersUpdate) (*services.SessionView, error)
	ResetFilter(ctx context.Context, id, key string) (*services.SessionView, error)

	Table(ctx context.Context, id, sheet string) (*services.TableView, error)
	Charts(ctx context.Context, id, sheet string) (*services.ChartsResult, error)
	KPIs(ctx context.Context, id, sheet string) (*domain.KPISet, error)
	Export(ctx context.Context, id, sheet string, format services.ExportFormat) (*services.ExportResult, error)
}

// Validator validates request contracts against their struct tags
type Validator interface {
	ValidateStruct(v interface{}) error
}
