// Package services implements the business logic layer of the dashboard.
// It sits between the HTTP handlers and the data pipeline, so that the
// pipeline ordering (filter, aggregate, cumulative, chart) lives in one place
// and stays testable without a server.
//
// # Available Services
//
//	- DashboardService: sessions, uploads, filters, charts, KPIs and exports
//	- HealthService: health, readiness, liveness, version and capabilities
//
// # Error Handling
//
// Services return sentinel errors (ErrSessionNotFound, ErrUnknownSheet, ...)
// wrapped with fmt.Errorf, and pass the typed pipeline errors of the
// dataprocessing package through untouched. The HTTP layer alone maps them to
// problem responses.
//
// A missing user selection is not an error: Charts and Export return a result
// whose Status is selection_required together with a message for the user.
//
// # Observability
//
// Every pipeline stage runs inside an OpenTelemetry span and is counted in
// pipeline_runs_total and pipeline_duration_seconds.
package services
