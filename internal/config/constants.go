package config

import "time"

// Application constants
const (
	AppName = "fielddash"

	DefaultPort           = 8080
	DefaultRequestTimeout = 90 * time.Second

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Sessions
	DefaultSessionTTL    = 2 * time.Hour
	DefaultSweepInterval = 5 * time.Minute
	DefaultMaxUploadSize = 64 << 20 // 64MB across all files of one upload

	// Image export
	DefaultRasterTimeout     = 30 * time.Second
	DefaultImageWidth        = 1200
	DefaultImageHeight       = 600
	DefaultRasterConcurrency = 2

	// Chart presentation
	DefaultTickCount      = 5
	DefaultChartPadding   = 0.08
	DefaultPrimaryColor   = "#156082"
	DefaultSecondaryColor = "#c44d15"

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
	DefaultLogsDir   = "logs"
	DefaultLogFile   = "fielddash.log"

	// API Endpoints
	APIBasePath      = "/api"
	SessionsEndpoint = "/api/sessions"
	HealthEndpoint   = "/api/health"
	MetricsEndpoint  = "/metrics"
)
