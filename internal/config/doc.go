// Package config provides centralized configuration management for fielddash.
//
// # Configuration Sources
//
// Configuration is layered in increasing order of precedence:
//
//	1. Default values (Default)
//	2. YAML file: $FIELDDASH_CONFIG, ./config.yaml or ./configs/config.yaml
//	3. Environment variables
//
// # Environment Variables
//
// Variables are namespaced FIELDDASH_<SECTION>_<KEY>:
//
//	FIELDDASH_SERVER_PORT=8080
//	FIELDDASH_SESSION_TTL=2h
//	FIELDDASH_SESSION_MAX_UPLOAD_SIZE=67108864
//	FIELDDASH_EXPORT_RASTERIZER=gochart
//	FIELDDASH_CHARTS_TICK_COUNT=5
//
// # Path Management
//
// Relative paths are anchored at the executable directory, never the working
// directory (see GetPaths).
package config
