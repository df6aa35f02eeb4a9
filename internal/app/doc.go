// Package app wires the dashboard server together and manages its lifecycle.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, config.yaml, FIELDDASH_* environment)
//	2. Initialize logging and OpenTelemetry
//	3. Create the in-memory session store and its expiry sweeper
//	4. Select the chart image rasterizer (chrome, gochart or none)
//	5. Build the dashboard and health services
//	6. Assemble the middleware chain and routes
//	7. Serve until the context is cancelled, then shut down gracefully
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run(ctx)
package app
