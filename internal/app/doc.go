// Package app provides application initialization and lifecycle management for
// the ClassPulse web service. It wires configuration, logging, OpenTelemetry,
// the grading engine, services and HTTP handlers together at startup.
//
// # Initialization Flow
//
//	1. Load configuration (defaults, config.yaml, CLASSPULSE_* environment)
//	2. Initialize slog and OpenTelemetry (Prometheus meter, tracer)
//	3. Build the grading engine from the configured subject list
//	4. Create the analytics and health services
//	5. Mount handlers behind the middleware chain
//	6. Start the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication()
//	if err != nil {
//	    return err
//	}
//	return application.Run()
//
// # Graceful Shutdown
//
// Run blocks until SIGINT or SIGTERM, then drains in-flight requests within
// Server.ShutdownTimeout and flushes telemetry. The package never calls
// os.Exit; main decides the exit code.
package app
