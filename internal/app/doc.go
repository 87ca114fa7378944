// Package app wires the real estate dashboard together: configuration,
// logging, OpenTelemetry, the dataset and prediction services, and the
// HTTP router.
//
// # Initialization Flow
//
//	1. Load configuration from defaults, the YAML file and ESTATE_* variables
//	2. Initialize logging and observability
//	3. Load the dataset and the model concurrently; either failure is fatal
//	4. Register the dataset gauges and the health service
//	5. Set up handlers and middleware
//	6. Configure the HTTP server
//
// # Usage
//
//	application, err := app.NewApplication(ctx)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	if err := application.Run(); err != nil {
//	    log.Fatal(err)
//	}
//
// # Graceful Shutdown
//
// Run handles SIGINT and SIGTERM: in-flight requests are drained, the
// dataset gauges are unregistered and the telemetry providers are flushed.
// The package never calls os.Exit; main decides the exit code.
package app
