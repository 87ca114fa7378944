// Package services implements the business logic layer of the dashboard.
// Handlers call services; services call the dataprocessing and prediction
// packages and own logging, tracing and metrics for each operation.
//
// # Available Services
//
//	- DatasetService: loads and prepares the dataset once, then answers the
//	  filter, aggregation, preview and export queries over the immutable table
//	- PredictionService: runs the loaded model, with optional attribution that
//	  degrades to a warning when unavailable
//	- HealthService: liveness, readiness and version information
//
// # Error Handling
//
// Load failures are returned as *errors.AppError wrapping the pipeline or
// model error so the caller can abort startup with a clear diagnostic.
// Per-request errors are returned unchanged (for example
// *prediction.UnknownCategoryError) for the HTTP layer to map to problem
// details.
//
// # Concurrency
//
// Every service is read-only after construction and safe for concurrent use.
package services
