package config

import "time"

// Application constants
const (
	// Application Info
	AppName    = "Real Estate Insights"
	AppVersion = "1.0.0"
	AppVendor  = "Isna Ayustin"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Timeouts
	DefaultRequestTimeout = 60 * time.Second
	StartupLoadTimeout    = 2 * time.Minute

	// WebSocket
	WebSocketPingPeriod      = 30 * time.Second
	WebSocketPongWait        = 60 * time.Second
	WebSocketWriteWait       = 10 * time.Second
	WebSocketReadBufferSize  = 1024
	WebSocketWriteBufferSize = 1024
	WebSocketMaxMessageSize  = 4096

	// File Paths (relative to the base directory)
	DefaultDataDir     = "data"
	DefaultLogsDir     = "logs"
	DefaultExportsDir  = "data/exports"
	DefaultDatasetFile = "real_estate_sample_30k.csv"
	DefaultModelFile   = "real_estate_model.json"

	// Dashboard
	DefaultPreviewRows   = 5
	MaxPreviewRows       = 500
	DefaultHistogramBins = 50
	MaxHistogramBins     = 500

	// Log Settings
	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"
)

// API Endpoints
const (
	APIBasePath          = "/api"
	HealthEndpoint       = "/api/health"
	EDAEndpoint          = "/api/eda"
	PredictionEndpoint   = "/api/prediction"
	PagesEndpoint        = "/api/pages"
	MetricsEndpoint      = "/metrics"
	WebSocketPredictPath = "/ws/predict"
)
