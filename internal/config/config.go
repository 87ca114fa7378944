package config

import (
	"fmt"
	"os"
	"sort"
	"time"

	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v2"
)

// EnvPrefix is the namespace of every environment variable read by Load.
const EnvPrefix = "ESTATE"

// Config represents the complete application configuration
type Config struct {
	Server     ServerConfig     `yaml:"server" envconfig:"SERVER"`
	Security   SecurityConfig   `yaml:"security" envconfig:"SECURITY"`
	Logging    LoggingConfig    `yaml:"logging" envconfig:"LOGGING"`
	Paths      PathsConfig      `yaml:"paths" envconfig:"PATHS"`
	WebSocket  WebSocketConfig  `yaml:"websocket" envconfig:"WEBSOCKET"`
	Dataset    DatasetConfig    `yaml:"dataset" envconfig:"DATASET"`
	Prediction PredictionConfig `yaml:"prediction" envconfig:"PREDICTION"`
	Telemetry  TelemetryConfig  `yaml:"telemetry" envconfig:"TELEMETRY"`
}

// ServerConfig contains HTTP server configuration
type ServerConfig struct {
	Port            int           `yaml:"port" envconfig:"PORT"`
	ReadTimeout     time.Duration `yaml:"read_timeout" envconfig:"READ_TIMEOUT"`
	WriteTimeout    time.Duration `yaml:"write_timeout" envconfig:"WRITE_TIMEOUT"`
	IdleTimeout     time.Duration `yaml:"idle_timeout" envconfig:"IDLE_TIMEOUT"`
	MaxHeaderBytes  int           `yaml:"max_header_bytes" envconfig:"MAX_HEADER_BYTES"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout" envconfig:"SHUTDOWN_TIMEOUT"`
	RequestTimeout  time.Duration `yaml:"request_timeout" envconfig:"REQUEST_TIMEOUT"`
}

// SecurityConfig contains security-related configuration
type SecurityConfig struct {
	AllowedOrigins []string        `yaml:"allowed_origins" envconfig:"ALLOWED_ORIGINS"`
	EnableCORS     bool            `yaml:"enable_cors" envconfig:"ENABLE_CORS"`
	RateLimit      RateLimitConfig `yaml:"rate_limit" envconfig:"RATE_LIMIT"`
}

// RateLimitConfig contains rate limiting configuration
type RateLimitConfig struct {
	Enabled bool    `yaml:"enabled" envconfig:"ENABLED"`
	RPS     float64 `yaml:"rps" envconfig:"RPS"`
	Burst   int     `yaml:"burst" envconfig:"BURST"`
}

// LoggingConfig contains logging configuration
type LoggingConfig struct {
	Level    string `yaml:"level" envconfig:"LEVEL"`
	Format   string `yaml:"format" envconfig:"FORMAT"`
	Output   string `yaml:"output" envconfig:"OUTPUT"`
	FilePath string `yaml:"file_path" envconfig:"FILE_PATH"`
}

// PathsConfig contains file system paths configuration.
// Relative entries are resolved against BaseDir, or the executable
// directory when BaseDir is empty.
type PathsConfig struct {
	BaseDir     string `yaml:"base_dir" envconfig:"BASE_DIR"`
	DataDir     string `yaml:"data_dir" envconfig:"DATA_DIR"`
	DatasetFile string `yaml:"dataset_file" envconfig:"DATASET_FILE"`
	ModelFile   string `yaml:"model_file" envconfig:"MODEL_FILE"`
	ExportsDir  string `yaml:"exports_dir" envconfig:"EXPORTS_DIR"`
	LogsDir     string `yaml:"logs_dir" envconfig:"LOGS_DIR"`
}

// WebSocketConfig contains WebSocket configuration
type WebSocketConfig struct {
	ReadBufferSize  int           `yaml:"read_buffer_size" envconfig:"READ_BUFFER_SIZE"`
	WriteBufferSize int           `yaml:"write_buffer_size" envconfig:"WRITE_BUFFER_SIZE"`
	PingPeriod      time.Duration `yaml:"ping_period" envconfig:"PING_PERIOD"`
	PongWait        time.Duration `yaml:"pong_wait" envconfig:"PONG_WAIT"`
	MaxMessageSize  int64         `yaml:"max_message_size" envconfig:"MAX_MESSAGE_SIZE"`
}

// DatasetConfig holds the preparation rules applied to the raw table.
type DatasetConfig struct {
	Sentinels      []string          `yaml:"sentinels" envconfig:"SENTINELS"`
	DropColumns    []string          `yaml:"drop_columns" envconfig:"DROP_COLUMNS"`
	CategoryGroups map[string]string `yaml:"category_groups" envconfig:"CATEGORY_GROUPS"`
	UnknownLabel   string            `yaml:"unknown_label" envconfig:"UNKNOWN_LABEL"`
	PreviewRows    int               `yaml:"preview_rows" envconfig:"PREVIEW_ROWS"`
	HistogramBins  int               `yaml:"histogram_bins" envconfig:"HISTOGRAM_BINS"`
}

// PredictionConfig holds the vocabulary and bounds offered by the prediction form.
type PredictionConfig struct {
	PropertyTypes    []string `yaml:"property_types" envconfig:"PROPERTY_TYPES"`
	ResidentialTypes []string `yaml:"residential_types" envconfig:"RESIDENTIAL_TYPES"`
	MinYear          int      `yaml:"min_year" envconfig:"MIN_YEAR"`
	MaxYear          int      `yaml:"max_year" envconfig:"MAX_YEAR"`
	MaxAssessedValue float64  `yaml:"max_assessed_value" envconfig:"MAX_ASSESSED_VALUE"`
	AssessedStep     float64  `yaml:"assessed_step" envconfig:"ASSESSED_STEP"`
	DefaultAssessed  float64  `yaml:"default_assessed" envconfig:"DEFAULT_ASSESSED"`
	DefaultYear      int      `yaml:"default_year" envconfig:"DEFAULT_YEAR"`
}

// TelemetryConfig selects the OpenTelemetry exporters.
type TelemetryConfig struct {
	Environment    string  `yaml:"environment" envconfig:"ENVIRONMENT"`
	TraceExporter  string  `yaml:"trace_exporter" envconfig:"TRACE_EXPORTER"`
	MetricExporter string  `yaml:"metric_exporter" envconfig:"METRIC_EXPORTER"`
	SampleRatio    float64 `yaml:"sample_ratio" envconfig:"SAMPLE_RATIO"`
}

// CategoryGroup maps every category containing Substring onto Target.
type CategoryGroup struct {
	Substring string
	Target    string
}

// Groups returns the configured category groups ordered by substring so
// that overlapping rules resolve the same way on every run.
func (d DatasetConfig) Groups() []CategoryGroup {
	keys := make([]string, 0, len(d.CategoryGroups))
	for k := range d.CategoryGroups {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	groups := make([]CategoryGroup, 0, len(keys))
	for _, k := range keys {
		groups = append(groups, CategoryGroup{Substring: k, Target: d.CategoryGroups[k]})
	}
	return groups
}

// Load builds the configuration from defaults, the optional YAML file and
// ESTATE_* environment variables, in increasing order of precedence.
func Load() (*Config, error) {
	return LoadFile(getConfigFilePath())
}

// LoadFile is Load with an explicit YAML path. An empty path skips the file layer.
func LoadFile(configFile string) (*Config, error) {
	cfg := Default()

	if configFile != "" {
		if err := loadFromFile(configFile, cfg); err != nil {
			return nil, fmt.Errorf("failed to load config from file: %w", err)
		}
	}

	// Fields without an environment variable keep their file or default value
	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("failed to load config from env: %w", err)
	}

	if err := cfg.validate(); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

// loadFromFile overlays the YAML file onto cfg
func loadFromFile(filePath string, cfg *Config) error {
	data, err := os.ReadFile(filePath)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, cfg)
}

// ResolvePaths resolves the configured paths and makes sure the writable
// directories exist.
func (c *Config) ResolvePaths() (*Paths, error) {
	paths, err := NewPaths(c.Paths)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve paths: %w", err)
	}

	if err := paths.EnsureDirectories(); err != nil {
		return nil, fmt.Errorf("failed to ensure directories: %w", err)
	}

	paths.LogPathResolution()
	return paths, nil
}

// validate validates the configuration
func (c *Config) validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}

	if c.Server.ReadTimeout <= 0 {
		return fmt.Errorf("server read timeout must be positive")
	}

	if c.Server.WriteTimeout <= 0 {
		return fmt.Errorf("server write timeout must be positive")
	}

	if c.Security.EnableCORS && len(c.Security.AllowedOrigins) == 0 {
		return fmt.Errorf("at least one allowed origin must be specified")
	}

	if c.Paths.DatasetFile == "" {
		return fmt.Errorf("dataset file must be specified")
	}

	if c.Paths.ModelFile == "" {
		return fmt.Errorf("model file must be specified")
	}

	if c.Prediction.MinYear > c.Prediction.MaxYear {
		return fmt.Errorf("prediction year range is empty: %d > %d", c.Prediction.MinYear, c.Prediction.MaxYear)
	}

	if c.Prediction.MaxAssessedValue <= 0 {
		return fmt.Errorf("prediction max assessed value must be positive")
	}

	if c.Dataset.HistogramBins <= 0 {
		return fmt.Errorf("histogram bins must be positive")
	}

	// JSON is the only supported log format
	if c.Logging.Format != "json" {
		c.Logging.Format = "json"
	}

	switch c.Logging.Output {
	case "console", "stdout", "stderr", "file", "both":
	default:
		c.Logging.Output = "both"
	}

	if c.Logging.FilePath == "" {
		c.Logging.FilePath = "logs/app.log"
	}

	return nil
}

// getConfigFilePath returns the path to the config file
func getConfigFilePath() string {
	if path := os.Getenv(EnvPrefix + "_CONFIG_FILE"); path != "" {
		return path
	}

	locations := []string{
		"config.yaml",
		"configs/config.yaml",
		"../configs/config.yaml",
	}

	for _, location := range locations {
		if _, err := os.Stat(location); err == nil {
			return location
		}
	}

	return "" // No config file found, use env vars only
}

// Default returns default configuration
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:            8080,
			ReadTimeout:     15 * time.Second,
			WriteTimeout:    30 * time.Second,
			IdleTimeout:     60 * time.Second,
			MaxHeaderBytes:  1 << 20, // 1MB
			ShutdownTimeout: 30 * time.Second,
			RequestTimeout:  DefaultRequestTimeout,
		},
		Security: SecurityConfig{
			AllowedOrigins: []string{"http://localhost:8080"},
			EnableCORS:     true,
			RateLimit: RateLimitConfig{
				Enabled: true,
				RPS:     DefaultRateLimit,
				Burst:   DefaultBurstSize,
			},
		},
		Logging: LoggingConfig{
			Level:    DefaultLogLevel,
			Format:   DefaultLogFormat,
			Output:   "both",
			FilePath: "logs/app.log",
		},
		Paths: PathsConfig{
			DataDir:     DefaultDataDir,
			DatasetFile: DefaultDatasetFile,
			ModelFile:   DefaultModelFile,
			ExportsDir:  DefaultExportsDir,
			LogsDir:     DefaultLogsDir,
		},
		WebSocket: WebSocketConfig{
			ReadBufferSize:  WebSocketReadBufferSize,
			WriteBufferSize: WebSocketWriteBufferSize,
			PingPeriod:      WebSocketPingPeriod,
			PongWait:        WebSocketPongWait,
			MaxMessageSize:  WebSocketMaxMessageSize,
		},
		Dataset: DatasetConfig{
			Sentinels: []string{"-1", "Unknown"},
			DropColumns: []string{
				"Serial Number", "List Year", "Date Recorded", "Town", "Address",
				"Non Use Code", "Assessor Remarks", "OPM remarks", "Location",
			},
			CategoryGroups: map[string]string{"Family": "Family"},
			UnknownLabel:   "Unknown",
			PreviewRows:    DefaultPreviewRows,
			HistogramBins:  DefaultHistogramBins,
		},
		Prediction: PredictionConfig{
			PropertyTypes: []string{
				"Residential", "Condo", "Apartments", "Commercial",
				"Industrial", "Vacant Land", "Public Utility",
			},
			ResidentialTypes: []string{
				"Single Family", "Two Family", "Condo", "Three Family", "Four Family",
			},
			MinYear:          2017,
			MaxYear:          2025,
			MaxAssessedValue: 10_000_000,
			AssessedStep:     1000,
			DefaultAssessed:  250_000,
			DefaultYear:      2022,
		},
		Telemetry: TelemetryConfig{
			Environment:    "development",
			TraceExporter:  "none",
			MetricExporter: "prometheus",
			SampleRatio:    1.0,
		},
	}
}
