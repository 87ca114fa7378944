package config

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
)

// Paths contains the resolved application paths.
// Every entry is absolute once NewPaths returns.
type Paths struct {
	BaseDir     string
	DataDir     string
	DatasetFile string
	ModelFile   string
	ExportsDir  string
	LogsDir     string
}

// NewPaths resolves cfg against its base directory. An empty BaseDir means
// the directory holding the running executable.
func NewPaths(cfg PathsConfig) (*Paths, error) {
	base := cfg.BaseDir
	if base == "" {
		exeDir, err := executableDir()
		if err != nil {
			return nil, err
		}
		base = exeDir
	}

	base, err := filepath.Abs(base)
	if err != nil {
		return nil, fmt.Errorf("failed to resolve base directory: %w", err)
	}

	dataDir := resolve(base, cfg.DataDir)

	return &Paths{
		BaseDir:     base,
		DataDir:     dataDir,
		DatasetFile: resolve(dataDir, cfg.DatasetFile),
		ModelFile:   resolve(dataDir, cfg.ModelFile),
		ExportsDir:  resolve(base, cfg.ExportsDir),
		LogsDir:     resolve(base, cfg.LogsDir),
	}, nil
}

// executableDir returns the directory containing the executable with symlinks resolved
func executableDir() (string, error) {
	exe, err := os.Executable()
	if err != nil {
		return "", fmt.Errorf("failed to get executable path: %v", err)
	}

	exe, err = filepath.EvalSymlinks(exe)
	if err != nil {
		return "", fmt.Errorf("failed to resolve executable symlinks: %v", err)
	}

	return filepath.Dir(exe), nil
}

// resolve joins path onto dir unless path is already absolute
func resolve(dir, path string) string {
	if path == "" {
		return dir
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(dir, path)
}

// EnsureDirectories creates the writable directories if they don't exist.
// The data directory is read-only input and is not created.
func (p *Paths) EnsureDirectories() error {
	directories := []string{
		p.ExportsDir,
		p.LogsDir,
	}

	logger := slog.Default()

	for _, dir := range directories {
		if err := os.MkdirAll(dir, 0755); err != nil {
			return fmt.Errorf("failed to create directory %s: %v", dir, err)
		}
		logger.Debug("Ensured directory exists", slog.String("directory", dir))
	}

	return nil
}

// GetExportPath returns the path for an export file
func (p *Paths) GetExportPath(filename string) string {
	return filepath.Join(p.ExportsDir, filename)
}

// GetLogPath returns the path for a log file
func (p *Paths) GetLogPath(filename string) string {
	return filepath.Join(p.LogsDir, filename)
}

// FileExists checks if a file exists
func FileExists(path string) bool {
	_, err := os.Stat(path)
	return !os.IsNotExist(err)
}

// ValidateRequiredFiles checks that the dataset and model artifact are present
func (p *Paths) ValidateRequiredFiles() error {
	if !FileExists(p.DatasetFile) {
		return fmt.Errorf("dataset file missing: %s", p.DatasetFile)
	}
	if !FileExists(p.ModelFile) {
		return fmt.Errorf("model file missing: %s", p.ModelFile)
	}
	return nil
}

// LogPathResolution logs the resolved paths for debugging
func (p *Paths) LogPathResolution() {
	slog.Default().Info("Path resolution summary",
		slog.Group("directories",
			slog.String("base", p.BaseDir),
			slog.String("data", p.DataDir),
			slog.String("exports", p.ExportsDir),
			slog.String("logs", p.LogsDir),
		),
		slog.Group("inputs",
			slog.String("dataset", p.DatasetFile),
			slog.Bool("dataset_exists", FileExists(p.DatasetFile)),
			slog.String("model", p.ModelFile),
			slog.Bool("model_exists", FileExists(p.ModelFile)),
		))
}
