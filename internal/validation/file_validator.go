package validation

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
)

// datasetExtensions are the transactions file formats the parser reads
var datasetExtensions = map[string]bool{".csv": true, ".xlsx": true}

// FileValidator checks input and output paths before a command does any work
type FileValidator struct {
	logger *slog.Logger
}

// NewFileValidator creates a new file validator
func NewFileValidator(logger *slog.Logger) *FileValidator {
	if logger == nil {
		logger = slog.Default()
	}
	return &FileValidator{
		logger: logger,
	}
}

// ValidateFile checks that path is a readable regular file
func (v *FileValidator) ValidateFile(kind, path string) error {
	info, err := os.Stat(path)
	if os.IsNotExist(err) {
		v.logger.Error("File does not exist",
			slog.String("kind", kind),
			slog.String("file", path))
		return fmt.Errorf("%s %s does not exist", kind, path)
	}
	if err != nil {
		return fmt.Errorf("failed to stat %s %s: %w", kind, path, err)
	}
	if info.IsDir() {
		return fmt.Errorf("%s %s is a directory, not a file", kind, path)
	}

	file, err := os.Open(path)
	if err != nil {
		v.logger.Error("File is not readable",
			slog.String("file", path),
			slog.String("error", err.Error()))
		return fmt.Errorf("%s %s is not readable: %w", kind, path, err)
	}
	file.Close()

	v.logger.Debug("File validated",
		slog.String("kind", kind),
		slog.String("file", path),
		slog.Int64("size", info.Size()))
	return nil
}

// ValidateDatasetFile checks a transactions file: it must exist and be a
// CSV or XLSX file that is not an Excel lock file.
func (v *FileValidator) ValidateDatasetFile(path string) error {
	if err := v.ValidateFile("dataset file", path); err != nil {
		return err
	}

	ext := strings.ToLower(filepath.Ext(path))
	if !datasetExtensions[ext] {
		return fmt.Errorf("dataset file %s must be .csv or .xlsx (got %q)", path, ext)
	}
	if strings.HasPrefix(filepath.Base(path), "~$") {
		v.logger.Warn("Refusing temporary Excel file", slog.String("file", path))
		return fmt.Errorf("dataset file %s is a temporary Excel file", path)
	}
	return nil
}

// ValidateModelFile checks a model artifact: a non-empty JSON file
func (v *FileValidator) ValidateModelFile(path string) error {
	if err := v.ValidateFile("model file", path); err != nil {
		return err
	}

	if ext := strings.ToLower(filepath.Ext(path)); ext != ".json" {
		return fmt.Errorf("model file %s must be .json (got %q)", path, ext)
	}
	info, err := os.Stat(path)
	if err != nil {
		return fmt.Errorf("failed to stat model file %s: %w", path, err)
	}
	if info.Size() == 0 {
		return fmt.Errorf("model file %s is empty", path)
	}
	return nil
}

// ValidateOutputDirectory ensures dir exists or can be created and is writable
func (v *FileValidator) ValidateOutputDirectory(dir string) error {
	if err := os.MkdirAll(dir, 0755); err != nil {
		v.logger.Error("Failed to create output directory",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("failed to create output directory %s: %w", dir, err)
	}

	probe, err := os.CreateTemp(dir, ".write_test_*")
	if err != nil {
		v.logger.Error("Output directory is not writable",
			slog.String("directory", dir),
			slog.String("error", err.Error()))
		return fmt.Errorf("output directory %s is not writable: %w", dir, err)
	}
	probe.Close()
	os.Remove(probe.Name())

	v.logger.Debug("Output directory validated", slog.String("directory", dir))
	return nil
}
