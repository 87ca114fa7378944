package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/IsnaAyustin/final-project-ds/internal/config"
	"github.com/IsnaAyustin/final-project-ds/internal/dataprocessing"
)

// utf8BOM helps Excel recognize UTF-8 CSV files
var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Writer exports prepared tables into the exports directory
type Writer struct {
	paths *config.Paths
}

// NewWriter creates a new export writer
func NewWriter(paths *config.Paths) *Writer {
	return &Writer{paths: paths}
}

// Export writes t under the exports directory as name plus the format
// extension and returns the full path
func (w *Writer) Export(name string, t *dataprocessing.Table, format Format) (string, error) {
	fullPath := w.resolvePath(name, format)

	slog.Info("Writing export",
		slog.String("file_path", fullPath),
		slog.String("format", string(format)),
		slog.Int("record_count", t.Len()))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if err := Write(file, t, format); err != nil {
		file.Close()
		return "", err
	}
	if err := file.Close(); err != nil {
		return "", fmt.Errorf("failed to close file: %w", err)
	}
	return fullPath, nil
}

// resolvePath places relative names in the exports directory
func (w *Writer) resolvePath(name string, format Format) string {
	if !strings.HasSuffix(strings.ToLower(name), format.Extension()) {
		name += format.Extension()
	}
	if filepath.IsAbs(name) {
		return name
	}
	return w.paths.GetExportPath(name)
}

// Write encodes t in format to out
func Write(out io.Writer, t *dataprocessing.Table, format Format) error {
	switch format {
	case FormatCSV:
		return WriteCSV(out, t, true)
	case FormatXLSX:
		return WriteXLSX(out, t)
	}
	return fmt.Errorf("unsupported export format %q", format)
}

// WriteCSV writes the header and every row of t
func WriteCSV(out io.Writer, t *dataprocessing.Table, bom bool) error {
	sw, err := NewStreamWriter(out, t.Columns(), bom)
	if err != nil {
		return err
	}
	for i := 0; i < t.Len(); i++ {
		if err := sw.WriteRecord(t.Row(i)); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}
	return sw.Flush()
}

// StreamWriter writes CSV records one at a time
type StreamWriter struct {
	writer *csv.Writer
}

// NewStreamWriter writes the optional BOM and headers and returns a writer
// for the records
func NewStreamWriter(out io.Writer, headers []string, bom bool) (*StreamWriter, error) {
	if bom {
		if _, err := out.Write(utf8BOM); err != nil {
			return nil, fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)
	if len(headers) > 0 {
		if err := writer.Write(headers); err != nil {
			return nil, fmt.Errorf("failed to write headers: %w", err)
		}
	}
	return &StreamWriter{writer: writer}, nil
}

// WriteRecord writes a single record to the stream
func (s *StreamWriter) WriteRecord(record []string) error {
	return s.writer.Write(record)
}

// Flush flushes buffered records and reports any write error
func (s *StreamWriter) Flush() error {
	s.writer.Flush()
	return s.writer.Error()
}
