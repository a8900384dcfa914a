package exporter

import (
	"encoding/csv"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"

	"classpulse/internal/config"
	"classpulse/pkg/contracts/domain"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// CSVWriter provides CSV export functionality
type CSVWriter struct {
	paths  *config.Paths
	logger *slog.Logger
}

// NewCSVWriter creates a new CSV writer instance. paths may be nil when
// only WriteProcessed is used.
func NewCSVWriter(paths *config.Paths, logger *slog.Logger) *CSVWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &CSVWriter{paths: paths, logger: logger}
}

// WriteOptions configures CSV writing behavior
type WriteOptions struct {
	Headers   []string
	Records   [][]string
	BOMPrefix bool // Add UTF-8 BOM for Excel compatibility
}

// Write writes headers and records to w
func (w *CSVWriter) Write(out io.Writer, options WriteOptions) error {
	if options.BOMPrefix {
		if _, err := out.Write(utf8BOM); err != nil {
			return fmt.Errorf("failed to write BOM: %w", err)
		}
	}

	writer := csv.NewWriter(out)

	if len(options.Headers) > 0 {
		if err := writer.Write(options.Headers); err != nil {
			return fmt.Errorf("failed to write headers: %w", err)
		}
	}

	for i, record := range options.Records {
		if err := writer.Write(record); err != nil {
			return fmt.Errorf("failed to write record %d: %w", i, err)
		}
	}

	writer.Flush()
	return writer.Error()
}

// WriteProcessed writes every processed student in rank order with a BOM
func (w *CSVWriter) WriteProcessed(out io.Writer, result *domain.AnalyticsResult) error {
	cols := studentColumns(result)

	records := make([][]string, 0, len(result.ProcessedData))
	for _, s := range result.ProcessedData {
		row := make([]string, len(cols))
		for i, c := range cols {
			row[i] = c.text(s)
		}
		records = append(records, row)
	}

	return w.Write(out, WriteOptions{
		Headers:   headers(cols),
		Records:   records,
		BOMPrefix: true,
	})
}

// WriteFile writes the processed data to a file under the reports directory
// and returns the full path. Absolute names are used as given.
func (w *CSVWriter) WriteFile(name string, result *domain.AnalyticsResult) (string, error) {
	fullPath := w.resolvePath(name)

	w.logger.Info("Writing CSV file",
		slog.String("file_path", name),
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(result.ProcessedData)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}

	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}

	if err := w.WriteProcessed(file, result); err != nil {
		file.Close()
		return "", err
	}
	return fullPath, file.Close()
}

func (w *CSVWriter) resolvePath(name string) string {
	if filepath.IsAbs(name) || w.paths == nil {
		return name
	}
	return w.paths.GetReportPath(name)
}
