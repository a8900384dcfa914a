package exporter

import (
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"github.com/xuri/excelize/v2"

	"classpulse/internal/config"
	"classpulse/internal/dataprocessing"
	"classpulse/internal/grading"
	"classpulse/pkg/contracts/domain"
)

// Sheet names of the summary workbook
const (
	SheetStudents    = "Students"
	SheetSubjects    = "Subjects"
	SheetStreams     = "Streams"
	SheetRemediation = "Remediation"
)

// WorkbookWriter writes the cohort report as an XLSX workbook
type WorkbookWriter struct {
	scale  *grading.Scale
	paths  *config.Paths
	logger *slog.Logger
}

// NewWorkbookWriter creates a workbook writer. The scale supplies the grade
// labels for the histogram columns and the pass mark for the remediation sheet.
func NewWorkbookWriter(scale *grading.Scale, paths *config.Paths, logger *slog.Logger) *WorkbookWriter {
	if logger == nil {
		logger = slog.Default()
	}
	return &WorkbookWriter{scale: scale, paths: paths, logger: logger}
}

// Write renders the workbook to out
func (w *WorkbookWriter) Write(out io.Writer, result *domain.AnalyticsResult) error {
	f := excelize.NewFile()
	defer f.Close()

	if err := f.SetSheetName("Sheet1", SheetStudents); err != nil {
		return err
	}
	for _, name := range []string{SheetSubjects, SheetStreams, SheetRemediation} {
		if _, err := f.NewSheet(name); err != nil {
			return fmt.Errorf("create sheet %s: %w", name, err)
		}
	}

	header, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{"DCE6F1"}},
	})
	if err != nil {
		return fmt.Errorf("create header style: %w", err)
	}

	sheets := []struct {
		name string
		rows [][]interface{}
	}{
		{SheetStudents, studentRows(result)},
		{SheetSubjects, w.subjectRows(result)},
		{SheetStreams, streamRows(result)},
		{SheetRemediation, w.remediationRows(result)},
	}
	for _, s := range sheets {
		if err := writeRows(f, s.name, s.rows, header); err != nil {
			return fmt.Errorf("write sheet %s: %w", s.name, err)
		}
	}

	f.SetActiveSheet(0)
	if _, err := f.WriteTo(out); err != nil {
		return fmt.Errorf("write workbook: %w", err)
	}
	return nil
}

// WriteFile writes the workbook under the reports directory and returns the full path
func (w *WorkbookWriter) WriteFile(name string, result *domain.AnalyticsResult) (string, error) {
	fullPath := name
	if !filepath.IsAbs(name) && w.paths != nil {
		fullPath = w.paths.GetReportPath(name)
	}

	w.logger.Info("Writing workbook",
		slog.String("full_path", fullPath),
		slog.Int("record_count", len(result.ProcessedData)))

	if err := os.MkdirAll(filepath.Dir(fullPath), 0755); err != nil {
		return "", fmt.Errorf("failed to create directory: %w", err)
	}
	file, err := os.Create(fullPath)
	if err != nil {
		return "", fmt.Errorf("failed to create file: %w", err)
	}
	if err := w.Write(file, result); err != nil {
		file.Close()
		return "", err
	}
	return fullPath, file.Close()
}

func writeRows(f *excelize.File, sheet string, rows [][]interface{}, headerStyle int) error {
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			return err
		}
	}
	if len(rows) == 0 {
		return nil
	}
	if err := f.SetRowStyle(sheet, 1, 1, headerStyle); err != nil {
		return err
	}
	return f.SetPanes(sheet, &excelize.Panes{
		Freeze:      true,
		YSplit:      1,
		TopLeftCell: "A2",
		ActivePane:  "bottomLeft",
	})
}

func studentRows(result *domain.AnalyticsResult) [][]interface{} {
	cols := studentColumns(result)

	rows := make([][]interface{}, 0, len(result.ProcessedData)+1)
	rows = append(rows, toRow(headers(cols)))
	for _, s := range result.ProcessedData {
		row := make([]interface{}, len(cols))
		for i, c := range cols {
			if c.num != nil {
				if v, ok := c.num(s); ok {
					row[i] = v
					continue
				}
			}
			row[i] = c.text(s)
		}
		rows = append(rows, row)
	}
	return rows
}

func (w *WorkbookWriter) subjectRows(result *domain.AnalyticsResult) [][]interface{} {
	labels := w.scale.Labels()

	head := append([]string{"Subject", "Mean", "PassRate", "Min", "Max"}, labels...)
	rows := [][]interface{}{toRow(head)}
	for _, s := range result.SubjectStats {
		row := []interface{}{s.Name, s.Mean, s.PassRate, s.Min, s.Max}
		for _, l := range labels {
			row = append(row, s.GradeDistribution[l])
		}
		rows = append(rows, row)
	}
	return rows
}

func streamRows(result *domain.AnalyticsResult) [][]interface{} {
	names := make([]string, 0, len(result.StreamStats))
	for name := range result.StreamStats {
		names = append(names, name)
	}
	slices.Sort(names)

	rows := [][]interface{}{toRow([]string{"Stream", "Count", "Mean"})}
	for _, name := range names {
		st := result.StreamStats[name]
		rows = append(rows, []interface{}{name, st.Count, st.Mean})
	}
	return rows
}

func (w *WorkbookWriter) remediationRows(result *domain.AnalyticsResult) [][]interface{} {
	rows := [][]interface{}{toRow([]string{"Position", "StudentID", "Name", "Stream", "Average", "FailedSubjects", "Subjects"})}
	for _, c := range dataprocessing.RemediationList(w.scale, result) {
		failed := make([]string, len(c.Failed))
		for i, fs := range c.Failed {
			failed[i] = fmt.Sprintf("%s %s (%s)", fs.Subject, formatFloat(fs.Score), fs.Grade)
		}
		rows = append(rows, []interface{}{c.Position, c.StudentID, c.Name, c.Stream, c.Average, len(c.Failed), strings.Join(failed, "; ")})
	}
	return rows
}

func toRow(values []string) []interface{} {
	row := make([]interface{}, len(values))
	for i, v := range values {
		row[i] = v
	}
	return row
}
