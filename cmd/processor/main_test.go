package main

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classpulse/internal/exporter"
	"classpulse/internal/shared/testutil"
	"classpulse/pkg/contracts/domain"
)

// writeFixture creates a score sheet and a config file that routes
// reports into the test's temp dir
func writeFixture(t *testing.T, learners ...testutil.Learner) (sheet, configFile, reports string) {
	t.Helper()
	dir := t.TempDir()
	reports = filepath.Join(dir, "reports")

	sheet = filepath.Join(dir, "grade8_suswa.csv")
	csv := testutil.ScoreSheetCSV(domain.DefaultSubjects(), learners...)
	require.NoError(t, os.WriteFile(sheet, []byte(csv), 0644))

	configFile = filepath.Join(dir, "config.yaml")
	yaml := "logging:\n  level: error\npaths:\n  reports_dir: " + reports + "\n  logs_dir: " + filepath.Join(dir, "logs") + "\n"
	require.NoError(t, os.WriteFile(configFile, []byte(yaml), 0644))
	return sheet, configFile, reports
}

func TestParseFlags(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantErr bool
		check   func(t *testing.T, o *options)
	}{
		{
			name: "defaults",
			args: []string{"a.csv"},
			check: func(t *testing.T, o *options) {
				assert.Equal(t, formatTable, o.format)
				assert.Equal(t, 4, o.workers)
				assert.Equal(t, []string{"a.csv"}, o.files)
			},
		},
		{
			name: "format is case insensitive",
			args: []string{"-format", "XLSX", "a.csv"},
			check: func(t *testing.T, o *options) {
				assert.Equal(t, "xlsx", o.format)
			},
		},
		{
			name: "sample without files",
			args: []string{"-sample", "-seed", "9"},
			check: func(t *testing.T, o *options) {
				assert.True(t, o.sample)
				assert.Equal(t, int64(9), o.seed)
				assert.Empty(t, o.files)
			},
		},
		{name: "no inputs", args: nil, wantErr: true},
		{name: "unknown format", args: []string{"-format", "pdf", "a.csv"}, wantErr: true},
		{name: "zero workers", args: []string{"-workers", "0", "a.csv"}, wantErr: true},
		{name: "unknown flag", args: []string{"-verbose", "a.csv"}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stderr bytes.Buffer
			opts, err := parseFlags(tt.args, &stderr)
			if tt.wantErr {
				require.Error(t, err)
				assert.True(t, errors.Is(err, errUsage))
				return
			}
			require.NoError(t, err)
			tt.check(t, opts)
		})
	}
}

func TestRun_Version(t *testing.T) {
	var stdout, stderr bytes.Buffer
	require.NoError(t, run(context.Background(), []string{"-version"}, &stdout, &stderr))

	assert.Contains(t, stdout.String(), "ClassPulse v")
	assert.Contains(t, stdout.String(), "grading scale KJSEA-2025")
}

func TestSummaryName(t *testing.T) {
	tests := []struct {
		source string
		format exporter.Format
		want   string
	}{
		{"data/grade8_suswa.xlsx", exporter.FormatCSV, "grade8_suswa_summary.csv"},
		{"grade8.csv", exporter.FormatXLSX, "grade8_summary.xlsx"},
		{"sample-1", exporter.FormatJSON, "sample-1_summary.json"},
	}

	for _, tt := range tests {
		t.Run(tt.want, func(t *testing.T) {
			assert.Equal(t, tt.want, summaryName(tt.source, tt.format))
		})
	}
}

func TestSummaryNames(t *testing.T) {
	jobs := func(names ...string) []job {
		out := make([]job, len(names))
		for i, n := range names {
			out[i] = job{name: n}
		}
		return out
	}

	tests := []struct {
		name   string
		jobs   []job
		format exporter.Format
		want   []string
	}{
		{
			name:   "distinct inputs",
			jobs:   jobs("a/grade8.csv", "a/grade9.csv"),
			format: exporter.FormatCSV,
			want:   []string{"grade8_summary.csv", "grade9_summary.csv"},
		},
		{
			name:   "same name in two directories",
			jobs:   jobs("a/grade8.csv", "b/grade8.csv", "c/grade8.csv"),
			format: exporter.FormatCSV,
			want:   []string{"grade8_summary.csv", "grade8_summary_2.csv", "grade8_summary_3.csv"},
		},
		{
			name:   "same base with different extensions",
			jobs:   jobs("a/grade8.csv", "a/grade8.xlsx"),
			format: exporter.FormatJSON,
			want:   []string{"grade8_summary.json", "grade8_summary_2.json"},
		},
		{
			name:   "numbered name already used by another input",
			jobs:   jobs("a/x.csv", "a/x_summary_2.csv", "b/x.csv"),
			format: exporter.FormatXLSX,
			want:   []string{"x_summary.xlsx", "x_summary_2_summary.xlsx", "x_summary_2.xlsx"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, summaryNames(tt.jobs, tt.format))
		})
	}
}

func TestRun_SameNamedSheetsKeepSeparateReports(t *testing.T) {
	first, configFile, reports := writeFixture(t, testutil.Class...)

	second := filepath.Join(t.TempDir(), "b", filepath.Base(first))
	require.NoError(t, os.MkdirAll(filepath.Dir(second), 0755))
	csv := testutil.ScoreSheetCSV(domain.DefaultSubjects(), testutil.Class[0])
	require.NoError(t, os.WriteFile(second, []byte(csv), 0644))

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-config", configFile, "-format", "csv", first, second}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	entries, err := os.ReadDir(reports)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	tests := []struct {
		file string
		rows int
	}{
		{"grade8_suswa_summary.csv", 3},
		{"grade8_suswa_summary_2.csv", 1},
	}
	for _, tt := range tests {
		data, err := os.ReadFile(filepath.Join(reports, tt.file))
		require.NoError(t, err, tt.file)
		lines := strings.Split(strings.TrimSpace(string(data)), "\n")
		assert.Len(t, lines, tt.rows+1, tt.file)
	}

	out := stdout.String()
	assert.Contains(t, out, first+" -> "+filepath.Join(reports, "grade8_suswa_summary.csv")+" (3 students)")
	assert.Contains(t, out, second+" -> "+filepath.Join(reports, "grade8_suswa_summary_2.csv")+" (1 students)")
}

func TestRun_TableOutput(t *testing.T) {
	sheet, configFile, _ := writeFixture(t, testutil.Class...)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-config", configFile, sheet}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	out := stdout.String()
	assert.Contains(t, out, "3 students, overall mean 55")
	assert.Contains(t, out, "Baraka")
	assert.Contains(t, out, "Needs remediation: 1")

	// Baraka ranks first so appears before Chebet
	assert.Less(t, strings.Index(out, "S2"), strings.Index(out, "S3"))
}

func TestRun_CSVExport(t *testing.T) {
	sheet, configFile, reports := writeFixture(t, testutil.Class...)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-config", configFile, "-format", "csv", sheet}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	written := filepath.Join(reports, "grade8_suswa_summary.csv")
	assert.FileExists(t, written)
	assert.Contains(t, stdout.String(), "(3 students)")

	data, err := os.ReadFile(written)
	require.NoError(t, err)
	assert.Contains(t, string(data), "OverallGrade,Position")
}

func TestRun_JSONExportToOutDir(t *testing.T) {
	sheet, configFile, _ := writeFixture(t, testutil.Class...)
	out := t.TempDir()

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-config", configFile, "-format", "json", "-out", out, sheet}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	data, err := os.ReadFile(filepath.Join(out, "grade8_suswa_summary.json"))
	require.NoError(t, err)

	var result domain.AnalyticsResult
	require.NoError(t, json.Unmarshal(data, &result))
	assert.Equal(t, 3, result.TotalStudents)
	assert.Equal(t, "S2", result.ProcessedData[0].StudentID)
}

func TestRun_SampleWorkbook(t *testing.T) {
	_, configFile, reports := writeFixture(t, testutil.Class...)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-config", configFile, "-format", "xlsx", "-sample", "-seed", "3"}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	assert.FileExists(t, filepath.Join(reports, "sample-3_summary.xlsx"))
	assert.Contains(t, stdout.String(), "(52 students)")
}

func TestRun_Errors(t *testing.T) {
	sheet, configFile, _ := writeFixture(t, testutil.Learner{ID: "S1", Name: "Amani", Gender: "X", Stream: "8 Suswa", Score: 50})

	tests := []struct {
		name  string
		args  []string
		usage bool
	}{
		{name: "malformed record", args: []string{"-config", configFile, sheet}},
		{name: "missing file", args: []string{"-config", configFile, filepath.Join(t.TempDir(), "none.csv")}},
		{name: "missing config", args: []string{"-config", filepath.Join(t.TempDir(), "none.yaml"), sheet}},
		{name: "bad format", args: []string{"-format", "pdf", sheet}, usage: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var stdout, stderr bytes.Buffer
			err := run(context.Background(), tt.args, &stdout, &stderr)
			require.Error(t, err)
			assert.Equal(t, tt.usage, errors.Is(err, errUsage))
		})
	}
}

func TestRun_DirectoryInput(t *testing.T) {
	sheet, configFile, reports := writeFixture(t, testutil.Class...)

	var stdout, stderr bytes.Buffer
	err := run(context.Background(), []string{"-config", configFile, "-format", "csv", filepath.Dir(sheet)}, &stdout, &stderr)
	require.NoError(t, err, stderr.String())

	assert.FileExists(t, filepath.Join(reports, "grade8_suswa_summary.csv"))
	assert.Equal(t, 1, strings.Count(stdout.String(), "->"))
}
