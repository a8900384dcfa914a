package exporter

import (
	"bytes"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"classpulse/internal/grading"
)

func openWorkbook(t *testing.T, data []byte) *excelize.File {
	t.Helper()
	f, err := excelize.OpenReader(bytes.NewReader(data))
	require.NoError(t, err)
	t.Cleanup(func() { f.Close() })
	return f
}

func TestWorkbookWriter_Write(t *testing.T) {
	result := testResult(t, nil)
	var buf bytes.Buffer

	require.NoError(t, NewWorkbookWriter(grading.KJSEA(), nil, nil).Write(&buf, result))

	f := openWorkbook(t, buf.Bytes())
	assert.Equal(t, []string{SheetStudents, SheetSubjects, SheetStreams, SheetRemediation}, f.GetSheetList())

	t.Run("students", func(t *testing.T) {
		rows, err := f.GetRows(SheetStudents)
		require.NoError(t, err)
		require.Len(t, rows, 3)
		assert.Equal(t, "StudentID", rows[0][0])
		assert.Equal(t, "2026001", rows[1][0])

		// Scores are stored as numbers
		typ, err := f.GetCellType(SheetStudents, "E2")
		require.NoError(t, err)
		assert.NotEqual(t, excelize.CellTypeSharedString, typ)
		assert.NotEqual(t, excelize.CellTypeInlineString, typ)
	})

	t.Run("subjects", func(t *testing.T) {
		rows, err := f.GetRows(SheetSubjects)
		require.NoError(t, err)
		require.Len(t, rows, 10)
		assert.Equal(t, []string{"Subject", "Mean", "PassRate", "Min", "Max", "EE1"}, rows[0][:6])
		assert.Len(t, rows[0], 5+8)
		assert.Equal(t, "47.75", rows[1][1])
		assert.Equal(t, "50", rows[1][2])
	})

	t.Run("streams", func(t *testing.T) {
		rows, err := f.GetRows(SheetStreams)
		require.NoError(t, err)
		assert.Equal(t, [][]string{{"Stream", "Count", "Mean"}, {"8 Suswa", "2", "47.75"}}, rows)
	})

	t.Run("remediation", func(t *testing.T) {
		rows, err := f.GetRows(SheetRemediation)
		require.NoError(t, err)
		require.Len(t, rows, 2)
		assert.Equal(t, "2026002", rows[1][1])
		assert.Equal(t, "9", rows[1][5])
		assert.Contains(t, rows[1][6], "English 35.5 (AE1)")
	})
}

func TestWorkbookWriter_WriteFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "summary.xlsx")

	got, err := NewWorkbookWriter(grading.KJSEA(), nil, nil).WriteFile(path, testResult(t, nil))
	require.NoError(t, err)
	assert.Equal(t, path, got)

	f, err := excelize.OpenFile(got)
	require.NoError(t, err)
	defer f.Close()
	assert.Len(t, f.GetSheetList(), 4)
}
