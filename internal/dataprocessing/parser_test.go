package dataprocessing

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"

	"classpulse/pkg/contracts/domain"
)

const sampleCSV = "StudentID,Name,Gender,Stream,English,Kiswahili,Mathematics,IntegratedScience,SocialStudies,ReligiousEducation,CreativeArtsAndSports,PreTechnicalStudies,AgricultureAndNutrition\n" +
	"S1,Amina Wanjiru,F,8 Suswa,80,70,90,60,50,40,30,20,10\n" +
	"\n" +
	"S2,Brian Otieno,M,8 Suswa,55,60,65,70,75,80,85,90,95\n"

func TestParseCSV(t *testing.T) {
	p := NewParser(nil, domain.DefaultSubjects())

	b, err := p.ParseCSV(strings.NewReader(sampleCSV))
	require.NoError(t, err)

	assert.Equal(t, SampleColumns(domain.DefaultSubjects()), b.Columns)
	require.Len(t, b.Records, 2)
	assert.Equal(t, "Amina Wanjiru", b.Records[0]["Name"])
	assert.Equal(t, "90", b.Records[0]["Mathematics"])
	assert.Equal(t, "S2", b.Records[1]["StudentID"])
}

func TestParseCSVStripsBOM(t *testing.T) {
	p := NewParser(nil, domain.DefaultSubjects())

	b, err := p.ParseCSV(strings.NewReader("\ufeff" + sampleCSV))
	require.NoError(t, err)
	assert.Equal(t, "StudentID", b.Columns[0])
	assert.Contains(t, b.Records[0], "StudentID")
}

func TestParseCSVShortRowsPadWithBlanks(t *testing.T) {
	p := NewParser(nil, []string{"English", "Mathematics"})

	b, err := p.ParseCSV(strings.NewReader("Name,English,Mathematics\nAmina,50\n"))
	require.NoError(t, err)
	require.Len(t, b.Records, 1)
	assert.Equal(t, "", b.Records[0]["Mathematics"])
}

func TestParseCSVRejectsBadHeaders(t *testing.T) {
	p := NewParser(nil, domain.DefaultSubjects())

	tests := []struct {
		name  string
		input string
	}{
		{"empty file", ""},
		{"only blank lines", "\n\n"},
		{"no name column", "StudentID,English\nS1,50\n"},
		{"no subject column", "StudentID,Name\nS1,Amina\n"},
		{"duplicate column", "Name,English,English\nAmina,50,60\n"},
		{"unbalanced quotes", "Name,English\n\"Amina,50\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := p.ParseCSV(strings.NewReader(tt.input))
			assert.ErrorIs(t, err, ErrInvalidFormat)
		})
	}
}

func writeWorkbook(t *testing.T, sheet string, rows [][]any) []byte {
	t.Helper()

	f := excelize.NewFile()
	defer f.Close()

	if sheet != "Sheet1" {
		_, err := f.NewSheet(sheet)
		require.NoError(t, err)
	}
	for i, row := range rows {
		cell, err := excelize.CoordinatesToCellName(1, i+1)
		require.NoError(t, err)
		require.NoError(t, f.SetSheetRow(sheet, cell, &row))
	}

	var buf bytes.Buffer
	require.NoError(t, f.Write(&buf))
	return buf.Bytes()
}

func TestParseWorkbook(t *testing.T) {
	p := NewParser(nil, []string{"English", "Mathematics"})

	data := writeWorkbook(t, "Grade 8", [][]any{
		{"Grade 8 End Term Results"},
		{},
		{"StudentID", "Name", "Gender", "Stream", "English", "Mathematics"},
		{"S1", "Amina", "F", "8 Suswa", 61, 72},
		{},
		{"S2", "Brian", "M", "8 Suswa", 45, 38},
	})

	b, err := p.ParseWorkbook(bytes.NewReader(data))
	require.NoError(t, err)

	assert.Equal(t, []string{"StudentID", "Name", "Gender", "Stream", "English", "Mathematics"}, b.Columns)
	require.Len(t, b.Records, 2)
	assert.Equal(t, "61", b.Records[0]["English"])
	assert.Equal(t, "Brian", b.Records[1]["Name"])
}

func TestParseWorkbookWithoutScoreSheet(t *testing.T) {
	p := NewParser(nil, []string{"English"})

	data := writeWorkbook(t, "Sheet1", [][]any{{"Ticker", "Price"}, {"BBOB", 1.2}})

	_, err := p.ParseWorkbook(bytes.NewReader(data))
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestParseWorkbookRejectsGarbage(t *testing.T) {
	p := NewParser(nil, []string{"English"})

	_, err := p.ParseWorkbook(strings.NewReader("not a zip"))
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestParseFile(t *testing.T) {
	p := NewParser(nil, domain.DefaultSubjects())
	dir := t.TempDir()

	csvPath := filepath.Join(dir, "grade8.csv")
	require.NoError(t, os.WriteFile(csvPath, []byte(sampleCSV), 0644))

	b, err := p.ParseFile(csvPath)
	require.NoError(t, err)
	assert.Equal(t, "grade8.csv", b.Source)
	assert.Len(t, b.Records, 2)

	txtPath := filepath.Join(dir, "grade8.pdf")
	require.NoError(t, os.WriteFile(txtPath, []byte("x"), 0644))
	_, err = p.ParseFile(txtPath)
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = p.ParseFile(filepath.Join(dir, "missing.csv"))
	assert.Error(t, err)
}

func TestParsedCSVProcesses(t *testing.T) {
	e := newTestEngine(t)
	p := NewParser(nil, e.Subjects())

	b, err := p.Parse("upload.csv", strings.NewReader(sampleCSV))
	require.NoError(t, err)

	result, err := e.ProcessBatch(context.Background(), b)
	require.NoError(t, err)

	assert.Equal(t, 2, result.TotalStudents)
	assert.Equal(t, "S2", result.ProcessedData[0].StudentID)
	assert.Equal(t, 75.0, result.ProcessedData[0].Average)
	assert.Equal(t, 50.0, result.ProcessedData[1].Average)
}
