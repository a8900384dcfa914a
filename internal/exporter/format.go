package exporter

import (
	"strconv"
	"strings"
)

// Derived columns appended after the source columns
const (
	ColAverage        = "Average"
	ColTotalMarks     = "TotalMarks"
	ColTotalPoints    = "TotalPoints"
	ColFailedSubjects = "FailedSubjects"
	ColOverallGrade   = "OverallGrade"
	ColPosition       = "Position"
)

// Format names an export format
type Format string

const (
	FormatCSV  Format = "csv"
	FormatXLSX Format = "xlsx"
	FormatJSON Format = "json"
)

// ParseFormat accepts csv, xlsx or json in any case
func ParseFormat(s string) (Format, bool) {
	switch f := Format(strings.ToLower(strings.TrimSpace(s))); f {
	case FormatCSV, FormatXLSX, FormatJSON:
		return f, true
	}
	return "", false
}

// ContentType returns the MIME type for the format
func (f Format) ContentType() string {
	switch f {
	case FormatCSV:
		return "text/csv; charset=utf-8"
	case FormatXLSX:
		return "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
	default:
		return "application/json"
	}
}

// Ext returns the file extension including the dot
func (f Format) Ext() string {
	return "." + string(f)
}

func derivedColumns() []string {
	return []string{ColAverage, ColTotalMarks, ColTotalPoints, ColFailedSubjects, ColOverallGrade, ColPosition}
}

// formatFloat formats a number with the fewest digits that round-trip
func formatFloat(f float64) string {
	return strconv.FormatFloat(f, 'f', -1, 64)
}
