package exporter

import (
	"slices"

	"classpulse/pkg/contracts/domain"
)

// column resolves one cell of a processed student. num reports whether the
// value is numeric so the workbook can store it as a number.
type column struct {
	name string
	text func(domain.ProcessedStudent) string
	num  func(domain.ProcessedStudent) (float64, bool)
}

// studentColumns returns the export layout: source order (or the default
// identity + subjects order) followed by the derived columns. Source columns
// that share a name with a derived column are dropped.
func studentColumns(result *domain.AnalyticsResult) []column {
	source := result.Columns
	if len(source) == 0 {
		source = append([]string{domain.FieldStudentID, domain.FieldName, domain.FieldGender, domain.FieldStream}, result.Subjects...)
	}

	derived := derivedColumns()
	cols := make([]column, 0, len(source)+len(derived))
	for _, name := range source {
		if slices.Contains(derived, name) {
			continue
		}
		cols = append(cols, sourceColumn(name, result.Subjects))
	}

	cols = append(cols,
		numeric(ColAverage, func(s domain.ProcessedStudent) float64 { return s.Average }),
		numeric(ColTotalMarks, func(s domain.ProcessedStudent) float64 { return s.TotalMarks }),
		numeric(ColTotalPoints, func(s domain.ProcessedStudent) float64 { return float64(s.TotalPoints) }),
		numeric(ColFailedSubjects, func(s domain.ProcessedStudent) float64 { return float64(s.FailedSubjects) }),
		text(ColOverallGrade, func(s domain.ProcessedStudent) string { return s.OverallGrade }),
		numeric(ColPosition, func(s domain.ProcessedStudent) float64 { return float64(s.Position) }),
	)
	return cols
}

func sourceColumn(name string, subjects []string) column {
	switch name {
	case domain.FieldStudentID:
		return text(name, func(s domain.ProcessedStudent) string { return s.StudentID })
	case domain.FieldName:
		return text(name, func(s domain.ProcessedStudent) string { return s.Name })
	case domain.FieldGender:
		return text(name, func(s domain.ProcessedStudent) string { return s.Gender })
	case domain.FieldStream:
		return text(name, func(s domain.ProcessedStudent) string { return s.Stream })
	}

	if slices.Contains(subjects, name) {
		return column{
			name: name,
			text: func(s domain.ProcessedStudent) string {
				if v, ok := s.Score(name); ok {
					return formatFloat(v)
				}
				return ""
			},
			num: func(s domain.ProcessedStudent) (float64, bool) { return s.Score(name) },
		}
	}

	// Anything else travelled through Extra untouched
	return text(name, func(s domain.ProcessedStudent) string { return s.Extra[name] })
}

func text(name string, fn func(domain.ProcessedStudent) string) column {
	return column{name: name, text: fn}
}

func numeric(name string, fn func(domain.ProcessedStudent) float64) column {
	return column{
		name: name,
		text: func(s domain.ProcessedStudent) string { return formatFloat(fn(s)) },
		num:  func(s domain.ProcessedStudent) (float64, bool) { return fn(s), true },
	}
}

func headers(cols []column) []string {
	out := make([]string, len(cols))
	for i, c := range cols {
		out[i] = c.name
	}
	return out
}
