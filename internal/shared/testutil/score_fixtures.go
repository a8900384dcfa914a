package testutil

import (
	"strconv"
	"strings"

	"classpulse/pkg/contracts/domain"
)

// Learner describes one fixture row. Score is used for every subject.
type Learner struct {
	ID     string
	Name   string
	Gender string
	Stream string
	Score  float64
}

// Class is a small ranked cohort: Baraka first, Amani second, Chebet
// failing every subject
var Class = []Learner{
	{ID: "S1", Name: "Amani", Gender: "F", Stream: "8 Suswa", Score: 50},
	{ID: "S2", Name: "Baraka", Gender: "M", Stream: "8 Suswa", Score: 80},
	{ID: "S3", Name: "Chebet", Gender: "F", Stream: "8 Elgon", Score: 35},
}

// RawRecords builds request records carrying every subject in subjects
func RawRecords(subjects []string, learners ...Learner) []domain.RawRecord {
	records := make([]domain.RawRecord, 0, len(learners))
	for _, l := range learners {
		rec := domain.RawRecord{
			domain.FieldStudentID: l.ID,
			domain.FieldName:      l.Name,
			domain.FieldGender:    l.Gender,
			domain.FieldStream:    l.Stream,
		}
		for _, s := range subjects {
			rec[s] = l.Score
		}
		records = append(records, rec)
	}
	return records
}

// ScoreSheetCSV renders learners as an uploaded score sheet with the
// header StudentID,Name,Gender,Stream followed by subjects
func ScoreSheetCSV(subjects []string, learners ...Learner) string {
	var b strings.Builder
	header := append([]string{domain.FieldStudentID, domain.FieldName, domain.FieldGender, domain.FieldStream}, subjects...)
	b.WriteString(strings.Join(header, ",") + "\n")

	for _, l := range learners {
		row := []string{l.ID, l.Name, l.Gender, l.Stream}
		score := strconv.FormatFloat(l.Score, 'f', -1, 64)
		for range subjects {
			row = append(row, score)
		}
		b.WriteString(strings.Join(row, ",") + "\n")
	}
	return b.String()
}
