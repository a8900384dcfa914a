package dataprocessing

import (
	"maps"

	"classpulse/internal/grading"
	"classpulse/pkg/contracts/domain"
)

// aggregate derives the per-student fields. Position is left at zero for
// the ranker to fill.
func aggregate(scale *grading.Scale, subjects []string, rec domain.StudentRecord) domain.ProcessedStudent {
	var (
		total  float64
		points int
		failed int
	)

	for _, subject := range subjects {
		score := rec.Scores[subject]
		total += score
		points += scale.Points(score)
		if !scale.Passing(score) {
			failed++
		}
	}

	avg := round2(total / float64(len(subjects)))

	rec.Scores = maps.Clone(rec.Scores)
	rec.Extra = maps.Clone(rec.Extra)

	return domain.ProcessedStudent{
		StudentRecord:  rec,
		Average:        avg,
		TotalMarks:     total,
		TotalPoints:    points,
		FailedSubjects: failed,
		OverallGrade:   scale.Grade(avg),
	}
}
