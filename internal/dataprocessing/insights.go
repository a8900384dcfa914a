package dataprocessing

import (
	"fmt"

	"classpulse/internal/grading"
	"classpulse/pkg/contracts/domain"
)

// BuildInsights summarises a result: the weakest and strongest subject by
// mean and the remediation watch-list with each student's failed subjects.
func BuildInsights(scale *grading.Scale, result *domain.AnalyticsResult) domain.Insights {
	ins := domain.Insights{
		OverallMean: result.OverallMean,
		Remediation: RemediationList(scale, result),
	}

	if n := len(result.SubjectStats); n > 0 {
		ins.StrongestSubject = result.SubjectStats[0]
		ins.WeakestSubject = result.SubjectStats[n-1]
	}

	for _, s := range result.ProcessedData {
		if scale.Passing(s.Average) {
			ins.PassingStudents++
		}
	}
	return ins
}

// RemediationList expands the watch-list of result with the subjects each
// student failed, in subject order.
func RemediationList(scale *grading.Scale, result *domain.AnalyticsResult) []domain.RemediationCandidate {
	out := make([]domain.RemediationCandidate, 0, len(result.StudentsFailing2Plus))
	for _, s := range result.StudentsFailing2Plus {
		c := domain.RemediationCandidate{
			StudentID: s.StudentID,
			Name:      s.Name,
			Stream:    s.Stream,
			Position:  s.Position,
			Average:   s.Average,
			Failed:    make([]domain.FailedSubject, 0, s.FailedSubjects),
		}
		for _, subject := range result.Subjects {
			score := s.Scores[subject]
			if scale.Passing(score) {
				continue
			}
			c.Failed = append(c.Failed, domain.FailedSubject{
				Subject: subject,
				Score:   score,
				Grade:   scale.Grade(score),
			})
		}
		out = append(out, c)
	}
	return out
}

// BuildReportCard returns the per-subject breakdown for one student
func BuildReportCard(scale *grading.Scale, result *domain.AnalyticsResult, studentID string) (*domain.ReportCard, error) {
	s, ok := result.Student(studentID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrStudentNotFound, studentID)
	}

	card := &domain.ReportCard{
		Student:      s,
		Lines:        make([]domain.ReportCardLine, 0, len(result.Subjects)),
		CohortSize:   result.TotalStudents,
		OverallGrade: s.OverallGrade,
		Remark:       scale.Remark(s.OverallGrade),
		Key:          scale.Key(),
	}

	for _, subject := range result.Subjects {
		score := s.Scores[subject]
		grade := scale.Grade(score)
		card.Lines = append(card.Lines, domain.ReportCardLine{
			Subject: subject,
			Score:   score,
			Grade:   grade,
			Points:  scale.Points(score),
			Remark:  scale.Remark(grade),
		})
	}
	return card, nil
}
