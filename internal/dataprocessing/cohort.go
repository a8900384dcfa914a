package dataprocessing

import (
	"slices"
	"sort"

	"github.com/aclements/go-moremath/stats"

	"classpulse/internal/grading"
	"classpulse/pkg/contracts/domain"
)

// mean is sum over count. Must not use stats.Mean, whose incremental form
// drifts in the last bit.
func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	return stats.Sample{Xs: xs}.Sum() / float64(len(xs))
}

func genderDistribution(ranked []domain.ProcessedStudent) domain.GenderDistribution {
	var g domain.GenderDistribution
	for _, s := range ranked {
		switch s.Gender {
		case domain.GenderMale:
			g.M++
		case domain.GenderFemale:
			g.F++
		}
	}
	return g
}

func streamStats(ranked []domain.ProcessedStudent) map[string]domain.StreamStats {
	averages := make(map[string][]float64)
	for _, s := range ranked {
		averages[s.Stream] = append(averages[s.Stream], s.Average)
	}

	out := make(map[string]domain.StreamStats, len(averages))
	for stream, xs := range averages {
		out[stream] = domain.StreamStats{
			Count: len(xs),
			Mean:  round2(mean(xs)),
		}
	}
	return out
}

// subjectStats returns one entry per subject, ordered by mean descending.
// Subjects with equal means keep the configured order.
func subjectStats(scale *grading.Scale, subjects []string, ranked []domain.ProcessedStudent) []domain.SubjectStats {
	out := make([]domain.SubjectStats, 0, len(subjects))
	n := float64(len(ranked))

	for _, subject := range subjects {
		scores := make([]float64, len(ranked))
		hist := make(map[string]int, len(scale.Labels()))
		for _, label := range scale.Labels() {
			hist[label] = 0
		}

		passed := 0
		for i, s := range ranked {
			score := s.Scores[subject]
			scores[i] = score
			hist[scale.Grade(score)]++
			if scale.Passing(score) {
				passed++
			}
		}

		lo, hi := stats.Bounds(scores)
		out = append(out, domain.SubjectStats{
			Name:              subject,
			Mean:              round2(mean(scores)),
			PassRate:          round1(float64(passed) / n * 100),
			Min:               lo,
			Max:               hi,
			GradeDistribution: hist,
		})
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Mean > out[j].Mean
	})
	return out
}

// head returns a copy of the first n students
func head(ranked []domain.ProcessedStudent, n int) []domain.ProcessedStudent {
	return slices.Clone(ranked[:min(n, len(ranked))])
}

// tail returns a copy of the last n students
func tail(ranked []domain.ProcessedStudent, n int) []domain.ProcessedStudent {
	return slices.Clone(ranked[max(0, len(ranked)-n):])
}

// failing returns, in ranked order, students with at least minFailed
// subjects below the pass mark
func failing(ranked []domain.ProcessedStudent, minFailed int) []domain.ProcessedStudent {
	out := make([]domain.ProcessedStudent, 0)
	for _, s := range ranked {
		if s.FailedSubjects >= minFailed {
			out = append(out, s)
		}
	}
	return out
}

func overallMean(ranked []domain.ProcessedStudent) float64 {
	xs := make([]float64, len(ranked))
	for i, s := range ranked {
		xs[i] = s.Average
	}
	return round2(mean(xs))
}
