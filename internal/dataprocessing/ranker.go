package dataprocessing

import (
	"sort"

	"classpulse/pkg/contracts/domain"
)

// rank returns a copy of students ordered by Average descending with
// positions 1..N. Equal averages keep their input order and still get
// distinct positions.
func rank(students []domain.ProcessedStudent) []domain.ProcessedStudent {
	ranked := make([]domain.ProcessedStudent, len(students))
	copy(ranked, students)

	sort.SliceStable(ranked, func(i, j int) bool {
		return ranked[i].Average > ranked[j].Average
	})

	for i := range ranked {
		ranked[i].Position = i + 1
	}
	return ranked
}
