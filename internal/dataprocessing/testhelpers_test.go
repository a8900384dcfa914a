package dataprocessing

import (
	"testing"

	"github.com/stretchr/testify/require"

	"classpulse/pkg/contracts/domain"
)

// rawStudent builds a raw record with every default subject set to score
func rawStudent(id, name, gender, stream string, score float64) domain.RawRecord {
	rec := domain.RawRecord{
		domain.FieldStudentID: id,
		domain.FieldName:      name,
		domain.FieldGender:    gender,
		domain.FieldStream:    stream,
	}
	for _, s := range domain.DefaultSubjects() {
		rec[s] = score
	}
	return rec
}

// rawScores builds a raw record with per-subject scores in default order
func rawScores(id, gender string, scores ...float64) domain.RawRecord {
	rec := domain.RawRecord{
		domain.FieldStudentID: id,
		domain.FieldName:      "Student " + id,
		domain.FieldGender:    gender,
		domain.FieldStream:    "8 Suswa",
	}
	for i, s := range domain.DefaultSubjects() {
		rec[s] = scores[i]
	}
	return rec
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := NewEngine(nil, DefaultEngineConfig())
	require.NoError(t, err)
	return e
}
