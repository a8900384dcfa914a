package exporter

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"classpulse/internal/dataprocessing"
	"classpulse/pkg/contracts/domain"
)

func uniform(id, name, gender string, score float64) domain.RawRecord {
	rec := domain.RawRecord{
		domain.FieldStudentID: id,
		domain.FieldName:      name,
		domain.FieldGender:    gender,
		domain.FieldStream:    "8 Suswa",
	}
	for _, s := range domain.DefaultSubjects() {
		rec[s] = score
	}
	return rec
}

// testResult grades two learners: Achieng at 60 in every subject and
// Brian at 35.5 in every subject, so Brian fails all nine.
func testResult(t *testing.T, columns []string) *domain.AnalyticsResult {
	t.Helper()

	engine, err := dataprocessing.NewEngine(nil, dataprocessing.DefaultEngineConfig())
	require.NoError(t, err)

	brian := uniform("2026002", "Brian Kiprop", "M", 35.5)
	brian["Notes"] = "new admission"

	result, err := engine.ProcessBatch(context.Background(), &dataprocessing.Batch{
		Columns: columns,
		Records: []domain.RawRecord{brian, uniform("2026001", "Achieng Otieno", "F", 60)},
	})
	require.NoError(t, err)
	return result
}
