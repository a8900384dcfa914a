package dataprocessing

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"classpulse/internal/grading"
	"classpulse/pkg/contracts/domain"
)

func TestNewEngine(t *testing.T) {
	tests := []struct {
		name    string
		cfg     EngineConfig
		wantErr bool
		wantTop int
	}{
		{name: "default config", cfg: DefaultEngineConfig(), wantTop: 10},
		{name: "zero values get defaults", cfg: EngineConfig{Subjects: []string{"English"}}, wantTop: 10},
		{name: "custom top", cfg: EngineConfig{Subjects: []string{"English"}, TopN: 3}, wantTop: 3},
		{name: "no subjects", cfg: EngineConfig{}, wantErr: true},
		{name: "duplicate subjects", cfg: EngineConfig{Subjects: []string{"English", "english"}}, wantErr: true},
		{name: "empty subject name", cfg: EngineConfig{Subjects: []string{""}}, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e, err := NewEngine(nil, tt.cfg)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantTop, e.topN)
			assert.NotNil(t, e.Scale())
		})
	}
}

func TestProcessEndToEndExample(t *testing.T) {
	e := newTestEngine(t)

	result, err := e.Process(context.Background(), []domain.RawRecord{
		rawScores("S1", "F", 80, 70, 90, 60, 50, 40, 30, 20, 10),
	})
	require.NoError(t, err)

	require.Len(t, result.ProcessedData, 1)
	s := result.ProcessedData[0]
	assert.Equal(t, 50.0, s.Average)
	assert.Equal(t, 450.0, s.TotalMarks)
	assert.Equal(t, 42, s.TotalPoints)
	assert.Equal(t, "ME2", s.OverallGrade)
	assert.Equal(t, 4, s.FailedSubjects)
	assert.Equal(t, 1, s.Position)

	assert.Equal(t, 1, result.TotalStudents)
	assert.Equal(t, domain.GenderDistribution{F: 1}, result.GenderDistribution)
	assert.Equal(t, 50.0, result.OverallMean)
	assert.Len(t, result.StudentsFailing2Plus, 1)
	assert.Equal(t, result.ProcessedData, result.Top10)
	assert.Equal(t, result.ProcessedData, result.Bottom10)
}

func TestProcessEmptyBatch(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Process(context.Background(), nil)
	assert.ErrorIs(t, err, ErrEmptyBatch)

	_, err = e.ProcessRecords(context.Background(), []domain.StudentRecord{})
	assert.ErrorIs(t, err, ErrEmptyBatch)

	_, err = e.ProcessBatch(context.Background(), &Batch{})
	assert.ErrorIs(t, err, ErrEmptyBatch)
}

func TestProcessMalformedFailsWholeBatch(t *testing.T) {
	e := newTestEngine(t)

	bad := rawStudent("S2", "Baraka", "M", "8 Suswa", 60)
	delete(bad, "Mathematics")

	result, err := e.Process(context.Background(), []domain.RawRecord{
		rawStudent("S1", "Amina", "F", "8 Suswa", 70),
		bad,
		rawStudent("S3", "Chebet", "F", "8 Suswa", 80),
	})
	assert.Nil(t, result)
	require.ErrorIs(t, err, ErrMalformedRecord)

	var mre *MalformedRecordError
	require.True(t, errors.As(err, &mre))
	assert.Equal(t, 2, mre.Row)
	assert.Equal(t, "S2", mre.StudentID)
	assert.Equal(t, "Mathematics", mre.Field)
}

func TestProcessDuplicateStudentID(t *testing.T) {
	e := newTestEngine(t)

	_, err := e.Process(context.Background(), []domain.RawRecord{
		rawStudent("S1", "Amina", "F", "8 Suswa", 70),
		rawStudent("S1", "Baraka", "M", "8 Suswa", 60),
	})
	require.ErrorIs(t, err, ErrMalformedRecord)

	var mre *MalformedRecordError
	require.True(t, errors.As(err, &mre))
	assert.Equal(t, domain.FieldStudentID, mre.Field)
	assert.Equal(t, 2, mre.Row)
}

func TestProcessCancelledContext(t *testing.T) {
	e := newTestEngine(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := e.Process(ctx, []domain.RawRecord{rawStudent("S1", "Amina", "F", "A", 50)})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestRankingTiesKeepInputOrder(t *testing.T) {
	e := newTestEngine(t)

	result, err := e.Process(context.Background(), []domain.RawRecord{
		rawStudent("A", "A", "M", "X", 50),
		rawStudent("B", "B", "F", "X", 70),
		rawStudent("C", "C", "M", "X", 50),
		rawStudent("D", "D", "F", "X", 70),
		rawStudent("E", "E", "M", "X", 30),
	})
	require.NoError(t, err)

	ids := make([]string, 0, len(result.ProcessedData))
	for i, s := range result.ProcessedData {
		ids = append(ids, s.StudentID)
		assert.Equal(t, i+1, s.Position)
		if i > 0 {
			assert.LessOrEqual(t, s.Average, result.ProcessedData[i-1].Average)
		}
	}
	assert.Equal(t, []string{"B", "D", "A", "C", "E"}, ids)
}

func TestCohortStatistics(t *testing.T) {
	e := newTestEngine(t)

	result, err := e.Process(context.Background(), []domain.RawRecord{
		rawScores("S1", "F", 90, 80, 70, 60, 50, 40, 30, 20, 10),
		rawScores("S2", "M", 40, 41, 42, 43, 44, 45, 46, 47, 48),
		rawScores("S3", "M", 10, 20, 30, 40, 50, 60, 70, 80, 90),
	})
	require.NoError(t, err)

	assert.Equal(t, 3, result.TotalStudents)
	assert.Equal(t, 48.0, result.OverallMean)
	assert.Equal(t, domain.GenderDistribution{M: 2, F: 1}, result.GenderDistribution)
	assert.Equal(t, map[string]domain.StreamStats{
		"8 Suswa": {Count: 3, Mean: 48},
	}, result.StreamStats)

	require.Len(t, result.SubjectStats, 9)
	for i := 1; i < len(result.SubjectStats); i++ {
		assert.GreaterOrEqual(t, result.SubjectStats[i-1].Mean, result.SubjectStats[i].Mean)
	}

	english, ok := result.Subject("English")
	require.True(t, ok)
	assert.Equal(t, 46.67, english.Mean)
	assert.Equal(t, 33.3, english.PassRate)
	assert.Equal(t, 10.0, english.Min)
	assert.Equal(t, 90.0, english.Max)
	assert.Len(t, english.GradeDistribution, 8)
	assert.Equal(t, 1, english.GradeDistribution["EE1"])
	assert.Equal(t, 1, english.GradeDistribution["AE1"])
	assert.Equal(t, 1, english.GradeDistribution["BE2"])
	assert.Equal(t, 0, english.GradeDistribution["ME1"])

	social, ok := result.Subject("SocialStudies")
	require.True(t, ok)
	assert.Equal(t, 48.0, social.Mean)
	assert.Equal(t, 100.0, social.PassRate)

	total := 0
	for _, c := range english.GradeDistribution {
		total += c
	}
	assert.Equal(t, result.TotalStudents, total)
}

func TestSubjectOrderTiesKeepConfiguredOrder(t *testing.T) {
	e, err := NewEngine(nil, EngineConfig{Subjects: []string{"B", "A", "C"}})
	require.NoError(t, err)

	result, err := e.Process(context.Background(), []domain.RawRecord{
		{"StudentID": "1", "Name": "x", "Gender": "M", "Stream": "s", "A": 50, "B": 50, "C": 70},
	})
	require.NoError(t, err)

	names := []string{}
	for _, s := range result.SubjectStats {
		names = append(names, s.Name)
	}
	assert.Equal(t, []string{"C", "B", "A"}, names)
}

func TestCohortMeanConsistency(t *testing.T) {
	e := newTestEngine(t)

	raws := SampleRecords(7, 0, e.Subjects())
	result, err := e.Process(context.Background(), raws)
	require.NoError(t, err)

	sum := 0.0
	for _, s := range result.ProcessedData {
		sum += s.Average
	}
	assert.InDelta(t, sum/float64(result.TotalStudents), result.OverallMean, 0.005)

	for _, s := range result.ProcessedData {
		total := 0.0
		for _, sub := range result.Subjects {
			total += s.Scores[sub]
		}
		assert.Equal(t, total, s.TotalMarks)
		assert.InDelta(t, total/9, s.Average, 0.005)
	}
}

func TestTopAndBottomLists(t *testing.T) {
	e := newTestEngine(t)

	raws := make([]domain.RawRecord, 0, 25)
	for i := 0; i < 25; i++ {
		raws = append(raws, rawStudent(fmt.Sprintf("S%02d", i), "n", "M", "X", float64(i*4)))
	}

	result, err := e.Process(context.Background(), raws)
	require.NoError(t, err)

	require.Len(t, result.Top10, 10)
	require.Len(t, result.Bottom10, 10)
	assert.Equal(t, 1, result.Top10[0].Position)
	assert.Equal(t, 10, result.Top10[9].Position)
	assert.Equal(t, 16, result.Bottom10[0].Position)
	assert.Equal(t, 25, result.Bottom10[9].Position)
}

func TestTopAndBottomOverlapForSmallCohort(t *testing.T) {
	e := newTestEngine(t)

	raws := make([]domain.RawRecord, 0, 12)
	for i := 0; i < 12; i++ {
		raws = append(raws, rawStudent(fmt.Sprintf("S%02d", i), "n", "F", "X", float64(40+i)))
	}

	result, err := e.Process(context.Background(), raws)
	require.NoError(t, err)

	assert.Len(t, result.Top10, 10)
	assert.Len(t, result.Bottom10, 10)
	assert.Equal(t, 3, result.Bottom10[0].Position)
}

func TestRemediationFilter(t *testing.T) {
	e := newTestEngine(t)

	result, err := e.Process(context.Background(), []domain.RawRecord{
		rawScores("pass", "F", 60, 60, 60, 60, 60, 60, 60, 60, 60),
		rawScores("one", "M", 30, 60, 60, 60, 60, 60, 60, 60, 60),
		rawScores("two", "F", 30, 30, 70, 70, 70, 70, 70, 70, 70),
		rawScores("many", "M", 10, 20, 30, 40, 50, 60, 70, 80, 90),
		rawScores("all", "F", 5, 5, 5, 5, 5, 5, 5, 5, 5),
	})
	require.NoError(t, err)

	require.Len(t, result.StudentsFailing2Plus, 3)
	prev := 0
	for _, s := range result.StudentsFailing2Plus {
		assert.GreaterOrEqual(t, s.FailedSubjects, 2)
		assert.Greater(t, s.Position, prev)
		prev = s.Position
	}
	assert.Equal(t, "two", result.StudentsFailing2Plus[0].StudentID)
	assert.Equal(t, "all", result.StudentsFailing2Plus[2].StudentID)
}

func TestProcessIsIdempotent(t *testing.T) {
	e := newTestEngine(t)
	raws := SampleRecords(42, 0, e.Subjects())

	first, err := e.Process(context.Background(), raws)
	require.NoError(t, err)
	second, err := e.Process(context.Background(), raws)
	require.NoError(t, err)

	assert.Equal(t, first, second)
}

func TestProcessRecordsDoesNotAliasInput(t *testing.T) {
	e, err := NewEngine(nil, EngineConfig{Subjects: []string{"English"}})
	require.NoError(t, err)

	records := []domain.StudentRecord{{
		StudentID: "S1", Name: "Amina", Gender: "F", Stream: "A",
		Scores: map[string]float64{"English": 55},
	}}

	result, err := e.ProcessRecords(context.Background(), records)
	require.NoError(t, err)

	result.ProcessedData[0].Scores["English"] = 0
	assert.Equal(t, 55.0, records[0].Scores["English"])
}

func TestProcessBatchKeepsColumns(t *testing.T) {
	e := newTestEngine(t)
	subjects := e.Subjects()

	b := &Batch{
		Columns: SampleColumns(subjects),
		Records: SampleRecords(1, 5, subjects),
	}
	result, err := e.ProcessBatch(context.Background(), b)
	require.NoError(t, err)
	assert.Equal(t, b.Columns, result.Columns)
	assert.Equal(t, 5, result.TotalStudents)
}

func TestCustomScale(t *testing.T) {
	scale, err := grading.NewScale("pass-fail", []grading.Band{
		{Label: "P", Threshold: 50, Points: 1},
		{Label: "F", Threshold: 0, Points: 0},
	}, 50)
	require.NoError(t, err)

	e, err := NewEngine(nil, EngineConfig{Subjects: []string{"Maths"}, Scale: scale, RemediationMinFailed: 1})
	require.NoError(t, err)

	result, err := e.Process(context.Background(), []domain.RawRecord{
		{"StudentID": "1", "Name": "a", "Gender": "M", "Maths": 49},
		{"StudentID": "2", "Name": "b", "Gender": "F", "Maths": 50},
	})
	require.NoError(t, err)

	assert.Equal(t, map[string]int{"P": 1, "F": 1}, result.SubjectStats[0].GradeDistribution)
	require.Len(t, result.StudentsFailing2Plus, 1)
	assert.Equal(t, "1", result.StudentsFailing2Plus[0].StudentID)
}

func TestProcessBatchCanonicalColumns(t *testing.T) {
	e := newTestEngine(t)

	cols := []string{"student id", "NAME", "gender", "Stream", "Notes"}
	cols = append(cols, e.Subjects()...)
	cols[5] = "english"

	rec := rawStudent("1", "Wanjiru", "F", "8 Suswa", 60)
	delete(rec, domain.FieldStudentID)
	delete(rec, domain.FieldName)
	delete(rec, domain.FieldGender)
	delete(rec, "English")
	rec["student id"] = "1"
	rec["NAME"] = "Wanjiru"
	rec["gender"] = "F"
	rec["english"] = "60"
	rec["Notes"] = "transfer"

	result, err := e.ProcessBatch(context.Background(), &Batch{Columns: cols, Records: []domain.RawRecord{rec}})
	require.NoError(t, err)

	assert.Equal(t, []string{"StudentID", "Name", "Gender", "Stream", "Notes", "English"}, result.Columns[:6])
	assert.Equal(t, "transfer", result.ProcessedData[0].Extra["Notes"])
}
