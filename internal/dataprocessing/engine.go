package dataprocessing

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"classpulse/internal/grading"
	"classpulse/pkg/contracts/domain"
)

// Engine computes an AnalyticsResult from a batch of student records.
// It holds only immutable configuration and is safe for concurrent use.
type Engine struct {
	logger     *slog.Logger
	subjects   []string
	scale      *grading.Scale
	topN       int
	minFailed  int
	normalizer *Normalizer
}

// EngineConfig holds configuration options for the Engine.
type EngineConfig struct {
	Subjects             []string       // Ordered subject list every record must carry
	Scale                *grading.Scale // Grading scale, KJSEA when nil
	TopN                 int            // Size of the top and bottom lists
	RemediationMinFailed int            // Failed subjects that put a student on the watch-list
}

// DefaultEngineConfig returns the KJSEA configuration with the nine
// Junior School subjects
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Subjects:             domain.DefaultSubjects(),
		Scale:                grading.KJSEA(),
		TopN:                 10,
		RemediationMinFailed: 2,
	}
}

// NewEngine validates cfg and creates an engine
func NewEngine(logger *slog.Logger, cfg EngineConfig) (*Engine, error) {
	if logger == nil {
		logger = slog.Default()
	}

	if len(cfg.Subjects) == 0 {
		return nil, ErrNoSubjects
	}
	seen := make(map[string]bool, len(cfg.Subjects))
	for _, s := range cfg.Subjects {
		if s == "" {
			return nil, fmt.Errorf("subject list contains an empty name")
		}
		if seen[fieldKey(s)] {
			return nil, fmt.Errorf("duplicate subject %q", s)
		}
		seen[fieldKey(s)] = true
	}

	if cfg.Scale == nil {
		cfg.Scale = grading.KJSEA()
	}
	if cfg.TopN <= 0 {
		cfg.TopN = 10
	}
	if cfg.RemediationMinFailed <= 0 {
		cfg.RemediationMinFailed = 2
	}

	subjects := append([]string(nil), cfg.Subjects...)

	return &Engine{
		logger:     logger.With(slog.String("component", "analytics_engine")),
		subjects:   subjects,
		scale:      cfg.Scale,
		topN:       cfg.TopN,
		minFailed:  cfg.RemediationMinFailed,
		normalizer: NewNormalizer(subjects),
	}, nil
}

// Subjects returns a copy of the configured subject list
func (e *Engine) Subjects() []string {
	return append([]string(nil), e.subjects...)
}

// Scale returns the grading scale in use
func (e *Engine) Scale() *grading.Scale {
	return e.scale
}

// Normalize validates every raw record. The first malformed record fails
// the whole batch.
func (e *Engine) Normalize(ctx context.Context, raws []domain.RawRecord) ([]domain.StudentRecord, error) {
	if len(raws) == 0 {
		return nil, ErrEmptyBatch
	}

	records := make([]domain.StudentRecord, 0, len(raws))
	for i, raw := range raws {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		rec, err := e.normalizer.Normalize(i+1, raw)
		if err != nil {
			return nil, err
		}
		records = append(records, rec)
	}

	if err := checkUnique(records); err != nil {
		return nil, err
	}
	return records, nil
}

// Process normalizes raws and computes the full report
func (e *Engine) Process(ctx context.Context, raws []domain.RawRecord) (*domain.AnalyticsResult, error) {
	records, err := e.Normalize(ctx, raws)
	if err != nil {
		e.logger.WarnContext(ctx, "batch rejected",
			slog.Int("record_count", len(raws)),
			slog.String("error", err.Error()))
		return nil, err
	}
	return e.compute(ctx, records)
}

// ProcessBatch processes a parsed upload and keeps its column order on the result
func (e *Engine) ProcessBatch(ctx context.Context, b *Batch) (*domain.AnalyticsResult, error) {
	if b == nil {
		return nil, ErrEmptyBatch
	}
	result, err := e.Process(ctx, b.Records)
	if err != nil {
		return nil, err
	}
	result.Columns = e.canonicalColumns(b.Columns)
	return result, nil
}

// canonicalColumns renames source headers that the normalizer matched loosely
// ("student id", "MATHEMATICS") to the field names they were read into, so
// exports can find their values again.
func (e *Engine) canonicalColumns(cols []string) []string {
	known := make(map[string]string, len(e.subjects)+4)
	for _, f := range append([]string{domain.FieldStudentID, domain.FieldName, domain.FieldGender, domain.FieldStream}, e.subjects...) {
		known[fieldKey(f)] = f
	}
	exact := make(map[string]bool, len(cols))
	for _, c := range cols {
		exact[c] = true
	}

	out := make([]string, 0, len(cols))
	seen := make(map[string]bool, len(cols))
	for _, c := range cols {
		name := c
		if canon, ok := known[fieldKey(c)]; ok && !exact[canon] && !seen[canon] {
			name = canon
		}
		seen[name] = true
		out = append(out, name)
	}
	return out
}

// ProcessRecords computes the report from already structured records
func (e *Engine) ProcessRecords(ctx context.Context, records []domain.StudentRecord) (*domain.AnalyticsResult, error) {
	if len(records) == 0 {
		return nil, ErrEmptyBatch
	}
	for i, rec := range records {
		if err := e.normalizer.Check(i+1, rec); err != nil {
			return nil, err
		}
	}
	if err := checkUnique(records); err != nil {
		return nil, err
	}
	return e.compute(ctx, records)
}

func (e *Engine) compute(ctx context.Context, records []domain.StudentRecord) (*domain.AnalyticsResult, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	start := time.Now()

	students := make([]domain.ProcessedStudent, len(records))
	for i, rec := range records {
		students[i] = aggregate(e.scale, e.subjects, rec)
	}

	ranked := rank(students)

	result := &domain.AnalyticsResult{
		TotalStudents:        len(ranked),
		GenderDistribution:   genderDistribution(ranked),
		StreamStats:          streamStats(ranked),
		SubjectStats:         subjectStats(e.scale, e.subjects, ranked),
		Top10:                head(ranked, e.topN),
		Bottom10:             tail(ranked, e.topN),
		StudentsFailing2Plus: failing(ranked, e.minFailed),
		OverallMean:          overallMean(ranked),
		ProcessedData:        ranked,
		Subjects:             e.Subjects(),
	}

	e.logger.DebugContext(ctx, "batch processed",
		slog.Int("students", result.TotalStudents),
		slog.Int("subjects", len(e.subjects)),
		slog.Float64("overall_mean", result.OverallMean),
		slog.Int("remediation", len(result.StudentsFailing2Plus)),
		slog.Duration("duration", time.Since(start)))

	return result, nil
}

func checkUnique(records []domain.StudentRecord) error {
	seen := make(map[string]int, len(records))
	for i, rec := range records {
		if first, dup := seen[rec.StudentID]; dup {
			return &MalformedRecordError{
				Row:       i + 1,
				StudentID: rec.StudentID,
				Field:     domain.FieldStudentID,
				Reason:    fmt.Sprintf("duplicate of row %d", first),
			}
		}
		seen[rec.StudentID] = i + 1
	}
	return nil
}
