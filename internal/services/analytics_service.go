package services

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/trace"

	"classpulse/internal/dataprocessing"
	"classpulse/internal/exporter"
	"classpulse/internal/grading"
	"classpulse/internal/infrastructure"
	"classpulse/pkg/contracts/domain"
)

// Batch sources used as metric labels
const (
	SourceJSON   = "json"
	SourceUpload = "upload"
	SourceSample = "sample"
	SourceFile   = "file"
)

// maxSampleSize caps generated cohorts
const maxSampleSize = 1000

// AnalyticsOptions carries the optional collaborators of an AnalyticsService
type AnalyticsOptions struct {
	Metrics    *infrastructure.BusinessMetrics
	Tracer     trace.Tracer
	SampleSize int
	CSV        *exporter.CSVWriter
	Workbook   *exporter.WorkbookWriter
}

// AnalyticsService runs score batches through the engine and records
// metrics and spans for each one
type AnalyticsService struct {
	engine     *dataprocessing.Engine
	parser     *dataprocessing.Parser
	csv        *exporter.CSVWriter
	workbook   *exporter.WorkbookWriter
	metrics    *infrastructure.BusinessMetrics
	tracer     trace.Tracer
	sampleSize int
	logger     *slog.Logger
}

// NewAnalyticsService creates an analytics service around engine
func NewAnalyticsService(engine *dataprocessing.Engine, opts AnalyticsOptions, logger *slog.Logger) *AnalyticsService {
	if logger == nil {
		logger = slog.Default()
	}
	logger = logger.With(slog.String("service", "analytics"))

	if opts.Tracer == nil {
		opts.Tracer = otel.Tracer(infrastructure.ServiceName)
	}
	if opts.SampleSize <= 0 {
		opts.SampleSize = dataprocessing.SampleClassSize()
	}
	if opts.CSV == nil {
		opts.CSV = exporter.NewCSVWriter(nil, logger)
	}
	if opts.Workbook == nil {
		opts.Workbook = exporter.NewWorkbookWriter(engine.Scale(), nil, logger)
	}

	logger.Info("AnalyticsService initialized",
		slog.Int("subject_count", len(engine.Subjects())),
		slog.String("grading_scale", engine.Scale().Name()),
		slog.Int("sample_size", opts.SampleSize))

	return &AnalyticsService{
		engine:     engine,
		parser:     dataprocessing.NewParser(logger, engine.Subjects()),
		csv:        opts.CSV,
		workbook:   opts.Workbook,
		metrics:    opts.Metrics,
		tracer:     opts.Tracer,
		sampleSize: opts.SampleSize,
		logger:     logger,
	}
}

// Subjects returns the configured subject list
func (s *AnalyticsService) Subjects() []string {
	return s.engine.Subjects()
}

// GradingKey describes the grading scale in use
func (s *AnalyticsService) GradingKey() domain.GradingKey {
	return s.engine.Scale().Key()
}

// Process grades a batch of raw records
func (s *AnalyticsService) Process(ctx context.Context, raws []domain.RawRecord) (*domain.AnalyticsResult, error) {
	return s.run(ctx, SourceJSON, len(raws), func(ctx context.Context) (*domain.AnalyticsResult, error) {
		return s.engine.Process(ctx, raws)
	})
}

// ProcessUpload parses a CSV or XLSX score sheet and grades it. name is the
// uploaded file name and selects the parser.
func (s *AnalyticsService) ProcessUpload(ctx context.Context, name string, r io.Reader) (*domain.AnalyticsResult, error) {
	return s.processSheet(ctx, SourceUpload, func() (*dataprocessing.Batch, error) {
		return s.parser.Parse(name, r)
	})
}

// ProcessFile parses and grades a score sheet on disk
func (s *AnalyticsService) ProcessFile(ctx context.Context, path string) (*domain.AnalyticsResult, error) {
	return s.processSheet(ctx, SourceFile, func() (*dataprocessing.Batch, error) {
		return s.parser.ParseFile(path)
	})
}

func (s *AnalyticsService) processSheet(ctx context.Context, source string, parse func() (*dataprocessing.Batch, error)) (*domain.AnalyticsResult, error) {
	start := time.Now()
	batch, err := parse()
	if err != nil {
		infrastructure.RecordBatch(ctx, s.metrics, source, 0, time.Since(start), err)
		s.logger.WarnContext(ctx, "score sheet rejected",
			slog.String("source", source),
			slog.String("error", err.Error()))
		return nil, err
	}

	return s.run(ctx, source, len(batch.Records), func(ctx context.Context) (*domain.AnalyticsResult, error) {
		return s.engine.ProcessBatch(ctx, batch)
	})
}

// Sample grades a generated cohort. The same seed always yields the same
// cohort; size 0 uses the configured sample size.
func (s *AnalyticsService) Sample(ctx context.Context, seed int64, size int) (*domain.AnalyticsResult, error) {
	if size <= 0 {
		size = s.sampleSize
	}
	if size > maxSampleSize {
		return nil, fmt.Errorf("%w: %d > %d", ErrSampleTooLarge, size, maxSampleSize)
	}

	subjects := s.engine.Subjects()
	batch := &dataprocessing.Batch{
		Source:  fmt.Sprintf("sample-%d", seed),
		Columns: dataprocessing.SampleColumns(subjects),
		Records: dataprocessing.SampleRecords(seed, size, subjects),
	}
	return s.run(ctx, SourceSample, size, func(ctx context.Context) (*domain.AnalyticsResult, error) {
		return s.engine.ProcessBatch(ctx, batch)
	})
}

// Insights grades raws and summarises the strongest and weakest subjects
func (s *AnalyticsService) Insights(ctx context.Context, raws []domain.RawRecord) (*domain.Insights, error) {
	result, err := s.Process(ctx, raws)
	if err != nil {
		return nil, err
	}
	insights := dataprocessing.BuildInsights(s.engine.Scale(), result)
	return &insights, nil
}

// ReportCard grades raws and returns the breakdown for one student
func (s *AnalyticsService) ReportCard(ctx context.Context, raws []domain.RawRecord, studentID string) (*domain.ReportCard, error) {
	if studentID == "" {
		return nil, fmt.Errorf("%w: student ID is required", ErrInvalidInput)
	}
	result, err := s.Process(ctx, raws)
	if err != nil {
		return nil, err
	}
	return dataprocessing.BuildReportCard(s.engine.Scale(), result, studentID)
}

// Export renders result in the given format
func (s *AnalyticsService) Export(ctx context.Context, result *domain.AnalyticsResult, format exporter.Format, w io.Writer) error {
	if result == nil {
		return fmt.Errorf("%w: nothing to export", ErrInvalidInput)
	}

	ctx, span := s.tracer.Start(ctx, "analytics.export",
		trace.WithAttributes(attribute.String("export.format", string(format))))
	defer span.End()

	var err error
	switch format {
	case exporter.FormatCSV:
		err = s.csv.WriteProcessed(w, result)
	case exporter.FormatXLSX:
		err = s.workbook.Write(w, result)
	case exporter.FormatJSON:
		enc := json.NewEncoder(w)
		enc.SetIndent("", "  ")
		err = enc.Encode(result)
	default:
		err = fmt.Errorf("%w: %q", ErrUnsupportedFormat, format)
	}
	if err != nil {
		infrastructure.RecordError(ctx, err)
		return err
	}

	infrastructure.RecordExport(ctx, s.metrics, string(format))
	s.logger.InfoContext(ctx, "report exported",
		slog.String("format", string(format)),
		slog.Int("student_count", result.TotalStudents))
	return nil
}

// run wraps one engine call in a span and records its outcome
func (s *AnalyticsService) run(ctx context.Context, source string, size int, fn func(context.Context) (*domain.AnalyticsResult, error)) (*domain.AnalyticsResult, error) {
	batchID := uuid.NewString()
	ctx, span := s.tracer.Start(ctx, "analytics.process",
		trace.WithAttributes(
			attribute.String("batch.id", batchID),
			attribute.String("batch.source", source),
			attribute.Int("batch.size", size),
		))
	defer span.End()

	start := time.Now()
	result, err := fn(ctx)
	duration := time.Since(start)

	students := 0
	if result != nil {
		students = result.TotalStudents
	}
	infrastructure.RecordBatch(ctx, s.metrics, source, students, duration, err)

	if err != nil {
		infrastructure.RecordError(ctx, err)
		s.logger.WarnContext(ctx, "batch failed",
			slog.String("batch_id", batchID),
			slog.String("source", source),
			slog.Int("record_count", size),
			slog.String("error", err.Error()))
		return nil, err
	}

	s.logger.InfoContext(ctx, "batch processed",
		slog.String("batch_id", batchID),
		slog.String("source", source),
		slog.Int("student_count", students),
		slog.Float64("overall_mean", result.OverallMean),
		slog.Duration("duration", duration))
	return result, nil
}

// Scale exposes the grading scale for callers that build their own views
func (s *AnalyticsService) Scale() *grading.Scale {
	return s.engine.Scale()
}
