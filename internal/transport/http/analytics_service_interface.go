package http

import (
	"context"
	"io"

	"classpulse/internal/exporter"
	"classpulse/pkg/contracts/domain"
)

// AnalyticsServiceInterface defines the analytics operations the HTTP layer needs
type AnalyticsServiceInterface interface {
	Process(ctx context.Context, raws []domain.RawRecord) (*domain.AnalyticsResult, error)
	ProcessUpload(ctx context.Context, name string, r io.Reader) (*domain.AnalyticsResult, error)
	Sample(ctx context.Context, seed int64, size int) (*domain.AnalyticsResult, error)
	Insights(ctx context.Context, raws []domain.RawRecord) (*domain.Insights, error)
	ReportCard(ctx context.Context, raws []domain.RawRecord, studentID string) (*domain.ReportCard, error)
	Export(ctx context.Context, result *domain.AnalyticsResult, format exporter.Format, w io.Writer) error
	GradingKey() domain.GradingKey
}
