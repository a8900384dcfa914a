// Package services holds the business layer between HTTP handlers and the
// grading engine.
//
// AnalyticsService turns records, uploads or a seeded sample into an
// AnalyticsResult, builds insights and report cards on top of it, and renders
// exports. Every batch runs inside an "analytics.process" span and is counted
// in the batch metrics, whether it succeeds or not.
//
// HealthService answers the liveness, readiness and version probes.
//
// Services take their collaborators and a *slog.Logger in the constructor and
// never reach for globals.
package services
