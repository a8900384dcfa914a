// Package api contains API contract definitions for the ClassPulse service.
// Version v1 represents the current stable API version.
package api

import (
	"classpulse/pkg/contracts/domain"
)

// Analytics API Requests

// AnalyticsRequest carries a batch of raw score records. An empty records
// array is accepted by validation and rejected by the engine as an empty batch.
type AnalyticsRequest struct {
	Records []domain.RawRecord `json:"records" validate:"required"`
}
