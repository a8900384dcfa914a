package config

import (
	"time"

	"classpulse/pkg/contracts/domain"
)

// Application constants
const (
	// Application Info
	AppName    = "classpulse"
	AppVersion = "1.0.0"

	// Rate Limiting
	DefaultRateLimit = 100 // requests per second
	DefaultBurstSize = 50

	// Network Timeouts
	DefaultRequestTimeout = 60 * time.Second

	// File Paths (relative to working directory)
	DefaultReportsDir = "reports"
	DefaultLogsDir    = "logs"
	DefaultLogFile    = "logs/classpulse.log"

	// Analytics
	DefaultTopN                 = 10
	DefaultRemediationMinFailed = 2
	DefaultMaxUploadBytes       = 10 << 20 // 10MB

	// Export file names
	SummaryCSVName      = "summary.csv"
	SummaryWorkbookName = "summary.xlsx"
	SummaryJSONName     = "summary.json"
)

// DefaultSubjects returns the Junior School subject list
func DefaultSubjects() []string {
	return domain.DefaultSubjects()
}
