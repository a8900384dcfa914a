// Package http implements HTTP request handlers for the ClassPulse web service.
// It is a thin layer between HTTP transport and the analytics service: handlers
// parse and validate requests, delegate to services, and turn service errors
// into RFC 7807 responses.
//
// # Request Flow
//
//	HTTP Request → Chi Router → Middleware → Handler → AnalyticsService → Engine
//	                                              ↓
//	HTTP Response ← Handler ← Service Response ←─┘
//
// # Handler Structure
//
// Each handler follows this pattern:
//
//	func (h *AnalyticsHandler) Analyze(w http.ResponseWriter, r *http.Request) {
//	    req, ok := h.decodeRecords(w, r)
//	    if !ok {
//	        return
//	    }
//
//	    result, err := h.service.Process(r.Context(), req.Records)
//	    if err != nil {
//	        h.errorHandler.HandleError(w, r, mapServiceError(err))
//	        return
//	    }
//
//	    render.JSON(w, r, result)
//	}
//
// # Error Handling
//
// Engine errors are mapped before they reach the ErrorHandler:
//
//	MalformedRecordError  → 422 MALFORMED_RECORD (row, student_id, field, reason)
//	ErrEmptyBatch         → 400 EMPTY_BATCH
//	ErrInvalidFormat      → 400 INVALID_FILE
//	ErrStudentNotFound    → 404 STUDENT_NOT_FOUND
//	http.MaxBytesError    → 413 PAYLOAD_TOO_LARGE
//
// A problem document looks like:
//
//	{
//	    "type": "/errors/analytics/malformed-record",
//	    "title": "Unprocessable Entity",
//	    "status": 422,
//	    "detail": "Record at row 3 is malformed: Mathematics must be within [0, 100]",
//	    "instance": "/api/analytics"
//	}
//
// # Testing
//
// Handlers are tested with httptest against a testify mock of
// AnalyticsServiceInterface.
package http
