package http

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"mime/multipart"
	"net/http"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"classpulse/internal/dataprocessing"
	apierrors "classpulse/internal/errors"
	"classpulse/internal/exporter"
	"classpulse/internal/middleware"
	"classpulse/internal/services"
	api "classpulse/pkg/contracts/api/v1"
)

// uploadMemory is the part of a multipart form kept in memory; the rest
// spills to temporary files
const uploadMemory = 8 << 20

// AnalyticsHandler handles score batch requests with RFC 7807 compliance
type AnalyticsHandler struct {
	service      AnalyticsServiceInterface
	validation   *middleware.ValidationMiddleware
	query        *middleware.QueryParamValidator
	logger       *slog.Logger
	errorHandler *apierrors.ErrorHandler
}

// NewAnalyticsHandler creates a new analytics handler
func NewAnalyticsHandler(
	service AnalyticsServiceInterface,
	validation *middleware.ValidationMiddleware,
	logger *slog.Logger,
	errorHandler *apierrors.ErrorHandler,
) *AnalyticsHandler {
	return &AnalyticsHandler{
		service:      service,
		validation:   validation,
		query:        middleware.NewQueryParamValidator(logger, errorHandler),
		logger:       logger.With(slog.String("component", "analytics_handler")),
		errorHandler: errorHandler,
	}
}

// Routes returns the analytics routes
func (h *AnalyticsHandler) Routes() chi.Router {
	r := chi.NewRouter()

	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Use(h.validation.LimitBody)

	r.Get("/sample", h.Sample)

	// JSON batches
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeValidator("application/json"))
		r.Use(h.validation.ValidateJSON)
		r.Post("/", h.Analyze)
		r.Post("/insights", h.Insights)
		r.Post("/report-card/{studentID}", h.ReportCard)
	})

	// Score sheet uploads
	r.Group(func(r chi.Router) {
		r.Use(middleware.ContentTypeValidator("multipart/form-data"))
		r.Use(middleware.TraceMiddleware("analytics.upload"))
		r.Post("/upload", h.Upload)
		r.Post("/export", h.Export)
	})

	return r
}

// Analyze handles POST /api/analytics
func (h *AnalyticsHandler) Analyze(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRecords(w, r)
	if !ok {
		return
	}

	result, err := h.service.Process(r.Context(), req.Records)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, result)
}

// Upload handles POST /api/analytics/upload
func (h *AnalyticsHandler) Upload(w http.ResponseWriter, r *http.Request) {
	file, name, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.service.ProcessUpload(r.Context(), name, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	h.logger.InfoContext(r.Context(), "score sheet processed",
		slog.String("filename", name),
		slog.Int("student_count", result.TotalStudents),
		slog.String("request_id", middleware.GetRequestID(r.Context())))

	render.JSON(w, r, result)
}

// Export handles POST /api/analytics/export and streams back the processed
// sheet as a download
func (h *AnalyticsHandler) Export(w http.ResponseWriter, r *http.Request) {
	formatName, ok := h.query.ValidateEnum(w, r, "format",
		[]string{string(exporter.FormatCSV), string(exporter.FormatXLSX), string(exporter.FormatJSON)},
		string(exporter.FormatCSV))
	if !ok {
		return
	}
	format, _ := exporter.ParseFormat(formatName)

	file, name, ok := h.readUpload(w, r)
	if !ok {
		return
	}
	defer file.Close()

	result, err := h.service.ProcessUpload(r.Context(), name, file)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	// Render fully before writing headers so a failed export still gets a problem response
	var buf bytes.Buffer
	if err := h.service.Export(r.Context(), result, format, &buf); err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	w.Header().Set("Content-Type", format.ContentType())
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", exportName(name, format)))
	w.Header().Set("Content-Length", strconv.Itoa(buf.Len()))
	w.WriteHeader(http.StatusOK)
	if _, err := buf.WriteTo(w); err != nil {
		h.logger.WarnContext(r.Context(), "export download interrupted",
			slog.String("error", err.Error()),
			slog.String("request_id", middleware.GetRequestID(r.Context())))
	}
}

// Insights handles POST /api/analytics/insights
func (h *AnalyticsHandler) Insights(w http.ResponseWriter, r *http.Request) {
	req, ok := h.decodeRecords(w, r)
	if !ok {
		return
	}

	insights, err := h.service.Insights(r.Context(), req.Records)
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, insights)
}

// ReportCard handles POST /api/analytics/report-card/{studentID}
func (h *AnalyticsHandler) ReportCard(w http.ResponseWriter, r *http.Request) {
	studentID := strings.TrimSpace(chi.URLParam(r, "studentID"))
	if studentID == "" {
		h.errorHandler.HandleError(w, r, apierrors.ErrValidation("studentID", "Student ID is required"))
		return
	}

	req, ok := h.decodeRecords(w, r)
	if !ok {
		return
	}

	card, err := h.service.ReportCard(r.Context(), req.Records, studentID)
	if err != nil {
		if errors.Is(err, dataprocessing.ErrStudentNotFound) {
			h.errorHandler.HandleError(w, r, apierrors.StudentNotFoundError(studentID))
			return
		}
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, card)
}

// Sample handles GET /api/analytics/sample?seed=N&size=M
func (h *AnalyticsHandler) Sample(w http.ResponseWriter, r *http.Request) {
	seed, ok := h.query.ValidateInt(w, r, "seed", 0, 1<<62, 1)
	if !ok {
		return
	}
	size, ok := h.query.ValidateInt(w, r, "size", 0, 1000, 0)
	if !ok {
		return
	}

	result, err := h.service.Sample(r.Context(), seed, int(size))
	if err != nil {
		h.errorHandler.HandleError(w, r, mapServiceError(err))
		return
	}

	render.JSON(w, r, result)
}

// decodeRecords reads and validates an {"records":[...]} body
func (h *AnalyticsHandler) decodeRecords(w http.ResponseWriter, r *http.Request) (*api.AnalyticsRequest, bool) {
	var req api.AnalyticsRequest
	if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.HandleError(w, r, err)
			return nil, false
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return nil, false
	}

	if err := h.validation.ValidateStruct(&req); err != nil {
		h.errorHandler.HandleError(w, r, err)
		return nil, false
	}

	return &req, true
}

// readUpload extracts the "file" part of a multipart form. The caller closes the file.
func (h *AnalyticsHandler) readUpload(w http.ResponseWriter, r *http.Request) (multipart.File, string, bool) {
	if err := r.ParseMultipartForm(uploadMemory); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			h.errorHandler.HandleError(w, r, err)
			return nil, "", false
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return nil, "", false
	}

	file, header, err := r.FormFile("file")
	if err != nil {
		if errors.Is(err, http.ErrMissingFile) {
			h.errorHandler.HandleError(w, r, apierrors.ErrValidation("file", "A score sheet must be uploaded in the file field"))
			return nil, "", false
		}
		h.errorHandler.HandleError(w, r, apierrors.InvalidRequestWithError(err))
		return nil, "", false
	}

	form := struct {
		Filename string `json:"filename" validate:"required,filename"`
	}{Filename: header.Filename}
	if err := h.validation.ValidateStruct(&form); err != nil {
		file.Close()
		h.errorHandler.HandleError(w, r, err)
		return nil, "", false
	}

	h.logger.DebugContext(r.Context(), "score sheet received",
		slog.String("filename", header.Filename),
		slog.Int64("size", header.Size),
		slog.String("request_id", middleware.GetRequestID(r.Context())))

	return file, header.Filename, true
}

// exportName derives the download name from the uploaded sheet's name
func exportName(upload string, format exporter.Format) string {
	base := strings.TrimSuffix(filepath.Base(upload), filepath.Ext(upload))
	if base == "" || base == "." {
		base = "classpulse"
	}
	return base + "_processed" + format.Ext()
}

// mapServiceError converts engine and service errors into API errors. Errors
// it does not recognise are passed through for the ErrorHandler to classify.
func mapServiceError(err error) error {
	var malformed *dataprocessing.MalformedRecordError
	var tooLarge *http.MaxBytesError

	switch {
	case errors.As(err, &malformed):
		return apierrors.MalformedRecord(apierrors.RecordErrorDetails{
			Row:       malformed.Row,
			StudentID: malformed.StudentID,
			Field:     malformed.Field,
			Reason:    malformed.Reason,
		})
	case errors.Is(err, dataprocessing.ErrMalformedRecord):
		return apierrors.NewWithDetails(http.StatusUnprocessableEntity, apierrors.CodeMalformedRecord,
			"Batch contains a malformed record", err.Error())
	case errors.Is(err, dataprocessing.ErrEmptyBatch):
		return apierrors.ErrEmptyBatch
	case errors.As(err, &tooLarge):
		return err
	case errors.Is(err, dataprocessing.ErrInvalidFormat):
		return apierrors.InvalidFileWithError(err)
	case errors.Is(err, dataprocessing.ErrStudentNotFound):
		return apierrors.NewWithDetails(http.StatusNotFound, apierrors.CodeStudentNotFound, "Student not found", err.Error())
	case errors.Is(err, services.ErrSampleTooLarge):
		return apierrors.ErrValidation("size", err.Error())
	case errors.Is(err, services.ErrUnsupportedFormat):
		return apierrors.ErrValidation("format", err.Error())
	case errors.Is(err, services.ErrInvalidInput):
		return apierrors.NewWithDetails(http.StatusBadRequest, apierrors.CodeInvalidParameter, "Invalid parameter value", err.Error())
	default:
		return err
	}
}
