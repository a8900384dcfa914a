package http

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/render"

	"classpulse/pkg/contracts/domain"
)

// GradingKeySource reports the grading scale the engine grades with
type GradingKeySource interface {
	GradingKey() domain.GradingKey
}

// GradingHandler serves the grading scale
type GradingHandler struct {
	source GradingKeySource
}

// NewGradingHandler creates a new grading handler
func NewGradingHandler(source GradingKeySource) *GradingHandler {
	return &GradingHandler{source: source}
}

// Routes returns the grading routes
func (h *GradingHandler) Routes() chi.Router {
	r := chi.NewRouter()
	r.Use(render.SetContentType(render.ContentTypeJSON))
	r.Get("/scale", h.Scale)
	return r
}

// Scale handles GET /api/grading/scale
func (h *GradingHandler) Scale(w http.ResponseWriter, r *http.Request) {
	render.JSON(w, r, h.source.GradingKey())
}
