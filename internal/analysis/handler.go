package analysis

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"legal-backend/internal/documents"
	"legal-backend/internal/llm"
	"legal-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches analysis routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/analyze", h.analyze)
}

type analyzeRequest struct {
	Force bool `json:"force"`
}

func (h *Handler) analyze(c *gin.Context) {
	documentID := c.Param("id")

	var req analyzeRequest
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
	}

	doc, err := h.Svc.Request(c.Request.Context(), documentID, req.Force)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, ErrEmptyAnalysis):
			respond.Error(c, http.StatusBadGateway, "analysis_failed", "model returned no analysis", nil)
		case llm.IsGenerationError(err):
			h.respondGenerationError(c, err)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to analyze document", nil)
		}
		return
	}

	respond.OK(c, documents.ToResponse(doc))
}

func (h *Handler) respondGenerationError(c *gin.Context, err error) {
	switch llm.KindOf(err) {
	case llm.KindTimeout:
		respond.Error(c, http.StatusGatewayTimeout, "analysis_timeout", "analysis timed out, retry the request", nil)
	case llm.KindInvalidInput:
		respond.Error(c, http.StatusBadRequest, "analysis_rejected", "analysis request was rejected", nil)
	default:
		respond.Error(c, http.StatusBadGateway, "analysis_failed", "analysis service is unavailable", nil)
	}
}
