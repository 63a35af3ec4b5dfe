package chat

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

// RegisterRoutes attaches chat routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/questions", h.ask)
	rg.GET("/documents/:id/chat", h.history)
}

type askRequest struct {
	Question string `json:"question"`
}

func (h *Handler) ask(c *gin.Context) {
	documentID := c.Param("id")

	var req askRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}

	entry, err := h.Svc.Ask(c.Request.Context(), documentID, req.Question)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		case errors.Is(err, documents.ErrInvalidInput):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		case llm.KindOf(err) == llm.KindTimeout:
			respond.Error(c, http.StatusGatewayTimeout, "question_timeout", "question timed out, retry the request", nil)
		case llm.IsGenerationError(err):
			respond.Error(c, http.StatusBadGateway, "question_failed", "answering service is unavailable", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to answer question", nil)
		}
		return
	}

	respond.Created(c, entry)
}

func (h *Handler) history(c *gin.Context) {
	documentID := c.Param("id")

	entries, err := h.Svc.History(c.Request.Context(), documentID)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load chat history", nil)
		}
		return
	}

	respond.OK(c, gin.H{"documentId": documentID, "entries": entries})
}
