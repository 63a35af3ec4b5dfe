package report

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"legal-backend/internal/chat"
	"legal-backend/internal/documents"
	"legal-backend/internal/shared/server/respond"
)

// Handler serves report exports.
type Handler struct {
	Docs documents.Repo
	Chat chat.Repo
}

// NewHandler constructs a Handler.
func NewHandler(docs documents.Repo, chatRepo chat.Repo) *Handler {
	return &Handler{Docs: docs, Chat: chatRepo}
}

// RegisterRoutes attaches export routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/documents/:id/export", h.export)
}

type exportRequest struct {
	Format   string   `json:"format"`
	Sections []string `json:"sections"`
}

func (h *Handler) export(c *gin.Context) {
	documentID := c.Param("id")

	req := exportRequest{Format: FormatDocx}
	if c.Request.ContentLength > 0 {
		if err := c.ShouldBindJSON(&req); err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
		if req.Format == "" {
			req.Format = FormatDocx
		}
	}

	doc, err := h.Docs.GetByID(c.Request.Context(), documentID)
	if err != nil {
		switch {
		case errors.Is(err, documents.ErrNotFound):
			respond.Error(c, http.StatusNotFound, "not_found", "document not found", nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to fetch document", nil)
		}
		return
	}

	history, err := h.Chat.List(c.Request.Context(), documentID)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to load chat history", nil)
		return
	}

	rendered, err := Render(doc, history, req.Format, req.Sections)
	if err != nil {
		switch {
		case errors.Is(err, ErrNotReady):
			respond.Error(c, http.StatusBadRequest, "analysis_not_ready", "document has no completed analysis to export", nil)
		case errors.Is(err, ErrBadFormat), errors.Is(err, ErrBadSection):
			respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		default:
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to render report", nil)
		}
		return
	}

	c.Header("Content-Disposition", `attachment; filename="`+rendered.FileName+`"`)
	c.Data(http.StatusOK, rendered.ContentType, rendered.Data)
}
