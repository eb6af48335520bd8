package handler

import (
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"newsbot/internal/app"
	"newsbot/internal/transport/http/response"
)

type AdminHandler struct {
	backfillService   *app.BackfillService
	transcriptService *app.TranscriptService
}

func NewAdminHandler(backfillService *app.BackfillService, transcriptService *app.TranscriptService) *AdminHandler {
	return &AdminHandler{
		backfillService:   backfillService,
		transcriptService: transcriptService,
	}
}

// SeedEmbeddings runs the embedding backfill synchronously and reports counts.
func (h *AdminHandler) SeedEmbeddings(c *gin.Context) {
	result, err := h.backfillService.Run(c.Request.Context())
	if err != nil {
		response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to generate embeddings")
		return
	}
	response.OK(c, result)
}

// ArchiveTranscript enqueues a snapshot of the session history for durable
// archival. Returns 501-style not-configured when no broker is wired.
func (h *AdminHandler) ArchiveTranscript(c *gin.Context) {
	if h.transcriptService == nil {
		response.Error(c, http.StatusNotImplemented, response.CodeNotConfigured, "transcript archive not configured")
		return
	}

	sessionID := c.Param("sessionId")
	if sessionID == "" {
		response.Error(c, http.StatusBadRequest, response.CodeBadRequest, "invalid session id")
		return
	}

	result, err := h.transcriptService.Archive(c.Request.Context(), sessionID)
	if err != nil {
		switch {
		case errors.Is(err, app.ErrNoTranscript):
			response.Error(c, http.StatusNotFound, response.CodeNotFound, err.Error())
		default:
			response.Error(c, http.StatusInternalServerError, response.CodeInternalServer, "failed to archive transcript")
		}
		return
	}

	response.OK(c, result)
}
