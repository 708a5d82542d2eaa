package handlers

import (
	"io"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pathwise/pathwise-backend/internal/services"
)

// maxUploadBytes caps a single document upload.
const maxUploadBytes = 32 << 20

type DocumentHandler struct {
	documents *services.DocumentService
}

func NewDocumentHandler(documents *services.DocumentService) *DocumentHandler {
	return &DocumentHandler{documents: documents}
}

// Upload accepts a multipart file, stores it, and queues ingestion.
func (h *DocumentHandler) Upload(c *gin.Context) {
	userID, err := userIDFrom(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	fileHeader, err := c.FormFile("file")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	if fileHeader.Size > maxUploadBytes {
		RespondError(c, http.StatusRequestEntityTooLarge, "too_large", err)
		return
	}
	f, err := fileHeader.Open()
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	defer f.Close()
	data, err := io.ReadAll(io.LimitReader(f, maxUploadBytes))
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}

	doc, job, err := h.documents.Upload(c.Request.Context(), userID, fileHeader.Filename, fileHeader.Header.Get("Content-Type"), data)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, gin.H{"document": doc, "job": job})
}

func (h *DocumentHandler) Get(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	doc, err := h.documents.Get(c.Request.Context(), id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"document": doc})
}

func (h *DocumentHandler) GetSummary(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	summary, err := h.documents.GetSummary(c.Request.Context(), id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"summary": summary})
}

func (h *DocumentHandler) GetQuiz(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	quiz, questions, err := h.documents.GetQuiz(c.Request.Context(), id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"quiz": quiz, "questions": questions})
}

func (h *DocumentHandler) GetGraph(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	g, err := h.documents.GetGraph(c.Request.Context(), id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"graph": g})
}

// GetJob exposes the latest ingestion job for polling clients.
func (h *DocumentHandler) GetJob(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	job, err := h.documents.GetLatestJob(c.Request.Context(), id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"job": job})
}
