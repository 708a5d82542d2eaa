package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pathwise/pathwise-backend/internal/repos"
)

type JobHandler struct {
	jobRuns repos.JobRunRepo
}

func NewJobHandler(jobRuns repos.JobRunRepo) *JobHandler {
	return &JobHandler{jobRuns: jobRuns}
}

// Get is the polling counterpart of the SSE stream: status, stage, progress
// and result of a single job run.
func (h *JobHandler) Get(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	job, err := h.jobRuns.GetByID(c.Request.Context(), nil, id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"job": job})
}
