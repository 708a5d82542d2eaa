package handlers

import (
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/pathwise/pathwise-backend/internal/ai"
	"github.com/pathwise/pathwise-backend/internal/domain/roadmaps"
	roadmapmod "github.com/pathwise/pathwise-backend/internal/modules/roadmap"
	"github.com/pathwise/pathwise-backend/internal/services"
)

type RoadmapHandler struct {
	roadmaps  *services.RoadmapService
	sequencer *roadmapmod.Sequencer
	progress  *roadmapmod.ProgressService
	quizzes   *roadmapmod.QuizService
}

func NewRoadmapHandler(
	roadmapService *services.RoadmapService,
	sequencer *roadmapmod.Sequencer,
	progress *roadmapmod.ProgressService,
	quizzes *roadmapmod.QuizService,
) *RoadmapHandler {
	return &RoadmapHandler{
		roadmaps:  roadmapService,
		sequencer: sequencer,
		progress:  progress,
		quizzes:   quizzes,
	}
}

type createRoadmapRequest struct {
	Topic       string         `json:"topic"`
	Title       string         `json:"title"`
	DocumentID  string         `json:"document_id"`
	UserContext ai.UserContext `json:"user_context"`
}

// Create accepts either a free-text topic or a document id.
func (h *RoadmapHandler) Create(c *gin.Context) {
	userID, err := userIDFrom(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	var req createRoadmapRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}

	if req.DocumentID != "" {
		documentID, err := parseUUIDField(req.DocumentID, "document_id")
		if err != nil {
			RespondError(c, http.StatusBadRequest, "invalid_argument", err)
			return
		}
		roadmap, job, err := h.roadmaps.CreateFromDocument(c.Request.Context(), userID, documentID, req.Title, req.UserContext)
		if err != nil {
			RespondAppError(c, err)
			return
		}
		RespondCreated(c, gin.H{"roadmap": roadmap, "job": job})
		return
	}

	roadmap, job, err := h.roadmaps.CreateFromTopic(c.Request.Context(), userID, req.Topic, req.Title, req.UserContext)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, gin.H{"roadmap": roadmap, "job": job})
}

func (h *RoadmapHandler) Get(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	roadmap, resources, err := h.roadmaps.Get(c.Request.Context(), id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"roadmap": roadmap, "resources": resources})
}

func (h *RoadmapHandler) GetJob(c *gin.Context) {
	id, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	job, err := h.roadmaps.GetLatestJob(c.Request.Context(), id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"job": job})
}

type expandRequest struct {
	ConceptID   string         `json:"concept_id"`
	UserContext ai.UserContext `json:"user_context"`
}

// Expand breaks one step into sub-concept steps.
func (h *RoadmapHandler) Expand(c *gin.Context) {
	if _, err := userIDFrom(c); err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	var req expandRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ConceptID == "" {
		RespondError(c, http.StatusBadRequest, "invalid_argument", fmt.Errorf("concept_id is required"))
		return
	}
	roadmap, err := h.sequencer.Expand(c.Request.Context(), id, req.ConceptID, req.UserContext)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"roadmap": roadmap})
}

type progressRequest struct {
	ConceptID string `json:"concept_id"`
	Status    string `json:"status"`
}

// UpsertProgress records a step status change. Completion is reserved for
// the quiz flow; direct requests for completed are redirected there.
func (h *RoadmapHandler) UpsertProgress(c *gin.Context) {
	userID, err := userIDFrom(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	var req progressRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ConceptID == "" {
		RespondError(c, http.StatusBadRequest, "invalid_argument", fmt.Errorf("concept_id and status are required"))
		return
	}
	if req.Status == roadmaps.StepCompleted {
		RespondError(c, http.StatusUnprocessableEntity, "quiz_required",
			fmt.Errorf("steps complete through quiz submission, not direct status updates"))
		return
	}
	record, summary, err := h.progress.Upsert(c.Request.Context(), userID, id, req.ConceptID, req.Status)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"progress": record, "summary": summary})
}

func (h *RoadmapHandler) GetProgressSummary(c *gin.Context) {
	userID, err := userIDFrom(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	summary, err := h.progress.Summary(c.Request.Context(), userID, id)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, gin.H{"summary": summary})
}

type startAttemptRequest struct {
	ConceptID string `json:"concept_id"`
}

func (h *RoadmapHandler) StartQuizAttempt(c *gin.Context) {
	userID, err := userIDFrom(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	id, err := pathUUID(c, "id")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	var req startAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil || req.ConceptID == "" {
		RespondError(c, http.StatusBadRequest, "invalid_argument", fmt.Errorf("concept_id is required"))
		return
	}
	attempt, questions, err := h.quizzes.StartAttempt(c.Request.Context(), userID, id, req.ConceptID)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondCreated(c, gin.H{"attempt": attempt, "questions": questions})
}

type submitAttemptRequest struct {
	Answers map[string]string `json:"answers"`
}

func (h *RoadmapHandler) SubmitQuizAttempt(c *gin.Context) {
	userID, err := userIDFrom(c)
	if err != nil {
		RespondError(c, http.StatusUnauthorized, "unauthorized", err)
		return
	}
	attemptID, err := pathUUID(c, "attemptId")
	if err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	var req submitAttemptRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		RespondError(c, http.StatusBadRequest, "invalid_argument", err)
		return
	}
	result, err := h.quizzes.SubmitAttempt(c.Request.Context(), userID, attemptID, req.Answers)
	if err != nil {
		RespondAppError(c, err)
		return
	}
	RespondOK(c, result)
}
