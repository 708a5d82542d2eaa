package services

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pathwise/pathwise-backend/internal/ai"
	types "github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/domain/jobs"
	"github.com/pathwise/pathwise-backend/internal/domain/roadmaps"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/repos"
)

// RoadmapService handles the synchronous side of roadmap requests: create
// the pending roadmap row, enqueue generation. The pipeline fills in steps
// and resources asynchronously.
type RoadmapService struct {
	db        *gorm.DB
	log       *logger.Logger
	roadmaps  repos.RoadmapRepo
	resources repos.ResourceRepo
	documents repos.DocumentRepo
	summaries repos.DocumentSummaryRepo
	jobRuns   repos.JobRunRepo
	notify    JobNotifier
}

func NewRoadmapService(
	db *gorm.DB,
	baseLog *logger.Logger,
	roadmapRepo repos.RoadmapRepo,
	resourceRepo repos.ResourceRepo,
	documentRepo repos.DocumentRepo,
	summaryRepo repos.DocumentSummaryRepo,
	jobRunRepo repos.JobRunRepo,
	notify JobNotifier,
) *RoadmapService {
	return &RoadmapService{
		db:        db,
		log:       baseLog.With("service", "RoadmapService"),
		roadmaps:  roadmapRepo,
		resources: resourceRepo,
		documents: documentRepo,
		summaries: summaryRepo,
		jobRuns:   jobRunRepo,
		notify:    notify,
	}
}

// CreateFromTopic creates a pending roadmap for a free-text topic and
// enqueues generation.
func (s *RoadmapService) CreateFromTopic(ctx context.Context, userID uuid.UUID, topic, title string, userCtx ai.UserContext) (*types.Roadmap, *types.JobRun, error) {
	topic = strings.TrimSpace(topic)
	if topic == "" {
		return nil, nil, fmt.Errorf("create roadmap: empty topic")
	}
	if title == "" {
		title = topic
	}
	roadmap := &types.Roadmap{
		Title:  title,
		UserID: &userID,
		Status: roadmaps.StatusPending,
	}
	return s.create(ctx, userID, roadmap, topic, userCtx)
}

// CreateFromDocument creates a pending roadmap anchored on an ingested
// document, using the document's analyzed topic area as the generation
// topic. The document must have finished ingestion.
func (s *RoadmapService) CreateFromDocument(ctx context.Context, userID, documentID uuid.UUID, title string, userCtx ai.UserContext) (*types.Roadmap, *types.JobRun, error) {
	doc, err := s.documents.GetByID(ctx, nil, documentID)
	if err != nil {
		return nil, nil, err
	}

	topic := doc.Filename
	summary, err := s.summaries.GetByDocumentID(ctx, nil, documentID)
	if err == nil && summary != nil && strings.TrimSpace(summary.TopicArea) != "" {
		topic = summary.TopicArea
	}
	if title == "" {
		title = fmt.Sprintf("Learning roadmap: %s", topic)
	}

	roadmap := &types.Roadmap{
		Title:      title,
		DocumentID: &documentID,
		UserID:     &userID,
		Status:     roadmaps.StatusPending,
	}
	return s.create(ctx, userID, roadmap, topic, userCtx)
}

func (s *RoadmapService) create(ctx context.Context, userID uuid.UUID, roadmap *types.Roadmap, topic string, userCtx ai.UserContext) (*types.Roadmap, *types.JobRun, error) {
	if err := roadmap.SetSteps(nil); err != nil {
		return nil, nil, err
	}
	created, err := s.roadmaps.Create(ctx, nil, roadmap)
	if err != nil {
		return nil, nil, err
	}

	payloadMap := map[string]any{
		"roadmap_id": created.ID.String(),
		"topic":      topic,
		"title":      created.Title,
		"user_id":    userID.String(),
	}
	if !userCtx.IsZero() {
		payloadMap["user_context"] = userCtx
	}
	payload, err := json.Marshal(payloadMap)
	if err != nil {
		return nil, nil, err
	}
	job := &types.JobRun{
		OwnerUserID: userID,
		JobType:     jobs.JobTypeRoadmapGenerate,
		EntityType:  "roadmap",
		EntityID:    &created.ID,
		Status:      jobs.StatusQueued,
		Stage:       roadmaps.StageConcepts,
		Payload:     datatypes.JSON(payload),
	}
	queued, err := s.jobRuns.Create(ctx, nil, []*types.JobRun{job})
	if err != nil {
		return nil, nil, err
	}
	if s.notify != nil {
		s.notify.JobCreated(userID, queued[0])
	}
	return created, queued[0], nil
}

// Get returns a roadmap with its attached resources.
func (s *RoadmapService) Get(ctx context.Context, id uuid.UUID) (*types.Roadmap, []*types.Resource, error) {
	roadmap, err := s.roadmaps.GetByID(ctx, nil, id)
	if err != nil {
		return nil, nil, err
	}
	resources, err := s.resources.GetByRoadmapID(ctx, nil, id)
	if err != nil {
		return nil, nil, err
	}
	return roadmap, resources, nil
}

// GetLatestJob returns the most recent generation job for a roadmap.
func (s *RoadmapService) GetLatestJob(ctx context.Context, roadmapID uuid.UUID) (*types.JobRun, error) {
	return s.jobRuns.GetLatestByEntity(ctx, nil, "roadmap", roadmapID, jobs.JobTypeRoadmapGenerate)
}
