package roadmap

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/google/uuid"

	types "github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/domain/roadmaps"
	"github.com/pathwise/pathwise-backend/internal/pkg/apperr"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/repos"
)

// ProgressService owns the per-(user, roadmap, step) status records and the
// derived roadmap summary.
type ProgressService struct {
	log      *logger.Logger
	roadmaps repos.RoadmapRepo
	progress repos.ProgressRepo
}

func NewProgressService(baseLog *logger.Logger, roadmapRepo repos.RoadmapRepo, progressRepo repos.ProgressRepo) *ProgressService {
	return &ProgressService{
		log:      baseLog.With("service", "ProgressService"),
		roadmaps: roadmapRepo,
		progress: progressRepo,
	}
}

// Upsert records the user's status on one step and returns the saved record
// plus a freshly computed summary. The roadmap must exist and the concept
// must be one of its steps.
func (s *ProgressService) Upsert(ctx context.Context, userID, roadmapID uuid.UUID, conceptID, status string) (*types.UserRoadmapProgress, *types.ProgressSummary, error) {
	switch status {
	case roadmaps.StepNotStarted, roadmaps.StepInProgress, roadmaps.StepCompleted, roadmaps.StepSkipped:
	default:
		return nil, nil, fmt.Errorf("%w: unknown progress status %q", apperr.ErrInvalidArgument, status)
	}

	roadmap, err := s.roadmaps.GetByID(ctx, nil, roadmapID)
	if err != nil {
		return nil, nil, err
	}
	steps, err := roadmap.DecodeSteps()
	if err != nil {
		return nil, nil, fmt.Errorf("decode steps: %w", err)
	}
	if !stepExists(steps, conceptID) {
		return nil, nil, fmt.Errorf("%w: concept %s is not a step of roadmap %s", apperr.ErrNotFound, conceptID, roadmapID)
	}

	record := &types.UserRoadmapProgress{
		UserID:    userID,
		RoadmapID: roadmapID,
		ConceptID: conceptID,
		Status:    status,
	}
	if status == roadmaps.StepCompleted {
		now := time.Now()
		record.CompletedAt = &now
	}
	saved, err := s.progress.Upsert(ctx, nil, record)
	if err != nil {
		return nil, nil, err
	}

	summary, err := s.summarize(ctx, userID, roadmapID, len(steps))
	if err != nil {
		return nil, nil, err
	}
	return saved, summary, nil
}

// Summary computes the derived progress summary for one user and roadmap.
func (s *ProgressService) Summary(ctx context.Context, userID, roadmapID uuid.UUID) (*types.ProgressSummary, error) {
	roadmap, err := s.roadmaps.GetByID(ctx, nil, roadmapID)
	if err != nil {
		return nil, err
	}
	steps, err := roadmap.DecodeSteps()
	if err != nil {
		return nil, fmt.Errorf("decode steps: %w", err)
	}
	return s.summarize(ctx, userID, roadmapID, len(steps))
}

// summarize derives the summary from status counts. A zero-step roadmap
// short-circuits to an all-zero summary without touching the counts table.
func (s *ProgressService) summarize(ctx context.Context, userID, roadmapID uuid.UUID, totalSteps int) (*types.ProgressSummary, error) {
	summary := &types.ProgressSummary{
		RoadmapID:  roadmapID,
		TotalSteps: totalSteps,
	}
	if totalSteps == 0 {
		return summary, nil
	}

	counts, err := s.progress.CountByStatus(ctx, nil, userID, roadmapID)
	if err != nil {
		return nil, err
	}
	summary.CompletedSteps = counts[roadmaps.StepCompleted]
	summary.InProgressSteps = counts[roadmaps.StepInProgress]
	summary.SkippedSteps = counts[roadmaps.StepSkipped]
	summary.ProgressPercentage = int(math.Round(float64(summary.CompletedSteps) / float64(totalSteps) * 100))
	return summary, nil
}

func stepExists(steps []types.RoadmapStep, conceptID string) bool {
	for _, step := range steps {
		if step.ConceptID == conceptID {
			return true
		}
	}
	return false
}
