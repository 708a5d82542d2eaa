package roadmap

import (
	"context"
	"sync"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/pathwise/pathwise-backend/internal/ai"
	types "github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/repos"
)

// MaxResourcesPerStep caps how many learning resources discovery requests
// per step.
const MaxResourcesPerStep = 3

// resourceDiscoveryConcurrency bounds the per-roadmap fan-out so a large
// roadmap does not open one upstream call per step all at once.
const resourceDiscoveryConcurrency = 4

type ResourceDeps struct {
	Log        *logger.Logger
	Resources  repos.ResourceRepo
	Discoverer ai.ResourceDiscoverer
}

// DiscoverResources fans out one discovery call per step, fans in, and
// persists whatever succeeded. Every failure is logged and swallowed; the
// returned count is purely informational. Resources are an enhancement, so a
// roadmap that is already completed stays completed no matter what happens
// here.
func DiscoverResources(ctx context.Context, deps ResourceDeps, roadmapID uuid.UUID, steps []types.RoadmapStep) int {
	if deps.Discoverer == nil || deps.Resources == nil || len(steps) == 0 {
		return 0
	}

	var mu sync.Mutex
	saved := 0

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(resourceDiscoveryConcurrency)
	for _, step := range steps {
		step := step
		g.Go(func() error {
			candidates, err := deps.Discoverer.DiscoverResourcesForConcept(gctx, step.ConceptName, step.LearningObjective, ai.ResourceOptions{
				MaxResults: MaxResourcesPerStep,
				Difficulty: step.Difficulty,
			})
			if err != nil {
				deps.Log.Warn("Resource discovery failed for step",
					"roadmap_id", roadmapID,
					"concept_id", step.ConceptID,
					"error", err)
				return nil
			}
			if len(candidates) > MaxResourcesPerStep {
				candidates = candidates[:MaxResourcesPerStep]
			}
			rows := make([]*types.Resource, 0, len(candidates))
			for _, c := range candidates {
				if c.URL == "" || c.Title == "" {
					continue
				}
				rows = append(rows, &types.Resource{
					RoadmapID:    roadmapID,
					ConceptID:    step.ConceptID,
					Title:        c.Title,
					URL:          c.URL,
					Type:         c.Type,
					Description:  c.Description,
					Provider:     c.Provider,
					Duration:     c.EstimatedDuration,
					Difficulty:   c.Difficulty,
					DisplayOrder: len(rows),
				})
			}
			if len(rows) == 0 {
				return nil
			}
			if err := deps.Resources.ReplaceForConcept(gctx, nil, roadmapID, step.ConceptID, rows); err != nil {
				deps.Log.Warn("Failed to persist resources for step",
					"roadmap_id", roadmapID,
					"concept_id", step.ConceptID,
					"error", err)
				return nil
			}
			mu.Lock()
			saved += len(rows)
			mu.Unlock()
			return nil
		})
	}
	// Workers never return errors; Wait only joins them.
	_ = g.Wait()
	return saved
}
