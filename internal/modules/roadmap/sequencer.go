package roadmap

import (
	"context"
	"fmt"
	"sort"

	"github.com/google/uuid"

	"github.com/pathwise/pathwise-backend/internal/ai"
	"github.com/pathwise/pathwise-backend/internal/data/graph"
	types "github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/pkg/apperr"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/repos"
)

// maxSequenceRetries bounds the optimistic-concurrency retry loop when two
// expansions of the same roadmap race on the version column.
const maxSequenceRetries = 3

type Sequencer struct {
	log       *logger.Logger
	roadmaps  repos.RoadmapRepo
	resources repos.ResourceRepo
	graph     graph.ConceptStore
	expander  ai.ConceptExpander
	discover  ai.ResourceDiscoverer
}

// NewSequencer builds the step sequencer. resources and discover may be nil;
// expansion then skips resource discovery for the new steps.
func NewSequencer(
	baseLog *logger.Logger,
	roadmaps repos.RoadmapRepo,
	resources repos.ResourceRepo,
	conceptGraph graph.ConceptStore,
	expander ai.ConceptExpander,
	discover ai.ResourceDiscoverer,
) *Sequencer {
	return &Sequencer{
		log:       baseLog.With("service", "Sequencer"),
		roadmaps:  roadmaps,
		resources: resources,
		graph:     conceptGraph,
		expander:  expander,
		discover:  discover,
	}
}

// Expand breaks one roadmap step into sub-concepts and splices them in as
// new steps immediately after the parent, renumbering the whole list so
// order stays contiguous from 1. The new steps depend only on the parent
// concept. Returns the saved roadmap.
func (s *Sequencer) Expand(ctx context.Context, roadmapID uuid.UUID, conceptID string, userCtx ai.UserContext) (*types.Roadmap, error) {
	roadmap, err := s.roadmaps.GetByID(ctx, nil, roadmapID)
	if err != nil {
		return nil, err
	}
	steps, err := roadmap.DecodeSteps()
	if err != nil {
		return nil, fmt.Errorf("decode steps: %w", err)
	}

	var parent *types.RoadmapStep
	siblings := make([]string, 0, len(steps))
	for i := range steps {
		if steps[i].ConceptID == conceptID {
			parent = &steps[i]
			continue
		}
		siblings = append(siblings, steps[i].ConceptName)
	}
	if parent == nil {
		return nil, fmt.Errorf("%w: concept %s is not a step of roadmap %s", apperr.ErrNotFound, conceptID, roadmapID)
	}

	parentDescription := ""
	if s.graph != nil {
		if c, err := s.graph.FindConceptByID(ctx, conceptID); err == nil && c != nil {
			parentDescription = c.Description
		}
	}

	subs, err := s.expander.ExpandConcept(ctx, parent.ConceptName, parentDescription, siblings, userCtx)
	if err != nil {
		return nil, fmt.Errorf("expand concept: %w", err)
	}
	if len(subs) == 0 {
		return roadmap, nil
	}

	newSteps := make([]types.RoadmapStep, 0, len(subs))
	for _, sub := range subs {
		id := uuid.NewString()
		if s.graph != nil {
			if err := s.graph.SaveConcept(ctx, graph.Concept{
				ID:          id,
				Name:        sub.Name,
				Description: sub.Description,
			}); err != nil {
				return nil, fmt.Errorf("save sub-concept: %w", err)
			}
			if err := s.graph.AddSubConceptRelation(ctx, conceptID, id); err != nil {
				return nil, fmt.Errorf("link sub-concept: %w", err)
			}
		}
		newSteps = append(newSteps, types.RoadmapStep{
			ConceptID:         id,
			ConceptName:       sub.Name,
			DependsOn:         []string{conceptID},
			LearningObjective: sub.LearningObjective,
			EstimatedDuration: sub.EstimatedDuration,
			Difficulty:        sub.Difficulty,
			Rationale:         fmt.Sprintf("Sub-concept of %q", parent.ConceptName),
		})
	}

	saved, err := s.saveSpliced(ctx, roadmapID, conceptID, newSteps)
	if err != nil {
		return nil, err
	}

	if s.discover != nil && s.resources != nil {
		stepsToEnrich := append([]types.RoadmapStep(nil), newSteps...)
		Detach(s.log, "expand-resource-discovery", func(dctx context.Context) {
			DiscoverResources(dctx, ResourceDeps{
				Log:        s.log,
				Resources:  s.resources,
				Discoverer: s.discover,
			}, roadmapID, stepsToEnrich)
		})
	}

	return saved, nil
}

// saveSpliced re-reads the roadmap, splices the new steps after the parent,
// and writes back under the version guard, retrying a bounded number of
// times when a concurrent writer bumped the version first.
func (s *Sequencer) saveSpliced(ctx context.Context, roadmapID uuid.UUID, parentConceptID string, newSteps []types.RoadmapStep) (*types.Roadmap, error) {
	for attempt := 0; attempt < maxSequenceRetries; attempt++ {
		roadmap, err := s.roadmaps.GetByID(ctx, nil, roadmapID)
		if err != nil {
			return nil, err
		}
		current, err := roadmap.DecodeSteps()
		if err != nil {
			return nil, fmt.Errorf("decode steps: %w", err)
		}
		spliced, ok := SpliceAfter(current, parentConceptID, newSteps)
		if !ok {
			return nil, fmt.Errorf("%w: concept %s is not a step of roadmap %s", apperr.ErrNotFound, parentConceptID, roadmapID)
		}
		if err := roadmap.SetSteps(spliced); err != nil {
			return nil, err
		}
		written, err := s.roadmaps.SaveStepsIfVersion(ctx, nil, roadmapID, roadmap.Steps, roadmap.Version)
		if err != nil {
			return nil, err
		}
		if written {
			roadmap.Version++
			duration := SumDurations(spliced)
			if err := s.roadmaps.UpdateFields(ctx, nil, roadmapID, map[string]interface{}{
				"total_estimated_duration": duration,
			}); err != nil {
				return nil, err
			}
			roadmap.TotalEstimatedDuration = &duration
			return roadmap, nil
		}
		s.log.Warn("Version conflict while splicing steps, retrying",
			"roadmap_id", roadmapID,
			"attempt", attempt+1)
	}
	return nil, fmt.Errorf("%w: concurrent roadmap updates exceeded retry budget", apperr.ErrConflict)
}

// SpliceAfter inserts newSteps immediately after the step whose concept id
// is parentConceptID and renumbers the full list 1..N. Returns false when
// no step matches the parent. Never leaves a gap or duplicate order value.
func SpliceAfter(steps []types.RoadmapStep, parentConceptID string, newSteps []types.RoadmapStep) ([]types.RoadmapStep, bool) {
	sorted := append([]types.RoadmapStep(nil), steps...)
	sort.SliceStable(sorted, func(i, j int) bool { return sorted[i].Order < sorted[j].Order })

	parentIdx := -1
	for i := range sorted {
		if sorted[i].ConceptID == parentConceptID {
			parentIdx = i
			break
		}
	}
	if parentIdx < 0 {
		return nil, false
	}

	out := make([]types.RoadmapStep, 0, len(sorted)+len(newSteps))
	out = append(out, sorted[:parentIdx+1]...)
	out = append(out, newSteps...)
	out = append(out, sorted[parentIdx+1:]...)
	for i := range out {
		out[i].Order = i + 1
	}
	return out, true
}
