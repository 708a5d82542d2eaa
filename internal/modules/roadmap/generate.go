package roadmap

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/pathwise/pathwise-backend/internal/ai"
	"github.com/pathwise/pathwise-backend/internal/data/graph"
	types "github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

// NoConceptsDescription is the terminal description used when the topic
// yields zero concepts. The roadmap still completes; an empty step list with
// this description is a success, not a failure.
const NoConceptsDescription = "We could not generate learning concepts for this topic. Try rephrasing it or uploading a document instead."

type GenerateDeps struct {
	Log    *logger.Logger
	Graph  graph.ConceptStore
	Topics ai.TopicConceptGenerator
}

// GenerateConcepts asks the model for a concept set for the topic and
// persists the resulting nodes and typed edges so later expansion can find
// them. Returns the raw set; an empty concept list is a valid result the
// caller short-circuits on.
func GenerateConcepts(ctx context.Context, deps GenerateDeps, topic string, userCtx ai.UserContext) (ai.TopicConcepts, error) {
	if deps.Topics == nil {
		return ai.TopicConcepts{}, fmt.Errorf("generate concepts: missing topic generator")
	}

	tc, err := deps.Topics.GenerateConceptsFromTopic(ctx, topic, userCtx)
	if err != nil {
		return ai.TopicConcepts{}, fmt.Errorf("generate concepts: %w", err)
	}
	if len(tc.Concepts) == 0 {
		return tc, nil
	}

	if deps.Graph != nil {
		concepts := make([]graph.Concept, 0, len(tc.Concepts))
		for _, c := range tc.Concepts {
			concepts = append(concepts, graph.Concept{
				ID:          c.ID,
				Name:        c.Name,
				Description: c.Description,
			})
		}
		if err := deps.Graph.SaveConcepts(ctx, concepts); err != nil {
			return ai.TopicConcepts{}, fmt.Errorf("save concepts: %w", err)
		}
		known := make(map[string]bool, len(tc.Concepts))
		for _, c := range tc.Concepts {
			known[c.ID] = true
		}
		for _, rel := range tc.Relationships {
			if !known[rel.FromID] || !known[rel.ToID] || rel.FromID == rel.ToID {
				continue
			}
			relType := strings.ToUpper(strings.TrimSpace(rel.Type))
			switch relType {
			case graph.RelDependsOn, graph.RelNextStep, graph.RelRelatedTo:
			default:
				continue
			}
			if err := deps.Graph.AddRelation(ctx, rel.FromID, rel.ToID, relType); err != nil {
				return ai.TopicConcepts{}, fmt.Errorf("save relation %s->%s: %w", rel.FromID, rel.ToID, err)
			}
		}
	}

	return tc, nil
}

type PlanDeps struct {
	Log     *logger.Logger
	Planner ai.LearningPathPlanner
}

// PlanPath orders the concept set into a learning path.
func PlanPath(ctx context.Context, deps PlanDeps, tc ai.TopicConcepts, userCtx ai.UserContext) (ai.LearningPath, error) {
	if deps.Planner == nil {
		return ai.LearningPath{}, fmt.Errorf("plan path: missing planner")
	}
	path, err := deps.Planner.GenerateLearningPath(ctx, tc.Concepts, tc.Relationships, userCtx)
	if err != nil {
		return ai.LearningPath{}, fmt.Errorf("plan path: %w", err)
	}
	if len(path.OrderedConcepts) == 0 {
		return ai.LearningPath{}, fmt.Errorf("plan path: planner returned no ordered concepts")
	}
	return path, nil
}

// BuildSteps joins the planner's ordering back onto the concept data and
// derives each step's dependsOn from DEPENDS_ON relationships targeting that
// step's concept. Ordered entries referencing unknown concept ids are
// dropped. The returned list is renumbered 1..N regardless of the order
// values the planner reported.
func BuildSteps(tc ai.TopicConcepts, path ai.LearningPath) []types.RoadmapStep {
	byID := make(map[string]ai.GeneratedConcept, len(tc.Concepts))
	for _, c := range tc.Concepts {
		byID[c.ID] = c
	}

	dependsOn := make(map[string][]string)
	for _, rel := range tc.Relationships {
		if strings.ToUpper(strings.TrimSpace(rel.Type)) != graph.RelDependsOn {
			continue
		}
		if _, ok := byID[rel.FromID]; !ok {
			continue
		}
		if _, ok := byID[rel.ToID]; !ok {
			continue
		}
		dependsOn[rel.FromID] = append(dependsOn[rel.FromID], rel.ToID)
	}

	ordered := make([]ai.OrderedConcept, 0, len(path.OrderedConcepts))
	for _, oc := range path.OrderedConcepts {
		if _, ok := byID[oc.ConceptID]; ok {
			ordered = append(ordered, oc)
		}
	}
	sort.SliceStable(ordered, func(i, j int) bool { return ordered[i].Order < ordered[j].Order })

	steps := make([]types.RoadmapStep, 0, len(ordered))
	for i, oc := range ordered {
		concept := byID[oc.ConceptID]
		steps = append(steps, types.RoadmapStep{
			ConceptID:         oc.ConceptID,
			ConceptName:       concept.Name,
			Order:             i + 1,
			DependsOn:         dependsOn[oc.ConceptID],
			LearningObjective: oc.LearningObjective,
			EstimatedDuration: oc.EstimatedDuration,
			Difficulty:        oc.Difficulty,
			Rationale:         oc.Rationale,
		})
	}
	return steps
}

// SumDurations totals per-step estimates. Preferred over any aggregate the
// planner reports, since the sum can be checked against the parts.
func SumDurations(steps []types.RoadmapStep) int {
	total := 0
	for _, s := range steps {
		total += s.EstimatedDuration
	}
	return total
}
