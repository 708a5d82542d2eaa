package roadmap_generate

import (
	"encoding/json"
	"fmt"

	"github.com/google/uuid"
	"gorm.io/datatypes"

	"github.com/pathwise/pathwise-backend/internal/ai"
	"github.com/pathwise/pathwise-backend/internal/domain/roadmaps"
	jobrt "github.com/pathwise/pathwise-backend/internal/jobs/runtime"
	roadmapmod "github.com/pathwise/pathwise-backend/internal/modules/roadmap"
)

// Run drives one roadmap request through concepts -> learning-path ->
// resources -> done. The roadmap row already exists in pending status. Zero
// generated concepts completes the roadmap with an explanatory description
// and no steps; resource-discovery failures are logged and swallowed. Every
// other error fails both the roadmap and the job.
func (p *Pipeline) Run(jc *jobrt.Context) error {
	if jc == nil || jc.Job == nil {
		return nil
	}

	roadmapID, ok := jc.PayloadUUID("roadmap_id")
	if !ok || roadmapID == uuid.Nil {
		jc.Fail("validate", fmt.Errorf("missing roadmap_id"))
		return nil
	}
	topic := jc.PayloadString("topic")
	if topic == "" {
		jc.Fail("validate", fmt.Errorf("missing topic"))
		return nil
	}
	userCtx := decodeUserContext(jc.Payload())

	if err := p.roadmaps.UpdateFields(jc.Ctx, nil, roadmapID, map[string]interface{}{
		"status": roadmaps.StatusProcessing,
		"error":  "",
	}); err != nil {
		jc.Fail(roadmaps.StageConcepts, err)
		return nil
	}
	jc.Progress(roadmaps.StageConcepts, 10, "Generating concepts")

	tc, err := roadmapmod.GenerateConcepts(jc.Ctx, roadmapmod.GenerateDeps{
		Log:    p.log,
		Graph:  p.graph,
		Topics: p.topics,
	}, topic, userCtx)
	if err != nil {
		p.failRoadmap(jc, roadmapID, roadmaps.StageConcepts, err)
		return nil
	}

	if len(tc.Concepts) == 0 {
		// Successful terminal state: nothing to learn is not a failure.
		if err := p.completeRoadmap(jc, roadmapID, nil, roadmapmod.NoConceptsDescription, "", 0); err != nil {
			p.failRoadmap(jc, roadmapID, roadmaps.StageConcepts, err)
			return nil
		}
		jc.Succeed(roadmaps.StageDone, map[string]any{
			"roadmap_id": roadmapID.String(),
			"step_count": 0,
		})
		return nil
	}

	jc.Progress(roadmaps.StageLearningPath, 40, "Ordering learning path")
	path, err := roadmapmod.PlanPath(jc.Ctx, roadmapmod.PlanDeps{
		Log:     p.log,
		Planner: p.planner,
	}, tc, userCtx)
	if err != nil {
		p.failRoadmap(jc, roadmapID, roadmaps.StageLearningPath, err)
		return nil
	}

	steps := roadmapmod.BuildSteps(tc, path)
	if err := p.completeRoadmap(jc, roadmapID, steps, path.Description, path.RecommendedPace, roadmapmod.SumDurations(steps)); err != nil {
		p.failRoadmap(jc, roadmapID, roadmaps.StageLearningPath, err)
		return nil
	}

	// The roadmap is visible and usable from here on; resources only enrich it.
	jc.Progress(roadmaps.StageResources, 75, "Discovering resources")
	saved := roadmapmod.DiscoverResources(jc.Ctx, roadmapmod.ResourceDeps{
		Log:        p.log,
		Resources:  p.resources,
		Discoverer: p.discover,
	}, roadmapID, steps)

	jc.Succeed(roadmaps.StageDone, map[string]any{
		"roadmap_id":     roadmapID.String(),
		"step_count":     len(steps),
		"resource_count": saved,
	})
	return nil
}

func (p *Pipeline) completeRoadmap(jc *jobrt.Context, roadmapID uuid.UUID, steps []roadmaps.Step, description, pace string, totalDuration int) error {
	if steps == nil {
		steps = []roadmaps.Step{}
	}
	stepsJSON, err := json.Marshal(steps)
	if err != nil {
		return err
	}
	updates := map[string]interface{}{
		"status":                   roadmaps.StatusCompleted,
		"steps":                    datatypes.JSON(stepsJSON),
		"total_estimated_duration": totalDuration,
	}
	if description != "" {
		updates["description"] = description
	}
	if pace != "" {
		updates["recommended_pace"] = pace
	}
	return p.roadmaps.UpdateFields(jc.Ctx, nil, roadmapID, updates)
}

func (p *Pipeline) failRoadmap(jc *jobrt.Context, roadmapID uuid.UUID, stage string, cause error) {
	if err := p.roadmaps.UpdateFields(jc.Ctx, nil, roadmapID, map[string]interface{}{
		"status": roadmaps.StatusFailed,
		"error":  cause.Error(),
	}); err != nil {
		p.log.Error("Failed to record roadmap failure", "roadmap_id", roadmapID, "error", err)
	}
	jc.Fail(stage, cause)
}

// decodeUserContext pulls the optional user_context object off the payload.
func decodeUserContext(payload map[string]any) ai.UserContext {
	raw, ok := payload["user_context"]
	if !ok || raw == nil {
		return ai.UserContext{}
	}
	b, err := json.Marshal(raw)
	if err != nil {
		return ai.UserContext{}
	}
	var uc ai.UserContext
	if err := json.Unmarshal(b, &uc); err != nil {
		return ai.UserContext{}
	}
	return uc
}
