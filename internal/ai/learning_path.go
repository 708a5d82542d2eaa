package ai

import (
	"context"
	"encoding/json"

	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/platform/openai"
)

type openaiLearningPathPlanner struct {
	client openai.Client
	log    *logger.Logger
}

func NewLearningPathPlanner(client openai.Client, log *logger.Logger) LearningPathPlanner {
	return &openaiLearningPathPlanner{client: client, log: log.With("ai", "LearningPathPlanner")}
}

func (p *openaiLearningPathPlanner) GenerateLearningPath(ctx context.Context, concepts []GeneratedConcept, relationships []GeneratedRelationship, userCtx UserContext) (LearningPath, error) {
	input := map[string]any{
		"concepts":      concepts,
		"relationships": relationships,
	}
	raw, err := json.Marshal(input)
	if err != nil {
		return LearningPath{}, err
	}

	sys := "You order concepts into a dependency-respecting learning path. For each concept return its order " +
		"(1-based, contiguous), a learning objective, an estimated duration in minutes, a difficulty " +
		"(beginner|intermediate|advanced|expert), and a one-sentence rationale. Also return an overall " +
		"path description and a recommended pace."
	usr := string(raw) + userContextPrompt(userCtx)

	obj, err := p.client.GenerateJSON(ctx, sys, usr, "learning_path_v1", schemaLearningPath())
	if err != nil {
		return LearningPath{}, err
	}
	var out LearningPath
	decodeInto(obj, &out)
	return out, nil
}

func schemaLearningPath() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"ordered_concepts": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"concept_id":         map[string]any{"type": "string"},
						"order":              map[string]any{"type": "integer"},
						"learning_objective": map[string]any{"type": "string"},
						"estimated_duration": map[string]any{"type": "integer"},
						"difficulty":         map[string]any{"type": "string", "enum": []any{"beginner", "intermediate", "advanced", "expert"}},
						"rationale":          map[string]any{"type": "string"},
					},
					"required":             []any{"concept_id", "order", "learning_objective", "estimated_duration", "difficulty", "rationale"},
					"additionalProperties": false,
				},
			},
			"description":      map[string]any{"type": "string"},
			"recommended_pace": map[string]any{"type": "string"},
		},
		"required":             []any{"ordered_concepts", "description", "recommended_pace"},
		"additionalProperties": false,
	}
}
