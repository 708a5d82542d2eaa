package ai

import (
	"context"
	"strings"

	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/platform/openai"
)

type openaiConceptExpander struct {
	client openai.Client
	log    *logger.Logger
}

func NewConceptExpander(client openai.Client, log *logger.Logger) ConceptExpander {
	return &openaiConceptExpander{client: client, log: log.With("ai", "ConceptExpander")}
}

func (e *openaiConceptExpander) ExpandConcept(ctx context.Context, name, description string, siblingNames []string, userCtx UserContext) ([]SubConcept, error) {
	sys := "You break one concept into 2-5 sub-concepts a learner should study next, each with a name, " +
		"description, learning objective, estimated duration in minutes, and difficulty " +
		"(beginner|intermediate|advanced|expert). Do not repeat concepts already on the roadmap."

	usr := "Concept: " + name
	if description != "" {
		usr += "\n" + description
	}
	if len(siblingNames) > 0 {
		usr += "\n\nAlready on the roadmap (do not repeat): " + strings.Join(siblingNames, ", ")
	}
	usr += userContextPrompt(userCtx)

	obj, err := e.client.GenerateJSON(ctx, sys, usr, "concept_expansion_v1", schemaConceptExpansion())
	if err != nil {
		return nil, err
	}
	var payload struct {
		SubConcepts []SubConcept `json:"sub_concepts"`
	}
	decodeInto(obj, &payload)
	return payload.SubConcepts, nil
}

func schemaConceptExpansion() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"sub_concepts": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":               map[string]any{"type": "string"},
						"description":        map[string]any{"type": "string"},
						"learning_objective": map[string]any{"type": "string"},
						"estimated_duration": map[string]any{"type": "integer"},
						"difficulty":         map[string]any{"type": "string", "enum": []any{"beginner", "intermediate", "advanced", "expert"}},
					},
					"required":             []any{"name", "description", "learning_objective", "estimated_duration", "difficulty"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"sub_concepts"},
		"additionalProperties": false,
	}
}
