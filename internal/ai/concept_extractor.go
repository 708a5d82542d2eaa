package ai

import (
	"context"

	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/platform/openai"
)

type openaiConceptExtractor struct {
	client openai.Client
	log    *logger.Logger
}

func NewConceptExtractor(client openai.Client, log *logger.Logger) ConceptExtractor {
	return &openaiConceptExtractor{client: client, log: log.With("ai", "ConceptExtractor")}
}

func (e *openaiConceptExtractor) ExtractConcepts(ctx context.Context, text string) ([]ExtractedConcept, error) {
	sys := "You extract the distinct learnable concepts from a document. " +
		"For each concept give a short name, a one-sentence description, and any relationships " +
		"(depends_on, next_step, related_to) to other concepts you extracted, referenced by name."
	obj, err := e.client.GenerateJSON(ctx, sys, text, "concept_extraction_v1", schemaConceptExtraction())
	if err != nil {
		return nil, err
	}
	var payload struct {
		Concepts []ExtractedConcept `json:"concepts"`
	}
	decodeInto(obj, &payload)
	return payload.Concepts, nil
}

func schemaConceptExtraction() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"concepts": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"name":        map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
						"relationships": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"target_name": map[string]any{"type": "string"},
									"type":        map[string]any{"type": "string", "enum": []any{"depends_on", "next_step", "related_to"}},
								},
								"required":             []any{"target_name", "type"},
								"additionalProperties": false,
							},
						},
					},
					"required":             []any{"name", "description", "relationships"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"concepts"},
		"additionalProperties": false,
	}
}
