package ai

import (
	"context"

	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/platform/openai"
)

type openaiTopicConceptGenerator struct {
	client openai.Client
	log    *logger.Logger
}

func NewTopicConceptGenerator(client openai.Client, log *logger.Logger) TopicConceptGenerator {
	return &openaiTopicConceptGenerator{client: client, log: log.With("ai", "TopicConceptGenerator")}
}

func (g *openaiTopicConceptGenerator) GenerateConceptsFromTopic(ctx context.Context, topic string, userCtx UserContext) (TopicConcepts, error) {
	sys := "You break a learning topic into 5-15 concrete concepts a learner should master, " +
		"each with a stable id (kebab-case slug), a name, and a one-sentence description, plus " +
		"DEPENDS_ON / NEXT_STEP / RELATED_TO relationships between the concept ids."
	usr := "Topic: " + topic + userContextPrompt(userCtx)

	obj, err := g.client.GenerateJSON(ctx, sys, usr, "topic_concepts_v1", schemaTopicConcepts())
	if err != nil {
		return TopicConcepts{}, err
	}
	var out TopicConcepts
	decodeInto(obj, &out)
	return out, nil
}

func schemaTopicConcepts() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"concepts": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"id":          map[string]any{"type": "string"},
						"name":        map[string]any{"type": "string"},
						"description": map[string]any{"type": "string"},
					},
					"required":             []any{"id", "name", "description"},
					"additionalProperties": false,
				},
			},
			"relationships": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"from_id": map[string]any{"type": "string"},
						"to_id":   map[string]any{"type": "string"},
						"type":    map[string]any{"type": "string", "enum": []any{"DEPENDS_ON", "NEXT_STEP", "RELATED_TO"}},
					},
					"required":             []any{"from_id", "to_id", "type"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"concepts", "relationships"},
		"additionalProperties": false,
	}
}
