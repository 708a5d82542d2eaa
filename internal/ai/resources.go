package ai

import (
	"context"
	"fmt"

	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/platform/openai"
)

type openaiResourceDiscoverer struct {
	client openai.Client
	log    *logger.Logger
}

func NewResourceDiscoverer(client openai.Client, log *logger.Logger) ResourceDiscoverer {
	return &openaiResourceDiscoverer{client: client, log: log.With("ai", "ResourceDiscoverer")}
}

func (d *openaiResourceDiscoverer) DiscoverResourcesForConcept(ctx context.Context, name, description string, opts ResourceOptions) ([]ResourceCandidate, error) {
	max := opts.MaxResults
	if max <= 0 {
		max = 3
	}

	sys := fmt.Sprintf("You recommend up to %d well-known, real learning resources "+
		"(article|video|course|documentation|tutorial|book) for a concept. Prefer canonical sources; "+
		"never invent URLs.", max)
	if opts.Difficulty != "" {
		sys += " Match difficulty: " + opts.Difficulty + "."
	}

	usr := "Concept: " + name
	if description != "" {
		usr += "\n" + description
	}

	obj, err := d.client.GenerateJSON(ctx, sys, usr, "resource_discovery_v1", schemaResourceDiscovery())
	if err != nil {
		return nil, err
	}
	var payload struct {
		Resources []ResourceCandidate `json:"resources"`
	}
	decodeInto(obj, &payload)
	if len(payload.Resources) > max {
		payload.Resources = payload.Resources[:max]
	}
	return payload.Resources, nil
}

func schemaResourceDiscovery() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"resources": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"title":              map[string]any{"type": "string"},
						"url":                map[string]any{"type": "string"},
						"type":               map[string]any{"type": "string", "enum": []any{"article", "video", "course", "documentation", "tutorial", "book"}},
						"description":        map[string]any{"type": "string"},
						"provider":           map[string]any{"type": "string"},
						"estimated_duration": map[string]any{"type": "string"},
						"difficulty":         map[string]any{"type": "string"},
					},
					"required":             []any{"title", "url", "type", "description", "provider", "estimated_duration", "difficulty"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"resources"},
		"additionalProperties": false,
	}
}
