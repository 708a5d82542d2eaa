package ai

import (
	"context"

	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/platform/openai"
)

type openaiDocumentAnalyzer struct {
	client openai.Client
	log    *logger.Logger
}

func NewDocumentAnalyzer(client openai.Client, log *logger.Logger) DocumentAnalyzer {
	return &openaiDocumentAnalyzer{client: client, log: log.With("ai", "DocumentAnalyzer")}
}

func (a *openaiDocumentAnalyzer) AnalyzeDocument(ctx context.Context, text string) (DocumentAnalysis, error) {
	sys := "You summarize a document for a learner: a short overview paragraph, 3-7 key points, " +
		"its topic area, and an overall difficulty (beginner|intermediate|advanced|expert)."
	obj, err := a.client.GenerateJSON(ctx, sys, text, "document_analysis_v1", schemaDocumentAnalysis())
	if err != nil {
		return DocumentAnalysis{}, err
	}
	var out DocumentAnalysis
	decodeInto(obj, &out)
	return out, nil
}

func schemaDocumentAnalysis() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"overview":   map[string]any{"type": "string"},
			"key_points": schemaStringArray(),
			"topic_area": map[string]any{"type": "string"},
			"difficulty": map[string]any{"type": "string", "enum": []any{"beginner", "intermediate", "advanced", "expert"}},
		},
		"required":             []any{"overview", "key_points", "topic_area", "difficulty"},
		"additionalProperties": false,
	}
}
