package ai

import (
	"context"
	"fmt"
	"strings"

	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/platform/openai"
)

const DefaultQuizQuestionCount = 10

type openaiQuizGenerator struct {
	client openai.Client
	log    *logger.Logger
}

func NewQuizGenerator(client openai.Client, log *logger.Logger) QuizGenerator {
	return &openaiQuizGenerator{client: client, log: log.With("ai", "QuizGenerator")}
}

func (g *openaiQuizGenerator) GenerateQuiz(ctx context.Context, text string, conceptNames []string, opts QuizOptions) ([]QuizQuestionDraft, error) {
	count := opts.QuestionCount
	if count <= 0 {
		count = DefaultQuizQuestionCount
	}

	sys := fmt.Sprintf("You write %d multiple-choice questions testing understanding of a document. "+
		"Each question has four options labeled A-D with exactly one correct option, plus a short explanation.", count)
	if opts.Difficulty != "" {
		sys += " Target difficulty: " + opts.Difficulty + "."
	}

	usr := text
	if len(conceptNames) > 0 {
		usr += "\n\nFocus on these concepts: " + strings.Join(conceptNames, ", ")
	}

	obj, err := g.client.GenerateJSON(ctx, sys, usr, "quiz_generation_v1", schemaQuizGeneration())
	if err != nil {
		return nil, err
	}
	var payload struct {
		Questions []QuizQuestionDraft `json:"questions"`
	}
	decodeInto(obj, &payload)
	return payload.Questions, nil
}

func schemaQuizGeneration() map[string]any {
	return map[string]any{
		"type": "object",
		"properties": map[string]any{
			"questions": map[string]any{
				"type": "array",
				"items": map[string]any{
					"type": "object",
					"properties": map[string]any{
						"type": map[string]any{"type": "string", "enum": []any{"multiple_choice"}},
						"text": map[string]any{"type": "string"},
						"options": map[string]any{
							"type": "array",
							"items": map[string]any{
								"type": "object",
								"properties": map[string]any{
									"label":      map[string]any{"type": "string"},
									"text":       map[string]any{"type": "string"},
									"is_correct": map[string]any{"type": "boolean"},
								},
								"required":             []any{"label", "text", "is_correct"},
								"additionalProperties": false,
							},
						},
						"explanation": map[string]any{"type": "string"},
						"difficulty":  map[string]any{"type": "string"},
					},
					"required":             []any{"type", "text", "options", "explanation", "difficulty"},
					"additionalProperties": false,
				},
			},
		},
		"required":             []any{"questions"},
		"additionalProperties": false,
	}
}
