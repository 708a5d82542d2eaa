package ai

import (
	"context"

	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/platform/openai"
)

type openaiVisionDescriber struct {
	client openai.Client
	log    *logger.Logger
}

func NewVisionDescriber(client openai.Client, log *logger.Logger) VisionDescriber {
	return &openaiVisionDescriber{client: client, log: log.With("ai", "VisionDescriber")}
}

func (v *openaiVisionDescriber) DescribeImage(ctx context.Context, imageURL string) (string, error) {
	sys := "You transcribe and describe images for a learning system. Capture any visible text verbatim, " +
		"then describe diagrams or figures in enough detail to study from."
	return v.client.GenerateTextWithImages(ctx, sys, "Describe this image.", []openai.ImageInput{
		{ImageURL: imageURL},
	})
}
