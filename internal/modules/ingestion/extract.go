package ingestion

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"strings"

	"github.com/google/uuid"

	"github.com/pathwise/pathwise-backend/internal/ai"
	"github.com/pathwise/pathwise-backend/internal/pkg/apperr"
	"github.com/pathwise/pathwise-backend/internal/platform/gcp"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/services"
)

type ExtractDeps struct {
	Log     *logger.Logger
	Storage gcp.BucketService
	Vision  ai.VisionDescriber
}

type ExtractInput struct {
	DocumentID  uuid.UUID
	StoragePath string
	Filename    string
	MimeType    string
}

// Extract downloads the raw bytes and turns them into text. Images route
// through the vision collaborator; everything else goes through the format
// parsers with a raw-text fallback. Returns ErrEmptyExtraction on unusable
// content, which is fatal for the job.
func Extract(ctx context.Context, deps ExtractDeps, in ExtractInput) (string, error) {
	if deps.Storage == nil {
		return "", fmt.Errorf("extract: missing storage")
	}

	rc, err := deps.Storage.DownloadFile(ctx, in.StoragePath)
	if err != nil {
		return "", fmt.Errorf("download %s: %w", in.StoragePath, err)
	}
	data, err := io.ReadAll(rc)
	_ = rc.Close()
	if err != nil {
		return "", fmt.Errorf("read %s: %w", in.StoragePath, err)
	}

	mimeType := services.ResolveMIME(in.MimeType, in.Filename)

	if services.IsImage(mimeType, data) {
		if deps.Vision == nil {
			return "", fmt.Errorf("extract: image upload but no vision collaborator configured")
		}
		if mimeType == "" {
			mimeType = "image/png"
		}
		dataURL := "data:" + mimeType + ";base64," + base64.StdEncoding.EncodeToString(data)
		text, err := deps.Vision.DescribeImage(ctx, dataURL)
		if err != nil {
			return "", fmt.Errorf("describe image %s: %w", in.Filename, err)
		}
		if strings.TrimSpace(text) == "" {
			return "", fmt.Errorf("%w: image %s produced no description", apperr.ErrEmptyExtraction, in.Filename)
		}
		return text, nil
	}

	return services.ExtractText(in.Filename, mimeType, data)
}
