package services

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"path"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	"github.com/pathwise/pathwise-backend/internal/data/graph"
	types "github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/domain/documents"
	"github.com/pathwise/pathwise-backend/internal/domain/jobs"
	"github.com/pathwise/pathwise-backend/internal/platform/gcp"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
	"github.com/pathwise/pathwise-backend/internal/repos"
)

// DocumentService handles the synchronous side of ingestion: store the
// upload, create the document row, enqueue the ingestion job. The pipeline
// does everything else asynchronously.
type DocumentService struct {
	db        *gorm.DB
	log       *logger.Logger
	documents repos.DocumentRepo
	summaries repos.DocumentSummaryRepo
	quizzes   repos.QuizRepo
	jobRuns   repos.JobRunRepo
	storage   gcp.BucketService
	graph     graph.ConceptStore
	notify    JobNotifier
}

func NewDocumentService(
	db *gorm.DB,
	baseLog *logger.Logger,
	documentRepo repos.DocumentRepo,
	summaryRepo repos.DocumentSummaryRepo,
	quizRepo repos.QuizRepo,
	jobRunRepo repos.JobRunRepo,
	storage gcp.BucketService,
	conceptGraph graph.ConceptStore,
	notify JobNotifier,
) *DocumentService {
	return &DocumentService{
		db:        db,
		log:       baseLog.With("service", "DocumentService"),
		documents: documentRepo,
		summaries: summaryRepo,
		quizzes:   quizRepo,
		jobRuns:   jobRunRepo,
		storage:   storage,
		graph:     conceptGraph,
		notify:    notify,
	}
}

// Upload stores the file, creates the document row, and enqueues ingestion.
// Returns the created document and the queued job.
func (s *DocumentService) Upload(ctx context.Context, userID uuid.UUID, filename, mimeType string, data []byte) (*types.Document, *types.JobRun, error) {
	if filename == "" || len(data) == 0 {
		return nil, nil, fmt.Errorf("upload: empty filename or file body")
	}
	resolved := ResolveMIME(mimeType, filename)

	documentID := uuid.New()
	storagePath := path.Join("documents", documentID.String(), filename)
	if err := s.storage.UploadFile(ctx, storagePath, bytes.NewReader(data)); err != nil {
		return nil, nil, fmt.Errorf("upload file: %w", err)
	}

	doc := &types.Document{
		ID:          documentID,
		OwnerUserID: userID,
		Filename:    filename,
		StoragePath: storagePath,
		MimeType:    resolved,
		Status:      documents.StatusPending,
		Stage:       documents.StageUploaded,
	}
	created, err := s.documents.Create(ctx, nil, doc)
	if err != nil {
		return nil, nil, err
	}

	payload, err := json.Marshal(map[string]any{
		"document_id":  documentID.String(),
		"storage_path": storagePath,
		"filename":     filename,
		"mime_type":    resolved,
	})
	if err != nil {
		return nil, nil, err
	}
	job := &types.JobRun{
		OwnerUserID: userID,
		JobType:     jobs.JobTypeDocumentIngest,
		EntityType:  "document",
		EntityID:    &documentID,
		Status:      jobs.StatusQueued,
		Stage:       documents.StageUploaded,
		Payload:     datatypes.JSON(payload),
	}
	queued, err := s.jobRuns.Create(ctx, nil, []*types.JobRun{job})
	if err != nil {
		return nil, nil, err
	}
	if s.notify != nil {
		s.notify.JobCreated(userID, queued[0])
	}
	return created, queued[0], nil
}

func (s *DocumentService) Get(ctx context.Context, id uuid.UUID) (*types.Document, error) {
	return s.documents.GetByID(ctx, nil, id)
}

func (s *DocumentService) GetSummary(ctx context.Context, documentID uuid.UUID) (*types.DocumentSummary, error) {
	return s.summaries.GetByDocumentID(ctx, nil, documentID)
}

func (s *DocumentService) GetQuiz(ctx context.Context, documentID uuid.UUID) (*types.Quiz, []*types.QuizQuestion, error) {
	return s.quizzes.GetByDocumentID(ctx, nil, documentID)
}

// GetGraph returns the concept subgraph ingestion extracted for a document.
func (s *DocumentService) GetGraph(ctx context.Context, documentID uuid.UUID) (*graph.DocumentGraph, error) {
	return s.graph.GetGraphByDocumentID(ctx, documentID)
}

// GetLatestJob returns the most recent ingestion job for a document, for
// clients that poll instead of streaming.
func (s *DocumentService) GetLatestJob(ctx context.Context, documentID uuid.UUID) (*types.JobRun, error) {
	return s.jobRuns.GetLatestByEntity(ctx, nil, "document", documentID, jobs.JobTypeDocumentIngest)
}
