package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/pkg/apperr"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

type DocumentSummaryRepo interface {
	// Upsert keeps at most one summary per document; a redelivered ingestion
	// job overwrites rather than duplicates.
	Upsert(ctx context.Context, tx *gorm.DB, summary *types.DocumentSummary) (*types.DocumentSummary, error)
	GetByDocumentID(ctx context.Context, tx *gorm.DB, documentID uuid.UUID) (*types.DocumentSummary, error)
}

type documentSummaryRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDocumentSummaryRepo(db *gorm.DB, baseLog *logger.Logger) DocumentSummaryRepo {
	return &documentSummaryRepo{
		db:  db,
		log: baseLog.With("repo", "DocumentSummaryRepo"),
	}
}

func (r *documentSummaryRepo) Upsert(ctx context.Context, tx *gorm.DB, summary *types.DocumentSummary) (*types.DocumentSummary, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if summary == nil || summary.DocumentID == uuid.Nil {
		return nil, apperr.ErrInvalidArgument
	}
	err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "document_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"overview", "key_points", "topic_area", "difficulty", "updated_at"}),
		}).
		Create(summary).Error
	if err != nil {
		return nil, err
	}
	return summary, nil
}

func (r *documentSummaryRepo) GetByDocumentID(ctx context.Context, tx *gorm.DB, documentID uuid.UUID) (*types.DocumentSummary, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var summary types.DocumentSummary
	err := transaction.WithContext(ctx).Where("document_id = ?", documentID).First(&summary).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &summary, nil
}
