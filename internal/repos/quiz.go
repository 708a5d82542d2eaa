package repos

import (
	"context"
	"errors"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/pkg/apperr"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

type QuizRepo interface {
	// ReplaceForDocument deletes any prior quiz (and its questions) for the
	// document before inserting the new set, so a redelivered ingestion job
	// cannot leave duplicate question sets behind.
	ReplaceForDocument(ctx context.Context, tx *gorm.DB, quiz *types.Quiz, questions []*types.QuizQuestion) (*types.Quiz, error)
	// CreateForConcept persists an on-demand concept-scoped quiz and its
	// questions. Unlike ReplaceForDocument it never deletes prior rows.
	CreateForConcept(ctx context.Context, tx *gorm.DB, quiz *types.Quiz, questions []*types.QuizQuestion) (*types.Quiz, error)
	GetByDocumentID(ctx context.Context, tx *gorm.DB, documentID uuid.UUID) (*types.Quiz, []*types.QuizQuestion, error)
	GetQuestionsByConceptID(ctx context.Context, tx *gorm.DB, conceptID string, limit int) ([]*types.QuizQuestion, error)
	GetQuestionsByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.QuizQuestion, error)
}

type quizRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizRepo(db *gorm.DB, baseLog *logger.Logger) QuizRepo {
	return &quizRepo{
		db:  db,
		log: baseLog.With("repo", "QuizRepo"),
	}
}

func (r *quizRepo) ReplaceForDocument(ctx context.Context, tx *gorm.DB, quiz *types.Quiz, questions []*types.QuizQuestion) (*types.Quiz, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if quiz == nil || quiz.DocumentID == nil || *quiz.DocumentID == uuid.Nil {
		return nil, apperr.ErrInvalidArgument
	}
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		var prior []*types.Quiz
		if err := txx.Where("document_id = ?", *quiz.DocumentID).Find(&prior).Error; err != nil {
			return err
		}
		for _, p := range prior {
			if err := txx.Where("quiz_id = ?", p.ID).Delete(&types.QuizQuestion{}).Error; err != nil {
				return err
			}
		}
		if len(prior) > 0 {
			if err := txx.Where("document_id = ?", *quiz.DocumentID).Delete(&types.Quiz{}).Error; err != nil {
				return err
			}
		}
		if err := txx.Create(quiz).Error; err != nil {
			return err
		}
		for _, q := range questions {
			q.QuizID = quiz.ID
		}
		if len(questions) == 0 {
			return nil
		}
		return txx.Create(&questions).Error
	})
	if err != nil {
		return nil, err
	}
	return quiz, nil
}

func (r *quizRepo) CreateForConcept(ctx context.Context, tx *gorm.DB, quiz *types.Quiz, questions []*types.QuizQuestion) (*types.Quiz, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if quiz == nil || quiz.ConceptID == "" {
		return nil, apperr.ErrInvalidArgument
	}
	err := transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if err := txx.Create(quiz).Error; err != nil {
			return err
		}
		for _, q := range questions {
			q.QuizID = quiz.ID
			if q.ConceptID == "" {
				q.ConceptID = quiz.ConceptID
			}
		}
		if len(questions) == 0 {
			return nil
		}
		return txx.Create(&questions).Error
	})
	if err != nil {
		return nil, err
	}
	return quiz, nil
}

func (r *quizRepo) GetByDocumentID(ctx context.Context, tx *gorm.DB, documentID uuid.UUID) (*types.Quiz, []*types.QuizQuestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var quiz types.Quiz
	err := transaction.WithContext(ctx).Where("document_id = ?", documentID).First(&quiz).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, nil, err
	}
	var questions []*types.QuizQuestion
	err = transaction.WithContext(ctx).
		Where("quiz_id = ?", quiz.ID).
		Order("sort_index ASC").
		Find(&questions).Error
	if err != nil {
		return nil, nil, err
	}
	return &quiz, questions, nil
}

func (r *quizRepo) GetQuestionsByConceptID(ctx context.Context, tx *gorm.DB, conceptID string, limit int) ([]*types.QuizQuestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if conceptID == "" {
		return nil, apperr.ErrInvalidArgument
	}
	q := transaction.WithContext(ctx).
		Where("concept_id = ?", conceptID).
		Order("sort_index ASC")
	if limit > 0 {
		q = q.Limit(limit)
	}
	var out []*types.QuizQuestion
	if err := q.Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *quizRepo) GetQuestionsByIDs(ctx context.Context, tx *gorm.DB, ids []uuid.UUID) ([]*types.QuizQuestion, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.QuizQuestion
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(ctx).Where("id IN ?", ids).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
