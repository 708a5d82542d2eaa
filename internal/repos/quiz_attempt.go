package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/pkg/apperr"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

type QuizAttemptRepo interface {
	Create(ctx context.Context, tx *gorm.DB, attempt *types.QuizAttempt) (*types.QuizAttempt, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.QuizAttempt, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
}

type quizAttemptRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewQuizAttemptRepo(db *gorm.DB, baseLog *logger.Logger) QuizAttemptRepo {
	return &quizAttemptRepo{
		db:  db,
		log: baseLog.With("repo", "QuizAttemptRepo"),
	}
}

func (r *quizAttemptRepo) Create(ctx context.Context, tx *gorm.DB, attempt *types.QuizAttempt) (*types.QuizAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if attempt == nil || attempt.UserID == uuid.Nil {
		return nil, apperr.ErrInvalidArgument
	}
	if err := transaction.WithContext(ctx).Create(attempt).Error; err != nil {
		return nil, err
	}
	return attempt, nil
}

func (r *quizAttemptRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.QuizAttempt, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var attempt types.QuizAttempt
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&attempt).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &attempt, nil
}

func (r *quizAttemptRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil
	}
	if updates == nil {
		updates = map[string]interface{}{}
	}
	if _, ok := updates["updated_at"]; !ok {
		updates["updated_at"] = time.Now()
	}
	return transaction.WithContext(ctx).
		Model(&types.QuizAttempt{}).
		Where("id = ?", id).
		Updates(updates).Error
}
