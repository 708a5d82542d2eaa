package repos

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"

	types "github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/pkg/apperr"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

type RoadmapRepo interface {
	Create(ctx context.Context, tx *gorm.DB, roadmap *types.Roadmap) (*types.Roadmap, error)
	GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Roadmap, error)
	UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error
	// SaveStepsIfVersion writes the step list only when the stored version
	// still matches expectedVersion, bumping it on success. Returns false
	// on a version conflict so callers can re-read and retry.
	SaveStepsIfVersion(ctx context.Context, tx *gorm.DB, id uuid.UUID, steps datatypes.JSON, expectedVersion int) (bool, error)
}

type roadmapRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewRoadmapRepo(db *gorm.DB, baseLog *logger.Logger) RoadmapRepo {
	return &roadmapRepo{
		db:  db,
		log: baseLog.With("repo", "RoadmapRepo"),
	}
}

func (r *roadmapRepo) Create(ctx context.Context, tx *gorm.DB, roadmap *types.Roadmap) (*types.Roadmap, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if roadmap == nil {
		return nil, apperr.ErrInvalidArgument
	}
	if err := transaction.WithContext(ctx).Create(roadmap).Error; err != nil {
		return nil, err
	}
	return roadmap, nil
}

func (r *roadmapRepo) GetByID(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*types.Roadmap, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var roadmap types.Roadmap
	err := transaction.WithContext(ctx).Where("id = ?", id).First(&roadmap).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return &roadmap, nil
}

func (r *roadmapRepo) UpdateFields(ctx context.Context, tx *gorm.DB, id uuid.UUID, updates map[string]interface{}) error {
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
		Model(&types.Roadmap{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *roadmapRepo) SaveStepsIfVersion(ctx context.Context, tx *gorm.DB, id uuid.UUID, steps datatypes.JSON, expectedVersion int) (bool, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return false, apperr.ErrInvalidArgument
	}
	res := transaction.WithContext(ctx).
		Model(&types.Roadmap{}).
		Where("id = ? AND version = ?", id, expectedVersion).
		Updates(map[string]interface{}{
			"steps":      steps,
			"version":    gorm.Expr("version + 1"),
			"updated_at": time.Now(),
		})
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected == 1, nil
}
