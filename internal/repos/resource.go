package repos

import (
	"context"

	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/pkg/apperr"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

type ResourceRepo interface {
	// ReplaceForConcept swaps the full resource set of one (roadmap, concept)
	// pair. Resources are never mutated in place.
	ReplaceForConcept(ctx context.Context, tx *gorm.DB, roadmapID uuid.UUID, conceptID string, resources []*types.Resource) error
	GetByRoadmapID(ctx context.Context, tx *gorm.DB, roadmapID uuid.UUID) ([]*types.Resource, error)
	CountByRoadmapID(ctx context.Context, tx *gorm.DB, roadmapID uuid.UUID) (int64, error)
}

type resourceRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewResourceRepo(db *gorm.DB, baseLog *logger.Logger) ResourceRepo {
	return &resourceRepo{
		db:  db,
		log: baseLog.With("repo", "ResourceRepo"),
	}
}

func (r *resourceRepo) ReplaceForConcept(ctx context.Context, tx *gorm.DB, roadmapID uuid.UUID, conceptID string, resources []*types.Resource) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if roadmapID == uuid.Nil || conceptID == "" {
		return apperr.ErrInvalidArgument
	}
	return transaction.WithContext(ctx).Transaction(func(txx *gorm.DB) error {
		if err := txx.
			Where("roadmap_id = ? AND concept_id = ?", roadmapID, conceptID).
			Delete(&types.Resource{}).Error; err != nil {
			return err
		}
		if len(resources) == 0 {
			return nil
		}
		return txx.Create(&resources).Error
	})
}

func (r *resourceRepo) GetByRoadmapID(ctx context.Context, tx *gorm.DB, roadmapID uuid.UUID) ([]*types.Resource, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Resource
	err := transaction.WithContext(ctx).
		Where("roadmap_id = ?", roadmapID).
		Order("concept_id ASC, display_order ASC").
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *resourceRepo) CountByRoadmapID(ctx context.Context, tx *gorm.DB, roadmapID uuid.UUID) (int64, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	err := transaction.WithContext(ctx).
		Model(&types.Resource{}).
		Where("roadmap_id = ?", roadmapID).
		Count(&n).Error
	return n, err
}
