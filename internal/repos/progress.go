package repos

import (
	"context"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	types "github.com/pathwise/pathwise-backend/internal/domain"
	"github.com/pathwise/pathwise-backend/internal/domain/roadmaps"
	"github.com/pathwise/pathwise-backend/internal/pkg/apperr"
	"github.com/pathwise/pathwise-backend/internal/platform/logger"
)

type ProgressRepo interface {
	// Upsert creates or updates the single record keyed by
	// (user_id, roadmap_id, concept_id).
	Upsert(ctx context.Context, tx *gorm.DB, record *types.UserRoadmapProgress) (*types.UserRoadmapProgress, error)
	GetByUserAndRoadmap(ctx context.Context, tx *gorm.DB, userID, roadmapID uuid.UUID) ([]*types.UserRoadmapProgress, error)
	CountByStatus(ctx context.Context, tx *gorm.DB, userID, roadmapID uuid.UUID) (map[string]int, error)
	DeleteByRoadmap(ctx context.Context, tx *gorm.DB, roadmapID uuid.UUID) error
}

type progressRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProgressRepo(db *gorm.DB, baseLog *logger.Logger) ProgressRepo {
	return &progressRepo{
		db:  db,
		log: baseLog.With("repo", "ProgressRepo"),
	}
}

func (r *progressRepo) Upsert(ctx context.Context, tx *gorm.DB, record *types.UserRoadmapProgress) (*types.UserRoadmapProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if record == nil || record.UserID == uuid.Nil || record.RoadmapID == uuid.Nil || record.ConceptID == "" {
		return nil, apperr.ErrInvalidArgument
	}
	if record.Status == roadmaps.StepCompleted && record.CompletedAt == nil {
		now := time.Now()
		record.CompletedAt = &now
	}
	err := transaction.WithContext(ctx).
		Clauses(clause.OnConflict{
			Columns: []clause.Column{
				{Name: "user_id"}, {Name: "roadmap_id"}, {Name: "concept_id"},
			},
			DoUpdates: clause.AssignmentColumns([]string{"status", "completed_at", "updated_at"}),
		}).
		Create(record).Error
	if err != nil {
		return nil, err
	}
	return record, nil
}

func (r *progressRepo) GetByUserAndRoadmap(ctx context.Context, tx *gorm.DB, userID, roadmapID uuid.UUID) ([]*types.UserRoadmapProgress, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.UserRoadmapProgress
	err := transaction.WithContext(ctx).
		Where("user_id = ? AND roadmap_id = ?", userID, roadmapID).
		Find(&out).Error
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (r *progressRepo) CountByStatus(ctx context.Context, tx *gorm.DB, userID, roadmapID uuid.UUID) (map[string]int, error) {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	var rows []struct {
		Status string
		N      int
	}
	err := transaction.WithContext(ctx).
		Model(&types.UserRoadmapProgress{}).
		Select("status, COUNT(*) AS n").
		Where("user_id = ? AND roadmap_id = ?", userID, roadmapID).
		Group("status").
		Scan(&rows).Error
	if err != nil {
		return nil, err
	}
	out := make(map[string]int, len(rows))
	for _, row := range rows {
		out[row.Status] = row.N
	}
	return out, nil
}

func (r *progressRepo) DeleteByRoadmap(ctx context.Context, tx *gorm.DB, roadmapID uuid.UUID) error {
	transaction := tx
	if transaction == nil {
		transaction = r.db
	}
	if roadmapID == uuid.Nil {
		return nil
	}
	return transaction.WithContext(ctx).
		Where("roadmap_id = ?", roadmapID).
		Delete(&types.UserRoadmapProgress{}).Error
}
