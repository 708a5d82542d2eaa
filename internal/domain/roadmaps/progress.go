package roadmaps

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	StepNotStarted = "not_started"
	StepInProgress = "in_progress"
	StepCompleted  = "completed"
	StepSkipped    = "skipped"
)

// UserRoadmapProgress is the single per-(user, roadmap, step) status record.
// Created on first status change, upserted thereafter.
type UserRoadmapProgress struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	UserID      uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_roadmap_concept,priority:1" json:"user_id"`
	RoadmapID   uuid.UUID  `gorm:"type:uuid;not null;uniqueIndex:idx_progress_user_roadmap_concept,priority:2" json:"roadmap_id"`
	ConceptID   string     `gorm:"column:concept_id;not null;uniqueIndex:idx_progress_user_roadmap_concept,priority:3" json:"concept_id"`
	Status      string     `gorm:"column:status;not null;default:'not_started'" json:"status"`
	CompletedAt *time.Time `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt   time.Time  `gorm:"not null" json:"created_at"`
	UpdatedAt   time.Time  `gorm:"not null" json:"updated_at"`
}

func (UserRoadmapProgress) TableName() string { return "user_roadmap_progress" }

func (m *UserRoadmapProgress) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// ProgressSummary is derived, never stored.
type ProgressSummary struct {
	RoadmapID          uuid.UUID `json:"roadmap_id"`
	TotalSteps         int       `json:"total_steps"`
	CompletedSteps     int       `json:"completed_steps"`
	InProgressSteps    int       `json:"in_progress_steps"`
	SkippedSteps       int       `json:"skipped_steps"`
	ProgressPercentage int       `json:"progress_percentage"`
}
