package roadmaps

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

const (
	ResourceTypeArticle       = "article"
	ResourceTypeVideo         = "video"
	ResourceTypeCourse        = "course"
	ResourceTypeDocumentation = "documentation"
	ResourceTypeTutorial      = "tutorial"
	ResourceTypeBook          = "book"
)

// Resource is an externally discovered learning artifact attached to a step.
// Rows are created only by the resource-discovery stage and replaced
// wholesale per concept, never mutated in place.
type Resource struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	RoadmapID    uuid.UUID      `gorm:"type:uuid;not null;index:idx_resource_roadmap_concept" json:"roadmap_id"`
	ConceptID    string         `gorm:"column:concept_id;not null;index:idx_resource_roadmap_concept" json:"concept_id"`
	Title        string         `gorm:"column:title;not null" json:"title"`
	URL          string         `gorm:"column:url;not null" json:"url"`
	Type         string         `gorm:"column:type;not null" json:"type"`
	Description  string         `gorm:"column:description;type:text" json:"description,omitempty"`
	Provider     string         `gorm:"column:provider" json:"provider,omitempty"`
	Duration     string         `gorm:"column:duration" json:"duration,omitempty"`
	Difficulty   string         `gorm:"column:difficulty" json:"difficulty,omitempty"`
	DisplayOrder int            `gorm:"column:display_order;not null;default:0" json:"display_order"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Resource) TableName() string { return "resource" }

func (m *Resource) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
