package documents

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/datatypes"
)

type DocumentSummary struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID uuid.UUID      `gorm:"type:uuid;not null;uniqueIndex" json:"document_id"`
	Overview   string         `gorm:"column:overview;type:text" json:"overview"`
	KeyPoints  datatypes.JSON `gorm:"column:key_points;type:jsonb" json:"key_points"` // []string
	TopicArea  string         `gorm:"column:topic_area" json:"topic_area,omitempty"`
	Difficulty string         `gorm:"column:difficulty" json:"difficulty,omitempty"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt  time.Time      `gorm:"not null" json:"updated_at"`
}

func (DocumentSummary) TableName() string { return "document_summary" }

func (m *DocumentSummary) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
