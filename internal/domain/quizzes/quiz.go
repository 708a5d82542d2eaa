package quizzes

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Quiz is either document-scoped (produced by ingestion) or concept-scoped
// (generated on demand for a roadmap step); exactly one scope is set.
type Quiz struct {
	ID         uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	DocumentID *uuid.UUID     `gorm:"type:uuid;column:document_id;index" json:"document_id,omitempty"`
	RoadmapID  *uuid.UUID     `gorm:"type:uuid;column:roadmap_id;index" json:"roadmap_id,omitempty"`
	ConceptID  string         `gorm:"column:concept_id;index" json:"concept_id,omitempty"`
	Title      string         `gorm:"column:title;not null" json:"title"`
	CreatedAt  time.Time      `gorm:"not null" json:"created_at"`
	DeletedAt  gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Quiz) TableName() string { return "quiz" }

func (m *Quiz) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

// Option is one answer choice of a question; rows store options as jsonb.
type Option struct {
	Label     string `json:"label"`
	Text      string `json:"text"`
	IsCorrect bool   `json:"is_correct"`
}

type QuizQuestion struct {
	ID          uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	QuizID      uuid.UUID      `gorm:"type:uuid;not null;index" json:"quiz_id"`
	ConceptID   string         `gorm:"column:concept_id;index" json:"concept_id,omitempty"`
	Type        string         `gorm:"column:type;not null;default:'multiple_choice'" json:"type"`
	Text        string         `gorm:"column:text;type:text;not null" json:"text"`
	Options     datatypes.JSON `gorm:"column:options;type:jsonb" json:"options"` // []Option
	Explanation string         `gorm:"column:explanation;type:text" json:"explanation,omitempty"`
	Difficulty  string         `gorm:"column:difficulty" json:"difficulty,omitempty"`
	SortIndex   int            `gorm:"column:sort_index;not null;default:0" json:"sort_index"`
	CreatedAt   time.Time      `gorm:"not null" json:"created_at"`
}

func (QuizQuestion) TableName() string { return "quiz_question" }

func (m *QuizQuestion) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
