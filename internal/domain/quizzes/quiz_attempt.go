package quizzes

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
	"gorm.io/datatypes"
)

// QuizAttempt is one user's pass at a step quiz. Answers map question id to
// the submitted option label; an absent answer grades as incorrect.
type QuizAttempt struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	UserID       uuid.UUID      `gorm:"type:uuid;not null;index" json:"user_id"`
	RoadmapID    uuid.UUID      `gorm:"type:uuid;not null;index" json:"roadmap_id"`
	ConceptID    string         `gorm:"column:concept_id;not null" json:"concept_id"`
	QuestionIDs  datatypes.JSON `gorm:"column:question_ids;type:jsonb" json:"question_ids"` // []uuid string
	Answers      datatypes.JSON `gorm:"column:answers;type:jsonb" json:"answers"`           // map[questionID]label
	Score        int            `gorm:"column:score;not null;default:0" json:"score"`
	CorrectCount int            `gorm:"column:correct_count;not null;default:0" json:"correct_count"`
	Passed       bool           `gorm:"column:passed;not null;default:false" json:"passed"`
	CompletedAt  *time.Time     `gorm:"column:completed_at" json:"completed_at,omitempty"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
}

func (QuizAttempt) TableName() string { return "quiz_attempt" }

func (m *QuizAttempt) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
