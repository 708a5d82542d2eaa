package roadmaps

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
)

// Generation stages, reported as job progress while the pipeline runs.
const (
	StageConcepts     = "concepts"
	StageLearningPath = "learning-path"
	StageResources    = "resources"
	StageDone         = "done"
)

const (
	DifficultyBeginner     = "beginner"
	DifficultyIntermediate = "intermediate"
	DifficultyAdvanced     = "advanced"
	DifficultyExpert       = "expert"
)

// Step is one position in a roadmap. Steps are embedded in the roadmap row
// as a jsonb array so the full ordered list reads and writes atomically.
type Step struct {
	ConceptID         string   `json:"concept_id"`
	ConceptName       string   `json:"concept_name"`
	Order             int      `json:"order"` // 1-based, contiguous within a roadmap
	DependsOn         []string `json:"depends_on,omitempty"`
	LearningObjective string   `json:"learning_objective,omitempty"`
	EstimatedDuration int      `json:"estimated_duration,omitempty"` // minutes
	Difficulty        string   `json:"difficulty,omitempty"`
	Rationale         string   `json:"rationale,omitempty"`
}

type Roadmap struct {
	ID          uuid.UUID  `gorm:"type:uuid;primaryKey" json:"id"`
	Title       string     `gorm:"column:title;not null" json:"title"`
	Description string     `gorm:"column:description;type:text" json:"description,omitempty"`
	DocumentID  *uuid.UUID `gorm:"type:uuid;column:document_id;index" json:"document_id,omitempty"`
	UserID      *uuid.UUID `gorm:"type:uuid;column:user_id;index" json:"user_id,omitempty"`
	Category    string     `gorm:"column:category" json:"category,omitempty"`
	Status      string     `gorm:"column:status;not null;default:'pending';index" json:"status"`
	// Steps holds a []Step jsonb array; use DecodeSteps/SetSteps.
	Steps                  datatypes.JSON `gorm:"column:steps;type:jsonb" json:"steps"`
	TotalEstimatedDuration *int           `gorm:"column:total_estimated_duration" json:"total_estimated_duration,omitempty"`
	RecommendedPace        string         `gorm:"column:recommended_pace" json:"recommended_pace,omitempty"`
	Error                  string         `gorm:"column:error" json:"error,omitempty"`
	// Version guards concurrent read-modify-write on the step list.
	Version   int            `gorm:"column:version;not null;default:0" json:"version"`
	CreatedAt time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Roadmap) TableName() string { return "roadmap" }

func (m *Roadmap) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}

func (r *Roadmap) DecodeSteps() ([]Step, error) {
	if r == nil || len(r.Steps) == 0 {
		return []Step{}, nil
	}
	var steps []Step
	if err := json.Unmarshal(r.Steps, &steps); err != nil {
		return nil, err
	}
	return steps, nil
}

func (r *Roadmap) SetSteps(steps []Step) error {
	if steps == nil {
		steps = []Step{}
	}
	b, err := json.Marshal(steps)
	if err != nil {
		return err
	}
	r.Steps = datatypes.JSON(b)
	return nil
}
