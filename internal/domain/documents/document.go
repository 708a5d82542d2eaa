package documents

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Status is the terminal-outcome axis of a document; Stage tracks pipeline
// position. The two are related but distinct: a failed document keeps the
// stage it failed in for diagnostics.
const (
	StatusPending    = "pending"
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"

	StageUploaded  = "uploaded"
	StageParsing   = "parsing"
	StageAnalyzing = "analyzing"
	StageReady     = "ready"
)

type Document struct {
	ID           uuid.UUID      `gorm:"type:uuid;primaryKey" json:"id"`
	OwnerUserID  uuid.UUID      `gorm:"type:uuid;not null;index" json:"owner_user_id"`
	Filename     string         `gorm:"column:filename;not null" json:"filename"`
	StoragePath  string         `gorm:"column:storage_path;not null" json:"storage_path"`
	MimeType     string         `gorm:"column:mime_type" json:"mime_type,omitempty"`
	Status       string         `gorm:"column:status;not null;default:'pending';index" json:"status"`
	Stage        string         `gorm:"column:stage;not null;default:'uploaded'" json:"stage"`
	ConceptCount *int           `gorm:"column:concept_count" json:"concept_count,omitempty"`
	Error        string         `gorm:"column:error" json:"error,omitempty"`
	CreatedAt    time.Time      `gorm:"not null" json:"created_at"`
	UpdatedAt    time.Time      `gorm:"not null" json:"updated_at"`
	DeletedAt    gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty"`
}

func (Document) TableName() string { return "document" }

// BeforeCreate assigns an ID so inserts do not depend on database defaults.
func (m *Document) BeforeCreate(tx *gorm.DB) error {
	if m.ID == uuid.Nil {
		m.ID = uuid.New()
	}
	return nil
}
