package types

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/datatypes"
)

// ExtractionLog records one completion-service call made by the photo
// ingestion pipeline: who triggered it, how long the model took, how it
// ended, and the raw response for later inspection.
type ExtractionLog struct {
	ID          uuid.UUID      `gorm:"type:uuid;default:uuid_generate_v4();primaryKey" json:"id"`
	AuthorID    uuid.UUID      `gorm:"index;not null;column:author_id" json:"author_id"`
	Model       string         `gorm:"column:model" json:"model"`
	DurationMS  int64          `gorm:"column:duration_ms" json:"duration_ms"`
	Outcome     string         `gorm:"not null;column:outcome" json:"outcome"`
	RawResponse datatypes.JSON `gorm:"column:raw_response" json:"raw_response,omitempty"`
	CreatedAt   time.Time      `gorm:"not null;default:now()" json:"created_at"`
}

func (ExtractionLog) TableName() string {
	return "extraction_logs"
}
