package models

import (
	"time"

	"github.com/google/uuid"
)

// MatchRecord is the persisted summary of one completed match. Résumé bytes
// and text are never stored, only the derived attributes and the ranked
// outcome.
type MatchRecord struct {
	ID             uuid.UUID `gorm:"type:uuid;primary_key;default:gen_random_uuid()" json:"id"`
	ResumeFilename string    `gorm:"type:text" json:"resume_filename"`
	TextLength     int       `json:"text_length"`
	Attributes     string    `gorm:"type:jsonb" json:"attributes"`
	AppliedFilter  string    `gorm:"type:text" json:"applied_filter"`
	Results        string    `gorm:"type:jsonb" json:"results"`
	ResultCount    int       `json:"result_count"`
	ProcessingMs   int64     `json:"processing_ms"`
	CreatedAt      time.Time `gorm:"type:timestamp;default:now()" json:"created_at"`
}

func (MatchRecord) TableName() string {
	return "match_records"
}
