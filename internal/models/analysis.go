// internal/models/analysis.go
package models

import (
	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Analysis is written once per summarizer or competitor run and never updated.
type Analysis struct {
	BaseModel
	BrandID          uuid.UUID      `json:"brand_id" gorm:"type:uuid;not null;index;<-:create"`
	AnalysisType     AnalysisType   `json:"analysis_type" gorm:"type:varchar(50);not null;index"`
	Title            string         `json:"title" gorm:"size:255"`
	Description      string         `json:"description" gorm:"type:text"`
	Results          JSONB          `json:"results" gorm:"type:jsonb"`
	Insights         StringList     `json:"insights" gorm:"type:jsonb"`
	Recommendations  StringList     `json:"recommendations" gorm:"type:jsonb"`
	AnalysisStatus   AnalysisStatus `json:"analysis_status" gorm:"type:varchar(20);default:'completed'"`
	ProcessingTimeMs int64          `json:"processing_time_ms"`
	Model            string         `json:"model,omitempty" gorm:"size:100"`
}

func (Analysis) TableName() string {
	return "analyses"
}

func (a *Analysis) BeforeUpdate(tx *gorm.DB) error {
	return ErrAnalysisImmutable
}
