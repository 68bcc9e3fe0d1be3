// internal/models/common.go
package models

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrNegativePrice     = errors.New("price cannot be negative")
	ErrAnalysisImmutable = errors.New("analysis records are immutable")
	ErrInvalidWebsiteURL = errors.New("website url has no host")
)

// Base model with common fields
type BaseModel struct {
	ID        uuid.UUID `json:"id" gorm:"type:uuid;primary_key"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func (b *BaseModel) BeforeCreate(tx *gorm.DB) error {
	if b.ID == uuid.Nil {
		b.ID = uuid.New()
	}
	return nil
}

// JSONB type for PostgreSQL
type JSONB map[string]interface{}

func (j JSONB) Value() (driver.Value, error) {
	if j == nil {
		return nil, nil
	}
	return json.Marshal(j)
}

func (j *JSONB) Scan(value interface{}) error {
	return scanJSON(value, j)
}

// StringList is a JSON array of strings stored in a jsonb column.
type StringList []string

func (s StringList) Value() (driver.Value, error)  { return jsonValue(s, s == nil) }
func (s *StringList) Scan(value interface{}) error { return scanJSON(value, s) }

// jsonValue stores nil lists as an empty array so readers never see SQL NULL.
func jsonValue(v interface{}, isNil bool) (driver.Value, error) {
	if isNil {
		return "[]", nil
	}
	b, err := json.Marshal(v)
	if err != nil {
		return nil, err
	}
	return string(b), nil
}

func scanJSON(value interface{}, dest interface{}) error {
	switch v := value.(type) {
	case nil:
		return nil
	case []byte:
		return json.Unmarshal(v, dest)
	case string:
		return json.Unmarshal([]byte(v), dest)
	default:
		return fmt.Errorf("unsupported json column type %T", value)
	}
}

// Enums
type ScrapingStatus string

const (
	ScrapingStatusPending    ScrapingStatus = "pending"
	ScrapingStatusInProgress ScrapingStatus = "in_progress"
	ScrapingStatusCompleted  ScrapingStatus = "completed"
	ScrapingStatusFailed     ScrapingStatus = "failed"
)

type AnalysisType string

const (
	AnalysisTypeBrandSummary       AnalysisType = "brand_summary"
	AnalysisTypeCompetitorAnalysis AnalysisType = "competitor_analysis"
)

type AnalysisStatus string

const (
	AnalysisStatusCompleted AnalysisStatus = "completed"
	AnalysisStatusPartial   AnalysisStatus = "partial"
	AnalysisStatusFailed    AnalysisStatus = "failed"
)
