package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// StatisticsExport tracks a stored statistics workbook of an office score
type StatisticsExport struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	OfficeScoreID string  `gorm:"type:uuid;not null;index" json:"office_score_id"`
	CreatedByID   *string `gorm:"type:uuid" json:"created_by_id,omitempty"`
	FileKey       string  `gorm:"not null" json:"-"`
	FileName      string  `gorm:"not null" json:"file_name"`
	SizeBytes     int64   `gorm:"not null;default:0" json:"size_bytes"`
}

// BeforeCreate hook to generate UUID
func (e *StatisticsExport) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (StatisticsExport) TableName() string {
	return "statistics_exports"
}
