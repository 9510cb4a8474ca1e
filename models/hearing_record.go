package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// HearingRecord holds the hearing attendance counts (registro de audiencias)
// of an official at an office for one period.
type HearingRecord struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Period     int    `gorm:"not null;uniqueIndex:idx_hearing_key" json:"period"`
	OfficialID string `gorm:"type:uuid;not null;uniqueIndex:idx_hearing_key" json:"official_id"`
	OfficeID   string `gorm:"type:uuid;not null;uniqueIndex:idx_hearing_key" json:"office_id"`

	Scheduled            int `gorm:"not null;default:0" json:"scheduled"`
	Attended             int `gorm:"not null;default:0" json:"attended"`
	PostponedExternal    int `gorm:"not null;default:0" json:"postponed_external"`
	PostponedJustified   int `gorm:"not null;default:0" json:"postponed_justified"`
	PostponedUnjustified int `gorm:"not null;default:0" json:"postponed_unjustified"`
}

// BeforeCreate hook to generate UUID
func (h *HearingRecord) BeforeCreate(tx *gorm.DB) error {
	if h.ID == "" {
		h.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (HearingRecord) TableName() string {
	return "hearing_records"
}
