package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// PersonnelEvent is an absence, leave or reassignment interval (novedad)
// of an official at an office.
type PersonnelEvent struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	OfficialID string    `gorm:"type:uuid;not null;index:idx_event_official_office" json:"official_id"`
	OfficeID   string    `gorm:"type:uuid;not null;index:idx_event_official_office" json:"office_id"`
	Type       string    `gorm:"size:80;not null" json:"type"`
	From       time.Time `gorm:"column:event_from;not null" json:"from"`
	To         time.Time `gorm:"column:event_to;not null" json:"to"`
	Days       int       `gorm:"not null;default:0" json:"days"`
	// DeductibleDays are the event days that fall inside the worked business days
	DeductibleDays int    `gorm:"not null;default:0" json:"deductible_days"`
	Notes          string `gorm:"type:text" json:"notes"`
}

// BeforeCreate hook to generate UUID
func (e *PersonnelEvent) BeforeCreate(tx *gorm.DB) error {
	if e.ID == "" {
		e.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (PersonnelEvent) TableName() string {
	return "personnel_events"
}

// Overlaps reports whether the event intersects [from, to]
func (e *PersonnelEvent) Overlaps(from, to time.Time) bool {
	return !e.From.After(to) && !e.To.Before(from)
}
