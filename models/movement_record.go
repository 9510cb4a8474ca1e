package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// CaseClass is the case-handling track a movement row belongs to
type CaseClass string

const (
	ClassOral       CaseClass = "oral"
	ClassGuarantees CaseClass = "garantias"
	ClassWritten    CaseClass = "escrito"
	// ClassConstitutional only appears on consolidated rows (tutela set)
	ClassConstitutional CaseClass = "constitucional"
)

// ConsolidatedCategory labels every aggregated row
const ConsolidatedCategory = "Consolidado"

// Movement holds the inventory counters shared by raw and consolidated rows
type Movement struct {
	InitialInventory  int `gorm:"not null;default:0" json:"initial_inventory"`
	EffectiveIntake   int `gorm:"not null;default:0" json:"effective_intake"`
	EffectiveWorkload int `gorm:"not null;default:0" json:"effective_workload"`
	EffectiveOutput   int `gorm:"not null;default:0" json:"effective_output"`
	Settlements       int `gorm:"not null;default:0" json:"settlements"`
	FinalInventory    int `gorm:"not null;default:0" json:"final_inventory"`
	Remaining         int `gorm:"not null;default:0" json:"remaining"`
}

// Add accumulates o into m
func (m *Movement) Add(o Movement) {
	m.InitialInventory += o.InitialInventory
	m.EffectiveIntake += o.EffectiveIntake
	m.EffectiveWorkload += o.EffectiveWorkload
	m.EffectiveOutput += o.EffectiveOutput
	m.Settlements += o.Settlements
	m.FinalInventory += o.FinalInventory
	m.Remaining += o.Remaining
}

// MovementRecord is one raw row of reported case movement (registro de calificación)
// for an official at an office, for one class, category and sub-period.
type MovementRecord struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	Period     int       `gorm:"not null;index:idx_movement_office_period" json:"period"`
	OfficeID   string    `gorm:"type:uuid;not null;index:idx_movement_office_period" json:"office_id"`
	OfficialID string    `gorm:"type:uuid;not null;index" json:"official_id"`
	Class      CaseClass `gorm:"size:20;not null" json:"class"`
	Category   string    `gorm:"size:200;not null" json:"category"`
	From       time.Time `gorm:"column:period_from;not null" json:"from"`
	To         time.Time `gorm:"column:period_to;not null" json:"to"`

	Movement `gorm:"embedded"`

	Official *Official `gorm:"foreignKey:OfficialID" json:"official,omitempty"`
}

// BeforeCreate hook to generate UUID
func (r *MovementRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (MovementRecord) TableName() string {
	return "movement_records"
}

// ConsolidatedRecord is a derived row: all officials and categories of one class
// summed for one sub-period, annotated with the sub-period business days.
type ConsolidatedRecord struct {
	ID            string `gorm:"type:uuid;primarykey" json:"id"`
	OfficeScoreID string `gorm:"type:uuid;not null;index" json:"office_score_id"`

	Period       int       `gorm:"not null" json:"period"`
	OfficeID     string    `gorm:"type:uuid;not null" json:"office_id"`
	OfficialID   string    `gorm:"type:uuid" json:"official_id"`
	Class        CaseClass `gorm:"size:20;not null" json:"class"`
	Category     string    `gorm:"size:200;not null" json:"category"`
	From         time.Time `gorm:"column:period_from;not null" json:"from"`
	To           time.Time `gorm:"column:period_to;not null" json:"to"`
	BusinessDays int       `gorm:"not null;default:0" json:"business_days"`

	Movement `gorm:"embedded"`
}

// BeforeCreate hook to generate UUID
func (r *ConsolidatedRecord) BeforeCreate(tx *gorm.DB) error {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (ConsolidatedRecord) TableName() string {
	return "consolidated_records"
}
