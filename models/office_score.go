package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// SubfactorResult is one of the three class subfactors of an office score
type SubfactorResult struct {
	ID            string    `gorm:"type:uuid;primarykey" json:"id"`
	OfficeScoreID string    `gorm:"type:uuid;not null;index" json:"office_score_id"`
	Class         CaseClass `gorm:"size:20;not null" json:"class"`

	InitialInventory     int     `gorm:"not null;default:0" json:"initial_inventory"`
	OfficeBaseWorkload   int     `gorm:"not null;default:0" json:"office_base_workload"`
	OfficialBaseWorkload int     `gorm:"not null;default:0" json:"official_base_workload"`
	OfficialOutput       int     `gorm:"not null;default:0" json:"official_output"`
	ProportionalQuota    float64 `gorm:"not null;default:0" json:"proportional_quota"`
	Score                float64 `gorm:"not null;default:0" json:"score"`
}

// BeforeCreate hook to generate UUID
func (s *SubfactorResult) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (SubfactorResult) TableName() string {
	return "subfactor_results"
}

// OfficeScore is the score of an official at one office for one period
// (calificación por despacho). Its children are replaced on every recomputation.
type OfficeScore struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	PeriodScoreID string `gorm:"type:uuid;not null;uniqueIndex:idx_office_score_key" json:"period_score_id"`
	OfficeID      string `gorm:"type:uuid;not null;uniqueIndex:idx_office_score_key" json:"office_id"`

	TotalWorkload      int `gorm:"not null;default:0" json:"total_workload"`
	TotalOutput        int `gorm:"not null;default:0" json:"total_output"`
	OfficeBusinessDays int `gorm:"not null;default:0" json:"office_business_days"`
	DaysDeducted       int `gorm:"not null;default:0" json:"days_deducted"`
	DaysWorked         int `gorm:"not null;default:0" json:"days_worked"`

	HearingRecordID    *string `gorm:"type:uuid" json:"hearing_record_id"`
	HearingBonus       float64 `gorm:"not null;default:0" json:"hearing_bonus"`
	OralPlusHearing    float64 `gorm:"not null;default:0" json:"oral_plus_hearing"`
	EfficiencyScore    float64 `gorm:"not null;default:0" json:"efficiency_score"`
	HasWrittenWorkload bool    `gorm:"not null;default:false" json:"has_written_workload"`

	// Relationships
	Office              *Office              `gorm:"foreignKey:OfficeID" json:"office,omitempty"`
	PeriodScore         *PeriodScore         `gorm:"foreignKey:PeriodScoreID" json:"-"`
	HearingRecord       *HearingRecord       `gorm:"foreignKey:HearingRecordID" json:"hearing_record,omitempty"`
	ConsolidatedRecords []ConsolidatedRecord `gorm:"foreignKey:OfficeScoreID;constraint:OnDelete:CASCADE" json:"consolidated_records,omitempty"`
	Subfactors          []SubfactorResult    `gorm:"foreignKey:OfficeScoreID;constraint:OnDelete:CASCADE" json:"subfactors,omitempty"`
}

// BeforeCreate hook to generate UUID
func (s *OfficeScore) BeforeCreate(tx *gorm.DB) error {
	if s.ID == "" {
		s.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (OfficeScore) TableName() string {
	return "office_scores"
}

// Subfactor returns the subfactor for class, or nil
func (s *OfficeScore) Subfactor(class CaseClass) *SubfactorResult {
	for i := range s.Subfactors {
		if s.Subfactors[i].Class == class {
			return &s.Subfactors[i]
		}
	}
	return nil
}
