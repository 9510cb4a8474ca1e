package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// ScoreState is the approval workflow state of a period score
type ScoreState string

const (
	StateDraft    ScoreState = "draft"
	StateInReview ScoreState = "in_review"
	StateApproved ScoreState = "approved"
	StateReturned ScoreState = "returned"
)

// PeriodScore is the annual score of an official (calificación del periodo),
// the days-worked weighted average of its office scores.
type PeriodScore struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`

	OfficialID    string     `gorm:"type:uuid;not null;uniqueIndex:idx_period_score_key" json:"official_id"`
	Period        int        `gorm:"not null;uniqueIndex:idx_period_score_key" json:"period"`
	State         ScoreState `gorm:"size:20;not null;default:draft;index" json:"state"`
	WeightedScore float64    `gorm:"not null;default:0" json:"weighted_score"`

	// Relationships
	Official           *Official           `gorm:"foreignKey:OfficialID" json:"official,omitempty"`
	OfficeScores       []OfficeScore       `gorm:"foreignKey:PeriodScoreID" json:"office_scores,omitempty"`
	ReturnObservations []ReturnObservation `gorm:"foreignKey:PeriodScoreID" json:"return_observations,omitempty"`
}

// BeforeCreate hook to generate UUID
func (p *PeriodScore) BeforeCreate(tx *gorm.DB) error {
	if p.ID == "" {
		p.ID = uuid.New().String()
	}
	if p.State == "" {
		p.State = StateDraft
	}
	return nil
}

// TableName specifies the table name
func (PeriodScore) TableName() string {
	return "period_scores"
}

// ReturnObservation is the reviewer note attached when a score is returned.
// Observations are append-only.
type ReturnObservation struct {
	ID        string    `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	PeriodScoreID string `gorm:"type:uuid;not null;index" json:"period_score_id"`
	AuthorID      string `gorm:"type:uuid;not null" json:"author_id"`
	Text          string `gorm:"type:text;not null" json:"text"`

	Author *User `gorm:"foreignKey:AuthorID" json:"author,omitempty"`
}

// BeforeCreate hook to generate UUID
func (o *ReturnObservation) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

// BeforeUpdate prevents modification of observations
func (o *ReturnObservation) BeforeUpdate(tx *gorm.DB) error {
	return gorm.ErrRecordNotFound
}

// BeforeDelete prevents deletion of observations
func (o *ReturnObservation) BeforeDelete(tx *gorm.DB) error {
	return gorm.ErrRecordNotFound
}

// TableName specifies the table name
func (ReturnObservation) TableName() string {
	return "return_observations"
}
