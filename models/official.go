package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Official is a judicial officer (funcionario) whose efficiency is scored
type Official struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name     string `gorm:"not null" json:"name"`
	Document string `gorm:"size:30;not null;uniqueIndex" json:"document"`
	Email    string `json:"email"`
	IsActive bool   `gorm:"not null;default:true" json:"is_active"`
}

// BeforeCreate hook to generate UUID
func (o *Official) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Official) TableName() string {
	return "officials"
}
