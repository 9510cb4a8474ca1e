package models

import (
	"strings"
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Capabilities granted to users
const (
	CapabilityEditor   = "editor"   // Captures inputs and submits scores
	CapabilityReviewer = "reviewer" // Approves or returns scores
	CapabilityAdmin    = "admin"
)

type User struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Name         string     `gorm:"not null" json:"name"`
	Email        string     `gorm:"uniqueIndex;not null" json:"email"`
	Password     string     `gorm:"not null" json:"-"`
	Capabilities string     `gorm:"not null;default:editor" json:"capabilities"` // Comma separated: editor, reviewer, admin
	IsActive     bool       `gorm:"not null;default:true" json:"is_active"`
	LastLoginAt  *time.Time `json:"last_login_at"`
}

// BeforeCreate hook to generate UUID
func (u *User) BeforeCreate(tx *gorm.DB) error {
	if u.ID == "" {
		u.ID = uuid.New().String()
	}
	return nil
}

// CapabilityList returns the normalized capabilities of the user
func (u *User) CapabilityList() []string {
	var out []string
	for _, c := range strings.Split(u.Capabilities, ",") {
		c = strings.ToLower(strings.TrimSpace(c))
		if c != "" {
			out = append(out, c)
		}
	}
	return out
}

// HasCapability checks if the user holds capability. Admins hold every capability.
func (u *User) HasCapability(capability string) bool {
	for _, c := range u.CapabilityList() {
		if c == capability || c == CapabilityAdmin {
			return true
		}
	}
	return false
}

// TableName specifies the table name for User model
func (User) TableName() string {
	return "users"
}
