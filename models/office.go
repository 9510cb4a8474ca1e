package models

import (
	"time"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// Specialty is the court specialty (especialidad) of an office
type Specialty string

const (
	SpecialtyCivil              Specialty = "Civil"
	SpecialtyFamily             Specialty = "Familia"
	SpecialtyMixedFamily        Specialty = "FamiliaPromiscuo"
	SpecialtyLabor              Specialty = "Laboral"
	SpecialtyMixed              Specialty = "Promiscuo"
	SpecialtyAdministrative     Specialty = "Administrativo"
	SpecialtySentenceExecution  Specialty = "EjecucionPenas"
	SpecialtyAdolescentCriminal Specialty = "PenalAdolescentes"
	SpecialtyCriminalGuarantees Specialty = "PenalGarantias"
	SpecialtyCriminalTrial      Specialty = "PenalConocimiento"
	SpecialtyMixedCriminal      Specialty = "PenalMixto"
)

// Specialties lists every known court specialty
var Specialties = []Specialty{
	SpecialtyCivil, SpecialtyFamily, SpecialtyMixedFamily, SpecialtyLabor, SpecialtyMixed,
	SpecialtyAdministrative, SpecialtySentenceExecution, SpecialtyAdolescentCriminal,
	SpecialtyCriminalGuarantees, SpecialtyCriminalTrial, SpecialtyMixedCriminal,
}

// Valid reports whether s is one of Specialties
func (s Specialty) Valid() bool {
	for _, v := range Specialties {
		if s == v {
			return true
		}
	}
	return false
}

// OfficeCategory is the hierarchy level of an office
type OfficeCategory string

const (
	CategoryMunicipal OfficeCategory = "Municipal"
	CategoryCircuit   OfficeCategory = "Circuito"
	CategoryTribunal  OfficeCategory = "Tribunal"
)

// Valid reports whether c is a known office category
func (c OfficeCategory) Valid() bool {
	switch c {
	case CategoryMunicipal, CategoryCircuit, CategoryTribunal:
		return true
	}
	return false
}

// Office represents a court office (despacho judicial). Specialty and category
// select the holiday calendar used for business-day counts.
type Office struct {
	ID        string         `gorm:"type:uuid;primarykey" json:"id"`
	CreatedAt time.Time      `json:"created_at"`
	UpdatedAt time.Time      `json:"updated_at"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"-"`

	Code         string         `gorm:"size:20;not null;uniqueIndex" json:"code"` // Court office code (e.g., "050013103001")
	Name         string         `gorm:"size:250;not null" json:"name"`
	Specialty    Specialty      `gorm:"size:40" json:"specialty"`
	Category     OfficeCategory `gorm:"size:20" json:"category"`
	Municipality string         `gorm:"size:120" json:"municipality"`
	District     string         `gorm:"size:120" json:"district"`
	IsActive     bool           `gorm:"not null;default:true" json:"is_active"`
}

// BeforeCreate hook to generate UUID
func (o *Office) BeforeCreate(tx *gorm.DB) error {
	if o.ID == "" {
		o.ID = uuid.New().String()
	}
	return nil
}

// TableName specifies the table name
func (Office) TableName() string {
	return "offices"
}
