package services

import (
	"fmt"
	"strings"

	"calificaciones_app_go/models"

	"gorm.io/gorm"
)

// GetOffice returns an office by ID
func GetOffice(db *gorm.DB, id string) (*models.Office, error) {
	var office models.Office
	if err := db.First(&office, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "office")
	}
	return &office, nil
}

// GetOfficeByCode returns an office by its court code
func GetOfficeByCode(db *gorm.DB, code string) (*models.Office, error) {
	var office models.Office
	if err := db.First(&office, "code = ?", code).Error; err != nil {
		return nil, notFound(err, "office")
	}
	return &office, nil
}

// UpdateOfficeInput is the payload to edit an office. Specialty and category
// select its holiday calendar.
type UpdateOfficeInput struct {
	Name         string `json:"name" validate:"required,max=250"`
	Specialty    string `json:"specialty" validate:"required"`
	Category     string `json:"category" validate:"required"`
	Municipality string `json:"municipality" validate:"max=120"`
	District     string `json:"district" validate:"max=120"`
	IsActive     bool   `json:"is_active"`
}

func (in *UpdateOfficeInput) validate() error {
	if err := validateStruct(in); err != nil {
		return err
	}
	if !models.Specialty(in.Specialty).Valid() {
		names := make([]string, len(models.Specialties))
		for i, sp := range models.Specialties {
			names[i] = string(sp)
		}
		return NewValidationError("specialty", "must be one of: "+strings.Join(names, " "))
	}
	if !models.OfficeCategory(in.Category).Valid() {
		return NewValidationError("category", fmt.Sprintf("must be one of: %s %s %s",
			models.CategoryMunicipal, models.CategoryCircuit, models.CategoryTribunal))
	}
	return nil
}

// UpdateOffice edits an office and recomputes every office score at it that
// is not approved, since the calendar may have changed.
func UpdateOffice(db *gorm.DB, actor AuditContext, id string, in UpdateOfficeInput) (*models.Office, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	office, err := GetOffice(db, id)
	if err != nil {
		return nil, err
	}

	targets, err := officeScoreTargets(db, office.ID)
	if err != nil {
		return nil, err
	}

	err = mutateScores(db, nil, targets, func(tx *gorm.DB) error {
		old := *office
		office.Name = strings.TrimSpace(in.Name)
		office.Specialty = models.Specialty(in.Specialty)
		office.Category = models.OfficeCategory(in.Category)
		office.Municipality = strings.TrimSpace(in.Municipality)
		office.District = strings.TrimSpace(in.District)
		office.IsActive = in.IsActive
		if err := tx.Save(office).Error; err != nil {
			return fmt.Errorf("failed to update office: %w", err)
		}

		return RecordAuditEvent(tx, actor, AuditEvent{
			Action:       models.AuditActionUpdate,
			ResourceType: "Office",
			ResourceID:   office.ID,
			ResourceName: office.Code,
			Description:  fmt.Sprintf("Office %s updated", office.Code),
			OldValues:    old,
			NewValues:    office,
		})
	})
	if err != nil {
		return nil, err
	}
	return office, nil
}

// officeScoreTargets lists the targets of every period with data at the office
func officeScoreTargets(db *gorm.DB, officeID string) ([]ScoreTarget, error) {
	var periods []int
	if err := db.Model(&models.MovementRecord{}).
		Where("office_id = ?", officeID).
		Distinct().Order("period ASC").Pluck("period", &periods).Error; err != nil {
		return nil, err
	}

	var targets []ScoreTarget
	for _, period := range periods {
		ts, err := officeTargets(db, officeID, period)
		if err != nil {
			return nil, err
		}
		targets = append(targets, ts...)
	}
	return targets, nil
}

// GetOfficial returns an official by ID
func GetOfficial(db *gorm.DB, id string) (*models.Official, error) {
	var official models.Official
	if err := db.First(&official, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "official")
	}
	return &official, nil
}

// ListOfficials returns all officials ordered by name
func ListOfficials(db *gorm.DB) ([]models.Official, error) {
	var officials []models.Official
	err := db.Order("name ASC").Find(&officials).Error
	return officials, err
}

// GetUserByEmail returns an active user by email
func GetUserByEmail(db *gorm.DB, email string) (*models.User, error) {
	var user models.User
	if err := db.First(&user, "email = ? AND is_active = ?", email, true).Error; err != nil {
		return nil, notFound(err, "user")
	}
	return &user, nil
}
