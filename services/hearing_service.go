package services

import (
	"fmt"

	"calificaciones_app_go/models"

	"gorm.io/gorm"
)

// HearingInput holds the hearing counts of an official at an office for a period
type HearingInput struct {
	Scheduled            int `json:"scheduled" validate:"gte=0"`
	Attended             int `json:"attended" validate:"gte=0"`
	PostponedExternal    int `json:"postponed_external" validate:"gte=0"`
	PostponedJustified   int `json:"postponed_justified" validate:"gte=0"`
	PostponedUnjustified int `json:"postponed_unjustified" validate:"gte=0"`
}

func (in *HearingInput) validate() error {
	if err := validateStruct(in); err != nil {
		return err
	}
	held := in.Attended + in.PostponedExternal + in.PostponedJustified + in.PostponedUnjustified
	if in.Scheduled != held {
		return NewValidationError("scheduled", "must equal attended plus every postponed hearing")
	}
	return nil
}

// GetHearingRecord returns the hearing record of an office score, creating it
// with zero counts when missing
func GetHearingRecord(db *gorm.DB, officeScoreID string) (*models.HearingRecord, error) {
	sc, err := loadScoreContext(db, officeScoreID)
	if err != nil {
		return nil, err
	}
	return findOrCreateHearingRecord(db, sc.OfficialID, sc.OfficeID, sc.Period)
}

// UpdateHearingRecord upserts the hearing counts and recomputes the score
func UpdateHearingRecord(db *gorm.DB, actor AuditContext, officeScoreID string, in HearingInput) (*models.HearingRecord, error) {
	if err := in.validate(); err != nil {
		return nil, err
	}
	sc, err := loadScoreContext(db, officeScoreID)
	if err != nil {
		return nil, err
	}

	var record *models.HearingRecord
	targets := []ScoreTarget{sc.target()}
	err = mutateScores(db, targets, targets, func(tx *gorm.DB) error {
		h, err := findOrCreateHearingRecord(tx, sc.OfficialID, sc.OfficeID, sc.Period)
		if err != nil {
			return err
		}
		old := *h

		h.Scheduled = in.Scheduled
		h.Attended = in.Attended
		h.PostponedExternal = in.PostponedExternal
		h.PostponedJustified = in.PostponedJustified
		h.PostponedUnjustified = in.PostponedUnjustified
		if err := tx.Save(h).Error; err != nil {
			return fmt.Errorf("failed to update hearing record: %w", err)
		}
		record = h

		return RecordAuditEvent(tx, actor, AuditEvent{
			Action:       models.AuditActionUpdate,
			ResourceType: "HearingRecord",
			ResourceID:   h.ID,
			Description:  fmt.Sprintf("Hearing counts for period %d", sc.Period),
			OldValues:    old,
			NewValues:    h,
		})
	})
	if err != nil {
		return nil, err
	}
	return record, nil
}
