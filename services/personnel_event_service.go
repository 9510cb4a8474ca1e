package services

import (
	"fmt"
	"time"

	"calificaciones_app_go/models"

	"gorm.io/gorm"
)

// PersonnelEventInput is the payload to create or update a personnel event
type PersonnelEventInput struct {
	Type           string `json:"type" validate:"required,max=80"`
	From           string `json:"from" validate:"required,datetime=2006-01-02"`
	To             string `json:"to" validate:"required,datetime=2006-01-02"`
	Days           int    `json:"days" validate:"gte=0"`
	DeductibleDays int    `json:"deductible_days" validate:"gte=0,ltefield=Days"`
	Notes          string `json:"notes" validate:"max=2000"`
}

func (in *PersonnelEventInput) parse() (time.Time, time.Time, error) {
	if err := validateStruct(in); err != nil {
		return time.Time{}, time.Time{}, err
	}
	from, err := ParseDate(in.From)
	if err != nil {
		return time.Time{}, time.Time{}, NewValidationError("from", err.Error())
	}
	to, err := ParseDate(in.To)
	if err != nil {
		return time.Time{}, time.Time{}, NewValidationError("to", err.Error())
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, NewValidationError("to", "must not be before from")
	}
	return from, to, nil
}

func (in *PersonnelEventInput) apply(ev *models.PersonnelEvent, from, to time.Time) {
	ev.Type = in.Type
	ev.From = from
	ev.To = to
	ev.Days = in.Days
	ev.DeductibleDays = in.DeductibleDays
	ev.Notes = sanitizeNote(in.Notes)
}

// ListPersonnelEvents returns the events of the office score's official and
// office that overlap its period
func ListPersonnelEvents(db *gorm.DB, officeScoreID string) ([]models.PersonnelEvent, error) {
	sc, err := loadScoreContext(db, officeScoreID)
	if err != nil {
		return nil, err
	}
	return periodPersonnelEvents(db, sc.OfficialID, sc.OfficeID, sc.Period)
}

// GetPersonnelEvent returns an event by ID
func GetPersonnelEvent(db *gorm.DB, id string) (*models.PersonnelEvent, error) {
	var ev models.PersonnelEvent
	if err := db.First(&ev, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "personnel event")
	}
	return &ev, nil
}

// CreatePersonnelEvent records an event for the office score's official and
// office, then recomputes the affected scores
func CreatePersonnelEvent(db *gorm.DB, actor AuditContext, officeScoreID string, in PersonnelEventInput) (*models.PersonnelEvent, error) {
	sc, err := loadScoreContext(db, officeScoreID)
	if err != nil {
		return nil, err
	}
	from, to, err := in.parse()
	if err != nil {
		return nil, err
	}
	yearStart, yearEnd := periodBounds(sc.Period)
	if !dateRangesOverlap(from, to, yearStart, yearEnd) {
		return nil, NewValidationError("from", fmt.Sprintf("event must overlap period %d", sc.Period))
	}

	targets, err := eventTargets(db, sc.OfficialID, sc.OfficeID, sc.Period, from, to)
	if err != nil {
		return nil, err
	}

	ev := &models.PersonnelEvent{OfficialID: sc.OfficialID, OfficeID: sc.OfficeID}
	in.apply(ev, from, to)

	err = mutateScores(db, targets, targets, func(tx *gorm.DB) error {
		if err := tx.Create(ev).Error; err != nil {
			return fmt.Errorf("failed to create personnel event: %w", err)
		}
		return RecordAuditEvent(tx, actor, AuditEvent{
			Action:       models.AuditActionCreate,
			ResourceType: "PersonnelEvent",
			ResourceID:   ev.ID,
			ResourceName: ev.Type,
			Description:  fmt.Sprintf("Personnel event %s from %s to %s", ev.Type, in.From, in.To),
			NewValues:    ev,
		})
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// UpdatePersonnelEvent replaces the fields of an event and recomputes the
// scores of the periods touched before and after the change
func UpdatePersonnelEvent(db *gorm.DB, actor AuditContext, id string, in PersonnelEventInput) (*models.PersonnelEvent, error) {
	ev, err := GetPersonnelEvent(db, id)
	if err != nil {
		return nil, err
	}
	from, to, err := in.parse()
	if err != nil {
		return nil, err
	}

	before, err := eventTargets(db, ev.OfficialID, ev.OfficeID, 0, ev.From, ev.To)
	if err != nil {
		return nil, err
	}
	after, err := eventTargets(db, ev.OfficialID, ev.OfficeID, 0, from, to)
	if err != nil {
		return nil, err
	}
	targets := append(before, after...)

	old := *ev
	in.apply(ev, from, to)

	err = mutateScores(db, targets, targets, func(tx *gorm.DB) error {
		if err := tx.Save(ev).Error; err != nil {
			return fmt.Errorf("failed to update personnel event: %w", err)
		}
		return RecordAuditEvent(tx, actor, AuditEvent{
			Action:       models.AuditActionUpdate,
			ResourceType: "PersonnelEvent",
			ResourceID:   ev.ID,
			ResourceName: ev.Type,
			Description:  "Personnel event updated",
			OldValues:    old,
			NewValues:    ev,
		})
	})
	if err != nil {
		return nil, err
	}
	return ev, nil
}

// DeletePersonnelEvent removes an event and recomputes the affected scores
func DeletePersonnelEvent(db *gorm.DB, actor AuditContext, id string) error {
	ev, err := GetPersonnelEvent(db, id)
	if err != nil {
		return err
	}
	targets, err := eventTargets(db, ev.OfficialID, ev.OfficeID, 0, ev.From, ev.To)
	if err != nil {
		return err
	}

	return mutateScores(db, targets, targets, func(tx *gorm.DB) error {
		if err := tx.Delete(ev).Error; err != nil {
			return fmt.Errorf("failed to delete personnel event: %w", err)
		}
		return RecordAuditEvent(tx, actor, AuditEvent{
			Action:       models.AuditActionDelete,
			ResourceType: "PersonnelEvent",
			ResourceID:   ev.ID,
			ResourceName: ev.Type,
			Description:  "Personnel event deleted",
			OldValues:    ev,
		})
	})
}

// eventTargets lists the scores an event in [from, to] feeds: every period it
// touches that already has an office score for the official and office, plus
// period when non-zero
func eventTargets(db *gorm.DB, officialID, officeID string, period int, from, to time.Time) ([]ScoreTarget, error) {
	var years []int
	for y := from.Year(); y <= to.Year(); y++ {
		years = append(years, y)
	}

	var scored []int
	err := db.Model(&models.OfficeScore{}).
		Joins("JOIN period_scores ON period_scores.id = office_scores.period_score_id").
		Where("period_scores.official_id = ? AND office_scores.office_id = ? AND period_scores.period IN ?", officialID, officeID, years).
		Pluck("period_scores.period", &scored).Error
	if err != nil {
		return nil, err
	}

	var targets []ScoreTarget
	if period != 0 {
		targets = append(targets, ScoreTarget{OfficialID: officialID, OfficeID: officeID, Period: period})
	}
	for _, p := range scored {
		if p != period {
			targets = append(targets, ScoreTarget{OfficialID: officialID, OfficeID: officeID, Period: p})
		}
	}
	return targets, nil
}
