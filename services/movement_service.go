package services

import (
	"fmt"
	"time"

	"calificaciones_app_go/models"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// MovementCounts are the inventory counters of a movement row
type MovementCounts struct {
	InitialInventory  int `json:"initial_inventory" validate:"gte=0"`
	EffectiveIntake   int `json:"effective_intake" validate:"gte=0"`
	EffectiveWorkload int `json:"effective_workload" validate:"gte=0"`
	EffectiveOutput   int `json:"effective_output" validate:"gte=0"`
	Settlements       int `json:"settlements" validate:"gte=0"`
	FinalInventory    int `json:"final_inventory" validate:"gte=0"`
	Remaining         int `json:"remaining" validate:"gte=0"`
}

func (c MovementCounts) movement() models.Movement {
	return models.Movement{
		InitialInventory:  c.InitialInventory,
		EffectiveIntake:   c.EffectiveIntake,
		EffectiveWorkload: c.EffectiveWorkload,
		EffectiveOutput:   c.EffectiveOutput,
		Settlements:       c.Settlements,
		FinalInventory:    c.FinalInventory,
		Remaining:         c.Remaining,
	}
}

// MovementInput is one reported movement row
type MovementInput struct {
	OfficialID string         `json:"official_id" validate:"required"`
	Class      string         `json:"class" validate:"required,oneof=oral garantias escrito"`
	Category   string         `json:"category" validate:"required,max=200,ne=Consolidado"`
	From       string         `json:"from" validate:"required,datetime=2006-01-02"`
	To         string         `json:"to" validate:"required,datetime=2006-01-02"`
	Counts     MovementCounts `json:"counts"`
}

// MovementImport is a batch of movement rows for one office and period
type MovementImport struct {
	OfficeID string          `json:"office_id" validate:"required"`
	Period   int             `json:"period" validate:"required,gte=1990,lte=2100"`
	Records  []MovementInput `json:"records" validate:"required,min=1,dive"`
}

// MovementCorrection replaces the counters, and optionally the category, of a row
type MovementCorrection struct {
	Category string         `json:"category" validate:"omitempty,max=200,ne=Consolidado"`
	Counts   MovementCounts `json:"counts"`
}

// ListMovementRecords returns the raw rows of an office and period with their officials
func ListMovementRecords(db *gorm.DB, officeID string, period int) ([]models.MovementRecord, error) {
	var records []models.MovementRecord
	err := db.Preload("Official").
		Where("office_id = ? AND period = ? AND category <> ?", officeID, period, models.ConsolidatedCategory).
		Order("period_from ASC, class ASC, category ASC, created_at ASC").
		Find(&records).Error
	return records, err
}

// ImportMovementRecords stores a batch of rows and recomputes every
// non-approved score of the office and period
func ImportMovementRecords(db *gorm.DB, actor AuditContext, in MovementImport) (int, error) {
	if err := validateStruct(&in); err != nil {
		return 0, err
	}
	office, err := GetOffice(db, in.OfficeID)
	if err != nil {
		return 0, err
	}

	rows := make([]models.MovementRecord, 0, len(in.Records))
	officials := make(map[string]struct{})
	for i, r := range in.Records {
		from, to, err := parseMovementRange(r.From, r.To, in.Period)
		if err != nil {
			return 0, prefixValidation(err, fmt.Sprintf("records[%d].", i))
		}
		if _, ok := officials[r.OfficialID]; !ok {
			if _, err := GetOfficial(db, r.OfficialID); err != nil {
				return 0, err
			}
			officials[r.OfficialID] = struct{}{}
		}
		rows = append(rows, models.MovementRecord{
			Period:     in.Period,
			OfficeID:   office.ID,
			OfficialID: r.OfficialID,
			Class:      models.CaseClass(r.Class),
			Category:   r.Category,
			From:       from,
			To:         to,
			Movement:   r.Counts.movement(),
		})
	}

	guarded := make([]ScoreTarget, 0, len(officials))
	for id := range officials {
		guarded = append(guarded, ScoreTarget{OfficialID: id, OfficeID: office.ID, Period: in.Period})
	}
	existing, err := officeTargets(db, office.ID, in.Period)
	if err != nil {
		return 0, err
	}
	targets := mergeTargets(existing, guarded)

	err = mutateScores(db, guarded, targets, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Create(&rows).Error; err != nil {
			return fmt.Errorf("failed to import movement records: %w", err)
		}
		return RecordAuditEvent(tx, actor, AuditEvent{
			Action:       models.AuditActionCreate,
			ResourceType: "Office",
			ResourceID:   office.ID,
			ResourceName: office.Code,
			Description:  fmt.Sprintf("Imported %d movement records for period %d", len(rows), in.Period),
		})
	})
	if err != nil {
		return 0, err
	}
	return len(rows), nil
}

// CorrectMovementRecord applies a correction to one raw row. The owner's score
// must not be approved; every other non-approved score of the office and
// period is recomputed.
func CorrectMovementRecord(db *gorm.DB, actor AuditContext, id string, in MovementCorrection) (*models.MovementRecord, error) {
	if err := validateStruct(&in); err != nil {
		return nil, err
	}

	var record models.MovementRecord
	if err := db.First(&record, "id = ?", id).Error; err != nil {
		return nil, notFound(err, "movement record")
	}

	owner := ScoreTarget{OfficialID: record.OfficialID, OfficeID: record.OfficeID, Period: record.Period}
	existing, err := officeTargets(db, record.OfficeID, record.Period)
	if err != nil {
		return nil, err
	}
	targets := mergeTargets(existing, []ScoreTarget{owner})

	old := record
	record.Movement = in.Counts.movement()
	if in.Category != "" {
		record.Category = in.Category
	}

	err = mutateScores(db, []ScoreTarget{owner}, targets, func(tx *gorm.DB) error {
		if err := tx.Omit(clause.Associations).Save(&record).Error; err != nil {
			return fmt.Errorf("failed to correct movement record: %w", err)
		}
		return RecordAuditEvent(tx, actor, AuditEvent{
			Action:       models.AuditActionUpdate,
			ResourceType: "MovementRecord",
			ResourceID:   record.ID,
			ResourceName: record.Category,
			Description:  "Movement record corrected",
			OldValues:    old.Movement,
			NewValues:    record.Movement,
		})
	})
	if err != nil {
		return nil, err
	}
	return &record, nil
}

func parseMovementRange(fromStr, toStr string, period int) (time.Time, time.Time, error) {
	from, err := ParseDate(fromStr)
	if err != nil {
		return time.Time{}, time.Time{}, NewValidationError("from", err.Error())
	}
	to, err := ParseDate(toStr)
	if err != nil {
		return time.Time{}, time.Time{}, NewValidationError("to", err.Error())
	}
	if to.Before(from) {
		return time.Time{}, time.Time{}, NewValidationError("to", "must not be before from")
	}
	if from.Year() != period || to.Year() != period {
		return time.Time{}, time.Time{}, NewValidationError("from", fmt.Sprintf("sub-period must fall within %d", period))
	}
	return from, to, nil
}

func prefixValidation(err error, prefix string) error {
	ve, ok := err.(*ValidationError)
	if !ok {
		return err
	}
	fields := make(map[string]string, len(ve.Fields))
	for k, v := range ve.Fields {
		fields[prefix+k] = v
	}
	return &ValidationError{Fields: fields}
}

func mergeTargets(a, b []ScoreTarget) []ScoreTarget {
	seen := make(map[string]struct{}, len(a)+len(b))
	out := make([]ScoreTarget, 0, len(a)+len(b))
	for _, t := range append(append([]ScoreTarget{}, a...), b...) {
		if _, ok := seen[t.key()]; ok {
			continue
		}
		seen[t.key()] = struct{}{}
		out = append(out, t)
	}
	return out
}
