package services

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"calificaciones_app_go/logging"
	"calificaciones_app_go/metrics"
	"calificaciones_app_go/models"
	"calificaciones_app_go/services/scoring"
	"calificaciones_app_go/services/workflow"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	engineMu sync.RWMutex
	engine   = scoring.NewEngine(scoring.DefaultPolicy())
)

// SetScoringPolicy replaces the policy used by every later recomputation
func SetScoringPolicy(policy scoring.Policy) {
	engineMu.Lock()
	defer engineMu.Unlock()
	engine = scoring.NewEngine(policy)
}

func scoringEngine() *scoring.Engine {
	engineMu.RLock()
	defer engineMu.RUnlock()
	return engine
}

// ScoreTarget identifies one office score to compute
type ScoreTarget struct {
	OfficialID string
	OfficeID   string
	Period     int
}

func (t ScoreTarget) key() string {
	return scoreKey(t.OfficialID, t.OfficeID, t.Period)
}

// RecomputeOfficialScore re-derives the office score of an official and the
// weighted score of the period from current inputs, creating the period score
// and hearing record when missing. An approved period score is left untouched.
// Returns the period score ID.
func RecomputeOfficialScore(db *gorm.DB, officialID, officeID string, period int) (string, error) {
	target := ScoreTarget{OfficialID: officialID, OfficeID: officeID, Period: period}
	defer scoreLocks.Lock(target.key())()

	var periodScoreID string
	err := db.Transaction(func(tx *gorm.DB) error {
		id, err := recompute(tx, target)
		periodScoreID = id
		return err
	})
	if err != nil {
		return "", err
	}
	return periodScoreID, nil
}

// recompute runs inside a transaction; the caller holds the target lock
func recompute(tx *gorm.DB, target ScoreTarget) (periodScoreID string, err error) {
	start := time.Now()
	skipped := false
	defer func() {
		if skipped {
			metrics.Recomputations.WithLabelValues("skipped_locked").Inc()
			return
		}
		metrics.ObserveRecompute(time.Since(start), err)
	}()

	if target.Period < 1 {
		return "", NewValidationError("period", "must be a year")
	}

	official, err := GetOfficial(tx, target.OfficialID)
	if err != nil {
		return "", err
	}
	office, err := GetOffice(tx, target.OfficeID)
	if err != nil {
		return "", err
	}

	periodScore, err := findOrCreatePeriodScore(tx, official.ID, target.Period)
	if err != nil {
		return "", err
	}
	if !workflow.AllowsMutation(periodScore.State) {
		skipped = true
		return periodScore.ID, nil
	}

	hearing, err := findOrCreateHearingRecord(tx, official.ID, office.ID, target.Period)
	if err != nil {
		return "", err
	}

	records, err := officeMovementRecords(tx, office.ID, target.Period)
	if err != nil {
		return "", err
	}
	events, err := periodPersonnelEvents(tx, official.ID, office.ID, target.Period)
	if err != nil {
		return "", err
	}

	result, err := scoringEngine().Compute(scoring.Input{
		OfficialID: official.ID,
		Office:     *office,
		Period:     target.Period,
		Records:    records,
		Events:     events,
		Hearing:    *hearing,
	})
	if err != nil {
		return "", fmt.Errorf("office %s: %w", office.Code, err)
	}

	if err := replaceOfficeScore(tx, periodScore.ID, &result.Score); err != nil {
		return "", err
	}
	if err := refreshWeightedScore(tx, periodScore.ID); err != nil {
		return "", err
	}

	logging.L().Debugw("office score recomputed",
		"official_id", official.ID,
		"office", office.Code,
		"period", target.Period,
		"efficiency", result.Score.EfficiencyScore,
		"constitutional_placement", result.Placement.String(),
	)
	return periodScore.ID, nil
}

func findOrCreatePeriodScore(tx *gorm.DB, officialID string, period int) (*models.PeriodScore, error) {
	var ps models.PeriodScore
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("official_id = ? AND period = ?", officialID, period).
		First(&ps).Error
	if err == nil {
		return &ps, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	ps = models.PeriodScore{OfficialID: officialID, Period: period, State: models.StateDraft}
	if err := tx.Create(&ps).Error; err != nil {
		return nil, fmt.Errorf("failed to create period score: %w", err)
	}
	return &ps, nil
}

func findOrCreateHearingRecord(tx *gorm.DB, officialID, officeID string, period int) (*models.HearingRecord, error) {
	var h models.HearingRecord
	err := tx.Where("official_id = ? AND office_id = ? AND period = ?", officialID, officeID, period).First(&h).Error
	if err == nil {
		return &h, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	h = models.HearingRecord{OfficialID: officialID, OfficeID: officeID, Period: period}
	if err := tx.Create(&h).Error; err != nil {
		return nil, fmt.Errorf("failed to create hearing record: %w", err)
	}
	return &h, nil
}

func officeMovementRecords(tx *gorm.DB, officeID string, period int) ([]models.MovementRecord, error) {
	var records []models.MovementRecord
	err := tx.Where("office_id = ? AND period = ? AND category <> ?", officeID, period, models.ConsolidatedCategory).
		Order("period_from ASC, created_at ASC, id ASC").
		Find(&records).Error
	return records, err
}

// periodPersonnelEvents loads the official's events at the office that overlap the period
func periodPersonnelEvents(tx *gorm.DB, officialID, officeID string, period int) ([]models.PersonnelEvent, error) {
	yearStart, yearEnd := periodBounds(period)
	var events []models.PersonnelEvent
	err := tx.Where("official_id = ? AND office_id = ? AND event_from <= ? AND event_to >= ?",
		officialID, officeID, yearEnd, yearStart).
		Order("event_from ASC").
		Find(&events).Error
	return events, err
}

func periodBounds(period int) (time.Time, time.Time) {
	return time.Date(period, time.January, 1, 0, 0, 0, 0, time.UTC),
		time.Date(period, time.December, 31, 0, 0, 0, 0, time.UTC)
}

// replaceOfficeScore upserts the office score and swaps its children
func replaceOfficeScore(tx *gorm.DB, periodScoreID string, score *models.OfficeScore) error {
	consolidated := score.ConsolidatedRecords
	subfactors := score.Subfactors
	score.ConsolidatedRecords = nil
	score.Subfactors = nil
	score.PeriodScoreID = periodScoreID

	var existing models.OfficeScore
	err := tx.Where("period_score_id = ? AND office_id = ?", periodScoreID, score.OfficeID).First(&existing).Error
	switch {
	case err == nil:
		score.ID = existing.ID
		score.CreatedAt = existing.CreatedAt
		if err := tx.Where("office_score_id = ?", existing.ID).Delete(&models.ConsolidatedRecord{}).Error; err != nil {
			return fmt.Errorf("failed to delete consolidated records: %w", err)
		}
		if err := tx.Where("office_score_id = ?", existing.ID).Delete(&models.SubfactorResult{}).Error; err != nil {
			return fmt.Errorf("failed to delete subfactor results: %w", err)
		}
		if err := tx.Omit(clause.Associations).Save(score).Error; err != nil {
			return fmt.Errorf("failed to update office score: %w", err)
		}
	case errors.Is(err, gorm.ErrRecordNotFound):
		if err := tx.Omit(clause.Associations).Create(score).Error; err != nil {
			return fmt.Errorf("failed to create office score: %w", err)
		}
	default:
		return err
	}

	for i := range consolidated {
		consolidated[i].ID = ""
		consolidated[i].OfficeScoreID = score.ID
	}
	for i := range subfactors {
		subfactors[i].ID = ""
		subfactors[i].OfficeScoreID = score.ID
	}
	if len(consolidated) > 0 {
		if err := tx.Create(&consolidated).Error; err != nil {
			return fmt.Errorf("failed to insert consolidated records: %w", err)
		}
	}
	if len(subfactors) > 0 {
		if err := tx.Create(&subfactors).Error; err != nil {
			return fmt.Errorf("failed to insert subfactor results: %w", err)
		}
	}

	score.ConsolidatedRecords = consolidated
	score.Subfactors = subfactors
	return nil
}

func refreshWeightedScore(tx *gorm.DB, periodScoreID string) error {
	var scores []models.OfficeScore
	if err := tx.Where("period_score_id = ?", periodScoreID).Find(&scores).Error; err != nil {
		return err
	}
	weighted := scoring.WeightedScore(scores)
	return tx.Model(&models.PeriodScore{}).Where("id = ?", periodScoreID).Update("weighted_score", weighted).Error
}

// ensureMutable rejects changes to inputs of an approved period score
func ensureMutable(tx *gorm.DB, officialID string, period int) error {
	var ps models.PeriodScore
	err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
		Where("official_id = ? AND period = ?", officialID, period).
		First(&ps).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil
	}
	if err != nil {
		return err
	}
	if !workflow.AllowsMutation(ps.State) {
		return ErrPeriodLocked
	}
	return nil
}

// officeTargets lists every official with movement rows or an office score
// at the office for the period
func officeTargets(tx *gorm.DB, officeID string, period int) ([]ScoreTarget, error) {
	var officialIDs []string
	if err := tx.Model(&models.MovementRecord{}).
		Where("office_id = ? AND period = ?", officeID, period).
		Distinct().Pluck("official_id", &officialIDs).Error; err != nil {
		return nil, err
	}

	var scored []string
	if err := tx.Model(&models.OfficeScore{}).
		Joins("JOIN period_scores ON period_scores.id = office_scores.period_score_id").
		Where("office_scores.office_id = ? AND period_scores.period = ?", officeID, period).
		Pluck("period_scores.official_id", &scored).Error; err != nil {
		return nil, err
	}

	seen := make(map[string]struct{})
	var targets []ScoreTarget
	for _, id := range append(officialIDs, scored...) {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		targets = append(targets, ScoreTarget{OfficialID: id, OfficeID: officeID, Period: period})
	}
	return targets, nil
}

func targetKeys(targets []ScoreTarget) []string {
	keys := make([]string, len(targets))
	for i, t := range targets {
		keys[i] = t.key()
	}
	return keys
}

// RecomputeOpenScores recomputes every office score whose period score is
// not approved. Failures are logged and joined; the others still run.
func RecomputeOpenScores(db *gorm.DB) (int, error) {
	var targets []ScoreTarget
	err := db.Model(&models.OfficeScore{}).
		Select("period_scores.official_id AS official_id, office_scores.office_id AS office_id, period_scores.period AS period").
		Joins("JOIN period_scores ON period_scores.id = office_scores.period_score_id").
		Where("period_scores.state <> ?", models.StateApproved).
		Order("period_scores.period, office_scores.office_id").
		Scan(&targets).Error
	if err != nil {
		return 0, fmt.Errorf("failed to list open scores: %w", err)
	}

	var errs []error
	done := 0
	for _, t := range targets {
		if _, err := RecomputeOfficialScore(db, t.OfficialID, t.OfficeID, t.Period); err != nil {
			logging.L().Errorw("recompute failed", "official_id", t.OfficialID, "office_id", t.OfficeID, "period", t.Period, "error", err)
			errs = append(errs, fmt.Errorf("%s: %w", t.key(), err))
			continue
		}
		done++
	}
	return done, errors.Join(errs...)
}

// GetPeriodScore loads a period score with its office scores and observations
func GetPeriodScore(db *gorm.DB, id string) (*models.PeriodScore, error) {
	var ps models.PeriodScore
	err := db.Preload("Official").
		Preload("OfficeScores", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("OfficeScores.Office").
		Preload("OfficeScores.Subfactors").
		Preload("ReturnObservations", func(db *gorm.DB) *gorm.DB { return db.Order("created_at ASC") }).
		Preload("ReturnObservations.Author").
		First(&ps, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "period score")
	}
	return &ps, nil
}

// GetOfficeScore loads an office score with every child row
func GetOfficeScore(db *gorm.DB, id string) (*models.OfficeScore, error) {
	var s models.OfficeScore
	err := db.Preload("Office").
		Preload("PeriodScore").
		Preload("HearingRecord").
		Preload("Subfactors").
		Preload("ConsolidatedRecords", func(db *gorm.DB) *gorm.DB { return db.Order("class ASC, period_from ASC") }).
		First(&s, "id = ?", id).Error
	if err != nil {
		return nil, notFound(err, "office score")
	}
	return &s, nil
}
