package services

import (
	"errors"
	"fmt"
	"sync"

	"calificaciones_app_go/config"
	"calificaciones_app_go/logging"
	"calificaciones_app_go/metrics"
	"calificaciones_app_go/models"
	"calificaciones_app_go/services/workflow"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

var (
	notifyMu  sync.RWMutex
	notifyCfg *config.Config
)

// ConfigureNotifications enables workflow emails. A nil config disables them.
func ConfigureNotifications(cfg *config.Config) {
	notifyMu.Lock()
	defer notifyMu.Unlock()
	notifyCfg = cfg
}

func notificationConfig() *config.Config {
	notifyMu.RLock()
	defer notifyMu.RUnlock()
	return notifyCfg
}

// SubmitForReview moves a draft or returned period score to review
func SubmitForReview(db *gorm.DB, actor *models.User, periodScoreID string) (*models.PeriodScore, error) {
	return transition(db, actor, periodScoreID, workflow.ActionSubmit, "")
}

// Approve locks a period score under review
func Approve(db *gorm.DB, actor *models.User, periodScoreID string) (*models.PeriodScore, error) {
	return transition(db, actor, periodScoreID, workflow.ActionApprove, "")
}

// Return sends a period score under review back to its editors with a note
func Return(db *gorm.DB, actor *models.User, periodScoreID, note string) (*models.PeriodScore, error) {
	return transition(db, actor, periodScoreID, workflow.ActionReturn, sanitizeNote(note))
}

var transitionAudit = map[workflow.Action]models.AuditAction{
	workflow.ActionSubmit:  models.AuditActionSubmit,
	workflow.ActionApprove: models.AuditActionApprove,
	workflow.ActionReturn:  models.AuditActionReturn,
}

func transition(db *gorm.DB, actor *models.User, periodScoreID string, action workflow.Action, note string) (ps *models.PeriodScore, err error) {
	defer func() { metrics.ObserveTransition(string(action), err) }()

	var wfActor workflow.Actor
	if actor != nil {
		wfActor = actor
	}

	var from models.ScoreState
	err = db.Transaction(func(tx *gorm.DB) error {
		var current models.PeriodScore
		if err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).First(&current, "id = ?", periodScoreID).Error; err != nil {
			return notFound(err, "period score")
		}
		from = current.State

		next, err := workflow.Next(current.State, action, wfActor, note)
		if err != nil {
			if errors.Is(err, workflow.ErrNoteRequired) {
				return NewValidationError("note", "is required")
			}
			return err
		}

		res := tx.Model(&models.PeriodScore{}).
			Where("id = ? AND state = ?", current.ID, current.State).
			Update("state", next)
		if res.Error != nil {
			return fmt.Errorf("failed to update period score state: %w", res.Error)
		}
		if res.RowsAffected == 0 {
			rule, _ := workflow.RuleFor(action)
			return &TransitionError{Action: action, Current: current.State, Required: rule.From}
		}

		if action == workflow.ActionReturn {
			obs := models.ReturnObservation{PeriodScoreID: current.ID, AuthorID: actor.ID, Text: note}
			if err := tx.Create(&obs).Error; err != nil {
				return fmt.Errorf("failed to create return observation: %w", err)
			}
		}

		name := ""
		var official models.Official
		if err := tx.Select("name").First(&official, "id = ?", current.OfficialID).Error; err == nil {
			name = fmt.Sprintf("%s %d", official.Name, current.Period)
		}
		return RecordAuditEvent(tx, AuditContextFor(actor), AuditEvent{
			Action:       transitionAudit[action],
			ResourceType: "PeriodScore",
			ResourceID:   current.ID,
			ResourceName: name,
			Description:  fmt.Sprintf("State changed from %s to %s", current.State, next),
			OldValues:    map[string]string{"state": string(current.State)},
			NewValues:    map[string]string{"state": string(next)},
		})
	})
	if err != nil {
		return nil, err
	}

	ps, err = GetPeriodScore(db, periodScoreID)
	if err != nil {
		return nil, err
	}
	logging.L().Infow("period score transition",
		"period_score_id", ps.ID,
		"action", action,
		"from", from,
		"to", ps.State,
		"actor_id", actor.ID,
	)
	notifyTransition(ps, actor, action, note)
	return ps, nil
}

func notifyTransition(ps *models.PeriodScore, actor *models.User, action workflow.Action, note string) {
	cfg := notificationConfig()
	if cfg == nil || ps.Official == nil || ps.Official.Email == "" {
		return
	}

	data := ScoreEmailData{
		OfficialName:  ps.Official.Name,
		ReviewerName:  actor.Name,
		Period:        ps.Period,
		Note:          note,
		WeightedScore: ps.WeightedScore,
		Link:          PeriodScoreLink(cfg.AppURL, ps.ID),
	}
	switch action {
	case workflow.ActionReturn:
		SendEmailAsync(cfg, BuildScoreReturnedEmail(ps.Official.Email, data))
	case workflow.ActionApprove:
		SendEmailAsync(cfg, BuildScoreApprovedEmail(ps.Official.Email, data))
	}
}
