package services

import (
	"calificaciones_app_go/models"

	"gorm.io/gorm"
)

// scoreContext identifies the official, office and period behind an office score
type scoreContext struct {
	OfficeScoreID string
	PeriodScoreID string
	OfficialID    string
	OfficeID      string
	Period        int
	State         models.ScoreState
}

func (s *scoreContext) target() ScoreTarget {
	return ScoreTarget{OfficialID: s.OfficialID, OfficeID: s.OfficeID, Period: s.Period}
}

func loadScoreContext(db *gorm.DB, officeScoreID string) (*scoreContext, error) {
	var score models.OfficeScore
	if err := db.Preload("PeriodScore").First(&score, "id = ?", officeScoreID).Error; err != nil {
		return nil, notFound(err, "office score")
	}
	if score.PeriodScore == nil {
		return nil, notFound(gorm.ErrRecordNotFound, "period score")
	}
	return &scoreContext{
		OfficeScoreID: score.ID,
		PeriodScoreID: score.PeriodScoreID,
		OfficialID:    score.PeriodScore.OfficialID,
		OfficeID:      score.OfficeID,
		Period:        score.PeriodScore.Period,
		State:         score.PeriodScore.State,
	}, nil
}

// mutateScores applies mutate and recomputes targets in one transaction while
// holding every target lock. Guarded targets must not be approved.
func mutateScores(db *gorm.DB, guarded, targets []ScoreTarget, mutate func(tx *gorm.DB) error) error {
	defer scoreLocks.LockAll(targetKeys(append(append([]ScoreTarget{}, guarded...), targets...)))()

	return db.Transaction(func(tx *gorm.DB) error {
		for _, t := range guarded {
			if err := ensureMutable(tx, t.OfficialID, t.Period); err != nil {
				return err
			}
		}
		if err := mutate(tx); err != nil {
			return err
		}
		for _, t := range targets {
			if _, err := recompute(tx, t); err != nil {
				return err
			}
		}
		return nil
	})
}
