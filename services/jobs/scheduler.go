package jobs

import (
	"fmt"
	"time"

	"calificaciones_app_go/config"
	"calificaciones_app_go/logging"
	"calificaciones_app_go/metrics"
	"calificaciones_app_go/services"

	"github.com/robfig/cron/v3"
	"gorm.io/gorm"
)

const (
	JobRecomputeOpenScores = "recompute_open_scores"
	JobSessionCleanup      = "session_cleanup"
)

// NewScheduler registers the recomputation and session cleanup jobs in the
// configured timezone. The caller starts and stops the returned cron.
func NewScheduler(database *gorm.DB, cfg *config.Config) (*cron.Cron, error) {
	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("invalid TIMEZONE %q: %w", cfg.Timezone, err)
	}
	c := cron.New(cron.WithLocation(loc))

	if _, err := c.AddFunc(cfg.RecomputeCron, func() { RecomputeOpenScores(database) }); err != nil {
		return nil, fmt.Errorf("invalid RECOMPUTE_CRON %q: %w", cfg.RecomputeCron, err)
	}
	if _, err := c.AddFunc("@hourly", func() { CleanupSessions(database) }); err != nil {
		return nil, err
	}

	logging.L().Infow("scheduler configured", "recompute_cron", cfg.RecomputeCron, "timezone", cfg.Timezone)
	return c, nil
}

// RecomputeOpenScores refreshes every period score that is not approved
func RecomputeOpenScores(database *gorm.DB) {
	metrics.JobRuns.WithLabelValues(JobRecomputeOpenScores).Inc()
	start := time.Now()

	done, err := services.RecomputeOpenScores(database)
	if err != nil {
		metrics.JobErrors.WithLabelValues(JobRecomputeOpenScores).Inc()
		logging.L().Errorw("recompute job finished with errors", "recomputed", done, "error", err)
		return
	}
	logging.L().Infow("recompute job finished", "recomputed", done, "elapsed", time.Since(start))
}

// CleanupSessions removes expired sessions
func CleanupSessions(database *gorm.DB) {
	metrics.JobRuns.WithLabelValues(JobSessionCleanup).Inc()
	if _, err := services.CleanupExpiredSessions(database); err != nil {
		metrics.JobErrors.WithLabelValues(JobSessionCleanup).Inc()
		logging.L().Errorw("session cleanup failed", "error", err)
	}
}
