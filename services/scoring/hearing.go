package scoring

import "calificaciones_app_go/models"

// HearingBonus rewards hearings held or postponed for reasons outside the
// official's control, scaled to weight. No scheduled hearings yields 0.
func HearingBonus(h models.HearingRecord, weight float64) float64 {
	if h.Scheduled == 0 {
		return 0
	}
	held := h.Attended + h.PostponedExternal + h.PostponedJustified
	return float64(held) / float64(h.Scheduled) * weight
}
