package scoring

import "calificaciones_app_go/models"

// WeightedScore combines the office scores of one official and period,
// weighting each by days worked. Without any worked days the plain mean is used.
func WeightedScore(scores []models.OfficeScore) float64 {
	switch len(scores) {
	case 0:
		return 0
	case 1:
		return scores[0].EfficiencyScore
	}

	totalDays := 0
	sum := 0.0
	for _, s := range scores {
		totalDays += s.DaysWorked
		sum += s.EfficiencyScore
	}
	if totalDays == 0 {
		return sum / float64(len(scores))
	}

	weighted := 0.0
	for _, s := range scores {
		weighted += s.EfficiencyScore * float64(s.DaysWorked)
	}
	return weighted / float64(totalDays)
}
