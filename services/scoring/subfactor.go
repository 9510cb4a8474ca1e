package scoring

import (
	"math"

	"calificaciones_app_go/models"
)

// initialInventory sums the opening inventory of the earliest sub-period
func initialInventory(rs []models.MovementRecord) int {
	if len(rs) == 0 {
		return 0
	}
	first := rs[0].From
	for _, r := range rs[1:] {
		if r.From.Before(first) {
			first = r.From
		}
	}
	total := 0
	for _, r := range rs {
		if r.From.Equal(first) {
			total += r.InitialInventory
		}
	}
	return total
}

func effectiveIntake(rs []models.MovementRecord) int {
	total := 0
	for _, r := range rs {
		total += r.EffectiveIntake
	}
	return total
}

func totalOutput(rs []models.MovementRecord) int {
	total := 0
	for _, r := range rs {
		total += r.EffectiveOutput
	}
	return total
}

// baseWorkload is the opening inventory plus all intake
func baseWorkload(rs []models.MovementRecord) int {
	return initialInventory(rs) + effectiveIntake(rs)
}

// officialOutput counts output and settlements of the official
func officialOutput(rs []models.MovementRecord, officialID string) int {
	total := 0
	for _, r := range rs {
		if r.OfficialID == officialID {
			total += r.EffectiveOutput + r.Settlements
		}
	}
	return total
}

func othersOutput(rs []models.MovementRecord, officialID string) int {
	total := 0
	for _, r := range rs {
		if r.OfficialID != officialID {
			total += r.EffectiveOutput
		}
	}
	return total
}

// lateIntake sums the intake of non-contempt rows whose sub-period starts
// inside the late reporting window
func (p Policy) lateIntake(rs []models.MovementRecord) int {
	total := 0
	for _, r := range rs {
		if p.isContempt(r.Category) {
			continue
		}
		if r.From.Month() >= p.LateIntakeFromMonth {
			total += r.EffectiveIntake
		}
	}
	return total
}

// contemptFinalInventory sums the official's closing inventory in contempt
// categories at the latest sub-period
func (p Policy) contemptFinalInventory(rs []models.MovementRecord, officialID string) int {
	if len(rs) == 0 {
		return 0
	}
	last := rs[0].From
	for _, r := range rs[1:] {
		if r.From.After(last) {
			last = r.From
		}
	}
	total := 0
	for _, r := range rs {
		if r.OfficialID == officialID && p.isContempt(r.Category) && r.From.Equal(last) {
			total += r.FinalInventory
		}
	}
	return total
}

// oralOfficeBase is the office base workload less late intake and the
// official's open contempt inventory
func (p Policy) oralOfficeBase(rs []models.MovementRecord, officialID string) int {
	return baseWorkload(rs) - p.lateIntake(rs) - p.contemptFinalInventory(rs, officialID)
}

// Days are the business-day figures shared by the three subfactors
type Days struct {
	Office int // business days of the office in the period
	Worked int // business days worked by the official
}

// OralSubfactor scores the oral set, capped at OralWeight
func (p Policy) OralSubfactor(rs []models.MovementRecord, officialID string, days Days) models.SubfactorResult {
	return subfactor(models.ClassOral, rs, officialID, p.oralOfficeBase(rs, officialID), days, p.OralWeight)
}

// StandardSubfactor scores the guarantees or written set, capped at StandardWeight
func (p Policy) StandardSubfactor(class models.CaseClass, rs []models.MovementRecord, officialID string, days Days) models.SubfactorResult {
	return subfactor(class, rs, officialID, baseWorkload(rs), days, p.StandardWeight)
}

func subfactor(class models.CaseClass, rs []models.MovementRecord, officialID string, officeBase int, days Days, weight float64) models.SubfactorResult {
	output := officialOutput(rs, officialID)
	officialBase := officeBase - othersOutput(rs, officialID)
	quota := ProportionalQuota(officeBase, days)

	return models.SubfactorResult{
		Class:                class,
		InitialInventory:     initialInventory(rs),
		OfficeBaseWorkload:   officeBase,
		OfficialBaseWorkload: officialBase,
		OfficialOutput:       output,
		ProportionalQuota:    quota,
		Score:                SubfactorScore(output, officialBase, quota, weight),
	}
}

// ProportionalQuota is the share of the office base expected from the
// official given the days worked. An office without business days yields 0.
func ProportionalQuota(officeBase int, days Days) float64 {
	if days.Office == 0 {
		return 0
	}
	return float64(officeBase) * float64(days.Worked) / float64(days.Office)
}

// SubfactorScore is min(output, officialBase) / quota × weight clamped to
// [0, weight]. A zero quota scores 0.
func SubfactorScore(output, officialBase int, quota, weight float64) float64 {
	if quota == 0 {
		return 0
	}
	score := float64(min(output, officialBase)) / quota * weight
	return math.Max(0, math.Min(score, weight))
}
