package scoring

import (
	"sync"
	"time"

	"calificaciones_app_go/models"
	"calificaciones_app_go/services/calendar"
)

// Input is everything needed to score one official at one office for a period
type Input struct {
	OfficialID string
	Office     models.Office
	Period     int
	// Records are the raw movement rows of the office for the period, all officials
	Records []models.MovementRecord
	// Events are the official's personnel events at the office
	Events  []models.PersonnelEvent
	Hearing models.HearingRecord
}

// Result is a computed office score with its children, not yet persisted
type Result struct {
	Score     models.OfficeScore
	Placement ConstitutionalPlacement
}

// Engine computes office scores under a policy. Calendars are cached per
// variant; an Engine is safe for concurrent use.
type Engine struct {
	policy Policy

	mu        sync.Mutex
	calendars map[calendar.Variant]*calendar.Calendar
}

// NewEngine creates an engine for policy
func NewEngine(policy Policy) *Engine {
	return &Engine{
		policy:    policy,
		calendars: make(map[calendar.Variant]*calendar.Calendar),
	}
}

// Policy returns the engine policy
func (e *Engine) Policy() Policy {
	return e.policy
}

// Calendar returns the office calendar
func (e *Engine) Calendar(office models.Office) (*calendar.Calendar, error) {
	variant, err := calendar.VariantFor(office.Specialty, office.Category)
	if err != nil {
		return nil, err
	}

	e.mu.Lock()
	defer e.mu.Unlock()
	cal, ok := e.calendars[variant]
	if !ok {
		cal = calendar.ForVariant(e.policy.Calendar, variant)
		e.calendars[variant] = cal
	}
	return cal, nil
}

// Compute derives the office score. It is a pure function of its input.
func (e *Engine) Compute(in Input) (*Result, error) {
	cal, err := e.Calendar(in.Office)
	if err != nil {
		return nil, err
	}

	yearStart := time.Date(in.Period, time.January, 1, 0, 0, 0, 0, time.UTC)
	yearEnd := time.Date(in.Period, time.December, 31, 0, 0, 0, 0, time.UTC)
	officeDays := calendar.CountBusinessDays(cal, yearStart, yearEnd)

	part := e.policy.Partition(in.Records)

	ordinary := AggregateRecords(cal, part.Ordinary, "")
	tutela := AggregateRecords(cal, part.Tutela, models.ClassConstitutional)
	guarantees := AggregateRecords(cal, part.Guarantees, "")
	written := AggregateRecords(cal, part.Written, "")

	daysDeducted, deductible := 0, 0
	for _, ev := range in.Events {
		if !ev.Overlaps(yearStart, yearEnd) {
			continue
		}
		daysDeducted += ev.Days
		deductible += ev.DeductibleDays
	}

	// Attachment days come from the ordinary oral sub-periods and are the
	// denominator of all three subfactors.
	days := Days{
		Office: officeDays,
		Worked: attachedDays(ordinary, in.OfficialID) - deductible,
	}

	oralSet := part.OralSet()
	oral := e.policy.OralSubfactor(oralSet, in.OfficialID, days)
	guaranteesScore := e.policy.StandardSubfactor(models.ClassGuarantees, part.Guarantees, in.OfficialID, days)
	writtenScore := e.policy.StandardSubfactor(models.ClassWritten, part.WrittenSet(), in.OfficialID, days)

	bonus := HearingBonus(in.Hearing, e.policy.HearingWeight)
	oralPlusHearing := oral.Score + bonus
	hasWritten := part.HasWrittenWorkload()

	consolidated := make([]models.ConsolidatedRecord, 0, len(ordinary)+len(tutela)+len(guarantees)+len(written))
	for _, set := range [][]Aggregate{ordinary, tutela, guarantees, written} {
		consolidated = append(consolidated, consolidatedRows(set)...)
	}

	score := models.OfficeScore{
		OfficeID:            in.Office.ID,
		TotalWorkload:       baseWorkload(oralSet) + baseWorkload(part.Guarantees),
		TotalOutput:         totalOutput(oralSet) + totalOutput(part.Guarantees),
		OfficeBusinessDays:  officeDays,
		DaysDeducted:        daysDeducted,
		DaysWorked:          days.Worked,
		HearingBonus:        bonus,
		OralPlusHearing:     oralPlusHearing,
		EfficiencyScore:     Efficiency(oralPlusHearing, guaranteesScore.Score, writtenScore.Score, hasWritten),
		HasWrittenWorkload:  hasWritten,
		ConsolidatedRecords: consolidated,
		Subfactors:          []models.SubfactorResult{oral, guaranteesScore, writtenScore},
	}
	if in.Hearing.ID != "" {
		id := in.Hearing.ID
		score.HearingRecordID = &id
	}

	return &Result{Score: score, Placement: part.Placement}, nil
}
