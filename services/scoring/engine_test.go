package scoring

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calificaciones_app_go/models"
	"calificaciones_app_go/services/calendar"
)

const (
	officialA = "official-a"
	officialB = "official-b"
)

var (
	h1From = time.Date(2024, time.January, 1, 0, 0, 0, 0, time.UTC)
	h1To   = time.Date(2024, time.June, 30, 0, 0, 0, 0, time.UTC)
	h2From = time.Date(2024, time.July, 1, 0, 0, 0, 0, time.UTC)
	h2To   = time.Date(2024, time.December, 31, 0, 0, 0, 0, time.UTC)
)

func row(official string, class models.CaseClass, category string, from, to time.Time, m models.Movement) models.MovementRecord {
	return models.MovementRecord{
		Period:     2024,
		OfficeID:   "office-1",
		OfficialID: official,
		Class:      class,
		Category:   category,
		From:       from,
		To:         to,
		Movement:   m,
	}
}

func civilOffice() models.Office {
	return models.Office{
		ID:        "office-1",
		Code:      "050013103001",
		Name:      "Juzgado 1 Civil del Circuito",
		Specialty: models.SpecialtyCivil,
		Category:  models.CategoryCircuit,
	}
}

// baseRecords has oral, tutela and guarantees rows but no written workload
func baseRecords() []models.MovementRecord {
	return []models.MovementRecord{
		row(officialA, models.ClassOral, "Procesos declarativos", h1From, h1To,
			models.Movement{InitialInventory: 100, EffectiveIntake: 40, EffectiveWorkload: 140, EffectiveOutput: 50, Settlements: 5, FinalInventory: 90}),
		row(officialB, models.ClassOral, "Procesos declarativos", h1From, h1To,
			models.Movement{InitialInventory: 20, EffectiveIntake: 10, EffectiveOutput: 10}),
		row(officialA, models.ClassOral, "Procesos declarativos", h2From, h2To,
			models.Movement{InitialInventory: 90, EffectiveIntake: 30, EffectiveOutput: 60, FinalInventory: 60}),
		row(officialA, models.ClassOral, "Movimiento de Tutelas", h1From, h1To,
			models.Movement{InitialInventory: 10, EffectiveIntake: 20, EffectiveOutput: 25, FinalInventory: 5}),
		row(officialA, models.ClassOral, "Movimiento de Tutelas", h2From, h2To,
			models.Movement{InitialInventory: 5, EffectiveIntake: 10, EffectiveOutput: 12, FinalInventory: 3}),
		row(officialA, models.ClassGuarantees, "Control de garantías", h1From, h1To,
			models.Movement{EffectiveIntake: 50, EffectiveOutput: 45}),
		row(officialA, models.ClassGuarantees, "Control de garantías", h2From, h2To,
			models.Movement{InitialInventory: 5, EffectiveIntake: 40, EffectiveOutput: 40}),
	}
}

func baseInput() Input {
	return Input{
		OfficialID: officialA,
		Office:     civilOffice(),
		Period:     2024,
		Records:    baseRecords(),
		Events: []models.PersonnelEvent{
			{OfficialID: officialA, OfficeID: "office-1", Type: "Licencia", From: time.Date(2024, time.March, 4, 0, 0, 0, 0, time.UTC), To: time.Date(2024, time.March, 15, 0, 0, 0, 0, time.UTC), Days: 10, DeductibleDays: 8},
			{OfficialID: officialA, OfficeID: "office-1", Type: "Vacaciones", From: time.Date(2023, time.March, 1, 0, 0, 0, 0, time.UTC), To: time.Date(2023, time.March, 10, 0, 0, 0, 0, time.UTC), Days: 8, DeductibleDays: 8},
		},
		Hearing: models.HearingRecord{ID: "hearing-1", Scheduled: 20, Attended: 15, PostponedExternal: 2, PostponedJustified: 1, PostponedUnjustified: 2},
	}
}

func TestComputeWithoutWrittenWorkload(t *testing.T) {
	engine := NewEngine(DefaultPolicy())

	res, err := engine.Compute(baseInput())
	require.NoError(t, err)

	s := res.Score
	assert.Equal(t, PlacementWithOral, res.Placement)
	assert.False(t, s.HasWrittenWorkload)
	assert.Equal(t, 230, s.OfficeBusinessDays)
	assert.Equal(t, 10, s.DaysDeducted)
	assert.Equal(t, 222, s.DaysWorked)
	assert.Equal(t, 330, s.TotalWorkload)
	assert.Equal(t, 242, s.TotalOutput)
	assert.InDelta(t, 4.5, s.HearingBonus, 1e-9)
	require.NotNil(t, s.HearingRecordID)
	assert.Equal(t, "hearing-1", *s.HearingRecordID)

	require.Len(t, s.Subfactors, 3)
	oral := s.Subfactor(models.ClassOral)
	require.NotNil(t, oral)
	assert.Equal(t, 130, oral.InitialInventory)
	assert.Equal(t, 237, oral.OfficeBaseWorkload)
	assert.Equal(t, 227, oral.OfficialBaseWorkload)
	assert.Equal(t, 152, oral.OfficialOutput)
	assert.InDelta(t, 228.7565, oral.ProportionalQuota, 1e-3)
	assert.InDelta(t, 26.5785, oral.Score, 1e-3)

	guarantees := s.Subfactor(models.ClassGuarantees)
	require.NotNil(t, guarantees)
	assert.Equal(t, 90, guarantees.OfficeBaseWorkload)
	assert.InDelta(t, 44.0315, guarantees.Score, 1e-3)

	written := s.Subfactor(models.ClassWritten)
	require.NotNil(t, written)
	assert.Zero(t, written.ProportionalQuota)
	assert.Zero(t, written.Score)

	assert.InDelta(t, 26.5785+4.5, s.OralPlusHearing, 1e-3)
	assert.InDelta(t, 37.5550, s.EfficiencyScore, 1e-3)

	// ordinary H1/H2, tutela H1/H2, guarantees H1/H2
	require.Len(t, s.ConsolidatedRecords, 6)
	assert.Equal(t, models.ClassOral, s.ConsolidatedRecords[0].Class)
	assert.Equal(t, 113, s.ConsolidatedRecords[0].BusinessDays)
	assert.Equal(t, 120, s.ConsolidatedRecords[0].InitialInventory)
	assert.Equal(t, models.ClassConstitutional, s.ConsolidatedRecords[2].Class)
	for _, c := range s.ConsolidatedRecords {
		assert.Equal(t, models.ConsolidatedCategory, c.Category)
	}
}

func TestComputeWithWrittenWorkload(t *testing.T) {
	in := baseInput()
	in.Records = append(in.Records, row(officialA, models.ClassWritten, "Procesos escritos", h1From, h1To,
		models.Movement{InitialInventory: 20, EffectiveIntake: 10, EffectiveWorkload: 30, EffectiveOutput: 15}))

	res, err := NewEngine(DefaultPolicy()).Compute(in)
	require.NoError(t, err)

	s := res.Score
	assert.Equal(t, PlacementWithWritten, res.Placement)
	assert.True(t, s.HasWrittenWorkload)
	assert.Equal(t, 290, s.TotalWorkload)
	assert.Equal(t, 205, s.TotalOutput)

	oral := s.Subfactor(models.ClassOral)
	assert.Equal(t, 200, oral.OfficeBaseWorkload)
	assert.InDelta(t, 23.8288, oral.Score, 1e-3)

	written := s.Subfactor(models.ClassWritten)
	assert.Equal(t, 70, written.OfficeBaseWorkload)
	assert.Equal(t, 52, written.OfficialOutput)
	assert.InDelta(t, 34.6332, written.Score, 1e-3)

	assert.InDelta(t, 35.6645, s.EfficiencyScore, 1e-3)
	assert.Len(t, s.ConsolidatedRecords, 7)
}

func TestComputeWrittenRowsWithoutWorkload(t *testing.T) {
	in := baseInput()
	in.Records = append(in.Records, row(officialA, models.ClassWritten, "Procesos escritos", h1From, h1To,
		models.Movement{InitialInventory: 4}))

	res, err := NewEngine(DefaultPolicy()).Compute(in)
	require.NoError(t, err)

	assert.Equal(t, PlacementWithOral, res.Placement)
	assert.InDelta(t, (res.Score.OralPlusHearing+res.Score.Subfactor(models.ClassGuarantees).Score)/2, res.Score.EfficiencyScore, 1e-9)
}

func TestComputeIsDeterministic(t *testing.T) {
	engine := NewEngine(DefaultPolicy())

	first, err := engine.Compute(baseInput())
	require.NoError(t, err)
	second, err := engine.Compute(baseInput())
	require.NoError(t, err)

	assert.Equal(t, first.Score, second.Score)
}

func TestComputeInvalidOffice(t *testing.T) {
	in := baseInput()
	in.Office.Category = ""

	_, err := NewEngine(DefaultPolicy()).Compute(in)
	assert.ErrorIs(t, err, calendar.ErrInvalidCourtConfiguration)
}

func TestComputeOfficialWithoutRows(t *testing.T) {
	in := baseInput()
	in.OfficialID = "official-c"
	in.Events = nil

	res, err := NewEngine(DefaultPolicy()).Compute(in)
	require.NoError(t, err)

	assert.Zero(t, res.Score.DaysWorked)
	for _, sf := range res.Score.Subfactors {
		assert.Zero(t, sf.ProportionalQuota)
		assert.Zero(t, sf.Score)
	}
}
