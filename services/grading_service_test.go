package services

import (
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"calificaciones_app_go/models"
	"calificaciones_app_go/services/scoring"
)

func TestImportCreatesScoresForEveryOfficial(t *testing.T) {
	f := newFixture(t)

	for _, official := range []*models.Official{f.a, f.b} {
		ps := f.periodScoreOf(t, official)
		assert.Equal(t, models.StateDraft, ps.State)

		score := f.officeScoreOf(t, official)
		assert.Equal(t, 230, score.OfficeBusinessDays)
		assert.Len(t, score.Subfactors, 3)
		require.NotNil(t, score.HearingRecordID)

		var hearing models.HearingRecord
		require.NoError(t, f.db.First(&hearing, "id = ?", *score.HearingRecordID).Error)
		assert.Equal(t, official.ID, hearing.OfficialID)
		assert.Zero(t, hearing.Scheduled)
	}

	// Raw rows are never mixed with consolidated ones
	var raw int64
	f.db.Model(&models.MovementRecord{}).Where("category = ?", models.ConsolidatedCategory).Count(&raw)
	assert.Zero(t, raw)
}

func TestRecomputeMatchesEngine(t *testing.T) {
	f := newFixture(t)

	_, err := UpdateHearingRecord(f.db, AuditContextFor(f.editor), f.officeScoreOf(t, f.a).ID, HearingInput{
		Scheduled: 20, Attended: 15, PostponedExternal: 2, PostponedJustified: 1, PostponedUnjustified: 2,
	})
	require.NoError(t, err)
	_, err = CreatePersonnelEvent(f.db, AuditContextFor(f.editor), f.officeScoreOf(t, f.a).ID, PersonnelEventInput{
		Type: "Licencia", From: "2024-03-04", To: "2024-03-15", Days: 10, DeductibleDays: 8,
	})
	require.NoError(t, err)

	score := f.officeScoreOf(t, f.a)
	assert.Equal(t, 10, score.DaysDeducted)
	assert.Equal(t, 222, score.DaysWorked)
	assert.Equal(t, 330, score.TotalWorkload)
	assert.Equal(t, 242, score.TotalOutput)
	assert.InDelta(t, 4.5, score.HearingBonus, 1e-9)
	assert.InDelta(t, 37.5550, score.EfficiencyScore, 1e-3)
	assert.Len(t, score.ConsolidatedRecords, 6)

	oral := score.Subfactor(models.ClassOral)
	require.NotNil(t, oral)
	assert.InDelta(t, 26.5785, oral.Score, 1e-3)

	ps := f.periodScoreOf(t, f.a)
	assert.InDelta(t, score.EfficiencyScore, ps.WeightedScore, 1e-9)
}

func TestRecomputeIsIdempotent(t *testing.T) {
	f := newFixture(t)
	before := f.officeScoreOf(t, f.a)

	id, err := RecomputeOfficialScore(f.db, f.a.ID, f.office.ID, 2024)
	require.NoError(t, err)
	assert.Equal(t, before.PeriodScoreID, id)

	after := f.officeScoreOf(t, f.a)
	assert.Equal(t, before.ID, after.ID)
	assert.Equal(t, before.EfficiencyScore, after.EfficiencyScore)
	assert.Equal(t, before.DaysWorked, after.DaysWorked)
	require.Len(t, after.Subfactors, len(before.Subfactors))
	for _, sf := range before.Subfactors {
		got := after.Subfactor(sf.Class)
		require.NotNil(t, got)
		assert.Equal(t, sf.Score, got.Score)
		assert.Equal(t, sf.ProportionalQuota, got.ProportionalQuota)
	}

	var consolidated, subfactors, hearings int64
	f.db.Model(&models.ConsolidatedRecord{}).Where("office_score_id = ?", after.ID).Count(&consolidated)
	f.db.Model(&models.SubfactorResult{}).Where("office_score_id = ?", after.ID).Count(&subfactors)
	f.db.Model(&models.HearingRecord{}).Where("official_id = ?", f.a.ID).Count(&hearings)
	assert.Equal(t, int64(len(before.ConsolidatedRecords)), consolidated)
	assert.Equal(t, int64(3), subfactors)
	assert.Equal(t, int64(1), hearings)
}

func TestRecomputeApprovedScoreIsNoop(t *testing.T) {
	f := newFixture(t)
	f.setState(t, f.a, models.StateApproved)
	before := f.officeScoreOf(t, f.a)

	// Inputs of B change the shared office data; A's approved score stays put
	_, err := CorrectMovementRecord(f.db, AuditContextFor(f.editor), bRecordID(t, f), MovementCorrection{
		Counts: MovementCounts{InitialInventory: 500, EffectiveIntake: 200, EffectiveOutput: 10},
	})
	require.NoError(t, err)

	id, err := RecomputeOfficialScore(f.db, f.a.ID, f.office.ID, 2024)
	require.NoError(t, err)
	assert.Equal(t, before.PeriodScoreID, id)

	after := f.officeScoreOf(t, f.a)
	assert.Equal(t, before.EfficiencyScore, after.EfficiencyScore)
	assert.Equal(t, before.UpdatedAt, after.UpdatedAt)
}

func TestRecomputeErrors(t *testing.T) {
	f := newFixture(t)

	_, err := RecomputeOfficialScore(f.db, "missing", f.office.ID, 2024)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = RecomputeOfficialScore(f.db, f.a.ID, "missing", 2024)
	assert.True(t, errors.Is(err, ErrNotFound))

	_, err = RecomputeOfficialScore(f.db, f.a.ID, f.office.ID, 0)
	assert.True(t, errors.Is(err, ErrValidation))

	bad := &models.Office{Code: "X1", Name: "Sin especialidad", Specialty: "Desconocida", Category: models.CategoryCircuit}
	require.NoError(t, f.db.Create(bad).Error)
	_, err = RecomputeOfficialScore(f.db, f.a.ID, bad.ID, 2024)
	assert.True(t, errors.Is(err, ErrInvalidCourtConfiguration))

	// Nothing half-written for the failed office
	var count int64
	f.db.Model(&models.OfficeScore{}).Where("office_id = ?", bad.ID).Count(&count)
	assert.Zero(t, count)
}

func TestRecomputeOpenScoresSkipsApproved(t *testing.T) {
	f := newFixture(t)
	f.setState(t, f.b, models.StateApproved)

	done, err := RecomputeOpenScores(f.db)
	require.NoError(t, err)
	assert.Equal(t, 1, done)
}

func TestWeightedScoreAcrossOffices(t *testing.T) {
	f := newFixture(t)

	second := &models.Office{Code: "050013103002", Name: "Juzgado 2 Civil del Circuito", Specialty: models.SpecialtyCivil, Category: models.CategoryCircuit}
	require.NoError(t, f.db.Create(second).Error)
	_, err := ImportMovementRecords(f.db, AuditContextFor(f.editor), MovementImport{
		OfficeID: second.ID,
		Period:   2024,
		Records: []MovementInput{{
			OfficialID: f.a.ID, Class: "oral", Category: "Procesos declarativos", From: "2024-07-01", To: "2024-12-31",
			Counts: MovementCounts{InitialInventory: 40, EffectiveIntake: 20, EffectiveOutput: 30},
		}},
	})
	require.NoError(t, err)

	ps, err := GetPeriodScore(f.db, f.periodScoreOf(t, f.a).ID)
	require.NoError(t, err)
	require.Len(t, ps.OfficeScores, 2)
	assert.InDelta(t, scoring.WeightedScore(ps.OfficeScores), ps.WeightedScore, 1e-9)
}

func bRecordID(t *testing.T, f *fixture) string {
	t.Helper()
	var r models.MovementRecord
	require.NoError(t, f.db.Where("official_id = ?", f.b.ID).First(&r).Error)
	return r.ID
}
