package services

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	database "calificaciones_app_go/db"
	"calificaciones_app_go/models"
)

// newTestDB opens a private in-memory database with every model migrated
func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	db, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(database.AllModels()...))
	return db
}

func seedOffice(t *testing.T, db *gorm.DB) *models.Office {
	t.Helper()
	office := &models.Office{
		Code:      "050013103001",
		Name:      "Juzgado 1 Civil del Circuito",
		Specialty: models.SpecialtyCivil,
		Category:  models.CategoryCircuit,
		IsActive:  true,
	}
	require.NoError(t, db.Create(office).Error)
	return office
}

func seedOfficial(t *testing.T, db *gorm.DB, name, document string) *models.Official {
	t.Helper()
	official := &models.Official{Name: name, Document: document, Email: document + "@rama.test", IsActive: true}
	require.NoError(t, db.Create(official).Error)
	return official
}

func seedUser(t *testing.T, db *gorm.DB, email, capabilities string) *models.User {
	t.Helper()
	user := &models.User{Name: email, Email: email, Password: "x", Capabilities: capabilities, IsActive: true}
	require.NoError(t, db.Create(user).Error)
	return user
}

func counts(m models.Movement) MovementCounts {
	return MovementCounts{
		InitialInventory:  m.InitialInventory,
		EffectiveIntake:   m.EffectiveIntake,
		EffectiveWorkload: m.EffectiveWorkload,
		EffectiveOutput:   m.EffectiveOutput,
		Settlements:       m.Settlements,
		FinalInventory:    m.FinalInventory,
		Remaining:         m.Remaining,
	}
}

// fixture is one office with two officials and a year of oral, tutela and
// guarantees movement
type fixture struct {
	db       *gorm.DB
	office   *models.Office
	a, b     *models.Official
	editor   *models.User
	reviewer *models.User
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	db := newTestDB(t)
	f := &fixture{
		db:       db,
		office:   seedOffice(t, db),
		a:        seedOfficial(t, db, "Ana Pérez", "1001"),
		b:        seedOfficial(t, db, "Bruno Gil", "1002"),
		editor:   seedUser(t, db, "editor@rama.test", models.CapabilityEditor),
		reviewer: seedUser(t, db, "reviewer@rama.test", models.CapabilityReviewer),
	}

	n, err := ImportMovementRecords(db, AuditContextFor(f.editor), f.movementImport())
	require.NoError(t, err)
	require.Equal(t, 7, n)
	return f
}

func (f *fixture) movementImport() MovementImport {
	h1 := [2]string{"2024-01-01", "2024-06-30"}
	h2 := [2]string{"2024-07-01", "2024-12-31"}
	in := func(official *models.Official, class models.CaseClass, category string, span [2]string, m models.Movement) MovementInput {
		return MovementInput{OfficialID: official.ID, Class: string(class), Category: category, From: span[0], To: span[1], Counts: counts(m)}
	}

	return MovementImport{
		OfficeID: f.office.ID,
		Period:   2024,
		Records: []MovementInput{
			in(f.a, models.ClassOral, "Procesos declarativos", h1,
				models.Movement{InitialInventory: 100, EffectiveIntake: 40, EffectiveWorkload: 140, EffectiveOutput: 50, Settlements: 5, FinalInventory: 90}),
			in(f.b, models.ClassOral, "Procesos declarativos", h1,
				models.Movement{InitialInventory: 20, EffectiveIntake: 10, EffectiveOutput: 10}),
			in(f.a, models.ClassOral, "Procesos declarativos", h2,
				models.Movement{InitialInventory: 90, EffectiveIntake: 30, EffectiveOutput: 60, FinalInventory: 60}),
			in(f.a, models.ClassOral, "Movimiento de Tutelas", h1,
				models.Movement{InitialInventory: 10, EffectiveIntake: 20, EffectiveOutput: 25, FinalInventory: 5}),
			in(f.a, models.ClassOral, "Movimiento de Tutelas", h2,
				models.Movement{InitialInventory: 5, EffectiveIntake: 10, EffectiveOutput: 12, FinalInventory: 3}),
			in(f.a, models.ClassGuarantees, "Control de garantías", h1,
				models.Movement{EffectiveIntake: 50, EffectiveOutput: 45}),
			in(f.a, models.ClassGuarantees, "Control de garantías", h2,
				models.Movement{InitialInventory: 5, EffectiveIntake: 40, EffectiveOutput: 40}),
		},
	}
}

// officeScoreOf returns the office score of official at the fixture office
func (f *fixture) officeScoreOf(t *testing.T, official *models.Official) *models.OfficeScore {
	t.Helper()
	var score models.OfficeScore
	err := f.db.Preload("PeriodScore").Preload("Subfactors").Preload("ConsolidatedRecords").
		Joins("JOIN period_scores ON period_scores.id = office_scores.period_score_id").
		Where("period_scores.official_id = ? AND period_scores.period = ? AND office_scores.office_id = ?", official.ID, 2024, f.office.ID).
		First(&score).Error
	require.NoError(t, err)
	return &score
}

func (f *fixture) periodScoreOf(t *testing.T, official *models.Official) *models.PeriodScore {
	t.Helper()
	var ps models.PeriodScore
	require.NoError(t, f.db.Where("official_id = ? AND period = ?", official.ID, 2024).First(&ps).Error)
	return &ps
}

func (f *fixture) setState(t *testing.T, official *models.Official, state models.ScoreState) {
	t.Helper()
	require.NoError(t, f.db.Model(&models.PeriodScore{}).
		Where("official_id = ? AND period = ?", official.ID, 2024).
		Update("state", state).Error)
}

func day(s string) time.Time {
	d, err := time.Parse("2006-01-02", s)
	if err != nil {
		panic(err)
	}
	return d
}
