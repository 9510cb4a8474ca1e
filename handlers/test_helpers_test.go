package handlers

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"calificaciones_app_go/config"
	"calificaciones_app_go/db"
	"calificaciones_app_go/middleware"
	"calificaciones_app_go/models"
	"calificaciones_app_go/services"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func setupTestDB(t *testing.T) *gorm.DB {
	// Use unique shared memory name to isolate tests while allowing shared cache for async tasks
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	sqlDB, err := testDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)

	require.NoError(t, testDB.AutoMigrate(db.AllModels()...))

	// Set global DB
	db.DB = testDB
	return testDB
}

func setupEcho(method, path string, body io.Reader) (*echo.Echo, echo.Context, *httptest.ResponseRecorder) {
	e := echo.New()
	req := httptest.NewRequest(method, path, body)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	// Add config to context
	c.Set("config", &config.Config{
		Environment: "test",
	})

	return e, c, rec
}

// jsonBody encodes v as a request body
func jsonBody(t *testing.T, v interface{}) io.Reader {
	t.Helper()
	b, err := json.Marshal(v)
	require.NoError(t, err)
	return strings.NewReader(string(b))
}

// asUser puts user and its audit context on c as the auth middlewares would
func asUser(c echo.Context, user *models.User) {
	c.Set(middleware.ContextKeyUser, user)
	c.Set(middleware.ContextKeyAuditContext, services.AuditContextFor(user))
}

func withID(c echo.Context, id string) {
	c.SetParamNames("id")
	c.SetParamValues(id)
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, v interface{}) {
	t.Helper()
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), v))
}

func createUser(t *testing.T, testDB *gorm.DB, email, password, capabilities string) *models.User {
	t.Helper()
	hash, err := services.HashPassword(password)
	require.NoError(t, err)
	user := &models.User{Name: email, Email: email, Password: hash, Capabilities: capabilities, IsActive: true}
	require.NoError(t, testDB.Create(user).Error)
	return user
}

// scoredOffice seeds an office with one official and two semesters of oral movement
type scoredOffice struct {
	office   *models.Office
	official *models.Official
	editor   *models.User
	reviewer *models.User
}

func seedScoredOffice(t *testing.T, testDB *gorm.DB) *scoredOffice {
	t.Helper()
	s := &scoredOffice{
		office: &models.Office{
			Code:      "050013103002",
			Name:      "Juzgado 2 Civil del Circuito",
			Specialty: models.SpecialtyCivil,
			Category:  models.CategoryCircuit,
			IsActive:  true,
		},
		official: &models.Official{Name: "Carla Ríos", Document: "2001", Email: "carla@rama.test", IsActive: true},
		editor:   createUser(t, testDB, "editor@rama.test", "secret-pass", models.CapabilityEditor),
		reviewer: createUser(t, testDB, "reviewer@rama.test", "secret-pass", models.CapabilityReviewer),
	}
	require.NoError(t, testDB.Create(s.office).Error)
	require.NoError(t, testDB.Create(s.official).Error)
	return s
}

func (s *scoredOffice) movementImport() services.MovementImport {
	return services.MovementImport{
		OfficeID: s.office.ID,
		Period:   2024,
		Records: []services.MovementInput{
			{
				OfficialID: s.official.ID, Class: "oral", Category: "Procesos declarativos",
				From: "2024-01-01", To: "2024-06-30",
				Counts: services.MovementCounts{InitialInventory: 80, EffectiveIntake: 30, EffectiveOutput: 40, FinalInventory: 70},
			},
			{
				OfficialID: s.official.ID, Class: "oral", Category: "Procesos declarativos",
				From: "2024-07-01", To: "2024-12-31",
				Counts: services.MovementCounts{InitialInventory: 70, EffectiveIntake: 25, EffectiveOutput: 35, FinalInventory: 60},
			},
		},
	}
}

// officeScore returns the office score of the seeded official
func (s *scoredOffice) officeScore(t *testing.T, testDB *gorm.DB) *models.OfficeScore {
	t.Helper()
	var score models.OfficeScore
	err := testDB.Preload("PeriodScore").
		Joins("JOIN period_scores ON period_scores.id = office_scores.period_score_id").
		Where("period_scores.official_id = ? AND office_scores.office_id = ?", s.official.ID, s.office.ID).
		First(&score).Error
	require.NoError(t, err)
	return &score
}
