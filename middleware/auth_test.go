package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"

	"calificaciones_app_go/db"
	"calificaciones_app_go/models"
	"calificaciones_app_go/services"
)

func setupTestDB(t *testing.T) *gorm.DB {
	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared", uuid.New().String())
	testDB, err := gorm.Open(sqlite.Open(dsn), &gorm.Config{Logger: logger.Default.LogMode(logger.Silent)})
	require.NoError(t, err)

	require.NoError(t, testDB.AutoMigrate(&models.User{}, &models.Session{}))

	// Set the global DB variable used by middleware
	db.DB = testDB
	return testDB
}

func TestRequireAuth(t *testing.T) {
	testDB := setupTestDB(t)
	e := echo.New()

	user := models.User{
		Name:         "Test User",
		Email:        "test@example.com",
		Password:     "x",
		IsActive:     true,
		Capabilities: "reviewer",
	}
	require.NoError(t, testDB.Create(&user).Error)

	session, err := services.CreateSession(testDB, user.ID, "127.0.0.1", "test-agent")
	require.NoError(t, err)

	ok := func(c echo.Context) error {
		return c.String(http.StatusOK, "success")
	}

	t.Run("ValidCookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: session.Token})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := RequireAuth()(ok)(c)
		assert.NoError(t, err)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, user.ID, GetCurrentUser(c).ID)
	})

	t.Run("ValidBearer", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set(echo.HeaderAuthorization, "Bearer "+session.Token)
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		assert.NoError(t, RequireAuth()(ok)(c))
		assert.Equal(t, user.ID, GetCurrentUser(c).ID)
	})

	t.Run("NoToken", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/api/period-scores/x", nil)
		c := e.NewContext(req, httptest.NewRecorder())

		err := RequireAuth()(ok)(c)
		he, isHTTP := err.(*echo.HTTPError)
		require.True(t, isHTTP)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
	})

	t.Run("ExpiredSession", func(t *testing.T) {
		expired := models.Session{ID: uuid.New().String(), UserID: user.ID, Token: "expired", ExpiresAt: time.Now().Add(-time.Hour)}
		require.NoError(t, testDB.Create(&expired).Error)

		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.AddCookie(&http.Cookie{Name: SessionCookieName, Value: "expired"})
		rec := httptest.NewRecorder()
		c := e.NewContext(req, rec)

		err := RequireAuth()(ok)(c)
		he, isHTTP := err.(*echo.HTTPError)
		require.True(t, isHTTP)
		assert.Equal(t, http.StatusUnauthorized, he.Code)
		assert.Contains(t, rec.Header().Get("Set-Cookie"), SessionCookieName+"=;")
	})
}

func TestRequireCapability(t *testing.T) {
	e := echo.New()
	ok := func(c echo.Context) error { return c.NoContent(http.StatusOK) }

	tests := []struct {
		name string
		user *models.User
		code int
	}{
		{"reviewer allowed", &models.User{Capabilities: "reviewer"}, http.StatusOK},
		{"admin allowed", &models.User{Capabilities: "admin"}, http.StatusOK},
		{"editor forbidden", &models.User{Capabilities: "editor"}, http.StatusForbidden},
		{"anonymous", nil, http.StatusUnauthorized},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := httptest.NewRecorder()
			c := e.NewContext(httptest.NewRequest(http.MethodGet, "/", nil), rec)
			if tt.user != nil {
				c.Set(ContextKeyUser, tt.user)
			}

			err := RequireCapability(models.CapabilityReviewer)(ok)(c)
			if tt.code == http.StatusOK {
				assert.NoError(t, err)
				assert.Equal(t, http.StatusOK, rec.Code)
				return
			}
			he, isHTTP := err.(*echo.HTTPError)
			require.True(t, isHTTP)
			assert.Equal(t, tt.code, he.Code)
		})
	}
}
