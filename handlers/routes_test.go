package handlers

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"calificaciones_app_go/models"
	"calificaciones_app_go/services"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRegisterRoutes(t *testing.T) {
	testDB := setupTestDB(t)
	editor := createUser(t, testDB, "editor@rama.test", "secret-pass", models.CapabilityEditor)
	admin := createUser(t, testDB, "admin@rama.test", "secret-pass", models.CapabilityAdmin)

	editorSession, err := services.CreateSession(testDB, editor.ID, "192.0.2.1", "test")
	require.NoError(t, err)
	adminSession, err := services.CreateSession(testDB, admin.ID, "192.0.2.1", "test")
	require.NoError(t, err)

	e := echo.New()
	RegisterRoutes(e)

	serve := func(method, path, token string) *httptest.ResponseRecorder {
		req := httptest.NewRequest(method, path, nil)
		if token != "" {
			req.Header.Set(echo.HeaderAuthorization, "Bearer "+token)
		}
		rec := httptest.NewRecorder()
		e.ServeHTTP(rec, req)
		return rec
	}

	tests := []struct {
		name     string
		method   string
		path     string
		token    string
		expected int
	}{
		{"Metrics are public", http.MethodGet, "/metrics", "", http.StatusOK},
		{"API requires a session", http.MethodGet, "/api/me", "", http.StatusUnauthorized},
		{"Unknown token", http.MethodGet, "/api/me", "nope", http.StatusUnauthorized},
		{"Current user", http.MethodGet, "/api/me", editorSession.Token, http.StatusOK},
		{"Audit logs need admin", http.MethodGet, "/api/audit-logs", editorSession.Token, http.StatusForbidden},
		{"Admin reads audit logs", http.MethodGet, "/api/audit-logs", adminSession.Token, http.StatusOK},
		{"Missing period score", http.MethodGet, "/api/period-scores/missing", editorSession.Token, http.StatusNotFound},
		{"Office edits need admin", http.MethodPut, "/api/offices/any", editorSession.Token, http.StatusForbidden},
		{"Missing period score history", http.MethodGet, "/api/period-scores/missing/history", editorSession.Token, http.StatusNotFound},
		{"Missing stored export", http.MethodGet, "/api/statistics-exports/missing", editorSession.Token, http.StatusNotFound},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			rec := serve(tt.method, tt.path, tt.token)
			assert.Equal(t, tt.expected, rec.Code, rec.Body.String())
		})
	}
}
