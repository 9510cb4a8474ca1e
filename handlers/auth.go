package handlers

import (
	"errors"
	"net/http"

	"calificaciones_app_go/db"
	"calificaciones_app_go/middleware"
	"calificaciones_app_go/models"
	"calificaciones_app_go/services"

	"github.com/labstack/echo/v4"
)

func init() {
	// Generate a real dummy hash at startup to ensure consistent timing
	if hash, err := services.HashPassword("dummy_password_for_timing_mitigation"); err == nil {
		globalDummyHash = hash
	}
}

// Package level variable to hold the dummy hash
var globalDummyHash = "$2a$10$X7.G.t8./.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t.t" // Fallback

type loginRequest struct {
	Email    string `json:"email" form:"email"`
	Password string `json:"password" form:"password"`
}

// LoginHandler authenticates a user and opens a session
func LoginHandler(c echo.Context) error {
	var req loginRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.Email == "" || req.Password == "" {
		return badRequest(c, "Email and password are required")
	}

	user, err := services.Authenticate(db.DB, req.Email, req.Password)
	if err != nil {
		if errors.Is(err, services.ErrInvalidCredentials) {
			// Timing attack mitigation: always pay for one bcrypt comparison
			services.VerifyPassword(globalDummyHash, req.Password)
			services.Monitor.TrackFailedLogin(c.RealIP())
			services.LogSecurityEvent(db.DB, "LOGIN_FAILED", "", "email="+req.Email)
			return c.JSON(http.StatusUnauthorized, map[string]string{"error": "Invalid email or password"})
		}
		return respondError(c, err)
	}

	session, err := services.CreateSession(db.DB, user.ID, c.RealIP(), c.Request().UserAgent())
	if err != nil {
		return respondError(c, err)
	}
	middleware.SetSessionCookie(c, session)

	services.LogAuditEvent(db.DB, services.AuditContext{
		UserID:    user.ID,
		UserName:  user.Name,
		UserRole:  user.Capabilities,
		IPAddress: c.RealIP(),
		UserAgent: c.Request().UserAgent(),
	}, services.AuditEvent{
		Action:       models.AuditActionLogin,
		ResourceType: "User",
		ResourceID:   user.ID,
		ResourceName: user.Email,
		Description:  "User logged in",
	})

	return c.JSON(http.StatusOK, map[string]interface{}{
		"token":      session.Token,
		"expires_at": session.ExpiresAt,
		"user":       user,
	})
}

// LogoutHandler ends the current session
func LogoutHandler(c echo.Context) error {
	token := middleware.SessionToken(c)
	if token != "" {
		if err := services.DeleteSession(db.DB, token); err != nil {
			return respondError(c, err)
		}
	}

	if user := middleware.GetCurrentUser(c); user != nil {
		services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEvent{
			Action:       models.AuditActionLogout,
			ResourceType: "User",
			ResourceID:   user.ID,
			ResourceName: user.Email,
			Description:  "User logged out",
		})
	}

	middleware.ClearSessionCookie(c)
	return c.JSON(http.StatusOK, map[string]string{"message": "Logged out"})
}

// GetCurrentUserHandler returns the authenticated user
func GetCurrentUserHandler(c echo.Context) error {
	user := middleware.GetCurrentUser(c)
	if user == nil {
		return echo.NewHTTPError(http.StatusUnauthorized, "User not found")
	}
	return c.JSON(http.StatusOK, user)
}
