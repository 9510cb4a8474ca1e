package handlers

import (
	"net/http"

	"calificaciones_app_go/db"
	"calificaciones_app_go/middleware"
	"calificaciones_app_go/models"
	"calificaciones_app_go/services"

	"github.com/labstack/echo/v4"
)

type recomputeRequest struct {
	OfficialID string `json:"official_id"`
	OfficeID   string `json:"office_id"`
	Period     int    `json:"period"`
}

// RecomputeHandler recomputes the office score of an official and returns the period score
func RecomputeHandler(c echo.Context) error {
	var req recomputeRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}
	if req.OfficialID == "" || req.OfficeID == "" {
		return badRequest(c, "official_id and office_id are required")
	}

	id, err := services.RecomputeOfficialScore(db.DB, req.OfficialID, req.OfficeID, req.Period)
	if err != nil {
		return respondError(c, err)
	}

	services.LogAuditEvent(db.DB, middleware.GetAuditContext(c), services.AuditEvent{
		Action:       models.AuditActionRecompute,
		ResourceType: "PeriodScore",
		ResourceID:   id,
		Description:  "Office score recomputed on request",
	})

	ps, err := services.GetPeriodScore(db.DB, id)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ps)
}

// GetPeriodScoreHandler returns a period score with its office scores
func GetPeriodScoreHandler(c echo.Context) error {
	ps, err := services.GetPeriodScore(db.DB, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ps)
}

// GetPeriodScoreHistoryHandler returns the audit trail of a period score,
// newest first
func GetPeriodScoreHistoryHandler(c echo.Context) error {
	ps, err := services.GetPeriodScore(db.DB, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}

	history, err := services.GetResourceAuditHistory(db.DB, "PeriodScore", ps.ID)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, history)
}

// GetOfficeScoreHandler returns an office score with subfactors and consolidated rows
func GetOfficeScoreHandler(c echo.Context) error {
	s, err := services.GetOfficeScore(db.DB, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, s)
}

// SubmitHandler sends a period score to review
func SubmitHandler(c echo.Context) error {
	ps, err := services.SubmitForReview(db.DB, middleware.GetCurrentUser(c), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ps)
}

// ApproveHandler approves a period score under review
func ApproveHandler(c echo.Context) error {
	ps, err := services.Approve(db.DB, middleware.GetCurrentUser(c), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ps)
}

type returnRequest struct {
	Note string `json:"note" form:"note"`
}

// ReturnHandler returns a period score under review with an observation
func ReturnHandler(c echo.Context) error {
	var req returnRequest
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ps, err := services.Return(db.DB, middleware.GetCurrentUser(c), c.Param("id"), req.Note)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ps)
}
