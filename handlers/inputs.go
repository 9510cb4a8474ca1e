package handlers

import (
	"net/http"

	"calificaciones_app_go/db"
	"calificaciones_app_go/middleware"
	"calificaciones_app_go/services"

	"github.com/labstack/echo/v4"
)

// ListPersonnelEventsHandler lists the events feeding an office score
func ListPersonnelEventsHandler(c echo.Context) error {
	events, err := services.ListPersonnelEvents(db.DB, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, events)
}

// CreatePersonnelEventHandler records an event for the official of an office score
func CreatePersonnelEventHandler(c echo.Context) error {
	var req services.PersonnelEventInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ev, err := services.CreatePersonnelEvent(db.DB, middleware.GetAuditContext(c), c.Param("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, ev)
}

// UpdatePersonnelEventHandler replaces a personnel event
func UpdatePersonnelEventHandler(c echo.Context) error {
	var req services.PersonnelEventInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	ev, err := services.UpdatePersonnelEvent(db.DB, middleware.GetAuditContext(c), c.Param("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, ev)
}

// DeletePersonnelEventHandler removes a personnel event
func DeletePersonnelEventHandler(c echo.Context) error {
	if err := services.DeletePersonnelEvent(db.DB, middleware.GetAuditContext(c), c.Param("id")); err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, map[string]string{"message": "Personnel event deleted"})
}

// GetHearingRecordHandler returns the hearing counts of an office score
func GetHearingRecordHandler(c echo.Context) error {
	h, err := services.GetHearingRecord(db.DB, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, h)
}

// UpdateHearingRecordHandler replaces the hearing counts of an office score
func UpdateHearingRecordHandler(c echo.Context) error {
	var req services.HearingInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	h, err := services.UpdateHearingRecord(db.DB, middleware.GetAuditContext(c), c.Param("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, h)
}

// ImportMovementRecordsHandler stores a batch of movement rows
func ImportMovementRecordsHandler(c echo.Context) error {
	var req services.MovementImport
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	n, err := services.ImportMovementRecords(db.DB, middleware.GetAuditContext(c), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]int{"imported": n})
}

// CorrectMovementRecordHandler corrects one movement row
func CorrectMovementRecordHandler(c echo.Context) error {
	var req services.MovementCorrection
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	r, err := services.CorrectMovementRecord(db.DB, middleware.GetAuditContext(c), c.Param("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, r)
}
