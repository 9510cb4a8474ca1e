package handlers

import (
	"net/http"
	"strconv"

	"calificaciones_app_go/db"
	"calificaciones_app_go/middleware"
	"calificaciones_app_go/services"

	"github.com/labstack/echo/v4"
)

// ListOfficialsHandler lists every official
func ListOfficialsHandler(c echo.Context) error {
	officials, err := services.ListOfficials(db.DB)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, officials)
}

// GetOfficeByCodeHandler looks an office up by its court code
func GetOfficeByCodeHandler(c echo.Context) error {
	office, err := services.GetOfficeByCode(db.DB, c.Param("code"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, office)
}

// UpdateOfficeHandler edits an office and recomputes its open scores
func UpdateOfficeHandler(c echo.Context) error {
	var req services.UpdateOfficeInput
	if err := c.Bind(&req); err != nil {
		return badRequest(c, "Invalid request body")
	}

	office, err := services.UpdateOffice(db.DB, middleware.GetAuditContext(c), c.Param("id"), req)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, office)
}

// ListMovementRecordsHandler lists the raw movement rows of an office for ?period=
func ListMovementRecordsHandler(c echo.Context) error {
	period, err := strconv.Atoi(c.QueryParam("period"))
	if err != nil {
		return badRequest(c, "period must be a year")
	}

	records, err := services.ListMovementRecords(db.DB, c.Param("id"), period)
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusOK, records)
}
