package handlers

import (
	"bytes"
	"fmt"
	"net/http"

	"calificaciones_app_go/db"
	"calificaciones_app_go/middleware"
	"calificaciones_app_go/services"

	"github.com/labstack/echo/v4"
)

// DownloadStatisticsHandler streams the statistics workbook of an office score
func DownloadStatisticsHandler(c echo.Context) error {
	var buf bytes.Buffer
	name, err := services.WriteStatisticsWorkbook(db.DB, c.Param("id"), &buf)
	if err != nil {
		return respondError(c, err)
	}

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", name))
	return c.Blob(http.StatusOK, services.XLSXContentType, buf.Bytes())
}

// StoreStatisticsHandler stores the workbook and returns a signed download URL
func StoreStatisticsHandler(c echo.Context) error {
	export, url, err := services.StoreStatisticsExport(c.Request().Context(), db.DB, services.Storage, middleware.GetAuditContext(c), c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	return c.JSON(http.StatusCreated, map[string]interface{}{
		"export": export,
		"url":    url,
	})
}

// DownloadStoredStatisticsHandler streams a previously stored workbook
func DownloadStoredStatisticsHandler(c echo.Context) error {
	export, reader, contentType, err := services.OpenStatisticsExport(c.Request().Context(), db.DB, services.Storage, c.Param("id"))
	if err != nil {
		return respondError(c, err)
	}
	defer reader.Close()

	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", export.FileName))
	return c.Stream(http.StatusOK, contentType, reader)
}
