package handlers

import (
	"calificaciones_app_go/metrics"
	"calificaciones_app_go/middleware"
	"calificaciones_app_go/models"

	"github.com/labstack/echo/v4"
)

// RegisterRoutes mounts the JSON API
func RegisterRoutes(e *echo.Echo) {
	e.POST("/login", LoginHandler, middleware.LoginRateLimiter.Middleware())
	e.GET("/metrics", echo.WrapHandler(metrics.Handler()))

	api := e.Group("/api")
	api.Use(middleware.RequireAuth())
	api.Use(middleware.AuditContext())
	api.Use(middleware.APIRateLimiter.Middleware())
	{
		api.GET("/me", GetCurrentUserHandler)
		api.POST("/logout", LogoutHandler)

		api.GET("/officials", ListOfficialsHandler)
		api.GET("/offices/code/:code", GetOfficeByCodeHandler)
		api.GET("/offices/:id/movement-records", ListMovementRecordsHandler)

		api.GET("/period-scores/:id", GetPeriodScoreHandler)
		api.GET("/period-scores/:id/history", GetPeriodScoreHistoryHandler)
		api.GET("/office-scores/:id", GetOfficeScoreHandler)
		api.GET("/office-scores/:id/personnel-events", ListPersonnelEventsHandler)
		api.GET("/office-scores/:id/hearings", GetHearingRecordHandler)
		api.GET("/office-scores/:id/export", DownloadStatisticsHandler)
		api.GET("/statistics-exports/:id", DownloadStoredStatisticsHandler)

		// Workflow guards are checked by the service
		api.POST("/period-scores/:id/submit", SubmitHandler)
		api.POST("/period-scores/:id/approve", ApproveHandler)
		api.POST("/period-scores/:id/return", ReturnHandler)

		editors := api.Group("")
		editors.Use(middleware.RequireCapability(models.CapabilityEditor))
		{
			editors.POST("/period-scores/recompute", RecomputeHandler)
			editors.POST("/office-scores/:id/personnel-events", CreatePersonnelEventHandler)
			editors.PUT("/personnel-events/:id", UpdatePersonnelEventHandler)
			editors.DELETE("/personnel-events/:id", DeletePersonnelEventHandler)
			editors.PUT("/office-scores/:id/hearings", UpdateHearingRecordHandler)
			editors.POST("/movement-records", ImportMovementRecordsHandler)
			editors.PUT("/movement-records/:id", CorrectMovementRecordHandler)
			editors.POST("/office-scores/:id/export", StoreStatisticsHandler)
		}

		admins := api.Group("")
		admins.Use(middleware.RequireCapability(models.CapabilityAdmin))
		{
			admins.GET("/audit-logs", GetAuditLogsHandler)
			admins.PUT("/offices/:id", UpdateOfficeHandler)
		}
	}
}
