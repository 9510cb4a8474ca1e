package handlers

import (
	"errors"
	"net/http"

	"calificaciones_app_go/logging"
	"calificaciones_app_go/services"

	"github.com/labstack/echo/v4"
)

// respondError maps service errors onto HTTP statuses with a JSON body
func respondError(c echo.Context, err error) error {
	var ve *services.ValidationError
	var te *services.TransitionError

	switch {
	case errors.As(err, &ve):
		return c.JSON(http.StatusUnprocessableEntity, map[string]interface{}{
			"error":  "validation failed",
			"fields": ve.Fields,
		})
	case errors.As(err, &te):
		return c.JSON(http.StatusConflict, map[string]interface{}{
			"error":    te.Error(),
			"current":  te.Current,
			"required": te.Required,
		})
	case errors.Is(err, services.ErrNotFound):
		return c.JSON(http.StatusNotFound, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrPeriodLocked):
		return c.JSON(http.StatusLocked, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidTransition):
		return c.JSON(http.StatusConflict, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrForbidden):
		return c.JSON(http.StatusForbidden, map[string]string{"error": err.Error()})
	case errors.Is(err, services.ErrInvalidCourtConfiguration):
		return c.JSON(http.StatusBadRequest, map[string]string{"error": err.Error()})
	}

	logging.L().Errorw("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
	return c.JSON(http.StatusInternalServerError, map[string]string{"error": "Internal server error"})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, map[string]string{"error": msg})
}
