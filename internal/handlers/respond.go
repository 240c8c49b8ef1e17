package handlers

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/kamaudev/dukashop/internal/service"
)

// Every endpoint answers with the same envelope: {"success": true, "data": ...}
// or {"success": false, "message": "..."}.

func respondData(c echo.Context, code int, data any) error {
	return c.JSON(code, echo.Map{"success": true, "data": data})
}

func respondList(c echo.Context, data any, count int64) error {
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": data, "count": count})
}

func respondMessage(c echo.Context, code int, message string) error {
	return c.JSON(code, echo.Map{"success": true, "message": message})
}

func respondError(c echo.Context, code int, message string) error {
	return c.JSON(code, echo.Map{"success": false, "message": message})
}

func respondFieldErrors(c echo.Context, fieldErrors []string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{
		"success": false,
		"message": "validation failed",
		"errors":  fieldErrors,
	})
}

// respondServiceError maps the service sentinel errors onto status codes.
func respondServiceError(c echo.Context, err error) error {
	switch {
	case errors.Is(err, service.ErrValidation),
		errors.Is(err, service.ErrOutOfStock),
		errors.Is(err, service.ErrProductNotFound):
		return respondError(c, http.StatusBadRequest, err.Error())
	case errors.Is(err, service.ErrNotFound):
		return respondError(c, http.StatusNotFound, err.Error())
	case errors.Is(err, service.ErrConflict):
		return respondError(c, http.StatusConflict, err.Error())
	case errors.Is(err, service.ErrForbidden):
		return respondError(c, http.StatusForbidden, err.Error())
	default:
		return respondError(c, http.StatusInternalServerError, "internal error")
	}
}

func paramID(c echo.Context) (uint, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return uint(id), nil
}

func parseIntDefault(s string, def int) int {
	if s == "" {
		return def
	}
	if v, err := strconv.Atoi(s); err == nil {
		return v
	}
	return def
}
