package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/JenilDobariya6132/shop/pkg/database"
)

// Health reports service and database connectivity status
func Health(c echo.Context) error {
	sqlDB, err := database.GetDB().DB()
	if err == nil {
		err = sqlDB.Ping()
	}
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"status": "error", "error": err.Error()})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "db": true})
}
