package middleware

import (
	"log"
	"net/http"

	"github.com/courtease/booking-service/internal/dto"
	"github.com/labstack/echo/v4"
)

// ErrorHandler renders every unhandled error as a dto.ErrorResponse so
// handler errors and echo's own routing errors share one wire shape.
func ErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	code := http.StatusInternalServerError
	msg := err.Error()

	if he, ok := err.(*echo.HTTPError); ok {
		code = he.Code
		if m, ok := he.Message.(string); ok {
			msg = m
		}
	}

	if code >= http.StatusInternalServerError {
		log.Printf("[ErrorHandler] %s %s: %v", c.Request().Method, c.Request().RequestURI, err)
	}

	_ = c.JSON(code, dto.ErrorResponse{Message: msg})
}
