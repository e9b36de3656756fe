package middleware

import (
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/courtease/booking-service/internal/dto"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newErrorContext(t *testing.T) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/bookings/1", nil)
	rec := httptest.NewRecorder()
	return e.NewContext(req, rec), rec
}

func TestErrorHandler_HTTPError(t *testing.T) {
	c, rec := newErrorContext(t)

	ErrorHandler(echo.NewHTTPError(http.StatusNotFound, "booking not found"), c)

	assert.Equal(t, http.StatusNotFound, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "booking not found", resp.Message)
}

func TestErrorHandler_PlainError(t *testing.T) {
	c, rec := newErrorContext(t)

	ErrorHandler(errors.New("connection reset"), c)

	assert.Equal(t, http.StatusInternalServerError, rec.Code)

	var resp dto.ErrorResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "connection reset", resp.Message)
}

func TestErrorHandler_CommittedResponse(t *testing.T) {
	c, rec := newErrorContext(t)
	require.NoError(t, c.NoContent(http.StatusOK))

	ErrorHandler(errors.New("too late"), c)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Empty(t, rec.Body.String())
}
