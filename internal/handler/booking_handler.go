package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/courtease/booking-service/internal/dto"
	"github.com/courtease/booking-service/internal/models"
	"github.com/courtease/booking-service/internal/service"
	"github.com/labstack/echo/v4"
)

// ProfileHeader carries the authenticated profile id, set by the upstream
// auth gateway.
const ProfileHeader = "X-Profile-ID"

func profileID(c echo.Context) string {
	return c.Request().Header.Get(ProfileHeader)
}

type BookingHandler struct {
	svc service.BookingService
}

func NewBookingHandler(svc service.BookingService) *BookingHandler {
	return &BookingHandler{svc: svc}
}

func (h *BookingHandler) RegisterRoutes(e *echo.Echo) {
	courts := e.Group("/api/v1/courts")
	courts.GET("/:id/availability", h.CheckAvailability)
	courts.POST("/:id/bookings", h.CreateBooking)

	bookings := e.Group("/api/v1/bookings")
	bookings.GET("", h.ListBookings)
	bookings.GET("/:id", h.GetBooking)
	bookings.DELETE("/:id", h.CancelBooking)
	bookings.POST("/:id/check-in", h.CheckIn)
	bookings.POST("/:id/complete", h.CompleteBooking)
}

func (h *BookingHandler) CheckAvailability(c echo.Context) error {
	courtID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid court id")
	}

	start, err := time.Parse(time.RFC3339, c.QueryParam("start"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "start must be RFC3339")
	}
	end, err := time.Parse(time.RFC3339, c.QueryParam("end"))
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "end must be RFC3339")
	}

	available, err := h.svc.IsAvailable(c.Request().Context(), uint(courtID), start, end)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrInvalidInterval):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrCourtNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrCourtUnavailable):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.AvailabilityResponse{
		CourtID:   uint(courtID),
		StartTime: start,
		EndTime:   end,
		Available: available,
	})
}

func (h *BookingHandler) CreateBooking(c echo.Context) error {
	courtID, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid court id")
	}

	profile := profileID(c)
	if profile == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "profile id is required")
	}

	var req dto.CreateBookingRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.StartTime.IsZero() || req.EndTime.IsZero() {
		return echo.NewHTTPError(http.StatusBadRequest, "start_time and end_time are required")
	}

	booking, err := h.svc.CreateBooking(c.Request().Context(), uint(courtID), profile, req.StartTime, req.EndTime, req.Notes)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrCourtNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrCourtUnavailable):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrStartTimePast):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrInvalidInterval):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.Is(err, service.ErrSlotConflict):
			return echo.NewHTTPError(http.StatusConflict, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusCreated, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) GetBooking(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	profile := profileID(c)
	if profile == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "profile id is required")
	}

	booking, err := h.svc.GetBooking(c.Request().Context(), uint(id), profile)
	if err != nil {
		if errors.Is(err, service.ErrBookingNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) ListBookings(c echo.Context) error {
	profile := profileID(c)
	if profile == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "profile id is required")
	}

	var status *models.BookingStatus
	if s := c.QueryParam("status"); s != "" {
		bs := models.BookingStatus(s)
		status = &bs
	}

	bookings, err := h.svc.ListBookings(c.Request().Context(), profile, status)
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	resp := make([]*dto.BookingResponse, len(bookings))
	for i := range bookings {
		resp[i] = dto.ToBookingResponse(&bookings[i])
	}

	return c.JSON(http.StatusOK, resp)
}

func (h *BookingHandler) CancelBooking(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	profile := profileID(c)
	if profile == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "profile id is required")
	}

	booking, err := h.svc.CancelBooking(c.Request().Context(), uint(id), profile)
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidTransition):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

// CheckIn and CompleteBooking are venue-operator actions and skip profile
// scoping; the upstream gateway enforces operator roles.
func (h *BookingHandler) CheckIn(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	booking, err := h.svc.CheckIn(c.Request().Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidTransition):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

func (h *BookingHandler) CompleteBooking(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	booking, err := h.svc.CompleteBooking(c.Request().Context(), uint(id))
	if err != nil {
		switch {
		case errors.Is(err, service.ErrBookingNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, service.ErrInvalidTransition):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}
