package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/courtease/booking-service/internal/dto"
	"github.com/courtease/booking-service/internal/models"
	"github.com/courtease/booking-service/internal/repository"
	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type CourtHandler struct {
	repo repository.CourtRepository
}

func NewCourtHandler(repo repository.CourtRepository) *CourtHandler {
	return &CourtHandler{repo: repo}
}

func (h *CourtHandler) RegisterRoutes(e *echo.Echo) {
	courts := e.Group("/api/v1/courts")
	courts.POST("", h.CreateCourt)
	courts.GET("", h.ListCourts)
	courts.GET("/:id", h.GetCourt)
}

func (h *CourtHandler) CreateCourt(c echo.Context) error {
	var req dto.CreateCourtRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}
	if req.Name == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "name is required")
	}
	if req.PricePerHour <= 0 {
		return echo.NewHTTPError(http.StatusBadRequest, "price_per_hour must be positive")
	}

	court := &models.Court{
		Name:         req.Name,
		PricePerHour: req.PricePerHour,
		IsActive:     true,
	}
	if req.IsActive != nil {
		court.IsActive = *req.IsActive
	}

	if err := h.repo.Create(c.Request().Context(), court); err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusCreated, court)
}

func (h *CourtHandler) ListCourts(c echo.Context) error {
	courts, err := h.repo.FindAll(c.Request().Context())
	if err != nil {
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}
	return c.JSON(http.StatusOK, courts)
}

func (h *CourtHandler) GetCourt(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid court id")
	}

	court, err := h.repo.FindByID(c.Request().Context(), uint(id))
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "court not found")
		}
		return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
	}

	return c.JSON(http.StatusOK, court)
}
