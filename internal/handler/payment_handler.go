package handler

import (
	"context"
	"errors"
	"log"
	"net/http"
	"strconv"

	"github.com/courtease/booking-service/internal/dto"
	"github.com/courtease/booking-service/internal/models"
	"github.com/courtease/booking-service/internal/payment"
	"github.com/labstack/echo/v4"
)

// PaymentReconciler is the slice of the reconciliation service the HTTP
// layer needs. Satisfied by *payment.Reconciler.
type PaymentReconciler interface {
	Reconcile(ctx context.Context, bookingID uint, profileID string) (*payment.Result, error)
	ReconcileByOrderID(ctx context.Context, orderID string) (*payment.Result, error)
	InitiatePayment(ctx context.Context, bookingID uint, profileID, customerName, customerEmail string) (*models.Booking, error)
}

type PaymentHandler struct {
	reconciler PaymentReconciler
}

func NewPaymentHandler(reconciler PaymentReconciler) *PaymentHandler {
	return &PaymentHandler{reconciler: reconciler}
}

func (h *PaymentHandler) RegisterRoutes(e *echo.Echo) {
	e.POST("/api/v1/bookings/:id/payment", h.InitiatePayment)
	e.GET("/api/v1/bookings/:id/payment/status", h.CheckStatus)
	e.GET("/api/v1/admin/bookings/:id/payment/status", h.AdminCheckStatus)
	e.POST("/api/v1/payments/notification", h.Notification)
}

func (h *PaymentHandler) InitiatePayment(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	profile := profileID(c)
	if profile == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "profile id is required")
	}

	var req dto.InitiatePaymentRequest
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid request body")
	}

	booking, err := h.reconciler.InitiatePayment(c.Request().Context(), uint(id), profile, req.CustomerName, req.CustomerEmail)
	if err != nil {
		var te *payment.TransactionError
		switch {
		case errors.Is(err, payment.ErrBookingNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.Is(err, payment.ErrPaymentNotPending):
			return echo.NewHTTPError(http.StatusBadRequest, err.Error())
		case errors.As(err, &te):
			return echo.NewHTTPError(http.StatusBadGateway, te.Error())
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.ToBookingResponse(booking))
}

// CheckStatus runs a user-scoped reconciliation. Gateway failures are soft:
// the caller still receives the locally-known booking state. Only a
// persistence failure during the update itself is a 500.
func (h *PaymentHandler) CheckStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	profile := profileID(c)
	if profile == "" {
		return echo.NewHTTPError(http.StatusUnauthorized, "profile id is required")
	}

	result, err := h.reconciler.Reconcile(c.Request().Context(), uint(id), profile)
	if err != nil {
		var ue *payment.UpdateError
		switch {
		case errors.Is(err, payment.ErrBookingNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.As(err, &ue):
			return c.JSON(http.StatusInternalServerError, dto.PaymentCheckResponse{
				Success:       false,
				Message:       ue.Error(),
				StatusMapping: ue.Attempted,
				Booking:       dto.ToBookingResponse(ue.Booking),
			})
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, toPaymentCheckResponse(result))
}

// AdminCheckStatus is the unscoped variant with raw diagnostic detail.
func (h *PaymentHandler) AdminCheckStatus(c echo.Context) error {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid booking id")
	}

	result, err := h.reconciler.Reconcile(c.Request().Context(), uint(id), "")
	if err != nil {
		var ue *payment.UpdateError
		switch {
		case errors.Is(err, payment.ErrBookingNotFound):
			return echo.NewHTTPError(http.StatusNotFound, err.Error())
		case errors.As(err, &ue):
			return c.JSON(http.StatusInternalServerError, dto.AdminPaymentCheckResponse{
				PaymentCheckResponse: dto.PaymentCheckResponse{
					Success: false,
					Message: "failed to persist reconciled status",
					Booking: dto.ToBookingResponse(ue.Booking),
				},
				AttemptedMapping: ue.Attempted,
				ErrorDetail:      ue.Err.Error(),
			})
		default:
			return echo.NewHTTPError(http.StatusInternalServerError, err.Error())
		}
	}

	return c.JSON(http.StatusOK, dto.AdminPaymentCheckResponse{
		PaymentCheckResponse: *toPaymentCheckResponse(result),
	})
}

// Notification handles gateway webhooks. The posted payload is only used to
// locate the booking; the status itself is re-fetched from the gateway.
func (h *PaymentHandler) Notification(c echo.Context) error {
	var req dto.PaymentNotification
	if err := c.Bind(&req); err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid notification body")
	}
	if req.OrderID == "" {
		return echo.NewHTTPError(http.StatusBadRequest, "order_id is required")
	}

	result, err := h.reconciler.ReconcileByOrderID(c.Request().Context(), req.OrderID)
	if err != nil {
		if errors.Is(err, payment.ErrBookingNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "unknown order id")
		}
		log.Printf("[PaymentHandler] notification for %s failed: %v", req.OrderID, err)
		return echo.NewHTTPError(http.StatusInternalServerError, "reconciliation failed")
	}

	return c.JSON(http.StatusOK, map[string]any{
		"status":         "ok",
		"status_updated": result.StatusUpdated,
	})
}

func toPaymentCheckResponse(result *payment.Result) *dto.PaymentCheckResponse {
	return &dto.PaymentCheckResponse{
		Success:        true,
		Message:        result.Message,
		MidtransStatus: result.GatewayStatus,
		StatusMapping:  result.Mapping,
		Booking:        dto.ToBookingResponse(result.Booking),
		StatusUpdated:  result.StatusUpdated,
	}
}
