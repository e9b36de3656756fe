package handler

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/courtease/booking-service/internal/dto"
	"github.com/courtease/booking-service/internal/models"
	"github.com/courtease/booking-service/internal/payment"
	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
)

// --- Mock PaymentReconciler ---

type mockReconciler struct {
	reconcileFn func(ctx context.Context, bookingID uint, profileID string) (*payment.Result, error)
	byOrderFn   func(ctx context.Context, orderID string) (*payment.Result, error)
	initiateFn  func(ctx context.Context, bookingID uint, profileID, name, email string) (*models.Booking, error)
}

func (m *mockReconciler) Reconcile(ctx context.Context, bookingID uint, profileID string) (*payment.Result, error) {
	return m.reconcileFn(ctx, bookingID, profileID)
}
func (m *mockReconciler) ReconcileByOrderID(ctx context.Context, orderID string) (*payment.Result, error) {
	return m.byOrderFn(ctx, orderID)
}
func (m *mockReconciler) InitiatePayment(ctx context.Context, bookingID uint, profileID, name, email string) (*models.Booking, error) {
	return m.initiateFn(ctx, bookingID, profileID, name, email)
}

func paidResult() *payment.Result {
	return &payment.Result{
		Booking: &models.Booking{
			ID:               7,
			ProfileID:        "profile-1",
			Status:           models.StatusConfirmed,
			PaymentStatus:    models.PaymentPaid,
			PaymentReference: "BOOK-7-abc12345",
			CreatedAt:        time.Now(),
		},
		GatewayStatus: &payment.GatewayStatus{
			OrderID:           "BOOK-7-abc12345",
			TransactionStatus: "settlement",
		},
		Mapping: &payment.StatusMapping{
			PaymentStatus: models.PaymentPaid,
			BookingStatus: models.StatusConfirmed,
		},
		StatusUpdated: true,
		Message:       "booking status updated",
	}
}

// --- CheckStatus ---

func TestCheckStatus_Handler_Success(t *testing.T) {
	rec := &mockReconciler{
		reconcileFn: func(ctx context.Context, bookingID uint, profileID string) (*payment.Result, error) {
			assert.Equal(t, uint(7), bookingID)
			assert.Equal(t, "profile-1", profileID)
			return paidResult(), nil
		},
	}

	c, w := newBookingContext(http.MethodGet, "/api/v1/bookings/7/payment/status", "", "profile-1", "7")

	h := NewPaymentHandler(rec)
	err := h.CheckStatus(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.PaymentCheckResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.True(t, resp.Success)
	assert.True(t, resp.StatusUpdated)
	assert.Equal(t, "settlement", resp.MidtransStatus.TransactionStatus)
	assert.Equal(t, models.PaymentPaid, resp.StatusMapping.PaymentStatus)
	assert.Equal(t, models.PaymentPaid, resp.Booking.PaymentStatus)
}

func TestCheckStatus_Handler_MissingProfile(t *testing.T) {
	c, _ := newBookingContext(http.MethodGet, "/api/v1/bookings/7/payment/status", "", "", "7")

	h := NewPaymentHandler(nil)
	err := h.CheckStatus(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusUnauthorized, he.Code)
}

func TestCheckStatus_Handler_NotFound(t *testing.T) {
	rec := &mockReconciler{
		reconcileFn: func(ctx context.Context, bookingID uint, profileID string) (*payment.Result, error) {
			return nil, payment.ErrBookingNotFound
		},
	}

	c, _ := newBookingContext(http.MethodGet, "/api/v1/bookings/99/payment/status", "", "profile-1", "99")

	h := NewPaymentHandler(rec)
	err := h.CheckStatus(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

func TestCheckStatus_Handler_SoftGatewayFailure(t *testing.T) {
	rec := &mockReconciler{
		reconcileFn: func(ctx context.Context, bookingID uint, profileID string) (*payment.Result, error) {
			return &payment.Result{
				Booking: &models.Booking{ID: 7, PaymentStatus: models.PaymentPending},
				Message: "could not verify payment: connection refused",
			}, nil
		},
	}

	c, w := newBookingContext(http.MethodGet, "/api/v1/bookings/7/payment/status", "", "profile-1", "7")

	h := NewPaymentHandler(rec)
	err := h.CheckStatus(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code, "gateway failure still returns booking state")

	var resp dto.PaymentCheckResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.StatusUpdated)
	assert.Nil(t, resp.MidtransStatus)
	assert.NotNil(t, resp.Booking)
	assert.Contains(t, resp.Message, "could not verify payment")
}

func TestCheckStatus_Handler_PersistFailure(t *testing.T) {
	booking := &models.Booking{ID: 7, PaymentStatus: models.PaymentPending, Status: models.StatusPending}
	rec := &mockReconciler{
		reconcileFn: func(ctx context.Context, bookingID uint, profileID string) (*payment.Result, error) {
			return nil, &payment.UpdateError{
				Attempted: &payment.StatusMapping{
					PaymentStatus: models.PaymentPaid,
					BookingStatus: models.StatusConfirmed,
				},
				Booking: booking,
				Err:     context.DeadlineExceeded,
			}
		},
	}

	c, w := newBookingContext(http.MethodGet, "/api/v1/bookings/7/payment/status", "", "profile-1", "7")

	h := NewPaymentHandler(rec)
	err := h.CheckStatus(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp dto.PaymentCheckResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.Equal(t, models.PaymentPaid, resp.StatusMapping.PaymentStatus)
	assert.Equal(t, models.PaymentPending, resp.Booking.PaymentStatus)
}

// --- AdminCheckStatus ---

func TestAdminCheckStatus_Handler_Unscoped(t *testing.T) {
	rec := &mockReconciler{
		reconcileFn: func(ctx context.Context, bookingID uint, profileID string) (*payment.Result, error) {
			assert.Equal(t, "", profileID, "admin check must be unscoped")
			return paidResult(), nil
		},
	}

	// no profile header on purpose
	c, w := newBookingContext(http.MethodGet, "/api/v1/admin/bookings/7/payment/status", "", "", "7")

	h := NewPaymentHandler(rec)
	err := h.AdminCheckStatus(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestAdminCheckStatus_Handler_PersistFailureDiagnostics(t *testing.T) {
	rec := &mockReconciler{
		reconcileFn: func(ctx context.Context, bookingID uint, profileID string) (*payment.Result, error) {
			return nil, &payment.UpdateError{
				Attempted: &payment.StatusMapping{
					PaymentStatus: models.PaymentPaid,
					BookingStatus: models.StatusConfirmed,
				},
				Booking: &models.Booking{ID: 7},
				Err:     context.DeadlineExceeded,
			}
		},
	}

	c, w := newBookingContext(http.MethodGet, "/api/v1/admin/bookings/7/payment/status", "", "", "7")

	h := NewPaymentHandler(rec)
	err := h.AdminCheckStatus(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusInternalServerError, w.Code)

	var resp dto.AdminPaymentCheckResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.False(t, resp.Success)
	assert.NotNil(t, resp.AttemptedMapping)
	assert.NotEmpty(t, resp.ErrorDetail)
}

// --- Notification ---

func TestNotification_Handler_Success(t *testing.T) {
	rec := &mockReconciler{
		byOrderFn: func(ctx context.Context, orderID string) (*payment.Result, error) {
			assert.Equal(t, "BOOK-7-abc12345", orderID)
			return paidResult(), nil
		},
	}

	body := `{"order_id":"BOOK-7-abc12345","transaction_status":"settlement"}`
	c, w := newBookingContext(http.MethodPost, "/api/v1/payments/notification", body, "", "")

	h := NewPaymentHandler(rec)
	err := h.Notification(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestNotification_Handler_MissingOrderID(t *testing.T) {
	c, _ := newBookingContext(http.MethodPost, "/api/v1/payments/notification", `{}`, "", "")

	h := NewPaymentHandler(nil)
	err := h.Notification(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadRequest, he.Code)
}

func TestNotification_Handler_UnknownOrder(t *testing.T) {
	rec := &mockReconciler{
		byOrderFn: func(ctx context.Context, orderID string) (*payment.Result, error) {
			return nil, payment.ErrBookingNotFound
		},
	}

	body := `{"order_id":"BOOK-0-missing"}`
	c, _ := newBookingContext(http.MethodPost, "/api/v1/payments/notification", body, "", "")

	h := NewPaymentHandler(rec)
	err := h.Notification(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusNotFound, he.Code)
}

// --- InitiatePayment ---

func TestInitiatePayment_Handler_Success(t *testing.T) {
	rec := &mockReconciler{
		initiateFn: func(ctx context.Context, bookingID uint, profileID, name, email string) (*models.Booking, error) {
			return &models.Booking{
				ID:                 7,
				ProfileID:          profileID,
				Status:             models.StatusPending,
				PaymentStatus:      models.PaymentPending,
				PaymentReference:   "BOOK-7-abc12345",
				PaymentToken:       "snap-token",
				PaymentRedirectURL: "https://pay.example/redirect",
			}, nil
		},
	}

	body := `{"customer_name":"Ayu","customer_email":"ayu@example.com"}`
	c, w := newBookingContext(http.MethodPost, "/api/v1/bookings/7/payment", body, "profile-1", "7")

	h := NewPaymentHandler(rec)
	err := h.InitiatePayment(c)

	assert.NoError(t, err)
	assert.Equal(t, http.StatusOK, w.Code)

	var resp dto.BookingResponse
	assert.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	assert.Equal(t, "snap-token", resp.PaymentToken)
	assert.Equal(t, "BOOK-7-abc12345", resp.PaymentReference)
}

func TestInitiatePayment_Handler_GatewayError(t *testing.T) {
	rec := &mockReconciler{
		initiateFn: func(ctx context.Context, bookingID uint, profileID, name, email string) (*models.Booking, error) {
			return nil, &payment.TransactionError{StatusCode: 401, Detail: "invalid server key"}
		},
	}

	c, _ := newBookingContext(http.MethodPost, "/api/v1/bookings/7/payment", `{}`, "profile-1", "7")

	h := NewPaymentHandler(rec)
	err := h.InitiatePayment(c)

	he, ok := err.(*echo.HTTPError)
	assert.True(t, ok)
	assert.Equal(t, http.StatusBadGateway, he.Code)
}
