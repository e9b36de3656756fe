package dto

import (
	"time"

	"github.com/courtease/booking-service/internal/models"
	"github.com/courtease/booking-service/internal/payment"
)

type BookingResponse struct {
	ID                 uint                 `json:"id"`
	CourtID            uint                 `json:"court_id"`
	CourtName          string               `json:"court_name,omitempty"`
	ProfileID          string               `json:"profile_id"`
	StartTime          time.Time            `json:"start_time"`
	EndTime            time.Time            `json:"end_time"`
	Status             models.BookingStatus `json:"status"`
	PaymentStatus      models.PaymentStatus `json:"payment_status"`
	PaymentReference   string               `json:"payment_reference,omitempty"`
	PaymentToken       string               `json:"payment_token,omitempty"`
	PaymentRedirectURL string               `json:"payment_redirect_url,omitempty"`
	PaymentExpiresAt   *time.Time           `json:"payment_expires_at,omitempty"`
	PaymentCompletedAt *time.Time           `json:"payment_completed_at,omitempty"`
	PriceTotal         float64              `json:"price_total"`
	Notes              string               `json:"notes,omitempty"`
	CheckedInAt        *time.Time           `json:"checked_in_at,omitempty"`
	CompletedAt        *time.Time           `json:"completed_at,omitempty"`
	CreatedAt          time.Time            `json:"created_at"`
}

type AvailabilityResponse struct {
	CourtID   uint      `json:"court_id"`
	StartTime time.Time `json:"start_time"`
	EndTime   time.Time `json:"end_time"`
	Available bool      `json:"available"`
}

// PaymentCheckResponse is the payload of the payment status check endpoints.
// MidtransStatus and StatusMapping are null when the corresponding step of
// the reconciliation produced nothing.
type PaymentCheckResponse struct {
	Success        bool                   `json:"success"`
	Message        string                 `json:"message"`
	MidtransStatus *payment.GatewayStatus `json:"midtrans_status"`
	StatusMapping  *payment.StatusMapping `json:"status_mapping"`
	Booking        *BookingResponse       `json:"booking"`
	StatusUpdated  bool                   `json:"status_updated"`
}

// AdminPaymentCheckResponse adds raw diagnostic detail for operational
// troubleshooting.
type AdminPaymentCheckResponse struct {
	PaymentCheckResponse
	AttemptedMapping *payment.StatusMapping `json:"attempted_mapping,omitempty"`
	ErrorDetail      string                 `json:"error_detail,omitempty"`
}

type ErrorResponse struct {
	Message string `json:"message"`
}

func ToBookingResponse(b *models.Booking) *BookingResponse {
	resp := &BookingResponse{
		ID:                 b.ID,
		CourtID:            b.CourtID,
		ProfileID:          b.ProfileID,
		StartTime:          b.StartTime,
		EndTime:            b.EndTime,
		Status:             b.Status,
		PaymentStatus:      b.PaymentStatus,
		PaymentReference:   b.PaymentReference,
		PaymentToken:       b.PaymentToken,
		PaymentRedirectURL: b.PaymentRedirectURL,
		PaymentExpiresAt:   b.PaymentExpiresAt,
		PaymentCompletedAt: b.PaymentCompletedAt,
		PriceTotal:         b.PriceTotal,
		Notes:              b.Notes,
		CheckedInAt:        b.CheckedInAt,
		CompletedAt:        b.CompletedAt,
		CreatedAt:          b.CreatedAt,
	}
	if b.Court != nil {
		resp.CourtName = b.Court.Name
	}
	return resp
}
