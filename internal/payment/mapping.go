package payment

import (
	"strings"

	"github.com/courtease/booking-service/internal/models"
)

// StatusMapping is the application-side consequence of a gateway
// transaction/fraud status pair.
type StatusMapping struct {
	PaymentStatus models.PaymentStatus `json:"payment_status"`
	BookingStatus models.BookingStatus `json:"booking_status"`
}

// MapStatus translates Midtrans transaction/fraud vocabulary into the
// internal (payment_status, booking_status) pair. Inputs are matched
// case-insensitively. An unrecognized transaction status yields nil: no
// mapping, no update.
//
// Refund-family outcomes map to payment_status "cancelled" rather than
// "expired": expiry means the payment window lapsed, while a refund or
// chargeback voids a payment that existed.
func MapStatus(transactionStatus, fraudStatus string) *StatusMapping {
	switch strings.ToLower(transactionStatus) {
	case "settlement":
		return &StatusMapping{models.PaymentPaid, models.StatusConfirmed}
	case "capture":
		if strings.ToLower(fraudStatus) == "challenge" {
			return &StatusMapping{models.PaymentWaitingConfirmation, models.StatusPending}
		}
		return &StatusMapping{models.PaymentPaid, models.StatusConfirmed}
	case "authorize":
		return &StatusMapping{models.PaymentWaitingConfirmation, models.StatusPending}
	case "pending":
		return &StatusMapping{models.PaymentPending, models.StatusPending}
	case "expire", "expired":
		return &StatusMapping{models.PaymentCancelled, models.StatusCancelled}
	case "deny", "cancel", "failure":
		return &StatusMapping{models.PaymentCancelled, models.StatusCancelled}
	case "refund", "partial_refund", "chargeback", "partial_chargeback":
		return &StatusMapping{models.PaymentCancelled, models.StatusCancelled}
	default:
		return nil
	}
}
