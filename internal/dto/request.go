package dto

import "time"

type CreateCourtRequest struct {
	Name         string  `json:"name" validate:"required"`
	PricePerHour float64 `json:"price_per_hour" validate:"required,gt=0"`
	IsActive     *bool   `json:"is_active"`
}

type CreateBookingRequest struct {
	StartTime time.Time `json:"start_time" validate:"required"`
	EndTime   time.Time `json:"end_time" validate:"required,gtfield=StartTime"`
	Notes     string    `json:"notes"`
}

type InitiatePaymentRequest struct {
	CustomerName  string `json:"customer_name"`
	CustomerEmail string `json:"customer_email"`
}

// PaymentNotification is the webhook payload from the gateway. Only the
// order id is used; the transaction status is always re-fetched from the
// gateway rather than trusted from the caller.
type PaymentNotification struct {
	OrderID           string `json:"order_id"`
	TransactionStatus string `json:"transaction_status"`
	FraudStatus       string `json:"fraud_status"`
	SignatureKey      string `json:"signature_key"`
}
