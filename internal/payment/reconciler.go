package payment

import (
	"context"
	"errors"
	"fmt"
	"log"
	"time"

	"github.com/courtease/booking-service/internal/models"
	"github.com/courtease/booking-service/internal/repository"
	"github.com/courtease/booking-service/pkg/rabbitmq"
	"github.com/google/uuid"
	"gorm.io/gorm"
)

var (
	ErrBookingNotFound   = errors.New("booking not found")
	ErrPaymentNotPending = errors.New("booking is not awaiting payment")
)

// UpdateError reports a persistence failure during reconciliation, carrying
// the mapping that was being applied and the booking as it was before the
// attempt.
type UpdateError struct {
	Attempted *StatusMapping
	Booking   *models.Booking
	Err       error
}

func (e *UpdateError) Error() string {
	return fmt.Sprintf("failed to persist status %s/%s for booking %d: %v",
		e.Attempted.PaymentStatus, e.Attempted.BookingStatus, e.Booking.ID, e.Err)
}

func (e *UpdateError) Unwrap() error { return e.Err }

// Result is the outcome of one reconciliation pass. GatewayStatus and
// Mapping are nil when the corresponding step did not produce data; Message
// explains any soft failure.
type Result struct {
	Booking       *models.Booking
	GatewayStatus *GatewayStatus
	Mapping       *StatusMapping
	StatusUpdated bool
	Message       string
}

type Reconciler struct {
	bookings  repository.BookingRepository
	gateway   Gateway
	publisher *rabbitmq.Publisher
}

func NewReconciler(bookings repository.BookingRepository, gateway Gateway, publisher *rabbitmq.Publisher) *Reconciler {
	return &Reconciler{bookings: bookings, gateway: gateway, publisher: publisher}
}

func (r *Reconciler) loadBooking(ctx context.Context, bookingID uint, profileID string) (*models.Booking, error) {
	var (
		booking *models.Booking
		err     error
	)
	if profileID == "" {
		booking, err = r.bookings.FindByID(ctx, bookingID)
	} else {
		booking, err = r.bookings.FindByIDForProfile(ctx, bookingID, profileID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("load booking %d: %w", bookingID, err)
	}
	return booking, nil
}

// Reconcile fetches the gateway status for the booking's payment reference,
// maps it, and persists the mapped pair when it differs from the stored one.
// An empty profileID skips ownership scoping. Gateway failures degrade to a
// soft result so callers still receive the locally-known booking state;
// idempotent when the gateway status is unchanged.
func (r *Reconciler) Reconcile(ctx context.Context, bookingID uint, profileID string) (*Result, error) {
	booking, err := r.loadBooking(ctx, bookingID, profileID)
	if err != nil {
		return nil, err
	}

	if booking.PaymentReference == "" {
		return &Result{
			Booking: booking,
			Message: "no payment reference, nothing to reconcile",
		}, nil
	}

	status, err := r.gateway.CheckTransaction(ctx, booking.PaymentReference)
	if err != nil {
		log.Printf("[Reconciler] gateway lookup failed for booking %d (%s): %v",
			booking.ID, booking.PaymentReference, err)
		return &Result{
			Booking: booking,
			Message: fmt.Sprintf("could not verify payment: %v", err),
		}, nil
	}
	if status == nil {
		return &Result{
			Booking: booking,
			Message: "could not retrieve payment status from gateway",
		}, nil
	}

	mapping := MapStatus(status.TransactionStatus, status.FraudStatus)
	if mapping == nil {
		return &Result{
			Booking:       booking,
			GatewayStatus: status,
			Message:       fmt.Sprintf("unrecognized transaction status %q", status.TransactionStatus),
		}, nil
	}

	if booking.PaymentStatus == mapping.PaymentStatus && booking.Status == mapping.BookingStatus {
		return &Result{
			Booking:       booking,
			GatewayStatus: status,
			Mapping:       mapping,
			Message:       "booking already up to date",
		}, nil
	}

	now := time.Now()
	fields := map[string]interface{}{
		"payment_status": mapping.PaymentStatus,
		"status":         mapping.BookingStatus,
		"updated_at":     now,
	}
	// payment_completed_at is set once, on the first transition to paid
	if mapping.PaymentStatus == models.PaymentPaid && booking.PaymentCompletedAt == nil {
		fields["payment_completed_at"] = now
	}

	if err := r.bookings.UpdateFields(ctx, booking.ID, fields); err != nil {
		return nil, &UpdateError{Attempted: mapping, Booking: booking, Err: err}
	}

	updated, err := r.bookings.FindByID(ctx, booking.ID)
	if err != nil {
		return nil, &UpdateError{Attempted: mapping, Booking: booking, Err: err}
	}

	log.Printf("[Reconciler] booking %d: %s/%s -> %s/%s",
		booking.ID, booking.PaymentStatus, booking.Status,
		mapping.PaymentStatus, mapping.BookingStatus)
	r.publishTransition(updated, mapping)

	return &Result{
		Booking:       updated,
		GatewayStatus: status,
		Mapping:       mapping,
		StatusUpdated: true,
		Message:       "booking status updated",
	}, nil
}

// ReconcileByOrderID resolves a gateway order id to its booking and runs an
// unscoped reconciliation. Used by the webhook endpoint and the queue
// consumer.
func (r *Reconciler) ReconcileByOrderID(ctx context.Context, orderID string) (*Result, error) {
	booking, err := r.bookings.FindByPaymentReference(ctx, orderID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, fmt.Errorf("load booking by order id %s: %w", orderID, err)
	}
	return r.Reconcile(ctx, booking.ID, "")
}

// InitiatePayment creates a gateway transaction for a pending booking and
// stores the order id, token and redirect URL. Calling it again for a
// booking that already holds a payment session returns that session
// unchanged.
func (r *Reconciler) InitiatePayment(ctx context.Context, bookingID uint, profileID, customerName, customerEmail string) (*models.Booking, error) {
	booking, err := r.loadBooking(ctx, bookingID, profileID)
	if err != nil {
		return nil, err
	}

	if booking.Status != models.StatusPending || booking.PaymentStatus != models.PaymentPending {
		return nil, fmt.Errorf("%w: booking is %s/%s", ErrPaymentNotPending, booking.Status, booking.PaymentStatus)
	}
	if booking.PaymentToken != "" {
		return booking, nil
	}

	orderID := fmt.Sprintf("BOOK-%d-%s", booking.ID, uuid.NewString()[:8])
	itemName := "Court booking"
	if booking.Court != nil {
		itemName = booking.Court.Name
	}

	session, err := r.gateway.CreateTransaction(ctx, &TransactionRequest{
		OrderID:       orderID,
		GrossAmount:   int64(booking.PriceTotal),
		CustomerName:  customerName,
		CustomerEmail: customerEmail,
		ItemName:      itemName,
	})
	if err != nil {
		return nil, err
	}

	now := time.Now()
	expiresAt := now.Add(24 * time.Hour)
	fields := map[string]interface{}{
		"payment_reference":    orderID,
		"payment_token":        session.Token,
		"payment_redirect_url": session.RedirectURL,
		"payment_expires_at":   expiresAt,
		"updated_at":           now,
	}
	if err := r.bookings.UpdateFields(ctx, booking.ID, fields); err != nil {
		return nil, fmt.Errorf("store payment session for booking %d: %w", booking.ID, err)
	}

	booking.PaymentReference = orderID
	booking.PaymentToken = session.Token
	booking.PaymentRedirectURL = session.RedirectURL
	booking.PaymentExpiresAt = &expiresAt
	return booking, nil
}

func (r *Reconciler) publishTransition(booking *models.Booking, mapping *StatusMapping) {
	if r.publisher == nil {
		return
	}

	var routingKey string
	switch mapping.PaymentStatus {
	case models.PaymentPaid:
		routingKey = "booking.paid"
	case models.PaymentCancelled:
		routingKey = "booking.payment_cancelled"
	default:
		return
	}

	if err := r.publisher.Publish(routingKey, booking); err != nil {
		log.Printf("[Reconciler] publish %s for booking %d failed: %v", routingKey, booking.ID, err)
	}
}
