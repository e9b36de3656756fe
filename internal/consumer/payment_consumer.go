package consumer

import (
	"context"
	"encoding/json"
	"errors"
	"log"
	"time"

	"github.com/courtease/booking-service/internal/payment"
	amqp "github.com/rabbitmq/amqp091-go"
)

// paymentNotification is the relayed webhook message: the ingress service
// forwards only the order id, and reconciliation re-fetches the status from
// the gateway.
type paymentNotification struct {
	OrderID string `json:"order_id"`
}

type PaymentConsumer struct {
	reconciler *payment.Reconciler
}

func NewPaymentConsumer(reconciler *payment.Reconciler) *PaymentConsumer {
	return &PaymentConsumer{reconciler: reconciler}
}

// Start listens for payment notification messages and reconciles the
// referenced bookings.
func (pc *PaymentConsumer) Start(msgs <-chan amqp.Delivery) {
	go func() {
		for msg := range msgs {
			pc.handleMessage(msg)
		}
		log.Println("[PaymentConsumer] channel closed, stopping consumer")
	}()
}

func (pc *PaymentConsumer) handleMessage(msg amqp.Delivery) {
	var note paymentNotification
	if err := json.Unmarshal(msg.Body, &note); err != nil {
		log.Printf("[PaymentConsumer] failed to unmarshal: %v", err)
		msg.Nack(false, false)
		return
	}
	if note.OrderID == "" {
		log.Printf("[PaymentConsumer] message without order_id, dropping")
		msg.Nack(false, false)
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	result, err := pc.reconciler.ReconcileByOrderID(ctx, note.OrderID)
	if err != nil {
		if errors.Is(err, payment.ErrBookingNotFound) {
			log.Printf("[PaymentConsumer] unknown order id %s, dropping", note.OrderID)
			msg.Nack(false, false)
			return
		}
		log.Printf("[PaymentConsumer] reconcile %s failed: %v", note.OrderID, err)
		msg.Nack(false, true) // requeue
		return
	}

	if result.StatusUpdated {
		log.Printf("[PaymentConsumer] reconciled %s: booking %d is now %s/%s",
			note.OrderID, result.Booking.ID, result.Booking.PaymentStatus, result.Booking.Status)
	}
	msg.Ack(false)
}
