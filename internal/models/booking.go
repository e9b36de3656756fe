package models

import "time"

type BookingStatus string

const (
	StatusPending   BookingStatus = "pending"
	StatusConfirmed BookingStatus = "confirmed"
	StatusCheckedIn BookingStatus = "checked_in"
	StatusCompleted BookingStatus = "completed"
	StatusCancelled BookingStatus = "cancelled"
	StatusRefunded  BookingStatus = "refunded"
)

type PaymentStatus string

const (
	PaymentPending             PaymentStatus = "pending"
	PaymentWaitingConfirmation PaymentStatus = "waiting_confirmation"
	PaymentPaid                PaymentStatus = "paid"
	PaymentExpired             PaymentStatus = "expired"
	PaymentCancelled           PaymentStatus = "cancelled"
)

// BlockingStatuses are the booking statuses that occupy a court's time slot.
// Cancelled, completed and refunded bookings do not block.
var BlockingStatuses = []BookingStatus{StatusPending, StatusConfirmed, StatusCheckedIn}

type Booking struct {
	ID        uint          `gorm:"primaryKey" json:"id"`
	CourtID   uint          `gorm:"not null;index" json:"court_id"`
	ProfileID string        `gorm:"not null;index" json:"profile_id"`
	StartTime time.Time     `gorm:"not null" json:"start_time"`
	EndTime   time.Time     `gorm:"not null" json:"end_time"`
	Status    BookingStatus `gorm:"type:varchar(20);not null;default:'pending'" json:"status"`

	PaymentStatus      PaymentStatus `gorm:"type:varchar(30);not null;default:'pending'" json:"payment_status"`
	PaymentReference   string        `gorm:"type:varchar(64);index" json:"payment_reference,omitempty"`
	PaymentToken       string        `json:"payment_token,omitempty"`
	PaymentRedirectURL string        `json:"payment_redirect_url,omitempty"`
	PaymentExpiresAt   *time.Time    `json:"payment_expires_at,omitempty"`
	PaymentCompletedAt *time.Time    `json:"payment_completed_at,omitempty"`

	PriceTotal float64 `gorm:"not null" json:"price_total"`
	Notes      string  `json:"notes,omitempty"`

	CheckedInAt *time.Time `json:"checked_in_at,omitempty"`
	CompletedAt *time.Time `json:"completed_at,omitempty"`
	CreatedAt   time.Time  `json:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at"`

	Court *Court `gorm:"foreignKey:CourtID" json:"court,omitempty"`
}

// Overlaps reports whether the half-open interval [start, end) intersects
// this booking's interval. Touching boundaries do not count, so back-to-back
// bookings are allowed.
func (b *Booking) Overlaps(start, end time.Time) bool {
	return start.Before(b.EndTime) && end.After(b.StartTime)
}
