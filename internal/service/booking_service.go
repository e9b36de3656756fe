package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/courtease/booking-service/internal/models"
	"github.com/courtease/booking-service/internal/repository"
	"gorm.io/gorm"
)

var (
	ErrCourtNotFound     = errors.New("court not found")
	ErrCourtUnavailable  = errors.New("court is not active")
	ErrInvalidInterval   = errors.New("invalid booking interval")
	ErrStartTimePast     = errors.New("booking must start in the future")
	ErrSlotConflict      = errors.New("time slot already booked")
	ErrBookingNotFound   = errors.New("booking not found")
	ErrInvalidTransition = errors.New("invalid booking status transition")
)

// NoOverlapConstraint is the name of the database exclusion constraint that
// backstops the in-transaction conflict check.
const NoOverlapConstraint = "bookings_no_overlap"

type BookingService interface {
	IsAvailable(ctx context.Context, courtID uint, start, end time.Time) (bool, error)
	CreateBooking(ctx context.Context, courtID uint, profileID string, start, end time.Time, notes string) (*models.Booking, error)
	GetBooking(ctx context.Context, id uint, profileID string) (*models.Booking, error)
	ListBookings(ctx context.Context, profileID string, status *models.BookingStatus) ([]models.Booking, error)
	CancelBooking(ctx context.Context, id uint, profileID string) (*models.Booking, error)
	CheckIn(ctx context.Context, id uint) (*models.Booking, error)
	CompleteBooking(ctx context.Context, id uint) (*models.Booking, error)
}

type bookingService struct {
	bookingRepo repository.BookingRepository
	courtRepo   repository.CourtRepository
}

func NewBookingService(bookingRepo repository.BookingRepository, courtRepo repository.CourtRepository) BookingService {
	return &bookingService{
		bookingRepo: bookingRepo,
		courtRepo:   courtRepo,
	}
}

// IsAvailable reports whether [start, end) on the court is free of blocking
// bookings. A store read failure is returned as an error, never as
// availability.
func (s *bookingService) IsAvailable(ctx context.Context, courtID uint, start, end time.Time) (bool, error) {
	if !end.After(start) {
		return false, ErrInvalidInterval
	}

	court, err := s.courtRepo.FindByID(ctx, courtID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return false, ErrCourtNotFound
		}
		return false, fmt.Errorf("availability check failed: %w", err)
	}
	if !court.IsActive {
		return false, ErrCourtUnavailable
	}

	existing, err := s.bookingRepo.FindBlockingByCourt(ctx, s.bookingRepo.GetDB(), courtID)
	if err != nil {
		return false, fmt.Errorf("availability check failed: %w", err)
	}

	for i := range existing {
		if existing[i].Overlaps(start, end) {
			return false, nil
		}
	}
	return true, nil
}

func (s *bookingService) CreateBooking(ctx context.Context, courtID uint, profileID string, start, end time.Time, notes string) (*models.Booking, error) {
	now := time.Now()
	if !start.After(now) {
		return nil, ErrStartTimePast
	}
	if !end.After(start) {
		return nil, ErrInvalidInterval
	}

	var result *models.Booking

	err := s.bookingRepo.GetDB().WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		// 1. Lock the court row — serializes concurrent bookings for this court
		court, err := s.courtRepo.FindByIDForUpdate(ctx, tx, courtID)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return ErrCourtNotFound
			}
			return err
		}
		if !court.IsActive {
			return ErrCourtUnavailable
		}

		// 2. Conflict check against blocking bookings
		existing, err := s.bookingRepo.FindBlockingByCourt(ctx, tx, courtID)
		if err != nil {
			return err
		}
		for i := range existing {
			if existing[i].Overlaps(start, end) {
				return ErrSlotConflict
			}
		}

		// 3. Price: duration rounded to whole hours x hourly rate
		hours := int(end.Sub(start).Round(time.Hour) / time.Hour)
		booking := &models.Booking{
			CourtID:       courtID,
			ProfileID:     profileID,
			StartTime:     start,
			EndTime:       end,
			Status:        models.StatusPending,
			PaymentStatus: models.PaymentPending,
			PriceTotal:    float64(hours) * court.PricePerHour,
			Notes:         notes,
		}

		if err := s.bookingRepo.Create(ctx, tx, booking); err != nil {
			// Exclusion constraint backstop: a concurrent insert that slipped
			// past the check still fails here.
			if strings.Contains(err.Error(), NoOverlapConstraint) {
				return ErrSlotConflict
			}
			return fmt.Errorf("create booking: %w", err)
		}

		result = booking
		return nil
	})

	return result, err
}

// GetBooking loads a booking. An empty profileID skips ownership scoping
// (admin paths).
func (s *bookingService) GetBooking(ctx context.Context, id uint, profileID string) (*models.Booking, error) {
	var (
		booking *models.Booking
		err     error
	)
	if profileID == "" {
		booking, err = s.bookingRepo.FindByID(ctx, id)
	} else {
		booking, err = s.bookingRepo.FindByIDForProfile(ctx, id, profileID)
	}
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrBookingNotFound
		}
		return nil, err
	}
	return booking, nil
}

func (s *bookingService) ListBookings(ctx context.Context, profileID string, status *models.BookingStatus) ([]models.Booking, error) {
	return s.bookingRepo.FindByProfile(ctx, profileID, status)
}

func (s *bookingService) CancelBooking(ctx context.Context, id uint, profileID string) (*models.Booking, error) {
	booking, err := s.GetBooking(ctx, id, profileID)
	if err != nil {
		return nil, err
	}

	if booking.Status != models.StatusPending && booking.Status != models.StatusConfirmed {
		return nil, fmt.Errorf("%w: cannot cancel a %s booking", ErrInvalidTransition, booking.Status)
	}

	fields := map[string]interface{}{
		"status":     models.StatusCancelled,
		"updated_at": time.Now(),
	}
	if err := s.bookingRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("cancel booking: %w", err)
	}

	booking.Status = models.StatusCancelled
	return booking, nil
}

func (s *bookingService) CheckIn(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.GetBooking(ctx, id, "")
	if err != nil {
		return nil, err
	}

	if booking.Status != models.StatusConfirmed || booking.PaymentStatus != models.PaymentPaid {
		return nil, fmt.Errorf("%w: check-in requires a confirmed, paid booking", ErrInvalidTransition)
	}

	now := time.Now()
	fields := map[string]interface{}{
		"status":        models.StatusCheckedIn,
		"checked_in_at": now,
		"updated_at":    now,
	}
	if err := s.bookingRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("check in booking: %w", err)
	}

	booking.Status = models.StatusCheckedIn
	booking.CheckedInAt = &now
	return booking, nil
}

func (s *bookingService) CompleteBooking(ctx context.Context, id uint) (*models.Booking, error) {
	booking, err := s.GetBooking(ctx, id, "")
	if err != nil {
		return nil, err
	}

	if booking.Status != models.StatusCheckedIn {
		return nil, fmt.Errorf("%w: completion requires a checked-in booking", ErrInvalidTransition)
	}

	now := time.Now()
	fields := map[string]interface{}{
		"status":       models.StatusCompleted,
		"completed_at": now,
		"updated_at":   now,
	}
	if err := s.bookingRepo.UpdateFields(ctx, id, fields); err != nil {
		return nil, fmt.Errorf("complete booking: %w", err)
	}

	booking.Status = models.StatusCompleted
	booking.CompletedAt = &now
	return booking, nil
}
