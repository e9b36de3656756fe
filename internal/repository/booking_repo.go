package repository

import (
	"context"

	"github.com/courtease/booking-service/internal/models"
	"gorm.io/gorm"
)

type BookingRepository interface {
	Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error
	FindByID(ctx context.Context, id uint) (*models.Booking, error)
	FindByIDForProfile(ctx context.Context, id uint, profileID string) (*models.Booking, error)
	FindByPaymentReference(ctx context.Context, orderID string) (*models.Booking, error)
	FindByProfile(ctx context.Context, profileID string, status *models.BookingStatus) ([]models.Booking, error)
	FindBlockingByCourt(ctx context.Context, tx *gorm.DB, courtID uint) ([]models.Booking, error)
	UpdateFields(ctx context.Context, bookingID uint, fields map[string]interface{}) error
	GetDB() *gorm.DB
}

type bookingRepository struct {
	db *gorm.DB
}

func NewBookingRepository(db *gorm.DB) BookingRepository {
	return &bookingRepository{db: db}
}

func (r *bookingRepository) GetDB() *gorm.DB {
	return r.db
}

func (r *bookingRepository) Create(ctx context.Context, tx *gorm.DB, booking *models.Booking) error {
	return tx.WithContext(ctx).Create(booking).Error
}

func (r *bookingRepository) FindByID(ctx context.Context, id uint) (*models.Booking, error) {
	var booking models.Booking
	if err := r.db.WithContext(ctx).Preload("Court").First(&booking, id).Error; err != nil {
		return nil, err
	}
	return &booking, nil
}

// FindByIDForProfile loads a booking only if it belongs to the given profile.
func (r *bookingRepository) FindByIDForProfile(ctx context.Context, id uint, profileID string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Preload("Court").
		Where("id = ? AND profile_id = ?", id, profileID).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByPaymentReference(ctx context.Context, orderID string) (*models.Booking, error) {
	var booking models.Booking
	err := r.db.WithContext(ctx).
		Where("payment_reference = ?", orderID).
		First(&booking).Error
	if err != nil {
		return nil, err
	}
	return &booking, nil
}

func (r *bookingRepository) FindByProfile(ctx context.Context, profileID string, status *models.BookingStatus) ([]models.Booking, error) {
	var bookings []models.Booking
	q := r.db.WithContext(ctx).Preload("Court").Where("profile_id = ?", profileID)
	if status != nil {
		q = q.Where("status = ?", *status)
	}
	if err := q.Order("start_time DESC").Find(&bookings).Error; err != nil {
		return nil, err
	}
	return bookings, nil
}

// FindBlockingByCourt returns every booking on the court whose status still
// occupies its slot (pending, confirmed, checked_in).
func (r *bookingRepository) FindBlockingByCourt(ctx context.Context, tx *gorm.DB, courtID uint) ([]models.Booking, error) {
	var bookings []models.Booking
	err := tx.WithContext(ctx).
		Where("court_id = ? AND status IN ?", courtID, models.BlockingStatuses).
		Order("start_time ASC").
		Find(&bookings).Error
	if err != nil {
		return nil, err
	}
	return bookings, nil
}

func (r *bookingRepository) UpdateFields(ctx context.Context, bookingID uint, fields map[string]interface{}) error {
	return r.db.WithContext(ctx).
		Model(&models.Booking{}).
		Where("id = ?", bookingID).
		Updates(fields).Error
}
