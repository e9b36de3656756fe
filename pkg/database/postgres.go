package database

import (
	"log"

	"github.com/courtease/booking-service/internal/models"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

func NewPostgresDB(dsn string) *gorm.DB {
	db, err := gorm.Open(postgres.Open(dsn), &gorm.Config{
		Logger: logger.Default.LogMode(logger.Warn),
	})
	if err != nil {
		log.Fatalf("failed to connect to database: %v", err)
	}

	if err := Migrate(db); err != nil {
		log.Fatalf("failed to migrate database: %v", err)
	}

	return db
}

// Migrate creates the schema plus the exclusion constraint that rejects
// overlapping slot-blocking bookings on the same court. The constraint is
// the serialization point for concurrent check-then-insert attempts, so a
// failure here is fatal to the caller.
func Migrate(db *gorm.DB) error {
	if err := db.AutoMigrate(&models.Court{}, &models.Booking{}); err != nil {
		return err
	}

	if err := db.Exec(`CREATE EXTENSION IF NOT EXISTS btree_gist`).Error; err != nil {
		return err
	}

	var count int64
	if err := db.Raw(
		`SELECT count(*) FROM pg_constraint WHERE conname = 'bookings_no_overlap'`,
	).Scan(&count).Error; err != nil {
		return err
	}
	if count > 0 {
		return nil
	}

	// start_time and end_time migrate as timestamptz, so the range type
	// must be tstzrange.
	return db.Exec(`
		ALTER TABLE bookings
		ADD CONSTRAINT bookings_no_overlap
		EXCLUDE USING gist (
			court_id WITH =,
			tstzrange(start_time, end_time) WITH &&
		)
		WHERE (status IN ('pending', 'confirmed', 'checked_in'))
	`).Error
}
