package services

import (
	"fmt"
	"log"
	"time"

	"gym-backend/models"

	"gorm.io/gorm"
)

// sweepBatchLimit bounds one sweep run so an overdue backlog cannot turn the
// sweep into a long scan.
const sweepBatchLimit = 200

// SweepService expires stale unpaid bookings. Safe to run on overlapping
// schedules: each candidate goes through the status machine with a
// per-booking, per-day idempotence key.
type SweepService struct {
	DB     *gorm.DB
	Status *StatusService
}

func NewSweepService(db *gorm.DB, status *StatusService) *SweepService {
	return &SweepService{DB: db, Status: status}
}

// RunOnce cancels bookings still unpaid (or reservation-pending) 24 hours
// after creation. Returns how many bookings were newly cancelled.
func (s *SweepService) RunOnce() (int, error) {
	now := time.Now().UTC()
	cutoff := now.Add(-24 * time.Hour)

	var candidates []models.Booking
	err := s.DB.
		Where("payment_status IN ?", []string{models.PaymentStatusUnpaid, models.PaymentStatusReservationPending}).
		Where("status IN ?", []string{models.BookingStatusPending, models.BookingStatusConfirmed}).
		Where("created_at < ?", cutoff).
		Limit(sweepBatchLimit).
		Find(&candidates).Error
	if err != nil {
		return 0, fmt.Errorf("failed to load sweep candidates: %w", err)
	}

	cancelled := 0
	for _, b := range candidates {
		res, err := s.Status.Apply(StatusEvent{
			Kind:       models.EventExpirySweep,
			BookingID:  b.ID,
			OccurredAt: now,
		})
		if err != nil {
			// Infra failure on one booking shouldn't abort the run.
			log.Printf("sweep: booking %d failed: %v", b.ID, err)
			continue
		}
		if res.Outcome == OutcomeApplied && res.Booking != nil &&
			res.Booking.Status == models.BookingStatusCancelled {
			cancelled++
		}
	}

	if cancelled > 0 {
		log.Printf("sweep: cancelled %d expired booking(s)", cancelled)
	}
	return cancelled, nil
}
