package services

import (
	"testing"
	"time"

	"gym-backend/models"
)

func TestSweepCancelsExpiredUnpaidBooking(t *testing.T) {
	f := newFixture(t, true)
	sweep := NewSweepService(f.db, f.status)

	expired := f.createBooking(t, bookingOpts{createdAgo: 25 * time.Hour})
	fresh := f.createBooking(t, bookingOpts{createdAgo: 2 * time.Hour})

	cancelled, err := sweep.RunOnce()
	if err != nil {
		t.Fatalf("RunOnce() error: %v", err)
	}
	if cancelled != 1 {
		t.Fatalf("cancelled = %d, want 1", cancelled)
	}

	if got := f.reload(t, expired.ID); got.Status != models.BookingStatusCancelled {
		t.Errorf("expired booking status = %s, want cancelled", got.Status)
	}
	if got := f.reload(t, fresh.ID); got.Status != models.BookingStatusPending {
		t.Errorf("fresh booking status = %s, want pending", got.Status)
	}
}

func TestSweepIsSafeToRunTwice(t *testing.T) {
	f := newFixture(t, true)
	sweep := NewSweepService(f.db, f.status)

	f.createBooking(t, bookingOpts{createdAgo: 30 * time.Hour})

	first, err := sweep.RunOnce()
	if err != nil {
		t.Fatalf("first RunOnce() error: %v", err)
	}
	if first != 1 {
		t.Fatalf("first run cancelled = %d, want 1", first)
	}

	second, err := sweep.RunOnce()
	if err != nil {
		t.Fatalf("second RunOnce() error: %v", err)
	}
	if second != 0 {
		t.Errorf("second run cancelled = %d, want 0", second)
	}
}

func TestSweepSparesBookingAtExactlyTwentyFourHours(t *testing.T) {
	f := newFixture(t, true)

	atCutoff := f.createBooking(t, bookingOpts{})
	justPast := f.createBooking(t, bookingOpts{})

	res, err := f.status.Apply(StatusEvent{
		Kind:       models.EventExpirySweep,
		BookingID:  atCutoff.ID,
		OccurredAt: atCutoff.CreatedAt.Add(24 * time.Hour),
	})
	if err != nil {
		t.Fatalf("Apply() at cutoff error: %v", err)
	}
	if res.Outcome != OutcomeApplied || res.Reason != "no_change" {
		t.Fatalf("at-cutoff outcome = %s (%s), want applied no_change", res.Outcome, res.Reason)
	}
	if got := f.reload(t, atCutoff.ID); got.Status != models.BookingStatusPending {
		t.Errorf("booking at exactly 24h: status = %s, want pending", got.Status)
	}

	res, err = f.status.Apply(StatusEvent{
		Kind:       models.EventExpirySweep,
		BookingID:  justPast.ID,
		OccurredAt: justPast.CreatedAt.Add(24*time.Hour + time.Second),
	})
	if err != nil {
		t.Fatalf("Apply() past cutoff error: %v", err)
	}
	if res.Outcome != OutcomeApplied {
		t.Fatalf("past-cutoff outcome = %s (%s), want applied", res.Outcome, res.Reason)
	}
	if got := f.reload(t, justPast.ID); got.Status != models.BookingStatusCancelled {
		t.Errorf("booking past 24h: status = %s, want cancelled", got.Status)
	}
}

func TestSweepLeavesPaidBookingsAlone(t *testing.T) {
	f := newFixture(t, true)
	sweep := NewSweepService(f.db, f.status)

	paid := f.createBooking(t, bookingOpts{
		safetyFields:  true,
		status:        models.BookingStatusConfirmed,
		paymentStatus: models.PaymentStatusReservationPaid,
		sessionID:     "cs_test_sweep_paid",
		createdAgo:    72 * time.Hour,
	})

	cancelled, err := sweep.RunOnce()
	if err != nil {
		t.Fatalf("RunOnce() error: %v", err)
	}
	if cancelled != 0 {
		t.Errorf("cancelled = %d, want 0", cancelled)
	}
	if got := f.reload(t, paid.ID); got.Status != models.BookingStatusConfirmed {
		t.Errorf("paid booking status = %s, want confirmed", got.Status)
	}
}
