package services

import (
	"strings"
	"testing"
	"time"

	"gym-backend/models"
)

func TestCreateBookingPersistsAthletesInSlotOrder(t *testing.T) {
	f := newFixture(t, true)
	svc := NewBookingService(f.db, f.status)

	second := models.Athlete{ParentID: &f.parent.ID, FirstName: "Blair", LastName: "Example"}
	if err := f.db.Create(&second).Error; err != nil {
		t.Fatalf("failed to create second athlete: %v", err)
	}
	f.signWaiver(t, second.ID)

	booking, err := svc.CreateBooking(CreateBookingInput{
		LessonTypeID:              f.lessonType.ID,
		PreferredDate:             time.Now().UTC().Add(7 * 24 * time.Hour).Format("2006-01-02"),
		PreferredTime:             "10:00",
		ParentID:                  f.parent.ID,
		AthleteIDs:                []uint{second.ID, f.athlete.ID},
		DropoffPersonName:         "Pat Example",
		DropoffPersonRelationship: "parent",
		DropoffPersonPhone:        "555-0100",
		PickupPersonName:          "Pat Example",
		PickupPersonRelationship:  "parent",
		PickupPersonPhone:         "555-0100",
	})
	if err != nil {
		t.Fatalf("CreateBooking() error: %v", err)
	}

	if booking.Status != models.BookingStatusPending {
		t.Errorf("status = %s, want pending", booking.Status)
	}
	if booking.PaymentStatus != models.PaymentStatusUnpaid {
		t.Errorf("payment status = %s, want unpaid", booking.PaymentStatus)
	}
	if booking.StripeSessionID == nil || !strings.HasPrefix(*booking.StripeSessionID, "cs_") {
		t.Errorf("checkout session ref not allocated: %v", booking.StripeSessionID)
	}
	if booking.ParentEmail != f.parent.Email {
		t.Errorf("parent email = %s, want %s", booking.ParentEmail, f.parent.Email)
	}

	var links []models.BookingAthlete
	if err := f.db.Where("booking_id = ?", booking.ID).Order("slot_order").Find(&links).Error; err != nil {
		t.Fatalf("failed to load links: %v", err)
	}
	if len(links) != 2 {
		t.Fatalf("links = %d, want 2", len(links))
	}
	if links[0].AthleteID != second.ID || links[0].SlotOrder != 1 {
		t.Errorf("slot 1 = athlete %d order %d, want athlete %d order 1", links[0].AthleteID, links[0].SlotOrder, second.ID)
	}
	if links[1].AthleteID != f.athlete.ID || links[1].SlotOrder != 2 {
		t.Errorf("slot 2 = athlete %d order %d, want athlete %d order 2", links[1].AthleteID, links[1].SlotOrder, f.athlete.ID)
	}
}

func TestCreateBookingRequiresSignedWaiver(t *testing.T) {
	f := newFixture(t, false)
	svc := NewBookingService(f.db, f.status)

	in := CreateBookingInput{
		LessonTypeID: f.lessonType.ID,
		ParentID:     f.parent.ID,
		AthleteIDs:   []uint{f.athlete.ID},
	}

	if _, err := svc.CreateBooking(in); err == nil || err.Error() != "waiver_required" {
		t.Fatalf("CreateBooking() error = %v, want waiver_required", err)
	}

	// Admin-created bookings bypass the gate.
	in.AdminCreated = true
	if _, err := svc.CreateBooking(in); err != nil {
		t.Fatalf("admin CreateBooking() error: %v", err)
	}

	// And signing the waiver unblocks the parent flow too.
	in.AdminCreated = false
	f.signWaiver(t, f.athlete.ID)
	if _, err := svc.CreateBooking(in); err != nil {
		t.Fatalf("CreateBooking() after signing error: %v", err)
	}
}

func TestCreateBookingRejectsBadInput(t *testing.T) {
	f := newFixture(t, true)
	svc := NewBookingService(f.db, f.status)

	other := models.Parent{FirstName: "Other", LastName: "Parent", Email: "other@example.com"}
	if err := f.db.Create(&other).Error; err != nil {
		t.Fatalf("failed to create second parent: %v", err)
	}

	cases := []struct {
		name string
		in   CreateBookingInput
		want string
	}{
		{
			"unknown lesson type",
			CreateBookingInput{LessonTypeID: 999, ParentID: f.parent.ID, AthleteIDs: []uint{f.athlete.ID}},
			"lesson_type_not_found",
		},
		{
			"no athletes",
			CreateBookingInput{LessonTypeID: f.lessonType.ID, ParentID: f.parent.ID},
			"athletes_required",
		},
		{
			"too many athletes",
			CreateBookingInput{LessonTypeID: f.lessonType.ID, ParentID: f.parent.ID, AthleteIDs: []uint{1, 2, 3}},
			"too_many_athletes",
		},
		{
			"athlete owned by someone else",
			CreateBookingInput{LessonTypeID: f.lessonType.ID, ParentID: other.ID, AthleteIDs: []uint{f.athlete.ID}},
			"athlete_not_owned_by_parent",
		},
		{
			"bad date",
			CreateBookingInput{LessonTypeID: f.lessonType.ID, ParentID: f.parent.ID, AthleteIDs: []uint{f.athlete.ID}, PreferredDate: "next tuesday"},
			"invalid_preferred_date",
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			_, err := svc.CreateBooking(tc.in)
			if err == nil || err.Error() != tc.want {
				t.Errorf("error = %v, want %s", err, tc.want)
			}
		})
	}
}

func TestCancelBookingGoesThroughLedger(t *testing.T) {
	f := newFixture(t, true)
	svc := NewBookingService(f.db, f.status)

	booking := f.createBooking(t, bookingOpts{safetyFields: true})

	got, err := svc.CancelBooking(booking.ID, "schedule conflict")
	if err != nil {
		t.Fatalf("CancelBooking() error: %v", err)
	}
	if got.Status != models.BookingStatusCancelled {
		t.Errorf("status = %s, want cancelled", got.Status)
	}

	var events int64
	if err := f.db.Model(&models.PaymentEvent{}).
		Where("booking_id = ? AND kind = ?", booking.ID, models.EventAdminOverride).
		Count(&events).Error; err != nil {
		t.Fatalf("ledger count failed: %v", err)
	}
	if events != 1 {
		t.Errorf("ledger rows = %d, want 1", events)
	}

	// The row survives as a soft record, never a hard delete.
	if got := f.reload(t, booking.ID); got.Status != models.BookingStatusCancelled {
		t.Errorf("reloaded status = %s, want cancelled", got.Status)
	}

	if _, err := svc.CancelBooking(9999, ""); err == nil || err.Error() != "booking_not_found" {
		t.Errorf("cancel unknown booking error = %v, want booking_not_found", err)
	}
}
