package services

import (
	"testing"
	"time"

	"gym-backend/models"
)

func auditRules(report *AuditReport) map[string][]uint {
	rules := map[string][]uint{}
	for _, inc := range report.Inconsistencies {
		rules[inc.Rule] = append(rules[inc.Rule], inc.BookingID)
	}
	return rules
}

func TestAuditCleanDatabaseReportsNothing(t *testing.T) {
	f := newFixture(t, true)
	audit := NewAuditService(f.db)

	f.createBooking(t, bookingOpts{
		safetyFields:  true,
		status:        models.BookingStatusConfirmed,
		paymentStatus: models.PaymentStatusReservationPaid,
		attendance:    models.AttendanceStatusConfirmed,
		sessionID:     "cs_test_clean",
	})

	report, err := audit.Run(AuditOptions{})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	if len(report.Tables.Missing) != 0 {
		t.Errorf("missing tables: %v", report.Tables.Missing)
	}
	if len(report.Tables.Found) != len(expectedSchema) {
		t.Errorf("found %d tables, want %d", len(report.Tables.Found), len(expectedSchema))
	}
	for table, cols := range report.Tables.MissingColumns {
		t.Errorf("table %s missing columns: %v", table, cols)
	}
	if len(report.JunctionTables.Inaccessible) != 0 {
		t.Errorf("inaccessible junction tables: %v", report.JunctionTables.Inaccessible)
	}
	if len(report.Inconsistencies) != 0 {
		t.Errorf("unexpected inconsistencies: %+v", report.Inconsistencies)
	}
	if len(report.RejectedEvents) != 0 {
		t.Errorf("unexpected rejected events: %+v", report.RejectedEvents)
	}
}

func TestAuditSurfacesRejectedLedgerEvents(t *testing.T) {
	f := newFixture(t, true)
	audit := NewAuditService(f.db)
	booking := f.createBooking(t, bookingOpts{safetyFields: true})

	// Drive an anomalous webhook through the machine so it lands on the
	// ledger as a rejected row.
	res, err := f.status.Apply(StatusEvent{
		Kind:             models.EventPaymentWebhookPaid,
		BookingID:        booking.ID,
		PaymentSessionID: "cs_test_audit_low",
		AmountCents:      200,
		OccurredAt:       time.Now().UTC(),
	})
	if err != nil {
		t.Fatalf("Apply() error: %v", err)
	}
	if res.Outcome != OutcomeDropped {
		t.Fatalf("outcome = %s (%s), want dropped", res.Outcome, res.Reason)
	}

	report, err := audit.Run(AuditOptions{})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	if len(report.RejectedEvents) != 1 {
		t.Fatalf("rejected events = %d, want 1", len(report.RejectedEvents))
	}
	got := report.RejectedEvents[0]
	if got.BookingID != booking.ID {
		t.Errorf("rejected event booking = %d, want %d", got.BookingID, booking.ID)
	}
	if got.Kind != models.EventPaymentWebhookPaid {
		t.Errorf("rejected event kind = %s, want %s", got.Kind, models.EventPaymentWebhookPaid)
	}
	if got.Error != "amount_below_reservation_fee" {
		t.Errorf("rejected event error = %q, want amount_below_reservation_fee", got.Error)
	}

	// A run scoped to another booking omits it.
	other := f.createBooking(t, bookingOpts{safetyFields: true})
	scoped, err := audit.Run(AuditOptions{BookingID: other.ID})
	if err != nil {
		t.Fatalf("scoped Run() error: %v", err)
	}
	if len(scoped.RejectedEvents) != 0 {
		t.Errorf("scoped rejected events = %+v, want none", scoped.RejectedEvents)
	}
}

func TestAuditFlagsSeededViolations(t *testing.T) {
	f := newFixture(t, true)
	audit := NewAuditService(f.db)

	// Paid with no payment session recorded.
	paidNoSession := f.createBooking(t, bookingOpts{
		safetyFields:  true,
		status:        models.BookingStatusConfirmed,
		paymentStatus: models.PaymentStatusReservationPaid,
	})

	// Attendance confirmed on an unpaid booking with no override on record.
	confirmedUnpaid := f.createBooking(t, bookingOpts{
		safetyFields: true,
		attendance:   models.AttendanceStatusConfirmed,
	})

	// Athlete that lost its parent reference.
	stray := models.Athlete{FirstName: "Stray", LastName: "Athlete"}
	if err := f.db.Create(&stray).Error; err != nil {
		t.Fatalf("failed to create stray athlete: %v", err)
	}

	// Junction row pointing at a booking that does not exist.
	orphan := models.BookingAthlete{BookingID: 9999, AthleteID: f.athlete.ID, SlotOrder: 1}
	if err := f.db.Create(&orphan).Error; err != nil {
		t.Fatalf("failed to create orphan junction row: %v", err)
	}

	// Booking that never got athlete rows.
	lonely := models.Booking{
		LessonTypeID:     f.lessonType.ID,
		Status:           models.BookingStatusPending,
		PaymentStatus:    models.PaymentStatusUnpaid,
		AttendanceStatus: models.AttendanceStatusPending,
	}
	if err := f.db.Create(&lonely).Error; err != nil {
		t.Fatalf("failed to create lonely booking: %v", err)
	}

	report, err := audit.Run(AuditOptions{})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}
	rules := auditRules(report)

	if ids := rules["paid-without-session-id"]; len(ids) != 1 || ids[0] != paidNoSession.ID {
		t.Errorf("paid-without-session-id = %v, want [%d]", ids, paidNoSession.ID)
	}
	if ids := rules["attendance-confirmed-while-unpaid"]; len(ids) != 1 || ids[0] != confirmedUnpaid.ID {
		t.Errorf("attendance-confirmed-while-unpaid = %v, want [%d]", ids, confirmedUnpaid.ID)
	}
	if ids := rules["athlete-without-parent"]; len(ids) != 1 {
		t.Errorf("athlete-without-parent count = %d, want 1", len(ids))
	}
	if ids := rules["junction-orphan-row"]; len(ids) != 1 || ids[0] != 9999 {
		t.Errorf("junction-orphan-row = %v, want [9999]", ids)
	}
	if ids := rules["booking-without-athletes"]; len(ids) != 1 || ids[0] != lonely.ID {
		t.Errorf("booking-without-athletes = %v, want [%d]", ids, lonely.ID)
	}
}

func TestAuditScopedToSingleBooking(t *testing.T) {
	f := newFixture(t, true)
	audit := NewAuditService(f.db)

	bad1 := f.createBooking(t, bookingOpts{
		safetyFields:  true,
		paymentStatus: models.PaymentStatusReservationPaid,
	})
	bad2 := f.createBooking(t, bookingOpts{
		safetyFields:  true,
		paymentStatus: models.PaymentStatusSessionPaid,
	})

	report, err := audit.Run(AuditOptions{BookingID: bad2.ID})
	if err != nil {
		t.Fatalf("Run() error: %v", err)
	}

	ids := auditRules(report)["paid-without-session-id"]
	if len(ids) != 1 || ids[0] != bad2.ID {
		t.Errorf("scoped run flagged %v, want only %d (not %d)", ids, bad2.ID, bad1.ID)
	}
}
