package models

import (
	"testing"
	"time"
)

func TestBookingStatusTransitions(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{BookingStatusPending, BookingStatusConfirmed, true},
		{BookingStatusPending, BookingStatusCancelled, true},
		{BookingStatusPending, BookingStatusCompleted, false},
		{BookingStatusPending, BookingStatusNoShow, false},
		{BookingStatusConfirmed, BookingStatusCompleted, true},
		{BookingStatusConfirmed, BookingStatusCancelled, true},
		{BookingStatusConfirmed, BookingStatusNoShow, true},
		{BookingStatusConfirmed, BookingStatusPending, false},
		{BookingStatusCompleted, BookingStatusCancelled, false},
		{BookingStatusCancelled, BookingStatusConfirmed, false},
		{BookingStatusNoShow, BookingStatusConfirmed, false},
		// Same-value transitions are always allowed no-ops.
		{BookingStatusCompleted, BookingStatusCompleted, true},
	}
	for _, tc := range cases {
		if got := CanTransitionBookingStatus(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransitionBookingStatus(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestPaymentStatusTransitionsAreMonotonic(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{PaymentStatusUnpaid, PaymentStatusReservationPending, true},
		{PaymentStatusUnpaid, PaymentStatusReservationPaid, true},
		{PaymentStatusUnpaid, PaymentStatusSessionPaid, true},
		{PaymentStatusReservationPaid, PaymentStatusSessionPaid, true},
		{PaymentStatusSessionPaid, PaymentStatusReservationPaid, false},
		{PaymentStatusReservationPaid, PaymentStatusUnpaid, false},
		// refunded is the one backward edge, paid states only.
		{PaymentStatusReservationPaid, PaymentStatusRefunded, true},
		{PaymentStatusSessionPaid, PaymentStatusRefunded, true},
		{PaymentStatusUnpaid, PaymentStatusRefunded, false},
		{PaymentStatusReservationPending, PaymentStatusRefunded, false},
		{PaymentStatusRefunded, PaymentStatusSessionPaid, false},
		{PaymentStatusRefunded, PaymentStatusUnpaid, false},
	}
	for _, tc := range cases {
		if got := CanTransitionPaymentStatus(tc.from, tc.to); got != tc.want {
			t.Errorf("CanTransitionPaymentStatus(%s, %s) = %v, want %v", tc.from, tc.to, got, tc.want)
		}
	}
}

func TestCheckForbidden(t *testing.T) {
	session := "cs_test"
	future := time.Now().Add(48 * time.Hour)
	past := time.Now().Add(-48 * time.Hour)

	cases := []struct {
		name    string
		booking Booking
		want    []string
	}{
		{
			"clean confirmed booking",
			Booking{
				Status:           BookingStatusConfirmed,
				PaymentStatus:    PaymentStatusReservationPaid,
				AttendanceStatus: AttendanceStatusConfirmed,
				StripeSessionID:  &session,
				PreferredDate:    &future,
			},
			nil,
		},
		{
			"paid without session id",
			Booking{
				Status:           BookingStatusConfirmed,
				PaymentStatus:    PaymentStatusSessionPaid,
				AttendanceStatus: AttendanceStatusPending,
			},
			[]string{"paid-without-session-id"},
		},
		{
			"attendance confirmed while unpaid",
			Booking{
				Status:           BookingStatusPending,
				PaymentStatus:    PaymentStatusUnpaid,
				AttendanceStatus: AttendanceStatusConfirmed,
			},
			[]string{"attendance-confirmed-while-unpaid"},
		},
		{
			"attendance confirmed while unpaid but overridden",
			Booking{
				Status:           BookingStatusPending,
				PaymentStatus:    PaymentStatusUnpaid,
				AttendanceStatus: AttendanceStatusConfirmed,
				OverrideReason:   "comped session",
			},
			nil,
		},
		{
			"completed before the session date",
			Booking{
				Status:           BookingStatusConfirmed,
				PaymentStatus:    PaymentStatusSessionPaid,
				AttendanceStatus: AttendanceStatusCompleted,
				StripeSessionID:  &session,
				PreferredDate:    &future,
			},
			[]string{"completed-before-session-date"},
		},
		{
			"completed after the session date",
			Booking{
				Status:           BookingStatusCompleted,
				PaymentStatus:    PaymentStatusSessionPaid,
				AttendanceStatus: AttendanceStatusCompleted,
				StripeSessionID:  &session,
				PreferredDate:    &past,
			},
			nil,
		},
		{
			"unknown status value",
			Booking{
				Status:           "archived",
				PaymentStatus:    PaymentStatusUnpaid,
				AttendanceStatus: AttendanceStatusPending,
			},
			[]string{"unknown-status-value"},
		},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			got := CheckForbidden(&tc.booking)
			if len(got) != len(tc.want) {
				t.Fatalf("CheckForbidden() = %v, want %v", got, tc.want)
			}
			for i := range got {
				if got[i] != tc.want[i] {
					t.Fatalf("CheckForbidden() = %v, want %v", got, tc.want)
				}
			}
		})
	}
}

func TestSafetyInfoComplete(t *testing.T) {
	b := Booking{
		DropoffPersonName:  "Pat",
		DropoffPersonPhone: "555-0100",
		PickupPersonName:   "Pat",
	}
	if b.SafetyInfoComplete() {
		t.Error("complete with missing pickup phone")
	}
	b.PickupPersonPhone = "555-0100"
	if !b.SafetyInfoComplete() {
		t.Error("incomplete with all four fields set")
	}
}
