package models

// Booking lifecycle status values. Stored as strings so the audit can compare
// schema and data without decoding numeric codes.
const (
	BookingStatusPending   = "pending"
	BookingStatusConfirmed = "confirmed"
	BookingStatusCompleted = "completed"
	BookingStatusCancelled = "cancelled"
	BookingStatusNoShow    = "no-show"
)

// Payment status values.
const (
	PaymentStatusUnpaid             = "unpaid"
	PaymentStatusReservationPending = "reservation-pending"
	PaymentStatusReservationPaid    = "reservation-paid"
	PaymentStatusSessionPaid        = "session-paid"
	PaymentStatusRefunded           = "refunded"
)

// Attendance status values.
const (
	AttendanceStatusPending   = "pending"
	AttendanceStatusConfirmed = "confirmed"
	AttendanceStatusCompleted = "completed"
	AttendanceStatusNoShow    = "no-show"
)

// bookingStatusEdges lists the allowed lifecycle edges. completed and no-show
// are terminal and only reachable from confirmed.
var bookingStatusEdges = map[string][]string{
	BookingStatusPending:   {BookingStatusConfirmed, BookingStatusCancelled},
	BookingStatusConfirmed: {BookingStatusCompleted, BookingStatusCancelled, BookingStatusNoShow},
	BookingStatusCancelled: {},
	BookingStatusCompleted: {},
	BookingStatusNoShow:    {},
}

// paymentRank orders the monotonic part of the payment progression.
var paymentRank = map[string]int{
	PaymentStatusUnpaid:             0,
	PaymentStatusReservationPending: 1,
	PaymentStatusReservationPaid:    2,
	PaymentStatusSessionPaid:        3,
}

// ValidBookingStatus reports whether s is a known lifecycle value.
func ValidBookingStatus(s string) bool {
	_, ok := bookingStatusEdges[s]
	return ok
}

func ValidPaymentStatus(s string) bool {
	if s == PaymentStatusRefunded {
		return true
	}
	_, ok := paymentRank[s]
	return ok
}

func ValidAttendanceStatus(s string) bool {
	switch s {
	case AttendanceStatusPending, AttendanceStatusConfirmed, AttendanceStatusCompleted, AttendanceStatusNoShow:
		return true
	}
	return false
}

// CanTransitionBookingStatus reports whether the lifecycle edge from -> to is
// allowed. A same-value transition is always an allowed no-op.
func CanTransitionBookingStatus(from, to string) bool {
	if from == to {
		return true
	}
	for _, next := range bookingStatusEdges[from] {
		if next == to {
			return true
		}
	}
	return false
}

// CanTransitionPaymentStatus enforces monotonic payment progression; refunded
// is the one backward edge and is only reachable from a paid state.
func CanTransitionPaymentStatus(from, to string) bool {
	if from == to {
		return true
	}
	if to == PaymentStatusRefunded {
		return PaymentIsPaid(from)
	}
	if from == PaymentStatusRefunded {
		return false
	}
	fromRank, okFrom := paymentRank[from]
	toRank, okTo := paymentRank[to]
	return okFrom && okTo && toRank >= fromRank
}

// PaymentIsPaid reports whether money has been captured for the booking.
func PaymentIsPaid(status string) bool {
	return status == PaymentStatusReservationPaid || status == PaymentStatusSessionPaid
}

// ForbiddenRule is a status combination that must never appear on a persisted
// booking row. The state machine rejects transitions that would produce one and
// the consistency audit scans for rows where one slipped through, so both sides
// share this single table.
type ForbiddenRule struct {
	Name     string
	Detail   string
	Violates func(b *Booking) bool
}

var ForbiddenCombinations = []ForbiddenRule{
	{
		Name:   "paid-without-session-id",
		Detail: "payment status indicates captured money but no payment session is recorded",
		Violates: func(b *Booking) bool {
			return PaymentIsPaid(b.PaymentStatus) && (b.StripeSessionID == nil || *b.StripeSessionID == "")
		},
	},
	{
		Name:   "attendance-confirmed-while-unpaid",
		Detail: "attendance confirmed on an unpaid booking with no admin override reason",
		Violates: func(b *Booking) bool {
			return b.AttendanceStatus == AttendanceStatusConfirmed &&
				b.PaymentStatus == PaymentStatusUnpaid &&
				b.OverrideReason == ""
		},
	},
	{
		Name:   "completed-before-session-date",
		Detail: "attendance marked completed although the preferred date is still in the future",
		Violates: func(b *Booking) bool {
			return b.AttendanceStatus == AttendanceStatusCompleted &&
				b.PreferredDate != nil && b.PreferredDate.After(nowFunc())
		},
	},
	{
		Name:   "unknown-status-value",
		Detail: "one of the status columns holds a value outside the canonical enumeration",
		Violates: func(b *Booking) bool {
			return !ValidBookingStatus(b.Status) ||
				!ValidPaymentStatus(b.PaymentStatus) ||
				!ValidAttendanceStatus(b.AttendanceStatus)
		},
	},
}

// CheckForbidden returns the names of every rule the booking violates.
func CheckForbidden(b *Booking) []string {
	var hits []string
	for _, rule := range ForbiddenCombinations {
		if rule.Violates(b) {
			hits = append(hits, rule.Name)
		}
	}
	return hits
}
