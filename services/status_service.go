package services

import (
	"errors"
	"fmt"
	"log"
	"strings"
	"time"

	"gym-backend/models"

	"gorm.io/datatypes"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// StatusService applies state-changing events to a booking's
// (status, paymentStatus, attendanceStatus) triple. All application happens
// inside a transaction holding a row lock on the booking, so a webhook and a
// concurrent admin edit cannot interleave.
type StatusService struct {
	DB *gorm.DB
}

func NewStatusService(db *gorm.DB) *StatusService {
	return &StatusService{DB: db}
}

// StatusEvent is one incoming event. OccurredAt is the logical timestamp:
// provider delivery time for webhooks, wall-clock now for admin overrides.
type StatusEvent struct {
	Kind             string
	BookingID        uint
	PaymentSessionID string
	AmountCents      int64

	// Admin override targets; nil leaves the field alone.
	NewStatus           *string
	NewPaymentStatus    *string
	NewAttendanceStatus *string
	Reason              string
	Notes               string

	// Waiver that triggered a waiver_signed event.
	WaiverID uint

	OccurredAt time.Time
	RawPayload []byte
}

// IdempotencyKey derives the natural dedup key for the event.
func (e *StatusEvent) IdempotencyKey() string {
	switch e.Kind {
	case models.EventPaymentWebhookPaid, models.EventPaymentWebhookRefunded:
		return "wh:" + e.PaymentSessionID + ":" + e.Kind
	case models.EventExpirySweep:
		return fmt.Sprintf("sweep:%d:%s", e.BookingID, e.OccurredAt.UTC().Format("2006-01-02"))
	case models.EventWaiverSigned:
		return fmt.Sprintf("waiver:%d:%d", e.WaiverID, e.BookingID)
	default:
		// Admin overrides are never replayed; each one is its own event.
		return fmt.Sprintf("admin:%d:%d", e.BookingID, e.OccurredAt.UnixNano())
	}
}

// Apply outcomes.
const (
	OutcomeApplied   = "applied"
	OutcomeDuplicate = "duplicate"
	OutcomeDropped   = "dropped"
)

type ApplyResult struct {
	Outcome string
	Reason  string
	Booking *models.Booking
}

func isDuplicateKeyErr(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, gorm.ErrDuplicatedKey) {
		return true
	}
	lc := strings.ToLower(err.Error())
	return strings.Contains(lc, "duplicate") || strings.Contains(lc, "unique")
}

// Apply validates and applies a single event. Only infrastructure failures are
// returned as errors; unknown bookings and invalid transitions are recorded on
// the ledger row and reported through the result.
func (s *StatusService) Apply(ev StatusEvent) (ApplyResult, error) {
	result := ApplyResult{Outcome: OutcomeDropped}

	txErr := s.DB.Transaction(func(tx *gorm.DB) error {
		ledger := models.PaymentEvent{
			IdempotencyKey:   ev.IdempotencyKey(),
			BookingID:        ev.BookingID,
			Kind:             ev.Kind,
			PaymentSessionID: ev.PaymentSessionID,
			AmountCents:      ev.AmountCents,
			OccurredAt:       ev.OccurredAt,
		}
		if len(ev.RawPayload) > 0 {
			ledger.Payload = datatypes.JSON(ev.RawPayload)
		}
		if err := tx.Create(&ledger).Error; err != nil {
			if isDuplicateKeyErr(err) {
				result.Outcome = OutcomeDuplicate
				result.Reason = "duplicate_event"
				// Abort the transaction without surfacing an error.
				return errDuplicateReplay
			}
			return fmt.Errorf("failed to record event: %w", err)
		}

		var booking models.Booking
		err := tx.Clauses(clause.Locking{Strength: "UPDATE"}).
			Preload("LessonType").
			First(&booking, ev.BookingID).Error
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				log.Printf("status: event %s references unknown booking %d, dropping", ev.Kind, ev.BookingID)
				return s.finishLedger(tx, &ledger, "booking_not_found", &result, nil)
			}
			return fmt.Errorf("failed to load booking %d: %w", ev.BookingID, err)
		}

		next, dropReason, err := s.computeNext(tx, &booking, ev)
		if err != nil {
			return err
		}
		if dropReason != "" {
			log.Printf("status: booking %d rejected %s: %s", booking.ID, ev.Kind, dropReason)
			return s.finishLedger(tx, &ledger, dropReason, &result, nil)
		}
		if next == nil {
			// Valid event with nothing to change.
			result.Outcome = OutcomeApplied
			result.Reason = "no_change"
			result.Booking = &booking
			now := time.Now().UTC()
			return tx.Model(&ledger).Update("processed_at", &now).Error
		}

		if hits := models.CheckForbidden(next); len(hits) > 0 {
			reason := "invariant_violation:" + strings.Join(hits, ",")
			log.Printf("status: booking %d rejected %s: %s", booking.ID, ev.Kind, reason)
			return s.finishLedger(tx, &ledger, reason, &result, nil)
		}

		occurred := ev.OccurredAt
		next.LastEventAt = &occurred
		if err := tx.Omit(clause.Associations).Save(next).Error; err != nil {
			return fmt.Errorf("failed to persist booking %d: %w", next.ID, err)
		}

		now := time.Now().UTC()
		if err := tx.Model(&ledger).Update("processed_at", &now).Error; err != nil {
			return err
		}

		result.Outcome = OutcomeApplied
		result.Booking = next
		return nil
	})

	if errors.Is(txErr, errDuplicateReplay) {
		return result, nil
	}
	if txErr != nil {
		return ApplyResult{}, txErr
	}
	return result, nil
}

// errDuplicateReplay aborts the transaction when the idempotence key already
// exists; the caller treats it as success with no change.
var errDuplicateReplay = errors.New("duplicate_replay")

// finishLedger commits the ledger row with an error note while leaving the
// booking untouched.
func (s *StatusService) finishLedger(tx *gorm.DB, ledger *models.PaymentEvent, reason string, result *ApplyResult, booking *models.Booking) error {
	result.Outcome = OutcomeDropped
	result.Reason = reason
	result.Booking = booking
	now := time.Now().UTC()
	return tx.Model(ledger).Updates(map[string]interface{}{
		"error":        reason,
		"processed_at": &now,
	}).Error
}

// computeNext returns the booking with the next triple applied, or a drop
// reason when the event is invalid for the current state. A nil booking with
// an empty reason means the event is valid but changes nothing.
func (s *StatusService) computeNext(tx *gorm.DB, b *models.Booking, ev StatusEvent) (*models.Booking, string, error) {
	switch ev.Kind {
	case models.EventPaymentWebhookPaid:
		return s.applyWebhookPaid(tx, b, ev)
	case models.EventPaymentWebhookRefunded:
		return s.applyWebhookRefunded(b, ev)
	case models.EventAdminOverride:
		return s.applyAdminOverride(b, ev)
	case models.EventExpirySweep:
		return s.applyExpirySweep(b, ev)
	case models.EventWaiverSigned:
		return s.applyWaiverSigned(tx, b)
	default:
		return nil, "unknown_event_kind", nil
	}
}

// staleWebhookReplay reports whether a webhook carries a logical timestamp at
// or before the last admin override, meaning a provider retry of an event the
// admin has since overruled.
func staleWebhookReplay(b *models.Booking, ev StatusEvent) bool {
	return b.LastOverrideAt != nil && !ev.OccurredAt.After(*b.LastOverrideAt)
}

func (s *StatusService) applyWebhookPaid(tx *gorm.DB, b *models.Booking, ev StatusEvent) (*models.Booking, string, error) {
	if ev.PaymentSessionID == "" {
		return nil, "missing_payment_session_id", nil
	}
	if staleWebhookReplay(b, ev) {
		return nil, "stale_webhook_replay", nil
	}

	var target string
	switch {
	case ev.AmountCents >= b.LessonType.FullPriceCents && b.LessonType.FullPriceCents > 0:
		target = models.PaymentStatusSessionPaid
	case ev.AmountCents >= b.LessonType.ReservationFeeCents && b.LessonType.ReservationFeeCents > 0:
		target = models.PaymentStatusReservationPaid
	default:
		return nil, "amount_below_reservation_fee", nil
	}

	if !models.CanTransitionPaymentStatus(b.PaymentStatus, target) {
		return nil, fmt.Sprintf("payment_transition_forbidden:%s->%s", b.PaymentStatus, target), nil
	}

	next := *b
	next.PaymentStatus = target
	next.StripeSessionID = &ev.PaymentSessionID
	next.PaidAmountCents = ev.AmountCents
	next.ReservationFeePaid = true

	if next.Status == models.BookingStatusPending {
		next.Status = models.BookingStatusConfirmed
	}

	if next.AttendanceStatus == models.AttendanceStatusPending && next.SafetyInfoComplete() {
		ok, err := s.waiverGateSatisfied(tx, next.ID)
		if err != nil {
			return nil, "", err
		}
		if ok {
			next.AttendanceStatus = models.AttendanceStatusConfirmed
		}
	}

	return &next, "", nil
}

func (s *StatusService) applyWebhookRefunded(b *models.Booking, ev StatusEvent) (*models.Booking, string, error) {
	if staleWebhookReplay(b, ev) {
		return nil, "stale_webhook_replay", nil
	}
	if b.PaymentStatus == models.PaymentStatusRefunded {
		// A second refund under a different session is an anomaly, not a
		// replay; the audit surfaces it from the ledger.
		return nil, "already_refunded", nil
	}
	if !models.CanTransitionPaymentStatus(b.PaymentStatus, models.PaymentStatusRefunded) {
		return nil, fmt.Sprintf("payment_transition_forbidden:%s->refunded", b.PaymentStatus), nil
	}

	next := *b
	next.PaymentStatus = models.PaymentStatusRefunded
	// A delivered session stays delivered: refunding after completion changes
	// only the payment status.
	if next.Status != models.BookingStatusCompleted {
		next.Status = models.BookingStatusCancelled
	}
	return &next, "", nil
}

func (s *StatusService) applyAdminOverride(b *models.Booking, ev StatusEvent) (*models.Booking, string, error) {
	next := *b

	if ev.NewStatus != nil {
		if !models.ValidBookingStatus(*ev.NewStatus) {
			return nil, "invalid_status_value", nil
		}
		next.Status = *ev.NewStatus
	}
	if ev.NewPaymentStatus != nil {
		if !models.ValidPaymentStatus(*ev.NewPaymentStatus) {
			return nil, "invalid_payment_status_value", nil
		}
		next.PaymentStatus = *ev.NewPaymentStatus
	}
	if ev.NewAttendanceStatus != nil {
		if !models.ValidAttendanceStatus(*ev.NewAttendanceStatus) {
			return nil, "invalid_attendance_status_value", nil
		}
		next.AttendanceStatus = *ev.NewAttendanceStatus
	}

	// Marking attendance completed on a reservation-paid booking means the
	// session was delivered in full, so payment advances with it.
	if ev.NewAttendanceStatus != nil && *ev.NewAttendanceStatus == models.AttendanceStatusCompleted &&
		ev.NewPaymentStatus == nil && next.PaymentStatus == models.PaymentStatusReservationPaid {
		next.PaymentStatus = models.PaymentStatusSessionPaid
	}
	if ev.NewAttendanceStatus != nil && *ev.NewAttendanceStatus == models.AttendanceStatusCompleted &&
		next.Status == models.BookingStatusConfirmed {
		next.Status = models.BookingStatusCompleted
	}

	if ev.Reason != "" {
		next.OverrideReason = ev.Reason
	}
	if ev.Notes != "" {
		if next.AdminNotes != "" {
			next.AdminNotes += "\n"
		}
		next.AdminNotes += ev.Notes
	}

	occurred := ev.OccurredAt
	next.LastOverrideAt = &occurred
	return &next, "", nil
}

func (s *StatusService) applyExpirySweep(b *models.Booking, ev StatusEvent) (*models.Booking, string, error) {
	if b.PaymentStatus != models.PaymentStatusUnpaid && b.PaymentStatus != models.PaymentStatusReservationPending {
		return nil, "", nil
	}
	if b.Terminal() || b.Status == models.BookingStatusCancelled {
		return nil, "", nil
	}
	// Strictly older than 24 hours; a booking at exactly the cutoff survives,
	// matching the candidate query in the sweep.
	if ev.OccurredAt.Sub(b.CreatedAt) <= 24*time.Hour {
		return nil, "", nil
	}

	next := *b
	next.Status = models.BookingStatusCancelled
	return &next, "", nil
}

func (s *StatusService) applyWaiverSigned(tx *gorm.DB, b *models.Booking) (*models.Booking, string, error) {
	// Signing never mutates status fields directly; it only unblocks the
	// auto-advance a paid booking was held back from.
	if !models.PaymentIsPaid(b.PaymentStatus) {
		return nil, "", nil
	}

	next := *b
	changed := false

	if next.Status == models.BookingStatusPending {
		next.Status = models.BookingStatusConfirmed
		changed = true
	}
	if next.AttendanceStatus == models.AttendanceStatusPending && next.SafetyInfoComplete() {
		ok, err := s.waiverGateSatisfied(tx, next.ID)
		if err != nil {
			return nil, "", err
		}
		if ok {
			next.AttendanceStatus = models.AttendanceStatusConfirmed
			changed = true
		}
	}

	if !changed {
		return nil, "", nil
	}
	return &next, "", nil
}

// waiverGateSatisfied reports whether every athlete on the booking has a
// current signed waiver on file.
func (s *StatusService) waiverGateSatisfied(tx *gorm.DB, bookingID uint) (bool, error) {
	var links []models.BookingAthlete
	if err := tx.Where("booking_id = ?", bookingID).Find(&links).Error; err != nil {
		return false, fmt.Errorf("failed to load booking athletes: %w", err)
	}
	if len(links) == 0 {
		return false, nil
	}
	for _, link := range links {
		var count int64
		err := tx.Model(&models.Waiver{}).
			Where("athlete_id = ? AND signed_at IS NOT NULL AND signature <> ''", link.AthleteID).
			Count(&count).Error
		if err != nil {
			return false, fmt.Errorf("failed to check waiver for athlete %d: %w", link.AthleteID, err)
		}
		if count == 0 {
			return false, nil
		}
	}
	return true, nil
}
