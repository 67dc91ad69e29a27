package models

import (
	"time"

	"gorm.io/datatypes"
)

// Event kinds accepted by the status state machine.
const (
	EventPaymentWebhookPaid     = "payment_webhook_paid"
	EventPaymentWebhookRefunded = "payment_webhook_refunded"
	EventAdminOverride          = "admin_override"
	EventExpirySweep            = "expiry_sweep"
	EventWaiverSigned           = "waiver_signed"
)

// PaymentEvent is the ledger of every state-changing event that reached the
// machine: one row per webhook callback, sweep decision or admin override. The
// unique idempotency key is what makes at-least-once webhook delivery safe.
type PaymentEvent struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	CreatedAt time.Time `json:"created_at"`

	IdempotencyKey string `gorm:"uniqueIndex;size:191;column:idempotency_key" json:"idempotencyKey"`
	BookingID      uint   `gorm:"index;column:booking_id" json:"bookingId"`
	Kind           string `gorm:"size:64" json:"kind"`

	PaymentSessionID string `gorm:"size:128;column:payment_session_id" json:"paymentSessionId,omitempty"`
	AmountCents      int64  `gorm:"column:amount_cents" json:"amountCents,omitempty"`

	// Raw payload kept for debugging and replay analysis.
	Payload datatypes.JSON `gorm:"column:payload" json:"payload,omitempty"`

	OccurredAt  time.Time  `gorm:"column:occurred_at" json:"occurredAt"`
	ProcessedAt *time.Time `gorm:"column:processed_at" json:"processedAt,omitempty"`
	Error       string     `gorm:"size:255" json:"error,omitempty"`
}
