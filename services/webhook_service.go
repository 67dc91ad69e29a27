package services

import (
	"encoding/json"
	"errors"
	"strconv"
	"time"

	"gym-backend/models"

	"github.com/go-playground/validator/v10"
	"gorm.io/gorm"
)

// Payment provider event types this backend reacts to. Signature verification
// happens upstream; by the time a payload reaches this service it is trusted
// but not yet well-formed.
const (
	providerEventCheckoutCompleted = "checkout.session.completed"
	providerEventChargeRefunded    = "charge.refunded"
)

var (
	ErrMalformedPayload   = errors.New("malformed_payload")
	ErrUnhandledEventType = errors.New("unhandled_event_type")
)

var validate = validator.New()

// webhookEnvelope is the explicit shape of an incoming provider payload.
// Anything that doesn't bind to it is rejected, not coerced.
type webhookEnvelope struct {
	Type    string `json:"type" validate:"required"`
	Created int64  `json:"created"`
	Data    struct {
		Object struct {
			ID            string `json:"id" validate:"required"`
			AmountTotal   int64  `json:"amount_total"`
			PaymentStatus string `json:"payment_status"`
			Metadata      struct {
				BookingID string `json:"booking_id" validate:"required"`
			} `json:"metadata"`
		} `json:"object"`
	} `json:"data"`
}

// ParseWebhookEvent turns a raw provider payload into a tagged status event.
func ParseWebhookEvent(raw []byte) (StatusEvent, error) {
	var env webhookEnvelope
	if err := json.Unmarshal(raw, &env); err != nil {
		return StatusEvent{}, ErrMalformedPayload
	}

	var kind string
	switch env.Type {
	case providerEventCheckoutCompleted:
		kind = models.EventPaymentWebhookPaid
	case providerEventChargeRefunded:
		kind = models.EventPaymentWebhookRefunded
	case "":
		return StatusEvent{}, ErrMalformedPayload
	default:
		return StatusEvent{}, ErrUnhandledEventType
	}

	if err := validate.Struct(&env); err != nil {
		return StatusEvent{}, ErrMalformedPayload
	}

	bookingID, err := strconv.ParseUint(env.Data.Object.Metadata.BookingID, 10, 32)
	if err != nil || bookingID == 0 {
		return StatusEvent{}, ErrMalformedPayload
	}

	occurred := time.Now().UTC()
	if env.Created > 0 {
		occurred = time.Unix(env.Created, 0).UTC()
	}

	return StatusEvent{
		Kind:             kind,
		BookingID:        uint(bookingID),
		PaymentSessionID: env.Data.Object.ID,
		AmountCents:      env.Data.Object.AmountTotal,
		OccurredAt:       occurred,
		RawPayload:       raw,
	}, nil
}

// WebhookService glues provider payloads to the status machine.
type WebhookService struct {
	DB     *gorm.DB
	Status *StatusService
}

func NewWebhookService(db *gorm.DB, status *StatusService) *WebhookService {
	return &WebhookService{DB: db, Status: status}
}

// Process parses and applies one payload. Parse failures are the caller's to
// map to 400; everything past parsing follows the machine's drop semantics.
func (s *WebhookService) Process(raw []byte) (ApplyResult, error) {
	ev, err := ParseWebhookEvent(raw)
	if err != nil {
		return ApplyResult{}, err
	}
	return s.Status.Apply(ev)
}
