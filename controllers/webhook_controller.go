package controllers

import (
	"errors"
	"io"
	"log"
	"net/http"

	"gym-backend/services"
	"gym-backend/utils"

	"github.com/gin-gonic/gin"
)

type WebhookController struct {
	WebhookSvc *services.WebhookService
}

func NewWebhookController(svc *services.WebhookService) *WebhookController {
	return &WebhookController{WebhookSvc: svc}
}

// HandlePaymentWebhook receives already-verified provider events. It must
// answer fast: a 200 here is "stop retrying", a 500 is "retry later". Dropped
// events (unknown booking, invalid transition) are still 200 so the provider
// doesn't storm us with retries over a payload that will never apply.
func (wc *WebhookController) HandlePaymentWebhook(c *gin.Context) {
	raw, err := io.ReadAll(c.Request.Body)
	if err != nil || len(raw) == 0 {
		utils.JSONError(c, http.StatusBadRequest, "empty body")
		return
	}

	res, err := wc.WebhookSvc.Process(raw)
	if err != nil {
		if errors.Is(err, services.ErrMalformedPayload) {
			utils.JSONError(c, http.StatusBadRequest, "malformed payload")
			return
		}
		if errors.Is(err, services.ErrUnhandledEventType) {
			utils.JSONSuccess(c, http.StatusOK, gin.H{"ignored": true})
			return
		}
		utils.JSONError(c, http.StatusInternalServerError, "webhook processing failed")
		return
	}

	if res.Outcome == services.OutcomeApplied && res.Booking != nil && res.Reason == "" {
		// Confirmation email is fire-and-forget: a send failure must never
		// roll back the status transition.
		booking := *res.Booking
		go func() {
			log.Printf("notify: payment confirmation for booking %d -> %s", booking.ID, booking.ParentEmail)
		}()
	}

	utils.JSONSuccess(c, http.StatusOK, gin.H{
		"outcome": res.Outcome,
		"reason":  res.Reason,
	})
}
