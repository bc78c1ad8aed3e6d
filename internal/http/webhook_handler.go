package http

import (
	"context"
	"errors"
	"io"
	"net/http"
	"time"

	"github.com/madstore/madstore-api/internal/payment"
)

// maxWebhookBody caps the payload size read from the payment provider.
const maxWebhookBody = 64 * 1024

type WebhookProcessor interface {
	HandleWebhookEvent(ctx context.Context, payload []byte, sigHeader string) error
}

type WebhookHandler struct {
	svc     WebhookProcessor
	timeout time.Duration
}

func NewWebhookHandler(svc WebhookProcessor, timeout time.Duration) *WebhookHandler {
	return &WebhookHandler{
		svc:     svc,
		timeout: timeout,
	}
}

// POST /webhook
func (h *WebhookHandler) Handle(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), h.timeout)
	defer cancel()

	payload, err := io.ReadAll(http.MaxBytesReader(w, r.Body, maxWebhookBody))
	if err != nil {
		respondError(w, http.StatusBadRequest, "invalid_request", "failed to read request body")
		return
	}

	err = h.svc.HandleWebhookEvent(ctx, payload, r.Header.Get("Stripe-Signature"))
	if err != nil {
		if errors.Is(err, payment.ErrSignatureInvalid) || errors.Is(err, payment.ErrMalformedEvent) {
			respondError(w, http.StatusBadRequest, "invalid_signature", "webhook verification failed")
			return
		}
		handleServiceError(w, err)
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}
