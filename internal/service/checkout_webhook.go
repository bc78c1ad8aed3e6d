package service

import (
	"context"
)

// HandleWebhookEvent is the asynchronous, provider-driven completion path.
// The payload is verified against the signing secret before anything else;
// verification failure mutates no state. Event types other than checkout
// completion are acknowledged without side effects.
func (s *CheckoutService) HandleWebhookEvent(ctx context.Context, payload []byte, signatureHeader string) error {
	event, err := s.gateway.VerifyWebhook(payload, signatureHeader)
	if err != nil {
		logger.Warn().Err(err).Msg("rejected webhook delivery")
		return err
	}

	if event.Session == nil {
		return nil
	}

	if _, _, err := s.runReconcile(ctx, event.Session); err != nil {
		return err
	}
	return nil
}
