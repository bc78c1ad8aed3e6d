package service

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/madstore/madstore-api/internal/domain"
	"github.com/madstore/madstore-api/internal/repository"
)

// FinalizeCheckout is the synchronous, client-driven completion path. It
// retrieves the session from the provider, short-circuits when an order for
// it already exists, and otherwise reconciles the funding cart into an order
// within one transaction. The returned bool reports an idempotent replay.
//
// A nil order with a nil error means there was nothing to do: the cart was
// already consumed and the order lookup raced past it.
func (s *CheckoutService) FinalizeCheckout(ctx context.Context, sessionID string) (*domain.Order, bool, error) {
	sessionID = strings.TrimSpace(sessionID)
	if sessionID == "" {
		return nil, false, ErrSessionIDRequired
	}

	sess, err := s.gateway.RetrieveSession(ctx, sessionID)
	if err != nil {
		return nil, false, fmt.Errorf("%w: %v", ErrInvalidSession, err)
	}

	existing, err := s.orders.GetOrderBySessionID(ctx, sessionID)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, repository.ErrOrderNotFound) {
		return nil, false, err
	}

	if sess.Metadata.CartCode == "" {
		return nil, false, ErrCartCodeMissing
	}

	return s.runReconcile(ctx, sess)
}
