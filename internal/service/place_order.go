package service

import (
	"context"
	"database/sql"

	"github.com/madstore/madstore-api/internal/domain"
)

// PlaceOrder creates an order directly from a cart without a provider
// session: the cash-on-delivery path, and the card fallback when checkout
// is initiated without the hosted payment page. COD orders stay Pending
// until collected; anything else is treated as paid up front.
func (s *CheckoutService) PlaceOrder(ctx context.Context, cartCode string, data OrderData) (*domain.Order, error) {
	data = data.normalized()
	if data.Email == "" {
		return nil, ErrEmailRequired
	}
	if data.BuyerName == "" {
		return nil, ErrBuyerNameRequired
	}
	if data.AddressLine == "" || data.City == "" || data.Country == "" {
		return nil, ErrAddressRequired
	}
	if !data.PaymentMethod.Valid() {
		return nil, ErrInvalidPaymentMethod
	}

	cart, err := s.carts.GetCartByCode(ctx, cartCode)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	status := domain.PaymentStatusPaid
	if data.PaymentMethod == domain.PaymentMethodCOD {
		status = domain.PaymentStatusPending
	}

	order := s.newOrderFromCart(cart, data, status)
	err = s.tx.InTx(ctx, func(tx *sql.Tx) error {
		if err := s.orders.CreateOrder(ctx, tx, order); err != nil {
			return err
		}
		return s.carts.DeleteCart(ctx, tx, cart.ID)
	})
	if err != nil {
		return nil, err
	}

	s.notify(ctx, order)
	s.invalidateCartCache(cartCode)
	return order, nil
}
