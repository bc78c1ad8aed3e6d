package service

import (
	"context"

	"github.com/shopspring/decimal"

	"github.com/madstore/madstore-api/internal/domain"
	"github.com/madstore/madstore-api/internal/payment"
)

// CreateCheckoutSession opens a provider checkout session for a cart. Line
// items carry unit amounts in minor units; the flat delivery charge goes in
// as its own line so the provider total matches the local computation. The
// metadata binds the session back to the cart for reconciliation.
func (s *CheckoutService) CreateCheckoutSession(ctx context.Context, cartCode string, data OrderData) (*payment.Session, error) {
	data = data.normalized()
	if data.Email == "" {
		return nil, ErrEmailRequired
	}

	cart, err := s.carts.GetCartByCode(ctx, cartCode)
	if err != nil {
		return nil, err
	}
	if len(cart.Items) == 0 {
		return nil, ErrEmptyCart
	}

	subtotal := cart.Subtotal()
	deliveryCharge := decimal.Zero
	if subtotal.IsPositive() {
		deliveryCharge = domain.QuantizeMoney(s.cfg.DeliveryCharge)
	}

	lineItems := make([]payment.LineItem, 0, len(cart.Items)+1)
	for _, item := range cart.Items {
		lineItems = append(lineItems, payment.LineItem{
			Name:       item.ProductName,
			UnitAmount: domain.QuantizeMoney(item.UnitPrice).Shift(2).IntPart(),
			Quantity:   int64(item.Quantity),
		})
	}
	lineItems = append(lineItems, payment.LineItem{
		Name:       "Delivery Charge",
		UnitAmount: deliveryCharge.Shift(2).IntPart(),
		Quantity:   1,
	})

	sess, err := s.gateway.CreateSession(ctx, &payment.CreateSessionInput{
		CustomerEmail: data.Email,
		Currency:      s.cfg.Currency,
		LineItems:     lineItems,
		SuccessURL:    s.cfg.SuccessURL,
		CancelURL:     s.cfg.CancelURL,
		Metadata: payment.SessionMetadata{
			CartCode:      cartCode,
			BuyerName:     data.BuyerName,
			Phone:         data.Phone,
			AddressLine:   data.AddressLine,
			City:          data.City,
			State:         data.State,
			PostalCode:    data.PostalCode,
			Country:       data.Country,
			PaymentMethod: string(domain.PaymentMethodCard),
		},
	})
	if err != nil {
		return nil, err
	}
	return sess, nil
}
