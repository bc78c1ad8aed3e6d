package service

import (
	"context"
	"database/sql"
	"errors"
	"os"
	"strings"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/madstore/madstore-api/internal/cache"
	"github.com/madstore/madstore-api/internal/domain"
	"github.com/madstore/madstore-api/internal/payment"
	"github.com/madstore/madstore-api/internal/repository"
)

var logger = zerolog.New(os.Stdout).With().Timestamp().Logger()

// Notifier delivers the order confirmation. Failures are logged, never
// propagated: notification must not affect order durability.
type Notifier interface {
	SendOrderConfirmation(ctx context.Context, order *domain.Order) error
}

type CheckoutConfig struct {
	DeliveryCharge decimal.Decimal
	Currency       string
	SuccessURL     string
	CancelURL      string
}

type CheckoutService struct {
	tx       repository.TxRunner
	carts    repository.CartRepository
	orders   repository.OrderRepository
	gateway  payment.Gateway
	notifier Notifier
	cache    cache.CartCache
	cfg      CheckoutConfig
}

func NewCheckoutService(
	tx repository.TxRunner,
	carts repository.CartRepository,
	orders repository.OrderRepository,
	gateway payment.Gateway,
	notifier Notifier,
	cartCache cache.CartCache,
	cfg CheckoutConfig,
) *CheckoutService {
	return &CheckoutService{
		tx:       tx,
		carts:    carts,
		orders:   orders,
		gateway:  gateway,
		notifier: notifier,
		cache:    cartCache,
		cfg:      cfg,
	}
}

// OrderData carries the buyer and delivery fields for an order, sourced
// either from a request body or from provider session metadata.
type OrderData struct {
	Email         string
	BuyerName     string
	Phone         string
	AddressLine   string
	City          string
	State         string
	PostalCode    string
	Country       string
	PaymentMethod domain.PaymentMethod
}

func (d OrderData) normalized() OrderData {
	d.Email = strings.ToLower(strings.TrimSpace(d.Email))
	d.BuyerName = strings.TrimSpace(d.BuyerName)
	d.Phone = strings.TrimSpace(d.Phone)
	d.AddressLine = strings.TrimSpace(d.AddressLine)
	d.City = strings.TrimSpace(d.City)
	d.State = strings.TrimSpace(d.State)
	d.PostalCode = strings.TrimSpace(d.PostalCode)
	d.Country = strings.TrimSpace(d.Country)
	if d.PaymentMethod == "" {
		d.PaymentMethod = domain.PaymentMethodCard
	}
	return d
}

func orderDataFromSession(sess *payment.Session) OrderData {
	return OrderData{
		Email:         sess.CustomerEmail,
		BuyerName:     sess.Metadata.BuyerName,
		Phone:         sess.Metadata.Phone,
		AddressLine:   sess.Metadata.AddressLine,
		City:          sess.Metadata.City,
		State:         sess.Metadata.State,
		PostalCode:    sess.Metadata.PostalCode,
		Country:       sess.Metadata.Country,
		PaymentMethod: domain.PaymentMethod(sess.Metadata.PaymentMethod),
	}.normalized()
}

// newOrderFromCart builds the order record: quantized subtotal over the cart
// lines, the flat delivery charge when there is anything to deliver, and one
// snapshot line per cart line with the unit price frozen at this instant.
func (s *CheckoutService) newOrderFromCart(cart *domain.Cart, data OrderData, status domain.PaymentStatus) *domain.Order {
	subtotal := cart.Subtotal()
	deliveryCharge := decimal.Zero
	if subtotal.IsPositive() {
		deliveryCharge = domain.QuantizeMoney(s.cfg.DeliveryCharge)
	}

	order := &domain.Order{
		OrderID:        domain.NewOrderID(),
		Subtotal:       subtotal,
		DeliveryCharge: deliveryCharge,
		Amount:         domain.QuantizeMoney(subtotal.Add(deliveryCharge)),
		Currency:       s.cfg.Currency,
		CustomerEmail:  data.Email,
		BuyerName:      data.BuyerName,
		Phone:          data.Phone,
		AddressLine:    data.AddressLine,
		City:           data.City,
		State:          data.State,
		PostalCode:     data.PostalCode,
		Country:        data.Country,
		PaymentMethod:  data.PaymentMethod,
		Status:         status,
		DeliveryStatus: domain.DeliveryStatusProcessing,
		IsReceived:     false,
		CreatedAt:      time.Now().UTC(),
	}

	for _, item := range cart.Items {
		order.Items = append(order.Items, domain.OrderItem{
			ProductID:   item.ProductID,
			ProductName: item.ProductName,
			Quantity:    item.Quantity,
			UnitPrice:   domain.QuantizeMoney(item.UnitPrice),
		})
	}
	return order
}

// reconcile converts the cart funding a confirmed provider session into a
// persisted order. It runs inside the caller's transaction; a missing cart
// means a previous reconciliation already consumed it, which is benign but
// worth a warning in case a cart ever disappears out of band.
func (s *CheckoutService) reconcile(ctx context.Context, tx *sql.Tx, sess *payment.Session) (*domain.Order, error) {
	cart, err := s.carts.GetCartByCode(ctx, sess.Metadata.CartCode)
	if errors.Is(err, repository.ErrCartNotFound) {
		logger.Warn().
			Str("session_id", sess.ID).
			Str("cart_code", sess.Metadata.CartCode).
			Msg("cart missing at reconciliation, treating as already fulfilled")
		return nil, nil
	}
	if err != nil {
		return nil, err
	}

	order := s.newOrderFromCart(cart, orderDataFromSession(sess), domain.PaymentStatusPaid)
	order.SessionID = sess.ID

	if err := s.orders.CreateOrder(ctx, tx, order); err != nil {
		return nil, err
	}

	// The provider's captured totals are ground truth once the payment is
	// confirmed; they absorb any rounding or promotion applied on its side.
	currency := sess.Currency
	if currency == "" {
		currency = s.cfg.Currency
	}
	amount := domain.FromMinorUnits(sess.AmountTotal)
	if err := s.orders.UpdateOrderAmount(ctx, tx, order.ID, currency, amount); err != nil {
		return nil, err
	}
	order.Currency = currency
	order.Amount = amount

	if err := s.carts.DeleteCart(ctx, tx, cart.ID); err != nil {
		return nil, err
	}

	return order, nil
}

// runReconcile wraps reconcile with the idempotency guard, the transaction
// boundary, and the constraint-race recovery. The returned bool reports an
// idempotent replay.
func (s *CheckoutService) runReconcile(ctx context.Context, sess *payment.Session) (*domain.Order, bool, error) {
	existing, err := s.orders.GetOrderBySessionID(ctx, sess.ID)
	if err == nil {
		return existing, true, nil
	}
	if !errors.Is(err, repository.ErrOrderNotFound) {
		return nil, false, err
	}

	var order *domain.Order
	err = s.tx.InTx(ctx, func(tx *sql.Tx) error {
		o, reconcileErr := s.reconcile(ctx, tx, sess)
		order = o
		return reconcileErr
	})
	if errors.Is(err, repository.ErrDuplicateSession) {
		// A concurrent reconciliation won the insert; return its order.
		winner, fetchErr := s.orders.GetOrderBySessionID(ctx, sess.ID)
		if fetchErr != nil {
			return nil, false, fetchErr
		}
		return winner, true, nil
	}
	if err != nil {
		return nil, false, err
	}

	if order != nil {
		s.notify(ctx, order)
		s.invalidateCartCache(sess.Metadata.CartCode)
	}
	return order, false, nil
}

// notify is best-effort and runs after the transaction has committed.
func (s *CheckoutService) notify(ctx context.Context, order *domain.Order) {
	if s.notifier == nil {
		return
	}
	if err := s.notifier.SendOrderConfirmation(ctx, order); err != nil {
		logger.Error().Err(err).
			Str("order_id", order.OrderID).
			Msg("failed to send order confirmation")
	}
}

func (s *CheckoutService) invalidateCartCache(code string) {
	if s.cache == nil || code == "" {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	if err := s.cache.Delete(ctx, code); err != nil {
		logger.Error().Err(err).Str("cart_code", code).Msg("cart cache invalidate error")
	}
}
