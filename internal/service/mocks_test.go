package service

import (
	"context"
	"database/sql"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/madstore/madstore-api/internal/cache"
	"github.com/madstore/madstore-api/internal/domain"
	"github.com/madstore/madstore-api/internal/payment"
	"github.com/madstore/madstore-api/internal/repository"
)

// MockTxRunner implements repository.TxRunner for testing. The fn receives a
// nil *sql.Tx; the mocks below ignore it.
type MockTxRunner struct {
	BeginErr error
	Calls    int
}

func (m *MockTxRunner) InTx(_ context.Context, fn func(tx *sql.Tx) error) error {
	if m.BeginErr != nil {
		return m.BeginErr
	}
	m.Calls++
	return fn(nil)
}

// MockCartRepository implements repository.CartRepository for testing
type MockCartRepository struct {
	Carts          map[string]*domain.Cart
	GetErr         error
	AddErr         error
	UpdateCode     string
	UpdateErr      error
	RemoveCode     string
	RemoveErr      error
	DeleteErr      error
	DeletedCartIDs []int64
}

func (m *MockCartRepository) GetCartByCode(_ context.Context, code string) (*domain.Cart, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	cart, ok := m.Carts[code]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	return cart, nil
}

func (m *MockCartRepository) GetOrCreateCart(_ context.Context, code string) (*domain.Cart, error) {
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	if cart, ok := m.Carts[code]; ok {
		return cart, nil
	}
	cart := &domain.Cart{ID: int64(len(m.Carts) + 1), Code: code}
	if m.Carts == nil {
		m.Carts = map[string]*domain.Cart{}
	}
	m.Carts[code] = cart
	return cart, nil
}

func (m *MockCartRepository) AddCartItem(_ context.Context, code string, productID int64) (*domain.Cart, error) {
	if m.AddErr != nil {
		return nil, m.AddErr
	}
	cart, ok := m.Carts[code]
	if !ok {
		return nil, repository.ErrCartNotFound
	}
	cart.Items = append(cart.Items, domain.CartItem{
		ID:        int64(len(cart.Items) + 1),
		ProductID: productID,
		Quantity:  1,
	})
	return cart, nil
}

func (m *MockCartRepository) UpdateCartItemQuantity(_ context.Context, _ int64, _ int) (string, error) {
	return m.UpdateCode, m.UpdateErr
}

func (m *MockCartRepository) RemoveCartItem(_ context.Context, _ int64) (string, error) {
	return m.RemoveCode, m.RemoveErr
}

func (m *MockCartRepository) DeleteCart(_ context.Context, _ *sql.Tx, cartID int64) error {
	if m.DeleteErr != nil {
		return m.DeleteErr
	}
	m.DeletedCartIDs = append(m.DeletedCartIDs, cartID)
	for code, cart := range m.Carts {
		if cart.ID == cartID {
			delete(m.Carts, code)
		}
	}
	return nil
}

// MockOrderRepository implements repository.OrderRepository for testing
type MockOrderRepository struct {
	BySession map[string]*domain.Order
	ByOrderID map[string]*domain.Order
	Created   []*domain.Order
	CreateErr error
	// Winner is installed under its session id when CreateErr fires,
	// simulating a concurrent reconciliation winning the insert.
	Winner          *domain.Order
	UpdatedCurrency string
	UpdatedAmount   decimal.Decimal
	UpdateErr       error
}

func (m *MockOrderRepository) CreateOrder(_ context.Context, _ *sql.Tx, order *domain.Order) error {
	if m.CreateErr != nil {
		if m.Winner != nil {
			if m.BySession == nil {
				m.BySession = map[string]*domain.Order{}
			}
			m.BySession[m.Winner.SessionID] = m.Winner
		}
		return m.CreateErr
	}
	order.ID = int64(len(m.Created) + 1)
	m.Created = append(m.Created, order)
	if order.SessionID != "" {
		if m.BySession == nil {
			m.BySession = map[string]*domain.Order{}
		}
		m.BySession[order.SessionID] = order
	}
	if m.ByOrderID == nil {
		m.ByOrderID = map[string]*domain.Order{}
	}
	m.ByOrderID[order.OrderID] = order
	return nil
}

func (m *MockOrderRepository) UpdateOrderAmount(_ context.Context, _ *sql.Tx, _ int64, currency string, amount decimal.Decimal) error {
	if m.UpdateErr != nil {
		return m.UpdateErr
	}
	m.UpdatedCurrency = currency
	m.UpdatedAmount = amount
	return nil
}

func (m *MockOrderRepository) GetOrderBySessionID(_ context.Context, sessionID string) (*domain.Order, error) {
	if order, ok := m.BySession[sessionID]; ok {
		return order, nil
	}
	return nil, repository.ErrOrderNotFound
}

func (m *MockOrderRepository) GetOrderByOrderID(_ context.Context, orderID string) (*domain.Order, error) {
	if order, ok := m.ByOrderID[orderID]; ok {
		return order, nil
	}
	return nil, repository.ErrOrderNotFound
}

func (m *MockOrderRepository) ListOrdersByEmail(_ context.Context, email string) ([]*domain.Order, error) {
	var orders []*domain.Order
	for _, order := range m.Created {
		if order.CustomerEmail == email {
			orders = append(orders, order)
		}
	}
	return orders, nil
}

func (m *MockOrderRepository) MarkOrderReceived(_ context.Context, orderID string) (*domain.Order, error) {
	order, ok := m.ByOrderID[orderID]
	if !ok {
		return nil, repository.ErrOrderNotFound
	}
	order.IsReceived = true
	order.DeliveryStatus = domain.DeliveryStatusDelivered
	return order, nil
}

// MockGateway implements payment.Gateway for testing
type MockGateway struct {
	Session      *payment.Session
	RetrieveErr  error
	CreateErr    error
	CreatedInput *payment.CreateSessionInput
	Event        *payment.Event
	VerifyErr    error
}

func (m *MockGateway) CreateSession(_ context.Context, in *payment.CreateSessionInput) (*payment.Session, error) {
	m.CreatedInput = in
	if m.CreateErr != nil {
		return nil, m.CreateErr
	}
	return m.Session, nil
}

func (m *MockGateway) RetrieveSession(_ context.Context, _ string) (*payment.Session, error) {
	if m.RetrieveErr != nil {
		return nil, m.RetrieveErr
	}
	return m.Session, nil
}

func (m *MockGateway) VerifyWebhook(_ []byte, _ string) (*payment.Event, error) {
	if m.VerifyErr != nil {
		return nil, m.VerifyErr
	}
	return m.Event, nil
}

// MockNotifier implements Notifier for testing
type MockNotifier struct {
	Sent []*domain.Order
	Err  error
}

func (m *MockNotifier) SendOrderConfirmation(_ context.Context, order *domain.Order) error {
	if m.Err != nil {
		return m.Err
	}
	m.Sent = append(m.Sent, order)
	return nil
}

// MockCartCache implements cache.CartCache for testing. GetCart sets cache
// entries from a goroutine, so access is locked.
type MockCartCache struct {
	mu      sync.Mutex
	Entries map[string]*domain.Cart
	Deleted []string
	GetErr  error
	SetErr  error
	DelErr  error
}

func (m *MockCartCache) Get(_ context.Context, code string) (*domain.Cart, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.GetErr != nil {
		return nil, m.GetErr
	}
	cart, ok := m.Entries[code]
	if !ok {
		return nil, cache.ErrCacheMiss
	}
	return cart, nil
}

func (m *MockCartCache) Set(_ context.Context, code string, cart *domain.Cart) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.SetErr != nil {
		return m.SetErr
	}
	if m.Entries == nil {
		m.Entries = map[string]*domain.Cart{}
	}
	m.Entries[code] = cart
	return nil
}

func (m *MockCartCache) Delete(_ context.Context, code string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.DelErr != nil {
		return m.DelErr
	}
	m.Deleted = append(m.Deleted, code)
	delete(m.Entries, code)
	return nil
}

func (m *MockCartCache) DeletedCodes() []string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]string(nil), m.Deleted...)
}

// MockProductRepository implements repository.ProductRepository for testing
type MockProductRepository struct {
	Products map[int64]*domain.Product
	Err      error
}

func (m *MockProductRepository) ListProducts(_ context.Context, _ bool) ([]domain.Product, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	var products []domain.Product
	for _, p := range m.Products {
		products = append(products, *p)
	}
	return products, nil
}

func (m *MockProductRepository) GetProductBySlug(_ context.Context, slug string) (*domain.Product, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	for _, p := range m.Products {
		if p.Slug == slug {
			return p, nil
		}
	}
	return nil, repository.ErrProductNotFound
}

func (m *MockProductRepository) GetProductByID(_ context.Context, id int64) (*domain.Product, error) {
	if m.Err != nil {
		return nil, m.Err
	}
	product, ok := m.Products[id]
	if !ok {
		return nil, repository.ErrProductNotFound
	}
	return product, nil
}

func (m *MockProductRepository) SearchProducts(_ context.Context, _ string) ([]domain.Product, error) {
	return m.ListProducts(context.Background(), false)
}

// newTestCheckoutService creates a fully wired CheckoutService for testing
func newTestCheckoutService(
	carts *MockCartRepository,
	orders *MockOrderRepository,
	gateway *MockGateway,
	notifier *MockNotifier,
	cartCache *MockCartCache,
) *CheckoutService {
	return NewCheckoutService(
		&MockTxRunner{},
		carts,
		orders,
		gateway,
		notifier,
		cartCache,
		CheckoutConfig{
			DeliveryCharge: decimal.RequireFromString("280.00"),
			Currency:       domain.DefaultCurrency,
			SuccessURL:     "http://localhost:3000/payment/success?session_id={CHECKOUT_SESSION_ID}",
			CancelURL:      "http://localhost:3000/payment/failed",
		},
	)
}
