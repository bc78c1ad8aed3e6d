package repository

import (
	"context"
	"database/sql"
	"errors"

	"github.com/shopspring/decimal"

	"github.com/madstore/madstore-api/internal/domain"
)

var (
	ErrProductNotFound  = errors.New("product not found")
	ErrCartNotFound     = errors.New("cart not found")
	ErrCartItemNotFound = errors.New("cart item not found")
	ErrOrderNotFound    = errors.New("order not found")
	ErrDuplicateSession = errors.New("order for this checkout session already exists")
)

type Credentials struct {
	Host              string
	Port              int
	User              string
	Password          string
	DBName            string
	MigrationsDirPath string
}

// TxRunner runs a function inside a single database transaction. The
// transaction commits when fn returns nil and rolls back otherwise.
type TxRunner interface {
	InTx(ctx context.Context, fn func(tx *sql.Tx) error) error
}

type ProductRepository interface {
	ListProducts(ctx context.Context, featuredOnly bool) ([]domain.Product, error)
	GetProductBySlug(ctx context.Context, slug string) (*domain.Product, error)
	GetProductByID(ctx context.Context, id int64) (*domain.Product, error)
	SearchProducts(ctx context.Context, query string) ([]domain.Product, error)
}

type CartRepository interface {
	GetCartByCode(ctx context.Context, code string) (*domain.Cart, error)
	GetOrCreateCart(ctx context.Context, code string) (*domain.Cart, error)
	AddCartItem(ctx context.Context, code string, productID int64) (*domain.Cart, error)
	UpdateCartItemQuantity(ctx context.Context, itemID int64, quantity int) (string, error)
	RemoveCartItem(ctx context.Context, itemID int64) (string, error)
	DeleteCart(ctx context.Context, tx *sql.Tx, cartID int64) error
}

type OrderRepository interface {
	CreateOrder(ctx context.Context, tx *sql.Tx, order *domain.Order) error
	UpdateOrderAmount(ctx context.Context, tx *sql.Tx, id int64, currency string, amount decimal.Decimal) error
	GetOrderBySessionID(ctx context.Context, sessionID string) (*domain.Order, error)
	GetOrderByOrderID(ctx context.Context, orderID string) (*domain.Order, error)
	ListOrdersByEmail(ctx context.Context, email string) ([]*domain.Order, error)
	MarkOrderReceived(ctx context.Context, orderID string) (*domain.Order, error)
}
